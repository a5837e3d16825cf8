// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package normalizer canonicalizes document text before detection and keeps
// an index map from every normalized rune back to the original text.
package normalizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// contextWindow bounds how far (in runes) a dot rewrite looks for an "@".
const contextWindow = 64

// Result is the normalized text and its mapping to the original.
// IndexMap has len([]rune(Text))+1 entries; the last one equals the original length.
type Result struct {
	Original string
	Text     string
	IndexMap []int
}

// MapSpan maps a normalized rune span to original rune offsets.
func (r Result) MapSpan(start, end int) (int, int) {
	return MapSpan(start, end, r.IndexMap)
}

// MapSpan looks up both span boundaries through indexMap. Spans that collapse
// onto a single original position are widened to one rune.
func MapSpan(start, end int, indexMap []int) (int, int) {
	if len(indexMap) == 0 {
		return start, end
	}
	last := len(indexMap) - 1
	start = min(max(start, 0), last)
	end = min(max(end, start), last)

	origStart, origEnd := indexMap[start], indexMap[end]
	if origEnd <= origStart && origStart < indexMap[last] {
		origEnd = origStart + 1
	}
	return origStart, origEnd
}

// Normalizer applies the configured steps. It is safe for concurrent use.
type Normalizer struct {
	cfg  Config
	form norm.Form

	atBracketed  *regexp.Regexp
	atSpelled    *regexp.Regexp
	dotBracketed *regexp.Regexp
	dotSpelled   *regexp.Regexp
	domainAfter  *regexp.Regexp
}

var (
	trunkPrefix = regexp.MustCompile(`(\+\d{1,3}) ?\(0\) ?`)
	digitGroups = regexp.MustCompile(`(?:\+|0)\d{1,4}(?:(?: ?[.\-/] ?| )\d{1,4}){2,}`)
	separator   = regexp.MustCompile(` ?[.\-/] ?| `)
	datePrefix  = regexp.MustCompile(`^\d{1,2}[.\-/]\d{1,2}[.\-/]\d{2,4}(?:\D|$)`)
)

// New builds a Normalizer. It fails only on invalid configuration.
func New(cfg Config) (*Normalizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	form, _ := ParseForm(cfg.Form)
	n := &Normalizer{cfg: cfg, form: form}

	at, dot := cfg.words()
	if len(at) > 0 {
		n.atBracketed, n.atSpelled = markerPatterns(at)
	}
	if len(dot) > 0 {
		n.dotBracketed, n.dotSpelled = markerPatterns(dot)
	}
	n.domainAfter = domainPattern(dot)
	return n, nil
}

// MustNew is New for configurations known to be valid.
func MustNew(cfg Config) *Normalizer {
	n, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return n
}

func markerPatterns(words []string) (bracketed, spelled *regexp.Regexp) {
	lower := make([]string, len(words))
	upper := make([]string, len(words))
	for i, w := range words {
		lower[i] = regexp.QuoteMeta(w)
		upper[i] = regexp.QuoteMeta(strings.ToUpper(w))
	}
	bracketed = regexp.MustCompile(bracketedForm(lower))
	spelled = regexp.MustCompile(` (?:` + strings.Join(upper, "|") + `) `)
	return bracketed, spelled
}

// bracketedForm matches "(at)", "[dot]", "{at}", "<dot>" and "-at-" / "_dot_".
func bracketedForm(quoted []string) string {
	words := `(?i:` + strings.Join(quoted, "|") + `)`
	return `(?:[ \t]*[\(\[\{<][ \t]*` + words + `[ \t]*[\)\]\}>][ \t]*|[-_]` + words + `[-_])`
}

// domainPattern matches the start of a domain: a label followed by a dot or a
// spelled-out dot marker and at least two letters, so numbers such as
// "5.00" or "10.30" never count as a domain.
func domainPattern(dotWords []string) *regexp.Regexp {
	alts := []string{`\.`}
	lower := make([]string, 0, len(dotWords))
	for _, w := range dotWords {
		alts = append(alts, ` `+regexp.QuoteMeta(strings.ToUpper(w))+` `)
		lower = append(lower, regexp.QuoteMeta(w))
	}
	if len(lower) > 0 {
		alts = append(alts, bracketedForm(lower))
	}
	return regexp.MustCompile(`^[\p{L}\p{N}\-]+(?:` + strings.Join(alts, "|") + `)\p{L}{2}`)
}

// Normalize runs every enabled step. It never fails: input it does not
// recognize passes through unchanged.
func (n *Normalizer) Normalize(original string) Result {
	b := newBuffer(original)

	if n.cfg.NormalizeUnicode {
		n.unicodeForm(b)
	}
	if n.cfg.NormalizeWhitespace {
		collapseWhitespace(b)
	}
	if n.cfg.HandlePhones {
		removeTrunkPrefix(b)
	}
	if n.cfg.HandleEmails {
		n.rewriteAt(b)
		n.rewriteDot(b)
	}
	if n.cfg.HandlePhones {
		collapseDigitGroups(b)
	}

	return Result{Original: original, Text: b.String(), IndexMap: b.idx}
}

// unicodeForm normalizes segment by segment so every output rune maps to the
// first original rune of its segment.
func (n *Normalizer) unicodeForm(b *buffer) {
	s := b.String()
	if n.form.IsNormalString(s) {
		return
	}

	runes := make([]rune, 0, len(b.runes))
	idx := make([]int, 0, len(b.idx))
	pos := 0
	for i := 0; i < len(s); {
		size := n.form.NextBoundaryInString(s[i:], true)
		if size <= 0 {
			_, size = utf8.DecodeRuneInString(s[i:])
		}
		seg := s[i : i+size]
		for _, r := range n.form.String(seg) {
			runes = append(runes, r)
			idx = append(idx, b.idx[pos])
		}
		pos += utf8.RuneCountInString(seg)
		i += size
	}
	idx = append(idx, b.idx[len(b.idx)-1])

	b.runes = runes
	b.idx = idx
}

func isZeroWidth(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff', '\u00ad':
		return true
	}
	return false
}

func isHorizontalSpace(r rune) bool {
	if r == ' ' || r == '\t' {
		return true
	}
	return r != '\n' && r != '\r' && r != '\v' && r != '\f' && unicode.Is(unicode.Zs, r)
}

// collapseWhitespace drops zero-width characters and turns each run of
// horizontal whitespace into one ASCII space mapped to the run's first rune.
func collapseWhitespace(b *buffer) {
	var edits []edit
	for i := 0; i < len(b.runes); {
		r := b.runes[i]
		switch {
		case isZeroWidth(r):
			edits = append(edits, edit{start: i, end: i + 1})
			i++
		case isHorizontalSpace(r):
			j := i + 1
			for j < len(b.runes) && (isHorizontalSpace(b.runes[j]) || isZeroWidth(b.runes[j])) {
				j++
			}
			if j-i > 1 || r != ' ' {
				edits = append(edits, edit{start: i, end: j, repl: []rune{' '}})
			}
			i = j
		default:
			i++
		}
	}
	b.apply(edits)
}

// removeTrunkPrefix rewrites "+41 (0)79" to "+41 79".
func removeTrunkPrefix(b *buffer) {
	s := b.String()
	table := newByteRuneIndex(s)
	var edits []edit
	for _, m := range trunkPrefix.FindAllStringSubmatchIndex(s, -1) {
		if m[1] >= len(s) || !isDigitByte(s[m[1]]) {
			continue
		}
		edits = append(edits, edit{start: table.rune(m[3]), end: table.rune(m[1]), repl: []rune{' '}})
	}
	b.apply(edits)
}

func (n *Normalizer) rewriteAt(b *buffer) {
	if n.atBracketed == nil {
		return
	}
	// An "at" marker only counts when a domain follows it.
	domainFollows := func(runes []rune, start, end int) bool {
		return n.domainAfter.MatchString(string(runes[end:lineEnd(runes, end, contextWindow)]))
	}
	rewriteMarker(b, n.atBracketed, '@', domainFollows)
	rewriteMarker(b, n.atSpelled, '@', domainFollows)
}

func (n *Normalizer) rewriteDot(b *buffer) {
	if n.dotBracketed == nil {
		return
	}
	nearAt := func(runes []rune, start, end int) bool {
		isAt := func(r rune) bool { return r == '@' }
		return lineHasBefore(runes, start, isAt) || lineHasAfter(runes, end, isAt)
	}
	rewriteMarker(b, n.dotBracketed, '.', nearAt)
	rewriteMarker(b, n.dotSpelled, '.', nearAt)
}

// rewriteMarker replaces marker matches that sit between two word characters
// and satisfy the extra context check.
func rewriteMarker(b *buffer, re *regexp.Regexp, repl rune, ok func(runes []rune, start, end int) bool) {
	s := b.String()
	table := newByteRuneIndex(s)
	var edits []edit
	for _, m := range re.FindAllStringIndex(s, -1) {
		start, end := table.rune(m[0]), table.rune(m[1])
		if start == 0 || end >= len(b.runes) {
			continue
		}
		if !isWordRune(b.runes[start-1]) || !isWordRune(b.runes[end]) {
			continue
		}
		if !ok(b.runes, start, end) {
			continue
		}
		edits = append(edits, edit{start: start, end: end, repl: []rune{repl}})
	}
	b.apply(edits)
}

// collapseDigitGroups rewrites phone-like digit groups to single-space separators.
func collapseDigitGroups(b *buffer) {
	s := b.String()
	table := newByteRuneIndex(s)
	var edits []edit
	for _, m := range digitGroups.FindAllStringIndex(s, -1) {
		token := s[m[0]:m[1]]
		if m[0] > 0 {
			prev, _ := utf8.DecodeLastRuneInString(s[:m[0]])
			if isWordRune(prev) || prev == '+' || prev == '.' {
				continue
			}
		}
		if m[1] < len(s) {
			next, _ := utf8.DecodeRuneInString(s[m[1]:])
			if isWordRune(next) {
				continue
			}
		}
		if digits := countDigits(token); digits < 9 || digits > 15 {
			continue
		}
		if datePrefix.MatchString(token) {
			continue
		}
		for _, sep := range separator.FindAllStringIndex(token, -1) {
			if token[sep[0]:sep[1]] == " " {
				continue
			}
			edits = append(edits, edit{
				start: table.rune(m[0] + sep[0]),
				end:   table.rune(m[0] + sep[1]),
				repl:  []rune{' '},
			})
		}
	}
	b.apply(edits)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigitByte(c byte) bool {
	return c >= '0' && c <= '9'
}

func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if isDigitByte(s[i]) {
			n++
		}
	}
	return n
}

func lineEnd(runes []rune, from, limit int) int {
	end := from
	for end < len(runes) && end-from < limit && runes[end] != '\n' {
		end++
	}
	return end
}

func lineHasAfter(runes []rune, from int, match func(rune) bool) bool {
	end := lineEnd(runes, from, contextWindow)
	for i := from; i < end; i++ {
		if match(runes[i]) {
			return true
		}
	}
	return false
}

func lineHasBefore(runes []rune, from int, match func(rune) bool) bool {
	for i := from - 1; i >= 0 && from-i <= contextWindow && runes[i] != '\n'; i-- {
		if match(runes[i]) {
			return true
		}
	}
	return false
}
