// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pattern implements a configurable regular-expression recognizer.
package pattern

import (
	"regexp"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	mapset "github.com/deckarep/golang-set/v2"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/recognizers/remote"
)

// Rule is one pattern. Group selects a capture group as the entity span;
// zero means the whole match.
type Rule struct {
	Name       string        `yaml:"name"`
	Type       detector.Type `yaml:"type"`
	Pattern    string        `yaml:"pattern"`
	Group      int           `yaml:"group"`
	Confidence float64       `yaml:"confidence"`
	Languages  []string      `yaml:"languages"`
}

type compiledRule struct {
	Rule
	re        *regexp.Regexp
	languages mapset.Set[string]
}

// Recognizer applies its rules to normalized text and emits local-pattern
// candidates.
type Recognizer struct {
	name  string
	rules []compiledRule
	types []detector.Type
	langs []string
}

// New compiles rules. Every rule must have a known type, a compilable
// pattern, an existing capture group and a confidence in [0,1].
func New(name string, rules []Rule) (*Recognizer, error) {
	r := &Recognizer{name: name}
	seenType := map[detector.Type]bool{}
	seenLang := map[string]bool{}
	allLanguages := false

	for i, rule := range rules {
		if _, err := detector.ParseType(string(rule.Type)); err != nil {
			return nil, errors.Wrapf(err, "rule %d (%s)", i, rule.Name)
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "rule %d (%s)", i, rule.Name)
		}
		if rule.Group < 0 || rule.Group > re.NumSubexp() {
			return nil, errors.Newf("rule %d (%s): group %d out of range", i, rule.Name, rule.Group)
		}
		if rule.Confidence == 0 {
			rule.Confidence = 0.5
		}
		if rule.Confidence < 0 || rule.Confidence > 1 {
			return nil, errors.Newf("rule %d (%s): confidence %g outside [0,1]", i, rule.Name, rule.Confidence)
		}

		r.rules = append(r.rules, compiledRule{Rule: rule, re: re, languages: remote.LanguageSet(rule.Languages)})
		if !seenType[rule.Type] {
			seenType[rule.Type] = true
			r.types = append(r.types, rule.Type)
		}
		if len(rule.Languages) == 0 {
			allLanguages = true
		}
		for _, l := range rule.Languages {
			if p := remote.PrimaryLanguage(l); p != "" && !seenLang[p] {
				seenLang[p] = true
				r.langs = append(r.langs, p)
			}
		}
	}
	if allLanguages {
		r.langs = nil
	}
	return r, nil
}

func (r *Recognizer) Name() string                       { return r.name }
func (r *Recognizer) SupportedEntities() []detector.Type { return append([]detector.Type(nil), r.types...) }
func (r *Recognizer) SupportedLanguages() []string       { return append([]string(nil), r.langs...) }

// Analyze returns one candidate per rule match. Candidates may overlap.
func (r *Recognizer) Analyze(text string, language string) []detector.Entity {
	var out []detector.Entity
	var runeAt []int

	for _, rule := range r.rules {
		if !remote.SupportsLanguage(rule.languages, language) {
			continue
		}
		for _, m := range rule.re.FindAllStringSubmatchIndex(text, -1) {
			bs, be := m[2*rule.Group], m[2*rule.Group+1]
			if bs < 0 || be <= bs {
				continue
			}
			if runeAt == nil {
				runeAt = runeIndex(text)
			}
			e := detector.Entity{
				Type:       rule.Type,
				Text:       text[bs:be],
				Start:      runeAt[bs],
				End:        runeAt[be],
				Confidence: rule.Confidence,
				Source:     detector.SourceLocalPattern,
			}
			e.SetMeta(detector.MetaRecognizer, r.name)
			out = append(out, e)
		}
	}
	return out
}

// runeIndex maps every byte offset of text that starts a rune, plus
// len(text), to its rune offset.
func runeIndex(text string) []int {
	idx := make([]int, len(text)+1)
	n := 0
	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		for j := range size {
			idx[i+j] = n
		}
		i += size
		n++
	}
	idx[len(text)] = n
	return idx
}
