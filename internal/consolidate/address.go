// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package consolidate

import (
	"fmt"
	"math"
	"strings"

	"entity-pipeline/internal/detector"
)

// componentLetter returns the grammar letter of an address component.
func componentLetter(t detector.Type) byte {
	switch t {
	case detector.TypeStreetName:
		return 'S'
	case detector.TypeStreetNumber:
		return 'N'
	case detector.TypePostalCode:
		return 'P'
	case detector.TypeCity:
		return 'C'
	case detector.TypeCountry:
		return 'K'
	}
	return '?'
}

// mergeAddresses replaces every grammatical run of nearby components with one
// ADDRESS entity. entities must be disjoint and sorted by start. Components
// that do not form an address stay as they are.
func (p *Pass) mergeAddresses(runes []rune, entities []detector.Entity) (out, retained []detector.Entity) {
	if len(p.grammars) == 0 {
		return entities, nil
	}

	nextID := 1
	for _, e := range entities {
		if e.Type == detector.TypeAddress {
			nextID++
		}
	}

	out = make([]detector.Entity, 0, len(entities))
	for i := 0; i < len(entities); {
		if !entities[i].Type.IsAddressComponent() {
			out = append(out, entities[i])
			i++
			continue
		}
		j := i + 1
		for j < len(entities) && entities[j].Type.IsAddressComponent() && p.adjacent(runes, entities[j-1], entities[j]) {
			j++
		}
		merged, kept := p.mergeRun(runes, entities[i:j], &nextID)
		out = append(out, merged...)
		retained = append(retained, kept...)
		i = j
	}
	return out, retained
}

// adjacent reports whether b may continue an address that a belongs to.
func (p *Pass) adjacent(runes []rune, a, b detector.Entity) bool {
	if b.Start-a.End > p.maxGap {
		return false
	}
	return !paragraphBreak(runes[a.End:b.Start])
}

// paragraphBreak reports whether gap contains a blank line.
func paragraphBreak(gap []rune) bool {
	newline := false
	for _, r := range gap {
		switch r {
		case '\n':
			if newline {
				return true
			}
			newline = true
		case ' ', '\t', '\r':
		default:
			newline = false
		}
	}
	return false
}

// mergeRun scans a run of adjacent components left to right, each time taking
// the longest prefix some grammar accepts.
func (p *Pass) mergeRun(runes []rune, run []detector.Entity, nextID *int) (out, retained []detector.Entity) {
	letters := make([]byte, len(run))
	for i, e := range run {
		letters[i] = componentLetter(e.Type)
	}

	for k := 0; k < len(run); {
		end, country := p.longestMatch(string(letters), k)
		if end < 0 {
			out = append(out, run[k])
			k++
			continue
		}

		id := fmt.Sprintf("addr-%d", *nextID)
		*nextID++
		addr, comps := p.synthesize(runes, run[k:end], id, country)
		out = append(out, addr)
		if p.retainComponents {
			retained = append(retained, comps...)
		}
		k = end
	}
	return out, retained
}

func (p *Pass) longestMatch(letters string, from int) (int, string) {
	for end := len(letters); end >= from+2; end-- {
		seq := letters[from:end]
		if !strings.ContainsRune(seq, 'S') || !strings.ContainsAny(seq, "PC") {
			continue
		}
		for _, g := range p.grammars {
			if g.re.MatchString(seq) {
				return end, g.country
			}
		}
	}
	return -1, ""
}

func (p *Pass) synthesize(runes []rune, comps []detector.Entity, id, country string) (detector.Entity, []detector.Entity) {
	first, last := comps[0], comps[len(comps)-1]
	addr := detector.Entity{
		Type:       detector.TypeAddress,
		Text:       string(runes[first.Start:last.End]),
		Start:      first.Start,
		End:        last.End,
		Confidence: p.aggregateConfidence(comps),
		Source:     detector.SourceConsolidated,
	}

	parts := make([]detector.Entity, len(comps))
	for i, c := range comps {
		parts[i] = c.Clone()
		parts[i].SetMeta(detector.MetaAddressRef, id)
	}
	addr.SetMeta(detector.MetaComponents, parts)
	addr.SetMeta(detector.MetaAddressID, id)
	addr.SetMeta(detector.MetaGrammar, country)

	if !p.retainComponents {
		return addr, nil
	}
	kept := make([]detector.Entity, len(parts))
	for i, c := range parts {
		kept[i] = c.Clone()
	}
	return addr, kept
}

func (p *Pass) aggregateConfidence(comps []detector.Entity) float64 {
	if p.aggregate == AggregateWeightedAverage {
		var sum, weight float64
		for _, c := range comps {
			w := float64(c.Len())
			sum += c.Confidence * w
			weight += w
		}
		if weight == 0 {
			return 0
		}
		return sum / weight
	}

	lowest := math.Inf(1)
	for _, c := range comps {
		lowest = min(lowest, c.Confidence)
	}
	return lowest
}
