// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package consolidate turns an overlapping candidate list into a span-disjoint
// entity list: overlaps are resolved, address components merged and repeated
// literals linked under one logical id.
package consolidate

import (
	"fmt"
	"math"
	"regexp"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/observability"
)

const stageSanitize = "consolidate.sanitize"

// Stats counts what each stage did.
type Stats struct {
	Input          int `json:"input" yaml:"input"`
	Malformed      int `json:"malformed" yaml:"malformed"`
	OverlapDropped int `json:"overlap_dropped" yaml:"overlap_dropped"`
	Addresses      int `json:"addresses" yaml:"addresses"`
	LinkedGroups   int `json:"linked_groups" yaml:"linked_groups"`
}

// Result is the pass output. Entities are span-disjoint, sorted by start and
// still expressed over the text given to Run.
type Result struct {
	Entities []detector.Entity
	// Retained holds merged address components when RetainComponents is set.
	// They overlap their ADDRESS and are never part of Entities.
	Retained    []detector.Entity
	Diagnostics []observability.Diagnostic
	Stats       Stats
}

type compiledGrammar struct {
	country string
	re      *regexp.Regexp
}

// Pass is an immutable, reusable consolidation pass. It is safe for
// concurrent use.
type Pass struct {
	priorities       map[detector.Type]int
	maxGap           int
	retainComponents bool
	aggregate        Aggregate
	grammars         []compiledGrammar
}

// New validates cfg and prepares a Pass.
func New(cfg Config) (*Pass, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pass{
		priorities:       make(map[detector.Type]int, len(cfg.Priorities)),
		maxGap:           cfg.Address.MaxGap,
		retainComponents: cfg.Address.RetainComponents,
		aggregate:        cfg.Address.Aggregate,
	}
	for t, v := range cfg.Priorities {
		p.priorities[t] = v
	}
	for _, g := range cfg.Address.Grammars {
		p.grammars = append(p.grammars, compiledGrammar{country: g.Country, re: regexp.MustCompile(g.Pattern)})
	}
	return p, nil
}

// Priority returns the configured rank of t.
func (p *Pass) Priority(t detector.Type) int {
	return p.priorities[t]
}

// Run consolidates entities detected over text. It never fails: malformed
// candidates are dropped and reported in Result.Diagnostics. The input slice
// and its entities are not modified.
func (p *Pass) Run(text string, entities []detector.Entity) Result {
	runes := []rune(text)
	res := Result{Stats: Stats{Input: len(entities)}}

	candidates := p.sanitize(runes, entities, &res)
	kept := p.resolveOverlaps(candidates)
	res.Stats.OverlapDropped = len(candidates) - len(kept)

	merged, retained := p.mergeAddresses(runes, kept)
	res.Stats.Addresses = countType(merged, detector.TypeAddress) - countType(kept, detector.TypeAddress)

	res.Stats.LinkedGroups = link(merged, retained)
	res.Entities = merged
	res.Retained = retained
	return res
}

func countType(entities []detector.Entity, t detector.Type) int {
	n := 0
	for _, e := range entities {
		if e.Type == t {
			n++
		}
	}
	return n
}

// sanitize drops candidates with unusable spans or types, clamps
// confidence and rewrites Text from the span it covers.
func (p *Pass) sanitize(runes []rune, entities []detector.Entity, res *Result) []detector.Entity {
	out := make([]detector.Entity, 0, len(entities))
	for _, in := range entities {
		if reason := spanProblem(in, len(runes)); reason != "" {
			res.Stats.Malformed++
			res.Diagnostics = append(res.Diagnostics, observability.Diagnostic{
				Kind:       observability.DiagnosticMalformed,
				Stage:      stageSanitize,
				Message:    "dropped candidate: " + reason,
				Type:       string(in.Type),
				Start:      in.Start,
				End:        in.End,
				Recognizer: recognizerOf(in),
			})
			continue
		}
		if _, err := detector.ParseType(string(in.Type)); err != nil {
			res.Stats.Malformed++
			res.Diagnostics = append(res.Diagnostics, observability.Diagnostic{
				Kind:       observability.DiagnosticUnknownType,
				Stage:      stageSanitize,
				Message:    "dropped candidate: " + err.Error(),
				Type:       string(in.Type),
				Start:      in.Start,
				End:        in.End,
				Recognizer: recognizerOf(in),
			})
			continue
		}

		e := in.Clone()
		e.Text = string(runes[e.Start:e.End])
		switch {
		case math.IsNaN(e.Confidence) || e.Confidence < 0:
			e.Confidence = 0
		case e.Confidence > 1:
			e.Confidence = 1
		}
		out = append(out, e)
	}
	return out
}

func spanProblem(e detector.Entity, textLen int) string {
	switch {
	case e.Start < 0 || e.End > textLen:
		return fmt.Sprintf("span [%d,%d) outside text of %d characters", e.Start, e.End, textLen)
	case e.Start > e.End:
		return fmt.Sprintf("inverted span [%d,%d)", e.Start, e.End)
	case e.Start == e.End:
		return fmt.Sprintf("empty span at %d", e.Start)
	}
	return ""
}

func recognizerOf(e detector.Entity) string {
	s, _ := e.Metadata[detector.MetaRecognizer].(string)
	return s
}
