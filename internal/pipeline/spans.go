// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"cmp"
	"slices"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/normalizer"
	"entity-pipeline/internal/observability"
)

const (
	stageMap   = "pipeline.map"
	stageGuard = "pipeline.guard"
)

// toOriginal maps every entity (and the components of every ADDRESS) back to
// original offsets. Text becomes the original substring; the normalized one
// is kept in metadata.normalized_text.
func (p *Pipeline) toOriginal(norm normalizer.Result, original []rune, entities []detector.Entity, diags *observability.Diagnostics) []detector.Entity {
	if len(entities) == 0 {
		return nil
	}
	out := make([]detector.Entity, 0, len(entities))
	for _, e := range entities {
		mapped, ok := mapEntity(norm, original, e)
		if !ok {
			diags.Record(observability.Diagnostic{
				Kind:    observability.DiagnosticUnmapped,
				Stage:   stageMap,
				Message: "span could not be mapped to the original text",
				Type:    string(e.Type),
				Start:   e.Start,
				End:     e.End,
			})
			continue
		}
		out = append(out, mapped)
	}
	return out
}

func mapEntity(norm normalizer.Result, original []rune, e detector.Entity) (detector.Entity, bool) {
	start, end := norm.MapSpan(e.Start, e.End)
	if start < 0 || end > len(original) || start >= end {
		return e, false
	}

	e = e.Clone()
	e.SetMeta(detector.MetaNormalizedText, e.Text)
	e.Start, e.End = start, end
	e.Text = string(original[start:end])

	if comps := e.Components(); len(comps) > 0 {
		mapped := make([]detector.Entity, 0, len(comps))
		for _, c := range comps {
			if mc, ok := mapEntity(norm, original, c); ok {
				mapped = append(mapped, mc)
			}
		}
		e.Metadata[detector.MetaComponents] = mapped
	}
	return e, true
}

// guardDisjoint enforces that no two final entities overlap after mapping.
// Consolidation already guarantees this over the normalized text; spans
// widened by the mapping are the only way to violate it. Earlier entities win.
func guardDisjoint(entities []detector.Entity, diags *observability.Diagnostics) []detector.Entity {
	slices.SortStableFunc(entities, func(a, b detector.Entity) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})
	out := entities[:0]
	for _, e := range entities {
		if n := len(out); n > 0 && e.Start < out[n-1].End {
			diags.Record(observability.Diagnostic{
				Kind:    observability.DiagnosticOverlap,
				Stage:   stageGuard,
				Message: "entity overlaps its predecessor after offset mapping",
				Type:    string(e.Type),
				Start:   e.Start,
				End:     e.End,
			})
			continue
		}
		out = append(out, e)
	}
	return out
}
