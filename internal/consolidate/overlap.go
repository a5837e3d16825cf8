// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package consolidate

import (
	"cmp"
	"slices"

	"entity-pipeline/internal/detector"
)

// compareRank orders a before b when a should win an overlap: higher type
// priority, then longer span, then higher confidence, then higher recognizer
// priority. Earlier start and type name make the order total.
func (p *Pass) compareRank(a, b detector.Entity) int {
	if c := cmp.Compare(p.priorities[b.Type], p.priorities[a.Type]); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Len(), a.Len()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
		return c
	}
	if c := cmp.Compare(b.RecognizerPriority(), a.RecognizerPriority()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Start, b.Start); c != 0 {
		return c
	}
	return cmp.Compare(a.Type, b.Type)
}

// resolveOverlaps selects a span-disjoint subset greedily in rank order.
// Losers are discarded. The result is sorted by start.
func (p *Pass) resolveOverlaps(candidates []detector.Entity) []detector.Entity {
	order := slices.Clone(candidates)
	slices.SortStableFunc(order, p.compareRank)

	kept := make([]detector.Entity, 0, len(order))
	for _, e := range order {
		// kept[:i] start before e, kept[i:] start at or after it.
		i, _ := slices.BinarySearchFunc(kept, e.Start, func(k detector.Entity, start int) int {
			return cmp.Compare(k.Start, start)
		})
		if i > 0 && kept[i-1].End > e.Start {
			continue
		}
		if i < len(kept) && kept[i].Start < e.End {
			continue
		}
		kept = slices.Insert(kept, i, e)
	}
	return kept
}
