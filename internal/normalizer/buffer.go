// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package normalizer

import (
	"sort"
	"unicode/utf8"
)

// buffer is the working text of a normalization run. idx has one entry per
// rune plus a sentinel, each holding the original rune index it came from.
type buffer struct {
	runes []rune
	idx   []int
}

func newBuffer(original string) *buffer {
	runes := []rune(original)
	idx := make([]int, len(runes)+1)
	for i := range idx {
		idx[i] = i
	}
	return &buffer{runes: runes, idx: idx}
}

func (b *buffer) String() string {
	return string(b.runes)
}

// edit replaces runes [start, end) with repl. Every inserted rune maps to the
// original index of the first replaced rune.
type edit struct {
	start int
	end   int
	repl  []rune
}

// apply rewrites the buffer with non-overlapping edits. Overlapping edits are
// skipped, keeping the earliest.
func (b *buffer) apply(edits []edit) {
	if len(edits) == 0 {
		return
	}
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	runes := make([]rune, 0, len(b.runes))
	idx := make([]int, 0, len(b.idx))
	pos := 0
	for _, e := range edits {
		if e.start < pos || e.end > len(b.runes) || e.start > e.end {
			continue
		}
		runes = append(runes, b.runes[pos:e.start]...)
		idx = append(idx, b.idx[pos:e.start]...)
		for _, r := range e.repl {
			runes = append(runes, r)
			idx = append(idx, b.idx[e.start])
		}
		pos = e.end
	}
	runes = append(runes, b.runes[pos:]...)
	idx = append(idx, b.idx[pos:]...)

	b.runes = runes
	b.idx = idx
}

// byteRuneIndex maps byte offsets of a string to rune offsets.
type byteRuneIndex []int

func newByteRuneIndex(s string) byteRuneIndex {
	table := make([]int, len(s)+1)
	r := 0
	for i := 0; i < len(s); {
		_, size := utf8.DecodeRuneInString(s[i:])
		for k := 0; k < size; k++ {
			table[i+k] = r
		}
		i += size
		r++
	}
	table[len(s)] = r
	return table
}

func (t byteRuneIndex) rune(byteOffset int) int {
	return t[byteOffset]
}
