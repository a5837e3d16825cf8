// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package consolidate

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"entity-pipeline/internal/detector"
)

// LiteralKey is the form two mentions must share to be linked: case folded
// with whitespace runs collapsed.
func LiteralKey(text string) string {
	return literalKey(cases.Fold(), text)
}

func literalKey(fold cases.Caser, text string) string {
	return strings.Join(strings.Fields(fold.String(text)), " ")
}

// link assigns logicalId TYPE_n to every entity, equal for entities sharing
// type and literal key. n counts distinct literals per type in order of
// first appearance. It returns the number of distinct groups.
func link(lists ...[]detector.Entity) int {
	fold := cases.Fold()
	ids := make(map[string]string)
	counters := make(map[detector.Type]int)

	for _, list := range lists {
		for i := range list {
			e := &list[i]
			key := string(e.Type) + "\x00" + literalKey(fold, e.Text)
			id, ok := ids[key]
			if !ok {
				counters[e.Type]++
				id = fmt.Sprintf("%s_%d", e.Type, counters[e.Type])
				ids[key] = id
			}
			e.SetMeta(detector.MetaLogicalID, id)
		}
	}
	return len(ids)
}
