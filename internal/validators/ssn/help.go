// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ssn

import "entity-pipeline/internal/help"

// GetCheckInfo returns standardized information about the SSN check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "SSN",
		ShortDescription: "Confirms US Social Security Numbers",
		DetailedDescription: `The SSN validator applies the Social Security Administration numbering rules.

Area numbers 000, 666 and 900-999 are never issued, nor are group 00 or serial 0000; candidates using them are rejected. Published sample numbers, sequences and repeated digits lower the confidence.`,

		Patterns: []string{
			"XXX-XX-XXXX (standard hyphenated format)",
			"XXX XX XXXX (space-separated format)",
			"XXXXXXXXX (no separators)",
		},

		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Valid Area", Description: "001-665 or 667-899", Weight: 40},
			{Name: "Valid Group", Description: "Group is not 00", Weight: 30},
			{Name: "Valid Serial", Description: "Serial is not 0000", Weight: 30},
			{Name: "Not Test Number", Description: "Not a published sample number", Weight: 25},
		},

		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,

		Examples: []string{
			"entity-pipeline --file hr-export.txt --language en",
		},
	}
}
