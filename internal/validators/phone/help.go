// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import "entity-pipeline/internal/help"

// GetCheckInfo returns standardized information about the phone check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "PHONE",
		ShortDescription: "Confirms national and international phone numbers",
		DetailedDescription: `The Phone validator confirms candidates holding a dialable phone number.

International numbers (+41, 0041) must start with a known country code. National numbers with a trunk zero must carry 9 to 12 digits, and numbers without any prefix are accepted only in the 10 digit North American plan. The bracketed trunk zero of "+41 (0)79 ..." is ignored.

Test numbers, ascending or descending runs and long repeated digits lower the confidence; a run of six identical digits rejects the candidate.`,

		Patterns: []string{
			"International: +41 79 123 45 67, 0041 79 123 45 67",
			"Trunk prefix: +41 (0)79 123 45 67",
			"National: 079 123 45 67, 030 12345678",
			"North American: (555) 123-4567",
		},

		SupportedFormats: []string{
			"Separators: spaces, dashes, dots, slashes, parentheses",
			"Up to 15 digits (E.164)",
		},

		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Length", Description: "7 to 15 digits", Weight: 40},
			{Name: "Country Format", Description: "Known country code or national layout", Weight: 20},
			{Name: "Not Test Number", Description: "Not a reserved or well-known fake number", Weight: 30},
			{Name: "Not Repeating", Description: "No run of six identical digits", Weight: 30},
		},

		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,

		Examples: []string{
			"entity-pipeline --file contacts.txt --language de",
		},
	}
}
