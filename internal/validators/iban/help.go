// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package iban

import "entity-pipeline/internal/help"

// GetCheckInfo returns standardized information about the IBAN check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "IBAN",
		ShortDescription: "Confirms International Bank Account Numbers",
		DetailedDescription: `The IBAN validator confirms account numbers with the ISO 7064 mod 97-10 checksum.

For countries with a registered length (CH and LI 21, DE 22, FR 27, AT 20, ...) the length must match exactly. Both compact and printed (groups of four) forms are accepted.`,

		Patterns: []string{
			"CH93 0076 2011 6238 5295 7",
			"DE89370400440532013000",
		},

		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Checksum", Description: "mod 97 remainder equals 1", Weight: 35},
			{Name: "Length", Description: "Registered length for the country", Weight: 15},
			{Name: "Country", Description: "Known country code", Weight: 10},
		},

		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,
	}
}
