// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package creditcard

import "entity-pipeline/internal/help"

// GetCheckInfo returns standardized information about the credit card check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "CREDIT_CARD",
		ShortDescription: "Confirms payment card numbers with the Luhn checksum",
		DetailedDescription: `The Credit Card validator confirms card numbers from the major networks.

A candidate is accepted only when it holds 14 to 19 digits, optionally grouped by spaces or dashes, and passes the Luhn checksum. The issuing network is derived from the first six digits (BIN ranges) and raises confidence when known.

Repeating, alternating or sequential digit runs and published test numbers keep the confidence low.`,

		Patterns: []string{
			"XXXX XXXX XXXX XXXX or XXXX-XXXX-XXXX-XXXX",
			"American Express: XXXX XXXXXX XXXXX",
			"Unseparated 14 to 19 digit numbers",
		},

		SupportedFormats: []string{
			"Visa, MasterCard, American Express, Discover",
			"JCB, Diners Club, UnionPay, Maestro",
		},

		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Luhn", Description: "Checksum must validate", Weight: 40},
			{Name: "Length", Description: "14 to 19 digits", Weight: 40},
			{Name: "Vendor", Description: "BIN belongs to a known network", Weight: 15},
			{Name: "Not Repeating", Description: "No repeating or sequential pattern", Weight: 35},
			{Name: "Entropy", Description: "Digit variety", Weight: 10},
		},

		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,

		Examples: []string{
			"entity-pipeline --file payments.txt --format json",
		},
	}
}
