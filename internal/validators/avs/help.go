// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package avs

import "entity-pipeline/internal/help"

// GetCheckInfo returns standardized information about the AVS number check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "AVS_NUMBER",
		ShortDescription: "Confirms Swiss social insurance numbers (AHV/AVS)",
		DetailedDescription: `The AVS validator confirms the 13 digit Swiss social insurance number.

The number starts with the country prefix 756 and ends with an EAN-13 check digit. The printed form separates the groups with dots (756.XXXX.XXXX.XX).`,

		Patterns: []string{
			"756.9217.0769.85",
			"7569217076985",
		},

		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Check Digit", Description: "EAN-13 check digit", Weight: 45},
			{Name: "Prefix", Description: "Country prefix 756", Weight: 10},
			{Name: "Length", Description: "13 digits", Weight: 10},
		},

		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,
	}
}
