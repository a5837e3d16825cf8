// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package date

import "entity-pipeline/internal/help"

// GetCheckInfo returns standardized information about the date check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "DATE",
		ShortDescription: "Confirms calendar dates",
		DetailedDescription: `The Date validator accepts candidates holding a real calendar date.

Numeric dates are read day first (31.12.1980, 31/12/1980) and fall back to month first when the day-first reading is impossible. ISO dates (1980-12-31) and written dates in English, German, French and Italian ("2 January 1980", "2. Januar 1980", "2 janvier 1980", "January 2, 1980") are supported. Two digit years pivot at 50.`,

		Patterns: []string{
			"DD.MM.YYYY, DD/MM/YYYY, DD-MM-YY",
			"YYYY-MM-DD",
			"D Month YYYY, Month D, YYYY",
		},

		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Calendar", Description: "Day exists in the month", Weight: 60},
			{Name: "Plausible Year", Description: "Year between 1900 and next year", Weight: 25},
		},

		PositiveKeywords: v.positiveKeywords,
	}
}
