// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package postalcode

import "entity-pipeline/internal/help"

// GetCheckInfo returns standardized information about the postal code check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "POSTAL_CODE",
		ShortDescription: "Checks postal codes used as address components",
		DetailedDescription: `The Postal Code validator checks that an address component is a plausible postal code.

Four digit codes must fall within the Swiss, Liechtenstein and Austrian ranges; five digit codes within the German, French and US ranges. A country prefix (CH-8001, D-10115, F-75001) must agree with the code length.`,

		Patterns: []string{
			"8001, CH-8001",
			"10115, D-10115",
			"75001, F-75001",
			"94105-1234",
		},

		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Plausible Range", Description: "Inside a national range", Weight: 50},
			{Name: "Country Prefix", Description: "Explicit country prefix", Weight: 20},
		},
	}
}
