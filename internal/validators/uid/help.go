// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package uid

import "entity-pipeline/internal/help"

// GetCheckInfo returns standardized information about the UID check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "UID_NUMBER",
		ShortDescription: "Confirms Swiss enterprise identification numbers",
		DetailedDescription: `The UID validator confirms Swiss business identifiers of the form CHE-XXX.XXX.XXX, optionally followed by a register suffix (MWST, TVA, IVA, HR).

The ninth digit is a mod-11 check digit over the first eight digits weighted 5,4,3,2,7,6,5,4.`,

		Patterns: []string{
			"CHE-116.281.710",
			"CHE-116.281.710 MWST",
		},

		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Check Digit", Description: "mod-11 check digit", Weight: 95},
		},

		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,
	}
}
