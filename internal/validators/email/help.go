// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package email

import "entity-pipeline/internal/help"

// GetCheckInfo returns standardized information about the email check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "EMAIL",
		ShortDescription: "Confirms email addresses, including de-obfuscated ones",
		DetailedDescription: `The Email validator confirms candidate spans that contain an email address.

Candidates usually come from the normalized text, so obfuscated forms such as "john (at) mail (dot) ch" have already been rewritten to "john@mail.ch". When the candidate carries surrounding text the span is narrowed to the address itself.

Test domains and placeholder usernames lower the confidence but do not reject the address.`,

		Patterns: []string{
			"Standard format (e.g., user@domain.com)",
			"International letters (e.g., müller@beispiel.de)",
			"Sub-domains (e.g., first.last@mail.company.co.uk)",
		},

		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Valid Format", Description: "Exactly one @ with a non-empty local part", Weight: 30},
			{Name: "Valid TLD", Description: "Top-level domain of 2 to 24 letters", Weight: 15},
			{Name: "Not Test Email", Description: "Must not match known test patterns", Weight: 25},
			{Name: "Reasonable Length", Description: "Between 6 and 254 characters", Weight: 10},
			{Name: "No Consecutive Dots", Description: "Must not contain consecutive dots", Weight: 10},
		},

		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,

		Examples: []string{
			"entity-pipeline --file letter.txt --format json",
			"entity-pipeline --list-validators",
		},
	}
}
