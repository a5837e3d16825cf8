// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package iban validates International Bank Account Numbers (ISO 13616).
package iban

import (
	"regexp"
	"strings"

	"entity-pipeline/internal/detector"
)

// Validator implements the detector.Validator interface for IBANs.
type Validator struct {
	regex *regexp.Regexp

	// Registered IBAN length per country
	lengths map[string]int

	positiveKeywords []string
	negativeKeywords []string
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	return &Validator{
		regex: regexp.MustCompile(`\b[A-Za-z]{2}\d{2}(?: ?[A-Z0-9]{1,4}){3,8}\b`),
		lengths: map[string]int{
			"AT": 20, "BE": 16, "CH": 21, "CZ": 24, "DE": 22, "DK": 18,
			"ES": 24, "FI": 18, "FR": 27, "GB": 22, "IE": 22, "IT": 27,
			"LI": 21, "LU": 20, "MC": 27, "NL": 18, "NO": 15, "PL": 28,
			"PT": 25, "SE": 24,
		},
		positiveKeywords: []string{"iban", "bank", "account", "konto", "compte", "bic", "swift"},
		negativeKeywords: []string{"test", "example", "sample"},
	}
}

// EntityType implements detector.Validator.
func (v *Validator) EntityType() detector.Type {
	return detector.TypeIBAN
}

// Validate requires a known country length and a valid mod-97 checksum.
func (v *Validator) Validate(candidate string) detector.ValidationResult {
	for _, loc := range v.regex.FindAllStringIndex(candidate, -1) {
		// A trailing word can be swallowed as a last group; retry without it
		for end := loc[1]; end > loc[0]; end = strings.LastIndexByte(candidate[loc[0]:end], ' ') + loc[0] {
			match := candidate[loc[0]:end]
			confidence, checks := v.CalculateConfidence(match)
			if !checks["checksum"] {
				if !strings.Contains(match, " ") {
					break
				}
				continue
			}
			result := detector.ValidationResult{
				Valid:      checks["country"] && checks["length"],
				Confidence: confidence / 100,
				Checks:     checks,
			}
			result.Narrow(candidate, loc[0], end)
			return result
		}
	}
	return detector.ValidationResult{}
}

// CalculateConfidence scores an IBAN candidate.
func (v *Validator) CalculateConfidence(match string) (float64, map[string]bool) {
	checks := map[string]bool{
		"country":  false,
		"length":   false,
		"checksum": false,
		"grouping": true,
	}

	compact := Compact(match)
	if len(compact) < 5 {
		return 0, checks
	}
	confidence := 40.0

	if want, ok := v.lengths[compact[:2]]; ok {
		checks["country"] = true
		confidence += 10
		if len(compact) == want {
			checks["length"] = true
			confidence += 15
		}
	} else if len(compact) >= 15 && len(compact) <= 34 {
		checks["length"] = true
	}

	if Checksum(compact) == 1 {
		checks["checksum"] = true
		confidence += 35
	} else {
		confidence = 0
	}

	// Printed IBANs come in groups of four
	if strings.Contains(match, " ") {
		for i, group := range strings.Fields(match) {
			if i < len(strings.Fields(match))-1 && len(group) != 4 {
				checks["grouping"] = false
				confidence -= 10
				break
			}
		}
	}

	confidence = min(max(confidence, 0), 100)
	return confidence, checks
}

// Compact strips separators and upper-cases an IBAN.
func Compact(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Checksum returns the ISO 7064 mod 97-10 remainder of a compact IBAN; valid
// IBANs yield 1. Invalid characters yield -1.
func Checksum(compact string) int {
	if len(compact) < 4 {
		return -1
	}
	rearranged := compact[4:] + compact[:4]
	rem := 0
	for i := 0; i < len(rearranged); i++ {
		c := rearranged[i]
		switch {
		case c >= '0' && c <= '9':
			rem = (rem*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			rem = (rem*100 + int(c-'A') + 10) % 97
		default:
			return -1
		}
	}
	return rem
}
