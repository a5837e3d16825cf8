// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package avs validates Swiss social insurance numbers (AHV/AVS, 756.XXXX.XXXX.XX).
package avs

import (
	"regexp"

	"entity-pipeline/internal/detector"
)

// Validator implements the detector.Validator interface for AVS numbers.
type Validator struct {
	regex *regexp.Regexp

	positiveKeywords []string
	negativeKeywords []string
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	return &Validator{
		regex: regexp.MustCompile(`\b756[. ]?\d{4}[. ]?\d{4}[. ]?\d{2}\b`),
		positiveKeywords: []string{
			"avs", "ahv", "avs-nr", "ahv-nr", "sozialversicherung", "assurance", "vieillesse",
		},
		negativeKeywords: []string{"test", "example", "muster"},
	}
}

// EntityType implements detector.Validator.
func (v *Validator) EntityType() detector.Type {
	return detector.TypeAVSNumber
}

// Validate requires the 756 country prefix and a valid EAN-13 check digit.
func (v *Validator) Validate(candidate string) detector.ValidationResult {
	loc := v.regex.FindStringIndex(candidate)
	if loc == nil {
		return detector.ValidationResult{}
	}
	match := candidate[loc[0]:loc[1]]
	confidence, checks := v.CalculateConfidence(match)

	result := detector.ValidationResult{
		Valid:      checks["prefix"] && checks["length"] && checks["check_digit"],
		Confidence: confidence / 100,
		Checks:     checks,
	}
	result.Narrow(candidate, loc[0], loc[1])
	return result
}

// CalculateConfidence scores an AVS number candidate.
func (v *Validator) CalculateConfidence(match string) (float64, map[string]bool) {
	checks := map[string]bool{
		"prefix":      false,
		"length":      false,
		"check_digit": false,
		"dotted":      false,
	}

	digits := make([]byte, 0, 13)
	dots := 0
	for i := 0; i < len(match); i++ {
		switch c := match[i]; {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case c == '.':
			dots++
		}
	}

	confidence := 30.0
	if len(digits) == 13 {
		checks["length"] = true
		confidence += 10
	}
	if len(digits) >= 3 && string(digits[:3]) == "756" {
		checks["prefix"] = true
		confidence += 10
	}
	if checks["length"] && EAN13Valid(digits) {
		checks["check_digit"] = true
		confidence += 45
	} else {
		confidence = 0
	}
	if dots == 3 {
		checks["dotted"] = true
		confidence += 5
	}

	confidence = min(max(confidence, 0), 100)
	return confidence, checks
}

// EAN13Valid verifies the last of 13 digits against the EAN-13 weighting (1,3,1,3,...).
func EAN13Valid(digits []byte) bool {
	if len(digits) != 13 {
		return false
	}
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(digits[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10-sum%10)%10 == int(digits[12]-'0')
}
