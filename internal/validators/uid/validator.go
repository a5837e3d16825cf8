// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package uid validates Swiss enterprise identification numbers (CHE-XXX.XXX.XXX).
package uid

import (
	"regexp"

	"entity-pipeline/internal/detector"
)

// weights of the mod-11 check over the first eight digits
var weights = [8]int{5, 4, 3, 2, 7, 6, 5, 4}

// Validator implements the detector.Validator interface for UID numbers.
type Validator struct {
	regex *regexp.Regexp

	positiveKeywords []string
	negativeKeywords []string
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	return &Validator{
		regex: regexp.MustCompile(`(?i)\bCHE[- ]?\d{3}[. ]?\d{3}[. ]?\d{3}(?:[ ]?(?:MWST|TVA|IVA|HR|RC|RI))?\b`),
		positiveKeywords: []string{
			"uid", "ide", "mwst", "tva", "iva", "handelsregister", "registre du commerce",
		},
		negativeKeywords: []string{"test", "example", "muster"},
	}
}

// EntityType implements detector.Validator.
func (v *Validator) EntityType() detector.Type {
	return detector.TypeUIDNumber
}

// Validate requires the CHE prefix and a valid mod-11 check digit.
func (v *Validator) Validate(candidate string) detector.ValidationResult {
	loc := v.regex.FindStringIndex(candidate)
	if loc == nil {
		return detector.ValidationResult{}
	}
	match := candidate[loc[0]:loc[1]]
	confidence, checks := v.CalculateConfidence(match)

	result := detector.ValidationResult{
		Valid:      checks["length"] && checks["check_digit"],
		Confidence: confidence / 100,
		Checks:     checks,
	}
	result.Narrow(candidate, loc[0], loc[1])
	return result
}

// CalculateConfidence scores a UID candidate.
func (v *Validator) CalculateConfidence(match string) (float64, map[string]bool) {
	checks := map[string]bool{
		"length":      false,
		"check_digit": false,
	}

	var digits []int
	for i := 0; i < len(match); i++ {
		if c := match[i]; c >= '0' && c <= '9' {
			digits = append(digits, int(c-'0'))
		}
	}
	if len(digits) != 9 {
		return 0, checks
	}
	checks["length"] = true

	if CheckDigit(digits[:8]) == digits[8] {
		checks["check_digit"] = true
		return 95, checks
	}
	return 0, checks
}

// CheckDigit computes the mod-11 check digit of the first eight UID digits.
// It returns -1 when no valid check digit exists.
func CheckDigit(digits []int) int {
	if len(digits) != 8 {
		return -1
	}
	sum := 0
	for i, d := range digits {
		sum += d * weights[i]
	}
	check := 11 - sum%11
	switch check {
	case 11:
		return 0
	case 10:
		return -1
	}
	return check
}
