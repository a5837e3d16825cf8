// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ssn

import (
	"regexp"
	"strconv"
	"strings"

	"entity-pipeline/internal/detector"
)

// Validator implements the detector.Validator interface for US Social Security Numbers.
type Validator struct {
	regex *regexp.Regexp

	positiveKeywords []string
	negativeKeywords []string

	testSSNs map[string]bool
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	return &Validator{
		regex: regexp.MustCompile(`\b(?:\d{3}-\d{2}-\d{4}|\d{3} \d{2} \d{4}|\d{9})\b`),
		positiveKeywords: []string{
			"ssn", "social security", "social security number", "ss#", "taxpayer",
		},
		negativeKeywords: []string{
			"phone", "tel", "fax", "order", "invoice", "zip", "test", "example",
		},
		testSSNs: map[string]bool{
			"123456789": true,
			"987654321": true,
			"123454321": true,
			"078051120": true, // Woolworth wallet card
			"219099999": true, // SSA advertisement
		},
	}
}

// EntityType implements detector.Validator.
func (v *Validator) EntityType() detector.Type {
	return detector.TypeSSN
}

// Validate applies the Social Security Administration numbering rules.
func (v *Validator) Validate(candidate string) detector.ValidationResult {
	loc := v.regex.FindStringIndex(candidate)
	if loc == nil {
		return detector.ValidationResult{}
	}
	match := candidate[loc[0]:loc[1]]
	confidence, checks := v.CalculateConfidence(match)

	result := detector.ValidationResult{
		Valid:      checks["format"] && checks["valid_area"] && checks["valid_group"] && checks["valid_serial"],
		Confidence: confidence / 100,
		Checks:     checks,
	}
	result.Narrow(candidate, loc[0], loc[1])
	return result
}

// CalculateConfidence scores an SSN candidate.
func (v *Validator) CalculateConfidence(match string) (float64, map[string]bool) {
	checks := map[string]bool{
		"format":          true,
		"valid_area":      false,
		"valid_group":     false,
		"valid_serial":    false,
		"not_test_number": true,
		"not_sequential":  true,
		"not_repeating":   true,
	}

	clean := cleanSSN(match)
	confidence := 70.0

	if len(clean) != 9 || !isDigits(clean) {
		checks["format"] = false
		return 0, checks
	}

	if isValidAreaNumber(clean[0:3]) {
		checks["valid_area"] = true
		confidence += 15
	} else {
		confidence -= 40
	}
	if clean[3:5] != "00" {
		checks["valid_group"] = true
	} else {
		confidence -= 30
	}
	if clean[5:9] != "0000" {
		checks["valid_serial"] = true
	} else {
		confidence -= 30
	}

	// Boost confidence for the canonical XXX-XX-XXXX layout
	if parts := strings.Split(match, "-"); len(parts) == 3 && len(parts[0]) == 3 && len(parts[1]) == 2 {
		confidence += 10
	}

	if v.testSSNs[clean] {
		confidence -= 25
		checks["not_test_number"] = false
	}
	if isSequential(clean) {
		confidence -= 15
		checks["not_sequential"] = false
	}
	if hasRepeatingPatterns(clean) {
		confidence -= 15
		checks["not_repeating"] = false
	}

	confidence = min(max(confidence, 0), 100)
	return confidence, checks
}

func cleanSSN(ssn string) string {
	return strings.ReplaceAll(strings.ReplaceAll(ssn, "-", ""), " ", "")
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isValidAreaNumber accepts 001-665 and 667-899.
func isValidAreaNumber(area string) bool {
	areaNum, err := strconv.Atoi(area)
	if err != nil {
		return false
	}
	return (areaNum >= 1 && areaNum <= 665) || (areaNum >= 667 && areaNum <= 899)
}

func isSequential(ssn string) bool {
	ascending, descending := true, true
	for i := 0; i < len(ssn)-1; i++ {
		curr, next := int(ssn[i]-'0'), int(ssn[i+1]-'0')
		if next != (curr+1)%10 {
			ascending = false
		}
		if next != (curr+9)%10 {
			descending = false
		}
	}
	return ascending || descending
}

func hasRepeatingPatterns(ssn string) bool {
	// 4+ consecutive identical digits
	for i := 0; i+3 < len(ssn); i++ {
		if ssn[i] == ssn[i+1] && ssn[i] == ssn[i+2] && ssn[i] == ssn[i+3] {
			return true
		}
	}
	return false
}
