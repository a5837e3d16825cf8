// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package postalcode checks the plausibility of postal codes used in address parsing.
package postalcode

import (
	"regexp"
	"strconv"
	"strings"

	"entity-pipeline/internal/detector"
)

// Validator implements the detector.Validator interface for postal codes.
type Validator struct {
	regex *regexp.Regexp
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	return &Validator{
		// Optional country prefix (CH-8001, D-10115, F-75001, A-1010), US ZIP+4
		regex: regexp.MustCompile(`(?i)\b(?:(CH|FL|D|DE|F|FR|A|AT)-)?(\d{4,5})(?:-(\d{4}))?\b`),
	}
}

// EntityType implements detector.Validator.
func (v *Validator) EntityType() detector.Type {
	return detector.TypePostalCode
}

// Validate accepts codes inside a plausible national range.
func (v *Validator) Validate(candidate string) detector.ValidationResult {
	m := v.regex.FindStringSubmatchIndex(candidate)
	if m == nil {
		return detector.ValidationResult{}
	}
	confidence, checks := v.CalculateConfidence(candidate[m[0]:m[1]])
	result := detector.ValidationResult{
		Valid:      checks["plausible_range"],
		Confidence: confidence / 100,
		Checks:     checks,
	}
	result.Narrow(candidate, m[0], m[1])
	return result
}

// CalculateConfidence scores a postal code. Four digit codes follow the Swiss
// and Austrian ranges, five digit ones the German, French and US ranges.
func (v *Validator) CalculateConfidence(match string) (float64, map[string]bool) {
	checks := map[string]bool{
		"plausible_range": false,
		"country_prefix":  false,
	}

	sm := v.regex.FindStringSubmatch(match)
	if sm == nil {
		return 0, checks
	}
	prefix, code := strings.ToUpper(sm[1]), sm[2]
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0, checks
	}

	confidence := 50.0
	if prefix != "" {
		checks["country_prefix"] = true
		confidence += 20
	}

	switch len(code) {
	case 4:
		// CH 1000-9658, AT 1010-9992, LI 9485-9498
		checks["plausible_range"] = n >= 1000 && n <= 9999 && prefixAllows(prefix, "CH", "FL", "A", "AT")
	case 5:
		// DE 01001-99998, FR 01000-98890, US 00501-99950
		checks["plausible_range"] = n >= 1000 && n <= 99998 && prefixAllows(prefix, "D", "DE", "F", "FR")
	}
	if sm[3] != "" && prefix == "" && len(code) == 5 {
		confidence += 10
	}

	if !checks["plausible_range"] {
		return 0, checks
	}
	return min(confidence, 100), checks
}

func prefixAllows(prefix string, allowed ...string) bool {
	if prefix == "" {
		return true
	}
	for _, a := range allowed {
		if prefix == a {
			return true
		}
	}
	return false
}
