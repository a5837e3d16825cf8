// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package email

import (
	"regexp"
	"strings"

	"entity-pipeline/internal/detector"
)

// Validator implements the detector.Validator interface for email addresses.
type Validator struct {
	pattern string
	regex   *regexp.Regexp

	// Keywords that suggest an email context
	positiveKeywords []string

	// Keywords that suggest this is not a real email
	negativeKeywords []string

	// Known test patterns that indicate test data
	knownTestPatterns []string

	// Common test domains and usernames
	testDomains   []string
	testUsernames []string
}

// NewValidator creates and returns a new Validator instance
// with predefined patterns and validation rules for email addresses.
func NewValidator() *Validator {
	v := &Validator{
		pattern: `[\p{L}\p{N}._%+\-]+@[\p{L}\p{N}\-]+(?:\.[\p{L}\p{N}\-]+)*\.\p{L}{2,}`,
		positiveKeywords: []string{
			"email", "e-mail", "mail", "contact", "mailto", "courriel", "adresse",
			"recipient", "sender", "from", "reply", "kontakt",
		},
		negativeKeywords: []string{
			"test", "example", "fake", "mock", "sample", "dummy", "placeholder",
			"demo", "template", "lorem", "ipsum",
		},
		knownTestPatterns: []string{
			"test@", "example@", "@test.", "@example.", "@localhost", "@domain.",
		},
		testDomains: []string{
			"example.com", "example.org", "example.net", "test.com", "test.org",
			"domain.com", "dummy.com", "sample.com", "invalid.com",
		},
		testUsernames: []string{
			"test", "example", "user", "demo", "sample", "dummy", "placeholder",
			"foo", "bar", "testuser",
		},
	}

	// Compile the regex pattern once at initialization
	v.regex = regexp.MustCompile(v.pattern)
	return v
}

// EntityType implements detector.Validator.
func (v *Validator) EntityType() detector.Type {
	return detector.TypeEmail
}

// Validate checks that the candidate contains a well-formed address and
// narrows the span to it.
func (v *Validator) Validate(candidate string) detector.ValidationResult {
	loc := v.regex.FindStringIndex(candidate)
	if loc == nil {
		return detector.ValidationResult{}
	}
	match := candidate[loc[0]:loc[1]]
	confidence, checks := v.CalculateConfidence(match)

	result := detector.ValidationResult{
		Valid:      checks["valid_format"] && checks["no_consecutive_dots"] && checks["reasonable_length"],
		Confidence: confidence / 100,
		Checks:     checks,
	}
	result.Narrow(candidate, loc[0], loc[1])
	return result
}

// CalculateConfidence calculates the confidence score for a potential email address
func (v *Validator) CalculateConfidence(match string) (float64, map[string]bool) {
	checks := map[string]bool{
		"valid_format":        true,
		"valid_tld":           true,
		"not_test_email":      true,
		"reasonable_length":   true,
		"no_consecutive_dots": true,
	}

	confidence := 100.0
	lowerMatch := strings.ToLower(match)

	username, domain, ok := strings.Cut(lowerMatch, "@")
	if !ok || username == "" || strings.Contains(domain, "@") {
		confidence -= 30
		checks["valid_format"] = false
	}
	if strings.HasPrefix(username, ".") || strings.HasSuffix(username, ".") {
		confidence -= 30
		checks["valid_format"] = false
	}

	if v.isTestDomain(domain) {
		confidence -= 25
		checks["not_test_email"] = false
	}

	tld := domain[strings.LastIndex(domain, ".")+1:]
	if len(tld) < 2 || len(tld) > 24 {
		confidence -= 15
		checks["valid_tld"] = false
	}

	for _, u := range v.testUsernames {
		if username == u {
			confidence -= 20
			checks["not_test_email"] = false
			break
		}
	}

	// RFC 5321 path limit
	if len(match) > 254 || len(match) < 6 {
		confidence -= 10
		checks["reasonable_length"] = false
	}

	if strings.Contains(match, "..") {
		confidence -= 10
		checks["no_consecutive_dots"] = false
	}

	for _, pattern := range v.knownTestPatterns {
		if strings.Contains(lowerMatch, pattern) {
			confidence -= 15
			checks["not_test_email"] = false
			break
		}
	}

	if confidence < 0 {
		confidence = 0
	}
	return confidence, checks
}

func (v *Validator) isTestDomain(domain string) bool {
	for _, d := range v.testDomains {
		if domain == d || strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}
