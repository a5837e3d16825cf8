// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package creditcard

import (
	"regexp"
	"strconv"
	"strings"

	"entity-pipeline/internal/detector"
)

// Validator implements the detector.Validator interface for payment card numbers.
type Validator struct {
	regex *regexp.Regexp

	// BIN ranges using range checks instead of massive maps
	binRanges []BINRange

	// Well-known test numbers published by card networks
	testNumbers map[string]bool

	positiveKeywords []string
	negativeKeywords []string
}

// BINRange represents a range of valid BIN numbers for efficient lookup
type BINRange struct {
	Start  int
	End    int
	Vendor string
}

// NewValidator creates and returns a new Validator instance
// with predefined patterns and validation rules for credit card numbers.
func NewValidator() *Validator {
	v := &Validator{
		// 16 digits in groups of four, Amex 4-6-5, or an unseparated 14-19 digit run
		regex: regexp.MustCompile(`\d{4}[ \-]\d{4}[ \-]\d{4}[ \-]\d{4}(?:\d{1,3})?|\d{4}[ \-]\d{6}[ \-]\d{5}|\d{14,19}`),

		binRanges: initBINRanges(),

		testNumbers: map[string]bool{
			"4111111111111111": true,
			"5555555555554444": true,
			"4444444444444448": true,
			"4000000000000002": true,
			"5100000000000008": true,
			"340000000000009":  true,
			"378282246310005":  true,
			"4242424242424242": true,
		},

		positiveKeywords: []string{
			"credit", "card", "visa", "mastercard", "amex", "american express",
			"cardholder", "payment", "expiry", "cvv", "carte", "karte", "kreditkarte",
		},

		negativeKeywords: []string{
			"account", "serial", "tracking", "reference", "order", "invoice",
			"timestamp", "hash", "uuid", "test", "example", "sample",
		},
	}

	return v
}

// initBINRanges creates BIN ranges using efficient range checks instead of massive maps
func initBINRanges() []BINRange {
	return []BINRange{
		// Visa: 4xxxxx
		{400000, 499999, "Visa"},

		// MasterCard: 51xxxx-55xxxx, 222100-272099
		{510000, 559999, "MasterCard"},
		{222100, 272099, "MasterCard"},

		// American Express: 34xxxx, 37xxxx
		{340000, 349999, "American Express"},
		{370000, 379999, "American Express"},

		// Discover: 6011xx, 644xxx-649xxx, 65xxxx
		{601100, 601199, "Discover"},
		{644000, 649999, "Discover"},
		{650000, 659999, "Discover"},

		// JCB: 35xxxx
		{350000, 359999, "JCB"},

		// Diners Club: 30xxxx, 36xxxx, 38xxxx
		{300000, 309999, "Diners Club"},
		{360000, 369999, "Diners Club"},
		{380000, 389999, "Diners Club"},

		// UnionPay: 62xxxx
		{620000, 629999, "UnionPay"},

		// Maestro: 50xxxx, 56xxxx-58xxxx
		{500000, 509999, "Maestro"},
		{560000, 589999, "Maestro"},
	}
}

// EntityType implements detector.Validator.
func (v *Validator) EntityType() detector.Type {
	return detector.TypeCreditCard
}

// Validate requires a Luhn-valid number of a supported length.
func (v *Validator) Validate(candidate string) detector.ValidationResult {
	loc := v.regex.FindStringIndex(candidate)
	if loc == nil {
		return detector.ValidationResult{}
	}
	match := candidate[loc[0]:loc[1]]
	confidence, checks := v.CalculateConfidence(match)

	result := detector.ValidationResult{
		Valid:      checks["length"] && checks["luhn"],
		Confidence: confidence / 100,
		Checks:     checks,
	}
	result.Narrow(candidate, loc[0], loc[1])
	return result
}

// CalculateConfidence scores a card number candidate.
func (v *Validator) CalculateConfidence(match string) (float64, map[string]bool) {
	checks := map[string]bool{
		"length":        true,
		"luhn":          true,
		"vendor":        false,
		"not_test":      true,
		"entropy":       false,
		"not_repeating": true,
	}

	clean := cleanNumber(match)
	// Start with moderate confidence - we need to prove this is a real card
	confidence := 60.0

	if len(clean) < 14 || len(clean) > 19 {
		checks["length"] = false
		confidence -= 40
	}
	if !luhnCheck(clean) {
		checks["luhn"] = false
		confidence -= 40
	}

	if vendor := v.DetectCardVendor(clean); vendor == "Unknown" {
		confidence -= 20
	} else {
		checks["vendor"] = true
		confidence += 15
	}

	if hasRepeatingPatterns(clean) {
		confidence -= 35
		checks["not_repeating"] = false
	} else {
		confidence += 10
	}

	entropy := calculateEntropy(clean)
	if entropy < 2.5 {
		confidence -= 20
	} else if entropy >= 3.5 {
		confidence += 10
		checks["entropy"] = true
	}

	confidence = min(max(confidence, 0), 100)

	// No amount of structure makes a published test number high confidence
	if v.testNumbers[clean] {
		checks["not_test"] = false
		confidence = min(confidence, 15)
	}

	return confidence, checks
}

// DetectCardVendor returns the card network for the number's BIN.
func (v *Validator) DetectCardVendor(cardNumber string) string {
	cardNumber = cleanNumber(cardNumber)
	if len(cardNumber) < 6 {
		return "Unknown"
	}

	bin, err := strconv.Atoi(cardNumber[:6])
	if err != nil {
		return "Unknown"
	}

	for _, binRange := range v.binRanges {
		if bin >= binRange.Start && bin <= binRange.End {
			return binRange.Vendor
		}
	}

	return "Unknown"
}

func cleanNumber(number string) string {
	return strings.ReplaceAll(strings.ReplaceAll(number, " ", ""), "-", "")
}

func luhnCheck(number string) bool {
	if number == "" {
		return false
	}
	sum := 0
	isDouble := false

	for i := len(number) - 1; i >= 0; i-- {
		if number[i] < '0' || number[i] > '9' {
			return false
		}
		digit := int(number[i] - '0')

		if isDouble {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		isDouble = !isDouble
	}

	return sum%10 == 0
}

// hasRepeatingPatterns catches numbers that are unlikely to be issued cards.
func hasRepeatingPatterns(number string) bool {
	if len(number) < 2 {
		return false
	}

	// 8+ consecutive identical digits
	consecutive := 1
	for i := 1; i < len(number); i++ {
		if number[i] == number[i-1] {
			consecutive++
			if consecutive >= 8 {
				return true
			}
		} else {
			consecutive = 1
		}
	}

	// Simple alternating patterns (like 1212121212121212)
	if len(number) >= 8 && number[0] != number[1] {
		alternating := true
		for i := 2; i < len(number); i++ {
			if number[i] != number[i-2] {
				alternating = false
				break
			}
		}
		if alternating {
			return true
		}
	}

	// Sequential patterns (like 1234567890123456)
	for i := 1; i < len(number); i++ {
		if int(number[i]-'0') != (int(number[i-1]-'0')+1)%10 {
			return false
		}
	}
	return true
}

// calculateEntropy approximates entropy from the number of distinct digits.
func calculateEntropy(number string) float64 {
	var seen [10]bool
	unique := 0
	for i := 0; i < len(number); i++ {
		d := number[i] - '0'
		if d <= 9 && !seen[d] {
			seen[d] = true
			unique++
		}
	}
	return float64(unique) * 0.5
}
