// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import (
	"regexp"
	"sort"
	"strings"

	"entity-pipeline/internal/detector"
)

// Validator implements the detector.Validator interface for phone numbers.
type Validator struct {
	regex *regexp.Regexp

	positiveKeywords []string
	negativeKeywords []string

	testPhoneNumbers []string

	// Country codes for international number validation
	countryCodeMap map[string]string
	// Sorted country codes for optimized lookup (longest first)
	sortedCountryCodes []string
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		regex: regexp.MustCompile(`\+?\(?\d[\d ().\-/]{5,}\d`),
		positiveKeywords: []string{
			"phone", "telephone", "tel", "call", "mobile", "cell", "natel",
			"contact", "fax", "téléphone", "portable", "telefon", "handy",
		},
		negativeKeywords: []string{
			"test", "example", "fake", "sample", "dummy", "placeholder",
			"ssn", "iban", "account", "invoice", "order", "timestamp",
		},
		testPhoneNumbers: []string{
			"5550100", "5550199", "5551212", "8675309", "1234567890",
			"0000000000", "0123456789", "9876543210",
		},
		countryCodeMap: initCountryCodeMap(),
	}

	v.sortedCountryCodes = initSortedCountryCodes(v.countryCodeMap)
	return v
}

// EntityType implements detector.Validator.
func (v *Validator) EntityType() detector.Type {
	return detector.TypePhone
}

// Validate confirms that the candidate holds a dialable number.
func (v *Validator) Validate(candidate string) detector.ValidationResult {
	loc := v.regex.FindStringIndex(candidate)
	if loc == nil {
		return detector.ValidationResult{}
	}
	match := candidate[loc[0]:loc[1]]
	confidence, checks := v.CalculateConfidence(match)

	result := detector.ValidationResult{
		Valid:      checks["length"] && checks["country_format"] && checks["not_repeating"],
		Confidence: confidence / 100,
		Checks:     checks,
	}
	result.Narrow(candidate, loc[0], loc[1])
	return result
}

// CalculateConfidence scores a phone number candidate.
func (v *Validator) CalculateConfidence(match string) (float64, map[string]bool) {
	checks := map[string]bool{
		"length":          true,
		"country_format":  true,
		"known_country":   false,
		"not_test_number": true,
		"not_sequential":  true,
		"not_repeating":   true,
	}

	confidence := 70.0
	clean := v.cleanPhoneNumber(match)
	international := strings.HasPrefix(clean, "+") || strings.HasPrefix(clean, "00")
	digits := strings.TrimPrefix(strings.TrimPrefix(clean, "+"), "00")

	// E.164 caps numbers at 15 digits
	if len(digits) < 7 || len(digits) > 15 {
		confidence -= 40
		checks["length"] = false
	}

	if international {
		if country := v.countryFor(digits); country != "" {
			checks["known_country"] = true
			confidence += 20
		} else {
			confidence -= 20
			checks["country_format"] = false
		}
	} else if strings.HasPrefix(digits, "0") {
		// National trunk prefix: 10 digits in CH, DE and FR mobile ranges
		if len(digits) < 9 || len(digits) > 12 {
			confidence -= 20
			checks["country_format"] = false
		} else {
			confidence += 10
		}
	} else if len(digits) != 10 {
		// Without a prefix only the North American plan is accepted
		confidence -= 25
		checks["country_format"] = false
	}

	if v.isTestPhoneNumber(digits) {
		confidence -= 30
		checks["not_test_number"] = false
	}
	if isSequentialNumber(digits) {
		confidence -= 15
		checks["not_sequential"] = false
	}
	if isRepeatingNumber(digits) {
		confidence -= 30
		checks["not_repeating"] = false
	}

	confidence = min(max(confidence, 0), 100)
	return confidence, checks
}

// CountryFor returns the country name of an international number, if known.
func (v *Validator) CountryFor(number string) string {
	clean := v.cleanPhoneNumber(number)
	if !strings.HasPrefix(clean, "+") && !strings.HasPrefix(clean, "00") {
		return ""
	}
	return v.countryFor(strings.TrimPrefix(strings.TrimPrefix(clean, "+"), "00"))
}

func (v *Validator) countryFor(digits string) string {
	for _, code := range v.sortedCountryCodes {
		if strings.HasPrefix(digits, code) {
			return v.countryCodeMap[code]
		}
	}
	return ""
}

func (v *Validator) cleanPhoneNumber(phone string) string {
	// "+41 (0)79" dials without the bracketed trunk zero
	phone = strings.Replace(strings.TrimSpace(phone), "(0)", "", 1)
	var sb strings.Builder
	for i, r := range phone {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (v *Validator) isTestPhoneNumber(digits string) bool {
	for _, testNumber := range v.testPhoneNumbers {
		if strings.HasSuffix(digits, testNumber) {
			return true
		}
	}
	return false
}

func isSequentialNumber(digits string) bool {
	if len(digits) < 7 {
		return false
	}
	ascending, descending := 0, 0
	for i := 1; i < len(digits); i++ {
		if digits[i] == digits[i-1]+1 {
			ascending++
		} else {
			ascending = 0
		}
		if digits[i] == digits[i-1]-1 {
			descending++
		} else {
			descending = 0
		}
		if ascending >= 5 || descending >= 5 {
			return true
		}
	}
	return false
}

func isRepeatingNumber(digits string) bool {
	run := 1
	for i := 1; i < len(digits); i++ {
		if digits[i] == digits[i-1] {
			run++
			if run >= 6 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// initSortedCountryCodes creates a sorted slice of country codes (longest first) for optimized lookup
func initSortedCountryCodes(countryCodeMap map[string]string) []string {
	codes := make([]string, 0, len(countryCodeMap))
	for code := range countryCodeMap {
		codes = append(codes, code)
	}

	// Longer codes are tried first
	sort.Slice(codes, func(i, j int) bool {
		if len(codes[i]) != len(codes[j]) {
			return len(codes[i]) > len(codes[j])
		}
		return codes[i] < codes[j]
	})

	return codes
}

func initCountryCodeMap() map[string]string {
	return map[string]string{
		"1":   "US/Canada",
		"44":  "United Kingdom",
		"33":  "France",
		"49":  "Germany",
		"39":  "Italy",
		"34":  "Spain",
		"31":  "Netherlands",
		"32":  "Belgium",
		"41":  "Switzerland",
		"43":  "Austria",
		"45":  "Denmark",
		"46":  "Sweden",
		"47":  "Norway",
		"352": "Luxembourg",
		"358": "Finland",
		"423": "Liechtenstein",
		"7":   "Russia",
		"86":  "China",
		"81":  "Japan",
		"91":  "India",
		"61":  "Australia",
		"55":  "Brazil",
		"52":  "Mexico",
		"27":  "South Africa",
		"212": "Morocco",
		"213": "Algeria",
		"216": "Tunisia",
	}
}
