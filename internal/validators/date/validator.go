// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package date validates calendar dates in numeric and written layouts.
package date

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"entity-pipeline/internal/detector"
)

// Validator implements the detector.Validator interface for dates.
type Validator struct {
	numeric *regexp.Regexp
	iso     *regexp.Regexp
	written *regexp.Regexp
	monthUS *regexp.Regexp

	months map[string]time.Month

	positiveKeywords []string
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		months: monthNames(),
		positiveKeywords: []string{
			"born", "birth", "dob", "geboren", "geburtsdatum", "né", "née", "date de naissance",
		},
	}
	names := make([]string, 0, len(v.months))
	for name := range v.months {
		names = append(names, regexp.QuoteMeta(name))
	}
	// Longer names first so "janvier" is not cut to "jan"
	sortByLengthDesc(names)
	alt := strings.Join(names, "|")

	v.numeric = regexp.MustCompile(`\b(\d{1,2})[./\-](\d{1,2})[./\-](\d{4}|\d{2})\b`)
	v.iso = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	v.written = regexp.MustCompile(`(?i)\b(\d{1,2})(?:\.|er|st|nd|rd|th)? ?(` + alt + `)\.? (\d{4})\b`)
	v.monthUS = regexp.MustCompile(`(?i)\b(` + alt + `)\.? (\d{1,2})(?:st|nd|rd|th)?,? (\d{4})\b`)
	return v
}

// EntityType implements detector.Validator.
func (v *Validator) EntityType() detector.Type {
	return detector.TypeDate
}

// Validate accepts the first layout that yields a real calendar date.
func (v *Validator) Validate(candidate string) detector.ValidationResult {
	checks := map[string]bool{"layout": false, "calendar": false}

	type attempt struct {
		re    *regexp.Regexp
		parse func(sm []string) (y, m, d int, ok bool)
	}
	attempts := []attempt{
		{v.iso, func(sm []string) (int, int, int, bool) {
			return atoi(sm[1]), atoi(sm[2]), atoi(sm[3]), true
		}},
		{v.numeric, func(sm []string) (int, int, int, bool) {
			d, m, y := atoi(sm[1]), atoi(sm[2]), expandYear(sm[3])
			if !validDate(y, m, d) {
				// US month-first layout
				d, m = m, d
			}
			return y, m, d, true
		}},
		{v.written, func(sm []string) (int, int, int, bool) {
			m, ok := v.months[strings.ToLower(sm[2])]
			return atoi(sm[3]), int(m), atoi(sm[1]), ok
		}},
		{v.monthUS, func(sm []string) (int, int, int, bool) {
			m, ok := v.months[strings.ToLower(sm[1])]
			return atoi(sm[3]), int(m), atoi(sm[2]), ok
		}},
	}

	for _, a := range attempts {
		loc := a.re.FindStringSubmatchIndex(candidate)
		if loc == nil {
			continue
		}
		sm := submatches(candidate, loc)
		y, m, d, ok := a.parse(sm)
		if !ok {
			continue
		}
		checks["layout"] = true
		if !validDate(y, m, d) {
			continue
		}
		checks["calendar"] = true
		result := detector.ValidationResult{
			Valid:      true,
			Confidence: v.confidence(y),
			Checks:     checks,
		}
		result.Narrow(candidate, loc[0], loc[1])
		return result
	}
	return detector.ValidationResult{Checks: checks}
}

// confidence favors years plausible for personal dates.
func (v *Validator) confidence(year int) float64 {
	now := time.Now().Year()
	switch {
	case year >= 1900 && year <= now+1:
		return 0.85
	case year > now+1 && year <= now+50:
		return 0.6
	}
	return 0.4
}

func validDate(y, m, d int) bool {
	if m < 1 || m > 12 || d < 1 || d > 31 || y < 1 {
		return false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return t.Day() == d && int(t.Month()) == m
}

func expandYear(s string) int {
	y := atoi(s)
	if len(s) == 2 {
		// Two digit years pivot at 50
		if y < 50 {
			return 2000 + y
		}
		return 1900 + y
	}
	return y
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

func sortByLengthDesc(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && (len(names[j]) > len(names[j-1]) ||
			(len(names[j]) == len(names[j-1]) && names[j] < names[j-1])); j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}

func monthNames() map[string]time.Month {
	m := map[string]time.Month{}
	add := func(month time.Month, names ...string) {
		for _, n := range names {
			m[n] = month
		}
	}
	add(time.January, "january", "jan", "januar", "janvier", "gennaio")
	add(time.February, "february", "feb", "februar", "février", "fevrier", "febbraio")
	add(time.March, "march", "mar", "märz", "maerz", "mars", "marzo")
	add(time.April, "april", "apr", "avril", "aprile")
	add(time.May, "may", "mai", "maggio")
	add(time.June, "june", "jun", "juni", "juin", "giugno")
	add(time.July, "july", "jul", "juli", "juillet", "luglio")
	add(time.August, "august", "aug", "août", "aout", "agosto")
	add(time.September, "september", "sep", "sept", "septembre", "settembre")
	add(time.October, "october", "oct", "oktober", "okt", "octobre", "ottobre")
	add(time.November, "november", "nov", "novembre")
	add(time.December, "december", "dec", "dezember", "dez", "décembre", "decembre", "dicembre")
	return m
}
