// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
)

// ContextInfo stores contextual information about a match
type ContextInfo struct {
	// Text before and after the match
	BeforeText string
	AfterText  string

	// Line containing the match
	FullLine string

	// Contextual keywords found near the match
	PositiveKeywords []string
	NegativeKeywords []string

	// Impact on confidence score
	ConfidenceImpact float64
}

// Lower returns the whole context lower-cased, for keyword searches.
func (c ContextInfo) Lower() string {
	return strings.ToLower(c.BeforeText + " " + c.FullLine + " " + c.AfterText)
}

// ContextExtractor extracts context around a span of text
type ContextExtractor struct {
	// Number of lines before and after the match to consider
	ContextLines int

	// Number of characters before and after the match to consider
	ContextChars int
}

// NewContextExtractor creates a new context extractor with default settings
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{
		ContextLines: 1,
		ContextChars: 50,
	}
}

// WithContextLines sets the number of context lines
func (ce *ContextExtractor) WithContextLines(lines int) *ContextExtractor {
	ce.ContextLines = lines
	return ce
}

// WithContextChars sets the number of context characters
func (ce *ContextExtractor) WithContextChars(chars int) *ContextExtractor {
	ce.ContextChars = chars
	return ce
}

// ExtractContext returns the context of the rune span [start, end) in text.
// Out-of-range spans yield an empty ContextInfo.
func (ce *ContextExtractor) ExtractContext(text []rune, start, end int) ContextInfo {
	if start < 0 || end > len(text) || start >= end {
		return ContextInfo{}
	}

	lineStart := start
	for lineStart > 0 && text[lineStart-1] != '\n' {
		lineStart--
	}
	lineEnd := end
	for lineEnd < len(text) && text[lineEnd] != '\n' {
		lineEnd++
	}

	info := ContextInfo{FullLine: string(text[lineStart:lineEnd])}
	info.BeforeText = string(text[max(lineStart, start-ce.ContextChars):start])
	info.AfterText = string(text[end:min(lineEnd, end+ce.ContextChars)])

	// Add surrounding lines
	before := lineStart
	for i := 0; i < ce.ContextLines && before > 0; i++ {
		before--
		for before > 0 && text[before-1] != '\n' {
			before--
		}
	}
	if before < lineStart {
		info.BeforeText = string(text[before:lineStart]) + info.BeforeText
	}
	after := lineEnd
	for i := 0; i < ce.ContextLines && after < len(text); i++ {
		after++
		for after < len(text) && text[after] != '\n' {
			after++
		}
	}
	if after > lineEnd {
		info.AfterText += string(text[lineEnd:after])
	}

	return info
}

// FindKeywords returns the keywords present in the context.
func FindKeywords(context ContextInfo, keywords []string) []string {
	full := context.Lower()
	var found []string
	for _, keyword := range keywords {
		if strings.Contains(full, strings.ToLower(keyword)) {
			found = append(found, keyword)
		}
	}
	return found
}

// KeywordImpact scores context keywords the way the validators share:
// positive keywords on the same line weigh more than in surrounding lines,
// and the total is capped.
func KeywordImpact(context ContextInfo, positive, negative []string) float64 {
	full := context.Lower()
	line := strings.ToLower(context.FullLine)

	var impact float64
	for _, keyword := range positive {
		kw := strings.ToLower(keyword)
		if strings.Contains(line, kw) {
			impact += 0.07
		} else if strings.Contains(full, kw) {
			impact += 0.03
		}
	}
	for _, keyword := range negative {
		kw := strings.ToLower(keyword)
		if strings.Contains(line, kw) {
			impact -= 0.15
		} else if strings.Contains(full, kw) {
			impact -= 0.07
		}
	}

	if impact > 0.25 {
		impact = 0.25
	} else if impact < -0.5 {
		impact = -0.5
	}
	return impact
}
