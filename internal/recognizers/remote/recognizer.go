// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"entity-pipeline/internal/detector"
)

// Recognizer is a detector whose analysis runs on a network service.
// Implementations must be safe for concurrent use.
type Recognizer interface {
	Name() string
	Config() Config
	// Supports reports whether the recognizer handles language.
	Supports(language string) bool
	// Analyze returns candidate entities over text. It should honour ctx and
	// the configured timeout; callers still bound it externally.
	Analyze(ctx context.Context, text, language string) ([]detector.Entity, error)
	// HealthCheck is advisory and never used on the detection path.
	HealthCheck(ctx context.Context) bool
}

// LanguageSet builds a set of primary language subtags. An empty set means
// every language.
func LanguageSet(languages []string) mapset.Set[string] {
	s := mapset.NewThreadUnsafeSet[string]()
	for _, l := range languages {
		if p := PrimaryLanguage(l); p != "" {
			s.Add(p)
		}
	}
	return s
}

// PrimaryLanguage reduces a tag such as "de-CH" to "de".
func PrimaryLanguage(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

// SupportsLanguage applies the empty-means-all rule. An empty language hint
// matches every recognizer.
func SupportsLanguage(set mapset.Set[string], language string) bool {
	if set.Cardinality() == 0 {
		return true
	}
	lang := PrimaryLanguage(language)
	return lang == "" || set.Contains(lang)
}

// TypeSet builds a set of entity types, skipping unknown names.
func TypeSet(names []string) mapset.Set[detector.Type] {
	s := mapset.NewThreadUnsafeSet[detector.Type]()
	for _, n := range names {
		if t, err := detector.ParseType(n); err == nil {
			s.Add(t)
		}
	}
	return s
}
