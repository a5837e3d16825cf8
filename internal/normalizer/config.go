// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package normalizer

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Config toggles the individual normalization steps.
type Config struct {
	NormalizeUnicode    bool     `yaml:"normalize_unicode"`
	Form                string   `yaml:"form"` // NFC, NFD, NFKC or NFKD
	NormalizeWhitespace bool     `yaml:"normalize_whitespace"`
	HandleEmails        bool     `yaml:"handle_emails"`
	HandlePhones        bool     `yaml:"handle_phones"`
	Locales             []string `yaml:"locales"`
}

// DefaultConfig enables every step with NFKC and the English, French and German tables.
func DefaultConfig() Config {
	return Config{
		NormalizeUnicode:    true,
		Form:                "NFKC",
		NormalizeWhitespace: true,
		HandleEmails:        true,
		HandlePhones:        true,
		Locales:             []string{"en", "fr", "de"},
	}
}

// ParseForm maps a normalization form name to its x/text implementation.
func ParseForm(name string) (norm.Form, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "NFC":
		return norm.NFC, nil
	case "NFD":
		return norm.NFD, nil
	case "NFKC", "":
		return norm.NFKC, nil
	case "NFKD":
		return norm.NFKD, nil
	}
	return norm.NFKC, fmt.Errorf("unsupported normalization form %q", name)
}

// localeTable lists the words an obfuscated address spells out for "@" and ".".
type localeTable struct {
	at  []string
	dot []string
}

var locales = map[string]localeTable{
	"en": {at: []string{"at"}, dot: []string{"dot"}},
	"fr": {at: []string{"arobase", "arobas", "at"}, dot: []string{"point"}},
	"de": {at: []string{"ät", "klammeraffe", "at"}, dot: []string{"punkt"}},
}

// SupportedLocales returns the locale codes with a substitution table.
func SupportedLocales() []string {
	return []string{"en", "fr", "de"}
}

// IsSupportedLocale reports whether code has a substitution table.
func IsSupportedLocale(code string) bool {
	_, ok := locales[strings.ToLower(code)]
	return ok
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	if _, err := ParseForm(c.Form); err != nil {
		return err
	}
	for _, l := range c.Locales {
		if !IsSupportedLocale(l) {
			return fmt.Errorf("unsupported normalizer locale %q", l)
		}
	}
	return nil
}

func (c Config) words() (at, dot []string) {
	seen := map[string]bool{}
	add := func(dst []string, ws []string) []string {
		for _, w := range ws {
			if !seen[w] {
				seen[w] = true
				dst = append(dst, w)
			}
		}
		return dst
	}
	for _, l := range c.Locales {
		if t, ok := locales[strings.ToLower(l)]; ok {
			at = add(at, t.at)
		}
	}
	seen = map[string]bool{}
	for _, l := range c.Locales {
		if t, ok := locales[strings.ToLower(l)]; ok {
			dot = add(dot, t.dot)
		}
	}
	return at, dot
}
