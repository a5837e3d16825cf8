// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ipaddress

import (
	"net/netip"
	"regexp"
	"strings"

	"entity-pipeline/internal/detector"
)

// Validator implements the detector.Validator interface for IPv4 and IPv6 addresses.
type Validator struct {
	patterns []ipPattern

	positiveKeywords []string
	negativeKeywords []string

	// Documentation and well-known addresses that are rarely personal data
	testPrefixes []netip.Prefix
	wellKnown    map[netip.Addr]bool
}

// ipPattern represents an IP address pattern with its type info
type ipPattern struct {
	name    string
	regex   *regexp.Regexp
	version string
}

// NewValidator creates and returns a new Validator instance.
func NewValidator() *Validator {
	v := &Validator{
		positiveKeywords: []string{
			"ip", "address", "host", "server", "client", "gateway", "login", "connexion",
		},
		negativeKeywords: []string{
			"version", "build", "revision", "release", "test", "example",
		},
		testPrefixes: []netip.Prefix{
			netip.MustParsePrefix("192.0.2.0/24"),    // RFC 5737 TEST-NET-1
			netip.MustParsePrefix("198.51.100.0/24"), // TEST-NET-2
			netip.MustParsePrefix("203.0.113.0/24"),  // TEST-NET-3
			netip.MustParsePrefix("2001:db8::/32"),   // RFC 3849
		},
		wellKnown: map[netip.Addr]bool{
			netip.MustParseAddr("0.0.0.0"):         true,
			netip.MustParseAddr("255.255.255.255"): true,
			netip.MustParseAddr("1.1.1.1"):         true,
			netip.MustParseAddr("8.8.8.8"):         true,
			netip.MustParseAddr("8.8.4.4"):         true,
			netip.MustParseAddr("9.9.9.9"):         true,
		},
	}

	v.patterns = []ipPattern{
		{
			name:    "IPv4_Standard",
			regex:   regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`),
			version: "IPv4",
		},
		{
			name:    "IPv6",
			regex:   regexp.MustCompile(`(?i)(?:[0-9a-f]{1,4}:){7}[0-9a-f]{1,4}|(?:[0-9a-f]{1,4}(?::[0-9a-f]{1,4})*)?::(?:[0-9a-f]{1,4}(?::[0-9a-f]{1,4})*)?`),
			version: "IPv6",
		},
	}

	return v
}

// EntityType implements detector.Validator.
func (v *Validator) EntityType() detector.Type {
	return detector.TypeIPAddress
}

// Validate parses the first address-like token of the candidate.
func (v *Validator) Validate(candidate string) detector.ValidationResult {
	for _, p := range v.patterns {
		for _, loc := range p.regex.FindAllStringIndex(candidate, -1) {
			match := candidate[loc[0]:loc[1]]
			if _, err := netip.ParseAddr(match); err != nil {
				continue
			}
			confidence, checks := v.CalculateConfidence(match)
			result := detector.ValidationResult{
				Valid:      checks["parses"],
				Confidence: confidence / 100,
				Checks:     checks,
			}
			result.Narrow(candidate, loc[0], loc[1])
			return result
		}
	}
	return detector.ValidationResult{}
}

// CalculateConfidence scores an address. Public unicast addresses can identify
// a person; loopback, private and documentation ranges score lower.
func (v *Validator) CalculateConfidence(match string) (float64, map[string]bool) {
	checks := map[string]bool{
		"parses":        false,
		"public":        false,
		"not_test":      true,
		"not_wellknown": true,
	}

	addr, err := netip.ParseAddr(strings.TrimSpace(match))
	if err != nil {
		return 0, checks
	}
	checks["parses"] = true
	confidence := 70.0

	switch {
	case addr.IsLoopback(), addr.IsUnspecified(), addr.IsMulticast(), addr.IsLinkLocalUnicast():
		confidence -= 40
	case addr.IsPrivate():
		confidence -= 15
	default:
		checks["public"] = true
		confidence += 15
	}

	for _, prefix := range v.testPrefixes {
		if prefix.Contains(addr) {
			checks["not_test"] = false
			confidence -= 30
			break
		}
	}
	if v.wellKnown[addr] {
		checks["not_wellknown"] = false
		confidence -= 30
	}

	confidence = min(max(confidence, 0), 100)
	return confidence, checks
}

// Version returns "IPv4" or "IPv6" for a parseable address.
func (v *Validator) Version(match string) string {
	addr, err := netip.ParseAddr(match)
	if err != nil {
		return ""
	}
	if addr.Is4() || addr.Is4In6() {
		return "IPv4"
	}
	return "IPv6"
}
