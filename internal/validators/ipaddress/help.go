// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ipaddress

import "entity-pipeline/internal/help"

// GetCheckInfo returns standardized information about the IP address check
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             "IP_ADDRESS",
		ShortDescription: "Confirms IPv4 and IPv6 addresses",
		DetailedDescription: `The IP Address validator parses candidate addresses with the standard library's netip parser.

Public unicast addresses score highest since they can identify a subscriber. Private, loopback, link-local and documentation ranges (RFC 5737, RFC 3849) and well-known resolvers score lower but are still accepted.`,

		Patterns: []string{
			"IPv4: 192.168.1.1",
			"IPv6: 2001:db8::1, fe80::1",
		},

		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Parses", Description: "Address must parse", Weight: 70},
			{Name: "Public", Description: "Public unicast range", Weight: 15},
			{Name: "Not Test", Description: "Outside documentation ranges", Weight: 30},
		},

		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,
	}
}
