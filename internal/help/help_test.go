// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticProvider CheckInfo

func (p staticProvider) GetCheckInfo() CheckInfo { return CheckInfo(p) }

func newTestSystem() (*System, *strings.Builder) {
	var out strings.Builder
	h := NewSystem(&out, true)
	h.RegisterProvider(staticProvider{
		Name:                "IBAN",
		ShortDescription:    "International bank account numbers",
		DetailedDescription: "Checks the mod-97 checksum.",
		Patterns:            []string{"CH93 0076 2011 6238 5295 7"},
		ConfidenceFactors:   []ConfidenceFactor{{Name: "Checksum", Description: "ISO 7064 mod 97-10", Weight: 60}},
		PositiveKeywords:    []string{"iban", "konto", "account", "bank", "compte", "conto"},
		Examples:            []string{"entity-pipeline --file invoice.txt"},
	})
	h.RegisterProvider(staticProvider{Name: "EMAIL", ShortDescription: "Email addresses"})
	return h, &out
}

func TestShowChecksHelp_Sorted(t *testing.T) {
	h, out := newTestSystem()
	h.ShowChecksHelp()

	text := out.String()
	assert.Less(t, strings.Index(text, "EMAIL"), strings.Index(text, "IBAN"))
	assert.Contains(t, text, "International bank account numbers")
	assert.Equal(t, []string{"EMAIL", "IBAN"}, h.Providers())
}

func TestShowCheckHelp(t *testing.T) {
	h, out := newTestSystem()
	assert.True(t, h.ShowCheckHelp("iban"))

	text := out.String()
	assert.Contains(t, text, "IBAN Validator")
	assert.Contains(t, text, "  - CH93 0076 2011 6238 5295 7")
	assert.Contains(t, text, "Checksum (60%): ISO 7064 mod 97-10")
	assert.Contains(t, text, "iban, konto, account, bank, compte")
	assert.Contains(t, text, "and others...")
	assert.NotContains(t, text, "\x1b[")
}

func TestShowCheckHelp_Unknown(t *testing.T) {
	h, out := newTestSystem()
	assert.False(t, h.ShowCheckHelp("PASSPORT"))
	assert.Contains(t, out.String(), "Validator 'PASSPORT' not found")
}

func TestShowGeneralHelp(t *testing.T) {
	h, out := newTestSystem()
	h.ShowGeneralHelp()
	assert.Contains(t, out.String(), "--candidates")
	assert.Contains(t, out.String(), "ENTITY_PIPELINE_CONFIG_DIR")
}
