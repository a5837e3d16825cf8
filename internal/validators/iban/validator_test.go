// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package iban

import "testing"

func TestChecksum(t *testing.T) {
	tests := []struct {
		iban string
		want int
	}{
		{"CH9300762011623852957", 1},
		{"DE89370400440532013000", 1},
		{"GB82WEST12345698765432", 1},
		{"CH9300762011623852958", 28},
		{"CH", -1},
		{"CH93-0076", -1},
	}
	for _, tt := range tests {
		if got := Checksum(tt.iban); got != tt.want {
			t.Errorf("Checksum(%q) = %d, want %d", tt.iban, got, tt.want)
		}
	}
}

func TestCompact(t *testing.T) {
	if got := Compact("ch93 0076-2011"); got != "CH9300762011" {
		t.Errorf("Compact() = %q", got)
	}
}

func TestValidate_TrailingWord(t *testing.T) {
	v := NewValidator()
	res := v.Validate("CH93 0076 2011 6238 5295 7 AB")
	if !res.Valid {
		t.Fatalf("expected valid IBAN, checks %v", res.Checks)
	}
	if res.Start != 0 || res.End != 26 {
		t.Errorf("span = [%d,%d), want [0,26)", res.Start, res.End)
	}
}
