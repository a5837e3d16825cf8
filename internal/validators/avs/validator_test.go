// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package avs

import "testing"

func TestEAN13Valid(t *testing.T) {
	tests := []struct {
		digits string
		want   bool
	}{
		{"7569217076985", true},
		{"7569217076986", false},
		{"756921707698", false},
	}
	for _, tt := range tests {
		if got := EAN13Valid([]byte(tt.digits)); got != tt.want {
			t.Errorf("EAN13Valid(%q) = %v, want %v", tt.digits, got, tt.want)
		}
	}
}

func TestCalculateConfidence_Dotted(t *testing.T) {
	v := NewValidator()
	dotted, checks := v.CalculateConfidence("756.9217.0769.85")
	if !checks["dotted"] || !checks["check_digit"] {
		t.Fatalf("unexpected checks %v", checks)
	}
	compact, _ := v.CalculateConfidence("7569217076985")
	if dotted <= compact {
		t.Errorf("dotted form should score higher: %v <= %v", dotted, compact)
	}
}
