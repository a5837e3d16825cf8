// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package creditcard

import "testing"

func TestDetectCardVendor(t *testing.T) {
	v := NewValidator()
	tests := []struct {
		number string
		want   string
	}{
		{"4539 1488 0343 6467", "Visa"},
		{"5425233430109903", "MasterCard"},
		{"378282246310005", "American Express"},
		{"9999999999999999", "Unknown"},
		{"123", "Unknown"},
	}
	for _, tt := range tests {
		if got := v.DetectCardVendor(tt.number); got != tt.want {
			t.Errorf("DetectCardVendor(%q) = %q, want %q", tt.number, got, tt.want)
		}
	}
}

func TestCalculateConfidence_TestNumberCapped(t *testing.T) {
	v := NewValidator()
	confidence, checks := v.CalculateConfidence("4111111111111111")
	if checks["not_test"] {
		t.Error("expected test number to be flagged")
	}
	if confidence > 15 {
		t.Errorf("confidence = %v, want <= 15", confidence)
	}

	real, _ := v.CalculateConfidence("4539148803436467")
	if real < 80 {
		t.Errorf("confidence = %v, want >= 80", real)
	}
}
