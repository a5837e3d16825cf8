// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import "testing"

func TestCountryFor(t *testing.T) {
	v := NewValidator()
	tests := []struct {
		number string
		want   string
	}{
		{"+41 79 345 82 16", "Switzerland"},
		{"0041 79 345 82 16", "Switzerland"},
		{"+423 234 56 78", "Liechtenstein"},
		{"+1 415 555 2671", "US/Canada"},
		{"079 345 82 16", ""},
	}
	for _, tt := range tests {
		if got := v.CountryFor(tt.number); got != tt.want {
			t.Errorf("CountryFor(%q) = %q, want %q", tt.number, got, tt.want)
		}
	}
}
