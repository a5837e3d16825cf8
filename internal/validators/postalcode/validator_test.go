// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package postalcode

import "testing"

func TestValidate(t *testing.T) {
	v := NewValidator()
	tests := []struct {
		candidate string
		wantValid bool
		wantConf  float64
	}{
		{"8001", true, 0.5},
		{"CH-8001", true, 0.7},
		{"D-10115", true, 0.7},
		{"12345-6789", true, 0.6},
		{"CH-10115", false, 0},
		{"0999", false, 0},
		{"Bern", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			res := v.Validate(tt.candidate)
			if res.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (checks %v)", res.Valid, tt.wantValid, res.Checks)
			}
			if diff := res.Confidence - tt.wantConf; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Confidence = %v, want %v", res.Confidence, tt.wantConf)
			}
		})
	}
}

func TestValidate_Narrow(t *testing.T) {
	res := NewValidator().Validate("PLZ 3000 Bern")
	if !res.Valid {
		t.Fatalf("expected valid postal code, checks %v", res.Checks)
	}
	if res.Start != 4 || res.End != 8 {
		t.Errorf("span = [%d,%d), want [4,8)", res.Start, res.End)
	}
}
