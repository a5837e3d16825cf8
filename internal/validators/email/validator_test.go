// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package email

import "testing"

func TestValidate(t *testing.T) {
	v := NewValidator()
	tests := []struct {
		name       string
		candidate  string
		wantValid  bool
		wantConf   float64
		wantChecks map[string]bool
	}{
		{"personal address", "anna.muster@beispiel.ch", true, 1.0, map[string]bool{"not_test_email": true}},
		{"test address", "test@example.com", true, 0.4, map[string]bool{"not_test_email": false}},
		{"consecutive dots", "john..doe@mail.ch", false, 0.9, map[string]bool{"no_consecutive_dots": false}},
		{"no address", "no email here", false, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.candidate)
			if res.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (checks %v)", res.Valid, tt.wantValid, res.Checks)
			}
			if diff := res.Confidence - tt.wantConf; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Confidence = %v, want %v", res.Confidence, tt.wantConf)
			}
			for check, want := range tt.wantChecks {
				if res.Checks[check] != want {
					t.Errorf("check %s = %v, want %v", check, res.Checks[check], want)
				}
			}
		})
	}
}

func TestValidate_NarrowsToAddress(t *testing.T) {
	res := NewValidator().Validate("Mail: anna@beispiel.ch.")
	if !res.Valid {
		t.Fatalf("expected valid email, checks %v", res.Checks)
	}
	if res.Start != 6 || res.End != 22 {
		t.Errorf("span = [%d,%d), want [6,22)", res.Start, res.End)
	}
}

func TestValidate_WholeCandidateNotRefined(t *testing.T) {
	res := NewValidator().Validate("anna@beispiel.ch")
	if res.Refined() {
		t.Errorf("span = [%d,%d), want no refinement", res.Start, res.End)
	}
}
