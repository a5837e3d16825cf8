// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package date

import "testing"

func TestValidate(t *testing.T) {
	v := NewValidator()
	tests := []struct {
		name         string
		candidate    string
		wantValid    bool
		wantCalendar bool
	}{
		{"iso leap day", "2024-02-29", true, true},
		{"iso non leap day", "2023-02-29", false, false},
		{"dotted european", "31.12.1999", true, true},
		{"us month first", "12/31/1999", true, true},
		{"impossible day", "31.02.2020", false, false},
		{"german month name", "3. März 1985", true, true},
		{"french month name", "born on 1er janvier 1990", true, true},
		{"english month first", "March 5, 2021", true, true},
		{"no date", "hello world", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Validate(tt.candidate)
			if res.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v (checks %v)", res.Valid, tt.wantValid, res.Checks)
			}
			if res.Checks["calendar"] != tt.wantCalendar {
				t.Errorf("calendar check = %v, want %v", res.Checks["calendar"], tt.wantCalendar)
			}
		})
	}
}

func TestValidate_Confidence(t *testing.T) {
	v := NewValidator()
	if got := v.Validate("1985-06-15").Confidence; got != 0.85 {
		t.Errorf("recent date confidence = %v, want 0.85", got)
	}
	if got := v.Validate("1850-01-01").Confidence; got != 0.4 {
		t.Errorf("historic date confidence = %v, want 0.4", got)
	}
}

func TestExpandYear(t *testing.T) {
	tests := map[string]int{"49": 2049, "50": 1950, "99": 1999, "2001": 2001}
	for in, want := range tests {
		if got := expandYear(in); got != want {
			t.Errorf("expandYear(%q) = %d, want %d", in, got, want)
		}
	}
}
