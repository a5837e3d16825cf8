// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ipaddress

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
		{"public", "81.62.10.4", true, 0.85, map[string]bool{"public": true}},
		{"private", "192.168.1.10", true, 0.55, map[string]bool{"public": false}},
		{"loopback", "127.0.0.1", true, 0.30, nil},
		{"documentation range", "203.0.113.5", true, 0.55, map[string]bool{"not_test": false}},
		{"well known resolver", "8.8.8.8", true, 0.55, map[string]bool{"not_wellknown": false}},
		{"ipv6 documentation", "2001:db8::1", true, 0.55, map[string]bool{"not_test": false}},
		{"octet out of range", "999.1.1.1", false, 0, nil},
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

func TestValidate_Narrow(t *testing.T) {
	res := NewValidator().Validate("Server: 81.62.10.4")
	if !res.Valid {
		t.Fatalf("expected valid address, checks %v", res.Checks)
	}
	if res.Start != 8 || res.End != 18 {
		t.Errorf("span = [%d,%d), want [8,18)", res.Start, res.End)
	}
}

func TestVersion(t *testing.T) {
	v := NewValidator()
	if got := v.Version("81.62.10.4"); got != "IPv4" {
		t.Errorf("Version = %q, want IPv4", got)
	}
	if got := v.Version("::1"); got != "IPv6" {
		t.Errorf("Version = %q, want IPv6", got)
	}
	if got := v.Version("nope"); got != "" {
		t.Errorf("Version = %q, want empty", got)
	}
}
