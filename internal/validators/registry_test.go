// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/help"
)

type stubValidator struct {
	typ detector.Type
}

func (s stubValidator) EntityType() detector.Type { return s.typ }

func (s stubValidator) Validate(candidate string) detector.ValidationResult {
	return detector.ValidationResult{Valid: candidate != ""}
}

func TestRegistry_BuildsOnceLazily(t *testing.T) {
	calls := 0
	r := NewRegistry(func() detector.Validator {
		calls++
		return stubValidator{typ: detector.TypeEmail}
	})
	assert.Equal(t, 0, calls, "nothing is built before first access")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.GetAllValidators()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(1), r.builds.Load())
}

func TestRegistry_LookupAndDuplicates(t *testing.T) {
	first := stubValidator{typ: detector.TypeEmail}
	r := NewRegistry(
		func() detector.Validator { return first },
		func() detector.Validator { return stubValidator{typ: detector.TypePhone} },
		func() detector.Validator { return stubValidator{typ: detector.TypeEmail} },
		func() detector.Validator { return nil },
		nil,
	)

	seq := r.GetAllValidators()
	require.Equal(t, 2, seq.Len())
	assert.Equal(t, []detector.Type{detector.TypeEmail, detector.TypePhone}, seq.Types())

	v, ok := r.GetValidatorForType(detector.TypeEmail)
	require.True(t, ok)
	assert.Equal(t, first, v)

	_, ok = r.GetValidatorForType(detector.TypeIBAN)
	assert.False(t, ok)
}

func TestSequence_IsReadOnly(t *testing.T) {
	r := NewRegistry(
		func() detector.Validator { return stubValidator{typ: detector.TypeEmail} },
		func() detector.Validator { return stubValidator{typ: detector.TypePhone} },
	)

	types := r.GetAllValidators().Types()
	types[0] = detector.TypeIBAN

	assert.Equal(t, detector.TypeEmail, r.GetAllValidators().At(0).EntityType())

	var seen []detector.Type
	for i, v := range r.GetAllValidators().All() {
		seen = append(seen, v.EntityType())
		if i == 0 {
			break
		}
	}
	assert.Equal(t, []detector.Type{detector.TypeEmail}, seen)
}

func TestRegistry_ResetRebuilds(t *testing.T) {
	calls := 0
	r := NewRegistry(func() detector.Validator {
		calls++
		return stubValidator{typ: detector.TypeDate}
	})

	before, _ := r.GetValidatorForType(detector.TypeDate)
	r.reset()
	after, _ := r.GetValidatorForType(detector.TypeDate)

	assert.Equal(t, 2, calls)
	assert.Equal(t, before, after)
}

func TestDefault_CoversStandardTypes(t *testing.T) {
	t.Cleanup(resetDefault)

	seq := Default().GetAllValidators()
	assert.Equal(t, len(StandardBuilders()), seq.Len())
	for _, typ := range []detector.Type{
		detector.TypeEmail, detector.TypePhone, detector.TypeIBAN, detector.TypeAVSNumber,
		detector.TypeUIDNumber, detector.TypeCreditCard, detector.TypeSSN,
		detector.TypeIPAddress, detector.TypePostalCode, detector.TypeDate,
	} {
		_, ok := Default().GetValidatorForType(typ)
		assert.True(t, ok, typ)
	}
	_, ok := Default().GetValidatorForType(detector.TypePerson)
	assert.False(t, ok)
}

func TestStandardValidators(t *testing.T) {
	r := NewRegistry(StandardBuilders()...)

	tests := []struct {
		name      string
		typ       detector.Type
		candidate string
		valid     bool
	}{
		{"email plain", detector.TypeEmail, "john.doe@mail.ch", true},
		{"email international", detector.TypeEmail, "jürg@beispiel.de", true},
		{"email double dot", detector.TypeEmail, "a..b@mail.ch", false},
		{"email none", detector.TypeEmail, "not an email", false},

		{"phone international", detector.TypePhone, "+41 79 345 82 16", true},
		{"phone trunk", detector.TypePhone, "+41 (0)79 345 82 16", true},
		{"phone national", detector.TypePhone, "079 345 82 16", true},
		{"phone too short", detector.TypePhone, "12345", false},
		{"phone repeating", detector.TypePhone, "+41 77 777 77 77", false},

		{"iban printed", detector.TypeIBAN, "CH93 0076 2011 6238 5295 7", true},
		{"iban compact", detector.TypeIBAN, "DE89370400440532013000", true},
		{"iban bad checksum", detector.TypeIBAN, "CH93 0076 2011 6238 5295 8", false},

		{"avs dotted", detector.TypeAVSNumber, "756.9217.0769.85", true},
		{"avs compact", detector.TypeAVSNumber, "7569217076985", true},
		{"avs bad check digit", detector.TypeAVSNumber, "756.9217.0769.86", false},
		{"avs wrong prefix", detector.TypeAVSNumber, "123.4567.8901.23", false},

		{"uid", detector.TypeUIDNumber, "CHE-116.281.710", true},
		{"uid with suffix", detector.TypeUIDNumber, "CHE-109.322.551 MWST", true},
		{"uid bad check digit", detector.TypeUIDNumber, "CHE-116.281.711", false},

		{"card visa", detector.TypeCreditCard, "4539 1488 0343 6467", true},
		{"card amex", detector.TypeCreditCard, "378282246310005", true},
		{"card luhn failure", detector.TypeCreditCard, "4539 1488 0343 6468", false},

		{"ssn", detector.TypeSSN, "536-22-1871", true},
		{"ssn area 666", detector.TypeSSN, "666-12-3456", false},
		{"ssn area 900", detector.TypeSSN, "900-12-3456", false},
		{"ssn group 00", detector.TypeSSN, "536-00-1871", false},

		{"ipv4", detector.TypeIPAddress, "192.168.1.10", true},
		{"ipv6", detector.TypeIPAddress, "2001:db8::1", true},
		{"ip out of range", detector.TypeIPAddress, "999.1.1.1", false},

		{"postal ch", detector.TypePostalCode, "8001", true},
		{"postal prefixed", detector.TypePostalCode, "CH-8001", true},
		{"postal de", detector.TypePostalCode, "10115", true},
		{"postal prefix mismatch", detector.TypePostalCode, "D-8001", false},
		{"postal leading zero", detector.TypePostalCode, "0999", false},

		{"date dotted", detector.TypeDate, "31.12.1980", true},
		{"date month first", detector.TypeDate, "12/31/1980", true},
		{"date iso", detector.TypeDate, "1980-12-31", true},
		{"date german", detector.TypeDate, "2. Januar 1980", true},
		{"date french", detector.TypeDate, "1er janvier 2000", true},
		{"date english", detector.TypeDate, "January 2, 1980", true},
		{"date impossible", detector.TypeDate, "31.02.1980", false},
		{"date none", detector.TypeDate, "the third of may", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := r.GetValidatorForType(tt.typ)
			require.True(t, ok)
			res := v.Validate(tt.candidate)
			assert.Equal(t, tt.valid, res.Valid, "checks: %v", res.Checks)
			if tt.valid {
				assert.Greater(t, res.Confidence, 0.0)
				assert.LessOrEqual(t, res.Confidence, 1.0)
			}
		})
	}
}

func TestStandardValidators_Refine(t *testing.T) {
	r := NewRegistry(StandardBuilders()...)

	tests := []struct {
		typ        detector.Type
		candidate  string
		start, end int
	}{
		{detector.TypeEmail, "mail: anna@firma.ch.", 6, 19},
		{detector.TypeIBAN, "IBAN: DE89 3704 0044 0532 0130 00 bitte", 6, 33},
		{detector.TypeAVSNumber, "AHV 756.9217.0769.85", 4, 20},
	}
	for _, tt := range tests {
		v, _ := r.GetValidatorForType(tt.typ)
		res := v.Validate(tt.candidate)
		require.True(t, res.Valid, tt.candidate)
		require.True(t, res.Refined(), tt.candidate)
		assert.Equal(t, tt.start, res.Start, tt.candidate)
		assert.Equal(t, tt.end, res.End, tt.candidate)
	}

	v, _ := r.GetValidatorForType(detector.TypeEmail)
	assert.False(t, v.Validate("john.doe@mail.ch").Refined())
}

func TestStandardValidators_MalformedInputNeverPanics(t *testing.T) {
	r := NewRegistry(StandardBuilders()...)
	inputs := []string{"", " ", "\xff\xfe", "@", "+", "CHE-", "756", "::", "--", "31.", "ä"}
	for _, v := range r.GetAllValidators().All() {
		for _, in := range inputs {
			assert.NotPanics(t, func() { v.Validate(in) }, "%s(%q)", v.EntityType(), in)
		}
	}
}

func TestRegistry_RegisterHelp(t *testing.T) {
	var out strings.Builder
	h := help.NewSystem(&out, true)

	r := NewRegistry(StandardBuilders()...)
	require.Equal(t, r.GetAllValidators().Len(), r.RegisterHelp(h))
	for _, typ := range r.GetAllValidators().Types() {
		assert.Contains(t, h.Providers(), string(typ))
	}

	assert.Zero(t, NewRegistry(func() detector.Validator { return stubValidator{typ: detector.TypeURL} }).RegisterHelp(h))
}
