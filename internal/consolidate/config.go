// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package consolidate

import (
	"regexp"

	"github.com/cockroachdb/errors"

	"entity-pipeline/internal/detector"
)

// ErrInvalidConfig marks consolidation settings rejected at startup.
var ErrInvalidConfig = errors.New("invalid consolidation configuration")

// Aggregate selects how a synthesized ADDRESS derives its confidence from
// its components.
type Aggregate string

const (
	// AggregateMin uses the weakest component's confidence.
	AggregateMin Aggregate = "min"
	// AggregateWeightedAverage weights each component by its length in runes.
	AggregateWeightedAverage Aggregate = "weighted_average"
)

// Grammar is a country address layout: a regular expression over the
// sequence of component letters S (street), N (number), P (postal code),
// C (city) and K (country), e.g. "^SN?PC$".
type Grammar struct {
	Country string `yaml:"country"`
	Pattern string `yaml:"pattern"`
}

// DefaultGrammars covers Swiss, German, French and US layouts.
func DefaultGrammars() []Grammar {
	return []Grammar{
		{Country: "ch", Pattern: `^SN?P?CK?$`},
		{Country: "de", Pattern: `^SN?PC?K?$`},
		{Country: "fr", Pattern: `^N?SP?CK?$`},
		{Country: "us", Pattern: `^N?S(?:CP?|P)K?$`},
	}
}

// AddressConfig controls Stage B.
type AddressConfig struct {
	// MaxGap is the largest number of runes allowed between two adjacent components.
	MaxGap int `yaml:"max_gap"`
	// RetainComponents keeps merged components, with a back-reference, in
	// Result.Retained instead of deleting them.
	RetainComponents bool      `yaml:"retain_components"`
	Aggregate        Aggregate `yaml:"aggregate"`
	Grammars         []Grammar `yaml:"grammars"`
}

// Config holds every consolidation setting.
type Config struct {
	// Priorities ranks entity types for overlap resolution; higher wins.
	// Types missing from the map rank zero.
	Priorities map[detector.Type]int `yaml:"priorities"`
	Address    AddressConfig         `yaml:"address"`
}

// DefaultPriorities orders structured identifiers above contact data, contact
// data above addresses, addresses above names and dates, and generic
// identifiers and numbers last.
func DefaultPriorities() map[detector.Type]int {
	return map[detector.Type]int{
		detector.TypeAVSNumber:    100,
		detector.TypeUIDNumber:    100,
		detector.TypeIBAN:         95,
		detector.TypeCreditCard:   90,
		detector.TypeSSN:          90,
		detector.TypeEmail:        80,
		detector.TypeURL:          78,
		detector.TypeIPAddress:    76,
		detector.TypePhone:        75,
		detector.TypeAddress:      70,
		detector.TypeStreetName:   60,
		detector.TypeStreetNumber: 60,
		detector.TypePostalCode:   60,
		detector.TypeCity:         60,
		detector.TypeCountry:      60,
		detector.TypePerson:       50,
		detector.TypeOrganization: 50,
		detector.TypeDate:         40,
		detector.TypeLocation:     40,
		detector.TypeIdentifier:   20,
		detector.TypeNumber:       10,
	}
}

// DefaultConfig returns the built-in settings: 50 rune gap, components
// deleted, min aggregate.
func DefaultConfig() Config {
	return Config{
		Priorities: DefaultPriorities(),
		Address: AddressConfig{
			MaxGap:    50,
			Aggregate: AggregateMin,
			Grammars:  DefaultGrammars(),
		},
	}
}

// Validate reports every problem in c.
func (c Config) Validate() error {
	var errs []error
	if c.Address.MaxGap < 0 {
		errs = append(errs, errors.Newf("address.max_gap must not be negative, got %d", c.Address.MaxGap))
	}
	switch c.Address.Aggregate {
	case AggregateMin, AggregateWeightedAverage:
	default:
		errs = append(errs, errors.WithHint(
			errors.Newf("unknown address.aggregate %q", c.Address.Aggregate),
			"use min or weighted_average"))
	}
	for _, g := range c.Address.Grammars {
		if _, err := regexp.Compile(g.Pattern); err != nil {
			errs = append(errs, errors.Wrapf(err, "address grammar %q", g.Country))
		}
	}
	for t := range c.Priorities {
		if _, err := detector.ParseType(string(t)); err != nil {
			errs = append(errs, errors.Wrap(err, "priorities"))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append(errs, ErrInvalidConfig)...)
}
