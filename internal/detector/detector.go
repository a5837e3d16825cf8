// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"maps"
	"unicode/utf8"
)

// Type identifies the kind of sensitive entity a span holds.
type Type string

// The closed set of entity types understood by the pipeline.
const (
	TypePerson       Type = "PERSON"
	TypeOrganization Type = "ORGANIZATION"
	TypeLocation     Type = "LOCATION"
	TypeAddress      Type = "ADDRESS"
	TypeStreetName   Type = "STREET_NAME"
	TypeStreetNumber Type = "STREET_NUMBER"
	TypePostalCode   Type = "POSTAL_CODE"
	TypeCity         Type = "CITY"
	TypeCountry      Type = "COUNTRY"
	TypeEmail        Type = "EMAIL"
	TypePhone        Type = "PHONE"
	TypeDate         Type = "DATE"
	TypeIBAN         Type = "IBAN"
	TypeAVSNumber    Type = "AVS_NUMBER"
	TypeUIDNumber    Type = "UID_NUMBER"
	TypeSSN          Type = "SSN"
	TypeCreditCard   Type = "CREDIT_CARD"
	TypeIPAddress    Type = "IP_ADDRESS"
	TypeURL          Type = "URL"
	TypeIdentifier   Type = "IDENTIFIER"
	TypeNumber       Type = "NUMBER"
)

// AllTypes lists every known entity type in a stable order.
var AllTypes = []Type{
	TypePerson, TypeOrganization, TypeLocation, TypeAddress,
	TypeStreetName, TypeStreetNumber, TypePostalCode, TypeCity, TypeCountry,
	TypeEmail, TypePhone, TypeDate, TypeIBAN, TypeAVSNumber, TypeUIDNumber,
	TypeSSN, TypeCreditCard, TypeIPAddress, TypeURL, TypeIdentifier, TypeNumber,
}

var knownTypes = func() map[Type]bool {
	m := make(map[Type]bool, len(AllTypes))
	for _, t := range AllTypes {
		m[t] = true
	}
	return m
}()

// ParseType converts a configuration string into a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !knownTypes[t] {
		return "", fmt.Errorf("unknown entity type %q", s)
	}
	return t, nil
}

// IsAddressComponent reports whether t is one of the parts Stage B can merge into an ADDRESS.
func (t Type) IsAddressComponent() bool {
	switch t {
	case TypeStreetName, TypeStreetNumber, TypePostalCode, TypeCity, TypeCountry:
		return true
	}
	return false
}

// Source records which kind of producer created an entity.
type Source string

const (
	SourceLocalPattern  Source = "local-pattern"
	SourceLocalModel    Source = "local-model"
	SourceRemoteService Source = "remote-service"
	SourceConsolidated  Source = "consolidated"
)

// Metadata keys shared between packages.
const (
	MetaComponents     = "components"
	MetaLogicalID      = "logicalId"
	MetaRecognizer     = "recognizer"
	MetaAddressID      = "address_id"
	MetaAddressRef     = "address_ref"
	MetaNormalizedText = "normalized_text"
	MetaValidation     = "validation_checks"
	MetaGrammar        = "grammar"
	MetaPriority       = "recognizer_priority"
)

// Entity is a typed span of text suspected or confirmed to be sensitive.
// Start and End are half-open rune offsets into the text the entity was detected on.
type Entity struct {
	Type       Type           `json:"type" yaml:"type"`
	Text       string         `json:"text" yaml:"text"`
	Start      int            `json:"start" yaml:"start"`
	End        int            `json:"end" yaml:"end"`
	Confidence float64        `json:"confidence" yaml:"confidence"`
	Source     Source         `json:"source" yaml:"source"`
	Metadata   map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Len returns the span length in runes.
func (e Entity) Len() int {
	return e.End - e.Start
}

// Overlaps reports whether the two spans share at least one position.
func (e Entity) Overlaps(other Entity) bool {
	return e.Start < other.End && e.End > other.Start
}

// Valid reports whether the span is well formed for a text of textLen runes.
func (e Entity) Valid(textLen int) bool {
	return e.Start >= 0 && e.Start < e.End && e.End <= textLen
}

// LogicalID returns the linking identifier, if one was assigned.
func (e Entity) LogicalID() string {
	id, _ := e.Metadata[MetaLogicalID].(string)
	return id
}

// RecognizerPriority returns the producing recognizer's priority; local
// recognizers leave it unset, which counts as zero.
func (e Entity) RecognizerPriority() int {
	p, _ := e.Metadata[MetaPriority].(int)
	return p
}

// Components returns the sub-entities a consolidated ADDRESS was built from.
func (e Entity) Components() []Entity {
	c, _ := e.Metadata[MetaComponents].([]Entity)
	return c
}

// SetMeta sets a metadata key, allocating the map on first use.
func (e *Entity) SetMeta(key string, value any) {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
}

// Clone returns a copy whose metadata map can be modified independently.
func (e Entity) Clone() Entity {
	c := e
	if e.Metadata != nil {
		c.Metadata = maps.Clone(e.Metadata)
		if comps, ok := e.Metadata[MetaComponents].([]Entity); ok {
			cc := make([]Entity, len(comps))
			for i, comp := range comps {
				cc[i] = comp.Clone()
			}
			c.Metadata[MetaComponents] = cc
		}
	}
	return c
}

func (e Entity) String() string {
	return fmt.Sprintf("%s(%q)@[%d,%d)", e.Type, e.Text, e.Start, e.End)
}

// Recognizer produces candidate entities from normalized text synchronously.
type Recognizer interface {
	Name() string
	// SupportedEntities returns the types this recognizer emits; empty means all.
	SupportedEntities() []Type
	// SupportedLanguages returns the language codes handled; empty means all.
	SupportedLanguages() []string
	Analyze(text string, language string) []Entity
}

// ValidationResult is the outcome of checking one candidate's format.
type ValidationResult struct {
	Valid      bool
	Confidence float64
	Checks     map[string]bool

	// Start and End optionally narrow the match inside the candidate text
	// (rune offsets relative to the candidate). Both zero means no refinement.
	Start int
	End   int
}

// Refined reports whether the result narrows the candidate span.
func (r ValidationResult) Refined() bool {
	return r.End > r.Start
}

// Narrow records the byte span [byteStart, byteEnd) of candidate as the
// refined match, unless it covers the whole candidate.
func (r *ValidationResult) Narrow(candidate string, byteStart, byteEnd int) {
	if byteStart == 0 && byteEnd == len(candidate) {
		return
	}
	r.Start, r.End = RuneSpan(candidate, byteStart, byteEnd)
}

// Validator confirms or rejects a candidate for one entity type.
// Implementations are stateless and safe for concurrent use.
type Validator interface {
	EntityType() Type
	Validate(candidate string) ValidationResult
}

// RuneSpan converts byte offsets into s to rune offsets.
func RuneSpan(s string, byteStart, byteEnd int) (int, int) {
	start := utf8.RuneCountInString(s[:byteStart])
	return start, start + utf8.RuneCountInString(s[byteStart:byteEnd])
}
