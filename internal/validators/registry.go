// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package validators holds the process-wide set of format validators, one per
// entity type. The set is built lazily on first use and never mutated afterwards.
package validators

import (
	"iter"
	"sync"
	"sync/atomic"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/help"
	"entity-pipeline/internal/validators/avs"
	"entity-pipeline/internal/validators/creditcard"
	"entity-pipeline/internal/validators/date"
	"entity-pipeline/internal/validators/email"
	"entity-pipeline/internal/validators/iban"
	"entity-pipeline/internal/validators/ipaddress"
	"entity-pipeline/internal/validators/phone"
	"entity-pipeline/internal/validators/postalcode"
	"entity-pipeline/internal/validators/ssn"
	"entity-pipeline/internal/validators/uid"
)

// Builder constructs one validator. Builders run once per registry build.
type Builder func() detector.Validator

// StandardBuilders returns the builders of every validator shipped with the module.
func StandardBuilders() []Builder {
	return []Builder{
		func() detector.Validator { return email.NewValidator() },
		func() detector.Validator { return phone.NewValidator() },
		func() detector.Validator { return iban.NewValidator() },
		func() detector.Validator { return avs.NewValidator() },
		func() detector.Validator { return uid.NewValidator() },
		func() detector.Validator { return creditcard.NewValidator() },
		func() detector.Validator { return ssn.NewValidator() },
		func() detector.Validator { return ipaddress.NewValidator() },
		func() detector.Validator { return postalcode.NewValidator() },
		func() detector.Validator { return date.NewValidator() },
	}
}

// Sequence is a read-only ordered view of a validator set.
type Sequence struct {
	items []detector.Validator
}

// Len returns the number of validators.
func (s Sequence) Len() int {
	return len(s.items)
}

// At returns the i-th validator.
func (s Sequence) At(i int) detector.Validator {
	return s.items[i]
}

// All iterates over the validators in registration order.
func (s Sequence) All() iter.Seq2[int, detector.Validator] {
	return func(yield func(int, detector.Validator) bool) {
		for i, v := range s.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Types returns the entity types covered, in registration order.
func (s Sequence) Types() []detector.Type {
	types := make([]detector.Type, len(s.items))
	for i, v := range s.items {
		types[i] = v.EntityType()
	}
	return types
}

type snapshot struct {
	seq    Sequence
	byType map[detector.Type]detector.Validator
}

func newSnapshot(builders []Builder) *snapshot {
	s := &snapshot{byType: make(map[detector.Type]detector.Validator, len(builders))}
	items := make([]detector.Validator, 0, len(builders))
	for _, build := range builders {
		if build == nil {
			continue
		}
		v := build()
		if v == nil {
			continue
		}
		// First validator registered for a type wins.
		if _, dup := s.byType[v.EntityType()]; dup {
			continue
		}
		s.byType[v.EntityType()] = v
		items = append(items, v)
	}
	s.seq = Sequence{items: items}
	return s
}

// Registry owns one lazily built validator set.
type Registry struct {
	builders []Builder

	mu      sync.Mutex
	current atomic.Pointer[snapshot]
	builds  atomic.Int64
}

// NewRegistry returns a registry that builds its set from builders on first access.
func NewRegistry(builders ...Builder) *Registry {
	return &Registry{builders: append([]Builder(nil), builders...)}
}

func (r *Registry) load() *snapshot {
	if s := r.current.Load(); s != nil {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.current.Load(); s != nil {
		return s
	}
	s := newSnapshot(r.builders)
	r.builds.Add(1)
	r.current.Store(s)
	return s
}

// GetAllValidators returns the validator set, building it on first call.
func (r *Registry) GetAllValidators() Sequence {
	return r.load().seq
}

// GetValidatorForType returns the validator for t in constant time.
func (r *Registry) GetValidatorForType(t detector.Type) (detector.Validator, bool) {
	v, ok := r.load().byType[t]
	return v, ok
}

// RegisterHelp adds every validator that documents itself to h and
// returns how many did.
func (r *Registry) RegisterHelp(h *help.System) int {
	n := 0
	for _, v := range r.GetAllValidators().All() {
		if p, ok := v.(help.Provider); ok {
			h.RegisterProvider(p)
			n++
		}
	}
	return n
}

// reset discards the cached set so the next access rebuilds it. Must not run
// concurrently with detection.
func (r *Registry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current.Store(nil)
}

var defaultRegistry = NewRegistry(StandardBuilders()...)

// Default returns the process-wide registry with the standard validators.
func Default() *Registry {
	return defaultRegistry
}

func resetDefault() {
	defaultRegistry.reset()
}
