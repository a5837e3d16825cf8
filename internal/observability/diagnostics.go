// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"sync"

	"go.uber.org/zap"
)

// DiagnosticKind classifies a recoverable problem met while processing a document.
type DiagnosticKind string

const (
	// DiagnosticMalformed is a candidate with an inverted, empty or out-of-bounds span.
	DiagnosticMalformed DiagnosticKind = "malformed"
	// DiagnosticRejected is a candidate its type validator did not accept.
	DiagnosticRejected DiagnosticKind = "rejected"
	// DiagnosticRemoteFailure is a remote recognizer that contributed nothing.
	DiagnosticRemoteFailure DiagnosticKind = "remote_failure"
	// DiagnosticUnknownType is a candidate whose type is outside the known set.
	DiagnosticUnknownType DiagnosticKind = "unknown_type"
	// DiagnosticUnmapped is a final span that could not be mapped to original offsets.
	DiagnosticUnmapped DiagnosticKind = "unmapped"
	// DiagnosticOverlap is a span removed by the final disjointness guard.
	DiagnosticOverlap DiagnosticKind = "overlap"
)

// Diagnostic is a structured warning. Diagnostics never abort processing.
type Diagnostic struct {
	Kind       DiagnosticKind `json:"kind" yaml:"kind"`
	Stage      string         `json:"stage" yaml:"stage"`
	Message    string         `json:"message" yaml:"message"`
	Type       string         `json:"type,omitempty" yaml:"type,omitempty"`
	Start      int            `json:"start" yaml:"start"`
	End        int            `json:"end" yaml:"end"`
	Recognizer string         `json:"recognizer,omitempty" yaml:"recognizer,omitempty"`
}

// Fields renders d as zap fields.
func (d Diagnostic) Fields() []zap.Field {
	fields := []zap.Field{
		zap.String("kind", string(d.Kind)),
		zap.String("stage", d.Stage),
	}
	if d.Type != "" {
		fields = append(fields, zap.String("entity_type", d.Type))
	}
	if d.Start != 0 || d.End != 0 {
		fields = append(fields, zap.Int("start", d.Start), zap.Int("end", d.End))
	}
	if d.Recognizer != "" {
		fields = append(fields, zap.String("recognizer", d.Recognizer))
	}
	return fields
}

// Diagnostics collects warnings for one document and forwards each one to the
// logger as it is recorded. It is safe for concurrent use.
type Diagnostics struct {
	logger  *zap.Logger
	metrics *Metrics

	mu    sync.Mutex
	items []Diagnostic
}

// NewDiagnostics creates a recorder. Both arguments may be nil.
func NewDiagnostics(logger *zap.Logger, metrics *Metrics) *Diagnostics {
	return &Diagnostics{logger: OrNop(logger), metrics: metrics}
}

// Record stores d and emits it as a warning.
func (r *Diagnostics) Record(d Diagnostic) {
	r.logger.Warn(d.Message, d.Fields()...)
	if r.metrics != nil {
		r.metrics.Dropped.WithLabelValues(string(d.Kind)).Inc()
	}

	r.mu.Lock()
	r.items = append(r.items, d)
	r.mu.Unlock()
}

// RecordAll records every diagnostic in ds.
func (r *Diagnostics) RecordAll(ds []Diagnostic) {
	for _, d := range ds {
		r.Record(d)
	}
}

// Items returns a copy of everything recorded so far.
func (r *Diagnostics) Items() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of recorded diagnostics.
func (r *Diagnostics) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
