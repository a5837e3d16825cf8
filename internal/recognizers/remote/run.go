// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/observability"
	"entity-pipeline/internal/resilience"
)

// Outcome statuses.
const (
	StatusOK      = "ok"
	StatusTimeout = "timeout"
	StatusError   = "error"
)

// Outcome is the settled result of one recognizer call.
type Outcome struct {
	Recognizer string        `json:"recognizer" yaml:"recognizer"`
	Status     string        `json:"status" yaml:"status"`
	Entities   int           `json:"entities" yaml:"entities"`
	Duration   time.Duration `json:"duration" yaml:"duration"`
	Err        error         `json:"-" yaml:"-"`
}

// Report is the union of all successful recognizers' entities plus one
// Outcome per recognizer that was called.
type Report struct {
	Entities []detector.Entity
	Outcomes []Outcome
}

// Failures returns the outcomes that contributed no entities because of an
// error or timeout.
func (r Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status != StatusOK {
			out = append(out, o)
		}
	}
	return out
}

// Active filters recognizers down to the enabled ones supporting language.
func Active(recognizers []Recognizer, language string) []Recognizer {
	var out []Recognizer
	for _, rec := range recognizers {
		if rec != nil && rec.Config().Enabled && rec.Supports(language) {
			out = append(out, rec)
		}
	}
	return out
}

// Run calls every enabled recognizer supporting language in parallel and
// waits for all of them to settle. A failing or slow recognizer never cancels
// its siblings and never makes Run fail; it contributes no entities. Each call
// is bounded by the smaller of its own timeout and timeout (when positive).
// With nothing enabled Run returns immediately without starting goroutines.
func Run(ctx context.Context, recognizers []Recognizer, text, language string, timeout time.Duration, logger *zap.Logger) Report {
	active := Active(recognizers, language)
	if len(active) == 0 {
		return Report{}
	}
	logger = observability.OrNop(logger)

	results := make([][]detector.Entity, len(active))
	outcomes := make([]Outcome, len(active))

	// Plain Group: no shared cancellation, every task reports nil.
	var g errgroup.Group
	for i, rec := range active {
		g.Go(func() error {
			results[i], outcomes[i] = call(ctx, rec, text, language, timeout)
			return nil
		})
	}
	_ = g.Wait()

	var report Report
	for i, o := range outcomes {
		report.Outcomes = append(report.Outcomes, o)
		if o.Status != StatusOK {
			classified := resilience.ClassifyError(o.Err)
			logger.Warn("remote recognizer contributed no entities",
				zap.String("recognizer", o.Recognizer),
				zap.String("status", o.Status),
				zap.Stringer("error_type", classified.Type),
				zap.Duration("duration", o.Duration),
				zap.Error(o.Err))
			continue
		}
		report.Entities = append(report.Entities, results[i]...)
	}
	return report
}

type analyzeResult struct {
	entities []detector.Entity
	err      error
}

func call(ctx context.Context, rec Recognizer, text, language string, timeout time.Duration) ([]detector.Entity, Outcome) {
	cfg := rec.Config()
	budget := cfg.Timeout()
	if timeout > 0 && (budget <= 0 || timeout < budget) {
		budget = timeout
	}
	if budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	outcome := Outcome{Recognizer: rec.Name()}
	start := time.Now()

	// The call runs in its own goroutine so a recognizer ignoring ctx cannot
	// hold the fan-out past its budget.
	done := make(chan analyzeResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- analyzeResult{err: errors.Newf("recognizer panicked: %v", p)}
			}
		}()
		entities, err := rec.Analyze(ctx, text, language)
		done <- analyzeResult{entities: entities, err: err}
	}()

	var res analyzeResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = analyzeResult{err: ctx.Err()}
	}
	outcome.Duration = time.Since(start)

	switch {
	case ctx.Err() != nil:
		outcome.Status = StatusTimeout
		outcome.Err = errors.Wrapf(ctx.Err(), "%s exceeded %s", rec.Name(), budget)
		return nil, outcome
	case res.err != nil:
		outcome.Status = StatusError
		outcome.Err = res.err
		return nil, outcome
	}

	entities := make([]detector.Entity, 0, len(res.entities))
	for _, e := range res.entities {
		e = e.Clone()
		e.Source = detector.SourceRemoteService
		e.SetMeta(detector.MetaRecognizer, rec.Name())
		if _, ok := e.Metadata[detector.MetaPriority]; !ok {
			e.SetMeta(detector.MetaPriority, cfg.Priority)
		}
		entities = append(entities, e)
	}
	outcome.Status = StatusOK
	outcome.Entities = len(entities)
	return entities, outcome
}

// Health is the result of probing one recognizer.
type Health struct {
	Recognizer string
	Enabled    bool
	Healthy    bool
}

func (h Health) String() string {
	switch {
	case !h.Enabled:
		return fmt.Sprintf("%s: disabled", h.Recognizer)
	case h.Healthy:
		return fmt.Sprintf("%s: healthy", h.Recognizer)
	default:
		return fmt.Sprintf("%s: unreachable", h.Recognizer)
	}
}

// ValidateRemote probes every enabled recognizer's health endpoint in
// parallel. Disabled recognizers are reported without any network traffic.
func ValidateRemote(ctx context.Context, recognizers []Recognizer) []Health {
	out := make([]Health, len(recognizers))
	var g errgroup.Group
	for i, rec := range recognizers {
		out[i] = Health{Recognizer: rec.Name(), Enabled: rec.Config().Enabled}
		if !out[i].Enabled {
			continue
		}
		g.Go(func() error {
			out[i].Healthy = rec.HealthCheck(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
