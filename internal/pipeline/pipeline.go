// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pipeline runs one document through normalization, detection,
// validation and consolidation and returns entities in original offsets.
package pipeline

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"entity-pipeline/internal/consolidate"
	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/normalizer"
	"entity-pipeline/internal/observability"
	"entity-pipeline/internal/recognizers"
	"entity-pipeline/internal/recognizers/remote"
	"entity-pipeline/internal/validators"
)

// DefaultRemoteTimeout bounds the whole remote fan-out of one document.
const DefaultRemoteTimeout = 10 * time.Second

const component = "pipeline"

// ErrInvalidOptions marks configuration problems found by New.
var ErrInvalidOptions = errors.New("invalid pipeline options")

// Options configures a Pipeline. Zero values fall back to defaults except for
// Normalizer and Consolidation, which are used as given.
type Options struct {
	Normalizer    normalizer.Config
	Consolidation consolidate.Config

	// Recognizers supplies local and remote recognizers. Nil means none:
	// only Document.Candidates are consolidated.
	Recognizers *recognizers.Registry
	// Validators defaults to the process-wide registry.
	Validators *validators.Registry
	// RemoteTimeout caps every remote recognizer call of a document.
	RemoteTimeout time.Duration

	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// DefaultOptions returns options with every module at its defaults and no recognizers.
func DefaultOptions() Options {
	return Options{
		Normalizer:    normalizer.DefaultConfig(),
		Consolidation: consolidate.DefaultConfig(),
		RemoteTimeout: DefaultRemoteTimeout,
	}
}

// Document is one unit of work.
type Document struct {
	// ID identifies the document in logs; a random one is assigned when empty.
	ID       string
	Text     string
	Language string
	// Candidates are entities detected outside the pipeline. Their offsets
	// refer to the normalized text, like those of built-in recognizers.
	Candidates []detector.Entity
}

// Result is the outcome of Process. Entity offsets and Text refer to the
// original text. Linking runs on the normalized text, so entities sharing a
// logicalId agree on metadata.normalized_text (up to case and whitespace)
// while their original Text may differ, e.g. an obfuscated and a plain
// spelling of the same address.
type Result struct {
	DocumentID string             `json:"document_id" yaml:"document_id"`
	Entities   []detector.Entity  `json:"entities" yaml:"entities"`
	Retained   []detector.Entity  `json:"retained,omitempty" yaml:"retained,omitempty"`
	Normalized normalizer.Result  `json:"-" yaml:"-"`
	Stats      consolidate.Stats  `json:"stats" yaml:"stats"`
	Remote     []remote.Outcome   `json:"remote,omitempty" yaml:"remote,omitempty"`
	// Diagnostics lists every dropped candidate and remote failure.
	Diagnostics []observability.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// RemoteFailures returns the remote recognizers that contributed nothing.
func (r *Result) RemoteFailures() []remote.Outcome {
	return remote.Report{Outcomes: r.Remote}.Failures()
}

// Pipeline is safe for concurrent use; each Process call owns its document state.
type Pipeline struct {
	normalizer    *normalizer.Normalizer
	pass          *consolidate.Pass
	recognizers   *recognizers.Registry
	validators    *validators.Registry
	remoteTimeout time.Duration

	logger   *zap.Logger
	metrics  *observability.Metrics
	observer *observability.StandardObserver
}

// New validates opts and builds a Pipeline.
func New(opts Options) (*Pipeline, error) {
	norm, err := normalizer.New(opts.Normalizer)
	if err != nil {
		return nil, errors.Join(errors.Wrap(err, "normalizer"), ErrInvalidOptions)
	}
	pass, err := consolidate.New(opts.Consolidation)
	if err != nil {
		return nil, errors.Join(errors.Wrap(err, "consolidation"), ErrInvalidOptions)
	}
	if opts.RemoteTimeout < 0 {
		return nil, errors.Join(errors.Newf("remote timeout must not be negative, got %s", opts.RemoteTimeout), ErrInvalidOptions)
	}

	p := &Pipeline{
		normalizer:    norm,
		pass:          pass,
		recognizers:   opts.Recognizers,
		validators:    opts.Validators,
		remoteTimeout: opts.RemoteTimeout,
		logger:        observability.OrNop(opts.Logger),
		metrics:       opts.Metrics,
	}
	if p.recognizers == nil {
		p.recognizers = recognizers.NewRegistry(nil, nil)
	}
	if p.validators == nil {
		p.validators = validators.Default()
	}
	if p.remoteTimeout == 0 {
		p.remoteTimeout = DefaultRemoteTimeout
	}
	if p.metrics == nil {
		p.metrics = observability.NewMetrics()
	}
	p.observer = observability.NewStandardObserver(p.logger, p.metrics)
	return p, nil
}

// Metrics returns the collectors the pipeline reports to.
func (p *Pipeline) Metrics() *observability.Metrics {
	return p.metrics
}

// Process detects and consolidates the entities of doc. Malformed candidates,
// validator rejections and remote failures are reported in Result.Diagnostics;
// only cancellation of ctx makes Process fail.
func (p *Pipeline) Process(ctx context.Context, doc Document) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "process document")
	}
	id := doc.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger := p.logger.With(zap.String("document_id", id))
	diags := observability.NewDiagnostics(logger, p.metrics)
	finish := p.observer.StartTiming(component, "process", id)

	done := p.observer.StartTiming(component, "normalize", id)
	normalized := p.normalizer.Normalize(doc.Text)
	done(true, zap.Int("runes", len(normalized.IndexMap)-1))

	// Remote recognizers work on the normalized text while local ones run.
	var reports chan remote.Report
	if active := p.recognizers.EnabledRemote(doc.Language); len(active) > 0 {
		reports = make(chan remote.Report, 1)
		go func() {
			reports <- remote.Run(ctx, active, normalized.Text, doc.Language, p.remoteTimeout, logger)
		}()
	}

	done = p.observer.StartTiming(component, "detect_local", id)
	candidates := p.detectLocal(logger, normalized.Text, doc.Language)
	done(true, zap.Int("candidates", len(candidates)))

	for _, c := range doc.Candidates {
		candidates = append(candidates, c.Clone())
	}

	res := &Result{DocumentID: id, Normalized: normalized}
	if reports != nil {
		report := <-reports
		p.recordRemote(report, diags)
		res.Remote = report.Outcomes
		candidates = append(candidates, report.Entities...)
	}
	if err := ctx.Err(); err != nil {
		finish(false)
		return nil, errors.Wrap(err, "process document")
	}

	normRunes := []rune(normalized.Text)
	done = p.observer.StartTiming(component, "validate", id)
	candidates = p.validate(normRunes, candidates, diags)
	done(true, zap.Int("candidates", len(candidates)))

	done = p.observer.StartTiming(component, "consolidate", id)
	consolidated := p.pass.Run(normalized.Text, candidates)
	diags.RecordAll(consolidated.Diagnostics)
	done(true, zap.Int("entities", len(consolidated.Entities)))

	origRunes := []rune(normalized.Original)
	res.Entities = guardDisjoint(p.toOriginal(normalized, origRunes, consolidated.Entities, diags), diags)
	res.Retained = p.toOriginal(normalized, origRunes, consolidated.Retained, diags)
	res.Stats = consolidated.Stats
	res.Diagnostics = diags.Items()

	p.metrics.Documents.Inc()
	for _, e := range res.Entities {
		p.metrics.Entities.WithLabelValues(string(e.Type)).Inc()
	}
	finish(true,
		zap.Int("entities", len(res.Entities)),
		zap.Int("diagnostics", len(res.Diagnostics)))
	return res, nil
}

// detectLocal runs the local recognizers for language. A recognizer that
// panics is logged and skipped.
func (p *Pipeline) detectLocal(logger *zap.Logger, text, language string) []detector.Entity {
	var out []detector.Entity
	for _, rec := range p.recognizers.ForLanguage(language) {
		out = append(out, analyzeLocal(logger, rec, text, language)...)
	}
	return out
}

func analyzeLocal(logger *zap.Logger, rec detector.Recognizer, text, language string) (entities []detector.Entity) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("local recognizer panicked",
				zap.String("recognizer", rec.Name()),
				zap.Any("panic", r))
			entities = nil
		}
	}()
	entities = rec.Analyze(text, language)
	for i := range entities {
		if entities[i].Metadata[detector.MetaRecognizer] == nil {
			entities[i].SetMeta(detector.MetaRecognizer, rec.Name())
		}
	}
	return entities
}

func (p *Pipeline) recordRemote(report remote.Report, diags *observability.Diagnostics) {
	for _, o := range report.Outcomes {
		p.metrics.RemoteCalls.WithLabelValues(o.Recognizer, o.Status).Inc()
		if o.Status == remote.StatusOK {
			continue
		}
		msg := "remote recognizer contributed no entities"
		if o.Err != nil {
			msg += ": " + o.Err.Error()
		}
		diags.Record(observability.Diagnostic{
			Kind:       observability.DiagnosticRemoteFailure,
			Stage:      "pipeline.remote",
			Message:    msg,
			Recognizer: o.Recognizer,
		})
	}
}
