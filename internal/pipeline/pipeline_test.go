// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"entity-pipeline/internal/consolidate"
	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/observability"
	"entity-pipeline/internal/recognizers"
	"entity-pipeline/internal/recognizers/pattern"
	"entity-pipeline/internal/recognizers/remote"
)

// slowRemote is a remote recognizer double.
type slowRemote struct {
	cfg      remote.Config
	entities []detector.Entity
	delay    time.Duration
	calls    atomic.Int32
}

func newRemote(name string, enabled bool) *slowRemote {
	cfg := remote.DefaultConfig(name)
	cfg.Enabled = enabled
	return &slowRemote{cfg: cfg}
}

func (s *slowRemote) Name() string                         { return s.cfg.Name }
func (s *slowRemote) Config() remote.Config                { return s.cfg }
func (s *slowRemote) Supports(string) bool                 { return true }
func (s *slowRemote) HealthCheck(ctx context.Context) bool { return true }

func (s *slowRemote) Analyze(ctx context.Context, text, language string) ([]detector.Entity, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.entities, nil
}

func newPipeline(t *testing.T, reg *recognizers.Registry, mutate func(*Options)) *Pipeline {
	t.Helper()
	opts := DefaultOptions()
	opts.Recognizers = reg
	if mutate != nil {
		mutate(&opts)
	}
	p, err := New(opts)
	require.NoError(t, err)
	return p
}

func builtin(t *testing.T) *recognizers.Registry {
	t.Helper()
	reg, err := BuildRecognizers(RecognizerSpec{BuiltinPatterns: true}, nil)
	require.NoError(t, err)
	return reg
}

func candidate(t *testing.T, text, sub string, typ detector.Type, conf float64) detector.Entity {
	t.Helper()
	idx := strings.Index(text, sub)
	require.GreaterOrEqual(t, idx, 0, sub)
	start, end := detector.RuneSpan(text, idx, idx+len(sub))
	return detector.Entity{Type: typ, Text: sub, Start: start, End: end, Confidence: conf, Source: detector.SourceLocalModel}
}

func kinds(ds []observability.Diagnostic) []observability.DiagnosticKind {
	out := make([]observability.DiagnosticKind, len(ds))
	for i, d := range ds {
		out[i] = d.Kind
	}
	return out
}

func TestProcess_ObfuscatedEmailMapsToFullPhrase(t *testing.T) {
	text := "john (dot) doe (at) mail (dot) ch"
	p := newPipeline(t, builtin(t), nil)

	res, err := p.Process(context.Background(), Document{Text: text, Language: "en"})
	require.NoError(t, err)

	require.Len(t, res.Entities, 1)
	e := res.Entities[0]
	assert.Equal(t, detector.TypeEmail, e.Type)
	assert.Equal(t, 0, e.Start)
	assert.Equal(t, len([]rune(text)), e.End)
	assert.Equal(t, text, e.Text)
	assert.Equal(t, "john.doe@mail.ch", e.Metadata[detector.MetaNormalizedText])
	assert.Equal(t, "EMAIL_1", e.LogicalID())
	assert.NotEmpty(t, e.Metadata[detector.MetaValidation])
	assert.Equal(t, "john.doe@mail.ch", res.Normalized.Text)
	assert.NotEmpty(t, res.DocumentID)
}

func TestProcess_LinkingUsesNormalizedText(t *testing.T) {
	text := "john.doe@mail.ch oder JOHN (DOT) DOE (AT) MAIL (DOT) CH"
	res, err := newPipeline(t, builtin(t), nil).Process(context.Background(), Document{Text: text, Language: "de"})
	require.NoError(t, err)

	var emails []detector.Entity
	for _, e := range res.Entities {
		if e.Type == detector.TypeEmail {
			emails = append(emails, e)
		}
	}
	require.Len(t, emails, 2)
	assert.Equal(t, "EMAIL_1", emails[0].LogicalID())
	assert.Equal(t, "EMAIL_1", emails[1].LogicalID())
	assert.Equal(t, "john.doe@mail.ch", emails[0].Text)
	assert.Equal(t, "JOHN (DOT) DOE (AT) MAIL (DOT) CH", emails[1].Text)
	assert.Equal(t, "john.doe@mail.ch", emails[0].Metadata[detector.MetaNormalizedText])
	assert.Equal(t, "JOHN.DOE@MAIL.CH", emails[1].Metadata[detector.MetaNormalizedText])
}

func TestProcess_AddressCandidates(t *testing.T) {
	text := "Rue de Lausanne 12, 1000 Lausanne"
	p := newPipeline(t, nil, nil)

	res, err := p.Process(context.Background(), Document{
		Text: text,
		Candidates: []detector.Entity{
			{Type: detector.TypeStreetName, Text: "Rue de Lausanne", Start: 0, End: 15, Confidence: 0.8},
			{Type: detector.TypeStreetNumber, Text: "12", Start: 16, End: 18, Confidence: 0.7},
			{Type: detector.TypePostalCode, Text: "1000", Start: 20, End: 24, Confidence: 0.9},
			{Type: detector.TypeCity, Text: "Lausanne", Start: 25, End: 33, Confidence: 0.6},
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Entities, 1)
	addr := res.Entities[0]
	assert.Equal(t, detector.TypeAddress, addr.Type)
	assert.Equal(t, [2]int{0, 33}, [2]int{addr.Start, addr.End})
	require.Len(t, addr.Components(), 4)
	assert.Equal(t, "1000", addr.Components()[2].Text)
	assert.Equal(t, 1, res.Stats.Addresses)
	assert.Empty(t, res.Diagnostics)
}

func TestProcess_SpansReferToOriginalText(t *testing.T) {
	text := "Mail:  hans@beispiel.ch\u200b und Hans   Müller, hans  MÜLLER."
	p := newPipeline(t, builtin(t), nil)
	normalized := p.normalizer.Normalize(text)

	var cands []detector.Entity
	for _, sub := range []string{"Hans Müller", "hans MÜLLER"} {
		c := candidate(t, normalized.Text, sub, detector.TypePerson, 0.8)
		c.SetMeta(detector.MetaRecognizer, "ner")
		cands = append(cands, c)
	}

	res, err := p.Process(context.Background(), Document{Text: text, Language: "de", Candidates: cands})
	require.NoError(t, err)

	original := []rune(text)
	var persons []detector.Entity
	for _, e := range res.Entities {
		assert.Equal(t, string(original[e.Start:e.End]), e.Text, "text must be the original substring")
		if e.Type == detector.TypePerson {
			persons = append(persons, e)
		}
	}
	require.Len(t, persons, 2)
	assert.Equal(t, "Hans   Müller", persons[0].Text)
	assert.Equal(t, "hans  MÜLLER", persons[1].Text)
	assert.Equal(t, persons[0].LogicalID(), persons[1].LogicalID())

	// The caller's candidates are untouched.
	assert.Nil(t, cands[0].Metadata[detector.MetaLogicalID])
}

func TestProcess_ValidatorRejectsAndRefines(t *testing.T) {
	text := "Kontakt: <hans@beispiel.ch> oder not-an-email"
	p := newPipeline(t, nil, nil)

	res, err := p.Process(context.Background(), Document{
		Text: text,
		Candidates: []detector.Entity{
			candidate(t, text, "<hans@beispiel.ch>", detector.TypeEmail, 0.3),
			candidate(t, text, "not-an-email", detector.TypeEmail, 0.9),
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Entities, 1)
	e := res.Entities[0]
	assert.Equal(t, "hans@beispiel.ch", e.Text)
	assert.Greater(t, e.Confidence, 0.3)
	assert.Contains(t, e.Metadata, detector.MetaValidation)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, observability.DiagnosticRejected, res.Diagnostics[0].Kind)
	assert.Equal(t, string(detector.TypeEmail), res.Diagnostics[0].Type)
}

func TestProcess_MalformedCandidatesNeverFailTheDocument(t *testing.T) {
	text := "Hans Müller"
	core, logs := observer.New(zap.WarnLevel)
	p := newPipeline(t, nil, func(o *Options) { o.Logger = zap.New(core) })

	res, err := p.Process(context.Background(), Document{
		Text: text,
		Candidates: []detector.Entity{
			{Type: detector.TypePerson, Start: 0, End: 11, Confidence: 0.9},
			{Type: detector.TypePerson, Start: 9, End: 2, Confidence: 0.9},
			{Type: detector.TypePerson, Start: 3, End: 99, Confidence: 0.9},
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Entities, 1)
	assert.Equal(t, []observability.DiagnosticKind{
		observability.DiagnosticMalformed, observability.DiagnosticMalformed,
	}, kinds(res.Diagnostics))
	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(p.Metrics().Dropped.WithLabelValues("malformed")))
}

func TestProcess_RemoteEntitiesAreMerged(t *testing.T) {
	text := "Hans Müller schreibt an hans@beispiel.ch"
	ner := newRemote("ner", true)
	ner.entities = []detector.Entity{{Type: detector.TypePerson, Start: 0, End: 11, Confidence: 0.85}}
	reg := recognizers.NewRegistry(builtin(t).Local(), []remote.Recognizer{ner})
	p := newPipeline(t, reg, nil)

	res, err := p.Process(context.Background(), Document{Text: text, Language: "de"})
	require.NoError(t, err)

	require.Len(t, res.Entities, 2)
	person := res.Entities[0]
	assert.Equal(t, detector.TypePerson, person.Type)
	assert.Equal(t, detector.SourceRemoteService, person.Source)
	assert.Equal(t, "ner", person.Metadata[detector.MetaRecognizer])
	assert.Equal(t, detector.TypeEmail, res.Entities[1].Type)

	require.Len(t, res.Remote, 1)
	assert.Empty(t, res.RemoteFailures())
	assert.Equal(t, 1.0, testutil.ToFloat64(p.Metrics().RemoteCalls.WithLabelValues("ner", remote.StatusOK)))
}

func TestProcess_RemoteTimeoutDegradesGracefully(t *testing.T) {
	text := "Schreiben Sie an hans@beispiel.ch, Rue de Lausanne 12, 1000 Lausanne."
	doc := Document{ID: "doc-1", Text: text, Language: "fr"}

	baseline, err := newPipeline(t, builtin(t), nil).Process(context.Background(), doc)
	require.NoError(t, err)

	slow := newRemote("slow", true)
	slow.delay = time.Minute
	slow.entities = []detector.Entity{{Type: detector.TypePerson, Start: 0, End: 9, Confidence: 1}}
	reg := recognizers.NewRegistry(builtin(t).Local(), []remote.Recognizer{slow})
	p := newPipeline(t, reg, func(o *Options) { o.RemoteTimeout = 30 * time.Millisecond })

	start := time.Now()
	res, err := p.Process(context.Background(), doc)
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, baseline.Entities, res.Entities)
	require.Len(t, res.RemoteFailures(), 1)
	assert.Equal(t, remote.StatusTimeout, res.RemoteFailures()[0].Status)
	assert.Contains(t, kinds(res.Diagnostics), observability.DiagnosticRemoteFailure)
}

func TestProcess_RemoteFailureLoggedPerDocument(t *testing.T) {
	slow := newRemote("slow", true)
	slow.delay = time.Minute
	reg := recognizers.NewRegistry(nil, []remote.Recognizer{slow})
	core, logs := observer.New(zap.WarnLevel)
	p := newPipeline(t, reg, func(o *Options) {
		o.RemoteTimeout = 20 * time.Millisecond
		o.Logger = zap.New(core)
	})

	_, err := p.Process(context.Background(), Document{ID: "doc-7", Text: "Anna Meier"})
	require.NoError(t, err)

	entries := logs.FilterMessage("remote recognizer contributed no entities").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "doc-7", fields["document_id"])
	assert.Equal(t, "slow", fields["recognizer"])
	assert.Equal(t, remote.StatusTimeout, fields["status"])
	assert.Contains(t, fields, "error_type")
}

func TestProcess_DisabledRemoteSendsNothing(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"entities":[]}`))
	}))
	defer srv.Close()

	cfg := remote.DefaultConfig("presidio")
	cfg.Endpoint = srv.URL
	reg, err := BuildRecognizers(RecognizerSpec{BuiltinPatterns: true, Remote: []remote.Config{cfg}}, nil)
	require.NoError(t, err)
	require.Len(t, reg.Remote(), 1)

	res, err := newPipeline(t, reg, nil).Process(context.Background(), Document{Text: "hans@beispiel.ch"})
	require.NoError(t, err)

	assert.Len(t, res.Entities, 1)
	assert.Empty(t, res.Remote)
	assert.Equal(t, int32(0), hits.Load())
}

func TestProcess_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline(t, builtin(t), nil).Process(ctx, Document{Text: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_RetainComponents(t *testing.T) {
	text := "Bahnhofstraße 7, 8001 Zürich"
	p := newPipeline(t, builtin(t), func(o *Options) { o.Consolidation.Address.RetainComponents = true })

	res, err := p.Process(context.Background(), Document{Text: text, Language: "de"})
	require.NoError(t, err)

	require.Len(t, res.Entities, 1)
	assert.Equal(t, detector.TypeAddress, res.Entities[0].Type)
	assert.Equal(t, text, res.Entities[0].Text)
	require.NotEmpty(t, res.Retained)
	for _, c := range res.Retained {
		assert.Equal(t, res.Entities[0].Metadata[detector.MetaAddressID], c.Metadata[detector.MetaAddressRef])
	}
}

func TestProcess_CountsMetrics(t *testing.T) {
	p := newPipeline(t, builtin(t), nil)
	for range 3 {
		_, err := p.Process(context.Background(), Document{Text: "anna@beispiel.ch und beat@beispiel.ch"})
		require.NoError(t, err)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(p.Metrics().Documents))
	assert.Equal(t, 6.0, testutil.ToFloat64(p.Metrics().Entities.WithLabelValues("EMAIL")))
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"unknown normalization form", func(o *Options) { o.Normalizer.Form = "NFX" }},
		{"negative remote timeout", func(o *Options) { o.RemoteTimeout = -time.Second }},
		{"negative gap", func(o *Options) { o.Consolidation.Address.MaxGap = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			_, err := New(opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestNew_ConsolidationErrorKeepsItsMark(t *testing.T) {
	opts := DefaultOptions()
	opts.Consolidation.Address.Aggregate = "median"
	_, err := New(opts)
	assert.ErrorIs(t, err, consolidate.ErrInvalidConfig)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestBuildRecognizers(t *testing.T) {
	reg, err := BuildRecognizers(RecognizerSpec{
		BuiltinPatterns: true,
		Patterns: []pattern.Rule{
			{Name: "ticket", Type: detector.TypeIdentifier, Pattern: `TCK-\d{4}`, Confidence: 0.9},
		},
	}, nil)
	require.NoError(t, err)
	require.Len(t, reg.Local(), 2)
	assert.Equal(t, "custom-patterns", reg.Local()[1].Name())

	res, err := newPipeline(t, reg, nil).Process(context.Background(), Document{Text: "Ticket TCK-0042 offen"})
	require.NoError(t, err)
	require.Len(t, res.Entities, 1)
	assert.Equal(t, "TCK-0042", res.Entities[0].Text)

	enabled := remote.DefaultConfig("ner")
	enabled.Enabled = true

	tests := []struct {
		name string
		spec RecognizerSpec
	}{
		{"bad pattern", RecognizerSpec{Patterns: []pattern.Rule{{Name: "x", Type: detector.TypeNumber, Pattern: `(`}}}},
		{"duplicate remote", RecognizerSpec{Remote: []remote.Config{remote.DefaultConfig("a"), remote.DefaultConfig("a")}}},
		{"enabled remote without endpoint", RecognizerSpec{Remote: []remote.Config{enabled}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildRecognizers(tt.spec, nil)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestGuardDisjoint(t *testing.T) {
	diags := observability.NewDiagnostics(nil, nil)
	out := guardDisjoint([]detector.Entity{
		{Type: detector.TypePhone, Start: 10, End: 14},
		{Type: detector.TypeEmail, Start: 0, End: 5},
		{Type: detector.TypeNumber, Start: 4, End: 6},
	}, diags)

	require.Len(t, out, 2)
	assert.Equal(t, detector.TypeEmail, out[0].Type)
	assert.Equal(t, detector.TypePhone, out[1].Type)
	require.Equal(t, 1, diags.Len())
	assert.Equal(t, observability.DiagnosticOverlap, diags.Items()[0].Kind)
}
