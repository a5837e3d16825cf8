// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDiagnostics_RecordsAndLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	metrics := NewMetrics()
	d := NewDiagnostics(zap.New(core), metrics)

	d.Record(Diagnostic{Kind: DiagnosticMalformed, Stage: "sanitize", Message: "inverted span", Type: "EMAIL", Start: 9, End: 3})
	d.Record(Diagnostic{Kind: DiagnosticRemoteFailure, Stage: "remote", Message: "remote recognizer failed", Recognizer: "ner"})

	require.Equal(t, 2, d.Len())
	items := d.Items()
	items[0].Message = "changed"
	assert.Equal(t, "inverted span", d.Items()[0].Message)

	entries := logs.FilterLevelExact(zap.WarnLevel).All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "malformed", fields["kind"])
	assert.Equal(t, "EMAIL", fields["entity_type"])
	assert.Equal(t, "ner", entries[1].ContextMap()["recognizer"])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Dropped.WithLabelValues("malformed")))
}

func TestDiagnostics_ConcurrentRecord(t *testing.T) {
	d := NewDiagnostics(nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Record(Diagnostic{Kind: DiagnosticRemoteFailure, Stage: "remote"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, d.Len())
}

func TestStandardObserver_StartTiming(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	metrics := NewMetrics()
	o := NewStandardObserver(zap.New(core), metrics)

	done := o.StartTiming("consolidate", "run", "doc-1")
	done(true, zap.Int("entities", 3))

	entries := logs.FilterMessage("operation finished").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "consolidate", fields["component"])
	assert.Equal(t, "doc-1", fields["document_id"])
	assert.Equal(t, int64(3), fields["entities"])
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.StageDuration))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "warn", true)
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown", zap.String("k", "v"))
	require.NoError(t, l.Sync())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"k":"v"`)

	_, err = NewLogger("loud", false)
	assert.Error(t, err)
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.Documents.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Documents))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Documents))
}
