// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors. Each instance registers
// on its own registry so several pipelines can coexist in one process.
type Metrics struct {
	Registry *prometheus.Registry

	Documents     prometheus.Counter
	Entities      *prometheus.CounterVec
	Dropped       *prometheus.CounterVec
	RemoteCalls   *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Documents: factory.NewCounter(prometheus.CounterOpts{
			Name: "entity_pipeline_documents_total",
			Help: "Total number of documents processed",
		}),
		Entities: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entity_pipeline_entities_total",
				Help: "Final entities emitted, by entity type",
			},
			[]string{"entity_type"},
		),
		Dropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entity_pipeline_diagnostics_total",
				Help: "Candidates dropped or failures recorded, by diagnostic kind",
			},
			[]string{"kind"},
		),
		RemoteCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entity_pipeline_remote_calls_total",
				Help: "Remote recognizer calls, by recognizer and outcome",
			},
			[]string{"recognizer", "outcome"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "entity_pipeline_stage_duration_seconds",
				Help:    "Duration of pipeline stages",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"component", "operation"},
		),
	}
}
