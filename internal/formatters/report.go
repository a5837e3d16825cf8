// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"entity-pipeline/internal/consolidate"
	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/observability"
	"entity-pipeline/internal/pipeline"
	"entity-pipeline/internal/recognizers/remote"
)

// Report is the structure shared by the json and yaml formatters.
type Report struct {
	DocumentID  string                     `json:"document_id" yaml:"document_id"`
	Entities    []detector.Entity          `json:"entities" yaml:"entities"`
	Retained    []detector.Entity          `json:"retained,omitempty" yaml:"retained,omitempty"`
	Stats       consolidate.Stats          `json:"stats" yaml:"stats"`
	Remote      []RemoteStatus             `json:"remote,omitempty" yaml:"remote,omitempty"`
	Diagnostics []observability.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// RemoteStatus is a remote.Outcome with a printable duration and error.
type RemoteStatus struct {
	Recognizer string `json:"recognizer" yaml:"recognizer"`
	Status     string `json:"status" yaml:"status"`
	Entities   int    `json:"entities" yaml:"entities"`
	DurationMs int64  `json:"duration_ms" yaml:"duration_ms"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewReport builds the serializable view of result. Retained components and
// diagnostics are only included in verbose mode; remote outcomes always are.
func NewReport(result *pipeline.Result, options FormatterOptions) Report {
	report := Report{Entities: Select(result, options)}
	if result == nil {
		report.Entities = []detector.Entity{}
		return report
	}
	report.DocumentID = result.DocumentID
	report.Stats = result.Stats
	for _, outcome := range result.Remote {
		report.Remote = append(report.Remote, newRemoteStatus(outcome))
	}
	if options.Verbose {
		for _, retained := range result.Retained {
			report.Retained = append(report.Retained, Redact(retained, options))
		}
		report.Diagnostics = result.Diagnostics
	}
	return report
}

func newRemoteStatus(outcome remote.Outcome) RemoteStatus {
	status := RemoteStatus{
		Recognizer: outcome.Recognizer,
		Status:     outcome.Status,
		Entities:   outcome.Entities,
		DurationMs: outcome.Duration.Milliseconds(),
	}
	if outcome.Err != nil {
		status.Error = outcome.Err.Error()
	}
	return status
}

// NewReports builds one Report per result.
func NewReports(results []*pipeline.Result, options FormatterOptions) []Report {
	reports := make([]Report, len(results))
	for i, result := range results {
		reports[i] = NewReport(result, options)
	}
	return reports
}
