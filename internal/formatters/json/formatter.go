// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"

	"github.com/cockroachdb/errors"

	"entity-pipeline/internal/formatters"
	"entity-pipeline/internal/pipeline"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Structured JSON output for programmatic consumption"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

func (f *Formatter) Format(result *pipeline.Result, options formatters.FormatterOptions) (string, error) {
	jsonData, err := json.MarshalIndent(formatters.NewReport(result, options), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "formatting JSON")
	}
	return string(jsonData), nil
}

// FormatBatch renders the results as one JSON array.
func (f *Formatter) FormatBatch(results []*pipeline.Result, options formatters.FormatterOptions) (string, error) {
	jsonData, err := json.MarshalIndent(formatters.NewReports(results, options), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "formatting JSON")
	}
	return string(jsonData), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
