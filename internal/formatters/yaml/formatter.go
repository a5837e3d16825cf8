// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package yaml

import (
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"entity-pipeline/internal/formatters"
	"entity-pipeline/internal/pipeline"
)

// Formatter implements YAML output formatting
type Formatter struct{}

// NewFormatter creates a new YAML formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "yaml"
}

func (f *Formatter) Description() string {
	return "YAML format output, same structure as JSON"
}

func (f *Formatter) FileExtension() string {
	return ".yaml"
}

func (f *Formatter) Format(result *pipeline.Result, options formatters.FormatterOptions) (string, error) {
	yamlData, err := yaml.Marshal(formatters.NewReport(result, options))
	if err != nil {
		return "", errors.Wrap(err, "formatting YAML")
	}
	return string(yamlData), nil
}

// FormatBatch renders the results as one YAML sequence.
func (f *Formatter) FormatBatch(results []*pipeline.Result, options formatters.FormatterOptions) (string, error) {
	yamlData, err := yaml.Marshal(formatters.NewReports(results, options))
	if err != nil {
		return "", errors.Wrap(err, "formatting YAML")
	}
	return string(yamlData), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
