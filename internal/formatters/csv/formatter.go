// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/formatters"
	"entity-pipeline/internal/pipeline"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(result *pipeline.Result, options formatters.FormatterOptions) (string, error) {
	return f.FormatBatch([]*pipeline.Result{result}, options)
}

// FormatBatch writes one header row followed by the entities of every result.
func (f *Formatter) FormatBatch(results []*pipeline.Result, options formatters.FormatterOptions) (string, error) {
	headers := []string{"Document", "Type", "Start", "End", "Confidence Level", "Confidence %", "Source", "Text"}
	if options.Verbose {
		headers = append(headers, "Logical ID", "Recognizer")
	}

	var builder strings.Builder
	w := csv.NewWriter(&builder)
	if err := w.Write(headers); err != nil {
		return "", errors.Wrap(err, "writing CSV header")
	}
	for _, result := range results {
		if err := writeRows(w, result, options); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "flushing CSV")
	}
	return builder.String(), nil
}

func writeRows(w *csv.Writer, result *pipeline.Result, options formatters.FormatterOptions) error {
	var documentID string
	if result != nil {
		documentID = result.DocumentID
	}
	for _, entity := range formatters.Select(result, options) {
		row := []string{
			documentID,
			string(entity.Type),
			strconv.Itoa(entity.Start),
			strconv.Itoa(entity.End),
			strings.ToUpper(formatters.ConfidenceLevel(entity.Confidence)),
			strconv.FormatFloat(entity.Confidence*100, 'f', 2, 64),
			string(entity.Source),
			strings.ReplaceAll(entity.Text, "\n", " "),
		}
		if options.Verbose {
			recognizer, _ := entity.Metadata[detector.MetaRecognizer].(string)
			row = append(row, entity.LogicalID(), recognizer)
		}
		if err := w.Write(row); err != nil {
			return errors.Wrap(err, "writing CSV row")
		}
	}
	return nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
