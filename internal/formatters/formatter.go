// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/pipeline"
)

// RedactedText replaces entity text unless ShowText is set.
const RedactedText = "[REDACTED]"

// Confidence level names used by FormatterOptions.ConfidenceLevel.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	ConfidenceLevel map[string]bool // Which confidence levels to display; nil shows all
	Verbose         bool            // Whether to display metadata, components and diagnostics
	NoColor         bool            // Whether to disable colored output
	ShowText        bool            // Whether to display the entity text
}

// Formatter interface defines methods that all output formatters must implement
type Formatter interface {
	// Format renders one pipeline result.
	Format(result *pipeline.Result, options FormatterOptions) (string, error)

	// Name returns the name of the formatter (e.g., "json", "text", "csv")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format
	FileExtension() string
}

// BatchFormatter is implemented by formatters that render several results
// as a single document, such as one JSON array.
type BatchFormatter interface {
	FormatBatch(results []*pipeline.Result, options FormatterOptions) (string, error)
}

// Registry holds all registered formatters
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	formatter, exists := r.formatters[name]
	return formatter, exists
}

// List returns all registered formatter names, sorted.
func (r *Registry) List() []string {
	return slices.Sorted(maps.Keys(r.formatters))
}

// FormatInfo provides metadata about a formatter
type FormatInfo struct {
	Name        string
	Description string
	Extension   string
	MimeType    string
}

// DefaultRegistry is the global formatter registry
var DefaultRegistry = NewRegistry()

// Register is a convenience function to register a formatter with the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get is a convenience function to get a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List is a convenience function to list all formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// Export formats result with the named formatter.
func Export(format string, result *pipeline.Result, options FormatterOptions) (string, error) {
	formatter, exists := Get(format)
	if !exists {
		return "", fmt.Errorf("unsupported format '%s'. Available formats: %s", format, strings.Join(List(), ", "))
	}
	return formatter.Format(result, options)
}

// ExportBatch formats several results with the named formatter. Formatters
// without batch support get one section per document.
func ExportBatch(format string, results []*pipeline.Result, options FormatterOptions) (string, error) {
	formatter, exists := Get(format)
	if !exists {
		return "", fmt.Errorf("unsupported format '%s'. Available formats: %s", format, strings.Join(List(), ", "))
	}
	if batch, ok := formatter.(BatchFormatter); ok {
		return batch.FormatBatch(results, options)
	}

	var builder strings.Builder
	for i, result := range results {
		if i > 0 {
			builder.WriteString("\n")
		}
		var id string
		if result != nil {
			id = result.DocumentID
		}
		fmt.Fprintf(&builder, "=== Document %d/%d %s ===\n", i+1, len(results), id)
		out, err := formatter.Format(result, options)
		if err != nil {
			return "", err
		}
		builder.WriteString(out)
	}
	return builder.String(), nil
}

// GetFormatInfo returns metadata about a specific formatter
func GetFormatInfo(name string) FormatInfo {
	formatter, exists := Get(name)
	if !exists {
		return FormatInfo{}
	}

	info := FormatInfo{
		Name:        formatter.Name(),
		Description: formatter.Description(),
		Extension:   formatter.FileExtension(),
	}

	switch name {
	case "json":
		info.MimeType = "application/json"
	case "csv":
		info.MimeType = "text/csv"
	case "yaml":
		info.MimeType = "application/x-yaml"
	case "text":
		info.MimeType = "text/plain"
	default:
		info.MimeType = "application/octet-stream"
	}

	return info
}

// GetSupportedFormats returns information about all available formatters
func GetSupportedFormats() []FormatInfo {
	var formats []FormatInfo
	for _, name := range List() {
		formats = append(formats, GetFormatInfo(name))
	}
	return formats
}

// ConfidenceLevel buckets a confidence in [0,1].
func ConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return LevelHigh
	case confidence >= 0.6:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Select returns the entities of result that pass the confidence filter,
// with text redacted unless options.ShowText is set. The result is not modified.
func Select(result *pipeline.Result, options FormatterOptions) []detector.Entity {
	if result == nil {
		return nil
	}
	selected := make([]detector.Entity, 0, len(result.Entities))
	for _, entity := range result.Entities {
		if options.ConfidenceLevel != nil && !options.ConfidenceLevel[ConfidenceLevel(entity.Confidence)] {
			continue
		}
		selected = append(selected, Redact(entity, options))
	}
	return selected
}

// Redact returns a copy of entity with its text, components and
// normalized text hidden unless options.ShowText is set.
func Redact(entity detector.Entity, options FormatterOptions) detector.Entity {
	if options.ShowText {
		return entity
	}
	entity = entity.Clone()
	entity.Text = RedactedText
	if entity.Metadata == nil {
		return entity
	}
	if _, ok := entity.Metadata[detector.MetaNormalizedText]; ok {
		entity.Metadata[detector.MetaNormalizedText] = RedactedText
	}
	if components, ok := entity.Metadata[detector.MetaComponents].([]detector.Entity); ok {
		redacted := make([]detector.Entity, len(components))
		for i, component := range components {
			redacted[i] = Redact(component, options)
		}
		entity.Metadata[detector.MetaComponents] = redacted
	}
	return entity
}

// ParseConfidenceLevels converts "all" or a comma-separated list such as
// "high,medium" into a FormatterOptions.ConfidenceLevel map.
func ParseConfidenceLevels(levels string) map[string]bool {
	result := map[string]bool{
		LevelHigh:   false,
		LevelMedium: false,
		LevelLow:    false,
	}

	if levels == "all" || levels == "" {
		result[LevelHigh] = true
		result[LevelMedium] = true
		result[LevelLow] = true
		return result
	}

	for _, level := range strings.Split(levels, ",") {
		switch level = strings.ToLower(strings.TrimSpace(level)); level {
		case LevelHigh, LevelMedium, LevelLow:
			result[level] = true
		}
	}
	return result
}
