// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/formatters"
	"entity-pipeline/internal/observability"
	"entity-pipeline/internal/pipeline"
	"entity-pipeline/internal/recognizers/remote"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors and tables"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(result *pipeline.Result, options formatters.FormatterOptions) (string, error) {
	entities := formatters.Select(result, options)

	var builder strings.Builder
	if len(entities) == 0 {
		if result != nil && len(result.Entities) > 0 {
			builder.WriteString("No entities found at the specified confidence levels.\n")
		} else {
			builder.WriteString("No entities found.\n")
		}
	} else if options.Verbose {
		for _, entity := range entities {
			f.appendDetailedEntity(&builder, entity, options)
		}
	} else {
		f.appendHeaders(&builder, entities, options)
		for _, entity := range entities {
			f.appendSummaryLine(&builder, entity, entities, options)
		}
	}

	if result != nil {
		f.appendRemote(&builder, result.Remote, options)
		if options.Verbose {
			f.appendDiagnostics(&builder, result, options)
		}
	}
	return builder.String(), nil
}

// paint renders format with the named color unless colors are disabled.
func (f *Formatter) paint(name string, options formatters.FormatterOptions, format string, args ...any) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

// appendHeaders adds column headers to the string builder
func (f *Formatter) appendHeaders(builder *strings.Builder, entities []detector.Entity, options formatters.FormatterOptions) {
	textWidth := f.calculateTextColumnWidth(entities)
	builder.WriteString(f.paint("white", options, "%-8s %-16s %-8s %-13s %-10s %-*s %s\n",
		"LEVEL", "TYPE", "CONF%", "SPAN", "LINK", textWidth, "TEXT", "SOURCE"))

	totalWidth := 8 + 1 + 16 + 1 + 8 + 1 + 13 + 1 + 10 + 1 + textWidth + 1 + 14
	builder.WriteString(f.paint("white", options, "%s\n", strings.Repeat("-", totalWidth)))
}

// calculateTextColumnWidth calculates the optimal width for the text column
func (f *Formatter) calculateTextColumnWidth(entities []detector.Entity) int {
	maxWidth := len(formatters.RedactedText)
	for _, entity := range entities {
		if n := len([]rune(flatten(entity.Text))); n > maxWidth {
			maxWidth = n
		}
	}
	// Cap at 30 characters for readability
	return min(maxWidth, 30)
}

// appendSummaryLine adds a single line summary to the string builder
func (f *Formatter) appendSummaryLine(builder *strings.Builder, entity detector.Entity, all []detector.Entity, options formatters.FormatterOptions) {
	level := strings.ToUpper(formatters.ConfidenceLevel(entity.Confidence))
	levelStr := f.paint(levelColor(level), options, "[%-6s]", level)

	typeDisplay := string(entity.Type)
	if len(typeDisplay) > 16 {
		typeDisplay = typeDisplay[:13] + "..."
	}
	typeStr := f.paint("cyan", options, "%-16s", typeDisplay)
	confidenceStr := f.paint("blue", options, "%7.2f%%", entity.Confidence*100)
	spanStr := f.paint("magenta", options, "%-13s", fmt.Sprintf("[%d,%d)", entity.Start, entity.End))
	linkStr := f.paint("green", options, "%-10s", entity.LogicalID())

	targetWidth := f.calculateTextColumnWidth(all)
	text := flatten(entity.Text)
	if runes := []rune(text); len(runes) > targetWidth {
		text = string(runes[:targetWidth-3]) + "..."
	}
	if padding := targetWidth - len([]rune(text)); padding > 0 {
		text += strings.Repeat(" ", padding)
	}

	fmt.Fprintf(builder, "%s %s %s %s %s %s %s\n",
		levelStr,
		typeStr,
		confidenceStr,
		spanStr,
		linkStr,
		text,
		f.paint("white", options, "%s", entity.Source))
}

// appendDetailedEntity adds detailed entity information to the string builder
func (f *Formatter) appendDetailedEntity(builder *strings.Builder, entity detector.Entity, options formatters.FormatterOptions) {
	builder.WriteString(f.paint("white", options, "=== Entity Details ===\n"))

	fmt.Fprintf(builder, "%s%s\n", f.paint("cyan", options, "Entity found at "),
		f.paint("magenta", options, "[%d,%d): %s", entity.Start, entity.End, entity.Text))
	fmt.Fprintf(builder, "%s%s\n", f.paint("cyan", options, "Type: "), f.paint("white", options, "%s", entity.Type))
	fmt.Fprintf(builder, "%s%s\n", f.paint("cyan", options, "Source: "), f.paint("white", options, "%s", entity.Source))

	level := strings.ToUpper(formatters.ConfidenceLevel(entity.Confidence))
	fmt.Fprintf(builder, "%s%s %s\n", f.paint("cyan", options, "Confidence level: "),
		f.paint("white", options, "%.2f%%", entity.Confidence*100),
		f.paint(levelColor(level), options, "(%s)", level))

	if id := entity.LogicalID(); id != "" {
		fmt.Fprintf(builder, "%s%s\n", f.paint("cyan", options, "Logical ID: "), f.paint("white", options, "%s", id))
	}
	if recognizer, ok := entity.Metadata[detector.MetaRecognizer].(string); ok {
		fmt.Fprintf(builder, "%s%s\n", f.paint("cyan", options, "Recognizer: "), f.paint("white", options, "%s", recognizer))
	}
	if grammar, ok := entity.Metadata[detector.MetaGrammar].(string); ok {
		fmt.Fprintf(builder, "%s%s\n", f.paint("cyan", options, "Address grammar: "), f.paint("white", options, "%s", grammar))
	}

	if checks, ok := entity.Metadata[detector.MetaValidation].(map[string]bool); ok && len(checks) > 0 {
		builder.WriteString(f.paint("cyan", options, "Validation results:\n"))
		for _, check := range slices.Sorted(maps.Keys(checks)) {
			passed := checks[check]
			name := "red"
			if passed {
				name = "green"
			}
			fmt.Fprintf(builder, "- %s: %s\n", formatCheckName(check), f.paint(name, options, "%v", passed))
		}
	}

	if components := entity.Components(); len(components) > 0 {
		builder.WriteString(f.paint("cyan", options, "Components:\n"))
		for _, c := range components {
			fmt.Fprintf(builder, "- %s [%d,%d) %.2f%%: %s\n", c.Type, c.Start, c.End, c.Confidence*100, c.Text)
		}
	}

	fmt.Fprintln(builder)
}

// appendRemote reports remote recognizers that contributed nothing.
func (f *Formatter) appendRemote(builder *strings.Builder, outcomes []remote.Outcome, options formatters.FormatterOptions) {
	failures := remote.Report{Outcomes: outcomes}.Failures()
	if len(failures) == 0 {
		return
	}
	builder.WriteString(f.paint("yellow", options, "\nRemote recognizers unavailable (%d):\n", len(failures)))
	for _, outcome := range failures {
		fmt.Fprintf(builder, "- %s: %s", outcome.Recognizer, f.paint("red", options, "%s", outcome.Status))
		if outcome.Err != nil {
			fmt.Fprintf(builder, " (%v)", outcome.Err)
		}
		fmt.Fprintln(builder)
	}
}

// appendDiagnostics lists dropped candidates, grouped by kind.
func (f *Formatter) appendDiagnostics(builder *strings.Builder, result *pipeline.Result, options formatters.FormatterOptions) {
	s := result.Stats
	builder.WriteString(f.paint("white", options, "\n=== Consolidation ===\n"))
	fmt.Fprintf(builder, "Candidates: %d  Malformed: %d  Overlap dropped: %d  Addresses: %d  Linked groups: %d\n",
		s.Input, s.Malformed, s.OverlapDropped, s.Addresses, s.LinkedGroups)

	if len(result.Diagnostics) == 0 {
		return
	}
	diagnostics := slices.Clone(result.Diagnostics)
	slices.SortStableFunc(diagnostics, func(a, b observability.Diagnostic) int {
		return cmp.Compare(a.Kind, b.Kind)
	})
	builder.WriteString(f.paint("white", options, "Diagnostics (%d):\n", len(diagnostics)))
	for _, d := range diagnostics {
		fmt.Fprintf(builder, "- %s %s", f.paint("yellow", options, "%-14s", d.Kind), d.Stage)
		if d.Type != "" {
			fmt.Fprintf(builder, " %s", d.Type)
		}
		fmt.Fprintf(builder, " [%d,%d): %s\n", d.Start, d.End, d.Message)
	}
}

// formatCheckName formats a check name from snake_case to Title Case
func formatCheckName(check string) string {
	words := strings.Split(check, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func levelColor(level string) string {
	switch level {
	case "HIGH":
		return "red"
	case "MEDIUM":
		return "yellow"
	default:
		return "green"
	}
}

func flatten(s string) string {
	return strings.NewReplacer("\n", " ", "\t", " ", "\r", " ").Replace(s)
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
