// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// CheckInfo contains standardized information about a validator
type CheckInfo struct {
	Name                string             // Entity type the validator confirms (e.g., "IBAN")
	ShortDescription    string             // Short description for the validator list
	DetailedDescription string             // Detailed description of what the validator does
	Patterns            []string           // Forms the validator accepts
	SupportedFormats    []string           // Formats or regions supported
	ConfidenceFactors   []ConfidenceFactor // Factors affecting confidence
	PositiveKeywords    []string           // Keywords that increase confidence
	NegativeKeywords    []string           // Keywords that decrease confidence
	ConfigurationInfo   string             // Information about how to configure the validator
	Examples            []string           // Usage examples
}

// ConfidenceFactor represents a factor that affects confidence scoring
type ConfidenceFactor struct {
	Name        string  // Name of the factor
	Description string  // Description of the factor
	Weight      float64 // Weight of the factor in the confidence score (percentage)
}

// Provider defines the interface for help content providers
type Provider interface {
	GetCheckInfo() CheckInfo
}

// System manages help content for the application
type System struct {
	out       io.Writer
	providers map[string]Provider
	colors    map[string]*color.Color
}

// NewSystem creates a help system writing to out.
func NewSystem(out io.Writer, noColor bool) *System {
	colors := map[string]*color.Color{
		"title":    color.New(color.FgWhite, color.Bold),
		"subtitle": color.New(color.FgCyan, color.Bold),
		"header":   color.New(color.FgBlue, color.Bold),
		"item":     color.New(color.FgCyan),
		"emphasis": color.New(color.FgWhite, color.Bold),
		"positive": color.New(color.FgGreen),
		"negative": color.New(color.FgRed),
		"warning":  color.New(color.FgYellow),
		"example":  color.New(color.FgMagenta),
	}
	if noColor {
		for _, c := range colors {
			c.DisableColor()
		}
	}
	return &System{
		out:       out,
		providers: make(map[string]Provider),
		colors:    colors,
	}
}

// RegisterProvider adds a help provider to the system
func (h *System) RegisterProvider(provider Provider) {
	info := provider.GetCheckInfo()
	h.providers[strings.ToLower(info.Name)] = provider
}

// Providers returns the registered entity type names, sorted.
func (h *System) Providers() []string {
	names := make([]string, 0, len(h.providers))
	for _, key := range slices.Sorted(maps.Keys(h.providers)) {
		names = append(names, h.providers[key].GetCheckInfo().Name)
	}
	return names
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	h.colors["title"].Fprintln(h.out, "Entity Pipeline - Sensitive Entity Detection and Consolidation")
	fmt.Fprintln(h.out, "==============================================================")
	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "USAGE:")
	fmt.Fprintln(h.out, "  entity-pipeline --file <path> [options]")
	fmt.Fprintln(h.out, "  cat letter.txt | entity-pipeline [options]")
	fmt.Fprintln(h.out)

	h.colors["header"].Fprintln(h.out, "OPTIONS:")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  --file\t<path>\tText file or glob pattern to analyze (default: standard input)")
	fmt.Fprintln(w, "  --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  --profile\t<name>\tProfile name to use from config file")
	fmt.Fprintln(w, "  --list-profiles\t\tList available profiles in config file")
	fmt.Fprintln(w, "  --language\t<code>\tDocument language: de, fr, en (default from config)")
	fmt.Fprintln(w, "  --format\t<format>\tOutput format: text, json, yaml, csv (default: text)")
	fmt.Fprintln(w, "  --candidates\t<path>\tJSON or YAML list of externally detected entities (normalized offsets)")
	fmt.Fprintln(w, "  --confidence\t<levels>\tConfidence levels to display: high,medium,low,all (default: all)")
	fmt.Fprintln(w, "  --show-text\t\tDisplay entity text (otherwise shows [REDACTED])")
	fmt.Fprintln(w, "  --verbose\t\tDisplay components, validation results and diagnostics")
	fmt.Fprintln(w, "  --output\t<path>\tPath to output file (if not specified, output to stdout)")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  --debug\t\tEnable debug logging")
	fmt.Fprintln(w, "  --json-logs\t\tWrite logs as JSON")
	fmt.Fprintln(w, "  --workers\t<n>\tDocuments processed in parallel (default: number of CPUs)")
	fmt.Fprintln(w, "  --check-remote\t\tValidate remote recognizer configuration and credentials, then exit")
	fmt.Fprintln(w, "  --list-validators\t\tList the entity validators")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	fmt.Fprintln(w, "  --help\t\tShow this help message")
	fmt.Fprintln(w, "  --help <type>\t\tShow detailed help for an entity validator")
	w.Flush()

	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "EXAMPLES:")
	h.colors["example"].Fprintln(h.out, "  entity-pipeline --file letter.txt")
	h.colors["example"].Fprintln(h.out, "  entity-pipeline --file letter.txt --format json --show-text")
	h.colors["example"].Fprintln(h.out, "  entity-pipeline --file letter.txt --profile diagnostic --verbose")
	h.colors["example"].Fprintln(h.out, "  entity-pipeline --file letter.txt --candidates ner.json --language de")
	h.colors["example"].Fprintln(h.out, "  entity-pipeline --file 'inbox/*.txt' --workers 4 --format csv")

	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "CONFIGURATION:")
	fmt.Fprintln(h.out, "  Project config: entity-pipeline.yaml or .entity-pipeline.yaml (in current directory)")
	fmt.Fprintln(h.out, "  User config: <user config dir>/entity-pipeline/config.yaml")
	fmt.Fprintln(h.out, "  Environment: ENTITY_PIPELINE_CONFIG_DIR - Override config directory")
	h.colors["warning"].Fprintln(h.out, "  Remote recognizers send document text over the network and are disabled unless enabled in config.")
}

// ShowChecksHelp lists every registered validator.
func (h *System) ShowChecksHelp() {
	h.colors["title"].Fprintln(h.out, "Available Validators")
	fmt.Fprintln(h.out, "====================")
	fmt.Fprintln(h.out)

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  TYPE\tDESCRIPTION")
	fmt.Fprintln(w, "  ----\t-----------")
	for _, key := range slices.Sorted(maps.Keys(h.providers)) {
		info := h.providers[key].GetCheckInfo()
		fmt.Fprintf(w, "  %s\t%s\n", info.Name, info.ShortDescription)
	}
	w.Flush()

	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "For detailed information about a specific validator, use:")
	h.colors["example"].Fprintln(h.out, "  entity-pipeline --help <type>")
}

// ShowCheckHelp displays detailed help for one validator. It reports
// false when no validator is registered for checkName.
func (h *System) ShowCheckHelp(checkName string) bool {
	provider, exists := h.providers[strings.ToLower(checkName)]
	if !exists {
		h.colors["negative"].Fprintf(h.out, "Error: Validator '%s' not found.\n", checkName)
		fmt.Fprintln(h.out, "Use 'entity-pipeline --list-validators' to see the available validators.")
		return false
	}

	info := provider.GetCheckInfo()

	h.colors["title"].Fprintf(h.out, "%s Validator\n", info.Name)
	fmt.Fprintln(h.out, strings.Repeat("=", len(info.Name)+10))
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, info.DetailedDescription)
	fmt.Fprintln(h.out)

	h.showList("PATTERNS DETECTED:", info.Patterns)
	h.showList("SUPPORTED FORMATS:", info.SupportedFormats)

	if len(info.ConfidenceFactors) > 0 {
		h.colors["header"].Fprintln(h.out, "CONFIDENCE SCORING:")
		for _, factor := range info.ConfidenceFactors {
			fmt.Fprint(h.out, "   - ")
			h.colors["item"].Fprintf(h.out, "%s ", factor.Name)
			fmt.Fprintf(h.out, "(%.0f%%): %s\n", factor.Weight, factor.Description)
		}
		fmt.Fprintln(h.out)
	}

	if len(info.PositiveKeywords) > 0 || len(info.NegativeKeywords) > 0 {
		h.colors["subtitle"].Fprintln(h.out, "Contextual Analysis:")
		h.showKeywords("   - Positive keywords: ", "positive", info.PositiveKeywords)
		h.showKeywords("   - Negative keywords: ", "negative", info.NegativeKeywords)
		fmt.Fprintln(h.out)
	}

	h.colors["header"].Fprintln(h.out, "Confidence Levels:")
	fmt.Fprint(h.out, "- ")
	h.colors["negative"].Fprint(h.out, "HIGH")
	fmt.Fprintln(h.out, " (90-100%): Very likely to be sensitive data")
	fmt.Fprint(h.out, "- ")
	h.colors["warning"].Fprint(h.out, "MEDIUM")
	fmt.Fprintln(h.out, " (60-89%): Possibly sensitive data")
	fmt.Fprint(h.out, "- ")
	h.colors["positive"].Fprint(h.out, "LOW")
	fmt.Fprintln(h.out, " (0-59%): Likely not sensitive data or a false positive")
	fmt.Fprintln(h.out)

	if info.ConfigurationInfo != "" {
		h.colors["header"].Fprintln(h.out, "CONFIGURATION:")
		fmt.Fprintln(h.out, info.ConfigurationInfo)
		fmt.Fprintln(h.out)
	}

	if len(info.Examples) > 0 {
		h.colors["header"].Fprintln(h.out, "EXAMPLES:")
		for _, example := range info.Examples {
			fmt.Fprint(h.out, "  ")
			h.colors["example"].Fprintln(h.out, example)
		}
	}

	return true
}

func (h *System) showList(title string, items []string) {
	if len(items) == 0 {
		return
	}
	h.colors["header"].Fprintln(h.out, title)
	for _, item := range items {
		fmt.Fprint(h.out, "  - ")
		h.colors["item"].Fprintln(h.out, item)
	}
	fmt.Fprintln(h.out)
}

func (h *System) showKeywords(label, colorName string, keywords []string) {
	if len(keywords) == 0 {
		return
	}
	fmt.Fprint(h.out, label)
	h.colors[colorName].Fprint(h.out, strings.Join(keywords[:min(5, len(keywords))], ", "))
	if len(keywords) > 5 {
		fmt.Fprint(h.out, "\n     and others...")
	}
	fmt.Fprintln(h.out)
}
