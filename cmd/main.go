// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"entity-pipeline/internal/config"
	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/help"
	"entity-pipeline/internal/observability"
	"entity-pipeline/internal/parallel"
	"entity-pipeline/internal/pipeline"
	"entity-pipeline/internal/recognizers/remote"
	"entity-pipeline/internal/validators"
	"entity-pipeline/internal/version"

	"entity-pipeline/internal/formatters"
	_ "entity-pipeline/internal/formatters/csv"
	_ "entity-pipeline/internal/formatters/json"
	_ "entity-pipeline/internal/formatters/text"
	_ "entity-pipeline/internal/formatters/yaml"
)

// cliFlags holds command line flag values
type cliFlags struct {
	inputFile        string
	configFile       string
	profileName      string
	listProfiles     bool
	language         string
	outputFormat     string
	candidatesFile   string
	confidenceLevels string
	showText         bool
	verbose          bool
	outputFile       string
	noColor          bool
	debug            bool
	jsonLogs         bool
	workers          int
	checkRemote      bool
	listValidators   bool
	showVersion      bool
	showHelp         bool
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format           string
	language         string
	confidenceLevels string
	verbose          bool
	debug            bool
	noColor          bool
	jsonLogs         bool
	logLevel         string
}

func parseFlags(fs *flag.FlagSet, args []string) (*cliFlags, error) {
	f := &cliFlags{}
	fs.StringVar(&f.inputFile, "file", "", "Text file or glob pattern to analyze (default: standard input)")
	fs.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&f.profileName, "profile", "", "Profile name to use from config file")
	fs.BoolVar(&f.listProfiles, "list-profiles", false, "List available profiles in config file")
	fs.StringVar(&f.language, "language", "", "Document language: de, fr, en")
	fs.StringVar(&f.outputFormat, "format", "", "Output format: text, json, yaml, csv (default: text)")
	fs.StringVar(&f.candidatesFile, "candidates", "", "JSON or YAML list of externally detected entities")
	fs.StringVar(&f.confidenceLevels, "confidence", "", "Confidence levels to display: high, medium, low, or combinations like 'high,medium'")
	fs.BoolVar(&f.showText, "show-text", false, "Display entity text in the output")
	fs.BoolVar(&f.verbose, "verbose", false, "Display components, validation results and diagnostics")
	fs.StringVar(&f.outputFile, "output", "", "Path to output file (if not specified, output to stdout)")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.jsonLogs, "json-logs", false, "Write logs as JSON")
	fs.IntVar(&f.workers, "workers", 0, "Documents processed in parallel (default: number of CPUs)")
	fs.BoolVar(&f.checkRemote, "check-remote", false, "Validate remote recognizers and exit")
	fs.BoolVar(&f.listValidators, "list-validators", false, "List the entity validators")
	fs.BoolVar(&f.showVersion, "version", false, "Show version information")
	fs.BoolVar(&f.showHelp, "help", false, "Show help information")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// loadConfiguration loads the configuration file, searching the standard
// locations when none is given, and applies the selected profile.
func loadConfiguration(configFile, profileName string) (*config.Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return cfg.ApplyProfile(profileName)
}

// resolveConfiguration resolves final values from the (profile-applied)
// configuration and the flags that were set explicitly.
func resolveConfiguration(fs *flag.FlagSet, cfg *config.Config, flags *cliFlags) *finalConfiguration {
	final := &finalConfiguration{
		format:           cfg.Defaults.Format,
		language:         cfg.Defaults.Language,
		confidenceLevels: cfg.Defaults.ConfidenceLevels,
		verbose:          cfg.Defaults.Verbose,
		debug:            cfg.Defaults.Debug,
		noColor:          cfg.Defaults.NoColor,
		jsonLogs:         cfg.Defaults.JSONLogs,
		logLevel:         cfg.Defaults.LogLevel,
	}
	if final.format == "" {
		final.format = "text"
	}
	if isFlagSet(fs, "format") && flags.outputFormat != "" {
		final.format = flags.outputFormat
	}
	if isFlagSet(fs, "language") && flags.language != "" {
		final.language = flags.language
	}
	if isFlagSet(fs, "confidence") && flags.confidenceLevels != "" {
		final.confidenceLevels = flags.confidenceLevels
	}
	if isFlagSet(fs, "verbose") {
		final.verbose = flags.verbose
	}
	if isFlagSet(fs, "debug") {
		final.debug = flags.debug
	}
	if isFlagSet(fs, "no-color") {
		final.noColor = flags.noColor
	}
	if isFlagSet(fs, "json-logs") {
		final.jsonLogs = flags.jsonLogs
	}
	if final.debug {
		final.logLevel = "debug"
	}
	if final.logLevel == "" {
		final.logLevel = "info"
	}
	return final
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("entity-pipeline", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags, err := parseFlags(fs, args)
	if err != nil {
		return 2
	}

	if flags.showVersion {
		fmt.Fprintln(stdout, version.Info())
		return 0
	}

	// Auto-detect non-interactive environment
	if !isTerminal(stdout) || os.Getenv("NO_COLOR") != "" {
		flags.noColor = true
		if err := fs.Set("no-color", "true"); err != nil {
			return 2
		}
	}

	if flags.showHelp || flags.listValidators {
		h := help.NewSystem(stdout, flags.noColor)
		validators.Default().RegisterHelp(h)
		switch {
		case flags.listValidators:
			h.ShowChecksHelp()
		case fs.NArg() > 0:
			if !h.ShowCheckHelp(fs.Arg(0)) {
				return 1
			}
		default:
			h.ShowGeneralHelp()
		}
		return 0
	}

	cfg, err := loadConfiguration(flags.configFile, flags.profileName)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(stderr, "Hint: %s\n", hint)
		}
		return 1
	}

	if flags.listProfiles {
		listProfiles(stdout, cfg)
		return 0
	}

	final := resolveConfiguration(fs, cfg, flags)
	logger, err := observability.NewLogger(final.logLevel, final.jsonLogs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := pipeline.BuildRecognizers(cfg.RecognizerSpec(), logger)
	if err != nil {
		logger.Error("failed to build recognizers", zap.Error(err))
		return 1
	}

	if flags.checkRemote {
		return checkRemote(ctx, stdout, registry.Remote())
	}

	opts := cfg.PipelineOptions(logger, nil)
	opts.Recognizers = registry
	p, err := pipeline.New(opts)
	if err != nil {
		logger.Error("invalid pipeline configuration", zap.Error(err))
		return 1
	}

	jobs, err := readJobs(stdin, flags.inputFile, flags.candidatesFile)
	if err != nil {
		logger.Error("failed to read input", zap.Error(err))
		return 1
	}
	for _, job := range jobs {
		job.Document.Language = final.language
	}
	logger.Debug("processing documents",
		zap.String("file", flags.inputFile),
		zap.Int("documents", len(jobs)),
		zap.String("profile", flags.profileName))

	processor := parallel.NewParallelProcessor(p, flags.workers, logger)
	outcomes, stats, err := processor.ProcessDocuments(ctx, jobs)
	if err != nil {
		logger.Error("processing interrupted", zap.Error(err))
		return 1
	}
	results := make([]*pipeline.Result, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Error != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", outcome.FilePath, outcome.Error)
			continue
		}
		results = append(results, outcome.Result)
	}

	options := formatters.FormatterOptions{
		ConfidenceLevel: formatters.ParseConfidenceLevels(final.confidenceLevels),
		Verbose:         final.verbose,
		NoColor:         final.noColor,
		ShowText:        flags.showText,
	}
	var out string
	if len(jobs) == 1 && len(results) == 1 {
		out, err = formatters.Export(final.format, results[0], options)
	} else {
		out, err = formatters.ExportBatch(final.format, results, options)
	}
	if err != nil {
		logger.Error("failed to format results", zap.Error(err))
		return 1
	}

	if err := writeOutput(stdout, flags.outputFile, out); err != nil {
		logger.Error("failed to write output", zap.String("path", flags.outputFile), zap.Error(err))
		return 1
	}
	if stats.FailedDocuments > 0 {
		return 1
	}
	return 0
}

func writeOutput(stdout io.Writer, path, out string) error {
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if path == "" {
		_, err := io.WriteString(stdout, out)
		return err
	}
	return os.WriteFile(path, []byte(out), 0600)
}

func listProfiles(w io.Writer, cfg *config.Config) {
	names := cfg.ListProfiles()
	if len(names) == 0 {
		fmt.Fprintln(w, "No profiles defined.")
		return
	}
	fmt.Fprintln(w, "Available profiles:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-16s %s\n", name, cfg.GetProfile(name).Description)
	}
}

// checkRemote health-checks every configured remote recognizer. It fails
// when an enabled recognizer is unreachable.
func checkRemote(ctx context.Context, w io.Writer, recognizers []remote.Recognizer) int {
	if len(recognizers) == 0 {
		fmt.Fprintln(w, "No remote recognizers configured.")
		return 0
	}
	code := 0
	for _, health := range remote.ValidateRemote(ctx, recognizers) {
		fmt.Fprintln(w, health.String())
		if health.Enabled && !health.Healthy {
			code = 1
		}
	}
	return code
}

// readJobs builds one job per input: standard input when pattern is empty,
// otherwise every file matching the path or glob pattern. Candidates apply
// to single-document runs only.
func readJobs(stdin io.Reader, pattern, candidatesPath string) ([]*parallel.Job, error) {
	var files []string
	if pattern != "" {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid file pattern %q", pattern)
		}
		if len(matches) == 0 {
			return nil, errors.Newf("no files match %q", pattern)
		}
		files = matches
	}

	var jobs []*parallel.Job
	if len(files) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "reading standard input")
		}
		jobs = append(jobs, &parallel.Job{FilePath: "-", Document: pipeline.Document{Text: string(data)}})
	}
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", file)
		}
		jobs = append(jobs, &parallel.Job{FilePath: file, Document: pipeline.Document{Text: string(data)}})
	}

	if candidatesPath != "" {
		if len(jobs) != 1 {
			return nil, errors.WithHint(
				errors.New("--candidates requires exactly one input document"),
				"candidate offsets refer to a single normalized text")
		}
		candidates, err := loadCandidates(candidatesPath)
		if err != nil {
			return nil, err
		}
		jobs[0].Document.Candidates = candidates
	}
	return jobs, nil
}

// loadCandidates parses a JSON or YAML list of entities. Offsets refer to
// the normalized text; entities without a source count as local model output.
func loadCandidates(path string) ([]detector.Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading candidates")
	}

	var candidates []detector.Entity
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &candidates)
	default:
		err = json.Unmarshal(data, &candidates)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parsing candidates %s", path)
	}
	for i := range candidates {
		if candidates[i].Source == "" {
			candidates[i].Source = detector.SourceLocalModel
		}
	}
	return candidates, nil
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isTerminal checks if w is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
