// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"entity-pipeline/internal/consolidate"
	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/normalizer"
	"entity-pipeline/internal/observability"
	"entity-pipeline/internal/paths"
	"entity-pipeline/internal/pipeline"
	"entity-pipeline/internal/recognizers/pattern"
	"entity-pipeline/internal/recognizers/remote"
	"entity-pipeline/internal/security"
)

var (
	// ErrInvalidConfig marks every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrUnknownProfile is returned for a profile name not in the file.
	ErrUnknownProfile = errors.New("unknown profile")
)

// Defaults holds settings the CLI flags can override.
type Defaults struct {
	Format           string `yaml:"format"`
	Language         string `yaml:"language"`
	ConfidenceLevels string `yaml:"confidence_levels"`
	Verbose          bool   `yaml:"verbose"`
	NoColor          bool   `yaml:"no_color"`
	Debug            bool   `yaml:"debug"`
	LogLevel         string `yaml:"log_level"`
	JSONLogs         bool   `yaml:"json_logs"`
	RemoteTimeoutMs  int    `yaml:"remote_timeout_ms"`
}

// Recognizers lists the recognizers to build.
type Recognizers struct {
	BuiltinPatterns bool           `yaml:"builtin_patterns"`
	Patterns        []pattern.Rule `yaml:"patterns"`
	// Remote recognizers are never called unless enabled here or by a profile.
	Remote []remote.Config `yaml:"remote"`
}

// Config represents the application configuration
type Config struct {
	Defaults      Defaults           `yaml:"defaults"`
	Normalizer    normalizer.Config  `yaml:"normalizer"`
	Consolidation consolidate.Config `yaml:"consolidation"`
	Recognizers   Recognizers        `yaml:"recognizers"`

	// Profiles for different processing scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile overrides parts of the configuration. Unset fields keep the base value.
type Profile struct {
	Description      string                `yaml:"description"`
	Format           string                `yaml:"format"`
	Language         string                `yaml:"language"`
	ConfidenceLevels string                `yaml:"confidence_levels"`
	Verbose          *bool                 `yaml:"verbose"`
	Debug            *bool                 `yaml:"debug"`
	Locales          []string              `yaml:"locales"`
	MaxGap           *int                  `yaml:"max_gap"`
	RetainComponents *bool                 `yaml:"retain_components"`
	Aggregate        string                `yaml:"aggregate"`
	Priorities       map[detector.Type]int `yaml:"priorities"`
	// EnableRemote names remote recognizers to switch on.
	EnableRemote []string `yaml:"enable_remote"`
	// DisableRemote switches every remote recognizer off; it wins over EnableRemote.
	DisableRemote bool `yaml:"disable_remote"`
}

// Default returns the built-in configuration.
func Default() *Config {
	retain := true
	debug := true
	verbose := true
	return &Config{
		Defaults: Defaults{
			Format:           "text",
			ConfidenceLevels: "all",
			LogLevel:         "info",
			RemoteTimeoutMs:  int(pipeline.DefaultRemoteTimeout / time.Millisecond),
		},
		Normalizer:    normalizer.DefaultConfig(),
		Consolidation: consolidate.DefaultConfig(),
		Recognizers:   Recognizers{BuiltinPatterns: true},
		Profiles: map[string]Profile{
			"diagnostic": {
				Description:      "Keeps merged address components and emits YAML with debug logging",
				Format:           "yaml",
				Verbose:          &verbose,
				Debug:            &debug,
				RetainComponents: &retain,
			},
			"local-only": {
				Description:   "Never contacts remote recognizers, whatever the file enables",
				DisableRemote: true,
			},
		},
	}
}

// LoadConfig loads configuration from the specified file path. An empty path
// returns the defaults. Keys missing from the file keep their default value;
// unknown keys are an error.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}
	if err := parse(data, cfg); err != nil {
		return nil, errors.Join(errors.Wrapf(err, "error parsing config file %s", configPath), ErrInvalidConfig)
	}
	normalizeCredentialPaths(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// normalizeCredentialPaths expands "~" in file: credential references.
func normalizeCredentialPaths(cfg *Config) {
	for i := range cfg.Recognizers.Remote {
		r := &cfg.Recognizers.Remote[i]
		if path, ok := strings.CutPrefix(r.CredentialRef, security.SchemeFile); ok && path != "" {
			r.CredentialRef = security.SchemeFile + paths.NormalizePath(path)
		}
	}
}

// FindConfigFile looks for a configuration file in the working directory,
// then in the platform configuration directory. It returns "" when none exists.
func FindConfigFile() string {
	for _, name := range []string{"entity-pipeline.yaml", "entity-pipeline.yml", ".entity-pipeline.yaml", ".entity-pipeline.yml"} {
		if fileExists(name) {
			return name
		}
	}
	if standard := paths.GetConfigFile(); fileExists(standard) {
		return standard
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the profile names in alphabetical order.
func (c *Config) ListProfiles() []string {
	return slices.Sorted(maps.Keys(c.Profiles))
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ApplyProfile returns a copy of c with the named profile's overrides applied.
// An empty name returns an unmodified copy.
func (c *Config) ApplyProfile(name string) (*Config, error) {
	out := c.clone()
	if name == "" {
		return out, nil
	}
	p := c.GetProfile(name)
	if p == nil {
		return nil, errors.WithHint(
			errors.Join(errors.Newf("unknown profile %q", name), ErrUnknownProfile),
			"available profiles: "+strings.Join(c.ListProfiles(), ", "))
	}

	if p.Format != "" {
		out.Defaults.Format = p.Format
	}
	if p.Language != "" {
		out.Defaults.Language = p.Language
	}
	if p.ConfidenceLevels != "" {
		out.Defaults.ConfidenceLevels = p.ConfidenceLevels
	}
	if p.Verbose != nil {
		out.Defaults.Verbose = *p.Verbose
	}
	if p.Debug != nil {
		out.Defaults.Debug = *p.Debug
	}
	if len(p.Locales) > 0 {
		out.Normalizer.Locales = slices.Clone(p.Locales)
	}
	if p.MaxGap != nil {
		out.Consolidation.Address.MaxGap = *p.MaxGap
	}
	if p.RetainComponents != nil {
		out.Consolidation.Address.RetainComponents = *p.RetainComponents
	}
	if p.Aggregate != "" {
		out.Consolidation.Address.Aggregate = consolidate.Aggregate(p.Aggregate)
	}
	maps.Copy(out.Consolidation.Priorities, p.Priorities)

	for _, want := range p.EnableRemote {
		i := slices.IndexFunc(out.Recognizers.Remote, func(r remote.Config) bool { return r.Name == want })
		if i < 0 {
			return nil, errors.Join(errors.Newf("profile %q enables unknown remote recognizer %q", name, want), ErrInvalidConfig)
		}
		out.Recognizers.Remote[i].Enabled = true
	}
	if p.DisableRemote {
		for i := range out.Recognizers.Remote {
			out.Recognizers.Remote[i].Enabled = false
		}
	}
	return out, nil
}

func (c *Config) clone() *Config {
	out := *c
	out.Normalizer.Locales = slices.Clone(c.Normalizer.Locales)
	out.Consolidation.Priorities = maps.Clone(c.Consolidation.Priorities)
	if out.Consolidation.Priorities == nil {
		out.Consolidation.Priorities = make(map[detector.Type]int)
	}
	out.Consolidation.Address.Grammars = slices.Clone(c.Consolidation.Address.Grammars)
	out.Recognizers.Patterns = slices.Clone(c.Recognizers.Patterns)
	out.Recognizers.Remote = slices.Clone(c.Recognizers.Remote)
	out.Profiles = maps.Clone(c.Profiles)
	return &out
}

// ValidateConfig reports every problem in config, including those that only
// appear once a profile is applied.
func ValidateConfig(config *Config) error {
	if config == nil {
		return errors.Join(errors.New("configuration cannot be nil"), ErrInvalidConfig)
	}

	errs := validateSections(config)
	for _, name := range config.ListProfiles() {
		applied, err := config.ApplyProfile(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, err := range validateSections(applied) {
			errs = append(errs, errors.Wrapf(err, "profile %q", name))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(append(errs, ErrInvalidConfig)...)
}

func validateSections(c *Config) []error {
	var errs []error
	if c.Defaults.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.Defaults.LogLevel); err != nil {
			errs = append(errs, errors.Wrap(err, "defaults.log_level"))
		}
	}
	if err := validateConfidenceLevels(c.Defaults.ConfidenceLevels); err != nil {
		errs = append(errs, errors.Wrap(err, "defaults.confidence_levels"))
	}
	if c.Defaults.RemoteTimeoutMs < 0 {
		errs = append(errs, errors.Newf("defaults.remote_timeout_ms must not be negative, got %d", c.Defaults.RemoteTimeoutMs))
	}
	if err := c.Normalizer.Validate(); err != nil {
		errs = append(errs, errors.Wrap(err, "normalizer"))
	}
	if err := c.Consolidation.Validate(); err != nil {
		errs = append(errs, errors.Wrap(err, "consolidation"))
	}
	if len(c.Recognizers.Patterns) > 0 {
		if _, err := pattern.New("custom-patterns", c.Recognizers.Patterns); err != nil {
			errs = append(errs, errors.Wrap(err, "recognizers.patterns"))
		}
	}

	seen := make(map[string]bool, len(c.Recognizers.Remote))
	for i, r := range c.Recognizers.Remote {
		if r.Name != "" && seen[r.Name] {
			errs = append(errs, errors.Newf("recognizers.remote[%d]: duplicate name %q", i, r.Name))
		}
		seen[r.Name] = true
		if err := r.Validate(); err != nil {
			errs = append(errs, errors.Wrapf(err, "recognizers.remote[%d]", i))
		}
		if path, ok := strings.CutPrefix(r.CredentialRef, security.SchemeFile); ok {
			if err := paths.ValidatePath(path); err != nil {
				errs = append(errs, errors.Wrapf(err, "recognizers.remote[%d].credential_ref", i))
			}
		}
	}
	return errs
}

// validateConfidenceLevels accepts "all" or a comma-separated subset of
// high, medium and low.
func validateConfidenceLevels(levels string) error {
	if levels == "" || levels == "all" {
		return nil
	}
	for _, level := range strings.Split(levels, ",") {
		switch strings.ToLower(strings.TrimSpace(level)) {
		case "high", "medium", "low":
		default:
			return errors.Newf("unknown confidence level %q", level)
		}
	}
	return nil
}

// RemoteTimeout returns the per-document cap on remote calls.
func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.Defaults.RemoteTimeoutMs) * time.Millisecond
}

// RecognizerSpec converts the recognizer section for pipeline.BuildRecognizers.
func (c *Config) RecognizerSpec() pipeline.RecognizerSpec {
	return pipeline.RecognizerSpec{
		BuiltinPatterns: c.Recognizers.BuiltinPatterns,
		Patterns:        slices.Clone(c.Recognizers.Patterns),
		Remote:          slices.Clone(c.Recognizers.Remote),
	}
}

// PipelineOptions converts c into pipeline options. Recognizers are built
// separately from RecognizerSpec.
func (c *Config) PipelineOptions(logger *zap.Logger, metrics *observability.Metrics) pipeline.Options {
	return pipeline.Options{
		Normalizer:    c.Normalizer,
		Consolidation: c.Consolidation,
		RemoteTimeout: c.RemoteTimeout(),
		Logger:        logger,
		Metrics:       metrics,
	}
}
