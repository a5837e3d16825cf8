// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"entity-pipeline/internal/consolidate"
	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/paths"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "entity-pipeline.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("expected default format=text, got %q", cfg.Defaults.Format)
	}
	if cfg.Normalizer.Form != "NFKC" || !cfg.Normalizer.HandleEmails {
		t.Errorf("unexpected normalizer defaults: %+v", cfg.Normalizer)
	}
	if cfg.Consolidation.Address.MaxGap != 50 {
		t.Errorf("expected max_gap=50, got %d", cfg.Consolidation.Address.MaxGap)
	}
	if !cfg.Recognizers.BuiltinPatterns {
		t.Error("expected builtin patterns enabled by default")
	}
	if len(cfg.Recognizers.Remote) != 0 {
		t.Error("expected no remote recognizers by default")
	}
	if err := ValidateConfig(cfg); err != nil {
		t.Errorf("default configuration should be valid: %v", err)
	}
}

func TestLoadConfig_ProfilesInitialized(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := strings.Join(cfg.ListProfiles(), ",")
	if got != "diagnostic,local-only" {
		t.Errorf("unexpected default profiles %q", got)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := writeConfig(t, `
defaults:
  format: json
  language: de
normalizer:
  handle_phones: false
  locales: [de]
consolidation:
  priorities:
    PERSON: 85
  address:
    retain_components: true
    aggregate: weighted_average
recognizers:
  patterns:
    - name: ticket
      type: IDENTIFIER
      pattern: 'TCK-\d{4}'
      confidence: 0.9
  remote:
    - name: presidio
      endpoint: http://localhost:5002/analyze
      timeout_ms: 800
      retry_attempts: 1
      credential_ref: env:PRESIDIO_TOKEN
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "json" || cfg.Defaults.Language != "de" {
		t.Errorf("defaults not applied: %+v", cfg.Defaults)
	}
	if cfg.Normalizer.HandlePhones {
		t.Error("expected handle_phones=false from file")
	}
	if !cfg.Normalizer.HandleEmails || cfg.Normalizer.Form != "NFKC" {
		t.Error("keys missing from the file should keep their defaults")
	}
	if cfg.Consolidation.Priorities[detector.TypePerson] != 85 {
		t.Errorf("expected PERSON priority 85, got %d", cfg.Consolidation.Priorities[detector.TypePerson])
	}
	if cfg.Consolidation.Priorities[detector.TypeIBAN] != 95 {
		t.Error("priorities missing from the file should keep their defaults")
	}
	if cfg.Consolidation.Address.MaxGap != 50 {
		t.Errorf("expected default max_gap, got %d", cfg.Consolidation.Address.MaxGap)
	}
	if cfg.Consolidation.Address.Aggregate != consolidate.AggregateWeightedAverage {
		t.Errorf("unexpected aggregate %q", cfg.Consolidation.Address.Aggregate)
	}
	if len(cfg.Recognizers.Remote) != 1 || cfg.Recognizers.Remote[0].Enabled {
		t.Errorf("remote recognizers must stay disabled unless enabled: %+v", cfg.Recognizers.Remote)
	}
	if got := cfg.RemoteTimeout(); got != 10*time.Second {
		t.Errorf("unexpected remote timeout %v", got)
	}

	spec := cfg.RecognizerSpec()
	if !spec.BuiltinPatterns || len(spec.Patterns) != 1 || len(spec.Remote) != 1 {
		t.Errorf("unexpected recognizer spec %+v", spec)
	}
	opts := cfg.PipelineOptions(nil, nil)
	if !opts.Consolidation.Address.RetainComponents {
		t.Error("pipeline options should carry consolidation settings")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", ":::invalid yaml:::"},
		{"unknown key", "defaults:\n  colour: true\n"},
		{"bad normalization form", "normalizer:\n  form: NFX\n"},
		{"unsupported locale", "normalizer:\n  locales: [it]\n"},
		{"negative gap", "consolidation:\n  address:\n    max_gap: -1\n"},
		{"unknown aggregate", "consolidation:\n  address:\n    aggregate: median\n"},
		{"bad grammar", "consolidation:\n  address:\n    grammars:\n      - country: xx\n        pattern: '^S('\n"},
		{"unknown priority type", "consolidation:\n  priorities:\n    PET_NAME: 3\n"},
		{"negative remote timeout", "defaults:\n  remote_timeout_ms: -5\n"},
		{"bad log level", "defaults:\n  log_level: chatty\n"},
		{"bad confidence level", "defaults:\n  confidence_levels: high,certain\n"},
		{"bad pattern", "recognizers:\n  patterns:\n    - name: x\n      type: NUMBER\n      pattern: '('\n"},
		{"enabled remote without endpoint", "recognizers:\n  remote:\n    - name: ner\n      enabled: true\n"},
		{"negative retries", "recognizers:\n  remote:\n    - name: ner\n      retry_attempts: -1\n"},
		{"bad credential scheme", "recognizers:\n  remote:\n    - name: ner\n      enabled: true\n      endpoint: http://localhost\n      credential_ref: hunter2\n"},
		{"duplicate remote", "recognizers:\n  remote:\n    - name: ner\n    - name: ner\n"},
		{"profile breaks config", "profiles:\n  wide:\n    max_gap: -3\n"},
		{"profile enables unknown remote", "profiles:\n  online:\n    enable_remote: [nope]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if !stderrors.Is(err, ErrInvalidConfig) {
				t.Errorf("ErrInvalidConfig not in the unwrap chain: %v", err)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfig_EmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Format != "text" {
		t.Errorf("expected defaults, got %+v", cfg.Defaults)
	}
}

func TestLoadConfig_ExpandsCredentialPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg, err := LoadConfig(writeConfig(t, "recognizers:\n  remote:\n    - name: ner\n      credential_ref: file:~/tokens/ner\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "file:" + filepath.Join(home, "tokens", "ner")
	if got := cfg.Recognizers.Remote[0].CredentialRef; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestApplyProfile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
recognizers:
  remote:
    - name: ner
      endpoint: http://localhost:5002/analyze
profiles:
  online:
    description: Uses the remote recognizer
    enable_remote: [ner]
    priorities:
      PERSON: 99
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	online, err := cfg.ApplyProfile("online")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !online.Recognizers.Remote[0].Enabled {
		t.Error("profile should enable the remote recognizer")
	}
	if online.Consolidation.Priorities[detector.TypePerson] != 99 {
		t.Error("profile priority override not applied")
	}
	if cfg.Recognizers.Remote[0].Enabled || cfg.Consolidation.Priorities[detector.TypePerson] == 99 {
		t.Error("applying a profile must not modify the base configuration")
	}

	diagnostic, err := cfg.ApplyProfile("diagnostic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !diagnostic.Consolidation.Address.RetainComponents || diagnostic.Defaults.Format != "yaml" || !diagnostic.Defaults.Debug || !diagnostic.Defaults.Verbose {
		t.Errorf("diagnostic profile not applied: %+v", diagnostic.Defaults)
	}

	local, err := online.ApplyProfile("local-only")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if local.Recognizers.Remote[0].Enabled {
		t.Error("local-only profile must disable every remote recognizer")
	}

	if _, err := cfg.ApplyProfile("missing"); !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("expected ErrUnknownProfile, got %v", err)
	}
	if p := cfg.GetProfile("online"); p == nil || p.Description != "Uses the remote recognizer" {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Setenv(paths.ConfigDirEnv, t.TempDir())
	t.Chdir(t.TempDir())

	if got := FindConfigFile(); got != "" {
		t.Errorf("expected no config file, got %q", got)
	}

	if err := os.WriteFile(paths.GetConfigFile(), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(); got != paths.GetConfigFile() {
		t.Errorf("expected standard location, got %q", got)
	}

	if err := os.WriteFile("entity-pipeline.yaml", []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(); got != "entity-pipeline.yaml" {
		t.Errorf("expected working directory file first, got %q", got)
	}
}
