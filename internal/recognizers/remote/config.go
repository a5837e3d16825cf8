// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/security"
)

// ErrInvalidConfig marks remote recognizer definitions that cannot be used.
var ErrInvalidConfig = errors.New("invalid remote recognizer configuration")

// DefaultPriority ranks remote recognizers below every local recognizer,
// whose priority is zero, so local findings win ties.
const DefaultPriority = -10

// OffsetUnit names the unit a service reports span offsets in.
type OffsetUnit string

const (
	OffsetRune  OffsetUnit = "rune"
	OffsetByte  OffsetUnit = "byte"
	OffsetUTF16 OffsetUnit = "utf16"
)

// RateLimit bounds the request rate to one service. Zero means unlimited.
type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// ResponseMapping locates entities inside the service's JSON answer.
// Paths use gjson syntax.
type ResponseMapping struct {
	EntitiesPath string `yaml:"entities_path"`
	TypeField    string `yaml:"type_field"`
	StartField   string `yaml:"start_field"`
	EndField     string `yaml:"end_field"`
	ScoreField   string `yaml:"score_field"`
	// TypeMap translates service labels (e.g. "PER") into entity types.
	TypeMap map[string]string `yaml:"type_map"`
}

// Config describes one remote recognizer. It is immutable once the
// recognizer has been built.
type Config struct {
	Name               string          `yaml:"name"`
	Endpoint           string          `yaml:"endpoint"`
	HealthPath         string          `yaml:"health_path"`
	TimeoutMs          int             `yaml:"timeout_ms"`
	RetryAttempts      int             `yaml:"retry_attempts"`
	Priority           int             `yaml:"priority"`
	Enabled            bool            `yaml:"enabled"`
	SupportedEntities  []string        `yaml:"supported_entities"`
	SupportedLanguages []string        `yaml:"supported_languages"`
	CredentialRef      string          `yaml:"credential_ref"`
	AuthHeader         string          `yaml:"auth_header"`
	AuthScheme         string          `yaml:"auth_scheme"`
	MinScore           float64         `yaml:"min_score"`
	DefaultScore       float64         `yaml:"default_score"`
	RateLimit          RateLimit       `yaml:"rate_limit"`
	Response           ResponseMapping `yaml:"response"`
	OffsetUnit         OffsetUnit      `yaml:"offset_unit"`
}

// DefaultConfig returns a disabled recognizer definition with every optional
// field set.
func DefaultConfig(name string) Config {
	c := Config{Name: name}
	c.applyDefaults()
	return c
}

// applyDefaults fills zero-valued optional fields. Enabled is never touched.
func (c *Config) applyDefaults() {
	if c.TimeoutMs == 0 {
		c.TimeoutMs = 5000
	}
	if c.Priority == 0 {
		c.Priority = DefaultPriority
	}
	if c.AuthHeader == "" {
		c.AuthHeader = "Authorization"
	}
	if c.AuthScheme == "" && c.AuthHeader == "Authorization" {
		c.AuthScheme = "Bearer"
	}
	if c.DefaultScore == 0 {
		c.DefaultScore = 0.5
	}
	if c.OffsetUnit == "" {
		c.OffsetUnit = OffsetRune
	}
	m := &c.Response
	if m.EntitiesPath == "" {
		m.EntitiesPath = "entities"
	}
	if m.TypeField == "" {
		m.TypeField = "type"
	}
	if m.StartField == "" {
		m.StartField = "start"
	}
	if m.EndField == "" {
		m.EndField = "end"
	}
	if m.ScoreField == "" {
		m.ScoreField = "score"
	}
}

// Timeout returns the per-call budget.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Validate reports configuration errors. Endpoint and credential checks only
// apply to enabled recognizers.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if c.TimeoutMs < 0 {
		errs = append(errs, errors.Newf("timeout_ms must not be negative, got %d", c.TimeoutMs))
	}
	if c.RetryAttempts < 0 {
		errs = append(errs, errors.Newf("retry_attempts must not be negative, got %d", c.RetryAttempts))
	}
	if c.RateLimit.RequestsPerSecond < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("rate_limit values must not be negative"))
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		errs = append(errs, errors.Newf("min_score must be within [0,1], got %g", c.MinScore))
	}
	switch c.OffsetUnit {
	case "", OffsetRune, OffsetByte, OffsetUTF16:
	default:
		errs = append(errs, errors.Newf("unknown offset_unit %q", c.OffsetUnit))
	}
	for _, name := range c.SupportedEntities {
		if _, err := detector.ParseType(name); err != nil {
			errs = append(errs, err)
		}
	}
	for label, name := range c.Response.TypeMap {
		if _, err := detector.ParseType(name); err != nil {
			errs = append(errs, errors.Wrapf(err, "type_map[%s]", label))
		}
	}
	if c.Enabled {
		if c.Endpoint == "" {
			errs = append(errs, errors.New("endpoint is required when enabled"))
		} else if u, err := url.Parse(c.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, errors.Newf("endpoint %q is not an http(s) URL", c.Endpoint))
		}
		if err := security.CheckCredentialRef(c.CredentialRef); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errors.Wrapf(errors.Join(errs...), "remote recognizer %q", c.Name), ErrInvalidConfig)
}
