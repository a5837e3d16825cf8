// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/recognizers"
	"entity-pipeline/internal/recognizers/pattern"
	"entity-pipeline/internal/recognizers/remote"
)

// RecognizerSpec describes the recognizers to build.
type RecognizerSpec struct {
	// BuiltinPatterns enables the default pattern table.
	BuiltinPatterns bool
	// Patterns are extra rules, grouped into one recognizer.
	Patterns []pattern.Rule
	// Remote lists remote recognizer definitions, enabled or not.
	Remote []remote.Config
}

// BuildRecognizers constructs the recognizer registry described by spec.
// Disabled remote recognizers are built too so health checks can list them;
// they never receive traffic.
func BuildRecognizers(spec RecognizerSpec, logger *zap.Logger) (*recognizers.Registry, error) {
	var local []detector.Recognizer
	if spec.BuiltinPatterns {
		local = append(local, pattern.Default())
	}
	if len(spec.Patterns) > 0 {
		custom, err := pattern.New("custom-patterns", spec.Patterns)
		if err != nil {
			return nil, errors.Join(errors.Wrap(err, "custom patterns"), ErrInvalidOptions)
		}
		local = append(local, custom)
	}

	var remotes []remote.Recognizer
	seen := make(map[string]bool, len(spec.Remote))
	for _, cfg := range spec.Remote {
		if seen[cfg.Name] {
			return nil, errors.Join(errors.Newf("duplicate remote recognizer %q", cfg.Name), ErrInvalidOptions)
		}
		seen[cfg.Name] = true

		rec, err := remote.NewHTTPRecognizer(cfg, remote.WithLogger(logger))
		if err != nil {
			return nil, errors.Join(errors.Wrapf(err, "remote recognizer %q", cfg.Name), ErrInvalidOptions)
		}
		remotes = append(remotes, rec)
	}
	return recognizers.NewRegistry(local, remotes), nil
}
