// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package recognizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/recognizers/pattern"
	"entity-pipeline/internal/recognizers/remote"
)

func mustPattern(t *testing.T, name string, rules ...pattern.Rule) *pattern.Recognizer {
	t.Helper()
	r, err := pattern.New(name, rules)
	require.NoError(t, err)
	return r
}

func TestRegistry_Discovery(t *testing.T) {
	german := mustPattern(t, "german", pattern.Rule{Type: detector.TypeIdentifier, Pattern: `K-\d+`, Languages: []string{"de"}})
	generic := mustPattern(t, "generic", pattern.Rule{Type: detector.TypeEmail, Pattern: `\S+@\S+`})

	enabled := remote.DefaultConfig("ner")
	enabled.Enabled = true
	enabled.Endpoint = "http://127.0.0.1:1/analyze"
	enabled.SupportedLanguages = []string{"de"}
	on, err := remote.NewHTTPRecognizer(enabled)
	require.NoError(t, err)
	off, err := remote.NewHTTPRecognizer(remote.DefaultConfig("dormant"))
	require.NoError(t, err)

	reg := NewRegistry([]detector.Recognizer{german, nil, generic}, []remote.Recognizer{on, off, nil})

	assert.Len(t, reg.Local(), 2)
	assert.Len(t, reg.Remote(), 2)
	assert.Len(t, reg.ForLanguage("de-CH"), 2)
	assert.Len(t, reg.ForLanguage("fr"), 1)
	assert.Len(t, reg.ForLanguage(""), 2)

	forID := reg.ForEntity(detector.TypeIdentifier)
	require.Len(t, forID, 1)
	assert.Equal(t, "german", forID[0].Name())
	assert.Empty(t, reg.ForEntity(detector.TypePhone))

	assert.Equal(t, []detector.Type{detector.TypeEmail, detector.TypeIdentifier}, reg.EntityTypes())

	require.Len(t, reg.EnabledRemote("de"), 1)
	assert.Equal(t, "ner", reg.EnabledRemote("de")[0].Name())
	assert.Empty(t, reg.EnabledRemote("fr"))
}

func TestRegistry_RemoteDisabledByDefault(t *testing.T) {
	rec, err := remote.NewHTTPRecognizer(remote.DefaultConfig("ner"))
	require.NoError(t, err)
	reg := NewRegistry(nil, []remote.Recognizer{rec})
	assert.Empty(t, reg.EnabledRemote(""))
}
