// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package security

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestCheckCredentialRef(t *testing.T) {
	tests := []struct {
		ref     string
		wantErr bool
	}{
		{"", false},
		{"env:NER_TOKEN", false},
		{"file:/run/secrets/ner", false},
		{"env:", true},
		{"plain-secret", true},
		{"vault:kv/ner", true},
	}
	for _, tt := range tests {
		err := CheckCredentialRef(tt.ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("CheckCredentialRef(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrBadCredentialRef) {
			t.Errorf("CheckCredentialRef(%q) should be marked ErrBadCredentialRef", tt.ref)
		}
	}
}

func TestResolveCredential_Env(t *testing.T) {
	t.Setenv("ENTITY_PIPELINE_TEST_TOKEN", "s3cret")

	cred, err := ResolveCredential("env:ENTITY_PIPELINE_TEST_TOKEN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.Ref() != "env:ENTITY_PIPELINE_TEST_TOKEN" {
		t.Errorf("unexpected ref %q", cred.Ref())
	}
	if got := cred.HeaderValue("Bearer"); got != "Bearer s3cret" {
		t.Errorf("expected 'Bearer s3cret', got %q", got)
	}
	if got := cred.HeaderValue(""); got != "s3cret" {
		t.Errorf("expected raw secret, got %q", got)
	}

	cred.Clear()
	if !cred.Cleared() || cred.HeaderValue("Bearer") != "" {
		t.Error("secret still readable after Clear")
	}
	cred.Clear()

	_, err = ResolveCredential("env:ENTITY_PIPELINE_TEST_MISSING")
	if !stderrors.Is(err, ErrBadCredentialRef) {
		t.Errorf("expected ErrBadCredentialRef for missing variable, got %v", err)
	}
}

func TestResolveCredential_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  abc123\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cred, err := ResolveCredential("file:" + path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cred.HeaderValue("Token"); got != "Token abc123" {
		t.Errorf("expected trimmed secret, got %q", got)
	}

	// Resolving again yields an independent buffer.
	other, err := ResolveCredential("file:" + path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cred.Clear()
	if got := other.HeaderValue(""); got != "abc123" {
		t.Errorf("clearing one credential affected another: %q", got)
	}
	other.Clear()

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte(" \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, ref := range []string{"file:" + empty, "file:" + filepath.Join(t.TempDir(), "absent")} {
		if _, err := ResolveCredential(ref); !stderrors.Is(err, ErrBadCredentialRef) {
			t.Errorf("ResolveCredential(%q) = %v, want ErrBadCredentialRef", ref, err)
		}
	}
}

func TestResolveCredential_Empty(t *testing.T) {
	ss, err := ResolveCredential("")
	if err != nil || ss != nil {
		t.Errorf("expected nil, nil; got %v, %v", ss, err)
	}
}
