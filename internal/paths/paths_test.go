// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetConfigDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(ConfigDirEnv, dir)

	if got := GetConfigDir(); got != filepath.Clean(dir) {
		t.Errorf("expected %q, got %q", dir, got)
	}
	if got := GetConfigFile(); got != filepath.Join(dir, "config.yaml") {
		t.Errorf("unexpected config file %q", got)
	}
}

func TestNormalizePath_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := NormalizePath("~/secrets/token"); got != filepath.Join(home, "secrets", "token") {
		t.Errorf("unexpected path %q", got)
	}
	if got := NormalizePath("a/./b/../c"); got != filepath.Join("a", "c") {
		t.Errorf("unexpected path %q", got)
	}
	if NormalizePath("") != "" {
		t.Error("empty path should stay empty")
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath(""); err != nil {
		t.Errorf("empty path should be valid, got %v", err)
	}
	if err := ValidatePath("ok/path.yaml"); err != nil {
		t.Errorf("expected valid path, got %v", err)
	}
	err := ValidatePath("bad\x00path")
	if err == nil {
		t.Fatal("expected error for null byte")
	}
	if _, ok := err.(*PathValidationError); !ok {
		t.Errorf("expected *PathValidationError, got %T", err)
	}
}
