// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ConfigDirEnv overrides the configuration directory on every platform.
const ConfigDirEnv = "ENTITY_PIPELINE_CONFIG_DIR"

const appDir = "entity-pipeline"

// GetConfigDir returns the entity-pipeline configuration directory: the
// override from ConfigDirEnv, else the platform user config directory
// (APPDATA on Windows, XDG_CONFIG_HOME or ~/.config on Unix,
// ~/Library/Application Support on macOS).
func GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return NormalizePath(dir)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDir)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "."+appDir)
	}
	return "." + appDir
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// NormalizePath expands a leading "~" and cleans the path for the current platform.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return filepath.Clean(path)
}

// ValidatePath validates a path for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return nil // Empty path is valid
	}
	if strings.ContainsRune(path, 0) {
		return &PathValidationError{Path: path, Reason: "contains null byte"}
	}
	if filepath.Separator == '\\' {
		return validateWindowsPath(path)
	}
	return nil
}

// validateWindowsPath validates a Windows path
func validateWindowsPath(path string) error {
	for i, char := range path {
		if strings.ContainsRune(`<>:"|?*`, char) {
			// Skip colon if it's part of a drive letter (position 1: C:)
			if char == ':' && i == 1 {
				continue
			}
			return &PathValidationError{
				Path:   path,
				Reason: "contains invalid character: " + string(char),
			}
		}
	}
	if len(path) > 32767 {
		return &PathValidationError{
			Path:   path,
			Reason: "path exceeds maximum length of 32,767 characters",
		}
	}
	return nil
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}
