// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"bytes"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrBadCredentialRef marks credential references that cannot be resolved.
var ErrBadCredentialRef = errors.New("invalid credential reference")

// Credential reference schemes. Configuration holds references only, never
// the secret itself.
const (
	SchemeEnv  = "env:"
	SchemeFile = "file:"
)

// CheckCredentialRef validates the syntax of ref without resolving it.
// An empty reference means no credential.
func CheckCredentialRef(ref string) error {
	switch {
	case ref == "":
		return nil
	case strings.HasPrefix(ref, SchemeEnv) && len(ref) > len(SchemeEnv):
		return nil
	case strings.HasPrefix(ref, SchemeFile) && len(ref) > len(SchemeFile):
		return nil
	}
	return errors.WithHint(
		errors.Join(errors.Newf("credential reference %q", ref), ErrBadCredentialRef),
		"use env:VARIABLE or file:/path/to/secret")
}

// Credential is a resolved secret held in a mutable buffer so it can be
// zeroed after a request. Strings derived from it by HeaderValue are
// immutable copies and outlive Clear.
type Credential struct {
	ref  string
	data []byte
}

func newCredential(ref string, secret []byte) *Credential {
	data := make([]byte, len(secret))
	copy(data, secret)
	return &Credential{ref: ref, data: data}
}

// Ref returns the reference the credential was resolved from.
func (c *Credential) Ref() string {
	return c.ref
}

// Cleared reports whether Clear has run.
func (c *Credential) Cleared() bool {
	return c.data == nil
}

// HeaderValue renders the secret for an HTTP header, prefixed with scheme
// (e.g. "Bearer") when one is given. It returns "" after Clear.
func (c *Credential) HeaderValue(scheme string) string {
	if c.data == nil {
		return ""
	}
	if scheme == "" {
		return string(c.data)
	}
	return scheme + " " + string(c.data)
}

// Clear zeroes the secret and releases it. Safe to call more than once.
func (c *Credential) Clear() {
	clear(c.data)
	c.data = nil
}

// ResolveCredential reads the secret ref points to. Callers must Clear the
// result once the secret has been used. An empty ref resolves to nil.
func ResolveCredential(ref string) (*Credential, error) {
	if ref == "" {
		return nil, nil
	}
	if err := CheckCredentialRef(ref); err != nil {
		return nil, err
	}

	if name, ok := strings.CutPrefix(ref, SchemeEnv); ok {
		value, found := os.LookupEnv(name)
		if !found || value == "" {
			return nil, errors.Join(errors.Newf("environment variable %s is not set", name), ErrBadCredentialRef)
		}
		return newCredential(ref, []byte(value)), nil
	}

	path := strings.TrimPrefix(ref, SchemeFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(errors.Wrapf(err, "reading credential file %s", path), ErrBadCredentialRef)
	}
	defer clear(data)

	secret := bytes.TrimSpace(data)
	if len(secret) == 0 {
		return nil, errors.Join(errors.Newf("credential file %s is empty", path), ErrBadCredentialRef)
	}
	return newCredential(ref, secret), nil
}
