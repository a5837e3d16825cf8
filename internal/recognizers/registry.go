// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package recognizers holds the process-wide set of local and remote
// recognizers and answers discovery queries over it.
package recognizers

import (
	mapset "github.com/deckarep/golang-set/v2"

	"entity-pipeline/internal/detector"
	"entity-pipeline/internal/recognizers/remote"
)

type localEntry struct {
	recognizer detector.Recognizer
	entities   mapset.Set[detector.Type]
	languages  mapset.Set[string]
}

// Registry is built once at startup and read-only afterwards, so lookups need
// no locking.
type Registry struct {
	local  []localEntry
	remote []remote.Recognizer
}

// NewRegistry snapshots the given recognizers. Nil entries are ignored.
func NewRegistry(local []detector.Recognizer, remotes []remote.Recognizer) *Registry {
	r := &Registry{}
	for _, rec := range local {
		if rec == nil {
			continue
		}
		names := make([]string, 0, len(rec.SupportedEntities()))
		for _, t := range rec.SupportedEntities() {
			names = append(names, string(t))
		}
		r.local = append(r.local, localEntry{
			recognizer: rec,
			entities:   remote.TypeSet(names),
			languages:  remote.LanguageSet(rec.SupportedLanguages()),
		})
	}
	for _, rec := range remotes {
		if rec != nil {
			r.remote = append(r.remote, rec)
		}
	}
	return r
}

// Local returns every local recognizer in registration order.
func (r *Registry) Local() []detector.Recognizer {
	out := make([]detector.Recognizer, len(r.local))
	for i, e := range r.local {
		out[i] = e.recognizer
	}
	return out
}

// Remote returns every remote recognizer, enabled or not.
func (r *Registry) Remote() []remote.Recognizer {
	out := make([]remote.Recognizer, len(r.remote))
	copy(out, r.remote)
	return out
}

// ForLanguage returns the local recognizers handling language.
func (r *Registry) ForLanguage(language string) []detector.Recognizer {
	var out []detector.Recognizer
	for _, e := range r.local {
		if remote.SupportsLanguage(e.languages, language) {
			out = append(out, e.recognizer)
		}
	}
	return out
}

// ForEntity returns the local recognizers able to emit t.
func (r *Registry) ForEntity(t detector.Type) []detector.Recognizer {
	var out []detector.Recognizer
	for _, e := range r.local {
		if e.entities.Cardinality() == 0 || e.entities.Contains(t) {
			out = append(out, e.recognizer)
		}
	}
	return out
}

// EnabledRemote returns the remote recognizers that are enabled and support
// language. It is empty unless configuration explicitly enabled one.
func (r *Registry) EnabledRemote(language string) []remote.Recognizer {
	return remote.Active(r.remote, language)
}

// EntityTypes returns the union of types the local recognizers declare.
// A recognizer declaring none contributes nothing.
func (r *Registry) EntityTypes() []detector.Type {
	all := mapset.NewThreadUnsafeSet[detector.Type]()
	for _, e := range r.local {
		all = all.Union(e.entities)
	}
	var out []detector.Type
	for _, t := range detector.AllTypes {
		if all.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}
