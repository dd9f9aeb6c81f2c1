// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package target

import (
	"fmt"
	"slices"
	"strings"
)

// Entry maps a friendly target name to its triple identifier.
type Entry struct {
	Name   string `yaml:"name" json:"name"`
	Triple string `yaml:"triple" json:"triple"`
}

// Registry is an immutable, ordered set of known targets. Names and
// triples are stored lower-cased; definition order is preserved.
type Registry struct {
	entries  []Entry
	byName   map[string]int
	byTriple map[string]int
}

// NewRegistry builds a Registry from entries in definition order.
// Duplicate names or triples are rejected.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{
		entries:  make([]Entry, 0, len(entries)),
		byName:   make(map[string]int, len(entries)),
		byTriple: make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		name := normalize(e.Name)
		triple := normalize(e.Triple)
		if name == "" || triple == "" {
			return nil, fmt.Errorf("target entry %q: name and triple are required", e.Name)
		}
		if _, ok := r.byName[name]; ok {
			return nil, fmt.Errorf("duplicate target name %q", name)
		}
		if _, ok := r.byTriple[triple]; ok {
			return nil, fmt.Errorf("duplicate target triple %q", triple)
		}
		r.byName[name] = len(r.entries)
		r.byTriple[triple] = len(r.entries)
		r.entries = append(r.entries, Entry{Name: name, Triple: triple})
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(entries ...Entry) *Registry {
	r, err := NewRegistry(entries...)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultEntries are the targets xbuild knows out of the box.
var DefaultEntries = []Entry{
	{Name: "macos-aarch64", Triple: "aarch64-apple-darwin"},
	{Name: "macos-x86_64", Triple: "x86_64-apple-darwin"},
	{Name: "linux-aarch64", Triple: "aarch64-unknown-linux-gnu"},
	{Name: "linux-x86_64", Triple: "x86_64-unknown-linux-gnu"},
}

// DefaultRegistry returns a Registry of DefaultEntries.
func DefaultRegistry() *Registry {
	return MustRegistry(DefaultEntries...)
}

// Entries returns a copy of the registry entries in definition order.
func (r *Registry) Entries() []Entry {
	return slices.Clone(r.entries)
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Lookup returns the triple registered under a friendly name.
func (r *Registry) Lookup(name string) (string, bool) {
	i, ok := r.byName[normalize(name)]
	if !ok {
		return "", false
	}
	return r.entries[i].Triple, true
}

// HasTriple reports whether triple is a registered value.
func (r *Registry) HasTriple(triple string) bool {
	_, ok := r.byTriple[normalize(triple)]
	return ok
}

// NameOf returns the friendly name of triple, or triple itself if it is
// not registered.
func (r *Registry) NameOf(triple string) string {
	if i, ok := r.byTriple[normalize(triple)]; ok {
		return r.entries[i].Name
	}
	return triple
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
