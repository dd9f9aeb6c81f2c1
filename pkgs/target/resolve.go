// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package target

import (
	"fmt"
	"strings"

	qerrors "github.com/qiniu/x/errors"
)

// Special spec keywords.
const (
	SpecNative = "native"
	SpecAll    = "all"
)

// UnrecognizedSpecError reports a target spec that matched no rule.
type UnrecognizedSpecError struct {
	Spec string
}

func (e *UnrecognizedSpecError) Error() string {
	return fmt.Sprintf("unrecognized target %q", e.Spec)
}

// UnrecognizedError folds unrecognized specs into a single error, or nil
// when there are none.
func UnrecognizedError(specs []string) error {
	var errs qerrors.List
	for _, s := range specs {
		errs.Add(&UnrecognizedSpecError{Spec: s})
	}
	return errs.ToError()
}

// Resolver expands target specs against a registry for one host.
// A Resolver holds no mutable state and is safe for concurrent use.
type Resolver struct {
	reg     *Registry
	aliases Aliases
	host    Host
}

// NewResolver returns a Resolver. A nil reg means DefaultRegistry and a
// nil aliases means DefaultAliases.
func NewResolver(reg *Registry, aliases Aliases, host Host) *Resolver {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if aliases == nil {
		aliases = DefaultAliases()
	}
	host.Arch = aliases.Canonical(string(host.Arch))
	return &Resolver{reg: reg, aliases: aliases, host: host}
}

// Host returns the host the resolver computes derived fields for.
func (r *Resolver) Host() Host {
	return r.host
}

// Registry returns the registry the resolver reads from.
func (r *Resolver) Registry() *Registry {
	return r.reg
}

// Describe returns the descriptor of triple for the resolver's host.
func (r *Resolver) Describe(triple string) Descriptor {
	return NewDescriptor(triple, r.reg, r.host)
}

// Resolve expands specs into descriptors in first-occurrence order with
// duplicate triples suppressed. Specs that match no rule are returned in
// unrecognized; they do not stop the remaining specs from resolving.
func (r *Resolver) Resolve(specs []string) (targets []Descriptor, unrecognized []string) {
	seen := make(map[string]bool)
	add := func(triple string) {
		if seen[triple] {
			return
		}
		seen[triple] = true
		targets = append(targets, r.Describe(triple))
	}
	for _, raw := range specs {
		spec := normalize(raw)
		switch spec {
		case SpecNative:
			if d, ok := r.FindNative(); ok {
				add(d.Triple)
			}
			continue
		case SpecAll:
			for _, e := range r.reg.entries {
				add(e.Triple)
			}
			continue
		case string(MacOS), string(Linux):
			for _, e := range r.reg.entries {
				if strings.Contains(e.Name, spec) {
					add(e.Triple)
				}
			}
			continue
		}
		if triple, ok := r.reg.Lookup(spec); ok {
			add(triple)
		} else if r.reg.HasTriple(spec) {
			add(spec)
		} else {
			unrecognized = append(unrecognized, strings.TrimSpace(raw))
		}
	}
	return
}

// FindNative returns the registry descriptor matching the host.
//
// The lookup tries the key "<platform>-<arch>", then the same key with
// each alias of arch, then the first registry name containing both the
// platform and an arch alias.
func (r *Resolver) FindNative() (Descriptor, bool) {
	platform := string(r.host.Platform)
	arch := string(r.host.Arch)
	if triple, ok := r.reg.Lookup(platform + "-" + arch); ok {
		return r.Describe(triple), true
	}
	names := r.aliases.Of(arch)
	for _, a := range names {
		if triple, ok := r.reg.Lookup(platform + "-" + a); ok {
			return r.Describe(triple), true
		}
	}
	for _, e := range r.reg.entries {
		if !strings.Contains(e.Name, platform) {
			continue
		}
		for _, a := range names {
			if strings.Contains(e.Name, a) {
				return r.Describe(e.Triple), true
			}
		}
	}
	return Descriptor{}, false
}

// ResolveTargets resolves specs against reg for the given host using
// DefaultAliases.
func ResolveTargets(specs []string, reg *Registry, platform, arch string) ([]Descriptor, []string) {
	aliases := DefaultAliases()
	return NewResolver(reg, aliases, NewHost(platform, arch, aliases)).Resolve(specs)
}

// FindNativeTarget returns the descriptor in reg matching the host.
func FindNativeTarget(reg *Registry, platform, arch string) (Descriptor, bool) {
	aliases := DefaultAliases()
	return NewResolver(reg, aliases, NewHost(platform, arch, aliases)).FindNative()
}
