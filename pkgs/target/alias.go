// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package target

import "slices"

// Aliases maps an architecture spelling to every spelling considered
// equivalent for native matching. The first element of each list is the
// canonical name.
type Aliases map[string][]string

// DefaultAliases treats aarch64/arm64 and x86_64/amd64 as equal.
func DefaultAliases() Aliases {
	return Aliases{
		"aarch64": {"aarch64", "arm64"},
		"arm64":   {"aarch64", "arm64"},
		"x86_64":  {"x86_64", "amd64"},
		"amd64":   {"x86_64", "amd64"},
	}
}

// Of returns the spellings equivalent to arch, arch itself included.
func (a Aliases) Of(arch string) []string {
	arch = normalize(arch)
	if list, ok := a[arch]; ok && len(list) > 0 {
		if !slices.Contains(list, arch) {
			return append([]string{arch}, list...)
		}
		return slices.Clone(list)
	}
	return []string{arch}
}

// Canonical returns the canonical spelling of arch.
func (a Aliases) Canonical(arch string) Arch {
	arch = normalize(arch)
	if arch == "" {
		return UnknownArch
	}
	if list, ok := a[arch]; ok && len(list) > 0 {
		return Arch(list[0])
	}
	return Arch(arch)
}
