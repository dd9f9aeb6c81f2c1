// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package target turns loosely specified build targets into canonical
// descriptors.
package target

import (
	"strings"
)

// Platform is the operating system family of a target or host.
type Platform string

const (
	MacOS           Platform = "macos"
	Linux           Platform = "linux"
	UnknownPlatform Platform = "unknown"
)

// Arch is a canonical CPU architecture.
type Arch string

const (
	Aarch64     Arch = "aarch64"
	X86_64      Arch = "x86_64"
	UnknownArch Arch = "unknown"
)

// Host is the machine performing the build.
type Host struct {
	Platform Platform
	Arch     Arch
}

// NewHost returns a Host with arch canonicalized through aliases, so
// "arm64" and "aarch64" describe the same host.
func NewHost(platform, arch string, aliases Aliases) Host {
	return Host{
		Platform: Platform(normalize(platform)),
		Arch:     aliases.Canonical(arch),
	}
}

func (h Host) String() string {
	return string(h.Platform) + "-" + string(h.Arch)
}

// Descriptor is the canonical description of one build target.
// Two descriptors denote the same target iff their Triple is equal.
type Descriptor struct {
	Triple   string   `json:"triple"`
	Name     string   `json:"name"`
	Platform Platform `json:"platform"`
	Arch     Arch     `json:"arch"`

	// NeedsCrossLinker is set when the host cannot link binaries for
	// this target with its native toolchain.
	NeedsCrossLinker bool `json:"needs_cross_linker"`

	// Native is set when platform and arch both match the host.
	Native bool `json:"native"`

	// Unmodeled is set when the host/target pair lies outside the
	// linker matrix above, so NeedsCrossLinker is not trustworthy.
	Unmodeled bool `json:"unmodeled,omitempty"`
}

// NewDescriptor derives a Descriptor from triple. The friendly name is
// taken from reg when registered.
func NewDescriptor(triple string, reg *Registry, host Host) Descriptor {
	triple = normalize(triple)
	d := Descriptor{
		Triple:   triple,
		Name:     triple,
		Platform: PlatformOf(triple),
		Arch:     ArchOf(triple),
	}
	if reg != nil {
		d.Name = reg.NameOf(triple)
	}
	d.Native = d.Platform == host.Platform && d.Arch == host.Arch
	d.NeedsCrossLinker = needsCrossLinker(d.Platform, d.Arch, host)
	d.Unmodeled = unmodeled(d.Platform, d.Arch, host)
	return d
}

func (d Descriptor) String() string {
	return d.Name + " (" + d.Triple + ")"
}

// PlatformOf extracts the platform from a triple identifier.
func PlatformOf(triple string) Platform {
	switch {
	case strings.Contains(triple, "apple-darwin"):
		return MacOS
	case strings.Contains(triple, "linux"):
		return Linux
	}
	return UnknownPlatform
}

// ArchOf extracts the architecture from a triple identifier.
func ArchOf(triple string) Arch {
	switch {
	case strings.Contains(triple, "aarch64"), strings.Contains(triple, "arm64"):
		return Aarch64
	case strings.Contains(triple, "x86_64"), strings.Contains(triple, "amd64"):
		return X86_64
	}
	return UnknownArch
}

// needsCrossLinker is true for macOS targets on a Linux host and for
// Linux targets of a foreign arch on a Linux host. Everything else is
// assumed to link with the host toolchain.
func needsCrossLinker(p Platform, a Arch, host Host) bool {
	if host.Platform != Linux {
		return false
	}
	return p == MacOS || (p == Linux && a != host.Arch)
}

// unmodeled reports pairs the matrix does not cover: unknown platforms or
// archs on either side, and any non-macOS target from a macOS host.
func unmodeled(p Platform, a Arch, host Host) bool {
	if p == UnknownPlatform || a == UnknownArch {
		return true
	}
	switch host.Platform {
	case Linux:
		return host.Arch != Aarch64 && host.Arch != X86_64
	case MacOS:
		return p != MacOS
	}
	return true
}
