// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tools

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goplus/xbuild/pkgs/target"
)

// State is the install state of one tool.
type State int

const (
	Missing State = iota
	Installed
	NotNeeded
)

func (s State) String() string {
	switch s {
	case Installed:
		return "installed"
	case NotNeeded:
		return "not needed"
	}
	return "not installed"
}

// Status describes one tool.
type Status struct {
	Tool    string `json:"tool"`
	State   State  `json:"-"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// Status reports Rust, Zig, cargo-zigbuild and the macOS SDK in that
// order.
func (i *Installer) Status() []Status {
	m, err := loadManifest(i.dir)
	if err != nil {
		i.log.Debug("read manifest: %v", err)
		m = &manifest{}
	}
	version := func(tool string) string {
		if e, ok := m.get(tool); ok {
			return e.Version
		}
		return ""
	}

	rows := make([]Status, 0, 4)

	rust := Status{Tool: "Rust"}
	if cargo, ok := i.CargoPath(); ok {
		if _, ok := i.RustupPath(); ok {
			rust.State, rust.Path = Installed, cargo
		}
	}
	rows = append(rows, rust)

	zig := Status{Tool: "Zig"}
	if p, ok := i.ZigPath(); ok {
		zig.State, zig.Path, zig.Version = Installed, p, version(ToolZig)
	}
	rows = append(rows, zig)

	zigbuild := Status{Tool: "cargo-zigbuild"}
	if p, ok := i.findBinary("cargo-zigbuild"); ok {
		zigbuild.State, zigbuild.Path = Installed, p
	}
	rows = append(rows, zigbuild)

	sdk := Status{Tool: "macOS SDK"}
	switch {
	case isDir(i.SDKDir()):
		sdk.State, sdk.Path, sdk.Version = Installed, i.SDKDir(), version(ToolMacOSSDK)
	case i.host.Platform != target.Linux:
		sdk.State = NotNeeded
	}
	rows = append(rows, sdk)
	return rows
}

// CargoPath finds cargo, preferring the local install.
func (i *Installer) CargoPath() (string, bool) {
	return i.findBinary("cargo")
}

// RustupPath finds rustup, preferring the local install.
func (i *Installer) RustupPath() (string, bool) {
	return i.findBinary("rustup")
}

// ZigPath returns the installed zig executable.
func (i *Installer) ZigPath() (string, bool) {
	p := filepath.Join(i.ZigDir(), "zig")
	return p, isFile(p)
}

func (i *Installer) findBinary(name string) (string, bool) {
	local := filepath.Join(i.CargoHome(), "bin", name)
	if isFile(local) {
		return local, true
	}
	if p, err := i.lookPath(name); err == nil {
		return p, true
	}
	return "", false
}

// Env returns base extended with the build environment: CARGO_HOME and
// RUSTUP_HOME point into the tools dir, PATH is prefixed with the local
// cargo bin and zig dirs, and SDKROOT is set when the SDK is installed.
func (i *Installer) Env(base []string) []string {
	env := append([]string(nil), base...)
	env = setenv(env, "CARGO_HOME", i.CargoHome())
	env = setenv(env, "RUSTUP_HOME", i.RustupHome())

	var path []string
	if bin := filepath.Join(i.CargoHome(), "bin"); isDir(bin) {
		path = append(path, bin)
	}
	if _, ok := i.ZigPath(); ok {
		path = append(path, i.ZigDir())
	}
	if orig, ok := getenv(env, "PATH"); ok && orig != "" {
		path = append(path, orig)
	}
	env = setenv(env, "PATH", strings.Join(path, string(os.PathListSeparator)))

	if isDir(i.SDKDir()) {
		env = setenv(env, "SDKROOT", i.SDKDir())
	}
	return env
}

func getenv(env []string, key string) (string, bool) {
	for j := len(env) - 1; j >= 0; j-- {
		if k, v, ok := strings.Cut(env[j], "="); ok && k == key {
			return v, true
		}
	}
	return "", false
}

// setenv replaces every key entry in env with a single key=value.
func setenv(env []string, key, value string) []string {
	out := env[:0]
	for _, kv := range env {
		if k, _, ok := strings.Cut(kv, "="); ok && k == key {
			continue
		}
		out = append(out, kv)
	}
	return append(out, key+"="+value)
}
