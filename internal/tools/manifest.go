// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tools

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Tools directory layout:
//
//	toolsDir/
//	  .manifest.json      # install records: tool name → installEntry
//	  cargo/              # CARGO_HOME
//	  rustup/             # RUSTUP_HOME
//	  zig-<version>/
//	  MacOSX<version>.sdk/
const manifestFile = ".manifest.json"

// installEntry records a successful install from a local archive.
type installEntry struct {
	Version     string    `json:"version"`
	Archive     string    `json:"archive"`
	Dir         string    `json:"dir"`
	InstallTime time.Time `json:"install_time"`
}

// manifest maps tool names to their install entries.
type manifest struct {
	Tools map[string]*installEntry `json:"tools"`
}

func (m *manifest) get(tool string) (*installEntry, bool) {
	entry, ok := m.Tools[tool]
	return entry, ok
}

func (m *manifest) set(tool string, entry *installEntry) {
	if m.Tools == nil {
		m.Tools = make(map[string]*installEntry)
	}
	m.Tools[tool] = entry
}

func (m *manifest) remove(tool string) {
	delete(m.Tools, tool)
}

// loadManifest reads the manifest from dir. A missing file is an empty
// manifest.
func loadManifest(dir string) (*manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &manifest{}, nil
		}
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// saveManifest writes the manifest to dir.
func saveManifest(dir string, m *manifest) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, manifestFile), data, 0o644)
}
