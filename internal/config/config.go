// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads xbuild.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/goplus/xbuild/pkgs/target"
)

// FileName is the default config file name.
const FileName = "xbuild.yaml"

// Default tool versions.
const (
	DefaultZigVersion      = "0.13.0"
	DefaultMacOSSDKVersion = "14.5"
)

// Config is the contents of xbuild.yaml.
type Config struct {
	// ToolsDir overrides the tools directory. Empty means env.ToolsDir.
	ToolsDir        string              `yaml:"tools_dir"`
	ZigVersion      string              `yaml:"zig_version"`
	MacOSSDKVersion string              `yaml:"macos_sdk_version"`
	Targets         []target.Entry      `yaml:"targets"`
	ArchAliases     map[string][]string `yaml:"arch_aliases"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ZigVersion:      DefaultZigVersion,
		MacOSSDKVersion: DefaultMacOSSDKVersion,
		Targets:         append([]target.Entry(nil), target.DefaultEntries...),
	}
}

// Load reads the config at path. A missing file yields Default. Fields
// left empty in the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = FileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML data over cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if file.ToolsDir != "" {
		cfg.ToolsDir = file.ToolsDir
	}
	if file.ZigVersion != "" {
		cfg.ZigVersion = file.ZigVersion
	}
	if file.MacOSSDKVersion != "" {
		cfg.MacOSSDKVersion = file.MacOSSDKVersion
	}
	if len(file.Targets) > 0 {
		cfg.Targets = file.Targets
	}
	if len(file.ArchAliases) > 0 {
		cfg.ArchAliases = file.ArchAliases
	}
	return cfg.Validate()
}

// Validate checks target entries, arch aliases and tool versions.
func (c *Config) Validate() error {
	for i, t := range c.Targets {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("targets[%d]: name is required", i)
		}
		if strings.TrimSpace(t.Triple) == "" {
			return fmt.Errorf("targets[%d] %q: triple is required", i, t.Name)
		}
	}
	if _, err := target.NewRegistry(c.Targets...); err != nil {
		return fmt.Errorf("targets: %w", err)
	}
	for k, list := range c.ArchAliases {
		if err := validAliasList(list); err != nil {
			return fmt.Errorf("arch_aliases[%s]: %w", k, err)
		}
	}
	if !validVersion(c.ZigVersion) {
		return fmt.Errorf("zig_version %q: not a semantic version", c.ZigVersion)
	}
	if !validVersion(c.MacOSSDKVersion) {
		return fmt.Errorf("macos_sdk_version %q: not a version", c.MacOSSDKVersion)
	}
	return nil
}

// Registry builds the target registry.
func (c *Config) Registry() (*target.Registry, error) {
	return target.NewRegistry(c.Targets...)
}

// Aliases returns the arch alias table, DefaultAliases unless the file
// overrides it.
func (c *Config) Aliases() target.Aliases {
	if len(c.ArchAliases) == 0 {
		return target.DefaultAliases()
	}
	a := make(target.Aliases, len(c.ArchAliases))
	for k, v := range c.ArchAliases {
		a[strings.ToLower(k)] = v
	}
	return a
}

// validAliasList requires a list naming a modeled arch to start with its
// canonical spelling, since the head is what native matching compares.
func validAliasList(list []string) error {
	if len(list) == 0 {
		return errors.New("empty alias list")
	}
	want := target.UnknownArch
	for _, spelling := range list {
		arch := target.ArchOf(strings.ToLower(spelling))
		if arch == target.UnknownArch {
			continue
		}
		if want != target.UnknownArch && arch != want {
			return fmt.Errorf("mixes %s and %s", want, arch)
		}
		want = arch
	}
	if want != target.UnknownArch && list[0] != string(want) {
		return fmt.Errorf("first spelling %q must be the canonical %q", list[0], want)
	}
	return nil
}

// validVersion accepts "0.13.0" and shorter forms such as "14.5".
func validVersion(v string) bool {
	if v == "" {
		return false
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.IsValid(v)
}

// Host environment overrides.
const (
	EnvHostOS   = "XBUILD_HOST_OS"
	EnvHostArch = "XBUILD_HOST_ARCH"
)

// DetectHost returns the running host in registry vocabulary.
func DetectHost(aliases target.Aliases) target.Host {
	goos, goarch := runtime.GOOS, runtime.GOARCH
	if v := os.Getenv(EnvHostOS); v != "" {
		goos = v
	}
	if v := os.Getenv(EnvHostArch); v != "" {
		goarch = v
	}
	return HostOf(goos, goarch, aliases)
}

// HostOf maps a GOOS/GOARCH style pair to a Host.
func HostOf(goos, goarch string, aliases target.Aliases) target.Host {
	platform := strings.ToLower(goos)
	switch platform {
	case "darwin":
		platform = string(target.MacOS)
	case "linux", string(target.MacOS):
	default:
		platform = string(target.UnknownPlatform)
	}
	if aliases == nil {
		aliases = target.DefaultAliases()
	}
	return target.NewHost(platform, goarch, aliases)
}
