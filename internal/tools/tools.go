// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tools installs cross-compilation tooling into a tools
// directory from archives that are already on local disk.
package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	qerrors "github.com/qiniu/x/errors"

	"github.com/goplus/xbuild/internal/archive"
	"github.com/goplus/xbuild/internal/config"
	"github.com/goplus/xbuild/internal/console"
	"github.com/goplus/xbuild/internal/safepath"
	"github.com/goplus/xbuild/pkgs/target"
)

// Tool names accepted by Clean and recorded in the manifest.
const (
	ToolRust     = "rust"
	ToolZig      = "zig"
	ToolMacOSSDK = "sdk"
)

var (
	// ErrUnknownTool is returned by Clean for an unrecognized tool name.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrIncompleteInstall is returned when an archive extracted cleanly
	// but did not contain the expected tool.
	ErrIncompleteInstall = errors.New("incomplete install")
)

// Installer manages the contents of one tools directory.
type Installer struct {
	dir        string
	zigVersion string
	sdkVersion string
	host       target.Host
	log        *console.Logger
	lookPath   func(file string) (string, error)
	now        func() time.Time
}

// Option configures an Installer.
type Option func(*Installer)

// WithLogger sets the logger progress is reported to.
func WithLogger(l *console.Logger) Option {
	return func(i *Installer) {
		i.log = l
	}
}

// WithLookPath replaces the PATH lookup used to find system tools.
func WithLookPath(fn func(file string) (string, error)) Option {
	return func(i *Installer) {
		i.lookPath = fn
	}
}

// New returns an Installer for dir. Tool versions come from cfg.
func New(dir string, cfg *config.Config, host target.Host, opts ...Option) (*Installer, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	i := &Installer{
		dir:        abs,
		zigVersion: cfg.ZigVersion,
		sdkVersion: cfg.MacOSSDKVersion,
		host:       host,
		log:        console.Discard(),
		lookPath:   exec.LookPath,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Dir returns the tools directory.
func (i *Installer) Dir() string { return i.dir }

// CargoHome returns the local CARGO_HOME.
func (i *Installer) CargoHome() string { return filepath.Join(i.dir, "cargo") }

// RustupHome returns the local RUSTUP_HOME.
func (i *Installer) RustupHome() string { return filepath.Join(i.dir, "rustup") }

// ZigDir returns the directory zig is installed to.
func (i *Installer) ZigDir() string {
	return filepath.Join(i.dir, "zig-"+i.zigVersion)
}

// SDKDir returns the directory the macOS SDK is installed to.
func (i *Installer) SDKDir() string {
	return filepath.Join(i.dir, "MacOSX"+i.sdkVersion+".sdk")
}

// ZigArchiveName returns the zig release archive name for the host.
func (i *Installer) ZigArchiveName() string {
	return zigBaseName(i.host, i.zigVersion) + ".tar.xz"
}

// SDKArchiveName returns the macOS SDK archive name.
func (i *Installer) SDKArchiveName() string {
	return "MacOSX" + i.sdkVersion + ".sdk.tar.xz"
}

func zigBaseName(host target.Host, version string) string {
	return fmt.Sprintf("zig-%s-%s-%s", host.Platform, host.Arch, version)
}

func (i *Installer) ensureDir() error {
	return os.MkdirAll(i.dir, 0o755)
}

// InstallZig installs zig from a downloaded release archive. An already
// installed zig is left in place.
func (i *Installer) InstallZig(ctx context.Context, archivePath string) error {
	zigExe := filepath.Join(i.ZigDir(), "zig")
	if isFile(zigExe) {
		i.log.Success("Zig is already installed at %s", zigExe)
		return nil
	}
	if err := i.ensureDir(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	i.log.Info("Extracting %s", filepath.Base(archivePath))
	if err := archive.Extract(archivePath, i.dir); err != nil {
		return fmt.Errorf("install zig: %w", err)
	}

	extracted := filepath.Join(i.dir, zigBaseName(i.host, i.zigVersion))
	if extracted != i.ZigDir() && isDir(extracted) {
		if err := safepath.DeleteIfSafe(i.ZigDir(), i.dir); err != nil {
			return fmt.Errorf("install zig: %w", err)
		}
		if err := os.Rename(extracted, i.ZigDir()); err != nil {
			return fmt.Errorf("install zig: %w", err)
		}
	}

	if !isFile(zigExe) {
		return fmt.Errorf("install zig: %w: %s not found", ErrIncompleteInstall, zigExe)
	}
	if err := os.Chmod(zigExe, 0o755); err != nil {
		return err
	}
	if err := i.record(ToolZig, i.zigVersion, archivePath, i.ZigDir()); err != nil {
		return err
	}
	i.log.Success("Zig installed at %s", i.ZigDir())
	return nil
}

// InstallMacOSSDK installs the macOS SDK from a downloaded archive. The
// SDK is only needed on Linux hosts; elsewhere this is a no-op.
func (i *Installer) InstallMacOSSDK(ctx context.Context, archivePath string) error {
	if i.host.Platform != target.Linux {
		i.log.Info("macOS SDK not needed on this platform")
		return nil
	}
	if isDir(i.SDKDir()) {
		i.log.Success("macOS SDK is already installed at %s", i.SDKDir())
		return nil
	}
	if err := i.ensureDir(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	i.log.Info("Extracting %s", filepath.Base(archivePath))
	if err := archive.Extract(archivePath, i.dir); err != nil {
		return fmt.Errorf("install macOS SDK: %w", err)
	}
	if !isDir(i.SDKDir()) {
		return fmt.Errorf("install macOS SDK: %w: %s not found", ErrIncompleteInstall, i.SDKDir())
	}
	if err := i.record(ToolMacOSSDK, i.sdkVersion, archivePath, i.SDKDir()); err != nil {
		return err
	}
	i.log.Success("macOS SDK installed at %s", i.SDKDir())
	return nil
}

// SetupArchives names the local archives Setup installs from. Empty
// fields skip that tool.
type SetupArchives struct {
	Zig      string
	MacOSSDK string
}

// Setup installs every tool with an archive, continuing past failures,
// and returns the combined error.
func (i *Installer) Setup(ctx context.Context, a SetupArchives) error {
	type step struct {
		name, archive string
		install       func(context.Context, string) error
	}
	var steps []step
	if a.Zig != "" {
		steps = append(steps, step{"zig", a.Zig, i.InstallZig})
	}
	if a.MacOSSDK != "" {
		steps = append(steps, step{"macOS SDK", a.MacOSSDK, i.InstallMacOSSDK})
	}

	var errs qerrors.List
	for n, s := range steps {
		i.log.Step(n+1, len(steps), "Installing %s", s.name)
		if err := s.install(ctx, s.archive); err != nil {
			i.log.Error("%v", err)
			errs.Add(err)
		}
	}
	return errs.ToError()
}

// Clean removes an installed tool. Deletion is refused for any path that
// resolves outside the tools directory.
func (i *Installer) Clean(tool string) error {
	var dirs []string
	switch tool {
	case ToolRust:
		dirs = []string{i.CargoHome(), i.RustupHome()}
	case ToolZig:
		dirs = []string{i.ZigDir()}
	case ToolMacOSSDK:
		dirs = []string{i.SDKDir()}
	default:
		return fmt.Errorf("%w %q", ErrUnknownTool, tool)
	}
	for _, dir := range dirs {
		i.log.Debug("Removing %s", dir)
		if err := safepath.DeleteIfSafe(dir, i.dir); err != nil {
			return err
		}
	}
	m, err := loadManifest(i.dir)
	if err != nil {
		return err
	}
	if _, ok := m.get(tool); !ok {
		return nil
	}
	m.remove(tool)
	return saveManifest(i.dir, m)
}

func (i *Installer) record(tool, version, archivePath, dir string) error {
	m, err := loadManifest(i.dir)
	if err != nil {
		return err
	}
	m.set(tool, &installEntry{
		Version:     version,
		Archive:     filepath.Base(archivePath),
		Dir:         dir,
		InstallTime: i.now(),
	})
	return saveManifest(i.dir, m)
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
