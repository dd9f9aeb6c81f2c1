package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goplus/xbuild/internal/safepath"
	"github.com/goplus/xbuild/internal/tools"
	"github.com/goplus/xbuild/pkgs/target"
)

// run executes the root command with args against a fresh tools dir and
// returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runIn(t, filepath.Join(t.TempDir(), "tools"), args...)
}

func runIn(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XBUILD_HOST_OS", "linux")
	t.Setenv("XBUILD_HOST_ARCH", "amd64")
	configPath = filepath.Join(t.TempDir(), "xbuild.yaml")
	toolsDir = dir
	verbose, noColor, targetsJSON = false, true, false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append(args, "--config", configPath, "--tools-dir", toolsDir, "--no-color"))
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestTargetsCommand(t *testing.T) {
	out, err := run(t, "targets", "linux", "bogus")
	if err != nil {
		t.Fatalf("targets failed: %v", err)
	}
	for _, want := range []string{
		"→ Host: linux-x86_64",
		"  → linux-aarch64 (aarch64-unknown-linux-gnu) (cross-linker)",
		"  → linux-x86_64 (x86_64-unknown-linux-gnu) (native)",
		"! Unrecognized target: bogus",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTargetsJSON(t *testing.T) {
	out, err := run(t, "targets", "--json", "macos-aarch64")
	if err != nil {
		t.Fatalf("targets --json failed: %v", err)
	}
	var got []target.Descriptor
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(got) != 1 || got[0].Triple != "aarch64-apple-darwin" || !got[0].NeedsCrossLinker {
		t.Errorf("got %+v", got)
	}
}

func TestTargetsAllUnrecognized(t *testing.T) {
	_, err := run(t, "targets", "bogus")
	var ue *target.UnrecognizedSpecError
	if !errors.As(err, &ue) {
		t.Errorf("error = %v, want *UnrecognizedSpecError", err)
	}
}

func TestNativeCommand(t *testing.T) {
	out, err := run(t, "native")
	if err != nil {
		t.Fatalf("native failed: %v", err)
	}
	if !strings.Contains(out, "linux-x86_64") {
		t.Errorf("output = %q", out)
	}
}

func TestCleanCommand(t *testing.T) {
	if _, err := run(t, "clean", "gcc"); !errors.Is(err, tools.ErrUnknownTool) {
		t.Errorf("clean gcc error = %v", err)
	}
	out, err := run(t, "clean", "zig")
	if err != nil || !strings.Contains(out, "Removed zig") {
		t.Errorf("clean zig = %q, %v", out, err)
	}
}

func TestStatusCommand(t *testing.T) {
	out, err := run(t, "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	for _, want := range []string{"Tool Status", "! Zig: not installed", "! macOS SDK: not installed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEnvCommand(t *testing.T) {
	out, err := run(t, "env")
	if err != nil {
		t.Fatalf("env failed: %v", err)
	}
	if !strings.Contains(out, "CARGO_HOME="+filepath.Join(toolsDir, "cargo")) {
		t.Errorf("output = %q", out)
	}
}

func TestExtractCommand(t *testing.T) {
	if _, err := run(t, "extract", filepath.Join(t.TempDir(), "x.rar"), t.TempDir()); err == nil {
		t.Error("extract of unsupported archive succeeded")
	}
}

func TestCleanRefusesEscapingSymlink(t *testing.T) {
	outside := t.TempDir()
	keep := filepath.Join(outside, "keep")
	if err := os.WriteFile(keep, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "tools")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(outside, filepath.Join(dir, "zig-0.13.0")); err != nil {
		t.Fatal(err)
	}
	_, err := runIn(t, dir, "clean", "zig")
	if !errors.Is(err, safepath.ErrRefusedUnsafePath) {
		t.Fatalf("clean error = %v, want ErrRefusedUnsafePath", err)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("file behind the symlink was removed: %v", err)
	}
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		st   tools.Status
		want string
	}{
		{tools.Status{Tool: "Zig", State: tools.Installed, Path: "/t/zig", Version: "0.13.0"}, "Zig: /t/zig (0.13.0)"},
		{tools.Status{Tool: "Rust", State: tools.Installed, Path: "/t/cargo"}, "Rust: /t/cargo"},
		{tools.Status{Tool: "Zig"}, "Zig: not installed"},
		{tools.Status{Tool: "macOS SDK", State: tools.NotNeeded}, "macOS SDK: not needed"},
	}
	for _, tt := range tests {
		if got := formatStatus(tt.st); got != tt.want {
			t.Errorf("formatStatus(%+v) = %q, want %q", tt.st, got, tt.want)
		}
	}
}

func TestDescribeFlags(t *testing.T) {
	d := target.Descriptor{Native: true, NeedsCrossLinker: true, Unmodeled: true}
	if got := describeFlags(d); got != "native, cross-linker, unmodeled" {
		t.Errorf("describeFlags = %q", got)
	}
	if got := describeFlags(target.Descriptor{}); got != "" {
		t.Errorf("describeFlags(zero) = %q", got)
	}
}
