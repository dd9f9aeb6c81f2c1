package safepath

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWithin(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		boundary string
		path     string
		want     bool
	}{
		{sep + "tools", sep + "tools", true},
		{sep + "tools", sep + filepath.Join("tools", "x"), true},
		{sep + "tools", sep + filepath.Join("tools", "a", "b"), true},
		{sep + "tools", sep + filepath.Join("tools2", "x"), false},
		{sep + "tools", sep + "tools2", false},
		{sep + "tools", sep, false},
		{sep + "tools" + sep, sep + filepath.Join("tools", "x"), true},
		{sep, sep + "anything", true},
	}
	for _, tt := range tests {
		if got := Within(tt.boundary, tt.path); got != tt.want {
			t.Errorf("Within(%q, %q) = %v, want %v", tt.boundary, tt.path, got, tt.want)
		}
	}
}

func TestIsEntrySafe(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		want bool
	}{
		{"file.txt", true},
		{"a/b/c.txt", true},
		{"./a/b", true},
		{".", true},
		{"./", true},
		{"dir/", true},
		{"a/./b", true},
		{"..", false},
		{"../x", false},
		{"a/../b", false},
		{"a/b/..", false},
		{"a/../../etc/passwd", false},
		{"/etc/passwd", false},
		{"/", false},
		{"", false},
		{"a\x00b", false},
		{"..foo", true},
		{"foo..", true},
	}
	for _, tt := range tests {
		if got := IsEntrySafe(tt.name, dir); got != tt.want {
			t.Errorf("IsEntrySafe(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsEntrySafeAnyBoundary(t *testing.T) {
	boundaries := []string{t.TempDir(), "/", "/tmp", "relative/dir"}
	names := []string{"../x", "a/../../b", "/abs", "/"}
	for _, b := range boundaries {
		for _, n := range names {
			if IsEntrySafe(n, b) {
				t.Errorf("IsEntrySafe(%q, %q) = true, want false", n, b)
			}
		}
	}
}

func TestIsEntrySafeThroughSymlink(t *testing.T) {
	base := t.TempDir()
	boundary := filepath.Join(base, "dest")
	outside := filepath.Join(base, "outside")
	mustMkdir(t, boundary)
	mustMkdir(t, outside)

	if err := os.Symlink(outside, filepath.Join(boundary, "escape")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("inner", filepath.Join(boundary, "ok")); err != nil {
		t.Fatal(err)
	}
	mustMkdir(t, filepath.Join(boundary, "inner"))
	if err := os.Symlink(filepath.Join(base, "missing"), filepath.Join(boundary, "dangling")); err != nil {
		t.Fatal(err)
	}

	if IsEntrySafe("escape/file", boundary) {
		t.Error("entry written through an escaping symlink should be unsafe")
	}
	if !IsEntrySafe("ok/file", boundary) {
		t.Error("entry written through a contained symlink should be safe")
	}
	if IsEntrySafe("dangling/file", boundary) {
		t.Error("entry written through a dangling symlink should be unsafe")
	}
}

func TestCheckEntryError(t *testing.T) {
	err := CheckEntry("../x", t.TempDir())
	if !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("CheckEntry error = %v, want ErrUnsafePath", err)
	}
	var ue *UnsafePathError
	if !errors.As(err, &ue) || ue.Op != "extract" || ue.Path != "../x" {
		t.Errorf("CheckEntry error = %#v", err)
	}
}

func TestIsLinkTargetSafe(t *testing.T) {
	base := t.TempDir()
	boundary := filepath.Join(base, "dest")
	sub := filepath.Join(boundary, "sub")
	mustMkdir(t, sub)

	tests := []struct {
		target  string
		linkDir string
		want    bool
	}{
		{"file", sub, true},
		{"../file", sub, true},
		{"../../file", sub, false},
		{"../../dest/file", sub, true},
		{"../../dest2/file", sub, false},
		{"..", boundary, false},
		{".", boundary, true},
		{filepath.Join(boundary, "x"), sub, true},
		{"/etc/passwd", sub, false},
		{"", sub, false},
		{"file", base, false},
	}
	for _, tt := range tests {
		if got := IsLinkTargetSafe(tt.target, tt.linkDir, boundary); got != tt.want {
			t.Errorf("IsLinkTargetSafe(%q, %q) = %v, want %v", tt.target, tt.linkDir, got, tt.want)
		}
	}
}

func TestIsPathSafeForDeletion(t *testing.T) {
	base := t.TempDir()
	tools := filepath.Join(base, "tools")
	tools2 := filepath.Join(base, "tools2")
	mustMkdir(t, filepath.Join(tools, "x"))
	mustMkdir(t, filepath.Join(tools2, "x"))

	if !IsPathSafeForDeletion(filepath.Join(tools, "x"), tools) {
		t.Error("tools/x should be safe to delete")
	}
	if !IsPathSafeForDeletion(tools, tools) {
		t.Error("the boundary itself should be safe to delete")
	}
	if IsPathSafeForDeletion(filepath.Join(tools2, "x"), tools) {
		t.Error("tools2/x must not be considered inside tools")
	}
	if IsPathSafeForDeletion(base, tools) {
		t.Error("parent of boundary must be unsafe")
	}
}

func TestIsPathSafeForDeletionSymlink(t *testing.T) {
	base := t.TempDir()
	tools := filepath.Join(base, "tools")
	outside := filepath.Join(base, "precious")
	mustMkdir(t, tools)
	mustMkdir(t, outside)
	mustMkdir(t, filepath.Join(tools, "real"))

	escape := filepath.Join(tools, "zig")
	if err := os.Symlink(outside, escape); err != nil {
		t.Fatal(err)
	}
	if IsPathSafeForDeletion(escape, tools) {
		t.Error("symlink inside boundary pointing outside must be unsafe")
	}

	relEscape := filepath.Join(tools, "rel")
	if err := os.Symlink("../precious", relEscape); err != nil {
		t.Fatal(err)
	}
	if IsPathSafeForDeletion(relEscape, tools) {
		t.Error("relative symlink escaping boundary must be unsafe")
	}

	inside := filepath.Join(tools, "alias")
	if err := os.Symlink("real", inside); err != nil {
		t.Fatal(err)
	}
	if !IsPathSafeForDeletion(inside, tools) {
		t.Error("symlink to a sibling inside boundary should be safe")
	}

	dangling := filepath.Join(tools, "dangling")
	if err := os.Symlink(filepath.Join(base, "gone"), dangling); err != nil {
		t.Fatal(err)
	}
	if IsPathSafeForDeletion(dangling, tools) {
		t.Error("dangling symlink must be unsafe")
	}
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
}
