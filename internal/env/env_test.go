package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestToolsDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	toolsDir, err := ToolsDir()
	if err != nil {
		t.Fatalf("ToolsDir() returned error: %v", err)
	}

	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		t.Fatalf("os.UserCacheDir() returned error: %v", err)
	}
	expectedDir := filepath.Join(userCacheDir, ".xbuild", "tools")
	if toolsDir != expectedDir {
		t.Errorf("ToolsDir() = %q, want %q", toolsDir, expectedDir)
	}

	info, err := os.Stat(toolsDir)
	if err != nil {
		t.Fatalf("Directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("ToolsDir() created a file instead of a directory")
	}
	if mode := info.Mode().Perm(); mode != 0700 {
		t.Errorf("Directory has permissions %v, want %v", mode, os.FileMode(0700))
	}
}

// TestToolsDirIdempotent verifies repeated calls return the same directory.
func TestToolsDirIdempotent(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir1, err := ToolsDir()
	if err != nil {
		t.Fatalf("First ToolsDir() call failed: %v", err)
	}
	dir2, err := ToolsDir()
	if err != nil {
		t.Fatalf("Second ToolsDir() call failed: %v", err)
	}
	if dir1 != dir2 {
		t.Errorf("ToolsDir() not idempotent: first call = %q, second call = %q", dir1, dir2)
	}
}

func TestWorkDir(t *testing.T) {
	workDir, err := WorkDir()
	if err != nil {
		t.Fatalf("WorkDir() returned error: %v", err)
	}
	if filepath.Base(workDir) != ".xbuild" {
		t.Errorf("WorkDir() = %q, want a .xbuild directory", workDir)
	}
}
