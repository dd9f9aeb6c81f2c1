package env

import (
	"os"
	"path/filepath"
)

// WorkDir returns the xbuild state directory under the user cache dir.
func WorkDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userCacheDir, ".xbuild"), nil
}

// ToolsDir returns the default tools directory, creating it if needed.
func ToolsDir() (string, error) {
	workDir, err := WorkDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(workDir, "tools")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
