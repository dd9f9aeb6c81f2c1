// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package safepath decides whether a path is confined to a boundary
// directory before anything destructive touches disk.
//
// Every check resolves the candidate against the filesystem (following
// existing symlinks) and compares path components against the resolved
// boundary. Any error encountered while resolving makes the path unsafe.
package safepath

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is matched by every *UnsafePathError.
var ErrUnsafePath = errors.New("unsafe path")

// UnsafePathError reports a path that resolves outside its boundary.
type UnsafePathError struct {
	Op       string // "extract", "link" or "delete"
	Path     string
	Boundary string
	Reason   string
}

func (e *UnsafePathError) Error() string {
	return fmt.Sprintf("%s %s: %s (boundary %s)", e.Op, e.Path, e.Reason, e.Boundary)
}

func (e *UnsafePathError) Unwrap() error {
	return ErrUnsafePath
}

// Within reports whether path equals boundary or lies beneath it.
// The comparison is lexical on cleaned paths and honors component
// boundaries, so "/tools2/x" is not within "/tools".
func Within(boundary, path string) bool {
	boundary = filepath.Clean(boundary)
	path = filepath.Clean(path)
	if path == boundary {
		return true
	}
	prefix := boundary
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

// IsEntrySafe reports whether the archive entry name, joined to
// boundary, stays inside boundary.
func IsEntrySafe(name, boundary string) bool {
	return CheckEntry(name, boundary) == nil
}

// CheckEntry is like IsEntrySafe but returns the reason for rejection.
func CheckEntry(name, boundary string) error {
	unsafe := func(reason string) error {
		return &UnsafePathError{Op: "extract", Path: name, Boundary: boundary, Reason: reason}
	}
	if name == "" {
		return unsafe("empty name")
	}
	if strings.ContainsRune(name, 0) {
		return unsafe("name contains NUL byte")
	}
	if isAbs(name) {
		return unsafe("absolute path")
	}
	if hasDotDot(name) {
		return unsafe("parent directory reference")
	}
	root, err := resolve(boundary)
	if err != nil {
		return unsafe(err.Error())
	}
	target, err := resolve(filepath.Join(root, filepath.FromSlash(name)))
	if err != nil {
		return unsafe(err.Error())
	}
	if !Within(root, target) {
		return unsafe("resolves to " + target)
	}
	return nil
}

// IsLinkTargetSafe reports whether a link target declared in an archive
// stays inside boundary. Relative targets are resolved against linkDir,
// the directory that contains the link (for hard links, the archive
// root).
func IsLinkTargetSafe(target, linkDir, boundary string) bool {
	return CheckLinkTarget(target, linkDir, boundary) == nil
}

// CheckLinkTarget is like IsLinkTargetSafe but returns the reason for
// rejection.
func CheckLinkTarget(target, linkDir, boundary string) error {
	unsafe := func(reason string) error {
		return &UnsafePathError{Op: "link", Path: target, Boundary: boundary, Reason: reason}
	}
	if target == "" {
		return unsafe("empty link target")
	}
	if strings.ContainsRune(target, 0) {
		return unsafe("link target contains NUL byte")
	}
	root, err := resolve(boundary)
	if err != nil {
		return unsafe(err.Error())
	}
	dir, err := resolve(linkDir)
	if err != nil {
		return unsafe(err.Error())
	}
	if !Within(root, dir) {
		return unsafe("link directory " + dir + " is outside boundary")
	}
	p := filepath.FromSlash(target)
	if !isAbs(target) {
		p = filepath.Join(dir, p)
	}
	resolved, err := resolve(p)
	if err != nil {
		return unsafe(err.Error())
	}
	if !Within(root, resolved) {
		return unsafe("resolves to " + resolved)
	}
	return nil
}

// IsPathSafeForDeletion reports whether path may be removed without
// affecting anything outside boundary. A symlink is safe only when both
// its own location and its target resolve inside boundary.
func IsPathSafeForDeletion(path, boundary string) bool {
	return CheckDeletion(path, boundary) == nil
}

// CheckDeletion is like IsPathSafeForDeletion but returns the reason for
// rejection.
func CheckDeletion(path, boundary string) error {
	unsafe := func(reason string) error {
		return &UnsafePathError{Op: "delete", Path: path, Boundary: boundary, Reason: reason}
	}
	root, err := resolve(boundary)
	if err != nil {
		return unsafe(err.Error())
	}
	resolved, err := resolve(path)
	if err != nil {
		return unsafe(err.Error())
	}
	if !Within(root, resolved) {
		return unsafe("resolves to " + resolved)
	}

	fi, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return unsafe(err.Error())
	}
	if fi.Mode()&fs.ModeSymlink == 0 {
		return nil
	}
	link, err := os.Readlink(path)
	if err != nil {
		return unsafe(err.Error())
	}
	if !filepath.IsAbs(link) {
		link = filepath.Join(filepath.Dir(path), link)
	}
	target, err := resolve(link)
	if err != nil {
		return unsafe(err.Error())
	}
	if !Within(root, target) {
		return unsafe("symlink target resolves to " + target)
	}
	return nil
}

// Resolve returns the absolute form of path with every existing symlink
// evaluated. Components that do not exist yet are kept as given.
func Resolve(path string) (string, error) {
	return resolve(path)
}

// resolve returns the absolute form of path with every existing symlink
// evaluated. Components that do not exist yet are appended verbatim.
// A dangling symlink anywhere on the way is an error: writing through it
// would land at a location that was never checked.
func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	var rest []string
	cur := abs
	for {
		evaluated, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(append([]string{evaluated}, rest...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		if _, lerr := os.Lstat(cur); lerr == nil {
			return "", fmt.Errorf("dangling symlink %s", cur)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", err
		}
		rest = append([]string{filepath.Base(cur)}, rest...)
		cur = parent
	}
}

// isAbs treats slash-rooted names as absolute on every platform; archive
// names always use forward slashes.
func isAbs(name string) bool {
	return strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) || filepath.IsAbs(name) ||
		filepath.VolumeName(name) != ""
}

func hasDotDot(name string) bool {
	for _, seg := range strings.FieldsFunc(name, isSeparator) {
		if seg == ".." {
			return true
		}
	}
	return false
}

func isSeparator(r rune) bool {
	return r == '/' || r == filepath.Separator
}
