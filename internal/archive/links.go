// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package archive

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/goplus/xbuild/internal/safepath"
)

// maxLinkHops bounds the symlinks followed by a single lookup.
const maxLinkHops = 255

var (
	errLinkEscape = errors.New("escapes the destination through a symlink")
	errLinkLoop   = errors.New("too many levels of symbolic links")
)

// linkTree resolves paths under a destination the way the kernel will
// once the entries recorded so far are on disk. Symlinks recorded from
// the archive shadow whatever exists on disk at the same path; anything
// not recorded is read from disk.
type linkTree struct {
	root  string // resolved destination
	dest  string // destination as given, made absolute
	links map[string]string
	plain map[string]bool
}

func newLinkTree(dest string) *linkTree {
	if abs, err := filepath.Abs(dest); err == nil {
		dest = abs
	}
	root, err := safepath.Resolve(dest)
	if err != nil {
		root = dest
	}
	return &linkTree{
		root:  root,
		dest:  dest,
		links: make(map[string]string),
		plain: make(map[string]bool),
	}
}

// lookup resolves p relative to dir, a resolved directory given as
// components below the destination. A final symlink is followed only
// when followLast is set. The result is the resolved path as components
// below the destination.
func (t *linkTree) lookup(dir []string, p string, followLast bool) ([]string, error) {
	hops := 0
	return t.walk(dir, p, followLast, &hops)
}

func (t *linkTree) walk(cur []string, p string, followLast bool, hops *int) ([]string, error) {
	if isAbsTarget(p) {
		rel, err := t.rel(p)
		if err != nil {
			return nil, err
		}
		cur, p = nil, rel
	}
	parts := strings.FieldsFunc(p, isSeparator)
	for i, part := range parts {
		switch part {
		case ".":
			continue
		case "..":
			if len(cur) == 0 {
				return nil, errLinkEscape
			}
			cur = cur[:len(cur)-1]
			continue
		}
		next := append(cur[:len(cur):len(cur)], part)
		if i == len(parts)-1 && !followLast && !strings.HasSuffix(p, "/") {
			cur = next
			continue
		}
		target, ok, err := t.linkAt(next)
		if err != nil {
			return nil, err
		}
		if !ok {
			cur = next
			continue
		}
		if *hops++; *hops > maxLinkHops {
			return nil, errLinkLoop
		}
		if cur, err = t.walk(cur, target, true, hops); err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// rel maps an absolute link target to a path below the destination.
func (t *linkTree) rel(abs string) (string, error) {
	for _, seg := range strings.FieldsFunc(abs, isSeparator) {
		if seg == ".." {
			return "", errLinkEscape
		}
	}
	p := filepath.Clean(filepath.FromSlash(abs))
	for _, base := range []string{t.root, t.dest} {
		if safepath.Within(base, p) {
			rel, err := filepath.Rel(base, p)
			if err != nil {
				return "", err
			}
			return filepath.ToSlash(rel), nil
		}
	}
	return "", errLinkEscape
}

func (t *linkTree) linkAt(parts []string) (string, bool, error) {
	key := path.Join(parts...)
	if target, ok := t.links[key]; ok {
		return target, true, nil
	}
	if t.plain[key] {
		return "", false, nil
	}
	p := filepath.Join(t.root, filepath.FromSlash(key))
	fi, err := os.Lstat(p)
	if err != nil || fi.Mode()&fs.ModeSymlink == 0 {
		return "", false, nil
	}
	target, err := os.Readlink(p)
	if err != nil {
		return "", false, err
	}
	return target, true, nil
}

// check resolves e against the links recorded so far and records e.
func (t *linkTree) check(e Entry) error {
	name := path.Clean(e.Name)
	if name == "." {
		return nil
	}
	unsafe := func(op, p string, err error) error {
		return &safepath.UnsafePathError{Op: op, Path: p, Boundary: t.dest, Reason: err.Error()}
	}
	parent, err := t.lookup(nil, path.Dir(name), true)
	if err != nil {
		return unsafe("extract", e.Name, err)
	}
	base := path.Base(name)
	key := path.Join(append(parent[:len(parent):len(parent)], base)...)
	switch e.Kind {
	case KindDir:
		if _, err := t.lookup(parent, base, true); err != nil {
			return unsafe("extract", e.Name, err)
		}
		return nil
	case KindSymlink:
		if _, err := t.lookup(parent, e.LinkTarget, true); err != nil {
			return unsafe("link", e.LinkTarget, err)
		}
		t.links[key] = e.LinkTarget
		delete(t.plain, key)
		return nil
	case KindHardlink:
		src, err := t.lookup(nil, e.LinkTarget, false)
		if err != nil {
			return unsafe("link", e.LinkTarget, err)
		}
		if _, ok, err := t.linkAt(src); err != nil || ok {
			return unsafe("link", e.LinkTarget, errors.New("hard link to a symlink"))
		}
	}
	t.plain[key] = true
	delete(t.links, key)
	return nil
}

// checkSymlink verifies against the current disk that a symlink about to
// be created at name stays inside the destination.
func (t *linkTree) checkSymlink(name, target string) error {
	parent, err := t.lookup(nil, path.Dir(filepath.ToSlash(name)), true)
	if err == nil {
		_, err = t.lookup(parent, target, true)
	}
	if err != nil {
		return &safepath.UnsafePathError{Op: "link", Path: target, Boundary: t.dest, Reason: err.Error()}
	}
	return nil
}

func isAbsTarget(p string) bool {
	return strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) || filepath.IsAbs(p) ||
		filepath.VolumeName(p) != ""
}

func isSeparator(r rune) bool {
	return r == '/' || r == filepath.Separator
}
