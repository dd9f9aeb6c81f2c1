// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package archive extracts tool archives into a destination directory
// only after every entry has been checked to stay inside it.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	qerrors "github.com/qiniu/x/errors"

	"github.com/goplus/xbuild/internal/safepath"
)

// ExtractionError reports an abandoned extraction. Unsafe lists the
// entries that failed validation; when it is empty, Err is the
// underlying archive or filesystem error.
//
// If the failure happened after validation, files already written are an
// incomplete artifact and the destination should be discarded.
type ExtractionError struct {
	Archive string
	Unsafe  []string
	Err     error
}

func (e *ExtractionError) Error() string {
	name := e.Archive
	if name == "" {
		name = "archive"
	}
	if len(e.Unsafe) > 0 {
		return fmt.Sprintf("extract %s: unsafe entries: %s", name, strings.Join(e.Unsafe, ", "))
	}
	return fmt.Sprintf("extract %s: %v", name, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is reports a validation failure as safepath.ErrUnsafePath.
func (e *ExtractionError) Is(target error) bool {
	return target == safepath.ErrUnsafePath && len(e.Unsafe) > 0
}

var errArchiveChanged = errors.New("archive changed since validation")

// Extract validates and extracts the archive file at archivePath into
// destDir. Nothing is written unless every entry passes validation.
func Extract(archivePath, destDir string) error {
	src, err := Open(archivePath)
	if err != nil {
		return &ExtractionError{Archive: archivePath, Err: err}
	}
	return extract(archivePath, src, destDir)
}

// ExtractFrom is like Extract for an already opened Source.
func ExtractFrom(src Source, destDir string) error {
	return extract("", src, destDir)
}

func extract(name string, src Source, destDir string) error {
	dest, err := filepath.Abs(destDir)
	if err != nil {
		return &ExtractionError{Archive: name, Err: err}
	}
	entries, err := Entries(src)
	if err != nil {
		return &ExtractionError{Archive: name, Err: err}
	}
	if err := Validate(entries, dest); err != nil {
		var ee *ExtractionError
		if errors.As(err, &ee) {
			ee.Archive = name
		}
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return &ExtractionError{Archive: name, Err: err}
	}
	root, err := os.OpenRoot(dest)
	if err != nil {
		return &ExtractionError{Archive: name, Err: err}
	}
	defer root.Close()
	disk := newLinkTree(dest)

	i := 0
	err = src.Walk(func(e Entry, r io.Reader) error {
		if i >= len(entries) || !sameEntry(entries[i], e) {
			return fmt.Errorf("%w: at %q", errArchiveChanged, e.Name)
		}
		i++
		return writeEntry(root, disk, e, r)
	})
	if err == nil && i != len(entries) {
		err = fmt.Errorf("%w: %d of %d entries", errArchiveChanged, i, len(entries))
	}
	if err != nil {
		return &ExtractionError{Archive: name, Err: err}
	}
	return nil
}

// Entries lists the entries of src without extracting anything.
func Entries(src Source) ([]Entry, error) {
	var entries []Entry
	err := src.Walk(func(e Entry, _ io.Reader) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Validate checks every entry against destDir. Symlinks declared by
// earlier entries are followed as if they were already extracted. It
// returns an *ExtractionError naming all unsafe entries, or nil.
func Validate(entries []Entry, destDir string) error {
	var errs qerrors.List
	var unsafe []string
	tree := newLinkTree(destDir)
	for _, e := range entries {
		err := checkEntry(e, destDir)
		if err == nil {
			err = tree.check(e)
		}
		if err != nil {
			unsafe = append(unsafe, e.Name)
			errs.Add(err)
		}
	}
	if len(unsafe) == 0 {
		return nil
	}
	return &ExtractionError{Unsafe: unsafe, Err: errs.ToError()}
}

func checkEntry(e Entry, dest string) error {
	if err := safepath.CheckEntry(e.Name, dest); err != nil {
		return err
	}
	name := entryPath(e.Name)
	unsafe := func(reason string) error {
		return &safepath.UnsafePathError{Op: "extract", Path: e.Name, Boundary: dest, Reason: reason}
	}
	switch e.Kind {
	case KindDir:
		return nil
	case KindOther:
		return unsafe("unsupported entry type")
	}
	if name == "." {
		return unsafe("entry would replace the destination directory")
	}
	switch e.Kind {
	case KindSymlink:
		linkDir := filepath.Dir(filepath.Join(dest, name))
		return safepath.CheckLinkTarget(e.LinkTarget, linkDir, dest)
	case KindHardlink:
		// Hard link targets name another member of the archive.
		if err := safepath.CheckEntry(e.LinkTarget, dest); err != nil {
			return err
		}
		return safepath.CheckLinkTarget(e.LinkTarget, dest, dest)
	}
	return nil
}

func writeEntry(root *os.Root, disk *linkTree, e Entry, r io.Reader) error {
	name := entryPath(e.Name)
	if name == "." {
		return nil
	}
	switch e.Kind {
	case KindDir:
		return root.MkdirAll(name, e.Mode.Perm()|0o700)
	case KindFile:
		perm := e.Mode.Perm()
		if perm == 0 {
			perm = 0o644
		}
		return writeFile(root, name, perm, r)
	case KindSymlink:
		if err := prepare(root, name); err != nil {
			return err
		}
		// Earlier entries are on disk now; check again against them.
		if err := disk.checkSymlink(name, e.LinkTarget); err != nil {
			return err
		}
		return root.Symlink(e.LinkTarget, name)
	case KindHardlink:
		if err := prepare(root, name); err != nil {
			return err
		}
		return root.Link(entryPath(e.LinkTarget), name)
	}
	return fmt.Errorf("%s: unsupported entry type %v", e.Name, e.Kind)
}

func writeFile(root *os.Root, name string, perm fs.FileMode, r io.Reader) error {
	if err := prepare(root, name); err != nil {
		return err
	}
	f, err := root.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return root.Chmod(name, perm)
}

// prepare creates the parent of name and removes a non-directory that
// already occupies name.
func prepare(root *os.Root, name string) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := root.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	fi, err := root.Lstat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if fi.IsDir() {
		return fmt.Errorf("%s: is a directory", name)
	}
	return root.Remove(name)
}

func entryPath(name string) string {
	return filepath.FromSlash(path.Clean(name))
}

func sameEntry(a, b Entry) bool {
	return a.Name == b.Name && a.Kind == b.Kind && a.LinkTarget == b.LinkTarget
}
