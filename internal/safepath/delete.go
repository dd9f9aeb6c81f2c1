// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package safepath

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrRefusedUnsafePath is matched by a *DeletionError returned when the
// candidate failed the safety check and nothing was removed.
var ErrRefusedUnsafePath = errors.New("refused to delete unsafe path")

// DeletionError reports a failed DeleteIfSafe.
type DeletionError struct {
	Path string
	Err  error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("delete %s: %v", e.Path, e.Err)
}

func (e *DeletionError) Unwrap() error {
	return e.Err
}

// DeleteIfSafe recursively removes path if it is safe to delete with
// respect to boundary. A missing path is not an error.
//
// The check runs on every call. Before removal the path is pinned by
// identity and re-verified after the check, which narrows (but cannot
// close) the window for a symlink swap between check and removal.
// A symlink is removed as a link; its target is left alone.
func DeleteIfSafe(path, boundary string) error {
	fi, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &DeletionError{Path: path, Err: err}
	}
	p, err := pinPath(path, fi)
	if err != nil {
		return &DeletionError{Path: path, Err: fmt.Errorf("%w: %w", ErrRefusedUnsafePath, err)}
	}
	if err := CheckDeletion(path, boundary); err != nil {
		return &DeletionError{Path: path, Err: fmt.Errorf("%w: %w", ErrRefusedUnsafePath, err)}
	}
	if err := p.verify(); err != nil {
		return &DeletionError{Path: path, Err: fmt.Errorf("%w: %w", ErrRefusedUnsafePath, err)}
	}
	if err := os.RemoveAll(path); err != nil {
		return &DeletionError{Path: path, Err: err}
	}
	return nil
}

var errPathChanged = errors.New("path changed during safety check")
