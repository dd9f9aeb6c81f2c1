// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !unix

package safepath

import (
	"io/fs"
	"os"
)

type pin struct {
	path string
	fi   fs.FileInfo
}

func pinPath(path string, fi fs.FileInfo) (*pin, error) {
	return &pin{path: path, fi: fi}, nil
}

func (p *pin) verify() error {
	fi, err := os.Lstat(p.path)
	if err != nil {
		return err
	}
	if !os.SameFile(fi, p.fi) || fi.Mode().Type() != p.fi.Mode().Type() {
		return errPathChanged
	}
	return nil
}
