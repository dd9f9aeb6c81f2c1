// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package archive

import (
	"io"
	"io/fs"
)

// Kind classifies an archive entry.
type Kind int

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
	KindHardlink
	KindOther // devices, fifos and anything else; never extracted
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	case KindHardlink:
		return "hardlink"
	}
	return "other"
}

// Entry is the metadata of one archive member.
type Entry struct {
	Name       string // slash-separated path relative to the archive root
	Kind       Kind
	LinkTarget string // for KindSymlink and KindHardlink
	Mode       fs.FileMode
}

// Source is an archive that can be enumerated in order, more than once.
type Source interface {
	// Walk calls fn for every entry in archive order. For KindFile, r
	// yields the entry contents and is only valid during the call;
	// for every other kind r is nil.
	Walk(fn func(e Entry, r io.Reader) error) error
}
