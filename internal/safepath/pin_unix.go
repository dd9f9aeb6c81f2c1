// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package safepath

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// pin remembers the device and inode a path referred to when it was
// first inspected.
type pin struct {
	path string
	dir  bool
	dev  uint64
	ino  uint64
}

func pinPath(path string, fi fs.FileInfo) (*pin, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return nil, err
	}
	return &pin{
		path: path,
		dir:  fi.IsDir(),
		dev:  uint64(st.Dev),
		ino:  uint64(st.Ino),
	}, nil
}

// verify fails if path no longer names the pinned object. Directories
// are reopened with O_NOFOLLOW so a directory replaced by a symlink is
// caught even if the symlink points back at the same inode.
func (p *pin) verify() error {
	var st unix.Stat_t
	if p.dir {
		fd, err := unix.Open(p.path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
		if err != nil {
			return err
		}
		defer unix.Close(fd)
		if err := unix.Fstat(fd, &st); err != nil {
			return err
		}
	} else if err := unix.Lstat(p.path, &st); err != nil {
		return err
	}
	if uint64(st.Dev) != p.dev || uint64(st.Ino) != p.ino {
		return errPathChanged
	}
	return nil
}
