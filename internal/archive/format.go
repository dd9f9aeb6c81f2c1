// Copyright (c) 2026 The XGo Authors (xgo.dev). All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package archive

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// ErrUnsupportedFormat is returned by Open for unknown archive names.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// maxLinkTarget bounds the size of a zip symlink body.
const maxLinkTarget = 4096

type decompressor func(r io.Reader) (io.ReadCloser, error)

var formats = []struct {
	suffixes []string
	open     decompressor
}{
	{[]string{".tar.xz", ".txz"}, openXZ},
	{[]string{".tar.gz", ".tgz"}, openGzip},
	{[]string{".tar.zst", ".tzst"}, openZstd},
	{[]string{".tar"}, openPlain},
}

// Open returns a Source for the archive at path, chosen by file name.
func Open(path string) (Source, error) {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".zip") {
		return &zipSource{path: path}, nil
	}
	for _, f := range formats {
		for _, suffix := range f.suffixes {
			if strings.HasSuffix(name, suffix) {
				return &tarSource{path: path, decompress: f.open}, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

func openXZ(r io.Reader) (io.ReadCloser, error) {
	xr, err := xz.NewReader(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("xz: %w", err)
	}
	return io.NopCloser(xr), nil
}

func openGzip(r io.Reader) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return zr, nil
}

func openZstd(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return d.IOReadCloser(), nil
}

func openPlain(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// tarSource reads a possibly compressed tar file. Every Walk reopens the
// file from the start.
type tarSource struct {
	path       string
	decompress decompressor
}

func (s *tarSource) Walk(fn func(e Entry, r io.Reader) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	rc, err := s.decompress(f)
	if err != nil {
		return err
	}
	defer rc.Close()
	return walkTar(tar.NewReader(rc), fn)
}

func walkTar(tr *tar.Reader, fn func(e Entry, r io.Reader) error) error {
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		// Names are checked by the caller; the header is still valid.
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf("tar: %w", err)
		}
		e := Entry{
			Name: hdr.Name,
			Mode: hdr.FileInfo().Mode(),
		}
		var r io.Reader
		switch hdr.Typeflag {
		case tar.TypeReg:
			e.Kind = KindFile
			r = tr
		case tar.TypeDir:
			e.Kind = KindDir
		case tar.TypeSymlink:
			e.Kind = KindSymlink
			e.LinkTarget = hdr.Linkname
		case tar.TypeLink:
			e.Kind = KindHardlink
			e.LinkTarget = hdr.Linkname
		case tar.TypeXGlobalHeader:
			continue
		default:
			e.Kind = KindOther
		}
		if err := fn(e, r); err != nil {
			return err
		}
	}
}

type zipSource struct {
	path string
}

func (s *zipSource) Walk(fn func(e Entry, r io.Reader) error) error {
	zr, err := zip.OpenReader(s.path)
	if err != nil && !(zr != nil && errors.Is(err, zip.ErrInsecurePath)) {
		return fmt.Errorf("zip: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := walkZipFile(f, fn); err != nil {
			return err
		}
	}
	return nil
}

func walkZipFile(f *zip.File, fn func(e Entry, r io.Reader) error) error {
	mode := f.Mode()
	e := Entry{Name: f.Name, Mode: mode}
	switch {
	case mode.IsDir():
		e.Kind = KindDir
		return fn(e, nil)
	case mode&fs.ModeSymlink != 0:
		e.Kind = KindSymlink
		target, err := readZipLink(f)
		if err != nil {
			return err
		}
		e.LinkTarget = target
		return fn(e, nil)
	case mode.IsRegular():
		e.Kind = KindFile
	default:
		e.Kind = KindOther
		return fn(e, nil)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("zip %s: %w", f.Name, err)
	}
	defer rc.Close()
	return fn(e, rc)
}

func readZipLink(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("zip %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxLinkTarget+1))
	if err != nil {
		return "", fmt.Errorf("zip %s: %w", f.Name, err)
	}
	if len(data) > maxLinkTarget {
		return "", fmt.Errorf("zip %s: symlink target too long", f.Name)
	}
	return string(data), nil
}
