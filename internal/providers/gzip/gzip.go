// Package gzip implements a vfs.TransformerFactory that decompresses gzip
// members, grounded on rclone's backend/gzip wrapper (which strips a ".gz"
// suffix and exposes the decompressed stream as a plain object).
package gzip

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"strings"

	"github.com/rave-engine/rave/internal/vfs"
)

// Suffix is the source suffix this transformer strips when exposing the
// decompressed sibling.
const Suffix = ".gz"

// Factory constructs decompressing transformers. Unlike rot13's reference
// factory, a gzip source always replaces its compressed original (Consume is
// not configurable): a ".gz" file is useless to mount twice.
type Factory struct{}

func (f *Factory) String() string { return "<gzip.Factory>" }

// New decompresses handle fully into memory and validates the gzip member
// header; an invalid stream causes Valid to report false rather than erroring
// out, since a non-gzip file with a coincidentally matching name is
// indistinguishable from a real member until decoding fails.
func (f *Factory) New(path string, handle vfs.File) (vfs.Transformer, error) {
	raw, err := vfs.ReadAll(handle)
	if err != nil {
		return nil, err
	}

	reader, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return &transformer{source: path, valid: false}, nil
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return &transformer{source: path, valid: false}, nil
	}

	return &transformer{source: path, data: data, valid: true}, nil
}

type transformer struct {
	source string
	data   []byte
	valid  bool
}

func (t *transformer) String() string { return "<gzip.transformer:" + t.source + ">" }

func (t *transformer) Valid() bool    { return t.valid }
func (t *transformer) Consumes() bool { return true }
func (t *transformer) Relative() bool { return true }

func (t *transformer) exposedPath() string {
	base := vfsBasename(t.source)
	return strings.TrimSuffix(base, Suffix)
}

func (t *transformer) List(ctx context.Context) ([]string, error) {
	return []string{t.exposedPath()}, nil
}

// matches reports whether rel names the exposed file. The FileSystem hands
// over local paths with a leading "/", so that prefix is ignored.
func (t *transformer) matches(rel string) bool {
	return strings.TrimPrefix(rel, "/") == t.exposedPath()
}

func (t *transformer) Has(ctx context.Context, rel string) bool {
	return t.matches(rel)
}

func (t *transformer) IsFile(ctx context.Context, rel string) bool {
	return t.matches(rel)
}

func (t *transformer) IsDir(ctx context.Context, rel string) bool { return false }

func (t *transformer) Open(ctx context.Context, rel string, flags vfs.OpenFlags) (vfs.File, error) {
	if !t.matches(rel) {
		return nil, vfs.NotFound("open", rel)
	}
	if flags&vfs.OpenWrite != 0 {
		return nil, vfs.NotWritable("open", rel)
	}
	return newDecompressedFile(t.data), nil
}

func vfsBasename(path string) string {
	idx := strings.LastIndexByte(path, '/')
	return path[idx+1:]
}

// decompressedFile serves the already-inflated gzip payload as a read-only
// vfs.File.
type decompressedFile struct {
	data   []byte
	pos    int64
	closed bool
}

func newDecompressedFile(data []byte) *decompressedFile {
	return &decompressedFile{data: data}
}

func (d *decompressedFile) Opened() bool   { return !d.closed }
func (d *decompressedFile) Readable() bool { return !d.closed }
func (d *decompressedFile) Writable() bool { return false }
func (d *decompressedFile) Seekable() bool { return !d.closed }

func (d *decompressedFile) Read(p []byte) (int, error) {
	if d.closed {
		return 0, vfs.Closed("read", "")
	}
	if d.pos >= int64(len(d.data)) {
		return 0, io.EOF
	}
	n := copy(p, d.data[d.pos:])
	d.pos += int64(n)
	if d.pos >= int64(len(d.data)) {
		return n, io.EOF
	}
	return n, nil
}

func (d *decompressedFile) Write(data []byte) (int, error) {
	return 0, vfs.NotWritable("write", "")
}

func (d *decompressedFile) Seek(offset int64, whence vfs.Whence) (int64, error) {
	if d.closed {
		return 0, vfs.Closed("seek", "")
	}
	var base int64
	switch whence {
	case vfs.SeekSet:
		base = 0
	case vfs.SeekCur:
		base = d.pos
	case vfs.SeekEnd:
		base = int64(len(d.data))
	}
	d.pos = base + offset
	return d.pos, nil
}

func (d *decompressedFile) Tell() (int64, error) { return d.pos, nil }

func (d *decompressedFile) Close() error {
	d.closed = true
	return nil
}
