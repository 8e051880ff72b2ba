// Package rot13 implements a minimal reference vfs.TransformerFactory: it
// exposes a ROT13-obfuscated sibling of every source file it matches.
package rot13

import (
	"context"
	"io"
	"strings"

	"github.com/rave-engine/rave/internal/vfs"
)

// Suffix is appended to the source file's name to form the exposed path.
const Suffix = ".rot13"

// Factory constructs Transformer instances. Consume controls whether the
// source file is evicted from the cache once transformed.
type Factory struct {
	Consume bool
}

func (f *Factory) String() string { return "<rot13.Factory>" }

// New reads handle fully (transformers must not retain the handle past
// construction) and ROT13-encodes it eagerly.
func (f *Factory) New(path string, handle vfs.File) (vfs.Transformer, error) {
	data, err := vfs.ReadAll(handle)
	if err != nil {
		return nil, err
	}
	return &transformer{
		source:  path,
		data:    rot13(data),
		consume: f.Consume,
	}, nil
}

type transformer struct {
	source  string
	data    []byte
	consume bool
}

func (t *transformer) String() string { return "<rot13.transformer:" + t.source + ">" }

func (t *transformer) Valid() bool    { return true }
func (t *transformer) Consumes() bool { return t.consume }
func (t *transformer) Relative() bool { return true }

func (t *transformer) exposedPath() string {
	return vfsBasename(t.source) + Suffix
}

// List exposes exactly one file: the source's basename with Suffix appended.
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
	return newMemoryFile(t.data), nil
}

func rot13(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		switch {
		case b >= 'a' && b <= 'z':
			out[i] = 'a' + (b-'a'+13)%26
		case b >= 'A' && b <= 'Z':
			out[i] = 'A' + (b-'A'+13)%26
		default:
			out[i] = b
		}
	}
	return out
}

func vfsBasename(path string) string {
	idx := strings.LastIndexByte(path, '/')
	return path[idx+1:]
}

// memoryFile is an in-memory, read-only vfs.File used to serve transformed
// content without round-tripping through the native filesystem.
type memoryFile struct {
	data   []byte
	pos    int64
	closed bool
}

func newMemoryFile(data []byte) *memoryFile {
	return &memoryFile{data: data}
}

func (m *memoryFile) Opened() bool   { return !m.closed }
func (m *memoryFile) Readable() bool { return !m.closed }
func (m *memoryFile) Writable() bool { return false }
func (m *memoryFile) Seekable() bool { return !m.closed }

func (m *memoryFile) Read(p []byte) (int, error) {
	if m.closed {
		return 0, vfs.Closed("read", "")
	}
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	if m.pos >= int64(len(m.data)) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memoryFile) Write(data []byte) (int, error) {
	return 0, vfs.NotWritable("write", "")
}

func (m *memoryFile) Seek(offset int64, whence vfs.Whence) (int64, error) {
	if m.closed {
		return 0, vfs.Closed("seek", "")
	}
	var base int64
	switch whence {
	case vfs.SeekSet:
		base = 0
	case vfs.SeekCur:
		base = m.pos
	case vfs.SeekEnd:
		base = int64(len(m.data))
	}
	m.pos = base + offset
	return m.pos, nil
}

func (m *memoryFile) Tell() (int64, error) {
	return m.pos, nil
}

func (m *memoryFile) Close() error {
	m.closed = true
	return nil
}
