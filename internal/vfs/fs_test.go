package vfs

import (
	"context"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeEntry is a single in-memory file or directory served by fakeProvider.
type fakeEntry struct {
	dir  bool
	data []byte
}

// fakeProvider is a minimal in-memory Provider used across the VFS test
// suite; paths passed to it are already relative to its mount point.
type fakeProvider struct {
	name    string
	entries map[string]*fakeEntry
}

func newFakeProvider(name string) *fakeProvider {
	return &fakeProvider{name: name, entries: map[string]*fakeEntry{}}
}

func (p *fakeProvider) String() string { return "<fake:" + p.name + ">" }

func (p *fakeProvider) withFile(rel string, data string) *fakeProvider {
	p.entries[rel] = &fakeEntry{data: []byte(data)}
	return p
}

func (p *fakeProvider) withDir(rel string) *fakeProvider {
	p.entries[rel] = &fakeEntry{dir: true}
	return p
}

func (p *fakeProvider) List(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(p.entries))
	for rel := range p.entries {
		out = append(out, rel)
	}
	return out, nil
}

func (p *fakeProvider) Has(ctx context.Context, rel string) bool {
	_, ok := p.entries[rel]
	return ok
}

func (p *fakeProvider) IsFile(ctx context.Context, rel string) bool {
	e, ok := p.entries[rel]
	return ok && !e.dir
}

func (p *fakeProvider) IsDir(ctx context.Context, rel string) bool {
	e, ok := p.entries[rel]
	return ok && e.dir
}

func (p *fakeProvider) Open(ctx context.Context, rel string, flags OpenFlags) (File, error) {
	e, ok := p.entries[rel]
	if !ok {
		return nil, NotFound("open", rel)
	}
	if e.dir {
		return nil, NotAFile("open", rel)
	}
	return newFakeFile(e.data), nil
}

type fakeFile struct {
	data   []byte
	pos    int
	closed bool
}

func newFakeFile(data []byte) *fakeFile { return &fakeFile{data: data} }

func (f *fakeFile) Opened() bool   { return !f.closed }
func (f *fakeFile) Readable() bool { return !f.closed }
func (f *fakeFile) Writable() bool { return false }
func (f *fakeFile) Seekable() bool { return !f.closed }

func (f *fakeFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, Closed("read", "")
	}
	if f.pos >= len(f.data) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.pos:])
	f.pos += n
	if f.pos >= len(f.data) {
		return n, io.EOF
	}
	return n, nil
}

func (f *fakeFile) Write(data []byte) (int, error) { return 0, NotWritable("write", "") }

func (f *fakeFile) Seek(offset int64, whence Whence) (int64, error) {
	f.pos = int(offset)
	return offset, nil
}

func (f *fakeFile) Tell() (int64, error) { return int64(f.pos), nil }

func (f *fakeFile) Close() error {
	f.closed = true
	return nil
}

// fakeTransformerFactory produces ROT13-like transformers inline, without
// importing the real rot13 package, to keep this test self-contained.
type fakeTransformerFactory struct {
	consume bool
}

func (f *fakeTransformerFactory) String() string { return "<fakeTransformerFactory>" }

func (f *fakeTransformerFactory) New(path string, handle File) (Transformer, error) {
	data, err := ReadAll(handle)
	if err != nil {
		return nil, err
	}
	return &fakeTransformer{source: path, data: upper(data), consume: f.consume}, nil
}

type fakeTransformer struct {
	source  string
	data    []byte
	consume bool
}

func (t *fakeTransformer) String() string { return "<fakeTransformer>" }
func (t *fakeTransformer) Valid() bool    { return true }
func (t *fakeTransformer) Consumes() bool { return t.consume }
func (t *fakeTransformer) Relative() bool { return true }

func (t *fakeTransformer) exposedName() string {
	base := t.source[strings.LastIndex(t.source, "/")+1:]
	return base + ".upper"
}

func (t *fakeTransformer) List(ctx context.Context) ([]string, error) {
	return []string{t.exposedName()}, nil
}
func (t *fakeTransformer) Has(ctx context.Context, rel string) bool {
	return strings.TrimPrefix(rel, "/") == t.exposedName()
}
func (t *fakeTransformer) IsFile(ctx context.Context, rel string) bool {
	return strings.TrimPrefix(rel, "/") == t.exposedName()
}
func (t *fakeTransformer) IsDir(ctx context.Context, rel string) bool { return false }
func (t *fakeTransformer) Open(ctx context.Context, rel string, flags OpenFlags) (File, error) {
	if strings.TrimPrefix(rel, "/") != t.exposedName() {
		return nil, NotFound("open", rel)
	}
	return newFakeFile(t.data), nil
}

func upper(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		if b >= 'a' && b <= 'z' {
			b -= 'a' - 'A'
		}
		out[i] = b
	}
	return out
}

func TestEmptySystem(t *testing.T) {
	ctx := context.Background()
	fs := New()

	paths, err := fs.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"/": true}, paths)

	dir, err := fs.ListDir(ctx, "")
	require.NoError(t, err)
	require.Empty(t, dir)

	require.True(t, fs.IsDir(ctx, "/"))
}

func TestSingleMount(t *testing.T) {
	ctx := context.Background()
	fs := New()
	provider := newFakeProvider("p1").withDir("/").withFile("/a.txt", "hello").withFile("/b.png", "PNG")

	fs.Mount(ctx, "/x", provider)

	paths, err := fs.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"/": true, "/x": true, "/x/a.txt": true, "/x/b.png": true}, paths)

	listing, err := fs.ListDir(ctx, "/x")
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"a.txt": true, "b.png": true}, listing)

	f, err := fs.Open(ctx, "/x/a.txt", OpenRead)
	require.NoError(t, err)
	data, err := ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

func TestTransformerRelativeNonConsuming(t *testing.T) {
	ctx := context.Background()
	fs := New()
	provider := newFakeProvider("p1").withDir("/").withFile("/a.txt", "abc")
	fs.Mount(ctx, "/x", provider)
	fs.Transform(ctx, regexp.MustCompile(`\.txt$`), &fakeTransformerFactory{consume: false})

	paths, err := fs.List(ctx, "")
	require.NoError(t, err)
	require.Contains(t, paths, "/x/a.txt")
	require.Contains(t, paths, "/x/a.txt.upper")

	require.True(t, fs.Exists(ctx, "/x/a.txt"))

	f, err := fs.Open(ctx, "/x/a.txt.upper", OpenRead)
	require.NoError(t, err)
	data, err := ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "ABC", string(data))
}

func TestTransformerConsuming(t *testing.T) {
	ctx := context.Background()
	fs := New()
	provider := newFakeProvider("p1").withDir("/").withFile("/a.txt", "abc")
	fs.Mount(ctx, "/x", provider)
	fs.Transform(ctx, regexp.MustCompile(`\.txt$`), &fakeTransformerFactory{consume: true})

	require.False(t, fs.Exists(ctx, "/x/a.txt"))
	require.True(t, fs.Exists(ctx, "/x/a.txt.upper"))

	listing, err := fs.ListDir(ctx, "/x")
	require.NoError(t, err)
	require.NotContains(t, listing, "a.txt")
	require.Contains(t, listing, "a.txt.upper")
}

func TestLastWinsShadowAndUnmount(t *testing.T) {
	ctx := context.Background()
	fs := New()
	p1 := newFakeProvider("p1").withDir("/").withFile("/a.txt", "one")
	p2 := newFakeProvider("p2").withDir("/").withFile("/a.txt", "two")

	fs.Mount(ctx, "/x", p1)
	fs.Mount(ctx, "/x", p2)

	f, err := fs.Open(ctx, "/x/a.txt", OpenRead)
	require.NoError(t, err)
	data, _ := ReadAll(f)
	require.Equal(t, "two", string(data))

	require.NoError(t, fs.Unmount(ctx, "/x", p2))

	f, err = fs.Open(ctx, "/x/a.txt", OpenRead)
	require.NoError(t, err)
	data, _ = ReadAll(f)
	require.Equal(t, "one", string(data))
}

func TestUnmountUnknownProviderIsNotFound(t *testing.T) {
	ctx := context.Background()
	fs := New()
	p := newFakeProvider("p").withDir("/")
	err := fs.Unmount(ctx, "/x", p)
	require.True(t, IsNotFound(err))
}

func TestMountMonotonicity(t *testing.T) {
	ctx := context.Background()
	fs := New()
	provider := newFakeProvider("p").withDir("/").withFile("/a.txt", "x").withFile("/b.txt", "y")

	fs.Mount(ctx, "/m", provider)
	all, err := fs.List(ctx, "")
	require.NoError(t, err)
	require.Contains(t, all, "/m/a.txt")
	require.Contains(t, all, "/m/b.txt")

	listing, err := fs.ListDir(ctx, "/m")
	require.NoError(t, err)
	require.Contains(t, listing, "a.txt")
	require.Contains(t, listing, "b.txt")

	require.NoError(t, fs.Unmount(ctx, "/m", provider))
	require.False(t, fs.Exists(ctx, "/m/a.txt"))
	require.False(t, fs.Exists(ctx, "/m"))
}

func TestOpenDirectoryFails(t *testing.T) {
	ctx := context.Background()
	fs := New()
	provider := newFakeProvider("p").withDir("/").withFile("/a.txt", "x")
	fs.Mount(ctx, "/x", provider)

	_, err := fs.Open(ctx, "/x", OpenRead)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindNotAFile, kind)
}

func TestListSubdirNotFound(t *testing.T) {
	ctx := context.Background()
	fs := New()
	_, err := fs.List(ctx, "/nope")
	require.True(t, IsNotFound(err))
}

func TestClearResetsEverything(t *testing.T) {
	ctx := context.Background()
	fs := New()
	provider := newFakeProvider("p").withDir("/").withFile("/a.txt", "x")
	fs.Mount(ctx, "/x", provider)
	require.True(t, fs.Exists(ctx, "/x/a.txt"))

	fs.Clear()
	require.False(t, fs.Exists(ctx, "/x/a.txt"))
	require.True(t, fs.IsDir(ctx, "/"))
}
