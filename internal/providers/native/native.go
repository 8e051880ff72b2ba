// Package native provides a vfs.Provider backed by a real operating-system
// directory tree.
package native

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jpillora/backoff"
	"github.com/pkg/errors"

	"github.com/rave-engine/rave/internal/vfs"
)

// Source is a provider rooted at a real directory on disk. Paths it's asked
// about are relative to that root.
type Source struct {
	base string
}

// New returns a Source rooted at base. base must exist and be a readable
// directory.
func New(base string) (*Source, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, vfs.Native("mount", base, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, translate(abs, err)
	}
	if !info.IsDir() {
		return nil, vfs.NotADirectory("mount", abs)
	}
	return &Source{base: abs}, nil
}

func (s *Source) String() string { return "<native:" + s.base + ">" }

func (s *Source) native(rel string) string {
	return filepath.Join(s.base, filepath.FromSlash(rel))
}

// List walks the native tree and returns every entry relative to the root,
// using forward slashes regardless of host OS.
func (s *Source) List(ctx context.Context) ([]string, error) {
	var out []string
	err := filepath.Walk(s.base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == s.base {
			return nil
		}
		rel, err := filepath.Rel(s.base, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, translate(s.base, err)
	}
	return out, nil
}

// Has reports whether rel exists.
func (s *Source) Has(ctx context.Context, rel string) bool {
	_, err := os.Stat(s.native(rel))
	return err == nil
}

// IsFile reports whether rel is a regular file.
func (s *Source) IsFile(ctx context.Context, rel string) bool {
	info, err := os.Stat(s.native(rel))
	return err == nil && !info.IsDir()
}

// IsDir reports whether rel is a directory.
func (s *Source) IsDir(ctx context.Context, rel string) bool {
	info, err := os.Stat(s.native(rel))
	return err == nil && info.IsDir()
}

// Open opens rel for reading and/or writing, retrying transient EBUSY
// conditions with a short exponential backoff before giving up, since real
// filesystems (network mounts especially) can report a file as momentarily
// busy.
func (s *Source) Open(ctx context.Context, rel string, flags vfs.OpenFlags) (vfs.File, error) {
	native := s.native(rel)

	var osFlags int
	switch {
	case flags&vfs.OpenWrite != 0 && flags&vfs.OpenRead != 0:
		osFlags = os.O_RDWR | os.O_CREATE
	case flags&vfs.OpenWrite != 0:
		osFlags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	default:
		osFlags = os.O_RDONLY
	}

	b := &backoff.Backoff{Min: 5 * time.Millisecond, Max: 100 * time.Millisecond, Factor: 2, Jitter: true}
	var f *os.File
	var err error
	for attempt := 0; attempt < 4; attempt++ {
		f, err = os.OpenFile(native, osFlags, 0o644)
		if err == nil || !errors.Is(err, syscall.EBUSY) {
			break
		}
		time.Sleep(b.Duration())
	}
	if err != nil {
		return nil, translate(native, err)
	}

	return &handle{file: f, path: native, readable: true, writable: flags&vfs.OpenWrite != 0}, nil
}

// handle wraps *os.File as a vfs.File.
type handle struct {
	file     *os.File
	path     string
	readable bool
	writable bool
	closed   bool
}

func (h *handle) Opened() bool  { return !h.closed }
func (h *handle) Readable() bool { return h.readable && !h.closed }
func (h *handle) Writable() bool { return h.writable && !h.closed }
func (h *handle) Seekable() bool { return !h.closed }

func (h *handle) Read(p []byte) (int, error) {
	if h.closed {
		return 0, vfs.Closed("read", h.path)
	}
	if !h.readable {
		return 0, vfs.NotReadable("read", h.path)
	}
	n, err := h.file.Read(p)
	if err != nil && err != io.EOF {
		return n, translate(h.path, err)
	}
	return n, err
}

func (h *handle) Write(data []byte) (int, error) {
	if h.closed {
		return 0, vfs.Closed("write", h.path)
	}
	if !h.writable {
		return 0, vfs.NotWritable("write", h.path)
	}
	n, err := h.file.Write(data)
	if err != nil {
		return n, translate(h.path, err)
	}
	return n, nil
}

func (h *handle) Seek(offset int64, whence vfs.Whence) (int64, error) {
	if h.closed {
		return 0, vfs.Closed("seek", h.path)
	}
	var w int
	switch whence {
	case vfs.SeekSet:
		w = io.SeekStart
	case vfs.SeekCur:
		w = io.SeekCurrent
	case vfs.SeekEnd:
		w = io.SeekEnd
	}
	n, err := h.file.Seek(offset, w)
	if err != nil {
		return n, translate(h.path, err)
	}
	return n, nil
}

func (h *handle) Tell() (int64, error) {
	return h.Seek(0, vfs.SeekCur)
}

func (h *handle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return h.file.Close()
}

// translate maps native OS errors onto the vfs error taxonomy.
func translate(path string, err error) error {
	if err == nil {
		return nil
	}
	if verr, ok := err.(*vfs.Error); ok {
		return verr
	}

	var errno syscall.Errno
	if e, ok := err.(*os.PathError); ok {
		if en, ok := e.Err.(syscall.Errno); ok {
			errno = en
		}
	} else if en, ok := err.(syscall.Errno); ok {
		errno = en
	}

	switch errno {
	case syscall.EPERM, syscall.EACCES, syscall.EFAULT, syscall.EBUSY:
		return vfs.AccessDenied("native", path, err)
	case syscall.ENOENT, syscall.ENXIO, syscall.ENODEV:
		return vfs.NotFound("native", path)
	case syscall.ENOTDIR:
		return vfs.NotADirectory("native", path)
	case syscall.EISDIR:
		return vfs.NotAFile("native", path)
	case syscall.EROFS:
		return vfs.NotWritable("native", path)
	}

	if os.IsNotExist(err) {
		return vfs.NotFound("native", path)
	}
	if os.IsPermission(err) {
		return vfs.AccessDenied("native", path, err)
	}

	return vfs.Native("native", path, errors.Wrap(err, "unmapped native error"))
}
