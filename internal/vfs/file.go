package vfs

import "io"

// Whence selects the reference point for Seek, mirroring io.Seeker's
// SEEK_SET/SEEK_CUR/SEEK_END under friendlier names.
type Whence int

const (
	// SeekSet seeks relative to the start of the file.
	SeekSet Whence = iota
	// SeekCur seeks relative to the current position.
	SeekCur
	// SeekEnd seeks relative to the end of the file.
	SeekEnd
)

// File is the capability-interface contract every open file satisfies.
// Implementations report false from a capability predicate rather than
// panicking when an operation is unsupported; the corresponding operation
// then fails with the matching *Error kind.
type File interface {
	// Opened reports whether the file is still open. It is idempotent and
	// becomes false forever after a successful Close.
	Opened() bool
	// Readable reports whether Read is expected to succeed.
	Readable() bool
	// Writable reports whether Write is expected to succeed.
	Writable() bool
	// Seekable reports whether Seek/Tell are expected to succeed.
	Seekable() bool

	// Read reads up to len(p) bytes. Fails with KindNotReadable if !Readable(),
	// KindClosed if !Opened().
	Read(p []byte) (int, error)
	// Write writes data. Fails with KindNotWritable if !Writable(), KindClosed
	// if !Opened().
	Write(data []byte) (int, error)
	// Seek repositions the file and returns the new offset. Fails with
	// KindNotSeekable if !Seekable().
	Seek(offset int64, whence Whence) (int64, error)
	// Tell returns the current offset. Fails with KindNotSeekable if
	// !Seekable().
	Tell() (int64, error)

	// Close closes the file. Closing an already-closed file is a silent
	// no-op.
	Close() error
}

// Acquire opens a scope around f: fn is called with f, and f is closed
// exactly once on every exit path (normal return or panic).
func Acquire(f File, fn func(File) error) (err error) {
	defer func() {
		closeErr := f.Close()
		if err == nil {
			err = closeErr
		}
	}()
	return fn(f)
}

// ReadAll reads every remaining byte from f, the equivalent of read() with
// no amount given.
func ReadAll(f File) ([]byte, error) {
	if !f.Readable() {
		return nil, NotReadable("read", "")
	}
	return io.ReadAll(readerFunc(f.Read))
}

type readerFunc func(p []byte) (int, error)

func (r readerFunc) Read(p []byte) (int, error) { return r(p) }
