package vfs

import "fmt"

// Error is the base type for every error the virtual file system raises.
// Every concrete error carries the path that was being operated on.
type Error struct {
	Op   string
	Path string
	Kind Kind
	Err  error // wrapped native error, if any (Kind == Native)
}

// Kind classifies a filesystem error.
type Kind int

const (
	// KindUnknown is never returned; it indicates a bug in error construction.
	KindUnknown Kind = iota
	// KindNotFound means the path was absent in every consulted provider.
	KindNotFound
	// KindAccessDenied means a provider refused the operation due to permissions.
	KindAccessDenied
	// KindNotReadable means the handle's capability query reports !readable.
	KindNotReadable
	// KindNotWritable means the handle's capability query reports !writable.
	KindNotWritable
	// KindNotSeekable means the handle's capability query reports !seekable.
	KindNotSeekable
	// KindClosed means the operation targeted an already-closed handle.
	KindClosed
	// KindNotAFile means a directory was found where a file was expected.
	KindNotAFile
	// KindNotADirectory means a file was found where a directory was expected.
	KindNotADirectory
	// KindNative wraps an underlying OS error that did not map cleanly.
	KindNative
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindAccessDenied:
		return "access-denied"
	case KindNotReadable:
		return "not-readable"
	case KindNotWritable:
		return "not-writable"
	case KindNotSeekable:
		return "not-seekable"
	case KindClosed:
		return "closed"
	case KindNotAFile:
		return "not-a-file"
	case KindNotADirectory:
		return "not-a-directory"
	case KindNative:
		return "native"
	default:
		return "unknown"
	}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %s", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
}

// Unwrap exposes the wrapped native error, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *Error with the same Kind, so callers can
// write errors.Is(err, vfs.NotFound(op, path)) or compare kinds with KindOf.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

func newError(op, path string, kind Kind, cause error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Err: cause}
}

// NotFound constructs a not-found error for path.
func NotFound(op, path string) error { return newError(op, path, KindNotFound, nil) }

// AccessDenied constructs an access-denied error for path.
func AccessDenied(op, path string, cause error) error {
	return newError(op, path, KindAccessDenied, cause)
}

// NotReadable constructs a not-readable error for path.
func NotReadable(op, path string) error { return newError(op, path, KindNotReadable, nil) }

// NotWritable constructs a not-writable error for path.
func NotWritable(op, path string) error { return newError(op, path, KindNotWritable, nil) }

// NotSeekable constructs a not-seekable error for path.
func NotSeekable(op, path string) error { return newError(op, path, KindNotSeekable, nil) }

// Closed constructs a closed-handle error for path.
func Closed(op, path string) error { return newError(op, path, KindClosed, nil) }

// NotAFile constructs a not-a-file error for path.
func NotAFile(op, path string) error { return newError(op, path, KindNotAFile, nil) }

// NotADirectory constructs a not-a-directory error for path.
func NotADirectory(op, path string) error { return newError(op, path, KindNotADirectory, nil) }

// Native wraps a native OS error that did not map to a more specific kind.
func Native(op, path string, cause error) error { return newError(op, path, KindNative, cause) }

// KindOf extracts the Kind from err, if err is (or wraps) a *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	for err != nil {
		if ve, ok := err.(*Error); ok {
			e = ve
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return KindUnknown, false
	}
	return e.Kind, true
}

// IsNotFound reports whether err is a not-found filesystem error.
func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindNotFound
}
