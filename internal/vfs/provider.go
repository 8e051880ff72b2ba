package vfs

import "context"

// Provider is the capability set a mounted provider must expose. Paths
// passed to a Provider's methods are always local to its mount point, except
// for providers mounted at the root, which receive canonical paths
// unchanged (see FileSystem.localPath).
type Provider interface {
	// List returns every path (file or directory) this provider exposes,
	// relative to its mount point.
	List(ctx context.Context) ([]string, error)
	// Has reports whether rel can be opened by this provider.
	Has(ctx context.Context, rel string) bool
	// IsFile reports whether rel is a file.
	IsFile(ctx context.Context, rel string) bool
	// IsDir reports whether rel is a directory.
	IsDir(ctx context.Context, rel string) bool
	// Open opens rel for reading (and writing, if the provider and the
	// requested flags permit it). It must return an *Error on failure;
	// errors other than not-found are propagated to the FileSystem caller.
	Open(ctx context.Context, rel string, flags OpenFlags) (File, error)
}

// OpenFlags selects the mode a file is opened in.
type OpenFlags int

const (
	// OpenRead opens the file for reading.
	OpenRead OpenFlags = 1 << iota
	// OpenWrite opens the file for writing.
	OpenWrite
)

// TransformerFactory is a type whose instances are themselves Providers,
// constructed lazily from an existing source file plus an already-open
// handle to it. It is intentionally distinct from Provider at the type
// level: every transformer is a provider, but a transformer also carries
// extra construction-time lifecycle that plain providers do not.
type TransformerFactory interface {
	// New constructs a transformer instance from the canonical path of the
	// source file and a readable handle already opened on it. The
	// transformer must not retain handle past construction unless it takes
	// ownership of it; the FileSystem will not reopen the source for it.
	// Construction errors are swallowed by the caller (logged, not
	// propagated) because a transformer's applicability is speculative.
	New(path string, handle File) (Transformer, error)
}

// Transformer is a Provider produced by a TransformerFactory, reporting the
// three policies the cache needs to decide how to mount and evict it.
type Transformer interface {
	Provider

	// Valid reports whether the source file is actually of the format this
	// transformer handles. False causes the transformer to be skipped
	// silently.
	Valid() bool
	// Consumes reports whether the original source file should be evicted
	// from the cache once this transformer is mounted.
	Consumes() bool
	// Relative reports whether this transformer's exposed files should be
	// mounted relative to the source's directory (true) or at the VFS root
	// (false).
	Relative() bool
}
