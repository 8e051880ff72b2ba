package vfs

import "context"

// Overlay exposes a FileSystem as a Provider so it can be mounted inside
// another FileSystem — this is how a game session's VFS overlays the
// engine VFS without duplicating state.
type Overlay struct {
	FS *FileSystem
}

// NewOverlay wraps fs so it can be mounted as a provider.
func NewOverlay(fs *FileSystem) *Overlay {
	return &Overlay{FS: fs}
}

func (o *Overlay) String() string { return "<overlay>" }

// List forwards to the underlying FileSystem's List with no subdir filter.
func (o *Overlay) List(ctx context.Context) ([]string, error) {
	paths, err := o.FS.List(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(paths))
	for p := range paths {
		out = append(out, p)
	}
	return out, nil
}

// Has reports whether rel is a file in the underlying FileSystem.
func (o *Overlay) Has(ctx context.Context, rel string) bool {
	return o.FS.IsFile(ctx, rel)
}

// IsFile forwards to the underlying FileSystem.
func (o *Overlay) IsFile(ctx context.Context, rel string) bool {
	return o.FS.IsFile(ctx, rel)
}

// IsDir forwards to the underlying FileSystem.
func (o *Overlay) IsDir(ctx context.Context, rel string) bool {
	return o.FS.IsDir(ctx, rel)
}

// Open forwards to the underlying FileSystem.
func (o *Overlay) Open(ctx context.Context, rel string, flags OpenFlags) (File, error) {
	return o.FS.Open(ctx, rel, flags)
}
