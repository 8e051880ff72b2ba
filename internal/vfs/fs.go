// Package vfs implements the layered virtual file system: pluggable
// providers mounted at canonical paths, regex-bound content transformers,
// and a cache that keeps path lookups O(1) modulo rebuilds.
package vfs

import (
	"context"
	"regexp"

	"github.com/rave-engine/rave/internal/log"
	"github.com/rave-engine/rave/internal/vpath"
)

var logger = log.Get("vfs")

type providerEntry struct {
	provider Provider
	mount    string
}

type transformerEntry struct {
	pattern   *regexp.Regexp
	factories []TransformerFactory
}

// FileSystem composes mounted providers, bound transformers, and the
// derived caches, protected by one reentrant lock. Create one per session.
type FileSystem struct {
	rmu rmutex

	roots        map[string][]Provider
	transformers []*transformerEntry

	fileCache    map[string][]providerEntry // nil until built
	listingCache map[string]map[string]bool // nil until built
}

// New returns an empty FileSystem. Call Clear at any time to reset it.
func New() *FileSystem {
	fs := &FileSystem{}
	fs.Clear()
	return fs
}

// Clear empties every root, transformer and cache.
func (fs *FileSystem) Clear() {
	fs.rmu.Lock()
	defer fs.rmu.Unlock()

	logger.Trace("clearing file system")
	fs.roots = make(map[string][]Provider)
	fs.transformers = nil
	fs.fileCache = nil
	fs.listingCache = nil
}

// Mount attaches provider at the canonical path. Multiple providers may be
// mounted at the same path; the most recently mounted one is consulted
// first on lookup (last-wins precedence).
func (fs *FileSystem) Mount(ctx context.Context, path string, provider Provider) {
	path = vpath.Normalize(path)

	fs.rmu.Lock()
	fs.roots[path] = append(fs.roots[path], provider)
	built := fs.fileCache != nil
	fs.rmu.Unlock()

	logger.Debugf("mounted %v on %s", provider, path)

	if !built {
		fs.buildCache(ctx)
	} else {
		fs.rmu.Lock()
		defer fs.rmu.Unlock()
		fs.addProviderCache(ctx, provider, path)
	}
}

// Unmount detaches provider, previously mounted at path, by identity.
// Triggers a full cache rebuild. Returns a not-found *Error if the provider
// was never mounted there.
func (fs *FileSystem) Unmount(ctx context.Context, path string, provider Provider) error {
	path = vpath.Normalize(path)

	fs.rmu.Lock()
	providers := fs.roots[path]
	idx := -1
	for i, p := range providers {
		if p == provider {
			idx = i
			break
		}
	}
	if idx < 0 {
		fs.rmu.Unlock()
		return NotFound("unmount", path)
	}
	fs.roots[path] = append(providers[:idx], providers[idx+1:]...)
	fs.rmu.Unlock()

	logger.Debugf("unmounted %v from %s", provider, path)
	fs.buildCache(ctx)
	return nil
}

// Transform registers factory as a transformer for files whose canonical
// path matches pattern. Existing matching files are scanned and
// transformed immediately if the cache has already been built.
func (fs *FileSystem) Transform(ctx context.Context, pattern *regexp.Regexp, factory TransformerFactory) {
	fs.rmu.Lock()
	var entry *transformerEntry
	for _, e := range fs.transformers {
		if e.pattern.String() == pattern.String() {
			entry = e
			break
		}
	}
	if entry == nil {
		entry = &transformerEntry{pattern: pattern}
		fs.transformers = append(fs.transformers, entry)
	}
	entry.factories = append(entry.factories, factory)
	built := fs.fileCache != nil
	fs.rmu.Unlock()

	logger.Debugf("added transformer %v for pattern %s", factory, pattern.String())
	if !built {
		fs.buildCache(ctx)
	} else {
		fs.rmu.Lock()
		defer fs.rmu.Unlock()
		fs.addTransformerCache(ctx, pattern, factory)
	}
}

// Untransform removes factory as a transformer for pattern. Triggers a full
// cache rebuild.
func (fs *FileSystem) Untransform(ctx context.Context, pattern *regexp.Regexp, factory TransformerFactory) error {
	fs.rmu.Lock()
	var entry *transformerEntry
	for _, e := range fs.transformers {
		if e.pattern.String() == pattern.String() {
			entry = e
			break
		}
	}
	if entry == nil {
		fs.rmu.Unlock()
		return NotFound("untransform", pattern.String())
	}
	idx := -1
	for i, f := range entry.factories {
		if f == factory {
			idx = i
			break
		}
	}
	if idx < 0 {
		fs.rmu.Unlock()
		return NotFound("untransform", pattern.String())
	}
	entry.factories = append(entry.factories[:idx], entry.factories[idx+1:]...)
	fs.rmu.Unlock()

	logger.Debugf("removed transformer %v for pattern %s", factory, pattern.String())
	fs.buildCache(ctx)
	return nil
}

// Open opens filename through the provider chain, trying the most recently
// mounted provider first. A not-found from a candidate is swallowed and the
// next candidate tried; any other error is remembered and surfaced only if
// every candidate fails.
func (fs *FileSystem) Open(ctx context.Context, filename string, flags OpenFlags) (File, error) {
	filename = vpath.Normalize(filename)

	if fs.IsDir(ctx, filename) {
		return nil, NotAFile("open", filename)
	}

	entries, err := fs.providersFor(ctx, filename)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, entry := range entries {
		local := fs.localPath(entry.mount, filename)
		logger.Tracef("opening %s from %v", filename, entry.provider)
		f, err := entry.provider.Open(ctx, local, flags)
		if err == nil {
			return f, nil
		}
		if IsNotFound(err) {
			continue
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, NotFound("open", filename)
}

// Exists reports whether filename is present in the file system, building
// the cache first if necessary.
func (fs *FileSystem) Exists(ctx context.Context, filename string) bool {
	fs.ensureBuilt(ctx)
	filename = vpath.Normalize(filename)

	fs.rmu.Lock()
	defer fs.rmu.Unlock()
	_, ok := fs.fileCache[filename]
	return ok
}

// IsDir reports whether filename exists and is a directory.
func (fs *FileSystem) IsDir(ctx context.Context, filename string) bool {
	fs.ensureBuilt(ctx)
	filename = vpath.Normalize(filename)

	fs.rmu.Lock()
	defer fs.rmu.Unlock()
	_, ok := fs.listingCache[filename]
	return ok
}

// IsFile reports whether filename exists and is not a directory.
func (fs *FileSystem) IsFile(ctx context.Context, filename string) bool {
	fs.ensureBuilt(ctx)
	filename = vpath.Normalize(filename)

	fs.rmu.Lock()
	defer fs.rmu.Unlock()
	_, inFiles := fs.fileCache[filename]
	_, inDirs := fs.listingCache[filename]
	return inFiles && !inDirs
}

// Dirname, Basename, Join, Split and Normalize forward to the vpath package
// so callers can do path manipulation through a FileSystem without importing
// vpath themselves.
func (fs *FileSystem) Dirname(p string) string       { return vpath.Dirname(p) }
func (fs *FileSystem) Basename(p string) string       { return vpath.Basename(p) }
func (fs *FileSystem) Join(parts ...string) string    { return vpath.Join(parts...) }
func (fs *FileSystem) Split(p string) []string        { return vpath.Split(p) }
func (fs *FileSystem) Normalize(p string) string      { return vpath.Normalize(p) }

// List returns every path below subdir, recursively. With an empty subdir it
// returns the whole tree as canonical paths; otherwise the paths are relative
// to subdir (each still beginning with "/"), and "/" stands for subdir itself.
func (fs *FileSystem) List(ctx context.Context, subdir string) (map[string]bool, error) {
	fs.ensureBuilt(ctx)

	if subdir == "" {
		fs.rmu.Lock()
		defer fs.rmu.Unlock()
		out := make(map[string]bool, len(fs.fileCache))
		for p := range fs.fileCache {
			out[p] = true
		}
		return out, nil
	}

	subdir = vpath.Normalize(subdir)
	if !fs.IsDir(ctx, subdir) {
		if !fs.Exists(ctx, subdir) {
			return nil, NotFound("list", subdir)
		}
		return nil, NotADirectory("list", subdir)
	}

	fs.rmu.Lock()
	defer fs.rmu.Unlock()

	result := map[string]bool{vpath.Root: true}
	queue := []string{subdir}
	for len(queue) > 0 {
		target := queue[0]
		queue = queue[1:]

		for entry := range fs.listingCache[target] {
			full := vpath.Join(target, entry)
			if _, isDir := fs.listingCache[full]; isDir {
				queue = append(queue, full)
			}
			result[fs.localPath(subdir, full)] = true
		}
	}
	return result, nil
}

// ListDir returns the immediate child basenames of subdir (or the root if
// subdir is empty).
func (fs *FileSystem) ListDir(ctx context.Context, subdir string) (map[string]bool, error) {
	fs.ensureBuilt(ctx)

	if subdir == "" {
		subdir = vpath.Root
	} else {
		subdir = vpath.Normalize(subdir)
		if !fs.IsDir(ctx, subdir) {
			if !fs.Exists(ctx, subdir) {
				return nil, NotFound("listdir", subdir)
			}
			return nil, NotADirectory("listdir", subdir)
		}
	}

	fs.rmu.Lock()
	defer fs.rmu.Unlock()
	out := make(map[string]bool, len(fs.listingCache[subdir]))
	for k, v := range fs.listingCache[subdir] {
		out[k] = v
	}
	return out, nil
}

func (fs *FileSystem) ensureBuilt(ctx context.Context) {
	fs.rmu.Lock()
	built := fs.fileCache != nil
	fs.rmu.Unlock()
	if !built {
		fs.buildCache(ctx)
	}
}

// providersFor returns the (provider, mountpoint) candidates for path in
// reverse-insertion order (last-mounted wins).
func (fs *FileSystem) providersFor(ctx context.Context, path string) ([]providerEntry, error) {
	fs.ensureBuilt(ctx)

	fs.rmu.Lock()
	defer fs.rmu.Unlock()

	entries, ok := fs.fileCache[path]
	if !ok {
		return nil, NotFound("open", path)
	}

	reversed := make([]providerEntry, len(entries))
	for i, e := range entries {
		reversed[len(entries)-1-i] = e
	}
	return reversed, nil
}

// localPath strips the mount prefix from path, except that the root mount
// passes paths through unchanged.
func (fs *FileSystem) localPath(mount, path string) string {
	if mount == vpath.Root {
		return path
	}
	return path[len(mount):]
}
