package vfs

import (
	"context"
	"regexp"

	"github.com/rave-engine/rave/internal/vpath"
)

// buildCache rebuilds the entire file and listing cache from scratch. It is
// triggered by Unmount, Untransform and Clear, and lazily on first read.
func (fs *FileSystem) buildCache(ctx context.Context) {
	fs.rmu.Lock()
	defer fs.rmu.Unlock()

	logger.Trace("building cache")
	fs.fileCache = map[string][]providerEntry{vpath.Root: {}}
	fs.listingCache = map[string]map[string]bool{vpath.Root: {}}

	for root, providers := range fs.roots {
		for _, provider := range providers {
			fs.addProviderCacheLocked(ctx, provider, root)
		}
	}
}

// addProviderCache adds provider, newly mounted at root, to the cache.
func (fs *FileSystem) addProviderCache(ctx context.Context, provider Provider, root string) {
	fs.addProviderCacheLocked(ctx, provider, root)
}

// addProviderCacheLocked assumes fs.rmu is already held by the caller.
func (fs *FileSystem) addProviderCacheLocked(ctx context.Context, provider Provider, root string) {
	logger.Tracef("caching mount point %s <- %v", root, provider)
	fs.cacheDirectory(provider, root, root)

	entries, err := provider.List(ctx)
	if err != nil {
		logger.Warnf("could not list %v at %s: %v", provider, root, err)
		return
	}

	for _, sub := range entries {
		path := vpath.Join(root, sub)
		if provider.IsDir(ctx, sub) {
			fs.cacheDirectory(provider, root, path)
		} else {
			fs.cacheFile(ctx, provider, root, path)
		}
	}
}

// addTransformerCache scans existing cached files for ones matching pattern
// and attempts to transform them with factory.
func (fs *FileSystem) addTransformerCache(ctx context.Context, pattern *regexp.Regexp, factory TransformerFactory) {
	paths := make([]string, 0, len(fs.fileCache))
	for path := range fs.fileCache {
		paths = append(paths, path)
	}

	for _, path := range paths {
		if !pattern.MatchString(path) {
			continue
		}

		entries, err := fs.providersForLocked(path)
		if err != nil || len(entries) == 0 {
			continue
		}
		provider, mount := entries[len(entries)-1].provider, entries[len(entries)-1].mount

		handle, err := provider.Open(ctx, fs.localPath(mount, path), OpenRead)
		if err != nil {
			logger.Warnf("couldn't open %s for transformer %v: %v", path, factory, err)
			continue
		}
		fs.cacheTransformedFile(ctx, factory, path, handle)
	}
}

// providersForLocked is providersFor without (re)acquiring the lock or
// triggering a build; the caller must already hold fs.rmu and know the
// cache is built.
func (fs *FileSystem) providersForLocked(path string) ([]providerEntry, error) {
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

// cacheDirectory adds path, provided by provider (possibly nil for a
// synthesised ancestor directory), as a directory.
func (fs *FileSystem) cacheDirectory(provider Provider, root, path string) {
	logger.Tracef("caching directory: %s <- %v", path, provider)
	if _, ok := fs.listingCache[path]; !ok {
		fs.listingCache[path] = map[string]bool{}
	}
	fs.cacheEntry(provider, root, path)
}

// cacheFile adds path, provided by provider, as a file, running it through
// every matching transformer first.
func (fs *FileSystem) cacheFile(ctx context.Context, provider Provider, root, path string) {
	logger.Tracef("caching file: %s <- %v", path, provider)
	local := fs.localPath(root, path)

	for _, entry := range fs.transformers {
		if !entry.pattern.MatchString(path) {
			continue
		}

		consumed := false
		for _, factory := range entry.factories {
			handle, err := provider.Open(ctx, local, OpenRead)
			if err != nil {
				logger.Warnf("couldn't open %v:%s for transformer %v: %v", provider, local, factory, err)
				continue
			}

			consumed = fs.cacheTransformedFile(ctx, factory, path, handle)
			if consumed {
				break
			}
		}

		if consumed {
			logger.Debugf("cached file %s consumed by transformer", path)
			return
		}
	}

	// No transformer consumed the file (or none matched); cache it normally.
	fs.cacheEntry(provider, root, path)
}

// cacheEntry adds an entry at path, provided by provider, to the file cache,
// synthesising any missing ancestor directories along the way.
func (fs *FileSystem) cacheEntry(provider Provider, root, path string) {
	if _, ok := fs.fileCache[path]; !ok {
		fs.fileCache[path] = nil
	}
	if provider != nil && !fs.hasProvider(path, provider) {
		fs.fileCache[path] = append(fs.fileCache[path], providerEntry{provider: provider, mount: root})
	}

	if path == vpath.Root {
		return
	}

	parent := vpath.Dirname(path)
	if _, ok := fs.fileCache[parent]; !ok {
		fs.cacheDirectory(nil, "", parent)
	}

	basename := vpath.Basename(path)
	if _, ok := fs.listingCache[parent]; !ok {
		fs.listingCache[parent] = map[string]bool{}
	}
	fs.listingCache[parent][basename] = true
}

func (fs *FileSystem) hasProvider(path string, provider Provider) bool {
	for _, e := range fs.fileCache[path] {
		if e.provider == provider {
			return true
		}
	}
	return false
}

// cacheTransformedFile constructs factory from (path, handle) and, if the
// result reports Valid(), mounts it as a nested provider. It returns whether
// the source was consumed.
func (fs *FileSystem) cacheTransformedFile(ctx context.Context, factory TransformerFactory, path string, handle File) bool {
	instance, err := factory.New(path, handle)
	if err != nil {
		logger.Warnf("error while transforming %s with %v: %v", path, factory, err)
		return false
	}
	if !instance.Valid() {
		return false
	}

	logger.Tracef("caching transformed file: %s <- %v", path, factory)

	parent := vpath.Root
	if instance.Relative() {
		parent = vpath.Dirname(path)
	}

	fs.addProviderCacheLocked(ctx, instance, parent)

	if instance.Consumes() {
		fs.evictConsumed(path)
		return true
	}
	return false
}

// evictConsumed removes path from the file cache and its basename from the
// parent's listing, so a consumed source file never lingers as an orphaned
// basename.
func (fs *FileSystem) evictConsumed(path string) {
	delete(fs.fileCache, path)

	if path == vpath.Root {
		return
	}
	parent := vpath.Dirname(path)
	basename := vpath.Basename(path)
	if siblings, ok := fs.listingCache[parent]; ok {
		delete(siblings, basename)
	}
}
