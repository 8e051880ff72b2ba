package importer

import (
	"context"
	"strings"

	"github.com/rave-engine/rave/internal/log"
	"github.com/rave-engine/rave/internal/modularity"
	"github.com/rave-engine/rave/internal/session"
	"github.com/rave-engine/rave/internal/vfs"
)

var logger = log.Get("importer")

// extensions lists every candidate extension, source before bytecode, so a
// hand-edited .module always shadows a stale .modulec beside it.
var extensions = []string{SourceExt, BytecodeExt}

// Importer resolves fully-qualified module names under one package root
// against a session's virtual file system, restricted to one (package,
// search paths) pair.
type Importer struct {
	Package     string
	SearchPaths []string

	cache *resolutionCache
}

// New returns an Importer rooted at pkg, searching searchPaths in order.
func New(pkg string, searchPaths []string) *Importer {
	return &Importer{Package: pkg, SearchPaths: searchPaths, cache: newResolutionCache()}
}

// Resolved is everything Load needs to turn a found file into a usable
// module: its VFS path, whether it's a package (so __path__-equivalent
// directory tracking applies), and its directory.
type Resolved struct {
	Path      string
	Dir       string
	IsPackage bool
}

// Resolve searches for module name against sess's file system, trying each
// search path's file and then its __init__ package form, source before
// bytecode. A name equal to the importer's own package root always resolves
// as an empty package, never touching the VFS.
func (imp *Importer) Resolve(ctx context.Context, sess *session.Session, name string) (*Resolved, error) {
	if name == imp.Package {
		return &Resolved{IsPackage: true}, nil
	}
	if !imp.owns(name) {
		return nil, errNotOwned
	}

	if cached, ok := imp.cache.get(sess.ID.String(), name); ok {
		return imp.describeCached(ctx, sess, cached)
	}

	rel := strings.ReplaceAll(strings.TrimPrefix(name, imp.Package+"."), ".", "/")

	for _, searchPath := range imp.SearchPaths {
		base := sess.FS.Join(searchPath, rel)

		for _, ext := range extensions {
			candidate := base + ext
			if sess.FS.IsFile(ctx, candidate) {
				imp.cache.set(sess.ID.String(), name, candidate)
				return &Resolved{Path: candidate, Dir: sess.FS.Dirname(candidate), IsPackage: false}, nil
			}
		}
		for _, ext := range extensions {
			candidate := sess.FS.Join(base, "__init__"+ext)
			if sess.FS.IsFile(ctx, candidate) {
				imp.cache.set(sess.ID.String(), name, candidate)
				return &Resolved{Path: candidate, Dir: base, IsPackage: true}, nil
			}
		}
	}

	return nil, errNotFound
}

func (imp *Importer) describeCached(ctx context.Context, sess *session.Session, path string) (*Resolved, error) {
	if !sess.FS.IsFile(ctx, path) {
		return nil, errNotFound
	}
	isPackage := strings.HasSuffix(path, "__init__"+SourceExt) || strings.HasSuffix(path, "__init__"+BytecodeExt)
	dir := sess.FS.Dirname(path)
	return &Resolved{Path: path, Dir: dir, IsPackage: isPackage}, nil
}

// owns reports whether name belongs to this importer's package root.
func (imp *Importer) owns(name string) bool {
	return name == imp.Package || strings.HasPrefix(name, imp.Package+".")
}

// Load resolves name, reads and decodes the winning file, and returns its
// Descriptor together with the resolution metadata. An empty-package
// resolution yields a nil Descriptor and a nil error.
func (imp *Importer) Load(ctx context.Context, sess *session.Session, name string) (*Descriptor, *Resolved, error) {
	resolved, err := imp.Resolve(ctx, sess, name)
	if err != nil {
		return nil, nil, err
	}
	if resolved.Path == "" {
		logger.Debugf("importer: %s is an empty package", name)
		return nil, resolved, nil
	}

	f, err := sess.FS.Open(ctx, resolved.Path, vfs.OpenRead)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	data, err := vfs.ReadAll(f)
	if err != nil {
		return nil, nil, err
	}

	descriptor, err := decodeDescriptor(resolved.Path, data)
	if err != nil {
		return nil, nil, err
	}

	logger.Debugf("loaded %s from %s", name, resolved.Path)
	return descriptor, resolved, nil
}

// LoadModule resolves and loads name, then hands its descriptor's factory
// off to the modularity registry.
func (imp *Importer) LoadModule(ctx context.Context, sess *session.Session, name string) (modularity.Module, error) {
	descriptor, resolved, err := imp.Load(ctx, sess, name)
	if err != nil {
		return nil, err
	}
	if resolved.Path == "" {
		return nil, nil
	}

	m, ok := modularity.Lookup(descriptor.Factory)
	if !ok {
		return nil, errUnknownFactory(descriptor.Factory)
	}
	return m, nil
}
