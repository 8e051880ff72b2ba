package bootstrap

import (
	"sync"

	"github.com/rave-engine/rave/internal/importer"
	"github.com/rave-engine/rave/internal/session"
)

// hooks tracks every import hook installed so far.
var (
	hooksMu sync.Mutex
	hooks   []*importer.Importer
)

func init() {
	session.OnMutate = InvalidateSession
}

// InvalidateSession drops every installed import hook's cached resolutions
// for sessionID. Registered as session.OnMutate, so it runs whenever the
// top-level session.Mount/Unmount/Transform/Untransform functions change
// what a session's file system exposes.
func InvalidateSession(sessionID string) {
	hooksMu.Lock()
	snapshot := append([]*importer.Importer(nil), hooks...)
	hooksMu.Unlock()

	for _, imp := range snapshot {
		imp.InvalidateSession(sessionID)
	}
}

// InstallHook registers an importer rooted at pkg, searching paths in
// order, and returns it so callers can later RemoveHook it.
func InstallHook(pkg string, paths []string) *importer.Importer {
	imp := importer.New(pkg, paths)

	hooksMu.Lock()
	hooks = append(hooks, imp)
	hooksMu.Unlock()

	logger.Debugf("installed import hook: %s -> %v", pkg, paths)
	return imp
}

// RemoveHook unregisters imp, the inverse of InstallHook. A no-op if imp was
// never installed (or already removed).
func RemoveHook(imp *importer.Importer) {
	hooksMu.Lock()
	defer hooksMu.Unlock()

	for i, h := range hooks {
		if h == imp {
			hooks = append(hooks[:i], hooks[i+1:]...)
			return
		}
	}
}

// RemoveHooks clears every installed hook; the tests use it to start from a
// clean registry.
func RemoveHooks() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	hooks = nil
}

// Hooks returns a snapshot of the currently installed import hooks.
func Hooks() []*importer.Importer {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	return append([]*importer.Importer(nil), hooks...)
}

// Hook finds the installed hook for pkg, if any.
func Hook(pkg string) (*importer.Importer, bool) {
	hooksMu.Lock()
	defer hooksMu.Unlock()

	for _, h := range hooks {
		if h.Package == pkg {
			return h, true
		}
	}
	return nil, false
}
