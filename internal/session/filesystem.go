package session

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rave-engine/rave/internal/vfs"
	"github.com/rave-engine/rave/internal/vpath"
)

// errNoActiveSession is returned by the top-level functions below when no
// game session is running, no session is active on the calling goroutine,
// and no engine session has been registered with SetEngineSession.
var errNoActiveSession = fmt.Errorf("session: no active session and no engine session registered")

func notify(s *Session) {
	if OnMutate != nil {
		OnMutate(s.ID.String())
	}
}

// List redirects to the active session's FileSystem.List.
func List(ctx context.Context, subdir string) (map[string]bool, error) {
	s := active()
	if s == nil {
		return nil, errNoActiveSession
	}
	return s.FS.List(ctx, subdir)
}

// ListDir redirects to the active session's FileSystem.ListDir.
func ListDir(ctx context.Context, subdir string) (map[string]bool, error) {
	s := active()
	if s == nil {
		return nil, errNoActiveSession
	}
	return s.FS.ListDir(ctx, subdir)
}

// Mount redirects to the active session's FileSystem.Mount.
func Mount(ctx context.Context, path string, provider vfs.Provider) error {
	s := active()
	if s == nil {
		return errNoActiveSession
	}
	s.FS.Mount(ctx, path, provider)
	notify(s)
	return nil
}

// Unmount redirects to the active session's FileSystem.Unmount.
func Unmount(ctx context.Context, path string, provider vfs.Provider) error {
	s := active()
	if s == nil {
		return errNoActiveSession
	}
	if err := s.FS.Unmount(ctx, path, provider); err != nil {
		return err
	}
	notify(s)
	return nil
}

// Transform redirects to the active session's FileSystem.Transform.
func Transform(ctx context.Context, pattern *regexp.Regexp, factory vfs.TransformerFactory) error {
	s := active()
	if s == nil {
		return errNoActiveSession
	}
	s.FS.Transform(ctx, pattern, factory)
	notify(s)
	return nil
}

// Untransform redirects to the active session's FileSystem.Untransform.
func Untransform(ctx context.Context, pattern *regexp.Regexp, factory vfs.TransformerFactory) error {
	s := active()
	if s == nil {
		return errNoActiveSession
	}
	if err := s.FS.Untransform(ctx, pattern, factory); err != nil {
		return err
	}
	notify(s)
	return nil
}

// Open redirects to the active session's FileSystem.Open.
func Open(ctx context.Context, filename string, flags vfs.OpenFlags) (vfs.File, error) {
	s := active()
	if s == nil {
		return nil, errNoActiveSession
	}
	return s.FS.Open(ctx, filename, flags)
}

// Exists redirects to the active session's FileSystem.Exists, reporting
// false with a logged warning if no session is active.
func Exists(ctx context.Context, filename string) bool {
	s := active()
	if s == nil {
		logger.Warn("session.Exists called with no active session")
		return false
	}
	return s.FS.Exists(ctx, filename)
}

// IsFile redirects to the active session's FileSystem.IsFile, reporting
// false with a logged warning if no session is active.
func IsFile(ctx context.Context, filename string) bool {
	s := active()
	if s == nil {
		logger.Warn("session.IsFile called with no active session")
		return false
	}
	return s.FS.IsFile(ctx, filename)
}

// IsDir redirects to the active session's FileSystem.IsDir, reporting false
// with a logged warning if no session is active.
func IsDir(ctx context.Context, filename string) bool {
	s := active()
	if s == nil {
		logger.Warn("session.IsDir called with no active session")
		return false
	}
	return s.FS.IsDir(ctx, filename)
}

// Dirname, Basename, Join, Split and Normalize are pure path operations that
// don't need an active session; they forward directly to vpath so callers
// can reach them alongside the session-aware functions above.
func Dirname(p string) string     { return vpath.Dirname(p) }
func Basename(p string) string    { return vpath.Basename(p) }
func Join(parts ...string) string { return vpath.Join(parts...) }
func Split(p string) []string     { return vpath.Split(p) }
func Normalize(p string) string   { return vpath.Normalize(p) }
