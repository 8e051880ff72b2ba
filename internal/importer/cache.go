package importer

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// resolutionCache remembers, per session, which VFS path a module name last
// resolved to, so repeat imports skip re-walking the search paths. Backed by
// an expiring cache rather than a map that lives as long as the process, so
// stale entries for long-dead sessions don't accumulate forever.
type resolutionCache struct {
	c *gocache.Cache
}

func newResolutionCache() *resolutionCache {
	return &resolutionCache{c: gocache.New(5*time.Minute, 10*time.Minute)}
}

func resolutionKey(sessionID, name string) string {
	return sessionID + "\x00" + name
}

func (r *resolutionCache) get(sessionID, name string) (string, bool) {
	v, ok := r.c.Get(resolutionKey(sessionID, name))
	if !ok {
		return "", false
	}
	return v.(string), true
}

func (r *resolutionCache) set(sessionID, name, path string) {
	r.c.Set(resolutionKey(sessionID, name), path, gocache.DefaultExpiration)
}

// invalidateSession drops every cached resolution for sessionID, used when a
// session's file system is mutated in a way that could change resolution
// (mount/unmount/transform).
func (r *resolutionCache) invalidateSession(sessionID string) {
	for key := range r.c.Items() {
		if len(key) >= len(sessionID)+1 && key[:len(sessionID)+1] == sessionID+"\x00" {
			r.c.Delete(key)
		}
	}
}

// InvalidateSession drops every resolution this Importer has cached for
// sessionID. Called whenever that session's file system is mounted,
// unmounted, or given a new or removed transformer, since any of those can
// change what a name resolves to.
func (imp *Importer) InvalidateSession(sessionID string) {
	imp.cache.invalidateSession(sessionID)
}
