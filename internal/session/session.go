// Package session implements rave sessions: a session is a file system, an
// event bus, and an execution environment bundled together, the only
// difference between the engine session and a game session being that the
// engine session has no parent and games nest underneath it. This package
// unifies them into one Session type distinguished by Kind.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/rave-engine/rave/internal/events"
	"github.com/rave-engine/rave/internal/execenv"
	"github.com/rave-engine/rave/internal/log"
	"github.com/rave-engine/rave/internal/vfs"
)

var logger = log.Get("session")

// Kind distinguishes the one engine session from the (possibly many) game
// sessions nested under it.
type Kind int

const (
	// Engine is the single top-level session created at startup.
	Engine Kind = iota
	// Game is a session representing one running game.
	Game
)

// Session bundles a file system, an event bus and an execution environment
// under one name, and participates in the execenv activation stack so that
// Current can recover whichever session is active on this goroutine.
type Session struct {
	execenv.Base

	ID     uuid.UUID
	Name   string
	Base   string
	Kind   Kind
	Parent *Session

	FS     *vfs.FileSystem
	Events *events.Bus

	activeMu sync.Mutex
}

// New creates a session named name, mounted from base, with parent as its
// enclosing session (nil for the engine session itself). It wires the
// suspend/resume event hooks every session needs, and announces its own
// creation on the parent's bus.
func New(kind Kind, name, base string, parent *Session) *Session {
	s := &Session{
		ID:     uuid.New(),
		Name:   name,
		Base:   base,
		Kind:   kind,
		Parent: parent,
		FS:     vfs.New(),
		Events: events.New(),
	}

	s.Events.Hook("session.suspend", s.onSuspend)
	s.Events.Hook("session.resume", s.onResume)

	if parent != nil {
		parent.Events.Emit("session.created", s)
	}

	return s
}

func (s *Session) onSuspend(event string, args ...interface{}) {
	logger.Debugf("session %s suspending, acquiring active lock", s.Name)
	s.activeMu.Lock()
}

func (s *Session) onResume(event string, args ...interface{}) {
	logger.Debugf("session %s resuming, releasing active lock", s.Name)
	s.activeMu.Unlock()
}

func (s *Session) String() string {
	return "<session " + s.Name + ">"
}

// Enter pushes s onto the calling goroutine's execution stack, runs fn, and
// pops s again once fn returns.
func Enter(s *Session, fn func()) {
	execenv.Scoped(s, fn)
}

// Current returns the innermost active Session for the calling goroutine, or
// nil if none is active.
func Current() *Session {
	env := execenv.Current()
	if env == nil {
		return nil
	}
	s, ok := env.(*Session)
	if !ok {
		return nil
	}
	return s
}

// CurrentGame returns the innermost active Session of Kind Game, or nil if
// the current session (if any) is the engine session or none is active.
func CurrentGame() *Session {
	s := Current()
	if s == nil || s.Kind != Game {
		return nil
	}
	return s
}

var (
	engineMu sync.Mutex
	engine   *Session
)

// SetEngineSession registers s as the engine session: the fallback the
// top-level filesystem functions in this package use when no session is
// active on the calling goroutine. Bootstrapping the engine session is
// expected to call this exactly once.
func SetEngineSession(s *Session) {
	engineMu.Lock()
	defer engineMu.Unlock()
	engine = s
}

// EngineSession returns the session registered with SetEngineSession, or nil
// if none has been registered yet.
func EngineSession() *Session {
	engineMu.Lock()
	defer engineMu.Unlock()
	return engine
}

// active returns the session whose file system the top-level functions
// should operate on: the innermost active game session if one is running,
// otherwise whatever session is active on the calling goroutine, otherwise
// the registered engine session. Returns nil if none of those exist.
func active() *Session {
	if g := CurrentGame(); g != nil {
		return g
	}
	if s := Current(); s != nil {
		return s
	}
	return EngineSession()
}

// OnMutate, if set, is called with a session's ID whenever that session's
// file system is mounted, unmounted, or given or stripped of a transformer
// through the top-level functions in this package. It exists so
// internal/importer's per-session resolution cache can be invalidated
// without session importing importer (which would cycle back through
// session already).
var OnMutate func(sessionID string)
