package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rave-engine/rave/internal/execenv"
)

func TestNewAnnouncesCreationToParent(t *testing.T) {
	engine := New(Engine, "engine", "/", nil)

	var created *Session
	engine.Events.Hook("session.created", func(event string, args ...interface{}) {
		created = args[0].(*Session)
	})

	game := New(Game, "demo", "/games/demo", engine)
	require.Same(t, game, created)
}

func TestSuspendResumeLocksActiveMutex(t *testing.T) {
	s := New(Game, "demo", "/games/demo", nil)

	done := make(chan struct{})
	s.Events.Emit("session.suspend")
	go func() {
		s.activeMu.Lock()
		s.activeMu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("active mutex was not held after suspend")
	default:
	}

	s.Events.Emit("session.resume")
	<-done
}

func TestCurrentTracksEnter(t *testing.T) {
	s := New(Game, "demo", "/games/demo", nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		require.Nil(t, Current())
		Enter(s, func() {
			require.Same(t, s, Current())
			require.Same(t, s, CurrentGame())
		})
		require.Nil(t, Current())
	}()
	<-done
}

func TestCurrentGameIsNilForEngineSession(t *testing.T) {
	engine := New(Engine, "engine", "/", nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		Enter(engine, func() {
			require.Same(t, engine, Current())
			require.Nil(t, CurrentGame())
		})
	}()
	<-done
}

func TestSessionIsExecenvEnvironment(t *testing.T) {
	var _ execenv.Environment = (*Session)(nil)
}
