package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rave-engine/rave/internal/vfs"
)

type stubProvider struct{}

func (stubProvider) String() string { return "<stub>" }
func (stubProvider) List(ctx context.Context) ([]string, error) { return []string{"/a.txt"}, nil }
func (stubProvider) Has(ctx context.Context, rel string) bool    { return rel == "/a.txt" }
func (stubProvider) IsFile(ctx context.Context, rel string) bool { return rel == "/a.txt" }
func (stubProvider) IsDir(ctx context.Context, rel string) bool  { return false }
func (stubProvider) Open(ctx context.Context, rel string, flags vfs.OpenFlags) (vfs.File, error) {
	return nil, vfs.NotFound("open", rel)
}

func withEngineSession(t *testing.T, s *Session) {
	t.Helper()
	prev := EngineSession()
	SetEngineSession(s)
	t.Cleanup(func() { SetEngineSession(prev) })
}

func TestTopLevelFunctionsFailWithoutAnySession(t *testing.T) {
	withEngineSession(t, nil)

	ctx := context.Background()
	_, err := List(ctx, "")
	require.Error(t, err)

	require.False(t, Exists(ctx, "/a.txt"))
	require.False(t, IsFile(ctx, "/a.txt"))
	require.False(t, IsDir(ctx, "/a.txt"))

	err = Mount(ctx, "/", stubProvider{})
	require.Error(t, err)
}

func TestTopLevelFunctionsFallBackToEngineSession(t *testing.T) {
	engine := New(Engine, "engine", "", nil)
	withEngineSession(t, engine)

	ctx := context.Background()
	require.NoError(t, Mount(ctx, "/", stubProvider{}))
	require.True(t, IsFile(ctx, "/a.txt"))
}

func TestTopLevelFunctionsPreferActiveGameOverEngineSession(t *testing.T) {
	engine := New(Engine, "engine", "", nil)
	withEngineSession(t, engine)

	game := New(Game, "demo", "/games/demo", engine)

	done := make(chan struct{})
	go func() {
		defer close(done)
		Enter(game, func() {
			ctx := context.Background()
			require.NoError(t, Mount(ctx, "/", stubProvider{}))
			require.True(t, IsFile(ctx, "/a.txt"))
		})
	}()
	<-done

	require.False(t, engine.FS.IsFile(context.Background(), "/a.txt"))
}

func TestMountNotifiesOnMutate(t *testing.T) {
	engine := New(Engine, "engine", "", nil)
	withEngineSession(t, engine)

	prevHook := OnMutate
	t.Cleanup(func() { OnMutate = prevHook })

	var notified string
	OnMutate = func(sessionID string) { notified = sessionID }

	require.NoError(t, Mount(context.Background(), "/", stubProvider{}))
	require.Equal(t, engine.ID.String(), notified)
}
