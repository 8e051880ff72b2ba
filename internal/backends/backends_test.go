package backends

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testBackend struct {
	priority  int
	available bool
	loadOK    bool
	loaded    *bool
}

func (b *testBackend) Priority() int  { return b.priority }
func (b *testBackend) Available() bool { return b.available }
func (b *testBackend) Load() bool {
	if b.loaded != nil {
		*b.loaded = true
	}
	return b.loadOK
}

func TestSelectPicksHighestPriorityAvailable(t *testing.T) {
	Reset()
	low := &testBackend{priority: PriorityMin, available: true, loadOK: true}
	high := &testBackend{priority: PriorityMax, available: true, loadOK: true}
	Register("video", low)
	Register("video", high)

	require.Equal(t, Backend(high), Select("video"))
}

func TestSelectSkipsUnavailableBackends(t *testing.T) {
	Reset()
	unavailable := &testBackend{priority: PriorityMax, available: false, loadOK: true}
	fallback := &testBackend{priority: PriorityNeutral, available: true, loadOK: true}
	Register("video", unavailable)
	Register("video", fallback)

	require.Equal(t, Backend(fallback), Select("video"))
}

func TestSelectSkipsFailedLoad(t *testing.T) {
	Reset()
	failing := &testBackend{priority: PriorityMax, available: true, loadOK: false}
	fallback := &testBackend{priority: PriorityNeutral, available: true, loadOK: true}
	Register("video", failing)
	Register("video", fallback)

	require.Equal(t, Backend(fallback), Select("video"))
}

func TestSelectReturnsNilWhenNoneWork(t *testing.T) {
	Reset()
	Register("video", &testBackend{priority: PriorityNeutral, available: false})

	require.Nil(t, Select("video"))
}

func TestSelectCachesWinner(t *testing.T) {
	Reset()
	loaded := false
	b := &testBackend{priority: PriorityNeutral, available: true, loadOK: true, loaded: &loaded}
	Register("video", b)

	first := Select("video")
	loaded = false
	second := Select("video")

	require.Equal(t, first, second)
	require.False(t, loaded, "second Select should hit the cache, not reload")
}

func TestRegisterPanicsOnInvalidPriority(t *testing.T) {
	Reset()
	require.Panics(t, func() {
		Register("video", &testBackend{priority: PriorityMax + 1, available: true})
	})
}

func TestRegisterPanicsBelowMin(t *testing.T) {
	Reset()
	require.Panics(t, func() {
		Register("video", &testBackend{priority: PriorityMin - 1, available: true})
	})
}

func TestAvailabilityPanicIsTreatedAsUnavailable(t *testing.T) {
	Reset()
	Register("video", panicBackend{})
	fallback := &testBackend{priority: PriorityMin, available: true, loadOK: true}
	Register("video", fallback)

	require.Equal(t, Backend(fallback), Select("video"))
}

type panicBackend struct{}

func (panicBackend) Priority() int    { return PriorityMax }
func (panicBackend) Available() bool  { panic("boom") }
func (panicBackend) Load() bool       { return true }
