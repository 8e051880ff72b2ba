package events

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitDispatchesInOrder(t *testing.T) {
	bus := New()
	var order []string

	bus.Hook("tick", func(event string, args ...interface{}) { order = append(order, "a") })
	bus.Hook("tick", func(event string, args ...interface{}) { order = append(order, "b") })

	bus.Emit("tick")
	require.Equal(t, []string{"a", "b"}, order)
}

func TestHookFirstRunsBeforeExisting(t *testing.T) {
	bus := New()
	var order []string

	bus.Hook("tick", func(event string, args ...interface{}) { order = append(order, "second") })
	bus.HookFirst("tick", func(event string, args ...interface{}) { order = append(order, "first") })

	bus.Emit("tick")
	require.Equal(t, []string{"first", "second"}, order)
}

func TestUnhookRemovesHandler(t *testing.T) {
	bus := New()
	called := false
	handler := func(event string, args ...interface{}) { called = true }

	bus.Hook("tick", handler)
	bus.Unhook("tick", handler)
	bus.Emit("tick")

	require.False(t, called)
}

func TestHookedUnregistersOnCall(t *testing.T) {
	bus := New()
	calls := 0
	unhook := bus.Hooked("tick", func(event string, args ...interface{}) { calls++ })

	bus.Emit("tick")
	unhook()
	bus.Emit("tick")

	require.Equal(t, 1, calls)
}

func TestStopProcessingHaltsDispatch(t *testing.T) {
	bus := New()
	var order []string

	bus.Hook("tick", func(event string, args ...interface{}) {
		order = append(order, "a")
		panic(StopProcessing)
	})
	bus.Hook("tick", func(event string, args ...interface{}) { order = append(order, "b") })

	require.NotPanics(t, func() { bus.Emit("tick") })
	require.Equal(t, []string{"a"}, order)
}

func TestOtherPanicsAreRecoveredAndDispatchContinues(t *testing.T) {
	bus := New()
	var order []string

	bus.Hook("tick", func(event string, args ...interface{}) {
		order = append(order, "a")
		panic("boom")
	})
	bus.Hook("tick", func(event string, args ...interface{}) { order = append(order, "b") })

	require.NotPanics(t, func() { bus.Emit("tick") })
	require.Equal(t, []string{"a", "b"}, order)
}

func TestEmitPassesArgs(t *testing.T) {
	bus := New()
	var gotEvent string
	var gotArgs []interface{}

	bus.Hook("score", func(event string, args ...interface{}) {
		gotEvent = event
		gotArgs = args
	})
	bus.Emit("score", 10, "bonus")

	require.Equal(t, "score", gotEvent)
	require.Equal(t, []interface{}{10, "bonus"}, gotArgs)
}
