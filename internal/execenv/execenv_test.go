package execenv

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingEnv struct {
	Base
	name          string
	activations   *[]string
	deactivations *[]string
}

func (e *recordingEnv) Activate()   { *e.activations = append(*e.activations, e.name) }
func (e *recordingEnv) Deactivate() { *e.deactivations = append(*e.deactivations, e.name) }

func TestPushPopActivatesAndDeactivates(t *testing.T) {
	var activations, deactivations []string
	outer := &recordingEnv{name: "outer", activations: &activations, deactivations: &deactivations}
	inner := &recordingEnv{name: "inner", activations: &activations, deactivations: &deactivations}

	require.Nil(t, Current())

	Push(outer)
	require.Equal(t, outer, Current())

	Push(inner)
	require.Equal(t, inner, Current())
	require.Equal(t, []string{"outer", "inner"}, activations)
	require.Equal(t, []string{"outer"}, deactivations)

	popped := Pop()
	require.Equal(t, inner, popped)
	require.Equal(t, outer, Current())
	require.Equal(t, []string{"outer", "inner", "outer"}, activations)
	require.Equal(t, []string{"outer", "inner"}, deactivations)

	Pop()
	require.Nil(t, Current())
}

func TestPopWithoutPushPanics(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		require.Panics(t, func() { Pop() })
	}()
	<-done
}

func TestScopedRunsAndPops(t *testing.T) {
	var activations, deactivations []string
	env := &recordingEnv{name: "scoped", activations: &activations, deactivations: &deactivations}

	ran := false
	done := make(chan struct{})
	go func() {
		defer close(done)
		Scoped(env, func() {
			ran = true
			require.Equal(t, env, Current())
		})
		require.Nil(t, Current())
	}()
	<-done

	require.True(t, ran)
	require.Equal(t, []string{"scoped"}, activations)
	require.Equal(t, []string{"scoped"}, deactivations)
}

func TestPerGoroutineIsolation(t *testing.T) {
	var activations, deactivations []string
	var wg sync.WaitGroup
	results := make(chan Environment, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			env := &recordingEnv{name: "g", activations: &activations, deactivations: &deactivations}
			Push(env)
			results <- Current()
			Pop()
		}(i)
	}
	wg.Wait()
	close(results)

	for env := range results {
		require.NotNil(t, env)
	}
}
