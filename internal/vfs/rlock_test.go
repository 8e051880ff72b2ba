package vfs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRmutexReentrant(t *testing.T) {
	var m rmutex
	m.Lock()
	m.Lock() // same goroutine must not deadlock
	m.Unlock()
	m.Unlock()
}

func TestRmutexExcludesOtherGoroutines(t *testing.T) {
	var m rmutex
	m.Lock()

	acquired := make(chan struct{})
	go func() {
		m.Lock()
		close(acquired)
		m.Unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("other goroutine acquired lock while held")
	case <-time.After(20 * time.Millisecond):
	}

	m.Unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("other goroutine never acquired lock")
	}
}

func TestRmutexUnlockWithoutLockPanics(t *testing.T) {
	var m rmutex
	require.Panics(t, func() { m.Unlock() })
}

func TestRmutexConcurrentUse(t *testing.T) {
	var m rmutex
	var wg sync.WaitGroup
	counter := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock()
			defer m.Unlock()
			counter++
		}()
	}
	wg.Wait()
	require.Equal(t, 50, counter)
}
