package vfs

import (
	"runtime"
	"sync"

	"github.com/rave-engine/rave/internal/goroutine"
)

// rmutex is a mutex that is reentrant with respect to the owning goroutine,
// needed because cache-building routines call back into locked methods.
type rmutex struct {
	mu    sync.Mutex
	owner uint64
	count int
}

func (m *rmutex) Lock() {
	id := goroutine.ID()
	m.mu.Lock()
	if m.owner == id && m.count > 0 {
		m.count++
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.acquire(id)
}

func (m *rmutex) acquire(id uint64) {
	for {
		m.mu.Lock()
		if m.count == 0 {
			m.owner = id
			m.count = 1
			m.mu.Unlock()
			return
		}
		if m.owner == id {
			m.count++
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()
		runtime.Gosched()
	}
}

func (m *rmutex) Unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.count == 0 {
		panic("vfs: Unlock of unlocked rmutex")
	}
	m.count--
	if m.count == 0 {
		m.owner = 0
	}
}
