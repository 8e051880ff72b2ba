// Package backends implements rave's backend-selection system: modules
// register themselves under a category (e.g. "video", "audio"), each
// carrying a priority and an availability check, and callers ask for
// whichever registered backend wins for that category.
package backends

import (
	"sync"

	"github.com/aalpar/deheap"

	"github.com/rave-engine/rave/internal/log"
)

var logger = log.Get("backends")

// Priority bounds, matching modularity's scale.
const (
	PriorityMin     = -100
	PriorityMax     = 100
	PriorityNeutral = 0
)

// Backend is implemented by anything that wants to compete for a category.
type Backend interface {
	// Priority reports this backend's preference, between PriorityMin and
	// PriorityMax.
	Priority() int
	// Available reports whether this backend can run on the current
	// platform/environment at all.
	Available() bool
	// Load initializes the backend. Returns false if initialization failed,
	// in which case selection moves on to the next candidate.
	Load() bool
}

type entry struct {
	seq     int
	backend Backend
}

type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].backend.Priority() != h[j].backend.Priority() {
		return h[i].backend.Priority() > h[j].backend.Priority()
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(entry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

var (
	mu        sync.Mutex
	sequence  int
	available = map[string]entryHeap{}
	selected  = map[string]Backend{}
)

// Reset clears every registration and selection. Test-only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	sequence = 0
	available = map[string]entryHeap{}
	selected = map[string]Backend{}
}

// Register adds backend as a candidate for category. Panics if backend's
// priority is out of range.
func Register(category string, backend Backend) {
	priority := backend.Priority()
	if priority < PriorityMin || priority > PriorityMax {
		panic("backends: priority out of range for category " + category)
	}

	mu.Lock()
	defer mu.Unlock()

	sequence++
	h := available[category]
	deheap.Push(&h, entry{seq: sequence, backend: backend})
	available[category] = h

	logger.Debugf("registered backend for %s (priority %d)", category, priority)
}

// Select returns the winning backend for category: the highest-priority
// available one whose Load succeeds. The winner is cached, so repeat calls
// are free and always return the same backend. Returns nil if nothing
// suitable was found.
func Select(category string) Backend {
	mu.Lock()
	if b, ok := selected[category]; ok {
		mu.Unlock()
		return b
	}
	h := available[category]
	mu.Unlock()

	for h.Len() > 0 {
		mu.Lock()
		e := deheap.Pop(&h).(entry)
		available[category] = h
		mu.Unlock()

		backend := e.backend
		if !backendAvailable(backend) {
			continue
		}
		if loadBackend(backend) {
			mu.Lock()
			selected[category] = backend
			mu.Unlock()
			return backend
		}
	}

	return nil
}

func backendAvailable(b Backend) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warnf("backend availability check panicked: %v", r)
			ok = false
		}
	}()
	return b.Available()
}

func loadBackend(b Backend) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warnf("backend load panicked: %v", r)
			ok = false
		}
	}()
	return b.Load()
}
