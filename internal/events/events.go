// Package events implements the engine-wide event bus: named events dispatch
// to an ordered list of handlers, a handler can halt further dispatch by
// panicking with StopProcessing, and any other failure is logged rather than
// propagated.
package events

import (
	"reflect"
	"sync"

	"github.com/rave-engine/rave/internal/log"
)

var logger = log.Get("events")

// Handler receives the event name and whatever arguments Emit was called
// with.
type Handler func(event string, args ...interface{})

// StopProcessing is the sentinel a handler panics with to stop dispatch for
// the current Emit without it being logged as a failure.
type stopProcessing struct{}

// StopProcessing is recovered by Emit to end dispatch for the current event
// early; call it via panic(events.StopProcessing) from inside a handler.
var StopProcessing = stopProcessing{}

// Bus is an independent set of event bindings; sessions each own one.
type Bus struct {
	mu       sync.Mutex
	handlers map[string][]Handler
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Hook appends handler to the end of event's handler list.
func (b *Bus) Hook(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

// HookFirst inserts handler at the front of event's handler list, so it runs
// before every previously registered handler.
func (b *Bus) HookFirst(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append([]Handler{handler}, b.handlers[event]...)
}

// Unhook removes the first occurrence of handler from event's handler list.
// Handler identity is compared by underlying function pointer, since Go
// function values are not otherwise comparable.
func (b *Bus) Unhook(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.handlers[event]
	target := reflect.ValueOf(handler).Pointer()
	for i, h := range list {
		if reflect.ValueOf(h).Pointer() == target {
			b.handlers[event] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Hooked registers handler for event and returns a function that unhooks it;
// the caller is expected to defer the result.
func (b *Bus) Hooked(event string, handler Handler) func() {
	b.Hook(event, handler)
	return func() { b.Unhook(event, handler) }
}

// Emit dispatches event to every hooked handler in order. A handler that
// panics with StopProcessing ends dispatch for this Emit silently; any other
// panic is recovered, logged, and dispatch continues with the next handler.
func (b *Bus) Emit(event string, args ...interface{}) {
	b.mu.Lock()
	handlers := append([]Handler(nil), b.handlers[event]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		if !invoke(event, handler, args) {
			break
		}
	}
}

// invoke runs handler, reporting false if dispatch should stop.
func invoke(event string, handler Handler, args []interface{}) (keepGoing bool) {
	keepGoing = true
	defer func() {
		if r := recover(); r != nil {
			if r == StopProcessing {
				keepGoing = false
				return
			}
			logger.Exceptionf(asError(r), "exception thrown while processing event %s", event)
		}
	}()
	handler(event, args...)
	return
}

func asError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return panicValue{r}
}

type panicValue struct{ v interface{} }

func (p panicValue) Error() string { return "panic: " + formatPanic(p.v) }

func formatPanic(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if stringer, ok := v.(interface{ String() string }); ok {
		return stringer.String()
	}
	return "non-error panic value"
}
