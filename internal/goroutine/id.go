// Package goroutine provides the one piece of runtime introspection the rest
// of this module needs: a stable numeric identity for the calling goroutine.
// Go deliberately exposes no public API for this, so every consumer that
// needs a per-goroutine identity (reentrant locks, execution-environment and
// session stacks) shares this single parsing routine rather than growing its
// own copy.
package goroutine

import (
	"bytes"
	"runtime"
	"strconv"
)

// ID extracts the calling goroutine's numeric identity from the header of
// its own stack trace ("goroutine NNN [running]: ..."). It exists because
// Go's goroutine model otherwise exposes no such identifier, yet reentrant
// locks and the execution-environment/session stacks all need one to key
// per-goroutine state.
func ID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	idx := bytes.IndexByte(buf, ' ')
	if idx < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(buf[:idx]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
