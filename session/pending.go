package session

import (
	"sync"

	"gbxremote/internal/xmlrpc"
)

// result is what a waiter receives on completion: exactly one of value or
// fault is non-nil, unless err is set for a transport-level failure (the
// waiter was never going to get a real response — the socket died, the
// session disconnected, or a handle collision closed the session).
type result struct {
	value any
	fault *xmlrpc.Fault
	err   error
}

// waiter is the one-shot completion slot a caller blocks on after issuing
// a request. Ownership is split: the issuing goroutine owns the receive
// end, the receive state machine (or teardown path) owns the single send.
type waiter chan result

// pendingTable maps an outstanding client-originated handle to the waiter
// that owns it. Uses a mutex-guarded map rather than sync.Map because the
// session needs to atomically swap out and drain the whole table on
// teardown.
type pendingTable struct {
	mu    sync.Mutex
	slots map[uint32]waiter
}

func newPendingTable() *pendingTable {
	return &pendingTable{slots: make(map[uint32]waiter)}
}

// register installs a waiter for handle. Must be called before the
// corresponding frame is written to the socket. Reports collided=true,
// without installing anything, if handle already has an outstanding
// waiter — a handle-wrap collision, which the caller treats as fatal.
func (t *pendingTable) register(handle uint32) (w waiter, collided bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.slots[handle]; exists {
		return nil, true
	}
	w = make(waiter, 1)
	t.slots[handle] = w
	return w, false
}

// complete resolves the waiter registered under handle, if any, and
// removes it from the table. Reports whether a waiter was found.
func (t *pendingTable) complete(handle uint32, r result) bool {
	t.mu.Lock()
	w, ok := t.slots[handle]
	if ok {
		delete(t.slots, handle)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	w <- r
	return true
}

// cancel removes handle's waiter without completing it; used when a caller
// gives up on a request externally (e.g. a timeout interceptor) so the
// table does not grow without bound.
func (t *pendingTable) cancel(handle uint32) {
	t.mu.Lock()
	delete(t.slots, handle)
	t.mu.Unlock()
}

// drain completes every outstanding waiter with a transport error and
// empties the table. Called on any transition out of Connected so callers
// blocked in call/multicall don't hang forever.
func (t *pendingTable) drain(err error) {
	t.mu.Lock()
	slots := t.slots
	t.slots = make(map[uint32]waiter)
	t.mu.Unlock()
	for _, w := range slots {
		w <- result{err: err}
	}
}
