package proxy

import (
	"sync"
	"time"
)

// pendingTable maps outstanding correlation tokens to the result slot of the
// caller waiting on them. The delivery goroutine completes tokens; foreground
// callers register and wait. Completions for unknown tokens are dropped
// silently: the worker may legitimately reply after a caller has given up.
type pendingTable struct {
	mu      sync.Mutex
	waiting map[int64]chan any
}

func newPendingTable() *pendingTable {
	return &pendingTable{waiting: make(map[int64]chan any)}
}

// register creates an empty result slot for ack. Must be called before the
// outbound request is emitted so a fast reply can never miss the slot.
func (t *pendingTable) register(ack int64) {
	t.mu.Lock()
	t.waiting[ack] = make(chan any, 1)
	t.mu.Unlock()
}

// complete fills the slot for ack and wakes its waiter. A second completion
// for the same token, or a completion after the waiter deregistered, is a
// no-op.
func (t *pendingTable) complete(ack int64, v any) {
	t.mu.Lock()
	ch := t.waiting[ack]
	t.mu.Unlock()

	if ch == nil {
		return
	}
	select {
	case ch <- v:
	default:
	}
}

// wait blocks until the slot for ack is filled or timeout elapses. The token
// is deregistered on return regardless of outcome, so abandoned requests
// never grow the table.
func (t *pendingTable) wait(ack int64, timeout time.Duration) (any, bool) {
	t.mu.Lock()
	ch := t.waiting[ack]
	t.mu.Unlock()

	if ch == nil {
		return nil, false
	}
	defer t.deregister(ack)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case v := <-ch:
		return v, true
	case <-timer.C:
		return nil, false
	}
}

func (t *pendingTable) deregister(ack int64) {
	t.mu.Lock()
	delete(t.waiting, ack)
	t.mu.Unlock()
}

// size reports the number of outstanding tokens.
func (t *pendingTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waiting)
}
