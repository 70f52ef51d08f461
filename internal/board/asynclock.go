package board

import "sync"

// asyncLock is the board-wide mutual-exclusion primitive. It serializes
// every state-mutating section of the Board; there is no finer-grained
// locking anywhere in this package.
//
// Go's goroutines block synchronously rather than suspending a single
// cooperative event loop, so there is no "await" keyword here: a
// goroutine that needs to suspend mid-operation (Flip waiting on a
// cell, Watch waiting on a change) simply calls Unlock, blocks on a
// channel, and calls Lock again once woken. run is for the common case
// of a critical section that never suspends midway.
type asyncLock struct {
	mu sync.Mutex
}

// run executes fn while holding the lock, releasing it even if fn
// panics, and re-panicking afterward so the caller sees the original
// failure.
func (l *asyncLock) run(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn()
}

// Lock and Unlock are exposed directly for Flip, whose wait branch
// releases and re-takes the lock mid-operation and so can't be
// expressed as a single run call. Watch and Map use separate run calls
// before and after their suspension points.
func (l *asyncLock) Lock()   { l.mu.Lock() }
func (l *asyncLock) Unlock() { l.mu.Unlock() }
