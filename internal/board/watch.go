package board

import "context"

// watcher is a one-shot subscription fulfilled the next time any
// change event fires. All watchers registered before an emit are
// woken by that emit (broadcast semantics); watchers registered after
// see only later emits.
type watcher struct {
	ready chan struct{}
}

// Watch suspends until the next observable change to the board, then
// returns a snapshot taken after that change. If ctx is canceled
// first, Watch deregisters itself and returns ctx.Err().
func (b *Board) Watch(ctx context.Context, playerID string) (string, error) {
	mustNonEmptyPlayerID(playerID)

	w := &watcher{ready: make(chan struct{})}
	b.lock.run(func() {
		b.watchers = append(b.watchers, w)
	})

	select {
	case <-w.ready:
	case <-ctx.Done():
		b.lock.run(func() {
			b.removeWatcher(w)
		})
		return "", ctx.Err()
	}

	var snap string
	b.lock.run(func() {
		snap = b.renderSnapshotLocked(playerID)
	})
	return snap, nil
}

// removeWatcher deregisters w if it hasn't already fired. Must be
// called with the lock held.
func (b *Board) removeWatcher(w *watcher) {
	for i, ww := range b.watchers {
		if ww == w {
			b.watchers = append(b.watchers[:i], b.watchers[i+1:]...)
			return
		}
	}
}
