package board

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineOf(t *testing.T, snapshot string, index int) string {
	t.Helper()
	lines := strings.Split(snapshot, "\n")
	require.Greater(t, len(lines), index)
	return lines[index]
}

func TestFlip_MatchThenNextTurn(t *testing.T) {
	b := classicBoard(t)

	snap, err := b.Flip("alice", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "my A", lineOf(t, snap, 1))

	snap, err = b.Flip("alice", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, "my A", lineOf(t, snap, 1))
	assert.Equal(t, "my A", lineOf(t, snap, 3))

	snap, err = b.Flip("alice", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "none", lineOf(t, snap, 1))
	assert.Equal(t, "none", lineOf(t, snap, 3))
	assert.Equal(t, "my B", lineOf(t, snap, 4))
}

func TestFlip_InvalidCoordinates(t *testing.T) {
	b := classicBoard(t)
	_, err := b.Flip("alice", -1, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)

	_, err = b.Flip("alice", 0, 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}

func TestFlip_NoCardHereOnRemovedCell(t *testing.T) {
	b := classicBoard(t)
	_, err := b.Flip("alice", 0, 0)
	require.NoError(t, err)
	_, err = b.Flip("alice", 0, 2) // match, removes (0,0) and (0,2)
	require.NoError(t, err)

	// Finalization of the match happens lazily at alice's next Flip.
	_, err = b.Flip("alice", 1, 1)
	require.NoError(t, err)

	_, err = b.Flip("bob", 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCardHere)
}

func TestFlip_TargetControlledThenRelinquishDeferred(t *testing.T) {
	b := classicBoard(t)
	_, err := b.Flip("alice", 0, 0) // alice holds (0,0)
	require.NoError(t, err)

	_, err = b.Flip("bob", 0, 1) // bob's first card, unrelated cell
	require.NoError(t, err)

	_, err = b.Flip("bob", 0, 0) // bob's second card targets alice's cell
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTargetControlled)

	// bob's first card (0,1) is relinquished but left face-up, pending
	// finalization at his next Flip.
	snap := b.Look("bob")
	assert.Equal(t, "up B", lineOf(t, snap, 2))
}

// TestFlip_WaiterFailsNoCardHereAfterMatch covers a waiter queued on a
// cell that gets matched away: it fails its retry with NoCardHere
// once woken.
func TestFlip_WaiterFailsNoCardHereAfterMatch(t *testing.T) {
	b := classicBoard(t)

	_, err := b.Flip("alice", 0, 0)
	require.NoError(t, err)

	bobDone := make(chan struct{})
	var bobErr error
	go func() {
		defer close(bobDone)
		_, bobErr = b.Flip("bob", 0, 0)
	}()

	waitUntilWaiterQueued(t, b, coord{0, 0})

	_, err = b.Flip("alice", 2, 2) // match with (0,0)
	require.NoError(t, err)
	_, err = b.Flip("alice", 1, 1) // finalizes the match, removing (0,0) and (2,2)
	require.NoError(t, err)

	select {
	case <-bobDone:
	case <-time.After(2 * time.Second):
		t.Fatal("bob's Flip never resumed")
	}
	require.Error(t, bobErr)
	assert.ErrorIs(t, bobErr, ErrNoCardHere)
}

// TestFlip_WaiterWokenWithReservedOwnershipOnMismatch covers a single
// queued waiter that gets handed ownership of the first card the
// instant the holder mismatches, without needing to re-acquire it.
func TestFlip_WaiterWokenWithReservedOwnershipOnMismatch(t *testing.T) {
	b := classicBoard(t)

	_, err := b.Flip("alice", 0, 0)
	require.NoError(t, err)

	bobDone := make(chan struct{})
	var bobSnap string
	var bobErr error
	go func() {
		defer close(bobDone)
		bobSnap, bobErr = b.Flip("bob", 0, 0)
	}()

	waitUntilWaiterQueued(t, b, coord{0, 0})

	_, err = b.Flip("alice", 1, 0) // mismatch A vs B; wakes bob on (0,0)
	require.NoError(t, err)

	select {
	case <-bobDone:
	case <-time.After(2 * time.Second):
		t.Fatal("bob's Flip never resumed")
	}
	require.NoError(t, bobErr)
	assert.Equal(t, "my A", lineOf(t, bobSnap, 1))
}

// TestFlip_OnlyOneOfTwoWaitersWakesOnMismatch covers two waiters
// queued on the same cell: a single mismatch wakes exactly one of
// them, and the other keeps waiting until the new holder itself
// releases the cell.
func TestFlip_OnlyOneOfTwoWaitersWakesOnMismatch(t *testing.T) {
	b := classicBoard(t, WithWaiterPolicy(WaiterPolicyFIFO))

	_, err := b.Flip("alice", 0, 0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan struct {
		player string
		err    error
		done   chan struct{}
	}, 2)

	startWaiter := func(player string) chan struct{} {
		done := make(chan struct{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.Flip(player, 0, 0)
			results <- struct {
				player string
				err    error
				done   chan struct{}
			}{player, err, done}
		}()
		return done
	}

	_ = startWaiter("bob")
	waitUntilWaiterCount(t, b, coord{0, 0}, 1)
	_ = startWaiter("carol")
	waitUntilWaiterCount(t, b, coord{0, 0}, 2)

	_, err = b.Flip("alice", 1, 0) // mismatch, wakes exactly one waiter (FIFO: bob)
	require.NoError(t, err)

	select {
	case res := <-results:
		assert.Equal(t, "bob", res.player)
		require.NoError(t, res.err)
	case <-time.After(2 * time.Second):
		t.Fatal("no waiter resumed after mismatch")
	}

	// carol should still be queued; confirm no second result arrives
	// promptly.
	select {
	case <-results:
		t.Fatal("a second waiter resumed, but only one should have")
	case <-time.After(100 * time.Millisecond):
	}

	waitUntilWaiterCount(t, b, coord{0, 0}, 1)

	// Alice finalizing her pending second card does not disturb (0,0):
	// bob now legitimately holds it, so carol must keep waiting.
	_, err = b.Flip("alice", 2, 2)
	require.NoError(t, err)

	select {
	case <-results:
		t.Fatal("carol resumed before bob released (0,0)")
	case <-time.After(100 * time.Millisecond):
	}

	// Only when bob himself relinquishes (0,0) — by mismatching his own
	// second card — does carol finally get a shot at it.
	_, err = b.Flip("bob", 1, 1) // A vs C: mismatch, wakes carol on (0,0)
	require.NoError(t, err)

	select {
	case res := <-results:
		assert.Equal(t, "carol", res.player)
		require.NoError(t, res.err)
	case <-time.After(2 * time.Second):
		t.Fatal("carol never resumed")
	}

	wg.Wait()
}

func TestFlip_SamePlayerConcurrentFlipRestarts(t *testing.T) {
	// Two goroutines driving the same player id concurrently must not
	// deadlock; attemptFlip's flipRestart path exists for exactly this
	// edge case.
	b := classicBoard(t)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.Flip("shared", 0, 0)
	}()
	go func() {
		defer wg.Done()
		b.Flip("shared", 0, 1)
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("concurrent same-player Flip calls deadlocked")
	}
}

func waitUntilWaiterQueued(t *testing.T, b *Board, pos coord) {
	t.Helper()
	waitUntilWaiterCount(t, b, pos, 1)
}

func waitUntilWaiterCount(t *testing.T, b *Board, pos coord, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var count int
		b.lock.run(func() {
			count = len(b.waiters[pos])
		})
		if count >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d waiter(s) on %v", n, pos)
}
