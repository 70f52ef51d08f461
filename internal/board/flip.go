package board

// flipOutcome is the sum type the inner critical section of Flip
// produces: an immediate result (ok or fail), a wait on a specific
// waiter, or a restart of the whole attempt. Matching it from outside
// the section that produced it keeps the suspension point (the wait
// case) the only place Flip gives up the lock.
type flipOutcome int

const (
	flipOK flipOutcome = iota
	flipFail
	flipWait
	flipRestart
)

type flipResult struct {
	outcome flipOutcome
	err     error
	waiter  *waiter
}

// Flip is the caller's attempt to take the next card of their current
// turn. Every call first finalizes the player's previous turn (match
// removal or mismatch hide), then attempts the requested flip,
// possibly queueing and suspending if the target cell is controlled
// by someone else. On success it returns a snapshot from playerID's
// perspective; on failure it returns one of ErrInvalidCoordinates,
// ErrNoCardHere, or ErrTargetControlled.
func (b *Board) Flip(playerID string, row, col int) (string, error) {
	mustNonEmptyPlayerID(playerID)

	b.lock.Lock()
	pr := b.getOrCreatePlayer(playerID)
	b.finalizePreviousTurn(pr)

	for {
		res := b.attemptFlip(pr, row, col)
		switch res.outcome {
		case flipOK:
			snap := b.renderSnapshotLocked(playerID)
			b.lock.Unlock()
			return snap, nil

		case flipFail:
			b.lock.Unlock()
			return "", res.err

		case flipRestart:
			// Only reachable if the same player id is driving two
			// concurrent Flip calls and the other one completed a
			// full turn while this one was re-entering the critical
			// section. Re-run finalize and try again.
			b.finalizePreviousTurn(pr)
			continue

		case flipWait:
			w := res.waiter
			b.lock.Unlock()
			<-w.ready
			b.lock.Lock()
			// If w.reserved, ownership of w.pos was already handed to
			// us while we slept; the attemptFirstCard fast path above
			// (c.controller == pr.id) picks this up on retry without
			// re-deriving it from scratch.
			continue
		}
	}
}

// finalizePreviousTurn processes whatever pr.controlled still holds
// from a prior Flip: a matched pair gets removed, a mismatched pair
// gets turned face down. Must be called with the lock held.
func (b *Board) finalizePreviousTurn(pr *playerRecord) {
	switch len(pr.controlled) {
	case 2:
		first, second := pr.controlled[0], pr.controlled[1]
		c0, c1 := b.cellAt(first), b.cellAt(second)
		if c0.label != "" && c1.label != "" && c0.label == c1.label {
			b.removeCell(first)
			b.removeCell(second)
			pr.controlled = pr.controlled[:0]
			b.wakeWaiter(first)
			b.wakeWaiter(second)
			b.emitChange()
			return
		}

		changed := false
		for _, pos := range [2]coord{first, second} {
			c := b.cellAt(pos)
			if c.label != "" && c.faceUp && c.controller == "" {
				c.faceUp = false
				changed = true
			}
		}
		pr.controlled = pr.controlled[:0]
		// Only wake a cell that is actually free at this point. The
		// first card may already have been reserved by a waiter back
		// when the mismatch was detected (attemptSecondCard's
		// immediate wake); re-waking it here would yank it away from
		// whoever already holds it.
		for _, pos := range [2]coord{first, second} {
			if b.cellAt(pos).controller == "" {
				b.wakeWaiter(pos)
			}
		}
		if changed {
			b.emitChange()
		}

	case 1:
		pos := pr.controlled[0]
		c := b.cellAt(pos)
		if c.controller == pr.id {
			// Still actively held as the first card of an in-progress
			// turn; nothing to finalize yet.
			return
		}
		if c.label != "" && c.faceUp {
			c.faceUp = false
			b.emitChange()
		}
		pr.controlled = pr.controlled[:0]
		b.wakeWaiter(pos)
	}
}

func (b *Board) removeCell(pos coord) {
	c := b.cellAt(pos)
	c.label = ""
	c.faceUp = false
	c.controller = ""
}

// attemptFlip is the current player's attempt at the next card of
// their turn. Must be called with the lock held; returns without
// releasing it.
func (b *Board) attemptFlip(pr *playerRecord, row, col int) flipResult {
	switch len(pr.controlled) {
	case 2:
		return flipResult{outcome: flipRestart}

	case 0:
		return b.attemptFirstCard(pr, row, col)

	default: // 1
		return b.attemptSecondCard(pr, row, col)
	}
}

func (b *Board) attemptFirstCard(pr *playerRecord, row, col int) flipResult {
	if !b.inBounds(row, col) {
		return flipResult{outcome: flipFail, err: newErrorf(KindInvalidCoordinates, "flip: (%d,%d) is outside the %dx%d board", row, col, b.rows, b.cols)}
	}
	pos := coord{row, col}
	c := b.cellAt(pos)

	if c.controller == pr.id {
		// A waiter wake already reserved this cell for us; finish the
		// acquisition without re-validating or re-emitting.
		pr.controlled = append(pr.controlled, pos)
		return flipResult{outcome: flipOK}
	}

	if c.label == "" {
		return flipResult{outcome: flipFail, err: newErrorf(KindNoCardHere, "flip: no card at (%d,%d)", row, col)}
	}

	if c.controller != "" {
		w := b.enqueueWaiter(pos, pr.id)
		return flipResult{outcome: flipWait, waiter: w}
	}

	c.faceUp = true
	c.controller = pr.id
	pr.controlled = append(pr.controlled, pos)
	b.emitChange()
	return flipResult{outcome: flipOK}
}

func (b *Board) attemptSecondCard(pr *playerRecord, row, col int) flipResult {
	first := pr.controlled[0]

	if !b.inBounds(row, col) {
		return flipResult{outcome: flipFail, err: newErrorf(KindInvalidCoordinates, "flip: (%d,%d) is outside the %dx%d board", row, col, b.rows, b.cols)}
	}
	pos := coord{row, col}
	c := b.cellAt(pos)

	if c.label == "" {
		b.relinquishFirstCard(first)
		return flipResult{outcome: flipFail, err: newErrorf(KindNoCardHere, "flip: no card at (%d,%d)", row, col)}
	}

	if c.faceUp && c.controller != "" {
		b.relinquishFirstCard(first)
		return flipResult{outcome: flipFail, err: newErrorf(KindTargetControlled, "flip: (%d,%d) is face-up and controlled by a player", row, col)}
	}

	c.faceUp = true
	c.controller = pr.id

	firstCell := b.cellAt(first)
	if firstCell.label != "" && firstCell.label == c.label {
		pr.controlled = append(pr.controlled, pos)
		b.emitChange()
		return flipResult{outcome: flipOK}
	}

	// Mismatch: both cards stay face-up but uncontrolled until this
	// player's next Flip finalizes them. The first card's waiters can
	// be served immediately; the second card's cannot, since it's
	// still effectively reserved for this player's own finalization.
	firstCell.controller = ""
	c.controller = ""
	pr.controlled = []coord{first, pos}
	b.emitChange()
	b.wakeWaiter(first)
	return flipResult{outcome: flipOK}
}

// relinquishFirstCard releases control of the first card without
// turning it face-down, without emitting a change event, and without
// waking its waiters; waiter wake-up for this cell is deferred to this
// player's next Flip's finalize step. Must be called with the lock
// held.
func (b *Board) relinquishFirstCard(pos coord) {
	b.cellAt(pos).controller = ""
}
