package board

import "context"

// MapFunc rewrites a single card label. It must be a pure function of
// its argument: Map may invoke it concurrently with other board
// activity (by design, outside the lock), and the contract only holds
// if f has no side effects on the board itself. Calling back into the
// same Board from f is undefined behavior.
type MapFunc func(ctx context.Context, label string) (string, error)

type mapItem struct {
	pos   coord
	label string
}

// Map atomically rewrites every present label on the board through f
// and returns a snapshot from playerID's perspective. The compute
// phase (invoking f once per present card) runs without holding the
// lock so a slow or suspending f cannot block concurrent Flip/Look/
// Watch calls; the apply phase that writes the results back is a
// single locked section, so any concurrent observer sees either every
// pre-Map label or every post-Map label, never a mixture. A cell that
// became empty between the two phases (matched away by a concurrent
// Flip) is simply skipped in apply.
func (b *Board) Map(ctx context.Context, playerID string, f MapFunc) (string, error) {
	mustNonEmptyPlayerID(playerID)

	var toCompute []mapItem
	b.lock.run(func() {
		toCompute = make([]mapItem, 0, len(b.grid))
		for i := range b.grid {
			if b.grid[i].label != "" {
				toCompute = append(toCompute, mapItem{pos: b.coordAt(i), label: b.grid[i].label})
			}
		}
	})

	rewrites := make([]mapItem, 0, len(toCompute))
	for _, item := range toCompute {
		newLabel, err := f(ctx, item.label)
		if err != nil {
			return "", err
		}
		rewrites = append(rewrites, mapItem{pos: item.pos, label: newLabel})
	}

	var snap string
	b.lock.run(func() {
		for _, rw := range rewrites {
			c := b.cellAt(rw.pos)
			if c.label == "" {
				continue
			}
			c.label = rw.label
		}
		b.emitChange()
		snap = b.renderSnapshotLocked(playerID)
	})
	return snap, nil
}
