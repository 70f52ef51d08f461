package board

import (
	"fmt"
	"strings"
)

// Look returns a snapshot of the board from playerID's point of view.
// It never mutates state and never fails except on a programmer error
// (empty playerID).
func (b *Board) Look(playerID string) string {
	mustNonEmptyPlayerID(playerID)
	var snap string
	b.lock.run(func() {
		snap = b.renderSnapshotLocked(playerID)
	})
	return snap
}

// renderSnapshotLocked builds the canonical text snapshot. Must be
// called with the lock held so the read is atomic with respect to all
// other operations.
func (b *Board) renderSnapshotLocked(playerID string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d\n", b.rows, b.cols)
	for i := range b.grid {
		c := &b.grid[i]
		switch {
		case c.label == "":
			sb.WriteString("none\n")
		case !c.faceUp:
			sb.WriteString("down\n")
		case c.controller == playerID:
			sb.WriteString("my ")
			sb.WriteString(c.label)
			sb.WriteByte('\n')
		default:
			sb.WriteString("up ")
			sb.WriteString(c.label)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
