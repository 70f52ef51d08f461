// Package board implements the concurrent Memory Scramble board: a
// shared grid of face-down cards that any number of players flip in
// pairs, looking for matching labels.
package board

import (
	"math/rand"
	"time"

	"github.com/decred/slog"
)

// coord is a zero-based (row, column) position on the grid.
type coord struct {
	r, c int
}

// cell is one grid position. label == "" means the card has been
// matched and removed; the position stays in the grid but carries no
// card.
type cell struct {
	label      string
	faceUp     bool
	controller string
}

// playerRecord tracks a single player's progress through their
// current turn. controlled holds 0, 1, or 2 positions: a length-2 list
// always represents a turn pending finalization (match or mismatch)
// at the start of that player's next Flip.
type playerRecord struct {
	id         string
	controlled []coord
}

// WaiterPolicy selects how a cell's waiter queue picks the next
// acquirer when its controller relinquishes it. See waiters.go.
type WaiterPolicy int

const (
	// WaiterPolicyRandom picks a uniformly random queued waiter. This
	// is the default: it trades strict fairness for resistance to a
	// single player pathologically starving everyone else by always
	// flipping first.
	WaiterPolicyRandom WaiterPolicy = iota
	// WaiterPolicyFIFO wakes the longest-queued waiter first.
	WaiterPolicyFIFO
)

// Option configures a Board at construction time.
type Option func(*Board)

// WithWaiterPolicy overrides the default random waiter selection.
func WithWaiterPolicy(p WaiterPolicy) Option {
	return func(b *Board) { b.policy = p }
}

// WithLogger attaches a logger; defaults to slog.Disabled.
func WithLogger(log slog.Logger) Option {
	return func(b *Board) { b.log = log }
}

// WithRandSource pins the waiter-selection RNG to a deterministic
// seed, for reproducible tests.
func WithRandSource(seed int64) Option {
	return func(b *Board) { b.rng = rand.New(rand.NewSource(seed)) }
}

// Board is the shared, mutex-guarded grid of cards plus the per-player
// turn state, waiter queues, and watcher subscriptions layered on top
// of it. All exported methods are safe for concurrent use by any
// number of goroutines.
type Board struct {
	lock asyncLock

	rows, cols int
	grid       []cell

	players map[string]*playerRecord
	waiters map[coord][]*waiter

	watchers []*watcher

	policy WaiterPolicy
	rng    *rand.Rand
	log    slog.Logger
}

// New constructs a board directly from a row-major label slice. Every
// label must be non-empty and len(labels) must equal rows*cols.
func New(rows, cols int, labels []string, opts ...Option) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, newErrorf(KindLengthMismatch, "board: rows and cols must be positive, got %dx%d", rows, cols)
	}
	if len(labels) != rows*cols {
		return nil, newErrorf(KindLengthMismatch, "board: expected %d labels for a %dx%d board, got %d", rows*cols, rows, cols, len(labels))
	}
	grid := make([]cell, rows*cols)
	for i, label := range labels {
		if label == "" {
			return nil, newErrorf(KindLengthMismatch, "board: label at index %d is empty", i)
		}
		grid[i] = cell{label: label}
	}

	b := &Board{
		rows:    rows,
		cols:    cols,
		grid:    grid,
		players: make(map[string]*playerRecord),
		waiters: make(map[coord][]*waiter),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     slog.Disabled,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Rows reports the board's fixed row count.
func (b *Board) Rows() int { return b.rows }

// Cols reports the board's fixed column count.
func (b *Board) Cols() int { return b.cols }

func (b *Board) index(pos coord) int { return pos.r*b.cols + pos.c }

func (b *Board) cellAt(pos coord) *cell { return &b.grid[b.index(pos)] }

func (b *Board) coordAt(i int) coord { return coord{r: i / b.cols, c: i % b.cols} }

func (b *Board) inBounds(r, c int) bool {
	return r >= 0 && r < b.rows && c >= 0 && c < b.cols
}

// getOrCreatePlayer lazily initializes a player's turn record the
// first time they call Flip; Look, Map and Watch never create one.
// Must be called with the lock held.
func (b *Board) getOrCreatePlayer(id string) *playerRecord {
	pr, ok := b.players[id]
	if !ok {
		pr = &playerRecord{id: id}
		b.players[id] = pr
	}
	return pr
}

func mustNonEmptyPlayerID(id string) {
	if id == "" {
		panic("board: player id must not be empty")
	}
}

// emitChange wakes every currently registered watcher. Must be called
// with the lock held. The watcher list is reset; resolved watchers
// re-subscribe by calling Watch again.
func (b *Board) emitChange() {
	for _, w := range b.watchers {
		close(w.ready)
	}
	b.watchers = b.watchers[:0]
}
