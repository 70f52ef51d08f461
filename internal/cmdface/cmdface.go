// Package cmdface is the command façade: four functions that
// delegate one-to-one to the Board's public operations, re-exported
// with fixed signatures for callers (CLI tools, RPC handlers) that
// want a plain function rather than a method value.
package cmdface

import (
	"context"

	"github.com/vctt94/memoryboard/internal/board"
)

// Look delegates to (*board.Board).Look.
func Look(b *board.Board, playerID string) string {
	return b.Look(playerID)
}

// Flip delegates to (*board.Board).Flip.
func Flip(b *board.Board, playerID string, row, col int) (string, error) {
	return b.Flip(playerID, row, col)
}

// Map delegates to (*board.Board).Map.
func Map(b *board.Board, playerID string, f board.MapFunc) (string, error) {
	return b.Map(context.Background(), playerID, f)
}

// Watch delegates to (*board.Board).Watch.
func Watch(ctx context.Context, b *board.Board, playerID string) (string, error) {
	return b.Watch(ctx, playerID)
}
