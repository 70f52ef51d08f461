package board

import (
	"io"

	"github.com/vctt94/memoryboard/internal/boardfile"
)

// NewFromReader parses a board description and constructs the board
// from it.
func NewFromReader(r io.Reader, opts ...Option) (*Board, error) {
	rows, cols, labels, err := boardfile.Parse(r)
	if err != nil {
		return nil, newErrorf(KindParseError, "board: %v", err)
	}
	return New(rows, cols, labels, opts...)
}
