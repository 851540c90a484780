// Package catalog resolves puzzles from the quotes content database.
package catalog

import (
	"context"
	"errors"

	"github.com/rohanluthra13/cryptogram/internal/puzzle"
)

// ErrNotFound reports that no puzzle matched the lookup.
var ErrNotFound = errors.New("catalog: puzzle not found")

// RandomOptions narrows a random draw.
type RandomOptions struct {
	Encoding puzzle.Encoding

	// Difficulties filters the draw; empty means any difficulty.
	Difficulties []puzzle.Difficulty

	// ExcludeQuoteID keeps the current quote out of "next puzzle" draws.
	// Zero excludes nothing.
	ExcludeQuoteID int64
}

// Catalog is the read side of the content database.
type Catalog interface {
	RandomPuzzle(ctx context.Context, opts RandomOptions) (*puzzle.Puzzle, error)
	PuzzleByQuote(ctx context.Context, quoteID int64, enc puzzle.Encoding) (*puzzle.Puzzle, error)
	DailyPuzzle(ctx context.Context, date string, enc puzzle.Encoding) (*puzzle.Puzzle, error)
}
