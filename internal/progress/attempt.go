// internal/progress/attempt.go
//
// Attempt entity: one completed or failed play-through of a puzzle under a
// specific encoding variant. Attempts are immutable once logged.

package progress

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rohanluthra13/cryptogram/internal/game"
	"github.com/rohanluthra13/cryptogram/internal/puzzle"
)

// Attempt is one row of the append-only attempt ledger.
type Attempt struct {
	ID       uuid.UUID       `json:"attemptId"`
	PuzzleID uuid.UUID       `json:"puzzleId"`
	Encoding puzzle.Encoding `json:"encodingType"`

	// Exactly one of CompletedAt/FailedAt is set.
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	FailedAt    *time.Time `json:"failedAt,omitempty"`

	// CompletionTime is seconds from first input to completion; present only
	// on completed attempts.
	CompletionTime *float64 `json:"completionTime,omitempty"`

	Mode         string `json:"mode"`
	HintCount    int    `json:"hintCount"`
	MistakeCount int    `json:"mistakeCount"`
}

// Completed reports whether this attempt ended in a solve.
func (a Attempt) Completed() bool { return a.CompletedAt != nil }

// EndedAt is the attempt's terminal instant: completedAt when present,
// failedAt otherwise.
func (a Attempt) EndedAt() time.Time {
	if a.CompletedAt != nil {
		return *a.CompletedAt
	}
	if a.FailedAt != nil {
		return *a.FailedAt
	}
	return time.Time{}
}

// Validate enforces the ledger invariants before a row is written.
func (a Attempt) Validate() error {
	if a.PuzzleID == uuid.Nil {
		return errors.New("attempt missing puzzle id")
	}
	if (a.CompletedAt == nil) == (a.FailedAt == nil) {
		return errors.New("attempt needs exactly one of completedAt/failedAt")
	}
	if a.CompletionTime != nil && a.CompletedAt == nil {
		return errors.New("completionTime on a non-completed attempt")
	}
	return nil
}

// FromGame builds a loggable Attempt from a finished session. The session
// must be in a terminal state; at stamps the failure instant (completed
// sessions carry their own end time).
func FromGame(g *game.Game, at time.Time) (Attempt, error) {
	p := g.Puzzle()
	if p == nil {
		return Attempt{}, errors.New("no active puzzle")
	}
	a := Attempt{
		ID:           uuid.New(),
		PuzzleID:     p.ID,
		Encoding:     p.Encoding,
		Mode:         string(g.Mode()),
		HintCount:    g.HintCount(),
		MistakeCount: g.MistakeCount(),
	}
	switch {
	case g.IsComplete():
		end := g.EndTime()
		if end == nil {
			t := at.UTC()
			end = &t
		}
		a.CompletedAt = end
		a.CompletionTime = g.CompletionSeconds()
	case g.IsFailed():
		t := at.UTC()
		a.FailedAt = &t
	default:
		return Attempt{}, errors.New("session still in progress")
	}
	return a, nil
}
