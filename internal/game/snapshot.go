// internal/game/snapshot.go
//
// Session snapshots: the per-cell and session state that the daily
// coordinator persists and restores. Error flags and pending clears are
// transient and deliberately not part of a snapshot.

package game

import (
	"strings"
	"time"
)

// Snapshot captures restorable session state. JSON field names are the
// persisted wire format of the daily progress blobs.
type Snapshot struct {
	UserInputs   []string   `json:"userInputs"`
	PreFilled    []bool     `json:"preFilled"`
	Revealed     []bool     `json:"revealed"`
	HintCount    int        `json:"hintCount"`
	MistakeCount int        `json:"mistakeCount"`
	StartTime    *time.Time `json:"startTime,omitempty"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	Completed    bool       `json:"isCompleted"`
}

// Snapshot captures the current session. Safe to serialize as-is.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		UserInputs:   make([]string, len(g.cells)),
		PreFilled:    make([]bool, len(g.cells)),
		Revealed:     make([]bool, len(g.cells)),
		HintCount:    g.hintCount,
		MistakeCount: g.mistakeCount,
		StartTime:    copyTime(g.startTime),
		EndTime:      copyTime(g.endTime),
		Completed:    g.complete,
	}
	for i, c := range g.cells {
		s.UserInputs[i] = c.UserInput
		s.PreFilled[i] = c.IsPreFilled
		s.Revealed[i] = c.IsRevealed
	}
	return s
}

// RestoreSnapshot overwrites the session with previously saved state. The
// snapshot must describe a grid of the same size as the puzzle in play;
// mismatched snapshots are refused so a stale blob can never corrupt a
// different puzzle. Completion state is taken from the snapshot verbatim,
// never re-derived, so restoring cannot move an endTime.
func (g *Game) RestoreSnapshot(s Snapshot) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(s.UserInputs) != len(g.cells) {
		return false
	}
	g.cancelAllClears()
	g.gen++

	applyFlags := len(s.PreFilled) == len(g.cells) && len(s.Revealed) == len(g.cells)
	for i := range g.cells {
		c := &g.cells[i]
		c.IsError = false
		c.WasJustFilled = false
		if c.IsSymbol {
			continue
		}
		c.UserInput = strings.ToUpper(s.UserInputs[i])
		if applyFlags {
			c.IsPreFilled = s.PreFilled[i]
			c.IsRevealed = s.Revealed[i]
		}
	}
	g.hintCount = s.HintCount
	g.mistakeCount = s.MistakeCount
	g.startTime = copyTime(s.StartTime)
	g.endTime = copyTime(s.EndTime)
	g.pausedAt = nil
	g.complete = s.Completed
	g.failed = false
	g.recomputeCompletedLetters()
	return true
}
