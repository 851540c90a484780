package game

import (
	"testing"
	"time"
)

func TestInputLetterCorrect(t *testing.T) {
	clk := newFakeClock()
	g := newTestGame(t, Options{Clock: clk.Now})

	if !g.InputLetter("t", 0) {
		t.Fatal("lowercase correct letter rejected")
	}
	c, _ := g.Cell(0)
	if c.UserInput != "T" {
		t.Errorf("input not normalized to uppercase: %q", c.UserInput)
	}
	if c.IsError {
		t.Error("error flag set on correct entry")
	}
	if !c.WasJustFilled {
		t.Error("wasJustFilled not set on fill")
	}
	if g.StartTime() == nil {
		t.Error("timer not started on first accepted input")
	}
	if got := g.Selected(); got != 1 {
		t.Errorf("selection = %d, want 1 (advanced)", got)
	}
}

func TestInputLetterRejections(t *testing.T) {
	g := newTestGame(t, Options{})

	cases := []struct {
		name  string
		char  string
		index int
	}{
		{"symbol cell", "T", 3},
		{"out of bounds", "T", 99},
		{"negative index", "T", -1},
		{"digit", "5", 0},
		{"two characters", "TH", 0},
		{"empty string", "", 0},
		{"punctuation", "!", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if g.InputLetter(tc.char, tc.index) {
				t.Fatal("keystroke accepted")
			}
		})
	}
	if g.StartTime() != nil {
		t.Error("rejected input started the timer")
	}
	if g.MistakeCount() != 0 {
		t.Error("rejected input counted a mistake")
	}
}

func TestWrongEntryScenario(t *testing.T) {
	g := newTestGame(t, Options{ErrorClearDelay: 10 * time.Millisecond})

	if !g.InputLetter("X", 0) {
		t.Fatal("wrong entry rejected")
	}
	c, _ := g.Cell(0)
	if !c.IsError {
		t.Error("error flag not set")
	}
	if c.UserInput != "X" {
		t.Errorf("wrong value not visible: %q", c.UserInput)
	}
	if got := g.MistakeCount(); got != 1 {
		t.Errorf("mistakes = %d, want 1", got)
	}

	time.Sleep(150 * time.Millisecond)
	c, _ = g.Cell(0)
	if c.UserInput != "" {
		t.Errorf("wrong entry not auto-cleared: %q", c.UserInput)
	}
	if c.IsError {
		t.Error("error flag survived the auto-clear")
	}
}

func TestMistakeNotDoubleCounted(t *testing.T) {
	g := newTestGame(t, Options{ErrorClearDelay: time.Hour})

	g.InputLetter("X", 0)
	g.InputLetter("Y", 0) // still wrong, cell not empty: no second mistake
	if got := g.MistakeCount(); got != 1 {
		t.Errorf("mistakes = %d, want 1", got)
	}
	c, _ := g.Cell(0)
	if c.UserInput != "Y" {
		t.Errorf("second wrong entry not written: %q", c.UserInput)
	}

	// After the cell empties, a new wrong entry is a distinct mistake.
	g.HandleDelete(0)
	g.InputLetter("Z", 0)
	if got := g.MistakeCount(); got != 2 {
		t.Errorf("mistakes = %d, want 2", got)
	}
}

func TestCorrectEntryCancelsPendingClear(t *testing.T) {
	g := newTestGame(t, Options{ErrorClearDelay: 20 * time.Millisecond})

	g.InputLetter("X", 0)
	if !g.InputLetter("T", 0) {
		t.Fatal("correction rejected")
	}
	time.Sleep(100 * time.Millisecond)
	c, _ := g.Cell(0)
	if c.UserInput != "T" {
		t.Errorf("pending clear stomped the correction: %q", c.UserInput)
	}
}

func TestDeleteCancelsPendingClear(t *testing.T) {
	g := newTestGame(t, Options{ErrorClearDelay: 20 * time.Millisecond})

	g.InputLetter("X", 0)
	g.HandleDelete(0)
	g.InputLetter("H", 0) // wrong for cell 0; mistake 2 with its own timer
	time.Sleep(100 * time.Millisecond)

	c, _ := g.Cell(0)
	if c.UserInput != "" {
		t.Errorf("cell not cleared by second timer: %q", c.UserInput)
	}
	if got := g.MistakeCount(); got != 2 {
		t.Errorf("mistakes = %d, want 2", got)
	}
}

func TestStartPuzzleCancelsPendingClears(t *testing.T) {
	g := newTestGame(t, Options{ErrorClearDelay: 20 * time.Millisecond})

	g.InputLetter("X", 0)
	if err := g.StartPuzzle(testPuzzle(t), ModeNormal); err != nil {
		t.Fatalf("StartPuzzle: %v", err)
	}
	g.InputLetter("T", 0)
	time.Sleep(100 * time.Millisecond)

	c, _ := g.Cell(0)
	if c.UserInput != "T" {
		t.Errorf("stale timer from previous puzzle cleared the cell: %q", c.UserInput)
	}
}

func TestSelectCell(t *testing.T) {
	g := newTestGame(t, Options{})

	if !g.SelectCell(4) {
		t.Fatal("valid selection rejected")
	}
	if g.Selected() != 4 {
		t.Errorf("selected = %d, want 4", g.Selected())
	}
	if g.SelectCell(3) {
		t.Error("symbol cell selectable")
	}
	if g.SelectCell(42) {
		t.Error("out-of-bounds selectable")
	}
	if g.Selected() != 4 {
		t.Errorf("rejected selection moved the cursor to %d", g.Selected())
	}
}

func TestNavigationSkipsSettledCells(t *testing.T) {
	g := newTestGame(t, Options{})

	g.InputLetter("H", 1) // solve cell 1
	g.RevealCell(2)       // reveal cell 2; selection advances to 4

	g.SelectCell(0)
	if !g.MoveToNextCell() {
		t.Fatal("MoveToNextCell found nothing")
	}
	// 1 is solved, 2 is revealed, 3 is a symbol: next open cell is 4.
	if got := g.Selected(); got != 4 {
		t.Errorf("selected = %d, want 4", got)
	}
}

func TestNavigationBoundaryStops(t *testing.T) {
	g := newTestGame(t, Options{})

	g.SelectCell(6)
	if g.MoveToNextCell() {
		t.Error("moved forward past the last cell")
	}
	if got := g.Selected(); got != 6 {
		t.Errorf("selection moved at boundary: %d", got)
	}

	g.SelectCell(0)
	if g.MoveToAdjacentCell(Backward) {
		t.Error("moved backward past the first cell")
	}
	if got := g.Selected(); got != 0 {
		t.Errorf("selection moved at boundary: %d", got)
	}
}

func TestMoveBackward(t *testing.T) {
	g := newTestGame(t, Options{})

	g.SelectCell(4)
	if !g.MoveToAdjacentCell(Backward) {
		t.Fatal("backward move rejected")
	}
	// 3 is a symbol; lands on 2.
	if got := g.Selected(); got != 2 {
		t.Errorf("selected = %d, want 2", got)
	}
}

func TestHandleDelete(t *testing.T) {
	g := newTestGame(t, Options{})

	g.InputLetter("T", 0)
	if !g.HandleDelete(0) {
		t.Fatal("delete rejected")
	}
	c, _ := g.Cell(0)
	if c.UserInput != "" {
		t.Errorf("cell not cleared: %q", c.UserInput)
	}

	// Negative index targets the selected cell.
	g.SelectCell(4)
	g.InputLetter("D", 4)
	g.SelectCell(4)
	if !g.HandleDelete(-1) {
		t.Fatal("delete via selection rejected")
	}
	c, _ = g.Cell(4)
	if c.UserInput != "" {
		t.Errorf("selected cell not cleared: %q", c.UserInput)
	}

	if g.HandleDelete(3) {
		t.Error("symbol cell deletable")
	}
}

func TestDeleteSparesLockedCells(t *testing.T) {
	g := newTestGame(t, Options{})

	g.RevealCell(0)
	if g.HandleDelete(0) {
		t.Error("revealed cell deletable")
	}

	assisted := New(Options{})
	if err := assisted.StartPuzzle(testPuzzle(t), ModeAssisted); err != nil {
		t.Fatalf("StartPuzzle: %v", err)
	}
	defer assisted.Close()
	for i, c := range assisted.Cells() {
		if c.IsPreFilled {
			if assisted.HandleDelete(i) {
				t.Errorf("pre-filled cell %d deletable", i)
			}
		}
	}
}

func TestInputIgnoredWhenLocked(t *testing.T) {
	g := newTestGame(t, Options{})

	g.RevealCell(0)
	if g.InputLetter("X", 0) {
		t.Error("input accepted into a revealed cell")
	}
	if g.MistakeCount() != 0 {
		t.Error("mistake counted against a revealed cell")
	}
}

func TestInputRejectedAfterCompletion(t *testing.T) {
	g := newTestGame(t, Options{})
	solve(t, g)

	if g.InputLetter("X", 0) {
		t.Error("input accepted after completion")
	}
	if g.HandleDelete(0) {
		t.Error("delete accepted after completion")
	}
	if g.RevealCell(-1) {
		t.Error("reveal accepted after completion")
	}
}

func TestWasJustFilledClearedByNextMutation(t *testing.T) {
	g := newTestGame(t, Options{})

	g.InputLetter("T", 0)
	g.InputLetter("H", 1)

	c0, _ := g.Cell(0)
	c1, _ := g.Cell(1)
	if c0.WasJustFilled {
		t.Error("cell 0 flag survived the next mutation")
	}
	if !c1.WasJustFilled {
		t.Error("cell 1 flag not set by its own fill")
	}
}
