// internal/game/input.go
//
// Input controller: turns a validated keystroke into a cell mutation plus
// selection advance. Invalid input is rejected silently; nothing here
// returns an error.
//
// Wrong entries are cleared back to empty after a short delay. The pending
// clear is a cancellable timer keyed by cell index with cancel-and-replace
// semantics: correcting or deleting the cell first must stop the clear from
// firing retroactively over a newer value.

package game

import (
	"strings"
	"time"
	"unicode"
)

// Direction moves selection through the grid.
type Direction int

const (
	Forward  Direction = 1
	Backward Direction = -1
)

// InputLetter enters one character into the target cell. The character must
// be exactly one letter (case-insensitive, normalized to uppercase); the
// target must be an editable letter cell. The session timer starts on the
// first accepted input.
//
// A correct entry fills the cell and advances selection. A wrong entry sets
// the error flag, counts one mistake if the cell was previously empty, and
// schedules the timed clear. Returns whether the keystroke was accepted.
func (g *Game) InputLetter(char string, index int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.complete || g.failed {
		return false
	}
	if index < 0 || index >= len(g.cells) {
		return false
	}
	c := g.cells[index]
	if c.locked() {
		return false
	}
	letter, ok := normalizeLetter(char)
	if !ok {
		return false
	}

	g.startTimerLocked()

	if letter == c.SolutionChar {
		g.updateCellLocked(index, letter, false, false)
		g.advanceSelectionFrom(index)
		return true
	}

	wasEmpty := c.UserInput == ""
	g.updateCellLocked(index, letter, false, true)
	if wasEmpty {
		// One mistake per distinct wrong entry: re-typing over a cell that
		// is already wrong does not double-count.
		g.mistakeCount++
		if g.maxMistakes > 0 && g.mistakeCount >= g.maxMistakes {
			g.failed = true
			g.cancelAllClears()
			return true
		}
	}
	g.scheduleClear(index, letter)
	return true
}

// SelectCell moves selection. No-op for symbol cells and out-of-bounds.
func (g *Game) SelectCell(index int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if index < 0 || index >= len(g.cells) || g.cells[index].IsSymbol {
		return false
	}
	g.selected = index
	return true
}

// MoveToNextCell advances selection forward to the next cell that still
// needs player action. At the end of the grid, selection stays put.
func (g *Game) MoveToNextCell() bool {
	return g.MoveToAdjacentCell(Forward)
}

// MoveToAdjacentCell walks from the current selection in the given
// direction, skipping symbol, revealed, pre-filled, and solved cells.
// No wraparound: at a boundary the selection does not move.
func (g *Game) MoveToAdjacentCell(dir Direction) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if dir != Forward && dir != Backward {
		return false
	}
	start := g.selected
	if start < 0 {
		// Nothing selected yet: land on the first/last open cell.
		if dir == Forward {
			start = -1
		} else {
			start = len(g.cells)
		}
	}
	for i := start + int(dir); i >= 0 && i < len(g.cells); i += int(dir) {
		if g.cells[i].NeedsInput() {
			g.selected = i
			return true
		}
	}
	return false
}

// HandleDelete clears the player's entry in the targeted cell, or in the
// selected cell when index is negative. Pre-filled and revealed cells are
// never cleared by play.
func (g *Game) HandleDelete(index int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.complete || g.failed {
		return false
	}
	if index < 0 {
		index = g.selected
	}
	if index < 0 || index >= len(g.cells) {
		return false
	}
	if g.cells[index].locked() {
		return false
	}
	g.updateCellLocked(index, "", false, false)
	return true
}

// advanceSelectionFrom moves selection to the next open cell after index,
// leaving it unchanged when none remains.
func (g *Game) advanceSelectionFrom(index int) {
	for i := index + 1; i < len(g.cells); i++ {
		if g.cells[i].NeedsInput() {
			g.selected = i
			return
		}
	}
}

/* --------------------------- timed error clear --------------------------- */

// scheduleClear arms the delayed clear for a wrong entry. An existing timer
// for the same cell was already cancelled by updateCellLocked, so this is
// always a fresh arm.
func (g *Game) scheduleClear(index int, wrong string) {
	gen := g.gen
	g.pendingClears[index] = time.AfterFunc(g.clearDelay, func() {
		g.clearWrongEntry(index, wrong, gen)
	})
}

// clearWrongEntry runs on the timer goroutine. The generation and value
// checks make a stale fire harmless: if the puzzle changed, or the cell was
// corrected, deleted, or overwritten meanwhile, nothing happens.
func (g *Game) clearWrongEntry(index int, wrong string, gen int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen {
		return
	}
	delete(g.pendingClears, index)
	if index < 0 || index >= len(g.cells) {
		return
	}
	c := &g.cells[index]
	if !c.IsError || c.UserInput != wrong {
		return
	}
	c.UserInput = ""
	c.IsError = false
}

func (g *Game) cancelClear(index int) {
	if t, ok := g.pendingClears[index]; ok {
		t.Stop()
		delete(g.pendingClears, index)
	}
}

func (g *Game) cancelAllClears() {
	for i, t := range g.pendingClears {
		t.Stop()
		delete(g.pendingClears, i)
	}
}

func normalizeLetter(s string) (string, bool) {
	runes := []rune(s)
	if len(runes) != 1 || !unicode.IsLetter(runes[0]) {
		return "", false
	}
	return strings.ToUpper(s), true
}
