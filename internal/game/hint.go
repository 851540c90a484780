// internal/game/hint.go
//
// Hint controller: reveals one cell per request. Target resolution order is
// explicit index, then the selected cell, then the first open empty cell.

package game

// RevealCell writes the correct character into the target cell and marks it
// revealed. Pass a negative index to let the game pick the target. Revealing
// an already-revealed cell is a no-op, so the hint counter increments
// exactly once per distinct reveal. Selection advances to the next open cell
// afterwards. Returns whether a cell was revealed.
func (g *Game) RevealCell(index int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.complete || g.failed {
		return false
	}

	target := -1
	switch {
	case index >= 0:
		if index >= len(g.cells) {
			return false
		}
		if c := g.cells[index]; c.IsSymbol || c.IsRevealed || c.IsPreFilled {
			return false
		}
		target = index
	case g.selected >= 0 && g.selected < len(g.cells) && revealable(g.cells[g.selected]):
		target = g.selected
	default:
		for i, c := range g.cells {
			if revealable(c) && c.UserInput == "" {
				target = i
				break
			}
		}
	}
	if target < 0 {
		return false
	}

	g.startTimerLocked()
	g.updateCellLocked(target, g.cells[target].SolutionChar, true, false)
	g.hintCount++
	g.advanceSelectionFrom(target)
	return true
}

func revealable(c Cell) bool {
	return !c.IsSymbol && !c.IsRevealed && !c.IsPreFilled
}
