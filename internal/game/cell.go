// internal/game/cell.go
//
// Cell type definitions for the cryptogram engine.
// Defines:
//   - Cell: one character slot of the active puzzle.
//   - Derived predicates used by navigation and completion checks.

package game

// Cell is one character slot of the puzzle grid. Cells are built when a
// puzzle starts, mutated during play, and discarded wholesale when the next
// puzzle starts.
type Cell struct {
	Position     int    // index into the cell array
	EncodedChar  string // encoded token shown to the player ("Q" or "17"); the separator itself for symbol cells
	SolutionChar string // uppercase solution character; "" for symbol cells
	IsSymbol     bool   // non-alphanumeric separator, never selectable or editable

	UserInput   string // "" or exactly one uppercase character
	IsRevealed  bool   // filled by a hint
	IsPreFilled bool   // filled at puzzle start (assisted mode), never cleared by play
	IsError     bool   // transient: wrong entry awaiting its timed clear

	WasJustFilled bool // transient animation flag, cleared before the next mutation
}

// IsCorrect reports whether the player input matches the solution.
// Symbol cells never count as correct; they carry no solution character.
func (c Cell) IsCorrect() bool {
	return !c.IsSymbol && c.UserInput != "" && c.UserInput == c.SolutionChar
}

// NeedsInput reports whether navigation may land on this cell: it must be a
// letter cell that is not revealed, not pre-filled, and not already solved.
func (c Cell) NeedsInput() bool {
	return !c.IsSymbol && !c.IsRevealed && !c.IsPreFilled && !c.IsCorrect()
}

// locked cells ignore input and delete: the player never edits a separator,
// a revealed answer, or an assisted pre-fill.
func (c Cell) locked() bool {
	return c.IsSymbol || c.IsRevealed || c.IsPreFilled
}
