// internal/game/game.go
//
// Game state machine for a single cryptogram session.
// Responsibilities:
//   - Own the cell grid and session metadata (timer, mistakes, hints, pause).
//   - Build cells from a puzzle, with deterministic assisted-mode pre-fill.
//   - Detect completion (monotonic) and failure (mistake limit).
//   - Cache word groups per puzzle for word-aware rendering.
//
// Notes:
//   - All public methods are safe for the timed-clear goroutine; see input.go.
//   - The engine never logs and never fails on ineligible input: bad
//     operations are no-ops so the caller needs no error handling per key.

package game

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rohanluthra13/cryptogram/internal/puzzle"
)

// Clock supplies the current time. Injected so tests control the timer.
type Clock func() time.Time

// Mode selects the assistance level applied when a puzzle starts.
type Mode string

const (
	ModeNormal   Mode = "normal"
	ModeAssisted Mode = "assisted"
)

// NoMistakeLimit disables failure detection.
const NoMistakeLimit = -1

const (
	defaultMaxMistakes     = 4
	defaultPrefillRatio    = 0.25
	defaultErrorClearDelay = 500 * time.Millisecond
)

// Options tunes a Game. The zero value is usable: defaults are applied by New.
type Options struct {
	// MaxMistakes fails the session once reached. 0 means the default (4);
	// use NoMistakeLimit for unlimited play.
	MaxMistakes int

	// PrefillRatio is the fraction of letter cells pre-filled in assisted
	// mode. 0 means the default (0.25). At least one cell is pre-filled and
	// at least one is left open.
	PrefillRatio float64

	// ErrorClearDelay is how long a wrong entry stays visible before it is
	// cleared back to empty. 0 means the default (500ms).
	ErrorClearDelay time.Duration

	// Rand drives pre-fill selection. When nil, a source seeded from the
	// puzzle id is used, so a given puzzle pre-fills identically everywhere.
	Rand *rand.Rand

	// Clock defaults to time.Now.
	Clock Clock
}

// Game is the single source of truth for the puzzle currently in play.
// One logical owner drives it; the mutex exists because pending error
// clears fire on a second goroutine.
type Game struct {
	mu sync.Mutex

	puzzle *puzzle.Puzzle
	mode   Mode
	cells  []Cell

	startTime *time.Time // set lazily on first accepted input, not at load
	endTime   *time.Time // set exactly once, on completion
	pausedAt  *time.Time

	mistakeCount int
	hintCount    int
	selected     int // -1 when nothing is selected

	complete bool
	failed   bool

	dailyDate string // "" unless this session is the daily puzzle

	wordGroups       [][]int // cached per StartPuzzle
	completedLetters string  // recomputed on each cell update

	pendingClears map[int]*time.Timer
	gen           int // bumped on StartPuzzle/Reset so stale timers no-op

	maxMistakes  int
	prefillRatio float64
	clearDelay   time.Duration
	rng          *rand.Rand
	clock        Clock
}

// New constructs an empty game. Call StartPuzzle before anything else.
func New(opts Options) *Game {
	if opts.MaxMistakes == 0 {
		opts.MaxMistakes = defaultMaxMistakes
	}
	if opts.PrefillRatio <= 0 {
		opts.PrefillRatio = defaultPrefillRatio
	}
	if opts.ErrorClearDelay <= 0 {
		opts.ErrorClearDelay = defaultErrorClearDelay
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Game{
		selected:      -1,
		pendingClears: make(map[int]*time.Timer),
		maxMistakes:   opts.MaxMistakes,
		prefillRatio:  opts.PrefillRatio,
		clearDelay:    opts.ErrorClearDelay,
		rng:           opts.Rand,
		clock:         opts.Clock,
	}
}

// StartPuzzle replaces the session wholesale: builds one cell per puzzle
// character, applies assisted pre-fill, and resets all session state. The
// timer does not start until the first accepted input. Any daily flag from
// a previous session is cleared; the coordinator re-flags daily sessions
// after loading.
func (g *Game) StartPuzzle(p *puzzle.Puzzle, mode Mode) error {
	if p == nil {
		return errors.New("nil puzzle")
	}
	if err := p.Validate(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.cancelAllClears()
	g.gen++

	runes := []rune(p.Solution)
	cells := make([]Cell, len(runes))
	for i, r := range runes {
		c := Cell{Position: i, EncodedChar: p.Tokens[i]}
		if isAlnum(r) {
			c.SolutionChar = string(r)
		} else {
			c.IsSymbol = true
		}
		cells[i] = c
	}

	g.puzzle = p
	g.mode = mode
	g.cells = cells
	g.startTime = nil
	g.endTime = nil
	g.pausedAt = nil
	g.mistakeCount = 0
	g.hintCount = 0
	g.selected = -1
	g.complete = false
	g.failed = false
	g.dailyDate = ""
	g.wordGroups = computeWordGroups(cells)

	if mode == ModeAssisted {
		g.prefill(p)
	}
	g.recomputeCompletedLetters()
	return nil
}

// prefill marks roughly prefillRatio of the letter cells as solved. The
// selection is a seeded shuffle so the same puzzle pre-fills the same cells
// on every device. Never fills every cell.
func (g *Game) prefill(p *puzzle.Puzzle) {
	var letters []int
	for i, c := range g.cells {
		if !c.IsSymbol {
			letters = append(letters, i)
		}
	}
	n := len(letters)
	if n < 2 {
		return
	}
	k := int(math.Round(g.prefillRatio * float64(n)))
	if k < 1 {
		k = 1
	}
	if k >= n {
		k = n - 1
	}

	rng := g.rng
	if rng == nil {
		seed := binary.BigEndian.Uint64(p.ID[:8])
		rng = rand.New(rand.NewSource(int64(seed)))
	}
	rng.Shuffle(n, func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })

	for _, idx := range letters[:k] {
		g.cells[idx].UserInput = g.cells[idx].SolutionChar
		g.cells[idx].IsPreFilled = true
	}
}

// Reset retries the same puzzle: player input, reveals, and errors are
// cleared, pre-filled cells keep their value, counters and the timer reset.
// The daily flag survives a retry; it still refers to the same puzzle.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cancelAllClears()
	g.gen++
	for i := range g.cells {
		c := &g.cells[i]
		c.IsError = false
		c.WasJustFilled = false
		if c.IsSymbol || c.IsPreFilled {
			continue
		}
		c.UserInput = ""
		c.IsRevealed = false
	}
	g.startTime = nil
	g.endTime = nil
	g.pausedAt = nil
	g.mistakeCount = 0
	g.hintCount = 0
	g.selected = -1
	g.complete = false
	g.failed = false
	g.recomputeCompletedLetters()
}

// Close cancels any pending timed clears. Call on session teardown.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelAllClears()
	g.gen++
}

// UpdateCell writes input/revealed/error state into one cell and re-derives
// the aggregates. Bounds and symbol cells are guarded; ineligible calls are
// no-ops returning false. This is the low-level mutator: it does not count
// mistakes or hints (input.go and hint.go do).
func (g *Game) UpdateCell(index int, input string, revealed, isError bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.updateCellLocked(index, input, revealed, isError)
}

func (g *Game) updateCellLocked(index int, input string, revealed, isError bool) bool {
	if index < 0 || index >= len(g.cells) {
		return false
	}
	c := &g.cells[index]
	if c.IsSymbol {
		return false
	}
	g.clearJustFilled()
	g.cancelClear(index)

	c.UserInput = strings.ToUpper(input)
	c.IsRevealed = revealed
	c.IsError = isError
	c.WasJustFilled = c.UserInput != ""

	g.recomputeCompletedLetters()
	g.checkCompletion()
	return true
}

// checkCompletion latches the complete flag once every letter cell is
// solved. endTime is set exactly once; later mutations never move it.
func (g *Game) checkCompletion() {
	if g.complete {
		return
	}
	for _, c := range g.cells {
		if !c.IsSymbol && c.UserInput != c.SolutionChar {
			return
		}
	}
	g.complete = true
	if g.endTime == nil {
		now := g.clock()
		g.endTime = &now
	}
	g.cancelAllClears()
}

func (g *Game) recomputeCompletedLetters() {
	total := make(map[string]int)
	solved := make(map[string]int)
	for _, c := range g.cells {
		if c.IsSymbol || len(c.SolutionChar) == 0 {
			continue
		}
		r := []rune(c.SolutionChar)[0]
		if !unicode.IsLetter(r) {
			continue
		}
		total[c.SolutionChar]++
		if c.UserInput == c.SolutionChar {
			solved[c.SolutionChar]++
		}
	}
	letters := make([]string, 0, len(total))
	for ch, n := range total {
		if solved[ch] == n {
			letters = append(letters, ch)
		}
	}
	sort.Strings(letters)
	g.completedLetters = strings.Join(letters, "")
}

func (g *Game) clearJustFilled() {
	for i := range g.cells {
		g.cells[i].WasJustFilled = false
	}
}

// Pause freezes the elapsed timer. No-op when already paused or finished.
func (g *Game) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pausedAt != nil || g.complete || g.failed {
		return
	}
	now := g.clock()
	g.pausedAt = &now
}

// Resume shifts startTime forward by the paused duration so elapsed-time
// math never counts time spent paused.
func (g *Game) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pausedAt == nil {
		return
	}
	if g.startTime != nil {
		shifted := g.startTime.Add(g.clock().Sub(*g.pausedAt))
		g.startTime = &shifted
	}
	g.pausedAt = nil
}

// startTimerLocked sets startTime on the first accepted interaction.
func (g *Game) startTimerLocked() {
	if g.startTime != nil {
		return
	}
	now := g.clock()
	g.startTime = &now
}

/* ------------------------------ accessors ------------------------------- */

// Puzzle returns the puzzle in play, or nil before the first StartPuzzle.
func (g *Game) Puzzle() *puzzle.Puzzle {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.puzzle
}

// Mode returns the assistance mode the current puzzle was started with.
func (g *Game) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// Cells returns a copy of the cell grid.
func (g *Game) Cells() []Cell {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// Cell returns one cell by index.
func (g *Game) Cell(index int) (Cell, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if index < 0 || index >= len(g.cells) {
		return Cell{}, false
	}
	return g.cells[index], true
}

// CellCount returns the grid size.
func (g *Game) CellCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.cells)
}

// Selected returns the selected cell index, or -1 when nothing is selected.
func (g *Game) Selected() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selected
}

// IsComplete reports whether every letter cell is solved. Monotonic for the
// lifetime of the puzzle.
func (g *Game) IsComplete() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.complete
}

// IsFailed reports whether the mistake limit was reached.
func (g *Game) IsFailed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failed
}

// IsPaused reports whether the session timer is frozen.
func (g *Game) IsPaused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pausedAt != nil
}

// MistakeCount returns the number of distinct wrong entries so far.
func (g *Game) MistakeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mistakeCount
}

// HintCount returns the number of cells revealed so far.
func (g *Game) HintCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hintCount
}

// StartTime returns when the first input was accepted, nil before that.
func (g *Game) StartTime() *time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return copyTime(g.startTime)
}

// EndTime returns the completion instant, nil until the puzzle completes.
func (g *Game) EndTime() *time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return copyTime(g.endTime)
}

// ProgressPercentage is filled letter cells over total letter cells, in
// [0,1]. Derived from the live grid on every call.
func (g *Game) ProgressPercentage() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	total, filled := 0, 0
	for _, c := range g.cells {
		if c.IsSymbol {
			continue
		}
		total++
		if c.UserInput != "" {
			filled++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(filled) / float64(total)
}

// CompletedLetters returns the sorted distinct solution letters whose every
// occurrence is correctly filled, e.g. "EHT". Presentation dims those keys.
func (g *Game) CompletedLetters() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.completedLetters
}

// WordGroups returns contiguous runs of letter-cell indices separated by
// symbol cells. Computed once per StartPuzzle.
func (g *Game) WordGroups() [][]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.wordGroups
}

// ElapsedSeconds is the play time so far, excluding pauses. Zero before the
// first input; frozen at completion.
func (g *Game) ElapsedSeconds() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.startTime == nil {
		return 0
	}
	switch {
	case g.endTime != nil:
		return g.endTime.Sub(*g.startTime).Seconds()
	case g.pausedAt != nil:
		return g.pausedAt.Sub(*g.startTime).Seconds()
	default:
		return g.clock().Sub(*g.startTime).Seconds()
	}
}

// CompletionSeconds is the final time for a completed session, nil otherwise.
func (g *Game) CompletionSeconds() *float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.complete || g.startTime == nil || g.endTime == nil {
		return nil
	}
	secs := g.endTime.Sub(*g.startTime).Seconds()
	return &secs
}

// DailyDate returns the daily-puzzle date this session is bound to, or "".
func (g *Game) DailyDate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dailyDate
}

// SetDailyDate binds the session to a calendar day. The daily coordinator
// sets this after loading; StartPuzzle always clears it.
func (g *Game) SetDailyDate(date string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dailyDate = date
}

// ClearDailyDate unbinds the session from the daily puzzle. Must happen
// before any save when the player moves on to a different puzzle.
func (g *Game) ClearDailyDate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dailyDate = ""
}

/* ------------------------------- helpers -------------------------------- */

func computeWordGroups(cells []Cell) [][]int {
	var groups [][]int
	var run []int
	for i, c := range cells {
		if c.IsSymbol {
			if len(run) > 0 {
				groups = append(groups, run)
				run = nil
			}
			continue
		}
		run = append(run, i)
	}
	if len(run) > 0 {
		groups = append(groups, run)
	}
	return groups
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
