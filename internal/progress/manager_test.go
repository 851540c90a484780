package progress

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohanluthra13/cryptogram/internal/game"
	"github.com/rohanluthra13/cryptogram/internal/puzzle"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(openTestStore(t))
	return m
}

// newBrokenManager returns a manager whose store can never initialize.
func newBrokenManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker file: %v", err)
	}
	s := Open(filepath.Join(blocker, "attempts.db"))
	t.Cleanup(func() { s.Close() })
	return NewManager(s)
}

func TestManagerHappyPath(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	pid := puzzle.IDForQuote(1)
	end := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	if !m.LogAttempt(ctx, completedAttempt(pid, end, 75)) {
		t.Fatalf("LogAttempt reported failure: %v", m.LastError())
	}
	if m.LastError() != nil {
		t.Fatalf("unexpected surfaced error: %v", m.LastError())
	}

	got := m.Attempts(ctx, pid, "")
	if len(got) != 1 {
		t.Fatalf("got %d attempts, want 1", len(got))
	}
	latest := m.LatestAttempt(ctx, pid, "")
	if latest == nil || !latest.Completed() {
		t.Fatalf("latest attempt wrong: %+v", latest)
	}
	best := m.BestCompletionTime(ctx, pid, "")
	if best == nil || *best != 75 {
		t.Fatalf("best = %v, want 75", best)
	}
}

func TestManagerSurfacesErrorsAndReturnsSafeDefaults(t *testing.T) {
	ctx := context.Background()
	m := newBrokenManager(t)

	pid := puzzle.IDForQuote(1)
	end := time.Now().UTC()

	if m.LogAttempt(ctx, completedAttempt(pid, end, 10)) {
		t.Fatal("LogAttempt succeeded against a broken store")
	}
	if got := m.Attempts(ctx, pid, ""); len(got) != 0 {
		t.Fatalf("Attempts returned %d rows from a broken store", len(got))
	}
	if got := m.AllAttempts(ctx); len(got) != 0 {
		t.Fatalf("AllAttempts returned %d rows from a broken store", len(got))
	}
	if got := m.LatestAttempt(ctx, pid, ""); got != nil {
		t.Fatalf("LatestAttempt = %+v, want nil", got)
	}
	if got := m.BestCompletionTime(ctx, pid, ""); got != nil {
		t.Fatalf("BestCompletionTime = %v, want nil", *got)
	}
	if m.ClearAll(ctx) {
		t.Fatal("ClearAll succeeded against a broken store")
	}

	if err := m.LastError(); !errors.Is(err, ErrInitFailed) {
		t.Fatalf("LastError = %v, want ErrInitFailed", err)
	}
	m.ResetError()
	if m.LastError() != nil {
		t.Fatalf("LastError not cleared by ResetError: %v", m.LastError())
	}
}

func TestManagerWriteSeq(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	if m.WriteSeq() != 0 {
		t.Fatalf("fresh manager writeSeq = %d, want 0", m.WriteSeq())
	}

	pid := puzzle.IDForQuote(2)
	end := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// Invalid attempts never reach storage and must not bump the counter.
	m.LogAttempt(ctx, Attempt{PuzzleID: pid})
	if m.WriteSeq() != 0 {
		t.Fatalf("failed write bumped writeSeq to %d", m.WriteSeq())
	}
	if m.LastError() == nil {
		t.Fatal("failed write did not surface an error")
	}
	m.ResetError()

	m.LogAttempt(ctx, completedAttempt(pid, end, 30))
	if m.WriteSeq() != 1 {
		t.Fatalf("writeSeq after log = %d, want 1", m.WriteSeq())
	}
	m.ClearAll(ctx)
	if m.WriteSeq() != 2 {
		t.Fatalf("writeSeq after clear = %d, want 2", m.WriteSeq())
	}

	// Reads leave the counter alone.
	m.AllAttempts(ctx)
	m.Attempts(ctx, pid, "")
	if m.WriteSeq() != 2 {
		t.Fatalf("reads changed writeSeq to %d", m.WriteSeq())
	}
}

func TestFromGameCompletedSession(t *testing.T) {
	p, err := puzzle.New(9, puzzle.EncodingLetters, "ABC DEF", "THE DOG", "A. Author", "", puzzle.DifficultyMedium)
	if err != nil {
		t.Fatalf("puzzle.New: %v", err)
	}

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	g := game.New(game.Options{Clock: func() time.Time { return now }})
	defer g.Close()
	if err := g.StartPuzzle(p, game.ModeNormal); err != nil {
		t.Fatalf("StartPuzzle: %v", err)
	}

	for i, ch := range []string{"T", "H", "E", "", "D", "O", "G"} {
		if ch == "" {
			continue
		}
		g.InputLetter(ch, i)
	}
	if !g.IsComplete() {
		t.Fatal("session did not complete")
	}

	a, err := FromGame(g, now)
	if err != nil {
		t.Fatalf("FromGame: %v", err)
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("FromGame produced invalid attempt: %v", err)
	}
	if a.PuzzleID != p.ID || a.Encoding != puzzle.EncodingLetters || a.Mode != "normal" {
		t.Fatalf("attempt identity wrong: %+v", a)
	}
	if a.CompletedAt == nil || a.CompletionTime == nil {
		t.Fatalf("completed session missing completion fields: %+v", a)
	}
	if a.MistakeCount != 0 {
		t.Fatalf("mistakeCount = %d, want 0", a.MistakeCount)
	}
}

func TestFromGameFailedSession(t *testing.T) {
	p, err := puzzle.New(9, puzzle.EncodingLetters, "ABC", "THE", "", "", puzzle.DifficultyMedium)
	if err != nil {
		t.Fatalf("puzzle.New: %v", err)
	}

	g := game.New(game.Options{MaxMistakes: 1})
	defer g.Close()
	if err := g.StartPuzzle(p, game.ModeNormal); err != nil {
		t.Fatalf("StartPuzzle: %v", err)
	}
	g.InputLetter("X", 0)
	if !g.IsFailed() {
		t.Fatal("session did not fail at the mistake limit")
	}

	at := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	a, err := FromGame(g, at)
	if err != nil {
		t.Fatalf("FromGame: %v", err)
	}
	if a.FailedAt == nil || !a.FailedAt.Equal(at) {
		t.Fatalf("failedAt = %v, want %v", a.FailedAt, at)
	}
	if a.CompletedAt != nil || a.CompletionTime != nil {
		t.Fatalf("failed session carries completion fields: %+v", a)
	}
	if a.MistakeCount != 1 {
		t.Fatalf("mistakeCount = %d, want 1", a.MistakeCount)
	}
}

func TestFromGameRejectsLiveSession(t *testing.T) {
	p, err := puzzle.New(9, puzzle.EncodingLetters, "ABC", "THE", "", "", puzzle.DifficultyMedium)
	if err != nil {
		t.Fatalf("puzzle.New: %v", err)
	}

	g := game.New(game.Options{})
	defer g.Close()
	if err := g.StartPuzzle(p, game.ModeNormal); err != nil {
		t.Fatalf("StartPuzzle: %v", err)
	}

	if _, err := FromGame(g, time.Now()); err == nil {
		t.Fatal("expected error for in-progress session")
	}
}
