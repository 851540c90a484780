// internal/progress/manager.go
//
// Manager is the error-normalizing façade over the attempt store. Callers
// get safe defaults (empty slice, nil, false) instead of errors; the last
// failure stays readable on LastError until reset. Successful writes bump
// WriteSeq, which the statistics aggregator watches to invalidate its
// cache.

package progress

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rohanluthra13/cryptogram/internal/puzzle"
)

// Manager wraps a Store so presentation code never has to special-case
// storage failures to stay functional.
type Manager struct {
	mu       sync.Mutex
	store    *Store
	lastErr  error
	writeSeq uint64
}

// NewManager wraps the given store.
func NewManager(store *Store) *Manager {
	return &Manager{store: store}
}

// Close releases the underlying store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// LastError returns the most recent storage failure, nil when none has
// occurred since the last reset.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// ResetError clears the surfaced error state.
func (m *Manager) ResetError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = nil
}

// WriteSeq counts successful writes. It only ever grows; any change means
// cached aggregates are stale.
func (m *Manager) WriteSeq() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writeSeq
}

func (m *Manager) fail(op string, err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
	log.Warn().Err(err).Str("op", op).Msg("progress operation failed")
}

func (m *Manager) wrote() {
	m.mu.Lock()
	m.writeSeq++
	m.mu.Unlock()
}

// LogAttempt appends an attempt, reporting success. Failures are surfaced
// on LastError, never returned.
func (m *Manager) LogAttempt(ctx context.Context, a Attempt) bool {
	if err := m.store.LogAttempt(ctx, a); err != nil {
		m.fail("logAttempt", err)
		return false
	}
	m.wrote()
	return true
}

// Attempts returns the attempts for a puzzle, optionally narrowed by
// encoding. Empty on failure.
func (m *Manager) Attempts(ctx context.Context, puzzleID uuid.UUID, enc puzzle.Encoding) []Attempt {
	out, err := m.store.Attempts(ctx, puzzleID, enc)
	if err != nil {
		m.fail("attempts", err)
		return nil
	}
	return out
}

// AllAttempts returns the full ledger in insertion order. Empty on failure.
func (m *Manager) AllAttempts(ctx context.Context) []Attempt {
	out, err := m.store.AllAttempts(ctx)
	if err != nil {
		m.fail("allAttempts", err)
		return nil
	}
	return out
}

// LatestAttempt returns the most recently ended attempt for a puzzle, nil
// when there is none or the query failed.
func (m *Manager) LatestAttempt(ctx context.Context, puzzleID uuid.UUID, enc puzzle.Encoding) *Attempt {
	out, err := m.store.LatestAttempt(ctx, puzzleID, enc)
	if err != nil {
		m.fail("latestAttempt", err)
		return nil
	}
	return out
}

// BestCompletionTime returns the fastest completion for a puzzle, nil when
// there is none or the query failed.
func (m *Manager) BestCompletionTime(ctx context.Context, puzzleID uuid.UUID, enc puzzle.Encoding) *float64 {
	out, err := m.store.BestCompletionTime(ctx, puzzleID, enc)
	if err != nil {
		m.fail("bestCompletionTime", err)
		return nil
	}
	return out
}

// ClearAll wipes the ledger, reporting success. A failed clear leaves the
// rows intact.
func (m *Manager) ClearAll(ctx context.Context) bool {
	if err := m.store.ClearAll(ctx); err != nil {
		m.fail("clearAll", err)
		return false
	}
	m.wrote()
	return true
}
