// internal/progress/store.go
//
// SQLite-backed attempt store.
// Responsibilities:
//   - Open the database with safe defaults (WAL, busy timeout) and a single
//     owning connection; the driver file is shared with the aggregator, so
//     all access is serialized through this handle.
//   - Apply additive schema migrations tracked by an integer version in the
//     store_meta table. Every step runs even when the metadata write fails.
//   - Append and query attempts, surviving rows with corrupted identifiers.
//
// Failure model: a failed initialization is cached and every later call
// fails fast wrapping ErrInitFailed; individual query failures wrap
// ErrQueryFailed. One corrupt row never aborts a batch read.

package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/rohanluthra13/cryptogram/internal/puzzle"
)

// schemaVersion is the current attempts schema. Bump it when adding a
// migration step below.
const schemaVersion = 3

var (
	// ErrInitFailed marks a store whose schema never came up; every call on
	// it fails fast instead of retrying the same broken setup.
	ErrInitFailed = errors.New("attempt store initialization failed")

	// ErrQueryFailed marks a single failed read or write.
	ErrQueryFailed = errors.New("attempt store query failed")
)

// Store is the durable, append-only attempt ledger.
type Store struct {
	db      *sql.DB
	initErr error
}

// Open opens (and creates if missing) the attempt database at path and
// brings the schema up to date. Open never fails structurally: any setup
// error is recorded on the returned store, which then fails fast per call.
// This keeps the progress façade functional under persistent storage
// failure.
func Open(path string) *Store {
	s := &Store{}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.initErr = fmt.Errorf("%w: mkdir %s: %v", ErrInitFailed, dir, err)
			log.Error().Err(err).Str("dir", dir).Msg("attempt store unavailable")
			return s
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		s.initErr = fmt.Errorf("%w: open %s: %v", ErrInitFailed, path, err)
		log.Error().Err(err).Str("path", path).Msg("attempt store unavailable")
		return s
	}
	// One connection: SQLite is not safe for uncoordinated concurrent
	// writers, and the manager and aggregator share this handle.
	db.SetMaxOpenConns(1)
	s.db = db

	if err := s.init(); err != nil {
		s.initErr = fmt.Errorf("%w: %v", ErrInitFailed, err)
		log.Error().Err(err).Str("path", path).Msg("attempt store schema init failed")
	}
	return s
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

/* ------------------------------ migrations ------------------------------ */

// init creates the metadata table, reads the recorded version, and applies
// the pending migrations. A metadata failure does not stop the schema
// steps: they are idempotent and must all be attempted regardless.
func (s *Store) init() error {
	if _, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS store_meta (key TEXT PRIMARY KEY, value INTEGER NOT NULL)`,
	); err != nil {
		log.Warn().Err(err).Msg("create store_meta; proceeding with version 0")
	}

	version := s.readVersion()
	for v := version + 1; v <= schemaVersion; v++ {
		if err := s.migrateTo(v); err != nil {
			return fmt.Errorf("migrate to v%d: %w", v, err)
		}
		s.writeVersion(v)
		log.Info().Int("version", v).Msg("attempt schema migrated")
	}
	return nil
}

// readVersion returns the recorded schema version, 0 when missing or
// unreadable.
func (s *Store) readVersion() int {
	var v int
	err := s.db.QueryRow(
		`SELECT COALESCE(MAX(value), 0) FROM store_meta WHERE key = 'schema_version'`,
	).Scan(&v)
	if err != nil {
		return 0
	}
	return v
}

// writeVersion records the schema version. Failure is non-fatal: the
// migrations themselves tolerate re-application.
func (s *Store) writeVersion(v int) {
	if _, err := s.db.Exec(
		`INSERT OR REPLACE INTO store_meta (key, value) VALUES ('schema_version', ?)`, v,
	); err != nil {
		log.Warn().Err(err).Int("version", v).Msg("record schema version")
	}
}

func (s *Store) migrateTo(v int) error {
	switch v {
	case 1:
		_, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS attempts (
				id TEXT PRIMARY KEY,
				puzzle_id TEXT NOT NULL,
				completed_at TEXT,
				failed_at TEXT,
				completion_time REAL,
				hint_count INTEGER NOT NULL DEFAULT 0,
				mistake_count INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_attempts_puzzle ON attempts(puzzle_id);
		`)
		return err
	case 2:
		return s.addColumn(`ALTER TABLE attempts ADD COLUMN encoding_type TEXT NOT NULL DEFAULT 'Letters'`)
	case 3:
		return s.addColumn(`ALTER TABLE attempts ADD COLUMN mode TEXT NOT NULL DEFAULT 'normal'`)
	default:
		return fmt.Errorf("unknown schema version %d", v)
	}
}

// addColumn applies an additive column change, tolerating re-application
// against databases whose version row was lost.
func (s *Store) addColumn(stmt string) error {
	if _, err := s.db.Exec(stmt); err != nil {
		if strings.Contains(err.Error(), "duplicate column name") {
			return nil
		}
		return err
	}
	return nil
}

// SchemaVersion reports the recorded schema version, for diagnostics.
func (s *Store) SchemaVersion() (int, error) {
	if s.initErr != nil {
		return 0, s.initErr
	}
	return s.readVersion(), nil
}

/* ------------------------------ operations ------------------------------ */

// LogAttempt appends one attempt to the ledger. Rows are never updated or
// deleted afterwards.
func (s *Store) LogAttempt(ctx context.Context, a Attempt) error {
	if s.initErr != nil {
		return s.initErr
	}
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	enc := a.Encoding
	if enc == "" {
		enc = puzzle.EncodingLetters
	}
	mode := a.Mode
	if mode == "" {
		mode = "normal"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attempts
			(id, puzzle_id, encoding_type, completed_at, failed_at, completion_time, mode, hint_count, mistake_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(),
		a.PuzzleID.String(),
		string(enc),
		nullTime(a.CompletedAt),
		nullTime(a.FailedAt),
		nullFloat(a.CompletionTime),
		mode,
		a.HintCount,
		a.MistakeCount,
	)
	if err != nil {
		return fmt.Errorf("%w: insert attempt: %v", ErrQueryFailed, err)
	}
	return nil
}

// Attempts returns every attempt for a puzzle, optionally narrowed to one
// encoding variant (empty means all). Identifier matching happens in Go:
// corrupted stored identifiers are resolved through the deterministic
// fallback first, so rows written by older broken builds still group under
// a stable id instead of vanishing.
func (s *Store) Attempts(ctx context.Context, puzzleID uuid.UUID, enc puzzle.Encoding) ([]Attempt, error) {
	all, err := s.AllAttempts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Attempt, 0, len(all))
	for _, a := range all {
		if a.PuzzleID != puzzleID {
			continue
		}
		if enc != "" && a.Encoding != enc {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// AllAttempts returns the full ledger in insertion order. Corrupt rows are
// skipped, never fatal.
func (s *Store) AllAttempts(ctx context.Context) ([]Attempt, error) {
	if s.initErr != nil {
		return nil, s.initErr
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT rowid, id, puzzle_id, encoding_type, completed_at, failed_at, completion_time, mode, hint_count, mistake_count
		FROM attempts
		ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: query attempts: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var (
			rowid          int64
			rawID, rawPID  string
			encoding, mode string
			completedAt    sql.NullString
			failedAt       sql.NullString
			completionTime sql.NullFloat64
			hints          int
			mistakes       int
		)
		if err := rows.Scan(&rowid, &rawID, &rawPID, &encoding, &completedAt, &failedAt,
			&completionTime, &mode, &hints, &mistakes); err != nil {
			log.Warn().Err(err).Msg("scan attempt row; skipping")
			continue
		}
		a, err := decodeAttempt(rawID, rawPID, encoding, completedAt, failedAt, completionTime, mode, hints, mistakes)
		if err != nil {
			log.Warn().Err(err).Int64("rowid", rowid).Msg("corrupt attempt row; skipping")
			continue
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate attempts: %v", ErrQueryFailed, err)
	}
	return out, nil
}

// LatestAttempt returns the attempt with the most recent terminal instant
// (completedAt, else failedAt), ties broken by insertion order. Nil when
// the puzzle has no attempts.
func (s *Store) LatestAttempt(ctx context.Context, puzzleID uuid.UUID, enc puzzle.Encoding) (*Attempt, error) {
	matches, err := s.Attempts(ctx, puzzleID, enc)
	if err != nil {
		return nil, err
	}
	var latest *Attempt
	for i := range matches {
		a := matches[i]
		if latest == nil || !a.EndedAt().Before(latest.EndedAt()) {
			latest = &matches[i]
		}
	}
	return latest, nil
}

// BestCompletionTime returns the minimum completion time among completed
// attempts for the puzzle/encoding, nil when there is none.
func (s *Store) BestCompletionTime(ctx context.Context, puzzleID uuid.UUID, enc puzzle.Encoding) (*float64, error) {
	matches, err := s.Attempts(ctx, puzzleID, enc)
	if err != nil {
		return nil, err
	}
	var best *float64
	for _, a := range matches {
		if a.CompletedAt == nil || a.CompletionTime == nil {
			continue
		}
		if best == nil || *a.CompletionTime < *best {
			t := *a.CompletionTime
			best = &t
		}
	}
	return best, nil
}

// ClearAll deletes every attempt atomically. Used by the explicit
// user-initiated reset; a failed clear leaves the ledger intact.
func (s *Store) ClearAll(ctx context.Context) error {
	if s.initErr != nil {
		return s.initErr
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin clear: %v", ErrQueryFailed, err)
	}
	if _, err := tx.Exec(`DELETE FROM attempts`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: clear attempts: %v", ErrQueryFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit clear: %v", ErrQueryFailed, err)
	}
	return nil
}

/* ------------------------------- decoding ------------------------------- */

// decodeAttempt turns raw column values into an Attempt. Identifiers fall
// back to a deterministic derivation; unparsable payload timestamps reject
// the row.
func decodeAttempt(rawID, rawPID, encoding string, completedAt, failedAt sql.NullString,
	completionTime sql.NullFloat64, mode string, hints, mistakes int) (Attempt, error) {

	a := Attempt{
		ID:           parseOrDeriveID(rawID),
		PuzzleID:     parseOrDeriveID(rawPID),
		Encoding:     puzzle.Encoding(encoding),
		Mode:         mode,
		HintCount:    hints,
		MistakeCount: mistakes,
	}
	if completedAt.Valid {
		t, err := time.Parse(time.RFC3339, completedAt.String)
		if err != nil {
			return Attempt{}, fmt.Errorf("parse completed_at: %w", err)
		}
		a.CompletedAt = &t
	}
	if failedAt.Valid {
		t, err := time.Parse(time.RFC3339, failedAt.String)
		if err != nil {
			return Attempt{}, fmt.Errorf("parse failed_at: %w", err)
		}
		a.FailedAt = &t
	}
	if completionTime.Valid {
		v := completionTime.Float64
		a.CompletionTime = &v
	}
	return a, nil
}

// parseOrDeriveID parses a stored identifier, deriving a stable substitute
// from the raw bytes when parsing fails. The derivation is deterministic:
// every encounter with the same corrupted value resolves to the same id.
func parseOrDeriveID(raw string) uuid.UUID {
	if id, err := uuid.Parse(raw); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(raw))
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
