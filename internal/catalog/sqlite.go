// internal/catalog/sqlite.go
//
// SQLite implementation of the puzzle catalog.
// Responsibilities:
//   - Opening the quotes database with safe defaults (WAL, busy timeout, foreign keys).
//   - Resolving puzzles by quote id, by calendar date, or at random.
//   - Seeding the daily_puzzles calendar for the seeding tool.
//
// Note: the database is read-mostly; EnsureSchema exists for tests and the
// seeding tool, not for the play path.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/rohanluthra13/cryptogram/internal/puzzle"
)

// randomCandidates bounds one random draw. Candidates failing validation
// are skipped, so a single corrupt row cannot starve the draw.
const randomCandidates = 8

// SQLite serves puzzles from the quotes content database.
type SQLite struct {
	db *sql.DB
}

/**
 * Open opens (and creates if missing) the quotes database file.
 *
 * - Ensures parent directory exists for relative paths (e.g. ./data/quotes.db).
 * - Configures busy timeout and WAL journaling mode.
 * - Enforces foreign keys.
 */
func Open(path string) (*SQLite, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (c *SQLite) Close() error {
	return c.db.Close()
}

/**
 * EnsureSchema creates the quotes and daily_puzzles tables if absent.
 * Idempotent; safe against an already-populated content database.
 */
func (c *SQLite) EnsureSchema(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS quotes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			author TEXT,
			hint TEXT,
			difficulty TEXT NOT NULL DEFAULT 'medium',
			length INTEGER NOT NULL DEFAULT 0,
			encoded_letters TEXT NOT NULL,
			encoded_numbers TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_quotes_difficulty ON quotes(difficulty);
		CREATE TABLE IF NOT EXISTS daily_puzzles (
			puzzle_date TEXT PRIMARY KEY,
			quote_id INTEGER NOT NULL REFERENCES quotes(id)
		);`)
	if err != nil {
		return fmt.Errorf("ensure catalog schema: %w", err)
	}
	return nil
}

// Quote is one content row as written by the seeding tool and tests.
type Quote struct {
	Text           string
	Author         string
	Hint           string
	Difficulty     puzzle.Difficulty
	EncodedLetters string
	EncodedNumbers string
}

/**
 * InsertQuote adds one quote, validating both encoding variants against the
 * solution text before anything is written. Returns the new quote id.
 */
func (c *SQLite) InsertQuote(ctx context.Context, q Quote) (int64, error) {
	// Build both variants up front so an invalid row can never enter the
	// catalog through this path.
	if _, err := puzzle.New(0, puzzle.EncodingLetters, q.EncodedLetters, q.Text, q.Author, q.Hint, q.Difficulty); err != nil {
		return 0, fmt.Errorf("letters variant: %w", err)
	}
	if _, err := puzzle.New(0, puzzle.EncodingNumbers, q.EncodedNumbers, q.Text, q.Author, q.Hint, q.Difficulty); err != nil {
		return 0, fmt.Errorf("numbers variant: %w", err)
	}

	res, err := c.db.ExecContext(ctx, `
		INSERT INTO quotes (text, author, hint, difficulty, length, encoded_letters, encoded_numbers)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		q.Text, q.Author, q.Hint, string(q.Difficulty), len([]rune(q.Text)), q.EncodedLetters, q.EncodedNumbers)
	if err != nil {
		return 0, fmt.Errorf("insert quote: %w", err)
	}
	return res.LastInsertId()
}

// QuoteCount reports the number of stored quotes. The seeding tool uses it
// to decide whether the starter set should be imported.
func (c *SQLite) QuoteCount(ctx context.Context) (int64, error) {
	var n int64
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM quotes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count quotes: %w", err)
	}
	return n, nil
}

/**
 * RandomPuzzle draws one puzzle at random, honoring the difficulty filter
 * and quote exclusion. Candidates that fail validation are skipped with a
 * warning; ErrNotFound only when no valid candidate exists.
 */
func (c *SQLite) RandomPuzzle(ctx context.Context, opts RandomOptions) (*puzzle.Puzzle, error) {
	query := `SELECT id, text, author, hint, difficulty, ` + encodedColumn(opts.Encoding) + ` FROM quotes`

	var conds []string
	var args []any
	if len(opts.Difficulties) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?,", len(opts.Difficulties)), ",")
		conds = append(conds, "difficulty IN ("+marks+")")
		for _, d := range opts.Difficulties {
			args = append(args, string(d))
		}
	}
	if opts.ExcludeQuoteID != 0 {
		conds = append(conds, "id != ?")
		args = append(args, opts.ExcludeQuoteID)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY RANDOM() LIMIT ?"
	args = append(args, randomCandidates)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("random puzzle: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPuzzle(rows, opts.Encoding)
		if err != nil {
			log.Warn().Err(err).Msg("skipping invalid catalog row")
			continue
		}
		return p, nil
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("random puzzle: %w", err)
	}
	return nil, ErrNotFound
}

/**
 * PuzzleByQuote resolves one quote id into a puzzle in the requested
 * encoding. ErrNotFound for unknown ids and for rows that fail validation.
 */
func (c *SQLite) PuzzleByQuote(ctx context.Context, quoteID int64, enc puzzle.Encoding) (*puzzle.Puzzle, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT id, text, author, hint, difficulty, `+encodedColumn(enc)+` FROM quotes WHERE id = ?`, quoteID)
	p, err := scanPuzzle(row, enc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Warn().Err(err).Int64("quoteId", quoteID).Msg("catalog row unusable")
		return nil, ErrNotFound
	}
	return p, nil
}

/**
 * DailyPuzzle resolves the puzzle assigned to a calendar date (YYYY-MM-DD).
 */
func (c *SQLite) DailyPuzzle(ctx context.Context, date string, enc puzzle.Encoding) (*puzzle.Puzzle, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT q.id, q.text, q.author, q.hint, q.difficulty, q.`+encodedColumn(enc)+`
		FROM quotes q
		JOIN daily_puzzles d ON d.quote_id = q.id
		WHERE d.puzzle_date = ?`, date)
	p, err := scanPuzzle(row, enc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		log.Warn().Err(err).Str("date", date).Msg("daily catalog row unusable")
		return nil, ErrNotFound
	}
	return p, nil
}

/**
 * SeedDaily assigns one quote per day to the daily_puzzles calendar,
 * starting at start, for up to days entries. Quotes are taken in id order
 * from the given difficulty; existing date rows are left untouched
 * (INSERT OR IGNORE). Returns the number of rows actually inserted.
 */
func (c *SQLite) SeedDaily(ctx context.Context, start time.Time, days int, diff puzzle.Difficulty) (int, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id FROM quotes WHERE difficulty = ? ORDER BY id LIMIT ?`, string(diff), days)
	if err != nil {
		return 0, fmt.Errorf("select seed quotes: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scan seed quote id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("select seed quotes: %w", err)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	inserted := 0
	for i, id := range ids {
		date := start.AddDate(0, 0, i).UTC().Format("2006-01-02")
		res, err := tx.Exec(
			`INSERT OR IGNORE INTO daily_puzzles (quote_id, puzzle_date) VALUES (?, ?)`, id, date)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("seed %s: %w", date, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return inserted, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanPuzzle reads one quote row and builds the puzzle for the requested
// encoding. Validation failures come back as errors for the caller's
// skip-or-report policy.
func scanPuzzle(sc scanner, enc puzzle.Encoding) (*puzzle.Puzzle, error) {
	var (
		id           int64
		text         string
		author, hint sql.NullString
		difficulty   string
		encoded      string
	)
	if err := sc.Scan(&id, &text, &author, &hint, &difficulty, &encoded); err != nil {
		return nil, err
	}
	return puzzle.New(id, enc, encoded, text, author.String, hint.String, puzzle.Difficulty(difficulty))
}

// encodedColumn maps an encoding to its content column. Numbers is the only
// variant with its own column; everything else reads letters.
func encodedColumn(enc puzzle.Encoding) string {
	if enc == puzzle.EncodingNumbers {
		return "encoded_numbers"
	}
	return "encoded_letters"
}
