package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohanluthra13/cryptogram/assets"
	"github.com/rohanluthra13/cryptogram/internal/puzzle"
)

func openTestCatalog(t *testing.T) *SQLite {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "quotes.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	if err := c.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return c
}

func mustInsert(t *testing.T, c *SQLite, q Quote) int64 {
	t.Helper()
	id, err := c.InsertQuote(context.Background(), q)
	if err != nil {
		t.Fatalf("InsertQuote(%q): %v", q.Text, err)
	}
	return id
}

func theDog(diff puzzle.Difficulty) Quote {
	return Quote{
		Text:           "THE DOG",
		Author:         "Anonymous",
		Hint:           "Faithful companion",
		Difficulty:     diff,
		EncodedLetters: "ABC DEF",
		EncodedNumbers: "20,8,5, ,4,15,7",
	}
}

func TestInsertQuoteValidatesBothVariants(t *testing.T) {
	c := openTestCatalog(t)

	bad := theDog(puzzle.DifficultyMedium)
	bad.EncodedLetters = "AB"
	if _, err := c.InsertQuote(context.Background(), bad); err == nil {
		t.Fatal("expected error for letters/solution length mismatch")
	}

	bad = theDog(puzzle.DifficultyMedium)
	bad.EncodedNumbers = "20,8"
	if _, err := c.InsertQuote(context.Background(), bad); err == nil {
		t.Fatal("expected error for numbers/solution length mismatch")
	}

	if id := mustInsert(t, c, theDog(puzzle.DifficultyMedium)); id <= 0 {
		t.Fatalf("insert returned id %d", id)
	}
}

func TestPuzzleByQuote(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)
	id := mustInsert(t, c, theDog(puzzle.DifficultyMedium))

	p, err := c.PuzzleByQuote(ctx, id, puzzle.EncodingLetters)
	if err != nil {
		t.Fatalf("PuzzleByQuote: %v", err)
	}
	if p.Solution != "THE DOG" || p.EncodedText != "ABC DEF" {
		t.Fatalf("wrong puzzle content: %+v", p)
	}
	if p.QuoteID != id || p.ID != puzzle.IDForQuote(id) {
		t.Fatalf("wrong puzzle identity: %+v", p)
	}
	if p.Author != "Anonymous" || p.Hint != "Faithful companion" {
		t.Fatalf("metadata not round-tripped: %+v", p)
	}

	n, err := c.PuzzleByQuote(ctx, id, puzzle.EncodingNumbers)
	if err != nil {
		t.Fatalf("PuzzleByQuote numbers: %v", err)
	}
	if n.Encoding != puzzle.EncodingNumbers || n.EncodedText != "20,8,5, ,4,15,7" {
		t.Fatalf("numbers variant wrong: %+v", n)
	}
	if len(n.Tokens) != len([]rune(n.Solution)) {
		t.Fatalf("token count %d != solution length %d", len(n.Tokens), len([]rune(n.Solution)))
	}

	if _, err := c.PuzzleByQuote(ctx, 9999, puzzle.EncodingLetters); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id error = %v, want ErrNotFound", err)
	}
}

func TestRandomPuzzleHonorsFilters(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)

	easy := Quote{Text: "GO ON", EncodedLetters: "AB CD", EncodedNumbers: "7,15, ,15,14", Difficulty: puzzle.DifficultyEasy}
	mustInsert(t, c, easy)
	mediumID := mustInsert(t, c, theDog(puzzle.DifficultyMedium))

	for i := 0; i < 5; i++ {
		p, err := c.RandomPuzzle(ctx, RandomOptions{
			Encoding:     puzzle.EncodingLetters,
			Difficulties: []puzzle.Difficulty{puzzle.DifficultyMedium},
		})
		if err != nil {
			t.Fatalf("RandomPuzzle: %v", err)
		}
		if p.QuoteID != mediumID {
			t.Fatalf("difficulty filter returned quote %d", p.QuoteID)
		}
	}

	// Excluding the only matching quote leaves nothing to draw.
	_, err := c.RandomPuzzle(ctx, RandomOptions{
		Encoding:       puzzle.EncodingLetters,
		Difficulties:   []puzzle.Difficulty{puzzle.DifficultyMedium},
		ExcludeQuoteID: mediumID,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("exhausted draw error = %v, want ErrNotFound", err)
	}
}

func TestRandomPuzzleSkipsCorruptRows(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)

	goodID := mustInsert(t, c, theDog(puzzle.DifficultyMedium))
	badID := mustInsert(t, c, Quote{
		Text: "GO ON", EncodedLetters: "AB CD", EncodedNumbers: "7,15, ,15,14",
		Difficulty: puzzle.DifficultyMedium,
	})
	// Corrupt the second row behind the validator's back.
	if _, err := c.db.Exec(`UPDATE quotes SET encoded_letters = 'XX' WHERE id = ?`, badID); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	for i := 0; i < 10; i++ {
		p, err := c.RandomPuzzle(ctx, RandomOptions{Encoding: puzzle.EncodingLetters})
		if err != nil {
			t.Fatalf("RandomPuzzle with corrupt row present: %v", err)
		}
		if p.QuoteID != goodID {
			t.Fatalf("draw returned corrupt quote %d", p.QuoteID)
		}
	}

	// Only corrupt rows left: the draw reports not-found, never an invalid
	// puzzle.
	if _, err := c.db.Exec(`UPDATE quotes SET encoded_letters = 'XX' WHERE id = ?`, goodID); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}
	if _, err := c.RandomPuzzle(ctx, RandomOptions{Encoding: puzzle.EncodingLetters}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("all-corrupt draw error = %v, want ErrNotFound", err)
	}
}

func TestDailyPuzzle(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)
	id := mustInsert(t, c, theDog(puzzle.DifficultyMedium))

	if _, err := c.db.Exec(
		`INSERT INTO daily_puzzles (quote_id, puzzle_date) VALUES (?, '2025-06-01')`, id); err != nil {
		t.Fatalf("assign daily: %v", err)
	}

	p, err := c.DailyPuzzle(ctx, "2025-06-01", puzzle.EncodingLetters)
	if err != nil {
		t.Fatalf("DailyPuzzle: %v", err)
	}
	if p.QuoteID != id {
		t.Fatalf("daily resolved quote %d, want %d", p.QuoteID, id)
	}

	if _, err := c.DailyPuzzle(ctx, "2025-06-02", puzzle.EncodingLetters); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unassigned date error = %v, want ErrNotFound", err)
	}

	// A corrupt assigned row is reported, not returned.
	if _, err := c.db.Exec(`UPDATE quotes SET encoded_letters = 'XX' WHERE id = ?`, id); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}
	if _, err := c.DailyPuzzle(ctx, "2025-06-01", puzzle.EncodingLetters); !errors.Is(err, ErrNotFound) {
		t.Fatalf("corrupt daily error = %v, want ErrNotFound", err)
	}
}

func TestSeedDaily(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)

	var mediumIDs []int64
	for i := 0; i < 3; i++ {
		mediumIDs = append(mediumIDs, mustInsert(t, c, theDog(puzzle.DifficultyMedium)))
	}
	mustInsert(t, c, Quote{
		Text: "GO ON", EncodedLetters: "AB CD", EncodedNumbers: "7,15, ,15,14",
		Difficulty: puzzle.DifficultyEasy,
	})

	start := time.Date(2025, 4, 23, 0, 0, 0, 0, time.UTC)
	inserted, err := c.SeedDaily(ctx, start, 10, puzzle.DifficultyMedium)
	if err != nil {
		t.Fatalf("SeedDaily: %v", err)
	}
	if inserted != 3 {
		t.Fatalf("seeded %d days, want 3 (one per medium quote)", inserted)
	}

	for i, want := range mediumIDs {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		p, err := c.DailyPuzzle(ctx, date, puzzle.EncodingLetters)
		if err != nil {
			t.Fatalf("DailyPuzzle(%s): %v", date, err)
		}
		if p.QuoteID != want {
			t.Fatalf("date %s got quote %d, want %d", date, p.QuoteID, want)
		}
	}

	// Re-seeding leaves the existing calendar untouched.
	again, err := c.SeedDaily(ctx, start, 10, puzzle.DifficultyMedium)
	if err != nil {
		t.Fatalf("SeedDaily rerun: %v", err)
	}
	if again != 0 {
		t.Fatalf("rerun inserted %d rows, want 0", again)
	}
}

func TestStarterQuotesInsertCleanly(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)

	starters, err := assets.StarterQuotes()
	if err != nil {
		t.Fatalf("StarterQuotes: %v", err)
	}
	if len(starters) == 0 {
		t.Fatal("starter set is empty")
	}

	for _, q := range starters {
		id, err := c.InsertQuote(ctx, Quote{
			Text:           q.Text,
			Author:         q.Author,
			Hint:           q.Hint,
			Difficulty:     puzzle.Difficulty(q.Difficulty),
			EncodedLetters: q.EncodedLetters,
			EncodedNumbers: q.EncodedNumbers,
		})
		if err != nil {
			t.Fatalf("starter quote %q rejected: %v", q.Text, err)
		}
		for _, enc := range []puzzle.Encoding{puzzle.EncodingLetters, puzzle.EncodingNumbers} {
			if _, err := c.PuzzleByQuote(ctx, id, enc); err != nil {
				t.Fatalf("starter quote %q unreadable as %s: %v", q.Text, enc, err)
			}
		}
	}

	n, err := c.QuoteCount(ctx)
	if err != nil {
		t.Fatalf("QuoteCount: %v", err)
	}
	if n != int64(len(starters)) {
		t.Fatalf("quote count = %d, want %d", n, len(starters))
	}
}
