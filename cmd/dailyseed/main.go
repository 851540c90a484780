// cmd/dailyseed populates the daily_puzzles calendar: one quote per day,
// taken in id order from the configured difficulty, starting at SEED_START.
// Existing date assignments are never overwritten, so re-running is safe.
package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rohanluthra13/cryptogram/assets"
	"github.com/rohanluthra13/cryptogram/internal/catalog"
	"github.com/rohanluthra13/cryptogram/internal/puzzle"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	dbPath := getEnv("QUOTES_DB", "./data/quotes.db")
	start, err := time.Parse("2006-01-02", getEnv("SEED_START", "2025-04-23"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid SEED_START, want YYYY-MM-DD")
	}
	days := getEnvInt("SEED_DAYS", 365)
	diff := puzzle.Difficulty(getEnv("SEED_DIFFICULTY", "medium"))

	cat, err := catalog.Open(dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", dbPath).Msg("failed to open quotes database")
	}
	defer cat.Close()

	ctx := context.Background()
	if err := cat.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure catalog schema")
	}
	if err := importStarterQuotes(ctx, cat); err != nil {
		log.Fatal().Err(err).Msg("failed to import starter quotes")
	}

	inserted, err := cat.SeedDaily(ctx, start, days, diff)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding daily puzzles failed")
	}
	log.Info().
		Int("inserted", inserted).
		Str("start", start.Format("2006-01-02")).
		Int("days", days).
		Str("difficulty", string(diff)).
		Msg("daily puzzles populated")
}

// importStarterQuotes fills an empty catalog from the embedded starter set
// so a fresh database has content to assign. Populated catalogs are left
// alone.
func importStarterQuotes(ctx context.Context, cat *catalog.SQLite) error {
	n, err := cat.QuoteCount(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	starters, err := assets.StarterQuotes()
	if err != nil {
		return err
	}
	for _, q := range starters {
		if _, err := cat.InsertQuote(ctx, catalog.Quote{
			Text:           q.Text,
			Author:         q.Author,
			Hint:           q.Hint,
			Difficulty:     puzzle.Difficulty(q.Difficulty),
			EncodedLetters: q.EncodedLetters,
			EncodedNumbers: q.EncodedNumbers,
		}); err != nil {
			return err
		}
	}
	log.Info().Int("quotes", len(starters)).Msg("imported starter quotes into empty catalog")
	return nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
	}
	return def
}
