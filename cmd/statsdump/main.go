// cmd/statsdump prints the player's progress as structured log events:
// attempt store schema version, global and per-encoding summaries, and the
// daily streaks. Read-only diagnostics; it never mutates a store.
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rohanluthra13/cryptogram/internal/daily"
	"github.com/rohanluthra13/cryptogram/internal/prefs"
	"github.com/rohanluthra13/cryptogram/internal/progress"
	"github.com/rohanluthra13/cryptogram/internal/puzzle"
	"github.com/rohanluthra13/cryptogram/internal/stats"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	progressPath := getEnv("PROGRESS_DB", "./data/progress.db")
	prefsPath := getEnv("PREFS_FILE", "./data/prefs.json")

	store := progress.Open(progressPath)
	mgr := progress.NewManager(store)
	defer mgr.Close()

	ctx := context.Background()

	if v, err := store.SchemaVersion(); err != nil {
		log.Warn().Err(err).Str("db", progressPath).Msg("attempt store unavailable")
	} else {
		log.Info().Int("schemaVersion", v).Str("db", progressPath).Msg("attempt store")
	}

	agg := stats.NewAggregator(mgr)
	dumpSummary(log.Info().Str("scope", "global"), agg.Summary(ctx))

	attempts := mgr.AllAttempts(ctx)
	for _, enc := range []puzzle.Encoding{puzzle.EncodingLetters, puzzle.EncodingNumbers} {
		var subset []progress.Attempt
		for _, a := range attempts {
			if a.Encoding == enc {
				subset = append(subset, a)
			}
		}
		dumpSummary(log.Info().Str("scope", string(enc)), stats.Compute(subset))
	}

	if kv, err := prefs.OpenFile(prefsPath); err != nil {
		log.Warn().Err(err).Str("file", prefsPath).Msg("prefs unavailable; skipping daily streaks")
	} else {
		now := time.Now()
		current, best := daily.Streaks(kv, now)
		log.Info().
			Int("currentStreak", current).
			Int("bestStreak", best).
			Bool("todayCompleted", daily.TodayCompleted(kv, now)).
			Msg("daily streaks")
	}

	if err := mgr.LastError(); err != nil {
		log.Warn().Err(err).Msg("storage reported errors during dump")
	}
}

// dumpSummary emits one summary as a single event. Time aggregates appear
// only when at least one completion exists.
func dumpSummary(ev *zerolog.Event, s stats.Summary) {
	ev = ev.
		Int("attempts", s.TotalAttempts).
		Int("completions", s.Completions).
		Int("failures", s.Failures).
		Int("winRatePercent", s.WinRatePercent)
	if s.AverageCompletionTime != nil {
		ev = ev.Float64("averageSeconds", *s.AverageCompletionTime)
	}
	if s.BestCompletionTime != nil {
		ev = ev.Float64("bestSeconds", *s.BestCompletionTime)
	}
	ev.Msg("attempt summary")
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
