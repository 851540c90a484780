// internal/daily/coordinator.go
//
// Daily puzzle coordinator.
// Responsibilities:
//   - Resolving the calendar day's puzzle through the catalog, falling back
//     to the built-in puzzle when the lookup fails (the game must always be
//     playable).
//   - Restoring and saving the day's progress record.
//   - Guarding the completed-day invariant on every save.

package daily

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rohanluthra13/cryptogram/internal/catalog"
	"github.com/rohanluthra13/cryptogram/internal/game"
	"github.com/rohanluthra13/cryptogram/internal/prefs"
	"github.com/rohanluthra13/cryptogram/internal/puzzle"
)

// Config shapes the sessions the coordinator builds.
type Config struct {
	// Encoding selects the substitution variant; Letters when empty.
	Encoding puzzle.Encoding

	// Mode is the difficulty mode daily sessions start in; normal when
	// empty.
	Mode game.Mode

	// Game is forwarded to game.New for every daily session. Its Clock, if
	// set, also drives the coordinator's notion of "today".
	Game game.Options
}

// Coordinator ties the catalog, the progress records, and the session
// factory together for daily play.
type Coordinator struct {
	cat   catalog.Catalog
	kv    prefs.KV
	clock game.Clock
	enc   puzzle.Encoding
	mode  game.Mode
	opts  game.Options
}

// NewCoordinator builds a coordinator over the given catalog and
// preferences substrate.
func NewCoordinator(cat catalog.Catalog, kv prefs.KV, cfg Config) *Coordinator {
	enc := cfg.Encoding
	if enc == "" {
		enc = puzzle.EncodingLetters
	}
	mode := cfg.Mode
	if mode == "" {
		mode = game.ModeNormal
	}
	clock := cfg.Game.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Coordinator{cat: cat, kv: kv, clock: clock, enc: enc, mode: mode, opts: cfg.Game}
}

// Today returns the current calendar key.
func (c *Coordinator) Today() string {
	return DateKey(c.clock())
}

// LoadToday resolves and restores today's puzzle.
func (c *Coordinator) LoadToday(ctx context.Context) (*game.Game, error) {
	return c.LoadDailyPuzzle(ctx, c.Today())
}

// LoadDailyPuzzle builds a session for the date's assigned puzzle, flags it
// as the daily, and restores any saved progress. When the catalog cannot
// serve the date, the session runs the built-in fallback puzzle without the
// daily flag, so a stray save can never touch the date's record. The caller
// owns the returned game and must Close it.
func (c *Coordinator) LoadDailyPuzzle(ctx context.Context, date string) (*game.Game, error) {
	g := game.New(c.opts)

	p, err := c.cat.DailyPuzzle(ctx, date, c.enc)
	if err == nil {
		startErr := g.StartPuzzle(p, c.mode)
		if startErr == nil {
			g.SetDailyDate(date)
			c.restore(g, date, p.QuoteID)
			return g, nil
		}
		err = startErr
	}

	log.Warn().Err(err).Str("date", date).Msg("daily puzzle unavailable; using built-in fallback")
	if err := g.StartPuzzle(puzzle.Fallback(c.enc), c.mode); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// restore applies the date's saved record to a freshly started session.
func (c *Coordinator) restore(g *game.Game, date string, quoteID int64) {
	rec, err := LoadRecord(c.kv, date)
	if err != nil {
		log.Warn().Err(err).Str("date", date).Msg("daily record unreadable; starting fresh")
		return
	}
	if rec == nil {
		return
	}
	if rec.QuoteID != quoteID {
		log.Warn().Str("date", date).Int64("stored", rec.QuoteID).Int64("assigned", quoteID).
			Msg("daily record belongs to another quote; starting fresh")
		return
	}
	if !g.RestoreSnapshot(rec.Snapshot) {
		log.Warn().Str("date", date).Msg("daily record does not fit the puzzle grid; starting fresh")
	}
}

// SaveProgress upserts the record for the session's daily date. Sessions
// without the daily flag are refused, and a completed day's record never
// has its quote replaced or its completion withdrawn. Reports whether a
// write happened.
func (c *Coordinator) SaveProgress(g *game.Game) bool {
	date := g.DailyDate()
	if date == "" {
		log.Debug().Msg("save skipped: session is not a daily puzzle")
		return false
	}
	p := g.Puzzle()
	if p == nil {
		return false
	}

	snap := g.Snapshot()
	existing, err := LoadRecord(c.kv, date)
	if err != nil {
		log.Warn().Err(err).Str("date", date).Msg("existing daily record unreadable; overwriting")
	}
	if existing != nil && existing.Completed {
		if existing.QuoteID != p.QuoteID {
			log.Debug().Str("date", date).Msg("save skipped: completed day belongs to another quote")
			return false
		}
		if !snap.Completed {
			log.Debug().Str("date", date).Msg("save skipped: would downgrade a completed day")
			return false
		}
	}

	if err := saveRecord(c.kv, Record{Date: date, QuoteID: p.QuoteID, Snapshot: snap}); err != nil {
		log.Warn().Err(err).Str("date", date).Msg("save daily progress")
		return false
	}
	return true
}

// IsTodayCompleted reports whether today's record is completed.
func (c *Coordinator) IsTodayCompleted() bool {
	return TodayCompleted(c.kv, c.clock())
}

// Streaks returns the current and best daily completion streaks.
func (c *Coordinator) Streaks() (current, best int) {
	return Streaks(c.kv, c.clock())
}
