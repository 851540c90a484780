// Package daily assigns one puzzle per calendar date, persists its
// in-progress state, and derives completion streaks.
package daily

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rohanluthra13/cryptogram/internal/prefs"
)

// dateLayout is the calendar key format shared with the daily_puzzles
// table.
const dateLayout = "2006-01-02"

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// TodayCompleted reports whether the record for now's date is completed.
func TodayCompleted(kv prefs.KV, now time.Time) bool {
	rec, err := LoadRecord(kv, DateKey(now))
	if err != nil {
		log.Warn().Err(err).Msg("read today's daily record")
		return false
	}
	return rec != nil && rec.Completed
}

// Streaks derives the completion streaks from the stored daily records.
// Current counts consecutive completed days ending today or yesterday
// (yesterday keeps a live streak visible before today's puzzle is solved);
// best is the longest run ever observed.
func Streaks(kv prefs.KV, today time.Time) (current, best int) {
	recs, err := Records(kv)
	if err != nil {
		log.Warn().Err(err).Msg("read daily records for streaks")
		return 0, 0
	}

	completed := make(map[string]bool, len(recs))
	var days []string // in date order, as returned by Records
	for _, r := range recs {
		if !r.Completed {
			continue
		}
		if _, err := time.Parse(dateLayout, r.Date); err != nil {
			log.Warn().Str("date", r.Date).Msg("skipping daily record with malformed date")
			continue
		}
		completed[r.Date] = true
		days = append(days, r.Date)
	}
	if len(days) == 0 {
		return 0, 0
	}

	run := 1
	best = 1
	for i := 1; i < len(days); i++ {
		if nextDay(days[i-1]) == days[i] {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}

	cursor := DateKey(today)
	if !completed[cursor] {
		cursor = prevDay(cursor)
	}
	for completed[cursor] {
		current++
		cursor = prevDay(cursor)
	}
	return current, best
}

func nextDay(key string) string { return shiftDay(key, 1) }
func prevDay(key string) string { return shiftDay(key, -1) }

func shiftDay(key string, delta int) string {
	t, err := time.Parse(dateLayout, key)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, delta).Format(dateLayout)
}
