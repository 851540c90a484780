// internal/daily/record.go
//
// DailyProgress blobs: one JSON record per calendar date, stored in the
// preferences substrate under dailyProgress.<date>. The embedded session
// snapshot carries the per-cell state; Date and QuoteID bind it to the
// day's assigned puzzle.

package daily

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/rohanluthra13/cryptogram/internal/game"
	"github.com/rohanluthra13/cryptogram/internal/prefs"
)

const keyPrefix = "dailyProgress."

// Record is the persisted state of one calendar day's puzzle.
type Record struct {
	Date    string `json:"date"`
	QuoteID int64  `json:"quoteId"`
	game.Snapshot
}

func recordKey(date string) string { return keyPrefix + date }

// LoadRecord reads the record for a date. A clean miss returns (nil, nil);
// storage failures and unreadable blobs return the error.
func LoadRecord(kv prefs.KV, date string) (*Record, error) {
	var rec Record
	if err := prefs.GetJSON(kv, recordKey(date), &rec); err != nil {
		if errors.Is(err, prefs.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func saveRecord(kv prefs.KV, rec Record) error {
	return prefs.SetJSON(kv, recordKey(rec.Date), rec)
}

// Records returns every stored daily record in date order. Unreadable
// records are skipped; one bad blob never hides the rest.
func Records(kv prefs.KV) ([]Record, error) {
	keys, err := kv.Keys(keyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		var rec Record
		if err := prefs.GetJSON(kv, k, &rec); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("skipping unreadable daily record")
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
