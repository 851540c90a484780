// internal/stats/stats.go
//
// Statistics over the attempt ledger. Aggregates are computed in a single
// pass and cached against the progress manager's write sequence, so a
// cached summary can never outlive a write.

package stats

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/rohanluthra13/cryptogram/internal/progress"
	"github.com/rohanluthra13/cryptogram/internal/puzzle"
)

// Summary holds the derived aggregates for a set of attempts. Time fields
// are nil when no completed attempt exists.
type Summary struct {
	TotalAttempts  int `json:"totalAttempts"`
	Completions    int `json:"completions"`
	Failures       int `json:"failures"`
	WinRatePercent int `json:"winRatePercent"`

	AverageCompletionTime *float64 `json:"averageCompletionTime,omitempty"`
	BestCompletionTime    *float64 `json:"bestCompletionTime,omitempty"`
}

// Compute derives a Summary in one pass over the attempts.
func Compute(attempts []progress.Attempt) Summary {
	var (
		s        Summary
		timeSum  float64
		timedN   int
		bestSeen float64
	)
	for _, a := range attempts {
		s.TotalAttempts++
		if a.Completed() {
			s.Completions++
			if a.CompletionTime != nil {
				t := *a.CompletionTime
				timeSum += t
				if timedN == 0 || t < bestSeen {
					bestSeen = t
				}
				timedN++
			}
		} else if a.FailedAt != nil {
			s.Failures++
		}
	}
	if s.TotalAttempts > 0 {
		s.WinRatePercent = int(math.Round(float64(s.Completions) / float64(s.TotalAttempts) * 100))
	}
	if timedN > 0 {
		avg := timeSum / float64(timedN)
		best := bestSeen
		s.AverageCompletionTime = &avg
		s.BestCompletionTime = &best
	}
	return s
}

// Aggregator serves summaries over a progress manager. The global summary
// is cached together with the manager's write sequence and recomputed only
// when the sequence has moved.
type Aggregator struct {
	mu        sync.Mutex
	mgr       *progress.Manager
	cached    *Summary
	cachedSeq uint64
}

// NewAggregator wraps the given progress manager.
func NewAggregator(mgr *progress.Manager) *Aggregator {
	return &Aggregator{mgr: mgr}
}

// Summary returns the global summary, served from cache while no write has
// landed since it was computed.
func (a *Aggregator) Summary(ctx context.Context) Summary {
	seq := a.mgr.WriteSeq()

	a.mu.Lock()
	if a.cached != nil && a.cachedSeq == seq {
		s := *a.cached
		a.mu.Unlock()
		return s
	}
	a.mu.Unlock()

	s := Compute(a.mgr.AllAttempts(ctx))

	a.mu.Lock()
	a.cached = &s
	a.cachedSeq = seq
	a.mu.Unlock()
	return s
}

// PuzzleSummary returns the summary for one puzzle, optionally narrowed to
// an encoding variant. Always computed fresh.
func (a *Aggregator) PuzzleSummary(ctx context.Context, puzzleID uuid.UUID, enc puzzle.Encoding) Summary {
	return Compute(a.mgr.Attempts(ctx, puzzleID, enc))
}

// Invalidate drops the cached global summary unconditionally.
func (a *Aggregator) Invalidate() {
	a.mu.Lock()
	a.cached = nil
	a.mu.Unlock()
}
