package batch

import (
	"sync"
	"time"
)

// percentMultiplier is used to convert a ratio to percentage (0-100).
const percentMultiplier = 100

// ProgressSnapshot is the state of a run right after a shard completed.
type ProgressSnapshot struct {
	TotalItems      int
	ProcessedItems  int
	TotalShards     int
	ProcessedShards int
	PercentComplete float64
	ElapsedTime     time.Duration

	// Remaining extrapolates the average time per processed item over the
	// unprocessed items. Zero until the first item is processed.
	Remaining time.Duration
}

// progress accumulates completed shards for one Process call.
type progress struct {
	mu sync.Mutex

	totalItems  int
	totalShards int
	items       int
	shards      int
	start       time.Time
	now         func() time.Time
}

func newProgress(totalItems, totalShards int, now func() time.Time) *progress {
	if now == nil {
		now = time.Now
	}
	return &progress{
		totalItems:  totalItems,
		totalShards: totalShards,
		start:       now(),
		now:         now,
	}
}

// complete records one finished shard of n items and returns the new state.
func (p *progress) complete(n int) ProgressSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.items += n
	p.shards++

	elapsed := p.now().Sub(p.start)
	snap := ProgressSnapshot{
		TotalItems:      p.totalItems,
		ProcessedItems:  p.items,
		TotalShards:     p.totalShards,
		ProcessedShards: p.shards,
		ElapsedTime:     elapsed,
	}
	if p.totalItems > 0 {
		snap.PercentComplete = float64(p.items) / float64(p.totalItems) * percentMultiplier
	}
	if p.items > 0 {
		perItem := elapsed / time.Duration(p.items)
		snap.Remaining = perItem * time.Duration(p.totalItems-p.items)
	}
	return snap
}
