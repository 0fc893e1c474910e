package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/jekabs-s/urlookup/internal/logging"
	"github.com/jekabs-s/urlookup/internal/registry"
)

// Default retry policy.
const (
	DefaultAttempts = 3
	DefaultBackoff  = 5 * time.Second
)

// Searcher issues one registry query for an exact entity name.
type Searcher interface {
	Search(ctx context.Context, name string) ([]registry.RawRecord, error)
}

// RetryPolicy bounds the attempts made per name.
type RetryPolicy struct {
	// Attempts is the total number of tries per name, at least 1.
	Attempts int
	// Backoff is the fixed wait between a failed attempt and the next one.
	Backoff time.Duration
}

// Fetcher looks up the names of one shard sequentially.
type Fetcher struct {
	searcher Searcher
	policy   RetryPolicy
	metrics  MetricsRecorder
}

// NewFetcher creates a Fetcher. A policy with fewer than one attempt is
// treated as a single attempt.
func NewFetcher(searcher Searcher, policy RetryPolicy, metrics MetricsRecorder) *Fetcher {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Backoff < 0 {
		policy.Backoff = 0
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Fetcher{searcher: searcher, policy: policy, metrics: metrics}
}

// FetchShard looks up every name of shard in order and returns one NameResult
// per name. Retry exhaustion and rejections are reported in the results, not
// as errors. A malformed date or a cancelled context stops the shard.
func (f *Fetcher) FetchShard(ctx context.Context, shardIndex int, shard []string) ([]NameResult, error) {
	results := make([]NameResult, 0, len(shard))
	for _, name := range shard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		nr, err := f.fetchName(ctx, shardIndex, name)
		if err != nil {
			return nil, err
		}
		f.metrics.IncOutcome(nr.Outcome.String())
		f.metrics.AddRecords(len(nr.Records))
		results = append(results, nr)
	}
	return results, nil
}

func (f *Fetcher) fetchName(ctx context.Context, shardIndex int, name string) (NameResult, error) {
	log := logging.ComponentLogger(*logging.FromContext(ctx), "fetcher").With().
		Int("shard", shardIndex).
		Str("entity_name", name).
		Logger()
	log.Debug().Ctx(ctx).Msg("processing entity name")

	nr := NameResult{Name: name, Shard: shardIndex}

	for attempt := 1; attempt <= f.policy.Attempts; attempt++ {
		nr.Attempts = attempt
		f.metrics.IncAttempt()

		raw, err := f.searcher.Search(ctx, name)
		if err == nil {
			records, normErr := normalizeAll(raw)
			if normErr != nil {
				return NameResult{}, fmt.Errorf("entity %q: %w", name, normErr)
			}
			nr.Outcome = OutcomeMatched
			nr.Records = records
			return nr, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return NameResult{}, ctxErr
		}

		category := registry.GetCategory(err)
		f.metrics.IncFailure(string(category))

		if !registry.IsRetryable(err) {
			nr.Outcome = OutcomeRejected
			nr.Reason = registry.Reason(err)
			log.Warn().Ctx(ctx).
				Str("category", string(category)).
				Str("reason", nr.Reason).
				Msg("registry rejected query")
			return nr, nil
		}

		nr.Reason = err.Error()
		if attempt == f.policy.Attempts {
			break
		}

		log.Warn().Ctx(ctx).
			Str("category", string(category)).
			Int("attempt", attempt).
			Dur("backoff", f.policy.Backoff).
			Err(err).
			Msg("attempt failed, retrying")

		if waitErr := wait(ctx, f.policy.Backoff); waitErr != nil {
			return NameResult{}, waitErr
		}
	}

	log.Warn().Ctx(ctx).
		Int("attempts", nr.Attempts).
		Str("last_error", nr.Reason).
		Msg("retries exhausted")
	nr.Outcome = OutcomeExhausted
	return nr, nil
}

func normalizeAll(raw []registry.RawRecord) ([]Record, error) {
	records := make([]Record, 0, len(raw))
	for _, r := range raw {
		rec, err := NormalizeRecord(r)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
