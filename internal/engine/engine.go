package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jekabs-s/urlookup/internal/engine/batch"
	"github.com/jekabs-s/urlookup/internal/logging"
)

// ErrNilSearcher is returned by New without a Searcher.
var ErrNilSearcher = errors.New("engine requires a searcher")

// Config controls a lookup run.
type Config struct {
	// Workers is both the shard count and the number of concurrent shards.
	Workers int
	Retry   RetryPolicy
}

// Engine runs batch lookups.
type Engine struct {
	searcher   Searcher
	cfg        Config
	metrics    MetricsRecorder
	onProgress batch.ProgressCallback
}

// New validates cfg and returns an Engine. A zero Workers uses
// batch.DefaultWorkers; zero Retry fields use DefaultAttempts and
// DefaultBackoff.
func New(searcher Searcher, cfg Config) (*Engine, error) {
	if searcher == nil {
		return nil, ErrNilSearcher
	}
	if cfg.Workers == 0 {
		cfg.Workers = batch.DefaultWorkers
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry.Attempts = DefaultAttempts
	}
	if cfg.Retry.Attempts < 0 {
		return nil, fmt.Errorf("attempts must be >= 1: got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Backoff < 0 {
		return nil, fmt.Errorf("backoff must be >= 0: got %s", cfg.Retry.Backoff)
	}
	if _, err := batch.NewProcessor[string](cfg.Workers); err != nil {
		return nil, err
	}

	return &Engine{
		searcher: searcher,
		cfg:      cfg,
		metrics:  nopMetrics{},
	}, nil
}

// WithMetrics sets the recorder that counts attempts, outcomes and records.
func (e *Engine) WithMetrics(m MetricsRecorder) *Engine {
	if m == nil {
		m = nopMetrics{}
	}
	e.metrics = m
	return e
}

// WithProgressCallback sets a callback invoked after each completed shard.
func (e *Engine) WithProgressCallback(cb batch.ProgressCallback) *Engine {
	e.onProgress = cb
	return e
}

// Workers returns the effective shard count.
func (e *Engine) Workers() int {
	return e.cfg.Workers
}

// Run looks up every name and returns the flattened results. Records keep
// shard order and within-shard order. The first shard error cancels the run
// and no ResultSet is returned.
func (e *Engine) Run(ctx context.Context, names []string) (*ResultSet, error) {
	log := logging.ComponentLogger(*logging.FromContext(ctx), "engine")
	start := time.Now()

	if len(names) == 0 {
		return newResultSet(nil), nil
	}

	log.Info().Ctx(ctx).
		Int("names", len(names)).
		Int("workers", e.cfg.Workers).
		Int("attempts", e.cfg.Retry.Attempts).
		Dur("backoff", e.cfg.Retry.Backoff).
		Msg("starting lookup run")

	proc, err := batch.NewProcessor[string](e.cfg.Workers)
	if err != nil {
		return nil, err
	}
	proc.WithProgressCallback(e.onProgress)

	fetcher := NewFetcher(e.searcher, e.cfg.Retry, e.metrics)

	// Each shard writes only its own slot.
	perShard := make([][]NameResult, e.cfg.Workers)
	err = proc.Process(ctx, names, func(ctx context.Context, shard []string, shardIndex int) error {
		results, fetchErr := fetcher.FetchShard(ctx, shardIndex, shard)
		if fetchErr != nil {
			return fetchErr
		}
		perShard[shardIndex] = results
		return nil
	})
	elapsed := time.Since(start)
	e.metrics.ObserveRun(elapsed.Seconds())

	if err != nil {
		log.Error().Ctx(ctx).
				Err(err).
			Dur("duration", elapsed).
			Msg("lookup run failed")
		return nil, err
	}

	rs := newResultSet(perShard)
	rs.Duration = elapsed

	log.Info().Ctx(ctx).
		Int("names", rs.Summary.Names).
		Int("matched", rs.Summary.Matched).
		Int("exhausted", rs.Summary.Exhausted).
		Int("rejected", rs.Summary.Rejected).
		Int("records", rs.Summary.Records).
		Dur("duration", elapsed).
		Msg("lookup run complete")

	return rs, nil
}
