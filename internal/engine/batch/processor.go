package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Default shard processing configuration.
const (
	// DefaultWorkers is the default number of shards and concurrent workers.
	DefaultWorkers = 8

	// MinWorkers is the minimum allowed worker count.
	MinWorkers = 1

	// MaxWorkers is the maximum allowed worker count.
	MaxWorkers = 256
)

// Common shard processing errors.
var (
	ErrInvalidWorkers = errors.New("workers must be between 1 and 256")
	ErrNilCallback    = errors.New("shard callback cannot be nil")
)

// ShardCallback processes one shard. It receives the shard items and the
// shard index (0-based) and returns an error if processing fails.
type ShardCallback[T any] func(ctx context.Context, shard []T, shardIndex int) error

// ProgressCallback is an optional callback invoked after each shard completes.
// Calls are serialized.
type ProgressCallback func(snapshot ProgressSnapshot)

// Processor splits items into one shard per worker and processes the shards
// concurrently.
type Processor[T any] struct {
	// workers is both the shard count and the concurrency limit.
	workers int

	// onProgress is an optional callback for progress updates.
	onProgress ProgressCallback

	// mu serializes progress callbacks.
	mu sync.Mutex
}

// NewProcessor creates a new shard processor with the given worker count.
func NewProcessor[T any](workers int) (*Processor[T], error) {
	if workers < MinWorkers || workers > MaxWorkers {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, workers)
	}

	return &Processor[T]{
		workers: workers,
	}, nil
}

// WithProgressCallback sets a progress callback for the processor.
func (p *Processor[T]) WithProgressCallback(callback ProgressCallback) *Processor[T] {
	p.onProgress = callback
	return p
}

// Workers returns the configured worker count.
func (p *Processor[T]) Workers() int {
	return p.workers
}

// Process partitions items into Workers shards and runs callback once per
// shard. The first failing shard cancels the context passed to the others and
// its error is returned wrapped with the shard index. Process returns only
// after every started callback has returned.
func (p *Processor[T]) Process(ctx context.Context, items []T, callback ShardCallback[T]) error {
	if callback == nil {
		return ErrNilCallback
	}

	shards := Partition(items, p.workers)
	progress := newProgress(len(items), len(shards), nil)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for shardIndex, shard := range shards {
		g.Go(func() error {
			// A cancelled group skips shards that have not started yet.
			if err := gctx.Err(); err != nil {
				return err
			}

			if err := callback(gctx, shard, shardIndex); err != nil {
				return fmt.Errorf("shard %d failed: %w", shardIndex, err)
			}

			p.notify(progress, len(shard))
			return nil
		})
	}

	return g.Wait()
}

// notify records a completed shard. Snapshots reach the callback in
// completion order.
func (p *Processor[T]) notify(progress *progress, items int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := progress.complete(items)
	if p.onProgress != nil {
		p.onProgress(snap)
	}
}
