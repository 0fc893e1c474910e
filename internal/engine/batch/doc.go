// Package batch splits a list of items into balanced shards and runs one
// callback per shard on a bounded pool of goroutines.
//
// Partition produces exactly k contiguous shards whose sizes differ by at most
// one, so concatenating them in order reproduces the input. Processor runs a
// callback per shard with at most k shards in flight, reports progress after
// each completed shard, and cancels the remaining shards on the first error.
package batch
