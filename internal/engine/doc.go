// Package engine implements the batch lookup engine.
//
// Engine.Run partitions entity names into one shard per worker, runs a Fetcher
// over every shard concurrently and flattens the per-shard results in shard
// order. The Fetcher queries the registry once per name with a bounded retry
// policy and maps each raw record onto the canonical field set.
//
// Every name ends in exactly one outcome:
//   - Matched: the registry answered 200; zero or more records were mapped
//   - Exhausted: every attempt failed with a retryable error
//   - Rejected: the registry answered with a non-200 status
//
// A malformed registration or termination date aborts the whole run with a
// *DateParseError and no partial ResultSet.
package engine
