// Package store provides durable storage for the event log.
//
// The log is append-only and partitioned by (aggregate_type,
// aggregate_id). Within a partition, events carry a contiguous version
// starting at 1; a UNIQUE constraint on (aggregate_type, aggregate_id,
// version) makes append-if-not-superseded atomic - a concurrent writer
// that lost the race gets a conflict error and must re-read and retry.
//
// Ordering:
//   - Within a partition: version is authoritative.
//   - Across partitions: the rowid reflects commit order, which is what
//     the replay feed uses. Consumers must not treat it as a causal
//     order between different aggregates.
//
// Two implementations: SQLite (WAL mode, durable) and an in-memory
// store with identical semantics for tests.
package store
