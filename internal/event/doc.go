// Package event defines the immutable event envelope shared by every
// aggregate, the payload registry used to decode stored events by name,
// and the sortable identifiers that order events within a partition.
//
// An event is a fact: appended once, never mutated, never deleted. The
// envelope carries the partition key (aggregate type + id), the
// per-partition version used for optimistic concurrency, and a
// time-sortable unique id used for cross-checkpoint comparisons.
//
// Concrete payload types live next to their aggregates (see
// internal/domain/...) and register themselves with this package so the
// store can round-trip them by name.
package event
