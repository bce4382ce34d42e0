package event

import (
	"time"

	"github.com/google/uuid"
)

// Aggregate type names. These partition the event log: events for
// different types never share a partition, even with colliding ids.
const (
	AggregateQuestion      = "Question"
	AggregateQuestionGroup = "QuestionGroup"
	AggregateActiveUsers   = "ActiveUsers"
)

// Payload is implemented by every concrete event payload.
// EventType returns the stable wire name (e.g. "QuestionCreated") used
// for storage, decoding, and notification routing.
type Payload interface {
	EventType() string
}

// Event is the immutable envelope appended to the log.
//
// Version is the per-partition sequence: the first event of an
// aggregate has Version 1 and each subsequent event increments it by
// exactly one. Version is the optimistic-concurrency token - an append
// is accepted only if no event with the same version already exists
// for the partition.
//
// SortableID is a UUIDv7: unique across the whole log and ordered by
// creation time. It supports "wait until at least this point has been
// applied" read consistency, but carries no cross-partition ordering
// guarantee stronger than wall time.
type Event struct {
	AggregateType string
	AggregateID   string
	Version       int64
	SortableID    string
	OccurredAt    time.Time
	Payload       Payload
}

// NewSortableID returns a new time-sortable unique id.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids sort
// by creation time. Panics if generation fails (never in practice).
func NewSortableID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewAggregateID returns a fresh random aggregate id.
func NewAggregateID() string {
	return uuid.NewString()
}
