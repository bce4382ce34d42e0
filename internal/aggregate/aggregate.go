// Package aggregate defines the consistency boundary of the domain:
// a payload variant folded from a single partition's event history.
//
// Every aggregate starts as Empty. A create event transitions it to its
// live variant; later events mutate fields or transition it to a
// tombstone variant, which is terminal. The fold is a pure function, so
// replaying a partition's full history from Empty always reproduces the
// current snapshot exactly.
package aggregate

import (
	"github.com/askwave/askwave/internal/event"
)

// Payload is one state variant of an aggregate: Empty, a live variant,
// or a Deleted tombstone. PayloadName identifies the variant in logs
// and query results.
type Payload interface {
	PayloadName() string
}

// Empty is the state of an aggregate before its first event.
type Empty struct{}

// PayloadName identifies the empty variant.
func (Empty) PayloadName() string { return "Empty" }

// Aggregate is a snapshot of one partition: the folded payload plus the
// version counter, which equals the number of applied events.
type Aggregate struct {
	Type           string
	ID             string
	Version        int64
	Payload        Payload
	LastSortableID string
}

// IsEmpty reports whether no event has ever been applied.
func (a Aggregate) IsEmpty() bool {
	_, empty := a.Payload.(Empty)
	return empty
}

// Projector folds events into payload variants for one aggregate type.
//
// Project must be total over (variant, event type) pairs: unrecognized
// combinations return the payload unchanged. It never returns an error;
// validation happens in command handlers before an event exists.
type Projector interface {
	AggregateType() string
	Project(p Payload, e event.Event) Payload
}

// Replay folds an ordered event sequence from Empty into a snapshot.
// The input order must be the partition order (ascending version).
func Replay(projector Projector, id string, events []event.Event) Aggregate {
	agg := Aggregate{
		Type:    projector.AggregateType(),
		ID:      id,
		Payload: Empty{},
	}
	for _, e := range events {
		agg.Payload = projector.Project(agg.Payload, e)
		agg.Version = e.Version
		agg.LastSortableID = e.SortableID
	}
	return agg
}
