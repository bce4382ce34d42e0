package domain

import (
	"github.com/askwave/askwave/internal/aggregate"
	"github.com/askwave/askwave/internal/event"
)

// Command is a request to validate against current aggregate state and
// possibly produce one event.
//
// AggregateID returns the partition the command targets; an empty id
// asks the executor to generate a fresh one (create commands).
//
// Handle inspects the current snapshot and returns either the event
// payload to append, or nil for an accepted no-op (e.g. adding a
// question to a group that already contains it), or an error rejecting
// the command. Handle must not mutate anything: state changes only
// through the returned event.
type Command interface {
	AggregateType() string
	AggregateID() string
	Handle(agg aggregate.Aggregate) (event.Payload, error)
}
