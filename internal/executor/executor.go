// Package executor runs commands against aggregates with per-partition
// single-writer semantics.
//
// One command at a time executes per aggregate id: the executor takes a
// keyed lock on the partition, replays the snapshot from the log, hands
// it to the command handler, and appends the emitted event with the
// next version. Commands on different partitions proceed concurrently.
// The keyed lock serializes writers in this process; the store's
// version constraint still backstops appends from other processes, so a
// conflict error remains possible and callers must re-read and retry.
//
// Committed events fan out synchronously to registered appliers (the
// read model) and asynchronously to publishers (the dispatcher queue).
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/askwave/askwave/internal/aggregate"
	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/event"
	"github.com/askwave/askwave/internal/syncutil"
)

// Store is the slice of the event log the executor needs: ordered
// partition reads and append-if-not-superseded writes.
type Store interface {
	Load(ctx context.Context, aggregateType, aggregateID string) ([]event.Event, error)
	Append(ctx context.Context, e event.Event) error
}

// Applier consumes committed events synchronously, in commit order.
// The read model implements this so queries issued after a successful
// command observe its effect.
type Applier interface {
	Apply(e event.Event)
}

// Publisher receives committed events for asynchronous consumption.
// Publish must not block; the dispatcher queue implements it.
type Publisher interface {
	Publish(e event.Event)
}

// Result reports a handled command.
// Event is nil for an accepted no-op (the command was valid but the
// state already satisfied it).
type Result struct {
	AggregateID    string
	Version        int64
	LastSortableID string
	Event          *event.Event
}

// Executor validates commands against replayed snapshots and appends
// the resulting events.
type Executor struct {
	store      Store
	projectors map[string]aggregate.Projector
	appliers   []Applier
	publishers []Publisher
	locks      *syncutil.KeyedMutex
	now        func() time.Time
}

// New creates an executor over the given store and projectors.
func New(store Store, projectors ...aggregate.Projector) *Executor {
	byType := make(map[string]aggregate.Projector, len(projectors))
	for _, p := range projectors {
		byType[p.AggregateType()] = p
	}
	return &Executor{
		store:      store,
		projectors: byType,
		locks:      syncutil.NewKeyedMutex(),
		now:        time.Now,
	}
}

// WithApplier registers a synchronous committed-event consumer.
func (x *Executor) WithApplier(a Applier) *Executor {
	x.appliers = append(x.appliers, a)
	return x
}

// WithPublisher registers an asynchronous committed-event consumer.
func (x *Executor) WithPublisher(p Publisher) *Executor {
	x.publishers = append(x.publishers, p)
	return x
}

// WithClock overrides the event timestamp source. Tests use this.
func (x *Executor) WithClock(now func() time.Time) *Executor {
	x.now = now
	return x
}

// Execute runs one command to completion: lock the partition, replay,
// handle, append, fan out.
func (x *Executor) Execute(ctx context.Context, cmd domain.Command) (Result, error) {
	projector, ok := x.projectors[cmd.AggregateType()]
	if !ok {
		return Result{}, fmt.Errorf("no projector registered for aggregate type %q", cmd.AggregateType())
	}

	id := cmd.AggregateID()
	if id == "" {
		id = event.NewAggregateID()
	}

	unlock := x.locks.Lock(cmd.AggregateType() + "/" + id)
	defer unlock()

	agg, err := x.load(ctx, projector, id)
	if err != nil {
		return Result{}, err
	}

	payload, err := cmd.Handle(agg)
	if err != nil {
		slog.Debug("command rejected",
			"aggregate_type", agg.Type,
			"aggregate_id", id,
			"error", err,
		)
		return Result{}, err
	}
	if payload == nil {
		// Accepted no-op: state already satisfies the command.
		return Result{
			AggregateID:    id,
			Version:        agg.Version,
			LastSortableID: agg.LastSortableID,
		}, nil
	}

	evt := event.Event{
		AggregateType: agg.Type,
		AggregateID:   id,
		Version:       agg.Version + 1,
		SortableID:    event.NewSortableID(),
		OccurredAt:    x.now().UTC(),
		Payload:       payload,
	}

	if err := x.store.Append(ctx, evt); err != nil {
		return Result{}, err
	}

	slog.Debug("event committed",
		"aggregate_type", evt.AggregateType,
		"aggregate_id", evt.AggregateID,
		"version", evt.Version,
		"event_type", evt.Payload.EventType(),
	)

	for _, a := range x.appliers {
		a.Apply(evt)
	}
	for _, p := range x.publishers {
		p.Publish(evt)
	}

	return Result{
		AggregateID:    id,
		Version:        evt.Version,
		LastSortableID: evt.SortableID,
		Event:          &evt,
	}, nil
}

// LoadAggregate replays the current snapshot of one partition. The
// dispatcher uses it for audience lookups; queries should prefer the
// read model.
func (x *Executor) LoadAggregate(ctx context.Context, aggregateType, id string) (aggregate.Aggregate, error) {
	projector, ok := x.projectors[aggregateType]
	if !ok {
		return aggregate.Aggregate{}, fmt.Errorf("no projector registered for aggregate type %q", aggregateType)
	}
	return x.load(ctx, projector, id)
}

func (x *Executor) load(ctx context.Context, projector aggregate.Projector, id string) (aggregate.Aggregate, error) {
	events, err := x.store.Load(ctx, projector.AggregateType(), id)
	if err != nil {
		return aggregate.Aggregate{}, fmt.Errorf("load %s/%s: %w", projector.AggregateType(), id, err)
	}
	return aggregate.Replay(projector, id, events), nil
}
