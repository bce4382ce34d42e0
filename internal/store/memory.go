package store

import (
	"context"
	"sync"

	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/event"
)

// Memory is an in-memory event store with the same append semantics as
// the SQLite store. Used by tests and the scenario harness.
type Memory struct {
	mu         sync.RWMutex
	log        []event.Event
	partitions map[string][]event.Event
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{partitions: make(map[string][]event.Event)}
}

func partitionKey(aggregateType, aggregateID string) string {
	return aggregateType + "/" + aggregateID
}

// Append writes one event, rejecting versions already present in the
// partition with a conflict error.
func (m *Memory) Append(_ context.Context, e event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := partitionKey(e.AggregateType, e.AggregateID)
	for _, existing := range m.partitions[key] {
		if existing.Version == e.Version {
			return domain.NewConflictError("event %s/%s version %d already exists",
				e.AggregateType, e.AggregateID, e.Version)
		}
	}

	m.partitions[key] = append(m.partitions[key], e)
	m.log = append(m.log, e)
	return nil
}

// Load returns a partition's events ordered by version.
func (m *Memory) Load(_ context.Context, aggregateType, aggregateID string) ([]event.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	partition := m.partitions[partitionKey(aggregateType, aggregateID)]
	events := make([]event.Event, len(partition))
	copy(events, partition)
	return events, nil
}

// ReadAll returns the whole log in commit order.
func (m *Memory) ReadAll(_ context.Context) ([]event.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]event.Event, len(m.log))
	copy(events, m.log)
	return events, nil
}
