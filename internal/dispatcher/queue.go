package dispatcher

import (
	"sync"

	"github.com/askwave/askwave/internal/event"
)

// eventQueue is a thread-safe FIFO of committed events.
//
// The queue is unbounded so a burst of commits never blocks the
// executor's fan-out. Enqueuing happens from command goroutines while
// the dispatcher's Run loop dequeues; the buffered signal channel
// coalesces wakeups and lets Run wait with context awareness.
type eventQueue struct {
	mu     sync.Mutex
	events []event.Event
	closed bool
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]event.Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue appends an event. Returns false after Close.
func (q *eventQueue) Enqueue(e event.Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.events = append(q.events, e)

	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

// TryDequeue pops the front event without blocking.
func (q *eventQueue) TryDequeue() (event.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return event.Event{}, false
	}
	e := q.events[0]

	// Zero the slot so the payload can be collected before the
	// backing array is reallocated.
	q.events[0] = event.Event{}
	if len(q.events) == 1 {
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}
	return e, true
}

// Wait returns the wakeup channel for use in a select with ctx.Done.
// Wakeups coalesce, so a token can outlive the events it announced;
// consumers must re-check Len and Closed after waking.
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Closed reports whether the queue has stopped accepting events.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Len returns the number of queued events.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close stops accepting events and wakes all waiters.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.signal)
}
