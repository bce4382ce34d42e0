package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askwave/askwave/internal/event"
)

func queuedEvent(id string) event.Event {
	return event.Event{AggregateType: event.AggregateQuestion, AggregateID: id}
}

func TestQueue_FIFO(t *testing.T) {
	q := newEventQueue()

	assert.True(t, q.Enqueue(queuedEvent("q-1")))
	assert.True(t, q.Enqueue(queuedEvent("q-2")))
	require.Equal(t, 2, q.Len())

	first, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "q-1", first.AggregateID)

	second, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "q-2", second.AggregateID)

	_, ok = q.TryDequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_SignalCoalesces(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(queuedEvent("q-1"))
	q.Enqueue(queuedEvent("q-2"))

	<-q.Wait()
	select {
	case <-q.Wait():
		t.Fatal("signal channel must hold at most one wakeup")
	default:
	}
}

func TestQueue_CloseRejectsAndWakes(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(queuedEvent("q-1"))
	assert.False(t, q.Closed())

	q.Close()
	q.Close() // idempotent

	assert.True(t, q.Closed())
	assert.False(t, q.Enqueue(queuedEvent("q-2")))
	assert.Equal(t, 1, q.Len(), "already queued events survive Close")

	// The closed signal channel fires immediately so Run can drain out.
	for i := 0; i < 2; i++ {
		select {
		case <-q.Wait():
		default:
			t.Fatal("closed queue must always wake waiters")
		}
	}
}
