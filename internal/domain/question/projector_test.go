package question

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askwave/askwave/internal/aggregate"
	"github.com/askwave/askwave/internal/event"
)

func wrap(p event.Payload) event.Event {
	return event.Event{AggregateType: event.AggregateQuestion, AggregateID: "q-1", Payload: p}
}

func TestProjector_Lifecycle(t *testing.T) {
	projector := Projector{}
	var state aggregate.Payload = aggregate.Empty{}

	state = projector.Project(state, wrap(QuestionCreated{
		Text:            "Ready?",
		Options:         testOptions,
		QuestionGroupID: "g-1",
	}))
	q, ok := state.(Question)
	require.True(t, ok)
	assert.False(t, q.IsDisplayed)
	assert.Empty(t, q.Responses)

	state = projector.Project(state, wrap(QuestionDisplayStarted{}))
	assert.True(t, state.(Question).IsDisplayed)

	state = projector.Project(state, wrap(ResponseAdded{
		ResponseID:       "r-1",
		SelectedOptionID: "1",
		ClientID:         "c-1",
		Timestamp:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.Len(t, state.(Question).Responses, 1)

	state = projector.Project(state, wrap(QuestionDisplayStopped{}))
	assert.False(t, state.(Question).IsDisplayed)

	state = projector.Project(state, wrap(QuestionGroupIDUpdated{QuestionGroupID: "g-2"}))
	assert.Equal(t, "g-2", state.(Question).QuestionGroupID)

	state = projector.Project(state, wrap(QuestionDeleted{}))
	tombstone, ok := state.(DeletedQuestion)
	require.True(t, ok)
	assert.Equal(t, "g-2", tombstone.QuestionGroupID)
	assert.Len(t, tombstone.Responses, 1)
}

func TestProjector_TombstoneIsTerminal(t *testing.T) {
	projector := Projector{}
	var state aggregate.Payload = DeletedQuestion{Text: "gone"}

	for _, p := range []event.Payload{
		QuestionUpdated{Text: "new", Options: testOptions},
		QuestionDisplayStarted{},
		ResponseAdded{ResponseID: "r-1", SelectedOptionID: "1"},
	} {
		next := projector.Project(state, wrap(p))
		assert.Equal(t, state, next, "event %s must not leave the tombstone", p.EventType())
	}
}

func TestProjector_UnrecognizedEventIsNoOp(t *testing.T) {
	projector := Projector{}

	// A create against an already live variant changes nothing.
	state := projector.Project(Question{Text: "Ready?"}, wrap(QuestionCreated{Text: "again"}))
	assert.Equal(t, Question{Text: "Ready?"}, state)

	// Non-create events against Empty change nothing.
	empty := projector.Project(aggregate.Empty{}, wrap(QuestionDisplayStarted{}))
	assert.Equal(t, aggregate.Empty{}, empty)
}

func TestProjector_ResponseFoldDoesNotAliasSlices(t *testing.T) {
	projector := Projector{}
	base := Question{Text: "Ready?", Options: testOptions, IsDisplayed: true, Responses: []QuestionResponse{}}

	first := projector.Project(base, wrap(ResponseAdded{ResponseID: "r-1", SelectedOptionID: "1"}))
	second := projector.Project(base, wrap(ResponseAdded{ResponseID: "r-2", SelectedOptionID: "2"}))

	assert.Equal(t, "r-1", first.(Question).Responses[0].ID)
	assert.Equal(t, "r-2", second.(Question).Responses[0].ID)
	assert.Empty(t, base.Responses)
}
