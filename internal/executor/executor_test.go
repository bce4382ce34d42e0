package executor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/domain/question"
	"github.com/askwave/askwave/internal/event"
	"github.com/askwave/askwave/internal/executor"
	"github.com/askwave/askwave/internal/store"
	"github.com/askwave/askwave/internal/testutil"
)

var testOptions = []question.QuestionOption{{ID: "1", Text: "Yes"}, {ID: "2", Text: "No"}}

type captureApplier struct {
	events []event.Event
}

func (c *captureApplier) Apply(e event.Event) { c.events = append(c.events, e) }

type capturePublisher struct {
	events []event.Event
}

func (c *capturePublisher) Publish(e event.Event) { c.events = append(c.events, e) }

func newExecutor() (*executor.Executor, *captureApplier, *capturePublisher) {
	applier := &captureApplier{}
	publisher := &capturePublisher{}
	exec := executor.New(store.NewMemory(), question.Projector{}).
		WithApplier(applier).
		WithPublisher(publisher).
		WithClock(testutil.NewDefaultClock().Now)
	return exec, applier, publisher
}

func TestExecute_CreateGeneratesIDAndVersionOne(t *testing.T) {
	exec, applier, publisher := newExecutor()

	res, err := exec.Execute(context.Background(), question.CreateQuestion{
		Text:            "Ready?",
		Options:         testOptions,
		QuestionGroupID: "g-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.AggregateID)
	assert.Equal(t, int64(1), res.Version)
	assert.NotEmpty(t, res.LastSortableID)
	require.NotNil(t, res.Event)
	assert.Equal(t, question.TypeQuestionCreated, res.Event.Payload.EventType())

	// Committed event fans out to appliers and publishers.
	require.Len(t, applier.events, 1)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, res.AggregateID, applier.events[0].AggregateID)
}

func TestExecute_VersionsIncrementPerPartition(t *testing.T) {
	exec, _, _ := newExecutor()
	ctx := context.Background()

	created, err := exec.Execute(ctx, question.CreateQuestion{Text: "Ready?", Options: testOptions, QuestionGroupID: "g-1"})
	require.NoError(t, err)

	started, err := exec.Execute(ctx, question.StartDisplay{QuestionID: created.AggregateID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), started.Version)

	// A second create lands on its own partition at version 1.
	other, err := exec.Execute(ctx, question.CreateQuestion{Text: "Other?", Options: testOptions, QuestionGroupID: "g-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), other.Version)
	assert.NotEqual(t, created.AggregateID, other.AggregateID)
}

func TestExecute_RejectionEmitsNothing(t *testing.T) {
	exec, applier, publisher := newExecutor()

	_, err := exec.Execute(context.Background(), question.StartDisplay{QuestionID: "missing"})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Empty(t, applier.events)
	assert.Empty(t, publisher.events)
}

func TestExecute_AcceptedNoOp(t *testing.T) {
	exec, applier, _ := newExecutor()
	ctx := context.Background()

	created, err := exec.Execute(ctx, question.CreateQuestion{Text: "Ready?", Options: testOptions, QuestionGroupID: "g-1"})
	require.NoError(t, err)

	// Re-linking to the current group is accepted but emits nothing.
	res, err := exec.Execute(ctx, question.UpdateQuestionGroupID{
		QuestionID:      created.AggregateID,
		QuestionGroupID: "g-1",
	})
	require.NoError(t, err)
	assert.Nil(t, res.Event)
	assert.Equal(t, created.Version, res.Version)
	assert.Equal(t, created.LastSortableID, res.LastSortableID)
	assert.Len(t, applier.events, 1, "no-op must not fan out")
}

func TestExecute_UnknownAggregateType(t *testing.T) {
	exec := executor.New(store.NewMemory()) // no projectors

	_, err := exec.Execute(context.Background(), question.CreateQuestion{Text: "x", Options: testOptions, QuestionGroupID: "g-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no projector registered")
}

func TestLoadAggregate(t *testing.T) {
	exec, _, _ := newExecutor()
	ctx := context.Background()

	created, err := exec.Execute(ctx, question.CreateQuestion{Text: "Ready?", Options: testOptions, QuestionGroupID: "g-1"})
	require.NoError(t, err)
	_, err = exec.Execute(ctx, question.StartDisplay{QuestionID: created.AggregateID})
	require.NoError(t, err)

	agg, err := exec.LoadAggregate(ctx, event.AggregateQuestion, created.AggregateID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), agg.Version)

	state, ok := agg.Payload.(question.Question)
	require.True(t, ok)
	assert.True(t, state.IsDisplayed)
}

func TestExecute_TimestampsComeFromClock(t *testing.T) {
	clock := testutil.NewDefaultClock()
	exec := executor.New(store.NewMemory(), question.Projector{}).WithClock(clock.Now)

	res, err := exec.Execute(context.Background(), question.CreateQuestion{Text: "Ready?", Options: testOptions, QuestionGroupID: "g-1"})
	require.NoError(t, err)
	assert.Equal(t, testutil.NewDefaultClock().Now(), res.Event.OccurredAt)
}
