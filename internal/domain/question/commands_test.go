package question

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askwave/askwave/internal/aggregate"
	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/event"
)

var testOptions = []QuestionOption{{ID: "1", Text: "Yes"}, {ID: "2", Text: "No"}}

func emptyAggregate(id string) aggregate.Aggregate {
	return aggregate.Aggregate{Type: event.AggregateQuestion, ID: id, Payload: aggregate.Empty{}}
}

func liveAggregate(id string, state Question) aggregate.Aggregate {
	return aggregate.Aggregate{Type: event.AggregateQuestion, ID: id, Version: 1, Payload: state}
}

func TestCreateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		cmd     CreateQuestion
		agg     aggregate.Aggregate
		wantErr func(error) bool
	}{
		{
			name: "valid",
			cmd:  CreateQuestion{Text: "Ready?", Options: testOptions, QuestionGroupID: "g-1"},
			agg:  emptyAggregate("q-1"),
		},
		{
			name:    "empty text",
			cmd:     CreateQuestion{Options: testOptions, QuestionGroupID: "g-1"},
			agg:     emptyAggregate("q-1"),
			wantErr: domain.IsValidation,
		},
		{
			name:    "single option",
			cmd:     CreateQuestion{Text: "Ready?", Options: testOptions[:1], QuestionGroupID: "g-1"},
			agg:     emptyAggregate("q-1"),
			wantErr: domain.IsValidation,
		},
		{
			name: "duplicate option ids",
			cmd: CreateQuestion{
				Text:            "Ready?",
				Options:         []QuestionOption{{ID: "1", Text: "Yes"}, {ID: "1", Text: "No"}},
				QuestionGroupID: "g-1",
			},
			agg:     emptyAggregate("q-1"),
			wantErr: domain.IsValidation,
		},
		{
			name:    "missing group",
			cmd:     CreateQuestion{Text: "Ready?", Options: testOptions},
			agg:     emptyAggregate("q-1"),
			wantErr: domain.IsValidation,
		},
		{
			name:    "already exists",
			cmd:     CreateQuestion{Text: "Ready?", Options: testOptions, QuestionGroupID: "g-1"},
			agg:     liveAggregate("q-1", Question{Text: "Ready?", Options: testOptions, QuestionGroupID: "g-1"}),
			wantErr: domain.IsInvariantViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := tt.cmd.Handle(tt.agg)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error kind: %v", err)
				return
			}
			require.NoError(t, err)
			created, ok := payload.(QuestionCreated)
			require.True(t, ok)
			assert.Equal(t, tt.cmd.Text, created.Text)
			assert.Equal(t, tt.cmd.QuestionGroupID, created.QuestionGroupID)
		})
	}
}

func TestUpdateQuestion_RejectedWhileDisplayed(t *testing.T) {
	agg := liveAggregate("q-1", Question{Text: "Ready?", Options: testOptions, IsDisplayed: true, QuestionGroupID: "g-1"})

	_, err := UpdateQuestion{QuestionID: "q-1", Text: "Still ready?", Options: testOptions}.Handle(agg)

	require.Error(t, err)
	assert.True(t, domain.IsInvariantViolation(err))
}

func TestUpdateQuestion_NotFoundAndDeleted(t *testing.T) {
	_, err := UpdateQuestion{QuestionID: "q-1", Text: "x", Options: testOptions}.Handle(emptyAggregate("q-1"))
	assert.True(t, domain.IsNotFound(err))

	deleted := aggregate.Aggregate{Type: event.AggregateQuestion, ID: "q-1", Version: 2, Payload: DeletedQuestion{}}
	_, err = UpdateQuestion{QuestionID: "q-1", Text: "x", Options: testOptions}.Handle(deleted)
	assert.True(t, domain.IsNotFound(err))
}

func TestDisplayTransitions(t *testing.T) {
	hidden := liveAggregate("q-1", Question{Text: "Ready?", Options: testOptions, QuestionGroupID: "g-1"})
	displayed := liveAggregate("q-1", Question{Text: "Ready?", Options: testOptions, IsDisplayed: true, QuestionGroupID: "g-1"})

	payload, err := StartDisplay{QuestionID: "q-1"}.Handle(hidden)
	require.NoError(t, err)
	assert.Equal(t, QuestionDisplayStarted{}, payload)

	_, err = StartDisplay{QuestionID: "q-1"}.Handle(displayed)
	assert.True(t, domain.IsInvariantViolation(err))

	payload, err = StopDisplay{QuestionID: "q-1"}.Handle(displayed)
	require.NoError(t, err)
	assert.Equal(t, QuestionDisplayStopped{}, payload)

	_, err = StopDisplay{QuestionID: "q-1"}.Handle(hidden)
	assert.True(t, domain.IsInvariantViolation(err))
}

func TestAddResponse_Gates(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	newID := func() string { return "r-1" }

	base := Question{Text: "Ready?", Options: testOptions, IsDisplayed: true, QuestionGroupID: "g-1"}

	t.Run("accepted", func(t *testing.T) {
		payload, err := AddResponse{
			QuestionID:       "q-1",
			SelectedOptionID: "1",
			ClientID:         "c-1",
			Now:              now,
			NewResponseID:    newID,
		}.Handle(liveAggregate("q-1", base))
		require.NoError(t, err)

		added, ok := payload.(ResponseAdded)
		require.True(t, ok)
		assert.Equal(t, "r-1", added.ResponseID)
		assert.Equal(t, now(), added.Timestamp)
	})

	t.Run("not displayed", func(t *testing.T) {
		state := base
		state.IsDisplayed = false
		_, err := AddResponse{QuestionID: "q-1", SelectedOptionID: "1", ClientID: "c-1"}.Handle(liveAggregate("q-1", state))
		assert.True(t, domain.IsInvariantViolation(err))
	})

	t.Run("unknown option", func(t *testing.T) {
		_, err := AddResponse{QuestionID: "q-1", SelectedOptionID: "9", ClientID: "c-1"}.Handle(liveAggregate("q-1", base))
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("empty option", func(t *testing.T) {
		_, err := AddResponse{QuestionID: "q-1", ClientID: "c-1"}.Handle(liveAggregate("q-1", base))
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("duplicate client suppressed", func(t *testing.T) {
		state := base
		state.Responses = []QuestionResponse{{ID: "r-0", SelectedOptionID: "1", ClientID: "c-1"}}
		_, err := AddResponse{QuestionID: "q-1", SelectedOptionID: "2", ClientID: "c-1"}.Handle(liveAggregate("q-1", state))
		assert.True(t, domain.IsInvariantViolation(err))
	})

	t.Run("duplicate client allowed with multiple responses", func(t *testing.T) {
		state := base
		state.AllowMultipleResponses = true
		state.Responses = []QuestionResponse{{ID: "r-0", SelectedOptionID: "1", ClientID: "c-1"}}
		_, err := AddResponse{
			QuestionID:       "q-1",
			SelectedOptionID: "2",
			ClientID:         "c-1",
			Now:              now,
			NewResponseID:    newID,
		}.Handle(liveAggregate("q-1", state))
		assert.NoError(t, err)
	})

	t.Run("empty client id rejected", func(t *testing.T) {
		// Without a client id the duplicate gate cannot work, so the
		// handler rejects it instead of trusting the transport layer.
		_, err := AddResponse{
			QuestionID:       "q-1",
			SelectedOptionID: "2",
			Now:              now,
			NewResponseID:    newID,
		}.Handle(liveAggregate("q-1", base))
		assert.True(t, domain.IsValidation(err))
	})
}

func TestDeleteQuestion(t *testing.T) {
	displayed := liveAggregate("q-1", Question{Text: "Ready?", Options: testOptions, IsDisplayed: true, QuestionGroupID: "g-1"})
	_, err := DeleteQuestion{QuestionID: "q-1"}.Handle(displayed)
	assert.True(t, domain.IsInvariantViolation(err))

	hidden := liveAggregate("q-1", Question{Text: "Ready?", Options: testOptions, QuestionGroupID: "g-1"})
	payload, err := DeleteQuestion{QuestionID: "q-1"}.Handle(hidden)
	require.NoError(t, err)
	assert.Equal(t, QuestionDeleted{}, payload)
}

func TestUpdateQuestionGroupID(t *testing.T) {
	agg := liveAggregate("q-1", Question{Text: "Ready?", Options: testOptions, QuestionGroupID: "g-1"})

	payload, err := UpdateQuestionGroupID{QuestionID: "q-1", QuestionGroupID: "g-2"}.Handle(agg)
	require.NoError(t, err)
	assert.Equal(t, QuestionGroupIDUpdated{QuestionGroupID: "g-2"}, payload)

	// Same group: accepted no-op.
	payload, err = UpdateQuestionGroupID{QuestionID: "q-1", QuestionGroupID: "g-1"}.Handle(agg)
	require.NoError(t, err)
	assert.Nil(t, payload)

	_, err = UpdateQuestionGroupID{QuestionID: "q-1"}.Handle(agg)
	assert.True(t, domain.IsValidation(err))
}
