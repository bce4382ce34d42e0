package question

import (
	"github.com/askwave/askwave/internal/aggregate"
	"github.com/askwave/askwave/internal/event"
)

// Projector folds Question events into payload variants.
type Projector struct{}

// AggregateType returns the partition type this projector serves.
func (Projector) AggregateType() string { return event.AggregateQuestion }

// Project applies one event to the current variant. Unrecognized
// (variant, event type) combinations return the payload unchanged.
// In particular no event transitions out of DeletedQuestion.
func (Projector) Project(p aggregate.Payload, e event.Event) aggregate.Payload {
	switch state := p.(type) {
	case aggregate.Empty:
		if created, ok := e.Payload.(QuestionCreated); ok {
			return Question{
				Text:                   created.Text,
				Options:                created.Options,
				IsDisplayed:            false,
				Responses:              []QuestionResponse{},
				QuestionGroupID:        created.QuestionGroupID,
				AllowMultipleResponses: created.AllowMultipleResponses,
			}
		}
		return p

	case Question:
		switch payload := e.Payload.(type) {
		case QuestionUpdated:
			state.Text = payload.Text
			state.Options = payload.Options
			state.AllowMultipleResponses = payload.AllowMultipleResponses
			return state

		case QuestionDisplayStarted:
			state.IsDisplayed = true
			return state

		case QuestionDisplayStopped:
			state.IsDisplayed = false
			return state

		case ResponseAdded:
			responses := make([]QuestionResponse, len(state.Responses), len(state.Responses)+1)
			copy(responses, state.Responses)
			state.Responses = append(responses, QuestionResponse{
				ID:               payload.ResponseID,
				ParticipantName:  payload.ParticipantName,
				SelectedOptionID: payload.SelectedOptionID,
				Comment:          payload.Comment,
				Timestamp:        payload.Timestamp,
				ClientID:         payload.ClientID,
			})
			return state

		case QuestionGroupIDUpdated:
			state.QuestionGroupID = payload.QuestionGroupID
			return state

		case QuestionDeleted:
			return DeletedQuestion(state)
		}
		return p

	default:
		return p
	}
}
