package group

import (
	"github.com/askwave/askwave/internal/aggregate"
	"github.com/askwave/askwave/internal/event"
)

// Projector folds QuestionGroup events into payload variants.
type Projector struct{}

// AggregateType returns the partition type this projector serves.
func (Projector) AggregateType() string { return event.AggregateQuestionGroup }

// Project applies one event to the current variant. Unrecognized
// (variant, event type) combinations return the payload unchanged.
func (Projector) Project(p aggregate.Payload, e event.Event) aggregate.Payload {
	switch state := p.(type) {
	case aggregate.Empty:
		if created, ok := e.Payload.(QuestionGroupCreated); ok {
			questions := make([]QuestionReference, 0, len(created.InitialQuestionIDs))
			for i, id := range created.InitialQuestionIDs {
				questions = append(questions, QuestionReference{QuestionID: id, Order: i})
			}
			return QuestionGroup{
				Name:       created.Name,
				UniqueCode: created.UniqueCode,
				Questions:  questions,
			}
		}
		return p

	case QuestionGroup:
		switch payload := e.Payload.(type) {
		case QuestionGroupUpdated:
			state.Name = payload.NewName
			return state

		case QuestionAddedToGroup:
			return state.addQuestion(payload.QuestionID)

		case QuestionRemovedFromGroup:
			return state.removeQuestion(payload.QuestionID)

		case QuestionOrderChanged:
			return state.reorderTo(payload.OrderedQuestionIDs)

		case QuestionGroupDeleted:
			return DeletedQuestionGroup(state)
		}
		return p

	default:
		return p
	}
}
