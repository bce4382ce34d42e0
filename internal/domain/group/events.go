package group

import (
	"github.com/askwave/askwave/internal/event"
)

// Event type names for the QuestionGroup aggregate.
const (
	TypeQuestionGroupCreated     = "QuestionGroupCreated"
	TypeQuestionGroupUpdated     = "QuestionGroupUpdated"
	TypeQuestionGroupDeleted     = "QuestionGroupDeleted"
	TypeQuestionAddedToGroup     = "QuestionAddedToGroup"
	TypeQuestionRemovedFromGroup = "QuestionRemovedFromGroup"
	TypeQuestionOrderChanged     = "QuestionOrderChanged"
)

// QuestionGroupCreated transitions Empty to the live variant.
// InitialQuestionIDs seed the reference list in the given order.
type QuestionGroupCreated struct {
	Name               string   `json:"name"`
	UniqueCode         string   `json:"uniqueCode"`
	InitialQuestionIDs []string `json:"initialQuestionIds,omitempty"`
}

// EventType returns the wire name.
func (QuestionGroupCreated) EventType() string { return TypeQuestionGroupCreated }

// QuestionGroupUpdated renames the group.
type QuestionGroupUpdated struct {
	NewName string `json:"newName"`
}

// EventType returns the wire name.
func (QuestionGroupUpdated) EventType() string { return TypeQuestionGroupUpdated }

// QuestionGroupDeleted transitions the live variant to its tombstone.
type QuestionGroupDeleted struct{}

// EventType returns the wire name.
func (QuestionGroupDeleted) EventType() string { return TypeQuestionGroupDeleted }

// QuestionAddedToGroup appends a question reference. Order records the
// position assigned at append time.
type QuestionAddedToGroup struct {
	QuestionID string `json:"questionId"`
	Order      int    `json:"order"`
}

// EventType returns the wire name.
func (QuestionAddedToGroup) EventType() string { return TypeQuestionAddedToGroup }

// QuestionRemovedFromGroup drops a question reference; remaining
// references are renumbered sequentially.
type QuestionRemovedFromGroup struct {
	QuestionID string `json:"questionId"`
}

// EventType returns the wire name.
func (QuestionRemovedFromGroup) EventType() string { return TypeQuestionRemovedFromGroup }

// QuestionOrderChanged moves a question to a new position. The event
// carries the full resulting ordered id list so read models can apply
// it idempotently without replaying history.
type QuestionOrderChanged struct {
	QuestionID         string   `json:"questionId"`
	NewOrder           int      `json:"newOrder"`
	OrderedQuestionIDs []string `json:"orderedQuestionIds"`
}

// EventType returns the wire name.
func (QuestionOrderChanged) EventType() string { return TypeQuestionOrderChanged }

func init() {
	event.Register(func() event.Payload { return QuestionGroupCreated{} })
	event.Register(func() event.Payload { return QuestionGroupUpdated{} })
	event.Register(func() event.Payload { return QuestionGroupDeleted{} })
	event.Register(func() event.Payload { return QuestionAddedToGroup{} })
	event.Register(func() event.Payload { return QuestionRemovedFromGroup{} })
	event.Register(func() event.Payload { return QuestionOrderChanged{} })
}
