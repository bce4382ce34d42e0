package question

import (
	"time"

	"github.com/askwave/askwave/internal/event"
)

// Event type names for the Question aggregate.
const (
	TypeQuestionCreated        = "QuestionCreated"
	TypeQuestionUpdated        = "QuestionUpdated"
	TypeQuestionDisplayStarted = "QuestionDisplayStarted"
	TypeQuestionDisplayStopped = "QuestionDisplayStopped"
	TypeResponseAdded          = "ResponseAdded"
	TypeQuestionDeleted        = "QuestionDeleted"
	TypeQuestionGroupIDUpdated = "QuestionGroupIdUpdated"
)

// QuestionCreated transitions Empty to the live variant.
type QuestionCreated struct {
	Text                   string           `json:"text"`
	Options                []QuestionOption `json:"options"`
	QuestionGroupID        string           `json:"questionGroupId"`
	AllowMultipleResponses bool             `json:"allowMultipleResponses"`
}

// EventType returns the wire name.
func (QuestionCreated) EventType() string { return TypeQuestionCreated }

// QuestionUpdated replaces the question's text and options.
type QuestionUpdated struct {
	Text                   string           `json:"text"`
	Options                []QuestionOption `json:"options"`
	AllowMultipleResponses bool             `json:"allowMultipleResponses"`
}

// EventType returns the wire name.
func (QuestionUpdated) EventType() string { return TypeQuestionUpdated }

// QuestionDisplayStarted marks the question live for its audience.
type QuestionDisplayStarted struct{}

// EventType returns the wire name.
func (QuestionDisplayStarted) EventType() string { return TypeQuestionDisplayStarted }

// QuestionDisplayStopped takes the question off display.
type QuestionDisplayStopped struct{}

// EventType returns the wire name.
func (QuestionDisplayStopped) EventType() string { return TypeQuestionDisplayStopped }

// ResponseAdded records one audience answer.
type ResponseAdded struct {
	ResponseID       string    `json:"responseId"`
	ParticipantName  string    `json:"participantName,omitempty"`
	SelectedOptionID string    `json:"selectedOptionId"`
	Comment          string    `json:"comment,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	ClientID         string    `json:"clientId"`
}

// EventType returns the wire name.
func (ResponseAdded) EventType() string { return TypeResponseAdded }

// QuestionDeleted transitions the live variant to its tombstone.
type QuestionDeleted struct{}

// EventType returns the wire name.
func (QuestionDeleted) EventType() string { return TypeQuestionDeleted }

// QuestionGroupIDUpdated re-links the question to another group.
// Emitted by the cross-group move workflow.
type QuestionGroupIDUpdated struct {
	QuestionGroupID string `json:"questionGroupId"`
}

// EventType returns the wire name.
func (QuestionGroupIDUpdated) EventType() string { return TypeQuestionGroupIDUpdated }

func init() {
	event.Register(func() event.Payload { return QuestionCreated{} })
	event.Register(func() event.Payload { return QuestionUpdated{} })
	event.Register(func() event.Payload { return QuestionDisplayStarted{} })
	event.Register(func() event.Payload { return QuestionDisplayStopped{} })
	event.Register(func() event.Payload { return ResponseAdded{} })
	event.Register(func() event.Payload { return QuestionDeleted{} })
	event.Register(func() event.Payload { return QuestionGroupIDUpdated{} })
}
