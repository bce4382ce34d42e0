// Package question implements the Question aggregate: a grouped
// multiple-choice question that can be displayed to an audience and
// collect anonymous responses while displayed.
package question

import "time"

// QuestionOption is one selectable answer. Ids must be unique within a
// question; responses reference options by id.
type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionResponse is one collected answer.
// ClientID identifies the submitting browser session and drives
// duplicate suppression when multiple responses are not allowed.
type QuestionResponse struct {
	ID               string    `json:"id"`
	ParticipantName  string    `json:"participantName,omitempty"`
	SelectedOptionID string    `json:"selectedOptionId"`
	Comment          string    `json:"comment,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
	ClientID         string    `json:"clientId"`
}

// Question is the live variant of the aggregate.
type Question struct {
	Text                   string
	Options                []QuestionOption
	IsDisplayed            bool
	Responses              []QuestionResponse
	QuestionGroupID        string
	AllowMultipleResponses bool
}

// PayloadName identifies the live variant.
func (Question) PayloadName() string { return "Question" }

// DeletedQuestion is the terminal tombstone variant. It preserves the
// last known fields; no event transitions out of it.
type DeletedQuestion struct {
	Text                   string
	Options                []QuestionOption
	IsDisplayed            bool
	Responses              []QuestionResponse
	QuestionGroupID        string
	AllowMultipleResponses bool
}

// PayloadName identifies the tombstone variant.
func (DeletedQuestion) PayloadName() string { return "DeletedQuestion" }

// hasOption reports whether an option with the given id exists.
func (q Question) hasOption(optionID string) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// hasResponseFrom reports whether any response carries the client id.
func (q Question) hasResponseFrom(clientID string) bool {
	for _, r := range q.Responses {
		if r.ClientID == clientID {
			return true
		}
	}
	return false
}
