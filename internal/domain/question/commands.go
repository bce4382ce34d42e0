package question

import (
	"time"

	"github.com/askwave/askwave/internal/aggregate"
	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/event"
)

// validateContent enforces the shared create/update rules: non-empty
// text, at least two options, unique option ids.
func validateContent(text string, options []QuestionOption) error {
	if text == "" {
		return domain.NewValidationError("question text cannot be empty")
	}
	if len(options) < 2 {
		return domain.NewValidationError("question must have at least two options")
	}
	seen := make(map[string]bool, len(options))
	for _, o := range options {
		if seen[o.ID] {
			return domain.NewValidationError("option ids must be unique: %q repeats", o.ID)
		}
		seen[o.ID] = true
	}
	return nil
}

// live unwraps the live variant, rejecting commands against aggregates
// that do not exist yet or have been deleted.
func live(agg aggregate.Aggregate) (Question, error) {
	switch state := agg.Payload.(type) {
	case Question:
		return state, nil
	case DeletedQuestion:
		return Question{}, domain.NewNotFoundError("question %s is deleted", agg.ID)
	default:
		return Question{}, domain.NewNotFoundError("question %s not found", agg.ID)
	}
}

// CreateQuestion creates a new question in a group.
type CreateQuestion struct {
	Text                   string
	Options                []QuestionOption
	QuestionGroupID        string
	AllowMultipleResponses bool
}

// AggregateType targets the Question partition space.
func (CreateQuestion) AggregateType() string { return event.AggregateQuestion }

// AggregateID is empty: the executor generates a fresh id.
func (CreateQuestion) AggregateID() string { return "" }

// Handle validates the content rules and emits QuestionCreated.
func (c CreateQuestion) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	if err := validateContent(c.Text, c.Options); err != nil {
		return nil, err
	}
	if c.QuestionGroupID == "" {
		return nil, domain.NewValidationError("question group id is required")
	}
	if !agg.IsEmpty() {
		return nil, domain.NewInvariantViolation("question %s already exists", agg.ID)
	}
	return QuestionCreated{
		Text:                   c.Text,
		Options:                c.Options,
		QuestionGroupID:        c.QuestionGroupID,
		AllowMultipleResponses: c.AllowMultipleResponses,
	}, nil
}

// UpdateQuestion replaces text and options of an existing question.
// Rejected while the question is displayed.
type UpdateQuestion struct {
	QuestionID             string
	Text                   string
	Options                []QuestionOption
	AllowMultipleResponses bool
}

// AggregateType targets the Question partition space.
func (UpdateQuestion) AggregateType() string { return event.AggregateQuestion }

// AggregateID returns the target question.
func (c UpdateQuestion) AggregateID() string { return c.QuestionID }

// Handle validates content rules and the not-displayed invariant.
func (c UpdateQuestion) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	state, err := live(agg)
	if err != nil {
		return nil, err
	}
	if err := validateContent(c.Text, c.Options); err != nil {
		return nil, err
	}
	if state.IsDisplayed {
		return nil, domain.NewInvariantViolation("cannot update a question that is currently displayed")
	}
	return QuestionUpdated{
		Text:                   c.Text,
		Options:                c.Options,
		AllowMultipleResponses: c.AllowMultipleResponses,
	}, nil
}

// StartDisplay puts the question on display.
type StartDisplay struct {
	QuestionID string
}

// AggregateType targets the Question partition space.
func (StartDisplay) AggregateType() string { return event.AggregateQuestion }

// AggregateID returns the target question.
func (c StartDisplay) AggregateID() string { return c.QuestionID }

// Handle rejects if the question is already displayed.
func (c StartDisplay) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	state, err := live(agg)
	if err != nil {
		return nil, err
	}
	if state.IsDisplayed {
		return nil, domain.NewInvariantViolation("question is already being displayed")
	}
	return QuestionDisplayStarted{}, nil
}

// StopDisplay takes the question off display.
type StopDisplay struct {
	QuestionID string
}

// AggregateType targets the Question partition space.
func (StopDisplay) AggregateType() string { return event.AggregateQuestion }

// AggregateID returns the target question.
func (c StopDisplay) AggregateID() string { return c.QuestionID }

// Handle rejects if the question is not displayed.
func (c StopDisplay) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	state, err := live(agg)
	if err != nil {
		return nil, err
	}
	if !state.IsDisplayed {
		return nil, domain.NewInvariantViolation("question is not being displayed")
	}
	return QuestionDisplayStopped{}, nil
}

// AddResponse records an audience answer to a displayed question.
type AddResponse struct {
	QuestionID       string
	ParticipantName  string
	SelectedOptionID string
	Comment          string
	ClientID         string

	// Now stamps the response; defaults to time.Now when nil.
	Now func() time.Time

	// NewResponseID generates the response id; defaults to a random
	// aggregate id. Tests inject fixed values.
	NewResponseID func() string
}

// AggregateType targets the Question partition space.
func (AddResponse) AggregateType() string { return event.AggregateQuestion }

// AggregateID returns the target question.
func (c AddResponse) AggregateID() string { return c.QuestionID }

// Handle gates responses on display state, option existence, and
// duplicate suppression per client.
func (c AddResponse) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	state, err := live(agg)
	if err != nil {
		return nil, err
	}
	if !state.IsDisplayed {
		return nil, domain.NewInvariantViolation("cannot add a response to a question that is not being displayed")
	}
	if c.SelectedOptionID == "" {
		return nil, domain.NewValidationError("selected option id cannot be empty")
	}
	if !state.hasOption(c.SelectedOptionID) {
		return nil, domain.NewValidationError("option %q does not exist", c.SelectedOptionID)
	}
	if c.ClientID == "" {
		return nil, domain.NewValidationError("client id cannot be empty")
	}
	if !state.AllowMultipleResponses && state.hasResponseFrom(c.ClientID) {
		return nil, domain.NewInvariantViolation("client %q has already responded to this question", c.ClientID)
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	newID := event.NewAggregateID
	if c.NewResponseID != nil {
		newID = c.NewResponseID
	}

	return ResponseAdded{
		ResponseID:       newID(),
		ParticipantName:  c.ParticipantName,
		SelectedOptionID: c.SelectedOptionID,
		Comment:          c.Comment,
		Timestamp:        now().UTC(),
		ClientID:         c.ClientID,
	}, nil
}

// DeleteQuestion transitions the question to its tombstone.
// Rejected while the question is displayed.
type DeleteQuestion struct {
	QuestionID string
}

// AggregateType targets the Question partition space.
func (DeleteQuestion) AggregateType() string { return event.AggregateQuestion }

// AggregateID returns the target question.
func (c DeleteQuestion) AggregateID() string { return c.QuestionID }

// Handle rejects deletion of a displayed question.
func (c DeleteQuestion) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	state, err := live(agg)
	if err != nil {
		return nil, err
	}
	if state.IsDisplayed {
		return nil, domain.NewInvariantViolation("cannot delete a question that is currently displayed")
	}
	return QuestionDeleted{}, nil
}

// UpdateQuestionGroupID re-links the question to another group.
// Used by the cross-group move workflow.
type UpdateQuestionGroupID struct {
	QuestionID      string
	QuestionGroupID string
}

// AggregateType targets the Question partition space.
func (UpdateQuestionGroupID) AggregateType() string { return event.AggregateQuestion }

// AggregateID returns the target question.
func (c UpdateQuestionGroupID) AggregateID() string { return c.QuestionID }

// Handle validates the new group id and emits the re-link event.
// Re-linking to the current group is an accepted no-op.
func (c UpdateQuestionGroupID) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	state, err := live(agg)
	if err != nil {
		return nil, err
	}
	if c.QuestionGroupID == "" {
		return nil, domain.NewValidationError("question group id is required")
	}
	if state.QuestionGroupID == c.QuestionGroupID {
		return nil, nil
	}
	return QuestionGroupIDUpdated{QuestionGroupID: c.QuestionGroupID}, nil
}
