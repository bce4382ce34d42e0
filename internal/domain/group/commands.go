package group

import (
	"math/rand"
	"strings"

	"github.com/askwave/askwave/internal/aggregate"
	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/event"
)

// CodeAlphabet is the symbol set for unique codes.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the fixed unique-code length.
const CodeLength = 6

// RandomCode returns a random unique-code candidate. Global uniqueness
// is not checked here; that is the allocation workflow's job.
func RandomCode() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(CodeAlphabet[rand.Intn(len(CodeAlphabet))])
	}
	return b.String()
}

// ValidCode reports whether code has the fixed length and alphabet.
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(CodeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// live unwraps the live variant, rejecting commands against aggregates
// that do not exist yet or have been deleted.
func live(agg aggregate.Aggregate) (QuestionGroup, error) {
	switch state := agg.Payload.(type) {
	case QuestionGroup:
		return state, nil
	case DeletedQuestionGroup:
		return QuestionGroup{}, domain.NewNotFoundError("question group %s is deleted", agg.ID)
	default:
		return QuestionGroup{}, domain.NewNotFoundError("question group %s not found", agg.ID)
	}
}

// CreateQuestionGroup creates a new group. An empty UniqueCode asks the
// handler to generate a random one; the handler does not check global
// code uniqueness (see the allocation workflow).
type CreateQuestionGroup struct {
	Name               string
	UniqueCode         string
	InitialQuestionIDs []string

	// NewCode generates a code when UniqueCode is empty; defaults to
	// RandomCode. Tests inject fixed values.
	NewCode func() string
}

// AggregateType targets the QuestionGroup partition space.
func (CreateQuestionGroup) AggregateType() string { return event.AggregateQuestionGroup }

// AggregateID is empty: the executor generates a fresh id.
func (CreateQuestionGroup) AggregateID() string { return "" }

// Handle validates the name and code format and emits the create event.
func (c CreateQuestionGroup) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	if c.Name == "" {
		return nil, domain.NewValidationError("group name cannot be empty")
	}
	if !agg.IsEmpty() {
		return nil, domain.NewInvariantViolation("question group %s already exists", agg.ID)
	}

	code := c.UniqueCode
	if code == "" {
		newCode := RandomCode
		if c.NewCode != nil {
			newCode = c.NewCode
		}
		code = newCode()
	}
	if !ValidCode(code) {
		return nil, domain.NewValidationError("unique code must be %d characters from %s", CodeLength, CodeAlphabet)
	}

	return QuestionGroupCreated{
		Name:               c.Name,
		UniqueCode:         code,
		InitialQuestionIDs: c.InitialQuestionIDs,
	}, nil
}

// UpdateQuestionGroupName renames an existing group.
type UpdateQuestionGroupName struct {
	GroupID string
	NewName string
}

// AggregateType targets the QuestionGroup partition space.
func (UpdateQuestionGroupName) AggregateType() string { return event.AggregateQuestionGroup }

// AggregateID returns the target group.
func (c UpdateQuestionGroupName) AggregateID() string { return c.GroupID }

// Handle validates the new name and emits the rename event.
func (c UpdateQuestionGroupName) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	if _, err := live(agg); err != nil {
		return nil, err
	}
	if c.NewName == "" {
		return nil, domain.NewValidationError("group name cannot be empty")
	}
	return QuestionGroupUpdated{NewName: c.NewName}, nil
}

// DeleteQuestionGroup transitions the group to its tombstone.
type DeleteQuestionGroup struct {
	GroupID string
}

// AggregateType targets the QuestionGroup partition space.
func (DeleteQuestionGroup) AggregateType() string { return event.AggregateQuestionGroup }

// AggregateID returns the target group.
func (c DeleteQuestionGroup) AggregateID() string { return c.GroupID }

// Handle emits the delete event for a live group.
func (c DeleteQuestionGroup) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	if _, err := live(agg); err != nil {
		return nil, err
	}
	return QuestionGroupDeleted{}, nil
}

// AddQuestionToGroup links a question into the group. Adding an id the
// group already contains is an accepted no-op, which makes workflow
// retries idempotent.
type AddQuestionToGroup struct {
	GroupID    string
	QuestionID string
}

// AggregateType targets the QuestionGroup partition space.
func (AddQuestionToGroup) AggregateType() string { return event.AggregateQuestionGroup }

// AggregateID returns the target group.
func (c AddQuestionToGroup) AggregateID() string { return c.GroupID }

// Handle emits the add event with the next order, or nothing when the
// question is already present.
func (c AddQuestionToGroup) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	state, err := live(agg)
	if err != nil {
		return nil, err
	}
	if c.QuestionID == "" {
		return nil, domain.NewValidationError("question id is required")
	}
	if state.contains(c.QuestionID) {
		return nil, nil
	}
	return QuestionAddedToGroup{QuestionID: c.QuestionID, Order: state.nextOrder()}, nil
}

// RemoveQuestionFromGroup unlinks a question. Removing an absent id is
// an accepted no-op.
type RemoveQuestionFromGroup struct {
	GroupID    string
	QuestionID string
}

// AggregateType targets the QuestionGroup partition space.
func (RemoveQuestionFromGroup) AggregateType() string { return event.AggregateQuestionGroup }

// AggregateID returns the target group.
func (c RemoveQuestionFromGroup) AggregateID() string { return c.GroupID }

// Handle emits the remove event, or nothing when the question is not
// in the group.
func (c RemoveQuestionFromGroup) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	state, err := live(agg)
	if err != nil {
		return nil, err
	}
	if !state.contains(c.QuestionID) {
		return nil, nil
	}
	return QuestionRemovedFromGroup{QuestionID: c.QuestionID}, nil
}

// ChangeQuestionOrder moves a question to a new position within the
// group. The emitted event carries the full resulting ordered id list.
type ChangeQuestionOrder struct {
	GroupID    string
	QuestionID string
	NewOrder   int
}

// AggregateType targets the QuestionGroup partition space.
func (ChangeQuestionOrder) AggregateType() string { return event.AggregateQuestionGroup }

// AggregateID returns the target group.
func (c ChangeQuestionOrder) AggregateID() string { return c.GroupID }

// Handle rejects unknown questions and out-of-range positions, then
// computes the resulting order: remove the target, re-insert at
// NewOrder among the remaining references (by current order), renumber
// sequentially.
func (c ChangeQuestionOrder) Handle(agg aggregate.Aggregate) (event.Payload, error) {
	state, err := live(agg)
	if err != nil {
		return nil, err
	}
	if !state.contains(c.QuestionID) {
		return nil, domain.NewInvariantViolation("question %s is not in group %s", c.QuestionID, c.GroupID)
	}
	if c.NewOrder < 0 || c.NewOrder >= len(state.Questions) {
		return nil, domain.NewInvariantViolation("new order %d out of range [0, %d)", c.NewOrder, len(state.Questions))
	}

	remaining := make([]string, 0, len(state.Questions)-1)
	for pos, q := range sortedByOrder(state.Questions) {
		if q.QuestionID == c.QuestionID {
			if pos == c.NewOrder {
				// Already in place: accepted no-op.
				return nil, nil
			}
			continue
		}
		remaining = append(remaining, q.QuestionID)
	}

	ordered := make([]string, 0, len(state.Questions))
	ordered = append(ordered, remaining[:c.NewOrder]...)
	ordered = append(ordered, c.QuestionID)
	ordered = append(ordered, remaining[c.NewOrder:]...)

	return QuestionOrderChanged{
		QuestionID:         c.QuestionID,
		NewOrder:           c.NewOrder,
		OrderedQuestionIDs: ordered,
	}, nil
}
