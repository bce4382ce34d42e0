// Package readmodel maintains the denormalized cross-aggregate view
// that serves all queries: questions joined with their group's name and
// order.
//
// The model is folded strictly from committed events - nothing else may
// mutate it - and stays self-consistent under any interleaving of group
// and question events. A question created before its group is known
// gets an empty group name until the group event arrives; a group
// rename repairs the denormalized name on every linked question.
package readmodel

import (
	"sort"
	"sync"

	"github.com/askwave/askwave/internal/domain/activeusers"
	"github.com/askwave/askwave/internal/domain/group"
	"github.com/askwave/askwave/internal/domain/question"
	"github.com/askwave/askwave/internal/event"
)

// GroupInfo is the read model's view of one question group.
type GroupInfo struct {
	GroupID    string
	Name       string
	UniqueCode string
	Questions  []group.QuestionReference
}

// QuestionInfo is the read model's view of one question, denormalized
// with its group's name.
type QuestionInfo struct {
	QuestionID             string
	Text                   string
	Options                []question.QuestionOption
	IsDisplayed            bool
	Responses              []question.QuestionResponse
	QuestionGroupID        string
	QuestionGroupName      string
	AllowMultipleResponses bool
}

// Model is the query-optimized view over both aggregate types.
// Safe for concurrent use: Apply takes the write lock, queries the
// read lock.
type Model struct {
	mu        sync.RWMutex
	groups    map[string]GroupInfo
	questions map[string]QuestionInfo
}

// New creates an empty read model.
func New() *Model {
	return &Model{
		groups:    make(map[string]GroupInfo),
		questions: make(map[string]QuestionInfo),
	}
}

// Apply folds one committed event into the view. Events the view does
// not care about (e.g. ActiveUsers) are ignored.
func (m *Model) Apply(e event.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch payload := e.Payload.(type) {
	// QuestionGroup events
	case group.QuestionGroupCreated:
		refs := make([]group.QuestionReference, 0, len(payload.InitialQuestionIDs))
		for i, id := range payload.InitialQuestionIDs {
			refs = append(refs, group.QuestionReference{QuestionID: id, Order: i})
		}
		m.groups[e.AggregateID] = GroupInfo{
			GroupID:    e.AggregateID,
			Name:       payload.Name,
			UniqueCode: payload.UniqueCode,
			Questions:  refs,
		}
		// Repair questions that linked to this group before it was known.
		m.repairGroupName(e.AggregateID, payload.Name)

	case group.QuestionGroupUpdated:
		g, ok := m.groups[e.AggregateID]
		if !ok {
			return
		}
		g.Name = payload.NewName
		m.groups[e.AggregateID] = g
		m.repairGroupName(e.AggregateID, payload.NewName)

	case group.QuestionGroupDeleted:
		delete(m.groups, e.AggregateID)

	case group.QuestionAddedToGroup:
		g, ok := m.groups[e.AggregateID]
		if !ok {
			return
		}
		if g.containsQuestion(payload.QuestionID) {
			return
		}
		g.Questions = append(copyRefs(g.Questions), group.QuestionReference{
			QuestionID: payload.QuestionID,
			Order:      g.nextOrder(),
		})
		m.groups[e.AggregateID] = g
		// Keep the question side of the join in step.
		if q, ok := m.questions[payload.QuestionID]; ok {
			q.QuestionGroupID = e.AggregateID
			q.QuestionGroupName = g.Name
			m.questions[payload.QuestionID] = q
		}

	case group.QuestionRemovedFromGroup:
		g, ok := m.groups[e.AggregateID]
		if !ok {
			return
		}
		refs := make([]group.QuestionReference, 0, len(g.Questions))
		for _, ref := range sortedRefs(g.Questions) {
			if ref.QuestionID == payload.QuestionID {
				continue
			}
			ref.Order = len(refs)
			refs = append(refs, ref)
		}
		g.Questions = refs
		m.groups[e.AggregateID] = g

	case group.QuestionOrderChanged:
		g, ok := m.groups[e.AggregateID]
		if !ok {
			return
		}
		byID := make(map[string]group.QuestionReference, len(g.Questions))
		for _, ref := range g.Questions {
			byID[ref.QuestionID] = ref
		}
		refs := make([]group.QuestionReference, 0, len(g.Questions))
		for _, id := range payload.OrderedQuestionIDs {
			ref, ok := byID[id]
			if !ok {
				continue
			}
			ref.Order = len(refs)
			refs = append(refs, ref)
			delete(byID, id)
		}
		// Members missing from the list keep their relative order.
		for _, ref := range sortedRefs(g.Questions) {
			if _, left := byID[ref.QuestionID]; !left {
				continue
			}
			ref.Order = len(refs)
			refs = append(refs, ref)
		}
		g.Questions = refs
		m.groups[e.AggregateID] = g

	// Question events
	case question.QuestionCreated:
		groupName := ""
		if g, ok := m.groups[payload.QuestionGroupID]; ok {
			groupName = g.Name
		}
		m.questions[e.AggregateID] = QuestionInfo{
			QuestionID:             e.AggregateID,
			Text:                   payload.Text,
			Options:                payload.Options,
			IsDisplayed:            false,
			Responses:              []question.QuestionResponse{},
			QuestionGroupID:        payload.QuestionGroupID,
			QuestionGroupName:      groupName,
			AllowMultipleResponses: payload.AllowMultipleResponses,
		}

	case question.QuestionUpdated:
		q, ok := m.questions[e.AggregateID]
		if !ok {
			return
		}
		q.Text = payload.Text
		q.Options = payload.Options
		q.AllowMultipleResponses = payload.AllowMultipleResponses
		m.questions[e.AggregateID] = q

	case question.QuestionDeleted:
		delete(m.questions, e.AggregateID)

	case question.QuestionGroupIDUpdated:
		q, ok := m.questions[e.AggregateID]
		if !ok {
			return
		}
		q.QuestionGroupID = payload.QuestionGroupID
		q.QuestionGroupName = ""
		if g, ok := m.groups[payload.QuestionGroupID]; ok {
			q.QuestionGroupName = g.Name
		}
		m.questions[e.AggregateID] = q

	case question.QuestionDisplayStarted:
		m.setDisplayed(e.AggregateID, true)

	case question.QuestionDisplayStopped:
		m.setDisplayed(e.AggregateID, false)

	case question.ResponseAdded:
		q, ok := m.questions[e.AggregateID]
		if !ok {
			return
		}
		q.Responses = append(copyResponses(q.Responses), question.QuestionResponse{
			ID:               payload.ResponseID,
			ParticipantName:  payload.ParticipantName,
			SelectedOptionID: payload.SelectedOptionID,
			Comment:          payload.Comment,
			Timestamp:        payload.Timestamp,
			ClientID:         payload.ClientID,
		})
		m.questions[e.AggregateID] = q

	case activeusers.ActiveUsersCreated, activeusers.UserConnected,
		activeusers.UserDisconnected, activeusers.UserNameUpdated:
		// Roster state is queried from its aggregate, not this view.

	default:
		// Unknown events are a no-op by contract.
	}
}

// repairGroupName pushes a group's (new) name into every question
// record currently pointing at it.
func (m *Model) repairGroupName(groupID, name string) {
	for id, q := range m.questions {
		if q.QuestionGroupID == groupID {
			q.QuestionGroupName = name
			m.questions[id] = q
		}
	}
}

func (m *Model) setDisplayed(questionID string, displayed bool) {
	q, ok := m.questions[questionID]
	if !ok {
		return
	}
	q.IsDisplayed = displayed
	m.questions[questionID] = q
}

func (g GroupInfo) containsQuestion(questionID string) bool {
	for _, ref := range g.Questions {
		if ref.QuestionID == questionID {
			return true
		}
	}
	return false
}

func (g GroupInfo) nextOrder() int {
	next := 0
	for _, ref := range g.Questions {
		if ref.Order >= next {
			next = ref.Order + 1
		}
	}
	return next
}

func copyRefs(refs []group.QuestionReference) []group.QuestionReference {
	out := make([]group.QuestionReference, len(refs))
	copy(out, refs)
	return out
}

func sortedRefs(refs []group.QuestionReference) []group.QuestionReference {
	out := copyRefs(refs)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func copyResponses(responses []question.QuestionResponse) []question.QuestionResponse {
	out := make([]question.QuestionResponse, len(responses))
	copy(out, responses)
	return out
}
