package readmodel

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/askwave/askwave/internal/domain/group"
	"github.com/askwave/askwave/internal/domain/question"
)

// QuestionDetail is the query result shape for question listings.
type QuestionDetail struct {
	QuestionID             string
	Text                   string
	Options                []question.QuestionOption
	IsDisplayed            bool
	ResponseCount          int
	Responses              []question.QuestionResponse
	QuestionGroupID        string
	QuestionGroupName      string
	Order                  int
	AllowMultipleResponses bool
}

// GroupDetail is the query result shape for group listings.
type GroupDetail struct {
	GroupID    string
	Name       string
	UniqueCode string
	Questions  []group.QuestionReference
}

// ListFilter narrows question listings. Zero value matches everything.
type ListFilter struct {
	TextContains string
	GroupID      string
}

// ListQuestions returns matching questions sorted by group name
// (collated), then in-group order, then displayed-first, then text.
func (m *Model) ListQuestions(filter ListFilter) []QuestionDetail {
	m.mu.RLock()
	defer m.mu.RUnlock()

	details := make([]QuestionDetail, 0, len(m.questions))
	for _, q := range m.questions {
		if filter.TextContains != "" &&
			!strings.Contains(strings.ToLower(q.Text), strings.ToLower(filter.TextContains)) {
			continue
		}
		if filter.GroupID != "" && q.QuestionGroupID != filter.GroupID {
			continue
		}
		details = append(details, m.detailLocked(q))
	}

	collator := collate.New(language.Und)
	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i], details[j]
		if c := collator.CompareString(a.QuestionGroupName, b.QuestionGroupName); c != 0 {
			return c < 0
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.IsDisplayed != b.IsDisplayed {
			return a.IsDisplayed
		}
		return collator.CompareString(a.Text, b.Text) < 0
	})
	return details
}

// ActiveQuestion returns the displayed question of a group, if any.
func (m *Model) ActiveQuestion(groupID string) (QuestionDetail, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, q := range m.questions {
		if q.QuestionGroupID == groupID && q.IsDisplayed {
			return m.detailLocked(q), true
		}
	}
	return QuestionDetail{}, false
}

// QuestionByID returns one question's detail.
func (m *Model) QuestionByID(questionID string) (QuestionDetail, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q, ok := m.questions[questionID]
	if !ok {
		return QuestionDetail{}, false
	}
	return m.detailLocked(q), true
}

// ListGroups returns all live groups sorted by collated name.
func (m *Model) ListGroups() []GroupDetail {
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups := make([]GroupDetail, 0, len(m.groups))
	for _, g := range m.groups {
		groups = append(groups, groupDetail(g))
	}

	collator := collate.New(language.Und)
	sort.SliceStable(groups, func(i, j int) bool {
		if c := collator.CompareString(groups[i].Name, groups[j].Name); c != 0 {
			return c < 0
		}
		return groups[i].GroupID < groups[j].GroupID
	})
	return groups
}

// GroupByID returns one group's detail.
func (m *Model) GroupByID(groupID string) (GroupDetail, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.groups[groupID]
	if !ok {
		return GroupDetail{}, false
	}
	return groupDetail(g), true
}

// GroupByCode returns the live group carrying the unique code.
func (m *Model) GroupByCode(code string) (GroupDetail, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, g := range m.groups {
		if g.UniqueCode == code {
			return groupDetail(g), true
		}
	}
	return GroupDetail{}, false
}

// GroupExistsByCode reports whether any live group carries the code.
func (m *Model) GroupExistsByCode(code string) bool {
	_, ok := m.GroupByCode(code)
	return ok
}

// QuestionsInGroup returns a group's questions in group order.
func (m *Model) QuestionsInGroup(groupID string) []QuestionDetail {
	return m.ListQuestions(ListFilter{GroupID: groupID})
}

// detailLocked builds a QuestionDetail; callers hold at least the read
// lock.
func (m *Model) detailLocked(q QuestionInfo) QuestionDetail {
	detail := QuestionDetail{
		QuestionID:             q.QuestionID,
		Text:                   q.Text,
		Options:                append([]question.QuestionOption(nil), q.Options...),
		IsDisplayed:            q.IsDisplayed,
		ResponseCount:          len(q.Responses),
		Responses:              append([]question.QuestionResponse(nil), q.Responses...),
		QuestionGroupID:        q.QuestionGroupID,
		QuestionGroupName:      q.QuestionGroupName,
		AllowMultipleResponses: q.AllowMultipleResponses,
	}
	if g, ok := m.groups[q.QuestionGroupID]; ok {
		for _, ref := range g.Questions {
			if ref.QuestionID == q.QuestionID {
				detail.Order = ref.Order
				break
			}
		}
	}
	return detail
}

func groupDetail(g GroupInfo) GroupDetail {
	return GroupDetail{
		GroupID:    g.GroupID,
		Name:       g.Name,
		UniqueCode: g.UniqueCode,
		Questions:  append([]group.QuestionReference(nil), g.Questions...),
	}
}
