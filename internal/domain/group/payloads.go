// Package group implements the QuestionGroup aggregate: a named,
// ordered collection of question references joined by audiences through
// a six-character unique code.
package group

import "sort"

// QuestionReference links a question into the group with its position.
// Order values are contiguous 0..N-1 and strictly increasing by list
// position; every mutation renumbers to keep that true.
type QuestionReference struct {
	QuestionID string `json:"questionId"`
	Order      int    `json:"order"`
}

// QuestionGroup is the live variant of the aggregate.
type QuestionGroup struct {
	Name       string
	UniqueCode string
	Questions  []QuestionReference
}

// PayloadName identifies the live variant.
func (QuestionGroup) PayloadName() string { return "QuestionGroup" }

// DeletedQuestionGroup is the terminal tombstone variant.
type DeletedQuestionGroup struct {
	Name       string
	UniqueCode string
	Questions  []QuestionReference
}

// PayloadName identifies the tombstone variant.
func (DeletedQuestionGroup) PayloadName() string { return "DeletedQuestionGroup" }

// contains reports whether the question id is already referenced.
func (g QuestionGroup) contains(questionID string) bool {
	for _, q := range g.Questions {
		if q.QuestionID == questionID {
			return true
		}
	}
	return false
}

// nextOrder returns max(order)+1, or 0 for an empty group.
func (g QuestionGroup) nextOrder() int {
	next := 0
	for _, q := range g.Questions {
		if q.Order >= next {
			next = q.Order + 1
		}
	}
	return next
}

// addQuestion appends the question with the next order. Adding an id
// that is already present returns the group unchanged.
func (g QuestionGroup) addQuestion(questionID string) QuestionGroup {
	if g.contains(questionID) {
		return g
	}
	questions := make([]QuestionReference, len(g.Questions), len(g.Questions)+1)
	copy(questions, g.Questions)
	g.Questions = append(questions, QuestionReference{QuestionID: questionID, Order: g.nextOrder()})
	return g
}

// removeQuestion drops the question and renumbers the remainder
// sequentially. Removing an absent id returns the group unchanged.
func (g QuestionGroup) removeQuestion(questionID string) QuestionGroup {
	if !g.contains(questionID) {
		return g
	}
	remaining := make([]QuestionReference, 0, len(g.Questions)-1)
	for _, q := range sortedByOrder(g.Questions) {
		if q.QuestionID == questionID {
			continue
		}
		q.Order = len(remaining)
		remaining = append(remaining, q)
	}
	g.Questions = remaining
	return g
}

// reorderTo rebuilds the reference list from a full ordered id list.
// Ids not currently in the group are ignored; current members missing
// from the list keep their relative order after the listed ones. In the
// expected case the list is a permutation of the membership and the
// result is exactly that permutation renumbered 0..N-1.
func (g QuestionGroup) reorderTo(orderedIDs []string) QuestionGroup {
	byID := make(map[string]QuestionReference, len(g.Questions))
	for _, q := range g.Questions {
		byID[q.QuestionID] = q
	}

	reordered := make([]QuestionReference, 0, len(g.Questions))
	placed := make(map[string]bool, len(g.Questions))
	for _, id := range orderedIDs {
		q, ok := byID[id]
		if !ok || placed[id] {
			continue
		}
		q.Order = len(reordered)
		reordered = append(reordered, q)
		placed[id] = true
	}
	for _, q := range sortedByOrder(g.Questions) {
		if placed[q.QuestionID] {
			continue
		}
		q.Order = len(reordered)
		reordered = append(reordered, q)
	}

	g.Questions = reordered
	return g
}

// sortedByOrder returns a copy sorted by ascending order value.
func sortedByOrder(refs []QuestionReference) []QuestionReference {
	out := make([]QuestionReference, len(refs))
	copy(out, refs)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
