// Package workflow orchestrates multi-command flows that no single
// aggregate can express: display exclusivity, unique-code allocation,
// group-with-questions creation, and cross-group moves.
//
// Every workflow is a saga: an ordered list of independently retriable,
// idempotent single-aggregate commands with no transaction and no
// rollback. The final invariant is eventually true, not atomically
// true - a crash mid-saga leaves an intermediate state that a retry
// repairs. Within this process a keyed mutex per group (and a single
// allocator lock for codes) serializes competing invocations so the
// check-then-act sequences cannot interleave; across processes no such
// guarantee exists and the races documented on each method remain.
package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/domain/group"
	"github.com/askwave/askwave/internal/domain/question"
	"github.com/askwave/askwave/internal/executor"
	"github.com/askwave/askwave/internal/readmodel"
	"github.com/askwave/askwave/internal/result"
	"github.com/askwave/askwave/internal/syncutil"
)

// maxCodeAttempts bounds unique-code allocation retries.
const maxCodeAttempts = 10

// Workflows runs sagas over the executor and read model.
type Workflows struct {
	exec       *executor.Executor
	model      *readmodel.Model
	groupLocks *syncutil.KeyedMutex

	// allocMu serializes code allocation so two concurrent
	// allocations cannot both validate the same candidate.
	allocMu sync.Mutex

	// newCode generates code candidates; tests inject fixed values.
	newCode func() string
}

// New creates the workflow set.
func New(exec *executor.Executor, model *readmodel.Model) *Workflows {
	return &Workflows{
		exec:       exec,
		model:      model,
		groupLocks: syncutil.NewKeyedMutex(),
		newCode:    group.RandomCode,
	}
}

// WithCodeGenerator overrides the unique-code candidate source.
func (w *Workflows) WithCodeGenerator(newCode func() string) *Workflows {
	w.newCode = newCode
	return w
}

// StartDisplayExclusively displays the target question and stops every
// other displayed question in its group, keeping "at most one displayed
// question per group" true.
//
// The saga has no rollback: a crash after stopping others but before
// starting the target leaves zero questions displayed, which a retry
// repairs. The per-group lock serializes in-process invocations only.
func (w *Workflows) StartDisplayExclusively(ctx context.Context, questionID string) (executor.Result, error) {
	target, ok := w.model.QuestionByID(questionID)
	if !ok {
		return executor.Result{}, domain.NewNotFoundError("question %s not found", questionID)
	}

	unlock := w.groupLocks.Lock(target.QuestionGroupID)
	defer unlock()

	for _, q := range w.model.QuestionsInGroup(target.QuestionGroupID) {
		if !q.IsDisplayed || q.QuestionID == questionID {
			continue
		}
		if _, err := w.exec.Execute(ctx, question.StopDisplay{QuestionID: q.QuestionID}); err != nil {
			return executor.Result{}, fmt.Errorf("stop displayed question %s: %w", q.QuestionID, err)
		}
	}

	return w.exec.Execute(ctx, question.StartDisplay{QuestionID: questionID})
}

// AllocateUniqueCode returns a code no live group currently uses.
//
// Check-then-create is not atomic across processes: the allocator lock
// closes the race in-process, and the bounded retry plus the store's
// append semantics keep a cross-process collision recoverable rather
// than silent.
func (w *Workflows) AllocateUniqueCode() (string, error) {
	w.allocMu.Lock()
	defer w.allocMu.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := w.newCode()
		if !w.model.GroupExistsByCode(code) {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique code in %d attempts", maxCodeAttempts)
}

// QuestionSeed describes one question in a bulk group creation.
type QuestionSeed struct {
	Text                   string
	Options                []question.QuestionOption
	AllowMultipleResponses bool
}

// CreateGroupWithQuestions creates a group with a freshly allocated
// unique code, then creates and links each question in order. Steps are
// sequential and idempotent; a failure leaves the already-created
// prefix in place for the caller to retry or clean up.
func (w *Workflows) CreateGroupWithQuestions(ctx context.Context, name string, seeds []QuestionSeed) (string, error) {
	created := result.AndThen(
		result.From(w.AllocateUniqueCode()),
		func(code string) result.Result[executor.Result] {
			return result.From(w.exec.Execute(ctx, group.CreateQuestionGroup{Name: name, UniqueCode: code}))
		},
	)
	groupID, err := result.Map(created, func(r executor.Result) string { return r.AggregateID }).Unwrap()
	if err != nil {
		return "", err
	}

	for _, seed := range seeds {
		if _, err := w.CreateQuestionInGroup(ctx, groupID, seed); err != nil {
			return groupID, err
		}
	}
	return groupID, nil
}

// CreateQuestionInGroup creates one question and links it into the
// group with the next order.
func (w *Workflows) CreateQuestionInGroup(ctx context.Context, groupID string, seed QuestionSeed) (string, error) {
	created := result.From(w.exec.Execute(ctx, question.CreateQuestion{
		Text:                   seed.Text,
		Options:                seed.Options,
		QuestionGroupID:        groupID,
		AllowMultipleResponses: seed.AllowMultipleResponses,
	}))

	linked := result.AndThen(created, func(r executor.Result) result.Result[executor.Result] {
		return result.From(w.exec.Execute(ctx, group.AddQuestionToGroup{
			GroupID:    groupID,
			QuestionID: r.AggregateID,
		}))
	})

	questionID := result.Map(created, func(r executor.Result) string { return r.AggregateID })
	pair, err := result.Zip(questionID, linked).Unwrap()
	if err != nil {
		return "", err
	}
	return pair.First, nil
}

// MoveQuestionBetweenGroups moves a question from one group to another
// and re-links the question's own group reference. Three idempotent
// steps; a crash between them leaves the question linked to at most one
// group, and re-running the move repairs the remainder.
func (w *Workflows) MoveQuestionBetweenGroups(ctx context.Context, questionID, sourceGroupID, targetGroupID string, newOrder int) error {
	if sourceGroupID == targetGroupID {
		return domain.NewValidationError("source and target group are the same")
	}

	// Lock both groups in a stable order to avoid lock cycles with a
	// concurrent move in the opposite direction.
	first, second := sourceGroupID, targetGroupID
	if second < first {
		first, second = second, first
	}
	unlockFirst := w.groupLocks.Lock(first)
	defer unlockFirst()
	unlockSecond := w.groupLocks.Lock(second)
	defer unlockSecond()

	if _, err := w.exec.Execute(ctx, group.RemoveQuestionFromGroup{GroupID: sourceGroupID, QuestionID: questionID}); err != nil {
		return fmt.Errorf("remove question from source group: %w", err)
	}
	if _, err := w.exec.Execute(ctx, group.AddQuestionToGroup{GroupID: targetGroupID, QuestionID: questionID}); err != nil {
		return fmt.Errorf("add question to target group: %w", err)
	}
	if _, err := w.exec.Execute(ctx, question.UpdateQuestionGroupID{QuestionID: questionID, QuestionGroupID: targetGroupID}); err != nil {
		return fmt.Errorf("update question group id: %w", err)
	}

	if target, ok := w.model.GroupByID(targetGroupID); ok && newOrder >= 0 && newOrder < len(target.Questions) {
		if _, err := w.exec.Execute(ctx, group.ChangeQuestionOrder{
			GroupID:    targetGroupID,
			QuestionID: questionID,
			NewOrder:   newOrder,
		}); err != nil {
			return fmt.Errorf("reorder moved question: %w", err)
		}
	}
	return nil
}

// CreateGroup creates a group with an allocated code and no questions.
func (w *Workflows) CreateGroup(ctx context.Context, name string) (string, error) {
	return w.CreateGroupWithQuestions(ctx, name, nil)
}
