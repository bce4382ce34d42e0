package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/askwave/askwave/internal/dispatcher"
	"github.com/askwave/askwave/internal/domain/activeusers"
	"github.com/askwave/askwave/internal/domain/group"
	"github.com/askwave/askwave/internal/domain/question"
	"github.com/askwave/askwave/internal/executor"
	"github.com/askwave/askwave/internal/readmodel"
	"github.com/askwave/askwave/internal/store"
	"github.com/askwave/askwave/internal/testutil"
	"github.com/askwave/askwave/internal/workflow"
)

// rosterID is the fixed roster partition used by scenarios.
const rosterID = "active-users-harness"

// runner holds the wired system for one scenario execution.
type runner struct {
	exec      *executor.Executor
	workflows *workflow.Workflows
	model     *readmodel.Model
	disp      *dispatcher.Dispatcher
	rec       *recorder

	// aliases maps step aliases to generated aggregate ids.
	aliases map[string]string

	clock     *testutil.Clock
	responses int
}

// Run executes a scenario against a fresh in-memory system and
// returns the recorded notification trace.
func Run(scenario *Scenario) (*Result, error) {
	clock := testutil.NewDefaultClock()
	model := readmodel.New()
	rec := &recorder{}

	exec := executor.New(store.NewMemory(),
		question.Projector{},
		group.Projector{},
		activeusers.Projector{},
	).WithApplier(model).WithClock(clock.Now)

	disp := dispatcher.New(exec, rec)
	exec.WithPublisher(disp)

	codes := 0
	workflows := workflow.New(exec, model).WithCodeGenerator(func() string {
		codes++
		return fmt.Sprintf("CODE%02d", codes)
	})

	r := &runner{
		exec:      exec,
		workflows: workflows,
		model:     model,
		disp:      disp,
		rec:       rec,
		aliases:   make(map[string]string),
		clock:     clock,
	}

	ctx := context.Background()
	if _, err := exec.Execute(ctx, activeusers.CreateActiveUsers{ActiveUsersID: rosterID}); err != nil {
		return nil, fmt.Errorf("create roster: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		id, err := r.runStep(ctx, step)
		if err := checkStepError(i, step, err); err != "" {
			result.AddError(err)
			continue
		}
		if step.As != "" && id != "" {
			r.aliases[step.As] = id
		}
	}

	// Drain the dispatcher synchronously so the trace is complete and
	// ordered before returning.
	disp.Stop()
	if err := disp.Run(ctx); err != nil {
		return nil, fmt.Errorf("drain dispatcher: %w", err)
	}

	result.Trace = rec.events
	return result, nil
}

// checkStepError reconciles the actual error with the step's
// expectation. Returns a non-empty message on mismatch.
func checkStepError(index int, step Step, err error) string {
	switch {
	case err == nil && step.ExpectError != "":
		return fmt.Sprintf("step %d (%s): expected error containing %q, got none",
			index, step.Command, step.ExpectError)
	case err != nil && step.ExpectError == "":
		return fmt.Sprintf("step %d (%s): unexpected error: %v", index, step.Command, err)
	case err != nil && !strings.Contains(err.Error(), step.ExpectError):
		return fmt.Sprintf("step %d (%s): error %q does not contain %q",
			index, step.Command, err, step.ExpectError)
	}
	return ""
}

// resolve maps an alias to its captured id, falling back to the raw
// value for ids given literally.
func (r *runner) resolve(ref string) string {
	if id, ok := r.aliases[ref]; ok {
		return id
	}
	return ref
}

func (r *runner) options(texts []string) []question.QuestionOption {
	options := make([]question.QuestionOption, 0, len(texts))
	for i, text := range texts {
		options = append(options, question.QuestionOption{
			ID:   fmt.Sprintf("%d", i+1),
			Text: text,
		})
	}
	return options
}

func (r *runner) runStep(ctx context.Context, step Step) (string, error) {
	switch step.Command {
	case "create_group":
		return r.workflows.CreateGroup(ctx, step.Name)

	case "create_question":
		return r.workflows.CreateQuestionInGroup(ctx, r.resolve(step.Group), workflow.QuestionSeed{
			Text:                   step.Text,
			Options:                r.options(step.Options),
			AllowMultipleResponses: step.AllowMultipleResponses,
		})

	case "update_question":
		res, err := r.exec.Execute(ctx, question.UpdateQuestion{
			QuestionID:             r.resolve(step.Question),
			Text:                   step.Text,
			Options:                r.options(step.Options),
			AllowMultipleResponses: step.AllowMultipleResponses,
		})
		return res.AggregateID, err

	case "start_display":
		res, err := r.workflows.StartDisplayExclusively(ctx, r.resolve(step.Question))
		return res.AggregateID, err

	case "stop_display":
		res, err := r.exec.Execute(ctx, question.StopDisplay{QuestionID: r.resolve(step.Question)})
		return res.AggregateID, err

	case "add_response":
		r.responses++
		responseID := fmt.Sprintf("response-%04d", r.responses)
		res, err := r.exec.Execute(ctx, question.AddResponse{
			QuestionID:       r.resolve(step.Question),
			ParticipantName:  step.ParticipantName,
			SelectedOptionID: step.SelectedOptionID,
			Comment:          step.Comment,
			ClientID:         step.ClientID,
			Now:              r.clock.Now,
			NewResponseID:    func() string { return responseID },
		})
		return res.AggregateID, err

	case "delete_question":
		res, err := r.exec.Execute(ctx, question.DeleteQuestion{QuestionID: r.resolve(step.Question)})
		return res.AggregateID, err

	case "move_question":
		questionID := r.resolve(step.Question)
		current, ok := r.model.QuestionByID(questionID)
		if !ok {
			return "", fmt.Errorf("question %s not found", questionID)
		}
		newOrder := -1
		if step.NewOrder != nil {
			newOrder = *step.NewOrder
		}
		return questionID, r.workflows.MoveQuestionBetweenGroups(ctx,
			questionID, current.QuestionGroupID, r.resolve(step.TargetGroup), newOrder)

	case "rename_group":
		res, err := r.exec.Execute(ctx, group.UpdateQuestionGroupName{
			GroupID: r.resolve(step.Group),
			NewName: step.Name,
		})
		return res.AggregateID, err

	case "delete_group":
		res, err := r.exec.Execute(ctx, group.DeleteQuestionGroup{GroupID: r.resolve(step.Group)})
		return res.AggregateID, err

	case "change_order":
		newOrder := 0
		if step.NewOrder != nil {
			newOrder = *step.NewOrder
		}
		res, err := r.exec.Execute(ctx, group.ChangeQuestionOrder{
			GroupID:    r.resolve(step.Group),
			QuestionID: r.resolve(step.Question),
			NewOrder:   newOrder,
		})
		return res.AggregateID, err

	case "connect_user":
		res, err := r.exec.Execute(ctx, activeusers.UserConnectedCommand{
			ActiveUsersID: rosterID,
			ConnectionID:  step.ConnectionID,
			Name:          step.Name,
			Now:           r.clock.Now,
		})
		return res.AggregateID, err

	case "disconnect_user":
		res, err := r.exec.Execute(ctx, activeusers.UserDisconnectedCommand{
			ActiveUsersID: rosterID,
			ConnectionID:  step.ConnectionID,
			Now:           r.clock.Now,
		})
		return res.AggregateID, err

	case "rename_user":
		res, err := r.exec.Execute(ctx, activeusers.UpdateUserName{
			ActiveUsersID: rosterID,
			ConnectionID:  step.ConnectionID,
			Name:          step.Name,
			Now:           r.clock.Now,
		})
		return res.AggregateID, err

	default:
		return "", fmt.Errorf("unknown command %q", step.Command)
	}
}
