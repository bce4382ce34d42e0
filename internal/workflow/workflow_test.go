package workflow_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askwave/askwave/internal/domain"
	"github.com/askwave/askwave/internal/domain/group"
	"github.com/askwave/askwave/internal/domain/question"
	"github.com/askwave/askwave/internal/executor"
	"github.com/askwave/askwave/internal/readmodel"
	"github.com/askwave/askwave/internal/store"
	"github.com/askwave/askwave/internal/testutil"
	"github.com/askwave/askwave/internal/workflow"
)

var testOptions = []question.QuestionOption{{ID: "1", Text: "Yes"}, {ID: "2", Text: "No"}}

// newSystem wires a complete in-memory command side with the read model
// applied synchronously, the way the server wires it.
func newSystem() (*workflow.Workflows, *executor.Executor, *readmodel.Model) {
	model := readmodel.New()
	exec := executor.New(store.NewMemory(), question.Projector{}, group.Projector{}).
		WithApplier(model).
		WithClock(testutil.NewDefaultClock().Now)
	flows := workflow.New(exec, model).
		WithCodeGenerator(testCodes())
	return flows, exec, model
}

func testCodes() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("CODE%02d", n)
	}
}

func TestCreateGroupWithQuestions(t *testing.T) {
	flows, _, model := newSystem()

	groupID, err := flows.CreateGroupWithQuestions(context.Background(), "Demo", []workflow.QuestionSeed{
		{Text: "First?", Options: testOptions},
		{Text: "Second?", Options: testOptions, AllowMultipleResponses: true},
	})
	require.NoError(t, err)

	g, ok := model.GroupByID(groupID)
	require.True(t, ok)
	assert.Equal(t, "Demo", g.Name)
	assert.Equal(t, "CODE01", g.UniqueCode)
	require.Len(t, g.Questions, 2)

	questions := model.QuestionsInGroup(groupID)
	require.Len(t, questions, 2)
	assert.Equal(t, "First?", questions[0].Text)
	assert.Equal(t, 0, questions[0].Order)
	assert.Equal(t, "Second?", questions[1].Text)
	assert.Equal(t, 1, questions[1].Order)
	assert.True(t, questions[1].AllowMultipleResponses)
	assert.Equal(t, "Demo", questions[0].QuestionGroupName)
}

func TestAllocateUniqueCode_SkipsTakenCodes(t *testing.T) {
	flows, _, _ := newSystem()

	// CODE01 goes to the first group, so the next allocation must move on.
	_, err := flows.CreateGroup(context.Background(), "First")
	require.NoError(t, err)

	code, err := flows.AllocateUniqueCode()
	require.NoError(t, err)
	assert.Equal(t, "CODE02", code)
}

func TestAllocateUniqueCode_GivesUpAfterBoundedAttempts(t *testing.T) {
	flows, _, _ := newSystem()
	flows.WithCodeGenerator(func() string { return "CODE01" })

	_, err := flows.CreateGroup(context.Background(), "First")
	require.NoError(t, err)

	_, err = flows.AllocateUniqueCode()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unique code")
}

func TestStartDisplayExclusively(t *testing.T) {
	flows, _, model := newSystem()
	ctx := context.Background()

	groupID, err := flows.CreateGroupWithQuestions(ctx, "Demo", []workflow.QuestionSeed{
		{Text: "First?", Options: testOptions},
		{Text: "Second?", Options: testOptions},
		{Text: "Third?", Options: testOptions},
	})
	require.NoError(t, err)
	questions := model.QuestionsInGroup(groupID)
	require.Len(t, questions, 3)

	_, err = flows.StartDisplayExclusively(ctx, questions[0].QuestionID)
	require.NoError(t, err)
	active, ok := model.ActiveQuestion(groupID)
	require.True(t, ok)
	assert.Equal(t, questions[0].QuestionID, active.QuestionID)

	// Displaying another question stops the first one.
	_, err = flows.StartDisplayExclusively(ctx, questions[1].QuestionID)
	require.NoError(t, err)

	active, ok = model.ActiveQuestion(groupID)
	require.True(t, ok)
	assert.Equal(t, questions[1].QuestionID, active.QuestionID)

	displayed := 0
	for _, q := range model.QuestionsInGroup(groupID) {
		if q.IsDisplayed {
			displayed++
		}
	}
	assert.Equal(t, 1, displayed, "at most one displayed question per group")
}

func TestStartDisplayExclusively_DoesNotCrossGroups(t *testing.T) {
	flows, _, model := newSystem()
	ctx := context.Background()

	groupA, err := flows.CreateGroupWithQuestions(ctx, "A", []workflow.QuestionSeed{{Text: "A?", Options: testOptions}})
	require.NoError(t, err)
	groupB, err := flows.CreateGroupWithQuestions(ctx, "B", []workflow.QuestionSeed{{Text: "B?", Options: testOptions}})
	require.NoError(t, err)

	_, err = flows.StartDisplayExclusively(ctx, model.QuestionsInGroup(groupA)[0].QuestionID)
	require.NoError(t, err)
	_, err = flows.StartDisplayExclusively(ctx, model.QuestionsInGroup(groupB)[0].QuestionID)
	require.NoError(t, err)

	_, ok := model.ActiveQuestion(groupA)
	assert.True(t, ok, "displaying in one group must not stop another group's question")
	_, ok = model.ActiveQuestion(groupB)
	assert.True(t, ok)
}

func TestStartDisplayExclusively_UnknownQuestion(t *testing.T) {
	flows, _, _ := newSystem()

	_, err := flows.StartDisplayExclusively(context.Background(), "missing")
	assert.True(t, domain.IsNotFound(err))
}

func TestMoveQuestionBetweenGroups(t *testing.T) {
	flows, _, model := newSystem()
	ctx := context.Background()

	source, err := flows.CreateGroupWithQuestions(ctx, "Source", []workflow.QuestionSeed{
		{Text: "Moving?", Options: testOptions},
	})
	require.NoError(t, err)
	target, err := flows.CreateGroupWithQuestions(ctx, "Target", []workflow.QuestionSeed{
		{Text: "Staying?", Options: testOptions},
	})
	require.NoError(t, err)

	moving := model.QuestionsInGroup(source)[0].QuestionID

	err = flows.MoveQuestionBetweenGroups(ctx, moving, source, target, 0)
	require.NoError(t, err)

	assert.Empty(t, model.QuestionsInGroup(source))

	inTarget := model.QuestionsInGroup(target)
	require.Len(t, inTarget, 2)
	assert.Equal(t, moving, inTarget[0].QuestionID, "requested order places it first")
	assert.Equal(t, "Target", inTarget[0].QuestionGroupName)
	assert.Equal(t, target, inTarget[0].QuestionGroupID)
}

func TestMoveQuestionBetweenGroups_AppendWhenOrderOutOfRange(t *testing.T) {
	flows, _, model := newSystem()
	ctx := context.Background()

	source, err := flows.CreateGroupWithQuestions(ctx, "Source", []workflow.QuestionSeed{
		{Text: "Moving?", Options: testOptions},
	})
	require.NoError(t, err)
	target, err := flows.CreateGroupWithQuestions(ctx, "Target", []workflow.QuestionSeed{
		{Text: "Staying?", Options: testOptions},
	})
	require.NoError(t, err)

	moving := model.QuestionsInGroup(source)[0].QuestionID

	err = flows.MoveQuestionBetweenGroups(ctx, moving, source, target, -1)
	require.NoError(t, err)

	inTarget := model.QuestionsInGroup(target)
	require.Len(t, inTarget, 2)
	assert.Equal(t, moving, inTarget[1].QuestionID, "negative order appends")
}

func TestMoveQuestionBetweenGroups_SameGroupRejected(t *testing.T) {
	flows, _, _ := newSystem()

	err := flows.MoveQuestionBetweenGroups(context.Background(), "q-1", "g-1", "g-1", 0)
	assert.True(t, domain.IsValidation(err))
}
