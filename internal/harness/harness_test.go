package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_AliasesFlowBetweenSteps(t *testing.T) {
	result, err := Run(&Scenario{
		Name: "aliases",
		Steps: []Step{
			{Command: "create_group", As: "g", Name: "Demo"},
			{Command: "create_question", As: "q", Group: "g", Text: "Ready?", Options: []string{"Yes", "No"}},
			{Command: "start_display", Question: "q"},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	var names []string
	for _, e := range result.Trace {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{
		"ActiveUsersCreated",
		"QuestionGroupCreated",
		"QuestionCreated",
		"QuestionAddedToGroup",
		"QuestionDisplayStarted",
	}, names)
}

func TestRun_ExpectedErrorPasses(t *testing.T) {
	result, err := Run(&Scenario{
		Name: "expected-rejection",
		Steps: []Step{
			{Command: "create_group", As: "g", Name: "Demo"},
			{Command: "create_question", As: "q", Group: "g", Text: "Ready?", Options: []string{"Yes", "No"}},
			{Command: "start_display", Question: "q"},
			{Command: "start_display", Question: "q", ExpectError: "already being displayed"},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UnexpectedErrorFails(t *testing.T) {
	result, err := Run(&Scenario{
		Name: "unexpected-rejection",
		Steps: []Step{
			{Command: "start_display", Question: "missing"},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
}

func TestRun_MissingExpectedErrorFails(t *testing.T) {
	result, err := Run(&Scenario{
		Name: "missing-rejection",
		Steps: []Step{
			{Command: "create_group", Name: "Demo", ExpectError: "should not work"},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected error")
}

func TestRun_UnknownCommand(t *testing.T) {
	result, err := Run(&Scenario{
		Name:  "unknown",
		Steps: []Step{{Command: "explode"}},
	})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], `unknown command "explode"`)
}

func TestRun_DeterministicAcrossRuns(t *testing.T) {
	scenario := &Scenario{
		Name: "repeatable",
		Steps: []Step{
			{Command: "create_group", As: "g", Name: "Demo"},
			{Command: "create_question", As: "q", Group: "g", Text: "Ready?", Options: []string{"Yes", "No"}},
			{Command: "start_display", Question: "q"},
			{Command: "add_response", Question: "q", ParticipantName: "Ada", SelectedOptionID: "1", ClientID: "c-1"},
		},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	// Generated ids differ between runs; the normalized traces must not.
	assert.Equal(t, NormalizeTrace(first.Trace), NormalizeTrace(second.Trace))
}

func TestNormalizeTrace(t *testing.T) {
	trace := []TraceEvent{
		{Group: "Admins", Name: "QuestionCreated", Payload: map[string]any{"aggregateId": "raw-a"}},
		{Group: "Admins", Name: "QuestionAddedToGroup", Payload: map[string]any{
			"aggregateId": "raw-b",
			"questionId":  "raw-a",
			"order":       0,
		}},
	}

	normalized := NormalizeTrace(trace)

	assert.Equal(t, map[string]any{"aggregateId": "id-01"}, normalized[0].Payload)
	assert.Equal(t, map[string]any{
		"aggregateId": "id-02",
		"questionId":  "id-01",
		"order":       0,
	}, normalized[1].Payload)
	// The input trace is left untouched.
	assert.Equal(t, "raw-a", trace[0].Payload.(map[string]any)["aggregateId"])
}

func TestLoadScenario_Validation(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/create-group.yaml")
	require.NoError(t, err)

	_, err = LoadScenario("testdata/scenarios/does-not-exist.yaml")
	assert.Error(t, err)
}
