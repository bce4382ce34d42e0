package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askwave/askwave/internal/cli"
	"github.com/askwave/askwave/internal/domain/group"
	"github.com/askwave/askwave/internal/domain/question"
	"github.com/askwave/askwave/internal/executor"
	"github.com/askwave/askwave/internal/store"
)

const validSeed = `
groups:
  - name: Demo
    questions:
      - text: Ready?
        options: ["Yes", "No"]
`

// runCommand executes the CLI with the given args and returns stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := cli.NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidate_ValidDocument(t *testing.T) {
	path := writeFile(t, "seed.yaml", validSeed)

	out, err := runCommand(t, "validate", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "seed document valid: 1 groups, 1 questions")
}

func TestValidate_JSONFormat(t *testing.T) {
	path := writeFile(t, "seed.yaml", validSeed)

	out, err := runCommand(t, "validate", "--file", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string             `json:"status"`
		Data   cli.ValidateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, cli.ValidateResult{Groups: 1, Questions: 1}, resp.Data)
}

func TestValidate_InvalidDocumentExitsOne(t *testing.T) {
	path := writeFile(t, "seed.yaml", "groups:\n  - name: \"\"\n")

	_, err := runCommand(t, "validate", "--file", path)
	require.Error(t, err)
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(err))
}

func TestValidate_UnreadableFileExitsTwo(t *testing.T) {
	_, err := runCommand(t, "validate", "--file", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(err))
}

func TestRoot_RejectsUnknownFormat(t *testing.T) {
	path := writeFile(t, "seed.yaml", validSeed)

	_, err := runCommand(t, "validate", "--file", path, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestReplay_DeterministicLog(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "askwave.db")
	seedDatabase(t, dbPath)

	out, err := runCommand(t, "replay", "--db", dbPath, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   cli.ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllDeterministic)
	assert.Equal(t, 2, resp.Data.TotalPartitions)
	assert.Equal(t, 3, resp.Data.TotalEvents)
}

func TestReplay_SinglePartition(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "askwave.db")
	questionID := seedDatabase(t, dbPath)

	out, err := runCommand(t, "replay", "--db", dbPath, "--aggregate", questionID, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data cli.ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Partitions, 1)
	assert.Equal(t, questionID, resp.Data.Partitions[0].AggregateID)
	assert.Equal(t, int64(2), resp.Data.Partitions[0].Version)
}

// seedDatabase commits one group and a twice-versioned question, then
// closes the store. Returns the question's aggregate id.
func seedDatabase(t *testing.T, path string) string {
	t.Helper()
	st, err := store.Open(path)
	require.NoError(t, err)
	defer st.Close()

	exec := executor.New(st, question.Projector{}, group.Projector{})
	ctx := context.Background()

	g, err := exec.Execute(ctx, group.CreateQuestionGroup{Name: "Demo", UniqueCode: "ABC123"})
	require.NoError(t, err)
	q, err := exec.Execute(ctx, question.CreateQuestion{
		Text:            "Ready?",
		Options:         []question.QuestionOption{{ID: "1", Text: "Yes"}, {ID: "2", Text: "No"}},
		QuestionGroupID: g.AggregateID,
	})
	require.NoError(t, err)
	_, err = exec.Execute(ctx, question.StartDisplay{QuestionID: q.AggregateID})
	require.NoError(t, err)
	return q.AggregateID
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, cli.ExitCommandError, cli.GetExitCode(cli.NewExitError(cli.ExitCommandError, "boom")))
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(errors.New("plain")))

	wrapped := cli.WrapExitError(cli.ExitFailure, "outer", errors.New("inner"))
	assert.Equal(t, "outer: inner", wrapped.Error())
	assert.Equal(t, "inner", errors.Unwrap(wrapped).Error())
}
