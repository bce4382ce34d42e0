package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/askwave/askwave/internal/config"
	"github.com/askwave/askwave/internal/domain/activeusers"
	"github.com/askwave/askwave/internal/domain/group"
	"github.com/askwave/askwave/internal/domain/question"
	"github.com/askwave/askwave/internal/executor"
	"github.com/askwave/askwave/internal/readmodel"
	"github.com/askwave/askwave/internal/seed"
	"github.com/askwave/askwave/internal/store"
	"github.com/askwave/askwave/internal/workflow"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Config string
	File   string
}

// SeedResult summarizes one seeding run.
type SeedResult struct {
	GroupsTotal   int `json:"groups_total"`
	GroupsCreated int `json:"groups_created"`
	GroupsSkipped int `json:"groups_skipped"`
}

func (r SeedResult) String() string {
	return fmt.Sprintf("seeded %d of %d groups (%d already existed)",
		r.GroupsCreated, r.GroupsTotal, r.GroupsSkipped)
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Apply a YAML seed document to the event log",
		Long: `Validate a YAML seed document and create its question groups.

Groups whose name already exists in the log are skipped, so the
command can be re-run after a partial failure.

Exit codes:
  0 - Seed applied
  1 - Seed document invalid
  2 - Command error (file or database not accessible)

Examples:
  askwave seed --file seed.yaml
  askwave seed --file seed.yaml --config askwave.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to YAML config file")
	cmd.Flags().StringVar(&opts.File, "file", "", "path to YAML seed document (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	data, err := os.ReadFile(opts.File)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read seed file", err)
	}
	doc, err := seed.Parse(data)
	if err != nil {
		_ = out.Error(err.Error())
		return WrapExitError(ExitFailure, "seed document invalid", err)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open event store", err)
	}
	defer st.Close()

	ctx := context.Background()
	model := readmodel.New()
	events, err := st.ReadAll(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to replay event log", err)
	}
	for _, e := range events {
		model.Apply(e)
	}

	exec := executor.New(st,
		question.Projector{},
		group.Projector{},
		activeusers.Projector{},
	).WithApplier(model)
	workflows := workflow.New(exec, model)

	existing := len(model.ListGroups())
	if err := seed.NewSeeder(workflows, model).Apply(ctx, doc); err != nil {
		return WrapExitError(ExitCommandError, "seeding failed", err)
	}

	result := SeedResult{
		GroupsTotal:   len(doc.Groups),
		GroupsCreated: len(model.ListGroups()) - existing,
	}
	result.GroupsSkipped = result.GroupsTotal - result.GroupsCreated
	return out.Success(result)
}
