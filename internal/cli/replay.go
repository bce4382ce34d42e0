package cli

import (
	"context"
	"fmt"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/askwave/askwave/internal/aggregate"
	"github.com/askwave/askwave/internal/domain/activeusers"
	"github.com/askwave/askwave/internal/domain/group"
	"github.com/askwave/askwave/internal/domain/question"
	"github.com/askwave/askwave/internal/event"
	"github.com/askwave/askwave/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database    string
	AggregateID string // optional, one partition only
}

// ReplayPartitionResult holds the replay result for one partition.
type ReplayPartitionResult struct {
	AggregateType string `json:"aggregate_type"`
	AggregateID   string `json:"aggregate_id"`
	Events        int    `json:"events"`
	Version       int64  `json:"version"`
	Payload       string `json:"payload"`
	Deterministic bool   `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Partitions       []ReplayPartitionResult `json:"partitions"`
	TotalPartitions  int                     `json:"total_partitions"`
	TotalEvents      int                     `json:"total_events"`
	AllDeterministic bool                    `json:"all_deterministic"`
}

func (r ReplayResult) String() string {
	return fmt.Sprintf("replayed %d events across %d partitions, deterministic=%v",
		r.TotalEvents, r.TotalPartitions, r.AllDeterministic)
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the event log and verify determinism",
		Long: `Replay every partition of the event log twice and verify that both
folds produce identical snapshots.

Exit codes:
  0 - All partitions are deterministic
  1 - Divergent replay detected
  2 - Command error (database not found, etc.)

Examples:
  askwave replay --db ./askwave.db
  askwave replay --db ./askwave.db --aggregate 0192d3...
  askwave replay --db ./askwave.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.AggregateID, "aggregate", "", "replay one aggregate id only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := context.Background()
	events, err := st.ReadAll(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read event log", err)
	}

	projectors := map[string]aggregate.Projector{
		event.AggregateQuestion:      question.Projector{},
		event.AggregateQuestionGroup: group.Projector{},
		event.AggregateActiveUsers:   activeusers.Projector{},
	}

	// Group the log into partitions, preserving commit order within
	// each.
	type partitionKey struct{ aggType, aggID string }
	partitions := make(map[partitionKey][]event.Event)
	var order []partitionKey
	for _, e := range events {
		if opts.AggregateID != "" && e.AggregateID != opts.AggregateID {
			continue
		}
		key := partitionKey{e.AggregateType, e.AggregateID}
		if _, seen := partitions[key]; !seen {
			order = append(order, key)
		}
		partitions[key] = append(partitions[key], e)
	}

	result := ReplayResult{
		Partitions:       make([]ReplayPartitionResult, 0, len(order)),
		TotalPartitions:  len(order),
		AllDeterministic: true,
	}

	for _, key := range order {
		projector, ok := projectors[key.aggType]
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown aggregate type %q in log", key.aggType))
		}

		partition := partitions[key]
		first := aggregate.Replay(projector, key.aggID, partition)
		second := aggregate.Replay(projector, key.aggID, partition)
		deterministic := reflect.DeepEqual(first, second)

		payloadName := first.Payload.PayloadName()

		result.Partitions = append(result.Partitions, ReplayPartitionResult{
			AggregateType: key.aggType,
			AggregateID:   key.aggID,
			Events:        len(partition),
			Version:       first.Version,
			Payload:       payloadName,
			Deterministic: deterministic,
		})
		result.TotalEvents += len(partition)
		if !deterministic {
			result.AllDeterministic = false
		}
		out.VerboseLog("partition %s/%s: %d events, version %d, payload %s",
			key.aggType, key.aggID, len(partition), first.Version, payloadName)
	}

	if err := out.Success(result); err != nil {
		return err
	}
	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "divergent replay detected")
	}
	return nil
}
