package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/askwave/askwave/internal/seed"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	File string
}

// ValidateResult summarizes a validated seed document.
type ValidateResult struct {
	Groups    int `json:"groups"`
	Questions int `json:"questions"`
}

func (r ValidateResult) String() string {
	return fmt.Sprintf("seed document valid: %d groups, %d questions", r.Groups, r.Questions)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a YAML seed document",
		Long: `Validate a YAML seed document against the seed schema without
applying it.

Exit codes:
  0 - Document is valid
  1 - Document is invalid
  2 - Command error (file not readable)

Examples:
  askwave validate --file seed.yaml
  askwave validate --file seed.yaml --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.File, "file", "", "path to YAML seed document (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	data, err := os.ReadFile(opts.File)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read seed file", err)
	}

	doc, err := seed.Parse(data)
	if err != nil {
		_ = out.Error(err.Error())
		return WrapExitError(ExitFailure, "seed document invalid", err)
	}

	result := ValidateResult{Groups: len(doc.Groups)}
	for _, g := range doc.Groups {
		result.Questions += len(g.Questions)
		out.VerboseLog("group %q: %d questions", g.Name, len(g.Questions))
	}
	return out.Success(result)
}
