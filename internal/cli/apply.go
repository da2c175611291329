package cli

import (
	"github.com/spf13/cobra"
)

// ApplyFlags holds apply command flags
type ApplyFlags struct {
	RunFlags
	Commit      bool
	Interactive bool
}

var applyFlags ApplyFlags

// NewApplyCommand creates the apply command
func NewApplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply pending copy and modify actions to a target tree",
		Long: `Classify the source tree against the target and transfer every file
that is missing or differs, preserving modification time and permission
bits. Without --commit the planned actions are reported and nothing is
written.`,
		RunE: runApply,
	}

	addRunFlags(cmd, &applyFlags.RunFlags)

	cmd.Flags().BoolVar(&applyFlags.Commit, "commit", false, "write changes to the target (default is a dry run)")
	cmd.Flags().BoolVarP(&applyFlags.Interactive, "interactive", "i", false, "ask for confirmation before writing")

	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	return executeRun(cmd, &applyFlags.RunFlags, applyFlags.Commit, applyFlags.Interactive)
}
