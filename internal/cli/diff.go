package cli

import (
	"github.com/spf13/cobra"
)

var diffFlags RunFlags

// NewDiffCommand creates the diff command
func NewDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Classify source files against a target tree",
		Long: `Walk the source tree and classify every file against the target:
copy when the target path is missing, modify when content differs, and
no action when the files are identical. Nothing is ever written.`,
		RunE: runDiff,
	}

	addRunFlags(cmd, &diffFlags)

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	return executeRun(cmd, &diffFlags, false, false)
}
