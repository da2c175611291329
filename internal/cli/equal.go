package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/treesync/pkg/diff"
)

// NewEqualCommand creates the equal command
func NewEqualCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "equal <dir1> <dir2>",
		Short: "Check whether two directory trees are identical",
		Long: `Compare two directory trees for deep equality: both must contain the
same set of paths and every pair of files must be byte-identical.
Exits 0 when the trees are equal and 1 when they differ.`,
		Args: cobra.ExactArgs(2),
		RunE: runEqual,
	}
}

func runEqual(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	equal, err := diff.DirectoriesEqual(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	if equal {
		if !globalFlags.Quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "Trees are identical.")
		}
		return nil
	}

	if !globalFlags.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Trees differ.")
	}
	os.Exit(1)
	return nil
}
