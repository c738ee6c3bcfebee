package cli

import (
	"github.com/spf13/cobra"

	"forksync.dev/forksync/internal/actions/rollback"
	"forksync.dev/forksync/internal/runtime"
)

// newRollbackCmd creates the rollback command
func newRollbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollback [tag]",
		Short: "Restore a branch from a backup tag",
		Long: `Restore the branch a backup tag was taken from back to the tagged commit.

Without an argument, lists the available backup tags and prompts for one.
The current tip is saved under an emergency/ tag before anything moves, so a
rollback can itself be rolled back.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := runtime.GetContext(cmd.Context())
			if err != nil {
				return err
			}

			var tagName string
			if len(args) > 0 {
				tagName = args[0]
			}

			return rollback.Action(ctx, rollback.Options{
				TagName: tagName,
			})
		},
	}

	return cmd
}
