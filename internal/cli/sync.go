package cli

import (
	"github.com/spf13/cobra"

	"forksync.dev/forksync/internal/actions/sync"
	"forksync.dev/forksync/internal/runtime"
)

// newSyncCmd creates the sync command
func newSyncCmd() *cobra.Command {
	var auto bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch upstream and run the full synchronization pipeline",
		Long: `Fetch upstream, update the mirror branch, merge new upstream commits into
the integration branch, run the verification command, and promote the result
to the production branch.

In manual mode (the default) promotion asks for confirmation. With --auto the
pipeline promotes without prompting when verification passes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext(cmd.Context())
			if err != nil {
				return err
			}

			return sync.Action(ctx, sync.Options{
				Auto: auto,
			})
		},
	}

	cmd.Flags().BoolVar(&auto, "auto", false, "Promote without confirmation when verification passes")

	return cmd
}
