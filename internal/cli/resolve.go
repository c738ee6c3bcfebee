package cli

import (
	"github.com/spf13/cobra"

	"forksync.dev/forksync/internal/actions/resolve"
	"forksync.dev/forksync/internal/runtime"
)

// newResolveConflictsCmd creates the resolve-conflicts command
func newResolveConflictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve-conflicts",
		Short: "Interactively resolve a halted integration merge",
		Long: `Walk the unresolved paths of the merge a halted sync left in progress.
For each conflicted file, choose to keep the local version, keep the incoming
version, edit it manually, or abort the whole merge.

Once every path is resolved the merge is committed and the integration branch
is pushed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext(cmd.Context())
			if err != nil {
				return err
			}

			return resolve.Action(ctx, resolve.Options{})
		},
	}

	return cmd
}
