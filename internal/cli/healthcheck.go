package cli

import (
	"github.com/spf13/cobra"

	"forksync.dev/forksync/internal/actions/doctor"
	"forksync.dev/forksync/internal/runtime"
)

// newHealthCheckCmd creates the health-check command
func newHealthCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health-check",
		Short: "Diagnose the fork repository and pipeline state",
		Long: `Run read-only diagnostic checks over the fork repository.

The health-check command checks:
  - Environment: the git binary
  - Repository: remotes, role branches, and working tree state
  - Pipeline State: branch relationships, the sync lease, protected paths,
    and the backup tag inventory`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := runtime.GetContext(cmd.Context())
			if err != nil {
				return err
			}

			return doctor.Action(ctx, doctor.Options{})
		},
	}

	return cmd
}
