package cli

import (
	"github.com/spf13/cobra"

	"forksync.dev/forksync/internal/actions/rollback"
	"forksync.dev/forksync/internal/runtime"
)

// newEmergencyRollbackCmd creates the emergency-rollback command
func newEmergencyRollbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emergency-rollback [tag]",
		Short: "Restore every role branch from a session's backup tags",
		Long: `Restore the mirror, integration, and production branches from the backup
tags of a single session. Use this when a promoted sync turns out to be bad
and the whole pipeline needs to go back to a known-good state.

Without an argument, lists the available backup tags and prompts for one.`,
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
				Emergency: true,
				TagName:   tagName,
			})
		},
	}

	return cmd
}
