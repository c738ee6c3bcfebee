// Package cli wires the forksync commands to their actions.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "forksync",
		Short: "Forksync keeps a customized fork in step with its upstream repository",
		Long: `Forksync keeps a customized fork in step with its upstream repository.

It mirrors upstream onto a local tracking branch, merges the mirror into an
integration branch that carries your local modifications, verifies the result,
and promotes it to the production branch. Every destructive step is preceded
by a backup tag so any state can be restored.`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	}

	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newRollbackCmd())
	rootCmd.AddCommand(newEmergencyRollbackCmd())
	rootCmd.AddCommand(newResolveConflictsCmd())
	rootCmd.AddCommand(newHealthCheckCmd())

	return rootCmd
}
