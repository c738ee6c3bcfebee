package shell_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"forksync.dev/forksync/internal/shell"
)

func TestExecRunner(t *testing.T) {
	t.Run("captures stdout and stderr", func(t *testing.T) {
		runner := shell.NewExecRunner(t.TempDir())

		result, err := runner.Run(context.Background(), "echo out; echo err >&2")
		require.NoError(t, err)
		require.Equal(t, 0, result.ExitCode)
		require.Equal(t, "out", result.Stdout)
		require.Equal(t, "err", result.Stderr)
	})

	t.Run("nonzero exit is a result, not an error", func(t *testing.T) {
		runner := shell.NewExecRunner(t.TempDir())

		result, err := runner.Run(context.Background(), "exit 3")
		require.NoError(t, err)
		require.Equal(t, 3, result.ExitCode)
	})

	t.Run("extra environment reaches the command", func(t *testing.T) {
		runner := shell.NewExecRunner(t.TempDir())

		result, err := runner.Run(context.Background(), "echo $FORKSYNC_PROFILE", "FORKSYNC_PROFILE=ci")
		require.NoError(t, err)
		require.Equal(t, "ci", result.Stdout)
	})

	t.Run("runs in the configured directory", func(t *testing.T) {
		dir := t.TempDir()
		runner := shell.NewExecRunner(dir)

		result, err := runner.Run(context.Background(), "pwd")
		require.NoError(t, err)
		require.Contains(t, result.Stdout, dir)
	})

	t.Run("context cancellation stops the command", func(t *testing.T) {
		runner := shell.NewExecRunner(t.TempDir())

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, _ = runner.Run(ctx, "sleep 10")
		require.Less(t, time.Since(start), 5*time.Second)
	})
}
