package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	forksyncerrors "forksync.dev/forksync/internal/errors"
)

func TestErrorMatching(t *testing.T) {
	t.Run("missing remote matches sentinel", func(t *testing.T) {
		err := forksyncerrors.NewMissingRemoteError("upstream")
		require.ErrorIs(t, err, forksyncerrors.ErrMissingRemote)
		require.Contains(t, err.Error(), "upstream")
	})

	t.Run("merge conflict matches sentinel and carries files", func(t *testing.T) {
		err := forksyncerrors.NewMergeConflictError("upstream-mirror", "integration", []string{"a.txt", "b.txt"})
		require.ErrorIs(t, err, forksyncerrors.ErrMergeConflict)

		var conflict *forksyncerrors.MergeConflictError
		require.True(t, stderrors.As(err, &conflict))
		require.Equal(t, []string{"a.txt", "b.txt"}, conflict.Files)
		require.Equal(t, "upstream-mirror", conflict.Source)
		require.Equal(t, "integration", conflict.Target)
	})

	t.Run("test failure matches sentinel", func(t *testing.T) {
		err := forksyncerrors.NewTestFailureError("make test", 2)
		require.ErrorIs(t, err, forksyncerrors.ErrTestsFailed)

		var failure *forksyncerrors.TestFailureError
		require.True(t, stderrors.As(err, &failure))
		require.Equal(t, 2, failure.ExitCode)
	})

	t.Run("push rejected matches sentinel and unwraps", func(t *testing.T) {
		cause := fmt.Errorf("stale info")
		err := forksyncerrors.NewPushRejectedError("integration", "origin", cause)
		require.ErrorIs(t, err, forksyncerrors.ErrPushRejected)
		require.ErrorIs(t, err, cause)
	})

	t.Run("lock held matches sentinel", func(t *testing.T) {
		err := &forksyncerrors.LockHeldError{Owner: "host", PID: 42}
		require.ErrorIs(t, err, forksyncerrors.ErrLockHeld)
		require.Contains(t, err.Error(), "42")
	})

	t.Run("matching survives wrapping", func(t *testing.T) {
		err := fmt.Errorf("sync failed: %w", forksyncerrors.NewMergeConflictError("a", "b", nil))
		require.ErrorIs(t, err, forksyncerrors.ErrMergeConflict)
	})

	t.Run("git command error includes stderr and unwraps", func(t *testing.T) {
		cause := fmt.Errorf("exit status 128")
		err := forksyncerrors.NewGitCommandError("git", []string{"merge", "x"}, "", "fatal: not possible", cause)
		require.Contains(t, err.Error(), "fatal: not possible")
		require.ErrorIs(t, err, cause)
	})
}
