package doctor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"forksync.dev/forksync/internal/actions/doctor"
	"forksync.dev/forksync/internal/actions/sync"
	forksyncerrors "forksync.dev/forksync/internal/errors"
	"forksync.dev/forksync/testhelpers"
)

func TestDoctorAction(t *testing.T) {
	t.Run("healthy pipeline passes", func(t *testing.T) {
		scene := testhelpers.NewPipelineScene(t)
		ctx := scene.Context(t)

		require.NoError(t, doctor.Action(ctx, doctor.Options{}))
	})

	t.Run("missing role branch is an error", func(t *testing.T) {
		scene := testhelpers.NewPipelineScene(t)
		require.NoError(t, scene.Repo.DeleteBranch("production"))
		ctx := scene.Context(t)

		err := doctor.Action(ctx, doctor.Options{})
		require.Error(t, err)
		require.Contains(t, err.Error(), "error(s)")
	})

	t.Run("missing remote is an error", func(t *testing.T) {
		scene := testhelpers.NewPipelineScene(t)
		require.NoError(t, scene.Repo.RunGitCommand("remote", "remove", "upstream"))
		ctx := scene.Context(t)

		err := doctor.Action(ctx, doctor.Options{})
		require.Error(t, err)
	})

	t.Run("dirty workspace is only a warning", func(t *testing.T) {
		scene := testhelpers.NewPipelineScene(t)
		require.NoError(t, scene.Repo.WriteFile("README.md", "modified\n"))
		ctx := scene.Context(t)

		require.NoError(t, doctor.Action(ctx, doctor.Options{}))
	})

	t.Run("mirror with local commits is an error", func(t *testing.T) {
		scene := testhelpers.NewPipelineScene(t)
		require.NoError(t, scene.AddLocalCommit("upstream-mirror", "rogue.txt", "rogue\n", "Rogue mirror commit"))
		ctx := scene.Context(t)

		err := doctor.Action(ctx, doctor.Options{})
		require.Error(t, err)
	})

	t.Run("halted merge is only a warning", func(t *testing.T) {
		scene := testhelpers.NewPipelineScene(t)
		require.NoError(t, scene.AddLocalCommit("integration", "app.conf", "local setting\n", "Local config"))
		require.NoError(t, scene.AddUpstreamCommit("app.conf", "upstream setting\n", "Upstream config"))

		ctx := scene.Context(t)
		ctx.Shell = testhelpers.NewFakeShell()
		err := sync.Action(ctx, sync.Options{Auto: true})
		require.ErrorIs(t, err, forksyncerrors.ErrMergeConflict)

		require.NoError(t, doctor.Action(ctx, doctor.Options{}))
	})

	t.Run("unknown protected path is only a warning", func(t *testing.T) {
		scene := testhelpers.NewPipelineScene(t)
		require.NoError(t, scene.Repo.WriteFile(".forksync-protected", "config/missing.yaml\n"))
		ctx := scene.Context(t)

		require.NoError(t, doctor.Action(ctx, doctor.Options{}))
	})
}
