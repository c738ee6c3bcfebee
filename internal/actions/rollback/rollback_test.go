package rollback_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"forksync.dev/forksync/internal/actions/rollback"
	"forksync.dev/forksync/internal/actions/sync"
	"forksync.dev/forksync/internal/backup"
	forksyncerrors "forksync.dev/forksync/internal/errors"
	"forksync.dev/forksync/testhelpers"
)

func confirmYes(string, bool) (bool, error) { return true, nil }

// promotedScene runs a full auto sync so that backup tags and an advanced
// production branch exist.
func promotedScene(t *testing.T) *testhelpers.PipelineScene {
	t.Helper()
	scene := testhelpers.NewPipelineScene(t)
	require.NoError(t, scene.AddLocalCommit("integration", "local.txt", "local change\n", "Local modification"))
	require.NoError(t, scene.AddUpstreamCommit("a.txt", "a\n", "Upstream a"))

	ctx := scene.Context(t)
	ctx.Shell = testhelpers.NewFakeShell()
	require.NoError(t, sync.Action(ctx, sync.Options{Auto: true}))
	return scene
}

func TestRollbackAction(t *testing.T) {
	t.Run("restores the tagged branch and saves an emergency snapshot", func(t *testing.T) {
		scene := promotedScene(t)
		ctx := scene.Context(t)

		tags, err := scene.Repo.ListTags("backup/production-*")
		require.NoError(t, err)
		require.Len(t, tags, 1)
		taggedSHA, err := scene.Repo.GetRevision(tags[0] + "^{commit}")
		require.NoError(t, err)

		promotedSHA, err := scene.Repo.GetRevision("production")
		require.NoError(t, err)
		require.NotEqual(t, taggedSHA, promotedSHA)

		err = rollback.Action(ctx, rollback.Options{
			TagName: tags[0],
			Confirm: confirmYes,
		})
		require.NoError(t, err)

		// The branch is back at the tagged commit, locally and on origin
		restoredSHA, err := scene.Repo.GetRevision("production")
		require.NoError(t, err)
		require.Equal(t, taggedSHA, restoredSHA)
		originProduction, err := scene.Repo.RunGitCommandAndGetOutput("ls-remote", scene.OriginPath, "refs/heads/production")
		require.NoError(t, err)
		require.Contains(t, originProduction, taggedSHA)

		// The pre-rollback tip stays reachable through the emergency tag
		emergency, err := scene.Repo.ListTags("emergency/production-*")
		require.NoError(t, err)
		require.Len(t, emergency, 1)
		savedSHA, err := scene.Repo.GetRevision(emergency[0] + "^{commit}")
		require.NoError(t, err)
		require.Equal(t, promotedSHA, savedSHA)

		// The snapshot is published too
		originTags, err := scene.Repo.RunGitCommandAndGetOutput("ls-remote", "--tags", scene.OriginPath)
		require.NoError(t, err)
		require.Contains(t, originTags, "refs/tags/"+emergency[0])
	})

	t.Run("rollback of a rollback restores the original state", func(t *testing.T) {
		scene := promotedScene(t)
		ctx := scene.Context(t)

		promotedSHA, err := scene.Repo.GetRevision("production")
		require.NoError(t, err)

		tags, err := scene.Repo.ListTags("backup/production-*")
		require.NoError(t, err)
		require.NoError(t, rollback.Action(ctx, rollback.Options{TagName: tags[0], Confirm: confirmYes}))

		emergency, err := scene.Repo.ListTags("emergency/production-*")
		require.NoError(t, err)
		require.Len(t, emergency, 1)
		require.NoError(t, rollback.Action(ctx, rollback.Options{TagName: emergency[0], Confirm: confirmYes}))

		restoredSHA, err := scene.Repo.GetRevision("production")
		require.NoError(t, err)
		require.Equal(t, promotedSHA, restoredSHA)
	})

	t.Run("only the tagged branch moves", func(t *testing.T) {
		scene := promotedScene(t)
		ctx := scene.Context(t)

		integrationBefore, err := scene.Repo.GetRevision("integration")
		require.NoError(t, err)
		mirrorBefore, err := scene.Repo.GetRevision("upstream-mirror")
		require.NoError(t, err)

		tags, err := scene.Repo.ListTags("backup/production-*")
		require.NoError(t, err)
		require.NoError(t, rollback.Action(ctx, rollback.Options{TagName: tags[0], Confirm: confirmYes}))

		testhelpers.ExpectSameRevision(t, scene.Repo, "integration", integrationBefore)
		testhelpers.ExpectSameRevision(t, scene.Repo, "upstream-mirror", mirrorBefore)
	})

	t.Run("declined confirmation changes nothing", func(t *testing.T) {
		scene := promotedScene(t)
		ctx := scene.Context(t)

		productionBefore, err := scene.Repo.GetRevision("production")
		require.NoError(t, err)

		tags, err := scene.Repo.ListTags("backup/production-*")
		require.NoError(t, err)
		err = rollback.Action(ctx, rollback.Options{
			TagName: tags[0],
			Confirm: func(string, bool) (bool, error) { return false, nil },
		})
		require.NoError(t, err)

		testhelpers.ExpectSameRevision(t, scene.Repo, "production", productionBefore)
		testhelpers.ExpectTagCount(t, scene.Repo, "emergency/*", 0)
	})

	t.Run("unknown tag is rejected", func(t *testing.T) {
		scene := promotedScene(t)
		ctx := scene.Context(t)

		err := rollback.Action(ctx, rollback.Options{
			TagName: "backup/production-19700101-000000",
			Confirm: confirmYes,
		})
		require.ErrorIs(t, err, forksyncerrors.ErrBackupTagNotFound)
	})

	t.Run("no backups to choose from", func(t *testing.T) {
		scene := testhelpers.NewPipelineScene(t)
		ctx := scene.Context(t)

		err := rollback.Action(ctx, rollback.Options{Confirm: confirmYes})
		require.ErrorIs(t, err, forksyncerrors.ErrBackupTagNotFound)
	})

	t.Run("prompts for a tag when none is given", func(t *testing.T) {
		scene := promotedScene(t)
		ctx := scene.Context(t)

		tags, err := scene.Repo.ListTags("backup/production-*")
		require.NoError(t, err)

		var offered []backup.Tag
		err = rollback.Action(ctx, rollback.Options{
			Confirm: confirmYes,
			Select: func(candidates []backup.Tag) (string, error) {
				offered = candidates
				return tags[0], nil
			},
		})
		require.NoError(t, err)
		require.NotEmpty(t, offered)
	})
}

func TestEmergencyRollback(t *testing.T) {
	t.Run("resets every role branch", func(t *testing.T) {
		scene := promotedScene(t)
		ctx := scene.Context(t)

		integrationTags, err := scene.Repo.ListTags("backup/integration-*")
		require.NoError(t, err)
		require.Len(t, integrationTags, 1)
		integrationTagged, err := scene.Repo.GetRevision(integrationTags[0] + "^{commit}")
		require.NoError(t, err)
		productionTags, err := scene.Repo.ListTags("backup/production-*")
		require.NoError(t, err)
		productionTagged, err := scene.Repo.GetRevision(productionTags[0] + "^{commit}")
		require.NoError(t, err)

		err = rollback.Action(ctx, rollback.Options{
			Emergency: true,
			TagName:   productionTags[0],
			Confirm:   confirmYes,
		})
		require.NoError(t, err)

		// Roles snapshotted in the session restore their own tags
		restoredIntegration, err := scene.Repo.GetRevision("integration")
		require.NoError(t, err)
		require.Equal(t, integrationTagged, restoredIntegration)
		restoredProduction, err := scene.Repo.GetRevision("production")
		require.NoError(t, err)
		require.Equal(t, productionTagged, restoredProduction)

		// The fast-forwarded mirror has no session tag and falls back to
		// the chosen tag's commit; it must not keep its pre-rollback tip
		restoredMirror, err := scene.Repo.GetRevision("upstream-mirror")
		require.NoError(t, err)
		require.Equal(t, productionTagged, restoredMirror)

		// One emergency snapshot per reset branch
		testhelpers.ExpectTagCount(t, scene.Repo, "emergency/mirror-*", 1)
		testhelpers.ExpectTagCount(t, scene.Repo, "emergency/integration-*", 1)
		testhelpers.ExpectTagCount(t, scene.Repo, "emergency/production-*", 1)
	})

	t.Run("dirty workspace refuses to roll back", func(t *testing.T) {
		scene := promotedScene(t)
		require.NoError(t, scene.Repo.WriteFile("local.txt", "uncommitted\n"))
		ctx := scene.Context(t)

		tags, err := scene.Repo.ListTags("backup/production-*")
		require.NoError(t, err)
		err = rollback.Action(ctx, rollback.Options{TagName: tags[0], Confirm: confirmYes})
		require.ErrorIs(t, err, forksyncerrors.ErrDirtyWorkspace)
	})
}
