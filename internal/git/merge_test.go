package git_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"forksync.dev/forksync/internal/git"
	"forksync.dev/forksync/testhelpers"
)

func TestMergeNoFastForward(t *testing.T) {
	t.Run("creates a two-parent merge commit", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		ctx := context.Background()

		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CommitFile("feature.txt", "feature\n", "feature change"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CommitFile("main.txt", "main\n", "main change"))

		result, err := git.MergeNoFastForward(ctx, "feature", "Merge feature into main")
		require.NoError(t, err)
		require.Equal(t, git.MergeDone, result)

		parents, err := git.GetCommitParents("HEAD")
		require.NoError(t, err)
		require.Len(t, parents, 2)
	})

	t.Run("fast-forwardable history still gets a merge commit", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		ctx := context.Background()

		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CommitFile("feature.txt", "feature\n", "feature change"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))

		result, err := git.MergeNoFastForward(ctx, "feature", "Merge feature into main")
		require.NoError(t, err)
		require.Equal(t, git.MergeDone, result)

		parents, err := git.GetCommitParents("HEAD")
		require.NoError(t, err)
		require.Len(t, parents, 2)
	})

	t.Run("nothing to merge", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		ctx := context.Background()

		require.NoError(t, scene.Repo.CreateBranch("feature"))

		result, err := git.MergeNoFastForward(ctx, "feature", "Merge feature into main")
		require.NoError(t, err)
		require.Equal(t, git.MergeUnneeded, result)
	})

	t.Run("conflict leaves the merge in progress", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		ctx := context.Background()

		require.NoError(t, scene.Repo.CommitFile("shared.txt", "base\n", "base"))
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CommitFile("shared.txt", "feature side\n", "feature edit"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CommitFile("shared.txt", "main side\n", "main edit"))

		result, err := git.MergeNoFastForward(ctx, "feature", "Merge feature into main")
		require.NoError(t, err)
		require.Equal(t, git.MergeConflict, result)
		require.True(t, git.IsMergeInProgress(ctx))

		files, err := git.GetUnmergedFiles(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{"shared.txt"}, files)

		require.NoError(t, git.MergeAbort(ctx))
		require.False(t, git.IsMergeInProgress(ctx))
	})
}

func TestConflictResolutionHelpers(t *testing.T) {
	setupConflict := func(t *testing.T) *testhelpers.Scene {
		t.Helper()
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		ctx := context.Background()

		require.NoError(t, scene.Repo.CommitFile("shared.txt", "base\n", "base"))
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CommitFile("shared.txt", "feature side\n", "feature edit"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CommitFile("shared.txt", "main side\n", "main edit"))

		result, err := git.MergeNoFastForward(ctx, "feature", "Merge feature into main")
		require.NoError(t, err)
		require.Equal(t, git.MergeConflict, result)
		return scene
	}

	t.Run("checkout ours restores the local bytes", func(t *testing.T) {
		scene := setupConflict(t)
		ctx := context.Background()

		require.NoError(t, git.CheckoutOurs(ctx, "shared.txt"))
		testhelpers.ExpectFileContent(t, scene.Repo, "shared.txt", "main side\n")

		files, err := git.GetUnmergedFiles(ctx)
		require.NoError(t, err)
		require.Empty(t, files)
	})

	t.Run("checkout theirs restores the incoming bytes", func(t *testing.T) {
		scene := setupConflict(t)
		ctx := context.Background()

		require.NoError(t, git.CheckoutTheirs(ctx, "shared.txt"))
		testhelpers.ExpectFileContent(t, scene.Repo, "shared.txt", "feature side\n")
	})

	t.Run("merge continue commits once conflicts are staged", func(t *testing.T) {
		setupConflict(t)
		ctx := context.Background()

		require.NoError(t, git.CheckoutOurs(ctx, "shared.txt"))
		require.NoError(t, git.MergeContinue(ctx))
		require.False(t, git.IsMergeInProgress(ctx))

		parents, err := git.GetCommitParents("HEAD")
		require.NoError(t, err)
		require.Len(t, parents, 2)
	})

	t.Run("conflict marker scan", func(t *testing.T) {
		scene := setupConflict(t)

		hasMarkers, err := git.HasConflictMarkers(scene.Dir + "/shared.txt")
		require.NoError(t, err)
		require.True(t, hasMarkers)

		require.NoError(t, scene.Repo.WriteFile("shared.txt", "resolved\n"))
		hasMarkers, err = git.HasConflictMarkers(scene.Dir + "/shared.txt")
		require.NoError(t, err)
		require.False(t, hasMarkers)
	})

	t.Run("setext underline is not a conflict marker", func(t *testing.T) {
		scene := setupConflict(t)

		// A hand-resolved markdown file with a ======= heading underline
		// must be accepted
		require.NoError(t, scene.Repo.WriteFile("shared.txt", "Heading\n=======\n\nresolved body\n"))
		hasMarkers, err := git.HasConflictMarkers(scene.Dir + "/shared.txt")
		require.NoError(t, err)
		require.False(t, hasMarkers)
	})
}
