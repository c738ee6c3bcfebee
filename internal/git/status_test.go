package git_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"forksync.dev/forksync/internal/git"
	"forksync.dev/forksync/testhelpers"
)

func TestIsWorkspaceDirty(t *testing.T) {
	t.Run("clean workspace", func(t *testing.T) {
		testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

		dirty, err := git.IsWorkspaceDirty()
		require.NoError(t, err)
		require.False(t, dirty)
	})

	t.Run("unstaged change to tracked file", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateChange("modified", "1", true))

		dirty, err := git.IsWorkspaceDirty()
		require.NoError(t, err)
		require.True(t, dirty)
	})

	t.Run("staged change", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateChange("staged", "1", false))

		dirty, err := git.IsWorkspaceDirty()
		require.NoError(t, err)
		require.True(t, dirty)
	})

	t.Run("untracked files do not count", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.WriteFile("untracked.txt", "new"))

		dirty, err := git.IsWorkspaceDirty()
		require.NoError(t, err)
		require.False(t, dirty)

		untracked, err := git.HasUntrackedFiles()
		require.NoError(t, err)
		require.True(t, untracked)
	})
}
