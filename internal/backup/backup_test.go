package backup_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"forksync.dev/forksync/internal/backup"
	forksyncerrors "forksync.dev/forksync/internal/errors"
	"forksync.dev/forksync/testhelpers"
)

var sessionTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func TestCreate(t *testing.T) {
	t.Run("tag name embeds namespace, role, and timestamp", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		ctx := context.Background()

		sha, err := scene.Repo.GetRevision("main")
		require.NoError(t, err)

		tag, err := backup.Create(ctx, backup.RoleProduction, "main", sessionTime)
		require.NoError(t, err)
		require.Equal(t, "backup/production-20260301-100000", tag.Name)
		require.Equal(t, backup.RoleProduction, tag.Role)
		require.Equal(t, sha, tag.Commit)
		require.False(t, tag.IsEmergency())

		testhelpers.ExpectTags(t, scene.Repo, "backup/*", []string{"backup/production-20260301-100000"})
	})

	t.Run("emergency namespace", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		ctx := context.Background()

		tag, err := backup.CreateEmergency(ctx, backup.RoleMirror, "main", sessionTime)
		require.NoError(t, err)
		require.Equal(t, "emergency/mirror-20260301-100000", tag.Name)
		require.True(t, tag.IsEmergency())

		testhelpers.ExpectTagCount(t, scene.Repo, "backup/*", 0)
		testhelpers.ExpectTagCount(t, scene.Repo, "emergency/*", 1)
	})

	t.Run("tag survives the branch moving", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		ctx := context.Background()

		before, err := scene.Repo.GetRevision("main")
		require.NoError(t, err)

		tag, err := backup.Create(ctx, backup.RoleIntegration, "main", sessionTime)
		require.NoError(t, err)

		require.NoError(t, scene.Repo.CreateChangeAndCommit("2", "2"))

		resolved, err := backup.Resolve(tag.Name)
		require.NoError(t, err)
		require.Equal(t, before, resolved.Commit)
	})
}

func TestResolve(t *testing.T) {
	t.Run("unknown tag", func(t *testing.T) {
		testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

		_, err := backup.Resolve("backup/production-19700101-000000")
		require.ErrorIs(t, err, forksyncerrors.ErrBackupTagNotFound)
	})

	t.Run("role parsed from name", func(t *testing.T) {
		testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		ctx := context.Background()

		created, err := backup.Create(ctx, backup.RoleMirror, "main", sessionTime)
		require.NoError(t, err)

		resolved, err := backup.Resolve(created.Name)
		require.NoError(t, err)
		require.Equal(t, backup.RoleMirror, resolved.Role)
	})
}

func TestList(t *testing.T) {
	t.Run("includes both namespaces", func(t *testing.T) {
		testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		ctx := context.Background()

		_, err := backup.Create(ctx, backup.RoleMirror, "main", sessionTime)
		require.NoError(t, err)
		_, err = backup.CreateEmergency(ctx, backup.RoleProduction, "main", sessionTime.Add(time.Hour))
		require.NoError(t, err)

		tags, err := backup.List()
		require.NoError(t, err)
		require.Len(t, tags, 2)

		names := []string{tags[0].Name, tags[1].Name}
		require.Contains(t, names, "backup/mirror-20260301-100000")
		require.Contains(t, names, "emergency/production-20260301-110000")
	})

	t.Run("empty repository", func(t *testing.T) {
		testhelpers.NewScene(t, testhelpers.BasicSceneSetup)

		tags, err := backup.List()
		require.NoError(t, err)
		require.Empty(t, tags)
	})
}

func TestGroups(t *testing.T) {
	t.Run("group timestamp parsed from name", func(t *testing.T) {
		tag := &backup.Tag{Name: "backup/integration-20260301-100000"}
		require.Equal(t, "20260301-100000", tag.GroupTimestamp())
	})

	t.Run("members share namespace and timestamp", func(t *testing.T) {
		testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		ctx := context.Background()

		_, err := backup.Create(ctx, backup.RoleMirror, "main", sessionTime)
		require.NoError(t, err)
		_, err = backup.Create(ctx, backup.RoleIntegration, "main", sessionTime)
		require.NoError(t, err)
		created, err := backup.Create(ctx, backup.RoleProduction, "main", sessionTime)
		require.NoError(t, err)

		// A different session and a different namespace must not leak in
		_, err = backup.Create(ctx, backup.RoleMirror, "main", sessionTime.Add(time.Hour))
		require.NoError(t, err)
		_, err = backup.CreateEmergency(ctx, backup.RoleMirror, "main", sessionTime)
		require.NoError(t, err)

		members, err := created.GroupMembers()
		require.NoError(t, err)
		require.Len(t, members, 3)

		roles := map[backup.Role]bool{}
		for _, m := range members {
			require.Equal(t, "20260301-100000", m.GroupTimestamp())
			require.False(t, m.IsEmergency())
			roles[m.Role] = true
		}
		require.True(t, roles[backup.RoleMirror])
		require.True(t, roles[backup.RoleIntegration])
		require.True(t, roles[backup.RoleProduction])
	})
}
