package lock

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	forksyncerrors "forksync.dev/forksync/internal/errors"
)

func TestAcquire(t *testing.T) {
	t.Run("creates the lease file", func(t *testing.T) {
		dir := t.TempDir()

		lease, err := Acquire(dir)
		require.NoError(t, err)
		require.Equal(t, os.Getpid(), lease.PID)
		require.FileExists(t, filepath.Join(dir, LeaseFileName))

		require.NoError(t, lease.Release())
		require.NoFileExists(t, filepath.Join(dir, LeaseFileName))
	})

	t.Run("fails fast while another session holds the lease", func(t *testing.T) {
		dir := t.TempDir()
		now := time.Now()

		// Simulate a different live process owning the lease
		other := &Lease{
			Owner:      "other-host",
			PID:        os.Getpid() + 1,
			AcquiredAt: now,
			ExpiresAt:  now.Add(30 * time.Minute),
		}
		writeLease(t, dir, other)

		_, err := acquire(dir, DefaultLeaseDuration, now)
		require.ErrorIs(t, err, forksyncerrors.ErrLockHeld)

		var held *forksyncerrors.LockHeldError
		require.ErrorAs(t, err, &held)
		require.Equal(t, "other-host", held.Owner)
	})

	t.Run("replaces an expired lease", func(t *testing.T) {
		dir := t.TempDir()
		now := time.Now()

		stale := &Lease{
			Owner:      "dead-host",
			PID:        os.Getpid() + 1,
			AcquiredAt: now.Add(-2 * time.Hour),
			ExpiresAt:  now.Add(-90 * time.Minute),
		}
		writeLease(t, dir, stale)

		lease, err := acquire(dir, DefaultLeaseDuration, now)
		require.NoError(t, err)
		require.Equal(t, os.Getpid(), lease.PID)
	})

	t.Run("never clobbers a live lease", func(t *testing.T) {
		dir := t.TempDir()
		now := time.Now()

		other := &Lease{
			Owner:      "other-host",
			PID:        os.Getpid() + 1,
			AcquiredAt: now,
			ExpiresAt:  now.Add(30 * time.Minute),
		}
		writeLease(t, dir, other)
		before, err := os.ReadFile(filepath.Join(dir, LeaseFileName))
		require.NoError(t, err)

		_, err = acquire(dir, DefaultLeaseDuration, now)
		require.ErrorIs(t, err, forksyncerrors.ErrLockHeld)

		// The exclusive create must leave the holder's file untouched
		after, err := os.ReadFile(filepath.Join(dir, LeaseFileName))
		require.NoError(t, err)
		require.Equal(t, before, after)
	})

	t.Run("replaces an unreadable lease file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, LeaseFileName), []byte("not json"), 0600))

		lease, err := Acquire(dir)
		require.NoError(t, err)
		require.Equal(t, os.Getpid(), lease.PID)
	})

	t.Run("replaces its own stale lease", func(t *testing.T) {
		dir := t.TempDir()
		now := time.Now()

		own := &Lease{
			Owner:      "this-host",
			PID:        os.Getpid(),
			AcquiredAt: now,
			ExpiresAt:  now.Add(30 * time.Minute),
		}
		writeLease(t, dir, own)

		lease, err := acquire(dir, DefaultLeaseDuration, now)
		require.NoError(t, err)
		require.Equal(t, os.Getpid(), lease.PID)
	})
}

func TestCurrent(t *testing.T) {
	t.Run("nil when no lease exists", func(t *testing.T) {
		lease, err := Current(t.TempDir())
		require.NoError(t, err)
		require.Nil(t, lease)
	})

	t.Run("returns the lease on disk", func(t *testing.T) {
		dir := t.TempDir()
		acquired, err := Acquire(dir)
		require.NoError(t, err)

		current, err := Current(dir)
		require.NoError(t, err)
		require.NotNil(t, current)
		require.Equal(t, acquired.PID, current.PID)
	})
}

func TestRelease(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		dir := t.TempDir()
		lease, err := Acquire(dir)
		require.NoError(t, err)

		require.NoError(t, lease.Release())
		require.NoError(t, lease.Release())
	})

	t.Run("nil lease is a no-op", func(t *testing.T) {
		var lease *Lease
		require.NoError(t, lease.Release())
	})
}

func writeLease(t *testing.T, dir string, lease *Lease) {
	t.Helper()
	lease.path = filepath.Join(dir, LeaseFileName)
	data, err := json.Marshal(lease)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(lease.path, data, 0600))
}
