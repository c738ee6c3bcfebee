// Package lock implements the per-repository sync lease. Two overlapping
// pipeline invocations race on the same branch refs, so a session acquires
// the lease before any mutation and releases it on exit. The lease is a file
// in the .git directory with owner and expiry; it does not coordinate across
// machines.
package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	forksyncerrors "forksync.dev/forksync/internal/errors"
)

// LeaseFileName is the lease file inside the .git directory.
const LeaseFileName = "forksync.lock"

// DefaultLeaseDuration bounds how long an abandoned lease blocks other
// sessions.
const DefaultLeaseDuration = 30 * time.Minute

// Lease records the owner of an in-progress sync session.
type Lease struct {
	Owner      string    `json:"owner"`
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquiredAt"`
	ExpiresAt  time.Time `json:"expiresAt"`

	path string
}

// Acquire takes the sync lease for this process. It fails fast with
// ErrLockHeld if another session holds an unexpired lease.
func Acquire(gitDir string) (*Lease, error) {
	return acquire(gitDir, DefaultLeaseDuration, time.Now())
}

// acquire creates the lease file exclusively so two racing sessions cannot
// both pass the liveness check. A provably dead lease (expired, unreadable,
// or left by this same process) is removed and the create retried once.
func acquire(gitDir string, duration time.Duration, now time.Time) (*Lease, error) {
	path := filepath.Join(gitDir, LeaseFileName)

	for attempt := 0; attempt < 2; attempt++ {
		lease, err := writeExclusive(path, duration, now)
		if err == nil {
			return lease, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}

		existing, readErr := read(path)
		if readErr == nil && now.Before(existing.ExpiresAt) && existing.PID != os.Getpid() {
			return nil, &forksyncerrors.LockHeldError{Owner: existing.Owner, PID: existing.PID}
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lease: %w", err)
		}
	}

	// Lost the re-create race to another session.
	existing, err := read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lease at %s", path)
	}
	return nil, &forksyncerrors.LockHeldError{Owner: existing.Owner, PID: existing.PID}
}

func writeExclusive(path string, duration time.Duration, now time.Time) (*Lease, error) {
	hostname, _ := os.Hostname()
	lease := &Lease{
		Owner:      hostname,
		PID:        os.Getpid(),
		AcquiredAt: now,
		ExpiresAt:  now.Add(duration),
		path:       path,
	}

	data, err := json.MarshalIndent(lease, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lease: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write lease: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to write lease: %w", err)
	}
	return lease, nil
}

// Release removes the lease file. Safe to call more than once.
func (l *Lease) Release() error {
	if l == nil || l.path == "" {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to release lease: %w", err)
	}
	return nil
}

// Current returns the lease currently on disk, or nil if none exists.
func Current(gitDir string) (*Lease, error) {
	lease, err := read(filepath.Join(gitDir, LeaseFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return lease, nil
}

func read(path string) (*Lease, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lease Lease
	if err := json.Unmarshal(data, &lease); err != nil {
		return nil, fmt.Errorf("failed to parse lease: %w", err)
	}
	lease.path = path
	return &lease, nil
}
