package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	forksyncerrors "forksync.dev/forksync/internal/errors"
)

// ListRemotes returns the configured remote names.
func ListRemotes() ([]string, error) {
	return RunGitCommandLines("remote")
}

// HasRemote reports whether a remote with the given name is configured.
func HasRemote(remote string) (bool, error) {
	remotes, err := ListRemotes()
	if err != nil {
		return false, err
	}
	for _, r := range remotes {
		if strings.TrimSpace(r) == remote {
			return true, nil
		}
	}
	return false, nil
}

// FetchRemote fetches a remote, including tags.
func FetchRemote(ctx context.Context, remote string) error {
	_, err := RunGitCommandWithContext(ctx, "fetch", "--tags", remote)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", remote, err)
	}
	return nil
}

// PushBranch pushes a branch to remote with optional force
// If forceWithLease is true, uses --force-with-lease (safer)
// If force is true, uses --force (overwrites remote)
// If both are false, does a normal push
func PushBranch(ctx context.Context, branchName, remote string, force, forceWithLease bool) error {
	args := []string{"push", "-u", remote}

	if force {
		args = append(args, "--force")
	} else if forceWithLease {
		args = append(args, "--force-with-lease")
	}

	args = append(args, branchName)

	_, err := RunGitCommandWithContext(ctx, args...)
	if err != nil {
		if isStaleInfo(err) {
			return forksyncerrors.NewPushRejectedError(branchName, remote, err)
		}
		return fmt.Errorf("failed to push branch %s: %w", branchName, err)
	}
	return nil
}

// PushTag pushes a single tag to a remote.
func PushTag(ctx context.Context, tagName, remote string) error {
	_, err := RunGitCommandWithContext(ctx, "push", remote, "refs/tags/"+tagName)
	if err != nil {
		return fmt.Errorf("failed to push tag %s: %w", tagName, err)
	}
	return nil
}

// isStaleInfo detects a --force-with-lease rejection in a git error.
func isStaleInfo(err error) bool {
	var gitErr *forksyncerrors.GitCommandError
	if !errors.As(err, &gitErr) {
		return false
	}
	combined := gitErr.Stderr + gitErr.Stdout
	return strings.Contains(combined, "stale info") || strings.Contains(combined, "[rejected]")
}
