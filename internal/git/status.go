package git

import (
	"fmt"
	"strings"
)

// HasUnstagedChanges checks if there are unstaged changes to tracked files
func HasUnstagedChanges() (bool, error) {
	output, err := RunGitCommand("diff", "--name-only")
	if err != nil {
		return false, fmt.Errorf("failed to check unstaged changes: %w", err)
	}
	return strings.TrimSpace(output) != "", nil
}

// HasStagedChanges checks if there are staged changes
func HasStagedChanges() (bool, error) {
	output, err := RunGitCommand("diff", "--cached", "--shortstat")
	if err != nil {
		return false, fmt.Errorf("failed to check staged changes: %w", err)
	}
	return strings.TrimSpace(output) != "", nil
}

// HasUntrackedFiles checks if there are untracked files
func HasUntrackedFiles() (bool, error) {
	output, err := RunGitCommand("ls-files", "--others", "--exclude-standard")
	if err != nil {
		return false, fmt.Errorf("failed to check untracked files: %w", err)
	}
	return strings.TrimSpace(output) != "", nil
}

// IsWorkspaceDirty reports whether the workspace has staged or unstaged
// changes to tracked files. Untracked files do not count as dirty: they
// cannot be clobbered by ref updates.
func IsWorkspaceDirty() (bool, error) {
	unstaged, err := HasUnstagedChanges()
	if err != nil {
		return false, err
	}
	if unstaged {
		return true, nil
	}
	return HasStagedChanges()
}
