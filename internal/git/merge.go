package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	forksyncerrors "forksync.dev/forksync/internal/errors"
)

// MergeResult represents the result of a merge operation
type MergeResult int

const (
	// MergeDone indicates the merge completed
	MergeDone MergeResult = iota
	// MergeUnneeded indicates there was nothing to merge
	MergeUnneeded
	// MergeConflict indicates the merge stopped on conflicts
	MergeConflict
)

// MergeFastForwardOnly fast-forwards the current branch to the given ref.
// Fails if the branch cannot be fast-forwarded.
func MergeFastForwardOnly(ctx context.Context, ref string) error {
	_, err := RunGitCommandWithContext(ctx, "merge", "--ff-only", ref)
	if err != nil {
		return fmt.Errorf("cannot fast-forward to %s: %w", ref, err)
	}
	return nil
}

// MergeNoFastForward merges ref into the current branch, always creating a
// merge commit. On conflict the merge is left in progress and MergeConflict
// is returned with a nil error; the conflicting paths are in the working tree.
func MergeNoFastForward(ctx context.Context, ref, message string) (MergeResult, error) {
	before, err := RunGitCommandWithContext(ctx, "rev-parse", "HEAD")
	if err != nil {
		return MergeConflict, err
	}

	_, err = RunGitCommandWithContext(ctx, "merge", "--no-ff", "--no-edit", "-m", message, ref)
	if err != nil {
		if IsMergeInProgress(ctx) {
			return MergeConflict, nil
		}
		var gitErr *forksyncerrors.GitCommandError
		if errors.As(err, &gitErr) && strings.Contains(gitErr.Stdout, "Already up to date") {
			return MergeUnneeded, nil
		}
		return MergeConflict, fmt.Errorf("merge of %s failed: %w", ref, err)
	}

	after, err := RunGitCommandWithContext(ctx, "rev-parse", "HEAD")
	if err != nil {
		return MergeDone, err
	}
	if before == after {
		return MergeUnneeded, nil
	}
	return MergeDone, nil
}

// MergeContinue commits an in-progress merge once all conflicts are staged.
func MergeContinue(ctx context.Context) error {
	_, err := RunGitCommandWithContext(ctx, "-c", "core.editor=true", "merge", "--continue")
	if err != nil {
		return fmt.Errorf("merge continue failed: %w", err)
	}
	return nil
}

// MergeAbort aborts an in-progress merge
func MergeAbort(ctx context.Context) error {
	_, err := RunGitCommandWithContext(ctx, "merge", "--abort")
	if err != nil {
		return fmt.Errorf("merge abort failed: %w", err)
	}
	return nil
}

// IsMergeInProgress checks if a merge is currently in progress
func IsMergeInProgress(ctx context.Context) bool {
	gitDir, err := RunGitCommandWithContext(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return false
	}
	_, err = os.Stat(filepath.Join(gitDir, "MERGE_HEAD"))
	return err == nil
}

// GetUnmergedFiles returns the paths with unresolved conflicts in the
// current merge, sorted as git reports them.
func GetUnmergedFiles(ctx context.Context) ([]string, error) {
	output, err := RunGitCommandWithContext(ctx, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, fmt.Errorf("failed to list unmerged files: %w", err)
	}
	if output == "" {
		return []string{}, nil
	}
	return strings.Split(output, "\n"), nil
}

// CheckoutOurs restores a conflicted path to the local (pre-merge) side and
// stages it.
func CheckoutOurs(ctx context.Context, path string) error {
	if _, err := RunGitCommandWithContext(ctx, "checkout", "--ours", "--", path); err != nil {
		return fmt.Errorf("failed to keep local version of %s: %w", path, err)
	}
	return stagePath(ctx, path)
}

// CheckoutTheirs restores a conflicted path to the incoming side and stages it.
func CheckoutTheirs(ctx context.Context, path string) error {
	if _, err := RunGitCommandWithContext(ctx, "checkout", "--theirs", "--", path); err != nil {
		return fmt.Errorf("failed to keep incoming version of %s: %w", path, err)
	}
	return stagePath(ctx, path)
}

// StagePath stages a single path.
func StagePath(ctx context.Context, path string) error {
	return stagePath(ctx, path)
}

func stagePath(ctx context.Context, path string) error {
	if _, err := RunGitCommandWithContext(ctx, "add", "--", path); err != nil {
		return fmt.Errorf("failed to stage %s: %w", path, err)
	}
	return nil
}

// HasConflictMarkers reports whether a working-tree file still contains
// conflict markers. Only the labeled ours/theirs/base markers git writes
// count; a bare ======= line is legitimate content (a markdown setext
// underline, for one) and is never flagged on its own.
func HasConflictMarkers(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, "<<<<<<< ") ||
			strings.HasPrefix(line, ">>>>>>> ") ||
			strings.HasPrefix(line, "||||||| ") {
			return true, nil
		}
	}
	return false, nil
}

// ShowConflictDiff returns the combined diff for a conflicted path.
func ShowConflictDiff(ctx context.Context, path string) (string, error) {
	output, err := RunGitCommandRawWithContext(ctx, "diff", "--", path)
	if err != nil {
		return "", fmt.Errorf("failed to diff %s: %w", path, err)
	}
	return output, nil
}
