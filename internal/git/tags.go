package git

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
)

// TagInfo describes a tag and the commit it points to.
type TagInfo struct {
	Name      string
	Commit    string
	CreatedAt time.Time
}

// CreateTag creates an annotated tag pointing at the given revision.
func CreateTag(ctx context.Context, name, revision, message string) error {
	_, err := RunGitCommandWithContext(ctx, "tag", "-a", name, "-m", message, revision)
	if err != nil {
		return fmt.Errorf("failed to create tag %s at %s: %w", name, revision, err)
	}
	return nil
}

// TagExists reports whether a tag with the given name exists.
func TagExists(name string) (bool, error) {
	repo, err := GetDefaultRepo()
	if err != nil {
		return false, err
	}

	goGitMu.Lock()
	defer goGitMu.Unlock()
	_, err = repo.Reference(plumbing.ReferenceName("refs/tags/"+name), true)
	if err == plumbing.ErrReferenceNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up tag %s: %w", name, err)
	}
	return true, nil
}

// GetTagCommit returns the commit SHA a tag points to, peeling annotated tags.
func GetTagCommit(name string) (string, error) {
	sha, err := RunGitCommand("rev-parse", name+"^{commit}")
	if err != nil {
		return "", fmt.Errorf("failed to resolve tag %s: %w", name, err)
	}
	return sha, nil
}

// ListTags returns tags matching a pattern, most recently created first.
func ListTags(pattern string) ([]TagInfo, error) {
	lines, err := RunGitCommandLines(
		"for-each-ref", "--sort=-creatordate",
		"--format=%(refname:short)\x1f%(creatordate:iso-strict)\x1f%(*objectname)%(objectname)",
		"refs/tags/"+pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	tags := make([]TagInfo, 0, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(line, "\x1f", 3)
		if len(parts) != 3 {
			continue
		}
		createdAt, _ := time.Parse(time.RFC3339, parts[1])
		commit := parts[2]
		// Annotated tags emit both the peeled and the tag object SHA
		if len(commit) > 40 {
			commit = commit[:40]
		}
		tags = append(tags, TagInfo{
			Name:      parts[0],
			Commit:    commit,
			CreatedAt: createdAt,
		})
	}
	return tags, nil
}
