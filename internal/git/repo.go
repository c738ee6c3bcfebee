package git

import (
	"fmt"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// goGitMu synchronizes go-git operations to prevent concurrent packfile access
var goGitMu sync.Mutex

var defaultRepo *gogit.Repository

// InitDefaultRepo opens the repository containing the runner's working
// directory and caches it for the package-level read operations.
func InitDefaultRepo() error {
	if defaultRepo != nil {
		return nil // Already initialized
	}

	root, err := GetRepoRoot()
	if err != nil {
		return err
	}

	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	defaultRepo = repo
	return nil
}

// GetDefaultRepo returns the default repository (must call InitDefaultRepo first)
func GetDefaultRepo() (*gogit.Repository, error) {
	if defaultRepo == nil {
		if err := InitDefaultRepo(); err != nil {
			return nil, err
		}
	}
	return defaultRepo, nil
}

func resetDefaultRepo() {
	defaultRepo = nil
}

// GetRepoRoot returns the root directory of the git repository
func GetRepoRoot() (string, error) {
	root, err := RunGitCommand("rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return root, nil
}

// GetGitDir returns the .git directory of the repository
func GetGitDir() (string, error) {
	dir, err := RunGitCommand("rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", fmt.Errorf("failed to locate git dir: %w", err)
	}
	return dir, nil
}

// resolveRefHash resolves a ref (branch name, SHA, tag, or ref path) to a hash
func resolveRefHash(repo *gogit.Repository, ref string) (plumbing.Hash, error) {
	goGitMu.Lock()
	defer goGitMu.Unlock()

	// 1. Try as a full reference name
	if r, err := repo.Reference(plumbing.ReferenceName(ref), true); err == nil {
		return r.Hash(), nil
	}

	// 2. Try as a local branch
	if r, err := repo.Reference(plumbing.ReferenceName("refs/heads/"+ref), true); err == nil {
		return r.Hash(), nil
	}

	// 3. Try as a remote branch
	if r, err := repo.Reference(plumbing.ReferenceName("refs/remotes/"+ref), true); err == nil {
		return r.Hash(), nil
	}

	// 4. Try as a tag
	if r, err := repo.Reference(plumbing.ReferenceName("refs/tags/"+ref), true); err == nil {
		return r.Hash(), nil
	}

	// 5. Try ResolveRevision (handles SHAs, short SHAs, and expressions like HEAD~1)
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err == nil {
		return *hash, nil
	}

	return plumbing.ZeroHash, fmt.Errorf("failed to resolve ref %s: reference not found", ref)
}
