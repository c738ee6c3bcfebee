package testhelpers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"forksync.dev/forksync/internal/git"
	"forksync.dev/forksync/internal/runtime"
)

// Scene represents a test scene with a temporary directory and Git repository.
type Scene struct {
	Dir    string
	Repo   *GitRepo
	oldDir string
}

// SceneSetup is a function type for setting up a scene.
type SceneSetup func(*Scene) error

// NewScene creates a new test scene with a temporary directory and Git repository.
// It automatically handles cleanup using t.Cleanup().
func NewScene(t *testing.T, setup SceneSetup) *Scene {
	tmpDir, err := os.MkdirTemp("", "forksync-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}

	repo, err := NewGitRepo(tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create Git repo: %v", err)
	}

	scene := &Scene{
		Dir:    tmpDir,
		Repo:   repo,
		oldDir: oldDir,
	}

	if err := os.Chdir(tmpDir); err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to change directory: %v", err)
	}
	git.SetWorkingDir(tmpDir)

	// Prompts must never block a test run
	t.Setenv("FORKSYNC_TEST_NO_INTERACTIVE", "1")

	if setup != nil {
		if err := setup(scene); err != nil {
			os.Chdir(oldDir)
			os.RemoveAll(tmpDir)
			t.Fatalf("Setup failed: %v", err)
		}
	}

	t.Cleanup(func() {
		os.Chdir(oldDir)
		git.SetWorkingDir("")
		if os.Getenv("DEBUG") == "" {
			os.RemoveAll(tmpDir)
		}
	})

	return scene
}

// BasicSceneSetup is a setup function that creates a basic scene with a single commit.
func BasicSceneSetup(scene *Scene) error {
	return scene.Repo.CreateChangeAndCommit("1", "1")
}

// PipelineScene models the full fork topology: an upstream repository, a
// bare origin remote, and a fork clone with the mirror, integration, and
// production branches all starting at the upstream tip.
type PipelineScene struct {
	Dir        string
	Upstream   *GitRepo
	Repo       *GitRepo
	OriginPath string
	oldDir     string
}

// NewPipelineScene builds the fork topology in a temporary directory and
// leaves the working directory inside the fork clone.
func NewPipelineScene(t *testing.T) *PipelineScene {
	tmpDir, err := os.MkdirTemp("", "forksync-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	oldDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get current directory: %v", err)
	}

	fatal := func(format string, args ...interface{}) {
		os.Chdir(oldDir)
		os.RemoveAll(tmpDir)
		t.Fatalf(format, args...)
	}

	upstream, err := NewGitRepo(filepath.Join(tmpDir, "upstream"))
	if err != nil {
		fatal("Failed to create upstream repo: %v", err)
	}
	if err := upstream.CommitFile("README.md", "upstream base\n", "Initial commit"); err != nil {
		fatal("Failed to seed upstream: %v", err)
	}

	fork, err := NewClonedGitRepo(filepath.Join(tmpDir, "fork"), upstream.Dir)
	if err != nil {
		fatal("Failed to clone fork: %v", err)
	}

	// The clone's origin points at the upstream working repo; rename it and
	// add a bare origin the fork can push to.
	if err := fork.RunGitCommand("remote", "rename", "origin", "upstream"); err != nil {
		fatal("Failed to rename remote: %v", err)
	}
	originPath, err := fork.CreateBareRemote("origin")
	if err != nil {
		fatal("Failed to create origin: %v", err)
	}

	for _, branch := range []string{"upstream-mirror", "integration", "production"} {
		if err := fork.CreateBranch(branch); err != nil {
			fatal("Failed to create branch %s: %v", branch, err)
		}
		if err := fork.PushBranch("origin", branch); err != nil {
			fatal("Failed to push branch %s: %v", branch, err)
		}
	}
	if err := fork.Fetch("upstream"); err != nil {
		fatal("Failed to fetch upstream: %v", err)
	}

	scene := &PipelineScene{
		Dir:        tmpDir,
		Upstream:   upstream,
		Repo:       fork,
		OriginPath: originPath,
		oldDir:     oldDir,
	}

	if err := os.Chdir(fork.Dir); err != nil {
		fatal("Failed to change directory: %v", err)
	}
	git.SetWorkingDir(fork.Dir)

	t.Setenv("FORKSYNC_TEST_NO_INTERACTIVE", "1")

	t.Cleanup(func() {
		os.Chdir(oldDir)
		git.SetWorkingDir("")
		if os.Getenv("DEBUG") == "" {
			os.RemoveAll(tmpDir)
		}
	})

	return scene
}

// Context builds a runtime context rooted at the fork clone.
func (s *PipelineScene) Context(t *testing.T) *runtime.Context {
	ctx, err := runtime.GetContext(context.Background())
	if err != nil {
		t.Fatalf("Failed to build runtime context: %v", err)
	}
	return ctx
}

// AddUpstreamCommit commits a file change in the upstream repository.
func (s *PipelineScene) AddUpstreamCommit(name, contents, message string) error {
	return s.Upstream.CommitFile(name, contents, message)
}

// AddLocalCommit commits a file change on a fork branch and returns to the
// previously checked out branch.
func (s *PipelineScene) AddLocalCommit(branch, name, contents, message string) error {
	current, err := s.Repo.CurrentBranchName()
	if err != nil {
		return err
	}
	if err := s.Repo.CheckoutBranch(branch); err != nil {
		return err
	}
	if err := s.Repo.CommitFile(name, contents, message); err != nil {
		return err
	}
	return s.Repo.CheckoutBranch(current)
}
