// Package runtime provides a context type that holds the configuration,
// logger, and runners for use throughout the application. This avoids
// passing multiple parameters.
package runtime

import (
	"context"
	"fmt"

	"forksync.dev/forksync/internal/config"
	forksyncerrors "forksync.dev/forksync/internal/errors"
	"forksync.dev/forksync/internal/git"
	"forksync.dev/forksync/internal/shell"
	"forksync.dev/forksync/internal/tui"
)

// Context provides access to configuration, output, and the external
// command runner for commands.
type Context struct {
	Context  context.Context
	Splog    *tui.Splog
	Config   *config.Config
	Shell    shell.Runner
	RepoRoot string
	GitDir   string
}

// GetContext builds the runtime context for a command. It verifies the
// working directory is inside a git repository and loads the repository
// configuration; it performs no mutation.
func GetContext(ctx context.Context) (*Context, error) {
	root, err := git.GetRepoRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: run forksync inside the fork repository", forksyncerrors.ErrNotARepository)
	}

	gitDir, err := git.GetGitDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(gitDir)
	if err != nil {
		return nil, err
	}

	return &Context{
		Context:  ctx,
		Splog:    tui.NewSplog(),
		Config:   cfg,
		Shell:    shell.NewExecRunner(root),
		RepoRoot: root,
		GitDir:   gitDir,
	}, nil
}
