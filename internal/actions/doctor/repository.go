package doctor

import (
	"fmt"

	"forksync.dev/forksync/internal/git"
	"forksync.dev/forksync/internal/runtime"
)

// checkRepository performs repository-related checks: remotes, role
// branches, and working tree state.
func checkRepository(ctx *runtime.Context, warnings []string, errors []string) ([]string, []string) {
	splog := ctx.Splog
	cfg := ctx.Config

	if ctx.RepoRoot == "" {
		errors = append(errors, "not in a git repository")
		splog.Error("  not in a git repository")
		return warnings, errors
	}
	splog.Info("  ✅ Current directory is a git repository")

	for _, remote := range []string{cfg.UpstreamRemote, cfg.OriginRemote} {
		has, err := git.HasRemote(remote)
		if err != nil {
			errors = append(errors, fmt.Sprintf("failed to list remotes: %v", err))
			splog.Error("  failed to list remotes: %v", err)
			return warnings, errors
		}
		if !has {
			errors = append(errors, fmt.Sprintf("remote '%s' is not configured", remote))
			splog.Error("  remote '%s' is not configured", remote)
		} else {
			splog.Info("  ✅ Remote '%s' is configured", remote)
		}
	}

	for _, branch := range []string{cfg.MirrorBranch, cfg.IntegrationBranch, cfg.ProductionBranch} {
		exists, err := git.BranchExists(branch)
		if err != nil {
			errors = append(errors, fmt.Sprintf("failed to check branch '%s': %v", branch, err))
			splog.Error("  failed to check branch '%s': %v", branch, err)
			continue
		}
		if !exists {
			errors = append(errors, fmt.Sprintf("branch '%s' does not exist", branch))
			splog.Error("  branch '%s' does not exist", branch)
		} else {
			splog.Info("  ✅ Branch '%s' exists", branch)
		}
	}

	dirty, err := git.IsWorkspaceDirty()
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to check workspace state: %v", err))
		splog.Error("  failed to check workspace state: %v", err)
	} else if dirty {
		warnings = append(warnings, "workspace has uncommitted changes; sync will refuse to run")
		splog.Warn("  workspace has uncommitted changes")
	} else {
		splog.Info("  ✅ Workspace is clean")
	}

	if git.IsMergeInProgress(ctx.Context) {
		warnings = append(warnings, "a merge is in progress (run 'forksync resolve-conflicts')")
		splog.Warn("  a merge is in progress")
	} else {
		splog.Info("  ✅ No merge in progress")
	}

	return warnings, errors
}
