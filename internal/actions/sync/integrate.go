package sync

import (
	"fmt"

	"forksync.dev/forksync/internal/backup"
	forksyncerrors "forksync.dev/forksync/internal/errors"
	"forksync.dev/forksync/internal/git"
	"forksync.dev/forksync/internal/runtime"
	"forksync.dev/forksync/internal/tui/style"
)

// integrate merges the mirror branch into integration with an always-merge
// commit, preserving the history of both lines. Conflicts halt the session:
// they are never auto-resolved by a default strategy, because that risks
// silently discarding a custom change or an upstream fix.
func integrate(ctx *runtime.Context, session *Session) error {
	cfg := ctx.Config
	splog := ctx.Splog

	integrated, err := git.IsAncestor(cfg.MirrorBranch, cfg.IntegrationBranch)
	if err != nil {
		return err
	}
	if integrated {
		splog.Info("%s already contains %s.",
			style.ColorBranchName(cfg.IntegrationBranch), style.ColorBranchName(cfg.MirrorBranch))
		return nil
	}

	if err := git.CheckoutBranch(ctx.Context, cfg.IntegrationBranch); err != nil {
		return err
	}

	tag, err := backup.Create(ctx.Context, backup.RoleIntegration, cfg.IntegrationBranch, session.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to snapshot %s before merge: %w", cfg.IntegrationBranch, err)
	}
	session.RecordBackup(tag.Name)
	splog.Info("Pre-merge tip of %s saved as %s.",
		style.ColorBranchName(cfg.IntegrationBranch), style.ColorTagName(tag.Name))
	if err := git.PushTag(ctx.Context, tag.Name, cfg.OriginRemote); err != nil {
		splog.Warn("Failed to publish %s to %s: %v", tag.Name, cfg.OriginRemote, err)
	}

	message := fmt.Sprintf("Merge %s into %s", cfg.MirrorBranch, cfg.IntegrationBranch)
	result, err := git.MergeNoFastForward(ctx.Context, cfg.MirrorBranch, message)
	if err != nil {
		return err
	}

	switch result {
	case git.MergeConflict:
		files, err := git.GetUnmergedFiles(ctx.Context)
		if err != nil {
			return err
		}
		session.ConflictFiles = files

		splog.Error("Merging %s into %s stopped on %d conflicting file(s):",
			style.ColorBranchName(cfg.MirrorBranch),
			style.ColorBranchName(cfg.IntegrationBranch), len(files))
		for _, file := range files {
			splog.Info("  %s", file)
		}
		splog.Newline()
		splog.Info("The merge is left in progress; %s is unchanged and no tests were run.",
			style.ColorBranchName(cfg.ProductionBranch))
		splog.Tip("Resolve with: forksync resolve-conflicts")
		splog.Tip("Or undo with:  git merge --abort  (pre-merge tip is %s)", tag.Name)
		return forksyncerrors.NewMergeConflictError(cfg.MirrorBranch, cfg.IntegrationBranch, files)

	case git.MergeUnneeded:
		splog.Info("Nothing to merge into %s.", style.ColorBranchName(cfg.IntegrationBranch))
		return nil
	}

	rev, _ := git.GetRevision(cfg.IntegrationBranch)
	splog.Info("%s merged into %s at %s.",
		style.ColorBranchName(cfg.MirrorBranch),
		style.ColorBranchName(cfg.IntegrationBranch),
		style.ColorDim(style.ShortSHA(rev)))

	return git.PushBranch(ctx.Context, cfg.IntegrationBranch, cfg.OriginRemote, false, false)
}
