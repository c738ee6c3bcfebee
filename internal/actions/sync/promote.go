package sync

import (
	"fmt"

	"forksync.dev/forksync/internal/backup"
	"forksync.dev/forksync/internal/git"
	"forksync.dev/forksync/internal/runtime"
	"forksync.dev/forksync/internal/tui/style"
)

// promote merges integration into production, gated on the test result and,
// in manual mode, on operator confirmation. Declining is a normal, successful
// termination: integration stays advanced and pushed, production untouched.
func promote(ctx *runtime.Context, session *Session, opts Options) error {
	cfg := ctx.Config
	splog := ctx.Splog

	if session.TestResult == TestFailed {
		return fmt.Errorf("promotion blocked: tests failed")
	}

	promoted, err := git.IsAncestor(cfg.IntegrationBranch, cfg.ProductionBranch)
	if err != nil {
		return err
	}
	if promoted {
		splog.Info("%s already contains %s; nothing to promote.",
			style.ColorBranchName(cfg.ProductionBranch),
			style.ColorBranchName(cfg.IntegrationBranch))
		return nil
	}

	if session.Mode == ModeManual {
		prompt := fmt.Sprintf("Promote %s to %s?", cfg.IntegrationBranch, cfg.ProductionBranch)
		if session.TestResult == TestSkipped {
			prompt = fmt.Sprintf("Promote %s to %s? (no tests were run)",
				cfg.IntegrationBranch, cfg.ProductionBranch)
		}
		confirmed, err := opts.Confirm(prompt, false)
		if err != nil {
			return err
		}
		if !confirmed {
			splog.Info("Promotion declined; %s is unchanged.",
				style.ColorBranchName(cfg.ProductionBranch))
			return nil
		}
	}

	tag, err := backup.Create(ctx.Context, backup.RoleProduction, cfg.ProductionBranch, session.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to snapshot %s before promotion: %w", cfg.ProductionBranch, err)
	}
	session.RecordBackup(tag.Name)
	splog.Info("Pre-promotion tip of %s saved as %s.",
		style.ColorBranchName(cfg.ProductionBranch), style.ColorTagName(tag.Name))
	if err := git.PushTag(ctx.Context, tag.Name, cfg.OriginRemote); err != nil {
		splog.Warn("Failed to publish %s to %s: %v", tag.Name, cfg.OriginRemote, err)
	}

	if err := git.CheckoutBranch(ctx.Context, cfg.ProductionBranch); err != nil {
		return err
	}

	message := fmt.Sprintf("Merge %s into %s", cfg.IntegrationBranch, cfg.ProductionBranch)
	result, err := git.MergeNoFastForward(ctx.Context, cfg.IntegrationBranch, message)
	if err != nil {
		return err
	}
	if result == git.MergeConflict {
		// Production only ever receives from integration, so a conflict here
		// means it was modified outside the pipeline. Back out and report.
		if abortErr := git.MergeAbort(ctx.Context); abortErr != nil {
			splog.Warn("Failed to abort promotion merge: %v", abortErr)
		}
		return fmt.Errorf("promotion merge conflicted; %s has diverged from the pipeline (restore it from %s)",
			cfg.ProductionBranch, tag.Name)
	}

	if err := git.PushBranch(ctx.Context, cfg.ProductionBranch, cfg.OriginRemote, false, false); err != nil {
		return err
	}

	session.Promoted = true
	rev, _ := git.GetRevision(cfg.ProductionBranch)
	splog.Info("%s promoted to %s.",
		style.ColorBranchName(cfg.ProductionBranch), style.ColorDim(style.ShortSHA(rev)))
	return nil
}
