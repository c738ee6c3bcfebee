// Package sync implements the fork synchronization and promotion pipeline:
// fetch upstream, mirror it exactly, merge the mirror into the integration
// branch, gate on the verification command, and promote integration to
// production. Every step that rewrites a branch tip snapshots the pre-change
// commit first.
package sync

import (
	"errors"
	"fmt"

	"forksync.dev/forksync/internal/config"
	forksyncerrors "forksync.dev/forksync/internal/errors"
	"forksync.dev/forksync/internal/git"
	"forksync.dev/forksync/internal/lock"
	"forksync.dev/forksync/internal/runtime"
	"forksync.dev/forksync/internal/tui"
	"forksync.dev/forksync/internal/tui/style"
)

// Options contains options for the sync command
type Options struct {
	// Auto suppresses interactive confirmations and promotes automatically
	// when the test gate allows it.
	Auto bool

	// Confirm is the promotion confirmation prompt. Defaults to the
	// interactive terminal prompt; tests substitute their own.
	Confirm func(prompt string, defaultValue bool) (bool, error)
}

// Action runs the full pipeline. The repository is never mutated before all
// preconditions pass and the session lease is held.
func Action(ctx *runtime.Context, opts Options) error {
	splog := ctx.Splog
	cfg := ctx.Config

	mode := ModeManual
	if opts.Auto || (opts.Confirm == nil && !tui.IsInteractive()) {
		// Without a terminal there is nobody to confirm the promotion.
		mode = ModeAuto
	}
	if opts.Confirm == nil {
		opts.Confirm = tui.PromptConfirm
	}
	session := NewSession(mode)

	if err := checkPreconditions(ctx); err != nil {
		return err
	}

	lease, err := lock.Acquire(ctx.GitDir)
	if err != nil {
		var held *forksyncerrors.LockHeldError
		if errors.As(err, &held) {
			splog.Error("Another sync session is already running (%s, pid %d).", held.Owner, held.PID)
			splog.Tip("If that session is dead, remove %s/%s and retry.", ctx.GitDir, lock.LeaseFileName)
		}
		return err
	}
	defer func() {
		if err := lease.Release(); err != nil {
			splog.Debug("Failed to release sync lease: %v", err)
		}
	}()

	// Fetch before any mutation; network or auth failure aborts the session here.
	splog.Info("Fetching %s and %s...", cfg.UpstreamRemote, cfg.OriginRemote)
	if err := git.FetchRemote(ctx.Context, cfg.UpstreamRemote); err != nil {
		return fmt.Errorf("fetching %s failed, nothing was changed: %w", cfg.UpstreamRemote, err)
	}
	if err := git.FetchRemote(ctx.Context, cfg.OriginRemote); err != nil {
		return fmt.Errorf("fetching %s failed, nothing was changed: %w", cfg.OriginRemote, err)
	}

	upstreamRef := cfg.UpstreamRef()
	session.UpstreamCommit, err = git.GetRevision(upstreamRef)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", upstreamRef, err)
	}

	session.NewCommitCount, err = git.CountCommitRange(cfg.MirrorBranch, upstreamRef)
	if err != nil {
		return err
	}

	// The mirror must never hold commits upstream does not have. A mirror
	// that ran ahead of an unchanged upstream yields a zero commit count,
	// so this cannot hide behind the count-based early exit.
	mirrorClean, err := git.IsAncestor(cfg.MirrorBranch, upstreamRef)
	if err != nil {
		return err
	}

	integrated, err := git.IsAncestor(cfg.MirrorBranch, cfg.IntegrationBranch)
	if err != nil {
		return err
	}

	if session.NewCommitCount == 0 && mirrorClean && integrated {
		splog.Info("%s is already up to date with %s.",
			style.ColorBranchName(cfg.MirrorBranch), style.ColorBranchName(upstreamRef))
		splog.Page(session.Summary())
		return nil
	}

	if session.NewCommitCount > 0 || !mirrorClean {
		if session.NewCommitCount > 0 {
			splog.Info("%d new upstream commit(s) on %s:",
				session.NewCommitCount, style.ColorBranchName(upstreamRef))
			commits, err := git.ListCommitRange(cfg.MirrorBranch, upstreamRef)
			if err != nil {
				return err
			}
			for _, line := range commits {
				splog.Info("  %s", style.ColorDim(line))
			}
		}

		if err := updateMirror(ctx, session); err != nil {
			return err
		}
	}

	if err := integrate(ctx, session); err != nil {
		return err
	}

	if err := runTestGate(ctx, session); err != nil {
		return err
	}

	if err := promote(ctx, session, opts); err != nil {
		return err
	}

	if session.Promoted {
		postPromotion(ctx, session)
	}

	if err := config.AppendChangelog(ctx.GitDir, config.ChangelogEntry{
		Date:              session.Timestamp,
		UpstreamCommit:    session.UpstreamCommit,
		NewCommitCount:    session.NewCommitCount,
		ConflictsResolved: session.ConflictFiles,
		TestResult:        string(session.TestResult),
		Promoted:          session.Promoted,
	}); err != nil {
		splog.Warn("Failed to append changelog entry: %v", err)
	}

	splog.Newline()
	splog.Page(session.Summary())
	return nil
}

// checkPreconditions verifies the environment before anything is mutated.
func checkPreconditions(ctx *runtime.Context) error {
	cfg := ctx.Config
	splog := ctx.Splog

	for _, remote := range []string{cfg.UpstreamRemote, cfg.OriginRemote} {
		ok, err := git.HasRemote(remote)
		if err != nil {
			return err
		}
		if !ok {
			splog.Error("Remote %q is not configured.", remote)
			splog.Tip("Add it with: git remote add %s <url>", remote)
			return forksyncerrors.NewMissingRemoteError(remote)
		}
	}

	for _, branch := range []string{cfg.MirrorBranch, cfg.IntegrationBranch, cfg.ProductionBranch} {
		exists, err := git.BranchExists(branch)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("branch %q does not exist; create it before running sync", branch)
		}
	}

	dirty, err := git.IsWorkspaceDirty()
	if err != nil {
		return err
	}
	if dirty {
		splog.Error("The workspace has uncommitted changes.")
		splog.Tip("Commit or stash them first; sync rewrites branch tips and checked-out files.")
		return forksyncerrors.ErrDirtyWorkspace
	}

	return nil
}
