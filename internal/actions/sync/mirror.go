package sync

import (
	"fmt"

	"forksync.dev/forksync/internal/backup"
	"forksync.dev/forksync/internal/git"
	"forksync.dev/forksync/internal/runtime"
	"forksync.dev/forksync/internal/tui/style"
)

// updateMirror advances the mirror branch to the upstream tip. The mirror
// must never carry commits upstream does not have: when it cannot be
// fast-forwarded, its divergent tip is snapshotted and then discarded with
// a hard reset.
func updateMirror(ctx *runtime.Context, session *Session) error {
	cfg := ctx.Config
	splog := ctx.Splog
	upstreamRef := cfg.UpstreamRef()

	if err := git.CheckoutBranch(ctx.Context, cfg.MirrorBranch); err != nil {
		return err
	}

	fastForward, err := git.IsAncestor(cfg.MirrorBranch, upstreamRef)
	if err != nil {
		return err
	}

	forced := false
	if fastForward {
		if err := git.MergeFastForwardOnly(ctx.Context, upstreamRef); err != nil {
			return err
		}
		rev, _ := git.GetRevision(cfg.MirrorBranch)
		splog.Info("%s fast-forwarded to %s.",
			style.ColorBranchName(cfg.MirrorBranch), style.ColorDim(style.ShortSHA(rev)))
	} else {
		splog.Warn("%s has commits that %s does not have; it will be reset.",
			style.ColorBranchName(cfg.MirrorBranch), style.ColorBranchName(upstreamRef))

		tag, err := backup.Create(ctx.Context, backup.RoleMirror, cfg.MirrorBranch, session.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to snapshot divergent mirror tip: %w", err)
		}
		session.RecordBackup(tag.Name)
		splog.Info("Divergent tip saved as %s.", style.ColorTagName(tag.Name))
		if err := git.PushTag(ctx.Context, tag.Name, cfg.OriginRemote); err != nil {
			splog.Warn("Failed to publish %s to %s: %v", tag.Name, cfg.OriginRemote, err)
		}

		if err := git.HardReset(ctx.Context, upstreamRef); err != nil {
			return err
		}
		forced = true
		rev, _ := git.GetRevision(cfg.MirrorBranch)
		splog.Warn("%s hard-reset to %s; the discarded commits remain reachable from the backup tag.",
			style.ColorBranchName(cfg.MirrorBranch), style.ColorDim(style.ShortSHA(rev)))
	}

	if err := git.PushBranch(ctx.Context, cfg.MirrorBranch, cfg.OriginRemote, false, forced); err != nil {
		return err
	}
	return nil
}
