package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"forksync.dev/forksync/internal/backup"
	"forksync.dev/forksync/internal/config"
	"forksync.dev/forksync/internal/git"
	"forksync.dev/forksync/internal/lock"
	"forksync.dev/forksync/internal/runtime"
)

// checkPipelineState checks the relationships between the role branches,
// the sync lease, and the backup tag inventory.
func checkPipelineState(ctx *runtime.Context, warnings []string, errors []string) ([]string, []string) {
	splog := ctx.Splog
	cfg := ctx.Config

	// The mirror must never hold commits upstream does not have
	upstreamRef := cfg.UpstreamRef()
	if _, err := git.GetRevision(upstreamRef); err != nil {
		warnings = append(warnings, fmt.Sprintf("upstream ref '%s' is not resolvable; run 'git fetch %s'", upstreamRef, cfg.UpstreamRemote))
		splog.Warn("  upstream ref '%s' is not resolvable", upstreamRef)
	} else {
		clean, err := git.IsAncestor(cfg.MirrorBranch, upstreamRef)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("could not compare '%s' with '%s': %v", cfg.MirrorBranch, upstreamRef, err))
			splog.Warn("  could not compare '%s' with '%s'", cfg.MirrorBranch, upstreamRef)
		} else if !clean {
			errors = append(errors, fmt.Sprintf("'%s' holds commits not on '%s'; it must mirror upstream exactly", cfg.MirrorBranch, upstreamRef))
			splog.Error("  '%s' holds commits not on '%s'", cfg.MirrorBranch, upstreamRef)
		} else {
			splog.Info("  ✅ '%s' contains only upstream commits", cfg.MirrorBranch)
		}
	}

	integrated, err := git.IsAncestor(cfg.MirrorBranch, cfg.IntegrationBranch)
	if err == nil && !integrated {
		warnings = append(warnings, fmt.Sprintf("'%s' has upstream commits not yet merged into '%s'; run 'forksync sync'", cfg.MirrorBranch, cfg.IntegrationBranch))
		splog.Warn("  '%s' is behind '%s'", cfg.IntegrationBranch, cfg.MirrorBranch)
	} else if err == nil {
		splog.Info("  ✅ '%s' contains all of '%s'", cfg.IntegrationBranch, cfg.MirrorBranch)
	}

	promoted, err := git.IsAncestor(cfg.ProductionBranch, cfg.IntegrationBranch)
	if err == nil && !promoted {
		warnings = append(warnings, fmt.Sprintf("'%s' has commits not on '%s'; it may have been patched out of band", cfg.ProductionBranch, cfg.IntegrationBranch))
		splog.Warn("  '%s' has commits not on '%s'", cfg.ProductionBranch, cfg.IntegrationBranch)
	} else if err == nil {
		splog.Info("  ✅ '%s' is an ancestor of '%s'", cfg.ProductionBranch, cfg.IntegrationBranch)
	}

	lease, err := lock.Current(ctx.GitDir)
	switch {
	case err != nil:
		warnings = append(warnings, fmt.Sprintf("could not read the sync lease: %v", err))
		splog.Warn("  could not read the sync lease")
	case lease == nil:
		splog.Info("  ✅ No sync session in progress")
	case lease.ExpiresAt.Before(time.Now()):
		warnings = append(warnings, fmt.Sprintf("a stale sync lease from %s remains; the next sync will replace it", lease.AcquiredAt.Format("2006-01-02 15:04")))
		splog.Warn("  stale sync lease from %s", lease.AcquiredAt.Format("2006-01-02 15:04"))
	default:
		warnings = append(warnings, fmt.Sprintf("a sync session is in progress (owner %s, pid %d)", lease.Owner, lease.PID))
		splog.Warn("  sync lease held by %s (pid %d)", lease.Owner, lease.PID)
	}

	entries, err := config.LoadProtectedPaths(ctx.RepoRoot)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("protected paths list is unreadable: %v", err))
		splog.Warn("  protected paths list is unreadable")
	} else if len(entries) == 0 {
		splog.Info("  ✅ No protected paths declared")
	} else {
		splog.Info("  ✅ %d protected path pattern(s) loaded", len(entries))
		for _, entry := range entries {
			if entry.Dir {
				continue
			}
			// Glob patterns cannot be checked for existence directly
			if hasGlobMeta(entry.Pattern) {
				continue
			}
			if _, err := os.Stat(filepath.Join(ctx.RepoRoot, entry.Pattern)); os.IsNotExist(err) {
				warnings = append(warnings, fmt.Sprintf("protected path '%s' does not exist in the working tree", entry.Pattern))
				splog.Warn("  protected path '%s' does not exist", entry.Pattern)
			}
		}
	}

	tags, err := backup.List()
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("could not list backup tags: %v", err))
		splog.Warn("  could not list backup tags")
	} else if len(tags) == 0 {
		splog.Info("  ✅ No backup tags yet (none expected before the first sync)")
	} else {
		splog.Info("  ✅ %d backup tag(s) available, newest %s", len(tags), tags[0].Name)
	}

	return warnings, errors
}

func hasGlobMeta(pattern string) bool {
	for _, r := range pattern {
		if r == '*' || r == '?' || r == '[' {
			return true
		}
	}
	return false
}
