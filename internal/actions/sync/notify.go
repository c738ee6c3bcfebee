package sync

import (
	"strings"
	"time"

	"forksync.dev/forksync/internal/config"
	"forksync.dev/forksync/internal/runtime"
	"forksync.dev/forksync/internal/tui/style"
)

// postPromotion drives the external build/restart/notify collaborators after
// a successful promotion. Failures here are reported but never revert the
// promotion: the production branch is decoupled from the deployed artifact,
// and a failed rebuild leaves the previously deployed artifact running.
func postPromotion(ctx *runtime.Context, session *Session) {
	cfg := ctx.Config
	splog := ctx.Splog

	buildOK := true
	if cfg.BuildCommand != "" {
		splog.Info("Rebuilding from %s...", style.ColorBranchName(cfg.ProductionBranch))
		result, err := ctx.Shell.Run(ctx.Context, cfg.BuildCommand,
			"FORKSYNC_PROFILE="+config.Profile())
		switch {
		case err != nil:
			buildOK = false
			splog.Warn("Rebuild could not be started: %v. The previously deployed artifact keeps running.", err)
		case result.ExitCode != 0:
			buildOK = false
			splog.Warn("Rebuild failed (exit code %d). The previously deployed artifact keeps running; %s is not rolled back.",
				result.ExitCode, style.ColorBranchName(cfg.ProductionBranch))
		case cfg.BuildMarker != "" && !strings.Contains(result.Stdout+result.Stderr, cfg.BuildMarker):
			buildOK = false
			splog.Warn("Rebuilt output is missing the custom-modification marker %q; the promotion may have regressed local changes.",
				cfg.BuildMarker)
		default:
			splog.Info("Rebuild succeeded; custom-modification marker verified.")
		}
	}

	if buildOK && cfg.ServiceCheckCommand != "" {
		result, err := ctx.Shell.Run(ctx.Context, cfg.ServiceCheckCommand)
		if err == nil && result.ExitCode == 0 {
			restartService(ctx)
		} else {
			splog.Info("No running service instance detected; skipping restart.")
		}
	}

	if cfg.NotifyCommand != "" {
		result, err := ctx.Shell.Run(ctx.Context, cfg.NotifyCommand,
			"FORKSYNC_NOTIFY_TARGET="+config.NotifyTarget(),
			"FORKSYNC_NOTIFY_CHANNEL="+config.NotifyChannel(),
			"FORKSYNC_SUMMARY="+session.Summary())
		switch {
		case err != nil:
			splog.Warn("Notification command failed: %v", err)
		case result.ExitCode != 0:
			splog.Warn("Notification command exited with code %d; the promotion may have gone unannounced.", result.ExitCode)
		default:
			splog.Info("Notification sent.")
		}
	}
}

// restartService restarts the running instance and polls its health with a
// fixed interval and attempt count.
func restartService(ctx *runtime.Context) {
	cfg := ctx.Config
	splog := ctx.Splog

	splog.Info("Restarting service...")
	result, err := ctx.Shell.Run(ctx.Context, cfg.RestartCommand)
	if err != nil || result.ExitCode != 0 {
		splog.Warn("Service restart failed; the service may need manual attention.")
		return
	}

	if cfg.HealthCommand == "" {
		return
	}

	interval := time.Duration(cfg.HealthIntervalSecs) * time.Second
	for attempt := 1; attempt <= cfg.HealthAttempts; attempt++ {
		result, err := ctx.Shell.Run(ctx.Context, cfg.HealthCommand)
		if err == nil && result.ExitCode == 0 {
			splog.Info("Service is healthy (attempt %d/%d).", attempt, cfg.HealthAttempts)
			return
		}
		if attempt < cfg.HealthAttempts {
			time.Sleep(interval)
		}
	}
	splog.Warn("Service did not report healthy after %d attempt(s).", cfg.HealthAttempts)
}
