package sync

import (
	"forksync.dev/forksync/internal/config"
	forksyncerrors "forksync.dev/forksync/internal/errors"
	"forksync.dev/forksync/internal/runtime"
	"forksync.dev/forksync/internal/tui/style"
)

// runTestGate runs the configured verification command against the current
// integration tip. The gate is fail-closed: a failure halts the session
// before any production mutation. No discoverable command is classified as
// skipped, which does not block promotion but is reported distinctly so
// "no tests" is never mistaken for "tests passed".
func runTestGate(ctx *runtime.Context, session *Session) error {
	cfg := ctx.Config
	splog := ctx.Splog

	if cfg.TestCommand == "" {
		session.TestResult = TestSkipped
		splog.Warn("No verification command configured; tests skipped. Promotion will proceed unverified.")
		return nil
	}

	splog.Info("Running verification: %s", style.ColorDim(cfg.TestCommand))
	result, err := ctx.Shell.Run(ctx.Context, cfg.TestCommand,
		"FORKSYNC_PROFILE="+config.Profile())
	if err != nil {
		session.TestResult = TestFailed
		return err
	}

	if result.ExitCode != 0 {
		session.TestResult = TestFailed
		splog.Error("Verification failed (exit code %d).", result.ExitCode)
		if result.Stderr != "" {
			splog.Page(result.Stderr + "\n")
		}
		splog.Info("%s keeps the merged result; %s is untouched.",
			style.ColorBranchName(cfg.IntegrationBranch),
			style.ColorBranchName(cfg.ProductionBranch))
		if n := len(session.BackupTags); n > 0 {
			splog.Tip("To discard the merge: forksync rollback %s", session.BackupTags[n-1])
		}
		return forksyncerrors.NewTestFailureError(cfg.TestCommand, result.ExitCode)
	}

	session.TestResult = TestPassed
	splog.Info("Verification passed.")
	return nil
}
