// Package doctor provides read-only diagnostic checks over the fork
// repository and its synchronization state.
package doctor

import (
	"fmt"

	"forksync.dev/forksync/internal/runtime"
)

// Options contains options for the health-check command
type Options struct {
}

// Action runs the diagnostic checks. It never mutates the repository; all
// findings are accumulated and reported at the end.
func Action(ctx *runtime.Context, opts Options) error {
	splog := ctx.Splog

	splog.Info("Running forksync health-check...")
	splog.Newline()

	var warnings []string
	var errors []string

	splog.Info("Environment:")
	warnings, errors = checkEnvironment(splog, warnings, errors)

	splog.Newline()

	splog.Info("Repository:")
	warnings, errors = checkRepository(ctx, warnings, errors)

	splog.Newline()

	splog.Info("Pipeline State:")
	warnings, errors = checkPipelineState(ctx, warnings, errors)

	splog.Newline()
	switch {
	case len(errors) > 0:
		splog.Warn("Health-check found %d error(s) and %d warning(s).", len(errors), len(warnings))
		for _, err := range errors {
			splog.Error("  %s", err)
		}
		for _, warn := range warnings {
			splog.Warn("  %s", warn)
		}
		return fmt.Errorf("health-check found %d error(s)", len(errors))
	case len(warnings) > 0:
		splog.Info("Health-check found %d warning(s). Your setup is mostly healthy.", len(warnings))
		for _, warn := range warnings {
			splog.Warn("  %s", warn)
		}
	default:
		splog.Info("✅ All checks passed. Your fork pipeline is healthy.")
	}

	return nil
}
