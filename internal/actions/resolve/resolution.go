package resolve

import (
	"fmt"
	"os"
	"path/filepath"

	"forksync.dev/forksync/internal/git"
	"forksync.dev/forksync/internal/runtime"
	"forksync.dev/forksync/internal/tui"
)

// ResolutionKind identifies one way of handling a conflicted path.
type ResolutionKind int

const (
	// KeepLocal restores the pre-merge side of the path and stages it.
	KeepLocal ResolutionKind = iota
	// KeepIncoming restores the incoming side of the path and stages it.
	KeepIncoming
	// Manual opens the path in an editor; the path counts as resolved only
	// once no conflict markers remain.
	Manual
	// ViewDiff shows the combined conflict diff and leaves the path
	// unresolved so it can be prompted again.
	ViewDiff
	// Skip leaves the path unresolved for a later pass.
	Skip
	// Abort abandons the whole merge, restoring the pre-merge state.
	Abort
)

// Resolution is a single choice for a single conflicted path.
type Resolution struct {
	Kind ResolutionKind
	Path string
}

// Apply carries out a resolution choice. It reports whether the path is now
// resolved; ViewDiff and Skip leave it unresolved without error. Abort and
// the terminal choices are handled by the caller before Apply is reached.
func Apply(ctx *runtime.Context, res Resolution) (bool, error) {
	switch res.Kind {
	case KeepLocal:
		if err := git.CheckoutOurs(ctx.Context, res.Path); err != nil {
			return false, err
		}
		return true, nil

	case KeepIncoming:
		if err := git.CheckoutTheirs(ctx.Context, res.Path); err != nil {
			return false, err
		}
		return true, nil

	case Manual:
		return applyManual(ctx, res.Path)

	case ViewDiff:
		diff, err := git.ShowConflictDiff(ctx.Context, res.Path)
		if err != nil {
			return false, err
		}
		ctx.Splog.Page(diff)
		return false, nil

	case Skip:
		return false, nil

	default:
		return false, fmt.Errorf("unsupported resolution for %s", res.Path)
	}
}

// applyManual opens the path in the user's editor and re-scans it for
// conflict markers afterwards. The path is staged only when clean.
func applyManual(ctx *runtime.Context, path string) (bool, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
		if entered, err := tui.PromptInput("Editor command", editor); err == nil && entered != "" {
			editor = entered
		}
	}

	absPath := filepath.Join(ctx.RepoRoot, path)
	if err := ctx.Shell.RunInteractive(ctx.Context, editor, absPath); err != nil {
		return false, fmt.Errorf("editor %s failed on %s: %w", editor, path, err)
	}

	hasMarkers, err := git.HasConflictMarkers(absPath)
	if err != nil {
		return false, err
	}
	if hasMarkers {
		ctx.Splog.Warn("%s still contains conflict markers", path)
		return false, nil
	}

	if err := git.StagePath(ctx.Context, path); err != nil {
		return false, err
	}
	return true, nil
}
