// Package resolve implements interactive resolution of a conflicted
// integration merge left in progress by a halted sync session.
package resolve

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"

	"forksync.dev/forksync/internal/config"
	forksyncerrors "forksync.dev/forksync/internal/errors"
	"forksync.dev/forksync/internal/git"
	"forksync.dev/forksync/internal/runtime"
	"forksync.dev/forksync/internal/tui"
	"forksync.dev/forksync/internal/tui/style"
)

// Options configures the resolve action.
type Options struct {
	// Choose selects a resolution for a conflicted path. Defaults to an
	// interactive menu; tests inject a canned chooser.
	Choose func(path string, protected bool) (ResolutionKind, error)
}

// Action walks the unresolved paths of the in-progress integration merge,
// applying one resolution per path, and completes the merge once every path
// is resolved. Aborting is always safe: the pre-merge backup tag and the
// merge machinery both preserve the prior integration tip.
func Action(ctx *runtime.Context, opts Options) error {
	splog := ctx.Splog
	cfg := ctx.Config

	if !git.IsMergeInProgress(ctx.Context) {
		return fmt.Errorf("%w: nothing to resolve", forksyncerrors.ErrNoMergeInProgress)
	}

	branch, err := git.GetCurrentBranch()
	if err != nil {
		return err
	}
	if branch != cfg.IntegrationBranch {
		splog.Warn("Merge in progress on %s, not %s; resolving it anyway.",
			style.ColorBranchName(branch), style.ColorBranchName(cfg.IntegrationBranch))
	}

	protected, err := config.LoadProtectedPaths(ctx.RepoRoot)
	if err != nil {
		splog.Warn("Could not read protected paths: %v", err)
	}

	choose := opts.Choose
	if choose == nil {
		choose = promptResolution
	}

	for {
		unmerged, err := git.GetUnmergedFiles(ctx.Context)
		if err != nil {
			return err
		}
		if len(unmerged) == 0 {
			return complete(ctx, branch)
		}

		splog.Info("%d conflicted file(s) remaining", len(unmerged))

		progressed := false
		for _, path := range unmerged {
			isProtected := config.IsProtected(protected, path)
			if isProtected {
				splog.Warn("%s is a protected path; prefer keeping the local version.", path)
			}

			kind, err := choose(path, isProtected)
			if err != nil {
				return err
			}

			for kind == ViewDiff {
				if _, err := Apply(ctx, Resolution{Kind: ViewDiff, Path: path}); err != nil {
					return err
				}
				if kind, err = choose(path, isProtected); err != nil {
					return err
				}
			}

			if kind == Abort {
				if err := git.MergeAbort(ctx.Context); err != nil {
					return err
				}
				splog.Info("Merge aborted. %s is back at its pre-merge state.",
					style.ColorBranchName(branch))
				return nil
			}

			resolved, err := Apply(ctx, Resolution{Kind: kind, Path: path})
			if err != nil {
				return err
			}
			if resolved {
				progressed = true
				splog.Info("Resolved %s", path)
			}
		}

		if !progressed {
			splog.Info("Leaving remaining conflicts unresolved. Run %s again to continue.",
				style.ColorEmphasis("forksync resolve-conflicts"))
			return nil
		}
	}
}

// complete commits the merge and publishes the integration branch.
func complete(ctx *runtime.Context, branch string) error {
	splog := ctx.Splog

	if err := git.MergeContinue(ctx.Context); err != nil {
		return err
	}
	splog.Info("All conflicts resolved; merge committed on %s.", style.ColorBranchName(branch))

	if err := git.PushBranch(ctx.Context, branch, ctx.Config.OriginRemote, false, false); err != nil {
		splog.Warn("Could not push %s: %v", style.ColorBranchName(branch), err)
		return err
	}
	splog.Info("Pushed %s to %s.", style.ColorBranchName(branch), ctx.Config.OriginRemote)
	splog.Tip("Run %s to finish the halted session.", style.ColorEmphasis("forksync sync"))
	return nil
}

const (
	choiceKeepLocal    = "Keep local version (ours)"
	choiceKeepIncoming = "Keep incoming version (theirs)"
	choiceManual       = "Edit manually"
	choiceViewDiff     = "View diff"
	choiceSkip         = "Skip for now"
	choiceAbort        = "Abort the merge"
)

func promptResolution(path string, protected bool) (ResolutionKind, error) {
	if os.Getenv("FORKSYNC_TEST_NO_INTERACTIVE") != "" {
		return Skip, tui.ErrInteractiveDisabled
	}

	message := fmt.Sprintf("How should %s be resolved?", path)
	if protected {
		message = fmt.Sprintf("How should %s (protected) be resolved?", path)
	}

	var selected string
	prompt := &survey.Select{
		Message: message,
		Options: []string{
			choiceKeepLocal,
			choiceKeepIncoming,
			choiceManual,
			choiceViewDiff,
			choiceSkip,
			choiceAbort,
		},
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return Skip, fmt.Errorf("canceled")
	}

	switch selected {
	case choiceKeepLocal:
		return KeepLocal, nil
	case choiceKeepIncoming:
		return KeepIncoming, nil
	case choiceManual:
		return Manual, nil
	case choiceViewDiff:
		return ViewDiff, nil
	case choiceAbort:
		return Abort, nil
	default:
		return Skip, nil
	}
}
