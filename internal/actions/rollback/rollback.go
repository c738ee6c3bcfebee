// Package rollback restores branch tips from backup tags. A standard
// rollback resets the single branch a tag was taken from; an emergency
// rollback resets all three role branches, each from its own tag in the
// same session group when one exists.
package rollback

import (
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"

	"forksync.dev/forksync/internal/backup"
	"forksync.dev/forksync/internal/config"
	forksyncerrors "forksync.dev/forksync/internal/errors"
	"forksync.dev/forksync/internal/git"
	"forksync.dev/forksync/internal/runtime"
	"forksync.dev/forksync/internal/tui"
	"forksync.dev/forksync/internal/tui/style"
)

// Options configures the rollback action.
type Options struct {
	// Emergency resets every role branch instead of just the branch the
	// tag was taken from.
	Emergency bool

	// TagName is the backup tag to restore from. Empty prompts for one.
	TagName string

	// Confirm is the destructive-reset confirmation prompt. Defaults to
	// the interactive prompt.
	Confirm func(prompt string, defaultValue bool) (bool, error)

	// Select chooses a tag from the listed candidates. Defaults to an
	// interactive menu.
	Select func(candidates []backup.Tag) (string, error)
}

// target is one branch reset planned by the rollback.
type target struct {
	role   backup.Role
	branch string
	commit string
	tag    string
}

// Action resets one or more role branches to previously tagged commits.
// Before any reset it snapshots the current tips under emergency/ tags, so
// a rollback can itself be undone.
func Action(ctx *runtime.Context, opts Options) error {
	splog := ctx.Splog
	cfg := ctx.Config

	if opts.Confirm == nil {
		opts.Confirm = tui.PromptConfirm
	}
	if opts.Select == nil {
		opts.Select = promptTag
	}

	dirty, err := git.IsWorkspaceDirty()
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("%w: commit or stash before rolling back", forksyncerrors.ErrDirtyWorkspace)
	}
	if git.IsMergeInProgress(ctx.Context) {
		return fmt.Errorf("a merge is in progress; resolve it with %s or abort it before rolling back",
			style.ColorEmphasis("forksync resolve-conflicts"))
	}

	tagName := opts.TagName
	if tagName == "" {
		candidates, err := backup.List()
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return fmt.Errorf("%w: no backup tags exist yet", forksyncerrors.ErrBackupTagNotFound)
		}
		if tagName, err = opts.Select(candidates); err != nil {
			return err
		}
	}

	tag, err := backup.Resolve(tagName)
	if err != nil {
		return err
	}

	targets, err := planTargets(cfg, tag, opts.Emergency)
	if err != nil {
		return err
	}

	for _, t := range targets {
		splog.Info("Will reset %s to %s (%s)",
			style.ColorBranchName(t.branch), style.ColorTagName(t.tag), style.ShortSHA(t.commit))
	}

	verb := "Roll back"
	if opts.Emergency {
		verb = "Emergency roll back"
	}
	confirmed, err := opts.Confirm(fmt.Sprintf("%s %d branch(es)?", verb, len(targets)), false)
	if err != nil {
		return err
	}
	if !confirmed {
		splog.Info("Rollback canceled; nothing changed.")
		return nil
	}

	// Snapshot the current tips before any of them move
	now := time.Now()
	for _, t := range targets {
		snap, err := backup.CreateEmergency(ctx.Context, t.role, t.branch, now)
		if err != nil {
			return err
		}
		splog.Info("Saved current %s tip as %s",
			style.ColorBranchName(t.branch), style.ColorTagName(snap.Name))
		if err := git.PushTag(ctx.Context, snap.Name, cfg.OriginRemote); err != nil {
			splog.Warn("Failed to publish %s to %s: %v", snap.Name, cfg.OriginRemote, err)
		}
	}

	for _, t := range targets {
		if err := git.CheckoutBranch(ctx.Context, t.branch); err != nil {
			return err
		}
		if err := git.HardReset(ctx.Context, t.commit); err != nil {
			return err
		}
		if err := git.PushBranch(ctx.Context, t.branch, cfg.OriginRemote, false, true); err != nil {
			return err
		}
		splog.Info("Restored %s from %s",
			style.ColorBranchName(t.branch), style.ColorTagName(t.tag))
	}

	splog.Info("Rollback complete.")
	return nil
}

// planTargets maps a tag to the branches it should restore. Standard mode
// restores the single branch matching the tag's role; emergency mode
// restores all three role branches.
func planTargets(cfg *config.Config, tag *backup.Tag, emergency bool) ([]target, error) {
	branches := map[backup.Role]string{
		backup.RoleMirror:      cfg.MirrorBranch,
		backup.RoleIntegration: cfg.IntegrationBranch,
		backup.RoleProduction:  cfg.ProductionBranch,
	}

	if !emergency {
		branch, ok := branches[tag.Role]
		if !ok {
			return nil, fmt.Errorf("tag %s does not follow the backup naming scheme; cannot infer a branch", tag.Name)
		}
		return []target{{role: tag.Role, branch: branch, commit: tag.Commit, tag: tag.Name}}, nil
	}

	members, err := tag.GroupMembers()
	if err != nil {
		return nil, err
	}
	byRole := make(map[backup.Role]backup.Tag, len(members))
	for _, m := range members {
		byRole[m.Role] = m
	}

	// Every role branch is reset. A role snapshotted in the same session
	// restores its own tag; a role without one (a fast-forwarded mirror
	// gets no snapshot) falls back to the chosen tag's commit.
	targets := make([]target, 0, len(branches))
	for _, role := range []backup.Role{backup.RoleMirror, backup.RoleIntegration, backup.RoleProduction} {
		t := target{role: role, branch: branches[role], commit: tag.Commit, tag: tag.Name}
		if m, ok := byRole[role]; ok {
			t.commit = m.Commit
			t.tag = m.Name
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func promptTag(candidates []backup.Tag) (string, error) {
	options := make([]string, len(candidates))
	for i, c := range candidates {
		summary, err := git.GetCommitSummary(c.Commit)
		if err != nil {
			summary = ""
		}
		options[i] = fmt.Sprintf("%s  %s  %s  %s",
			c.Name, style.ShortSHA(c.Commit), c.CreatedAt.Format("2006-01-02 15:04"), summary)
	}

	var selected string
	prompt := &survey.Select{
		Message: "Which backup should be restored?",
		Options: options,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", fmt.Errorf("canceled")
	}

	for i, option := range options {
		if option == selected {
			return candidates[i].Name, nil
		}
	}
	return "", fmt.Errorf("no tag selected")
}
