// Package backup creates and lists the immutable snapshot tags taken before
// every destructive branch operation. Tags live under backup/ for pipeline
// snapshots and emergency/ for snapshots taken by a rollback itself, and are
// never deleted automatically.
package backup

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	forksyncerrors "forksync.dev/forksync/internal/errors"
	"forksync.dev/forksync/internal/git"
)

// Role identifies which branch role a snapshot was taken from.
type Role string

// The branch roles.
const (
	RoleMirror      Role = "mirror"
	RoleIntegration Role = "integration"
	RoleProduction  Role = "production"
)

// TimestampFormat is the session timestamp embedded in tag names.
const TimestampFormat = "20060102-150405"

// Tag is an immutable snapshot of a branch tip.
type Tag struct {
	Name      string
	Role      Role
	Commit    string
	CreatedAt time.Time
}

// Create tags the current tip of a branch under backup/<role>-<timestamp>.
// The branch tip is recorded before any mutation so the pre-change commit
// stays addressable.
func Create(ctx context.Context, role Role, branch string, timestamp time.Time) (*Tag, error) {
	return create(ctx, "backup", role, branch, timestamp)
}

// CreateEmergency tags the current tip of a branch under
// emergency/<role>-<timestamp>. Taken by the rollback manager before it
// resets anything, so rollback is itself reversible.
func CreateEmergency(ctx context.Context, role Role, branch string, timestamp time.Time) (*Tag, error) {
	return create(ctx, "emergency", role, branch, timestamp)
}

func create(ctx context.Context, namespace string, role Role, branch string, timestamp time.Time) (*Tag, error) {
	commit, err := git.GetRevision(branch)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s for backup: %w", branch, err)
	}

	name := fmt.Sprintf("%s/%s-%s", namespace, role, timestamp.Format(TimestampFormat))
	message := fmt.Sprintf("forksync %s of %s (%s) at %s",
		namespace, branch, role, timestamp.Format(time.RFC3339))

	if err := git.CreateTag(ctx, name, commit, message); err != nil {
		return nil, err
	}

	return &Tag{
		Name:      name,
		Role:      role,
		Commit:    commit,
		CreatedAt: timestamp,
	}, nil
}

// List returns all backup and emergency tags, most recent first.
func List() ([]Tag, error) {
	var tags []Tag
	for _, pattern := range []string{"backup/*", "emergency/*"} {
		infos, err := git.ListTags(pattern)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			tags = append(tags, Tag{
				Name:      info.Name,
				Role:      roleFromName(info.Name),
				Commit:    info.Commit,
				CreatedAt: info.CreatedAt,
			})
		}
	}

	// Merge the two namespaces into one recency ordering
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].CreatedAt.After(tags[j].CreatedAt)
	})
	return tags, nil
}

// Resolve looks up a tag by name and returns its snapshot record.
func Resolve(name string) (*Tag, error) {
	exists, err := git.TagExists(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", forksyncerrors.ErrBackupTagNotFound, name)
	}

	commit, err := git.GetTagCommit(name)
	if err != nil {
		return nil, err
	}
	return &Tag{Name: name, Role: roleFromName(name), Commit: commit}, nil
}

// IsEmergency reports whether a tag belongs to the emergency namespace.
func (t *Tag) IsEmergency() bool {
	return strings.HasPrefix(t.Name, "emergency/")
}

// GroupTimestamp returns the session timestamp embedded in the tag name,
// or "" if the name does not follow the backup naming scheme.
func (t *Tag) GroupTimestamp() string {
	base := t.Name
	if i := strings.IndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.IndexByte(base, '-'); i >= 0 {
		return base[i+1:]
	}
	return ""
}

// GroupMembers returns the tags in the same namespace sharing this tag's
// session timestamp, one per role that was snapshotted.
func (t *Tag) GroupMembers() ([]Tag, error) {
	ts := t.GroupTimestamp()
	if ts == "" {
		return []Tag{*t}, nil
	}

	namespace := "backup"
	if t.IsEmergency() {
		namespace = "emergency"
	}

	infos, err := git.ListTags(namespace + "/*-" + ts)
	if err != nil {
		return nil, err
	}

	members := make([]Tag, 0, len(infos))
	for _, info := range infos {
		members = append(members, Tag{
			Name:      info.Name,
			Role:      roleFromName(info.Name),
			Commit:    info.Commit,
			CreatedAt: info.CreatedAt,
		})
	}
	return members, nil
}

// roleFromName parses the role out of backup/<role>-<ts> or
// emergency/<role>-<ts>.
func roleFromName(name string) Role {
	base := name
	if i := strings.IndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	for _, role := range []Role{RoleMirror, RoleIntegration, RoleProduction} {
		if strings.HasPrefix(base, string(role)+"-") {
			return role
		}
	}
	return ""
}
