package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ChangelogFileName is the sync changelog, kept inside the .git directory so
// appending to it never dirties the workspace between runs.
const ChangelogFileName = "forksync-changelog.md"

// ChangelogEntry describes one completed sync run.
type ChangelogEntry struct {
	Date              time.Time
	UpstreamCommit    string
	NewCommitCount    int
	ConflictsResolved []string
	TestResult        string
	Promoted          bool
}

// AppendChangelog appends an entry to the sync changelog in gitDir.
func AppendChangelog(gitDir string, entry ChangelogEntry) error {
	f, err := os.OpenFile(filepath.Join(gitDir, ChangelogFileName),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open changelog: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", entry.Date.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- Upstream commit: %s\n", entry.UpstreamCommit)
	fmt.Fprintf(&b, "- New upstream commits: %d\n", entry.NewCommitCount)
	if len(entry.ConflictsResolved) > 0 {
		fmt.Fprintf(&b, "- Conflicts resolved: %s\n", strings.Join(entry.ConflictsResolved, ", "))
	} else {
		b.WriteString("- Conflicts resolved: none\n")
	}
	fmt.Fprintf(&b, "- Tests: %s\n", entry.TestResult)
	fmt.Fprintf(&b, "- Promoted: %t\n\n", entry.Promoted)

	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to append changelog: %w", err)
	}
	return nil
}
