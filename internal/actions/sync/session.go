package sync

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects between interactive and unattended pipeline runs.
type Mode string

// The pipeline modes.
const (
	ModeManual Mode = "manual"
	ModeAuto   Mode = "auto"
)

// TestResult classifies the verification command outcome.
type TestResult string

// The test gate outcomes. Skipped means no verification command was
// discoverable; it does not block promotion but is reported distinctly
// from passed.
const (
	TestPassed  TestResult = "passed"
	TestFailed  TestResult = "failed"
	TestSkipped TestResult = "skipped"
)

// Session tracks one pipeline execution. It lives only for the duration of
// a run; its fields feed the run summary and the changelog entry.
type Session struct {
	Timestamp      time.Time
	Mode           Mode
	UpstreamCommit string
	NewCommitCount int
	BackupTags     []string
	ConflictFiles  []string
	TestResult     TestResult
	Promoted       bool
}

// NewSession starts a session record for the current run.
func NewSession(mode Mode) *Session {
	return &Session{
		Timestamp:  time.Now(),
		Mode:       mode,
		TestResult: TestSkipped,
	}
}

// RecordBackup adds a backup tag name to the session record.
func (s *Session) RecordBackup(name string) {
	s.BackupTags = append(s.BackupTags, name)
}

// Summary renders the human-readable run summary.
func (s *Session) Summary() string {
	var b strings.Builder
	b.WriteString("Sync session summary\n")
	fmt.Fprintf(&b, "  started:        %s\n", s.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "  mode:           %s\n", s.Mode)
	fmt.Fprintf(&b, "  new commits:    %d\n", s.NewCommitCount)
	if len(s.BackupTags) > 0 {
		fmt.Fprintf(&b, "  backup tags:    %s\n", strings.Join(s.BackupTags, ", "))
	} else {
		b.WriteString("  backup tags:    none\n")
	}
	if len(s.ConflictFiles) > 0 {
		fmt.Fprintf(&b, "  conflicts:      %s\n", strings.Join(s.ConflictFiles, ", "))
	}
	fmt.Fprintf(&b, "  tests:          %s\n", s.TestResult)
	fmt.Fprintf(&b, "  promoted:       %t\n", s.Promoted)
	return b.String()
}
