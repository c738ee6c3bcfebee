// Package errors provides sentinel errors and custom error types for the forksync application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrNotARepository indicates the working directory is not inside a git repository
	ErrNotARepository = errors.New("not a git repository")

	// ErrMissingRemote indicates a required remote is not configured
	ErrMissingRemote = errors.New("remote not configured")

	// ErrDirtyWorkspace indicates uncommitted local changes block the pipeline
	ErrDirtyWorkspace = errors.New("uncommitted changes in workspace")

	// ErrMergeConflict indicates a merge stopped on file-level conflicts
	ErrMergeConflict = errors.New("merge conflict")

	// ErrTestsFailed indicates the verification command exited nonzero
	ErrTestsFailed = errors.New("tests failed")

	// ErrPushRejected indicates a force-with-lease push was refused by the remote
	ErrPushRejected = errors.New("push rejected")

	// ErrLockHeld indicates another sync session holds the repository lease
	ErrLockHeld = errors.New("sync lease held by another session")

	// ErrBackupTagNotFound indicates the requested backup tag does not exist
	ErrBackupTagNotFound = errors.New("backup tag not found")

	// ErrNoMergeInProgress indicates no conflicted merge exists to resolve
	ErrNoMergeInProgress = errors.New("no merge in progress")
)

// MissingRemoteError reports a remote that is required but absent.
type MissingRemoteError struct {
	Remote string
}

func (e *MissingRemoteError) Error() string {
	return fmt.Sprintf("remote %q is not configured", e.Remote)
}

// Is returns true if the target error is ErrMissingRemote
func (e *MissingRemoteError) Is(target error) bool {
	return target == ErrMissingRemote
}

// NewMissingRemoteError creates a new MissingRemoteError
func NewMissingRemoteError(remote string) *MissingRemoteError {
	return &MissingRemoteError{Remote: remote}
}

// MergeConflictError reports a merge halted on conflicting paths.
type MergeConflictError struct {
	Source string
	Target string
	Files  []string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("merging %s into %s conflicted in %d file(s): %s",
		e.Source, e.Target, len(e.Files), strings.Join(e.Files, ", "))
}

// Is returns true if the target error is ErrMergeConflict
func (e *MergeConflictError) Is(target error) bool {
	return target == ErrMergeConflict
}

// NewMergeConflictError creates a new MergeConflictError
func NewMergeConflictError(source, target string, files []string) *MergeConflictError {
	return &MergeConflictError{Source: source, Target: target, Files: files}
}

// TestFailureError reports a failed verification command.
type TestFailureError struct {
	Command  string
	ExitCode int
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("verification command %q failed with exit code %d", e.Command, e.ExitCode)
}

// Is returns true if the target error is ErrTestsFailed
func (e *TestFailureError) Is(target error) bool {
	return target == ErrTestsFailed
}

// NewTestFailureError creates a new TestFailureError
func NewTestFailureError(command string, exitCode int) *TestFailureError {
	return &TestFailureError{Command: command, ExitCode: exitCode}
}

// PushRejectedError reports a force-with-lease push refused because the
// remote moved past the last fetched state.
type PushRejectedError struct {
	Branch string
	Remote string
	Err    error
}

func (e *PushRejectedError) Error() string {
	return fmt.Sprintf("push of %s to %s rejected: remote has advanced past the fetched state", e.Branch, e.Remote)
}

// Is returns true if the target error is ErrPushRejected
func (e *PushRejectedError) Is(target error) bool {
	return target == ErrPushRejected
}

func (e *PushRejectedError) Unwrap() error {
	return e.Err
}

// NewPushRejectedError creates a new PushRejectedError
func NewPushRejectedError(branch, remote string, err error) *PushRejectedError {
	return &PushRejectedError{Branch: branch, Remote: remote, Err: err}
}

// LockHeldError reports a sync lease owned by a different live session.
type LockHeldError struct {
	Owner string
	PID   int
}

func (e *LockHeldError) Error() string {
	return fmt.Sprintf("sync lease held by %s (pid %d)", e.Owner, e.PID)
}

// Is returns true if the target error is ErrLockHeld
func (e *LockHeldError) Is(target error) bool {
	return target == ErrLockHeld
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}
