// Package shell wraps external tool invocation behind a narrow interface so
// the pipeline can be tested with a fake implementation.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommandTimeout is the default timeout for external commands
const DefaultCommandTimeout = 15 * time.Minute

// Result holds the outcome of an external command invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes external commands. The real implementation shells out;
// tests substitute a fake that records invocations.
type Runner interface {
	// Run executes a command line through the system shell and returns its
	// outcome. A nonzero exit code is not an error; err is reserved for
	// failures to start the command at all.
	Run(ctx context.Context, command string, extraEnv ...string) (Result, error)

	// RunInteractive executes a command with stdin/stdout/stderr connected
	// to the terminal. Used for editors and other interactive tools.
	RunInteractive(ctx context.Context, name string, args ...string) error
}

// ExecRunner is the standard Runner implementation backed by os/exec.
type ExecRunner struct {
	// Dir is the working directory for commands. Empty means the
	// process working directory.
	Dir string
}

// NewExecRunner creates an ExecRunner rooted at dir.
func NewExecRunner(dir string) *ExecRunner {
	return &ExecRunner{Dir: dir}
}

// Run executes a command line via `sh -c`.
func (r *ExecRunner) Run(ctx context.Context, command string, extraEnv ...string) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: strings.TrimRight(stdout.String(), "\n"),
		Stderr: strings.TrimRight(stderr.String(), "\n"),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}
	return result, nil
}

// RunInteractive executes a command connected to the terminal.
func (r *ExecRunner) RunInteractive(ctx context.Context, name string, args ...string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
