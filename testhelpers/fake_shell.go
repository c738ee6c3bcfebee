package testhelpers

import (
	"context"

	"forksync.dev/forksync/internal/shell"
)

// FakeShell is a shell.Runner that returns scripted results and records
// every invocation.
type FakeShell struct {
	// Results maps a command line to its scripted outcome. Commands not
	// present succeed with an empty result.
	Results map[string]shell.Result

	// Err, when set, is returned from every Run call.
	Err error

	// Commands records the command lines passed to Run, in order.
	Commands []string

	// Env records the extra environment passed with each Run call.
	Env [][]string
}

var _ shell.Runner = (*FakeShell)(nil)

// NewFakeShell creates a FakeShell with no scripted results.
func NewFakeShell() *FakeShell {
	return &FakeShell{Results: map[string]shell.Result{}}
}

// Script sets the result for a command line.
func (f *FakeShell) Script(command string, result shell.Result) {
	if f.Results == nil {
		f.Results = map[string]shell.Result{}
	}
	f.Results[command] = result
}

// Run records the invocation and returns the scripted result.
func (f *FakeShell) Run(_ context.Context, command string, extraEnv ...string) (shell.Result, error) {
	f.Commands = append(f.Commands, command)
	f.Env = append(f.Env, extraEnv)
	if f.Err != nil {
		return shell.Result{}, f.Err
	}
	return f.Results[command], nil
}

// RunInteractive records the invocation and succeeds.
func (f *FakeShell) RunInteractive(_ context.Context, name string, args ...string) error {
	f.Commands = append(f.Commands, name)
	return f.Err
}
