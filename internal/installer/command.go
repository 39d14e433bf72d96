// Package installer plans and executes the sequential package-manager
// invocations that populate the isolated environment. Planning is pure so
// the full installation plan can be asserted on in tests without invoking
// any package manager; execution is a thin runner around os/exec.
package installer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Command is one package-manager invocation with the environment it runs
// under. Env nil means inherit the runner process environment.
type Command struct {
	Name string
	Args []string
	Env  []string
}

// String renders the command for logs.
func (c Command) String() string {
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Step is one named installation step.
type Step struct {
	// Desc is a short operator-facing description of the step
	Desc string

	// Cmd is the invocation performing it
	Cmd Command
}

// Runner executes planned commands.
// Using an interface allows for easy mocking in unit tests.
type Runner interface {
	// Run executes one command to completion. A non-zero exit is returned
	// as an error; the caller decides whether the run continues.
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner implements Runner using os/exec, streaming the child's output
// to the operator's console.
type ExecRunner struct {
	logger *zap.Logger
}

// NewExecRunner creates a runner that logs each invocation.
func NewExecRunner(logger *zap.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, command Command) error {
	r.logger.Info("Running command",
		zap.String("command", command.String()),
	)

	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	if command.Env != nil {
		cmd.Env = command.Env
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", command.String(), err)
	}
	return nil
}
