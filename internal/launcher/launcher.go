// Package launcher hands off to the long-running service inside the
// prepared isolated environment. It performs one launch, no supervision or
// restart policy.
package launcher

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/zm-ai/bootstrap/internal/envbuild"
	"github.com/zm-ai/bootstrap/internal/execctx"
)

// Launcher re-validates the environment activation state and execs the
// service entry point.
type Launcher struct {
	logger       *zap.Logger
	builder      *envbuild.Builder
	env          *envbuild.Environment
	execCtx      *execctx.ExecutionContext
	serviceEntry string

	checkPolicy  func(ctx context.Context) error
	findRunning  func(ctx context.Context, entryBase string) (int32, bool)
	startProcess func(ctx context.Context, name string, args, environ []string) error
}

// New creates a Launcher for the given environment and service entry point.
func New(logger *zap.Logger, builder *envbuild.Builder, env *envbuild.Environment, execCtx *execctx.ExecutionContext, serviceEntry string) *Launcher {
	l := &Launcher{
		logger:       logger,
		builder:      builder,
		env:          env,
		execCtx:      execCtx,
		serviceEntry: serviceEntry,
	}
	l.checkPolicy = checkExecutionPolicy
	l.findRunning = findRunningService
	l.startProcess = startService
	return l
}

// Launch validates the launch preconditions and hands off to the service.
// loop passes the service's continuous-loop mode flag through; all other
// configuration is read by the service from its own files.
func (l *Launcher) Launch(ctx context.Context, loop bool) error {
	// The policy gate runs before any other work on the platform that has
	// a restrictive script execution policy.
	if err := l.checkPolicy(ctx); err != nil {
		return err
	}

	if !envbuild.IsActive(l.execCtx, l.env) {
		l.logger.Info("Environment not active, activating",
			zap.String("root", l.env.Root),
		)
		if _, err := l.builder.Activate(l.execCtx, l.env); err != nil {
			return fmt.Errorf("cannot launch without an active environment: %w", err)
		}
	}

	// Probe and service output may contain non-ASCII characters; force the
	// child's text encoding so they survive redirection on Windows.
	l.execCtx.Set("PYTHONIOENCODING", "utf-8")

	entryBase := filepath.Base(l.serviceEntry)
	if pid, running := l.findRunning(ctx, entryBase); running {
		return fmt.Errorf("%s is already running (pid %d); refusing a duplicate launch", entryBase, pid)
	}

	args := []string{"-u", l.serviceEntry}
	if loop {
		args = append(args, "--loop")
	}

	l.logger.Info("Handing off to service",
		zap.String("python", l.env.Python),
		zap.Strings("args", args),
	)

	return l.startProcess(ctx, l.env.Python, args, l.execCtx.Environ())
}

// findRunningService scans process command lines for the service entry
// script. Scan errors are treated as "not running": the guard is
// best-effort and must not block a legitimate launch.
func findRunningService(ctx context.Context, entryBase string) (int32, bool) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return 0, false
	}

	for _, p := range procs {
		cmdline, err := p.CmdlineSliceWithContext(ctx)
		if err != nil {
			continue
		}
		for _, part := range cmdline {
			if strings.EqualFold(filepath.Base(part), entryBase) {
				return p.Pid, true
			}
		}
	}
	return 0, false
}

// startService runs the service with inherited stdio until it exits.
func startService(ctx context.Context, name string, args, environ []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = environ
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("service exited with error: %w", err)
	}
	return nil
}
