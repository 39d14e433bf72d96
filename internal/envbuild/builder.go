// Package envbuild creates, reuses, and activates the isolated dependency
// environment the service runs in. There is at most one environment per
// installation folder: an existing root is reused as-is and never recreated.
package envbuild

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/zm-ai/bootstrap/internal/execctx"
	"github.com/zm-ai/bootstrap/internal/installer"
)

// markerVar is the environment variable the activation side effect sets.
// Its presence with the environment root as value means activation already
// happened in this process context.
const markerVar = "VIRTUAL_ENV"

// Environment describes an isolated dependency environment on disk.
type Environment struct {
	// Root is the absolute environment directory
	Root string

	// BinDir holds the isolated interpreter and package-manager binaries
	BinDir string

	// Python is the isolated interpreter path
	Python string

	// ActivateScript is the activation entry point whose existence marks
	// the environment as materialized
	ActivateScript string

	// Created reports whether this run created the environment (false when
	// an existing root was reused)
	Created bool
}

// Builder ensures the isolated environment exists and activates it for the
// current process context.
type Builder struct {
	// Fs is the filesystem the builder stats and polls against
	Fs afero.Fs

	// Logger receives structured progress output
	Logger *zap.Logger

	// Runner executes the environment-creation command
	Runner installer.Runner

	// Python is the system interpreter used to create the environment
	Python string

	// PollAttempts bounds the wait for the activation entry point to appear
	// after creation; exceeding it is fatal to the bootstrap
	PollAttempts int

	// PollInterval is the backoff between poll attempts
	PollInterval time.Duration
}

// NewBuilder creates a Builder against the real filesystem.
func NewBuilder(logger *zap.Logger, runner installer.Runner, python string, pollAttempts int, pollInterval time.Duration) *Builder {
	return &Builder{
		Fs:           afero.NewOsFs(),
		Logger:       logger,
		Runner:       runner,
		Python:       python,
		PollAttempts: pollAttempts,
		PollInterval: pollInterval,
	}
}

// Describe resolves the platform-specific layout of an environment rooted at
// envRoot without touching the filesystem.
func Describe(envRoot string) (*Environment, error) {
	root, err := filepath.Abs(envRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving environment root %q: %w", envRoot, err)
	}

	env := &Environment{Root: root}
	if runtime.GOOS == "windows" {
		env.BinDir = filepath.Join(root, "Scripts")
		env.Python = filepath.Join(env.BinDir, "python.exe")
		env.ActivateScript = filepath.Join(env.BinDir, "activate.bat")
	} else {
		env.BinDir = filepath.Join(root, "bin")
		env.Python = filepath.Join(env.BinDir, "python")
		env.ActivateScript = filepath.Join(env.BinDir, "activate")
	}
	return env, nil
}

// Ensure makes sure an isolated environment exists at envRoot, creating it
// when absent and reusing it untouched when present. After creation it polls
// for the activation entry point, since environment creation can complete
// before the files become visible to the caller.
func (b *Builder) Ensure(ctx context.Context, execCtx *execctx.ExecutionContext, envRoot string) (*Environment, error) {
	env, err := Describe(envRoot)
	if err != nil {
		return nil, err
	}

	exists, err := afero.DirExists(b.Fs, env.Root)
	if err != nil {
		return nil, fmt.Errorf("checking environment root: %w", err)
	}

	if exists {
		// Reused as-is, no integrity check. A corrupted environment is
		// surfaced later by the install or verification steps.
		b.Logger.Info("Reusing existing environment",
			zap.String("root", env.Root),
		)
		return env, nil
	}

	b.Logger.Info("Creating isolated environment",
		zap.String("root", env.Root),
		zap.String("python", b.Python),
	)

	create := installer.Command{
		Name: b.Python,
		Args: []string{"-m", "venv", env.Root},
		Env:  execCtx.Environ(),
	}
	if err := b.Runner.Run(ctx, create); err != nil {
		return nil, fmt.Errorf("creating environment at %s: %w", env.Root, err)
	}

	if err := b.waitForActivation(ctx, env); err != nil {
		return nil, err
	}

	env.Created = true
	return env, nil
}

// waitForActivation polls for the activation entry point a bounded number
// of times.
func (b *Builder) waitForActivation(ctx context.Context, env *Environment) error {
	for attempt := 1; attempt <= b.PollAttempts; attempt++ {
		found, err := afero.Exists(b.Fs, env.ActivateScript)
		if err != nil {
			return fmt.Errorf("checking activation script: %w", err)
		}
		if found {
			return nil
		}

		b.Logger.Debug("Waiting for activation script",
			zap.String("path", env.ActivateScript),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", b.PollAttempts),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("environment setup cancelled: %w", ctx.Err())
		case <-time.After(b.PollInterval):
		}
	}

	return fmt.Errorf("environment setup failed: activation script %s never appeared after %d attempts",
		env.ActivateScript, b.PollAttempts)
}

// Activate mutates the execution context so spawned package-manager and
// interpreter invocations resolve to the isolated copies: sets the marker
// variable, prepends the environment's binary directory to the search path,
// and clears PYTHONHOME. Activation is idempotent; an already-active
// environment is reported and left alone.
func (b *Builder) Activate(execCtx *execctx.ExecutionContext, env *Environment) (alreadyActive bool, err error) {
	if execCtx.Get(markerVar) == env.Root {
		b.Logger.Info("Environment already active",
			zap.String("root", env.Root),
		)
		return true, nil
	}

	found, err := afero.Exists(b.Fs, env.ActivateScript)
	if err != nil {
		return false, fmt.Errorf("checking activation script: %w", err)
	}
	if !found {
		return false, fmt.Errorf("activation script %s is missing; the environment at %s is not usable",
			env.ActivateScript, env.Root)
	}

	execCtx.Set(markerVar, env.Root)
	execCtx.PrependPath(env.BinDir)
	// A stray PYTHONHOME would redirect the isolated interpreter back to
	// the system installation.
	execCtx.Unset("PYTHONHOME")

	b.Logger.Info("Environment activated",
		zap.String("root", env.Root),
		zap.String("bin_dir", env.BinDir),
	)
	return false, nil
}

// IsActive reports whether env is the active environment in execCtx.
func IsActive(execCtx *execctx.ExecutionContext, env *Environment) bool {
	return execCtx.Get(markerVar) == env.Root
}
