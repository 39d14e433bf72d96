package envbuild

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zm-ai/bootstrap/internal/execctx"
	"github.com/zm-ai/bootstrap/internal/installer"
)

// recordingRunner captures commands and optionally materializes the
// environment on the fake filesystem, the way a real venv creation would.
type recordingRunner struct {
	fs       afero.Fs
	commands []installer.Command
	onCreate func(fs afero.Fs)
	err      error
}

func (r *recordingRunner) Run(ctx context.Context, cmd installer.Command) error {
	r.commands = append(r.commands, cmd)
	if r.err != nil {
		return r.err
	}
	if r.onCreate != nil {
		r.onCreate(r.fs)
	}
	return nil
}

func newTestBuilder(fs afero.Fs, runner installer.Runner) *Builder {
	return &Builder{
		Fs:           fs,
		Logger:       zap.NewNop(),
		Runner:       runner,
		Python:       "python",
		PollAttempts: 3,
		PollInterval: time.Millisecond,
	}
}

func TestEnsureCreatesMissingEnvironment(t *testing.T) {
	fs := afero.NewMemMapFs()
	env, err := Describe("/install/venv")
	require.NoError(t, err)

	runner := &recordingRunner{
		fs: fs,
		onCreate: func(fs afero.Fs) {
			require.NoError(t, afero.WriteFile(fs, env.ActivateScript, []byte("activate"), 0o755))
		},
	}
	b := newTestBuilder(fs, runner)

	got, err := b.Ensure(context.Background(), execctx.New(), "/install/venv")
	require.NoError(t, err)
	assert.True(t, got.Created)
	assert.Equal(t, env.Root, got.Root)

	require.Len(t, runner.commands, 1)
	assert.Equal(t, "python", runner.commands[0].Name)
	assert.Equal(t, []string{"-m", "venv", env.Root}, runner.commands[0].Args)
}

func TestEnsureReusesExistingEnvironment(t *testing.T) {
	fs := afero.NewMemMapFs()
	env, err := Describe("/install/venv")
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll(env.Root, 0o755))

	runner := &recordingRunner{fs: fs}
	b := newTestBuilder(fs, runner)

	got, err := b.Ensure(context.Background(), execctx.New(), "/install/venv")
	require.NoError(t, err)
	assert.False(t, got.Created)

	// Idempotence: no re-creation command is issued for an existing root.
	assert.Empty(t, runner.commands)
}

func TestEnsureFailsWhenActivationScriptNeverAppears(t *testing.T) {
	fs := afero.NewMemMapFs()
	runner := &recordingRunner{fs: fs} // creates nothing
	b := newTestBuilder(fs, runner)

	_, err := b.Ensure(context.Background(), execctx.New(), "/install/venv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "never appeared")
	assert.Contains(t, err.Error(), "3 attempts")
}

func TestEnsurePropagatesCreationFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	runner := &recordingRunner{fs: fs, err: fmt.Errorf("venv exploded")}
	b := newTestBuilder(fs, runner)

	_, err := b.Ensure(context.Background(), execctx.New(), "/install/venv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "venv exploded")
}

func TestActivateMutatesExecutionContext(t *testing.T) {
	fs := afero.NewMemMapFs()
	env, err := Describe("/install/venv")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, env.ActivateScript, []byte("activate"), 0o755))

	b := newTestBuilder(fs, &recordingRunner{fs: fs})

	execCtx := execctx.New()
	execCtx.Set("PATH", "/usr/bin")
	execCtx.Set("PYTHONHOME", "/usr")

	already, err := b.Activate(execCtx, env)
	require.NoError(t, err)
	assert.False(t, already)

	assert.Equal(t, env.Root, execCtx.Get("VIRTUAL_ENV"))
	assert.Equal(t, env.BinDir, execCtx.PathEntries()[0])
	assert.Empty(t, execCtx.Get("PYTHONHOME"))
	assert.True(t, IsActive(execCtx, env))
}

func TestActivateIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	env, err := Describe("/install/venv")
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, env.ActivateScript, []byte("activate"), 0o755))

	b := newTestBuilder(fs, &recordingRunner{fs: fs})
	execCtx := execctx.New()

	_, err = b.Activate(execCtx, env)
	require.NoError(t, err)
	pathAfterFirst := execCtx.Get("PATH")

	already, err := b.Activate(execCtx, env)
	require.NoError(t, err)
	assert.True(t, already)
	// No double PATH prepend on re-activation.
	assert.Equal(t, pathAfterFirst, execCtx.Get("PATH"))
}

func TestActivateFailsWithoutActivationScript(t *testing.T) {
	fs := afero.NewMemMapFs()
	env, err := Describe("/install/venv")
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll(env.Root, 0o755))

	b := newTestBuilder(fs, &recordingRunner{fs: fs})

	_, err = b.Activate(execctx.New(), env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}
