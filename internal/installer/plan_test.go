package installer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zm-ai/bootstrap/internal/config"
)

func TestPlanStepOrder(t *testing.T) {
	cfg := config.DefaultConfig()
	environ := []string{"VIRTUAL_ENV=/install/venv"}

	steps := Plan("/install/venv/bin/python", cfg, environ)
	require.Len(t, steps, 4)

	assert.Equal(t, "upgrade pip", steps[0].Desc)
	assert.Equal(t, "install base requirements", steps[1].Desc)
	assert.Equal(t, "install ML framework (CUDA build)", steps[2].Desc)
	assert.Equal(t, "install detection model library", steps[3].Desc)

	// Every step runs through the isolated interpreter with the activated
	// environment applied.
	for _, step := range steps {
		assert.Equal(t, "/install/venv/bin/python", step.Cmd.Name)
		assert.Equal(t, environ, step.Cmd.Env)
	}
}

func TestPlanPipUpgrade(t *testing.T) {
	steps := Plan("python", config.DefaultConfig(), nil)
	assert.Equal(t, []string{"-m", "pip", "install", "--upgrade", "pip"}, steps[0].Cmd.Args)
}

func TestPlanBaseManifest(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RequirementsFile = "deps/requirements.txt"

	steps := Plan("python", cfg, nil)
	assert.Equal(t, []string{"-m", "pip", "install", "-r", "deps/requirements.txt"}, steps[1].Cmd.Args)
}

func TestPlanFrameworkTriadIsPinnedAndIndexRedirected(t *testing.T) {
	steps := Plan("python", config.DefaultConfig(), nil)
	args := steps[2].Cmd.Args

	assert.Contains(t, args, "torch==2.5.1+cu121")
	assert.Contains(t, args, "torchvision==0.20.1+cu121")
	assert.Contains(t, args, "torchaudio==2.5.1+cu121")

	// The triad comes from the accelerator-specific index, not PyPI.
	require.Contains(t, args, "--index-url")
	assert.Contains(t, args, "https://download.pytorch.org/whl/cu121")
}

func TestPlanModelLibraryIsUnpinned(t *testing.T) {
	steps := Plan("python", config.DefaultConfig(), nil)
	args := steps[3].Cmd.Args

	assert.Contains(t, args, "ultralytics")
	for _, arg := range args {
		assert.NotContains(t, arg, "ultralytics==")
	}
}
