package verify

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntrospectorWithOutput(raw string, lines []string, err error) *PythonIntrospector {
	p := NewPythonIntrospector("/install/venv/bin/python", "ultralytics", nil)
	p.output = func(ctx context.Context, name string, args ...string) (string, []string, error) {
		return raw, lines, err
	}
	return p
}

func TestDescribeParsesFourLines(t *testing.T) {
	p := newIntrospectorWithOutput("",
		[]string{"2.5.1+cu121", "12.1", "True", "NVIDIA GeForce RTX 4090"}, nil)

	info, err := p.Describe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.5.1+cu121", info.Version)
	assert.Equal(t, "12.1", info.RuntimeVersion)
	assert.Equal(t, "True", info.Available)
	assert.Equal(t, "NVIDIA GeForce RTX 4090", info.DeviceName)
}

func TestDescribeRejectsShortOutput(t *testing.T) {
	p := newIntrospectorWithOutput("2.5.1\n12.1\n", []string{"2.5.1", "12.1"}, nil)

	_, err := p.Describe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 4 expected lines")
}

func TestDescribePropagatesInvocationFailure(t *testing.T) {
	p := newIntrospectorWithOutput("Traceback ...\nModuleNotFoundError: No module named 'torch'",
		nil, fmt.Errorf("exit status 1"))

	_, err := p.Describe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No module named 'torch'")
}

func TestModelVersionSingleLine(t *testing.T) {
	p := newIntrospectorWithOutput("", []string{"8.3.0"}, nil)

	version, err := p.ModelVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "8.3.0", version)
}

func TestModelVersionImportFailure(t *testing.T) {
	p := newIntrospectorWithOutput("ModuleNotFoundError: No module named 'ultralytics'",
		nil, fmt.Errorf("exit status 1"))

	_, err := p.ModelVersion(context.Background())
	require.Error(t, err)
}
