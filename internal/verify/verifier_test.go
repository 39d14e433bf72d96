package verify

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zm-ai/bootstrap/internal/compat"
)

// remediationMarker is a line unique to the remediation block, used to count
// how many times the block was printed.
const remediationMarker = "--- recommended stack ---"

type fakeIntrospector struct {
	info     *FrameworkInfo
	infoErr  error
	model    string
	modelErr error
}

func (f *fakeIntrospector) Describe(ctx context.Context) (*FrameworkInfo, error) {
	return f.info, f.infoErr
}

func (f *fakeIntrospector) ModelVersion(ctx context.Context) (string, error) {
	return f.model, f.modelErr
}

func newTestVerifier(in Introspector) (*Verifier, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &Verifier{
		Introspector: in,
		Logger:       zap.NewNop(),
		Out:          out,
		framework:    compat.Framework,
		runtime:      compat.AcceleratorRuntime,
	}, out
}

func TestVerifyAllChecksPass(t *testing.T) {
	v, out := newTestVerifier(&fakeIntrospector{
		info: &FrameworkInfo{
			Version:        "2.5.1",
			RuntimeVersion: "12.1",
			Available:      "True",
			DeviceName:     "NVIDIA RTX 4090",
		},
		model: "8.3.0",
	})

	report := v.Verify(context.Background())

	assert.False(t, report.Failed)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, "NVIDIA RTX 4090", report.DeviceName)
	assert.Equal(t, "8.3.0", report.ModelVersion)
	assert.Zero(t, strings.Count(out.String(), remediationMarker))
}

func TestVerifyFrameworkVersionOutOfRange(t *testing.T) {
	v, out := newTestVerifier(&fakeIntrospector{
		info: &FrameworkInfo{
			Version:        "2.6.0",
			RuntimeVersion: "12.1",
			Available:      "True",
			DeviceName:     "NVIDIA RTX 4090",
		},
		model: "8.3.0",
	})

	report := v.Verify(context.Background())

	// Exactly one warning: the other two checks pass but still execute.
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "2.6.0")
	assert.Equal(t, 1, strings.Count(out.String(), remediationMarker))
}

func TestVerifyTwoIndependentWarnings(t *testing.T) {
	v, out := newTestVerifier(&fakeIntrospector{
		info: &FrameworkInfo{
			Version:        "2.5.1",
			RuntimeVersion: "11.8",
			Available:      "False",
			DeviceName:     "no device",
		},
		model: "8.3.0",
	})

	report := v.Verify(context.Background())

	require.Len(t, report.Warnings, 2)
	assert.Contains(t, report.Warnings[0], "11.8")
	assert.Contains(t, report.Warnings[1], "not available")

	// The remediation block repeats per warning; duplication is accepted.
	assert.Equal(t, 2, strings.Count(out.String(), remediationMarker))
}

func TestVerifyIntrospectionFailure(t *testing.T) {
	v, out := newTestVerifier(&fakeIntrospector{
		infoErr: fmt.Errorf("ModuleNotFoundError: No module named 'torch'"),
		model:   "8.3.0",
	})

	report := v.Verify(context.Background())

	assert.True(t, report.Failed)
	assert.Empty(t, report.FrameworkVersion)
	assert.Contains(t, out.String(), "No module named 'torch'")
	assert.Equal(t, 1, strings.Count(out.String(), remediationMarker))

	// The model sub-check still runs on framework failure.
	assert.Equal(t, "8.3.0", report.ModelVersion)
}

func TestVerifyModelLibraryFailureIsLocal(t *testing.T) {
	v, out := newTestVerifier(&fakeIntrospector{
		info: &FrameworkInfo{
			Version:        "2.5.1",
			RuntimeVersion: "12.1",
			Available:      "True",
			DeviceName:     "NVIDIA RTX 4090",
		},
		modelErr: fmt.Errorf("ModuleNotFoundError: No module named 'ultralytics'"),
	})

	report := v.Verify(context.Background())

	assert.False(t, report.Failed)
	assert.Empty(t, report.Warnings)
	assert.Empty(t, report.ModelVersion)
	assert.Contains(t, out.String(), "pip install ultralytics")
}
