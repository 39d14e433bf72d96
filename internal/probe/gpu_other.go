//go:build !linux && !windows

package probe

import (
	"context"
	"runtime"
)

// GPUProbe on platforms without NVIDIA driver support always reports a
// non-blocking miss.
type GPUProbe struct{}

// NewGPUProbe creates the GPU driver probe.
func NewGPUProbe() *GPUProbe {
	return &GPUProbe{}
}

// Name implements Probe.
func (p *GPUProbe) Name() string { return gpuProbeName }

// Severity implements Probe.
func (p *GPUProbe) Severity() Severity { return Advisory }

// Check implements Probe.
func (p *GPUProbe) Check(ctx context.Context) (*Result, error) {
	return &Result{
		Present: false,
		Details: "NVIDIA GPU detection not supported on " + runtime.GOOS,
	}, nil
}

// Remediation implements Probe.
func (p *GPUProbe) Remediation() string { return gpuRemediation() }
