//go:build linux

package probe

import (
	"context"
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// GPUProbe checks the NVIDIA driver on Linux through NVML. The check is
// advisory here: a CPU-only machine is a valid deployment target and the
// post-install verifier reports accelerator availability on its own.
type GPUProbe struct{}

// NewGPUProbe creates the Linux GPU driver probe.
func NewGPUProbe() *GPUProbe {
	return &GPUProbe{}
}

// Name implements Probe.
func (p *GPUProbe) Name() string { return gpuProbeName }

// Severity implements Probe.
func (p *GPUProbe) Severity() Severity { return Advisory }

// Check implements Probe. NVML must be initialized before any other call
// and shut down when done.
func (p *GPUProbe) Check(ctx context.Context) (*Result, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("gpu probe cancelled: %w", ctx.Err())
	default:
	}

	ret := nvml.Init()
	if ret != nvml.SUCCESS {
		return &Result{
			Present: false,
			Details: fmt.Sprintf("NVML initialization failed: %s", nvml.ErrorString(ret)),
		}, nil
	}
	defer func() { _ = nvml.Shutdown() }()

	driver, ret := nvml.SystemGetDriverVersion()
	if ret != nvml.SUCCESS {
		return &Result{
			Present: false,
			Details: fmt.Sprintf("could not read driver version: %s", nvml.ErrorString(ret)),
		}, nil
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS || count == 0 {
		return &Result{
			Present: false,
			Details: fmt.Sprintf("driver %s present but no NVIDIA GPUs found", driver),
		}, nil
	}

	device, ret := nvml.DeviceGetHandleByIndex(0)
	if ret != nvml.SUCCESS {
		return &Result{
			Present: false,
			Details: fmt.Sprintf("could not open device 0: %s", nvml.ErrorString(ret)),
		}, nil
	}

	name, ret := device.GetName()
	if ret != nvml.SUCCESS {
		name = "unknown device"
	}

	return &Result{
		Present: true,
		Details: fmt.Sprintf("driver %s, device %s", driver, name),
	}, nil
}

// Remediation implements Probe.
func (p *GPUProbe) Remediation() string { return gpuRemediation() }
