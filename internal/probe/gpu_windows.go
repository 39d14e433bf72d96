//go:build windows

package probe

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
)

// GPUProbe verifies the NVIDIA driver on Windows using the nvidia-smi CLI,
// which ships with the driver package.
type GPUProbe struct {
	output commandOutput
}

// NewGPUProbe creates the Windows GPU driver probe.
func NewGPUProbe() *GPUProbe {
	return &GPUProbe{output: runCommandOutput}
}

// Name implements Probe.
func (p *GPUProbe) Name() string { return gpuProbeName }

// Severity implements Probe. The management utility is expected on this
// platform, so a miss blocks the bootstrap.
func (p *GPUProbe) Severity() Severity { return Fatal }

// Check implements Probe. It queries driver version and device name in CSV
// form and passes when both come back non-empty.
func (p *GPUProbe) Check(ctx context.Context) (*Result, error) {
	out, err := p.output(ctx, "nvidia-smi",
		"--query-gpu=driver_version,name",
		"--format=csv,noheader")
	if err != nil {
		if strings.Contains(err.Error(), "executable file not found") {
			return &Result{
				Present: false,
				Details: "nvidia-smi not found - NVIDIA drivers may not be installed",
			}, nil
		}
		return &Result{
			Present: false,
			Details: fmt.Sprintf("nvidia-smi failed: %v: %s", err, strings.TrimSpace(out)),
		}, nil
	}

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil || len(records) == 0 || len(records[0]) < 2 {
		return &Result{
			Present: false,
			Details: fmt.Sprintf("could not parse nvidia-smi output: %q", strings.TrimSpace(out)),
		}, nil
	}

	driver := strings.TrimSpace(records[0][0])
	device := strings.TrimSpace(records[0][1])
	if driver == "" || device == "" {
		return &Result{
			Present: false,
			Details: "nvidia-smi returned an empty driver version or device name",
		}, nil
	}

	return &Result{
		Present: true,
		Details: fmt.Sprintf("driver %s, device %s", driver, device),
	}, nil
}

// Remediation implements Probe.
func (p *GPUProbe) Remediation() string { return gpuRemediation() }
