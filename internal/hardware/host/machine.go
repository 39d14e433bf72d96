// Package host provides host machine information using gopsutil. The
// bootstrap logs a machine summary up front so failure reports carry the
// platform context.
package host

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	hostinfo "github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfo contains information about the host machine.
type HostInfo struct {
	// Hostname is the system hostname
	Hostname string `json:"hostname"`

	// OS is the operating system (e.g., "linux", "windows")
	OS string `json:"os"`

	// Platform provides more specific OS information (e.g., "ubuntu")
	Platform string `json:"platform"`

	// PlatformVersion is the version of the platform
	PlatformVersion string `json:"platform_version"`

	// KernelArch is the kernel architecture (e.g., "x86_64")
	KernelArch string `json:"kernel_arch"`

	// TotalRAM is the total system memory in gigabytes
	TotalRAM float64 `json:"total_ram_gb"`

	// CPUModel is the CPU model name (first CPU if multiple)
	CPUModel string `json:"cpu_model"`

	// CPUThreads is the number of logical CPU threads
	CPUThreads int `json:"cpu_threads"`
}

// Collector is the interface for host information collection.
// Using an interface allows for easy mocking in unit tests.
type Collector interface {
	// Collect gathers host machine information.
	Collect(ctx context.Context) (*HostInfo, error)
}

// GopsutilCollector implements Collector using the gopsutil library.
type GopsutilCollector struct{}

// NewGopsutilCollector creates a new gopsutil-based host collector.
func NewGopsutilCollector() *GopsutilCollector {
	return &GopsutilCollector{}
}

// Collect implements the Collector interface.
func (c *GopsutilCollector) Collect(ctx context.Context) (*HostInfo, error) {
	info := &HostInfo{
		OS: runtime.GOOS,
	}

	hostStat, err := hostinfo.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}
	info.Hostname = hostStat.Hostname
	info.Platform = hostStat.Platform
	info.PlatformVersion = hostStat.PlatformVersion
	info.KernelArch = hostStat.KernelArch

	memStat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get memory info: %w", err)
	}
	info.TotalRAM = float64(memStat.Total) / (1024 * 1024 * 1024)

	logicalCores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		logicalCores = runtime.NumCPU()
	}
	info.CPUThreads = logicalCores

	cpuInfos, err := cpu.InfoWithContext(ctx)
	if err == nil && len(cpuInfos) > 0 {
		info.CPUModel = cpuInfos[0].ModelName
	}

	return info, nil
}
