package probe

// The GPU probe is platform-variant: on Windows the NVIDIA management
// utility (nvidia-smi) ships with the driver and is expected to resolve, so
// its absence is blocking. On Linux the check goes through NVML and is
// advisory: the service can still run on CPU, and the post-install verifier
// reports accelerator availability separately.

const gpuProbeName = "nvidia-driver"

func gpuRemediation() string {
	return `No working NVIDIA driver was detected.
GPU acceleration requires a driver compatible with CUDA 12.1 (driver 530+).

  1. Download: https://www.nvidia.com/Download/index.aspx
  2. Install the driver and reboot
  3. Verify with: nvidia-smi
  4. Re-run this bootstrap`
}
