//go:build !linux

package installer

// SystemPlan returns no steps: this platform variant has no native-OS
// package manager the bootstrap drives, so system libraries (and the media
// binary) are installed by the operator, guided by the probes' remediation.
func SystemPlan(environ []string) []Step {
	return nil
}
