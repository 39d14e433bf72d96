//go:build !windows

package execctx

// executableCandidates returns the single name Unix-like systems resolve.
func executableCandidates(path string) []string {
	return []string{path}
}
