//go:build windows

package execctx

import (
	"path/filepath"
	"strings"
)

// executableCandidates expands a path into the file names Windows would
// consider executable for it.
func executableCandidates(path string) []string {
	if ext := filepath.Ext(path); ext != "" && !strings.EqualFold(ext, ".") {
		return []string{path}
	}
	return []string{path + ".exe", path + ".bat", path + ".cmd", path}
}
