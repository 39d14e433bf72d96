//go:build !windows

package launcher

import "context"

// checkExecutionPolicy is a no-op outside Windows; no script execution
// policy applies.
func checkExecutionPolicy(ctx context.Context) error {
	return nil
}
