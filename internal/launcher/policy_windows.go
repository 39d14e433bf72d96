//go:build windows

package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// checkExecutionPolicy refuses to proceed when PowerShell's script execution
// policy would block the launch scripts. This runs before any other launch
// work.
func checkExecutionPolicy(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", "Get-ExecutionPolicy").CombinedOutput()
	if err != nil {
		return fmt.Errorf("could not read the PowerShell execution policy: %w", err)
	}

	policy := strings.TrimSpace(string(out))
	if strings.EqualFold(policy, "Restricted") {
		return fmt.Errorf(`the PowerShell execution policy is Restricted and script launching is blocked.
Fix it with (from an elevated PowerShell):

  Set-ExecutionPolicy -Scope CurrentUser RemoteSigned -Force

then re-run the launcher`)
	}
	return nil
}
