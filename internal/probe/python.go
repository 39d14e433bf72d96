package probe

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/zm-ai/bootstrap/internal/compat"
)

// versionPattern matches the interpreter's self-reported version line,
// e.g. "Python 3.11.9".
var versionPattern = regexp.MustCompile(`Python\s+(\d+\.\d+(?:\.\d+)?)`)

// PythonProbe verifies the system language runtime by invoking its version
// command and matching the reported version against the accepted range.
// Both invocation failure and a range mismatch are blocking: the pinned ML
// framework ships wheels only for these minors.
type PythonProbe struct {
	command    string
	output     commandOutput
	constraint compat.Constraint
}

// NewPythonProbe creates the runtime probe for the given interpreter command.
func NewPythonProbe(command string) *PythonProbe {
	return &PythonProbe{
		command:    command,
		output:     runCommandOutput,
		constraint: compat.PythonRuntime,
	}
}

// Name implements Probe.
func (p *PythonProbe) Name() string { return "python-runtime" }

// Severity implements Probe.
func (p *PythonProbe) Severity() Severity { return Fatal }

// Check implements Probe.
func (p *PythonProbe) Check(ctx context.Context) (*Result, error) {
	out, err := p.output(ctx, p.command, "--version")
	if err != nil {
		return &Result{
			Present: false,
			Details: fmt.Sprintf("could not invoke %q: %v", p.command, err),
		}, nil
	}

	match := versionPattern.FindStringSubmatch(strings.TrimSpace(out))
	if match == nil {
		return &Result{
			Present: false,
			Details: fmt.Sprintf("unrecognized version output %q", strings.TrimSpace(out)),
		}, nil
	}

	version := match[1]
	if !p.constraint.Matches(version) {
		return &Result{
			Present: false,
			Details: fmt.Sprintf("Python %s is outside the supported range (%s)",
				version, p.constraint.AcceptedList()),
		}, nil
	}

	return &Result{Present: true, Details: "Python " + version}, nil
}

// Remediation implements Probe.
func (p *PythonProbe) Remediation() string {
	return fmt.Sprintf(`A supported Python runtime was not found.
Supported versions: %s (recommended: %s)

  1. Download: https://www.python.org/downloads/
  2. During installation, enable "Add python.exe to PATH"
  3. Re-run this bootstrap`,
		p.constraint.AcceptedList(), p.constraint.Recommended)
}
