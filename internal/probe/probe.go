// Package probe implements the prerequisite checks run before the isolated
// environment is built. Each probe verifies one system fact (native
// redistributable, media binary, language runtime, GPU driver) and is
// read-only; deciding whether a failed probe terminates the run belongs to
// the caller.
package probe

import (
	"context"
	"os/exec"
)

// Severity classifies what a failed probe means for the run.
type Severity int

const (
	// Fatal probes block the bootstrap: the caller prints the probe's
	// remediation and exits before any installation side effect.
	Fatal Severity = iota

	// Advisory probes are loud but never terminate the run.
	Advisory
)

// String returns a human-readable severity label.
func (s Severity) String() string {
	if s == Fatal {
		return "fatal"
	}
	return "advisory"
}

// Result is the outcome of a single prerequisite check.
type Result struct {
	// Present reports whether the prerequisite was found and passed its
	// predicate
	Present bool

	// Details describes what was found (version, path, device name) or why
	// the check failed
	Details string

	// Tip carries an optional non-blocking hint, e.g. a directory the
	// operator should add to the search path
	Tip string
}

// Probe is one verifiable system fact. Implementations are constructed per
// run, evaluated once, and discarded.
type Probe interface {
	// Name identifies the probe in logs and remediation output.
	Name() string

	// Severity reports whether an Absent result blocks the bootstrap.
	Severity() Severity

	// Check evaluates the probe. A returned error means the check itself
	// could not run and is treated like Absent by fatal probes.
	Check(ctx context.Context) (*Result, error)

	// Remediation returns the operator-facing fix instructions printed when
	// the probe fails.
	Remediation() string
}

// commandOutput runs a command and returns its combined output. Probes that
// shell out take this as an injectable seam so tests never spawn processes.
type commandOutput func(ctx context.Context, name string, args ...string) (string, error)

func runCommandOutput(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}
