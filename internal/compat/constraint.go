// Package compat holds the known-compatible version ranges the bootstrap
// validates the runtime stack against, and the matching logic shared by the
// prerequisite probes and the post-install verifier.
package compat

import (
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// Constraint is an acceptable version range for one component of the stack.
// Accepted lists major.minor prefixes; any patch level within an accepted
// minor passes. Recommended is the exact version remediation messages point
// operators at.
type Constraint struct {
	Component   string
	Accepted    []string
	Recommended string
}

// Known-good ranges for the stack this service was validated on.
var (
	// PythonRuntime covers three consecutive CPython minors. Older minors
	// miss wheel coverage for the pinned framework; newer ones are untested.
	PythonRuntime = Constraint{
		Component:   "Python",
		Accepted:    []string{"3.10", "3.11", "3.12"},
		Recommended: "3.12",
	}

	// Framework covers the torch minors the detection pipeline was
	// validated against.
	Framework = Constraint{
		Component:   "torch",
		Accepted:    []string{"2.3", "2.4", "2.5"},
		Recommended: "2.5.1",
	}

	// AcceleratorRuntime pins a single CUDA runtime build; the framework
	// triad is installed from the matching cu121 index.
	AcceleratorRuntime = Constraint{
		Component:   "CUDA",
		Accepted:    []string{"12.1"},
		Recommended: "12.1",
	}
)

// Matches reports whether a raw version string falls inside the accepted
// range. Build metadata such as "+cu121" is stripped before parsing, and
// unparseable input never matches.
func (c Constraint) Matches(raw string) bool {
	major, minor, err := majorMinor(raw)
	if err != nil {
		return false
	}
	key := fmt.Sprintf("%d.%d", major, minor)
	for _, accepted := range c.Accepted {
		if key == accepted {
			return true
		}
	}
	return false
}

// AcceptedList renders the accepted range for remediation messages,
// e.g. "3.10 / 3.11 / 3.12".
func (c Constraint) AcceptedList() string {
	return strings.Join(c.Accepted, " / ")
}

// majorMinor extracts the leading major.minor pair from a version string.
func majorMinor(raw string) (int, int, error) {
	trimmed := strings.TrimSpace(raw)
	if plus := strings.IndexByte(trimmed, '+'); plus >= 0 {
		trimmed = trimmed[:plus]
	}
	v, err := goversion.NewVersion(trimmed)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing version %q: %w", raw, err)
	}
	segments := v.Segments()
	if len(segments) < 2 {
		return 0, 0, fmt.Errorf("version %q has no minor segment", raw)
	}
	return segments[0], segments[1], nil
}
