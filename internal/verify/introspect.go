// Package verify introspects the installed ML framework and detection-model
// library after installation and compares what it finds against the
// known-good ranges. Verification never aborts the run: every mismatch is a
// warning so the operator gets the fullest diagnostic picture in one pass.
package verify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// FrameworkInfo is the fixed four-line introspection schema of the ML
// framework. Values are kept as the raw text the framework printed; the
// verifier owns interpretation.
type FrameworkInfo struct {
	// Version is the framework version string, e.g. "2.5.1+cu121"
	Version string

	// RuntimeVersion is the accelerator runtime the framework was built
	// against, e.g. "12.1"
	RuntimeVersion string

	// Available is the accelerator availability boolean as text
	// ("True" / "False")
	Available string

	// DeviceName is the accelerator device name, or the "no device"
	// sentinel when unavailable
	DeviceName string
}

// Introspector reads version facts out of the installed packages.
// Using an interface keeps the verifier's branching logic decoupled from
// subprocess text parsing in tests.
type Introspector interface {
	// Describe returns the framework's four-line self-description.
	Describe(ctx context.Context) (*FrameworkInfo, error)

	// ModelVersion returns the detection-model library's version line.
	ModelVersion(ctx context.Context) (string, error)
}

// describeSnippet prints exactly four lines in fixed order; any schema drift
// here is a hard compatibility failure for the verifier.
const describeSnippet = `import torch
print(torch.__version__)
print(torch.version.cuda)
print(torch.cuda.is_available())
print(torch.cuda.get_device_name(0) if torch.cuda.is_available() else "no device")`

// PythonIntrospector implements Introspector by invoking the isolated
// environment's interpreter.
type PythonIntrospector struct {
	// Python is the isolated interpreter path
	Python string

	// ModelPackage is the detection-model library to introspect
	ModelPackage string

	// Environ is applied to the introspection subprocesses
	Environ []string

	output func(ctx context.Context, name string, args ...string) (string, []string, error)
}

// NewPythonIntrospector creates a subprocess-backed introspector.
func NewPythonIntrospector(python, modelPackage string, environ []string) *PythonIntrospector {
	p := &PythonIntrospector{
		Python:       python,
		ModelPackage: modelPackage,
		Environ:      environ,
	}
	p.output = p.runPython
	return p
}

// Describe implements Introspector.
func (p *PythonIntrospector) Describe(ctx context.Context) (*FrameworkInfo, error) {
	raw, lines, err := p.output(ctx, p.Python, "-c", describeSnippet)
	if err != nil {
		return nil, fmt.Errorf("framework introspection failed: %w: %s", err, strings.TrimSpace(raw))
	}
	if len(lines) < 4 {
		return nil, fmt.Errorf("framework introspection returned %d of 4 expected lines: %q", len(lines), raw)
	}

	return &FrameworkInfo{
		Version:        lines[0],
		RuntimeVersion: lines[1],
		Available:      lines[2],
		DeviceName:     lines[3],
	}, nil
}

// ModelVersion implements Introspector.
func (p *PythonIntrospector) ModelVersion(ctx context.Context) (string, error) {
	snippet := fmt.Sprintf("import %s\nprint(%s.__version__)", p.ModelPackage, p.ModelPackage)
	raw, lines, err := p.output(ctx, p.Python, "-c", snippet)
	if err != nil {
		return "", fmt.Errorf("model library introspection failed: %w: %s", err, strings.TrimSpace(raw))
	}
	if len(lines) < 1 {
		return "", fmt.Errorf("model library introspection returned no output")
	}
	return lines[0], nil
}

// runPython executes the interpreter and splits its output into trimmed,
// non-empty lines. Carriage returns are stripped for Windows interpreters.
func (p *PythonIntrospector) runPython(ctx context.Context, name string, args ...string) (string, []string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if p.Environ != nil {
		cmd.Env = p.Environ
	}
	out, err := cmd.CombinedOutput()
	raw := string(out)
	if err != nil {
		return raw, nil, err
	}

	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return raw, lines, nil
}
