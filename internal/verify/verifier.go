package verify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/zm-ai/bootstrap/internal/compat"
)

// availableSentinel is the affirmative accelerator-availability text the
// framework prints.
const availableSentinel = "True"

// Report is the outcome of post-install introspection. It is built once,
// printed, and discarded.
type Report struct {
	// Failed reports that framework introspection itself failed (import
	// error, non-zero exit, or schema drift); the version fields are empty
	// in that case
	Failed bool

	FrameworkVersion string
	RuntimeVersion   string
	Available        string
	DeviceName       string

	// ModelVersion is the detection-model library version, empty when its
	// import failed
	ModelVersion string

	// Warnings lists every triggered range check, in check order
	Warnings []string
}

// Verifier compares the installed stack against the known-good ranges.
// All mismatches are advisory; the verifier never terminates the run.
type Verifier struct {
	// Introspector reads the installed package facts
	Introspector Introspector

	// Logger receives structured results
	Logger *zap.Logger

	// Out receives operator-facing remediation blocks (stdout by default)
	Out io.Writer

	framework compat.Constraint
	runtime   compat.Constraint
}

// NewVerifier creates a Verifier with the stack's known-good constraints.
func NewVerifier(in Introspector, logger *zap.Logger) *Verifier {
	return &Verifier{
		Introspector: in,
		Logger:       logger,
		Out:          os.Stdout,
		framework:    compat.Framework,
		runtime:      compat.AcceleratorRuntime,
	}
}

// Verify introspects the framework and the model library and runs the three
// independent range checks. The checks are not mutually exclusive and all
// always execute; each miss prints the full remediation block, so the block
// can appear multiple times in one run.
func (v *Verifier) Verify(ctx context.Context) *Report {
	report := &Report{}

	info, err := v.Introspector.Describe(ctx)
	if err != nil {
		report.Failed = true
		v.Logger.Warn("Framework introspection failed",
			zap.Error(err),
		)
		fmt.Fprintf(v.Out, "\nML framework check failed: %v\n", err)
		v.printRemediation()
	} else {
		report.FrameworkVersion = info.Version
		report.RuntimeVersion = info.RuntimeVersion
		report.Available = info.Available
		report.DeviceName = info.DeviceName

		v.Logger.Info("Framework introspection complete",
			zap.String("version", info.Version),
			zap.String("accelerator_runtime", info.RuntimeVersion),
			zap.String("accelerator_available", info.Available),
			zap.String("device", info.DeviceName),
		)

		v.checkFrameworkVersion(report, info)
		v.checkRuntimeVersion(report, info)
		v.checkAvailability(report, info)
	}

	v.checkModelLibrary(ctx, report)

	return report
}

func (v *Verifier) checkFrameworkVersion(report *Report, info *FrameworkInfo) {
	if v.framework.Matches(info.Version) {
		return
	}
	v.warn(report, fmt.Sprintf("framework version %s is outside the validated range (%s)",
		info.Version, v.framework.AcceptedList()))
}

func (v *Verifier) checkRuntimeVersion(report *Report, info *FrameworkInfo) {
	if strings.TrimSpace(info.RuntimeVersion) == v.runtime.Recommended {
		return
	}
	v.warn(report, fmt.Sprintf("accelerator runtime %s does not match the pinned %s",
		info.RuntimeVersion, v.runtime.Recommended))
}

func (v *Verifier) checkAvailability(report *Report, info *FrameworkInfo) {
	if strings.TrimSpace(info.Available) == availableSentinel {
		return
	}
	v.warn(report, fmt.Sprintf("accelerator not available (reported %q); detection will fall back to CPU",
		info.Available))
}

func (v *Verifier) checkModelLibrary(ctx context.Context, report *Report) {
	version, err := v.Introspector.ModelVersion(ctx)
	if err != nil {
		// Fatal to this sub-check only; the run continues.
		v.Logger.Warn("Model library introspection failed",
			zap.Error(err),
		)
		fmt.Fprintf(v.Out, "\nDetection model library check failed: %v\n", err)
		fmt.Fprintln(v.Out, modelRemediation)
		return
	}
	report.ModelVersion = version
	v.Logger.Info("Model library present",
		zap.String("version", version),
	)
}

func (v *Verifier) warn(report *Report, msg string) {
	report.Warnings = append(report.Warnings, msg)
	v.Logger.Warn("Compatibility check failed",
		zap.String("warning", msg),
	)
	fmt.Fprintf(v.Out, "\nWARNING: %s\n", msg)
	v.printRemediation()
}

// printRemediation emits the full remediation block. It is intentionally not
// deduplicated: every triggered check repeats it.
func (v *Verifier) printRemediation() {
	fmt.Fprintf(v.Out, `
--- recommended stack ---
  torch  %s (+cu%s build)  accepted: %s
  CUDA   %s with a 530+ NVIDIA driver
  reinstall: pip install torch==%s+cu121 torchvision torchaudio --index-url https://download.pytorch.org/whl/cu121
  driver:    https://www.nvidia.com/Download/index.aspx
-------------------------
`,
		v.framework.Recommended,
		strings.ReplaceAll(v.runtime.Recommended, ".", ""),
		v.framework.AcceptedList(),
		v.runtime.Recommended,
		v.framework.Recommended)
}

var modelRemediation = `The detection model library could not be imported.
  reinstall: pip install ultralytics
  docs:      https://docs.ultralytics.com/quickstart/`
