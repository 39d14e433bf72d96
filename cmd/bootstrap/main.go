// Package main is the entry point for the machine bootstrap.
// It validates the runtime stack (native redistributable, media binary,
// language runtime, GPU driver), materializes the isolated dependency
// environment, installs the pinned ML stack, and verifies compatibility.
// The launcher (cmd/launch) is invoked separately by the operator.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/zm-ai/bootstrap/internal/config"
	"github.com/zm-ai/bootstrap/internal/envbuild"
	"github.com/zm-ai/bootstrap/internal/execctx"
	"github.com/zm-ai/bootstrap/internal/hardware/host"
	"github.com/zm-ai/bootstrap/internal/installer"
	"github.com/zm-ai/bootstrap/internal/probe"
	"github.com/zm-ai/bootstrap/internal/verify"
	"github.com/zm-ai/bootstrap/pkg/logger"
)

func main() {
	flags := pflag.CommandLine
	flags.Bool("dev_mode", false, "enable development-friendly console logging")
	flags.String("env_root", "", "isolated environment directory (default: venv)")
	flags.String("python_command", "", "system Python interpreter (default: python)")
	pflag.Parse()

	cfg, err := config.Load(flags)
	if err != nil {
		// Can't use logger yet, so use fmt
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.DevMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	log.Info("Starting machine bootstrap",
		zap.String("env_root", cfg.EnvRoot),
		zap.String("python", cfg.PythonCommand),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	logHostSummary(ctx, log)

	// The execution context carries the environment every later command
	// inherits; the media-binary probe resolves against its search path so
	// a pass here holds for those commands too.
	execCtx := execctx.FromOS()

	// Prerequisite probes run strictly before any mutation. The native
	// redistributable and media binary precede the language runtime check:
	// they are prerequisites for components installed later, and failing
	// fast avoids a half-configured environment.
	probes := []probe.Probe{
		probe.NewRedistProbe(),
		probe.NewFFmpegProbe(execCtx),
		probe.NewPythonProbe(cfg.PythonCommand),
		probe.NewGPUProbe(),
	}

	for _, p := range probes {
		result, err := p.Check(ctx)
		if err != nil || !result.Present {
			details := ""
			if result != nil {
				details = result.Details
			}
			if p.Severity() == probe.Fatal {
				printRemediation(p.Name(), details, p.Remediation())
				log.Fatal("Prerequisite check failed",
					zap.String("probe", p.Name()),
					zap.String("details", details),
					zap.Error(err),
				)
			}
			log.Warn("Advisory prerequisite check failed",
				zap.String("probe", p.Name()),
				zap.String("details", details),
			)
			continue
		}

		log.Info("Prerequisite check passed",
			zap.String("probe", p.Name()),
			zap.String("details", result.Details),
		)
		if result.Tip != "" {
			fmt.Println("TIP: " + result.Tip)
		}
	}

	// Environment construction: create-or-reuse, then activate for this
	// process context so the install steps resolve the isolated copies.
	runner := installer.NewExecRunner(log)
	builder := envbuild.NewBuilder(log, runner, cfg.PythonCommand,
		cfg.ActivationPollAttempts, cfg.ActivationPollInterval)

	env, err := builder.Ensure(ctx, execCtx, cfg.EnvRoot)
	if err != nil {
		log.Fatal("Environment setup failed",
			zap.Error(err),
		)
	}

	if _, err := builder.Activate(execCtx, env); err != nil {
		log.Fatal("Environment activation failed",
			zap.Error(err),
		)
	}

	// Installation steps run in order: native system libraries first, on
	// the platform variant with a package manager, then the language-level
	// plan. A failed step is surfaced but does not abort the run, since
	// verification tolerates a missing framework and reports it as a
	// warning.
	steps := installer.SystemPlan(execCtx.Environ())
	steps = append(steps, installer.Plan(env.Python, cfg, execCtx.Environ())...)
	for _, step := range steps {
		stepCtx, stepCancel := context.WithTimeout(ctx, cfg.CommandTimeout)
		err := runner.Run(stepCtx, step.Cmd)
		stepCancel()
		if err != nil {
			log.Warn("Installation step failed, continuing to verification",
				zap.String("step", step.Desc),
				zap.Error(err),
			)
		} else {
			log.Info("Installation step complete",
				zap.String("step", step.Desc),
			)
		}
	}

	// Compatibility verification never aborts: the operator gets the full
	// diagnostic picture in one pass.
	introspector := verify.NewPythonIntrospector(env.Python, cfg.ModelPackage, execCtx.Environ())
	report := verify.NewVerifier(introspector, log).Verify(ctx)

	log.Info("Bootstrap complete",
		zap.Bool("framework_check_failed", report.Failed),
		zap.Int("warnings", len(report.Warnings)),
		zap.String("framework", report.FrameworkVersion),
		zap.String("model_library", report.ModelVersion),
	)

	if len(report.Warnings) == 0 && !report.Failed {
		fmt.Println("\nEnvironment ready. Start the service with: launch --loop")
	} else {
		fmt.Printf("\nEnvironment prepared with %d warning(s); review the output above.\n", len(report.Warnings))
	}
}

// logHostSummary records the machine context so failure reports carry it.
// Collection failures are non-fatal.
func logHostSummary(ctx context.Context, log *zap.Logger) {
	info, err := host.NewGopsutilCollector().Collect(ctx)
	if err != nil {
		log.Warn("Host summary collection failed",
			zap.Error(err),
		)
		return
	}
	log.Info("Host summary",
		zap.String("hostname", info.Hostname),
		zap.String("os", info.OS),
		zap.String("platform", info.Platform),
		zap.String("platform_version", info.PlatformVersion),
		zap.String("arch", info.KernelArch),
		zap.Float64("ram_gb", info.TotalRAM),
		zap.String("cpu", info.CPUModel),
		zap.Int("cpu_threads", info.CPUThreads),
	)
}

// printRemediation prints the operator-facing fix instructions for a failed
// blocking prerequisite.
func printRemediation(name, details, remediation string) {
	fmt.Println("\n============================================================")
	fmt.Printf("  PREREQUISITE FAILED: %s\n", name)
	if details != "" {
		fmt.Printf("  %s\n", details)
	}
	fmt.Println("============================================================")
	fmt.Println(remediation)
	fmt.Println("============================================================")
}
