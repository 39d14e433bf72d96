// Package main is the launcher entry point. It re-validates that the
// isolated environment prepared by cmd/bootstrap is active and hands off to
// the long-running service process.
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
	"github.com/zm-ai/bootstrap/internal/installer"
	"github.com/zm-ai/bootstrap/internal/launcher"
	"github.com/zm-ai/bootstrap/pkg/logger"
)

func main() {
	flags := pflag.CommandLine
	flags.Bool("dev_mode", false, "enable development-friendly console logging")
	flags.String("env_root", "", "isolated environment directory (default: venv)")
	loop := flags.Bool("loop", true, "run the service in continuous-loop mode")
	pflag.Parse()

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.DevMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

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

	env, err := envbuild.Describe(cfg.EnvRoot)
	if err != nil {
		log.Fatal("Invalid environment root",
			zap.Error(err),
		)
	}

	execCtx := execctx.FromOS()
	builder := envbuild.NewBuilder(log, installer.NewExecRunner(log), cfg.PythonCommand,
		cfg.ActivationPollAttempts, cfg.ActivationPollInterval)

	l := launcher.New(log, builder, env, execCtx, cfg.ServiceEntry)

	log.Info("Launching service",
		zap.String("entry", cfg.ServiceEntry),
		zap.String("env_root", env.Root),
		zap.Bool("loop", *loop),
	)

	if err := l.Launch(ctx, *loop); err != nil {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		log.Fatal("Launch failed",
			zap.Error(err),
		)
	}
}
