// Package config provides configuration management using Viper.
// It supports loading from config files, environment variables, and defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FrameworkPins holds the exact ML framework build matched to the accelerator
// runtime this installation targets. The triad must stay in lockstep: the
// torchvision/torchaudio builds are only published against specific torch
// versions on the accelerator-specific index.
type FrameworkPins struct {
	// Torch is the pinned core framework version including the CUDA build tag
	Torch string `mapstructure:"torch"`

	// Vision is the pinned torchvision version matching Torch
	Vision string `mapstructure:"vision"`

	// Audio is the pinned torchaudio version matching Torch
	Audio string `mapstructure:"audio"`

	// IndexURL is the accelerator-specific package index the triad is
	// installed from, instead of the default PyPI index
	IndexURL string `mapstructure:"index_url"`
}

// Config holds all configuration values for the bootstrap and launcher.
type Config struct {
	// DevMode enables development-friendly logging and behaviors
	DevMode bool `mapstructure:"dev_mode"`

	// LogLevel sets the minimum log level (debug, info, warn, error)
	LogLevel string `mapstructure:"log_level"`

	// EnvRoot is the directory of the isolated dependency environment.
	// Relative paths are resolved against the working directory.
	EnvRoot string `mapstructure:"env_root"`

	// PythonCommand is the system interpreter used to probe the runtime
	// version and to create the isolated environment
	PythonCommand string `mapstructure:"python_command"`

	// RequirementsFile is the declared base dependency manifest
	RequirementsFile string `mapstructure:"requirements_file"`

	// ServiceEntry is the long-running service script handed off to by the
	// launcher, resolved inside the working directory
	ServiceEntry string `mapstructure:"service_entry"`

	// ModelPackage is the detection-model library installed by name only
	ModelPackage string `mapstructure:"model_package"`

	// Pins is the accelerator-matched framework triad
	Pins FrameworkPins `mapstructure:"pins"`

	// ActivationPollAttempts bounds the wait for the environment activation
	// entry point to appear after creation
	ActivationPollAttempts int `mapstructure:"activation_poll_attempts"`

	// ActivationPollInterval is the backoff between poll attempts
	ActivationPollInterval time.Duration `mapstructure:"activation_poll_interval"`

	// CommandTimeout is the per-invocation ceiling for package manager and
	// introspection subprocesses
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		DevMode:          false,
		LogLevel:         "info",
		EnvRoot:          "venv",
		PythonCommand:    "python",
		RequirementsFile: "requirements.txt",
		ServiceEntry:     "zm_ai.py",
		ModelPackage:     "ultralytics",
		Pins: FrameworkPins{
			Torch:    "2.5.1+cu121",
			Vision:   "0.20.1+cu121",
			Audio:    "2.5.1+cu121",
			IndexURL: "https://download.pytorch.org/whl/cu121",
		},
		ActivationPollAttempts: 10,
		ActivationPollInterval: 500 * time.Millisecond,
		CommandTimeout:         15 * time.Minute,
	}
}

// Load reads configuration from flags, environment variables, and config files.
// Precedence: flags > environment variables > config file > defaults.
// All environment variables are prefixed with "ZMAI_" (e.g. ZMAI_ENV_ROOT).
// The flags argument may be nil when no command-line flags are bound.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("dev_mode", defaults.DevMode)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("env_root", defaults.EnvRoot)
	v.SetDefault("python_command", defaults.PythonCommand)
	v.SetDefault("requirements_file", defaults.RequirementsFile)
	v.SetDefault("service_entry", defaults.ServiceEntry)
	v.SetDefault("model_package", defaults.ModelPackage)
	v.SetDefault("pins.torch", defaults.Pins.Torch)
	v.SetDefault("pins.vision", defaults.Pins.Vision)
	v.SetDefault("pins.audio", defaults.Pins.Audio)
	v.SetDefault("pins.index_url", defaults.Pins.IndexURL)
	v.SetDefault("activation_poll_attempts", defaults.ActivationPollAttempts)
	v.SetDefault("activation_poll_interval", defaults.ActivationPollInterval)
	v.SetDefault("command_timeout", defaults.CommandTimeout)

	// Environment variables are prefixed with ZMAI_ and use underscores
	// Example: ZMAI_ENV_ROOT=.venv, ZMAI_DEV_MODE=true
	v.SetEnvPrefix("ZMAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Optional: look for a bootstrap.yaml next to the service files
	v.SetConfigName("bootstrap")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	if c.EnvRoot == "" {
		return fmt.Errorf("env_root must not be empty")
	}

	if c.PythonCommand == "" {
		return fmt.Errorf("python_command must not be empty")
	}

	if c.ActivationPollAttempts <= 0 {
		return fmt.Errorf("activation_poll_attempts must be positive, got %d", c.ActivationPollAttempts)
	}

	if c.ActivationPollInterval <= 0 {
		return fmt.Errorf("activation_poll_interval must be positive, got %v", c.ActivationPollInterval)
	}

	if c.CommandTimeout <= 0 {
		return fmt.Errorf("command_timeout must be positive, got %v", c.CommandTimeout)
	}

	return nil
}
