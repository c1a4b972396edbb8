package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/salaryqa/internal/config"
	"github.com/okian/salaryqa/pkg/logger"
)

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var logLevel string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "salaryqa",
	Short: "Screen anonymous salary entries for anomalies and duplicates",
	Long: `salaryqa scores submitted compensation entries against comparable
approved entries, flags near-duplicates, and re-analyzes stored entries.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides "+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

// setup initializes logging and loads configuration for a command.
func setup(ctx context.Context) (*config.Config, error) {
	if configFile != "" {
		if err := os.Setenv(config.EnvConfigFile, configFile); err != nil {
			return nil, fmt.Errorf("set config path: %w", err)
		}
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if err := logger.Init(logger.WithFormat(strings.ToLower(cfg.LogFormat))); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}
