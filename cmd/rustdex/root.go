package main

import (
	"os"

	"rustdex/internal/config"
	"rustdex/internal/logging"
	"rustdex/internal/version"

	"github.com/spf13/cobra"
)

var (
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "rustdex",
	Short: "rustdex - Rust API surface index",
	Long: `rustdex loads rustdoc JSON graphs and flattens them into a classified API
surface: one record per public trait, struct, enum, function, and impl, with
rendered declarations, stability, and const/async coverage statistics.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("rustdex version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (default: from config)")
}

// resolveLogLevel determines the effective log level from CLI flag, env var,
// and config. Precedence: CLI flag > RUSTDEX_LOG_LEVEL env var > config.json
func resolveLogLevel(cfg *config.Config) logging.LogLevel {
	// 1. CLI flag (highest priority)
	if logLevelFlag != "" {
		return logging.ParseLevel(logLevelFlag)
	}

	// 2. Environment variable
	if env := os.Getenv("RUSTDEX_LOG_LEVEL"); env != "" {
		return logging.ParseLevel(env)
	}

	// 3. Config file default
	if cfg != nil && cfg.Logging.Level != "" {
		return logging.ParseLevel(cfg.Logging.Level)
	}

	return logging.InfoLevel
}
