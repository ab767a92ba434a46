package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"rustdex/internal/config"
	"rustdex/internal/logging"
	"rustdex/internal/pipeline"
	"rustdex/internal/storage"
)

// getWorkspace returns the directory rustdex operates in.
func getWorkspace() (string, error) {
	return os.Getwd()
}

// mustGetWorkspace returns the workspace root or exits on error.
func mustGetWorkspace() string {
	root, err := getWorkspace()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return root
}

// loadConfigOrDefault loads .rustdex/config.json, falling back to the
// defaults when the file is absent or unreadable.
func loadConfigOrDefault(root string, logger *logging.Logger) *config.Config {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		logger.Warn("Failed to load config, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return config.DefaultConfig()
	}
	return cfg
}

// newLogger creates a logger honoring the config plus the global flags.
func newLogger(cfg *config.Config) *logging.Logger {
	format := logging.HumanFormat
	if cfg != nil && cfg.Logging.Format == "json" {
		format = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: format,
		Level:  resolveLogLevel(cfg),
	})
}

// openRecordCache opens the SQLite-backed record cache. Both results are
// nil when caching is off or the database cannot be opened; the pipeline
// then flattens fresh every time.
func openRecordCache(root string, cfg *config.Config, noCache bool, logger *logging.Logger) (*storage.DB, pipeline.RecordCache) {
	if noCache || (cfg != nil && !cfg.Cache.Enabled) {
		return nil, nil
	}
	db, err := storage.Open(root, logger)
	if err != nil {
		logger.Warn("Record cache unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil
	}
	return db, storage.NewRecordStore(db)
}

// commandSetup loads the config and builds the logger commands share.
// Config load failures are logged and fall back to defaults.
func commandSetup(root string) (*config.Config, *logging.Logger) {
	boot := logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  resolveLogLevel(nil),
	})
	cfg := loadConfigOrDefault(root, boot)
	return cfg, newLogger(cfg)
}

// graphPaths returns the graphs a command should process: positional
// arguments when given, the configured set otherwise.
func graphPaths(root string, cfg *config.Config, args []string) []string {
	if len(args) > 0 {
		return args
	}
	return cfg.GraphPaths(root)
}

// profilesDir resolves the configured profiles directory against root.
func profilesDir(root string, cfg *config.Config) string {
	dir := cfg.Profiles.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return dir
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}
