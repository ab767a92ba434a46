package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rustdex/internal/config"
	rdxerrors "rustdex/internal/errors"
	"rustdex/internal/logging"
	"rustdex/internal/profile"
)

var (
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize rustdex configuration",
	Long:  "Creates a .rustdex/ directory with default configuration and profiles in the current directory",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .rustdex directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.InfoLevel,
	})

	cwd, err := os.Getwd()
	if err != nil {
		return rdxerrors.New(rdxerrors.InternalError, "Failed to get current directory", err)
	}

	// Check if .rustdex already exists
	rdxDir := filepath.Join(cwd, ".rustdex")
	if _, statErr := os.Stat(rdxDir); statErr == nil {
		if !initForce {
			// Idempotent behavior: already initialized is success (CI-friendly)
			fmt.Println("rustdex already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(rdxDir, "config.json"))
			fmt.Println("\nRun 'rustdex init --force' to reinitialize.")
			return nil
		}
		if removeErr := os.RemoveAll(rdxDir); removeErr != nil {
			return rdxerrors.New(rdxerrors.InternalError, "Failed to remove existing .rustdex directory", removeErr)
		}
		logger.Info("Removed existing .rustdex directory", nil)
	}

	cfg := config.DefaultConfig()
	if saveErr := cfg.Save(cwd); saveErr != nil {
		return rdxerrors.New(rdxerrors.InternalError, "Failed to write config file", saveErr)
	}
	configPath := filepath.Join(rdxDir, "config.json")

	written, err := profile.WriteDefaults(profilesDir(cwd, cfg))
	if err != nil {
		return rdxerrors.New(rdxerrors.InternalError, "Failed to scaffold default profiles", err)
	}

	logger.Info("rustdex initialized successfully", map[string]interface{}{
		"config_path": configPath,
		"profiles":    len(written),
	})

	fmt.Println("rustdex initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", configPath)
	for _, p := range written {
		fmt.Printf("Profile written to: %s\n", p)
	}
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Put rustdoc JSON graphs under assets/ (see the 'graphs' config)")
	fmt.Println("  2. Run 'rustdex doctor' to check your setup")
	fmt.Println("  3. Run 'rustdex flatten' to see the surface")

	return nil
}
