package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"rustdex/internal/config"
	rdxerrors "rustdex/internal/errors"
	"rustdex/internal/ir"
	"rustdex/internal/logging"
	"rustdex/internal/profile"
	"rustdex/internal/storage"
)

var (
	doctorCheck  string
	doctorFormat string
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose rustdex issues",
	Long: `Diagnose rustdex configuration and environment issues: the config file,
every configured graph, the record cache, and the profile files.

Failing checks carry suggested fixes and make the command exit non-zero.`,
	Run: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorCheck, "check", "", "Run specific check group (config, graphs, cache, profiles)")
	doctorCmd.Flags().StringVar(&doctorFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(doctorCmd)
}

// DoctorResponseCLI contains diagnostic results for CLI output
type DoctorResponseCLI struct {
	Healthy bool             `json:"healthy"`
	Checks  []DoctorCheckCLI `json:"checks"`
}

// DoctorCheckCLI represents a single diagnostic check
type DoctorCheckCLI struct {
	Name           string                `json:"name"`
	Status         string                `json:"status"` // "pass", "warn", "fail"
	Message        string                `json:"message"`
	SuggestedFixes []rdxerrors.FixAction `json:"suggestedFixes,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) {
	root := mustGetWorkspace()
	cfg, logger := commandSetup(root)

	resp := &DoctorResponseCLI{Healthy: true}

	groups := []struct {
		name string
		run  func() []DoctorCheckCLI
	}{
		{"config", func() []DoctorCheckCLI { return checkConfig(root) }},
		{"graphs", func() []DoctorCheckCLI { return checkGraphs(root, cfg) }},
		{"cache", func() []DoctorCheckCLI { return checkCache(root, logger) }},
		{"profiles", func() []DoctorCheckCLI { return checkProfiles(root, cfg) }},
	}
	for _, g := range groups {
		if doctorCheck != "" && doctorCheck != g.name {
			continue
		}
		resp.Checks = append(resp.Checks, g.run()...)
	}
	for _, c := range resp.Checks {
		if c.Status == "fail" {
			resp.Healthy = false
			break
		}
	}

	text, err := FormatResponse(resp, OutputFormat(doctorFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(text)

	if !resp.Healthy {
		os.Exit(1)
	}
}

func checkConfig(root string) []DoctorCheckCLI {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return []DoctorCheckCLI{{
			Name:    "config",
			Status:  "fail",
			Message: fmt.Sprintf("cannot read .rustdex/config.json: %v", err),
			SuggestedFixes: []rdxerrors.FixAction{{
				Type:        rdxerrors.RunCommand,
				Command:     "rustdex init --force",
				Safe:        false,
				Description: "Rewrite the configuration with defaults",
			}},
		}}
	}
	if err := cfg.Validate(); err != nil {
		return []DoctorCheckCLI{{
			Name:    "config",
			Status:  "fail",
			Message: err.Error(),
			SuggestedFixes: []rdxerrors.FixAction{{
				Type:        rdxerrors.RunCommand,
				Command:     "rustdex init --force",
				Safe:        false,
				Description: "Rewrite the configuration with defaults",
			}},
		}}
	}
	return []DoctorCheckCLI{{
		Name:    "config",
		Status:  "pass",
		Message: "configuration valid",
	}}
}

func checkGraphs(root string, cfg *config.Config) []DoctorCheckCLI {
	paths := cfg.GraphPaths(root)
	if len(paths) == 0 {
		return []DoctorCheckCLI{{
			Name:    "graphs",
			Status:  "warn",
			Message: "no graphs configured",
		}}
	}

	checks := make([]DoctorCheckCLI, 0, len(paths))
	for _, path := range paths {
		name := "graph " + filepath.Base(path)
		graph, err := ir.Load(path)
		if err != nil {
			checks = append(checks, DoctorCheckCLI{
				Name:           name,
				Status:         "fail",
				Message:        err.Error(),
				SuggestedFixes: rdxerrors.SuggestedFixes(rdxerrors.CodeOf(err)),
			})
			continue
		}
		msg := fmt.Sprintf("%d items, format %d", len(graph.Index), graph.FormatVersion)
		if graph.CrateVersion != "" {
			msg = fmt.Sprintf("crate %s, %s", graph.CrateVersion, msg)
		}
		checks = append(checks, DoctorCheckCLI{Name: name, Status: "pass", Message: msg})
	}
	return checks
}

func checkCache(root string, logger *logging.Logger) []DoctorCheckCLI {
	db, err := storage.Open(root, logger)
	if err != nil {
		return []DoctorCheckCLI{{
			Name:    "cache",
			Status:  "warn",
			Message: fmt.Sprintf("record cache cannot be opened: %v", err),
		}}
	}
	defer db.Close()

	graphs, err := storage.NewRecordStore(db).Graphs()
	if err != nil {
		return []DoctorCheckCLI{{
			Name:           "cache",
			Status:         "fail",
			Message:        err.Error(),
			SuggestedFixes: rdxerrors.SuggestedFixes(rdxerrors.CacheCorrupt),
		}}
	}

	msg := fmt.Sprintf("%d graphs cached", len(graphs))
	if info, statErr := os.Stat(db.Path()); statErr == nil {
		msg = fmt.Sprintf("%s (%s)", msg, formatBytes(info.Size()))
	}
	return []DoctorCheckCLI{{Name: "cache", Status: "pass", Message: msg}}
}

func checkProfiles(root string, cfg *config.Config) []DoctorCheckCLI {
	dir := profilesDir(root, cfg)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []DoctorCheckCLI{{
			Name:    "profiles",
			Status:  "warn",
			Message: fmt.Sprintf("profiles directory not readable: %v", err),
			SuggestedFixes: []rdxerrors.FixAction{{
				Type:        rdxerrors.RunCommand,
				Command:     "rustdex init",
				Safe:        true,
				Description: "Scaffold the default profiles",
			}},
		}}
	}

	var checks []DoctorCheckCLI
	count := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".toml", ".yaml", ".yml", ".json":
		default:
			continue
		}
		if _, err := profile.Load(filepath.Join(dir, e.Name())); err != nil {
			checks = append(checks, DoctorCheckCLI{
				Name:    "profile " + e.Name(),
				Status:  "fail",
				Message: err.Error(),
			})
			continue
		}
		count++
	}
	checks = append(checks, DoctorCheckCLI{
		Name:    "profiles",
		Status:  "pass",
		Message: fmt.Sprintf("%d profiles loadable", count),
	})
	return checks
}

// formatBytes formats byte size in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
