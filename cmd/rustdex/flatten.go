package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rustdex/internal/config"
	"rustdex/internal/flatten"
	"rustdex/internal/output"
	"rustdex/internal/pipeline"
)

var (
	flattenFormat  string
	flattenJobs    int
	flattenNoCache bool
	flattenColor   string
)

var flattenCmd = &cobra.Command{
	Use:   "flatten [graphs...]",
	Short: "Flatten graphs into API surface records",
	Long: `Flatten loads rustdoc JSON graphs (the configured set, or the given paths)
and prints the merged, ordered, deduplicated record set.

Formats:
  table  aligned columns for terminals (default)
  json   deterministic JSON with per-graph results
  csv    one row per record`,
	Run: runFlatten,
}

func init() {
	flattenCmd.Flags().StringVar(&flattenFormat, "format", "table", "Output format (table, json, csv)")
	flattenCmd.Flags().IntVar(&flattenJobs, "jobs", 0, "Concurrent graphs (default: from config)")
	flattenCmd.Flags().BoolVar(&flattenNoCache, "no-cache", false, "Skip the record cache")
	flattenCmd.Flags().StringVar(&flattenColor, "color", "", "Colorize table output (auto, on, off)")
	rootCmd.AddCommand(flattenCmd)
}

// FlattenResponseCLI is the JSON shape of a flatten run
type FlattenResponseCLI struct {
	Graphs  []pipeline.GraphResult `json:"graphs"`
	Records []flatten.Record       `json:"records"`
}

func runFlatten(cmd *cobra.Command, args []string) {
	root := mustGetWorkspace()
	cfg, logger := commandSetup(root)

	paths := graphPaths(root, cfg, args)
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no graphs configured; pass paths or run 'rustdex init'")
		os.Exit(1)
	}

	jobs := flattenJobs
	if jobs <= 0 {
		jobs = cfg.Graphs.Jobs
	}

	db, cache := openRecordCache(root, cfg, flattenNoCache, logger)
	if db != nil {
		defer db.Close()
	}

	result, err := pipeline.Run(newContext(), paths, cache, pipeline.Options{Jobs: jobs}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch flattenFormat {
	case "table":
		opts := output.TableOptions{Color: tableColor(cfg)}
		if err := output.WriteTable(os.Stdout, result.Records, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing table: %v\n", err)
			os.Exit(1)
		}
	case "json":
		resp := &FlattenResponseCLI{Graphs: result.Graphs, Records: result.Records}
		text, err := FormatResponse(resp, FormatJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(text)
	case "csv":
		if err := output.WriteCSV(os.Stdout, result.Records); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported format %q (table, json, csv)\n", flattenFormat)
		os.Exit(1)
	}
}

// tableColor resolves the color mode from the flag, then the config.
func tableColor(cfg *config.Config) output.ColorMode {
	if flattenColor != "" {
		return output.ParseColorMode(flattenColor)
	}
	return output.ParseColorMode(cfg.Output.Color)
}
