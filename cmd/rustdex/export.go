package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rustdex/internal/export"
	"rustdex/internal/pipeline"
	"rustdex/internal/version"
)

var (
	exportFormat  string
	exportOut     string
	exportJobs    int
	exportNoCache bool
)

var exportCmd = &cobra.Command{
	Use:   "export [graphs...]",
	Short: "Export the flattened surface to an interchange format",
	Long: `Export flattens the configured graphs (or the given paths) and writes the
record set to a file.

Formats:
  snapshot  msgpack+zstd record set, readable by 'stats --from-snapshot'
  scip      SCIP index of the surface, one document per crate`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "snapshot", "Export format (scip, snapshot)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default: rustdex.snapshot / rustdex.scip)")
	exportCmd.Flags().IntVar(&exportJobs, "jobs", 0, "Concurrent graphs (default: from config)")
	exportCmd.Flags().BoolVar(&exportNoCache, "no-cache", false, "Skip the record cache")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
	root := mustGetWorkspace()
	cfg, logger := commandSetup(root)

	switch exportFormat {
	case "scip", "snapshot":
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported format %q (scip, snapshot)\n", exportFormat)
		os.Exit(1)
	}

	paths := graphPaths(root, cfg, args)
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no graphs configured; pass paths or run 'rustdex init'")
		os.Exit(1)
	}

	jobs := exportJobs
	if jobs <= 0 {
		jobs = cfg.Graphs.Jobs
	}

	db, cache := openRecordCache(root, cfg, exportNoCache, logger)
	if db != nil {
		defer db.Close()
	}

	result, err := pipeline.Run(newContext(), paths, cache, pipeline.Options{Jobs: jobs}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out := exportOut
	if out == "" {
		out = "rustdex." + exportFormat
	}

	switch exportFormat {
	case "scip":
		err = export.WriteSCIP(out, export.BuildSCIP(result.Records, version.Version))
	case "snapshot":
		err = export.WriteSnapshot(out, result.Records, paths, version.Version)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d records to %s\n", len(result.Records), out)
}
