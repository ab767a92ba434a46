package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rustdex/internal/classify"
	"rustdex/internal/config"
	"rustdex/internal/export"
	"rustdex/internal/flatten"
	"rustdex/internal/logging"
	"rustdex/internal/output"
	"rustdex/internal/pipeline"
	"rustdex/internal/profile"
	"rustdex/internal/storage"
)

var (
	statsPredicate string
	statsProfile   string
	statsExclude   []string
	statsFormat    string
	statsSnapshot  string
	statsJobs      int
	statsNoCache   bool
	statsRecent    int
)

var statsCmd = &cobra.Command{
	Use:   "stats [graphs...]",
	Short: "Count const/async coverage of the stable surface",
	Long: `Stats flattens the configured graphs (or the given paths) and counts how
much of the stable surface matches a predicate, after dropping items under
the exclusion prefixes.

The predicate and exclusions come from a builtin profile (const, async), a
profile file in the profiles directory, or --exclude flags on top of either.

Use --from-snapshot to count a previously exported record set offline, and
--recent to list recorded runs instead of counting.`,
	Run: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsPredicate, "predicate", "const", "Builtin predicate (const, async)")
	statsCmd.Flags().StringVar(&statsProfile, "profile", "", "Profile name (file in the profiles dir, or builtin)")
	statsCmd.Flags().StringArrayVar(&statsExclude, "exclude", nil, "Extra exclusion prefix (repeatable)")
	statsCmd.Flags().StringVar(&statsFormat, "format", "human", "Output format (json, human)")
	statsCmd.Flags().StringVar(&statsSnapshot, "from-snapshot", "", "Count records from a snapshot file instead of graphs")
	statsCmd.Flags().IntVar(&statsJobs, "jobs", 0, "Concurrent graphs (default: from config)")
	statsCmd.Flags().BoolVar(&statsNoCache, "no-cache", false, "Skip the record cache")
	statsCmd.Flags().IntVar(&statsRecent, "recent", 0, "Show the last N recorded runs instead of counting")
	rootCmd.AddCommand(statsCmd)
}

// StatsResponseCLI contains counting results for CLI output
type StatsResponseCLI struct {
	Profile      string                 `json:"profile"`
	Predicate    string                 `json:"predicate"`
	ExcludePaths []string               `json:"excludePaths,omitempty"`
	Matched      int                    `json:"matched"`
	Excluded     int                    `json:"excluded"`
	StableTotal  int                    `json:"stableTotal"`
	Potential    int                    `json:"potential"`
	Ratio        float64                `json:"ratio"`
	Coverage     string                 `json:"coverage"`
	Summary      classify.Summary       `json:"summary"`
	Graphs       []pipeline.GraphResult `json:"graphs,omitempty"`
	Snapshot     string                 `json:"snapshot,omitempty"`
	RunID        string                 `json:"runId,omitempty"`
}

// RunsResponseCLI lists recorded stats runs
type RunsResponseCLI struct {
	Runs []storage.StatsRun `json:"runs"`
}

func runStats(cmd *cobra.Command, args []string) {
	root := mustGetWorkspace()
	cfg, logger := commandSetup(root)

	if statsRecent > 0 {
		runRecentStats(root, logger)
		return
	}

	prof := resolveProfile(root, cfg)

	excludes := prof.ExcludePaths
	if len(statsExclude) > 0 {
		excludes = append(append([]string{}, excludes...), statsExclude...)
	}

	var (
		records []flatten.Record
		graphs  []pipeline.GraphResult
		db      *storage.DB
	)

	if statsSnapshot != "" {
		snap, err := export.ReadSnapshot(statsSnapshot)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		records = snap.Records
	} else {
		paths := graphPaths(root, cfg, args)
		if len(paths) == 0 {
			fmt.Fprintln(os.Stderr, "Error: no graphs configured; pass paths or run 'rustdex init'")
			os.Exit(1)
		}

		// One database serves both the record cache and the run log, so
		// open it even when --no-cache bypasses the cache.
		var cache pipeline.RecordCache
		if d, err := storage.Open(root, logger); err != nil {
			logger.Warn("Storage unavailable, run will not be recorded", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			db = d
			defer db.Close()
			if !statsNoCache && cfg.Cache.Enabled {
				cache = storage.NewRecordStore(db)
			}
		}

		jobs := statsJobs
		if jobs <= 0 {
			jobs = cfg.Graphs.Jobs
		}

		result, err := pipeline.Run(newContext(), paths, cache, pipeline.Options{Jobs: jobs}, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		records = result.Records
		graphs = result.Graphs
	}

	count := classify.Count(records, prof.PredicateFunc(), excludes)

	resp := &StatsResponseCLI{
		Profile:      prof.Name,
		Predicate:    prof.Predicate,
		ExcludePaths: excludes,
		Matched:      count.Matched,
		Excluded:     count.Excluded,
		StableTotal:  count.StableTotal,
		Potential:    count.Potential(),
		Ratio:        count.Ratio(),
		Coverage:     output.FormatPercent(count.Ratio()),
		Summary:      classify.Summarize(records),
		Graphs:       graphs,
		Snapshot:     statsSnapshot,
	}

	// Snapshot runs are offline reads; only live graph runs land in the log.
	if db != nil && statsSnapshot == "" {
		hashes := make([]string, 0, len(graphs))
		for _, g := range graphs {
			hashes = append(hashes, g.Hash)
		}
		run, err := storage.NewRunStore(db).Record(storage.StatsRun{
			Profile:     prof.Name,
			Predicate:   prof.Predicate,
			Matched:     count.Matched,
			Excluded:    count.Excluded,
			StableTotal: count.StableTotal,
			GraphHashes: hashes,
		})
		if err != nil {
			logger.Warn("Failed to record stats run", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			resp.RunID = run.ID
		}
	}

	text, err := FormatResponse(resp, OutputFormat(statsFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(text)
}

// resolveProfile picks the counting profile: a named file or builtin via
// --profile, otherwise the builtin matching --predicate.
func resolveProfile(root string, cfg *config.Config) *profile.Profile {
	if statsProfile != "" {
		prof, err := profile.Find(profilesDir(root, cfg), statsProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return prof
	}

	prof, ok := profile.Builtin(statsPredicate)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown predicate %q (const, async)\n", statsPredicate)
		os.Exit(1)
	}
	return prof
}

func runRecentStats(root string, logger *logging.Logger) {
	db, err := storage.Open(root, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot open storage: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	runs, err := storage.NewRunStore(db).RecentRuns(statsRecent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	text, err := FormatResponse(&RunsResponseCLI{Runs: runs}, OutputFormat(statsFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(text)
}
