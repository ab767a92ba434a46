package main

import (
	"fmt"
	"strings"

	"rustdex/internal/classify"
	"rustdex/internal/output"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as deterministic JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := output.DeterministicEncodeIndented(resp, "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *StatsResponseCLI:
		return formatStatsHuman(v)
	case *ItemResponseCLI:
		return formatItemHuman(v)
	case *DoctorResponseCLI:
		return formatDoctorHuman(v)
	case *RunsResponseCLI:
		return formatRunsHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// formatStatsHuman formats a StatsResponseCLI in human-readable format
func formatStatsHuman(resp *StatsResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Surface Statistics - %s\n", resp.Predicate))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if resp.Profile != "" {
		b.WriteString(fmt.Sprintf("Profile: %s\n", resp.Profile))
	}
	if resp.Snapshot != "" {
		b.WriteString(fmt.Sprintf("Snapshot: %s\n", resp.Snapshot))
	}
	if len(resp.ExcludePaths) > 0 {
		b.WriteString(fmt.Sprintf("Excluded prefixes: %s\n", strings.Join(resp.ExcludePaths, ", ")))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Matched:      %d\n", resp.Matched))
	b.WriteString(fmt.Sprintf("Excluded:     %d\n", resp.Excluded))
	b.WriteString(fmt.Sprintf("Stable total: %d\n", resp.StableTotal))
	b.WriteString(fmt.Sprintf("Potential:    %d\n", resp.Potential))
	b.WriteString(fmt.Sprintf("Coverage:     %s\n", resp.Coverage))

	b.WriteString("\nSurface by kind:\n")
	b.WriteString(fmt.Sprintf("  %-10s %7s %7s %9s %8s\n", "Kind", "Total", "Stable", "Unstable", "Generic"))
	kinds := []struct {
		name string
		cat  classify.CategorySummary
	}{
		{"traits", resp.Summary.Traits},
		{"structs", resp.Summary.Structs},
		{"enums", resp.Summary.Enums},
		{"functions", resp.Summary.Functions},
		{"impls", resp.Summary.Impls},
	}
	for _, k := range kinds {
		b.WriteString(fmt.Sprintf("  %-10s %7d %7d %9d %8d\n",
			k.name, k.cat.Total, k.cat.Stable, k.cat.Unstable, k.cat.Generic))
	}

	if len(resp.Graphs) > 0 {
		b.WriteString("\nGraphs:\n")
		for _, g := range resp.Graphs {
			cached := ""
			if g.Cached {
				cached = " (cached)"
			}
			b.WriteString(fmt.Sprintf("  %s: %d records%s\n", g.Path, g.Records, cached))
		}
	}

	if resp.RunID != "" {
		b.WriteString(fmt.Sprintf("\nRecorded as run %s\n", resp.RunID))
	}

	return b.String(), nil
}

// formatItemHuman formats an ItemResponseCLI in human-readable format
func formatItemHuman(resp *ItemResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Item %s\n", resp.ID))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Graph: %s\n", resp.Graph))

	if resp.Record != nil {
		b.WriteString(fmt.Sprintf("Name: %s\n", resp.Record.Name))
		b.WriteString(fmt.Sprintf("Kind: %s\n", resp.Record.Kind))
		b.WriteString(fmt.Sprintf("Path: %s\n", resp.Record.Path))
		b.WriteString(fmt.Sprintf("Declaration: %s\n", resp.Record.Decl))
		b.WriteString(fmt.Sprintf("Stability: %s\n", resp.Record.Stability))
		if resp.Record.HasGenerics {
			b.WriteString("Generic: yes\n")
		}
		if resp.Record.FnCount > 0 {
			b.WriteString(fmt.Sprintf("Methods: %d\n", resp.Record.FnCount))
		}
		if resp.Record.TraitPath != "" {
			foreign := ""
			if resp.Record.TraitForeign {
				foreign = " (foreign)"
			}
			b.WriteString(fmt.Sprintf("Trait: %s%s\n", resp.Record.TraitPath, foreign))
		}
	} else {
		b.WriteString(fmt.Sprintf("Terminal: %s %s (not a surface item)\n", resp.TerminalKind, resp.TerminalName))
	}

	if len(resp.Hops) > 0 {
		b.WriteString("\nResolution chain:\n")
		for i, hop := range resp.Hops {
			b.WriteString(fmt.Sprintf("  %d. %s (use %s)\n", i+1, hop.ID, hop.Source))
		}
		b.WriteString(fmt.Sprintf("  -> %s\n", resp.TerminalID))
	}

	return b.String(), nil
}

// formatDoctorHuman formats a DoctorResponseCLI in human-readable format
func formatDoctorHuman(resp *DoctorResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("rustdex Doctor\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	// Overall health
	healthIcon := "✓"
	healthText := "All checks passed"
	if !resp.Healthy {
		healthIcon = "✗"
		healthText = "Issues found"
	}
	b.WriteString(fmt.Sprintf("%s %s\n\n", healthIcon, healthText))

	// Checks
	for _, check := range resp.Checks {
		var icon string
		switch check.Status {
		case "pass":
			icon = "✓"
		case "warn":
			icon = "⚠"
		case "fail":
			icon = "✗"
		default:
			icon = "?"
		}

		b.WriteString(fmt.Sprintf("%s %s: %s\n", icon, check.Name, check.Message))

		// Suggested fixes
		if len(check.SuggestedFixes) > 0 {
			b.WriteString("  Suggested fixes:\n")
			for _, fix := range check.SuggestedFixes {
				b.WriteString(fmt.Sprintf("    - %s\n", fix.Description))
				if fix.Command != "" {
					b.WriteString(fmt.Sprintf("      $ %s\n", fix.Command))
				}
			}
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// formatRunsHuman formats a RunsResponseCLI in human-readable format
func formatRunsHuman(resp *RunsResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Recent Stats Runs\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(resp.Runs) == 0 {
		b.WriteString("No recorded runs.\n")
		return b.String(), nil
	}

	for i, run := range resp.Runs {
		result := run.Result()
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, run.CreatedAt.Format("2006-01-02 15:04:05")))
		b.WriteString(fmt.Sprintf("   Profile: %s (predicate: %s)\n", run.Profile, run.Predicate))
		b.WriteString(fmt.Sprintf("   Matched %d of %d potential (%s), %d excluded\n",
			run.Matched, result.Potential(), output.FormatPercent(result.Ratio()), run.Excluded))
		b.WriteString(fmt.Sprintf("   Graphs: %d, ID: %s\n", len(run.GraphHashes), run.ID))
	}

	return b.String(), nil
}
