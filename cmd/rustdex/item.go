package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	rdxerrors "rustdex/internal/errors"
	"rustdex/internal/flatten"
	"rustdex/internal/index"
	"rustdex/internal/ir"
	"rustdex/internal/resolve"
)

var (
	itemGraph  string
	itemFormat string
)

var itemCmd = &cobra.Command{
	Use:   "item <id>",
	Short: "Resolve one item id through its re-export chain",
	Long: `Item looks up a single id, follows its re-export chain to the terminal
item, and prints the flattened record plus every hop taken.

Without --graph, the configured graphs are searched in order and the first
one containing the id wins.`,
	Args: cobra.ExactArgs(1),
	Run:  runItem,
}

func init() {
	itemCmd.Flags().StringVar(&itemGraph, "graph", "", "Look only in this graph file")
	itemCmd.Flags().StringVar(&itemFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(itemCmd)
}

// ItemResponseCLI contains one resolved item for CLI output
type ItemResponseCLI struct {
	ID           string          `json:"id"`
	Graph        string          `json:"graph"`
	Record       *flatten.Record `json:"record,omitempty"`
	TerminalID   string          `json:"terminalId"`
	TerminalName string          `json:"terminalName,omitempty"`
	TerminalKind string          `json:"terminalKind"`
	Hops         []ItemHopCLI    `json:"hops,omitempty"`
}

// ItemHopCLI is one re-export step of a resolution chain
type ItemHopCLI struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

func runItem(cmd *cobra.Command, args []string) {
	root := mustGetWorkspace()
	cfg, _ := commandSetup(root)

	id := ir.ID(args[0])

	paths := []string{itemGraph}
	if itemGraph == "" {
		paths = graphPaths(root, cfg, nil)
		if len(paths) == 0 {
			fmt.Fprintln(os.Stderr, "Error: no graphs configured; pass --graph or run 'rustdex init'")
			os.Exit(1)
		}
	}

	for _, path := range paths {
		graph, err := ir.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ix := index.New(graph)
		if _, ok := ix.Item(id); !ok {
			continue
		}

		trace, err := resolve.New(ix).Trace(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printItem(path, id, ix, trace)
		return
	}

	err := rdxerrors.New(rdxerrors.ItemNotFound,
		fmt.Sprintf("item %s not found in any searched graph", id), nil)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printItem(path string, id ir.ID, ix *index.Index, trace *resolve.Trace) {
	resp := &ItemResponseCLI{
		ID:           string(id),
		Graph:        path,
		TerminalID:   string(trace.Item.ID),
		TerminalName: trace.Item.Name,
		TerminalKind: string(trace.Item.Inner.Kind()),
	}
	for _, hop := range trace.Hops {
		resp.Hops = append(resp.Hops, ItemHopCLI{
			ID:     string(hop.ID),
			Name:   hop.Name,
			Source: hop.Source,
		})
	}

	if record, ok := flatten.New(ix).Describe(trace.Item); ok {
		resp.Record = &record
	}

	text, err := FormatResponse(resp, OutputFormat(itemFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(text)
}
