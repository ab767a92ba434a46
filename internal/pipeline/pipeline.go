// Package pipeline turns graph files into one merged record set. Each
// graph is loaded, flattened (or served from the record cache), and the
// per-graph results are merged into canonical order.
//
// Graphs flatten concurrently with a bounded worker count. Every
// goroutine writes to its own result slot, so merging needs no shared
// state. A failing graph aborts the whole run; a failing cache only
// logs a warning.
package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"rustdex/internal/flatten"
	"rustdex/internal/index"
	"rustdex/internal/ir"
	"rustdex/internal/logging"
)

// DefaultJobs bounds concurrent graph flattening when the caller does
// not choose a limit.
const DefaultJobs = 4

// RecordCache stores flattened records keyed by graph content hash.
// Both methods may be called from multiple goroutines.
type RecordCache interface {
	Get(hash string) ([]flatten.Record, bool, error)
	Put(g *ir.Graph, records []flatten.Record) error
}

// Options tunes a pipeline run.
type Options struct {
	// Jobs caps concurrent graphs; <= 0 means DefaultJobs.
	Jobs int
}

// GraphResult describes one graph's contribution to a run.
type GraphResult struct {
	Path    string `json:"path"`
	Hash    string `json:"hash"`
	Records int    `json:"records"`
	Cached  bool   `json:"cached"`
}

// Result is a completed pipeline run.
type Result struct {
	// Records is the merged, ordered, deduplicated record set.
	Records []flatten.Record
	// Graphs lists per-graph outcomes in input order.
	Graphs []GraphResult
}

// Run flattens every graph file and merges the results. cache may be
// nil to skip caching entirely.
func Run(ctx context.Context, paths []string, cache RecordCache, opts Options, logger *logging.Logger) (*Result, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{Level: logging.ErrorLevel})
	}
	if len(paths) == 0 {
		return &Result{}, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = DefaultJobs
	}
	if jobs > len(paths) {
		jobs = len(paths)
	}

	sets := make([][]flatten.Record, len(paths))
	graphs := make([]GraphResult, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path // per-iteration copies; this module builds as go 1.21
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			records, info, err := flattenOne(path, cache, logger)
			if err != nil {
				return err
			}
			sets[i] = records
			graphs[i] = info
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := flatten.Merge(sets...)
	logger.Debug("pipeline complete", map[string]interface{}{
		"graphs":  len(paths),
		"records": len(merged),
	})
	return &Result{Records: merged, Graphs: graphs}, nil
}

func flattenOne(path string, cache RecordCache, logger *logging.Logger) ([]flatten.Record, GraphResult, error) {
	graph, err := ir.Load(path)
	if err != nil {
		return nil, GraphResult{}, err
	}

	log := logger.With(map[string]interface{}{"graph": path})
	info := GraphResult{Path: path, Hash: graph.Hash}

	if cache != nil {
		records, ok, err := cache.Get(graph.Hash)
		if err != nil {
			log.Warn("record cache read failed", map[string]interface{}{"error": err.Error()})
		} else if ok {
			info.Records = len(records)
			info.Cached = true
			log.Debug("record cache hit", map[string]interface{}{"records": len(records)})
			return records, info, nil
		}
	}

	records := flatten.New(index.New(graph)).Flatten()
	info.Records = len(records)

	if cache != nil {
		if err := cache.Put(graph, records); err != nil {
			log.Warn("record cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	log.Debug("flattened graph", map[string]interface{}{"records": len(records)})
	return records, info, nil
}
