package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	rdxerrors "rustdex/internal/errors"
	"rustdex/internal/flatten"
	"rustdex/internal/ir"
	"rustdex/internal/logging"
)

const alphaGraph = `{
  "root": "0:0",
  "crate_version": "1.0.0",
  "format_version": 24,
  "index": {
    "0:0": {"id": "0:0", "name": "alpha", "inner": {"module": {"items": ["0:1"]}}},
    "0:1": {
      "id": "0:1",
      "name": "go_fast",
      "attrs": ["#[stable(feature = \"rust1\", since = \"1.0.0\")]"],
      "inner": {"function": {"decl": {"inputs": [], "output": null}, "header": {"is_const": true}, "has_body": true}}
    }
  },
  "paths": {
    "0:0": {"path": ["alpha"], "kind": "module"}
  }
}`

const betaGraph = `{
  "root": "0:0",
  "crate_version": "1.0.0",
  "format_version": 24,
  "index": {
    "0:0": {"id": "0:0", "name": "beta", "inner": {"module": {"items": ["0:1"]}}},
    "0:1": {
      "id": "0:1",
      "name": "wait_here",
      "inner": {"function": {"decl": {"inputs": [], "output": null}, "header": {"is_async": true}, "has_body": true}}
    }
  },
  "paths": {
    "0:0": {"path": ["beta"], "kind": "module"}
  }
}`

func writeGraphs(t *testing.T, contents ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(contents))
	for i, c := range contents {
		paths[i] = filepath.Join(dir, string(rune('a'+i))+".json")
		if err := os.WriteFile(paths[i], []byte(c), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

func quietLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Level: logging.ErrorLevel, Output: io.Discard})
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]flatten.Record
	hits    int
	puts    int
	failGet bool
	failPut bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]flatten.Record)}
}

func (c *fakeCache) Get(hash string) ([]flatten.Record, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, false, errors.New("cache offline")
	}
	records, ok := c.entries[hash]
	if ok {
		c.hits++
	}
	return records, ok, nil
}

func (c *fakeCache) Put(g *ir.Graph, records []flatten.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failPut {
		return errors.New("cache offline")
	}
	c.puts++
	c.entries[g.Hash] = records
	return nil
}

func TestRunMergesGraphs(t *testing.T) {
	paths := writeGraphs(t, alphaGraph, betaGraph)

	res, err := Run(context.Background(), paths, nil, Options{}, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(res.Records))
	}
	if res.Records[0].Path != "alpha" || res.Records[1].Path != "beta" {
		t.Errorf("paths = [%s %s], want [alpha beta]", res.Records[0].Path, res.Records[1].Path)
	}
	if !res.Records[0].IsConst || !res.Records[1].IsAsync {
		t.Errorf("flags lost in merge: %+v", res.Records)
	}

	if len(res.Graphs) != 2 {
		t.Fatalf("got %d graph results, want 2", len(res.Graphs))
	}
	for i, g := range res.Graphs {
		if g.Path != paths[i] {
			t.Errorf("graph %d path = %q, want %q (input order)", i, g.Path, paths[i])
		}
		if g.Hash == "" || g.Records != 1 || g.Cached {
			t.Errorf("graph %d = %+v", i, g)
		}
	}
}

func TestRunUsesCache(t *testing.T) {
	paths := writeGraphs(t, alphaGraph)
	cache := newFakeCache()

	first, err := Run(context.Background(), paths, cache, Options{}, quietLogger())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if cache.puts != 1 || cache.hits != 0 {
		t.Fatalf("after first run: puts=%d hits=%d, want 1/0", cache.puts, cache.hits)
	}

	second, err := Run(context.Background(), paths, cache, Options{}, quietLogger())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if cache.puts != 1 || cache.hits != 1 {
		t.Errorf("after second run: puts=%d hits=%d, want 1/1", cache.puts, cache.hits)
	}
	if !second.Graphs[0].Cached {
		t.Error("second run not marked cached")
	}
	if !reflect.DeepEqual(first.Records, second.Records) {
		t.Error("cached records differ from flattened ones")
	}
}

func TestRunCacheFailuresAreNonFatal(t *testing.T) {
	paths := writeGraphs(t, alphaGraph)
	cache := newFakeCache()
	cache.failGet = true
	cache.failPut = true

	res, err := Run(context.Background(), paths, cache, Options{}, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Records) != 1 {
		t.Errorf("got %d records, want 1 despite cache failures", len(res.Records))
	}
}

func TestRunPropagatesLoadErrors(t *testing.T) {
	paths := writeGraphs(t, alphaGraph)
	paths = append(paths, filepath.Join(t.TempDir(), "missing.json"))

	_, err := Run(context.Background(), paths, nil, Options{}, quietLogger())
	if rdxerrors.CodeOf(err) != rdxerrors.GraphMissing {
		t.Fatalf("err = %v, want GRAPH_MISSING", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	paths := writeGraphs(t, alphaGraph, betaGraph)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, paths, nil, Options{}, quietLogger())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunNoPaths(t *testing.T) {
	res, err := Run(context.Background(), nil, nil, Options{}, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Records) != 0 || len(res.Graphs) != 0 {
		t.Errorf("empty run produced %+v", res)
	}
}

func TestRunSingleJob(t *testing.T) {
	paths := writeGraphs(t, alphaGraph, betaGraph)

	res, err := Run(context.Background(), paths, nil, Options{Jobs: 1}, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Records) != 2 {
		t.Errorf("got %d records, want 2", len(res.Records))
	}
}
