// Package index provides read-only lookups over a decoded documentation
// graph: item access by id, canonical path strings, and deterministic
// module enumeration.
package index

import (
	"sort"
	"strings"

	"rustdex/internal/ir"
)

// PathSeparator joins canonical path segments.
const PathSeparator = "::"

// Index wraps a graph with lookup helpers. It holds no state of its own
// and is safe for concurrent use.
type Index struct {
	graph *ir.Graph
}

// New builds an index over g.
func New(g *ir.Graph) *Index {
	return &Index{graph: g}
}

// Graph returns the underlying graph.
func (ix *Index) Graph() *ir.Graph {
	return ix.graph
}

// Item looks up an item by id.
func (ix *Index) Item(id ir.ID) (ir.Item, bool) {
	item, ok := ix.graph.Index[id]
	return item, ok
}

// Path returns the canonical path of id as a "::"-joined string. The
// second result is false when the graph records no path for the id.
func (ix *Index) Path(id ir.ID) (string, bool) {
	sum, ok := ix.graph.Paths[id]
	if !ok || len(sum.Path) == 0 {
		return "", false
	}
	return strings.Join(sum.Path, PathSeparator), true
}

// ParentPath returns the canonical path of id's enclosing module: the
// recorded path with the final segment dropped. Ids whose path is a
// single segment (crate roots) have an empty parent.
func (ix *Index) ParentPath(id ir.ID) (string, bool) {
	sum, ok := ix.graph.Paths[id]
	if !ok || len(sum.Path) == 0 {
		return "", false
	}
	return strings.Join(sum.Path[:len(sum.Path)-1], PathSeparator), true
}

// ModuleEntry pairs a public module with its canonical path.
type ModuleEntry struct {
	ID     ir.ID
	Path   string
	Module ir.Module
}

// Modules enumerates the graph's public modules sorted by canonical
// path. Stripped (private) modules and modules without a recorded path
// are skipped, which keeps every enumeration of the same graph
// identical.
func (ix *Index) Modules() []ModuleEntry {
	var entries []ModuleEntry
	for id, item := range ix.graph.Index {
		mod, ok := item.Inner.(ir.Module)
		if !ok || mod.IsStripped {
			continue
		}
		path, ok := ix.Path(id)
		if !ok {
			continue
		}
		entries = append(entries, ModuleEntry{ID: id, Path: path, Module: mod})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries
}

// Len reports the number of items in the graph.
func (ix *Index) Len() int {
	return len(ix.graph.Index)
}
