package testutil

import (
	"fmt"
	"strings"

	"rustdex/internal/ir"
)

// StableAttr marks an item as stable since Rust 1.0. Items added without
// it classify as unstable.
const StableAttr = `#[stable(feature = "rust1", since = "1.0.0")]`

// GraphBuilder assembles documentation graphs for tests. Ids are handed
// out sequentially; the first module added becomes the graph root.
type GraphBuilder struct {
	graph *ir.Graph
	next  int
}

// NewGraphBuilder returns an empty builder.
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		graph: &ir.Graph{
			FormatVersion: 24,
			Index:         make(map[ir.ID]ir.Item),
			Paths:         make(map[ir.ID]ir.Summary),
		},
	}
}

// NextID hands out a fresh id without adding an item.
func (b *GraphBuilder) NextID() ir.ID {
	b.next++
	return ir.ID(fmt.Sprintf("0:%d", b.next))
}

// Add inserts an item under a fresh id with no canonical path entry.
func (b *GraphBuilder) Add(name string, inner ir.Definition, attrs ...string) ir.ID {
	id := b.NextID()
	b.graph.Index[id] = ir.Item{ID: id, Name: name, Attrs: attrs, Inner: inner}
	return id
}

// AddPathed inserts an item and records its canonical path, given as a
// "::"-joined string ending in the item's name.
func (b *GraphBuilder) AddPathed(path string, inner ir.Definition, attrs ...string) ir.ID {
	segs := strings.Split(path, "::")
	name := segs[len(segs)-1]
	id := b.Add(name, inner, attrs...)
	b.graph.Paths[id] = ir.Summary{Path: segs, Kind: string(inner.Kind())}
	return id
}

// Module inserts a public module at the given canonical path. The first
// module added becomes the graph root.
func (b *GraphBuilder) Module(path string, items ...ir.ID) ir.ID {
	id := b.AddPathed(path, ir.Module{Items: items})
	if b.graph.Root == "" {
		b.graph.Root = id
	}
	return id
}

// StrippedModule inserts a private module, which enumeration skips.
func (b *GraphBuilder) StrippedModule(path string, items ...ir.ID) ir.ID {
	return b.AddPathed(path, ir.Module{IsStripped: true, Items: items})
}

// Import inserts a re-export forwarding to target.
func (b *GraphBuilder) Import(name string, target ir.ID) ir.ID {
	return b.Add(name, ir.Import{Source: name, Name: name, Target: target})
}

// SetPath records a canonical path for an existing id.
func (b *GraphBuilder) SetPath(id ir.ID, path string, kind string) {
	b.graph.Paths[id] = ir.Summary{Path: strings.Split(path, "::"), Kind: kind}
}

// Graph returns the assembled graph.
func (b *GraphBuilder) Graph() *ir.Graph {
	return b.graph
}
