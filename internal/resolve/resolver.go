// Package resolve follows re-export chains in a documentation graph to
// concrete definitions.
//
// Module item lists reference traits, functions and types both directly
// and through re-exports, and a re-export may forward to another
// re-export. Every resolver walks that chain with a visited set, so a
// graph whose aliases form a cycle resolves to "not found" instead of
// looping.
package resolve

import (
	"fmt"

	"rustdex/internal/index"
	"rustdex/internal/ir"

	rdxerrors "rustdex/internal/errors"
)

// MaxAliasDepth bounds the re-export chains Trace will follow. Chains
// longer than this are reported as an error rather than walked further.
const MaxAliasDepth = 32

// Resolver resolves ids against one graph.
type Resolver struct {
	ix *index.Index
}

// New builds a resolver over ix.
func New(ix *index.Index) *Resolver {
	return &Resolver{ix: ix}
}

// resolve walks id through any re-exports to the first non-import item.
// A re-export whose target lives outside the graph resolves to the
// import item itself; callers that need a concrete kind treat that as
// not found.
func (r *Resolver) resolve(id ir.ID) (ir.Item, bool) {
	visited := make(map[ir.ID]bool)
	for {
		if visited[id] {
			return ir.Item{}, false
		}
		visited[id] = true

		item, ok := r.ix.Item(id)
		if !ok {
			return ir.Item{}, false
		}
		imp, ok := item.Inner.(ir.Import)
		if !ok {
			return item, true
		}
		if imp.Target == "" {
			return item, true
		}
		id = imp.Target
	}
}

// Trait resolves id to a trait definition.
func (r *Resolver) Trait(id ir.ID) (ir.Item, ir.Trait, bool) {
	item, ok := r.resolve(id)
	if !ok {
		return ir.Item{}, ir.Trait{}, false
	}
	def, ok := item.Inner.(ir.Trait)
	if !ok {
		return ir.Item{}, ir.Trait{}, false
	}
	return item, def, true
}

// Struct resolves id to a struct definition.
func (r *Resolver) Struct(id ir.ID) (ir.Item, ir.Struct, bool) {
	item, ok := r.resolve(id)
	if !ok {
		return ir.Item{}, ir.Struct{}, false
	}
	def, ok := item.Inner.(ir.Struct)
	if !ok {
		return ir.Item{}, ir.Struct{}, false
	}
	return item, def, true
}

// Enum resolves id to an enum definition.
func (r *Resolver) Enum(id ir.ID) (ir.Item, ir.Enum, bool) {
	item, ok := r.resolve(id)
	if !ok {
		return ir.Item{}, ir.Enum{}, false
	}
	def, ok := item.Inner.(ir.Enum)
	if !ok {
		return ir.Item{}, ir.Enum{}, false
	}
	return item, def, true
}

// Function resolves id to a function definition.
func (r *Resolver) Function(id ir.ID) (ir.Item, ir.Function, bool) {
	item, ok := r.resolve(id)
	if !ok {
		return ir.Item{}, ir.Function{}, false
	}
	def, ok := item.Inner.(ir.Function)
	if !ok {
		return ir.Item{}, ir.Function{}, false
	}
	return item, def, true
}

// Impl resolves id to an impl block.
func (r *Resolver) Impl(id ir.ID) (ir.Item, ir.Impl, bool) {
	item, ok := r.resolve(id)
	if !ok {
		return ir.Item{}, ir.Impl{}, false
	}
	def, ok := item.Inner.(ir.Impl)
	if !ok {
		return ir.Item{}, ir.Impl{}, false
	}
	return item, def, true
}

// TraitItem pairs a resolved trait with its graph item.
type TraitItem struct {
	Item  ir.Item
	Trait ir.Trait
}

// StructItem pairs a resolved struct with its graph item.
type StructItem struct {
	Item   ir.Item
	Struct ir.Struct
}

// EnumItem pairs a resolved enum with its graph item.
type EnumItem struct {
	Item ir.Item
	Enum ir.Enum
}

// FunctionItem pairs a resolved function with its graph item.
type FunctionItem struct {
	Item     ir.Item
	Function ir.Function
}

// ImplItem pairs a resolved impl with its graph item.
type ImplItem struct {
	Item ir.Item
	Impl ir.Impl
}

// Traits resolves a batch of ids, silently skipping any that do not
// resolve to a trait. Order follows the input.
func (r *Resolver) Traits(ids []ir.ID) []TraitItem {
	var out []TraitItem
	for _, id := range ids {
		if item, def, ok := r.Trait(id); ok {
			out = append(out, TraitItem{Item: item, Trait: def})
		}
	}
	return out
}

// Structs resolves a batch of ids, silently skipping non-structs.
func (r *Resolver) Structs(ids []ir.ID) []StructItem {
	var out []StructItem
	for _, id := range ids {
		if item, def, ok := r.Struct(id); ok {
			out = append(out, StructItem{Item: item, Struct: def})
		}
	}
	return out
}

// Enums resolves a batch of ids, silently skipping non-enums.
func (r *Resolver) Enums(ids []ir.ID) []EnumItem {
	var out []EnumItem
	for _, id := range ids {
		if item, def, ok := r.Enum(id); ok {
			out = append(out, EnumItem{Item: item, Enum: def})
		}
	}
	return out
}

// Functions resolves a batch of ids, silently skipping non-functions.
func (r *Resolver) Functions(ids []ir.ID) []FunctionItem {
	var out []FunctionItem
	for _, id := range ids {
		if item, def, ok := r.Function(id); ok {
			out = append(out, FunctionItem{Item: item, Function: def})
		}
	}
	return out
}

// Impls resolves a batch of ids, silently skipping non-impls.
func (r *Resolver) Impls(ids []ir.ID) []ImplItem {
	var out []ImplItem
	for _, id := range ids {
		if item, def, ok := r.Impl(id); ok {
			out = append(out, ImplItem{Item: item, Impl: def})
		}
	}
	return out
}

// Hop is one re-export step of an alias chain.
type Hop struct {
	ID     ir.ID
	Name   string
	Source string
}

// Trace is a fully recorded resolution: every re-export hop followed,
// plus the terminal item. A terminal Import means the chain leaves the
// graph.
type Trace struct {
	Hops []Hop
	Item ir.Item
}

// Trace resolves id while recording each hop, for diagnostics. Unlike
// the kind resolvers it reports failures as errors: ItemNotFound when
// the id or a hop target is absent, AliasCycle when the chain revisits
// an id, and AliasChainTooDeep past MaxAliasDepth.
func (r *Resolver) Trace(id ir.ID) (*Trace, error) {
	visited := make(map[ir.ID]bool)
	trace := &Trace{}

	for {
		if visited[id] {
			return nil, rdxerrors.New(rdxerrors.AliasCycle,
				fmt.Sprintf("re-export chain for %s loops back on itself", id), nil).
				WithDetails(map[string]interface{}{"hops": hopIDs(trace.Hops)})
		}
		visited[id] = true

		item, ok := r.ix.Item(id)
		if !ok {
			msg := fmt.Sprintf("item %s not found in graph", id)
			if len(trace.Hops) > 0 {
				last := trace.Hops[len(trace.Hops)-1]
				msg = fmt.Sprintf("re-export target %s not found (via %s)", id, last.ID)
			}
			return nil, rdxerrors.New(rdxerrors.ItemNotFound, msg, nil)
		}

		imp, ok := item.Inner.(ir.Import)
		if !ok || imp.Target == "" {
			trace.Item = item
			return trace, nil
		}

		if len(trace.Hops) >= MaxAliasDepth {
			return nil, rdxerrors.New(rdxerrors.AliasChainTooDeep,
				fmt.Sprintf("re-export chain for %s exceeds %d hops", trace.Hops[0].ID, MaxAliasDepth), nil)
		}
		trace.Hops = append(trace.Hops, Hop{ID: id, Name: imp.Name, Source: imp.Source})
		id = imp.Target
	}
}

func hopIDs(hops []Hop) []string {
	ids := make([]string, len(hops))
	for i, h := range hops {
		ids[i] = string(h.ID)
	}
	return ids
}
