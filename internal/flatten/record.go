// Package flatten turns a documentation graph into flat, classified
// API surface records.
//
// A record is a self-contained row: kind, location, rendered
// declaration and classification flags, with no references back into
// the graph. Record sets are always kept in canonical order, sorted by
// (kind, path, name) with exact duplicates removed, so flattening the
// same graph twice, or merging the same sets in any order, yields
// byte-identical output.
package flatten

import (
	"sort"
	"strings"
)

// Kind tags a record's category.
type Kind string

const (
	KindTrait    Kind = "trait"
	KindStruct   Kind = "struct"
	KindEnum     Kind = "enum"
	KindFunction Kind = "function"
	KindImpl     Kind = "impl"
)

// Stability classifies a record as stable or unstable API surface.
type Stability string

const (
	Stable   Stability = "stable"
	Unstable Stability = "unstable"
)

// IsStable reports whether s is the stable classification.
func (s Stability) IsStable() bool { return s == Stable }

// StabilityOf classifies raw item attributes: anything carrying a
// `#[stable` attribute is stable, everything else is unstable.
func StabilityOf(attrs []string) Stability {
	for _, a := range attrs {
		if strings.Contains(a, "#[stable") {
			return Stable
		}
	}
	return Unstable
}

// Record is one flattened API surface item.
type Record struct {
	Kind Kind   `json:"kind" msgpack:"kind"`
	ID   string `json:"id" msgpack:"id"`
	Name string `json:"name" msgpack:"name"`

	// Path is the canonical path of the enclosing module. It never
	// includes the record's own name.
	Path string `json:"path" msgpack:"path"`

	// Decl is the rendered single-line declaration.
	Decl string `json:"decl" msgpack:"decl"`

	HasGenerics bool `json:"hasGenerics" msgpack:"hasGenerics"`

	// IsConst and IsAsync are only ever set on function records.
	IsConst bool `json:"isConst" msgpack:"isConst"`
	IsAsync bool `json:"isAsync" msgpack:"isAsync"`

	Stability Stability `json:"stability" msgpack:"stability"`

	// FnCount is the number of member functions: trait members for
	// trait records, inherent-impl members for structs and enums.
	// Always zero for functions and impls.
	FnCount int `json:"fnCount" msgpack:"fnCount"`

	// TraitPath is set on impl records: the canonical path of the
	// implemented trait, falling back to its bare name when the graph
	// records no path.
	TraitPath string `json:"traitPath,omitempty" msgpack:"traitPath,omitempty"`

	// TraitForeign marks impl records whose trait is not defined in
	// this graph. Such impls default to the enclosing stability
	// because the trait's own attributes are out of reach.
	TraitForeign bool `json:"traitForeign,omitempty" msgpack:"traitForeign,omitempty"`
}

// FQN returns the record's fully qualified name.
func (r Record) FQN() string {
	if r.Path == "" {
		return r.Name
	}
	return r.Path + "::" + r.Name
}

// Less is the canonical record order: (kind, path, name) first, then
// every remaining field, so ordering is total and merge results never
// depend on input order.
func Less(a, b Record) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.Path != b.Path {
		return a.Path < b.Path
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.Decl != b.Decl {
		return a.Decl < b.Decl
	}
	if a.ID != b.ID {
		return a.ID < b.ID
	}
	if a.Stability != b.Stability {
		return a.Stability < b.Stability
	}
	if a.FnCount != b.FnCount {
		return a.FnCount < b.FnCount
	}
	if a.TraitPath != b.TraitPath {
		return a.TraitPath < b.TraitPath
	}
	if a.HasGenerics != b.HasGenerics {
		return b.HasGenerics
	}
	if a.IsConst != b.IsConst {
		return b.IsConst
	}
	if a.IsAsync != b.IsAsync {
		return b.IsAsync
	}
	return !a.TraitForeign && b.TraitForeign
}

// Normalize sorts records into canonical order and drops exact
// duplicates in place.
func Normalize(records []Record) []Record {
	if len(records) == 0 {
		return records
	}
	sort.Slice(records, func(i, j int) bool {
		return Less(records[i], records[j])
	})
	out := records[:1]
	for _, r := range records[1:] {
		if r != out[len(out)-1] {
			out = append(out, r)
		}
	}
	return out
}

// Merge combines record sets from any number of graphs into one
// normalized surface. Merging is associative and commutative: any
// grouping or ordering of the same sets produces the same result.
func Merge(sets ...[]Record) []Record {
	var total int
	for _, s := range sets {
		total += len(s)
	}
	all := make([]Record, 0, total)
	for _, s := range sets {
		all = append(all, s...)
	}
	return Normalize(all)
}
