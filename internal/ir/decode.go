package ir

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Decode parses a serialized documentation graph.
//
// The accepted encoding is the rustdoc JSON layout: a top-level object
// with root/crate_version/format_version/index/paths, where every
// polymorphic value (item payloads, types, bounds, predicates, terms) is
// a single-key object whose key is the variant tag. Ids may be strings
// or integers; integer ids are kept as their decimal text.
func Decode(data []byte) (*Graph, error) {
	var raw rawGraph
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	g := &Graph{
		Root:          ID(raw.Root),
		CrateVersion:  raw.CrateVersion,
		FormatVersion: raw.FormatVersion,
		Index:         make(map[ID]Item, len(raw.Index)),
		Paths:         make(map[ID]Summary, len(raw.Paths)),
	}

	for key, ri := range raw.Index {
		item, err := decodeItem(ID(key), ri)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", key, err)
		}
		g.Index[ID(key)] = item
	}
	for key, rs := range raw.Paths {
		g.Paths[ID(key)] = Summary{Path: rs.Path, Kind: rs.Kind}
	}
	return g, nil
}

type rawGraph struct {
	Root          rawID                 `json:"root"`
	CrateVersion  string                `json:"crate_version"`
	FormatVersion int                   `json:"format_version"`
	Index         map[string]rawItem    `json:"index"`
	Paths         map[string]rawSummary `json:"paths"`
}

type rawItem struct {
	Name  string          `json:"name"`
	Attrs []string        `json:"attrs"`
	Docs  string          `json:"docs"`
	Inner json.RawMessage `json:"inner"`
}

type rawSummary struct {
	Path []string `json:"path"`
	Kind string   `json:"kind"`
}

// rawID tolerates both encodings rustdoc has used for ids: JSON strings
// and bare integers.
type rawID string

func (id *rawID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty id")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = rawID(s)
		return nil
	}
	if string(data) == "null" {
		*id = ""
		return nil
	}
	*id = rawID(data)
	return nil
}

// tagOf splits a single-key tagged object into its variant tag and
// payload.
func tagOf(raw json.RawMessage) (string, json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", nil, err
	}
	if len(m) != 1 {
		return "", nil, fmt.Errorf("want a single-key tagged object, got %d keys", len(m))
	}
	for tag, payload := range m {
		return tag, payload, nil
	}
	return "", nil, nil // unreachable
}

func decodeItem(id ID, raw rawItem) (Item, error) {
	if len(raw.Inner) == 0 || string(raw.Inner) == "null" {
		return Item{}, fmt.Errorf("missing inner payload")
	}
	inner, err := decodeDefinition(raw.Inner)
	if err != nil {
		return Item{}, err
	}
	return Item{
		ID:    id,
		Name:  raw.Name,
		Attrs: raw.Attrs,
		Docs:  raw.Docs,
		Inner: inner,
	}, nil
}

func decodeDefinition(raw json.RawMessage) (Definition, error) {
	tag, payload, err := tagOf(raw)
	if err != nil {
		return nil, err
	}

	switch tag {
	case "module":
		var p struct {
			IsStripped bool    `json:"is_stripped"`
			Items      []rawID `json:"items"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("module: %w", err)
		}
		return Module{IsStripped: p.IsStripped, Items: toIDs(p.Items)}, nil

	case "import", "use":
		var p struct {
			Source string `json:"source"`
			Name   string `json:"name"`
			Target rawID  `json:"id"`
			Glob   bool   `json:"is_glob"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("import: %w", err)
		}
		return Import{Source: p.Source, Name: p.Name, Target: ID(p.Target), Glob: p.Glob}, nil

	case "trait":
		var p struct {
			IsAuto   bool              `json:"is_auto"`
			IsUnsafe bool              `json:"is_unsafe"`
			Items    []rawID           `json:"items"`
			Generics rawGenerics       `json:"generics"`
			Bounds   []json.RawMessage `json:"bounds"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("trait: %w", err)
		}
		gen, err := decodeGenerics(p.Generics)
		if err != nil {
			return nil, fmt.Errorf("trait generics: %w", err)
		}
		bounds, err := decodeBounds(p.Bounds)
		if err != nil {
			return nil, fmt.Errorf("trait bounds: %w", err)
		}
		return Trait{
			IsAuto:   p.IsAuto,
			IsUnsafe: p.IsUnsafe,
			Items:    toIDs(p.Items),
			Generics: gen,
			Bounds:   bounds,
		}, nil

	case "struct":
		var p struct {
			Generics rawGenerics `json:"generics"`
			Impls    []rawID     `json:"impls"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("struct: %w", err)
		}
		gen, err := decodeGenerics(p.Generics)
		if err != nil {
			return nil, fmt.Errorf("struct generics: %w", err)
		}
		return Struct{Generics: gen, Impls: toIDs(p.Impls)}, nil

	case "enum":
		var p struct {
			Generics rawGenerics `json:"generics"`
			Impls    []rawID     `json:"impls"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("enum: %w", err)
		}
		gen, err := decodeGenerics(p.Generics)
		if err != nil {
			return nil, fmt.Errorf("enum generics: %w", err)
		}
		return Enum{Generics: gen, Impls: toIDs(p.Impls)}, nil

	case "function":
		var p struct {
			Decl struct {
				Inputs []rawParam      `json:"inputs"`
				Output json.RawMessage `json:"output"`
			} `json:"decl"`
			Generics rawGenerics `json:"generics"`
			Header   struct {
				IsConst  bool `json:"is_const"`
				IsUnsafe bool `json:"is_unsafe"`
				IsAsync  bool `json:"is_async"`
			} `json:"header"`
			HasBody bool `json:"has_body"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("function: %w", err)
		}
		gen, err := decodeGenerics(p.Generics)
		if err != nil {
			return nil, fmt.Errorf("function generics: %w", err)
		}
		inputs := make([]Param, 0, len(p.Decl.Inputs))
		for i, in := range p.Decl.Inputs {
			t, err := decodeType(in.Type)
			if err != nil {
				return nil, fmt.Errorf("function input %d: %w", i, err)
			}
			inputs = append(inputs, Param{Name: in.Name, Type: t})
		}
		output, err := decodeType(p.Decl.Output)
		if err != nil {
			return nil, fmt.Errorf("function output: %w", err)
		}
		return Function{
			Decl:     FnDecl{Inputs: inputs, Output: output},
			Generics: gen,
			Header: FnHeader{
				IsConst:  p.Header.IsConst,
				IsUnsafe: p.Header.IsUnsafe,
				IsAsync:  p.Header.IsAsync,
			},
			HasBody: p.HasBody,
		}, nil

	case "impl":
		var p struct {
			IsUnsafe  bool            `json:"is_unsafe"`
			Generics  rawGenerics     `json:"generics"`
			Trait     *rawTraitRef    `json:"trait"`
			For       json.RawMessage `json:"for"`
			Items     []rawID         `json:"items"`
			Synthetic bool            `json:"is_synthetic"`
			Blanket   json.RawMessage `json:"blanket_impl"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("impl: %w", err)
		}
		gen, err := decodeGenerics(p.Generics)
		if err != nil {
			return nil, fmt.Errorf("impl generics: %w", err)
		}
		forType, err := decodeType(p.For)
		if err != nil {
			return nil, fmt.Errorf("impl self type: %w", err)
		}
		blanket, err := decodeType(p.Blanket)
		if err != nil {
			return nil, fmt.Errorf("impl blanket type: %w", err)
		}
		return Impl{
			IsUnsafe:  p.IsUnsafe,
			Generics:  gen,
			Trait:     p.Trait.ref(),
			For:       forType,
			Items:     toIDs(p.Items),
			Synthetic: p.Synthetic,
			Blanket:   blanket,
		}, nil

	default:
		return Other{RawKind: tag}, nil
	}
}

// rawParam tolerates the pair encoding rustdoc uses for parameters:
// ["name", {type}].
type rawParam struct {
	Name string
	Type json.RawMessage
}

func (p *rawParam) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("want a [name, type] pair, got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &p.Name); err != nil {
		return err
	}
	p.Type = pair[1]
	return nil
}

type rawTraitRef struct {
	Name string `json:"name"`
	ID   rawID  `json:"id"`
}

func (r *rawTraitRef) ref() *TraitRef {
	if r == nil {
		return nil
	}
	return &TraitRef{Name: r.Name, ID: ID(r.ID)}
}

type rawGenerics struct {
	Params          []rawGenericParam `json:"params"`
	WherePredicates []json.RawMessage `json:"where_predicates"`
}

type rawGenericParam struct {
	Name string          `json:"name"`
	Kind json.RawMessage `json:"kind"`
}

func decodeGenerics(raw rawGenerics) (Generics, error) {
	var g Generics
	for _, rp := range raw.Params {
		kind, err := decodeParamKind(rp.Kind)
		if err != nil {
			return Generics{}, fmt.Errorf("param %s: %w", rp.Name, err)
		}
		g.Params = append(g.Params, GenericParam{Name: rp.Name, Kind: kind})
	}
	for i, rw := range raw.WherePredicates {
		pred, err := decodeWherePredicate(rw)
		if err != nil {
			return Generics{}, fmt.Errorf("where predicate %d: %w", i, err)
		}
		g.WherePredicates = append(g.WherePredicates, pred)
	}
	return g, nil
}

func decodeParamKind(raw json.RawMessage) (GenericParamKind, error) {
	tag, payload, err := tagOf(raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "lifetime":
		var p struct {
			Outlives []string `json:"outlives"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return LifetimeParam{Outlives: p.Outlives}, nil
	case "type":
		var p struct {
			Bounds    []json.RawMessage `json:"bounds"`
			Default   json.RawMessage   `json:"default"`
			Synthetic bool              `json:"is_synthetic"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		bounds, err := decodeBounds(p.Bounds)
		if err != nil {
			return nil, err
		}
		def, err := decodeType(p.Default)
		if err != nil {
			return nil, err
		}
		return TypeParam{Bounds: bounds, Default: def, Synthetic: p.Synthetic}, nil
	case "const":
		var p struct {
			Type    json.RawMessage `json:"type"`
			Default *string         `json:"default"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		t, err := decodeType(p.Type)
		if err != nil {
			return nil, err
		}
		var def string
		if p.Default != nil {
			def = *p.Default
		}
		return ConstParam{Type: t, Default: def}, nil
	default:
		return nil, fmt.Errorf("unknown generic param kind %q", tag)
	}
}

func decodeBounds(raw []json.RawMessage) ([]Bound, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	bounds := make([]Bound, 0, len(raw))
	for i, rb := range raw {
		b, err := decodeBound(rb)
		if err != nil {
			return nil, fmt.Errorf("bound %d: %w", i, err)
		}
		bounds = append(bounds, b)
	}
	return bounds, nil
}

func decodeBound(raw json.RawMessage) (Bound, error) {
	tag, payload, err := tagOf(raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "trait_bound":
		var p struct {
			Trait    rawTraitRef `json:"trait"`
			Modifier string      `json:"modifier"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		var mod BoundModifier
		switch p.Modifier {
		case "", "none":
			mod = BoundModifierNone
		case "maybe":
			mod = BoundModifierMaybe
		case "maybe_const", "maybe-const":
			mod = BoundModifierMaybeConst
		default:
			return nil, fmt.Errorf("unknown bound modifier %q", p.Modifier)
		}
		return TraitBound{Trait: TraitRef{Name: p.Trait.Name, ID: ID(p.Trait.ID)}, Modifier: mod}, nil
	case "outlives":
		var lifetime string
		if err := json.Unmarshal(payload, &lifetime); err != nil {
			return nil, err
		}
		return OutlivesBound{Lifetime: lifetime}, nil
	default:
		return nil, fmt.Errorf("unknown bound %q", tag)
	}
}

func decodeWherePredicate(raw json.RawMessage) (WherePredicate, error) {
	tag, payload, err := tagOf(raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "bound_predicate":
		var p struct {
			Type   json.RawMessage   `json:"type"`
			Bounds []json.RawMessage `json:"bounds"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		t, err := decodeType(p.Type)
		if err != nil {
			return nil, err
		}
		bounds, err := decodeBounds(p.Bounds)
		if err != nil {
			return nil, err
		}
		return BoundPredicate{Type: t, Bounds: bounds}, nil
	case "lifetime_predicate":
		var p struct {
			Lifetime string   `json:"lifetime"`
			Outlives []string `json:"outlives"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		bounds := make([]Bound, 0, len(p.Outlives))
		for _, lt := range p.Outlives {
			bounds = append(bounds, OutlivesBound{Lifetime: lt})
		}
		return RegionPredicate{Lifetime: p.Lifetime, Bounds: bounds}, nil
	case "eq_predicate":
		var p struct {
			Lhs json.RawMessage `json:"lhs"`
			Rhs json.RawMessage `json:"rhs"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		lhs, err := decodeType(p.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeTerm(p.Rhs)
		if err != nil {
			return nil, err
		}
		return EqPredicate{Lhs: lhs, Rhs: rhs}, nil
	default:
		return nil, fmt.Errorf("unknown where predicate %q", tag)
	}
}

func decodeTerm(raw json.RawMessage) (Term, error) {
	tag, payload, err := tagOf(raw)
	if err != nil {
		return nil, err
	}
	switch tag {
	case "type":
		t, err := decodeType(payload)
		if err != nil {
			return nil, err
		}
		return TypeTerm{Type: t}, nil
	case "constant":
		var p struct {
			Expr string `json:"expr"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return ConstTerm{Value: p.Expr}, nil
	default:
		return nil, fmt.Errorf("unknown term %q", tag)
	}
}

// decodeType maps a tagged type object into the Type AST. A JSON null
// yields a nil Type, which callers treat as "no type" (absent return
// types, parameter defaults, blanket markers). Unknown tags yield
// Unsupported rather than an error.
func decodeType(raw json.RawMessage) (Type, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	tag, payload, err := tagOf(raw)
	if err != nil {
		return nil, err
	}

	switch tag {
	case "generic":
		var name string
		if err := json.Unmarshal(payload, &name); err != nil {
			return nil, err
		}
		return Generic{Name: name}, nil
	case "primitive":
		var name string
		if err := json.Unmarshal(payload, &name); err != nil {
			return nil, err
		}
		return Primitive{Name: name}, nil
	case "resolved_path":
		var p rawTraitRef
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		return ResolvedPath{Name: p.Name, ID: ID(p.ID)}, nil
	case "tuple":
		var elems []json.RawMessage
		if err := json.Unmarshal(payload, &elems); err != nil {
			return nil, err
		}
		t := Tuple{Elements: make([]Type, 0, len(elems))}
		for i, re := range elems {
			e, err := decodeType(re)
			if err != nil {
				return nil, fmt.Errorf("tuple element %d: %w", i, err)
			}
			t.Elements = append(t.Elements, e)
		}
		return t, nil
	case "slice":
		e, err := decodeType(payload)
		if err != nil {
			return nil, err
		}
		return Slice{Element: e}, nil
	case "array":
		var p struct {
			Type json.RawMessage `json:"type"`
			Len  string          `json:"len"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		e, err := decodeType(p.Type)
		if err != nil {
			return nil, err
		}
		return Array{Element: e, Len: p.Len}, nil
	case "raw_pointer":
		var p struct {
			Mutable bool            `json:"is_mutable"`
			Type    json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		e, err := decodeType(p.Type)
		if err != nil {
			return nil, err
		}
		return RawPointer{Mutable: p.Mutable, Element: e}, nil
	case "borrowed_ref":
		var p struct {
			Lifetime *string         `json:"lifetime"`
			Mutable  bool            `json:"is_mutable"`
			Type     json.RawMessage `json:"type"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		e, err := decodeType(p.Type)
		if err != nil {
			return nil, err
		}
		var lifetime string
		if p.Lifetime != nil {
			lifetime = *p.Lifetime
		}
		return BorrowedRef{Lifetime: lifetime, Mutable: p.Mutable, Element: e}, nil
	case "dyn_trait":
		var p struct {
			Traits []struct {
				Trait rawTraitRef `json:"trait"`
			} `json:"traits"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		d := DynTrait{Traits: make([]TraitRef, 0, len(p.Traits))}
		for _, pt := range p.Traits {
			d.Traits = append(d.Traits, TraitRef{Name: pt.Trait.Name, ID: ID(pt.Trait.ID)})
		}
		return d, nil
	case "impl_trait":
		var rbs []json.RawMessage
		if err := json.Unmarshal(payload, &rbs); err != nil {
			return nil, err
		}
		bounds, err := decodeBounds(rbs)
		if err != nil {
			return nil, err
		}
		return ImplTrait{Bounds: bounds}, nil
	case "qualified_path":
		var p struct {
			Name     string          `json:"name"`
			SelfType json.RawMessage `json:"self_type"`
			Trait    *rawTraitRef    `json:"trait"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, err
		}
		self, err := decodeType(p.SelfType)
		if err != nil {
			return nil, err
		}
		return QualifiedPath{Name: p.Name, SelfType: self, Trait: p.Trait.ref()}, nil
	case "function_pointer":
		return FunctionPointer{}, nil
	case "infer":
		return Inferred{}, nil
	default:
		return Unsupported{Tag: tag}, nil
	}
}

func toIDs(raw []rawID) []ID {
	if len(raw) == 0 {
		return nil
	}
	ids := make([]ID, len(raw))
	for i, r := range raw {
		ids[i] = ID(r)
	}
	return ids
}
