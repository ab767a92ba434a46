// Package ir defines the in-memory documentation graph consumed by the
// flattening pipeline: an identifier-keyed index of item definitions plus
// the per-item path table. The graph is immutable once decoded; every
// stage downstream only reads it.
//
// Definition, Type, Bound, WherePredicate and Term are closed tagged
// variants. Decoding never fails on an unknown tag: unknown definitions
// become Other and unknown types become Unsupported, so a graph produced
// by a newer rustdoc stays loadable.
package ir

// ID is an opaque key into the graph. IDs are unique per definition and
// are only ever used as map keys, never as an ordering key.
type ID string

// Graph is one fully decoded documentation graph (a single crate).
type Graph struct {
	// Root is the id of the crate's root module.
	Root ID

	// CrateVersion is the version of the documented crate, if recorded.
	CrateVersion string

	// FormatVersion is the producer's format version number.
	FormatVersion int

	// Index maps every id to its item.
	Index map[ID]Item

	// Paths maps ids to canonical path summaries. Locally defined,
	// unexported items have no entry.
	Paths map[ID]Summary

	// Source is the file the graph was loaded from, when known.
	Source string

	// Hash is the content hash of the raw input, when loaded from a file.
	Hash string
}

// Summary is the canonical path record for an id.
type Summary struct {
	// Segments of the canonical path, e.g. ["core", "fmt", "Display"].
	Path []string
	// Kind tag as recorded by the producer.
	Kind string
}

// Item is one entry in the graph index.
type Item struct {
	ID    ID
	Name  string   // empty for unnamed items such as impls
	Attrs []string // raw attributes, e.g. `#[stable(feature = "rust1")]`
	Docs  string
	Inner Definition
}

// Kind tags the concrete variant behind a Definition.
type Kind string

const (
	KindModule   Kind = "module"
	KindImport   Kind = "import"
	KindTrait    Kind = "trait"
	KindStruct   Kind = "struct"
	KindEnum     Kind = "enum"
	KindFunction Kind = "function"
	KindImpl     Kind = "impl"
	// KindOther covers definitions the engine carries but never
	// resolves (constants, statics, fields, macros, ...).
	KindOther Kind = "other"
)

// Definition is the closed set of item payloads. The resolver guarantees
// an Import never escapes resolution: callers always receive one of the
// concrete kinds or a not-found result.
type Definition interface {
	Kind() Kind
}

// Module is a module's child list.
type Module struct {
	IsStripped bool
	Items      []ID
}

// Import is a re-export: a forwarding reference to another id. Target may
// itself be an Import.
type Import struct {
	// Source is the path text written in the re-export.
	Source string
	// Name the item is re-exported under.
	Name string
	// Target is the id the re-export forwards to; empty when the target
	// lives outside the graph.
	Target ID
	// Glob marks `use path::*` re-exports.
	Glob bool
}

// Trait is a trait definition.
type Trait struct {
	IsAuto   bool
	IsUnsafe bool
	Items    []ID
	Generics Generics
	Bounds   []Bound
}

// Struct is a struct definition. Fields are not modeled; only the
// associated impl blocks matter to the flattening pass.
type Struct struct {
	Generics Generics
	Impls    []ID
}

// Enum is an enum definition.
type Enum struct {
	Generics Generics
	Impls    []ID
}

// Function is a free function, method, or associated function.
type Function struct {
	Decl     FnDecl
	Generics Generics
	Header   FnHeader
	HasBody  bool
}

// FnHeader carries a function's modifier flags.
type FnHeader struct {
	IsConst  bool
	IsUnsafe bool
	IsAsync  bool
}

// FnDecl is a function's parameter list and return type.
type FnDecl struct {
	Inputs []Param
	// Output is nil for functions without a return type.
	Output Type
}

// Param is a single named function parameter.
type Param struct {
	Name string
	Type Type
}

// Impl is an implementation block.
type Impl struct {
	IsUnsafe bool
	Generics Generics
	// Trait is nil for inherent impls.
	Trait *TraitRef
	// For is the self type the block implements on.
	For Type
	// Items are the block's associated item ids.
	Items []ID
	// Synthetic marks compiler-generated impls (auto traits).
	Synthetic bool
	// Blanket is the generic type of a blanket impl, nil otherwise.
	Blanket Type
}

// Other is any definition kind the engine does not interpret. RawKind
// preserves the producer's tag for diagnostics.
type Other struct {
	RawKind string
}

func (Module) Kind() Kind   { return KindModule }
func (Import) Kind() Kind   { return KindImport }
func (Trait) Kind() Kind    { return KindTrait }
func (Struct) Kind() Kind   { return KindStruct }
func (Enum) Kind() Kind     { return KindEnum }
func (Function) Kind() Kind { return KindFunction }
func (Impl) Kind() Kind     { return KindImpl }
func (Other) Kind() Kind    { return KindOther }

// TraitRef is a by-reference mention of a trait, as it appears in bounds,
// impl headers and dyn types.
type TraitRef struct {
	Name string
	ID   ID
}

// Generics is a declaration's generics clause.
type Generics struct {
	Params          []GenericParam
	WherePredicates []WherePredicate
}

// GenericParam is one declared generic parameter.
type GenericParam struct {
	Name string
	Kind GenericParamKind
}

// GenericParamKind is the closed set of generic parameter payloads.
type GenericParamKind interface {
	genericParamKind()
}

// LifetimeParam declares a lifetime parameter. Lifetimes never render and
// never count toward the generics-usage flag.
type LifetimeParam struct {
	Outlives []string
}

// TypeParam declares a type parameter.
type TypeParam struct {
	Bounds []Bound
	// Default is nil when the parameter has no default.
	Default Type
	// Synthetic marks parameters desugared from argument-position
	// `impl Trait`.
	Synthetic bool
}

// ConstParam declares a const generic parameter.
type ConstParam struct {
	Type Type
	// Default is the default value's source text, empty when absent.
	Default string
}

func (LifetimeParam) genericParamKind() {}
func (TypeParam) genericParamKind()     {}
func (ConstParam) genericParamKind()    {}

// Bound is the closed set of generic bounds.
type Bound interface {
	bound()
}

// BoundModifier qualifies a trait bound.
type BoundModifier string

const (
	BoundModifierNone BoundModifier = ""
	// BoundModifierMaybe is the `?Sized` form.
	BoundModifierMaybe BoundModifier = "maybe"
	// BoundModifierMaybeConst is the `~const Trait` form.
	BoundModifierMaybeConst BoundModifier = "maybe-const"
)

// TraitBound is a trait reference with an optional modifier.
type TraitBound struct {
	Trait    TraitRef
	Modifier BoundModifier
}

// OutlivesBound is a lifetime-outlives bound. It is modeled only so the
// clause stays round-trippable; rendering drops it.
type OutlivesBound struct {
	Lifetime string
}

func (TraitBound) bound()    {}
func (OutlivesBound) bound() {}

// WherePredicate is the closed set of where-clause predicates.
type WherePredicate interface {
	wherePredicate()
}

// BoundPredicate is `Type: Bounds`.
type BoundPredicate struct {
	Type   Type
	Bounds []Bound
}

// RegionPredicate is a lifetime predicate. Unsupported by the renderer;
// it produces a placeholder rather than a fault.
type RegionPredicate struct {
	Lifetime string
	Bounds   []Bound
}

// EqPredicate is `Lhs = Rhs`.
type EqPredicate struct {
	Lhs Type
	Rhs Term
}

func (BoundPredicate) wherePredicate()  {}
func (RegionPredicate) wherePredicate() {}
func (EqPredicate) wherePredicate()     {}

// Term is the right-hand side of an equality predicate.
type Term interface {
	term()
}

// TypeTerm wraps a type term.
type TypeTerm struct {
	Type Type
}

// ConstTerm wraps a constant term. Value is the constant's source text.
type ConstTerm struct {
	Value string
}

func (TypeTerm) term()  {}
func (ConstTerm) term() {}

// Type is the closed, recursive type AST.
type Type interface {
	typ()
}

// Generic is a reference to a generic parameter by name.
type Generic struct {
	Name string
}

// ResolvedPath is a reference to a named definition.
type ResolvedPath struct {
	Name string
	ID   ID
}

// Primitive is a built-in type such as i32 or bool.
type Primitive struct {
	Name string
}

// Tuple is `(A, B, ...)`.
type Tuple struct {
	Elements []Type
}

// Slice is `[T]`.
type Slice struct {
	Element Type
}

// Array is `[T; N]`. Len keeps the length expression's source text.
type Array struct {
	Element Type
	Len     string
}

// RawPointer is `*mut T` or `*const T`.
type RawPointer struct {
	Mutable bool
	Element Type
}

// BorrowedRef is `&'a mut T` with both the lifetime and mutability
// optional.
type BorrowedRef struct {
	Lifetime string
	Mutable  bool
	Element  Type
}

// DynTrait is `dyn T1 + T2`.
type DynTrait struct {
	Traits []TraitRef
}

// ImplTrait is `impl Bound1 + Bound2`.
type ImplTrait struct {
	Bounds []Bound
}

// QualifiedPath is `<SelfType as Trait>::Name`.
type QualifiedPath struct {
	Name     string
	SelfType Type
	// Trait the projection goes through, nil when inferred.
	Trait *TraitRef
}

// FunctionPointer is a bare `fn(...)` type. The signature is not modeled;
// rendering emits a placeholder.
type FunctionPointer struct{}

// Inferred is the `_` placeholder type.
type Inferred struct{}

// Unsupported preserves a type tag the decoder does not understand.
type Unsupported struct {
	Tag string
}

func (Generic) typ()         {}
func (ResolvedPath) typ()    {}
func (Primitive) typ()       {}
func (Tuple) typ()           {}
func (Slice) typ()           {}
func (Array) typ()           {}
func (RawPointer) typ()      {}
func (BorrowedRef) typ()     {}
func (DynTrait) typ()        {}
func (ImplTrait) typ()       {}
func (QualifiedPath) typ()   {}
func (FunctionPointer) typ() {}
func (Inferred) typ()        {}
func (Unsupported) typ()     {}
