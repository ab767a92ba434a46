package flatten

import (
	"rustdex/internal/index"
	"rustdex/internal/ir"
	"rustdex/internal/render"
	"rustdex/internal/resolve"
)

// Flattener walks a graph's public modules and produces surface
// records.
type Flattener struct {
	ix  *index.Index
	res *resolve.Resolver
}

// New builds a flattener over ix.
func New(ix *index.Index) *Flattener {
	return &Flattener{ix: ix, res: resolve.New(ix)}
}

// Flatten produces the graph's full API surface in canonical order.
// Modules are visited in path order; within each module the walk covers
// traits (with their member functions), free functions, structs and
// enums (with their impl blocks and inherent members).
func (f *Flattener) Flatten() []Record {
	var records []Record
	for _, me := range f.ix.Modules() {
		records = f.appendTraits(records, me.Path, me.Module.Items)
		records, _ = f.appendFunctions(records, me.Path, me.Module.Items, false)
		records = f.appendStructs(records, me.Path, me.Module.Items)
		records = f.appendEnums(records, me.Path, me.Module.Items)
	}
	return Normalize(records)
}

func (f *Flattener) appendTraits(records []Record, path string, ids []ir.ID) []Record {
	for _, ti := range f.res.Traits(ids) {
		name := ti.Item.Name
		hasGenerics := genericsUsed(ti.Trait.Generics)

		// Member functions live under the trait's own path and
		// inherit its generics flag.
		var fnCount int
		records, fnCount = f.appendFunctions(records, path+index.PathSeparator+name, ti.Trait.Items, hasGenerics)

		records = append(records, Record{
			Kind:        KindTrait,
			ID:          string(ti.Item.ID),
			Name:        name,
			Path:        path,
			Decl:        render.TraitDecl(name, ti.Trait),
			HasGenerics: hasGenerics,
			Stability:   StabilityOf(ti.Item.Attrs),
			FnCount:     fnCount,
		})
	}
	return records
}

// appendFunctions records every resolvable function in ids under path
// and reports how many it found. parentGenerics marks members of a
// generic owner, which count as generic regardless of their own clause.
func (f *Flattener) appendFunctions(records []Record, path string, ids []ir.ID, parentGenerics bool) ([]Record, int) {
	fns := f.res.Functions(ids)
	for _, fi := range fns {
		records = append(records, Record{
			Kind:        KindFunction,
			ID:          string(fi.Item.ID),
			Name:        fi.Item.Name,
			Path:        path,
			Decl:        render.FunctionDecl(fi.Item.Name, fi.Function),
			HasGenerics: parentGenerics || genericsUsed(fi.Function.Generics),
			IsConst:     fi.Function.Header.IsConst,
			IsAsync:     fi.Function.Header.IsAsync,
			Stability:   StabilityOf(fi.Item.Attrs),
		})
	}
	return records, len(fns)
}

func (f *Flattener) appendStructs(records []Record, path string, ids []ir.ID) []Record {
	for _, si := range f.res.Structs(ids) {
		records = f.appendOwner(records, ownerItem{
			item:     si.Item,
			kind:     KindStruct,
			decl:     render.StructDecl(si.Item.Name, si.Struct),
			generics: si.Struct.Generics,
			impls:    si.Struct.Impls,
		}, path)
	}
	return records
}

func (f *Flattener) appendEnums(records []Record, path string, ids []ir.ID) []Record {
	for _, ei := range f.res.Enums(ids) {
		records = f.appendOwner(records, ownerItem{
			item:     ei.Item,
			kind:     KindEnum,
			decl:     render.EnumDecl(ei.Item.Name, ei.Enum),
			generics: ei.Enum.Generics,
			impls:    ei.Enum.Impls,
		}, path)
	}
	return records
}

// ownerItem is a struct or enum together with everything the walk needs
// from it; the two kinds flatten identically.
type ownerItem struct {
	item     ir.Item
	kind     Kind
	decl     string
	generics ir.Generics
	impls    []ir.ID
}

func (f *Flattener) appendOwner(records []Record, o ownerItem, path string) []Record {
	name := o.item.Name
	stability := StabilityOf(o.item.Attrs)

	// Inherent-impl members flatten as functions under the owner's
	// path and roll up into its count. Trait impls become records of
	// their own under the module path.
	var fnCount int
	for _, ii := range f.res.Impls(o.impls) {
		if ii.Impl.Trait != nil {
			records = append(records, f.implRecord(ii.Item, ii.Impl, path, stability))
			continue
		}
		var n int
		records, n = f.appendFunctions(records, path+index.PathSeparator+name, ii.Impl.Items, genericsUsed(ii.Impl.Generics))
		fnCount += n
	}

	return append(records, Record{
		Kind:        o.kind,
		ID:          string(o.item.ID),
		Name:        name,
		Path:        path,
		Decl:        o.decl,
		HasGenerics: genericsUsed(o.generics),
		Stability:   stability,
		FnCount:     fnCount,
	})
}

// implRecord builds the record for one trait impl. Stability starts
// from the owner and only ever degrades: an unstable enum among the
// members or an unstable in-graph trait marks the impl unstable. A
// trait the graph does not define leaves stability untouched and sets
// the foreign marker instead.
func (f *Flattener) implRecord(item ir.Item, imp ir.Impl, path string, ownerStability Stability) Record {
	stability := ownerStability
	for _, memberID := range imp.Items {
		if enumItem, _, ok := f.res.Enum(memberID); ok && StabilityOf(enumItem.Attrs) == Unstable {
			stability = Unstable
			break
		}
	}

	traitItem, _, resolvable := f.res.Trait(imp.Trait.ID)
	if resolvable && StabilityOf(traitItem.Attrs) == Unstable {
		stability = Unstable
	}

	traitPath, ok := f.ix.Path(imp.Trait.ID)
	if !ok {
		traitPath = imp.Trait.Name
	}

	return Record{
		Kind:         KindImpl,
		ID:           string(item.ID),
		Name:         imp.Trait.Name,
		Path:         path,
		Decl:         render.ImplDecl(imp),
		HasGenerics:  genericsUsed(imp.Generics),
		Stability:    stability,
		TraitPath:    traitPath,
		TraitForeign: !resolvable,
	}
}

// Describe renders a single resolved item the way Flatten would record
// it, without walking the whole graph. The second result is false for
// kinds that never flatten (modules, imports, unclassified items).
func (f *Flattener) Describe(item ir.Item) (Record, bool) {
	path, _ := f.ix.ParentPath(item.ID)

	switch def := item.Inner.(type) {
	case ir.Trait:
		return Record{
			Kind:        KindTrait,
			ID:          string(item.ID),
			Name:        item.Name,
			Path:        path,
			Decl:        render.TraitDecl(item.Name, def),
			HasGenerics: genericsUsed(def.Generics),
			Stability:   StabilityOf(item.Attrs),
			FnCount:     len(f.res.Functions(def.Items)),
		}, true
	case ir.Struct:
		return Record{
			Kind:        KindStruct,
			ID:          string(item.ID),
			Name:        item.Name,
			Path:        path,
			Decl:        render.StructDecl(item.Name, def),
			HasGenerics: genericsUsed(def.Generics),
			Stability:   StabilityOf(item.Attrs),
			FnCount:     f.inherentFnCount(def.Impls),
		}, true
	case ir.Enum:
		return Record{
			Kind:        KindEnum,
			ID:          string(item.ID),
			Name:        item.Name,
			Path:        path,
			Decl:        render.EnumDecl(item.Name, def),
			HasGenerics: genericsUsed(def.Generics),
			Stability:   StabilityOf(item.Attrs),
			FnCount:     f.inherentFnCount(def.Impls),
		}, true
	case ir.Function:
		return Record{
			Kind:        KindFunction,
			ID:          string(item.ID),
			Name:        item.Name,
			Path:        path,
			Decl:        render.FunctionDecl(item.Name, def),
			HasGenerics: genericsUsed(def.Generics),
			IsConst:     def.Header.IsConst,
			IsAsync:     def.Header.IsAsync,
			Stability:   StabilityOf(item.Attrs),
		}, true
	case ir.Impl:
		if def.Trait == nil {
			return Record{
				Kind:        KindImpl,
				ID:          string(item.ID),
				Path:        path,
				Decl:        render.ImplDecl(def),
				HasGenerics: genericsUsed(def.Generics),
				Stability:   StabilityOf(item.Attrs),
				FnCount:     len(f.res.Functions(def.Items)),
			}, true
		}
		return f.implRecord(item, def, path, StabilityOf(item.Attrs)), true
	default:
		return Record{}, false
	}
}

func (f *Flattener) inherentFnCount(impls []ir.ID) int {
	var n int
	for _, ii := range f.res.Impls(impls) {
		if ii.Impl.Trait == nil {
			n += len(f.res.Functions(ii.Impl.Items))
		}
	}
	return n
}

// genericsUsed reports whether a generics clause makes a declaration
// generic: at least one non-lifetime parameter or one bound predicate
// in the where clause.
func genericsUsed(g ir.Generics) bool {
	for _, p := range g.Params {
		if _, ok := p.Kind.(ir.LifetimeParam); !ok {
			return true
		}
	}
	for _, w := range g.WherePredicates {
		if _, ok := w.(ir.BoundPredicate); ok {
			return true
		}
	}
	return false
}
