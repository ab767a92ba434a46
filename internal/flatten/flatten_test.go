package flatten

import (
	"reflect"
	"strings"
	"testing"

	"rustdex/internal/index"
	"rustdex/internal/ir"
	"rustdex/internal/testutil"
)

func typeParam(name string, bounds ...ir.Bound) ir.GenericParam {
	return ir.GenericParam{Name: name, Kind: ir.TypeParam{Bounds: bounds}}
}

func traitBound(name string) ir.Bound {
	return ir.TraitBound{Trait: ir.TraitRef{Name: name}}
}

// buildCrate assembles a crate exercising every record kind: a generic
// trait with a member function, a free function, a struct with an
// inherent impl and two trait impls (one in-graph, one foreign), and an
// enum.
func buildCrate() *ir.Graph {
	b := testutil.NewGraphBuilder()

	greetFn := b.Add("greet", ir.Function{
		Decl: ir.FnDecl{
			Inputs: []ir.Param{{Name: "x", Type: ir.Primitive{Name: "i32"}}},
			Output: ir.Primitive{Name: "i32"},
		},
		Header: ir.FnHeader{IsConst: true},
	}, testutil.StableAttr)
	greet := b.AddPathed("mycrate::Greet", ir.Trait{
		Items: []ir.ID{greetFn},
		Generics: ir.Generics{
			Params: []ir.GenericParam{
				typeParam("A", traitBound("Display")),
				typeParam("B"),
			},
			WherePredicates: []ir.WherePredicate{
				ir.BoundPredicate{Type: ir.Generic{Name: "A"}, Bounds: []ir.Bound{traitBound("Clone")}},
			},
		},
	}, testutil.StableAttr)

	runFn := b.AddPathed("mycrate::run", ir.Function{
		Header:  ir.FnHeader{IsAsync: true},
		HasBody: true,
	}, testutil.StableAttr)

	newFn := b.Add("new", ir.Function{HasBody: true}, testutil.StableAttr)
	lenFn := b.Add("len", ir.Function{
		Decl:    ir.FnDecl{Output: ir.Primitive{Name: "usize"}},
		HasBody: true,
	}, testutil.StableAttr)
	inherentImpl := b.Add("", ir.Impl{
		For:   ir.ResolvedPath{Name: "Point"},
		Items: []ir.ID{newFn, lenFn},
	})

	eq := b.AddPathed("mycrate::Eq", ir.Trait{}, testutil.StableAttr)
	eqImpl := b.Add("", ir.Impl{
		Trait: &ir.TraitRef{Name: "Eq", ID: eq},
		For:   ir.ResolvedPath{Name: "Point"},
	})

	// Display is only known through the paths table, the way another
	// crate's trait appears in a rustdoc graph.
	displayImpl := b.Add("", ir.Impl{
		Trait: &ir.TraitRef{Name: "Display", ID: "5:77"},
		For:   ir.ResolvedPath{Name: "Point"},
	})
	b.SetPath("5:77", "core::fmt::Display", "trait")

	point := b.AddPathed("mycrate::Point", ir.Struct{
		Impls: []ir.ID{inherentImpl, eqImpl, displayImpl},
	}, testutil.StableAttr)

	ordering := b.AddPathed("mycrate::Ordering", ir.Enum{
		Generics: ir.Generics{Params: []ir.GenericParam{typeParam("T")}},
	}, testutil.StableAttr)

	b.Module("mycrate", greet, runFn, point, ordering)
	return b.Graph()
}

func flattenCrate(t *testing.T, g *ir.Graph) []Record {
	t.Helper()
	return New(index.New(g)).Flatten()
}

func findRecord(t *testing.T, records []Record, kind Kind, name string) Record {
	t.Helper()
	for _, r := range records {
		if r.Kind == kind && r.Name == name {
			return r
		}
	}
	t.Fatalf("no %s record named %q in %d records", kind, name, len(records))
	return Record{}
}

func TestFlattenTrait(t *testing.T) {
	records := flattenCrate(t, buildCrate())

	tr := findRecord(t, records, KindTrait, "Greet")
	if tr.Path != "mycrate" {
		t.Errorf("path = %q, want mycrate", tr.Path)
	}
	if want := "trait Greet<A: Display, B> where A: Clone { }"; tr.Decl != want {
		t.Errorf("decl = %q, want %q", tr.Decl, want)
	}
	if !tr.HasGenerics {
		t.Error("hasGenerics = false, want true")
	}
	if tr.FnCount != 1 {
		t.Errorf("fnCount = %d, want 1", tr.FnCount)
	}
	if tr.Stability != Stable {
		t.Errorf("stability = %s, want stable", tr.Stability)
	}

	// The member function flattens under the trait's path and
	// inherits its generics flag.
	member := findRecord(t, records, KindFunction, "greet")
	if member.Path != "mycrate::Greet" {
		t.Errorf("member path = %q, want mycrate::Greet", member.Path)
	}
	if !member.HasGenerics {
		t.Error("member hasGenerics = false, want true (inherited)")
	}
	if !member.IsConst {
		t.Error("member isConst = false, want true")
	}
	if want := "const fn greet(x: i32) -> i32;"; member.Decl != want {
		t.Errorf("member decl = %q, want %q", member.Decl, want)
	}
}

func TestFlattenFreeFunction(t *testing.T) {
	records := flattenCrate(t, buildCrate())

	fn := findRecord(t, records, KindFunction, "run")
	if fn.Path != "mycrate" {
		t.Errorf("path = %q, want mycrate", fn.Path)
	}
	if !fn.IsAsync || fn.IsConst {
		t.Errorf("flags = const:%v async:%v, want async only", fn.IsConst, fn.IsAsync)
	}
	if fn.HasGenerics {
		t.Error("hasGenerics = true, want false")
	}
}

func TestFlattenStructWithImpls(t *testing.T) {
	records := flattenCrate(t, buildCrate())

	point := findRecord(t, records, KindStruct, "Point")
	if point.FnCount != 2 {
		t.Errorf("fnCount = %d, want 2 inherent members", point.FnCount)
	}

	// Inherent members flatten under the struct's path.
	newFn := findRecord(t, records, KindFunction, "new")
	if newFn.Path != "mycrate::Point" {
		t.Errorf("member path = %q, want mycrate::Point", newFn.Path)
	}

	// The trait impl becomes its own record under the module path,
	// named after the trait, and never counts functions.
	eqImpl := findRecord(t, records, KindImpl, "Eq")
	if eqImpl.Path != "mycrate" {
		t.Errorf("impl path = %q, want mycrate", eqImpl.Path)
	}
	if want := "impl Eq for Point { }"; eqImpl.Decl != want {
		t.Errorf("impl decl = %q, want %q", eqImpl.Decl, want)
	}
	if eqImpl.FnCount != 0 {
		t.Errorf("impl fnCount = %d, want 0", eqImpl.FnCount)
	}
	if eqImpl.TraitForeign {
		t.Error("Eq marked foreign, want in-graph")
	}
	if eqImpl.TraitPath != "mycrate::Eq" {
		t.Errorf("impl traitPath = %q, want mycrate::Eq", eqImpl.TraitPath)
	}
}

func TestFlattenForeignTraitImpl(t *testing.T) {
	records := flattenCrate(t, buildCrate())

	disp := findRecord(t, records, KindImpl, "Display")
	if !disp.TraitForeign {
		t.Error("Display not marked foreign")
	}
	// A foreign trait cannot veto stability, so the owner's stands.
	if disp.Stability != Stable {
		t.Errorf("stability = %s, want stable", disp.Stability)
	}
	if disp.TraitPath != "core::fmt::Display" {
		t.Errorf("traitPath = %q, want core::fmt::Display", disp.TraitPath)
	}
}

func TestFlattenUnstableTraitImpl(t *testing.T) {
	b := testutil.NewGraphBuilder()
	unstable := b.AddPathed("mycrate::Experimental", ir.Trait{}) // no stable attr
	imp := b.Add("", ir.Impl{
		Trait: &ir.TraitRef{Name: "Experimental", ID: unstable},
		For:   ir.ResolvedPath{Name: "Point"},
	})
	point := b.AddPathed("mycrate::Point", ir.Struct{Impls: []ir.ID{imp}}, testutil.StableAttr)
	b.Module("mycrate", point, unstable)

	records := flattenCrate(t, b.Graph())

	rec := findRecord(t, records, KindImpl, "Experimental")
	if rec.Stability != Unstable {
		t.Errorf("stability = %s, want unstable (trait is unstable)", rec.Stability)
	}
	// The owner itself stays stable.
	if got := findRecord(t, records, KindStruct, "Point").Stability; got != Stable {
		t.Errorf("owner stability = %s, want stable", got)
	}
}

func TestFlattenUnstableEnumMember(t *testing.T) {
	b := testutil.NewGraphBuilder()
	eq := b.AddPathed("mycrate::Eq", ir.Trait{}, testutil.StableAttr)
	nightlyEnum := b.Add("NightlyOnly", ir.Enum{}) // unstable member
	imp := b.Add("", ir.Impl{
		Trait: &ir.TraitRef{Name: "Eq", ID: eq},
		For:   ir.ResolvedPath{Name: "Point"},
		Items: []ir.ID{nightlyEnum},
	})
	point := b.AddPathed("mycrate::Point", ir.Struct{Impls: []ir.ID{imp}}, testutil.StableAttr)
	b.Module("mycrate", point, eq)

	records := flattenCrate(t, b.Graph())

	rec := findRecord(t, records, KindImpl, "Eq")
	if rec.Stability != Unstable {
		t.Errorf("stability = %s, want unstable (unstable enum member)", rec.Stability)
	}
}

func TestFlattenPerImplStability(t *testing.T) {
	// Two trait impls on one owner: the first is dragged unstable by
	// its trait, the second must not inherit that.
	b := testutil.NewGraphBuilder()
	experimental := b.AddPathed("mycrate::Experimental", ir.Trait{})
	eq := b.AddPathed("mycrate::Eq", ir.Trait{}, testutil.StableAttr)
	impA := b.Add("", ir.Impl{
		Trait: &ir.TraitRef{Name: "Experimental", ID: experimental},
		For:   ir.ResolvedPath{Name: "Point"},
	})
	impB := b.Add("", ir.Impl{
		Trait: &ir.TraitRef{Name: "Eq", ID: eq},
		For:   ir.ResolvedPath{Name: "Point"},
	})
	point := b.AddPathed("mycrate::Point", ir.Struct{Impls: []ir.ID{impA, impB}}, testutil.StableAttr)
	b.Module("mycrate", point, experimental, eq)

	records := flattenCrate(t, b.Graph())

	if got := findRecord(t, records, KindImpl, "Experimental").Stability; got != Unstable {
		t.Errorf("Experimental impl stability = %s, want unstable", got)
	}
	if got := findRecord(t, records, KindImpl, "Eq").Stability; got != Stable {
		t.Errorf("Eq impl stability = %s, want stable", got)
	}
}

func TestFlattenReExportPathAttribution(t *testing.T) {
	// A trait re-exported from an inner module flattens once per
	// exporting module, each time under that module's path.
	b := testutil.NewGraphBuilder()
	tr := b.AddPathed("mycrate::inner::Widget", ir.Trait{}, testutil.StableAttr)
	b.Module("mycrate::inner", tr)
	alias := b.Import("Widget", tr)
	b.Module("mycrate", alias)

	records := flattenCrate(t, b.Graph())

	var paths []string
	for _, r := range records {
		if r.Kind == KindTrait && r.Name == "Widget" {
			paths = append(paths, r.Path)
		}
	}
	want := []string{"mycrate", "mycrate::inner"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("Widget paths = %v, want %v", paths, want)
	}
}

func TestFlattenSkipsStrippedModules(t *testing.T) {
	b := testutil.NewGraphBuilder()
	hidden := b.AddPathed("mycrate::private::Secret", ir.Trait{})
	b.Module("mycrate")
	b.StrippedModule("mycrate::private", hidden)

	records := flattenCrate(t, b.Graph())
	for _, r := range records {
		if r.Name == "Secret" {
			t.Fatalf("stripped module contents leaked: %+v", r)
		}
	}
}

func TestFlattenPathInvariant(t *testing.T) {
	records := flattenCrate(t, buildCrate())
	if len(records) == 0 {
		t.Fatal("no records")
	}
	for _, r := range records {
		if r.Name != "" && strings.HasSuffix(r.Path, index.PathSeparator+r.Name) {
			t.Errorf("record %s/%s: path %q ends in its own name", r.Kind, r.Name, r.Path)
		}
		if r.Path == r.FQN() && r.Name != "" {
			t.Errorf("record %s/%s: path equals FQN", r.Kind, r.Name)
		}
	}
}

func TestFlattenDeterministic(t *testing.T) {
	g := buildCrate()
	first := flattenCrate(t, g)
	second := flattenCrate(t, g)
	if !reflect.DeepEqual(first, second) {
		t.Error("two flattens of the same graph differ")
	}
}

func TestNormalizeDedup(t *testing.T) {
	a := Record{Kind: KindTrait, Name: "A", Path: "m", Decl: "trait A { }"}
	b := Record{Kind: KindTrait, Name: "B", Path: "m", Decl: "trait B { }"}

	got := Normalize([]Record{b, a, a, b, a})
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Name != "A" || got[1].Name != "B" {
		t.Errorf("order = [%s %s], want [A B]", got[0].Name, got[1].Name)
	}
}

func TestNormalizeOrdersByKindPathName(t *testing.T) {
	records := []Record{
		{Kind: KindTrait, Path: "a", Name: "Z"},
		{Kind: KindEnum, Path: "b", Name: "A"},
		{Kind: KindEnum, Path: "a", Name: "B"},
		{Kind: KindFunction, Path: "a", Name: "f"},
	}
	got := Normalize(records)
	wantKinds := []Kind{KindEnum, KindEnum, KindFunction, KindTrait}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Fatalf("position %d has kind %s, want %s", i, got[i].Kind, k)
		}
	}
	if got[0].Path != "a" || got[1].Path != "b" {
		t.Errorf("enum order = [%s %s], want [a b]", got[0].Path, got[1].Path)
	}
}

func TestMergeAssociativeCommutative(t *testing.T) {
	g := buildCrate()
	all := flattenCrate(t, g)
	if len(all) < 3 {
		t.Fatalf("need at least 3 records, got %d", len(all))
	}
	x := all[:len(all)/3]
	y := all[len(all)/3 : 2*len(all)/3]
	z := all[2*len(all)/3:]

	left := Merge(Merge(x, y), z)
	right := Merge(x, Merge(y, z))
	swapped := Merge(z, x, y)

	if !reflect.DeepEqual(left, right) {
		t.Error("merge is not associative")
	}
	if !reflect.DeepEqual(left, swapped) {
		t.Error("merge is not commutative")
	}
	if !reflect.DeepEqual(left, all) {
		t.Error("merging a partition does not reproduce the whole")
	}
}

func TestStabilityOf(t *testing.T) {
	tests := []struct {
		name  string
		attrs []string
		want  Stability
	}{
		{"no attrs", nil, Unstable},
		{"stable attr", []string{testutil.StableAttr}, Stable},
		{"unstable attr", []string{`#[unstable(feature = "nightly")]`}, Unstable},
		{"stable among others", []string{`#[inline]`, testutil.StableAttr}, Stable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StabilityOf(tc.attrs); got != tc.want {
				t.Errorf("StabilityOf = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	g := buildCrate()
	ix := index.New(g)
	f := New(ix)

	for id, item := range g.Index {
		if item.Name != "Point" {
			continue
		}
		rec, ok := f.Describe(item)
		if !ok {
			t.Fatalf("Describe failed for %s", id)
		}
		if rec.Kind != KindStruct || rec.Path != "mycrate" || rec.FnCount != 2 {
			t.Errorf("Describe = %+v, want struct at mycrate with 2 members", rec)
		}
	}

	// Modules never describe.
	for _, item := range g.Index {
		if _, ok := item.Inner.(ir.Module); ok {
			if _, described := f.Describe(item); described {
				t.Error("Describe accepted a module")
			}
		}
	}
}
