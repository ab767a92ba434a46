package index

import (
	"testing"

	"rustdex/internal/ir"
	"rustdex/internal/testutil"
)

func TestModulesSortedByPath(t *testing.T) {
	b := testutil.NewGraphBuilder()
	b.Module("mycrate::zeta")
	b.Module("mycrate")
	b.Module("mycrate::alpha")
	b.Module("mycrate::alpha::inner")

	ix := New(b.Graph())
	mods := ix.Modules()

	want := []string{"mycrate", "mycrate::alpha", "mycrate::alpha::inner", "mycrate::zeta"}
	if len(mods) != len(want) {
		t.Fatalf("got %d modules, want %d", len(mods), len(want))
	}
	for i, w := range want {
		if mods[i].Path != w {
			t.Errorf("modules[%d].Path = %q, want %q", i, mods[i].Path, w)
		}
	}
}

func TestModulesSkipStripped(t *testing.T) {
	b := testutil.NewGraphBuilder()
	b.Module("mycrate")
	b.StrippedModule("mycrate::private")

	ix := New(b.Graph())
	mods := ix.Modules()

	if len(mods) != 1 {
		t.Fatalf("got %d modules, want 1", len(mods))
	}
	if mods[0].Path != "mycrate" {
		t.Errorf("modules[0].Path = %q, want mycrate", mods[0].Path)
	}
}

func TestModulesSkipUnpathed(t *testing.T) {
	b := testutil.NewGraphBuilder()
	b.Module("mycrate")
	// A module the graph carries but never assigns a canonical path.
	b.Add("floating", ir.Module{})

	ix := New(b.Graph())
	if got := len(ix.Modules()); got != 1 {
		t.Errorf("got %d modules, want 1", got)
	}
}

func TestPath(t *testing.T) {
	b := testutil.NewGraphBuilder()
	b.Module("mycrate")
	id := b.AddPathed("mycrate::fmt::Display", ir.Trait{})
	unpathed := b.Add("Hidden", ir.Trait{})

	ix := New(b.Graph())

	got, ok := ix.Path(id)
	if !ok {
		t.Fatal("Path returned ok=false for a pathed id")
	}
	if got != "mycrate::fmt::Display" {
		t.Errorf("Path = %q, want mycrate::fmt::Display", got)
	}

	if _, ok := ix.Path(unpathed); ok {
		t.Error("Path returned ok=true for an unpathed id")
	}
	if _, ok := ix.Path("9:9"); ok {
		t.Error("Path returned ok=true for an unknown id")
	}
}

func TestItem(t *testing.T) {
	b := testutil.NewGraphBuilder()
	id := b.AddPathed("mycrate::Point", ir.Struct{})

	ix := New(b.Graph())

	item, ok := ix.Item(id)
	if !ok {
		t.Fatal("Item returned ok=false for a known id")
	}
	if item.Name != "Point" {
		t.Errorf("item name = %q, want Point", item.Name)
	}
	if _, ok := ix.Item("9:9"); ok {
		t.Error("Item returned ok=true for an unknown id")
	}
}
