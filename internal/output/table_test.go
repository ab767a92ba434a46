package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"rustdex/internal/flatten"
)

func tableRecords() []flatten.Record {
	return []flatten.Record{
		{
			Kind:      flatten.KindFunction,
			Name:      "swap",
			Path:      "core::mem",
			Decl:      "const fn swap(x: &mut T, y: &mut T);",
			IsConst:   true,
			Stability: flatten.Stable,
		},
		{
			Kind:        flatten.KindTrait,
			Name:        "Iterator",
			Path:        "core::iter",
			Decl:        "trait Iterator<Item> { }",
			HasGenerics: true,
			Stability:   flatten.Unstable,
			FnCount:     75,
		},
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf, tableRecords(), TableOptions{Color: ColorOff, Width: 120})
	if err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	out := buf.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// header, rule, two rows, blank, count
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want 6:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Kind") || !strings.Contains(lines[0], "Signature") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], "const fn swap") || !strings.Contains(lines[2], "stable") {
		t.Errorf("function row = %q", lines[2])
	}
	if !strings.Contains(lines[3], "yes") || !strings.Contains(lines[3], "75") {
		t.Errorf("trait row = %q", lines[3])
	}
	if lines[5] != "2 records" {
		t.Errorf("count line = %q", lines[5])
	}
	// ColorOff means no escape codes anywhere.
	if strings.Contains(out, "\x1b[") {
		t.Error("table contains ANSI escapes with color off")
	}
}

func TestWriteTableColumnsAligned(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, tableRecords(), TableOptions{Color: ColorOff, Width: 200}); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	// The rule line defines the column layout; every row's Stability
	// column must start at the same offset.
	rule := lines[1]
	stabilityStart := strings.Index(lines[0], "Stability")
	if stabilityStart < 0 {
		t.Fatalf("no Stability column in header %q", lines[0])
	}
	for _, row := range []string{lines[2], lines[3]} {
		col := row[stabilityStart:]
		if !strings.HasPrefix(col, "stable") && !strings.HasPrefix(col, "unstable") {
			t.Errorf("row misaligned at offset %d: %q", stabilityStart, row)
		}
	}
	if len(rule) < stabilityStart {
		t.Errorf("rule line shorter than header: %q", rule)
	}
}

func TestWriteTableTruncatesSignature(t *testing.T) {
	records := []flatten.Record{{
		Kind:      flatten.KindFunction,
		Name:      "long",
		Path:      "x",
		Decl:      "fn long(" + strings.Repeat("a: i32, ", 40) + ") -> i32;",
		Stability: flatten.Stable,
	}}

	var buf bytes.Buffer
	if err := WriteTable(&buf, records, TableOptions{Color: ColorOff, Width: 80}); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	for i, line := range strings.Split(buf.String(), "\n") {
		if w := runewidth.StringWidth(line); w > 80 {
			t.Errorf("line %d is %d columns wide: %q", i, w, line)
		}
	}
	if !strings.Contains(buf.String(), "…") {
		t.Error("long signature was not truncated with an ellipsis")
	}
}

func TestWriteTableColorized(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, tableRecords(), TableOptions{Color: ColorOn, Width: 120}); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Error("forced color produced no ANSI escapes")
	}
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, nil, TableOptions{Color: ColorOff, Width: 120}); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if !strings.Contains(buf.String(), "0 records") {
		t.Errorf("empty table output = %q", buf.String())
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in   string
		want ColorMode
	}{
		{"on", ColorOn},
		{"off", ColorOff},
		{"auto", ColorAuto},
		{"", ColorAuto},
		{"rainbow", ColorAuto},
	}
	for _, tt := range tests {
		if got := ParseColorMode(tt.in); got != tt.want {
			t.Errorf("ParseColorMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
