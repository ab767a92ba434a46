// Package export writes record sets to interchange formats: SCIP
// indexes for code-intelligence tooling and compressed snapshots for
// later offline analysis.
package export

import (
	"fmt"
	"os"
	"sort"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	rdxerrors "rustdex/internal/errors"
	"rustdex/internal/flatten"
)

// BuildSCIP converts records into a SCIP index. Records group into one
// document per crate (the first path segment), named "<crate>.rs", and
// each record becomes a SymbolInformation carrying its declaration as
// documentation.
//
// Symbols follow the SCIP grammar with rustdex as the scheme:
//
//	rustdex cargo <crate> . <path segments>/<descriptor>
//
// where the descriptor is "Name#" for types, "name()." for functions,
// and the backtick-escaped declaration for impls, which have no name
// of their own.
func BuildSCIP(records []flatten.Record, toolVersion string) *scippb.Index {
	byCrate := make(map[string][]*scippb.SymbolInformation)
	for _, r := range records {
		crate := crateOf(r)
		byCrate[crate] = append(byCrate[crate], &scippb.SymbolInformation{
			Symbol:        Symbol(r),
			Documentation: []string{r.Decl},
			Kind:          symbolKind(r.Kind),
			DisplayName:   displayName(r),
		})
	}

	crates := make([]string, 0, len(byCrate))
	for crate := range byCrate {
		crates = append(crates, crate)
	}
	sort.Strings(crates)

	docs := make([]*scippb.Document, 0, len(crates))
	for _, crate := range crates {
		symbols := byCrate[crate]
		sort.Slice(symbols, func(i, j int) bool {
			return symbols[i].Symbol < symbols[j].Symbol
		})
		docs = append(docs, &scippb.Document{
			Language:     "rust",
			RelativePath: crate + ".rs",
			Symbols:      symbols,
		})
	}

	return &scippb.Index{
		Metadata: &scippb.Metadata{
			Version: scippb.ProtocolVersion_UnspecifiedProtocolVersion,
			ToolInfo: &scippb.ToolInfo{
				Name:    "rustdex",
				Version: toolVersion,
			},
			ProjectRoot:          "file:///rustdex",
			TextDocumentEncoding: scippb.TextEncoding_UTF8,
		},
		Documents: docs,
	}
}

// WriteSCIP marshals the index to path.
func WriteSCIP(path string, index *scippb.Index) error {
	data, err := proto.Marshal(index)
	if err != nil {
		return rdxerrors.New(rdxerrors.ExportFailed,
			"cannot marshal SCIP index", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return rdxerrors.New(rdxerrors.ExportFailed,
			fmt.Sprintf("cannot write SCIP index to %s", path), err)
	}
	return nil
}

// Symbol renders a record's SCIP symbol string.
func Symbol(r flatten.Record) string {
	var b strings.Builder
	b.WriteString("rustdex cargo ")
	b.WriteString(crateOf(r))
	b.WriteString(" . ")

	segments := strings.Split(r.Path, "::")
	for _, seg := range segments[1:] {
		b.WriteString(descriptorName(seg))
		b.WriteByte('/')
	}

	switch r.Kind {
	case flatten.KindFunction:
		b.WriteString(descriptorName(r.Name))
		b.WriteString("().")
	case flatten.KindImpl:
		b.WriteString("`")
		b.WriteString(implCore(r.Decl))
		b.WriteString("`#")
	default:
		b.WriteString(descriptorName(r.Name))
		b.WriteString("#")
	}
	return b.String()
}

func crateOf(r flatten.Record) string {
	crate, _, _ := strings.Cut(r.Path, "::")
	if crate == "" {
		return "unknown"
	}
	return crate
}

func displayName(r flatten.Record) string {
	if r.Kind == flatten.KindImpl {
		return implCore(r.Decl)
	}
	return r.Name
}

// implCore strips the impl keyword and body braces, leaving the part
// that identifies the impl: "impl Eq for Point { }" -> "Eq for Point".
func implCore(decl string) string {
	core := strings.TrimPrefix(decl, "unsafe ")
	core = strings.TrimPrefix(core, "impl")
	core = strings.TrimSuffix(core, "{ }")
	return strings.TrimSpace(core)
}

// descriptorName escapes a descriptor segment per the SCIP grammar:
// plain identifiers pass through, anything else gets backticks.
func descriptorName(name string) string {
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '+' || c == '-' || c == '$':
		default:
			return "`" + name + "`"
		}
	}
	if name == "" {
		return "``"
	}
	return name
}

func symbolKind(k flatten.Kind) scippb.SymbolInformation_Kind {
	switch k {
	case flatten.KindTrait:
		return scippb.SymbolInformation_Trait
	case flatten.KindStruct:
		return scippb.SymbolInformation_Struct
	case flatten.KindEnum:
		return scippb.SymbolInformation_Enum
	case flatten.KindFunction:
		return scippb.SymbolInformation_Function
	case flatten.KindImpl:
		return scippb.SymbolInformation_Instance
	}
	return scippb.SymbolInformation_UnspecifiedKind
}
