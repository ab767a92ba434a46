// Package render turns graph definitions into canonical single-line
// Rust declaration strings.
//
// Rendering is pure and total: every function is deterministic over its
// input and never fails. Constructs the type model does not carry
// (function pointer signatures, region predicates, unknown type tags)
// render as tagged placeholders instead of faulting, so one odd item
// cannot take down a whole flattening run.
package render

import (
	"fmt"
	"strings"

	"rustdex/internal/ir"
)

// GenericParams renders a declaration's parameter list as `<...>`.
// Lifetime parameters never render; an effectively empty list renders
// as the empty string, never `<>`.
func GenericParams(params []ir.GenericParam) string {
	var parts []string
	for _, p := range params {
		switch k := p.Kind.(type) {
		case ir.TypeParam:
			s := p.Name + Bounds(k.Bounds)
			if k.Default != nil {
				s += " = " + Type(k.Default)
			}
			parts = append(parts, s)
		case ir.ConstParam:
			s := "const " + p.Name + ": " + Type(k.Type)
			if k.Default != "" {
				s += " = " + k.Default
			}
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// Bounds renders a bound list as `: B1 + B2`, or the empty string when
// nothing renders.
func Bounds(bounds []ir.Bound) string {
	list := boundList(bounds)
	if list == "" {
		return ""
	}
	return ": " + list
}

// boundList joins trait bounds with ` + `, without the leading colon.
// Outlives bounds are dropped, like lifetimes everywhere else.
func boundList(bounds []ir.Bound) string {
	var parts []string
	for _, b := range bounds {
		tb, ok := b.(ir.TraitBound)
		if !ok {
			continue
		}
		parts = append(parts, modifierPrefix(tb.Modifier)+tb.Trait.Name)
	}
	return strings.Join(parts, " + ")
}

func modifierPrefix(m ir.BoundModifier) string {
	switch m {
	case ir.BoundModifierMaybe:
		return "?"
	case ir.BoundModifierMaybeConst:
		return "~const "
	default:
		return ""
	}
}

// WherePredicates renders a where clause with its leading ` where `, or
// the empty string for an empty clause.
func WherePredicates(preds []ir.WherePredicate) string {
	if len(preds) == 0 {
		return ""
	}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		switch pred := p.(type) {
		case ir.BoundPredicate:
			parts = append(parts, Type(pred.Type)+Bounds(pred.Bounds))
		case ir.RegionPredicate:
			parts = append(parts, "<region predicate>")
		case ir.EqPredicate:
			parts = append(parts, Type(pred.Lhs)+" = "+Term(pred.Rhs))
		default:
			parts = append(parts, fmt.Sprintf("<unsupported predicate: %T>", p))
		}
	}
	return " where " + strings.Join(parts, ", ")
}

// Term renders the right-hand side of an equality predicate.
func Term(t ir.Term) string {
	switch term := t.(type) {
	case ir.TypeTerm:
		return Type(term.Type)
	case ir.ConstTerm:
		if term.Value == "" {
			return "_"
		}
		return term.Value
	default:
		return fmt.Sprintf("<unsupported term: %T>", t)
	}
}

// Type renders a type expression.
func Type(t ir.Type) string {
	switch ty := t.(type) {
	case nil:
		return "_"
	case ir.Generic:
		return ty.Name
	case ir.ResolvedPath:
		return ty.Name
	case ir.Primitive:
		return ty.Name
	case ir.Tuple:
		parts := make([]string, len(ty.Elements))
		for i, e := range ty.Elements {
			parts[i] = Type(e)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case ir.Slice:
		return "[" + Type(ty.Element) + "]"
	case ir.Array:
		return "[" + Type(ty.Element) + "; " + ty.Len + "]"
	case ir.RawPointer:
		if ty.Mutable {
			return "*mut " + Type(ty.Element)
		}
		return "*const " + Type(ty.Element)
	case ir.BorrowedRef:
		var b strings.Builder
		b.WriteString("&")
		if ty.Lifetime != "" {
			b.WriteString(ty.Lifetime)
			b.WriteString(" ")
		}
		if ty.Mutable {
			b.WriteString("mut ")
		}
		b.WriteString(Type(ty.Element))
		return b.String()
	case ir.DynTrait:
		names := make([]string, len(ty.Traits))
		for i, tr := range ty.Traits {
			names[i] = tr.Name
		}
		return "dyn " + strings.Join(names, " + ")
	case ir.ImplTrait:
		return "impl " + boundList(ty.Bounds)
	case ir.QualifiedPath:
		return Type(ty.SelfType) + "::" + ty.Name
	case ir.FunctionPointer:
		return "<fn pointer>"
	case ir.Inferred:
		return "_"
	case ir.Unsupported:
		return "<unsupported: " + ty.Tag + ">"
	default:
		return fmt.Sprintf("<unsupported: %T>", t)
	}
}

// TraitDecl renders `[unsafe ][auto ]trait Name<P>: Bounds where ... { }`.
func TraitDecl(name string, t ir.Trait) string {
	var b strings.Builder
	if t.IsUnsafe {
		b.WriteString("unsafe ")
	}
	if t.IsAuto {
		b.WriteString("auto ")
	}
	b.WriteString("trait ")
	b.WriteString(name)
	b.WriteString(GenericParams(t.Generics.Params))
	b.WriteString(Bounds(t.Bounds))
	b.WriteString(WherePredicates(t.Generics.WherePredicates))
	b.WriteString(" { }")
	return b.String()
}

// StructDecl renders `struct Name<P> where ... { .. }`. Fields are
// elided; the body placeholder marks that.
func StructDecl(name string, s ir.Struct) string {
	return "struct " + name +
		GenericParams(s.Generics.Params) +
		WherePredicates(s.Generics.WherePredicates) +
		" { .. }"
}

// EnumDecl renders `enum Name<P> where ... { .. }` with variants elided.
func EnumDecl(name string, e ir.Enum) string {
	return "enum " + name +
		GenericParams(e.Generics.Params) +
		WherePredicates(e.Generics.WherePredicates) +
		" { .. }"
}

// FunctionDecl renders
// `[const ][unsafe ][async ]fn name<P>(args) -> T where ...` terminated
// by ` { .. }` for bodied functions and `;` for bodiless ones.
func FunctionDecl(name string, f ir.Function) string {
	var b strings.Builder
	if f.Header.IsConst {
		b.WriteString("const ")
	}
	if f.Header.IsUnsafe {
		b.WriteString("unsafe ")
	}
	if f.Header.IsAsync {
		b.WriteString("async ")
	}
	b.WriteString("fn ")
	b.WriteString(name)
	b.WriteString(GenericParams(f.Generics.Params))
	b.WriteString("(")
	for i, in := range f.Decl.Inputs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(in.Name)
		b.WriteString(": ")
		b.WriteString(Type(in.Type))
	}
	b.WriteString(")")
	if f.Decl.Output != nil {
		b.WriteString(" -> ")
		b.WriteString(Type(f.Decl.Output))
	}
	b.WriteString(WherePredicates(f.Generics.WherePredicates))
	if f.HasBody {
		b.WriteString(" { .. }")
	} else {
		b.WriteString(";")
	}
	return b.String()
}

// ImplDecl renders `[unsafe ]impl<P> [Trait for ]SelfType where ... { }`.
func ImplDecl(imp ir.Impl) string {
	var b strings.Builder
	if imp.IsUnsafe {
		b.WriteString("unsafe ")
	}
	b.WriteString("impl")
	b.WriteString(GenericParams(imp.Generics.Params))
	b.WriteString(" ")
	if imp.Trait != nil {
		b.WriteString(imp.Trait.Name)
		b.WriteString(" for ")
	}
	b.WriteString(Type(imp.For))
	b.WriteString(WherePredicates(imp.Generics.WherePredicates))
	b.WriteString(" { }")
	return b.String()
}
