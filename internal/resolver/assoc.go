package resolver

import (
	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mir"
)

// ResolveAssocFunc resolves `x.method(...)` (spec §4.4: "For associated
// function references, a fresh monomorphized polymorphic function, created
// on demand") against a struct's shape. Returns the resolved function's
// def-span, instantiating a fresh monomorphization via Instantiator when the
// associated function is generic.
func ResolveAssocFunc(shape mir.StructShape, method ident.InternedString, callSite ident.Span, inst *Instantiator, bag *diag.Bag) (ident.Span, bool) {
	af, ok := shape.AssocFunctions[method]
	if !ok {
		bag.Add(diag.New(diag.CodeUnknownAssocItem, diag.SeverityError,
			"no associated function named "+method.String(), callSite))
		return ident.NoneSpan, false
	}
	return inst.Instantiate(af.DefSpan, callSite), true
}

// ResolveAssocLet resolves `Struct.CONST`-style associated constants.
func ResolveAssocLet(shape mir.StructShape, name ident.InternedString, callSite ident.Span, bag *diag.Bag) (ident.Span, bool) {
	span, ok := shape.AssocLets[name]
	if !ok {
		bag.Add(diag.New(diag.CodeUnknownAssocItem, diag.SeverityError,
			"no associated value named "+name.String(), callSite))
		return ident.NoneSpan, false
	}
	return span, true
}
