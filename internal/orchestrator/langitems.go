package orchestrator

import "github.com/sodigy-lang/sodigy/internal/ident"

// preludeLangItems seeds the solver's well-known type registry (spec §4.2's
// "lang items": Int, Number, String, Char, Byte, Bool, List, Never) with
// synthetic spans, the way a real frontend would seed it from a parsed
// stdlib prelude. The scaffolding frontend carries no prelude source, so
// each name gets a stable synthetic span instead — solver.GetLangItemSpan
// only needs the spans to be stable and distinct, not to point at real
// source.
func preludeLangItems() map[string]ident.Span {
	names := []string{"Int", "Number", "String", "Char", "Byte", "Bool", "List", "Never", "Unit"}
	items := make(map[string]ident.Span, len(names))
	for _, name := range names {
		items[name] = ident.NewPolySpan(ident.Intern("lang-item:"+name), ident.PolyKindGenericDef)
	}
	return items
}
