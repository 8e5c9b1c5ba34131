// Package resolver implements the inter-module resolver of spec §4.4: the
// language-item registry, alias resolution with cycle detection, associated
// item resolution, and on-demand polymorphic instantiation that bridge the
// per-file frontends before the type solver runs. Grounded on the teacher's
// internal/link (topological module linking with cycle detection) and
// internal/link/builtin_module.go (the fixed stdlib registry it seeds link
// order from).
package resolver

import (
	"fmt"

	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/ident"
)

// Registry is the language-item registry: a string-keyed map from
// well-known names ("type.Bool", "type.Int", "built_in.init_list.generic.0")
// to their authoritative def-span, populated once by walking stdlib
// declarations and decorator annotations. Mirrors the teacher's
// internal/link builtin-module bootstrap, generalized from a fixed module
// list to an open string-keyed table.
type Registry struct {
	items map[string]ident.Span
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[string]ident.Span)}
}

// Register records a well-known item's def-span. Re-registering the same
// name with a different span is a programmer error (stdlib declarations are
// walked exactly once per compilation session).
func (r *Registry) Register(name string, span ident.Span) {
	if existing, ok := r.items[name]; ok && existing != span {
		panic(fmt.Sprintf("resolver: lang item %q already registered at %s", name, existing))
	}
	r.items[name] = span
}

// Lookup returns the def-span for a well-known item, or false if the stdlib
// walk never produced one (a missing lang item is always a compiler bug, not
// a user error — spec §4.2.1 callers panic on this, matching solver.Solver's
// own GetLangItemSpan contract).
func (r *Registry) Lookup(name string) (ident.Span, bool) {
	s, ok := r.items[name]
	return s, ok
}

// MustLookup panics if name isn't registered, for call sites (like the
// solver) that treat a missing lang item as an internal error.
func (r *Registry) MustLookup(name string) ident.Span {
	s, ok := r.items[name]
	if !ok {
		panic(fmt.Sprintf("resolver: missing required lang item %q", name))
	}
	return s
}

// reportMissingLangItem is used by callers that would rather degrade to a
// diagnostic than panic (e.g. resolving a user-written `#[lang_item]`
// decorator against an unexpected name).
func reportMissingLangItem(bag *diag.Bag, name string, span ident.Span) {
	bag.Add(diag.New(diag.CodeMissingLangItem, diag.SeverityError,
		fmt.Sprintf("unknown lang item %q", name), span))
}
