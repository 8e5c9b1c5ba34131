package mir

import (
	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mirtype"
)

// GenericArgKey is the composite key the solver uses for generic_args:
// (call_site, generic_def).
type GenericArgKey struct {
	CallSite   ident.Span
	GenericDef ident.Span
}

// Environment is the solver's core mutable state (spec §3, "Environment
// maps"): the resolved type of every definition, the resolved type of every
// generic-argument instantiation, the set of known type variables and their
// human-readable names, the type-variable dependency graph, and the
// deferred never-type commitments.
//
// Spans and GenericArgKeys are value types, so plain maps suffice — there is
// no cyclic ownership to manage (see DESIGN.md's design-notes entry).
type Environment struct {
	Types       map[ident.Span]mirtype.Type
	GenericArgs map[GenericArgKey]mirtype.Type

	// TypeVars maps a variable (Var or GenericArg, identified by its
	// VarKey) to a human-readable name, if one is known. Type itself is not
	// comparable (it carries slice/pointer fields for the composite
	// variants), so variable identity is tracked via mirtype.VarKey instead.
	TypeVars map[mirtype.VarKey]ident.InternedString

	// TypeVarRefs is the dependency graph: "when variable X is resolved,
	// these other variables may need substitution."
	TypeVarRefs map[mirtype.VarKey][]mirtype.Type

	// MaybeNeverType remembers constraints of the form "variable X must be
	// at least Never but may refine to something larger"; committed to
	// Never only after the main fixed point terminates.
	MaybeNeverType map[mirtype.VarKey]mirtype.Type

	// PatternNameBindings holds the def-spans of identifiers bound inside
	// patterns; these are exempt from the completeness check because the
	// match compiler resolves them later.
	PatternNameBindings map[ident.Span]bool

	// BlockedTypeVars holds the origin spans of Blocked placeholders
	// encountered, so later passes can report "depends on X" diagnostics.
	BlockedTypeVars map[ident.Span]bool
}

func NewEnvironment() *Environment {
	return &Environment{
		Types:               make(map[ident.Span]mirtype.Type),
		GenericArgs:         make(map[GenericArgKey]mirtype.Type),
		TypeVars:            make(map[mirtype.VarKey]ident.InternedString),
		TypeVarRefs:         make(map[mirtype.VarKey][]mirtype.Type),
		MaybeNeverType:      make(map[mirtype.VarKey]mirtype.Type),
		PatternNameBindings: make(map[ident.Span]bool),
		BlockedTypeVars:     make(map[ident.Span]bool),
	}
}

// AddTypeVar registers a variable (Var or GenericArg) if not already known.
// Panics if v is not a variable kind — the caller is expected to have
// checked IsVariable() already, same discipline as mirtype.Type.Substitute.
func (e *Environment) AddTypeVar(v mirtype.Type, name ident.InternedString) {
	key, ok := v.Key()
	if !ok {
		panic("mir: AddTypeVar requires a variable kind")
	}
	if _, ok := e.TypeVars[key]; !ok {
		e.TypeVars[key] = name
	}
}

// AddTypeVarRef records that `referent` must be revisited whenever
// `reference` is resolved.
func (e *Environment) AddTypeVarRef(reference, referent mirtype.Type) {
	if reference.Equals(referent) {
		return
	}
	key, ok := reference.Key()
	if !ok {
		panic("mir: AddTypeVarRef requires a variable reference")
	}
	for _, existing := range e.TypeVarRefs[key] {
		if existing.Equals(referent) {
			return
		}
	}
	e.TypeVarRefs[key] = append(e.TypeVarRefs[key], referent)
}

// LookupVar resolves a Var's current binding, or returns (Type{}, false).
func (e *Environment) LookupVar(v mirtype.Type) (mirtype.Type, bool) {
	if v.IsVar() {
		t, ok := e.Types[v.DefSpan]
		return t, ok
	}
	if v.IsGenericArg() {
		t, ok := e.GenericArgs[GenericArgKey{CallSite: v.CallSite, GenericDef: v.GenericDef}]
		return t, ok
	}
	return mirtype.Type{}, false
}

// LookupMaybeNever resolves a pending maybe-Never commitment for v, if any.
func (e *Environment) LookupMaybeNever(v mirtype.Type) (mirtype.Type, bool) {
	key, ok := v.Key()
	if !ok {
		return mirtype.Type{}, false
	}
	t, ok := e.MaybeNeverType[key]
	return t, ok
}

// SetMaybeNever records a deferred "at least Never" commitment for v.
func (e *Environment) SetMaybeNever(v, candidate mirtype.Type) {
	key, ok := v.Key()
	if !ok {
		panic("mir: SetMaybeNever requires a variable kind")
	}
	e.MaybeNeverType[key] = candidate
}

// TypeVarName returns the human-readable name registered for v, if any.
func (e *Environment) TypeVarName(v mirtype.Type) (ident.InternedString, bool) {
	key, ok := v.Key()
	if !ok {
		return ident.InternedString{}, false
	}
	name, ok := e.TypeVars[key]
	return name, ok
}

// RefsOf returns the variables that depend on v, per TypeVarRefs.
func (e *Environment) RefsOf(v mirtype.Type) []mirtype.Type {
	key, ok := v.Key()
	if !ok {
		return nil
	}
	return e.TypeVarRefs[key]
}

// BindVar records the resolved type for a Var or GenericArg.
func (e *Environment) BindVar(v, resolved mirtype.Type) {
	if v.IsVar() {
		if v.IsReturn {
			if fn, ok := e.Types[v.DefSpan]; ok && fn.IsFunc() {
				e.Types[v.DefSpan] = mirtype.Func(fn.Args, resolved, fn.Purity)
				return
			}
		}
		e.Types[v.DefSpan] = resolved
		return
	}
	if v.IsGenericArg() {
		e.GenericArgs[GenericArgKey{CallSite: v.CallSite, GenericDef: v.GenericDef}] = resolved
	}
}
