package resolver

import "github.com/sodigy-lang/sodigy/internal/ident"

// Instantiator performs on-demand polymorphic instantiation (spec §4.4's
// last resolution step): each distinct (call-site, generic-def) pair gets
// its own synthesized def-span, generated once and cached, mirroring the
// spec §3/§4.2.2 rule that `Type.GenericArg{CallSite, GenericDef}` is itself
// the stable identity of one monomorphization. Uses ident.NewPolySpan (the
// same span-synthesis primitive GenericArg's own identity is built from).
type Instantiator struct {
	cache map[instKey]ident.Span
}

type instKey struct {
	callSite  ident.Span
	genericOf ident.Span
}

func NewInstantiator() *Instantiator {
	return &Instantiator{cache: map[instKey]ident.Span{}}
}

// Instantiate returns the def-span of the monomorphized copy of the
// function/struct declared at genericDef, specialized for callSite. Pure
// (non-generic) defs should never reach here — callers check
// FuncShape.GenericParams/StructShape's analogous field first; Instantiate
// always synthesizes a span, even when called redundantly, since the cache
// makes repeat calls for the same pair idempotent (spec §8's "generic-arg
// uniqueness": the same call site always resolves to the same
// monomorphization).
func (inst *Instantiator) Instantiate(genericDef, callSite ident.Span) ident.Span {
	key := instKey{callSite: callSite, genericOf: genericDef}
	if span, ok := inst.cache[key]; ok {
		return span
	}
	name := ident.Intern(genericDef.String() + "@" + callSite.String())
	span := ident.NewPolySpan(name, ident.PolyKindCallSite)
	inst.cache[key] = span
	return span
}

// Seen reports whether callSite has already produced a monomorphization of
// genericDef, without creating one — used by the solver's completeness
// check (spec §4.2.3) to exempt GenericArgs that a dispatched call resolved
// rather than left as an unresolved inference variable.
func (inst *Instantiator) Seen(genericDef, callSite ident.Span) bool {
	_, ok := inst.cache[instKey{callSite: callSite, genericOf: genericDef}]
	return ok
}
