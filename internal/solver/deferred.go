package solver

import (
	"fmt"

	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mir"
	"github.com/sodigy-lang/sodigy/internal/mirtype"
)

// ApplyNeverTypes implements spec §4.2.3's never-commitment pass: every
// variable still unresolved after the main fixed point, that has an entry
// in MaybeNeverType, is committed to Never and substituted through its
// dependents. Grounded on TypeSolver::apply_never_types.
func (s *Solver) ApplyNeverTypes() {
	type pending struct {
		v      mirtype.Type
		never  mirtype.Type
	}
	var commits []pending

	for key := range s.Env.MaybeNeverType {
		v := key.Type()
		resolved, ok := s.Env.LookupVar(v)
		if ok && !(resolved.IsVar() || resolved.IsGenericArg()) {
			continue
		}
		commits = append(commits, pending{v: v, never: s.Env.MaybeNeverType[key]})
	}

	for _, c := range commits {
		s.Env.BindVar(c.v, c.never)
		s.substitute(c.v, c.never)
	}
}

// CheckAllTypesInferred implements spec §4.2.3's completeness check: every
// registered variable must resolve to a type free of nested variables.
// Pattern name bindings and dispatched-call GenericArgs are exempt.
func (s *Solver) CheckAllTypesInferred(dispatchedCalls map[mir.GenericArgKey]bool) {
	for key, name := range s.Env.TypeVars {
		if key.IsGenericArg() {
			s.checkGenericArgInferred(key, name, dispatchedCalls)
			continue
		}
		s.checkVarInferred(key, name)
	}
}

func (s *Solver) checkVarInferred(key mirtype.VarKey, name ident.InternedString) {
	v := key.Type()
	t, ok := s.Env.Types[key.DefSpan]
	if !ok || t.IsVar() || t.IsGenericArg() {
		if s.Env.PatternNameBindings[key.DefSpan] {
			return
		}
		s.Bag.Add(diag.New(diag.CodeCannotInferType, diag.SeverityError,
			fmt.Sprintf("cannot infer type of %s", nameOrAnon(name)), key.DefSpan))
		return
	}

	if key.IsReturn {
		if !t.IsFunc() {
			panic("solver: return-slot var bound to a non-Func type")
		}
		ret := *t.Return
		if ret.IsVar() || ret.IsGenericArg() {
			s.Bag.Add(diag.New(diag.CodeCannotInferType, diag.SeverityError,
				fmt.Sprintf("cannot infer return type of %s", nameOrAnon(name)), key.DefSpan))
			return
		}
		if len(ret.GetTypeVars()) > 0 {
			s.Bag.Add(diag.New(diag.CodePartiallyInferedType, diag.SeverityError,
				fmt.Sprintf("partially inferred return type of %s: %s", nameOrAnon(name), ret), key.DefSpan))
		}
		return
	}

	if len(t.GetTypeVars()) > 0 {
		s.Bag.Add(diag.New(diag.CodePartiallyInferedType, diag.SeverityError,
			fmt.Sprintf("partially inferred type of %s: %s", nameOrAnon(name), t), key.DefSpan))
	}
	_ = v
}

func (s *Solver) checkGenericArgInferred(key mirtype.VarKey, name ident.InternedString, dispatchedCalls map[mir.GenericArgKey]bool) {
	gk := mir.GenericArgKey{CallSite: key.CallSite, GenericDef: key.GenericDef}
	if dispatchedCalls[gk] {
		return
	}
	t, ok := s.Env.GenericArgs[gk]
	if !ok || t.IsVar() || t.IsGenericArg() {
		s.Bag.Add(diag.New(diag.CodeCannotInferType, diag.SeverityError,
			fmt.Sprintf("cannot infer generic argument %s", nameOrAnon(name)), key.GenericDef))
		return
	}
	if len(t.GetTypeVars()) > 0 {
		s.Bag.Add(diag.New(diag.CodePartiallyInferedType, diag.SeverityError,
			fmt.Sprintf("partially inferred generic argument %s: %s", nameOrAnon(name), t), key.GenericDef))
	}
}

func nameOrAnon(name ident.InternedString) string {
	if name.IsEmpty() {
		return "<anonymous>"
	}
	return name.String()
}

// VerifyAnnotations implements spec §4.2.3's annotation verification: for
// each user-written type assertion, re-run solve_supertype non-bidirectionally
// against the now-resolved inferred type.
func (s *Solver) VerifyAnnotations(assertions []Annotation) {
	for _, a := range assertions {
		s.SolveSupertype(a.Annotation, a.Inferred, false, a.AnnotationSpan, a.InferredSpan, noContext(), false)
	}
}

// Annotation is one user-written type assertion collected during constraint
// collection (`let x: T = e`, explicit return annotations, struct field
// annotations), deferred here for re-verification once inference settles.
type Annotation struct {
	Annotation     mirtype.Type
	Inferred       mirtype.Type
	AnnotationSpan ident.Span
	InferredSpan   ident.Span
}

// EnforcePurity implements spec §4.2.4: a function declared pure with any
// impure call recorded is an error; a function declared impure with zero
// impure calls recorded is a warning (likely meant to be pure).
func (s *Solver) EnforcePurity(funcSpan ident.Span, declared mirtype.Purity) {
	calls := s.ImpureCalls[funcSpan]
	switch declared {
	case mirtype.Pure:
		if len(calls) > 0 {
			r := diag.New(diag.CodePurityMismatch, diag.SeverityError,
				"function declared pure but calls impure functions", funcSpan)
			for _, c := range calls {
				r = r.WithSecondary(c)
			}
			s.Bag.Add(r)
		}
	case mirtype.Impure:
		if len(calls) == 0 {
			s.Bag.Add(diag.New(diag.CodePurityMismatch, diag.SeverityWarning,
				"function declared impure but contains no impure calls", funcSpan))
		}
	}
}
