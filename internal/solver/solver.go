// Package solver implements the bidirectional subtype/unification engine
// described in spec §4.2: constraint collection over MIR expression forms,
// the solve_supertype case analysis, the deferred never-commitment and
// completeness passes, and purity enforcement. Grounded on the teacher's
// internal/types (unification.go, typechecker_core.go) for the Go shape of
// a constraint solver, and on the original Sodigy compiler's
// crates/inter-mir/src/type_solver.rs for the exact case analysis this
// package ports line-for-line into Go idiom.
package solver

import (
	"fmt"

	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mir"
	"github.com/sodigy-lang/sodigy/internal/mirtype"
)

// Solver carries the per-module solving state: the declared shapes of every
// function and struct in scope, the language-item registry used to resolve
// literal types, the live Environment the case analysis reads and mutates,
// and the accumulated diagnostics. One Solver instance solves one module;
// the orchestrator (internal/orchestrator) constructs a fresh one per job.
type Solver struct {
	Env          *mir.Environment
	FuncShapes   map[ident.Span]mir.FuncShape
	StructShapes map[ident.Span]mir.StructShape
	LangItems    map[string]ident.Span

	Bag *diag.Bag

	// ImpureCalls tracks, per enclosing function (keyed by its def span),
	// the call-site spans of impure callees encountered while solving its
	// body — input to the purity-enforcement pass (spec §4.2.4).
	ImpureCalls map[ident.Span][]ident.Span
}

func New(funcShapes map[ident.Span]mir.FuncShape, structShapes map[ident.Span]mir.StructShape, langItems map[string]ident.Span) *Solver {
	return &Solver{
		Env:          mir.NewEnvironment(),
		FuncShapes:   funcShapes,
		StructShapes: structShapes,
		LangItems:    langItems,
		Bag:          &diag.Bag{},
		ImpureCalls:  make(map[ident.Span][]ident.Span),
	}
}

// GetLangItemSpan resolves a well-known language item (Int, Bool, List, …)
// to its nominal def-span. Panics if the item is missing: lang items are
// seeded by the orchestrator before any module is solved, so a miss here
// means the standard prelude failed to load, not a user error.
func (s *Solver) GetLangItemSpan(name string) ident.Span {
	span, ok := s.LangItems[name]
	if !ok {
		panic(fmt.Sprintf("solver: missing required lang item %q", name))
	}
	return span
}

func (s *Solver) reportUnexpectedType(lhs, rhs mirtype.Type, lhsSpan, rhsSpan ident.Span, ctx errorContext) {
	msg := fmt.Sprintf("expected `%s`, found `%s`", lhs, rhs)
	if ctx.kind == ctxInferedAgain {
		msg = fmt.Sprintf("previously inferred as `%s`, now `%s`", lhs, rhs)
	}
	span := lhsSpan
	if span.IsNone() {
		span = rhsSpan
	}
	r := diag.New(diag.CodeUnexpectedType, diag.SeverityError, msg, span)
	if !rhsSpan.IsNone() {
		r = r.WithSecondary(rhsSpan)
	}
	s.Bag.Add(r)
}

func (s *Solver) reportUnexpectedPurity(lhs, rhs mirtype.Type, lhsSpan, rhsSpan ident.Span) {
	msg := fmt.Sprintf("function purity mismatch: expected `%s`, found `%s`", lhs, rhs)
	span := lhsSpan
	if span.IsNone() {
		span = rhsSpan
	}
	s.Bag.Add(diag.New(diag.CodeUnexpectedPurity, diag.SeverityError, msg, span))
}

// SolveSupertype is the engine from spec §4.2.2: determines whether rhs <:
// lhs and, where either side is a variable, performs unification as a side
// effect on s.Env. It returns the common supertype and true on success, or
// a best-effort type and false on failure — the solver never stops solving
// on one failure (spec §4.2.5); it records the diagnostic and keeps going
// unless isCheckingArgument suppresses local reporting (the caller, one
// level up, will report instead).
func (s *Solver) SolveSupertype(
	lhs, rhs mirtype.Type,
	isCheckingArgument bool,
	lhsSpan, rhsSpan ident.Span,
	ctx errorContext,
	bidirectional bool,
) (mirtype.Type, bool) {
	switch {
	// Case 1: two static nominals.
	case lhs.IsStatic() && rhs.IsStatic():
		if lhs.DefSpan.Equals(rhs.DefSpan) {
			return lhs, true
		}
		if !isCheckingArgument {
			s.reportUnexpectedType(lhs, rhs, lhsSpan, rhsSpan, ctx)
		}
		return lhs, false

	// Case 2: two units, two nevers.
	case lhs.IsUnit() && rhs.IsUnit():
		return lhs, true
	case lhs.IsNever() && rhs.IsNever():
		return lhs, true

	// Case 3: Param/Param or Func/Func.
	case (lhs.IsParam() && rhs.IsParam()) || (lhs.IsFunc() && rhs.IsFunc()):
		return s.solveParamOrFunc(lhs, rhs, isCheckingArgument, lhsSpan, rhsSpan, ctx, bidirectional)

	// Case 4: Var/Var.
	case lhs.IsVar() && rhs.IsVar():
		return s.solveVarVar(lhs, rhs, isCheckingArgument, lhsSpan, rhsSpan, bidirectional)

	// Case 5: GenericArg/GenericArg.
	case lhs.IsGenericArg() && rhs.IsGenericArg():
		return s.solveGenericArgGenericArg(lhs, rhs, isCheckingArgument, lhsSpan, rhsSpan, bidirectional)

	// Case 6: Blocked vs anything.
	case lhs.IsBlocked() || rhs.IsBlocked():
		if rhs.IsBlocked() {
			return lhs, true
		}
		return rhs, true

	// Case 7: GenericParam must have been instantiated already.
	case lhs.IsGenericParam() || rhs.IsGenericParam():
		panic("solver: encountered un-instantiated GenericParam during solving")

	// Case 8: Never vs concrete.
	case lhs.IsNever() || rhs.IsNever():
		return s.solveNeverConcrete(lhs, rhs, lhsSpan, rhsSpan, ctx, bidirectional)

	// Case 9/11: Var vs concrete, or Var vs GenericArg.
	case lhs.IsVar() || rhs.IsVar():
		return s.solveVarConcrete(lhs, rhs, isCheckingArgument, lhsSpan, rhsSpan, bidirectional)

	// Case 10: GenericArg vs concrete.
	case lhs.IsGenericArg() || rhs.IsGenericArg():
		return s.solveGenericArgConcrete(lhs, rhs, isCheckingArgument, lhsSpan, rhsSpan, bidirectional)

	default:
		if !isCheckingArgument {
			s.reportUnexpectedType(lhs, rhs, lhsSpan, rhsSpan, ctx)
		}
		return lhs, false
	}
}

// solveParamOrFunc implements case 3: Param argument positions are exact,
// Func argument positions are contravariant (the sides are swapped before
// recursing so the subtype relation still reads lhs-is-supertype-of-rhs at
// each argument), and purity composes through mirtype.ComposePurity.
func (s *Solver) solveParamOrFunc(
	lhs, rhs mirtype.Type,
	isCheckingArgument bool,
	lhsSpan, rhsSpan ident.Span,
	ctx errorContext,
	bidirectional bool,
) (mirtype.Type, bool) {
	isFunc := lhs.IsFunc()

	var head1, head2 mirtype.Type
	if isFunc {
		head1, head2 = *lhs.Return, *rhs.Return
	} else {
		head1, head2 = *lhs.Constructor, *rhs.Constructor
	}

	head, ok := s.SolveSupertype(head1, head2, true, ident.NoneSpan, ident.NoneSpan, deepContext(), bidirectional)
	if !ok {
		if !isCheckingArgument {
			s.reportUnexpectedType(lhs, rhs, lhsSpan, rhsSpan, ctx)
		}
		return lhs, false
	}

	if len(lhs.Args) != len(rhs.Args) {
		if !isCheckingArgument {
			s.reportUnexpectedType(lhs, rhs, lhsSpan, rhsSpan, ctx)
		}
		return lhs, false
	}

	args := make([]mirtype.Type, len(lhs.Args))
	hasError := false
	for i := range lhs.Args {
		// Param argument positions are exact (a, b) = (lhs, rhs). Func
		// parameter positions are contravariant: Sodigy has no dedicated
		// solve_subtype, so the original source swaps the sides, solves
		// for the supertype of the swapped pair, and keeps that computed
		// type as the unified parameter (rather than keeping either side
		// verbatim, the way the Param branch keeps rhs verbatim).
		var a, b mirtype.Type
		if isFunc {
			a, b = rhs.Args[i], lhs.Args[i]
		} else {
			a, b = lhs.Args[i], rhs.Args[i]
		}
		arg, ok := s.SolveSupertype(a, b, true, ident.NoneSpan, ident.NoneSpan, noContext(), bidirectional)
		if !ok {
			hasError = true
			continue
		}
		if isFunc {
			args[i] = arg
		} else {
			args[i] = rhs.Args[i]
		}
	}
	if hasError {
		if !isCheckingArgument {
			s.reportUnexpectedType(lhs, rhs, lhsSpan, rhsSpan, ctx)
		}
		return lhs, false
	}

	if isFunc {
		purity, ok := mirtype.ComposePurity(lhs.Purity, rhs.Purity)
		if !ok {
			if bidirectional {
				purity = mirtype.Both
			} else {
				if !isCheckingArgument {
					s.reportUnexpectedPurity(lhs, rhs, lhsSpan, rhsSpan)
				}
				return lhs, false
			}
		}
		return mirtype.Func(args, head, purity), true
	}
	return mirtype.Param(head, args...), true
}

// resolvedOrSelf follows a Var/GenericArg's current binding (accounting for
// the return-slot indirection), or returns t unchanged if unbound.
func (s *Solver) resolvedOrSelf(t mirtype.Type) mirtype.Type {
	resolved, ok := s.Env.LookupVar(t)
	if !ok {
		return t
	}
	return resolved
}

func (s *Solver) solveVarVar(
	lhs, rhs mirtype.Type,
	isCheckingArgument bool,
	lhsSpan, rhsSpan ident.Span,
	bidirectional bool,
) (mirtype.Type, bool) {
	if lhs.DefSpan.Equals(rhs.DefSpan) && lhs.IsReturn == rhs.IsReturn {
		return lhs, true
	}

	r1 := s.resolvedOrSelf(lhs)
	r2 := s.resolvedOrSelf(rhs)

	if !(r1.IsVar() || r1.IsGenericArg()) || !(r2.IsVar() || r2.IsGenericArg()) {
		return s.SolveSupertype(r1, r2, isCheckingArgument, lhsSpan, rhsSpan, deepContext(), bidirectional)
	}

	s.Env.BindVar(lhs, rhs)
	s.Env.AddTypeVar(lhs, ident.InternedString{})
	s.Env.AddTypeVarRef(lhs, rhs)

	s.Env.BindVar(rhs, lhs)
	s.Env.AddTypeVar(rhs, ident.InternedString{})
	s.Env.AddTypeVarRef(rhs, lhs)

	return lhs, true
}

func (s *Solver) solveGenericArgGenericArg(
	lhs, rhs mirtype.Type,
	isCheckingArgument bool,
	lhsSpan, rhsSpan ident.Span,
	bidirectional bool,
) (mirtype.Type, bool) {
	if lhs.CallSite.Equals(rhs.CallSite) && lhs.GenericDef.Equals(rhs.GenericDef) {
		return lhs, true
	}

	if t1, ok := s.Env.LookupVar(lhs); ok && !(t1.IsVar() || t1.IsGenericArg()) {
		return s.SolveSupertype(t1, rhs, isCheckingArgument, lhsSpan, rhsSpan, deepContext(), bidirectional)
	}
	if t2, ok := s.Env.LookupVar(rhs); ok && !(t2.IsVar() || t2.IsGenericArg()) {
		return s.SolveSupertype(lhs, t2, isCheckingArgument, lhsSpan, rhsSpan, deepContext(), bidirectional)
	}

	s.Env.BindVar(lhs, rhs)
	s.Env.AddTypeVar(lhs, ident.InternedString{})
	s.Env.AddTypeVarRef(lhs, rhs)

	s.Env.BindVar(rhs, lhs)
	s.Env.AddTypeVar(rhs, ident.InternedString{})
	s.Env.AddTypeVarRef(rhs, lhs)

	return lhs, true
}

// solveNeverConcrete implements case 8. The concrete side always wins; if
// that concrete side is itself still a variable, the Never-ness is
// deferred into MaybeNeverType rather than bound immediately, since a
// later constraint may refine the variable to something more specific.
func (s *Solver) solveNeverConcrete(
	lhs, rhs mirtype.Type,
	lhsSpan, rhsSpan ident.Span,
	ctx errorContext,
	bidirectional bool,
) (mirtype.Type, bool) {
	neverExpected := lhs.IsNever()
	never, concrete := lhs, rhs
	if !neverExpected {
		never, concrete = rhs, lhs
	}

	if concrete.IsVariable() {
		s.Env.SetMaybeNever(concrete, never)
	}

	if bidirectional || !neverExpected {
		return concrete, true
	}
	s.reportUnexpectedType(lhs, rhs, lhsSpan, rhsSpan, ctx)
	return lhs, false
}

// solveVarConcrete implements cases 9 and 11: Var-vs-(Static/Unit/Param/
// Func/GenericArg). When the variable already resolves to a concrete
// binding, the two concrete types must themselves agree (this is how
// "inferred again" conflicts surface). Otherwise the variable is bound; if
// the new binding itself still contains type variables, dependents are
// registered instead of eagerly substituted.
func (s *Solver) solveVarConcrete(
	lhs, rhs mirtype.Type,
	isCheckingArgument bool,
	lhsSpan, rhsSpan ident.Span,
	bidirectional bool,
) (mirtype.Type, bool) {
	typeVar, concrete := lhs, rhs
	concreteSpan := rhsSpan
	if rhs.IsVar() {
		typeVar, concrete = rhs, lhs
		concreteSpan = lhsSpan
	}

	if concrete.IsGenericArg() {
		// Var vs GenericArg (case 11): symmetric bidirectional binding,
		// same bookkeeping as solveVarVar but across the two tables.
		s.Env.BindVar(typeVar, concrete)
		s.Env.AddTypeVar(typeVar, ident.InternedString{})
		s.Env.AddTypeVarRef(typeVar, concrete)

		s.Env.BindVar(concrete, typeVar)
		s.Env.AddTypeVar(concrete, ident.InternedString{})
		s.Env.AddTypeVarRef(concrete, typeVar)
		return typeVar, true
	}

	if prev, ok := s.Env.LookupVar(typeVar); ok && !(prev.IsVar() || prev.IsGenericArg()) {
		if _, ok := s.SolveSupertype(prev, concrete, false, ident.NoneSpan, concreteSpan, inferedAgainContext(typeVar), bidirectional); !ok {
			return lhs, false
		}
	}

	s.Env.BindVar(typeVar, concrete)

	refs := concrete.GetTypeVars()
	if len(refs) == 0 {
		s.substitute(typeVar, concrete)
	} else {
		for _, ref := range refs {
			s.Env.AddTypeVarRef(ref, typeVar)
		}
	}

	return concrete, true
}

func (s *Solver) solveGenericArgConcrete(
	lhs, rhs mirtype.Type,
	isCheckingArgument bool,
	lhsSpan, rhsSpan ident.Span,
	bidirectional bool,
) (mirtype.Type, bool) {
	typeVar, concrete := lhs, rhs
	concreteSpan := rhsSpan
	if rhs.IsGenericArg() {
		typeVar, concrete = rhs, lhs
		concreteSpan = lhsSpan
	}

	if prev, ok := s.Env.LookupVar(typeVar); ok && !(prev.IsVar() || prev.IsGenericArg()) {
		if _, ok := s.SolveSupertype(prev, concrete, false, ident.NoneSpan, concreteSpan, inferedAgainContext(typeVar), bidirectional); !ok {
			return lhs, false
		}
	}

	s.Env.BindVar(typeVar, concrete)
	s.substitute(typeVar, concrete)
	return concrete, true
}

// substitute propagates a newly-bound variable into every dependent
// recorded in Env.TypeVarRefs, mirroring TypeSolver::substitute. It
// removes the dependency edge after propagating (solved variables don't
// need to be revisited, and leaving the edge risks cycles on repeated
// never-commitment passes).
func (s *Solver) substitute(v, replacement mirtype.Type) {
	key, ok := v.Key()
	if !ok {
		return
	}
	dependents := s.Env.TypeVarRefs[key]
	delete(s.Env.TypeVarRefs, key)

	for _, dep := range dependents {
		if dep.IsVar() {
			if cur, ok := s.Env.Types[dep.DefSpan]; ok {
				s.Env.Types[dep.DefSpan] = cur.Substitute(v, replacement)
			}
			continue
		}
		if dep.IsGenericArg() {
			gk := mir.GenericArgKey{CallSite: dep.CallSite, GenericDef: dep.GenericDef}
			if cur, ok := s.Env.GenericArgs[gk]; ok {
				s.Env.GenericArgs[gk] = cur.Substitute(v, replacement)
			}
		}
	}
}
