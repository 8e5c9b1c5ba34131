package solver

import (
	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mir"
	"github.com/sodigy-lang/sodigy/internal/mirtype"
)

// FuncCtx is the per-function solving context threaded through SolveExpr:
// the function's own def-span (to append to ImpureCalls) and the set of
// generic defs in scope (for instantiating a polymorphic callee's
// signature at this call site, spec §4.2.1 "static function").
type FuncCtx struct {
	FuncSpan    ident.Span
	GenericDefs []ident.Span
}

// SolveExpr implements constraint collection (spec §4.2.1): it walks one
// MIR expression, emitting subtype constraints against s.Env as a side
// effect, and returns the expression's inferred type.
func (s *Solver) SolveExpr(e *mir.Expr, fc FuncCtx) mirtype.Type {
	switch {
	case e.IsIdent():
		return s.solveIdent(e)
	case e.IsLit():
		return s.solveLit(e)
	case e.IsIf():
		return s.solveIf(e, fc)
	case e.IsMatch():
		return s.solveMatch(e, fc)
	case e.IsBlock():
		return s.solveBlock(e, fc)
	case e.IsFieldAccess():
		return s.solveFieldAccess(e, fc)
	case e.IsFieldUpdate():
		return s.solveFieldUpdate(e, fc)
	case e.IsCall():
		return s.solveCall(e, fc)
	default:
		panic("solver: unknown expression kind")
	}
}

func (s *Solver) solveIdent(e *mir.Expr) mirtype.Type {
	if t, ok := s.Env.Types[e.DefSpan]; ok {
		return t
	}
	v := mirtype.Var(e.DefSpan, false)
	s.Env.Types[e.DefSpan] = v
	s.Env.AddTypeVar(v, ident.InternedString{})
	return v
}

func (s *Solver) solveLit(e *mir.Expr) mirtype.Type {
	switch e.LitKind {
	case mir.LitInt:
		return mirtype.Static(s.GetLangItemSpan("Int"))
	case mir.LitNumber:
		return mirtype.Static(s.GetLangItemSpan("Number"))
	case mir.LitString:
		return mirtype.Static(s.GetLangItemSpan("String"))
	case mir.LitChar:
		return mirtype.Static(s.GetLangItemSpan("Char"))
	case mir.LitByte:
		return mirtype.Static(s.GetLangItemSpan("Byte"))
	default:
		panic("solver: unknown literal kind")
	}
}

func (s *Solver) solveIf(e *mir.Expr, fc FuncCtx) mirtype.Type {
	cond := s.SolveExpr(e.Cond, fc)
	boolType := mirtype.Static(s.GetLangItemSpan("Bool"))
	s.SolveSupertype(boolType, cond, false, ident.NoneSpan, e.Cond.ErrorSpanWide(), noContext(), false)

	thenT := s.SolveExpr(e.Then, fc)
	elseT := s.SolveExpr(e.Else, fc)
	joined, _ := s.SolveSupertype(thenT, elseT, false, e.Then.ErrorSpanWide(), e.Else.ErrorSpanWide(), noContext(), true)
	return joined
}

func (s *Solver) solveMatch(e *mir.Expr, fc FuncCtx) mirtype.Type {
	scrutineeType := s.SolveExpr(e.Scrutinee, fc)

	var joined mirtype.Type
	hasJoined := false
	boolType := mirtype.Static(s.GetLangItemSpan("Bool"))

	for _, arm := range e.Arms {
		patType := s.SolvePatternType(arm.Pattern)
		s.SolveSupertype(scrutineeType, patType, false, e.Scrutinee.ErrorSpanWide(), arm.Pattern.Span(), noContext(), true)

		if arm.Guard != nil {
			guardType := s.SolveExpr(arm.Guard, fc)
			s.SolveSupertype(boolType, guardType, false, ident.NoneSpan, arm.Guard.ErrorSpanWide(), noContext(), false)
		}

		bodyType := s.SolveExpr(arm.Body, fc)
		if !hasJoined {
			joined = bodyType
			hasJoined = true
			continue
		}
		joined, _ = s.SolveSupertype(joined, bodyType, false, ident.NoneSpan, arm.Body.ErrorSpanWide(), noContext(), true)
	}

	if !hasJoined {
		return mirtype.Never()
	}
	return joined
}

func (s *Solver) solveBlock(e *mir.Expr, fc FuncCtx) mirtype.Type {
	for _, let := range e.Lets {
		valueType := s.SolveExpr(let.Value, fc)
		s.Env.Types[let.Span] = valueType
	}
	for _, assertExpr := range e.Asserts {
		boolType := mirtype.Static(s.GetLangItemSpan("Bool"))
		assertType := s.SolveExpr(assertExpr, fc)
		s.SolveSupertype(boolType, assertType, false, ident.NoneSpan, assertExpr.ErrorSpanWide(), noContext(), false)
	}
	if e.Value != nil {
		return s.SolveExpr(e.Value, fc)
	}
	return mirtype.Unit()
}

func (s *Solver) solveFieldAccess(e *mir.Expr, fc FuncCtx) mirtype.Type {
	receiver := s.SolveExpr(e.Receiver, fc)
	if receiver.IsVariable() {
		return mirtype.Blocked(e.Receiver.ErrorSpanWide())
	}
	if receiver.IsStatic() {
		if shape, ok := s.StructShapes[receiver.DefSpan]; ok {
			for _, f := range shape.Fields {
				if f.Name == e.Field {
					return f.TypeAnnotation
				}
			}
		}
	}
	return mirtype.Blocked(e.Receiver.ErrorSpanWide())
}

func (s *Solver) solveFieldUpdate(e *mir.Expr, fc FuncCtx) mirtype.Type {
	receiver := s.SolveExpr(e.Receiver, fc)
	newValueType := s.SolveExpr(e.NewValue, fc)

	if receiver.IsStatic() {
		if shape, ok := s.StructShapes[receiver.DefSpan]; ok {
			for _, f := range shape.Fields {
				if f.Name == e.Field {
					s.SolveSupertype(f.TypeAnnotation, newValueType, false, ident.NoneSpan, e.NewValue.ErrorSpanWide(), noContext(), false)
					break
				}
			}
		}
	}
	return receiver
}

func (s *Solver) solveCall(e *mir.Expr, fc FuncCtx) mirtype.Type {
	callable := e.Callable
	switch {
	case callable.IsStaticFunc():
		return s.solveStaticCall(e, callable.DefSpan, fc)
	case callable.IsStructCtor():
		return s.solveStructCtorCall(e, callable.DefSpan, fc)
	case callable.IsTupleCtor():
		args := make([]mirtype.Type, len(e.Args))
		for i, a := range e.Args {
			args[i] = s.SolveExpr(a, fc)
		}
		return mirtype.TupleOf(args...)
	case callable.IsListCtor():
		return s.solveListCtorCall(e, fc)
	case callable.IsDynamic():
		return s.solveDynamicCall(e, fc)
	default:
		panic("solver: unknown callable kind")
	}
}

func (s *Solver) solveStaticCall(e *mir.Expr, calleeSpan ident.Span, fc FuncCtx) mirtype.Type {
	shape, ok := s.FuncShapes[calleeSpan]
	if !ok {
		return mirtype.Blocked(e.Span())
	}

	callSite := e.Span()
	if shape.Purity == mirtype.Impure || shape.Purity == mirtype.Both {
		s.ImpureCalls[fc.FuncSpan] = append(s.ImpureCalls[fc.FuncSpan], callSite)
	}

	for i, arg := range e.Args {
		if i >= len(shape.Params) {
			break
		}
		param := shape.Params[i]
		var paramType mirtype.Type
		if param.TypeAnnotation != nil {
			paramType = param.TypeAnnotation.SubstituteGenericDef(callSite, shape.GenericParams)
		} else {
			paramType = mirtype.Var(param.NameSpan, false)
		}
		argType := s.SolveExpr(arg, fc)
		s.SolveSupertype(paramType, argType, false, param.NameSpan, arg.ErrorSpanWide(), noContext(), false)
	}

	return mirtype.GenericArg(callSite, shape.NameSpan)
}

func (s *Solver) solveStructCtorCall(e *mir.Expr, structSpan ident.Span, fc FuncCtx) mirtype.Type {
	shape, ok := s.StructShapes[structSpan]
	if !ok {
		return mirtype.Blocked(e.Span())
	}
	for i, arg := range e.Args {
		if i >= len(shape.Fields) {
			break
		}
		field := shape.Fields[i]
		argType := s.SolveExpr(arg, fc)
		s.SolveSupertype(field.TypeAnnotation, argType, false, field.NameSpan, arg.ErrorSpanWide(), noContext(), false)
	}
	return mirtype.Static(structSpan)
}

func (s *Solver) solveListCtorCall(e *mir.Expr, fc FuncCtx) mirtype.Type {
	args := e.Args
	listSpan := s.GetLangItemSpan("List")
	if len(args) == 0 {
		elem := mirtype.GenericArg(e.Span(), listSpan)
		return mirtype.Param(mirtype.Static(listSpan), elem)
	}
	joined := s.SolveExpr(args[0], fc)
	for _, a := range args[1:] {
		t := s.SolveExpr(a, fc)
		joined, _ = s.SolveSupertype(joined, t, false, ident.NoneSpan, a.ErrorSpanWide(), noContext(), true)
	}
	return mirtype.Param(mirtype.Static(listSpan), joined)
}

func (s *Solver) solveDynamicCall(e *mir.Expr, fc FuncCtx) mirtype.Type {
	callable := e.Callable
	calleeType := s.SolveExpr(callable.Dyn, fc)

	if calleeType.IsVariable() {
		origin := callable.Dyn.ErrorSpanWide()
		s.Env.BlockedTypeVars[origin] = true
		return mirtype.Blocked(origin)
	}
	if !calleeType.IsFunc() {
		s.reportUnexpectedType(mirtype.Func(nil, mirtype.Unit(), mirtype.Both), calleeType, ident.NoneSpan, e.Span(), noContext())
		return mirtype.Blocked(e.Span())
	}
	for i, arg := range e.Args {
		if i >= len(calleeType.Args) {
			break
		}
		argType := s.SolveExpr(arg, fc)
		s.SolveSupertype(calleeType.Args[i], argType, false, ident.NoneSpan, arg.ErrorSpanWide(), noContext(), false)
	}
	return *calleeType.Return
}
