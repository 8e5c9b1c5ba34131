package solver

import (
	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mir"
	"github.com/sodigy-lang/sodigy/internal/mirtype"
)

// SolvePatternType implements spec §4.3.1: a companion traversal that
// assigns a type to a pattern by the same structural rules as expressions.
// Wildcard and identifier patterns introduce fresh Vars; the def-span is
// recorded in PatternNameBindings so the completeness check (§4.2.3) does
// not demand these get resolved before the match compiler runs.
func (s *Solver) SolvePatternType(p mir.Pattern) mirtype.Type {
	switch {
	case p.IsIdent():
		v := mirtype.Var(p.Span(), false)
		s.Env.PatternNameBindings[p.Span()] = true
		if p.TypeAnnotation != nil {
			s.SolveSupertype(*p.TypeAnnotation, v, false, p.Span(), ident.NoneSpan, noContext(), false)
			return *p.TypeAnnotation
		}
		return v

	case p.IsWildcard():
		s.Env.PatternNameBindings[p.Span()] = true
		return mirtype.Var(p.Span(), false)

	case p.IsLit():
		switch p.LitKind {
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
			panic("solver: unknown literal kind in pattern")
		}

	case p.IsPath():
		return mirtype.Static(p.DefSpan)

	case p.IsStruct(), p.IsTupleStruct():
		for _, f := range p.Fields {
			s.SolvePatternType(f.Pattern)
		}
		for _, el := range p.Elements {
			s.SolvePatternType(el)
		}
		return mirtype.Static(p.DefSpan)

	case p.IsTuple():
		elems := make([]mirtype.Type, len(p.Elements))
		for i, el := range p.Elements {
			elems[i] = s.SolvePatternType(el)
		}
		return mirtype.TupleOf(elems...)

	case p.IsList():
		listSpan := s.GetLangItemSpan("List")
		if len(p.Elements) == 0 {
			return mirtype.Param(mirtype.Static(listSpan), mirtype.GenericArg(p.Span(), listSpan))
		}
		elem := s.SolvePatternType(p.Elements[0])
		for _, el := range p.Elements[1:] {
			other := s.SolvePatternType(el)
			elem, _ = s.SolveSupertype(elem, other, false, ident.NoneSpan, el.Span(), noContext(), true)
		}
		return mirtype.Param(mirtype.Static(listSpan), elem)

	case p.IsRange():
		if p.Lower != nil {
			return s.SolvePatternType(*p.Lower)
		}
		if p.Upper != nil {
			return s.SolvePatternType(*p.Upper)
		}
		return mirtype.Static(s.GetLangItemSpan("Int"))

	case p.IsInfixOp():
		if folded, ok := p.FoldInfixOp(); ok {
			return s.SolvePatternType(folded)
		}
		return s.SolvePatternType(*p.Left)

	case p.IsOr():
		if len(p.Alternatives) == 0 {
			return mirtype.Var(p.Span(), false)
		}
		joined := s.SolvePatternType(p.Alternatives[0])
		for _, alt := range p.Alternatives[1:] {
			t := s.SolvePatternType(alt)
			joined, _ = s.SolveSupertype(joined, t, false, ident.NoneSpan, alt.Span(), noContext(), true)
		}
		return joined

	case p.IsDollarIdent():
		return mirtype.Var(p.Span(), false)

	default:
		panic("solver: unknown pattern kind")
	}
}
