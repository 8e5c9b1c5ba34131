package surface

import (
	"fmt"

	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mir"
	"github.com/sodigy-lang/sodigy/internal/mirtype"
)

// Func is one lowered function: its declared shape (what the solver needs
// to type-check calls to it) and its lowered body (what the match compiler
// and resolver walk).
type Func struct {
	Name    string
	DefSpan ident.Span
	Shape   mir.FuncShape
	Body    *mir.Expr
}

// Module is a lowered file — the scaffolding frontend's HIR, minimal per
// spec §11: no struct/import/module syntax, just a flat function namespace.
type Module struct {
	Path  string
	Funcs map[string]*Func
}

// scope resolves surface identifiers to the ident.Span their binding site
// lowered to — functions (module-wide), then nested let/match/param scopes.
type scope struct {
	vars   map[string]ident.Span
	parent *scope
}

func newScope(parent *scope) *scope { return &scope{vars: map[string]ident.Span{}, parent: parent} }

func (s *scope) lookup(name string) (ident.Span, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if span, ok := cur.vars[name]; ok {
			return span, true
		}
	}
	return ident.NoneSpan, false
}

func (s *scope) bind(name string, span ident.Span) { s.vars[name] = span }

// Lower lowers a parsed Program into a Module, reporting unresolved names
// into bag rather than aborting — the same accumulate-don't-halt discipline
// the solver and match compiler use.
func Lower(file ident.FileID, modulePath string, prog *Program, bag *diag.Bag) *Module {
	mod := &Module{Path: modulePath, Funcs: map[string]*Func{}}

	top := newScope(nil)
	for _, fn := range prog.Funcs {
		top.bind(fn.Name, ident.NewFileSpan(file, fn.NameSpan.Start, fn.NameSpan.End))
	}

	for _, fn := range prog.Funcs {
		mod.Funcs[fn.Name] = lowerFunc(file, fn, top, bag)
	}
	return mod
}

func lowerFunc(file ident.FileID, fn *FuncDecl, top *scope, bag *diag.Bag) *Func {
	defSpan, _ := top.lookup(fn.Name)

	local := newScope(top)
	params := make([]mir.FuncParam, len(fn.Params))
	for i, p := range fn.Params {
		pSpan := ident.NewFileSpan(file, p.S.Start, p.S.End)
		local.bind(p.Name, pSpan)
		params[i] = mir.FuncParam{Name: ident.Intern(p.Name), NameSpan: pSpan}
	}

	purity := mirtype.Impure
	if fn.Pure {
		purity = mirtype.Pure
	}

	return &Func{
		Name:    fn.Name,
		DefSpan: defSpan,
		Shape:   mir.FuncShape{NameSpan: defSpan, Params: params, Purity: purity},
		Body:    lowerExpr(file, fn.Body, local, bag),
	}
}

func lowerExpr(file ident.FileID, e Expr, sc *scope, bag *diag.Bag) *mir.Expr {
	sp := func(s Span) ident.Span { return ident.NewFileSpan(file, s.Start, s.End) }

	switch e := e.(type) {
	case *IntLitExpr:
		return mir.NewLit(sp(e.S), mir.LitInt, e.Value, e.Sign)
	case *BoolLitExpr:
		return mir.NewLit(sp(e.S), mir.LitInt, boolAsInt(e.Value), signOfInt(boolAsInt(e.Value)))
	case *IdentExpr:
		defSpan, ok := sc.lookup(e.Name)
		if !ok {
			bag.Add(diag.New(diag.CodeCannotInferType, diag.SeverityError,
				fmt.Sprintf("unresolved identifier %q", e.Name), sp(e.S)))
			defSpan = ident.NoneSpan
		}
		return mir.NewIdent(sp(e.S), defSpan)
	case *IfExpr:
		return mir.NewIf(sp(e.S),
			lowerExpr(file, e.Cond, sc, bag),
			lowerExpr(file, e.Then, sc, bag),
			lowerExpr(file, e.Else, sc, bag))
	case *LetExpr:
		bindingSpan := sp(e.S)
		value := lowerExpr(file, e.Value, sc, bag)
		inner := newScope(sc)
		nameSpan := ident.NewDeriveSpan(bindingSpan, ident.DeriveKindDesugar)
		inner.bind(e.Name, nameSpan)
		body := lowerExpr(file, e.Body, inner, bag)
		return mir.NewBlock(bindingSpan,
			[]mir.LetBinding{{Name: ident.Intern(e.Name), Span: nameSpan, Value: value}},
			nil, body)
	case *MatchExpr:
		scrutinee := lowerExpr(file, e.Scrutinee, sc, bag)
		arms := make([]mir.MatchArm, len(e.Arms))
		for i, arm := range e.Arms {
			armScope := newScope(sc)
			pat := lowerPattern(file, arm.Pattern, armScope, bag)
			arms[i] = mir.MatchArm{Pattern: pat, Body: lowerExpr(file, arm.Body, armScope, bag)}
		}
		return mir.NewMatch(sp(e.S), scrutinee, arms)
	case *CallExpr:
		defSpan, ok := sc.lookup(e.Callee)
		if !ok {
			bag.Add(diag.New(diag.CodeCannotInferType, diag.SeverityError,
				fmt.Sprintf("unresolved call to %q", e.Callee), sp(e.S)))
			defSpan = ident.NoneSpan
		}
		args := make([]*mir.Expr, len(e.Args))
		for i, a := range e.Args {
			args[i] = lowerExpr(file, a, sc, bag)
		}
		return mir.NewCall(sp(e.S), mir.StaticFuncCallable(defSpan), args, nil, nil)
	default:
		panic(fmt.Sprintf("surface: unhandled expr type %T", e))
	}
}

func lowerPattern(file ident.FileID, p Pattern, sc *scope, bag *diag.Bag) mir.Pattern {
	sp := func(s Span) ident.Span { return ident.NewFileSpan(file, s.Start, s.End) }

	switch p := p.(type) {
	case *WildcardPat:
		return mir.WildcardPattern(sp(p.S))
	case *IdentPat:
		s := sp(p.S)
		sc.bind(p.Name, s)
		return mir.IdentPattern(s, ident.Intern(p.Name))
	case *IntLitPat:
		return mir.LitPattern(sp(p.S), mir.LitInt, p.Value, p.Sign)
	case *BoolLitPat:
		return mir.LitPattern(sp(p.S), mir.LitInt, boolAsInt(p.Value), signOfInt(boolAsInt(p.Value)))
	default:
		panic(fmt.Sprintf("surface: unhandled pattern type %T", p))
	}
}

func boolAsInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func signOfInt(v int64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
