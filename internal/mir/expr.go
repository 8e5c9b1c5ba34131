// Package mir defines the typed intermediate representation: expressions,
// patterns, callables, shapes, and the environment maps the solver closes
// under constraints. Grounded on the teacher's internal/core.Core* model and
// on the original Sodigy source's crates/mir/src/expr.rs.
package mir

import (
	"fmt"

	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mirtype"
)

// LitKind distinguishes numeric/string/char/byte literals.
type LitKind int

const (
	LitInt LitKind = iota
	LitNumber
	LitString
	LitChar
	LitByte
)

type exprKind uint8

const (
	eIdent exprKind = iota
	eLit
	eIf
	eMatch
	eBlock
	eFieldAccess
	eFieldUpdate
	eCall
)

// Expr is the MIR expression sum type: identifier reference, literal, If,
// Match, Block, field access, field update, and Call.
type Expr struct {
	k    exprKind
	span ident.Span // canonical "widest" error span

	// Ident
	DefSpan ident.Span

	// Lit
	LitKind  LitKind
	LitValue interface{}
	Sign     int // -1, 0, +1; only meaningful for numeric literals

	// If
	Cond, Then, Else *Expr

	// Match
	Scrutinee *Expr
	Arms      []MatchArm

	// Block
	Lets    []LetBinding
	Asserts []*Expr
	Value   *Expr

	// FieldAccess / FieldUpdate
	Receiver *Expr
	Field    ident.InternedString
	NewValue *Expr

	// Call
	Callable      Callable
	Args          []*Expr
	GenericDefs   []ident.Span
	KeywordIndex  map[ident.InternedString]int
}

// LetBinding is one binding inside a Block.
type LetBinding struct {
	Name  ident.InternedString
	Span  ident.Span
	Value *Expr
}

// MatchArm is one arm of a Match: a pattern, optional guard, and body.
type MatchArm struct {
	Pattern Pattern
	Guard   *Expr
	Body    *Expr
}

func NewIdent(span, defSpan ident.Span) *Expr {
	return &Expr{k: eIdent, span: span, DefSpan: defSpan}
}

func NewLit(span ident.Span, kind LitKind, value interface{}, sign int) *Expr {
	return &Expr{k: eLit, span: span, LitKind: kind, LitValue: value, Sign: sign}
}

func NewIf(span ident.Span, cond, then, els *Expr) *Expr {
	return &Expr{k: eIf, span: span, Cond: cond, Then: then, Else: els}
}

func NewMatch(span ident.Span, scrutinee *Expr, arms []MatchArm) *Expr {
	return &Expr{k: eMatch, span: span, Scrutinee: scrutinee, Arms: arms}
}

func NewBlock(span ident.Span, lets []LetBinding, asserts []*Expr, value *Expr) *Expr {
	return &Expr{k: eBlock, span: span, Lets: lets, Asserts: asserts, Value: value}
}

func NewFieldAccess(span ident.Span, receiver *Expr, field ident.InternedString) *Expr {
	return &Expr{k: eFieldAccess, span: span, Receiver: receiver, Field: field}
}

func NewFieldUpdate(span ident.Span, receiver *Expr, field ident.InternedString, newValue *Expr) *Expr {
	return &Expr{k: eFieldUpdate, span: span, Receiver: receiver, Field: field, NewValue: newValue}
}

func NewCall(span ident.Span, callable Callable, args []*Expr, genericDefs []ident.Span, keywordIndex map[ident.InternedString]int) *Expr {
	return &Expr{k: eCall, span: span, Callable: callable, Args: args, GenericDefs: genericDefs, KeywordIndex: keywordIndex}
}

func (e *Expr) IsIdent() bool       { return e.k == eIdent }
func (e *Expr) IsLit() bool         { return e.k == eLit }
func (e *Expr) IsIf() bool          { return e.k == eIf }
func (e *Expr) IsMatch() bool       { return e.k == eMatch }
func (e *Expr) IsBlock() bool       { return e.k == eBlock }
func (e *Expr) IsFieldAccess() bool { return e.k == eFieldAccess }
func (e *Expr) IsFieldUpdate() bool { return e.k == eFieldUpdate }
func (e *Expr) IsCall() bool        { return e.k == eCall }

// Span returns the expression's canonical span (not necessarily the widest
// one — see ErrorSpanWide for that).
func (e *Expr) Span() ident.Span { return e.span }

// ErrorSpanWide computes a diagnostic span covering the whole expression:
// for composite expressions this derives a span from the outermost
// sub-spans rather than just the head token, so diagnostics underline the
// full construct.
func (e *Expr) ErrorSpanWide() ident.Span {
	switch e.k {
	case eIf:
		return widen(e.span, e.Cond.ErrorSpanWide(), e.Then.ErrorSpanWide(), e.Else.ErrorSpanWide())
	case eMatch:
		wide := widen(e.span, e.Scrutinee.ErrorSpanWide())
		for _, arm := range e.Arms {
			wide = widen(wide, arm.Body.ErrorSpanWide())
		}
		return wide
	case eBlock:
		wide := e.span
		for _, l := range e.Lets {
			wide = widen(wide, l.Value.ErrorSpanWide())
		}
		if e.Value != nil {
			wide = widen(wide, e.Value.ErrorSpanWide())
		}
		return wide
	case eFieldAccess:
		return widen(e.span, e.Receiver.ErrorSpanWide())
	case eFieldUpdate:
		return widen(e.span, e.Receiver.ErrorSpanWide(), e.NewValue.ErrorSpanWide())
	case eCall:
		wide := e.span
		for _, a := range e.Args {
			wide = widen(wide, a.ErrorSpanWide())
		}
		return wide
	default:
		return e.span
	}
}

// widen picks the span with the widest [Start,End) extent among File spans
// sharing a file; non-File spans or a mismatched file fall back to the
// first non-None span encountered, mirroring the "widest diagnostic
// location" rule from spec §3.
func widen(spans ...ident.Span) ident.Span {
	best := ident.NoneSpan
	bestWidth := -1
	for _, s := range spans {
		if s.IsNone() {
			continue
		}
		w := s.End - s.Start
		if best.IsNone() || w > bestWidth {
			best = s
			bestWidth = w
		}
	}
	return best
}

func (e *Expr) String() string {
	switch e.k {
	case eIdent:
		return fmt.Sprintf("ident(%s)", e.DefSpan)
	case eLit:
		return fmt.Sprintf("lit(%v)", e.LitValue)
	case eIf:
		return fmt.Sprintf("if %s then %s else %s", e.Cond, e.Then, e.Else)
	case eMatch:
		return fmt.Sprintf("match %s { %d arms }", e.Scrutinee, len(e.Arms))
	case eBlock:
		return fmt.Sprintf("block(%d lets)", len(e.Lets))
	case eFieldAccess:
		return fmt.Sprintf("%s.%s", e.Receiver, e.Field)
	case eFieldUpdate:
		return fmt.Sprintf("%s{%s: %s}", e.Receiver, e.Field, e.NewValue)
	case eCall:
		return fmt.Sprintf("%s(%d args)", e.Callable, len(e.Args))
	default:
		return "<invalid-expr>"
	}
}

// callableKind discriminates the Callable sum type.
type callableKind uint8

const (
	cStaticFunc callableKind = iota
	cStructCtor
	cTupleCtor
	cListCtor
	cDynamic
)

// Callable is carried by a Call expression: a static function reference,
// struct/tuple/list constructor, or a dynamic (runtime-resolved) expression.
type Callable struct {
	k       callableKind
	DefSpan ident.Span // StaticFunc / StructCtor
	Dyn     *Expr      // Dynamic
}

func StaticFuncCallable(defSpan ident.Span) Callable { return Callable{k: cStaticFunc, DefSpan: defSpan} }
func StructCtorCallable(defSpan ident.Span) Callable { return Callable{k: cStructCtor, DefSpan: defSpan} }
func TupleCtorCallable() Callable                    { return Callable{k: cTupleCtor} }
func ListCtorCallable() Callable                     { return Callable{k: cListCtor} }
func DynamicCallable(e *Expr) Callable                { return Callable{k: cDynamic, Dyn: e} }

func (c Callable) IsStaticFunc() bool { return c.k == cStaticFunc }
func (c Callable) IsStructCtor() bool { return c.k == cStructCtor }
func (c Callable) IsTupleCtor() bool  { return c.k == cTupleCtor }
func (c Callable) IsListCtor() bool   { return c.k == cListCtor }
func (c Callable) IsDynamic() bool    { return c.k == cDynamic }

func (c Callable) String() string {
	switch c.k {
	case cStaticFunc:
		return fmt.Sprintf("static(%s)", c.DefSpan)
	case cStructCtor:
		return fmt.Sprintf("struct-ctor(%s)", c.DefSpan)
	case cTupleCtor:
		return "tuple-ctor"
	case cListCtor:
		return "list-ctor"
	case cDynamic:
		return fmt.Sprintf("dynamic(%s)", c.Dyn)
	default:
		return "<invalid-callable>"
	}
}

// FuncParam is one parameter of a function shape.
type FuncParam struct {
	Name           ident.InternedString
	NameSpan       ident.Span
	DefaultValue   *Expr
	TypeAnnotation *mirtype.Type
}

// FuncShape is the declared skeleton of a function, from HIR, consumed by
// the solver without requiring the body.
type FuncShape struct {
	NameSpan      ident.Span
	Params        []FuncParam
	GenericParams []ident.Span
	Purity        mirtype.Purity
}

// StructField is one field of a struct shape.
type StructField struct {
	Name           ident.InternedString
	NameSpan       ident.Span
	TypeAnnotation mirtype.Type
	DefaultValue   *Expr
}

// AssocFunc describes a struct's associated function (arity/purity only —
// enough for the solver to type-check calls without the body).
type AssocFunc struct {
	Arity   int
	IsPure  bool
	DefSpan ident.Span
}

// StructShape is the declared skeleton of a struct.
type StructShape struct {
	Fields         []StructField
	AssocLets      map[ident.InternedString]ident.Span
	AssocFunctions map[ident.InternedString]AssocFunc
}
