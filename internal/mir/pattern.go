package mir

import (
	"fmt"

	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mirtype"
)

type patternKind uint8

const (
	pIdent patternKind = iota
	pWildcard
	pLit
	pPath
	pStruct
	pTupleStruct
	pTuple
	pList
	pRange
	pInfixOp
	pOr
	pDollarIdent
)

// StructFieldPattern is one named field inside a struct pattern.
type StructFieldPattern struct {
	Name    ident.InternedString
	Pattern Pattern
}

// Pattern is the pattern sum type from spec §3: identifier binding,
// wildcard, literal, path (nullary variant), struct, tuple-struct, tuple,
// list, range, infix-op (constant-folded where possible), or-pattern, and
// dollar-ident (matches a captured variable's current value). A pattern may
// additionally carry an outer `name @ ...` binding and — identifier
// patterns only — a type annotation.
type Pattern struct {
	k    patternKind
	span ident.Span

	// Ident / DollarIdent
	Name ident.InternedString

	// Lit
	LitKind  LitKind
	LitValue interface{}
	Sign     int

	// Path (nullary variant) / Struct / TupleStruct ctor
	DefSpan ident.Span

	// Struct
	Fields   []StructFieldPattern
	HasRest  bool

	// TupleStruct / Tuple / List
	Elements []Pattern
	Rest     *int // index of rest element, if any (List/TupleStruct)

	// Range
	Lower, Upper       *Pattern // literal endpoints, reused as Lit-kind patterns
	Inclusive          bool

	// InfixOp (pre-folding representation; folded form becomes pLit)
	Op          string
	Left, Right *Pattern

	// Or
	Alternatives []Pattern

	// Outer binding / annotation (identifier patterns only)
	OuterBindName ident.InternedString
	HasOuterBind  bool
	TypeAnnotation *mirtype.Type
}

func (p Pattern) Span() ident.Span { return p.span }

func IdentPattern(span ident.Span, name ident.InternedString) Pattern {
	return Pattern{k: pIdent, span: span, Name: name}
}

func WildcardPattern(span ident.Span) Pattern { return Pattern{k: pWildcard, span: span} }

func LitPattern(span ident.Span, kind LitKind, value interface{}, sign int) Pattern {
	return Pattern{k: pLit, span: span, LitKind: kind, LitValue: value, Sign: sign}
}

func PathPattern(span, defSpan ident.Span) Pattern {
	return Pattern{k: pPath, span: span, DefSpan: defSpan}
}

func StructPattern(span, defSpan ident.Span, fields []StructFieldPattern, hasRest bool) Pattern {
	return Pattern{k: pStruct, span: span, DefSpan: defSpan, Fields: fields, HasRest: hasRest}
}

func TupleStructPattern(span, defSpan ident.Span, elements []Pattern, rest *int) Pattern {
	return Pattern{k: pTupleStruct, span: span, DefSpan: defSpan, Elements: elements, Rest: rest}
}

func TuplePattern(span ident.Span, elements []Pattern) Pattern {
	return Pattern{k: pTuple, span: span, Elements: elements}
}

func ListPattern(span ident.Span, elements []Pattern, rest *int) Pattern {
	return Pattern{k: pList, span: span, Elements: elements, Rest: rest}
}

func RangePattern(span ident.Span, lower, upper *Pattern, inclusive bool) Pattern {
	return Pattern{k: pRange, span: span, Lower: lower, Upper: upper, Inclusive: inclusive}
}

func InfixOpPattern(span ident.Span, op string, left, right *Pattern) Pattern {
	return Pattern{k: pInfixOp, span: span, Op: op, Left: left, Right: right}
}

func OrPattern(span ident.Span, alts []Pattern) Pattern {
	return Pattern{k: pOr, span: span, Alternatives: alts}
}

func DollarIdentPattern(span ident.Span, name ident.InternedString) Pattern {
	return Pattern{k: pDollarIdent, span: span, Name: name}
}

func (p Pattern) IsIdent() bool       { return p.k == pIdent }
func (p Pattern) IsWildcard() bool    { return p.k == pWildcard }
func (p Pattern) IsLit() bool         { return p.k == pLit }
func (p Pattern) IsPath() bool        { return p.k == pPath }
func (p Pattern) IsStruct() bool      { return p.k == pStruct }
func (p Pattern) IsTupleStruct() bool { return p.k == pTupleStruct }
func (p Pattern) IsTuple() bool       { return p.k == pTuple }
func (p Pattern) IsList() bool        { return p.k == pList }
func (p Pattern) IsRange() bool       { return p.k == pRange }
func (p Pattern) IsInfixOp() bool     { return p.k == pInfixOp }
func (p Pattern) IsOr() bool          { return p.k == pOr }
func (p Pattern) IsDollarIdent() bool { return p.k == pDollarIdent }

// WithOuterBind attaches a `name @ ...` binding to p.
func (p Pattern) WithOuterBind(name ident.InternedString) Pattern {
	p.OuterBindName = name
	p.HasOuterBind = true
	return p
}

// WithTypeAnnotation attaches a type annotation; only meaningful on
// identifier patterns, per spec §3.
func (p Pattern) WithTypeAnnotation(t mirtype.Type) Pattern {
	if p.k != pIdent {
		panic("mir: type annotations are only valid on identifier patterns")
	}
	p.TypeAnnotation = &t
	return p
}

// FoldInfixOp attempts constant-folding of an infix-op pattern into a
// literal, as spec §3 requires ("infix-op pattern, constant-folded into a
// literal where possible"). Returns the folded pattern and true on success.
func (p Pattern) FoldInfixOp() (Pattern, bool) {
	if p.k != pInfixOp {
		return p, false
	}
	if p.Left == nil || p.Right == nil || p.Left.k != pLit || p.Right.k != pLit {
		return p, false
	}
	lv, lok := p.Left.LitValue.(int64)
	rv, rok := p.Right.LitValue.(int64)
	if !lok || !rok {
		return p, false
	}
	var folded int64
	switch p.Op {
	case "+":
		folded = lv + rv
	case "-":
		folded = lv - rv
	case "*":
		folded = lv * rv
	default:
		return p, false
	}
	return LitPattern(p.span, LitInt, folded, signOf(folded)), true
}

func signOf(v int64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

func (p Pattern) String() string {
	switch p.k {
	case pIdent:
		return p.Name.String()
	case pWildcard:
		return "_"
	case pLit:
		return fmt.Sprintf("%v", p.LitValue)
	case pPath:
		return fmt.Sprintf("path(%s)", p.DefSpan)
	case pStruct:
		return fmt.Sprintf("struct(%s){%d fields}", p.DefSpan, len(p.Fields))
	case pTupleStruct:
		return fmt.Sprintf("tuple-struct(%s)(%d)", p.DefSpan, len(p.Elements))
	case pTuple:
		return fmt.Sprintf("tuple(%d)", len(p.Elements))
	case pList:
		return fmt.Sprintf("list(%d)", len(p.Elements))
	case pRange:
		return "range"
	case pInfixOp:
		return fmt.Sprintf("(%s %s %s)", p.Left, p.Op, p.Right)
	case pOr:
		return fmt.Sprintf("or(%d)", len(p.Alternatives))
	case pDollarIdent:
		return "$" + p.Name.String()
	default:
		return "<invalid-pattern>"
	}
}
