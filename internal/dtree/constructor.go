// Package dtree implements the pattern lowering & match compiler of spec
// §4.3: it turns a sequence of mir.Pattern match arms into a decision tree
// over mir.Expr field-path tests, reporting unreachable arms and
// non-exhaustive matches. Adapted from the teacher's
// internal/dtree/decision_tree.go (DecisionTree/LeafNode/SwitchNode/
// DecisionTreeCompiler/compileMatrix/buildSwitch/specializeRows), whose
// column-splitting matrix compiler is the same shape this package needs —
// generalized here from core.CorePattern to mir.Pattern, and extended with
// the closed Constructor enumeration, field paths, and range overlap
// analysis spec §4.3.3 requires that the teacher's version didn't have.
package dtree

import (
	"fmt"

	"github.com/sodigy-lang/sodigy/internal/ident"
)

// SelectorKind discriminates one step of a FieldPath.
type SelectorKind uint8

const (
	SelCtor SelectorKind = iota
	SelIndex
	SelName
	SelVariant
	SelPayload
)

// Selector is one step of a field path: "the n-th tuple element", "struct
// field named f", etc.
type Selector struct {
	Kind  SelectorKind
	Index int
	Name  ident.InternedString
}

func IndexSelector(i int) Selector                      { return Selector{Kind: SelIndex, Index: i} }
func NameSelector(n ident.InternedString) Selector       { return Selector{Kind: SelName, Name: n} }
func CtorSelector() Selector                             { return Selector{Kind: SelCtor} }
func VariantSelector() Selector                          { return Selector{Kind: SelVariant} }
func PayloadSelector() Selector                          { return Selector{Kind: SelPayload} }

func (s Selector) String() string {
	switch s.Kind {
	case SelCtor:
		return "ctor"
	case SelIndex:
		return fmt.Sprintf("._%d", s.Index)
	case SelName:
		return "." + s.Name.String()
	case SelVariant:
		return ".variant"
	case SelPayload:
		return ".payload"
	default:
		return "?"
	}
}

// FieldPath is an ordered sequence of selectors locating a sub-value of the
// scrutinee (spec §4.3.2: "[root]", "._0", "._1", ...).
type FieldPath []Selector

func (p FieldPath) Child(s Selector) FieldPath {
	out := make(FieldPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, s)
}

func (p FieldPath) String() string {
	if len(p) == 0 {
		return "[root]"
	}
	s := "[root"
	for _, sel := range p {
		s += sel.String()
	}
	return s + "]"
}

func (p FieldPath) Key() string { return p.String() }

// LitRangeKind tags which literal domain a Range constructor ranges over.
type LitRangeKind uint8

const (
	RangeInt LitRangeKind = iota
	RangeNumber
	RangeChar
	RangeByte
	RangeString
)

// LiteralRange is a literal-domain range constructor: an optional inclusive
// lower bound, an optional upper bound (inclusive flag carried separately),
// per spec §4.3.3.
type LiteralRange struct {
	Kind            LitRangeKind
	HasLower        bool
	Lower           int64
	HasUpper        bool
	Upper           int64
	UpperInclusive  bool
}

// FullRange is the unconstrained range for a literal domain ("Int" ->
// (-∞..+∞), spec §4.3.2's table).
func FullRange(kind LitRangeKind) LiteralRange { return LiteralRange{Kind: kind} }

// Overlaps reports whether the two ranges share any value.
func (r LiteralRange) Overlaps(o LiteralRange) bool {
	if r.Kind != o.Kind {
		return false
	}
	rLo, rHasLo := r.Lower, r.HasLower
	oLo, oHasLo := o.Lower, o.HasLower
	rHi, rHasHi, rHiIncl := r.Upper, r.HasUpper, r.UpperInclusive
	oHi, oHasHi, oHiIncl := o.Upper, o.HasUpper, o.UpperInclusive

	// r's lower bound must not exceed o's upper bound, and vice versa.
	if rHasLo && oHasHi {
		if oHiIncl && rLo > oHi {
			return false
		}
		if !oHiIncl && rLo >= oHi {
			return false
		}
	}
	if oHasLo && rHasHi {
		if rHiIncl && oLo > rHi {
			return false
		}
		if !rHiIncl && oLo >= rHi {
			return false
		}
	}
	return true
}

// Merge unions two overlapping (or adjacent) ranges of the same kind.
func (r LiteralRange) Merge(o LiteralRange) LiteralRange {
	out := LiteralRange{Kind: r.Kind}
	switch {
	case !r.HasLower || !o.HasLower:
		out.HasLower = false
	default:
		out.HasLower = true
		if r.Lower < o.Lower {
			out.Lower = r.Lower
		} else {
			out.Lower = o.Lower
		}
	}
	switch {
	case !r.HasUpper || !o.HasUpper:
		out.HasUpper = false
	default:
		out.HasUpper = true
		if r.Upper > o.Upper {
			out.Upper = r.Upper
			out.UpperInclusive = r.UpperInclusive
		} else if o.Upper > r.Upper {
			out.Upper = o.Upper
			out.UpperInclusive = o.UpperInclusive
		} else {
			out.Upper = r.Upper
			out.UpperInclusive = r.UpperInclusive || o.UpperInclusive
		}
	}
	return out
}

// IsFull reports whether r covers the entire domain (the scrutinee's own
// "[root]" entry for a bare literal type, per the matrix example table).
func (r LiteralRange) IsFull() bool { return !r.HasLower && !r.HasUpper }

func (r LiteralRange) String() string {
	lo := "-inf"
	if r.HasLower {
		lo = fmt.Sprintf("%d", r.Lower)
	}
	hi := "+inf"
	if r.HasUpper {
		hi = fmt.Sprintf("%d", r.Upper)
	}
	return fmt.Sprintf("kind%d(%s..%s)", r.Kind, lo, hi)
}

// ctorKind discriminates the closed Constructor enumeration (spec §4.3.3).
type ctorKind uint8

const (
	ctorTuple ctorKind = iota
	ctorDefSpan
	ctorRange
	ctorOr
	ctorWildcard
)

// Constructor is the closed enumeration a field path's value can take:
// Tuple(n), DefSpan(nominal), Range(literal range), Or(disjunction, used
// internally when flattening or-patterns), Wildcard.
type Constructor struct {
	k       ctorKind
	Arity   int           // Tuple
	DefSpan ident.Span    // DefSpan
	Range   LiteralRange  // Range
	Members []Constructor // Or
}

func TupleCtor(arity int) Constructor          { return Constructor{k: ctorTuple, Arity: arity} }
func DefSpanCtor(span ident.Span) Constructor  { return Constructor{k: ctorDefSpan, DefSpan: span} }
func RangeCtor(r LiteralRange) Constructor     { return Constructor{k: ctorRange, Range: r} }
func OrCtor(members []Constructor) Constructor { return Constructor{k: ctorOr, Members: members} }
func WildcardCtor() Constructor                { return Constructor{k: ctorWildcard} }

func (c Constructor) IsTuple() bool    { return c.k == ctorTuple }
func (c Constructor) IsDefSpan() bool  { return c.k == ctorDefSpan }
func (c Constructor) IsRange() bool    { return c.k == ctorRange }
func (c Constructor) IsOr() bool       { return c.k == ctorOr }
func (c Constructor) IsWildcard() bool { return c.k == ctorWildcard }

// Key returns a value usable as a Go map key grouping rows by constructor.
// Tuple/DefSpan/Wildcard are already comparable; Range is flattened to its
// own comparable struct; Or never appears as a map key (it is flattened by
// the matrix builder before grouping).
func (c Constructor) Key() any {
	switch c.k {
	case ctorTuple:
		return fmt.Sprintf("tuple(%d)", c.Arity)
	case ctorDefSpan:
		return fmt.Sprintf("defspan(%s)", c.DefSpan)
	case ctorRange:
		return fmt.Sprintf("range(%s)", c.Range)
	case ctorWildcard:
		return "wildcard"
	default:
		return fmt.Sprintf("or(%d)", len(c.Members))
	}
}

func (c Constructor) String() string {
	switch c.k {
	case ctorTuple:
		return fmt.Sprintf("Tuple(%d)", c.Arity)
	case ctorDefSpan:
		return fmt.Sprintf("DefSpan(%s)", c.DefSpan)
	case ctorRange:
		return fmt.Sprintf("Range(%s)", c.Range)
	case ctorOr:
		return fmt.Sprintf("Or(%d)", len(c.Members))
	case ctorWildcard:
		return "Wildcard"
	default:
		return "<invalid-ctor>"
	}
}
