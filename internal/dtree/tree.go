package dtree

import (
	"fmt"
	"hash/fnv"

	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mir"
)

// DecisionTree is the compiled output of a match expression: a tree of
// field-path tests that dispatches to the matching arm's body. Mirrors the
// teacher's DecisionTree/LeafNode/FailNode/SwitchNode shape (same three node
// kinds, same isDecisionTree marker method), generalized from core.CoreExpr
// scrutinees to mir.Expr ones.
type DecisionTree interface {
	isDecisionTree()
	String() string
}

// LeafNode dispatches to one arm: its guard (if any) and body.
type LeafNode struct {
	ArmIndex int
	Guard    *mir.Expr
	Body     *mir.Expr
}

func (LeafNode) isDecisionTree() {}
func (l LeafNode) String() string { return "leaf" }

// FailNode means no arm matches; reached only when a match is non-exhaustive
// and the compiler has already reported that (spec §4.3.5) — it exists so
// the tree stays total even while carrying the diagnostic.
type FailNode struct{}

func (FailNode) isDecisionTree() {}
func (FailNode) String() string { return "fail" }

// SwitchCase pairs one concrete Constructor with the subtree to take when
// the value at Path matches it.
type SwitchCase struct {
	Ctor Constructor
	Next DecisionTree
}

// SwitchNode tests the constructor of the value found at Path and branches;
// Default is taken when none of Cases match (nil when the constructor set is
// statically exhaustive, e.g. a struct/tuple shape — spec §4.3.4/§4.3.5).
type SwitchNode struct {
	Path    FieldPath
	Cases   []SwitchCase
	Default DecisionTree
}

func (SwitchNode) isDecisionTree() {}
func (s SwitchNode) String() string { return "switch@" + s.Path.String() }

// row is one matrix row: the remaining column patterns (aligned with the
// compiler's current path list), plus the originating arm's index/guard/
// body. Ported from the teacher's matchRow, generalized to carry a pattern
// per active field path instead of a flat per-arm pattern list.
type row struct {
	cols     []mir.Pattern
	armIndex int
	guard    *mir.Expr
	body     *mir.Expr
}

// Compiler builds a DecisionTree from a match's arms, reporting
// exhaustiveness/reachability diagnostics into bag. Grounded on the
// teacher's DecisionTreeCompiler (arms []core.MatchArm; Compile() /
// compileMatrix / buildSwitch / specializeRows), restructured around
// mir.Pattern's field-path shape instead of core.CorePattern's.
type Compiler struct {
	arms      []mir.MatchArm
	bag       *diag.Bag
	reachable map[int]bool
	syntheticIdx int
}

func NewCompiler(arms []mir.MatchArm, bag *diag.Bag) *Compiler {
	return &Compiler{arms: arms, bag: bag, reachable: map[int]bool{}}
}

// Compile lowers the arms (plus a synthetic trailing wildcard arm, spec
// §4.3.4) into a DecisionTree, and reports non-exhaustiveness /
// unreachable-arm diagnostics (spec §4.3.5) against scrutineeSpan /
// matchSpan.
func (c *Compiler) Compile(scrutineeSpan, matchSpan ident.Span) DecisionTree {
	c.syntheticIdx = len(c.arms)

	rows := make([]row, 0, len(c.arms)+1)
	for i, arm := range c.arms {
		rows = append(rows, row{cols: []mir.Pattern{arm.Pattern}, armIndex: i, guard: arm.Guard, body: arm.Body})
	}
	synthetic := mir.WildcardPattern(matchSpan)
	rows = append(rows, row{cols: []mir.Pattern{synthetic}, armIndex: c.syntheticIdx, guard: nil, body: nil})

	tree := c.compileMatrix(rows, []FieldPath{{}})

	if c.reachable[c.syntheticIdx] {
		c.bag.Add(diag.New(diag.CodeNonExhaustiveMatch, diag.SeverityError,
			"match is not exhaustive: some values are not covered by any arm", scrutineeSpan))
	}
	for i := range c.arms {
		if !c.reachable[i] {
			c.bag.Add(diag.New(diag.CodeUnreachableArm, diag.SeverityWarning,
				"unreachable match arm", c.arms[i].Pattern.Span()))
		}
	}
	return tree
}

// CanCompile reports whether arms are structurally simple enough for the
// decision-tree compiler (mirrors the teacher's CanCompileToTree escape
// hatch: guarded or-patterns combined with nested ranges can, in principle,
// still be compiled here since rows are always flattened before grouping,
// but dollar-ident patterns reference run-time-captured values the
// compiler cannot branch on statically, so a match containing one falls
// back to sequential if/else testing instead).
func CanCompile(arms []mir.MatchArm) bool {
	for _, a := range arms {
		if containsDollarIdent(a.Pattern) {
			return false
		}
	}
	return true
}

func containsDollarIdent(p mir.Pattern) bool {
	if p.IsDollarIdent() {
		return true
	}
	if p.IsOr() {
		for _, alt := range p.Alternatives {
			if containsDollarIdent(alt) {
				return true
			}
		}
	}
	for _, el := range p.Elements {
		if containsDollarIdent(el) {
			return true
		}
	}
	return false
}

func isWildcardLike(p mir.Pattern) bool {
	return p.IsIdent() || p.IsWildcard() || p.IsDollarIdent()
}

func isDefaultRow(r row) bool {
	for _, c := range r.cols {
		if !isWildcardLike(c) {
			return false
		}
	}
	return true
}

// compileMatrix is the teacher's compileMatrix, generalized to a multi-path
// row: paths[i] is the field path r.cols[i] of every row tests.
func (c *Compiler) compileMatrix(rows []row, paths []FieldPath) DecisionTree {
	if len(rows) == 0 {
		return FailNode{}
	}
	if len(paths) == 0 {
		r := rows[0]
		c.reachable[r.armIndex] = true
		return LeafNode{ArmIndex: r.armIndex, Guard: r.guard, Body: r.body}
	}
	if isDefaultRow(rows[0]) {
		r := rows[0]
		c.reachable[r.armIndex] = true
		return LeafNode{ArmIndex: r.armIndex, Guard: r.guard, Body: r.body}
	}
	return c.buildSwitch(rows, paths)
}

// buildSwitch groups rows by the Constructor of their leading column,
// merging overlapping Range constructors (spec §4.3.3), then recursively
// compiles each case's specialized sub-matrix plus, when the constructor
// set isn't statically exhaustive, a Default branch from the wildcard rows.
// Ported from the teacher's buildSwitch/specializeRows pair.
func (c *Compiler) buildSwitch(rows []row, paths []FieldPath) DecisionTree {
	rows = c.flattenOr(rows)
	path := paths[0]
	rest := paths[1:]

	type group struct {
		ctor     Constructor
		repr     mir.Pattern
		concrete []row
	}
	var groups []group
	index := map[any]int{}

	isRangeSwitch := false
	for _, r := range rows {
		p := r.cols[0]
		if isWildcardLike(p) {
			continue
		}
		ctor, repr := constructorOf(p)
		if ctor.IsRange() {
			isRangeSwitch = true
			merged := false
			for gi := range groups {
				if groups[gi].ctor.IsRange() && groups[gi].ctor.Range.Overlaps(ctor.Range) {
					groups[gi].ctor.Range = groups[gi].ctor.Range.Merge(ctor.Range)
					groups[gi].concrete = append(groups[gi].concrete, r)
					merged = true
					break
				}
			}
			if !merged {
				groups = append(groups, group{ctor: ctor, repr: repr, concrete: []row{r}})
			}
			continue
		}
		key := ctor.Key()
		if gi, ok := index[key]; ok {
			groups[gi].concrete = append(groups[gi].concrete, r)
		} else {
			index[key] = len(groups)
			groups = append(groups, group{ctor: ctor, repr: repr, concrete: []row{r}})
		}
	}

	var defaultRows []row
	for _, r := range rows {
		if isWildcardLike(r.cols[0]) {
			defaultRows = append(defaultRows, row{cols: r.cols[1:], armIndex: r.armIndex, guard: r.guard, body: r.body})
		}
	}

	cases := make([]SwitchCase, 0, len(groups))
	for _, g := range groups {
		childPaths := childrenOf(g.repr, g.concrete, path)
		specialized := make([]row, 0, len(g.concrete))
		for _, r := range rows {
			p := r.cols[0]
			switch {
			case isWildcardLike(p):
				wc := make([]mir.Pattern, len(childPaths))
				for i := range wc {
					wc[i] = mir.WildcardPattern(p.Span())
				}
				specialized = append(specialized, row{cols: append(wc, r.cols[1:]...), armIndex: r.armIndex, guard: r.guard, body: r.body})
			default:
				ctor, _ := constructorOf(p)
				if !ctorMatches(ctor, g.ctor) {
					continue
				}
				kids := childPatternsOf(p, childPaths)
				specialized = append(specialized, row{cols: append(kids, r.cols[1:]...), armIndex: r.armIndex, guard: r.guard, body: r.body})
			}
		}
		next := c.compileMatrix(specialized, append(childPaths, rest...))
		cases = append(cases, SwitchCase{Ctor: g.ctor, Next: next})
	}

	var def DecisionTree
	if isRangeSwitch || len(groups) == 0 {
		def = c.compileMatrix(defaultRows, rest)
	}
	return SwitchNode{Path: path, Cases: cases, Default: def}
}

func ctorMatches(c, group Constructor) bool {
	if c.IsRange() && group.IsRange() {
		return group.Range.Overlaps(c.Range) || group.Range == c.Range
	}
	return c.Key() == group.Key()
}

// flattenOr expands any row whose leading column is an or-pattern into one
// row per alternative (recursively, for nested or-patterns), preserving the
// row's arm/guard/body.
func (c *Compiler) flattenOr(rows []row) []row {
	var out []row
	for _, r := range rows {
		out = append(out, flattenOrRow(r)...)
	}
	return out
}

func flattenOrRow(r row) []row {
	p := r.cols[0]
	if !p.IsOr() {
		return []row{r}
	}
	var out []row
	for _, alt := range p.Alternatives {
		nr := row{cols: append([]mir.Pattern{alt}, r.cols[1:]...), armIndex: r.armIndex, guard: r.guard, body: r.body}
		out = append(out, flattenOrRow(nr)...)
	}
	return out
}

// constructorOf extracts the closed Constructor a concrete (non-wildcard)
// pattern tests, along with the pattern itself as the "representative" used
// to derive child field paths.
func constructorOf(p mir.Pattern) (Constructor, mir.Pattern) {
	switch {
	case p.IsLit():
		return RangeCtor(pointRange(p.LitKind, p.LitValue, p.Sign)), p
	case p.IsRange():
		return RangeCtor(rangeOf(p)), p
	case p.IsInfixOp():
		if folded, ok := p.FoldInfixOp(); ok {
			return constructorOf(folded)
		}
		return WildcardCtor(), p
	case p.IsPath():
		return DefSpanCtor(p.DefSpan), p
	case p.IsStruct(), p.IsTupleStruct():
		return DefSpanCtor(p.DefSpan), p
	case p.IsTuple():
		return TupleCtor(len(p.Elements)), p
	case p.IsList():
		return TupleCtor(len(p.Elements)), p
	default:
		return WildcardCtor(), p
	}
}

func litRangeKind(k mir.LitKind) LitRangeKind {
	switch k {
	case mir.LitInt:
		return RangeInt
	case mir.LitNumber:
		return RangeNumber
	case mir.LitChar:
		return RangeChar
	case mir.LitByte:
		return RangeByte
	default:
		return RangeString
	}
}

func litPointValue(kind mir.LitKind, value interface{}, sign int) int64 {
	if kind == mir.LitInt {
		if v, ok := value.(int64); ok {
			if sign < 0 {
				return -v
			}
			return v
		}
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(fnvRepr(value)))
	return int64(h.Sum64())
}

func fnvRepr(v interface{}) string {
	type stringer interface{ String() string }
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

func pointRange(kind mir.LitKind, value interface{}, sign int) LiteralRange {
	v := litPointValue(kind, value, sign)
	return LiteralRange{Kind: litRangeKind(kind), HasLower: true, Lower: v, HasUpper: true, Upper: v, UpperInclusive: true}
}

func rangeOf(p mir.Pattern) LiteralRange {
	kind := mir.LitInt
	r := LiteralRange{Kind: RangeInt}
	if p.Lower != nil {
		kind = p.Lower.LitKind
		r.Kind = litRangeKind(kind)
		r.HasLower = true
		r.Lower = litPointValue(p.Lower.LitKind, p.Lower.LitValue, p.Lower.Sign)
	}
	if p.Upper != nil {
		if p.Lower == nil {
			r.Kind = litRangeKind(p.Upper.LitKind)
		}
		r.HasUpper = true
		r.Upper = litPointValue(p.Upper.LitKind, p.Upper.LitValue, p.Upper.Sign)
		r.UpperInclusive = p.Inclusive
	}
	return r
}

// childrenOf derives the ordered field-path children a Constructor's case
// introduces, from a representative concrete pattern plus the full set of
// concrete rows that share it (struct patterns may specify different field
// subsets via `..rest`, so the child set is the union across all of them).
func childrenOf(repr mir.Pattern, concrete []row, base FieldPath) []FieldPath {
	switch {
	case repr.IsStruct():
		seen := map[string]bool{}
		var names []ident.InternedString
		for _, r := range concrete {
			for _, f := range r.cols[0].Fields {
				k := f.Name.String()
				if !seen[k] {
					seen[k] = true
					names = append(names, f.Name)
				}
			}
		}
		paths := make([]FieldPath, len(names))
		for i, n := range names {
			paths[i] = base.Child(NameSelector(n))
		}
		return paths
	case repr.IsTupleStruct(), repr.IsTuple(), repr.IsList():
		n := len(repr.Elements)
		paths := make([]FieldPath, n)
		for i := 0; i < n; i++ {
			paths[i] = base.Child(IndexSelector(i))
		}
		return paths
	default:
		return nil
	}
}

// childPatternsOf extracts the sub-patterns a concrete pattern contributes
// for its case, aligned with paths (childrenOf's path order), padding with
// wildcards for fields/elements a particular row's pattern omits (e.g. a
// struct pattern using `..` to skip fields it doesn't care about).
func childPatternsOf(p mir.Pattern, paths []FieldPath) []mir.Pattern {
	out := make([]mir.Pattern, len(paths))
	for i := range out {
		out[i] = mir.WildcardPattern(p.Span())
	}
	switch {
	case p.IsStruct():
		byName := make(map[string]mir.Pattern, len(p.Fields))
		for _, f := range p.Fields {
			byName[f.Name.String()] = f.Pattern
		}
		for i, fp := range paths {
			name := fp[len(fp)-1].Name.String()
			if fpat, ok := byName[name]; ok {
				out[i] = fpat
			}
		}
	case p.IsTupleStruct(), p.IsTuple(), p.IsList():
		for i, el := range p.Elements {
			if i < len(out) {
				out[i] = el
			}
		}
	}
	return out
}
