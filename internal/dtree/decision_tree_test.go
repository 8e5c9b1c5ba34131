package dtree

import (
	"testing"

	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mir"
)

func span(n int) ident.Span { return ident.NewFileSpan(0, n, n+1) }

func intLit(span ident.Span, v int64) *mir.Expr { return mir.NewLit(span, mir.LitInt, v, signOfTest(v)) }

func signOfTest(v int64) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// TestDecisionTree_TwoLiteralArms mirrors the teacher's
// TestDecisionTree_SimpleBoolMatch (match on two disjoint literal arms),
// generalized from core.LitPattern/bool to mir.Pattern/int since this
// compiler's literal domain has no boolean lang item of its own.
func TestDecisionTree_TwoLiteralArms(t *testing.T) {
	s0, s1 := span(0), span(1)
	arms := []mir.MatchArm{
		{Pattern: mir.LitPattern(s0, mir.LitInt, int64(1), 1), Body: intLit(s0, 10)},
		{Pattern: mir.LitPattern(s1, mir.LitInt, int64(2), 1), Body: intLit(s1, 20)},
	}
	bag := &diag.Bag{}
	tree := NewCompiler(arms, bag).Compile(span(2), span(3))

	sw, ok := tree.(SwitchNode)
	if !ok {
		t.Fatalf("expected SwitchNode, got %T", tree)
	}
	if len(sw.Cases) != 2 {
		t.Errorf("expected 2 cases, got %d", len(sw.Cases))
	}
	if sw.Default == nil {
		t.Error("expected a default branch: literal ranges are never exhaustive on their own")
	}
	if !bag.HasErrors() {
		t.Error("expected a non-exhaustive-match error: no wildcard arm covers values outside {1,2}")
	}
}

// TestDecisionTree_WithWildcard mirrors the teacher's
// TestDecisionTree_WithWildcard: a literal arm followed by a catch-all
// should compile exhaustively with no diagnostics.
func TestDecisionTree_WithWildcard(t *testing.T) {
	s0, s1 := span(0), span(1)
	arms := []mir.MatchArm{
		{Pattern: mir.LitPattern(s0, mir.LitInt, int64(1), 1), Body: intLit(s0, 10)},
		{Pattern: mir.WildcardPattern(s1), Body: intLit(s1, 0)},
	}
	bag := &diag.Bag{}
	tree := NewCompiler(arms, bag).Compile(span(2), span(3))

	sw, ok := tree.(SwitchNode)
	if !ok {
		t.Fatalf("expected SwitchNode, got %T", tree)
	}
	if sw.Default == nil {
		t.Error("expected default branch for wildcard arm")
	}
	if bag.HasErrors() {
		t.Errorf("expected no errors, got %v", bag.Errors())
	}
}

// TestDecisionTree_AllWildcards mirrors the teacher's
// TestDecisionTree_AllWildcards: a single wildcard arm compiles straight to
// a leaf without ever building a switch.
func TestDecisionTree_AllWildcards(t *testing.T) {
	s0 := span(0)
	arms := []mir.MatchArm{
		{Pattern: mir.WildcardPattern(s0), Body: intLit(s0, 42)},
	}
	bag := &diag.Bag{}
	tree := NewCompiler(arms, bag).Compile(span(1), span(2))

	leaf, ok := tree.(LeafNode)
	if !ok {
		t.Fatalf("expected LeafNode for wildcard-only match, got %T", tree)
	}
	if leaf.ArmIndex != 0 {
		t.Errorf("expected arm index 0, got %d", leaf.ArmIndex)
	}
}

// TestDecisionTree_UnreachableArmAfterWildcard checks reachability analysis:
// an arm placed after an unguarded wildcard can never be taken.
func TestDecisionTree_UnreachableArmAfterWildcard(t *testing.T) {
	s0, s1 := span(0), span(1)
	arms := []mir.MatchArm{
		{Pattern: mir.WildcardPattern(s0), Body: intLit(s0, 0)},
		{Pattern: mir.LitPattern(s1, mir.LitInt, int64(1), 1), Body: intLit(s1, 10)},
	}
	bag := &diag.Bag{}
	NewCompiler(arms, bag).Compile(span(2), span(3))

	warnings := bag.Warnings()
	if len(warnings) != 1 || warnings[0].Code != diag.CodeUnreachableArm {
		t.Fatalf("expected one unreachable-arm warning, got %v", bag.Reports)
	}
}

// TestDecisionTree_StructExhaustive checks that a struct pattern alone
// (a single-constructor product type) compiles without a Default branch and
// without a non-exhaustive diagnostic — struct/tuple shapes, unlike literal
// ranges, have exactly one possible constructor per scrutinee type.
func TestDecisionTree_StructExhaustive(t *testing.T) {
	defSpan := span(100)
	fieldPat := mir.IdentPattern(span(1), ident.Intern("x"))
	s0 := span(0)
	arms := []mir.MatchArm{
		{
			Pattern: mir.StructPattern(s0, defSpan, []mir.StructFieldPattern{{Name: ident.Intern("x"), Pattern: fieldPat}}, false),
			Body:    intLit(s0, 1),
		},
	}
	bag := &diag.Bag{}
	tree := NewCompiler(arms, bag).Compile(span(2), span(3))

	sw, ok := tree.(SwitchNode)
	if !ok {
		t.Fatalf("expected SwitchNode, got %T", tree)
	}
	if sw.Default != nil {
		t.Error("expected no default branch: a struct pattern is exhaustive by construction")
	}
	if bag.HasErrors() {
		t.Errorf("expected no non-exhaustive error, got %v", bag.Errors())
	}
}

// TestCanCompile mirrors the teacher's TestCanCompileToTree, adapted to the
// one real escape hatch this compiler has: a dollar-ident pattern captures a
// previously-bound run-time value and can't be branched on statically.
func TestCanCompile(t *testing.T) {
	tests := []struct {
		name     string
		arms     []mir.MatchArm
		expected bool
	}{
		{
			name:     "plain literals compile",
			arms:     []mir.MatchArm{{Pattern: mir.LitPattern(span(0), mir.LitInt, int64(1), 1)}},
			expected: true,
		},
		{
			name:     "dollar-ident forces fallback",
			arms:     []mir.MatchArm{{Pattern: mir.DollarIdentPattern(span(0), ident.Intern("captured"))}},
			expected: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanCompile(tt.arms); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
