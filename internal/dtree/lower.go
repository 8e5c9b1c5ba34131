package dtree

import (
	"fmt"
	"strings"

	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/mir"
)

// CompileMatch is the entry point spec §4.3.6 describes as "lowering
// output": given a Match expression, it runs the full pipeline (matrix
// construction, decision-tree build, exhaustiveness/reachability) and
// returns the compiled DecisionTree — the artifact later compiler stages
// (codegen, interpretation) dispatch on instead of re-walking the arm list
// linearly. Falls back to nil when CanCompile rejects the arm set (a
// dollar-ident pattern present), signalling callers to fall back to
// sequential if/else testing of the original arms instead.
func CompileMatch(e *mir.Expr, bag *diag.Bag) DecisionTree {
	if !e.IsMatch() {
		panic("dtree: CompileMatch called on a non-Match expression")
	}
	if !CanCompile(e.Arms) {
		return nil
	}
	c := NewCompiler(e.Arms, bag)
	return c.Compile(e.Scrutinee.ErrorSpanWide(), e.ErrorSpanWide())
}

// Walk visits every LeafNode reachable in tree, in left-to-right order.
func Walk(tree DecisionTree, visit func(LeafNode)) {
	switch n := tree.(type) {
	case LeafNode:
		visit(n)
	case FailNode:
	case SwitchNode:
		for _, c := range n.Cases {
			Walk(c.Next, visit)
		}
		if n.Default != nil {
			Walk(n.Default, visit)
		}
	}
}

// Render dumps tree as an indented debug string, grounded on the teacher's
// own habit of giving compiler IR types a tree-shaped String()/Dump method
// for test fixtures and REPL introspection (internal/core's pretty-printers).
func Render(tree DecisionTree) string {
	var b strings.Builder
	render(&b, tree, 0)
	return b.String()
}

func render(b *strings.Builder, tree DecisionTree, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := tree.(type) {
	case LeafNode:
		fmt.Fprintf(b, "%sleaf arm=%d\n", indent, n.ArmIndex)
	case FailNode:
		fmt.Fprintf(b, "%sfail\n", indent)
	case SwitchNode:
		fmt.Fprintf(b, "%sswitch %s\n", indent, n.Path)
		for _, c := range n.Cases {
			fmt.Fprintf(b, "%s  case %s:\n", indent, c.Ctor)
			render(b, c.Next, depth+2)
		}
		if n.Default != nil {
			fmt.Fprintf(b, "%s  default:\n", indent)
			render(b, n.Default, depth+2)
		}
	}
}
