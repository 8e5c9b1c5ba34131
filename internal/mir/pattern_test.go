package mir

import (
	"testing"

	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mirtype"
)

func TestFoldInfixOpConstantFolds(t *testing.T) {
	left := LitPattern(fileSpan(1), LitInt, int64(2), 1)
	right := LitPattern(fileSpan(2), LitInt, int64(3), 1)
	p := InfixOpPattern(fileSpan(3), "+", &left, &right)

	folded, ok := p.FoldInfixOp()
	if !ok {
		t.Fatal("a literal + literal infix pattern should fold")
	}
	if !folded.IsLit() || folded.LitValue.(int64) != 5 {
		t.Errorf("FoldInfixOp() = %+v, want a literal 5", folded)
	}
}

func TestFoldInfixOpFailsOnNonLiteralOperand(t *testing.T) {
	left := IdentPattern(fileSpan(1), ident.Intern("x"))
	right := LitPattern(fileSpan(2), LitInt, int64(3), 1)
	p := InfixOpPattern(fileSpan(3), "+", &left, &right)

	if _, ok := p.FoldInfixOp(); ok {
		t.Fatal("an infix pattern with a non-literal operand must not fold")
	}
}

func TestFoldInfixOpFailsOnUnknownOperator(t *testing.T) {
	left := LitPattern(fileSpan(1), LitInt, int64(2), 1)
	right := LitPattern(fileSpan(2), LitInt, int64(3), 1)
	p := InfixOpPattern(fileSpan(3), "/", &left, &right)

	if _, ok := p.FoldInfixOp(); ok {
		t.Fatal("division is not a folded operator")
	}
}

func TestWithOuterBindAttachesBinding(t *testing.T) {
	p := WildcardPattern(fileSpan(1)).WithOuterBind(ident.Intern("whole"))
	if !p.HasOuterBind || p.OuterBindName.String() != "whole" {
		t.Errorf("WithOuterBind did not attach: %+v", p)
	}
}

func TestWithTypeAnnotationPanicsOnNonIdent(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("WithTypeAnnotation on a non-identifier pattern should panic")
		}
	}()
	WildcardPattern(fileSpan(1)).WithTypeAnnotation(mirtype.Static(fileSpan(2)))
}
