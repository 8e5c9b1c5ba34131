package mir

import (
	"testing"

	"github.com/sodigy-lang/sodigy/internal/ident"
)

func fileSpan(n int) ident.Span { return ident.NewFileSpan(0, n, n+1) }

func TestExprKindPredicates(t *testing.T) {
	lit := NewLit(fileSpan(1), LitInt, int64(3), 1)
	if !lit.IsLit() || lit.IsIf() {
		t.Errorf("NewLit should report IsLit() true and IsIf() false")
	}
	ifExpr := NewIf(fileSpan(2), lit, lit, lit)
	if !ifExpr.IsIf() {
		t.Error("NewIf should report IsIf() true")
	}
}

func TestErrorSpanWideWidensOverChildren(t *testing.T) {
	narrow := ident.NewFileSpan(0, 5, 6)
	wide := ident.NewFileSpan(0, 0, 20)
	cond := NewIdent(narrow, fileSpan(1))
	then := NewIdent(wide, fileSpan(2))
	els := NewIdent(narrow, fileSpan(3))
	ifExpr := NewIf(narrow, cond, then, els)

	got := ifExpr.ErrorSpanWide()
	if got != wide {
		t.Errorf("ErrorSpanWide() = %v, want the widest child span %v", got, wide)
	}
}

func TestErrorSpanWideFallsBackToOwnSpanForLeaf(t *testing.T) {
	lit := NewLit(fileSpan(4), LitInt, int64(1), 1)
	if got := lit.ErrorSpanWide(); got != fileSpan(4) {
		t.Errorf("a leaf expr's ErrorSpanWide() should be its own span, got %v", got)
	}
}

func TestCallableKindPredicates(t *testing.T) {
	c := StaticFuncCallable(fileSpan(1))
	if !c.IsStaticFunc() || c.IsDynamic() {
		t.Error("StaticFuncCallable should report IsStaticFunc() true")
	}
	dyn := DynamicCallable(NewLit(fileSpan(2), LitInt, int64(1), 1))
	if !dyn.IsDynamic() {
		t.Error("DynamicCallable should report IsDynamic() true")
	}
}

func TestBlockErrorSpanWideCoversLetsAndValue(t *testing.T) {
	wide := ident.NewFileSpan(0, 100, 200)
	letVal := NewIdent(wide, fileSpan(1))
	block := NewBlock(fileSpan(5), []LetBinding{{Name: ident.Intern("x"), Span: fileSpan(5), Value: letVal}}, nil, NewIdent(fileSpan(6), fileSpan(7)))
	if got := block.ErrorSpanWide(); got != wide {
		t.Errorf("ErrorSpanWide() = %v, want %v", got, wide)
	}
}
