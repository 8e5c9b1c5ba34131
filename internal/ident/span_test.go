package ident

import "testing"

func TestFileSpanEquality(t *testing.T) {
	a := NewFileSpan(3, 10, 20)
	b := NewFileSpan(3, 10, 20)
	c := NewFileSpan(3, 10, 21)
	if !a.Equals(b) {
		t.Errorf("identical file spans should be equal: %v vs %v", a, b)
	}
	if a.Equals(c) {
		t.Errorf("file spans with different ends should differ: %v vs %v", a, c)
	}
}

func TestPolySpanRoundTrip(t *testing.T) {
	s := NewPolySpan(Intern("T"), PolyKindGenericDef)
	if s.IsNone() {
		t.Fatal("a poly span must not be none")
	}
	if s.String() != "poly(T,generic-def)" {
		t.Errorf("String() = %q", s.String())
	}
}

func TestDeriveSpanParentRoundTrip(t *testing.T) {
	parent := NewFileSpan(1, 0, 5)
	d := NewDeriveSpan(parent, DeriveKindReturn)
	if got := d.Parent(); got != parent {
		t.Errorf("Parent() = %v, want %v", got, parent)
	}
	if d.IsNone() {
		t.Fatal("a derive span must not be none")
	}
}

func TestDeriveSpansWithEqualParentsCompareEqual(t *testing.T) {
	p1 := NewFileSpan(2, 0, 1)
	p2 := NewFileSpan(2, 0, 1)
	a := NewDeriveSpan(p1, DeriveKindPatternBind)
	b := NewDeriveSpan(p2, DeriveKindPatternBind)
	if a != b {
		t.Errorf("derive spans with structurally equal parents should compare ==, got %v != %v", a, b)
	}
}

func TestNoneSpan(t *testing.T) {
	if !NoneSpan.IsNone() {
		t.Fatal("NoneSpan.IsNone() should be true")
	}
	if NoneSpan.String() != "<none>" {
		t.Errorf("NoneSpan.String() = %q", NoneSpan.String())
	}
}

func TestSpanUsableAsMapKey(t *testing.T) {
	m := map[Span]int{}
	a := NewFileSpan(0, 1, 2)
	b := NewFileSpan(0, 1, 2)
	m[a] = 1
	if _, ok := m[b]; !ok {
		t.Fatal("a structurally equal Span should find the same map entry")
	}
}
