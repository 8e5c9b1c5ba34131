package resolver

import (
	"testing"

	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/ident"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	span := ident.NewFileSpan(0, 0, 3)
	r.Register("type.Bool", span)

	got, ok := r.Lookup("type.Bool")
	if !ok || got != span {
		t.Fatalf("expected %v, got %v ok=%v", span, got, ok)
	}

	if _, ok := r.Lookup("type.Missing"); ok {
		t.Error("expected Lookup to fail for an unregistered name")
	}
}

func TestRegistryMustLookupPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustLookup to panic for a missing lang item")
		}
	}()
	NewRegistry().MustLookup("type.Never")
}

func TestAliasResolveDirect(t *testing.T) {
	table := NewAliasTable()
	bag := &diag.Bag{}
	resolved := table.Resolve("a.b.c", bag, ident.NoneSpan)
	if len(resolved) != 1 || resolved[0] != "a.b.c" {
		t.Fatalf("expected a non-alias path to resolve to itself, got %v", resolved)
	}
	if bag.HasErrors() {
		t.Errorf("expected no errors, got %v", bag.Errors())
	}
}

func TestAliasResolveChain(t *testing.T) {
	table := NewAliasTable()
	span := ident.NewFileSpan(0, 10, 20)
	table.Declare("x", Alias{Span: span, Target: []string{"y"}})
	table.Declare("y", Alias{Span: span, Target: []string{"z"}})

	bag := &diag.Bag{}
	resolved := table.Resolve("x", bag, ident.NoneSpan)
	if len(resolved) != 1 || resolved[0] != "z" {
		t.Fatalf("expected chain x->y->z to resolve to z, got %v", resolved)
	}
	if bag.HasErrors() {
		t.Errorf("expected no errors, got %v", bag.Errors())
	}
}

func TestAliasResolveCycle(t *testing.T) {
	table := NewAliasTable()
	span := ident.NewFileSpan(0, 0, 1)
	table.Declare("a", Alias{Span: span, Target: []string{"b"}})
	table.Declare("b", Alias{Span: span, Target: []string{"a"}})

	bag := &diag.Bag{}
	table.Resolve("a", bag, ident.NoneSpan)

	errs := bag.Errors()
	if len(errs) != 1 || errs[0].Code != diag.CodeCyclicAlias {
		t.Fatalf("expected one cyclic-alias error, got %v", errs)
	}
}

func TestInstantiatorStableAcrossRepeatedCalls(t *testing.T) {
	inst := NewInstantiator()
	genericDef := ident.NewFileSpan(0, 0, 5)
	callSite := ident.NewFileSpan(1, 0, 5)

	first := inst.Instantiate(genericDef, callSite)
	second := inst.Instantiate(genericDef, callSite)
	if first != second {
		t.Errorf("expected repeated Instantiate calls for the same (def, call-site) pair to be stable, got %v and %v", first, second)
	}
	if !inst.Seen(genericDef, callSite) {
		t.Error("expected Seen to report true after Instantiate")
	}
}

func TestInstantiatorDistinctCallSites(t *testing.T) {
	inst := NewInstantiator()
	genericDef := ident.NewFileSpan(0, 0, 5)
	siteA := ident.NewFileSpan(1, 0, 5)
	siteB := ident.NewFileSpan(2, 0, 5)

	a := inst.Instantiate(genericDef, siteA)
	b := inst.Instantiate(genericDef, siteB)
	if a == b {
		t.Error("expected distinct call sites to produce distinct monomorphizations")
	}
}
