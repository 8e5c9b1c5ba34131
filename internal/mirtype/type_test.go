package mirtype

import (
	"testing"

	"github.com/sodigy-lang/sodigy/internal/ident"
)

func span(n int) ident.Span { return ident.NewFileSpan(0, n, n+1) }

func TestEqualsAcrossKinds(t *testing.T) {
	if !Unit().Equals(Unit()) {
		t.Error("Unit() should equal itself")
	}
	if Unit().Equals(Never()) {
		t.Error("Unit and Never must not be equal")
	}
	if !Static(span(1)).Equals(Static(span(1))) {
		t.Error("Static types with equal DefSpans should be equal")
	}
	if Static(span(1)).Equals(Static(span(2))) {
		t.Error("Static types with different DefSpans should differ")
	}
}

func TestTupleEquals(t *testing.T) {
	a := TupleOf(Static(span(1)), Unit())
	b := TupleOf(Static(span(1)), Unit())
	c := TupleOf(Static(span(1)), Never())
	if !a.Equals(b) {
		t.Error("structurally equal tuples should be equal")
	}
	if a.Equals(c) {
		t.Error("tuples with different members should differ")
	}
}

func TestGetTypeVarsCollectsVarAndGenericArg(t *testing.T) {
	v := Var(span(1), false)
	ga := GenericArg(span(2), span(3))
	fn := Func([]Type{v}, ga, Pure)
	vars := fn.GetTypeVars()
	if len(vars) != 2 {
		t.Fatalf("GetTypeVars() = %v, want 2 entries", vars)
	}
	if !vars[0].Equals(v) || !vars[1].Equals(ga) {
		t.Errorf("GetTypeVars() = %v, want [%v %v]", vars, v, ga)
	}
}

func TestGetTypeVarsEmptyForConcreteType(t *testing.T) {
	concrete := Func([]Type{Static(span(1))}, Static(span(2)), Pure)
	if vars := concrete.GetTypeVars(); len(vars) != 0 {
		t.Errorf("a fully concrete type should have no type vars, got %v", vars)
	}
}

func TestSubstituteReplacesMatchingVar(t *testing.T) {
	v := Var(span(1), false)
	tup := TupleOf(v, Unit())
	replaced := tup.Substitute(v, Static(span(9)))
	if !replaced.Equals(TupleOf(Static(span(9)), Unit())) {
		t.Errorf("Substitute() = %v", replaced)
	}
}

func TestSubstitutePanicsOnNonVariable(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Substitute with a non-variable kind should panic")
		}
	}()
	Unit().Substitute(Unit(), Static(span(1)))
}

func TestSubstituteGenericDefRewritesMatchingParam(t *testing.T) {
	def := span(5)
	callSite := span(6)
	gp := GenericParam(def)
	fn := Func([]Type{gp}, gp, Pure)

	got := fn.SubstituteGenericDef(callSite, []ident.Span{def})
	want := Func([]Type{GenericArg(callSite, def)}, GenericArg(callSite, def), Pure)
	if !got.Equals(want) {
		t.Errorf("SubstituteGenericDef() = %v, want %v", got, want)
	}
}

func TestSubstituteGenericDefLeavesUnlistedParamsAlone(t *testing.T) {
	def := span(5)
	other := span(7)
	gp := GenericParam(def)
	got := gp.SubstituteGenericDef(span(6), []ident.Span{other})
	if !got.Equals(gp) {
		t.Errorf("SubstituteGenericDef() = %v, want unchanged %v", got, gp)
	}
}

func TestVarKeyRoundTrip(t *testing.T) {
	v := Var(span(1), true)
	key, ok := v.Key()
	if !ok {
		t.Fatal("Var should produce a VarKey")
	}
	if !key.Type().Equals(v) {
		t.Errorf("VarKey.Type() = %v, want %v", key.Type(), v)
	}

	ga := GenericArg(span(2), span(3))
	gaKey, ok := ga.Key()
	if !ok || !gaKey.IsGenericArg() {
		t.Fatal("GenericArg should produce a VarKey with IsGenericArg() true")
	}
	if !gaKey.Type().Equals(ga) {
		t.Errorf("VarKey.Type() = %v, want %v", gaKey.Type(), ga)
	}
}

func TestKeyFailsForNonVariable(t *testing.T) {
	if _, ok := Unit().Key(); ok {
		t.Error("Key() should fail for a non-variable type")
	}
}

func TestVarKeyUsableAsMapKey(t *testing.T) {
	m := map[VarKey]Type{}
	v := Var(span(4), false)
	key, _ := v.Key()
	m[key] = Static(span(9))
	if got, ok := m[key]; !ok || !got.Equals(Static(span(9))) {
		t.Error("VarKey should behave as a stable map key")
	}
}

func TestComposePurity(t *testing.T) {
	cases := []struct {
		p1, p2 Purity
		want   Purity
		ok     bool
	}{
		{Pure, Pure, Pure, true},
		{Impure, Impure, Impure, true},
		{Pure, Impure, Both, false},
		{Both, Pure, Both, true},
		{Pure, Both, Both, true},
	}
	for _, c := range cases {
		got, ok := ComposePurity(c.p1, c.p2)
		if got != c.want || ok != c.ok {
			t.Errorf("ComposePurity(%v, %v) = (%v, %v), want (%v, %v)", c.p1, c.p2, got, ok, c.want, c.ok)
		}
	}
}

func TestAtLeastAsStrong(t *testing.T) {
	if !AtLeastAsStrong(Pure, Both) {
		t.Error("Both should be at least as strong as Pure")
	}
	if AtLeastAsStrong(Both, Pure) {
		t.Error("Pure should not be at least as strong as Both")
	}
	if !AtLeastAsStrong(Impure, Impure) {
		t.Error("Impure should be at least as strong as itself")
	}
}

func TestStringRendersNestedStructure(t *testing.T) {
	fn := Func([]Type{Static(span(1))}, Unit(), Impure)
	got := fn.String()
	want := "(" + span(1).String() + ") -[impure]-> ()"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
