package mir

import (
	"testing"

	"github.com/sodigy-lang/sodigy/internal/ident"
	"github.com/sodigy-lang/sodigy/internal/mirtype"
)

func TestBindVarAndLookupVar(t *testing.T) {
	env := NewEnvironment()
	v := mirtype.Var(fileSpan(1), false)
	env.BindVar(v, mirtype.Static(fileSpan(2)))

	got, ok := env.LookupVar(v)
	if !ok || !got.Equals(mirtype.Static(fileSpan(2))) {
		t.Errorf("LookupVar() = (%v, %v), want (Static(span(2)), true)", got, ok)
	}
}

func TestBindReturnVarRewritesFuncReturn(t *testing.T) {
	env := NewEnvironment()
	fnSpan := fileSpan(1)
	fn := mirtype.Func([]mirtype.Type{mirtype.Static(fileSpan(2))}, mirtype.Var(fnSpan, true), mirtype.Pure)
	env.Types[fnSpan] = fn

	retVar := mirtype.Var(fnSpan, true)
	env.BindVar(retVar, mirtype.Static(fileSpan(3)))

	got := env.Types[fnSpan]
	want := mirtype.Func([]mirtype.Type{mirtype.Static(fileSpan(2))}, mirtype.Static(fileSpan(3)), mirtype.Pure)
	if !got.Equals(want) {
		t.Errorf("binding a return var should rewrite the func's Return, got %v, want %v", got, want)
	}
}

func TestGenericArgBinding(t *testing.T) {
	env := NewEnvironment()
	callSite := fileSpan(10)
	genericDef := fileSpan(11)
	ga := mirtype.GenericArg(callSite, genericDef)

	if _, ok := env.LookupVar(ga); ok {
		t.Fatal("an unbound GenericArg should not be found")
	}
	env.BindVar(ga, mirtype.Static(fileSpan(20)))
	got, ok := env.LookupVar(ga)
	if !ok || !got.Equals(mirtype.Static(fileSpan(20))) {
		t.Errorf("LookupVar(ga) = (%v, %v)", got, ok)
	}
}

func TestAddTypeVarIsIdempotent(t *testing.T) {
	env := NewEnvironment()
	v := mirtype.Var(fileSpan(1), false)
	env.AddTypeVar(v, ident.Intern("x"))
	env.AddTypeVar(v, ident.Intern("shadowed"))

	name, ok := env.TypeVarName(v)
	if !ok || name.String() != "x" {
		t.Errorf("AddTypeVar should keep the first registered name, got %q", name.String())
	}
}

func TestAddTypeVarRefSkipsSelfReference(t *testing.T) {
	env := NewEnvironment()
	v := mirtype.Var(fileSpan(1), false)
	env.AddTypeVarRef(v, v)
	if refs := env.RefsOf(v); len(refs) != 0 {
		t.Errorf("a variable should not be registered as its own dependency, got %v", refs)
	}
}

func TestAddTypeVarRefDedups(t *testing.T) {
	env := NewEnvironment()
	a := mirtype.Var(fileSpan(1), false)
	b := mirtype.Var(fileSpan(2), false)
	env.AddTypeVarRef(a, b)
	env.AddTypeVarRef(a, b)
	if refs := env.RefsOf(a); len(refs) != 1 {
		t.Errorf("AddTypeVarRef should dedup identical referents, got %v", refs)
	}
}

func TestMaybeNeverRoundTrip(t *testing.T) {
	env := NewEnvironment()
	v := mirtype.Var(fileSpan(1), false)
	if _, ok := env.LookupMaybeNever(v); ok {
		t.Fatal("a fresh variable should have no maybe-never commitment")
	}
	env.SetMaybeNever(v, mirtype.Static(fileSpan(2)))
	got, ok := env.LookupMaybeNever(v)
	if !ok || !got.Equals(mirtype.Static(fileSpan(2))) {
		t.Errorf("LookupMaybeNever() = (%v, %v)", got, ok)
	}
}
