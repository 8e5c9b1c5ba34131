// Package mirtype defines the Type sum type that the solver closes under
// subtyping and unification, per the MIR data model.
package mirtype

import (
	"fmt"
	"strings"

	"github.com/sodigy-lang/sodigy/internal/ident"
)

// Purity classifies a function type's side-effect contract.
type Purity int

const (
	Pure Purity = iota
	Impure
	Both
)

func (p Purity) String() string {
	switch p {
	case Pure:
		return "pure"
	case Impure:
		return "impure"
	case Both:
		return "both"
	default:
		return "?"
	}
}

// kind discriminates the Type sum type's variants.
type kind uint8

const (
	kStatic kind = iota
	kUnit
	kNever
	kTuple
	kParam
	kFunc
	kGenericParam
	kGenericArg
	kVar
	kBlocked
)

// Type is the sum type described in spec §3: Static, Unit, Never, Tuple,
// Param, Func, GenericParam, GenericArg, Var, Blocked. It is represented as
// a single struct with a kind tag rather than an interface hierarchy, since
// every variant needs identical traversal/substitution treatment and none
// of them carry behavior beyond data.
type Type struct {
	k kind

	// Static
	DefSpan ident.Span

	// Tuple / Param.Args / Func.Params
	Args []Type

	// Param
	Constructor *Type

	// Func
	Return  *Type
	Purity  Purity

	// GenericParam / Var
	// DefSpan reused

	// Var
	IsReturn bool

	// GenericArg
	CallSite   ident.Span
	GenericDef ident.Span

	// Blocked
	Origin ident.Span
}

func Static(defSpan ident.Span) Type { return Type{k: kStatic, DefSpan: defSpan} }

var unitType = Type{k: kUnit}
var neverType = Type{k: kNever}

func Unit() Type  { return unitType }
func Never() Type { return neverType }

func TupleOf(args ...Type) Type { return Type{k: kTuple, Args: args} }

func Param(constructor Type, args ...Type) Type {
	c := constructor
	return Type{k: kParam, Constructor: &c, Args: args}
}

func Func(params []Type, ret Type, purity Purity) Type {
	r := ret
	return Type{k: kFunc, Args: params, Return: &r, Purity: purity}
}

func GenericParam(defSpan ident.Span) Type { return Type{k: kGenericParam, DefSpan: defSpan} }

func GenericArg(callSite, genericDef ident.Span) Type {
	return Type{k: kGenericArg, CallSite: callSite, GenericDef: genericDef}
}

func Var(defSpan ident.Span, isReturn bool) Type {
	return Type{k: kVar, DefSpan: defSpan, IsReturn: isReturn}
}

func Blocked(origin ident.Span) Type { return Type{k: kBlocked, Origin: origin} }

func (t Type) IsStatic() bool       { return t.k == kStatic }
func (t Type) IsUnit() bool         { return t.k == kUnit }
func (t Type) IsNever() bool        { return t.k == kNever }
func (t Type) IsTuple() bool        { return t.k == kTuple }
func (t Type) IsParam() bool        { return t.k == kParam }
func (t Type) IsFunc() bool         { return t.k == kFunc }
func (t Type) IsGenericParam() bool { return t.k == kGenericParam }
func (t Type) IsGenericArg() bool   { return t.k == kGenericArg }
func (t Type) IsVar() bool          { return t.k == kVar }
func (t Type) IsBlocked() bool      { return t.k == kBlocked }

// IsVariable reports whether t is one of the two mutable type positions
// (Var or GenericArg) — the only variants the solver may bind.
func (t Type) IsVariable() bool { return t.k == kVar || t.k == kGenericArg }

// VarKey is a comparable identity for a Var or GenericArg, usable as a map
// key. Type itself cannot serve as a map key: it carries slice/pointer
// fields (Args, Constructor, Return) needed by the composite variants, which
// makes the Go struct as a whole non-comparable even though Var/GenericArg
// instances never populate those fields.
type VarKey struct {
	isGenericArg bool
	DefSpan      ident.Span // Var
	IsReturn     bool       // Var
	CallSite     ident.Span // GenericArg
	GenericDef   ident.Span // GenericArg
}

// Key returns the VarKey identity of t, and ok=false if t is not a variable.
func (t Type) Key() (VarKey, bool) {
	switch t.k {
	case kVar:
		return VarKey{DefSpan: t.DefSpan, IsReturn: t.IsReturn}, true
	case kGenericArg:
		return VarKey{isGenericArg: true, CallSite: t.CallSite, GenericDef: t.GenericDef}, true
	default:
		return VarKey{}, false
	}
}

func (k VarKey) IsGenericArg() bool { return k.isGenericArg }

// Type reconstructs the Type value this key identifies.
func (k VarKey) Type() Type {
	if k.isGenericArg {
		return GenericArg(k.CallSite, k.GenericDef)
	}
	return Var(k.DefSpan, k.IsReturn)
}

func (k VarKey) String() string { return k.Type().String() }

// Equals is structural equality on all variants. Two Vars are equal iff
// their DefSpan and IsReturn match; two GenericArgs iff both spans match.
func (t Type) Equals(o Type) bool {
	if t.k != o.k {
		return false
	}
	switch t.k {
	case kStatic:
		return t.DefSpan.Equals(o.DefSpan)
	case kUnit, kNever:
		return true
	case kTuple:
		return equalSlices(t.Args, o.Args)
	case kParam:
		return t.Constructor.Equals(*o.Constructor) && equalSlices(t.Args, o.Args)
	case kFunc:
		return t.Purity == o.Purity && t.Return.Equals(*o.Return) && equalSlices(t.Args, o.Args)
	case kGenericParam:
		return t.DefSpan.Equals(o.DefSpan)
	case kGenericArg:
		return t.CallSite.Equals(o.CallSite) && t.GenericDef.Equals(o.GenericDef)
	case kVar:
		return t.DefSpan.Equals(o.DefSpan) && t.IsReturn == o.IsReturn
	case kBlocked:
		return t.Origin.Equals(o.Origin)
	default:
		return false
	}
}

func equalSlices(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	switch t.k {
	case kStatic:
		return t.DefSpan.String()
	case kUnit:
		return "()"
	case kNever:
		return "Never"
	case kTuple:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case kParam:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s<%s>", t.Constructor, strings.Join(parts, ", "))
	case kFunc:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("(%s) -[%s]-> %s", strings.Join(parts, ", "), t.Purity, t.Return)
	case kGenericParam:
		return fmt.Sprintf("GenericParam(%s)", t.DefSpan)
	case kGenericArg:
		return fmt.Sprintf("GenericArg(%s@%s)", t.GenericDef, t.CallSite)
	case kVar:
		if t.IsReturn {
			return fmt.Sprintf("Var(%s).return", t.DefSpan)
		}
		return fmt.Sprintf("Var(%s)", t.DefSpan)
	case kBlocked:
		return fmt.Sprintf("Blocked(%s)", t.Origin)
	default:
		return "<invalid-type>"
	}
}

// GetTypeVars enumerates every Var and GenericArg reachable inside t.
func (t Type) GetTypeVars() []Type {
	var out []Type
	t.collectTypeVars(&out)
	return out
}

func (t Type) collectTypeVars(out *[]Type) {
	switch t.k {
	case kVar, kGenericArg:
		*out = append(*out, t)
	case kTuple:
		for _, a := range t.Args {
			a.collectTypeVars(out)
		}
	case kParam:
		t.Constructor.collectTypeVars(out)
		for _, a := range t.Args {
			a.collectTypeVars(out)
		}
	case kFunc:
		for _, a := range t.Args {
			a.collectTypeVars(out)
		}
		t.Return.collectTypeVars(out)
	}
}

// Substitute recursively replaces matches of `v` (by identity: same kind,
// same span(s)) with `replacement`. The caller guarantees v is a variable
// kind (Var or GenericArg).
func (t Type) Substitute(v, replacement Type) Type {
	if !v.IsVariable() {
		panic("mirtype: Substitute requires a variable kind")
	}
	if t.k == v.k && t.Equals(v) {
		return replacement
	}
	switch t.k {
	case kTuple:
		return TupleOf(substituteAll(t.Args, v, replacement)...)
	case kParam:
		c := t.Constructor.Substitute(v, replacement)
		return Param(c, substituteAll(t.Args, v, replacement)...)
	case kFunc:
		ret := t.Return.Substitute(v, replacement)
		return Func(substituteAll(t.Args, v, replacement), ret, t.Purity)
	default:
		return t
	}
}

func substituteAll(ts []Type, v, replacement Type) []Type {
	if len(ts) == 0 {
		return ts
	}
	out := make([]Type, len(ts))
	for i, a := range ts {
		out[i] = a.Substitute(v, replacement)
	}
	return out
}

// SubstituteGenericDef rewrites any GenericParam{DefSpan} appearing in t to
// GenericArg{callSite, DefSpan}, provided DefSpan is a member of
// generic_defs. Used when instantiating a polymorphic callee's signature at
// a call site.
func (t Type) SubstituteGenericDef(callSite ident.Span, genericDefs []ident.Span) Type {
	switch t.k {
	case kGenericParam:
		for _, gd := range genericDefs {
			if gd.Equals(t.DefSpan) {
				return GenericArg(callSite, t.DefSpan)
			}
		}
		return t
	case kTuple:
		return TupleOf(substituteGenericDefAll(t.Args, callSite, genericDefs)...)
	case kParam:
		c := t.Constructor.SubstituteGenericDef(callSite, genericDefs)
		return Param(c, substituteGenericDefAll(t.Args, callSite, genericDefs)...)
	case kFunc:
		ret := t.Return.SubstituteGenericDef(callSite, genericDefs)
		return Func(substituteGenericDefAll(t.Args, callSite, genericDefs), ret, t.Purity)
	default:
		return t
	}
}

func substituteGenericDefAll(ts []Type, callSite ident.Span, genericDefs []ident.Span) []Type {
	if len(ts) == 0 {
		return ts
	}
	out := make([]Type, len(ts))
	for i, a := range ts {
		out[i] = a.SubstituteGenericDef(callSite, genericDefs)
	}
	return out
}

// ComposePurity implements the purity lattice rule from spec §4.2.2 case 3:
// (Both, _) -> Both, (Pure, Pure) -> Pure, (Impure, Impure) -> Impure,
// mismatch otherwise (ok=false unless the caller forces Both via
// bidirectional join).
func ComposePurity(p1, p2 Purity) (Purity, bool) {
	switch {
	case p1 == Both || p2 == Both:
		return Both, true
	case p1 == Pure && p2 == Pure:
		return Pure, true
	case p1 == Impure && p2 == Impure:
		return Impure, true
	default:
		return Both, false
	}
}

// AtLeastAsStrong reports whether p2 is at least as strong as p1 in the
// purity lattice {Pure, Impure} <: Both (the testable property from spec §8).
func AtLeastAsStrong(p1, p2 Purity) bool {
	if p1 == p2 {
		return true
	}
	return p2 == Both
}
