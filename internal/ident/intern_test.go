package ident

import "testing"

func TestInternShortStringInlines(t *testing.T) {
	s := Intern("x")
	if s.String() != "x" {
		t.Errorf("String() = %q, want %q", s.String(), "x")
	}
}

func TestInternLongStringDedups(t *testing.T) {
	long := "this_identifier_is_long_enough_to_spill_into_the_table"
	a := Intern(long)
	b := Intern(long)
	if a != b {
		t.Errorf("interning the same long string twice should produce equal handles")
	}
	if a.String() != long {
		t.Errorf("String() = %q, want %q", a.String(), long)
	}
}

func TestInternDistinctStringsDiffer(t *testing.T) {
	a := Intern("alpha_long_enough_to_not_inline_maybe")
	b := Intern("beta_long_enough_to_not_inline_maybe!")
	if a == b {
		t.Error("distinct strings must not intern to the same handle")
	}
}

func TestInternedStringIsEmpty(t *testing.T) {
	var zero InternedString
	if !zero.IsEmpty() {
		t.Error("the zero value of InternedString should be empty")
	}
	if Intern("x").IsEmpty() {
		t.Error("a non-empty interned string should not report IsEmpty")
	}
}

func TestTableSnapshotOrder(t *testing.T) {
	tbl := NewTable()
	a := tbl.Intern("first_long_string_over_the_inline_cap_boundary")
	b := tbl.Intern("second_long_string_over_the_inline_cap_boundary")
	snap := tbl.Snapshot()
	if len(snap) != 2 || snap[0] != a.String() || snap[1] != b.String() {
		t.Errorf("Snapshot() = %v, want [%q %q]", snap, a.String(), b.String())
	}
}
