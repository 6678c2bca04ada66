package types

import "testing"

func TestSubstApply(t *testing.T) {
	s := Subst{1: TCon{Name: "Int"}}
	got := TUnknown{ID: 1}.Apply(s)
	if got.String() != "Int" {
		t.Errorf("Apply = %s, want Int", got.String())
	}
}

func TestSubstComposeOrder(t *testing.T) {
	// s1 binds 1 -> t2; s2 binds 2 -> Int. Compose(s1, s2) applied to
	// t1 should first resolve through s1 to t2, then through s2 to Int.
	s1 := Subst{1: TUnknown{ID: 2}}
	s2 := Subst{2: TCon{Name: "Int"}}
	composed := s1.Compose(s2)
	got := TUnknown{ID: 1}.Apply(composed)
	if got.String() != "Int" {
		t.Errorf("composed apply = %s, want Int", got.String())
	}
}

func TestTUnknownApplyCycleGuard(t *testing.T) {
	// A (contrived) self-referential substitution must not loop forever.
	s := Subst{1: TUnknown{ID: 1}}
	got := TUnknown{ID: 1}.Apply(s)
	if got.(TUnknown).ID != 1 {
		t.Errorf("self-bound unknown should return itself unchanged, got %v", got)
	}
}

func TestStripKinded(t *testing.T) {
	inner := TCon{Name: "Int"}
	wrapped := KindedType{Type: KindedType{Type: inner}}
	if StripKinded(wrapped) != inner {
		t.Errorf("StripKinded should remove nested wrappers")
	}
	if StripKinded(inner) != inner {
		t.Errorf("StripKinded on a bare type should be a no-op")
	}
}

func TestRowRoundTrip(t *testing.T) {
	row := RCons{Label: "b", Head: TCon{Name: "Int"}, Tail: RCons{Label: "a", Head: TCon{Name: "Bool"}, Tail: REmpty{}}}
	fields, tail := RowToFields(row)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if _, ok := tail.(REmpty); !ok {
		t.Errorf("expected REmpty tail, got %T", tail)
	}
	rebuilt := RowFromList(fields, REmpty{})
	fields2, _ := RowToFields(rebuilt)
	if len(fields2) != 2 || fields2["a"].String() != "Bool" || fields2["b"].String() != "Int" {
		t.Errorf("round trip lost fields: %v", fields2)
	}
}

func TestAlignRows(t *testing.T) {
	left := RCons{Label: "a", Head: TCon{Name: "Int"}, Tail: RCons{Label: "b", Head: TCon{Name: "Bool"}, Tail: REmpty{}}}
	right := RCons{Label: "a", Head: TCon{Name: "Int"}, Tail: RCons{Label: "c", Head: TCon{Name: "String"}, Tail: REmpty{}}}
	al := AlignRows(left, right)

	if len(al.Common) != 1 || al.Common[0].Label != "a" {
		t.Errorf("expected one common field 'a', got %+v", al.Common)
	}
	if _, ok := al.LeftOnly["b"]; !ok {
		t.Errorf("expected 'b' left-only")
	}
	if _, ok := al.RightOnly["c"]; !ok {
		t.Errorf("expected 'c' right-only")
	}
}

func TestFreeTypeVariablesDedup(t *testing.T) {
	a := TVar{Name: "a"}
	app := TApp{Constructor: TCon{Name: "Pair"}, Args: []Type{a, a}}
	vars := app.FreeTypeVariables()
	if len(vars) != 1 {
		t.Errorf("expected deduplicated free variable list, got %v", vars)
	}
}

func TestTForallFreeTypeVariablesExcludesBound(t *testing.T) {
	a := TVar{Name: "a"}
	b := TVar{Name: "b"}
	forall := TForall{Vars: []TVar{a}, Type: TApp{Constructor: TCon{Name: "Pair"}, Args: []Type{a, b}}}
	free := forall.FreeTypeVariables()
	if len(free) != 1 || free[0].Name != "b" {
		t.Errorf("expected only 'b' free, got %v", free)
	}
}
