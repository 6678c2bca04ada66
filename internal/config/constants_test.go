package config

import "testing"

func TestIsBuiltinClassKnown(t *testing.T) {
	for _, name := range BuiltinClasses {
		if !IsBuiltinClass(name) {
			t.Errorf("IsBuiltinClass(%s) = false, want true for every entry in BuiltinClasses", name)
		}
	}
}

func TestIsBuiltinClassUnknown(t *testing.T) {
	if IsBuiltinClass("Eq") {
		t.Errorf("Eq is a user class, not a built-in")
	}
	if IsBuiltinClass("") {
		t.Errorf("empty string is never a built-in class name")
	}
}

func TestBuiltinClassesHasNoDuplicates(t *testing.T) {
	seen := make(map[string]bool, len(BuiltinClasses))
	for _, c := range BuiltinClasses {
		if seen[c] {
			t.Errorf("duplicate entry %s in BuiltinClasses", c)
		}
		seen[c] = true
	}
}

func TestMaxSolverWorkIsMutableForTests(t *testing.T) {
	original := MaxSolverWork
	defer func() { MaxSolverWork = original }()

	MaxSolverWork = 5
	if MaxSolverWork != 5 {
		t.Errorf("expected MaxSolverWork to be a plain mutable variable")
	}
}
