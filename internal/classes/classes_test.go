package classes

import (
	"testing"

	"github.com/funvibe/entailer/internal/types"
)

func TestRegistryRegisterLookup(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("Eq"); ok {
		t.Fatalf("empty registry should not find Eq")
	}
	r.Register(Class{Name: "Eq", ParamNames: []string{"a"}})
	c, ok := r.Lookup("Eq")
	if !ok {
		t.Fatalf("expected Eq to be registered")
	}
	if c.Arity() != 1 {
		t.Errorf("Arity() = %d, want 1", c.Arity())
	}
}

func TestRegistryRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(Class{Name: "Eq", ParamNames: []string{"a"}})
	r.Register(Class{Name: "Eq", ParamNames: []string{"a", "b"}})
	c, _ := r.Lookup("Eq")
	if c.Arity() != 2 {
		t.Errorf("expected second Register to replace metadata, got arity %d", c.Arity())
	}
}

func TestSubstituteSupers(t *testing.T) {
	ord := Class{
		Name:       "Ord",
		ParamNames: []string{"a"},
		Supers:     []Constraint{{ClassName: "Eq", Args: []types.Type{types.TVar{Name: "a"}}}},
	}
	out := ord.SubstituteSupers([]types.Type{types.TCon{Name: "Int"}})
	if len(out) != 1 {
		t.Fatalf("expected 1 superclass constraint, got %d", len(out))
	}
	if out[0].ClassName != "Eq" {
		t.Errorf("ClassName = %s, want Eq", out[0].ClassName)
	}
	if out[0].Args[0].String() != "Int" {
		t.Errorf("Args[0] = %s, want Int", out[0].Args[0].String())
	}
}

func TestSubstituteSupersNested(t *testing.T) {
	functor := Class{
		Name:       "Traversable",
		ParamNames: []string{"f"},
		Supers: []Constraint{{
			ClassName: "Functor",
			Args: []types.Type{
				types.TApp{Constructor: types.TVar{Name: "f"}, Args: []types.Type{types.TVar{Name: "f"}}},
			},
		}},
	}
	out := functor.SubstituteSupers([]types.Type{types.TCon{Name: "List"}})
	app, ok := out[0].Args[0].(types.TApp)
	if !ok {
		t.Fatalf("expected substituted arg to remain a TApp, got %T", out[0].Args[0])
	}
	if app.Constructor.String() != "List" {
		t.Errorf("constructor = %s, want List", app.Constructor.String())
	}
	if app.Args[0].String() != "List" {
		t.Errorf("nested arg = %s, want List", app.Args[0].String())
	}
}

func TestSubstituteSupersUnmappedParamUnchanged(t *testing.T) {
	// fewer instance types than params: trailing params keep their bare TVar.
	c := Class{
		Name:       "Convert",
		ParamNames: []string{"a", "b"},
		Supers:     []Constraint{{ClassName: "Eq", Args: []types.Type{types.TVar{Name: "b"}}}},
	}
	out := c.SubstituteSupers([]types.Type{types.TCon{Name: "Int"}})
	v, ok := out[0].Args[0].(types.TVar)
	if !ok || v.Name != "b" {
		t.Errorf("expected unmapped param 'b' to remain a bare TVar, got %v", out[0].Args[0])
	}
}

func TestClosureSingleStep(t *testing.T) {
	fds := []FunctionalDependency{{Determiners: []int{0}, Determined: []int{1}}}
	closed := Closure(fds, map[int]bool{0: true})
	if !closed[1] {
		t.Errorf("expected position 1 to be closed over, got %v", closed)
	}
}

func TestClosureChainsToFixedPoint(t *testing.T) {
	// 0 -> 1, 1 -> 2: closing over {0} should reach {0,1,2}.
	fds := []FunctionalDependency{
		{Determiners: []int{0}, Determined: []int{1}},
		{Determiners: []int{1}, Determined: []int{2}},
	}
	closed := Closure(fds, map[int]bool{0: true})
	for _, p := range []int{0, 1, 2} {
		if !closed[p] {
			t.Errorf("expected position %d closed, got %v", p, closed)
		}
	}
}

func TestClosureRequiresAllDeterminers(t *testing.T) {
	fds := []FunctionalDependency{{Determiners: []int{0, 1}, Determined: []int{2}}}
	closed := Closure(fds, map[int]bool{0: true})
	if closed[2] {
		t.Errorf("should not close position 2 without determiner 1 also known")
	}
	closed = Closure(fds, map[int]bool{0: true, 1: true})
	if !closed[2] {
		t.Errorf("expected position 2 closed once both determiners known")
	}
}

func TestClosureDoesNotMutateInput(t *testing.T) {
	known := map[int]bool{0: true}
	fds := []FunctionalDependency{{Determiners: []int{0}, Determined: []int{1}}}
	Closure(fds, known)
	if _, ok := known[1]; ok {
		t.Errorf("Closure must not mutate its known input map")
	}
}
