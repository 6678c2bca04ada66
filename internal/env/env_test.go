package env

import (
	"testing"

	"github.com/funvibe/entailer/internal/builtins"
	"github.com/funvibe/entailer/internal/classes"
	"github.com/funvibe/entailer/internal/roles"
	"github.com/funvibe/entailer/internal/types"
)

func TestNewWiresRolesSolverBackToSelf(t *testing.T) {
	e := New("Main", classes.NewRegistry())
	e.RegisterDataType("Box", roles.DataType{Params: []string{"a"}, Constructors: [][]types.Type{{types.TVar{Name: "a"}}}})
	rs := e.Roles().RolesOf("Box")
	if len(rs) != 1 || rs[0].Role != roles.Representational {
		t.Errorf("expected role solver to resolve against this environment's own data types, got %v", rs)
	}
}

func TestClassesAndCurrentModule(t *testing.T) {
	reg := classes.NewRegistry()
	e := New("Data.List", reg)
	if e.Classes() != reg {
		t.Errorf("Classes() should return the exact registry passed to New")
	}
	if e.CurrentModule() != "Data.List" {
		t.Errorf("CurrentModule() = %s, want Data.List", e.CurrentModule())
	}
}

func TestNewtypeLookup(t *testing.T) {
	e := New("Main", classes.NewRegistry())
	e.RegisterNewtype("Age", builtins.Newtype{Wrapped: types.TCon{Name: "Int"}})
	nt, ok := e.Newtype("Age")
	if !ok || nt.Wrapped.String() != "Int" {
		t.Errorf("expected registered newtype Age to be found, got %v ok=%v", nt, ok)
	}
	if _, ok := e.Newtype("Missing"); ok {
		t.Errorf("expected unregistered newtype to be absent")
	}
}

func TestExpandSynonymSimple(t *testing.T) {
	e := New("Main", classes.NewRegistry())
	e.RegisterSynonym("Name", Synonym{Body: types.TCon{Name: "String"}})
	expanded, ok := e.ExpandSynonym(types.TCon{Name: "Name"})
	if !ok || expanded.String() != "String" {
		t.Errorf("expected Name to expand to String, got %v ok=%v", expanded, ok)
	}
}

func TestExpandSynonymWithParams(t *testing.T) {
	e := New("Main", classes.NewRegistry())
	// type Pair a = (a, a)  modelled as an applied TApp for simplicity here
	e.RegisterSynonym("Pair", Synonym{
		Params: []string{"a"},
		Body:   types.TApp{Constructor: types.TCon{Name: "Tuple2"}, Args: []types.Type{types.TVar{Name: "a"}, types.TVar{Name: "a"}}},
	})
	use := types.TApp{Constructor: types.TCon{Name: "Pair"}, Args: []types.Type{types.TCon{Name: "Int"}}}
	expanded, ok := e.ExpandSynonym(use)
	if !ok {
		t.Fatalf("expected Pair Int to expand")
	}
	app, ok := expanded.(types.TApp)
	if !ok || app.Args[0].String() != "Int" || app.Args[1].String() != "Int" {
		t.Errorf("expected both Tuple2 slots substituted with Int, got %v", expanded)
	}
}

func TestExpandSynonymUnknownNameNotOk(t *testing.T) {
	e := New("Main", classes.NewRegistry())
	_, ok := e.ExpandSynonym(types.TCon{Name: "NotASynonym"})
	if ok {
		t.Errorf("expected an unregistered name to report ok=false")
	}
}

func TestExpandSynonymNonConHeadNotOk(t *testing.T) {
	e := New("Main", classes.NewRegistry())
	_, ok := e.ExpandSynonym(types.TVar{Name: "a"})
	if ok {
		t.Errorf("a bare type variable can never name a synonym")
	}
}

func TestLookupDataType(t *testing.T) {
	e := New("Main", classes.NewRegistry())
	e.RegisterDataType("Box", roles.DataType{Params: []string{"a"}})
	_, ok := e.LookupDataType("Box")
	if !ok {
		t.Errorf("expected registered data type to be found")
	}
	if _, ok := e.LookupDataType("Missing"); ok {
		t.Errorf("expected unregistered data type to be absent")
	}
}
