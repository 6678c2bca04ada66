package expr

import (
	"testing"

	"github.com/funvibe/entailer/internal/builtins"
	"github.com/funvibe/entailer/internal/classes"
	"github.com/funvibe/entailer/internal/diagnostics"
	"github.com/funvibe/entailer/internal/instances"
	"github.com/funvibe/entailer/internal/roles"
	"github.com/funvibe/entailer/internal/solver"
	"github.com/funvibe/entailer/internal/terms"
	"github.com/funvibe/entailer/internal/types"
)

// node is the test double for expr.Node: whatever term it currently
// wraps answers Placeholder() — a DeferredDict term (including one
// re-deferred by a prior pass) is a placeholder and stays one across
// passes; any other term is resolved and is not a placeholder.
type node struct{ term terms.Term }

func (n node) Placeholder() (terms.DeferredDict, bool) {
	d, ok := n.term.(terms.DeferredDict)
	return d, ok
}
func (n node) ReplaceWith(term terms.Term) Node { return node{term: term} }

// fakeRewrite drives a flat []Node tree top-down, left to right.
func fakeRewrite(tree interface{}, transform func(Node) (Node, error)) (interface{}, error) {
	nodes := tree.([]Node)
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		next, err := transform(n)
		if err != nil {
			return nil, err
		}
		out[i] = next
	}
	return out, nil
}

type fakeRoleEnv struct{}

func (fakeRoleEnv) LookupDataType(name string) (roles.DataType, bool) { return roles.DataType{}, false }

type fakeEnv struct {
	reg    *classes.Registry
	module string
}

func (f *fakeEnv) Classes() *classes.Registry                    { return f.reg }
func (f *fakeEnv) ExpandSynonym(t types.Type) (types.Type, bool) { return t, true }
func (f *fakeEnv) Newtype(name string) (builtins.Newtype, bool)  { return builtins.Newtype{}, false }
func (f *fakeEnv) Roles() *roles.Solver                          { return roles.NewSolver(fakeRoleEnv{}) }
func (f *fakeEnv) CurrentModule() string                         { return f.module }

func TestReplaceTypeClassDictionariesResolvesImmediately(t *testing.T) {
	reg := classes.NewRegistry()
	reg.Register(classes.Class{Name: "Eq", ParamNames: []string{"a"}})
	env := &fakeEnv{reg: reg}

	inherited := instances.NewContext()
	inherited.AddLocal("Eq", "d1", instances.Descriptor{
		ClassName:     "Eq",
		InstanceTypes: []types.Type{types.TCon{Name: "Int"}},
		Evidence:      instances.Evidence{Kind: instances.NamedInstance, Name: "eqIntDict"},
		Dependencies:  []instances.Requirement{},
	})

	con := classes.Constraint{ClassName: "Eq", Args: []types.Type{types.TCon{Name: "Int"}}}
	tree := []Node{node{term: terms.DeferredDict{Constraint: con, Context: inherited}}}

	state := solver.NewState()
	result, err := ReplaceTypeClassDictionaries(fakeRewrite, tree, state, env, false)
	if err != nil {
		t.Fatalf("ReplaceTypeClassDictionaries failed: %v", err)
	}
	out := result.Tree.([]Node)
	resolved := out[0].(node)
	v, ok := resolved.term.(terms.Var)
	if !ok || v.Name != "eqIntDict" {
		t.Errorf("expected Var(eqIntDict), got %v", resolved.term)
	}
	if len(result.Obligations) != 0 {
		t.Errorf("expected no generalisation obligations, got %v", result.Obligations)
	}
}

func TestReplaceTypeClassDictionariesUnknownClassErrorsOnFinalPass(t *testing.T) {
	reg := classes.NewRegistry()
	env := &fakeEnv{reg: reg}

	con := classes.Constraint{ClassName: "Mystery", Args: nil}
	tree := []Node{node{term: terms.DeferredDict{Constraint: con, Context: instances.NewContext()}}}

	state := solver.NewState()
	_, err := ReplaceTypeClassDictionaries(fakeRewrite, tree, state, env, false)
	if err == nil {
		t.Fatalf("expected an unknown class to surface as an error once deferral runs out")
	}
	d, ok := err.(*diagnostics.Diagnostic)
	if !ok || d.Kind != diagnostics.UnknownClass {
		t.Errorf("expected UnknownClass diagnostic, got %v", err)
	}
}

func TestReplaceTypeClassDictionariesGeneralizesUnresolvedUnknown(t *testing.T) {
	reg := classes.NewRegistry()
	reg.Register(classes.Class{Name: "Show", ParamNames: []string{"a"}})
	env := &fakeEnv{reg: reg}

	state := solver.NewState()
	wantedType := state.FreshUnknown()
	con := classes.Constraint{ClassName: "Show", Args: []types.Type{wantedType}}
	tree := []Node{node{term: terms.DeferredDict{Constraint: con, Context: instances.NewContext()}}}

	result, err := ReplaceTypeClassDictionaries(fakeRewrite, tree, state, env, true)
	if err != nil {
		t.Fatalf("expected generalisation to avoid an error: %v", err)
	}
	out := result.Tree.([]Node)
	resolved := out[0].(node)
	if _, ok := resolved.term.(terms.Var); !ok {
		t.Errorf("expected a Var term for the generalised dictionary, got %v", resolved.term)
	}
	if len(result.Obligations) != 1 {
		t.Fatalf("expected exactly one generalisation obligation, got %d", len(result.Obligations))
	}
}

func TestReplaceTypeClassDictionariesSurfacesWarnFromTheSolveOrDeferLoop(t *testing.T) {
	reg := classes.NewRegistry()
	env := &fakeEnv{reg: reg}

	con := classes.Constraint{ClassName: "Warn", Args: []types.Type{types.TypeLevelString{Value: "deprecated"}}}
	tree := []Node{node{term: terms.DeferredDict{Constraint: con, Context: instances.NewContext()}}}

	state := solver.NewState()
	// Warn always has an opinion and so commits on the very first pass,
	// well before deferErrors flips to false on the final pass.
	result, err := ReplaceTypeClassDictionaries(fakeRewrite, tree, state, env, false)
	if err != nil {
		t.Fatalf("ReplaceTypeClassDictionaries failed: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected the Warn commit from the solve-or-defer loop to surface, got %v", result.Warnings)
	}
	if result.Warnings[0].Kind != diagnostics.UserDefinedWarning {
		t.Errorf("expected a UserDefinedWarning diagnostic, got %v", result.Warnings[0].Kind)
	}
	if result.Warnings[0].Message != `"deprecated"` {
		t.Errorf("expected the warning message to be the committed instance's message, got %q", result.Warnings[0].Message)
	}
}

func TestReplaceTypeClassDictionariesLeavesNonPlaceholderNodesUntouched(t *testing.T) {
	reg := classes.NewRegistry()
	env := &fakeEnv{reg: reg}
	state := solver.NewState()
	already := node{term: terms.Var{Name: "x"}}
	tree := []Node{already}

	result, err := ReplaceTypeClassDictionaries(fakeRewrite, tree, state, env, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := result.Tree.([]Node)
	if out[0].(node).term.(terms.Var).Name != "x" {
		t.Errorf("expected the already-resolved node to pass through unchanged, got %v", out[0])
	}
}
