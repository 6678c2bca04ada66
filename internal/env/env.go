// Package env is the concrete collaborator bundle spec §6 calls "the
// compiler environment": types, typeClasses, typeSynonyms,
// newtypeConstructor, bound together into one object that satisfies
// solver.Env, builtins.Env (indirectly, through roles.Env) in one
// place.
//
// Grounded on internal/analyzer/resolver_wrapper.go's ResolverWrapper:
// a small struct that delegates each collaborator method to the piece
// of compiler state that actually owns it (there, SymbolTable and
// InferenceContext; here, this package's own per-module registries).
package env

import (
	"github.com/funvibe/entailer/internal/builtins"
	"github.com/funvibe/entailer/internal/classes"
	"github.com/funvibe/entailer/internal/roles"
	"github.com/funvibe/entailer/internal/types"
)

// Synonym is a type-alias declaration: Body with Params standing for
// its free parameters, substituted by the arguments ExpandSynonym is
// invoked with.
type Synonym struct {
	Params []string
	Body   types.Type
}

// Environment holds one module's worth of declarations: its type
// class metadata, its data types (for role inference), its newtypes
// (for Coercible) and its type synonyms (for alias expansion).
type Environment struct {
	ModuleName string
	ClassReg   *classes.Registry
	Synonyms   map[string]Synonym
	Newtypes   map[string]builtins.Newtype
	DataTypes  map[string]roles.DataType

	rolesSolver *roles.Solver
}

// New returns an environment for module moduleName backed by classReg.
// Data types, newtypes and synonyms are registered afterward via
// RegisterDataType/RegisterNewtype/RegisterSynonym (internal/fixtures
// is the loader that calls these).
func New(moduleName string, classReg *classes.Registry) *Environment {
	e := &Environment{
		ModuleName: moduleName,
		ClassReg:   classReg,
		Synonyms:   map[string]Synonym{},
		Newtypes:   map[string]builtins.Newtype{},
		DataTypes:  map[string]roles.DataType{},
	}
	e.rolesSolver = roles.NewSolver(e)
	return e
}

// Classes implements solver.Env.
func (e *Environment) Classes() *classes.Registry { return e.ClassReg }

// CurrentModule implements solver.Env.
func (e *Environment) CurrentModule() string { return e.ModuleName }

// Roles implements solver.Env and builtins.Env.
func (e *Environment) Roles() *roles.Solver { return e.rolesSolver }

// LookupDataType implements roles.Env.
func (e *Environment) LookupDataType(name string) (roles.DataType, bool) {
	dt, ok := e.DataTypes[name]
	return dt, ok
}

// Newtype implements solver.Env and builtins.Env.
func (e *Environment) Newtype(name string) (builtins.Newtype, bool) {
	nt, ok := e.Newtypes[name]
	return nt, ok
}

// ExpandSynonym implements solver.Env and builtins.Env: it substitutes
// the synonym's declared parameters for t's applied arguments and
// returns the expansion. ok=false means t's head names no known
// synonym (not an error — callers treat that as "already expanded").
// Only the head is expanded, and only once: a body that is itself a
// synonym, and synonyms inside the arguments, are left as they are.
func (e *Environment) ExpandSynonym(t types.Type) (types.Type, bool) {
	name, args, ok := headNameAndArgs(t)
	if !ok {
		return t, false
	}
	syn, ok := e.Synonyms[name]
	if !ok {
		return t, false
	}
	bindings := map[string]types.Type{}
	for i, p := range syn.Params {
		if i < len(args) {
			bindings[p] = args[i]
		}
	}
	return substituteSynonymParams(syn.Body, bindings), true
}

// RegisterDataType adds a user data type's constructor field shapes
// for role inference.
func (e *Environment) RegisterDataType(name string, dt roles.DataType) {
	e.DataTypes[name] = dt
}

// RegisterNewtype adds a newtype's wrapped field shape for Coercible.
func (e *Environment) RegisterNewtype(name string, nt builtins.Newtype) {
	e.Newtypes[name] = nt
}

// RegisterSynonym adds a type-alias declaration.
func (e *Environment) RegisterSynonym(name string, syn Synonym) {
	e.Synonyms[name] = syn
}

// headNameAndArgs splits t into a head type-constructor name and the
// arguments it's applied to, if t's head is a bare TCon (a type
// synonym is always introduced as a named, possibly-parameterised
// alias, never behind a compound or variable head).
func headNameAndArgs(t types.Type) (string, []types.Type, bool) {
	t = types.StripKinded(t)
	switch v := t.(type) {
	case types.TCon:
		return v.Name, nil, true
	case types.TApp:
		name, _, ok := headNameAndArgs(v.Constructor)
		if !ok {
			return "", nil, false
		}
		return name, v.Args, true
	default:
		return "", nil, false
	}
}

// substituteSynonymParams is the name-keyed substitution this package
// draws locally for its own binding kind (the same small-duplicated-
// helper shape as classes.substituteParamNames, builtins.substituteNames
// and solver.bindType — each package's own concern, not worth a shared
// cross-cutting utility).
func substituteSynonymParams(t types.Type, bindings map[string]types.Type) types.Type {
	switch v := t.(type) {
	case types.TVar:
		if repl, ok := bindings[v.Name]; ok {
			return repl
		}
		return v
	case types.TApp:
		newArgs := make([]types.Type, len(v.Args))
		for i, a := range v.Args {
			newArgs[i] = substituteSynonymParams(a, bindings)
		}
		return types.TApp{Constructor: substituteSynonymParams(v.Constructor, bindings), Args: newArgs}
	case types.KindedType:
		return types.KindedType{Type: substituteSynonymParams(v.Type, bindings), KindVal: v.KindVal}
	case types.RCons:
		return types.RCons{Label: v.Label, Head: substituteSynonymParams(v.Head, bindings), Tail: substituteSynonymParams(v.Tail, bindings)}
	case types.TRecord:
		return types.TRecord{Row: substituteSynonymParams(v.Row, bindings)}
	default:
		return t
	}
}
