// Package roles implements §4.A Role inference: for a named data type,
// list the roles (representational/phantom) of its parameters, the
// basis Coercible (package builtins) reasons over.
//
// The teacher has no role system — data-type constructors are
// registered in internal/analyzer/declarations_types.go purely for
// kind-checking and pattern matching, never walked for representational
// structure. This package is new, grounded on how that file walks a
// constructor's field types to build its TFunc (same recursive-descent
// shape, repurposed to fold roles instead of building a function type).
package roles

import "github.com/funvibe/entailer/internal/types"

// Role is whether a parameter's representation affects the containing
// type's representation under Coercible.
type Role int

const (
	Representational Role = iota
	Phantom
)

func (r Role) String() string {
	if r == Representational {
		return "representational"
	}
	return "phantom"
}

// ParamRole pairs a declared parameter name with its inferred role.
type ParamRole struct {
	Name string
	Role Role
}

// DataType is the shape role inference needs from a user-defined type:
// its declared parameter names (in order) and the field types of every
// constructor.
type DataType struct {
	Params       []string
	Constructors [][]types.Type
}

// Env looks up user data types by name (spec §6 "types: name -> (kind,
// data-type description with constructors/parameters)").
type Env interface {
	LookupDataType(name string) (DataType, bool)
}

// primitive is the built-in role table (spec §3 "Primitive entries").
var primitive = map[string][]Role{
	"Function": {Representational, Representational},
	"Array":    {Representational},
	"Record":   {Representational},
}

// Solver memoises rolesOf across a whole module, so mutually recursive
// data types only ever walk each constructor once (spec §4.A
// "Termination": "an implementation may compute roles for a whole
// module ... and cache them").
type Solver struct {
	env        Env
	cache      map[string][]ParamRole
	inProgress map[string]bool
}

// NewSolver returns a role solver backed by env.
func NewSolver(env Env) *Solver {
	return &Solver{env: env, cache: map[string][]ParamRole{}, inProgress: map[string]bool{}}
}

// RolesOf returns typeName's parameter roles, computing and caching them
// on first request.
func (s *Solver) RolesOf(typeName string) []ParamRole {
	if rs, ok := primitiveRoles(typeName); ok {
		return rs
	}
	if rs, ok := s.cache[typeName]; ok {
		return rs
	}
	if s.inProgress[typeName] {
		// Recursive reference encountered mid-computation: contribute the
		// join identity (Phantom) for every parameter. Mutually recursive
		// types still converge because any *other* constructor field that
		// reaches a parameter directly (or through an already-resolved
		// type) still forces Representational — Phantom here only ever
		// under-contributes, never over-contributes, so it cannot turn a
		// truly representational parameter into a falsely phantom one at
		// the type whose computation is actually in progress.
		dt, ok := s.env.LookupDataType(typeName)
		if !ok {
			return nil
		}
		out := make([]ParamRole, len(dt.Params))
		for i, p := range dt.Params {
			out[i] = ParamRole{Name: p, Role: Phantom}
		}
		return out
	}

	dt, ok := s.env.LookupDataType(typeName)
	if !ok {
		return nil
	}

	s.inProgress[typeName] = true
	joined := map[string]Role{}
	for _, ctor := range dt.Constructors {
		for _, field := range ctor {
			for name, r := range s.walk(field) {
				joined[name] = join(joined[name], r)
			}
		}
	}
	delete(s.inProgress, typeName)

	out := make([]ParamRole, len(dt.Params))
	for i, p := range dt.Params {
		r, ok := joined[p]
		if !ok {
			r = Phantom
		}
		out[i] = ParamRole{Name: p, Role: r}
	}
	s.cache[typeName] = out
	return out
}

func primitiveRoles(typeName string) ([]ParamRole, bool) {
	rs, ok := primitive[typeName]
	if !ok {
		return nil, false
	}
	out := make([]ParamRole, len(rs))
	names := []string{"a", "b", "c"}
	for i, r := range rs {
		name := "?"
		if i < len(names) {
			name = names[i]
		}
		out[i] = ParamRole{Name: name, Role: r}
	}
	return out, true
}

// join combines two roles for the same variable across different
// occurrences: Phantom is the identity, Representational is absorbing
// (spec §4.A).
func join(a, b Role) Role {
	if a == Representational || b == Representational {
		return Representational
	}
	return Phantom
}

// walk folds a field type into a map of variable-name -> contributed
// role (spec §4.A "walk(t)"). Bindings introduced by a TForall may
// appear in the result; RolesOf's final projection over dt.Params
// discards anything not a declared parameter.
func (s *Solver) walk(t types.Type) map[string]Role {
	switch v := t.(type) {
	case types.TVar:
		return map[string]Role{v.Name: Representational}

	case types.KindedType:
		return s.walk(v.Type)

	case types.TForall:
		return s.walk(v.Type)

	case types.TApp:
		if ctor, ok := headConstructor(v.Constructor); ok {
			ctorRoles := s.RolesOf(ctor)
			out := map[string]Role{}
			for i, arg := range v.Args {
				if i >= len(ctorRoles) || ctorRoles[i].Role != Representational {
					continue
				}
				for name, r := range s.walk(arg) {
					out[name] = join(out[name], r)
				}
			}
			return out
		}
		// Non-constructor head (a type variable or compound application):
		// walk the head and every argument unconditionally.
		out := s.walk(v.Constructor)
		for _, arg := range v.Args {
			for name, r := range s.walk(arg) {
				out[name] = join(out[name], r)
			}
		}
		return out

	default:
		return nil
	}
}

// headConstructor reports the constructor name at the head of a type,
// if any (spec: "if f is a type constructor").
func headConstructor(t types.Type) (string, bool) {
	switch v := t.(type) {
	case types.TCon:
		return v.Name, true
	case types.KindedType:
		return headConstructor(v.Type)
	default:
		return "", false
	}
}
