// Package classes holds type-class metadata: declared parameters,
// superclasses, and functional dependencies (spec §3 "Type-class
// metadata"). It mirrors the teacher's symbol_table_traits.go, which
// keeps the same three facts (type params, super-traits, functional
// dependencies) indexed by trait name in the symbol table.
package classes

import "github.com/funvibe/entailer/internal/types"

// FunctionalDependency is a pair of disjoint index sets over a class's
// parameter positions: Determiners -> Determined.
type FunctionalDependency struct {
	Determiners []int
	Determined  []int
}

// Constraint is a template constraint over a class's own parameters
// (used for declared superclasses) or over concrete types (used as an
// instance's Requirements / a wanted constraint's Args).
type Constraint struct {
	ClassName string
	Args      []types.Type
	Info      interface{} // opaque source hint, spec §3
}

// Class is the metadata the solver looks up by name.
type Class struct {
	Name        string
	ParamNames  []string
	Supers      []Constraint // declared over ParamNames, substituted at use
	FunDeps     []FunctionalDependency
}

// Arity returns the number of parameters the class declares.
func (c Class) Arity() int { return len(c.ParamNames) }

// Registry is the class-metadata lookup the solver consults (spec §6:
// "typeClasses: name -> parameters, superclass constraints, functional
// dependencies").
type Registry struct {
	byName map[string]Class
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Class)}
}

// Register adds or replaces a class's metadata.
func (r *Registry) Register(c Class) {
	r.byName[c.Name] = c
}

// Lookup returns a class's metadata, or ok=false if unknown — the
// trigger for the solver's UnknownClass error (spec §7).
func (r *Registry) Lookup(name string) (Class, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// SubstituteSupers instantiates a class's declared superclass
// constraints at a concrete set of instance types, substituting each
// declared parameter name for the corresponding instance type
// (spec §4.G newDictionaries: "substitute the outer instance types for
// the parameter names in args").
func (c Class) SubstituteSupers(instanceTypes []types.Type) []Constraint {
	subst := make(map[string]types.Type, len(c.ParamNames))
	for i, name := range c.ParamNames {
		if i < len(instanceTypes) {
			subst[name] = instanceTypes[i]
		}
	}
	out := make([]Constraint, len(c.Supers))
	for i, s := range c.Supers {
		out[i] = Constraint{
			ClassName: s.ClassName,
			Args:      substituteArgs(s.Args, subst),
			Info:      s.Info,
		}
	}
	return out
}

func substituteArgs(args []types.Type, subst map[string]types.Type) []types.Type {
	out := make([]types.Type, len(args))
	for i, a := range args {
		out[i] = substituteParamNames(a, subst)
	}
	return out
}

// substituteParamNames replaces bare TVars named after a class
// parameter with the concrete instance type at that parameter — the
// class-parameter analogue of types.Subst, which is keyed by unknown
// id rather than by name.
func substituteParamNames(t types.Type, subst map[string]types.Type) types.Type {
	switch v := t.(type) {
	case types.TVar:
		if repl, ok := subst[v.Name]; ok {
			return repl
		}
		return v
	case types.TApp:
		newArgs := make([]types.Type, len(v.Args))
		for i, a := range v.Args {
			newArgs[i] = substituteParamNames(a, subst)
		}
		return types.TApp{Constructor: substituteParamNames(v.Constructor, subst), Args: newArgs}
	case types.KindedType:
		return types.KindedType{Type: substituteParamNames(v.Type, subst), KindVal: v.KindVal}
	case types.RCons:
		return types.RCons{Label: v.Label, Head: substituteParamNames(v.Head, subst), Tail: substituteParamNames(v.Tail, subst)}
	case types.TRecord:
		return types.TRecord{Row: substituteParamNames(v.Row, subst)}
	default:
		return t
	}
}

// Closure computes the functional-dependency closure of a class over a
// starting set of "known" positions (spec §4.C step 2): repeatedly, for
// each FD whose determiners are already known, add its determined
// positions, to a fixed point.
func Closure(fds []FunctionalDependency, known map[int]bool) map[int]bool {
	closed := make(map[int]bool, len(known))
	for k := range known {
		closed[k] = true
	}
	changed := true
	for changed {
		changed = false
		for _, fd := range fds {
			if allKnown(fd.Determiners, closed) {
				for _, d := range fd.Determined {
					if !closed[d] {
						closed[d] = true
						changed = true
					}
				}
			}
		}
	}
	return closed
}

func allKnown(positions []int, known map[int]bool) bool {
	for _, p := range positions {
		if !known[p] {
			return false
		}
	}
	return true
}
