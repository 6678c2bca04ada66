package solver

import (
	"github.com/funvibe/entailer/internal/classes"
	"github.com/funvibe/entailer/internal/instances"
)

// NewDictionaries implements spec §4.G's newDictionaries(path, ident,
// constraint): seed a dictionary for con itself plus one for every
// superclass reachable from it, each recording the Path of
// (className, superclassIndex) hops back to the concrete dictionary
// ident names.
func NewDictionaries(reg *classes.Registry, path []instances.PathStep, ident string, con classes.Constraint) []instances.Descriptor {
	here := instances.Descriptor{
		Evidence:      instances.Evidence{Kind: instances.NamedInstance, Name: ident},
		Path:          append([]instances.PathStep(nil), path...),
		ClassName:     con.ClassName,
		InstanceTypes: con.Args,
		Dependencies:  []instances.Requirement{},
	}
	out := []instances.Descriptor{here}

	cls, ok := reg.Lookup(con.ClassName)
	if !ok {
		return out
	}
	for i, super := range cls.SubstituteSupers(con.Args) {
		childPath := append(append([]instances.PathStep(nil), path...), instances.PathStep{ClassName: con.ClassName, SuperclassIdx: i})
		out = append(out, NewDictionaries(reg, childPath, ident, classes.Constraint{ClassName: super.ClassName, Args: super.Args, Info: super.Info})...)
	}
	return out
}
