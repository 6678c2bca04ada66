// Package fixtures loads a YAML-described type-class environment —
// classes, functional dependencies, instances, data-type/newtype
// constructor shapes, and a batch of wanted constraints — into this
// core's solver types. It plays the role internal/ext/config.go plays
// for the teacher's Go-extension manifests, adapted from "bindings for
// a Go package" to "an instance environment for the solver".
package fixtures

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/entailer/internal/builtins"
	"github.com/funvibe/entailer/internal/classes"
	"github.com/funvibe/entailer/internal/env"
	"github.com/funvibe/entailer/internal/instances"
	"github.com/funvibe/entailer/internal/roles"
	"github.com/funvibe/entailer/internal/types"
)

// TypeSpec is the YAML encoding of a types.Type: exactly one of its
// fields is set, chosen by which shape the fixture author means.
type TypeSpec struct {
	Var   string      `yaml:"var,omitempty"`
	Con   string      `yaml:"con,omitempty"`
	Module string     `yaml:"module,omitempty"`
	Str   *string     `yaml:"str,omitempty"`
	Empty bool        `yaml:"empty,omitempty"`
	App   *AppSpec    `yaml:"app,omitempty"`
	Row   *RowSpec    `yaml:"row,omitempty"`
}

// AppSpec is a type application: Ctor applied to Args left to right.
type AppSpec struct {
	Ctor TypeSpec   `yaml:"ctor"`
	Args []TypeSpec `yaml:"args"`
}

// RowSpec is one RCons cell: label : Head, with the remainder in Tail.
type RowSpec struct {
	Label string   `yaml:"label"`
	Head  TypeSpec `yaml:"head"`
	Tail  TypeSpec `yaml:"tail"`
}

// ToType converts a TypeSpec to a types.Type. An entirely empty spec
// is REmpty, the row terminator — the natural zero value for a YAML
// node nobody filled in.
func (s TypeSpec) ToType() types.Type {
	switch {
	case s.Var != "":
		return types.TVar{Name: s.Var}
	case s.Con != "":
		return types.TCon{Name: s.Con, Module: s.Module}
	case s.Str != nil:
		return types.TypeLevelString{Value: *s.Str}
	case s.App != nil:
		args := make([]types.Type, len(s.App.Args))
		for i, a := range s.App.Args {
			args[i] = a.ToType()
		}
		return types.TApp{Constructor: s.App.Ctor.ToType(), Args: args}
	case s.Row != nil:
		return types.RCons{Label: s.Row.Label, Head: s.Row.Head.ToType(), Tail: s.Row.Tail.ToType()}
	default:
		return types.REmpty{}
	}
}

// ConstraintSpec is one class(args…) constraint, used for supers,
// dependencies and wanted constraints alike.
type ConstraintSpec struct {
	Class string     `yaml:"class"`
	Args  []TypeSpec `yaml:"args"`
}

func (c ConstraintSpec) toConstraint() classes.Constraint {
	return classes.Constraint{ClassName: c.Class, Args: toTypes(c.Args)}
}

func (c ConstraintSpec) toRequirement() instances.Requirement {
	return instances.Requirement{ClassName: c.Class, Args: toTypes(c.Args)}
}

func toTypes(specs []TypeSpec) []types.Type {
	out := make([]types.Type, len(specs))
	for i, s := range specs {
		out[i] = s.ToType()
	}
	return out
}

// FunDepSpec is one functional dependency, determiners and determined
// given as 0-based positions into the class's declared parameters.
type FunDepSpec struct {
	Determiners []int `yaml:"determiners"`
	Determined  []int `yaml:"determined"`
}

// ClassSpec declares one type class.
type ClassSpec struct {
	Name    string           `yaml:"name"`
	Params  []string         `yaml:"params"`
	Supers  []ConstraintSpec `yaml:"supers,omitempty"`
	FunDeps []FunDepSpec     `yaml:"fundeps,omitempty"`
}

// DataTypeSpec declares a user data type's constructors, for role
// inference.
type DataTypeSpec struct {
	Name         string       `yaml:"name"`
	Params       []string     `yaml:"params"`
	Constructors [][]TypeSpec `yaml:"constructors"`
}

// NewtypeSpec declares a single-constructor, single-field newtype, for
// Coercible.
type NewtypeSpec struct {
	Name    string   `yaml:"name"`
	Params  []string `yaml:"params"`
	Wrapped TypeSpec `yaml:"wrapped"`
}

// SynonymSpec declares a type alias.
type SynonymSpec struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params"`
	Body   TypeSpec `yaml:"body"`
}

// InstanceSpec declares one instance descriptor to seed into the
// environment's instance context.
type InstanceSpec struct {
	Class           string           `yaml:"class"`
	Ident           string           `yaml:"ident"`
	Module          string           `yaml:"module,omitempty"`
	ChainIndex      string           `yaml:"chainIndex,omitempty"`
	IndexInChain    int              `yaml:"indexInChain,omitempty"`
	Args            []TypeSpec       `yaml:"args"`
	Dependencies    []ConstraintSpec `yaml:"dependencies,omitempty"`
	LocalAssumption bool             `yaml:"localAssumption,omitempty"`
}

// Doc is the top-level shape of one fixture file.
type Doc struct {
	Module    string           `yaml:"module"`
	Classes   []ClassSpec      `yaml:"classes,omitempty"`
	DataTypes []DataTypeSpec   `yaml:"dataTypes,omitempty"`
	Newtypes  []NewtypeSpec    `yaml:"newtypes,omitempty"`
	Synonyms  []SynonymSpec    `yaml:"synonyms,omitempty"`
	Instances []InstanceSpec   `yaml:"instances,omitempty"`
	Wanted    []ConstraintSpec `yaml:"wanted,omitempty"`
}

// Fixture is a loaded environment plus the batch of wanted constraints
// the file asked to have solved.
type Fixture struct {
	Env     *env.Environment
	Context *instances.Context
	Wanted  []classes.Constraint
}

// Load reads and parses a YAML fixture file from path.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses fixture YAML content from bytes. path is used only for
// error messages.
func Parse(data []byte, path string) (*Fixture, error) {
	var doc Doc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}

	reg := classes.NewRegistry()
	for _, c := range doc.Classes {
		reg.Register(classes.Class{
			Name:       c.Name,
			ParamNames: c.Params,
			Supers:     toClassConstraints(c.Supers),
			FunDeps:    toFunDeps(c.FunDeps),
		})
	}

	e := env.New(doc.Module, reg)
	for _, dt := range doc.DataTypes {
		ctors := make([][]types.Type, len(dt.Constructors))
		for i, ctor := range dt.Constructors {
			ctors[i] = toTypes(ctor)
		}
		e.RegisterDataType(dt.Name, roles.DataType{Params: dt.Params, Constructors: ctors})
	}
	for _, nt := range doc.Newtypes {
		e.RegisterNewtype(nt.Name, builtins.Newtype{Params: nt.Params, Wrapped: nt.Wrapped.ToType()})
	}
	for _, sy := range doc.Synonyms {
		e.RegisterSynonym(sy.Name, env.Synonym{Params: sy.Params, Body: sy.Body.ToType()})
	}

	ctx := instances.NewContext()
	for _, inst := range doc.Instances {
		deps := toRequirements(inst.Dependencies)
		if inst.LocalAssumption {
			deps = nil
		}
		d := instances.Descriptor{
			Evidence:      instances.Evidence{Kind: instances.NamedInstance, Name: inst.Ident},
			ClassName:     inst.Class,
			InstanceTypes: toTypes(inst.Args),
			Dependencies:  deps,
			IndexInChain:  inst.IndexInChain,
		}
		if inst.ChainIndex != "" {
			ci := inst.ChainIndex
			d.ChainIndex = &ci
		}
		module := inst.Module
		if module == "" {
			module = doc.Module
		}
		ctx.Add(module, inst.Class, inst.Ident, d)
	}

	wanted := make([]classes.Constraint, len(doc.Wanted))
	for i, w := range doc.Wanted {
		wanted[i] = w.toConstraint()
	}

	return &Fixture{Env: e, Context: ctx, Wanted: wanted}, nil
}

func toClassConstraints(specs []ConstraintSpec) []classes.Constraint {
	out := make([]classes.Constraint, len(specs))
	for i, s := range specs {
		out[i] = s.toConstraint()
	}
	return out
}

func toFunDeps(specs []FunDepSpec) []classes.FunctionalDependency {
	out := make([]classes.FunctionalDependency, len(specs))
	for i, s := range specs {
		out[i] = classes.FunctionalDependency{Determiners: s.Determiners, Determined: s.Determined}
	}
	return out
}

func toRequirements(specs []ConstraintSpec) []instances.Requirement {
	out := make([]instances.Requirement, len(specs))
	for i, s := range specs {
		out[i] = s.toRequirement()
	}
	return out
}
