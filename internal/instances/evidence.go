// Package instances implements the instance index and descriptor shape
// from spec.md §3 ("Instance descriptor (dictionary in scope)") and the
// lookup operation from §4.B ("Instance index"). It is the generalised,
// class-name-indexed analogue of the teacher's
// internal/symbols/symbol_table_instance_helpers.go, which keeps
// instances in a single implementations map; spec §3 additionally wants
// a three-level module -> class -> dictionary mapping so that scoped
// lookup (§4.B) can combine module contexts left-biased.
package instances

import "github.com/funvibe/entailer/internal/types"

// Evidence is the closed sum of dictionary identities (spec §3).
// NamedInstance is the only variant with a referable identifier;
// overlap checks compare Evidence equality, not descriptor identity.
type Evidence struct {
	Kind EvidenceKind
	// Populated per Kind:
	Name    string     // NamedInstance: qualified identifier
	Msg     string      // WarnInstance: warning message/type rendering
	Symbol  string     // IsSymbolInstance: the decoded literal
}

// EvidenceKind tags which Evidence variant is populated.
type EvidenceKind int

const (
	NamedInstance EvidenceKind = iota
	WarnInstance
	IsSymbolInstance
	EmptyClassInstance
)

// Equal reports whether two Evidence values refer to the same
// dictionary identity — the comparison overlap detection uses
// (spec §3: "Evidence ... Only NamedInstance has a referable identifier;
// overlap checks compare evidence equality").
func (e Evidence) Equal(o Evidence) bool {
	if e.Kind != o.Kind {
		return false
	}
	switch e.Kind {
	case NamedInstance:
		return e.Name == o.Name
	case WarnInstance:
		return e.Msg == o.Msg
	case IsSymbolInstance:
		return e.Symbol == o.Symbol
	case EmptyClassInstance:
		return true
	default:
		return false
	}
}

// PathStep is one (className, superclassIndex) hop from a dictionary in
// scope back to the concrete dictionary holding the field (spec §3,
// glossary "Path").
type PathStep struct {
	ClassName      string
	SuperclassIdx  int
}

// Descriptor is a dictionary available in scope (spec §3 "Instance
// descriptor").
type Descriptor struct {
	ChainIndex    *string // nil = not part of a named chain
	IndexInChain  int
	Evidence      Evidence
	Path          []PathStep // non-empty marks a superclass-derived descriptor
	ClassName     string
	InstanceTypes []types.Type

	// Dependencies distinguishes, per spec.md §9's open question:
	//   nil            -> local/assumed dictionary, never an overlap participant
	//   []Requirement{} -> user instance with zero subgoals
	// Never collapse these two states into one representation.
	Dependencies []Requirement
}

// Requirement is a subgoal an instance's dictionary constructor needs
// (spec §3 "dependencies (optional list of Constraints — subgoals)").
type Requirement struct {
	ClassName string
	Args      []types.Type
}

// IsLocalAssumption reports whether this descriptor is a local
// assumption that must never participate in overlap detection
// (spec invariant 3).
func (d Descriptor) IsLocalAssumption() bool { return d.Dependencies == nil }

// IsDerived reports whether this descriptor was produced by superclass
// expansion (spec invariant 2: non-empty Path is never an overlap
// participant either).
func (d Descriptor) IsDerived() bool { return len(d.Path) > 0 }
