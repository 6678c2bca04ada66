// Package diagnostics defines the solver's error/warning kinds (spec
// §7) and the hint stack every error carries.
//
// The teacher's diagnostics package builds errors from a source token
// (diagnostics.NewError(code, token, msg)) because it always has a
// lexer position on hand. This core has no lexer or parser of its
// own — the thing it always has on hand instead is the constraint
// currently being solved — so NewError here takes an ErrorSolvingConstraint
// hint stack in place of a token, while keeping the same
// code/kind/message shape and Error() rendering style.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/entailer/internal/classes"
)

// Kind identifies which error/warning this is (spec §7 table).
type Kind int

const (
	UnknownClass Kind = iota
	NoInstanceFound
	OverlappingInstances
	PossiblyInfiniteInstance
	UserDefinedWarning
)

func (k Kind) String() string {
	switch k {
	case UnknownClass:
		return "UnknownClass"
	case NoInstanceFound:
		return "NoInstanceFound"
	case OverlappingInstances:
		return "OverlappingInstances"
	case PossiblyInfiniteInstance:
		return "PossiblyInfiniteInstance"
	case UserDefinedWarning:
		return "UserDefinedWarning"
	default:
		return "UnknownDiagnostic"
	}
}

// Hint is one frame of the ErrorSolvingConstraint stack pushed when
// entering solve for a constraint (spec §7 "Every error carries the
// current ErrorSolvingConstraint hint stack").
type Hint struct {
	ClassName string
	Args      []string // rendered type strings, not types.Type, to keep this package leaf-level
}

func (h Hint) String() string {
	return fmt.Sprintf("%s(%s)", h.ClassName, strings.Join(h.Args, ", "))
}

// Diagnostic is a solver error or warning.
type Diagnostic struct {
	Kind    Kind
	Message string
	Hints   []Hint // innermost-last, pushed on entry to solve

	// Evidences is populated for OverlappingInstances: the rendered
	// distinct evidences that conflict.
	Evidences []string
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(d.Kind.String())
	if d.Message != "" {
		b.WriteString(": ")
		b.WriteString(d.Message)
	}
	for i := len(d.Hints) - 1; i >= 0; i-- {
		b.WriteString("\n  while solving ")
		b.WriteString(d.Hints[i].String())
	}
	return b.String()
}

// NewError builds a Diagnostic carrying the given hint stack in place
// of the teacher's source token.
func NewError(kind Kind, hints []Hint, message string) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: message, Hints: append([]Hint(nil), hints...)}
}

// Unknown reports that class is not registered in the class metadata.
func Unknown(class string, hints []Hint) *Diagnostic {
	return NewError(UnknownClass, hints, fmt.Sprintf("class %q is not declared", class))
}

// NoInstance reports that no candidate dictionary was found for con.
func NoInstance(con classes.Constraint, hints []Hint) *Diagnostic {
	return NewError(NoInstanceFound, hints, fmt.Sprintf("no instance found for %s", renderConstraint(con)))
}

// Overlapping reports more than one non-derived, non-local candidate
// with distinct evidence for con.
func Overlapping(con classes.Constraint, evidences []string, hints []Hint) *Diagnostic {
	d := NewError(OverlappingInstances, hints, fmt.Sprintf("overlapping instances for %s", renderConstraint(con)))
	d.Evidences = evidences
	return d
}

// PossiblyInfinite reports that solving con exceeded the work budget.
func PossiblyInfinite(con classes.Constraint, hints []Hint) *Diagnostic {
	return NewError(PossiblyInfiniteInstance, hints, fmt.Sprintf("possibly infinite instance while solving %s", renderConstraint(con)))
}

// UserWarning is the non-fatal diagnostic committing a WarnInstance
// emits (spec §7: "Recorded, non-fatal").
func UserWarning(msg string, hints []Hint) *Diagnostic {
	return NewError(UserDefinedWarning, hints, msg)
}

func renderConstraint(con classes.Constraint) string {
	parts := make([]string, len(con.Args))
	for i, a := range con.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", con.ClassName, strings.Join(parts, ", "))
}
