// Package terms is the dictionary-term AST the entailment loop builds
// as evidence (spec §4.E "Build the dictionary term"). It is the
// solver's output format, not a general expression language: there is
// no lexer or parser behind it, so terms carry no token/position info,
// unlike every expression node in the teacher's internal/ast package.
package terms

import (
	"fmt"

	"github.com/funvibe/entailer/internal/classes"
	"github.com/funvibe/entailer/internal/diagnostics"
	"github.com/funvibe/entailer/internal/instances"
	"github.com/funvibe/entailer/internal/types"
)

// Term is a closed sum of dictionary-construction shapes.
type Term interface {
	String() string
	isTerm()
}

// Var references a dictionary bound to an identifier — a witness
// parameter, a local instance, or a generalisation-obligation
// placeholder (spec §4.E "Var(n)", §4.E.6 "a Var referring to the
// fresh identifier").
type Var struct{ Name string }

func (Var) isTerm()          {}
func (v Var) String() string { return v.Name }

// App is term application: Func applied to Args left-to-right.
type App struct {
	Func Term
	Args []Term
}

func (App) isTerm() {}
func (a App) String() string {
	s := a.Func.String()
	for _, arg := range a.Args {
		s += " (" + arg.String() + ")"
	}
	return s
}

// Undefined is the placeholder value used by useEmpty — it must appear
// in the term to preserve evaluation order even though its value is
// never inspected (spec §4.E "the arguments must appear in the term to
// preserve evaluation order even though the value is a placeholder").
type Undefined struct{}

func (Undefined) isTerm()          {}
func (Undefined) String() string   { return "undefined" }

// Lambda is an ignored-argument thunk, \_ -> Body — used both by
// useEmpty (wrapping each placeholder arg) and by IsSymbolInstance's
// reflectSymbol field.
type Lambda struct{ Body Term }

func (Lambda) isTerm()          {}
func (l Lambda) String() string { return fmt.Sprintf("\\_ -> %s", l.Body) }

// StringLit is a string literal term (IsSymbolInstance's reflectSymbol
// value).
type StringLit struct{ Value string }

func (StringLit) isTerm()          {}
func (s StringLit) String() string { return fmt.Sprintf("%q", s.Value) }

// RecordLit is a record literal term built field-by-field — used for
// IsSymbolInstance's single-field dictionary.
type RecordLit struct{ Fields map[string]Term }

func (RecordLit) isTerm() {}
func (r RecordLit) String() string {
	s := "{ "
	first := true
	for k, v := range r.Fields {
		if !first {
			s += ", "
		}
		first = false
		s += k + ": " + v.String()
	}
	return s + " }"
}

// Accessor reads a named field off a term — used to walk a superclass
// Path from an outer dictionary down to the field holding the actual
// superclass dictionary (spec §4.E "Accessor(superclassFieldName(C,i), d) undefined").
type Accessor struct {
	Field string
	On    Term
}

func (Accessor) isTerm() {}
func (a Accessor) String() string {
	return fmt.Sprintf("%s.%s", a.On, a.Field)
}

// UseEmpty builds the (\_ -> undefined) arg_0 (\_ -> undefined) arg_1 ...
// chain for an EmptyClassInstance (spec §4.E "EmptyClassInstance ->
// useEmpty(args)").
func UseEmpty(args []Term) Term {
	var result Term = Undefined{}
	for _, arg := range args {
		result = App{Func: Lambda{Body: result}, Args: []Term{arg}}
	}
	return result
}

// AccessorChain wraps term d with Path, innermost superclass first,
// from the outside in (spec §4.E "wrap from the innermost outward").
func AccessorChain(path []SuperclassField, d Term) Term {
	for i := len(path) - 1; i >= 0; i-- {
		d = App{Func: Accessor{Field: path[i].FieldName, On: d}, Args: []Term{Undefined{}}}
	}
	return d
}

// SuperclassField names the field on a class dictionary holding its
// i'th superclass's dictionary.
type SuperclassField struct {
	FieldName string
}

// DeferredDict is the placeholder node left behind by a Deferred
// commit (spec §4.E.7): later solve-or-defer sweeps revisit it with
// deferErrors = true, and the final generalisation pass rewrites it
// with deferErrors = false.
type DeferredDict struct {
	Constraint classes.Constraint
	Context    *instances.Context
	Hints      []diagnostics.Hint
}

func (DeferredDict) isTerm() {}
func (d DeferredDict) String() string {
	return fmt.Sprintf("<deferred %s(%s)>", d.Constraint.ClassName, joinTypes(d.Constraint.Args))
}

func joinTypes(args []types.Type) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s
}
