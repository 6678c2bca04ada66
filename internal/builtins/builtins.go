// Package builtins implements spec.md §4.D: the solver-synthesised
// decision procedures for Coercible, the Symbol family, and the row
// operators. Each one is consulted before the generic instance-context
// search (internal/solver's candidate-gathering step) and, when it has
// an opinion, short-circuits it entirely.
//
// The teacher has no such per-class dispatch — internal/analyzer never
// special-cases a trait name — but its registerBuiltinsToPrelude
// (internal/analyzer/builtins.go) shows the house style for "things the
// solver treats as always-available without user declarations": a
// table keyed by name, consulted before falling back to user-declared
// instances. This package generalises that shape from trait prelude
// registration to per-query dictionary synthesis.
package builtins

import (
	"sort"
	"strings"

	"github.com/funvibe/entailer/internal/config"
	"github.com/funvibe/entailer/internal/instances"
	"github.com/funvibe/entailer/internal/roles"
	"github.com/funvibe/entailer/internal/types"
)

// Newtype describes a single-constructor, single-field data type for
// Coercible's newtype-unwrapping rule.
type Newtype struct {
	Params  []string
	Wrapped types.Type
}

// Env is everything a built-in solver needs from the surrounding
// environment (spec §6's "types", "newtypeConstructor" and
// "typeSynonyms" collaborators, restricted to what this package uses).
type Env interface {
	// ExpandSynonym expands type aliases in t. ok=false means
	// expansion failed (e.g. an unresolvable alias head), in which case
	// the built-in must report "no opinion".
	ExpandSynonym(t types.Type) (expanded types.Type, ok bool)
	// Newtype looks up a newtype by its constructor name.
	Newtype(name string) (Newtype, bool)
	// Roles returns the role solver used for Coercible's congruence case.
	Roles() *roles.Solver
	// Context is the instance context Warn searches for existing
	// in-scope dictionaries.
	Context() *instances.Context
	// ScopeModules is the module scope Warn's context search uses.
	ScopeModules() []string
	// Fresh mints a new unification unknown.
	Fresh() types.TUnknown
}

// Dispatch runs the built-in solver for class (if any) over args,
// returning the candidate descriptors it produces and whether it had
// an opinion at all. found=false means "no opinion, continue the
// generic candidate search" (spec §4.D).
func Dispatch(class string, args []types.Type, env Env) (candidates []instances.Descriptor, found bool) {
	switch class {
	case config.ClassWarn:
		return warn(args, env)
	case config.ClassCoercible:
		return single(coercible(args, env))
	case config.ClassIsSymbol:
		return single(isSymbol(args))
	case config.ClassSymbolCompare:
		return single(symbolCompare(args))
	case config.ClassSymbolAppend:
		return single(symbolAppend(args))
	case config.ClassSymbolCons:
		return single(symbolCons(args))
	case config.ClassRowUnion:
		return single(rowUnion(args, env))
	case config.ClassRowNub:
		return single(rowNub(args))
	case config.ClassRowLacks:
		return single(rowLacks(args))
	case config.ClassRowCons:
		return single(rowCons(args))
	case config.ClassRowToList:
		return single(rowToList(args))
	default:
		return nil, false
	}
}

func single(d instances.Descriptor, ok bool) ([]instances.Descriptor, bool) {
	if !ok {
		return nil, false
	}
	return []instances.Descriptor{d}, true
}

func emptyClassDescriptor(class string, instanceTypes []types.Type, deps []instances.Requirement) instances.Descriptor {
	if deps == nil {
		deps = []instances.Requirement{}
	}
	return instances.Descriptor{
		ClassName:     class,
		InstanceTypes: instanceTypes,
		Evidence:      instances.Evidence{Kind: instances.EmptyClassInstance},
		Dependencies:  deps,
	}
}

// warn always has an opinion: the existing in-scope Warn dictionaries
// plus one freshly synthesised WarnInstance carrying the message type,
// so a deferred warning can always be re-raised (spec §4.D "Warn").
func warn(args []types.Type, env Env) ([]instances.Descriptor, bool) {
	existing := env.Context().FindCandidates(config.ClassWarn, env.ScopeModules())
	msg := ""
	if len(args) > 0 {
		msg = args[0].String()
	}
	fresh := instances.Descriptor{
		ClassName:     config.ClassWarn,
		InstanceTypes: args,
		Evidence:      instances.Evidence{Kind: instances.WarnInstance, Msg: msg},
		Dependencies:  []instances.Requirement{},
	}
	out := make([]instances.Descriptor, 0, len(existing)+1)
	out = append(out, existing...)
	out = append(out, fresh)
	return out, true
}

// coercible implements spec §4.D's "Coercible(a, b)".
func coercible(args []types.Type, env Env) (instances.Descriptor, bool) {
	if len(args) != 2 {
		return instances.Descriptor{}, false
	}
	a, okA := env.ExpandSynonym(args[0])
	b, okB := env.ExpandSynonym(args[1])
	if !okA || !okB {
		return instances.Descriptor{}, false
	}
	if typesSyntacticallyEqual(a, b) {
		return emptyClassDescriptor(config.ClassCoercible, args, nil), true
	}
	if deps, ok := reduceCoercible(a, b, env); ok {
		return emptyClassDescriptor(config.ClassCoercible, args, deps), true
	}
	if deps, ok := reduceCoercible(b, a, env); ok {
		return emptyClassDescriptor(config.ClassCoercible, args, deps), true
	}
	return instances.Descriptor{}, false
}

// reduceCoercible implements the "reduce(a, b)" helper: newtype
// unwrapping on a (whether a is a bare constructor or applied to
// arguments), or structural congruence when a and b share a head
// constructor.
func reduceCoercible(a, b types.Type, env Env) ([]instances.Requirement, bool) {
	aHead, aArgs := headAndArgs(a)
	if aTCon, ok := aHead.(types.TCon); ok {
		if nt, ok := env.Newtype(aTCon.Name); ok {
			subst := make(map[string]types.Type, len(nt.Params))
			for i, p := range nt.Params {
				if i < len(aArgs) {
					subst[p] = aArgs[i]
				}
			}
			wrapped := substituteNames(nt.Wrapped, subst)
			return []instances.Requirement{{ClassName: config.ClassCoercible, Args: []types.Type{wrapped, b}}}, true
		}
	}

	bHead, bArgs := headAndArgs(b)
	aTCon, aOk := aHead.(types.TCon)
	bTCon, bOk := bHead.(types.TCon)
	if aOk && bOk && aTCon.Name == bTCon.Name && len(aArgs) == len(bArgs) {
		prs := env.Roles().RolesOf(aTCon.Name)
		var deps []instances.Requirement
		for i := range aArgs {
			if i < len(prs) && prs[i].Role != roles.Representational {
				continue
			}
			deps = append(deps, instances.Requirement{
				ClassName: config.ClassCoercible,
				Args:      []types.Type{aArgs[i], bArgs[i]},
			})
		}
		return deps, true
	}

	return nil, false
}

// headAndArgs decomposes a type into its head constructor/variable and
// its applied arguments, treating a bare (non-TApp) type as having zero
// arguments.
func headAndArgs(t types.Type) (types.Type, []types.Type) {
	t = types.StripKinded(t)
	if app, ok := t.(types.TApp); ok {
		return app.Constructor, app.Args
	}
	return t, nil
}

func typesSyntacticallyEqual(a, b types.Type) bool {
	return a.String() == b.String()
}

// substituteNames replaces bare TVars named after a newtype's declared
// parameter with the concrete argument supplied at the use site. This
// is a name-keyed substitution, distinct from types.Subst (which is
// keyed by unification-unknown id) — exactly the same distinction
// internal/classes draws for superclass substitution.
func substituteNames(t types.Type, subst map[string]types.Type) types.Type {
	switch v := t.(type) {
	case types.TVar:
		if repl, ok := subst[v.Name]; ok {
			return repl
		}
		return v
	case types.TApp:
		newArgs := make([]types.Type, len(v.Args))
		for i, a := range v.Args {
			newArgs[i] = substituteNames(a, subst)
		}
		return types.TApp{Constructor: substituteNames(v.Constructor, subst), Args: newArgs}
	case types.KindedType:
		return types.KindedType{Type: substituteNames(v.Type, subst), KindVal: v.KindVal}
	case types.RCons:
		return types.RCons{Label: v.Label, Head: substituteNames(v.Head, subst), Tail: substituteNames(v.Tail, subst)}
	case types.TRecord:
		return types.TRecord{Row: substituteNames(v.Row, subst)}
	default:
		return t
	}
}

// isSymbol implements "IsSymbol s".
func isSymbol(args []types.Type) (instances.Descriptor, bool) {
	if len(args) != 1 {
		return instances.Descriptor{}, false
	}
	lit, ok := types.StripKinded(args[0]).(types.TypeLevelString)
	if !ok {
		return instances.Descriptor{}, false
	}
	return instances.Descriptor{
		ClassName:     config.ClassIsSymbol,
		InstanceTypes: args,
		Evidence:      instances.Evidence{Kind: instances.IsSymbolInstance, Symbol: lit.Value},
		Dependencies:  []instances.Requirement{},
	}, true
}

// symbolLiteral reports the decoded string if t is a literal symbol.
func symbolLiteral(t types.Type) (string, bool) {
	lit, ok := types.StripKinded(t).(types.TypeLevelString)
	if !ok {
		return "", false
	}
	return lit.Value, true
}

// symbolCompare implements "SymbolCompare(lhs, rhs, _)".
func symbolCompare(args []types.Type) (instances.Descriptor, bool) {
	if len(args) != 3 {
		return instances.Descriptor{}, false
	}
	lhs, ok1 := symbolLiteral(args[0])
	rhs, ok2 := symbolLiteral(args[1])
	if !ok1 || !ok2 {
		return instances.Descriptor{}, false
	}
	var ordering string
	switch {
	case lhs < rhs:
		ordering = "LT"
	case lhs > rhs:
		ordering = "GT"
	default:
		ordering = "EQ"
	}
	committed := []types.Type{args[0], args[1], types.TCon{Name: ordering}}
	return emptyClassDescriptor(config.ClassSymbolCompare, committed, nil), true
}

// symbolAppend implements "SymbolAppend(a, b, c)": a partial operation
// over literals, deriving whichever single position is missing, or
// (an extension consistent with the spec's silence on the fully-known
// case) verifying consistency when all three are already literal.
func symbolAppend(args []types.Type) (instances.Descriptor, bool) {
	if len(args) != 3 {
		return instances.Descriptor{}, false
	}
	a, aOk := symbolLiteral(args[0])
	b, bOk := symbolLiteral(args[1])
	c, cOk := symbolLiteral(args[2])

	switch {
	case aOk && bOk && cOk:
		if a+b != c {
			return instances.Descriptor{}, false
		}
		return emptyClassDescriptor(config.ClassSymbolAppend, args, nil), true
	case aOk && bOk && !cOk:
		committed := []types.Type{args[0], args[1], types.TypeLevelString{Value: a + b}}
		return emptyClassDescriptor(config.ClassSymbolAppend, committed, nil), true
	case aOk && !bOk && cOk:
		if !strings.HasPrefix(c, a) {
			return instances.Descriptor{}, false
		}
		committed := []types.Type{args[0], types.TypeLevelString{Value: strings.TrimPrefix(c, a)}, args[2]}
		return emptyClassDescriptor(config.ClassSymbolAppend, committed, nil), true
	case !aOk && bOk && cOk:
		if !strings.HasSuffix(c, b) {
			return instances.Descriptor{}, false
		}
		committed := []types.Type{types.TypeLevelString{Value: strings.TrimSuffix(c, b)}, args[1], args[2]}
		return emptyClassDescriptor(config.ClassSymbolAppend, committed, nil), true
	default:
		return instances.Descriptor{}, false
	}
}

// symbolCons implements "SymbolCons(h, t, full)".
func symbolCons(args []types.Type) (instances.Descriptor, bool) {
	if len(args) != 3 {
		return instances.Descriptor{}, false
	}
	h, hOk := symbolLiteral(args[0])
	t, tOk := symbolLiteral(args[1])
	full, fullOk := symbolLiteral(args[2])

	switch {
	case hOk && tOk && fullOk:
		if len(h) != 1 || h+t != full {
			return instances.Descriptor{}, false
		}
		return emptyClassDescriptor(config.ClassSymbolCons, args, nil), true
	case hOk && tOk && !fullOk:
		if len(h) != 1 {
			return instances.Descriptor{}, false
		}
		committed := []types.Type{args[0], args[1], types.TypeLevelString{Value: h + t}}
		return emptyClassDescriptor(config.ClassSymbolCons, committed, nil), true
	case !hOk && !tOk && fullOk:
		if len(full) == 0 {
			return instances.Descriptor{}, false
		}
		committed := []types.Type{
			types.TypeLevelString{Value: full[:1]},
			types.TypeLevelString{Value: full[1:]},
			args[2],
		}
		return emptyClassDescriptor(config.ClassSymbolCons, committed, nil), true
	default:
		return instances.Descriptor{}, false
	}
}

// rowUnion implements "RowUnion(l, r, u)".
func rowUnion(args []types.Type, env Env) (instances.Descriptor, bool) {
	if len(args) != 3 {
		return instances.Descriptor{}, false
	}
	l, r := args[0], args[1]
	fixed, tail := types.RowToFields(l)

	// Left-biased: a label fixed already declares shadows the same
	// label on the right, so u never carries it twice (spec §4.D
	// testable property #7).
	rFields, rTail := types.RowToFields(r)
	for label := range fixed {
		delete(rFields, label)
	}
	strippedR := types.RowFromList(rFields, rTail)

	if _, closed := tail.(types.REmpty); closed {
		u := types.RowFromList(fixed, strippedR)
		committed := []types.Type{args[0], args[1], u}
		return emptyClassDescriptor(config.ClassRowUnion, committed, nil), true
	}

	if len(fixed) == 0 {
		return instances.Descriptor{}, false
	}

	freshVar := env.Fresh()
	u := types.RowFromList(fixed, freshVar)
	committed := []types.Type{args[0], args[1], u}
	deps := []instances.Requirement{{
		ClassName: config.ClassRowUnion,
		Args:      []types.Type{tail, strippedR, freshVar},
	}}
	return emptyClassDescriptor(config.ClassRowUnion, committed, deps), true
}

// rowNub implements "RowNub(r, _)".
func rowNub(args []types.Type) (instances.Descriptor, bool) {
	if len(args) != 2 {
		return instances.Descriptor{}, false
	}
	fields, tail := types.RowToFields(args[0])
	if _, closed := tail.(types.REmpty); !closed {
		return instances.Descriptor{}, false
	}
	result := types.RowFromList(fields, types.REmpty{})
	committed := []types.Type{args[0], result}
	return emptyClassDescriptor(config.ClassRowNub, committed, nil), true
}

// rowLacks implements "RowLacks(sym, r)".
func rowLacks(args []types.Type) (instances.Descriptor, bool) {
	if len(args) != 2 {
		return instances.Descriptor{}, false
	}
	sym, ok := symbolLiteral(args[0])
	if !ok {
		return instances.Descriptor{}, false
	}
	fields, tail := types.RowToFields(args[1])
	if _, present := fields[sym]; present {
		return instances.Descriptor{}, false
	}
	if _, closed := tail.(types.REmpty); closed {
		return emptyClassDescriptor(config.ClassRowLacks, args, nil), true
	}
	if len(fields) == 0 {
		return instances.Descriptor{}, false
	}
	deps := []instances.Requirement{{ClassName: config.ClassRowLacks, Args: []types.Type{args[0], tail}}}
	return emptyClassDescriptor(config.ClassRowLacks, args, deps), true
}

// rowCons implements "RowCons(sym, ty, r, _)".
func rowCons(args []types.Type) (instances.Descriptor, bool) {
	if len(args) != 4 {
		return instances.Descriptor{}, false
	}
	sym, ok := symbolLiteral(args[0])
	if !ok {
		return instances.Descriptor{}, false
	}
	result := types.RCons{Label: sym, Head: args[1], Tail: args[2]}
	committed := []types.Type{args[0], args[1], args[2], result}
	return emptyClassDescriptor(config.ClassRowCons, committed, nil), true
}

// rowToList implements "RowToList(r, _)", building a
// RowListCons/RowListNil constructor chain sorted by label.
func rowToList(args []types.Type) (instances.Descriptor, bool) {
	if len(args) != 2 {
		return instances.Descriptor{}, false
	}
	fields, tail := types.RowToFields(args[0])
	if _, closed := tail.(types.REmpty); !closed {
		return instances.Descriptor{}, false
	}
	labels := make([]string, 0, len(fields))
	for l := range fields {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	var list types.Type = types.TCon{Name: "RowListNil"}
	for i := len(labels) - 1; i >= 0; i-- {
		list = types.TApp{
			Constructor: types.TCon{Name: "RowListCons"},
			Args: []types.Type{
				types.TypeLevelString{Value: labels[i]},
				fields[labels[i]],
				list,
			},
		}
	}
	committed := []types.Type{args[0], list}
	return emptyClassDescriptor(config.ClassRowToList, committed, nil), true
}
