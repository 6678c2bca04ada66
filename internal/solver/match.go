// Package solver implements spec.md §4.C head matching, §4.E the
// entailment loop, and §4.G superclass expansion — the generalised,
// class-name-indexed analogue of the teacher's
// internal/analyzer/inference_solver.go SolveConstraints/SolveWitness
// pair. Where the teacher interleaves unify-constraint simplification
// and implements-constraint resolution in one iterative fixed-point
// loop over a flat constraint slice, this package separates head
// matching (match.go) from the per-constraint commit procedure
// (entail.go) and the superclass expansion helper (superclass.go), per
// spec §4's own component boundaries.
package solver

import (
	"github.com/funvibe/entailer/internal/classes"
	"github.com/funvibe/entailer/internal/types"
)

// MatchResult is the three-point lattice Apart < Unknown < Match
// (spec §4.C).
type MatchResult int

const (
	Apart MatchResult = iota
	Unknown
	Match
)

func (m MatchResult) String() string {
	switch m {
	case Apart:
		return "Apart"
	case Unknown:
		return "Unknown"
	case Match:
		return "Match"
	default:
		return "?"
	}
}

// Combine folds two results monoidally: Apart is absorbing, Unknown is
// next, Match is the identity.
func (m MatchResult) Combine(o MatchResult) MatchResult {
	if m == Apart || o == Apart {
		return Apart
	}
	if m == Unknown || o == Unknown {
		return Unknown
	}
	return Match
}

// Matching is the union of per-variable binding lists a match produces
// (spec §4.C step 3): an instance-head variable may be bound more than
// once across positions, and those bindings must later agree.
type Matching map[string][]types.Type

func mergeInto(dst, src Matching) {
	for k, vs := range src {
		dst[k] = append(dst[k], vs...)
	}
}

// Outcome is the result of matching one descriptor's instance types
// against a wanted constraint's argument types.
type Outcome struct {
	Result   MatchResult
	Matching Matching
}

// MatchHead implements spec §4.C's three-step match(fdeps, descriptor,
// wantedTypes) operation, given the class's declared functional
// dependencies and the descriptor's instance-head types.
func MatchHead(fds []classes.FunctionalDependency, instanceTypes, wantedTypes []types.Type) Outcome {
	n := len(wantedTypes)
	perResult := make([]MatchResult, n)
	perMatching := make([]Matching, n)
	known := map[int]bool{}

	for i := 0; i < n; i++ {
		var inst types.Type = types.REmpty{}
		if i < len(instanceTypes) {
			inst = instanceTypes[i]
		}
		r, m := typeHeadsAreEqual(wantedTypes[i], inst)
		perResult[i] = r
		perMatching[i] = m
		if r == Match {
			known[i] = true
		}
	}

	closed := classes.Closure(fds, known)
	if len(closed) != n {
		for i := 0; i < n; i++ {
			if perResult[i] == Apart {
				return Outcome{Result: Apart}
			}
		}
		return Outcome{Result: Unknown}
	}

	verify := Matching{}
	for i := range known {
		mergeInto(verify, perMatching[i])
	}

	verdict := Match
	for _, bindings := range verify {
		for k := 1; k < len(bindings); k++ {
			verdict = verdict.Combine(typesAreEqual(bindings[0], bindings[k]))
		}
	}
	if verdict == Apart {
		return Outcome{Result: Apart}
	}

	final := Matching{}
	for i := 0; i < n; i++ {
		mergeInto(final, perMatching[i])
	}
	return Outcome{Result: verdict, Matching: final}
}

// typeHeadsAreEqual implements §4.C step 1.
func typeHeadsAreEqual(wanted, instance types.Type) (MatchResult, Matching) {
	wanted = types.StripKinded(wanted)
	instance = types.StripKinded(instance)

	// Variables in the instance head are binders, not part of the
	// wanted side, regardless of what wanted is.
	if v, ok := instance.(types.TVar); ok {
		return Match, Matching{v.Name: {wanted}}
	}

	switch w := wanted.(type) {
	case types.TUnknown:
		if iu, ok := instance.(types.TUnknown); ok && iu.ID == w.ID {
			return Match, Matching{}
		}
		return Unknown, Matching{}

	case types.Skolem:
		if is, ok := instance.(types.Skolem); ok && is.ID == w.ID {
			return Match, Matching{}
		}
		return Apart, Matching{}

	case types.TCon:
		if ic, ok := instance.(types.TCon); ok && ic.Name == w.Name {
			return Match, Matching{}
		}
		return Apart, Matching{}

	case types.TypeLevelString:
		if is, ok := instance.(types.TypeLevelString); ok && is.Value == w.Value {
			return Match, Matching{}
		}
		return Apart, Matching{}

	case types.REmpty:
		if _, ok := instance.(types.REmpty); ok {
			return Match, Matching{}
		}
		return Apart, Matching{}

	case types.TApp:
		ia, ok := instance.(types.TApp)
		if !ok || len(w.Args) != len(ia.Args) {
			return Apart, Matching{}
		}
		result, matching := typeHeadsAreEqual(w.Constructor, ia.Constructor)
		for i := range w.Args {
			r, m := typeHeadsAreEqual(w.Args[i], ia.Args[i])
			result = result.Combine(r)
			mergeInto(matching, m)
		}
		return result, matching

	case types.RCons:
		return matchRows(w, instance)

	default:
		return Apart, Matching{}
	}
}

// matchRows implements the RCons-vs-RCons bullet: common labels
// recurse, and the leftover wanted fields plus wanted's own tail are
// compared, as one synthetic row, against the instance's tail — which
// reuses the ordinary "(anything, TypeVar v)" binder rule to implement
// "a trailing TypeVar v on the instance side absorbs a remaining row".
func matchRows(wanted, instance types.Type) (MatchResult, Matching) {
	al := types.AlignRows(wanted, instance)

	result := Match
	matching := Matching{}
	for _, c := range al.Common {
		r, m := typeHeadsAreEqual(c.Left, c.Right)
		result = result.Combine(r)
		mergeInto(matching, m)
	}
	if len(al.RightOnly) > 0 {
		// The instance declares fields the wanted row doesn't have.
		result = result.Combine(Apart)
	}

	leftoverWanted := al.LeftOnlyRow(al.LeftTail)
	r, m := typeHeadsAreEqual(leftoverWanted, al.RightTail)
	result = result.Combine(r)
	mergeInto(matching, m)
	return result, matching
}

// typesAreEqual implements §4.C step 3's pairwise consistency check:
// strict head-equality except a Skolem on either side yields Unknown
// (never provably apart), kinded wrappers are transparent, and rows
// align as in matchRows.
func typesAreEqual(a, b types.Type) MatchResult {
	a = types.StripKinded(a)
	b = types.StripKinded(b)

	if _, ok := a.(types.Skolem); ok {
		return Unknown
	}
	if _, ok := b.(types.Skolem); ok {
		return Unknown
	}

	switch av := a.(type) {
	case types.TVar:
		if bv, ok := b.(types.TVar); ok && bv.Name == av.Name {
			return Match
		}
		return Apart
	case types.TUnknown:
		if bv, ok := b.(types.TUnknown); ok && bv.ID == av.ID {
			return Match
		}
		return Apart
	case types.TCon:
		if bv, ok := b.(types.TCon); ok && bv.Name == av.Name {
			return Match
		}
		return Apart
	case types.TypeLevelString:
		if bv, ok := b.(types.TypeLevelString); ok && bv.Value == av.Value {
			return Match
		}
		return Apart
	case types.REmpty:
		if _, ok := b.(types.REmpty); ok {
			return Match
		}
		return Apart
	case types.TApp:
		bv, ok := b.(types.TApp)
		if !ok || len(av.Args) != len(bv.Args) {
			return Apart
		}
		res := typesAreEqual(av.Constructor, bv.Constructor)
		for i := range av.Args {
			res = res.Combine(typesAreEqual(av.Args[i], bv.Args[i]))
		}
		return res
	case types.RCons:
		return rowsAreEqual(av, b)
	default:
		return Apart
	}
}

func rowsAreEqual(a, b types.Type) MatchResult {
	al := types.AlignRows(a, b)
	res := Match
	for _, c := range al.Common {
		res = res.Combine(typesAreEqual(c.Left, c.Right))
	}
	if len(al.LeftOnly) > 0 || len(al.RightOnly) > 0 {
		res = res.Combine(Apart)
	}
	return res.Combine(typesAreEqual(al.LeftTail, al.RightTail))
}
