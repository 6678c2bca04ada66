// Package types implements the recursive type-term sum described in
// spec.md §3 ("Type term"): type variables, unification unknowns,
// skolems, type constructors, applications, universal quantification, a
// kinded wrapper, type-level string literals, and rows (REmpty/RCons).
//
// The shape follows the teacher's internal/typesystem package (TVar,
// TCon, TApp, TForall, TRecord, Subst, FreeTypeVariables, Apply) but
// splits out what the teacher folds into a single TCon/TVar pair:
// spec §3 wants TUnknown (by integer) and Skolem (by integer + origin
// name) as first-class variants distinct from named type variables, and
// wants rows represented as an explicit cons-list rather than the
// teacher's map-based TRecord.Fields (see SPEC_FULL.md §D.1-2).
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/entailer/internal/config"
	"github.com/funvibe/entailer/internal/kinds"
)

// Type is the interface every type-term shape implements.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVariables() []TVar
	Kind() kinds.Kind
}

// Subst maps unification-unknown ids (see TUnknown) to their bound type.
// Skolems and named TVars are never substitution targets — only fresh
// unknowns are (spec §9 "Mutable solver state": "store the substitution
// as a dense map keyed by unknown id").
type Subst map[int64]Type

// Compose combines two substitutions so that applying the result is
// equivalent to applying s1 then s2 (teacher: typesystem.Subst.Compose).
func (s1 Subst) Compose(s2 Subst) Subst {
	out := Subst{}
	for k, v := range s2 {
		out[k] = v
	}
	for k, v := range s1 {
		out[k] = v.Apply(s2)
	}
	return out
}

// TVar is a named, universally-bound type variable — a binder
// introduced by an instance head or a forall, never itself a
// substitution target (only TUnknown is).
type TVar struct {
	Name    string
	KindVal kinds.Kind
}

func (t TVar) String() string { return t.Name }
func (t TVar) Kind() kinds.Kind {
	if t.KindVal == nil {
		return kinds.Star
	}
	return t.KindVal
}
func (t TVar) Apply(Subst) Type              { return t }
func (t TVar) FreeTypeVariables() []TVar     { return []TVar{t} }

// TUnknown is a unification unknown, identified by a monotonically
// increasing integer id minted by a fresh-name supply (spec §6
// freshType() -> TUnknown). It is the only substitution target.
type TUnknown struct {
	ID      int64
	KindVal kinds.Kind
}

func (t TUnknown) String() string {
	if config.IsTestMode {
		return "t?"
	}
	return fmt.Sprintf("t%d", t.ID)
}
func (t TUnknown) Kind() kinds.Kind {
	if t.KindVal == nil {
		return kinds.Star
	}
	return t.KindVal
}
func (t TUnknown) Apply(s Subst) Type {
	return applyUnknown(t, s, map[int64]bool{})
}
func (t TUnknown) FreeTypeVariables() []TVar { return nil }

func applyUnknown(t TUnknown, s Subst, visited map[int64]bool) Type {
	if visited[t.ID] {
		return t
	}
	repl, ok := s[t.ID]
	if !ok {
		return t
	}
	if u, ok := repl.(TUnknown); ok && u.ID == t.ID {
		return t
	}
	visited2 := make(map[int64]bool, len(visited)+1)
	for k, v := range visited {
		visited2[k] = v
	}
	visited2[t.ID] = true
	return applyWithCycleCheck(repl, s, visited2)
}

// applyWithCycleCheck is Apply's real recursive body; TUnknown.Apply and
// everything else that holds TUnknowns funnels through it so a cyclic
// substitution (shouldn't arise, but defends against it exactly like
// the teacher's ApplyWithCycleCheck) degrades to "return as-is" instead
// of looping forever.
func applyWithCycleCheck(t Type, s Subst, visited map[int64]bool) Type {
	switch v := t.(type) {
	case TUnknown:
		return applyUnknown(v, s, visited)
	default:
		return t.Apply(s)
	}
}

// Skolem is a rigid constant introduced to check a universally
// quantified constraint — "the same kind of thing as a TCon for
// matching purposes, but never unifies with anything but itself"
// (spec §3, §4.C typeHeadsAreEqual "same Skolem").
type Skolem struct {
	ID      int64
	Origin  string
	KindVal kinds.Kind
}

func (t Skolem) String() string {
	if config.IsTestMode {
		return fmt.Sprintf("$skolem_%s_?", t.Origin)
	}
	return fmt.Sprintf("$skolem_%s_%d", t.Origin, t.ID)
}
func (t Skolem) Kind() kinds.Kind {
	if t.KindVal == nil {
		return kinds.Star
	}
	return t.KindVal
}
func (t Skolem) Apply(Subst) Type          { return t }
func (t Skolem) FreeTypeVariables() []TVar { return nil }

// TCon is a type constructor referenced by (possibly qualified) name,
// e.g. Int, List, Coercible's Array.
type TCon struct {
	Name    string
	Module  string
	KindVal kinds.Kind
}

func (t TCon) String() string {
	if t.Module != "" {
		return t.Module + "." + t.Name
	}
	return t.Name
}
func (t TCon) Kind() kinds.Kind {
	if t.KindVal == nil {
		return kinds.Star
	}
	return t.KindVal
}
func (t TCon) Apply(Subst) Type          { return t }
func (t TCon) FreeTypeVariables() []TVar { return nil }

// TApp is type application: Constructor applied to Args left-to-right.
type TApp struct {
	Constructor Type
	Args        []Type
}

func (t TApp) String() string {
	if len(t.Args) == 0 {
		return t.Constructor.String()
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("(%s %s)", t.Constructor.String(), strings.Join(parts, " "))
}
func (t TApp) Kind() kinds.Kind {
	k := t.Constructor.Kind()
	for range t.Args {
		if arrow, ok := k.(kinds.KArrow); ok {
			k = arrow.Right
		} else {
			return kinds.Star
		}
	}
	return k
}
func (t TApp) Apply(s Subst) Type {
	newArgs := make([]Type, len(t.Args))
	for i, a := range t.Args {
		newArgs[i] = a.Apply(s)
	}
	return TApp{Constructor: t.Constructor.Apply(s), Args: newArgs}
}
func (t TApp) FreeTypeVariables() []TVar {
	vars := t.Constructor.FreeTypeVariables()
	for _, a := range t.Args {
		vars = append(vars, a.FreeTypeVariables()...)
	}
	return uniqueTVars(vars)
}

// KindedType is a transparent wrapper carrying an explicit annotated
// kind alongside a type (spec §3 "kinded wrapper"; §4.A walk strips it
// as transparent; §4.C strips it on both sides before comparing heads).
type KindedType struct {
	Type    Type
	KindVal kinds.Kind
}

func (t KindedType) String() string      { return t.Type.String() }
func (t KindedType) Kind() kinds.Kind    { return t.KindVal }
func (t KindedType) Apply(s Subst) Type  { return KindedType{Type: t.Type.Apply(s), KindVal: t.KindVal} }
func (t KindedType) FreeTypeVariables() []TVar { return t.Type.FreeTypeVariables() }

// StripKinded removes any number of nested KindedType wrappers.
func StripKinded(t Type) Type {
	for {
		kt, ok := t.(KindedType)
		if !ok {
			return t
		}
		t = kt.Type
	}
}

// TypeLevelString is a type-level string literal, the argument kind
// IsSymbol/SymbolCompare/SymbolAppend/SymbolCons all operate on.
type TypeLevelString struct {
	Value string
}

func (t TypeLevelString) String() string      { return fmt.Sprintf("%q", t.Value) }
func (t TypeLevelString) Kind() kinds.Kind    { return kinds.Star }
func (t TypeLevelString) Apply(Subst) Type    { return t }
func (t TypeLevelString) FreeTypeVariables() []TVar { return nil }

// REmpty is the empty row, the tail every closed row eventually reaches.
type REmpty struct{}

func (t REmpty) String() string      { return "()" }
func (t REmpty) Kind() kinds.Kind    { return kinds.Star }
func (t REmpty) Apply(Subst) Type    { return t }
func (t REmpty) FreeTypeVariables() []TVar { return nil }

// RCons is row-cons: a single labelled field prepended to a tail row.
// Rows are unordered by label (spec §3) — AlignRows (row_align.go)
// is the single place that knows how to compare two RCons chains
// up to label reordering; every other consumer (head matching,
// substitution verification, the Row* built-ins) calls it rather than
// walking RCons by hand.
type RCons struct {
	Label string
	Head  Type
	Tail  Type
}

func (t RCons) String() string {
	return fmt.Sprintf("(%s :: %s | %s)", t.Label, t.Head.String(), t.Tail.String())
}
func (t RCons) Kind() kinds.Kind { return kinds.Star }
func (t RCons) Apply(s Subst) Type {
	return RCons{Label: t.Label, Head: t.Head.Apply(s), Tail: t.Tail.Apply(s)}
}
func (t RCons) FreeTypeVariables() []TVar {
	return uniqueTVars(append(t.Head.FreeTypeVariables(), t.Tail.FreeTypeVariables()...))
}

// TForall is a universally quantified type (Rank-N), with optional
// skolem info recorded once the body has been checked under freshly
// minted skolems for Vars (spec §3: "universal quantification (binder +
// body + optional skolem info)").
type TForall struct {
	Vars    []TVar
	Type    Type
	Skolems []Skolem // parallel to Vars once instantiated for checking; nil before that
}

func (t TForall) String() string {
	names := make([]string, len(t.Vars))
	for i, v := range t.Vars {
		names[i] = v.Name
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(names, " "), t.Type.String())
}
func (t TForall) Kind() kinds.Kind { return kinds.Star }
func (t TForall) Apply(s Subst) Type {
	return TForall{Vars: t.Vars, Type: t.Type.Apply(s), Skolems: t.Skolems}
}
func (t TForall) FreeTypeVariables() []TVar {
	bound := make(map[string]bool, len(t.Vars))
	for _, v := range t.Vars {
		bound[v.Name] = true
	}
	var free []TVar
	for _, v := range t.Type.FreeTypeVariables() {
		if !bound[v.Name] {
			free = append(free, v)
		}
	}
	return uniqueTVars(free)
}

// TRecord is a concrete record type wrapping a row, whose tail may be
// open for row polymorphism. Unlike the teacher's map-keyed TRecord,
// the row contents live only in Row (an REmpty/RCons chain); String()
// lists its fields sorted by label.
type TRecord struct {
	Row Type // REmpty | RCons chain | TVar | TUnknown
}

func (t TRecord) String() string {
	fields, tail := RowToFields(t.Row)
	sort.Strings(fields.labelsSorted())
	parts := make([]string, 0, len(fields))
	for _, l := range fields.labelsSorted() {
		parts = append(parts, fmt.Sprintf("%s: %s", l, fields[l].String()))
	}
	suffix := ""
	if _, ok := tail.(REmpty); !ok {
		suffix = " | " + tail.String()
	}
	return fmt.Sprintf("{ %s%s }", strings.Join(parts, ", "), suffix)
}
func (t TRecord) Kind() kinds.Kind    { return kinds.Star }
func (t TRecord) Apply(s Subst) Type  { return TRecord{Row: t.Row.Apply(s)} }
func (t TRecord) FreeTypeVariables() []TVar { return t.Row.FreeTypeVariables() }

// rowFields is the label -> type map a flattened row's fixed fields are
// kept in (RowToFields, AlignRows, RowFromList).
type rowFields map[string]Type

func (f rowFields) labelsSorted() []string {
	ls := make([]string, 0, len(f))
	for l := range f {
		ls = append(ls, l)
	}
	sort.Strings(ls)
	return ls
}

// RowToFields flattens a row chain into its fixed fields and final tail.
func RowToFields(row Type) (rowFields, Type) {
	fields := rowFields{}
	for {
		switch r := row.(type) {
		case RCons:
			if _, exists := fields[r.Label]; !exists {
				fields[r.Label] = r.Head
			}
			row = r.Tail
		default:
			return fields, row
		}
	}
}

// RowFromList rebuilds a row chain from a fields map plus tail, sorted
// by label for deterministic output (used when a trailing instance
// variable "absorbs a remaining row", spec §4.C step 1).
func RowFromList(fields rowFields, tail Type) Type {
	labels := fields.labelsSorted()
	row := tail
	for i := len(labels) - 1; i >= 0; i-- {
		row = RCons{Label: labels[i], Head: fields[labels[i]], Tail: row}
	}
	return row
}

func uniqueTVars(vars []TVar) []TVar {
	seen := map[string]bool{}
	var out []TVar
	for _, v := range vars {
		if !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v)
		}
	}
	return out
}
