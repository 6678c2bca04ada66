// Package config holds process-wide switches for the entailment solver.
//
// These mirror the teacher toolchain's internal/config package: small
// mutable globals set once at startup, read everywhere, rather than
// threaded through every call site.
package config

// IsTestMode normalises non-deterministic names (fresh unification
// unknowns and skolem constants) in String() output so golden-file and table-driven tests stay
// deterministic across runs. Set once at process startup.
var IsTestMode = false

// MaxSolverWork bounds the recursion depth of a single top-level
// entailment search (work > 1000 aborts the constraint as possibly
// infinite). Exposed as a variable, not a const, so tests can shrink it
// to exercise the guard cheaply.
var MaxSolverWork = 1000

// Built-in class names the solver treats specially. The built-in
// dispatcher is consulted for these before the generic candidate
// search; when it has no opinion, the generic search runs as for any
// other class.
const (
	ClassCoercible     = "Coercible"
	ClassWarn          = "Warn"
	ClassIsSymbol      = "IsSymbol"
	ClassSymbolCompare = "SymbolCompare"
	ClassSymbolAppend  = "SymbolAppend"
	ClassSymbolCons    = "SymbolCons"
	ClassRowUnion      = "RowUnion"
	ClassRowNub        = "RowNub"
	ClassRowLacks      = "RowLacks"
	ClassRowCons       = "RowCons"
	ClassRowToList     = "RowToList"
)

// BuiltinClasses lists every class name intercepted by a built-in
// solver.
var BuiltinClasses = []string{
	ClassCoercible,
	ClassWarn,
	ClassIsSymbol,
	ClassSymbolCompare,
	ClassSymbolAppend,
	ClassSymbolCons,
	ClassRowUnion,
	ClassRowNub,
	ClassRowLacks,
	ClassRowCons,
	ClassRowToList,
}

// IsBuiltinClass reports whether name names a solver-synthesised class.
func IsBuiltinClass(name string) bool {
	for _, c := range BuiltinClasses {
		if c == name {
			return true
		}
	}
	return false
}
