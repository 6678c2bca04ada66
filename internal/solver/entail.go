package solver

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/funvibe/entailer/internal/builtins"
	"github.com/funvibe/entailer/internal/classes"
	"github.com/funvibe/entailer/internal/config"
	"github.com/funvibe/entailer/internal/diagnostics"
	"github.com/funvibe/entailer/internal/instances"
	"github.com/funvibe/entailer/internal/roles"
	"github.com/funvibe/entailer/internal/terms"
	"github.com/funvibe/entailer/internal/types"
)

// Env is everything entails/solve needs from the surrounding compiler
// environment beyond the mutable solver state (spec §6's types,
// typeClasses, typeSynonyms and newtypeConstructor collaborators).
type Env interface {
	Classes() *classes.Registry
	ExpandSynonym(t types.Type) (types.Type, bool)
	Newtype(name string) (builtins.Newtype, bool)
	Roles() *roles.Solver
	CurrentModule() string
}

// Options mirrors entails' opts argument (spec §4.E).
type Options struct {
	DeferErrors      bool
	ShouldGeneralize bool
}

// Obligation is a generalisation obligation recorded on an Unsolved
// commit: (ident, contextAtPoint, constraint) (spec §4.E.6).
type Obligation struct {
	Ident      string
	Context    *instances.Context
	Constraint classes.Constraint
}

// State is the solver's mutable cross-constraint state: the shared
// substitution, the append-only inferred context, the fresh-name
// supply, the progress flag and the accumulated generalisation
// obligations (spec §5 "Shared resources").
type State struct {
	Subst        types.Subst
	Inferred     *instances.Context
	Progress     bool
	Obligations  []Obligation
	freshCounter int64

	// runID tags this state's one top-level entailment run (spec §5:
	// "invoked once per expression tree"). A long-lived host process
	// solves many independent expression trees in sequence, each
	// getting its own State but reusing the same fresh-name counter
	// space (counters always start at 0); runID namespaces the
	// generalisation-obligation identifiers each run produces so two
	// runs' dict<ClassName> names never collide once merged into a
	// shared inferred context downstream.
	runID string
}

// NewState returns a fresh solver state for one top-level entailment
// run, stamped with a new run ID.
func NewState() *State {
	return &State{Subst: types.Subst{}, Inferred: instances.NewContext(), runID: uuid.NewString()}
}

// FreshUnknown mints a new unification unknown.
func (s *State) FreshUnknown() types.TUnknown {
	s.freshCounter++
	return types.TUnknown{ID: s.freshCounter}
}

// FreshIdent mints a new identifier with the given prefix, namespaced
// by this state's run ID.
func (s *State) FreshIdent(prefix string) string {
	s.freshCounter++
	return fmt.Sprintf("%s_%s%d", prefix, shortRunID(s.runID), s.freshCounter)
}

// shortRunID is the short form the generalisation-obligation ident
// naming scheme uses (spec SPEC_FULL.md §B: "dict<ClassName>_<run-id
// short form>").
func shortRunID(id string) string {
	if len(id) < 8 {
		return id
	}
	return id[:8]
}

// Entails runs the per-constraint procedure from spec §4.E for a
// single top-level wanted constraint.
func Entails(state *State, env Env, opts Options, inheritedContext *instances.Context, hints []diagnostics.Hint, con classes.Constraint) (terms.Term, []*diagnostics.Diagnostic, error) {
	return solve(state, env, opts, inheritedContext, hints, 0, con)
}

func solve(state *State, env Env, opts Options, inherited *instances.Context, hints []diagnostics.Hint, work int, con classes.Constraint) (terms.Term, []*diagnostics.Diagnostic, error) {
	if work > config.MaxSolverWork {
		return nil, nil, diagnostics.PossiblyInfinite(con, hints)
	}
	hints = append(hints, diagnostics.Hint{ClassName: con.ClassName, Args: renderArgs(con.Args)})

	// Step 1: refresh.
	wanted := make([]types.Type, len(con.Args))
	for i, a := range con.Args {
		wanted[i] = a.Apply(state.Subst)
	}
	con = classes.Constraint{ClassName: con.ClassName, Args: wanted, Info: con.Info}

	cls, known := env.Classes().Lookup(con.ClassName)
	if !known && !config.IsBuiltinClass(con.ClassName) {
		if opts.DeferErrors {
			return deferredTerm(con, inherited, hints), nil, nil
		}
		return nil, nil, diagnostics.Unknown(con.ClassName, hints)
	}

	scopeModules := instances.ScopeModules(wanted, env.CurrentModule())

	// Step 2: candidate gathering.
	var candidates []instances.Descriptor
	benv := builtinEnv{outer: env, state: state, inheritedContext: inherited, scopeModules: scopeModules}
	bc, fromBuiltin := builtins.Dispatch(con.ClassName, wanted, benv)
	if fromBuiltin {
		candidates = bc
	} else {
		combined := instances.Combine(state.Inferred, inherited)
		candidates = combined.FindCandidates(con.ClassName, scopeModules)
	}

	var fds []classes.FunctionalDependency
	if known {
		fds = cls.FunDeps
	}

	// Step 3: chain grouping and ordering. The Symbol*/Row* built-ins
	// commit derived values at positions the wanted side left an open
	// unknown, which ordinary head matching can never confirm (a
	// TUnknown wanted position only ever compares Unknown against a
	// concrete instance type) — but there is always at most one such
	// descriptor and the built-in has already decided it, so it is
	// accepted unconditionally rather than run through match(). Warn
	// and Coercible both only ever produce descriptors whose instance
	// types are exactly the wanted types (so ordinary matching already
	// succeeds reflexively) and still go through the normal path,
	// which is what lets Warn's genuinely-scoped existing dictionaries
	// get filtered correctly.
	var winners []Candidate
	if fromBuiltin && bypassesMatch(con.ClassName) {
		if len(candidates) == 1 {
			winners = []Candidate{{Descriptor: candidates[0], Matching: Matching{}}}
		}
	} else {
		winners = chainWinners(fds, candidates, wanted)
	}

	// Step 4: disambiguation.
	switch len(winners) {
	case 0:
		if opts.DeferErrors {
			return deferredTerm(con, inherited, hints), nil, nil
		}
		if opts.ShouldGeneralize && (len(wanted) == 0 || anyUnknown(wanted)) {
			ident := state.FreshIdent("dict" + con.ClassName)
			for _, d := range NewDictionaries(env.Classes(), nil, ident, con) {
				state.Inferred.AddLocal(d.ClassName, dictKey(d), d)
			}
			state.Obligations = append(state.Obligations, Obligation{Ident: ident, Context: inherited, Constraint: con})
			return terms.Var{Name: ident}, nil, nil
		}
		return nil, nil, diagnostics.NoInstance(con, hints)

	case 1:
		return commitSolved(state, env, opts, inherited, hints, work, wanted, winners[0])

	default:
		if overlap := findOverlap(winners); overlap != nil {
			return nil, nil, diagnostics.Overlapping(con, overlap, hints)
		}
		return commitSolved(state, env, opts, inherited, hints, work, wanted, shortestPath(winners))
	}
}

// bypassesMatch reports whether class's built-in solver commits
// derived values the wanted side left unbound, so its (at most one)
// candidate must be accepted without running it through match().
func bypassesMatch(class string) bool {
	switch class {
	case config.ClassSymbolAppend, config.ClassSymbolCons, config.ClassSymbolCompare,
		config.ClassRowUnion, config.ClassRowNub, config.ClassRowLacks, config.ClassRowCons, config.ClassRowToList:
		return true
	default:
		return false
	}
}

// Candidate pairs a winning chain's descriptor with the Matching its
// head comparison produced.
type Candidate struct {
	Descriptor instances.Descriptor
	Matching   Matching
}

// chainWinners implements §4.C step 3: group by chainIndex (a nil
// chainIndex is its own singleton chain, never merged with another
// descriptor's), sort each group by indexInChain, and take the first
// Match per chain. An Unknown aborts its chain with no result; a chain
// exhausted as Apart also contributes nothing.
func chainWinners(fds []classes.FunctionalDependency, candidates []instances.Descriptor, wanted []types.Type) []Candidate {
	groups := map[string][]instances.Descriptor{}
	var order []string
	singleton := 0
	for _, d := range candidates {
		var key string
		if d.ChainIndex != nil {
			key = "chain:" + *d.ChainIndex
		} else {
			key = fmt.Sprintf("singleton:%d", singleton)
			singleton++
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], d)
	}

	var winners []Candidate
	for _, key := range order {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool { return group[i].IndexInChain < group[j].IndexInChain })
		for _, d := range group {
			outcome := MatchHead(fds, d.InstanceTypes, wanted)
			if outcome.Result == Match {
				winners = append(winners, Candidate{Descriptor: d, Matching: outcome.Matching})
				break
			}
			if outcome.Result == Unknown {
				break
			}
			// Apart: advance to the next descriptor in this chain.
		}
	}
	return winners
}

// findOverlap reports the evidence pair of the first two winners that
// overlap: both non-local, non-derived, with distinct evidence
// (spec §4.E.4, invariant 5).
func findOverlap(winners []Candidate) []string {
	for i := range winners {
		a := winners[i].Descriptor
		if a.IsLocalAssumption() || a.IsDerived() {
			continue
		}
		for j := i + 1; j < len(winners); j++ {
			b := winners[j].Descriptor
			if b.IsLocalAssumption() || b.IsDerived() {
				continue
			}
			if !a.Evidence.Equal(b.Evidence) {
				return []string{evidenceString(a.Evidence), evidenceString(b.Evidence)}
			}
		}
	}
	return nil
}

func shortestPath(winners []Candidate) Candidate {
	best := winners[0]
	for _, w := range winners[1:] {
		if len(w.Descriptor.Path) < len(best.Descriptor.Path) {
			best = w
		}
	}
	return best
}

// commitSolved implements §4.E step 5.
func commitSolved(state *State, env Env, opts Options, inherited *instances.Context, hints []diagnostics.Hint, work int, wanted []types.Type, cand Candidate) (terms.Term, []*diagnostics.Diagnostic, error) {
	state.Progress = true

	bindings := map[string]types.Type{}
	for name, list := range cand.Matching {
		head := list[0].Apply(state.Subst)
		for _, t := range list[1:] {
			s2, err := types.Unify(head, t.Apply(state.Subst))
			if err != nil {
				return nil, nil, err
			}
			state.Subst = state.Subst.Compose(s2)
			head = head.Apply(s2)
		}
		bindings[name] = head
	}

	// freshenInstanceHead: extend the binding with fresh unknowns for
	// any instance-head/dependency variable not yet bound.
	for _, v := range instanceHeadVars(cand.Descriptor) {
		if _, ok := bindings[v]; !ok {
			bindings[v] = state.FreshUnknown()
		}
	}

	// Unify the (rebuilt) instance head against the refreshed wanted
	// types — where functional dependencies actually propagate.
	for i, it := range cand.Descriptor.InstanceTypes {
		if i >= len(wanted) {
			break
		}
		headType := bindType(it, bindings)
		s2, err := types.Unify(headType.Apply(state.Subst), wanted[i].Apply(state.Subst))
		if err != nil {
			return nil, nil, err
		}
		state.Subst = state.Subst.Compose(s2)
	}

	var subterms []terms.Term
	var warnings []*diagnostics.Diagnostic
	for _, req := range cand.Descriptor.Dependencies {
		subArgs := make([]types.Type, len(req.Args))
		for i, a := range req.Args {
			subArgs[i] = bindType(a, bindings)
		}
		sub, w, err := solve(state, env, opts, inherited, hints, work+1, classes.Constraint{ClassName: req.ClassName, Args: subArgs})
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, w...)
		subterms = append(subterms, sub)
	}

	var term terms.Term
	switch cand.Descriptor.Evidence.Kind {
	case instances.NamedInstance:
		if len(subterms) == 0 {
			term = terms.Var{Name: cand.Descriptor.Evidence.Name}
		} else {
			term = terms.App{Func: terms.Var{Name: cand.Descriptor.Evidence.Name}, Args: subterms}
		}
	case instances.WarnInstance:
		warnings = append(warnings, diagnostics.UserWarning(cand.Descriptor.Evidence.Msg, hints))
		term = terms.UseEmpty(argsToTerms(wanted))
	case instances.IsSymbolInstance:
		term = terms.RecordLit{Fields: map[string]terms.Term{
			"reflectSymbol": terms.Lambda{Body: terms.StringLit{Value: cand.Descriptor.Evidence.Symbol}},
		}}
	default: // EmptyClassInstance
		term = terms.UseEmpty(argsToTerms(wanted))
	}

	if len(cand.Descriptor.Path) > 0 {
		path := make([]terms.SuperclassField, len(cand.Descriptor.Path))
		for i, p := range cand.Descriptor.Path {
			path[i] = terms.SuperclassField{FieldName: superclassFieldName(p.ClassName, p.SuperclassIdx)}
		}
		term = terms.AccessorChain(path, term)
	}

	return term, warnings, nil
}

func deferredTerm(con classes.Constraint, inherited *instances.Context, hints []diagnostics.Hint) terms.Term {
	return terms.DeferredDict{Constraint: con, Context: inherited, Hints: append([]diagnostics.Hint(nil), hints...)}
}

func renderArgs(args []types.Type) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.String()
	}
	return out
}

func anyUnknown(wanted []types.Type) bool {
	for _, t := range wanted {
		if _, ok := types.StripKinded(t).(types.TUnknown); ok {
			return true
		}
	}
	return false
}

func argsToTerms(ts []types.Type) []terms.Term {
	out := make([]terms.Term, len(ts))
	for i, t := range ts {
		out[i] = terms.Var{Name: t.String()}
	}
	return out
}

func evidenceString(e instances.Evidence) string {
	switch e.Kind {
	case instances.NamedInstance:
		return e.Name
	case instances.WarnInstance:
		return "Warn(" + e.Msg + ")"
	case instances.IsSymbolInstance:
		return "IsSymbol(" + e.Symbol + ")"
	default:
		return "<empty-class>"
	}
}

// superclassFieldName is the deterministic field-naming scheme a
// class dictionary uses for its i'th declared superclass.
func superclassFieldName(className string, idx int) string {
	return fmt.Sprintf("%sSuper%d", className, idx)
}

// dictKey derives a unique context key for a newly-seeded dictionary
// descriptor from its identifier and superclass path.
func dictKey(d instances.Descriptor) string {
	key := d.Evidence.Name
	for _, p := range d.Path {
		key += fmt.Sprintf(".%s%d", p.ClassName, p.SuperclassIdx)
	}
	return key
}

// instanceHeadVars collects the free type-variable names occurring in
// a descriptor's instance head or dependency arguments.
func instanceHeadVars(d instances.Descriptor) []string {
	seen := map[string]bool{}
	var names []string
	add := func(t types.Type) {
		for _, v := range t.FreeTypeVariables() {
			if !seen[v.Name] {
				seen[v.Name] = true
				names = append(names, v.Name)
			}
		}
	}
	for _, t := range d.InstanceTypes {
		add(t)
	}
	for _, r := range d.Dependencies {
		for _, a := range r.Args {
			add(a)
		}
	}
	return names
}

// bindType substitutes named instance-head variables for their
// committed bindings — the class-parameter analogue of types.Subst,
// which is keyed by unification-unknown id rather than by name (same
// distinction internal/classes and internal/builtins each draw
// locally for their own binding kind).
func bindType(t types.Type, bindings map[string]types.Type) types.Type {
	switch v := t.(type) {
	case types.TVar:
		if repl, ok := bindings[v.Name]; ok {
			return repl
		}
		return v
	case types.TApp:
		newArgs := make([]types.Type, len(v.Args))
		for i, a := range v.Args {
			newArgs[i] = bindType(a, bindings)
		}
		return types.TApp{Constructor: bindType(v.Constructor, bindings), Args: newArgs}
	case types.KindedType:
		return types.KindedType{Type: bindType(v.Type, bindings), KindVal: v.KindVal}
	case types.RCons:
		return types.RCons{Label: v.Label, Head: bindType(v.Head, bindings), Tail: bindType(v.Tail, bindings)}
	case types.TRecord:
		return types.TRecord{Row: bindType(v.Row, bindings)}
	default:
		return t
	}
}

// builtinEnv adapts solver's Env + State into the builtins.Env a
// built-in dispatcher needs, combining the live inferred context with
// the caller's inherited context for Warn's in-scope search.
type builtinEnv struct {
	outer            Env
	state            *State
	inheritedContext *instances.Context
	scopeModules     []string
}

// ExpandSynonym passes through the outer Env's expansion. The outer Env
// answers ok=false when t's head names no synonym; such a type is
// already expanded, so it is returned unchanged with ok=true.
func (b builtinEnv) ExpandSynonym(t types.Type) (types.Type, bool) {
	if expanded, ok := b.outer.ExpandSynonym(t); ok {
		return expanded, true
	}
	return t, true
}
func (b builtinEnv) Newtype(name string) (builtins.Newtype, bool) { return b.outer.Newtype(name) }
func (b builtinEnv) Roles() *roles.Solver                         { return b.outer.Roles() }
func (b builtinEnv) Context() *instances.Context {
	return instances.Combine(b.state.Inferred, b.inheritedContext)
}
func (b builtinEnv) ScopeModules() []string { return b.scopeModules }
func (b builtinEnv) Fresh() types.TUnknown  { return b.state.FreshUnknown() }
