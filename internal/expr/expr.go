// Package expr implements spec §4.F's program-level driver:
// replaceTypeClassDictionaries, the two-pass solve-or-defer then
// generalise sweep over a host expression tree. This core owns no
// parser or AST (spec §6 lists the rewriter itself — "Expression
// rewriter everywhereOnValuesTopDownM" — as something consumed FROM
// the compiler environment, not produced here), so the tree and its
// top-down traversal are supplied by the caller; this package only
// needs to recognise the one node shape it cares about and rewrite it.
//
// Grounded on the teacher's internal/analyzer.walker, which drives a
// single generic AST walk (Program.Accept(w)) and threads an error
// list and a "did this pass make progress" signal through it; here the
// walk itself is the caller's, and this package only supplies the
// transform callback plus the solve-or-defer/generalise looping around
// it.
package expr

import (
	"github.com/funvibe/entailer/internal/diagnostics"
	"github.com/funvibe/entailer/internal/solver"
	"github.com/funvibe/entailer/internal/terms"
)

// Node is implemented by whatever node type the host's own expression
// tree walker produces. Only nodes that can carry a deferred
// dictionary placeholder need to answer Placeholder/ReplaceWith
// meaningfully; every other node type just returns (zero, false) from
// Placeholder and ignores ReplaceWith, or is never visited if the
// host's walker already prunes non-expression nodes.
type Node interface {
	// Placeholder returns the deferred dictionary this node carries, if
	// it is one (spec §4.F: "Rewrite every TypeClassDictionary node").
	Placeholder() (terms.DeferredDict, bool)
	// ReplaceWith returns a copy of this node with term substituted for
	// its placeholder.
	ReplaceWith(term terms.Term) Node
}

// TopDownRewriteM is the host's everywhereOnValuesTopDownM: visit
// every node in tree top-down, left to right, replacing each with
// transform's result, threading the first error to abort early.
type TopDownRewriteM func(tree interface{}, transform func(Node) (Node, error)) (interface{}, error)

// Result is what ReplaceTypeClassDictionaries returns: the rewritten
// tree, the outstanding generalisation obligations, and any non-fatal
// warnings recorded along the way (spec §4.E.5's WarnInstance commits
// surface here).
type Result struct {
	Tree        interface{}
	Obligations []solver.Obligation
	Warnings    []*diagnostics.Diagnostic
}

// ReplaceTypeClassDictionaries implements spec §4.F end to end: a
// solve-or-defer loop (deferErrors = true) repeated while state.Progress
// is set, followed by one generalisation pass (deferErrors = false)
// that resurfaces anything still deferred.
func ReplaceTypeClassDictionaries(rewrite TopDownRewriteM, tree interface{}, state *solver.State, env solver.Env, shouldGeneralize bool) (Result, error) {
	deferOpts := solver.Options{DeferErrors: true, ShouldGeneralize: shouldGeneralize}

	var warnings []*diagnostics.Diagnostic
	for {
		state.Progress = false
		next, err := rewriteOnce(rewrite, tree, state, env, deferOpts, &warnings)
		if err != nil {
			return Result{}, err
		}
		tree = next
		if !state.Progress {
			break
		}
	}

	finalOpts := solver.Options{DeferErrors: false, ShouldGeneralize: shouldGeneralize}
	next, err := rewriteOnce(rewrite, tree, state, env, finalOpts, &warnings)
	if err != nil {
		return Result{}, err
	}

	return Result{Tree: next, Obligations: append([]solver.Obligation(nil), state.Obligations...), Warnings: dedupWarnings(warnings)}, nil
}

// dedupWarnings drops repeat UserWarning diagnostics, keyed on their
// rendered text. A Warn placeholder commits as soon as it is first
// visited (spec §4.D: Warn always has an opinion), so in practice each
// one is only ever recorded once — this guards against a node being
// re-entered across loop iterations before its tree is rewritten.
func dedupWarnings(warnings []*diagnostics.Diagnostic) []*diagnostics.Diagnostic {
	if len(warnings) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(warnings))
	out := make([]*diagnostics.Diagnostic, 0, len(warnings))
	for _, w := range warnings {
		key := w.Error()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}

// rewriteOnce runs a single top-down pass, re-entailing every
// placeholder node found with opts and appending any warnings the
// commit of a WarnInstance produces to *warnings. A Warn placeholder
// always has an opinion (spec §4.D) and so commits on the very first
// pass that visits it, including during the solve-or-defer loop — this
// must be threaded through every pass, not just the final one, or
// those commits are silently lost once the node stops being a
// placeholder.
func rewriteOnce(rewrite TopDownRewriteM, tree interface{}, state *solver.State, env solver.Env, opts solver.Options, warnings *[]*diagnostics.Diagnostic) (interface{}, error) {
	return rewrite(tree, func(n Node) (Node, error) {
		ph, ok := n.Placeholder()
		if !ok {
			return n, nil
		}
		term, w, err := solver.Entails(state, env, opts, ph.Context, append([]diagnostics.Hint(nil), ph.Hints...), ph.Constraint)
		if err != nil {
			return n, err
		}
		if warnings != nil {
			*warnings = append(*warnings, w...)
		}
		return n.ReplaceWith(term), nil
	})
}
