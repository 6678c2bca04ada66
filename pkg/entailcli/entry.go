// Package entailcli is the thin harness over internal/solver that
// cmd/entailctl exposes: load a fixture environment, solve its batch
// of wanted constraints, print the resulting dictionary terms or
// diagnostics. It is not a scope expansion of the solver — spec.md §6
// is explicit that the core owns no CLI of its own — but every
// teacher tool in this pack has one, and a library nobody can run is
// unverifiable, so this package plays that role.
//
// Grounded on the teacher's cmd/funxy/main.go + pkg/cli/entry.go:
// plain os.Args subcommand dispatch (no flag/cobra), a moduleCache-style
// single long-lived state reused across one process run, and
// fmt.Fprintf(os.Stderr, "Usage: ...") on malformed invocations.
package entailcli

import (
	"fmt"
	"io"
	"os"

	"github.com/funvibe/entailer/internal/cliutil"
	"github.com/funvibe/entailer/internal/diagnostics"
	"github.com/funvibe/entailer/internal/fixtures"
	"github.com/funvibe/entailer/internal/solver"
)

// Run dispatches args (os.Args[1:]) to a subcommand and returns the
// process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch args[0] {
	case "solve":
		if len(args) != 2 {
			usage(stderr)
			return 2
		}
		return runSolve(args[1], stdout, stderr)
	case "-help", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "entailctl: unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage:\n  entailctl solve <fixture.yaml>\n  entailctl help\n")
}

// runSolve loads path as a fixtures.Doc, runs solver.Entails once per
// wanted constraint against the fixture's instance context, and prints
// each solved dictionary term or failure diagnostic.
func runSolve(path string, stdout, stderr io.Writer) int {
	fx, err := fixtures.Load(path)
	if err != nil {
		fmt.Fprintln(stderr, cliutil.Red(err.Error()))
		return 1
	}

	state := solver.NewState()
	opts := solver.Options{DeferErrors: false, ShouldGeneralize: false}

	exit := 0
	for _, con := range fx.Wanted {
		term, warnings, err := solver.Entails(state, fx.Env, opts, fx.Context, nil, con)
		for _, w := range warnings {
			fmt.Fprintln(stderr, cliutil.Yellow(w.Error()))
		}
		if err != nil {
			printDiagnostic(stderr, err)
			exit = 1
			continue
		}
		fmt.Fprintf(stdout, "%s => %s\n", cliutil.Dim(con.ClassName), cliutil.Bold(term.String()))
	}
	return exit
}

func printDiagnostic(w io.Writer, err error) {
	if d, ok := err.(*diagnostics.Diagnostic); ok {
		fmt.Fprintln(w, cliutil.Red(d.Error()))
		return
	}
	fmt.Fprintln(w, cliutil.Red(err.Error()))
}

// Main is the entry point cmd/entailctl's main() calls.
func Main() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}
