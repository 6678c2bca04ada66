package entailcli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunNoArgsPrintsUsage(t *testing.T) {
	var out, errw bytes.Buffer
	code := Run(nil, &out, &errw)
	if code != 2 {
		t.Errorf("Run(nil) exit code = %d, want 2", code)
	}
	if !strings.Contains(errw.String(), "Usage:") {
		t.Errorf("expected usage on stderr, got %q", errw.String())
	}
}

func TestRunHelp(t *testing.T) {
	var out, errw bytes.Buffer
	code := Run([]string{"help"}, &out, &errw)
	if code != 0 {
		t.Errorf("Run(help) exit code = %d, want 0", code)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Errorf("expected usage on stdout, got %q", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var out, errw bytes.Buffer
	code := Run([]string{"bogus"}, &out, &errw)
	if code != 2 {
		t.Errorf("Run(bogus) exit code = %d, want 2", code)
	}
	if !strings.Contains(errw.String(), "unknown command") {
		t.Errorf("expected unknown-command message on stderr, got %q", errw.String())
	}
}

func TestRunSolveWrongArgCount(t *testing.T) {
	var out, errw bytes.Buffer
	code := Run([]string{"solve"}, &out, &errw)
	if code != 2 {
		t.Errorf("Run(solve) with no path exit code = %d, want 2", code)
	}
}

func TestRunSolveMissingFile(t *testing.T) {
	var out, errw bytes.Buffer
	code := Run([]string{"solve", filepath.Join(t.TempDir(), "missing.yaml")}, &out, &errw)
	if code != 1 {
		t.Errorf("Run(solve, missing file) exit code = %d, want 1", code)
	}
	if errw.Len() == 0 {
		t.Errorf("expected an error message on stderr")
	}
}

const solvableFixture = `
module: Data.Sample
classes:
  - name: Eq
    params: [a]
instances:
  - class: Eq
    ident: eqIntDict
    args: [{con: Int}]
wanted:
  - class: Eq
    args: [{con: Int}]
`

func TestRunSolveSucceeds(t *testing.T) {
	path := writeFixture(t, solvableFixture)
	var out, errw bytes.Buffer
	code := Run([]string{"solve", path}, &out, &errw)
	if code != 0 {
		t.Fatalf("Run(solve) exit code = %d, want 0; stderr=%s", code, errw.String())
	}
	if !strings.Contains(out.String(), "eqIntDict") {
		t.Errorf("expected the solved dictionary name in stdout, got %q", out.String())
	}
}

const unsolvableFixture = `
module: Data.Sample
classes:
  - name: Eq
    params: [a]
wanted:
  - class: Eq
    args: [{con: Int}]
`

func TestRunSolveReportsFailureDiagnostic(t *testing.T) {
	path := writeFixture(t, unsolvableFixture)
	var out, errw bytes.Buffer
	code := Run([]string{"solve", path}, &out, &errw)
	if code != 1 {
		t.Fatalf("Run(solve) with no instance exit code = %d, want 1", code)
	}
	if errw.Len() == 0 {
		t.Errorf("expected a diagnostic on stderr for an unsatisfiable constraint")
	}
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}
