// Package cliutil provides terminal color detection and ANSI wrapping
// for entailctl's diagnostic output.
//
// Grounded on internal/evaluator/builtins_term.go's color-support
// detection: the same NO_COLOR/isatty/TERM/COLORTERM cascade and the
// same sync.Once-cached level, reused here to colorise
// diagnostics.Diagnostic rendering instead of the teacher's term
// builtins (hex/bgHex/ansiFg/ansiBg).
package cliutil

import (
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	LevelNone      = 0
	LevelBasic     = 1
	Level256       = 256
	LevelTruecolor = 16777216
)

var (
	colorLevelOnce sync.Once
	colorLevelVal  int
)

func detectColorLevel() int {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return LevelNone
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return LevelNone
	}

	term := os.Getenv("TERM")
	if term == "dumb" {
		return LevelNone
	}

	colorTerm := os.Getenv("COLORTERM")
	if colorTerm == "truecolor" || colorTerm == "24bit" {
		return LevelTruecolor
	}
	if strings.Contains(term, "256color") {
		return Level256
	}
	return LevelBasic
}

// ColorLevel returns the detected terminal color support, computed
// once per process.
func ColorLevel() int {
	colorLevelOnce.Do(func() {
		colorLevelVal = detectColorLevel()
	})
	return colorLevelVal
}

func wrap(code, reset, s string) string {
	if ColorLevel() == LevelNone {
		return s
	}
	return code + s + reset
}

// Red marks a fatal diagnostic (UnknownClass, NoInstanceFound,
// OverlappingInstances, PossiblyInfiniteInstance).
func Red(s string) string { return wrap("\033[31m", "\033[39m", s) }

// Yellow marks a non-fatal diagnostic (UserDefinedWarning).
func Yellow(s string) string { return wrap("\033[33m", "\033[39m", s) }

// Dim marks the class-name label printed before a solved term.
func Dim(s string) string { return wrap("\033[2m", "\033[22m", s) }

// Bold marks a solved dictionary term in solve output.
func Bold(s string) string { return wrap("\033[1m", "\033[22m", s) }
