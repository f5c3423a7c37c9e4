// Package diagnostics defines the compiler's error taxonomy. Every error the
// core core raises is fatal to the current top-level form's compilation;
// recovery is not attempted here (spec.md §7) — the driver logs and moves on.
package diagnostics

import (
	"fmt"

	"github.com/formlang/formc/internal/surface"
)

// Phase names the pipeline stage that raised the error.
type Phase string

const (
	PhaseMacro    Phase = "macro"
	PhaseAnalyzer Phase = "analyzer"
	PhaseEmitter  Phase = "emitter"
	PhaseDriver   Phase = "driver"
)

// Code enumerates the error taxonomy of spec.md §7.
type Code string

const (
	ErrUnknownSymbol     Code = "E-UNKNOWN-SYMBOL"
	ErrUnknownTypeTag    Code = "E-UNKNOWN-TYPE-TAG"
	ErrBadAssignment     Code = "E-BAD-ASSIGNMENT"
	ErrRecurBoundary     Code = "E-RECUR-BOUNDARY"
	ErrRecurArity        Code = "E-RECUR-ARITY"
	ErrDocStringMisplace Code = "E-DOCSTRING-MISPLACED"
	ErrImportSpec        Code = "E-IMPORT-SPEC"
	ErrLiteral           Code = "E-LITERAL"
	ErrAreArity          Code = "E-ARE-ARITY"
)

var templates = map[Code]string{
	ErrUnknownSymbol:     "unknown symbol: '%s'",
	ErrUnknownTypeTag:    "unknown type tag: '%s'",
	ErrBadAssignment:     "invalid set! target: %s is neither a mutable local nor a field access",
	ErrRecurBoundary:     "recur outside tail position or across a try/catch boundary",
	ErrRecurArity:        "recur arity %d does not match enclosing loop/fn arity %d",
	ErrDocStringMisplace: "def received a non-string in the doc-string position",
	ErrImportSpec:        "unsupported import spec: %s",
	ErrLiteral:           "unsupported literal: %s",
	ErrAreArity:          "are: argv count %d does not evenly divide args count %d",
}

// Error is a single fatal diagnostic, carrying enough context to report a
// precise location and to let the driver decide what to do next.
type Error struct {
	Code  Code
	Phase Phase
	Args  []interface{}
	Pos   surface.Position
	NS    string
}

func (e *Error) Error() string {
	tmpl, ok := templates[e.Code]
	if !ok {
		return fmt.Sprintf("unknown diagnostic code: %s", e.Code)
	}
	msg := fmt.Sprintf(tmpl, e.Args...)

	prefix := ""
	if e.NS != "" {
		prefix = e.NS + ": "
	}
	phase := ""
	if e.Phase != "" {
		phase = fmt.Sprintf("[%s] ", e.Phase)
	}
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s%s%s:%d:%d [%s]: %s", prefix, phase, e.Pos.File, e.Pos.Line, e.Pos.Column, e.Code, msg)
	}
	return fmt.Sprintf("%s%s[%s]: %s", prefix, phase, e.Code, msg)
}

// New builds a diagnostic for the given phase, code, and source position.
func New(phase Phase, code Code, pos surface.Position, args ...interface{}) *Error {
	return &Error{Code: code, Phase: phase, Pos: pos, Args: args}
}

// InNamespace returns a copy of e tagged with the namespace under compilation.
func (e *Error) InNamespace(ns string) *Error {
	cp := *e
	cp.NS = ns
	return &cp
}
