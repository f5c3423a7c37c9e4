// Package pipeline strings together the Reader, Macro Expander, Analyzer,
// and Emitter into the one-top-level-form-at-a-time driver loop spec.md §5
// describes: read a form, expand it, analyze it, emit it, repeat.
package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/formlang/formc/internal/analyzer"
	"github.com/formlang/formc/internal/diagnostics"
	"github.com/formlang/formc/internal/emitter"
	"github.com/formlang/formc/internal/ir"
	"github.com/formlang/formc/internal/macro"
	"github.com/formlang/formc/internal/registry"
	"github.com/formlang/formc/internal/surface"
)

// Pipeline owns the one Registry shared by every stage and the per-stage
// processors built over it.
type Pipeline struct {
	Reg      *registry.Registry
	Expander *macro.Expander
	Analyzer *analyzer.Analyzer
	Emitter  *emitter.Emitter
}

// New builds a Pipeline over a fresh Registry.
func New() *Pipeline {
	reg := registry.New()
	return &Pipeline{
		Reg:      reg,
		Expander: macro.New(reg),
		Analyzer: analyzer.New(reg),
		Emitter:  emitter.New(),
	}
}

// FormError pairs a form's position context with the diagnostic it raised,
// so the driver can report one failure and continue with the next
// top-level form (spec.md §7: errors are fatal to the current form, not the
// whole compilation).
type FormError struct {
	Form surface.Form
	Err  error
}

func (e *FormError) Error() string { return e.Err.Error() }
func (e *FormError) Unwrap() error { return e.Err }

// ProcessNamespace runs every form of one namespace's source through
// MX -> AN -> EM, collecting rendered output and any per-form errors
// (spec.md §6 "ns" handling: the leading (ns ...) form is intercepted here,
// before MX, per the reconciliation noted in macro/expand.go).
func (p *Pipeline) ProcessNamespace(name string, forms []surface.Form) (string, []error) {
	p.Reg.SetCurrent(name)
	ns := p.Reg.Ensure(name)

	var out strings.Builder
	var errs []error
	env := macro.NewEnv()

	for _, f := range forms {
		if isNsForm(f) {
			continue
		}
		rendered, err := p.processForm(env, f)
		if err != nil {
			errs = append(errs, &FormError{Form: f, Err: err})
			continue
		}
		out.WriteString(rendered)
	}

	aliases := make([]string, 0, len(ns.Imports))
	for alias := range ns.Imports {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	var header strings.Builder
	for _, alias := range aliases {
		fmt.Fprintf(&header, "import '%s' as %s;\n", ns.Imports[alias].LibraryPath, alias)
	}
	return header.String() + out.String(), errs
}

func (p *Pipeline) processForm(env *macro.Env, f surface.Form) (string, error) {
	expanded := p.Expander.ExpandDeep(env, f)
	node, err := p.Analyzer.AnalyzeTop(analyzer.NewEnv(), expanded)
	if err != nil {
		return "", err
	}
	if def, ok := node.(*ir.TopDef); ok {
		return p.Emitter.EmitTopDef(def), nil
	}
	return p.Emitter.EmitTopStatement(node), nil
}

func isNsForm(f surface.Form) bool {
	head, ok := f.Head()
	return ok && head.IsSymbol("ns")
}

// FormatDiagnostics renders a batch of per-form errors the way the driver
// prints them to its error stream.
func FormatDiagnostics(errs []error) string {
	var b strings.Builder
	for _, e := range errs {
		var diag *diagnostics.Error
		if fe, ok := e.(*FormError); ok {
			if d, ok := fe.Err.(*diagnostics.Error); ok {
				diag = d
			}
		}
		if diag != nil {
			fmt.Fprintln(&b, diag.Error())
		} else {
			fmt.Fprintln(&b, e.Error())
		}
	}
	return b.String()
}
