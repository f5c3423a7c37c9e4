// Package analyzer lowers macro-expanded surface forms into IR (spec.md
// §4.3): gensym, A-normalization/lifting, truthiness inference, function
// lowering, recur rewriting, and reify/deftype class assembly.
package analyzer

import (
	"fmt"

	"github.com/formlang/formc/internal/diagnostics"
	"github.com/formlang/formc/internal/ir"
	"github.com/formlang/formc/internal/registry"
	"github.com/formlang/formc/internal/surface"
)

// Analyzer holds the state threaded through one compilation: the registry
// every component shares, and the per-top-level-form gensym scope (spec.md
// §5: a gensym counter map is established per top-level form; an analyzer
// invocation running outside such a scope is a programming error, enforced
// here by gensym being nil until ResetForm is called).
type Analyzer struct {
	Reg    *registry.Registry
	gensym *Gensym

	// nativeFns/invokeFns record, by mangled target name, which calling
	// convention a top-level def'd function uses (spec.md §4.4): a plain
	// single fixed-arity function dispatches as a direct native call, while
	// a multi-arity, variadic, or wide-arity (>= config.InvokeThreshold)
	// function dispatches through its synthesized invoke/call machinery
	// (see functions.go).
	nativeFns map[string]bool
	invokeFns map[string]bool
}

// New builds an Analyzer over reg.
func New(reg *registry.Registry) *Analyzer {
	return &Analyzer{
		Reg:       reg,
		nativeFns: make(map[string]bool),
		invokeFns: make(map[string]bool),
	}
}

// ResetForm establishes a fresh gensym scope for the next top-level form
// (spec.md §5 "Gensym counter map, established per top-level form").
func (a *Analyzer) ResetForm() {
	a.gensym = NewGensym()
}

func (a *Analyzer) requireGensymScope() {
	if a.gensym == nil {
		panic("analyzer: ResetForm was not called before analysis (spec.md §5 scoping invariant)")
	}
}

// newIdent mints a fresh identifier from hint, scoped to the current
// top-level form.
func (a *Analyzer) newIdent(hint string, mutable bool) *ir.Ident {
	a.requireGensymScope()
	return &ir.Ident{Name: a.gensym.Next(hint), Hint: hint, Mutable: mutable}
}

// AnalyzeTop analyzes one already macro-expanded top-level form, resetting
// the gensym scope first (spec.md §5).
func (a *Analyzer) AnalyzeTop(env *Env, form surface.Form) (ir.Node, error) {
	a.ResetForm()
	return a.Analyze(env, form, false)
}

func errAt(phase diagnostics.Phase, code diagnostics.Code, pos surface.Position, args ...interface{}) error {
	return diagnostics.New(phase, code, pos, args...)
}

func analyzerErr(code diagnostics.Code, pos surface.Position, args ...interface{}) error {
	return errAt(diagnostics.PhaseAnalyzer, code, pos, args...)
}

func fmtForm(f surface.Form) string {
	if f.Kind == surface.KindSymbol {
		if f.NS != "" {
			return fmt.Sprintf("%s/%s", f.NS, f.Name)
		}
		return f.Name
	}
	return "<form>"
}
