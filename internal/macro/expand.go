// Package macro implements the Macro Expander (MX): expand1 rewrites one
// layer of a surface form, Expand runs it to a fixpoint (spec.md §4.2). MX
// consults the Namespace Registry for macro/alias resolution but never
// mutates it except through defprotocol, which records its methods in the
// current namespace's protocol table.
package macro

import (
	"strings"

	"github.com/formlang/formc/internal/config"
	"github.com/formlang/formc/internal/registry"
	"github.com/formlang/formc/internal/surface"
)

// Expander owns the registry the macro set consults for alias/macro lookup.
type Expander struct {
	reg *registry.Registry
}

// New builds an Expander over reg.
func New(reg *registry.Registry) *Expander {
	return &Expander{reg: reg}
}

// macroFn is one built-in macro's rewrite: given the form's tail (everything
// after the head symbol) it returns the replacement form.
type macroFn func(x *Expander, pos surface.Position, args []surface.Form) surface.Form

var builtins map[string]macroFn

func init() {
	builtins = map[string]macroFn{
		"reify":          expandReify,
		"deftype":        expandDeftype,
		"definterface":   expandDefinterface,
		"defprotocol":    expandDefprotocol,
		"case":           expandCase,
		"are":            expandAre,
		"is":             expandIs,
		"testing":        expandTesting,
		"deftest":        expandDeftest,
		"try-expr":       expandTryExpr,
		"defrunner-main": expandDefrunnerMain,
	}
	// "ns" is listed among spec.md's built-in macro set but is also a fixed
	// special; the two are reconciled by treating `(ns ...)` as intercepted
	// by the pipeline (pipeline.ProcessNamespace) before a form ever reaches
	// MX (see DESIGN.md).
}

// Expand1 applies one layer of rewriting (spec.md §4.2).
func (x *Expander) Expand1(env *Env, f surface.Form) (surface.Form, bool) {
	head, ok := f.Head()
	if !ok || head.Kind != surface.KindSymbol {
		return f, false
	}
	if head.NS == "" && env.Shadows(head.Name) {
		return f, false
	}
	if head.NS == "" && config.FixedSpecials[head.Name] {
		return f, false
	}

	name := head.Name
	if name != "." && name != "new" && strings.HasSuffix(name, ".") {
		return rewriteNewSugar(f, head), true
	}
	if name != "." && strings.HasPrefix(name, ".") {
		return rewriteDotSugar(f, head), true
	}

	if head.NS == "" {
		if fn, ok := builtins[name]; ok {
			return fn(x, f.Pos, f.Tail()), true
		}
	}
	return f, false
}

// Expand runs Expand1 to a fixpoint.
func (x *Expander) Expand(env *Env, f surface.Form) surface.Form {
	cur := f
	for {
		next, changed := x.Expand1(env, cur)
		if !changed {
			return next
		}
		cur = next
	}
}

// ExpandDeep fixpoint-expands f and then recurses into every child form, so
// a macro use nested anywhere in a function body (not just at the top of a
// file) gets rewritten — Expand alone only rewrites f's own head (spec.md
// §4.2 describes expand1/expand per-form; driving that over an entire tree
// is the pipeline's job, done here once instead of duplicating it at every
// call site). Descending into let*/loop*/fn* extends env to shadow every
// name that form binds, over-approximating by shadowing a let*'s bindings
// across its own value expressions too — simpler than precise sequential
// scoping and never wrong in the direction that matters (it only ever
// suppresses a macro expansion a real local shadow would also suppress).
func (x *Expander) ExpandDeep(env *Env, f surface.Form) surface.Form {
	switch f.Kind {
	case surface.KindSeq:
		expanded := x.Expand(env, f)
		if expanded.Kind != surface.KindSeq || len(expanded.Items) == 0 {
			return x.ExpandDeep(env, expanded)
		}
		childEnv := shadowBinders(env, expanded)
		items := make([]surface.Form, len(expanded.Items))
		items[0] = expanded.Items[0]
		for i := 1; i < len(expanded.Items); i++ {
			items[i] = x.ExpandDeep(childEnv, expanded.Items[i])
		}
		expanded.Items = items
		return expanded

	case surface.KindVector, surface.KindSet:
		items := make([]surface.Form, len(f.Items))
		for i, it := range f.Items {
			items[i] = x.ExpandDeep(env, it)
		}
		f.Items = items
		return f

	case surface.KindMap:
		pairs := make([]surface.Pair, len(f.Pairs))
		for i, p := range f.Pairs {
			pairs[i] = surface.Pair{Key: x.ExpandDeep(env, p.Key), Val: x.ExpandDeep(env, p.Val)}
		}
		f.Pairs = pairs
		return f

	default:
		return f
	}
}

// shadowBinders extends env with every name f's head form (let*/loop*/fn*)
// introduces, so nested macro expansion sees them as local shadows.
func shadowBinders(env *Env, f surface.Form) *Env {
	head, ok := f.Head()
	if !ok || head.Kind != surface.KindSymbol || head.NS != "" {
		return env
	}
	tail := f.Tail()
	if len(tail) == 0 || tail[0].Kind != surface.KindVector {
		return env
	}
	var names []string
	switch head.Name {
	case "let*", "loop*":
		for i := 0; i+1 < len(tail[0].Items); i += 2 {
			names = append(names, tail[0].Items[i].Name)
		}
	case "fn*":
		for _, p := range tail[0].Items {
			if p.Kind == surface.KindVector && len(p.Items) > 0 {
				names = append(names, p.Items[0].Name)
			} else if p.Kind == surface.KindSymbol && !p.IsSymbol("&") && !p.IsSymbol("&opt") && !p.IsSymbol("&keys") {
				names = append(names, p.Name)
			}
		}
	default:
		return env
	}
	return env.ChildAll(names)
}

// rewriteNewSugar turns (X. args) into (new X args).
func rewriteNewSugar(f surface.Form, head surface.Form) surface.Form {
	class := head
	class.Name = strings.TrimSuffix(head.Name, ".")
	items := append([]surface.Form{surface.Sym("new"), class}, f.Tail()...)
	return surface.Form{Kind: surface.KindSeq, Pos: f.Pos, Items: items}
}

// rewriteDotSugar turns (.m o args) into (. o m args).
func rewriteDotSugar(f surface.Form, head surface.Form) surface.Form {
	tail := f.Tail()
	if len(tail) == 0 {
		return f
	}
	member := surface.Sym(strings.TrimPrefix(head.Name, "."))
	items := append([]surface.Form{surface.Sym("."), tail[0], member}, tail[1:]...)
	return surface.Form{Kind: surface.KindSeq, Pos: f.Pos, Items: items}
}

func seq(pos surface.Position, items ...surface.Form) surface.Form {
	return surface.Form{Kind: surface.KindSeq, Pos: pos, Items: items}
}
