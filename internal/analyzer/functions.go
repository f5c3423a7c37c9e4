package analyzer

import (
	"sort"

	"github.com/formlang/formc/internal/config"
	"github.com/formlang/formc/internal/diagnostics"
	"github.com/formlang/formc/internal/ir"
	"github.com/formlang/formc/internal/mangle"
	"github.com/formlang/formc/internal/registry"
	"github.com/formlang/formc/internal/surface"
)

// analyzeBody lowers a sequence of body forms the way "do" does, but takes
// already-split surface.Form operands rather than a seq form (shared by
// analyzeDo and analyzeFn).
func (a *Analyzer) analyzeBody(env *Env, forms []surface.Form, tail bool) (ir.Node, error) {
	if len(forms) == 0 {
		return &ir.Literal{LitKind: ir.LitNil}, nil
	}
	nodes := make([]ir.Node, len(forms))
	for i, f := range forms {
		n, err := a.Analyze(env, f, tail && i == len(forms)-1)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return ir.Do(forms[0].Pos, nodes...), nil
}

// parseParamVector parses a params vector shared by fn* literals and
// deftype*/reify* methods: fixed params, a trailing "& rest" variadic, or
// (mutually exclusive with variadic) an "&opt"/"&keys" marker introducing
// [name default] optional positional/named params (spec.md §3 Fn IR node).
func (a *Analyzer) parseParamVector(env *Env, paramForms []surface.Form) ([]*ir.Ident, ir.OptKind, []ir.Param, *ir.Ident, *Env, error) {
	var fixed []*ir.Ident
	var optKind ir.OptKind
	var opt []ir.Param
	var variadic *ir.Ident
	curEnv := env

	i := 0
	for i < len(paramForms) {
		pf := paramForms[i]
		switch {
		case pf.IsSymbol("&"):
			i++
			if i >= len(paramForms) {
				return nil, 0, nil, nil, nil, analyzerErr(diagnostics.ErrLiteral, pf.Pos, "fn* &")
			}
			id := a.newIdent(paramForms[i].Name, false)
			variadic = id
			curEnv = curEnv.Extend(paramForms[i].Name, id)
			i++

		case pf.IsSymbol("&opt") || pf.IsSymbol("&keys"):
			if pf.IsSymbol("&opt") {
				optKind = ir.OptPositional
			} else {
				optKind = ir.OptNamed
			}
			i++
			for i < len(paramForms) {
				entry := paramForms[i]
				nameForm := entry
				var defaultForm surface.Form
				hasDefault := false
				if entry.Kind == surface.KindVector && len(entry.Items) == 2 {
					nameForm = entry.Items[0]
					defaultForm = entry.Items[1]
					hasDefault = true
				}
				id := a.newIdent(nameForm.Name, false)
				var defNode ir.Node
				if hasDefault {
					n, err := a.Analyze(curEnv, defaultForm, false)
					if err != nil {
						return nil, 0, nil, nil, nil, err
					}
					defNode = n
				}
				opt = append(opt, ir.Param{Id: id, Default: defNode})
				curEnv = curEnv.Extend(nameForm.Name, id)
				i++
			}

		default:
			id := a.newIdent(pf.Name, false)
			fixed = append(fixed, id)
			curEnv = curEnv.Extend(pf.Name, id)
			i++
		}
	}
	return fixed, optKind, opt, variadic, curEnv, nil
}

// analyzeFn lowers (fn* [params...] body...) and its multi-arity form
// (fn* ([params...] body...) ([params...] body...) ...). A single fixed
// clause with no variadic and an arity under the invoke threshold lowers to
// a plain ir.Fn; everything else lowers to an ir.InvokeFn, the polymorphic
// dispatch object spec.md §4.3 "Function lowering" describes.
func (a *Analyzer) analyzeFn(env *Env, form surface.Form) (ir.Node, error) {
	items := form.Tail()
	if len(items) < 1 {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "fn*")
	}
	if items[0].Kind == surface.KindSeq {
		return a.analyzeMultiArityFn(env, items)
	}
	if items[0].Kind != surface.KindVector {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "fn*")
	}
	return a.analyzeSingleArityFn(env, items[0].Items, items[1:])
}

// analyzeSingleArityFn lowers one [params...] body... clause, either as the
// entire fn* body or as one arm of a multi-arity fn*.
func (a *Analyzer) analyzeSingleArityFn(env *Env, paramForms, bodyForms []surface.Form) (ir.Node, error) {
	fixed, optKind, opt, variadic, curEnv, err := a.parseParamVector(env, paramForms)
	if err != nil {
		return nil, err
	}

	bodyNode, err := a.analyzeBody(curEnv, bodyForms, true)
	if err != nil {
		return nil, err
	}
	arity := len(fixed)
	if variadic != nil {
		arity++
	}
	if err := validateRecurArity(bodyNode, arity); err != nil {
		return nil, err
	}

	if variadic != nil {
		return &ir.InvokeFn{VariadicBase: fixed, Variadic: variadic, VariadicBody: bodyNode}, nil
	}
	if len(fixed) >= config.InvokeThreshold {
		return &ir.InvokeFn{Arities: []ir.FnArity{{Fixed: fixed, Body: bodyNode}}}, nil
	}
	return &ir.Fn{Fixed: fixed, OptKind: optKind, Opt: opt, Body: bodyNode}, nil
}

// analyzeMultiArityFn lowers (fn* ([a] ...) ([a b] ...) ([a b & rest] ...))
// into one ir.InvokeFn: every fixed-arity clause becomes an ir.FnArity, and
// at most one clause may carry a trailing "& rest" to become the object's
// variadic body (spec.md §4.3 "Function lowering").
func (a *Analyzer) analyzeMultiArityFn(env *Env, clauses []surface.Form) (ir.Node, error) {
	var arities []ir.FnArity
	var variadicBase []*ir.Ident
	var variadic *ir.Ident
	var variadicBody ir.Node
	seenVariadic := false

	for _, clause := range clauses {
		if clause.Kind != surface.KindSeq || len(clause.Items) < 1 || clause.Items[0].Kind != surface.KindVector {
			return nil, analyzerErr(diagnostics.ErrLiteral, clause.Pos, "fn* clause")
		}
		paramForms := clause.Items[0].Items
		bodyForms := clause.Items[1:]

		fixed, optKind, _, variadicId, curEnv, err := a.parseParamVector(env, paramForms)
		if err != nil {
			return nil, err
		}
		if optKind != ir.OptNone {
			return nil, analyzerErr(diagnostics.ErrLiteral, clause.Pos, "fn*: &opt/&keys are not supported in a multi-arity function")
		}

		bodyNode, err := a.analyzeBody(curEnv, bodyForms, true)
		if err != nil {
			return nil, err
		}
		arity := len(fixed)
		if variadicId != nil {
			arity++
		}
		if err := validateRecurArity(bodyNode, arity); err != nil {
			return nil, err
		}

		if variadicId != nil {
			if seenVariadic {
				return nil, analyzerErr(diagnostics.ErrLiteral, clause.Pos, "fn*: only one variadic clause is allowed")
			}
			seenVariadic = true
			variadicBase = fixed
			variadic = variadicId
			variadicBody = bodyNode
			continue
		}
		arities = append(arities, ir.FnArity{Fixed: fixed, Body: bodyNode})
	}

	sort.Slice(arities, func(i, j int) bool { return len(arities[i].Fixed) < len(arities[j].Fixed) })
	return &ir.InvokeFn{Arities: arities, VariadicBase: variadicBase, Variadic: variadic, VariadicBody: variadicBody}, nil
}

// isFnLiteral reports whether f is an (already macro-expanded) fn* literal.
func isFnLiteral(f surface.Form) bool {
	head, ok := f.Head()
	return ok && head.IsSymbol("fn*")
}

// classifyDispatch records target's calling convention once its fn body has
// been analyzed (spec.md §4.4): a plain ir.Fn (single fixed or optional/
// named clause under the invoke threshold) dispatches natively; an
// ir.InvokeFn (multi-arity, variadic, or wide-arity) goes through
// invoke-style dispatch.
func (a *Analyzer) classifyDispatch(target string, value ir.Node) {
	switch value.(type) {
	case *ir.InvokeFn:
		a.invokeFns[target] = true
	case *ir.Fn:
		a.nativeFns[target] = true
	}
}

// analyzeDef lowers (def name val) or (def name "doc" val), pre-declaring
// the target name before analyzing the value so self-recursive references
// resolve (spec.md §3 Lifecycle: pre-declaration).
func (a *Analyzer) analyzeDef(env *Env, form surface.Form) (ir.Node, error) {
	items := form.Tail()
	var nameForm, valueForm surface.Form
	var doc string

	switch len(items) {
	case 2:
		nameForm, valueForm = items[0], items[1]
	case 3:
		nameForm = items[0]
		if items[1].Kind != surface.KindString {
			return nil, analyzerErr(diagnostics.ErrDocStringMisplace, form.Pos)
		}
		doc = items[1].Str
		valueForm = items[2]
	default:
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "def")
	}

	ns := a.Reg.Current()
	kind := registry.DefField
	if isFnLiteral(valueForm) {
		kind = registry.DefFunction
	}
	target := mangle.Name(nameForm.Name)
	a.Reg.PreDeclare(ns, nameForm.Name, target, kind)

	valueNode, err := a.Analyze(env, valueForm, false)
	if err != nil {
		return nil, err
	}
	switch valueNode.(type) {
	case *ir.Fn, *ir.InvokeFn:
		a.classifyDispatch(target, valueNode)
	}

	meta := map[string]string{}
	if doc != "" {
		meta["doc"] = doc
	}
	a.Reg.Define(ns, nameForm.Name, registry.Definition{TargetName: target, Kind: kind, Metadata: meta})

	irKind := ir.DefField
	if kind == registry.DefFunction {
		irKind = ir.DefFunction
	}
	return &ir.TopDef{TargetName: target, Kind: irKind, Doc: doc, Value: valueNode}, nil
}
