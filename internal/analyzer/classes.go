package analyzer

import (
	"github.com/formlang/formc/internal/diagnostics"
	"github.com/formlang/formc/internal/ir"
	"github.com/formlang/formc/internal/mangle"
	"github.com/formlang/formc/internal/registry"
	"github.com/formlang/formc/internal/surface"
)

// analyzeDeftype lowers (deftype* Name [field ^:mutable field2 ...]
// (extends Parent arg...)? Iface1 ^:mixin Mixin1 (method [this a] body) ...)
// into a named ir.Class registered in NR as a DefClass (spec.md §4.3 class
// assembly). The optional (extends ...) clause must come first in the tail
// if present; an interface symbol tagged ^:mixin contributes to Mixins
// instead of Implements.
func (a *Analyzer) analyzeDeftype(env *Env, form surface.Form) (ir.Node, error) {
	items := form.Tail()
	if len(items) < 2 || items[1].Kind != surface.KindVector {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "deftype*")
	}
	nameForm := items[0]
	fieldForms := items[1].Items
	rest := items[2:]

	classEnv := env
	fields := make([]*ir.Ident, len(fieldForms))
	for i, ff := range fieldForms {
		mutable := false
		if ff.Meta != nil {
			if _, ok := ff.Meta["mutable"]; ok {
				mutable = true
			}
		}
		id := a.newIdent(ff.Name, mutable)
		fields[i] = id
		classEnv = classEnv.Extend(ff.Name, id)
	}

	body, err := a.analyzeClassBody(classEnv, rest)
	if err != nil {
		return nil, err
	}

	ns := a.Reg.Current()
	target := mangle.Name(nameForm.Name)
	a.Reg.PreDeclare(ns, nameForm.Name, target, registry.DefClass)
	a.Reg.Define(ns, nameForm.Name, registry.Definition{TargetName: target, Kind: registry.DefClass})

	class := &ir.Class{
		Name:             target,
		Extends:          body.extends,
		Mixins:           body.mixins,
		SuperCtor:        body.superCtor,
		Implements:       body.implements,
		Fields:           fields,
		Methods:          body.methods,
		NeedNoSuchMethod: len(body.implements) > 0,
	}
	return &ir.TopDef{TargetName: target, Kind: ir.DefClass, Value: class}, nil
}

// analyzeReify lowers (reify* Iface1 Iface2 (method [this a] body) ...) into
// an anonymous ir.Class whose Fields are the computed free-variable closure
// set rather than explicit source fields (spec.md §4.3: reify captures its
// enclosing lexical scope; deftype's fields are its only state).
func (a *Analyzer) analyzeReify(env *Env, form surface.Form) (ir.Node, error) {
	items := form.Tail()
	body, err := a.analyzeClassBody(env, items)
	if err != nil {
		return nil, err
	}

	closure := map[string]*ir.Ident{}
	for _, m := range body.methods {
		bound := map[string]bool{}
		for _, p := range m.Params {
			bound[p.Name] = true
		}
		if m.Variadic != nil {
			bound[m.Variadic.Name] = true
		}
		for _, p := range m.Opt {
			bound[p.Id.Name] = true
		}
		ids := map[string]*ir.Ident{}
		collectIdents(m.Body, ids)
		for name, id := range ids {
			if !bound[name] {
				closure[name] = id
			}
		}
	}
	fields := make([]*ir.Ident, 0, len(closure))
	for _, id := range closure {
		fields = append(fields, id)
	}

	return &ir.Class{
		Implements:       body.implements,
		Fields:           fields,
		Methods:          body.methods,
		NeedNoSuchMethod: len(body.implements) > 0,
	}, nil
}

// classBody is the parsed tail of a deftype*/reify* form: its optional
// parent-class clause, implemented-interface symbols (split from mixins),
// and method bodies.
type classBody struct {
	extends    string
	superCtor  *ir.SuperCtorCall
	implements []string
	mixins     []string
	methods    []ir.Method
}

// analyzeClassBody splits a deftype*/reify* tail into an optional leading
// (extends Parent arg...) clause, implemented-type symbols (^:mixin ones
// routed to Mixins instead), and method bodies (spec.md §4.3 class
// assembly).
func (a *Analyzer) analyzeClassBody(env *Env, rest []surface.Form) (classBody, error) {
	var body classBody
	for i, r := range rest {
		if i == 0 && r.Kind == surface.KindSeq {
			if head, ok := r.Head(); ok && head.IsSymbol("extends") {
				extends, superCtor, err := a.analyzeExtendsClause(env, r)
				if err != nil {
					return classBody{}, err
				}
				body.extends = extends
				body.superCtor = superCtor
				continue
			}
		}
		if r.Kind == surface.KindSymbol {
			target, err := a.Reg.Resolve(env, r)
			if err != nil {
				target = mangle.Name(r.Name)
			}
			if r.Meta != nil {
				if _, ok := r.Meta["mixin"]; ok {
					body.mixins = append(body.mixins, target)
					continue
				}
			}
			body.implements = append(body.implements, target)
			continue
		}
		m, err := a.analyzeMethod(env, r)
		if err != nil {
			return classBody{}, err
		}
		body.methods = append(body.methods, m)
	}
	return body, nil
}

// analyzeExtendsClause lowers (extends Parent arg...), optionally naming a
// parent constructor with a leading keyword (extends Parent :named arg...),
// into the parent class's target name and its ir.SuperCtorCall (spec.md
// §4.3 class assembly "super-ctor {method?, args}").
func (a *Analyzer) analyzeExtendsClause(env *Env, form surface.Form) (string, *ir.SuperCtorCall, error) {
	tail := form.Tail()
	if len(tail) < 1 {
		return "", nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "extends")
	}
	parentForm := tail[0]
	target, err := a.Reg.Resolve(env, parentForm)
	if err != nil {
		target = mangle.Name(parentForm.Name)
	}
	argForms := tail[1:]
	method := ""
	if len(argForms) > 0 && argForms[0].Kind == surface.KindKeyword {
		method = argForms[0].Name
		argForms = argForms[1:]
	}
	args := make([]ir.Node, len(argForms))
	for i, af := range argForms {
		n, aerr := a.Analyze(env, af, false)
		if aerr != nil {
			return "", nil, aerr
		}
		args[i] = n
	}
	return target, &ir.SuperCtorCall{Method: method, Args: args}, nil
}

// analyzeMethod lowers one (name [params...] body...) method spec. A single
// nil-literal body (as definterface synthesizes) marks an abstract method.
// A name tagged ^:getter or ^:setter marks the method accordingly (spec.md
// §4.3 "Methods may be tagged as getter/setter").
func (a *Analyzer) analyzeMethod(env *Env, form surface.Form) (ir.Method, error) {
	head, ok := form.Head()
	if !ok {
		return ir.Method{}, analyzerErr(diagnostics.ErrLiteral, form.Pos, "method")
	}
	tailItems := form.Tail()
	if len(tailItems) < 1 || tailItems[0].Kind != surface.KindVector {
		return ir.Method{}, analyzerErr(diagnostics.ErrLiteral, form.Pos, "method params")
	}
	paramForms := tailItems[0].Items
	bodyForms := tailItems[1:]

	kind := ir.MethodPlain
	if head.Meta != nil {
		if _, ok := head.Meta["getter"]; ok {
			kind = ir.MethodGetter
		} else if _, ok := head.Meta["setter"]; ok {
			kind = ir.MethodSetter
		}
	}

	fixed, optKind, opt, variadic, methodEnv, err := a.parseParamVector(env, paramForms)
	if err != nil {
		return ir.Method{}, err
	}

	if len(bodyForms) == 1 && bodyForms[0].Kind == surface.KindNil {
		return ir.Method{Name: head.Name, Kind: kind, Params: fixed, OptKind: optKind, Opt: opt, Variadic: variadic}, nil
	}

	bodyNode, err := a.analyzeBody(methodEnv, bodyForms, true)
	if err != nil {
		return ir.Method{}, err
	}
	arity := len(fixed)
	if variadic != nil {
		arity++
	}
	if err := validateRecurArity(bodyNode, arity); err != nil {
		return ir.Method{}, err
	}

	return ir.Method{Name: head.Name, Kind: kind, Params: fixed, OptKind: optKind, Opt: opt, Variadic: variadic, Body: bodyNode}, nil
}

// collectIdents walks n, recording every *ir.Ident leaf it reaches into out,
// keyed by mangled name. Used to compute reify's closure-capture set.
func collectIdents(n ir.Node, out map[string]*ir.Ident) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *ir.Ident:
		out[v.Name] = v
	case *ir.Let:
		for _, b := range v.Bindings {
			collectIdents(b.Value, out)
		}
		collectIdents(v.Body, out)
	case *ir.If:
		collectIdents(v.Test, out)
		collectIdents(v.Then, out)
		collectIdents(v.Else, out)
	case *ir.Loop:
		for _, b := range v.Bindings {
			collectIdents(b.Value, out)
		}
		collectIdents(v.Body, out)
	case *ir.Recur:
		for _, arg := range v.Args {
			collectIdents(arg, out)
		}
	case *ir.Fn:
		collectIdents(v.Body, out)
	case *ir.InvokeFn:
		for _, ar := range v.Arities {
			collectIdents(ar.Body, out)
		}
		collectIdents(v.VariadicBody, out)
	case *ir.Case:
		collectIdents(v.Scrutinee, out)
		for _, c := range v.Clauses {
			for _, val := range c.Values {
				collectIdents(val, out)
			}
			collectIdents(c.Body, out)
		}
		collectIdents(v.Default, out)
	case *ir.Try:
		collectIdents(v.Body, out)
		for _, c := range v.Catches {
			collectIdents(c.Body, out)
		}
		collectIdents(v.Finally, out)
	case *ir.Throw:
		collectIdents(v.Expr, out)
	case *ir.MethodCall:
		collectIdents(v.Object, out)
		for _, arg := range v.Args {
			collectIdents(arg, out)
		}
		for _, na := range v.NamedArgs {
			collectIdents(na.Value, out)
		}
	case *ir.FieldRead:
		collectIdents(v.Object, out)
	case *ir.Set:
		if v.Target.Id != nil {
			out[v.Target.Id.Name] = v.Target.Id
		}
		collectIdents(v.Target.Object, out)
		collectIdents(v.Value, out)
	case *ir.New:
		collectIdents(v.Class, out)
		for _, arg := range v.Args {
			collectIdents(arg, out)
		}
		for _, na := range v.NamedArgs {
			collectIdents(na.Value, out)
		}
	case *ir.Is:
		collectIdents(v.Expr, out)
	case *ir.As:
		collectIdents(v.Expr, out)
	case *ir.Call:
		collectIdents(v.Callee, out)
		for _, arg := range v.Args {
			collectIdents(arg, out)
		}
		for _, na := range v.NamedArgs {
			collectIdents(na.Value, out)
		}
	case *ir.TopDef:
		collectIdents(v.Value, out)
	}
}
