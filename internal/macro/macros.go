package macro

import (
	"fmt"
	"strings"

	"github.com/formlang/formc/internal/mangle"
	"github.com/formlang/formc/internal/registry"
	"github.com/formlang/formc/internal/surface"
)

// expandReify rewrites (reify Iface1 Iface2 (method [this a b] body) ...)
// into a reify* special form; the analyzer computes the closure set and
// constructor parameters (spec.md §4.3 reify/deftype class assembly).
func expandReify(x *Expander, pos surface.Position, args []surface.Form) surface.Form {
	items := append([]surface.Form{surface.Sym("reify*")}, args...)
	return seq(pos, items...)
}

// expandDeftype rewrites (deftype Name [field1 ^:mutable field2] Iface... methods...)
// into a deftype* special form plus an automatic constructor factory ->Name
// (spec.md §4.2 deftype).
func expandDeftype(x *Expander, pos surface.Position, args []surface.Form) surface.Form {
	if len(args) < 2 {
		return seq(pos, append([]surface.Form{surface.Sym("deftype*")}, args...)...)
	}
	name := args[0]
	fields := args[1].Items

	deftypeForm := seq(pos, append([]surface.Form{surface.Sym("deftype*")}, args...)...)

	fieldIds := make([]surface.Form, len(fields))
	copy(fieldIds, fields)
	ctorName := surface.Sym("->" + name.Name)
	factoryBody := seq(pos, append([]surface.Form{name}, fieldIds...)...)
	factoryParams := surface.Form{Kind: surface.KindVector, Items: fieldIds}
	factory := seq(pos,
		surface.Sym("def"), ctorName,
		seq(pos, surface.Sym("fn*"), factoryParams, factoryBody),
	)

	return seq(pos, surface.Sym("do"), deftypeForm, factory)
}

// expandDefinterface rewrites (definterface Name (method1 [this a]) (method2 [this])) into
// a deftype* special form whose methods all carry an empty (abstract) body.
func expandDefinterface(x *Expander, pos surface.Position, args []surface.Form) surface.Form {
	if len(args) == 0 {
		return seq(pos)
	}
	name := args[0]
	methods := args[1:]
	abstractMethods := make([]surface.Form, len(methods))
	for i, m := range methods {
		// (method1 [this a]) -> (method1 [this a]) with a synthetic nil body
		// marking "no body" for the emitter's abstract-method rule.
		items := append(append([]surface.Form{}, m.Items...), surface.Form{Kind: surface.KindNil})
		abstractMethods[i] = seq(m.Pos, items...)
	}
	items := append([]surface.Form{surface.Sym("deftype*"), name, {Kind: surface.KindVector}}, abstractMethods...)
	return seq(pos, items...)
}

// expandDefprotocol synthesizes a marker class plus, for each method arity,
// a dispatch function, and records {arity -> {target-name, params}} into the
// protocol's NR record (spec.md §4.2).
func expandDefprotocol(x *Expander, pos surface.Position, args []surface.Form) surface.Form {
	if len(args) == 0 {
		return seq(pos)
	}
	protoName := args[0]
	methodSpecs := args[1:]

	ns := x.reg.Current()
	proto := ns.Protocol(protoName.Name)

	markerClass := seq(pos, surface.Sym("deftype*"), protoName, surface.Form{Kind: surface.KindVector})

	forms := []surface.Form{surface.Sym("do"), markerClass}

	for _, spec := range methodSpecs {
		head, ok := spec.Head()
		if !ok {
			continue
		}
		methodName := head.Name
		params := spec.Tail() // e.g. [this a b] as a single vector form, or plain param symbols
		var paramNames []string
		if len(params) == 1 && params[0].Kind == surface.KindVector {
			for _, p := range params[0].Items {
				paramNames = append(paramNames, p.Name)
			}
		}
		arity := len(paramNames)
		extraArgs := arity - 1
		if extraArgs < 0 {
			extraArgs = 0
		}
		targetName := mangle.Name(methodName) + fmt.Sprintf("$%d", extraArgs)

		if proto.Methods[methodName] == nil {
			proto.Methods[methodName] = make(map[int]registry.ProtocolMethod)
		}
		proto.Methods[methodName][arity] = registry.ProtocolMethod{
			TargetMethodName: targetName,
			Params:           paramNames,
		}

		forms = append(forms, buildProtocolDispatchFn(pos, protoName, methodName, targetName, paramNames))
	}

	return seq(pos, forms...)
}

// buildProtocolDispatchFn synthesizes:
//
//	(def method (fn* [this a b] (if (is? this Proto) (. this "target" a b) (throw (new UnsupportedError "protocol Proto.method not extended on this type")))))
//
// The else branch is the reserved extension-fallback slot (spec.md §9 open
// question on protocol extension for foreign types) — it fails loudly rather
// than silently misdispatching.
func buildProtocolDispatchFn(pos surface.Position, protoName surface.Form, methodName, targetName string, paramNames []string) surface.Form {
	params := make([]surface.Form, len(paramNames))
	for i, p := range paramNames {
		params[i] = surface.Sym(p)
	}
	if len(params) == 0 {
		params = []surface.Form{surface.Sym("this")}
	}
	this := params[0]
	rest := params[1:]

	dispatchCall := seq(pos, append([]surface.Form{surface.Sym("."), this, strForm(targetName)}, rest...)...)
	fallback := seq(pos, surface.Sym("throw"),
		seq(pos, surface.Sym("new"), surface.Sym("UnsupportedError"),
			strForm("protocol "+protoName.Name+"."+methodName+" not extended on this type")))

	testForm := seq(pos, surface.Sym("is?"), this, protoName)
	ifForm := seq(pos, surface.Sym("if"), testForm, dispatchCall, fallback)
	fn := seq(pos, surface.Sym("fn*"), surface.Form{Kind: surface.KindVector, Items: params}, ifForm)
	return seq(pos, surface.Sym("def"), surface.Sym(methodName), fn)
}

func strForm(s string) surface.Form { return surface.Form{Kind: surface.KindString, Str: s} }

// expandCase rewrites (case scrutinee v1 r1 v2 r2 ... default?) to either
// case* directly (scrutinee is already a symbol) or a let around case*
// (spec.md §4.2 case).
func expandCase(x *Expander, pos surface.Position, args []surface.Form) surface.Form {
	if len(args) == 0 {
		return seq(pos, surface.Sym("case*"))
	}
	scrutinee := args[0]
	rest := args[1:]

	if scrutinee.Kind == surface.KindSymbol {
		items := append([]surface.Form{surface.Sym("case*"), scrutinee}, rest...)
		return seq(pos, items...)
	}

	tmp := surface.Sym("__case_scrut__")
	bindings := surface.Form{Kind: surface.KindVector, Items: []surface.Form{tmp, scrutinee}}
	innerItems := append([]surface.Form{surface.Sym("case*"), tmp}, rest...)
	return seq(pos, surface.Sym("let*"), bindings, seq(pos, innerItems...))
}

// expandAre rewrites (are [argv...] (assertion-form) args...) into a do
// block of one `is` assertion per group of len(argv) args, substituting
// positionally (spec.md §4.2). When args doesn't divide evenly the expansion
// is a form that throws ArgumentError when run; no E-ARE-ARITY diagnostic is
// raised at expansion time.
func expandAre(x *Expander, pos surface.Position, args []surface.Form) surface.Form {
	if len(args) < 2 {
		return seq(pos, surface.Sym("do"))
	}
	argv := args[0].Items
	assertion := args[1]
	values := args[2:]

	if len(argv) == 0 || len(values)%len(argv) != 0 {
		// are-arity-mismatch: emit a throw so the failure surfaces loudly
		// at the point the macro expanded, per spec.md §7.
		return seq(pos, surface.Sym("throw"),
			seq(pos, surface.Sym("new"), surface.Sym("ArgumentError"),
				strForm("are: argv/args arity mismatch")))
	}

	var clauses []surface.Form
	for i := 0; i < len(values); i += len(argv) {
		group := values[i : i+len(argv)]
		substituted := substituteSymbols(assertion, argv, group)
		clauses = append(clauses, seq(pos, surface.Sym("is"), substituted))
	}
	return seq(pos, append([]surface.Form{surface.Sym("do")}, clauses...)...)
}

// substituteSymbols replaces every occurrence of names[i] (a bare symbol)
// within form with replacements[i], recursively.
func substituteSymbols(form surface.Form, names []surface.Form, replacements []surface.Form) surface.Form {
	if form.Kind == surface.KindSymbol && form.NS == "" {
		for i, n := range names {
			if n.Kind == surface.KindSymbol && n.Name == form.Name {
				return replacements[i]
			}
		}
		return form
	}
	if len(form.Items) > 0 {
		newItems := make([]surface.Form, len(form.Items))
		for i, it := range form.Items {
			newItems[i] = substituteSymbols(it, names, replacements)
		}
		form.Items = newItems
	}
	return form
}

// expandIs rewrites a one-shot assertion (is expr) to a conditional throw
// (spec.md §4.2).
func expandIs(x *Expander, pos surface.Position, args []surface.Form) surface.Form {
	if len(args) == 0 {
		return seq(pos, surface.Sym("do"))
	}
	expr := args[0]
	msg := strForm(formSourceHint(expr))
	failure := seq(pos, surface.Sym("throw"),
		seq(pos, surface.Sym("new"), surface.Sym("AssertionError"), msg))
	return seq(pos, surface.Sym("if"), expr, surface.Form{Kind: surface.KindNil}, failure)
}

// formSourceHint produces a short, human-readable rendering of a form for
// assertion-failure messages; it is not the emitter's textual renderer.
func formSourceHint(f surface.Form) string {
	switch f.Kind {
	case surface.KindSymbol:
		if f.NS != "" {
			return f.NS + "/" + f.Name
		}
		return f.Name
	case surface.KindSeq:
		parts := make([]string, len(f.Items))
		for i, it := range f.Items {
			parts[i] = formSourceHint(it)
		}
		return "(" + strings.Join(parts, " ") + ")"
	case surface.KindString:
		return `"` + f.Str + `"`
	default:
		return f.Number
	}
}

// expandTesting rewrites (testing "description" body...) into a do block
// that logs the description before running body (spec.md §4.2).
func expandTesting(x *Expander, pos surface.Position, args []surface.Form) surface.Form {
	if len(args) == 0 {
		return seq(pos, surface.Sym("do"))
	}
	desc := args[0]
	body := args[1:]
	printCall := seq(pos, surface.Sym("."), surface.Sym("TestReporter"), strForm("section"), desc)
	items := append([]surface.Form{surface.Sym("do"), printCall}, body...)
	return seq(pos, items...)
}

// expandDeftest rewrites (deftest name body...) into a zero-arity def'd
// function (spec.md §4.2); nothing else in the expansion refers to it by name.
func expandDeftest(x *Expander, pos surface.Position, args []surface.Form) surface.Form {
	if len(args) == 0 {
		return seq(pos, surface.Sym("do"))
	}
	name := args[0]
	body := args[1:]
	fnBody := append([]surface.Form{surface.Sym("fn*"), surface.Form{Kind: surface.KindVector}}, body...)
	return seq(pos, surface.Sym("def"), name, seq(pos, fnBody...))
}

// expandTryExpr rewrites (try-expr body) into a try usable in expression
// position: any exception is swallowed to nil rather than propagating
// (spec.md §4.2).
func expandTryExpr(x *Expander, pos surface.Position, args []surface.Form) surface.Form {
	if len(args) == 0 {
		return surface.Form{Kind: surface.KindNil}
	}
	body := args[0]
	catch := seq(pos, surface.Sym("catch"), surface.Sym("Exception"), surface.Sym("__try_expr_exn__"),
		surface.Form{Kind: surface.KindNil})
	return seq(pos, surface.Sym("try"), body, catch)
}

// expandDefrunnerMain rewrites (defrunner-main) into a main entry point that
// calls the runtime's TestRunner.runAll() with no arguments; it passes no
// list of the deftest functions (spec.md §4.2).
func expandDefrunnerMain(x *Expander, pos surface.Position, args []surface.Form) surface.Form {
	runAll := seq(pos, surface.Sym("."), surface.Sym("TestRunner"), strForm("runAll"))
	fn := seq(pos, surface.Sym("fn*"), surface.Form{Kind: surface.KindVector}, runAll)
	return seq(pos, surface.Sym("def"), surface.Sym("main"), fn)
}
