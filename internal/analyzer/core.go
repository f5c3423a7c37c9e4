package analyzer

import (
	"github.com/formlang/formc/internal/diagnostics"
	"github.com/formlang/formc/internal/ir"
	"github.com/formlang/formc/internal/surface"
)

// Analyze lowers one expanded form into IR. tail reports whether form sits
// in the tail position of the enclosing loop/fn body — the only position a
// `recur` may legally appear (spec.md §3 invariants, §4.3 recursion).
func (a *Analyzer) Analyze(env *Env, form surface.Form, tail bool) (ir.Node, error) {
	switch form.Kind {
	case surface.KindNil:
		return annotateTruth(&ir.Literal{LitKind: ir.LitNil}, ""), nil
	case surface.KindBool:
		return annotateTruth(&ir.Literal{LitKind: ir.LitBool, Bool: form.Bool}, "bool"), nil
	case surface.KindNumber:
		return annotateTruth(&ir.Literal{LitKind: ir.LitNumber, Text: form.Number}, "num"), nil
	case surface.KindString:
		return annotateTruth(&ir.Literal{LitKind: ir.LitString, Text: form.Str}, "String"), nil
	case surface.KindKeyword:
		return a.analyzeKeyword(env, form)
	case surface.KindSymbol:
		return a.analyzeSymbolRef(env, form)
	case surface.KindSeq:
		return a.analyzeSeq(env, form, tail)
	case surface.KindVector, surface.KindMap, surface.KindSet:
		// Aggregate literals lower to persistent-collection factory calls at
		// runtime, which is explicitly out of scope (spec.md §1 non-goals:
		// "runtime library implementation ... persistent collections").
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "aggregate literal")
	case surface.KindTagged:
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "tagged literal")
	}
	return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "unrecognized form")
}

func (a *Analyzer) analyzeSymbolRef(env *Env, form surface.Form) (ir.Node, error) {
	if id, ok := env.LookupIdent(form.Name); ok && form.NS == "" {
		return annotateTruth(id, ""), nil
	}
	target, err := a.Reg.Resolve(env, form)
	if err != nil {
		return nil, analyzerErr(diagnostics.ErrUnknownSymbol, form.Pos, fmtForm(form))
	}
	return annotateTruth(&ir.Ident{Name: target, Hint: form.Name}, ""), nil
}

// analyzeKeyword lowers :ns/name to a call against the runtime's keyword
// intern factory (spec.md §8 scenario 6).
func (a *Analyzer) analyzeKeyword(env *Env, form surface.Form) (ir.Node, error) {
	target, err := a.Reg.Resolve(env, surface.QSym("core", "keyword"))
	if err != nil {
		target = "core$keyword.intern"
	}
	callee := &ir.Ident{Name: target, Hint: "keyword"}
	args := []ir.Node{
		&ir.Literal{LitKind: ir.LitString, Text: form.NS},
		&ir.Literal{LitKind: ir.LitString, Text: form.Name},
	}
	return &ir.Call{Callee: callee, Args: args, Dispatch: ir.DispatchNative}, nil
}

func (a *Analyzer) analyzeSeq(env *Env, form surface.Form, tail bool) (ir.Node, error) {
	head, ok := form.Head()
	if !ok {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "empty seq")
	}
	if head.Kind == surface.KindSymbol && head.NS == "" && !env.Binds(head.Name) {
		switch head.Name {
		case "do":
			return a.analyzeDo(env, form, tail)
		case "let*":
			return a.analyzeLet(env, form, tail)
		case "if":
			return a.analyzeIf(env, form, tail)
		case "loop*":
			return a.analyzeLoop(env, form, tail)
		case "recur":
			return a.analyzeRecur(env, form, tail)
		case "fn*":
			return a.analyzeFn(env, form)
		case "case*":
			return a.analyzeCase(env, form, tail)
		case "try":
			return a.analyzeTry(env, form, tail)
		case "throw":
			return a.analyzeThrow(env, form)
		case ".":
			return a.analyzeDot(env, form)
		case ".-":
			return a.analyzeFieldRead(env, form)
		case "set!":
			return a.analyzeSet(env, form)
		case "new":
			return a.analyzeNew(env, form)
		case "is?":
			return a.analyzeIs(env, form)
		case "as":
			return a.analyzeAs(env, form)
		case "def":
			return a.analyzeDef(env, form)
		case "reify*":
			return a.analyzeReify(env, form)
		case "deftype*":
			return a.analyzeDeftype(env, form)
		case "quote":
			return a.analyzeQuote(env, form)
		}
	}
	return a.analyzeCall(env, form)
}

// analyzeDo lowers (do a b c) to nested statement bindings, keeping only the
// last form's value (spec.md §4.2 "do" fixed special).
func (a *Analyzer) analyzeDo(env *Env, form surface.Form, tail bool) (ir.Node, error) {
	items := form.Tail()
	if len(items) == 0 {
		return &ir.Literal{LitKind: ir.LitNil}, nil
	}
	nodes := make([]ir.Node, len(items))
	for i, it := range items {
		isTail := tail && i == len(items)-1
		n, err := a.Analyze(env, it, isTail)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return ir.Do(form.Pos, nodes...), nil
}

// analyzeLet lowers (let* [a 1 b 2] body) sequentially, extending env as
// each binding is analyzed so later bindings and the body can reference
// earlier ones (spec.md §3 "let" IR node).
func (a *Analyzer) analyzeLet(env *Env, form surface.Form, tail bool) (ir.Node, error) {
	tailItems := form.Tail()
	if len(tailItems) < 2 || tailItems[0].Kind != surface.KindVector {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "let*")
	}
	pairs := tailItems[0].Items
	body := tailItems[1]

	var bindings []ir.Binding
	curEnv := env
	for i := 0; i+1 < len(pairs); i += 2 {
		nameForm := pairs[i]
		valForm := pairs[i+1]
		valNode, err := a.Analyze(curEnv, valForm, false)
		if err != nil {
			return nil, err
		}
		id := a.newIdent(nameForm.Name, false)
		bindings = append(bindings, ir.Binding{Id: id, Value: valNode})
		curEnv = curEnv.Extend(nameForm.Name, id)
	}

	bodyNode, err := a.Analyze(curEnv, body, tail)
	if err != nil {
		return nil, err
	}
	return &ir.Let{Bindings: bindings, Body: bodyNode}, nil
}

// analyzeIf lowers (if test then else?); the test is lifted to a temporary
// when non-atomic (spec.md §8 scenario 2), and truth metadata is attached so
// the emitter can choose the minimal guard (spec.md §4.3).
func (a *Analyzer) analyzeIf(env *Env, form surface.Form, tail bool) (ir.Node, error) {
	items := form.Tail()
	if len(items) < 2 {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "if")
	}
	testNode, err := a.Analyze(env, items[0], false)
	if err != nil {
		return nil, err
	}
	thenNode, err := a.Analyze(env, items[1], tail)
	if err != nil {
		return nil, err
	}
	var elseNode ir.Node
	if len(items) > 2 {
		elseNode, err = a.Analyze(env, items[2], tail)
		if err != nil {
			return nil, err
		}
	}

	bindings, testAtom := a.liftOperand(testNode, "t")
	annotateTruth(testAtom, "")
	ifNode := &ir.If{Test: testAtom, Then: thenNode, Else: elseNode}
	return wrapBindings(bindings, ifNode), nil
}

// analyzeLoop lowers (loop* [a 0 b 1] body); recur inside body must match
// the binding arity (spec.md §3, §4.3).
func (a *Analyzer) analyzeLoop(env *Env, form surface.Form, tail bool) (ir.Node, error) {
	items := form.Tail()
	if len(items) < 2 || items[0].Kind != surface.KindVector {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "loop*")
	}
	pairs := items[0].Items
	bodyForm := items[1]

	var bindings []ir.Binding
	var ids []*ir.Ident
	curEnv := env
	for i := 0; i+1 < len(pairs); i += 2 {
		valNode, err := a.Analyze(curEnv, pairs[i+1], false)
		if err != nil {
			return nil, err
		}
		id := a.newIdent(pairs[i].Name, true)
		bindings = append(bindings, ir.Binding{Id: id, Value: valNode})
		ids = append(ids, id)
		curEnv = curEnv.Extend(pairs[i].Name, id)
	}

	loop := &ir.Loop{Bindings: bindings}
	bodyNode, err := a.analyzeLoopBody(curEnv, bodyForm, len(ids))
	if err != nil {
		return nil, err
	}
	loop.Body = bodyNode
	return loop, nil
}

// analyzeLoopBody analyzes a loop/fn body in tail position and validates
// that every recur it contains matches arity (spec.md invariant).
func (a *Analyzer) analyzeLoopBody(env *Env, body surface.Form, arity int) (ir.Node, error) {
	node, err := a.Analyze(env, body, true)
	if err != nil {
		return nil, err
	}
	return node, validateRecurArity(node, arity)
}

// analyzeRecur lowers (recur a b c); it is only legal in tail position
// (spec.md invariant) — non-tail occurrences are a programming error in the
// forms MX/AN produce internally, so this is enforced by the tail flag
// threaded through Analyze rather than a separate diagnostic code.
func (a *Analyzer) analyzeRecur(env *Env, form surface.Form, tail bool) (ir.Node, error) {
	if !tail {
		return nil, analyzerErr(diagnostics.ErrRecurBoundary, form.Pos)
	}
	var bindings []ir.Binding
	args := make([]ir.Node, 0, len(form.Tail()))
	for _, argForm := range form.Tail() {
		n, err := a.Analyze(env, argForm, false)
		if err != nil {
			return nil, err
		}
		bs, atom := a.liftOperand(n, "recur_arg")
		bindings = append(bindings, bs...)
		args = append(args, atom)
	}
	recur := &ir.Recur{Args: args}
	return wrapBindings(bindings, recur), nil
}

// analyzeThrow lowers (throw expr); per the invariant that throw is always
// statement/return position, the analyzer wraps it in a Let with a nil body
// (spec.md §3 invariants).
func (a *Analyzer) analyzeThrow(env *Env, form surface.Form) (ir.Node, error) {
	items := form.Tail()
	if len(items) != 1 {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "throw")
	}
	exprNode, err := a.Analyze(env, items[0], false)
	if err != nil {
		return nil, err
	}
	throw := &ir.Throw{Expr: exprNode}
	return &ir.Let{Bindings: []ir.Binding{{Id: nil, Value: throw}}, Body: &ir.Literal{LitKind: ir.LitNil}}, nil
}

// analyzeDot lowers (. o m args...); o is lifted so it's evaluated exactly
// once even when compound (spec.md §8 property 4).
func (a *Analyzer) analyzeDot(env *Env, form surface.Form) (ir.Node, error) {
	items := form.Tail()
	if len(items) < 2 {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, ".")
	}
	objNode, err := a.Analyze(env, items[0], false)
	if err != nil {
		return nil, err
	}
	member := memberName(items[1])

	positional, named, err := a.analyzeArgForms(env, items[2:])
	if err != nil {
		return nil, err
	}

	objBindings, objAtom := a.liftOperand(objNode, "recv")
	argBindings, newPositional, newNamed := a.liftArgs(positional, named, "arg")

	call := &ir.MethodCall{Object: objAtom, Member: member, Args: newPositional, NamedArgs: newNamed}
	annotateTruth(call, "")
	return wrapBindings(append(objBindings, argBindings...), call), nil
}

func memberName(f surface.Form) string {
	if f.Kind == surface.KindString {
		return f.Str
	}
	return f.Name
}

// analyzeFieldRead lowers (.- o field).
func (a *Analyzer) analyzeFieldRead(env *Env, form surface.Form) (ir.Node, error) {
	items := form.Tail()
	if len(items) != 2 {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, ".-")
	}
	objNode, err := a.Analyze(env, items[0], false)
	if err != nil {
		return nil, err
	}
	bindings, atom := a.liftOperand(objNode, "recv")
	fr := &ir.FieldRead{Object: atom, Field: memberName(items[1])}
	return wrapBindings(bindings, fr), nil
}

// analyzeSet lowers (set! target value); target must be a mutable local or a
// "-field" access (spec.md §7 bad-assignment).
func (a *Analyzer) analyzeSet(env *Env, form surface.Form) (ir.Node, error) {
	items := form.Tail()
	if len(items) != 2 {
		return nil, analyzerErr(diagnostics.ErrBadAssignment, form.Pos, "set!")
	}
	valNode, err := a.Analyze(env, items[1], false)
	if err != nil {
		return nil, err
	}

	targetForm := items[0]
	if targetForm.Kind == surface.KindSymbol {
		id, ok := env.LookupIdent(targetForm.Name)
		if !ok || !id.Mutable {
			return nil, analyzerErr(diagnostics.ErrBadAssignment, form.Pos, fmtForm(targetForm))
		}
		return &ir.Set{Target: ir.AssignTarget{Id: id}, Value: valNode}, nil
	}
	if targetForm.Kind == surface.KindSeq {
		head, ok := targetForm.Head()
		if ok && head.IsSymbol(".-") {
			fr, err := a.analyzeFieldRead(env, targetForm)
			if err != nil {
				return nil, err
			}
			if inner, ok := fr.(*ir.FieldRead); ok {
				return &ir.Set{Target: ir.AssignTarget{Object: inner.Object, Field: inner.Field}, Value: valNode}, nil
			}
		}
	}
	return nil, analyzerErr(diagnostics.ErrBadAssignment, form.Pos, fmtForm(targetForm))
}

// analyzeNew lowers (new Cls args...); args may include a named-argument
// tail (spec.md §3 invariant: named args follow positional args).
func (a *Analyzer) analyzeNew(env *Env, form surface.Form) (ir.Node, error) {
	items := form.Tail()
	if len(items) < 1 {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "new")
	}
	classNode, err := a.Analyze(env, items[0], false)
	if err != nil {
		return nil, err
	}
	positional, named, err := a.analyzeArgForms(env, items[1:])
	if err != nil {
		return nil, err
	}
	argBindings, newPositional, newNamed := a.liftArgs(positional, named, "arg")
	n := &ir.New{Class: classNode, Args: newPositional, NamedArgs: newNamed}
	annotateTruth(n, "")
	return wrapBindings(argBindings, n), nil
}

// analyzeIs lowers (is? expr Type).
func (a *Analyzer) analyzeIs(env *Env, form surface.Form) (ir.Node, error) {
	items := form.Tail()
	if len(items) != 2 {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "is?")
	}
	exprNode, err := a.Analyze(env, items[0], false)
	if err != nil {
		return nil, err
	}
	typeNode, err := a.Analyze(env, items[1], false)
	if err != nil {
		return nil, err
	}
	return annotateTruth(&ir.Is{Expr: exprNode, Type: typeNode}, "bool"), nil
}

// analyzeAs lowers (as expr Type).
func (a *Analyzer) analyzeAs(env *Env, form surface.Form) (ir.Node, error) {
	items := form.Tail()
	if len(items) != 2 {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "as")
	}
	exprNode, err := a.Analyze(env, items[0], false)
	if err != nil {
		return nil, err
	}
	typeNode, err := a.Analyze(env, items[1], false)
	if err != nil {
		return nil, err
	}
	return annotateTruth(&ir.As{Expr: exprNode, Type: typeNode}, ""), nil
}

// analyzeQuote lowers (quote x): a symbol quotes to a symbol-intern factory
// call (mirroring analyzeKeyword); any other atom quotes to itself. Quoting
// a compound seq/vector/map/set is out of scope along with the rest of the
// persistent-collection runtime (spec.md §1 non-goals).
func (a *Analyzer) analyzeQuote(env *Env, form surface.Form) (ir.Node, error) {
	items := form.Tail()
	if len(items) != 1 {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "quote")
	}
	inner := items[0]
	if inner.Kind == surface.KindSymbol {
		target, err := a.Reg.Resolve(env, surface.QSym("core", "symbol"))
		if err != nil {
			target = "core$symbol.intern"
		}
		callee := &ir.Ident{Name: target, Hint: "symbol"}
		args := []ir.Node{
			&ir.Literal{LitKind: ir.LitString, Text: inner.NS},
			&ir.Literal{LitKind: ir.LitString, Text: inner.Name},
		}
		return &ir.Call{Callee: callee, Args: args, Dispatch: ir.DispatchNative}, nil
	}
	return a.Analyze(env, inner, false)
}

// analyzeArgForms splits a raw argument-form slice at the named-argument
// sentinel (spec.md §3 invariant: "the boundary is a distinguished sentinel
// in the surface form"), here the keyword `:named-args` appearing as its own
// element, followed by alternating name/value forms.
func (a *Analyzer) analyzeArgForms(env *Env, forms []surface.Form) ([]ir.Node, []ir.NamedArg, error) {
	boundary := -1
	for i, f := range forms {
		if f.Kind == surface.KindKeyword && f.Name == "named-args" {
			boundary = i
			break
		}
	}
	positionalForms := forms
	var namedForms []surface.Form
	if boundary >= 0 {
		positionalForms = forms[:boundary]
		namedForms = forms[boundary+1:]
	}

	positional := make([]ir.Node, len(positionalForms))
	for i, f := range positionalForms {
		n, err := a.Analyze(env, f, false)
		if err != nil {
			return nil, nil, err
		}
		positional[i] = n
	}

	named := make([]ir.NamedArg, 0, len(namedForms)/2)
	for i := 0; i+1 < len(namedForms); i += 2 {
		n, err := a.Analyze(env, namedForms[i+1], false)
		if err != nil {
			return nil, nil, err
		}
		named = append(named, ir.NamedArg{Name: namedForms[i].Name, Value: n})
	}
	return positional, named, nil
}

// analyzeCall is the fallback: a plain call whose dispatch strategy is
// decided once function lowering has tagged the callee (spec.md §4.4
// "calls" rule).
func (a *Analyzer) analyzeCall(env *Env, form surface.Form) (ir.Node, error) {
	items := form.Items
	calleeNode, err := a.Analyze(env, items[0], false)
	if err != nil {
		return nil, err
	}
	positional, named, err := a.analyzeArgForms(env, items[1:])
	if err != nil {
		return nil, err
	}

	calleeBindings, calleeAtom := a.liftOperand(calleeNode, "fn")
	argBindings, newPositional, newNamed := a.liftArgs(positional, named, "arg")

	call := &ir.Call{
		Callee:    calleeAtom,
		Args:      newPositional,
		NamedArgs: newNamed,
		Dispatch:  a.dispatchKindFor(calleeAtom),
	}
	return wrapBindings(append(calleeBindings, argBindings...), call), nil
}

// dispatchKindFor inspects a callee atom to decide its calling convention
// (spec.md §4.4): a name registered as a native top-level function
// dispatches directly; one registered as invoke-style goes through its
// synthesized call machinery; anything else falls back to a runtime "is
// IFn" check until the analyzer can prove otherwise (see functions.go).
func (a *Analyzer) dispatchKindFor(callee ir.Node) ir.DispatchKind {
	id, ok := callee.(*ir.Ident)
	if !ok {
		return ir.DispatchUnknown
	}
	if a.nativeFns[id.Name] {
		return ir.DispatchNative
	}
	if a.invokeFns[id.Name] {
		return ir.DispatchInvoke
	}
	return ir.DispatchUnknown
}
