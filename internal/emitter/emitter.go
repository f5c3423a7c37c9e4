// Package emitter is the locus-driven textual printer (EM): it walks IR and
// prints target-language text, choosing between statement, return,
// expression, and argument loci the way the teacher's prettyprinter chooses
// between its own printing contexts (spec.md §4.4).
package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/formlang/formc/internal/config"
	"github.com/formlang/formc/internal/ir"
	"github.com/formlang/formc/internal/mangle"
)

// Emitter renders IR to target-language source text. Its mutable cross-call
// state is the loop-variable stack needed to rewrite Recur into a
// reassign-and-continue, and sentinelEmitted, which makes the `_absent`
// constant print at most once per Emitter; one Emitter is reused across the
// top-level forms of a namespace.
type Emitter struct {
	loopStack       [][]*ir.Ident
	sentinelEmitted bool
}

// New returns a ready-to-use Emitter.
func New() *Emitter { return &Emitter{} }

// EmitTopDef renders one namespace-level definition.
func (e *Emitter) EmitTopDef(def *ir.TopDef) string {
	switch def.Kind {
	case ir.DefClass:
		class, ok := def.Value.(*ir.Class)
		if !ok {
			return ""
		}
		return e.emitClass(class, def.TargetName)
	case ir.DefFunction:
		switch fn := def.Value.(type) {
		case *ir.Fn:
			return e.emitFunctionDecl(def.TargetName, fn)
		case *ir.InvokeFn:
			return e.emitInvokeFnDecl(def.TargetName, fn)
		}
		return e.emitFieldDecl(def.TargetName, def.Value)
	default:
		return e.emitFieldDecl(def.TargetName, def.Value)
	}
}

// EmitTopStatement renders a top-level form that isn't itself a def — e.g. a
// bare (testing ...) expansion run purely for effect — as a top-level
// initializer statement.
func (e *Emitter) EmitTopStatement(n ir.Node) string {
	return fmt.Sprintf("final _ = (() { %s})();\n", e.stmt(n, 0, true))
}

func (e *Emitter) emitFieldDecl(name string, value ir.Node) string {
	return fmt.Sprintf("final %s = %s;\n", name, e.expr(value))
}

func (e *Emitter) emitFunctionDecl(name string, fn *ir.Fn) string {
	var b strings.Builder
	fmt.Fprintf(&b, "dynamic %s(%s) {\n", name, e.paramList(fn))
	b.WriteString(e.emitBodyPushLoop(fn.Body, 1, true, fnLoopVars(fn)))
	b.WriteString("}\n")
	return b.String()
}

func fnLoopVars(fn *ir.Fn) []*ir.Ident {
	vars := append([]*ir.Ident{}, fn.Fixed...)
	if fn.Variadic != nil {
		vars = append(vars, fn.Variadic)
	}
	return vars
}

func (e *Emitter) paramList(fn *ir.Fn) string {
	parts := make([]string, 0, len(fn.Fixed)+len(fn.Opt)+1)
	for _, p := range fn.Fixed {
		parts = append(parts, "dynamic "+p.Name)
	}
	if fn.Variadic != nil {
		parts = append(parts, "List<dynamic> "+fn.Variadic.Name)
	}
	if len(fn.Opt) > 0 {
		open, close := "[", "]"
		if fn.OptKind == ir.OptNamed {
			open, close = "{", "}"
		}
		var opts []string
		for _, p := range fn.Opt {
			if p.Default != nil {
				opts = append(opts, fmt.Sprintf("dynamic %s = %s", p.Id.Name, e.expr(p.Default)))
			} else {
				opts = append(opts, "dynamic "+p.Id.Name)
			}
		}
		parts = append(parts, open+strings.Join(opts, ", ")+close)
	}
	return strings.Join(parts, ", ")
}

// invokeMethodName names the fixed-arity dispatch method for n positional
// arguments: plain "invoke$n" under the invoke threshold, "invoke$extn" at
// or beyond it (spec.md §4.3 "Function lowering").
func invokeMethodName(n int) string {
	if n >= config.InvokeThreshold {
		return fmt.Sprintf("invoke$ext%d", n)
	}
	return fmt.Sprintf("invoke$%d", n)
}

// emitInvokeFnDecl prints the polymorphic dispatch object a multi-arity,
// variadic, or wide-arity fn* lowers to, plus the top-level binding that
// names it (spec.md §4.3 "Function lowering").
func (e *Emitter) emitInvokeFnDecl(name string, inv *ir.InvokeFn) string {
	className := "_" + name + "Fn"
	var class strings.Builder
	needsSentinel := e.emitInvokeClass(&class, className, inv)

	var b strings.Builder
	if needsSentinel && !e.sentinelEmitted {
		e.sentinelEmitted = true
		b.WriteString("const _absent = Object();\n")
	}
	b.WriteString(class.String())
	fmt.Fprintf(&b, "final %s = %s();\n", name, className)
	return b.String()
}

// emitInvokeClass prints className implementing the function-dispatch
// interface with one -invoke method per explicit fixed arity, a canonical
// -invoke$vararg plus fixed-arity trampolines when the function has a
// variadic clause, an -invoke-more overflow method, and (when any arity
// under the threshold is reachable) a sentinel-dispatched call method
// (spec.md §4.3 "Function lowering"). Returns whether it emitted call(), so
// the caller knows whether the shared _absent sentinel is needed.
func (e *Emitter) emitInvokeClass(b *strings.Builder, className string, inv *ir.InvokeFn) bool {
	fmt.Fprintf(b, "class %s implements %s {\n", className, config.FnDispatchInterface)

	covered := map[int]bool{}
	for _, ar := range inv.Arities {
		n := len(ar.Fixed)
		covered[n] = true
		fn := &ir.Fn{Fixed: ar.Fixed, Body: ar.Body}
		fmt.Fprintf(b, "  dynamic %s(%s) {\n", invokeMethodName(n), e.paramList(fn))
		b.WriteString(e.emitBodyPushLoop(fn.Body, 2, true, fnLoopVars(fn)))
		b.WriteString("  }\n")
	}

	T := config.InvokeThreshold
	if inv.Variadic != nil {
		base := len(inv.VariadicBase)
		varFn := &ir.Fn{Fixed: inv.VariadicBase, Variadic: inv.Variadic, Body: inv.VariadicBody}
		fmt.Fprintf(b, "  dynamic invoke$vararg(%s) {\n", e.paramList(varFn))
		b.WriteString(e.emitBodyPushLoop(varFn.Body, 2, true, fnLoopVars(varFn)))
		b.WriteString("  }\n")

		upper := T - 1
		if base > upper {
			upper = base
		}
		for n := base; n <= upper; n++ {
			if covered[n] {
				continue
			}
			names := make([]string, n)
			params := make([]string, n)
			for i := 0; i < n; i++ {
				names[i] = fmt.Sprintf("a%d", i)
				params[i] = "dynamic " + names[i]
			}
			args := append([]string{}, names[:base]...)
			if rest := names[base:]; len(rest) == 0 {
				args = append(args, "const []")
			} else {
				args = append(args, "["+strings.Join(rest, ", ")+"]")
			}
			fmt.Fprintf(b, "  dynamic %s(%s) {\n", invokeMethodName(n), strings.Join(params, ", "))
			fmt.Fprintf(b, "    return invoke$vararg(%s);\n", strings.Join(args, ", "))
			b.WriteString("  }\n")
			covered[n] = true
		}
	}

	e.emitInvokeMore(b, inv)
	needsCall := e.emitInvokeCallMethod(b, inv)

	b.WriteString("}\n")
	return needsCall
}

// emitInvokeMore prints -invoke-more: it receives T-1 positionals plus a
// packed rest list and either unpacks into -invoke$vararg (forwarding any
// positionals past the variadic's base arity, concatenated with rest) or
// applies the widest explicit fixed arity via Function.apply, since Dart has
// no call-site argument-spread syntax (spec.md §4.3 "Function lowering").
func (e *Emitter) emitInvokeMore(b *strings.Builder, inv *ir.InvokeFn) {
	T := config.InvokeThreshold
	names := make([]string, T-1)
	params := make([]string, T-1)
	for i := 0; i < T-1; i++ {
		names[i] = fmt.Sprintf("m%d", i)
		params[i] = "dynamic " + names[i]
	}
	fmt.Fprintf(b, "  dynamic invoke$more(%s, List<dynamic> rest) {\n", strings.Join(params, ", "))
	switch {
	case inv.Variadic != nil:
		base := len(inv.VariadicBase)
		if base > T-1 {
			base = T - 1
		}
		args := append([]string{}, names[:base]...)
		if tail := names[base:]; len(tail) == 0 {
			args = append(args, "rest")
		} else {
			args = append(args, "["+strings.Join(tail, ", ")+", ...rest]")
		}
		fmt.Fprintf(b, "    return invoke$vararg(%s);\n", strings.Join(args, ", "))
	case len(inv.Arities) > 0:
		widest := inv.Arities[len(inv.Arities)-1]
		fmt.Fprintf(b, "    return Function.apply(this.%s, [%s, ...rest]);\n", invokeMethodName(len(widest.Fixed)), strings.Join(names, ", "))
	default:
		b.WriteString("    throw ArgumentError('no matching arity');\n")
	}
	b.WriteString("  }\n")
}

// emitInvokeCallMethod prints the object's own "call" operator, dispatching
// by counting how many of its sentinel-defaulted positional slots (one per
// arity under the invoke threshold) were actually supplied (spec.md §4.3:
// "a call method ... chooses the matching arity by comparing optional slots
// to the sentinel"). Returns whether it emitted anything.
func (e *Emitter) emitInvokeCallMethod(b *strings.Builder, inv *ir.InvokeFn) bool {
	max := config.InvokeThreshold - 1
	defined := map[int]bool{}
	for _, ar := range inv.Arities {
		if len(ar.Fixed) <= max {
			defined[len(ar.Fixed)] = true
		}
	}
	if inv.Variadic != nil {
		for n := len(inv.VariadicBase); n <= max; n++ {
			defined[n] = true
		}
	}
	if len(defined) == 0 {
		return false
	}

	names := make([]string, max)
	params := make([]string, max)
	for i := 0; i < max; i++ {
		names[i] = fmt.Sprintf("s%d", i)
		params[i] = fmt.Sprintf("dynamic %s = _absent", names[i])
	}
	fmt.Fprintf(b, "  dynamic call([%s]) {\n", strings.Join(params, ", "))
	b.WriteString("    var n = 0;\n")
	for i := 0; i < max; i++ {
		fmt.Fprintf(b, "    if (!identical(%s, _absent)) n = %d;\n", names[i], i+1)
	}
	b.WriteString("    switch (n) {\n")
	for n := 0; n <= max; n++ {
		if !defined[n] {
			continue
		}
		fmt.Fprintf(b, "      case %d:\n        return %s(%s);\n", n, invokeMethodName(n), strings.Join(names[:n], ", "))
	}
	b.WriteString("      default:\n        throw ArgumentError('no matching arity');\n")
	b.WriteString("    }\n")
	b.WriteString("  }\n")
	return true
}

// emitClass prints a deftype*/reify* class: an optional "extends ... with
// ..." clause, ctor over Fields (forwarding to a super constructor when
// SuperCtor is set), one method per Method (getter/setter-tagged ones use
// "get"/"set" syntax), and (when NeedNoSuchMethod) a forwarding
// noSuchMethod stub for any interface method this class doesn't itself
// implement (spec.md §4.3, §4.4 class writing).
func (e *Emitter) emitClass(c *ir.Class, target string) string {
	name := target
	if name == "" {
		name = "$Anon"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "class %s", name)
	if c.Extends != "" {
		fmt.Fprintf(&b, " extends %s", c.Extends)
	}
	if len(c.Mixins) > 0 {
		fmt.Fprintf(&b, " with %s", strings.Join(c.Mixins, ", "))
	}
	if len(c.Implements) > 0 {
		fmt.Fprintf(&b, " implements %s", strings.Join(c.Implements, ", "))
	}
	b.WriteString(" {\n")

	for _, f := range c.Fields {
		mut := "final "
		if f.Mutable {
			mut = ""
		}
		fmt.Fprintf(&b, "  %sdynamic %s;\n", mut, f.Name)
	}
	if len(c.Fields) > 0 || c.SuperCtor != nil {
		names := make([]string, len(c.Fields))
		for i, f := range c.Fields {
			names[i] = "this." + f.Name
		}
		fmt.Fprintf(&b, "  %s(%s)", name, strings.Join(names, ", "))
		if c.SuperCtor != nil {
			sel := ""
			if c.SuperCtor.Method != "" {
				sel = "." + c.SuperCtor.Method
			}
			fmt.Fprintf(&b, " : super%s(%s)", sel, e.argList(c.SuperCtor.Args, nil))
		}
		b.WriteString(";\n")
	}

	for _, m := range c.Methods {
		b.WriteString(e.emitMethod(m))
	}
	if c.NeedNoSuchMethod {
		b.WriteString("  @override\n  dynamic noSuchMethod(Invocation i) => super.noSuchMethod(i);\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func (e *Emitter) emitMethod(m ir.Method) string {
	fn := &ir.Fn{Fixed: m.Params, OptKind: m.OptKind, Opt: m.Opt, Variadic: m.Variadic}

	var sig string
	switch m.Kind {
	case ir.MethodGetter:
		sig = fmt.Sprintf("get %s", m.Name)
	case ir.MethodSetter:
		sig = fmt.Sprintf("set %s(%s)", m.Name, e.paramList(fn))
	default:
		sig = fmt.Sprintf("%s(%s)", m.Name, e.paramList(fn))
	}

	if m.Body == nil {
		return fmt.Sprintf("  dynamic %s;\n", sig)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  dynamic %s {\n", sig)
	b.WriteString(e.emitBodyPushLoop(m.Body, 2, true, fnLoopVars(fn)))
	b.WriteString("  }\n")
	return b.String()
}

func (e *Emitter) emitBodyPushLoop(n ir.Node, indent int, tail bool, loopVars []*ir.Ident) string {
	e.loopStack = append(e.loopStack, loopVars)
	out := e.stmt(n, indent, tail)
	e.loopStack = e.loopStack[:len(e.loopStack)-1]
	return out
}

func pad(indent int) string { return strings.Repeat("  ", indent) }

// stmt renders n in statement position. When tail is true, the final value
// this node produces must be returned (or, inside a loop, rewritten into the
// loop's reassign-and-continue by Recur).
func (e *Emitter) stmt(n ir.Node, indent int, tail bool) string {
	p := pad(indent)
	switch v := n.(type) {
	case *ir.Let:
		var b strings.Builder
		for _, bind := range v.Bindings {
			if bind.Id == nil {
				fmt.Fprintf(&b, "%s%s;\n", p, e.expr(bind.Value))
				continue
			}
			fmt.Fprintf(&b, "%svar %s = %s;\n", p, bind.Id.Name, e.expr(bind.Value))
		}
		b.WriteString(e.stmt(v.Body, indent, tail))
		return b.String()

	case *ir.If:
		var b strings.Builder
		fmt.Fprintf(&b, "%sif (%s) {\n", p, e.guard(v.Test))
		b.WriteString(e.stmt(v.Then, indent+1, tail))
		if v.Else != nil {
			fmt.Fprintf(&b, "%s} else {\n", p)
			b.WriteString(e.stmt(v.Else, indent+1, tail))
			fmt.Fprintf(&b, "%s}\n", p)
		} else if tail {
			fmt.Fprintf(&b, "%s} else {\n%s  return null;\n%s}\n", p, p, p)
		} else {
			fmt.Fprintf(&b, "%s}\n", p)
		}
		return b.String()

	case *ir.Loop:
		var b strings.Builder
		for _, bind := range v.Bindings {
			fmt.Fprintf(&b, "%svar %s = %s;\n", p, bind.Id.Name, e.expr(bind.Value))
		}
		vars := make([]*ir.Ident, len(v.Bindings))
		for i, bind := range v.Bindings {
			vars[i] = bind.Id
		}
		fmt.Fprintf(&b, "%swhile (true) {\n", p)
		b.WriteString(e.emitBodyPushLoop(v.Body, indent+1, tail, vars))
		fmt.Fprintf(&b, "%s}\n", p)
		return b.String()

	case *ir.Recur:
		vars := e.currentLoopVars()
		var b strings.Builder
		tmp := make([]string, len(v.Args))
		for i, arg := range v.Args {
			tmp[i] = fmt.Sprintf("$recur%d", i)
			fmt.Fprintf(&b, "%svar %s = %s;\n", p, tmp[i], e.expr(arg))
		}
		for i := range v.Args {
			if i < len(vars) {
				fmt.Fprintf(&b, "%s%s = %s;\n", p, vars[i].Name, tmp[i])
			}
		}
		fmt.Fprintf(&b, "%scontinue;\n", p)
		return b.String()

	case *ir.Throw:
		return fmt.Sprintf("%sthrow %s;\n", p, e.expr(v.Expr))

	case *ir.Try:
		var b strings.Builder
		fmt.Fprintf(&b, "%stry {\n", p)
		b.WriteString(e.stmt(v.Body, indent+1, tail))
		fmt.Fprintf(&b, "%s}", p)
		for _, c := range v.Catches {
			className := mangle.Name(c.ClassId.Name)
			if c.StackId != nil {
				fmt.Fprintf(&b, " on %s catch (%s, %s) {\n", className, c.ExnId.Name, c.StackId.Name)
			} else {
				fmt.Fprintf(&b, " on %s catch (%s) {\n", className, c.ExnId.Name)
			}
			b.WriteString(e.stmt(c.Body, indent+1, tail))
			fmt.Fprintf(&b, "%s}", p)
		}
		if v.Finally != nil {
			b.WriteString(" finally {\n")
			b.WriteString(e.stmt(v.Finally, indent+1, false))
			fmt.Fprintf(&b, "%s}", p)
		}
		b.WriteString("\n")
		return b.String()

	case *ir.Case:
		var b strings.Builder
		fmt.Fprintf(&b, "%sswitch (%s) {\n", p, e.expr(v.Scrutinee))
		for _, c := range v.Clauses {
			for _, val := range c.Values {
				fmt.Fprintf(&b, "%s  case %s:\n", p, e.expr(val))
			}
			b.WriteString(e.stmt(c.Body, indent+2, tail))
			fmt.Fprintf(&b, "%s    break;\n", p)
		}
		fmt.Fprintf(&b, "%s  default:\n", p)
		if v.Default != nil {
			b.WriteString(e.stmt(v.Default, indent+2, tail))
		} else if tail {
			fmt.Fprintf(&b, "%s    return null;\n", p)
		}
		fmt.Fprintf(&b, "%s    break;\n", p)
		fmt.Fprintf(&b, "%s}\n", p)
		return b.String()

	default:
		if tail {
			return fmt.Sprintf("%sreturn %s;\n", p, e.expr(n))
		}
		return fmt.Sprintf("%s%s;\n", p, e.expr(n))
	}
}

func (e *Emitter) currentLoopVars() []*ir.Ident {
	if len(e.loopStack) == 0 {
		return nil
	}
	return e.loopStack[len(e.loopStack)-1]
}

// guard renders an If's test according to its inferred truthiness (spec.md
// §4.3): a provably boolean test is emitted bare; one provably "some
// non-nil-or-false value" collapses to "!= null"; everything else gets the
// full "!= false && != null" guard.
func (e *Emitter) guard(test ir.Node) string {
	expr := e.expr(test)
	truth := ir.TruthUnknown
	if m := test.Meta(); m != nil {
		truth = m.Truth
	}
	switch truth {
	case ir.TruthBoolean:
		return expr
	case ir.TruthSome:
		return expr + " != null"
	default:
		return fmt.Sprintf("%s != false && %s != null", expr, expr)
	}
}

// expr renders n in expression position.
func (e *Emitter) expr(n ir.Node) string {
	switch v := n.(type) {
	case *ir.Literal:
		switch v.LitKind {
		case ir.LitNil:
			return "null"
		case ir.LitBool:
			if v.Bool {
				return "true"
			}
			return "false"
		case ir.LitNumber:
			return v.Text
		case ir.LitString:
			return escapeString(v.Text)
		}
		return "null"

	case *ir.Ident:
		return v.Name

	case *ir.FieldRead:
		return fmt.Sprintf("%s.%s", e.expr(v.Object), v.Field)

	case *ir.Is:
		return fmt.Sprintf("(%s is %s)", e.expr(v.Expr), e.expr(v.Type))

	case *ir.As:
		return fmt.Sprintf("(%s as %s)", e.expr(v.Expr), e.expr(v.Type))

	case *ir.New:
		return fmt.Sprintf("%s(%s)", e.expr(v.Class), e.argList(v.Args, v.NamedArgs))

	case *ir.MethodCall:
		return e.methodCall(v)

	case *ir.Call:
		return e.call(v)

	case *ir.Let, *ir.If, *ir.Loop, *ir.Try, *ir.Case, *ir.Throw, *ir.Recur:
		// These reach expr() as Let binding values: the analyzer's lifted
		// temporaries (spec.md §4.3) and nil-id statement bindings such as
		// a Throw. Each renders as an immediately-invoked closure around its
		// tail-position statement form.
		return fmt.Sprintf("(() { %s})()", e.stmt(n, 0, true))

	default:
		return "null"
	}
}

func (e *Emitter) argList(args []ir.Node, named []ir.NamedArg) string {
	parts := make([]string, 0, len(args)+len(named))
	for _, a := range args {
		parts = append(parts, e.expr(a))
	}
	for _, na := range named {
		parts = append(parts, fmt.Sprintf("%s: %s", na.Name, e.expr(na.Value)))
	}
	return strings.Join(parts, ", ")
}

func (e *Emitter) methodCall(m *ir.MethodCall) string {
	if op, ok := config.LookupOperator(m.Member); ok && len(m.NamedArgs) == 0 {
		switch op.Fixity {
		case config.FixityInfix:
			if len(m.Args) == 1 {
				return fmt.Sprintf("(%s %s %s)", e.expr(m.Object), op.Method, e.expr(m.Args[0]))
			}
		case config.FixityPrefixUnary:
			return fmt.Sprintf("(%s%s)", op.Method, e.expr(m.Object))
		case config.FixityIndex:
			if len(m.Args) == 1 {
				return fmt.Sprintf("%s[%s]", e.expr(m.Object), e.expr(m.Args[0]))
			}
		case config.FixityIndexAssign:
			if len(m.Args) == 2 {
				return fmt.Sprintf("(%s[%s] = %s)", e.expr(m.Object), e.expr(m.Args[0]), e.expr(m.Args[1]))
			}
		}
	}
	return fmt.Sprintf("%s.%s(%s)", e.expr(m.Object), m.Member, e.argList(m.Args, m.NamedArgs))
}

// call renders a Call per its resolved dispatch strategy (spec.md §4.4):
// Native calls the target name directly, Invoke dispatches by arity through
// the function-dispatch interface, and Unknown guards at runtime between
// the two since the callee's nature couldn't be proven statically.
func (e *Emitter) call(c *ir.Call) string {
	callee := e.expr(c.Callee)
	switch c.Dispatch {
	case ir.DispatchNative:
		return fmt.Sprintf("%s(%s)", callee, e.argList(c.Args, c.NamedArgs))
	case ir.DispatchInvoke:
		return e.invokeCallExpr(callee, c.Args, c.NamedArgs)
	default:
		direct := fmt.Sprintf("%s(%s)", callee, e.argList(c.Args, c.NamedArgs))
		invoke := e.invokeCallExpr(callee, c.Args, c.NamedArgs)
		return fmt.Sprintf("(%s is %s ? %s : %s)", callee, config.FnDispatchInterface, invoke, direct)
	}
}

// invokeCallExpr dispatches a call through the function-dispatch interface:
// arities up to T-1 call the matching -invoke method directly; wider calls
// pack the tail into a list and go through -invoke-more (spec.md §4.4
// calls).
func (e *Emitter) invokeCallExpr(callee string, args []ir.Node, named []ir.NamedArg) string {
	T := config.InvokeThreshold
	iface := fmt.Sprintf("(%s as %s)", callee, config.FnDispatchInterface)
	if len(args) <= T-1 {
		return fmt.Sprintf("%s.%s(%s)", iface, invokeMethodName(len(args)), e.argList(args, named))
	}
	head, tail := args[:T-1], args[T-1:]
	parts := make([]string, 0, len(head)+len(named)+1)
	for _, a := range head {
		parts = append(parts, e.expr(a))
	}
	for _, na := range named {
		parts = append(parts, fmt.Sprintf("%s: %s", na.Name, e.expr(na.Value)))
	}
	tailParts := make([]string, len(tail))
	for i, a := range tail {
		tailParts[i] = e.expr(a)
	}
	parts = append(parts, "["+strings.Join(tailParts, ", ")+"]")
	return fmt.Sprintf("%s.invoke$more(%s)", iface, strings.Join(parts, ", "))
}

// escapeString renders a string literal with C-style escapes for control
// characters and the target language's quote/interpolation sigils (spec.md
// §4.4).
func escapeString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '$':
			b.WriteString(`\$`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\x%02x`, r)
			} else {
				b.WriteString(strconv.QuoteRune(r)[1 : len(strconv.QuoteRune(r))-1])
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
