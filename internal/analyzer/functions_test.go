package analyzer

import (
	"testing"

	"github.com/formlang/formc/internal/config"
	"github.com/formlang/formc/internal/ir"
	"github.com/formlang/formc/internal/surface"
)

// fnClause builds one (fn* ([params...] body...)) arm form.
func fnClause(params surface.Form, body ...surface.Form) surface.Form {
	return sq(append([]surface.Form{params}, body...)...)
}

func TestAnalyzeFnSingleFixedArityLowersToPlainFn(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")
	a.ResetForm()

	// (fn* [a b] a)
	form := sq(surface.Sym("fn*"), vec(surface.Sym("a"), surface.Sym("b")), surface.Sym("a"))
	node, err := a.analyzeFn(NewEnv(), form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := node.(*ir.Fn); !ok {
		t.Fatalf("expected *ir.Fn, got %T", node)
	}
}

func TestAnalyzeFnVariadicLowersToInvokeFn(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")
	a.ResetForm()

	// (fn* [a & rest] a)
	form := sq(surface.Sym("fn*"), vec(surface.Sym("a"), surface.Sym("&"), surface.Sym("rest")), surface.Sym("a"))
	node, err := a.analyzeFn(NewEnv(), form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inv, ok := node.(*ir.InvokeFn)
	if !ok {
		t.Fatalf("expected *ir.InvokeFn, got %T", node)
	}
	if len(inv.VariadicBase) != 1 || inv.Variadic == nil {
		t.Fatalf("expected one fixed base param plus a variadic, got %+v", inv)
	}
}

func TestAnalyzeFnMultiArityMergesClausesIntoOneInvokeFn(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")
	a.ResetForm()

	// (fn* ([] 0) ([a] a) ([a b & rest] a))
	form := sq(surface.Sym("fn*"),
		fnClause(vec(), num("0")),
		fnClause(vec(surface.Sym("a")), surface.Sym("a")),
		fnClause(vec(surface.Sym("a"), surface.Sym("b"), surface.Sym("&"), surface.Sym("rest")), surface.Sym("a")),
	)
	node, err := a.analyzeFn(NewEnv(), form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inv, ok := node.(*ir.InvokeFn)
	if !ok {
		t.Fatalf("expected *ir.InvokeFn, got %T", node)
	}
	if len(inv.Arities) != 2 {
		t.Fatalf("expected 2 fixed arities, got %d", len(inv.Arities))
	}
	if len(inv.Arities[0].Fixed) != 0 || len(inv.Arities[1].Fixed) != 1 {
		t.Fatalf("expected arities sorted ascending by fixed count, got %+v", inv.Arities)
	}
	if inv.Variadic == nil || len(inv.VariadicBase) != 2 {
		t.Fatalf("expected a 2-fixed-param variadic clause, got %+v", inv)
	}
}

func TestAnalyzeFnMultiArityRejectsTwoVariadicClauses(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")
	a.ResetForm()

	form := sq(surface.Sym("fn*"),
		fnClause(vec(surface.Sym("a"), surface.Sym("&"), surface.Sym("r1")), surface.Sym("a")),
		fnClause(vec(surface.Sym("b"), surface.Sym("&"), surface.Sym("r2")), surface.Sym("b")),
	)
	if _, err := a.analyzeFn(NewEnv(), form); err == nil {
		t.Fatal("expected an error for two variadic clauses")
	}
}

func TestAnalyzeFnWideArityLowersToInvokeFn(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")
	a.ResetForm()

	params := make([]surface.Form, config.InvokeThreshold)
	for i := range params {
		params[i] = surface.Sym(string(rune('a' + i)))
	}
	form := sq(surface.Sym("fn*"), vec(params...), params[0])
	node, err := a.analyzeFn(NewEnv(), form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inv, ok := node.(*ir.InvokeFn)
	if !ok {
		t.Fatalf("expected *ir.InvokeFn for a wide arity, got %T", node)
	}
	if len(inv.Arities) != 1 || len(inv.Arities[0].Fixed) != config.InvokeThreshold {
		t.Fatalf("expected one arity of width %d, got %+v", config.InvokeThreshold, inv.Arities)
	}
}

func TestAnalyzeDefClassifiesInvokeDispatchForVariadicFn(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")
	a.ResetForm()

	// (def f (fn* [a & rest] a))
	form := sq(surface.Sym("def"), surface.Sym("f"),
		sq(surface.Sym("fn*"), vec(surface.Sym("a"), surface.Sym("&"), surface.Sym("rest")), surface.Sym("a")),
	)
	node, err := a.AnalyzeTop(NewEnv(), form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def, ok := node.(*ir.TopDef)
	if !ok {
		t.Fatalf("expected *ir.TopDef, got %T", node)
	}
	if !a.invokeFns[def.TargetName] {
		t.Fatalf("expected %s to be classified as invoke dispatch", def.TargetName)
	}

	callForm := sq(surface.Sym("f"), num("1"), num("2"))
	callNode, err := a.AnalyzeTop(NewEnv(), callForm)
	if err != nil {
		t.Fatalf("unexpected error analyzing call: %v", err)
	}
	call, ok := callNode.(*ir.Call)
	if !ok {
		t.Fatalf("expected *ir.Call, got %T", callNode)
	}
	if call.Dispatch != ir.DispatchInvoke {
		t.Fatalf("expected invoke dispatch, got %v", call.Dispatch)
	}
}
