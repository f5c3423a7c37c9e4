package analyzer

import (
	"testing"

	"github.com/formlang/formc/internal/diagnostics"
	"github.com/formlang/formc/internal/ir"
	"github.com/formlang/formc/internal/registry"
	"github.com/formlang/formc/internal/surface"
)

func num(n string) surface.Form   { return surface.Form{Kind: surface.KindNumber, Number: n} }
func vec(items ...surface.Form) surface.Form {
	return surface.Form{Kind: surface.KindVector, Items: items}
}
func sq(items ...surface.Form) surface.Form { return surface.Seq(items...) }

func newTestAnalyzer() *Analyzer {
	return New(registry.New())
}

func TestAnalyzeIfLiftsNonAtomicTest(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")

	// (let* [f (fn* [] 1)] (if (f) 1 2))
	form := sq(surface.Sym("let*"),
		vec(surface.Sym("f"), sq(surface.Sym("fn*"), vec(), num("1"))),
		sq(surface.Sym("if"), sq(surface.Sym("f")), num("1"), num("2")),
	)

	node, err := a.AnalyzeTop(NewEnv(), form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outerLet, ok := node.(*ir.Let)
	if !ok {
		t.Fatalf("expected outer *ir.Let, got %T", node)
	}
	inner, ok := outerLet.Body.(*ir.Let)
	if !ok {
		t.Fatalf("expected the lifted call to produce a nested *ir.Let, got %T", outerLet.Body)
	}
	ifNode, ok := inner.Body.(*ir.If)
	if !ok {
		t.Fatalf("expected *ir.If, got %T", inner.Body)
	}
	if _, ok := ifNode.Test.(*ir.Ident); !ok {
		t.Fatalf("expected if's test to be lifted to an *ir.Ident, got %T", ifNode.Test)
	}
}

func TestAnalyzeLoopRecurArityMismatch(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")

	// (loop* [x 0] (recur 1 2))
	form := sq(surface.Sym("loop*"),
		vec(surface.Sym("x"), num("0")),
		sq(surface.Sym("recur"), num("1"), num("2")),
	)

	_, err := a.AnalyzeTop(NewEnv(), form)
	if err == nil {
		t.Fatal("expected a recur-arity-mismatch error")
	}
	diag, ok := err.(*diagnostics.Error)
	if !ok || diag.Code != diagnostics.ErrRecurArity {
		t.Fatalf("expected ErrRecurArity, got %v", err)
	}
}

func TestAnalyzeRecurOutsideTailRejected(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")

	// (loop* [x 0] (do (recur 1) 2)) -- recur is not the last form of "do"
	form := sq(surface.Sym("loop*"),
		vec(surface.Sym("x"), num("0")),
		sq(surface.Sym("do"), sq(surface.Sym("recur"), num("1")), num("2")),
	)

	_, err := a.AnalyzeTop(NewEnv(), form)
	if err == nil {
		t.Fatal("expected a recur-boundary error")
	}
	diag, ok := err.(*diagnostics.Error)
	if !ok || diag.Code != diagnostics.ErrRecurBoundary {
		t.Fatalf("expected ErrRecurBoundary, got %v", err)
	}
}

func TestAnalyzeTryForcesRecurOutOfTail(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")

	// (loop* [x 0] (try (recur 1))) -- recur crosses a try boundary
	form := sq(surface.Sym("loop*"),
		vec(surface.Sym("x"), num("0")),
		sq(surface.Sym("try"), sq(surface.Sym("recur"), num("1"))),
	)

	_, err := a.AnalyzeTop(NewEnv(), form)
	if err == nil {
		t.Fatal("expected a recur-boundary error")
	}
	diag, ok := err.(*diagnostics.Error)
	if !ok || diag.Code != diagnostics.ErrRecurBoundary {
		t.Fatalf("expected ErrRecurBoundary, got %v", err)
	}
}

func TestAnalyzeLoopRecurValid(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")

	// (loop* [x 0] (if (< x 10) (recur (+ x 1)) x))
	form := sq(surface.Sym("loop*"),
		vec(surface.Sym("x"), num("0")),
		sq(surface.Sym("if"),
			sq(surface.Sym("."), surface.Sym("x"), surface.Sym("<"), num("10")),
			sq(surface.Sym("recur"), sq(surface.Sym("."), surface.Sym("x"), surface.Sym("+"), num("1"))),
			surface.Sym("x"),
		),
	)

	node, err := a.AnalyzeTop(NewEnv(), form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := node.(*ir.Loop); !ok {
		t.Fatalf("expected *ir.Loop, got %T", node)
	}
}

func TestAnalyzeDefFunctionClassifiesNativeDispatch(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")

	// (def add (fn* [a b] (. a + b)))
	form := sq(surface.Sym("def"), surface.Sym("add"),
		sq(surface.Sym("fn*"), vec(surface.Sym("a"), surface.Sym("b")),
			sq(surface.Sym("."), surface.Sym("a"), surface.Sym("+"), surface.Sym("b"))),
	)

	node, err := a.AnalyzeTop(NewEnv(), form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	def, ok := node.(*ir.TopDef)
	if !ok {
		t.Fatalf("expected *ir.TopDef, got %T", node)
	}
	if !a.nativeFns[def.TargetName] {
		t.Fatalf("expected %s to be classified as a native-dispatch function", def.TargetName)
	}

	// (add 1 2) should now resolve to native dispatch.
	callForm := sq(surface.Sym("add"), num("1"), num("2"))
	callNode, err := a.AnalyzeTop(NewEnv(), callForm)
	if err != nil {
		t.Fatalf("unexpected error analyzing call: %v", err)
	}
	call, ok := callNode.(*ir.Call)
	if !ok {
		t.Fatalf("expected *ir.Call, got %T", callNode)
	}
	if call.Dispatch != ir.DispatchNative {
		t.Fatalf("expected native dispatch, got %v", call.Dispatch)
	}
}

func TestAnalyzeDocStringMisplacedRejected(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")

	// (def x 1 2) -- middle position must be a string when there are 3 args
	form := sq(surface.Sym("def"), surface.Sym("x"), num("1"), num("2"))

	_, err := a.AnalyzeTop(NewEnv(), form)
	if err == nil {
		t.Fatal("expected a docstring-misplaced error")
	}
	diag, ok := err.(*diagnostics.Error)
	if !ok || diag.Code != diagnostics.ErrDocStringMisplace {
		t.Fatalf("expected ErrDocStringMisplace, got %v", err)
	}
}
