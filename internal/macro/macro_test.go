package macro

import (
	"testing"

	"github.com/formlang/formc/internal/registry"
	"github.com/formlang/formc/internal/surface"
)

func parseHead(t *testing.T, f surface.Form) string {
	t.Helper()
	h, ok := f.Head()
	if !ok {
		t.Fatalf("expected a seq form, got %+v", f)
	}
	return h.Name
}

func TestExpandDotSugar(t *testing.T) {
	x := New(registry.New())
	// (.m o args)
	in := surface.Seq(surface.Sym(".m"), surface.Sym("o"), surface.Sym("arg"))
	out, changed := x.Expand1(NewEnv(), in)
	if !changed {
		t.Fatalf("expected a rewrite")
	}
	if parseHead(t, out) != "." {
		t.Fatalf("expected head '.', got %q", parseHead(t, out))
	}
	if len(out.Items) != 4 || !out.Items[1].IsSymbol("o") || !out.Items[2].IsSymbol("m") {
		t.Fatalf("unexpected rewrite shape: %+v", out)
	}
}

func TestExpandNewSugar(t *testing.T) {
	x := New(registry.New())
	// (X. args)
	in := surface.Seq(surface.Sym("X."), surface.Sym("a"))
	out, changed := x.Expand1(NewEnv(), in)
	if !changed {
		t.Fatalf("expected a rewrite")
	}
	if parseHead(t, out) != "new" || !out.Items[1].IsSymbol("X") {
		t.Fatalf("unexpected rewrite shape: %+v", out)
	}
}

func TestFixedSpecialsPassThrough(t *testing.T) {
	x := New(registry.New())
	in := surface.Seq(surface.Sym("if"), surface.Sym("a"), surface.Sym("b"), surface.Sym("c"))
	out, changed := x.Expand1(NewEnv(), in)
	if changed {
		t.Fatalf("if should pass through unchanged, got %+v", out)
	}
}

func TestShadowedHeadNotExpanded(t *testing.T) {
	x := New(registry.New())
	env := NewEnv().Child("case")
	in := surface.Seq(surface.Sym("case"), surface.Sym("x"))
	out, changed := x.Expand1(env, in)
	if changed {
		t.Fatalf("shadowed head should not expand, got %+v", out)
	}
}

func TestExpandCaseWithSymbolScrutinee(t *testing.T) {
	x := New(registry.New())
	in := surface.Seq(surface.Sym("case"), surface.Sym("x"),
		surface.Form{Kind: surface.KindNumber, Number: "1"}, surface.Sym("one"))
	out, changed := x.Expand1(NewEnv(), in)
	if !changed || parseHead(t, out) != "case*" {
		t.Fatalf("expected case* directly for symbol scrutinee, got %+v", out)
	}
}

func TestExpandCaseWithCompoundScrutineeWrapsLet(t *testing.T) {
	x := New(registry.New())
	call := surface.Seq(surface.Sym("foo"))
	in := surface.Seq(surface.Sym("case"), call,
		surface.Form{Kind: surface.KindNumber, Number: "1"}, surface.Sym("one"))
	out, changed := x.Expand1(NewEnv(), in)
	if !changed || parseHead(t, out) != "let*" {
		t.Fatalf("expected let* wrapper for compound scrutinee, got %+v", out)
	}
}

func TestExpandDefprotocolRecordsArity(t *testing.T) {
	reg := registry.New()
	reg.SetCurrent("user.shapes")
	x := New(reg)

	method := surface.Seq(surface.Sym("area"), surface.Form{Kind: surface.KindVector, Items: []surface.Form{surface.Sym("this")}})
	in := surface.Seq(surface.Sym("defprotocol"), surface.Sym("Shape"), method)
	out, changed := x.Expand1(NewEnv(), in)
	if !changed || parseHead(t, out) != "do" {
		t.Fatalf("expected a do block, got %+v", out)
	}

	ns := reg.Current()
	proto := ns.Protocol("Shape")
	if _, ok := proto.Methods["area"][1]; !ok {
		t.Fatalf("expected arity-1 'area' recorded, got %+v", proto.Methods)
	}
}

func TestExpandAreArityMismatch(t *testing.T) {
	x := New(registry.New())
	argv := surface.Form{Kind: surface.KindVector, Items: []surface.Form{surface.Sym("a"), surface.Sym("b")}}
	assertion := surface.Seq(surface.Sym("=="), surface.Sym("a"), surface.Sym("b"))
	in := surface.Seq(surface.Sym("are"), argv, assertion, surface.Form{Kind: surface.KindNumber, Number: "1"})
	out, changed := x.Expand1(NewEnv(), in)
	if !changed || parseHead(t, out) != "throw" {
		t.Fatalf("expected a throw for are-arity-mismatch, got %+v", out)
	}
}
