package pipeline

import (
	"strings"
	"testing"

	"github.com/formlang/formc/internal/surface"
)

func num(n string) surface.Form { return surface.Form{Kind: surface.KindNumber, Number: n} }
func vec(items ...surface.Form) surface.Form {
	return surface.Form{Kind: surface.KindVector, Items: items}
}

func TestProcessNamespaceSkipsLeadingNsForm(t *testing.T) {
	p := New()
	forms := []surface.Form{
		surface.Seq(surface.Sym("ns"), surface.Sym("app.core")),
		surface.Seq(surface.Sym("def"), surface.Sym("answer"), num("42")),
	}
	out, errs := p.ProcessNamespace("app.core", forms)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !strings.Contains(out, "final answer = 42;") {
		t.Fatalf("expected rendered def, got:\n%s", out)
	}
}

func TestProcessNamespaceCollectsPerFormErrorsAndContinues(t *testing.T) {
	p := New()
	forms := []surface.Form{
		// unresolvable symbol: should fail but not abort the namespace
		surface.Sym("does-not-exist"),
		surface.Seq(surface.Sym("def"), surface.Sym("ok"), num("1")),
	}
	out, errs := p.ProcessNamespace("app.core", forms)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(out, "final ok = 1;") {
		t.Fatalf("expected the second, valid form to still be rendered, got:\n%s", out)
	}
}

func TestProcessNamespaceEmitsFunctionDecl(t *testing.T) {
	p := New()
	forms := []surface.Form{
		surface.Seq(surface.Sym("def"), surface.Sym("identity"),
			surface.Seq(surface.Sym("fn*"), vec(surface.Sym("x")), surface.Sym("x"))),
	}
	out, errs := p.ProcessNamespace("app.core", forms)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if !strings.Contains(out, "dynamic identity(dynamic x$0)") {
		t.Fatalf("expected rendered function decl, got:\n%s", out)
	}
}

func TestFormatDiagnosticsRendersEachError(t *testing.T) {
	p := New()
	_, errs := p.ProcessNamespace("app.core", []surface.Form{surface.Sym("nope")})
	out := FormatDiagnostics(errs)
	if !strings.Contains(out, "nope") {
		t.Fatalf("expected the unresolved symbol name in diagnostics, got: %q", out)
	}
}
