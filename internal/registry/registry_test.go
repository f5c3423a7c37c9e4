package registry

import (
	"testing"

	"github.com/formlang/formc/internal/surface"
)

type fakeEnv map[string]string

func (f fakeEnv) Lookup(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

func TestResolveEnvBindingWins(t *testing.T) {
	r := New()
	r.SetCurrent("user.app")
	env := fakeEnv{"x": "x$1"}

	got, err := r.Resolve(env, surface.Sym("x"))
	if err != nil || got != "x$1" {
		t.Fatalf("Resolve(x) = %q, %v; want x$1, nil", got, err)
	}
}

func TestResolveCurrentNamespaceDefinition(t *testing.T) {
	r := New()
	r.SetCurrent("user.app")
	ns := r.Current()
	r.Define(ns, "greet", Definition{TargetName: "greet$fn", Kind: DefFunction})

	got, err := r.Resolve(fakeEnv{}, surface.Sym("greet"))
	if err != nil || got != "greet$fn" {
		t.Fatalf("Resolve(greet) = %q, %v; want greet$fn, nil", got, err)
	}
}

func TestResolveQualifiedViaKnownNamespace(t *testing.T) {
	r := New()
	other := r.Ensure("user.util")
	other.TargetLibrary = "package:app/util.dart"
	r.Define(other, "helper", Definition{TargetName: "helper$fn", Kind: DefFunction})

	r.SetCurrent("user.app")
	got, err := r.Resolve(fakeEnv{}, surface.QSym("user.util", "helper"))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	want := "lib$0.helper$fn"
	if got != want {
		t.Fatalf("Resolve(user.util/helper) = %q, want %q", got, want)
	}

	// Second resolution through the same alias must reuse it, not allocate
	// a new one (EnsureImport idempotence, spec.md §4.1).
	got2, err := r.Resolve(fakeEnv{}, surface.QSym("user.util", "helper"))
	if err != nil || got2 != want {
		t.Fatalf("second Resolve = %q, %v; want %q, nil", got2, err, want)
	}
}

func TestResolveUnknownSymbolFails(t *testing.T) {
	r := New()
	r.SetCurrent("user.app")
	if _, err := r.Resolve(fakeEnv{}, surface.Sym("nope")); err == nil {
		t.Fatalf("expected unresolved-symbol error")
	}
}

func TestDefineIsLastWriterIdempotent(t *testing.T) {
	r := New()
	ns := r.Ensure("user.app")
	r.PreDeclare(ns, "loop", "loop$fn", DefFunction)
	if !ns.Defs["loop"].Pending {
		t.Fatalf("pre-declaration should be Pending")
	}
	r.Define(ns, "loop", Definition{TargetName: "loop$fn", Kind: DefFunction})
	if ns.Defs["loop"].Pending {
		t.Fatalf("Define should overwrite the pending pre-declaration")
	}
}

func TestResolveProtocolMethod(t *testing.T) {
	r := New()
	ns := r.Ensure("user.proto")
	p := ns.Protocol("Shape")
	p.Methods["area"] = map[int]ProtocolMethod{
		1: {TargetMethodName: "area$0", Params: []string{"this"}},
	}

	got, err := r.ResolveProtocolMethod("Shape", "area", 0)
	if err != nil || got != "area$0" {
		t.Fatalf("ResolveProtocolMethod = %q, %v; want area$0, nil", got, err)
	}
}
