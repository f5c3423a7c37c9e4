package typetag

import (
	"testing"

	"github.com/formlang/formc/internal/diagnostics"
	"github.com/formlang/formc/internal/registry"
)

func TestParseSplitsAliasNameAndParam(t *testing.T) {
	tag := Parse("coll.List<int>")
	if tag.Alias != "coll" || tag.Name != "List" || tag.Param != "int" {
		t.Fatalf("unexpected parse: %+v", tag)
	}
}

func TestParseBareName(t *testing.T) {
	tag := Parse("Function")
	if tag.Alias != "" || tag.Name != "Function" || tag.Param != "" {
		t.Fatalf("unexpected parse: %+v", tag)
	}
}

func TestResolveBuiltinAllowlist(t *testing.T) {
	reg := registry.New()
	reg.SetCurrent("user")
	got, diag := Resolve(reg, Parse("Function"))
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}
	if got != "Function" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveLocalDef(t *testing.T) {
	reg := registry.New()
	reg.SetCurrent("user")
	ns := reg.Current()
	ns.Defs["Point"] = registry.Definition{TargetName: "Point", Kind: registry.DefClass}

	got, diag := Resolve(reg, Parse("Point"))
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}
	if got != "Point" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveAlias(t *testing.T) {
	reg := registry.New()
	reg.SetCurrent("user")
	ns := reg.Current()
	ns.Aliases["geo"] = "lib$0"

	got, diag := Resolve(reg, Parse("geo.Point"))
	if diag != nil {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}
	if got != "lib$0.Point" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveUnknownFallsBackToDynamicSentinel(t *testing.T) {
	reg := registry.New()
	reg.SetCurrent("user")

	got, diag := Resolve(reg, Parse("Nonexistent"))
	if got != "dynamic" {
		t.Fatalf("expected dynamic sentinel, got %q", got)
	}
	if diag == nil || diag.Code != diagnostics.ErrUnknownTypeTag {
		t.Fatalf("expected ErrUnknownTypeTag diagnostic, got %v", diag)
	}
}
