// Package typetag parses and resolves the small type-tag grammar that
// appears wherever a surface form names a target type: class references,
// new/is/as operands, deftype field and method signatures (spec.md §6 "Type
// tags").
package typetag

import (
	"strings"

	"github.com/formlang/formc/internal/config"
	"github.com/formlang/formc/internal/diagnostics"
	"github.com/formlang/formc/internal/registry"
	"github.com/formlang/formc/internal/surface"
)

// Tag is a parsed type tag: an alias-qualified name with an optional single
// generic parameter, e.g. "List<int>" parses to {Name: "List", Param: "int"}.
type Tag struct {
	Alias string
	Name  string
	Param string
}

// unknownSentinel is what Resolve returns for a tag it cannot place anywhere
// — the built-in allowlist, a known alias, or NR — rather than failing the
// whole compilation outright (spec.md §9 Open Questions: unresolved type
// tags are downgraded to the target language's dynamic-equivalent rather
// than a hard error, since type tags are advisory, not load-bearing, for
// this compiler's semantics).
const unknownSentinel = "dynamic"

// Parse splits a raw tag string of the form "alias.Name" or "alias.Name<Param>"
// (bare "Name" when there's no alias) into its parts.
func Parse(raw string) Tag {
	name := raw
	param := ""
	if i := strings.IndexByte(raw, '<'); i >= 0 && strings.HasSuffix(raw, ">") {
		name = raw[:i]
		param = raw[i+1 : len(raw)-1]
	}
	alias := ""
	if i := strings.IndexByte(name, '.'); i >= 0 {
		alias = name[:i]
		name = name[i+1:]
	}
	return Tag{Alias: alias, Name: name, Param: param}
}

// Resolve looks up t against the built-in allowlist first, then the current
// namespace's known aliases/defs via reg, falling back to the "dynamic"
// sentinel and an unknown-type-tag diagnostic rather than aborting
// compilation (spec.md §7 unknown-type-tag is a soft, recorded failure).
func Resolve(reg *registry.Registry, t Tag) (string, *diagnostics.Error) {
	if config.BuiltinTypeTags[t.Name] {
		return spell(t), nil
	}
	ns := reg.Current()
	if t.Alias != "" {
		if importAlias, ok := ns.Aliases[t.Alias]; ok {
			return importAlias + "." + t.Name, nil
		}
	} else if _, ok := ns.Defs[t.Name]; ok {
		return spell(t), nil
	} else if target, ok := reg.Lookup(t.Alias); ok {
		if _, ok := target.Defs[t.Name]; ok {
			return spell(t), nil
		}
	}
	return unknownSentinel, diagnostics.New(diagnostics.PhaseAnalyzer, diagnostics.ErrUnknownTypeTag, surface.Position{}, t.Name)
}

func spell(t Tag) string {
	if t.Param == "" {
		return t.Name
	}
	return t.Name + "<" + t.Param + ">"
}
