package registry

import (
	"fmt"

	"github.com/formlang/formc/internal/surface"
)

// UnresolvedSymbolError is returned when none of Resolve's six steps find a
// binding (spec.md §7 unknown-symbol).
type UnresolvedSymbolError struct {
	NS, Name string
}

func (e *UnresolvedSymbolError) Error() string {
	if e.NS != "" {
		return fmt.Sprintf("unresolved symbol: %s/%s", e.NS, e.Name)
	}
	return fmt.Sprintf("unresolved symbol: %s", e.Name)
}

// Resolve implements the six-step resolution order of spec.md §4.1.
func (r *Registry) Resolve(env Env, sym surface.Form) (string, error) {
	return r.resolveDepth(env, r.Current(), sym, 0)
}

const maxResolveDepth = 32

func (r *Registry) resolveDepth(env Env, ns *Namespace, sym surface.Form, depth int) (string, error) {
	if depth > maxResolveDepth {
		return "", &UnresolvedSymbolError{NS: sym.NS, Name: sym.Name}
	}

	// Step 1: env binding.
	if sym.NS == "" {
		if target, ok := env.Lookup(sym.Name); ok {
			return target, nil
		}
	}

	// Step 2: current namespace defines it.
	if sym.NS == "" || sym.NS == ns.Name {
		if def, ok := ns.Defs[sym.Name]; ok {
			return def.TargetName, nil
		}
	}

	// Step 3: namespace part matches a declared alias.
	if sym.NS != "" {
		if importAlias, ok := ns.Aliases[sym.NS]; ok {
			name := sym.Name
			if imp, ok := ns.Imports[importAlias]; ok {
				if target, ok := r.Lookup(imp.NamespaceName); ok {
					if def, ok := target.Defs[sym.Name]; ok {
						name = def.TargetName
					}
				}
			}
			return importAlias + "." + name, nil
		}
	}

	// Step 4: short name is in symbol-mappings; resolve the mapped symbol.
	if sym.NS == "" {
		if mapped, ok := ns.Symbols[sym.Name]; ok && mapped != sym.Name {
			return r.resolveDepth(env, ns, parseMapped(mapped), depth+1)
		}
		if mapped, ok := ns.Symbols[sym.Name]; ok {
			return mapped, nil
		}
	}

	// Step 5: namespace part names a known namespace.
	if sym.NS != "" {
		if target, ok := r.Lookup(sym.NS); ok {
			if def, ok := target.Defs[sym.Name]; ok {
				alias := r.EnsureImport(ns, target.TargetLibrary, target.Name)
				ns.Aliases[sym.NS] = alias
				return alias + "." + def.TargetName, nil
			}
		}
	}

	return "", &UnresolvedSymbolError{NS: sym.NS, Name: sym.Name}
}

// parseMapped splits a "ns/name" or bare "name" fully-qualified mapping back
// into a resolvable Form for the recursive step-4 lookup.
func parseMapped(mapped string) surface.Form {
	for i := 0; i < len(mapped); i++ {
		if mapped[i] == '/' {
			return surface.QSym(mapped[:i], mapped[i+1:])
		}
	}
	return surface.Sym(mapped)
}
