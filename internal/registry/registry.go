// Package registry implements the Namespace Registry (NR): the process-wide
// mutable store of namespaces threaded through the macro expander, analyzer,
// and emitter (spec.md §4.1). All mutation is serialized by the single
// top-level-form-at-a-time driver loop (spec.md §5) — Registry holds no
// locks, matching the teacher's single-owner symbol table.
package registry

import (
	"fmt"
)

// Env is the minimal lexical-environment contract Resolve needs: "does this
// symbol have a local binding, and if so what identifier does it resolve
// to". Declared as an interface (rather than importing the analyzer's
// environment type directly) to avoid an import cycle between registry and
// analyzer, the same trick the teacher's analyzer.ModuleLoader plays against
// its modules package.
type Env interface {
	Lookup(name string) (string, bool)
}

// DefKind classifies what a Definition emits as.
type DefKind int

const (
	DefField DefKind = iota
	DefFunction
	DefClass
)

// Definition is one NR definition record (spec.md §3 Namespace record).
type Definition struct {
	TargetName string
	Kind       DefKind
	Metadata   map[string]string
	Source     string // emitted source string; nothing in this module sets it
	Pending    bool   // true between pre-declaration and the real Define
}

// Import is one entry of a namespace's imported-lib map.
type Import struct {
	Alias         string
	LibraryPath   string
	NamespaceName string // optional; empty when the import isn't itself a formc namespace
}

// ProtocolMethod is the {target-method-name, parameter vector} pair recorded
// for one (method, arity) combination (spec.md §3 Protocol record).
type ProtocolMethod struct {
	TargetMethodName string
	Params           []string
}

// Protocol is the per-defining-symbol protocol record: method name -> arity
// -> dispatch info.
type Protocol struct {
	Methods map[string]map[int]ProtocolMethod
}

func newProtocol() *Protocol {
	return &Protocol{Methods: make(map[string]map[int]ProtocolMethod)}
}

// Namespace is one NR namespace record (spec.md §3).
type Namespace struct {
	Name          string
	Imports       map[string]Import    // alias -> Import
	Aliases       map[string]string    // user-alias -> import-alias
	Symbols       map[string]string    // short-name -> fully-qualified name
	Defs          map[string]Definition // symbol -> definition
	Protocols     map[string]*Protocol  // defining symbol -> protocol record
	TargetLibrary string

	nextImportOrdinal int
}

func newNamespace(name string) *Namespace {
	return &Namespace{
		Name:      name,
		Imports:   make(map[string]Import),
		Aliases:   make(map[string]string),
		Symbols:   make(map[string]string),
		Defs:      make(map[string]Definition),
		Protocols: make(map[string]*Protocol),
	}
}

// Protocol returns (creating if absent) the protocol record attached to sym.
func (ns *Namespace) Protocol(sym string) *Protocol {
	p, ok := ns.Protocols[sym]
	if !ok {
		p = newProtocol()
		ns.Protocols[sym] = p
	}
	return p
}

// Registry is the process-wide NR.
type Registry struct {
	namespaces map[string]*Namespace
	current    string
}

// New creates a Registry seeded with the built-in "core" namespace
// (spec.md §3 Lifecycle), populated from builtinCoreSymbols.
func New() *Registry {
	r := &Registry{namespaces: make(map[string]*Namespace)}
	core := r.Ensure(coreNamespaceName)
	for name := range builtinCoreSymbols {
		core.Symbols[name] = name
	}
	return r
}

const coreNamespaceName = "core"

// builtinCoreSymbols seeds the core namespace's symbol-mappings, each name
// mapped to itself. Resolve's step 4 reads only the current namespace's
// mappings, so these apply while core is current; other namespaces do not
// fall back to them.
var builtinCoreSymbols = map[string]bool{
	"Object": true, "String": true, "num": true, "bool": true,
	"Function": true, "dynamic": true, "void": true,
}

// Ensure returns the namespace, creating an empty record if it doesn't exist
// yet (pre-declaration, spec.md §3 Lifecycle: "recursive definitions are
// handled by pre-declaring definitions in NR before analyzing their bodies").
func (r *Registry) Ensure(name string) *Namespace {
	ns, ok := r.namespaces[name]
	if !ok {
		ns = newNamespace(name)
		r.namespaces[name] = ns
	}
	return ns
}

// Lookup returns an existing namespace without creating one.
func (r *Registry) Lookup(name string) (*Namespace, bool) {
	ns, ok := r.namespaces[name]
	return ns, ok
}

// SetCurrent switches the namespace subsequent Define/Resolve calls target.
func (r *Registry) SetCurrent(name string) { r.current = name }

// Current returns the namespace currently being compiled.
func (r *Registry) Current() *Namespace { return r.Ensure(r.current) }

// Define performs an idempotent, last-writer-wins write of a definition
// (spec.md §4.1). Calling Define twice for the same symbol simply replaces
// the record — this is what lets a pre-declaration be overwritten once the
// real body is analyzed.
func (r *Registry) Define(ns *Namespace, shortName string, def Definition) {
	ns.Defs[shortName] = def
}

// PreDeclare records an empty, Pending definition so recursive self-reference
// within the symbol's own body resolves to a name before the body exists.
func (r *Registry) PreDeclare(ns *Namespace, shortName, targetName string, kind DefKind) {
	ns.Defs[shortName] = Definition{TargetName: targetName, Kind: kind, Pending: true}
}

// EnsureImport returns the existing import alias for libPath in ns, or
// allocates a fresh one (spec.md §4.1 ensure-import).
func (r *Registry) EnsureImport(ns *Namespace, libPath, namespaceName string) string {
	for alias, imp := range ns.Imports {
		if imp.LibraryPath == libPath {
			return alias
		}
	}
	alias := fmt.Sprintf("lib$%d", ns.nextImportOrdinal)
	ns.nextImportOrdinal++
	ns.Imports[alias] = Import{Alias: alias, LibraryPath: libPath, NamespaceName: namespaceName}
	return alias
}

// ResolveProtocolMethod resolves (protocol, method, arity) to the synthesized
// dispatch method name (spec.md §4.1, §4.2 defprotocol: "mungedName$arity-minus-one").
func (r *Registry) ResolveProtocolMethod(protocolSym, methodShortName string, argCount int) (string, error) {
	for _, ns := range r.namespaces {
		p, ok := ns.Protocols[protocolSym]
		if !ok {
			continue
		}
		arities, ok := p.Methods[methodShortName]
		if !ok {
			continue
		}
		// arity key is the method's declared parameter count including the
		// implicit receiver, i.e. argCount+1 positional args at the call site.
		if m, ok := arities[argCount+1]; ok {
			return m.TargetMethodName, nil
		}
	}
	return "", fmt.Errorf("no protocol method %s/%s for arity %d", protocolSym, methodShortName, argCount)
}
