package analyzer

import "github.com/formlang/formc/internal/ir"

// Env is the analyzer's lexical environment: an immutable chain of frames
// mapping source symbol name to the identifier it's bound to (spec.md §3
// Lifecycle: "Lexical environments are immutable value-like maps passed
// down the analyzer"). Extending adds a child frame that points at its
// parent; no existing frame is copied or modified.
type Env struct {
	bindings map[string]*ir.Ident
	parent   *Env
}

// NewEnv returns an empty environment.
func NewEnv() *Env { return &Env{} }

// Extend returns a new Env with name bound to id, leaving the receiver (and
// every other Env sharing its ancestry) untouched.
func (e *Env) Extend(name string, id *ir.Ident) *Env {
	return &Env{bindings: map[string]*ir.Ident{name: id}, parent: e}
}

// ExtendAll binds every (name, id) pair in one new child frame.
func (e *Env) ExtendAll(names []string, ids []*ir.Ident) *Env {
	if len(names) == 0 {
		return e
	}
	m := make(map[string]*ir.Ident, len(names))
	for i, n := range names {
		m[n] = ids[i]
	}
	return &Env{bindings: m, parent: e}
}

// Lookup finds the identifier bound to name, if any, and implements
// registry.Env so the analyzer can hand its environment straight to
// Registry.Resolve.
func (e *Env) Lookup(name string) (string, bool) {
	id, ok := e.lookupIdent(name)
	if !ok {
		return "", false
	}
	return id.Name, true
}

// lookupIdent is like Lookup but returns the full *ir.Ident (mutability,
// hint) rather than just its mangled name.
func (e *Env) lookupIdent(name string) (*ir.Ident, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if id, ok := cur.bindings[name]; ok {
			return id, true
		}
	}
	return nil, false
}

// LookupIdent is the exported form of lookupIdent.
func (e *Env) LookupIdent(name string) (*ir.Ident, bool) {
	return e.lookupIdent(name)
}

// Binds reports whether name has a binding anywhere in this chain — used by
// the macro expander's shadow check via the Env adapter in pipeline.
func (e *Env) Binds(name string) bool {
	_, ok := e.lookupIdent(name)
	return ok
}
