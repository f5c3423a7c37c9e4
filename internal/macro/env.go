package macro

// Env is the macro expander's lexical shadow-tracking environment. Spec.md
// §4.2 requires expand1 to leave a form untouched when its head symbol is
// shadowed by a local binding — e.g. `(let [if (fn [a b c] a)] (if 1 2 3))`
// must not expand `if` as a special form once `if` names a local. Macros
// themselves are always invoked with a fresh, empty Env (spec.md §4.2:
// "macros must be written to be environment-independent").
type Env struct {
	shadowed map[string]bool
	parent   *Env
}

// NewEnv returns an empty macro-expansion environment.
func NewEnv() *Env { return &Env{} }

// Child returns a new Env that additionally shadows name, leaving the
// receiver untouched.
func (e *Env) Child(name string) *Env {
	return &Env{shadowed: map[string]bool{name: true}, parent: e}
}

// ChildAll shadows every name in names.
func (e *Env) ChildAll(names []string) *Env {
	if len(names) == 0 {
		return e
	}
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return &Env{shadowed: m, parent: e}
}

// Shadows reports whether name is bound anywhere in this environment chain.
func (e *Env) Shadows(name string) bool {
	for cur := e; cur != nil; cur = cur.parent {
		if cur.shadowed[name] {
			return true
		}
	}
	return false
}
