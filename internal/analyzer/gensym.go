package analyzer

import (
	"fmt"

	"github.com/formlang/formc/internal/mangle"
)

// Gensym is the per-top-level-form identifier factory of spec.md §4.3: names
// are "hint$N" where N counts per hint. A Gensym must not outlive the
// top-level form it was created for (spec.md §5: "any analyzer invocation
// running outside such a scope is a programming error").
type Gensym struct {
	counts map[string]int
}

// NewGensym starts a fresh counter map, scoped to one top-level form.
func NewGensym() *Gensym {
	return &Gensym{counts: make(map[string]int)}
}

// Next returns the next unique mangled name derived from hint.
func (g *Gensym) Next(hint string) string {
	mangled := mangle.Name(hint)
	n := g.counts[mangled]
	g.counts[mangled] = n + 1
	return fmt.Sprintf("%s$%d", mangled, n)
}
