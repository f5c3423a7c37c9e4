package analyzer

import (
	"github.com/formlang/formc/internal/diagnostics"
	"github.com/formlang/formc/internal/ir"
)

// validateRecurArity walks node looking for *ir.Recur occurrences, refusing
// to descend into a nested Loop or Fn body since those introduce their own
// recur target (spec.md §4.3, §7 recur-arity-mismatch).
func validateRecurArity(node ir.Node, arity int) error {
	var err error
	walkRecur(node, func(r *ir.Recur) bool {
		if len(r.Args) != arity {
			err = diagnostics.New(diagnostics.PhaseAnalyzer, diagnostics.ErrRecurArity, r.Pos(), len(r.Args), arity)
			return false
		}
		return true
	})
	return err
}

// walkRecur visits every *ir.Recur reachable from n without crossing into a
// nested Loop/Fn, calling visit on each; it stops early once visit returns
// false.
func walkRecur(n ir.Node, visit func(*ir.Recur) bool) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *ir.Recur:
		return visit(v)
	case *ir.Let:
		for _, b := range v.Bindings {
			if !walkRecur(b.Value, visit) {
				return false
			}
		}
		return walkRecur(v.Body, visit)
	case *ir.If:
		if !walkRecur(v.Test, visit) {
			return false
		}
		if !walkRecur(v.Then, visit) {
			return false
		}
		return walkRecur(v.Else, visit)
	case *ir.Try:
		if !walkRecur(v.Body, visit) {
			return false
		}
		for _, c := range v.Catches {
			if !walkRecur(c.Body, visit) {
				return false
			}
		}
		return walkRecur(v.Finally, visit)
	case *ir.Case:
		for _, c := range v.Clauses {
			if !walkRecur(c.Body, visit) {
				return false
			}
		}
		return walkRecur(v.Default, visit)
	case *ir.Loop, *ir.Fn:
		// Nested loops/fns own their own recur target; do not descend.
		return true
	default:
		return true
	}
}

// containsRecur reports whether node contains a Recur reachable without
// crossing a nested Loop/Fn boundary (used to decide whether a fn/loop body
// needs an implicit enclosing Loop at all).
func containsRecur(node ir.Node) bool {
	found := false
	walkRecur(node, func(*ir.Recur) bool {
		found = true
		return false
	})
	return found
}
