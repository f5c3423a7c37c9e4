package analyzer

import "github.com/formlang/formc/internal/ir"

// isAtomicNode reports whether n is safe to duplicate or re-occur directly
// at a call site without pre-evaluating it into a temporary (spec.md §4.3,
// Glossary "Atomic expression"): a literal, an identifier, or a bare field
// read.
func isAtomicNode(n ir.Node) bool {
	switch n.(type) {
	case *ir.Literal, *ir.Ident, *ir.FieldRead:
		return true
	default:
		return false
	}
}

// liftOperand returns the bindings that must precede n and the atom that
// should appear at the use site. If n is already a *ir.Let, its bindings are
// hoisted rather than re-wrapped (spec.md §4.3 lifting). If n is an
// if/try/case, a fresh temporary captures its result.
func (a *Analyzer) liftOperand(n ir.Node, hint string) ([]ir.Binding, ir.Node) {
	if isAtomicNode(n) {
		return nil, n
	}
	if let, ok := n.(*ir.Let); ok {
		inner, atom := a.liftOperand(let.Body, hint)
		return append(append([]ir.Binding{}, let.Bindings...), inner...), atom
	}
	id := a.newIdent(hint, false)
	if m := n.Meta(); m != nil {
		id.Annotate(*m)
	}
	return []ir.Binding{{Id: id, Value: n}}, id
}

// liftArgs A-normalizes a call/constructor's operand lists. Positional args
// are processed left-to-right for the output binding order (spec.md §4.3:
// "the resulting bindings are concatenated so that source order is
// preserved in the emitted code"); every non-atomic operand is forced to a
// temporary regardless of position, which is the simplification formc makes
// of the "once any argument has required a binding..." forcing rule — see
// DESIGN.md.
func (a *Analyzer) liftArgs(positional []ir.Node, named []ir.NamedArg, hint string) ([]ir.Binding, []ir.Node, []ir.NamedArg) {
	var bindings []ir.Binding

	newPositional := make([]ir.Node, len(positional))
	for i, p := range positional {
		bs, atom := a.liftOperand(p, hint)
		bindings = append(bindings, bs...)
		newPositional[i] = atom
	}

	newNamed := make([]ir.NamedArg, len(named))
	for j, nm := range named {
		bs, atom := a.liftOperand(nm.Value, nm.Name)
		bindings = append(bindings, bs...)
		newNamed[j] = ir.NamedArg{Name: nm.Name, Value: atom}
	}

	return bindings, newPositional, newNamed
}

// wrapBindings wraps body in a Let over bindings, or returns body unchanged
// if there are none.
func wrapBindings(bindings []ir.Binding, body ir.Node) ir.Node {
	if len(bindings) == 0 {
		return body
	}
	return &ir.Let{Bindings: bindings, Body: body}
}
