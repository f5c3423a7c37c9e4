package analyzer

import (
	"github.com/formlang/formc/internal/config"
	"github.com/formlang/formc/internal/ir"
)

// inferTruth computes the {truth} half of a node's optional inference
// metadata (spec.md §4.3). Sources: boolean-returning operators, "is" type
// tests, "as" casts typed by their target, and literals/identifiers whose
// kind is already known. Everything else is TruthUnknown, which makes the
// emitter fall back to the full "!= false && != nil" guard.
func inferTruth(n ir.Node) ir.Truth {
	switch v := n.(type) {
	case *ir.Literal:
		switch v.LitKind {
		case ir.LitBool:
			return ir.TruthBoolean
		case ir.LitNil:
			return ir.TruthNilOrOther
		default:
			return ir.TruthSome
		}
	case *ir.Ident:
		if v.Info != nil {
			return v.Info.Truth
		}
		return ir.TruthUnknown
	case *ir.Is:
		return ir.TruthBoolean
	case *ir.As:
		if isBoolTypeNode(v.Type) {
			return ir.TruthBoolean
		}
		return ir.TruthSome
	case *ir.MethodCall:
		if config.IsBoolProducing(v.Member) {
			return ir.TruthBoolean
		}
		return ir.TruthUnknown
	case *ir.New:
		return ir.TruthSome
	default:
		return ir.TruthUnknown
	}
}

func isBoolTypeNode(n ir.Node) bool {
	id, ok := n.(*ir.Ident)
	return ok && (id.Hint == "Bool" || id.Hint == "bool")
}

// annotateTruth attaches n's inferred {target-type, truth} metadata and
// returns n for chaining.
func annotateTruth(n ir.Node, targetType string) ir.Node {
	truth := inferTruth(n)
	switch v := n.(type) {
	case *ir.Literal:
		v.Annotate(ir.Meta{TargetType: targetType, Truth: truth})
	case *ir.Ident:
		v.Annotate(ir.Meta{TargetType: targetType, Truth: truth})
	case *ir.Is:
		v.Annotate(ir.Meta{TargetType: targetType, Truth: truth})
	case *ir.As:
		v.Annotate(ir.Meta{TargetType: targetType, Truth: truth})
	case *ir.MethodCall:
		v.Annotate(ir.Meta{TargetType: targetType, Truth: truth})
	case *ir.New:
		v.Annotate(ir.Meta{TargetType: targetType, Truth: truth})
	}
	return n
}
