package analyzer

import (
	"testing"

	"github.com/formlang/formc/internal/ir"
	"github.com/formlang/formc/internal/surface"
)

func TestAnalyzeCaseSingleValueClause(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")
	a.ResetForm()

	// (case* x 1 10 2)
	form := sq(surface.Sym("case*"), surface.Sym("x"), num("1"), num("10"), num("2"))
	node, err := a.analyzeCase(NewEnv().Extend("x", a.newIdent("x", false)), form, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	caseNode := unwrapCase(t, node)
	if len(caseNode.Clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(caseNode.Clauses))
	}
	if len(caseNode.Clauses[0].Values) != 1 {
		t.Fatalf("expected a single-value clause, got %d values", len(caseNode.Clauses[0].Values))
	}
}

func TestAnalyzeCaseGroupedValuesShareOneClause(t *testing.T) {
	a := newTestAnalyzer()
	a.Reg.SetCurrent("user")
	a.ResetForm()

	// (case* x (1 2 3) 20 4)
	form := sq(surface.Sym("case*"), surface.Sym("x"),
		sq(num("1"), num("2"), num("3")), num("20"),
		num("4"),
	)
	node, err := a.analyzeCase(NewEnv().Extend("x", a.newIdent("x", false)), form, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	caseNode := unwrapCase(t, node)
	if len(caseNode.Clauses) != 1 {
		t.Fatalf("expected 1 clause, got %d", len(caseNode.Clauses))
	}
	if len(caseNode.Clauses[0].Values) != 3 {
		t.Fatalf("expected 3 grouped values in one clause, got %d", len(caseNode.Clauses[0].Values))
	}
	if caseNode.Default == nil {
		t.Fatal("expected a default clause from the trailing odd element")
	}
}

// unwrapCase pulls the *ir.Case out of node, looking through any lifted
// bindings wrapBindings may have introduced.
func unwrapCase(t *testing.T, node ir.Node) *ir.Case {
	t.Helper()
	switch v := node.(type) {
	case *ir.Case:
		return v
	case *ir.Let:
		return unwrapCase(t, v.Body)
	default:
		t.Fatalf("expected *ir.Case (possibly wrapped in lets), got %T", node)
		return nil
	}
}
