package analyzer

import (
	"github.com/formlang/formc/internal/diagnostics"
	"github.com/formlang/formc/internal/ir"
	"github.com/formlang/formc/internal/surface"
)

// analyzeCase lowers (case* scrutinee v1 r1 v2 r2 ... default?); an odd
// trailing element after the value/result pairs is the default clause
// (spec.md §3 Case IR node; expand.go's expandCase is the only producer of
// case* forms).
func (a *Analyzer) analyzeCase(env *Env, form surface.Form, tail bool) (ir.Node, error) {
	items := form.Tail()
	if len(items) == 0 {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "case*")
	}
	scrutineeNode, err := a.Analyze(env, items[0], false)
	if err != nil {
		return nil, err
	}
	bindings, atom := a.liftOperand(scrutineeNode, "case_scrut")

	rest := items[1:]
	var clauses []ir.CaseClause
	var defaultNode ir.Node
	i := 0
	for i+1 < len(rest) {
		values, err := a.analyzeCaseValues(env, rest[i])
		if err != nil {
			return nil, err
		}
		bodyNode, err := a.Analyze(env, rest[i+1], tail)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, ir.CaseClause{Values: values, Body: bodyNode})
		i += 2
	}
	if i < len(rest) {
		defaultNode, err = a.Analyze(env, rest[i], tail)
		if err != nil {
			return nil, err
		}
	}

	caseNode := &ir.Case{Scrutinee: atom, Clauses: clauses, Default: defaultNode}
	return wrapBindings(bindings, caseNode), nil
}

// analyzeCaseValues lowers one clause's value position: either a single
// literal, or a seq grouping several literal-values under one shared body
// (spec.md §3 Case: "clauses: list of (literal-values, ir)").
func (a *Analyzer) analyzeCaseValues(env *Env, form surface.Form) ([]ir.Node, error) {
	if form.Kind == surface.KindSeq {
		values := make([]ir.Node, len(form.Items))
		for i, item := range form.Items {
			n, err := a.Analyze(env, item, false)
			if err != nil {
				return nil, err
			}
			values[i] = n
		}
		return values, nil
	}
	n, err := a.Analyze(env, form, false)
	if err != nil {
		return nil, err
	}
	return []ir.Node{n}, nil
}

// analyzeTry lowers (try body (catch Class exn [stack] body)... (finally
// body...)?). The protected body and every catch body share the try's own
// value position, but neither may itself contain a tail recur: a try/catch
// is a dynamic, not lexical, boundary, so recur is forced out of tail
// position the moment it crosses into try (spec.md §7 recur-boundary).
func (a *Analyzer) analyzeTry(env *Env, form surface.Form, tail bool) (ir.Node, error) {
	items := form.Tail()
	if len(items) == 0 {
		return nil, analyzerErr(diagnostics.ErrLiteral, form.Pos, "try")
	}
	bodyNode, err := a.Analyze(env, items[0], false)
	if err != nil {
		return nil, err
	}

	var catches []ir.Catch
	var finallyNode ir.Node
	for _, r := range items[1:] {
		head, ok := r.Head()
		if !ok {
			continue
		}
		switch {
		case head.IsSymbol("catch"):
			ct := r.Tail()
			var classForm, exnForm, stackForm, catchBodyForm surface.Form
			hasStack := false
			switch len(ct) {
			case 3:
				classForm, exnForm, catchBodyForm = ct[0], ct[1], ct[2]
			case 4:
				classForm, exnForm, stackForm, catchBodyForm = ct[0], ct[1], ct[2], ct[3]
				hasStack = true
			default:
				return nil, analyzerErr(diagnostics.ErrLiteral, r.Pos, "catch")
			}
			exnId := a.newIdent(exnForm.Name, false)
			catchEnv := env.Extend(exnForm.Name, exnId)
			var stackId *ir.Ident
			if hasStack {
				stackId = a.newIdent(stackForm.Name, false)
				catchEnv = catchEnv.Extend(stackForm.Name, stackId)
			}
			cbNode, err := a.Analyze(catchEnv, catchBodyForm, false)
			if err != nil {
				return nil, err
			}
			catches = append(catches, ir.Catch{ClassId: classForm, ExnId: exnId, StackId: stackId, Body: cbNode})

		case head.IsSymbol("finally"):
			fNode, err := a.analyzeBody(env, r.Tail(), false)
			if err != nil {
				return nil, err
			}
			finallyNode = fNode
		}
	}

	return &ir.Try{Body: bodyNode, Catches: catches, Finally: finallyNode}, nil
}
