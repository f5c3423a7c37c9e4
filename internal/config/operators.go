package config

// Operator table
//
// Single source of truth for the target-language operator method names the
// emitter recognizes on `.` IR nodes (spec.md §4.4) and for which comparison
// operators the analyzer's truthiness inference treats as boolean-producing
// (spec.md §4.3).
//
// When adding an operator, update both the emitter's `.` case and this table
// together; there is no second copy to keep in sync.

// Fixity controls how the emitter spells a `.` node whose member name is an
// operator: as infix (`(a + b)`), prefix (`(!a)`), postfix/index, or a plain
// method call when no entry here matches.
type Fixity int

const (
	FixityInfix Fixity = iota
	FixityPrefixUnary
	FixityIndex
	FixityIndexAssign
)

// OperatorInfo is one entry of the operator table.
type OperatorInfo struct {
	Method       string // the "." node's member-name, e.g. "+" or "[]"
	Fixity       Fixity
	BoolProducing bool // true if this operator's result is provably boolean (§4.3)
	DoubleGlyph  bool // true if the source-language logical form doubles the glyph (| -> ||)
}

// Operators is the single source of truth consulted by both the emitter
// (how to print a "." node) and the analyzer's truthiness inference (which
// "." nodes are known to produce a boolean).
var Operators = []OperatorInfo{
	{Method: "+", Fixity: FixityInfix},
	{Method: "-", Fixity: FixityInfix},
	{Method: "*", Fixity: FixityInfix},
	{Method: "/", Fixity: FixityInfix},
	{Method: "%", Fixity: FixityInfix},
	{Method: "~/", Fixity: FixityInfix},

	{Method: "==", Fixity: FixityInfix, BoolProducing: true},
	{Method: "!=", Fixity: FixityInfix, BoolProducing: true},
	{Method: "<", Fixity: FixityInfix, BoolProducing: true},
	{Method: ">", Fixity: FixityInfix, BoolProducing: true},
	{Method: "<=", Fixity: FixityInfix, BoolProducing: true},
	{Method: ">=", Fixity: FixityInfix, BoolProducing: true},

	{Method: "<<", Fixity: FixityInfix},
	{Method: ">>", Fixity: FixityInfix},
	{Method: ">>>", Fixity: FixityInfix},

	{Method: "&", Fixity: FixityInfix, BoolProducing: true, DoubleGlyph: true},
	{Method: "|", Fixity: FixityInfix, BoolProducing: true, DoubleGlyph: true},
	{Method: "^", Fixity: FixityInfix, BoolProducing: true, DoubleGlyph: true},

	{Method: "~", Fixity: FixityPrefixUnary},
	{Method: "!", Fixity: FixityPrefixUnary, BoolProducing: true},

	{Method: "[]", Fixity: FixityIndex},
	{Method: "[]=", Fixity: FixityIndexAssign},
}

var operatorIndex = func() map[string]OperatorInfo {
	m := make(map[string]OperatorInfo, len(Operators))
	for _, o := range Operators {
		m[o.Method] = o
	}
	return m
}()

// LookupOperator returns the table entry for a "." member name, if any.
func LookupOperator(method string) (OperatorInfo, bool) {
	o, ok := operatorIndex[method]
	return o, ok
}

// IsBoolProducing reports whether method is known to always return a
// target-language boolean (spec.md §4.3 truthiness sources).
func IsBoolProducing(method string) bool {
	o, ok := operatorIndex[method]
	return ok && o.BoolProducing
}
