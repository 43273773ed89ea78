package dispatch

import "github.com/born-ml/tensorcore/internal/ops"

// Symbol names an operator of the dispatch layer.
type Symbol string

// Operator symbols.
const (
	SymNeg    Symbol = "neg"
	SymAbs    Symbol = "abs"
	SymRound  Symbol = "round"
	SymFloor  Symbol = "floor"
	SymCeil   Symbol = "ceil"
	SymInvert Symbol = "invert"

	SymAdd      Symbol = "add"
	SymSub      Symbol = "sub"
	SymMul      Symbol = "mul"
	SymTrueDiv  Symbol = "truediv"
	SymFloorDiv Symbol = "floordiv"
	SymMod      Symbol = "mod"
	SymPow      Symbol = "pow"
	SymShl      Symbol = "lshift"
	SymShr      Symbol = "rshift"
	SymAnd      Symbol = "and"
	SymOr       Symbol = "or"
	SymXor      Symbol = "xor"

	SymLt Symbol = "lt"
	SymLe Symbol = "le"
	SymGt Symbol = "gt"
	SymGe Symbol = "ge"
	SymEq Symbol = "eq"
	SymNe Symbol = "ne"
)

// unaryModes maps unary operators onto their elementwise mode.
var unaryModes = map[Symbol]ops.ElemwiseMode{
	SymNeg:    ops.Negate,
	SymAbs:    ops.Abs,
	SymRound:  ops.Round,
	SymFloor:  ops.Floor,
	SymCeil:   ops.Ceil,
	SymInvert: ops.Not,
}

// binaryModes maps arithmetic and logical operators onto their elementwise mode.
var binaryModes = map[Symbol]ops.ElemwiseMode{
	SymAdd:      ops.Add,
	SymSub:      ops.Sub,
	SymMul:      ops.Mul,
	SymTrueDiv:  ops.TrueDiv,
	SymFloorDiv: ops.FloorDiv,
	SymMod:      ops.Mod,
	SymPow:      ops.Pow,
	SymShl:      ops.Shl,
	SymShr:      ops.Shr,
	SymAnd:      ops.And,
	SymOr:       ops.Or,
	SymXor:      ops.Xor,
}

// comparison describes a comparison as a mode, whether operands swap, and
// whether the result is negated.
type comparison struct {
	mode   ops.ElemwiseMode
	swap   bool
	negate bool
}

var comparisons = map[Symbol]comparison{
	SymLt: {mode: ops.LT},
	SymLe: {mode: ops.LEQ},
	SymGt: {mode: ops.LT, swap: true},
	SymGe: {mode: ops.LEQ, swap: true},
	SymEq: {mode: ops.EQ},
	SymNe: {mode: ops.EQ, negate: true},
}

// ModeOf returns the elementwise mode an operator symbol dispatches to.
// Comparisons report the mode before operand swapping or negation.
func ModeOf(sym Symbol) (ops.ElemwiseMode, bool) {
	if m, ok := unaryModes[sym]; ok {
		return m, true
	}
	if m, ok := binaryModes[sym]; ok {
		return m, true
	}
	if c, ok := comparisons[sym]; ok {
		return c.mode, true
	}
	return 0, false
}
