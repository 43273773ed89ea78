package ops

import "fmt"

// ElemwiseMode selects the elementwise primitive.
type ElemwiseMode int

// Elementwise modes.
const (
	Negate ElemwiseMode = iota
	Abs
	Round
	Floor
	Ceil
	Not

	Add
	Sub
	Mul
	TrueDiv
	FloorDiv
	Mod
	Pow
	Shl
	Shr
	And
	Or
	Xor

	LT
	LEQ
	EQ
)

var elemwiseNames = [...]string{
	Negate:   "NEGATE",
	Abs:      "ABS",
	Round:    "ROUND",
	Floor:    "FLOOR",
	Ceil:     "CEIL",
	Not:      "NOT",
	Add:      "ADD",
	Sub:      "SUB",
	Mul:      "MUL",
	TrueDiv:  "TRUE_DIV",
	FloorDiv: "FLOOR_DIV",
	Mod:      "MOD",
	Pow:      "POW",
	Shl:      "SHL",
	Shr:      "SHR",
	And:      "AND",
	Or:       "OR",
	Xor:      "XOR",
	LT:       "LT",
	LEQ:      "LEQ",
	EQ:       "EQ",
}

// String returns the upper-case mode name.
func (m ElemwiseMode) String() string {
	if m < 0 || int(m) >= len(elemwiseNames) {
		return fmt.Sprintf("ElemwiseMode(%d)", int(m))
	}
	return elemwiseNames[m]
}

// Arity returns the number of operands the mode consumes.
func (m ElemwiseMode) Arity() int {
	if m <= Not {
		return 1
	}
	return 2
}

// IsComparison reports whether the mode produces a truth value.
func (m ElemwiseMode) IsComparison() bool {
	return m == LT || m == LEQ || m == EQ
}

// IsLogical reports whether the mode is defined on bool operands only.
func (m ElemwiseMode) IsLogical() bool {
	return m == Not || m == And || m == Or || m == Xor
}

// Elemwise applies one elementwise mode to broadcastable operands.
type Elemwise struct {
	Mode ElemwiseMode
}

// Name returns the primitive name.
func (Elemwise) Name() string { return "Elemwise" }

func (e Elemwise) String() string { return fmt.Sprintf("Elemwise(%s)", e.Mode) }

// TypeCvt converts its operand to another numeric type.
type TypeCvt struct {
	To Type
}

// Name returns the primitive name.
func (TypeCvt) Name() string { return "TypeCvt" }

func (t TypeCvt) String() string { return fmt.Sprintf("TypeCvt(%s)", t.To) }
