package matmul

import "errors"

// Common errors.
var (
	ErrScalarOperand   = errors.New("matmul of a rank-0 operand")
	ErrMixedOperands   = errors.New("cannot mix concrete and symbolic operands")
	ErrBuilderMismatch = errors.New("symbolic operands belong to different builders")
)
