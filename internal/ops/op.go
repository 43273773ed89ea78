package ops

import (
	"fmt"

	"github.com/born-ml/tensorcore/internal/tensor"
)

// Type aliases the tensor numeric type so descriptors read naturally.
type Type = tensor.Type

// Op is a primitive operation descriptor.
type Op interface {
	// Name is the primitive's name, independent of its parameters.
	Name() string
	// String renders the primitive with its parameters.
	String() string
}

// Executor runs primitive descriptors against operand tensors.
//
// Apply returns zero or more result tensors. Errors are computation
// failures (shape incompatibility, unsupported dtype, device faults); callers
// propagate them unchanged.
type Executor interface {
	Apply(op Op, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error)
}

// Apply1 runs op and returns its single result.
func Apply1(exec Executor, op Op, inputs ...*tensor.RawTensor) (*tensor.RawTensor, error) {
	results, err := exec.Apply(op, inputs...)
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("%s: expected 1 result, got %d", op, len(results))
	}
	return results[0], nil
}
