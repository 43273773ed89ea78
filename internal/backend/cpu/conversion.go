package cpu

import (
	"github.com/born-ml/tensorcore/internal/tensor"
)

// typeCvt converts x to the target type. Casting to the type x already has is
// a no-op view; retagging quantization metadata on the same storage kind
// shares the buffer. Float to integer conversion truncates toward zero.
func (cpu *CPUBackend) typeCvt(x *tensor.RawTensor, to tensor.Type) (*tensor.RawTensor, error) {
	if x.Type().Equal(to) {
		return x.Clone(), nil
	}
	if x.DType() == to.Kind {
		return x.WithType(to)
	}

	result, err := tensor.NewTyped(x.Shape(), to, cpu.device)
	if err != nil {
		return nil, err
	}

	switch {
	case to.Kind == tensor.Bool:
		result.SetBools(x.Bools())
	case to.Kind.IsFloat():
		result.SetFloat64s(x.Float64s())
	default:
		result.SetInt64s(x.Int64s())
	}
	return result, nil
}
