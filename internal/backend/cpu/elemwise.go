package cpu

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/tensor"
)

var errDivisionByZero = errors.New("integer division by zero")

// elemwise evaluates one elementwise mode with NumPy-style broadcasting.
//
// Floating-point kinds compute in float64, integer kinds in int64, logical
// modes on bools. Comparisons always produce Bool.
func (cpu *CPUBackend) elemwise(mode ops.ElemwiseMode, in []*tensor.RawTensor) (*tensor.RawTensor, error) {
	if mode.Arity() == 1 {
		return cpu.unary(mode, in[0])
	}
	a, b := in[0], in[1]

	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tensor.ErrShapeMismatch, err)
	}
	kind, err := binaryResultKind(mode, a.DType(), b.DType())
	if err != nil {
		return nil, err
	}
	result, err := tensor.NewRaw(outShape, kind, cpu.device)
	if err != nil {
		return nil, err
	}
	aIdx := broadcastIndexMap(a.Shape(), outShape)
	bIdx := broadcastIndexMap(b.Shape(), outShape)

	switch {
	case mode.IsLogical():
		x, y := a.Bools(), b.Bools()
		out := make([]bool, len(aIdx))
		for i := range out {
			out[i] = logical(mode, x[aIdx[i]], y[bIdx[i]])
		}
		result.SetBools(out)
	case mode.IsComparison():
		out := make([]bool, len(aIdx))
		if isIntegral(a.DType()) && isIntegral(b.DType()) {
			x, y := a.Int64s(), b.Int64s()
			for i := range out {
				out[i] = compare(mode, x[aIdx[i]], y[bIdx[i]])
			}
		} else {
			x, y := a.Float64s(), b.Float64s()
			for i := range out {
				out[i] = compare(mode, x[aIdx[i]], y[bIdx[i]])
			}
		}
		result.SetBools(out)
	case kind.IsFloat():
		x, y := a.Float64s(), b.Float64s()
		out := make([]float64, len(aIdx))
		for i := range out {
			out[i] = binaryFloat(mode, x[aIdx[i]], y[bIdx[i]])
		}
		result.SetFloat64s(out)
	default:
		x, y := a.Int64s(), b.Int64s()
		out := make([]int64, len(aIdx))
		for i := range out {
			v, err := binaryInt(mode, x[aIdx[i]], y[bIdx[i]])
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		result.SetInt64s(out)
	}
	return result, nil
}

func (cpu *CPUBackend) unary(mode ops.ElemwiseMode, x *tensor.RawTensor) (*tensor.RawTensor, error) {
	kind := x.DType()
	if mode == ops.Not {
		if kind != tensor.Bool {
			return nil, fmt.Errorf("%w: NOT requires bool, got %s", tensor.ErrUnsupportedDType, kind)
		}
	} else if kind == tensor.Bool {
		return nil, fmt.Errorf("%w: %s on bool", tensor.ErrUnsupportedDType, mode)
	}

	result, err := tensor.NewRaw(x.Shape(), kind, cpu.device)
	if err != nil {
		return nil, err
	}

	switch {
	case mode == ops.Not:
		out := x.Bools()
		for i, v := range out {
			out[i] = !v
		}
		result.SetBools(out)
	case kind.IsFloat():
		out := x.Float64s()
		for i, v := range out {
			out[i] = unaryFloat(mode, v)
		}
		result.SetFloat64s(out)
	default:
		out := x.Int64s()
		for i, v := range out {
			out[i] = unaryInt(mode, v)
		}
		result.SetInt64s(out)
	}
	return result, nil
}

func binaryResultKind(mode ops.ElemwiseMode, a, b tensor.DataType) (tensor.DataType, error) {
	switch {
	case mode.IsLogical():
		if a != tensor.Bool || b != tensor.Bool {
			return 0, fmt.Errorf("%w: %s requires bool operands, got %s and %s", tensor.ErrUnsupportedDType, mode, a, b)
		}
		return tensor.Bool, nil
	case mode.IsComparison():
		return tensor.Bool, nil
	}
	if a == tensor.Bool || b == tensor.Bool {
		return 0, fmt.Errorf("%w: %s on bool", tensor.ErrUnsupportedDType, mode)
	}
	kind := promote(a, b)
	switch mode {
	case ops.TrueDiv:
		if !kind.IsFloat() {
			kind = tensor.Float32
		}
	case ops.Shl, ops.Shr:
		if kind.IsFloat() {
			return 0, fmt.Errorf("%w: %s on %s", tensor.ErrUnsupportedDType, mode, kind)
		}
	}
	return kind, nil
}

// promote picks the result kind of mixing a and b.
func promote(a, b tensor.DataType) tensor.DataType {
	switch {
	case a == b:
		return a
	case a.IsFloat() && !b.IsFloat():
		return a
	case b.IsFloat() && !a.IsFloat():
		return b
	case a.Size() > b.Size():
		return a
	case b.Size() > a.Size():
		return b
	case a.IsFloat():
		// float16 with bfloat16
		return tensor.Float32
	default:
		// same width, different signedness
		return tensor.Int16
	}
}

func isIntegral(k tensor.DataType) bool {
	return k.IsInteger() || k == tensor.Bool
}

func logical(mode ops.ElemwiseMode, x, y bool) bool {
	switch mode {
	case ops.And:
		return x && y
	case ops.Or:
		return x || y
	default:
		return x != y
	}
}

func compare[T int64 | float64](mode ops.ElemwiseMode, x, y T) bool {
	switch mode {
	case ops.LT:
		return x < y
	case ops.LEQ:
		return x <= y
	default:
		return x == y
	}
}

func unaryFloat(mode ops.ElemwiseMode, x float64) float64 {
	switch mode {
	case ops.Negate:
		return -x
	case ops.Abs:
		return math.Abs(x)
	case ops.Round:
		return math.Round(x)
	case ops.Floor:
		return math.Floor(x)
	default:
		return math.Ceil(x)
	}
}

func unaryInt(mode ops.ElemwiseMode, x int64) int64 {
	switch mode {
	case ops.Negate:
		return -x
	case ops.Abs:
		if x < 0 {
			return -x
		}
		return x
	default:
		// rounding an integer is the identity
		return x
	}
}

func binaryFloat(mode ops.ElemwiseMode, x, y float64) float64 {
	switch mode {
	case ops.Add:
		return x + y
	case ops.Sub:
		return x - y
	case ops.Mul:
		return x * y
	case ops.TrueDiv:
		return x / y
	case ops.FloorDiv:
		return math.Floor(x / y)
	case ops.Mod:
		r := math.Mod(x, y)
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return r
	default:
		return math.Pow(x, y)
	}
}

func binaryInt(mode ops.ElemwiseMode, x, y int64) (int64, error) {
	switch mode {
	case ops.Add:
		return x + y, nil
	case ops.Sub:
		return x - y, nil
	case ops.Mul:
		return x * y, nil
	case ops.FloorDiv:
		if y == 0 {
			return 0, errDivisionByZero
		}
		q := x / y
		if (x%y != 0) && ((x < 0) != (y < 0)) {
			q--
		}
		return q, nil
	case ops.Mod:
		if y == 0 {
			return 0, errDivisionByZero
		}
		r := x % y
		if r != 0 && (r < 0) != (y < 0) {
			r += y
		}
		return r, nil
	case ops.Pow:
		return intPow(x, y), nil
	case ops.Shl:
		if y < 0 {
			return 0, fmt.Errorf("negative shift count %d", y)
		}
		return x << uint64(y), nil
	case ops.Shr:
		if y < 0 {
			return 0, fmt.Errorf("negative shift count %d", y)
		}
		return x >> uint64(y), nil
	}
	return 0, fmt.Errorf("mode %s not defined on integers", mode)
}

// intPow raises x to a non-negative power by squaring. Negative exponents
// truncate toward zero like the float result cast back to an integer.
func intPow(x, y int64) int64 {
	if y < 0 {
		return int64(math.Pow(float64(x), float64(y)))
	}
	result := int64(1)
	for y > 0 {
		if y&1 == 1 {
			result *= x
		}
		x *= x
		y >>= 1
	}
	return result
}
