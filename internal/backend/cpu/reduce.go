package cpu

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// reduce evaluates a Reduce descriptor.
//
// Without an axis every element collapses into a rank-0 result. With an axis
// (negative values count from the end) the axis is removed, or kept with
// size 1 when KeepDim is set.
//
// Floating-point inputs reduce in float64, integer inputs in int64. Mean of
// an integer tensor produces Float32. Bool inputs reduce as 0/1 integers and
// produce Int32 (Bool for min/max).
func (cpu *CPUBackend) reduce(x *tensor.RawTensor, op ops.Reduce) (*tensor.RawTensor, error) {
	shape := x.Shape()
	ndim := len(shape)

	outer, n, inner := x.NumElements(), 1, 1
	var outShape tensor.Shape
	if op.HasAxis {
		if ndim == 0 {
			return nil, fmt.Errorf("%w: cannot reduce axis %d of a scalar", tensor.ErrAxisOutOfRange, op.Axis)
		}
		dim, err := tensor.NormalizeAxis(ndim, op.Axis)
		if err != nil {
			return nil, err
		}
		outer = tensor.Shape(shape[:dim]).NumElements()
		n = shape[dim]
		inner = tensor.Shape(shape[dim+1:]).NumElements()
		if op.KeepDim {
			outShape = shape.Clone()
			outShape[dim] = 1
		} else {
			outShape = append(shape[:dim].Clone(), shape[dim+1:]...)
		}
	} else {
		// full reduction: a single group of every element
		n, outer = outer, 1
		outShape = tensor.Shape{}
	}

	kind := reduceResultKind(op.Mode, x.DType())
	result, err := tensor.NewRaw(outShape, kind, cpu.device)
	if err != nil {
		return nil, err
	}

	if x.DType().IsFloat() || kind.IsFloat() {
		src := x.Float64s()
		out := make([]float64, outer*inner)
		group := make([]float64, n)
		for o := 0; o < outer; o++ {
			for i := 0; i < inner; i++ {
				for k := 0; k < n; k++ {
					group[k] = src[(o*n+k)*inner+i]
				}
				out[o*inner+i] = reduceFloat(op.Mode, group)
			}
		}
		result.SetFloat64s(out)
		return result, nil
	}

	src := x.Int64s()
	out := make([]int64, outer*inner)
	group := make([]int64, n)
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			for k := 0; k < n; k++ {
				group[k] = src[(o*n+k)*inner+i]
			}
			out[o*inner+i] = reduceInt(op.Mode, group)
		}
	}
	result.SetInt64s(out)
	return result, nil
}

func reduceResultKind(mode ops.ReduceMode, in tensor.DataType) tensor.DataType {
	switch {
	case in.IsFloat():
		return in
	case mode == ops.Mean:
		return tensor.Float32
	case in == tensor.Bool && (mode == ops.Sum || mode == ops.Product):
		return tensor.Int32
	default:
		return in
	}
}

func reduceFloat(mode ops.ReduceMode, v []float64) float64 {
	switch mode {
	case ops.Sum:
		return floats.Sum(v)
	case ops.Product:
		return floats.Prod(v)
	case ops.Min:
		return floats.Min(v)
	case ops.Max:
		return floats.Max(v)
	default:
		if len(v) == 0 {
			return math.NaN()
		}
		return floats.Sum(v) / float64(len(v))
	}
}

func reduceInt(mode ops.ReduceMode, v []int64) int64 {
	acc := v[0]
	for _, x := range v[1:] {
		switch mode {
		case ops.Sum:
			acc += x
		case ops.Product:
			acc *= x
		case ops.Min:
			acc = min(acc, x)
		case ops.Max:
			acc = max(acc, x)
		}
	}
	return acc
}
