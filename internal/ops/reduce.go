package ops

import "fmt"

// ReduceMode selects the reduction.
type ReduceMode int

// Reduction modes.
const (
	Sum ReduceMode = iota
	Product
	Min
	Max
	Mean
)

// String returns the lower-case mode name.
func (m ReduceMode) String() string {
	switch m {
	case Sum:
		return "sum"
	case Product:
		return "product"
	case Min:
		return "min"
	case Max:
		return "max"
	case Mean:
		return "mean"
	default:
		return fmt.Sprintf("ReduceMode(%d)", int(m))
	}
}

// Reduce collapses one axis, or every element when HasAxis is false.
// Axis may be negative. A full reduction produces a rank-0 tensor.
type Reduce struct {
	Mode    ReduceMode
	Axis    int
	HasAxis bool
	KeepDim bool
}

// ReduceAll reduces every element of the operand.
func ReduceAll(mode ReduceMode) Reduce {
	return Reduce{Mode: mode}
}

// ReduceAxis reduces a single axis.
func ReduceAxis(mode ReduceMode, axis int, keepDim bool) Reduce {
	return Reduce{Mode: mode, Axis: axis, HasAxis: true, KeepDim: keepDim}
}

// Name returns the primitive name.
func (Reduce) Name() string { return "Reduce" }

func (r Reduce) String() string {
	if !r.HasAxis {
		return fmt.Sprintf("Reduce(%s)", r.Mode)
	}
	return fmt.Sprintf("Reduce(%s, axis=%d, keepdim=%t)", r.Mode, r.Axis, r.KeepDim)
}
