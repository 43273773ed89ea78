package dispatch

import (
	"fmt"
	"iter"

	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// Indexing.

// GetItem returns the sub-tensor addressed by idx.
func (m Methods) GetItem(idx ops.Index) (*Tensor, error) {
	raw, err := m.env.indexer.GetItem(m.self.Value(), idx)
	if err != nil {
		return nil, err
	}
	return m.wrap(raw), nil
}

// SetItem writes value into the region addressed by idx and rebinds self to
// the result. With ops.Ellipsis the host is rebound to value itself; a scalar
// value is broadcast to the current shape first.
func (m Methods) SetItem(idx ops.Index, value any) error {
	v, err := m.operand(value)
	if err != nil {
		return err
	}
	x := m.self.Value()
	if !idx.IsEllipsis() {
		if v, err = m.env.indexer.SetItem(x, idx, v); err != nil {
			return err
		}
	} else if _, scalar := tensor.ScalarKind(value); scalar && len(x.Shape()) > 0 {
		if v, err = m.apply(ops.Broadcast{}, v, tensor.Int32Vector(x.Shape(), x.Device())); err != nil {
			return err
		}
	}
	m.self.Reset(v)
	return nil
}

// Scalar conversion.

// Item returns the single element as a Go value: float64, int64 or bool.
// With indices, the addressed element is returned instead.
func (m Methods) Item(indices ...int) (any, error) {
	x := m.self.Value()
	if len(indices) > 0 {
		idx := make(ops.Index, len(indices))
		for i, at := range indices {
			idx[i] = ops.At(at)
		}
		sub, err := m.GetItem(idx)
		if err != nil {
			return nil, err
		}
		x = sub.Value()
	}
	if n := x.NumElements(); n != 1 {
		return nil, &UsageError{Op: "item", Msg: fmt.Sprintf("only one element tensors can be converted to scalars, got %d", n)}
	}
	switch {
	case x.DType() == tensor.Bool:
		return x.Bools()[0], nil
	case x.DType().IsFloat():
		return x.Float64s()[0], nil
	default:
		return x.Int64s()[0], nil
	}
}

// Float returns the single element as float64.
func (m Methods) Float() (float64, error) {
	v, err := m.Item()
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case int64:
		return float64(x), nil
	default:
		return x.(float64), nil
	}
}

// Int returns the single element truncated to int64.
func (m Methods) Int() (int64, error) {
	v, err := m.Item()
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case float64:
		return int64(x), nil
	default:
		return x.(int64), nil
	}
}

// Bool returns whether the single element is non-zero.
func (m Methods) Bool() (bool, error) {
	f, err := m.Float()
	if err != nil {
		return false, err
	}
	return f != 0, nil
}

// Index returns the single element as an index. Floating-point tensors are
// rejected.
func (m Methods) Index() (int, error) {
	if m.DType().Kind.IsFloat() {
		return 0, &TypeError{Op: "index", Msg: fmt.Sprintf("%s cannot be interpreted as an integer", m.DType())}
	}
	i, err := m.Int()
	return int(i), err
}

// Complex returns the single element as a complex number.
func (m Methods) Complex() (complex128, error) {
	f, err := m.Float()
	if err != nil {
		return 0, err
	}
	return complex(f, 0), nil
}

// Reductions.

// ReduceOptions select the reduced axes. Nil Axes reduces every element into
// a rank-0 result, which cannot be combined with KeepDims.
type ReduceOptions struct {
	Axes     []int
	KeepDims bool
}

func (m Methods) reduce(mode ops.ReduceMode, opts ReduceOptions) (*Tensor, error) {
	x := m.self.Value()
	if opts.Axes == nil {
		if opts.KeepDims {
			return nil, &UsageError{Op: mode.String(), Msg: "can not set axis=None and keepdims=True"}
		}
		raw, err := m.apply(ops.ReduceAll(mode), x)
		if err != nil {
			return nil, err
		}
		return m.wrap(raw), nil
	}
	if len(opts.Axes) == 1 {
		raw, err := m.apply(ops.ReduceAxis(mode, opts.Axes[0], opts.KeepDims), x)
		if err != nil {
			return nil, err
		}
		return m.wrap(raw), nil
	}

	// highest axis first so the remaining indices stay valid
	axes, err := tensor.NormalizeAxes(len(x.Shape()), opts.Axes, true)
	if err != nil {
		return nil, err
	}
	for _, axis := range axes {
		if x, err = m.apply(ops.ReduceAxis(mode, axis, opts.KeepDims), x); err != nil {
			return nil, err
		}
	}
	return m.wrap(x), nil
}

// Sum adds elements over the selected axes.
func (m Methods) Sum(opts ReduceOptions) (*Tensor, error) { return m.reduce(ops.Sum, opts) }

// Prod multiplies elements over the selected axes.
func (m Methods) Prod(opts ReduceOptions) (*Tensor, error) { return m.reduce(ops.Product, opts) }

// Min returns the minimum over the selected axes.
func (m Methods) Min(opts ReduceOptions) (*Tensor, error) { return m.reduce(ops.Min, opts) }

// Max returns the maximum over the selected axes.
func (m Methods) Max(opts ReduceOptions) (*Tensor, error) { return m.reduce(ops.Max, opts) }

// Mean averages over the selected axes.
func (m Methods) Mean(opts ReduceOptions) (*Tensor, error) { return m.reduce(ops.Mean, opts) }

// Shape queries.

// TupleShape returns the shape as plain integers, reading a dynamic shape
// tensor if needed.
func (m Methods) TupleShape() (tensor.Shape, error) {
	sv := m.self.Shape()
	if s, ok := sv.Static(); ok {
		return s, nil
	}
	if t := sv.Tensor(); t != nil {
		vals := t.Int64s()
		s := make(tensor.Shape, len(vals))
		for i, d := range vals {
			s[i] = int(d)
		}
		return s, nil
	}
	return nil, ErrUnknownShape
}

// NDim returns the rank.
func (m Methods) NDim() (int, error) {
	s, err := m.TupleShape()
	if err != nil {
		return 0, fmt.Errorf("ndim: %w", err)
	}
	return len(s), nil
}

// Size returns the number of elements. A dynamic shape is reduced with a
// product primitive.
func (m Methods) Size() (int, error) {
	sv := m.self.Shape()
	if s, ok := sv.Static(); ok {
		return s.NumElements(), nil
	}
	t := sv.Tensor()
	if t == nil {
		return 0, fmt.Errorf("size: %w", ErrUnknownShape)
	}
	n, err := m.apply(ops.ReduceAll(ops.Product), t)
	if err != nil {
		return 0, err
	}
	return int(n.Int64s()[0]), nil
}

// T reverses the axes.
func (m Methods) T() (*Tensor, error) {
	return m.Transpose()
}

// Sequence protocol.

// Len returns the size of the first axis.
func (m Methods) Len() (int, error) {
	s, err := m.TupleShape()
	if err != nil {
		return 0, err
	}
	if len(s) == 0 {
		return 0, &TypeError{Op: "len", Msg: "ndim is 0"}
	}
	return s[0], nil
}

// All iterates over the first axis. The length is read each time iteration
// starts; iteration stops early if indexing fails.
func (m Methods) All() iter.Seq2[int, *Tensor] {
	return func(yield func(int, *Tensor) bool) {
		n, err := m.Len()
		if err != nil {
			return
		}
		for i := 0; i < n; i++ {
			item, err := m.GetItem(ops.Index{ops.At(i)})
			if err != nil || !yield(i, item) {
				return
			}
		}
	}
}

// Contains has no primitive.
func (m Methods) Contains(any) (bool, error) {
	return false, fmt.Errorf("contains: %w", ErrNotImplemented)
}

// Conversions and views.

// AsType converts elements to t.
func (m Methods) AsType(t tensor.Type) (*Tensor, error) {
	raw, err := m.apply(ops.TypeCvt{To: t}, m.self.Value())
	if err != nil {
		return nil, err
	}
	return m.wrap(raw), nil
}

// Reshape returns the elements under a new shape; one dimension may be -1.
func (m Methods) Reshape(shape ...int) (*Tensor, error) {
	x := m.self.Value()
	if len(shape) == 0 {
		return nil, &UsageError{Op: "reshape", Msg: "target shape must not be empty"}
	}
	raw, err := m.apply(ops.Reshape{}, x, tensor.Int32Vector(shape, x.Device()))
	if err != nil {
		return nil, err
	}
	return m.wrap(raw), nil
}

// Flatten returns the elements as a vector.
func (m Methods) Flatten() (*Tensor, error) {
	return m.Reshape(-1)
}

// Transpose permutes the axes; with no arguments the axes are reversed.
func (m Methods) Transpose(perm ...int) (*Tensor, error) {
	var p []int
	if len(perm) > 0 {
		p = perm
	}
	raw, err := m.apply(ops.Transpose{Perm: p}, m.self.Value())
	if err != nil {
		return nil, err
	}
	return m.wrap(raw), nil
}

// BroadcastTo expands the elements to shape.
func (m Methods) BroadcastTo(shape ...int) (*Tensor, error) {
	x := m.self.Value()
	if len(shape) == 0 {
		return nil, &UsageError{Op: "broadcast", Msg: "target shape must not be empty"}
	}
	raw, err := m.apply(ops.Broadcast{}, x, tensor.Int32Vector(shape, x.Device()))
	if err != nil {
		return nil, err
	}
	return m.wrap(raw), nil
}

// Numpy returns a host copy of the current value.
func (m Methods) Numpy() *tensor.RawTensor {
	x := m.self.Value()
	out, err := tensor.NewTyped(x.Shape(), x.Type(), tensor.CPU)
	if err != nil {
		// x already holds a valid shape
		panic(err)
	}
	copy(out.Data(), x.Data())
	return out
}

// ToList returns the elements as nested []any of float64, int64 or bool.
// A rank-0 tensor returns its single element.
func (m Methods) ToList() (any, error) {
	x := m.self.Value()
	shape := x.Shape()
	if len(shape) == 0 {
		return m.Item()
	}

	var flat []any
	switch {
	case x.DType() == tensor.Bool:
		for _, v := range x.Bools() {
			flat = append(flat, v)
		}
	case x.DType().IsFloat():
		for _, v := range x.Float64s() {
			flat = append(flat, v)
		}
	default:
		for _, v := range x.Int64s() {
			flat = append(flat, v)
		}
	}
	return nest(flat, shape), nil
}

func nest(flat []any, shape tensor.Shape) []any {
	if len(shape) == 1 {
		return flat
	}
	step := len(flat) / shape[0]
	out := make([]any, shape[0])
	for i := range out {
		out[i] = nest(flat[i*step:(i+1)*step], shape[1:])
	}
	return out
}
