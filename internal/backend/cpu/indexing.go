package cpu

import (
	"fmt"

	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// region is a resolved index: per-axis start/step/count plus which axes are dropped.
type region struct {
	start, step, count []int
	dropped            []bool
}

func resolveIndex(shape tensor.Shape, idx ops.Index) (*region, error) {
	if idx.IsEllipsis() {
		idx = nil
	}
	if len(idx) > len(shape) {
		return nil, fmt.Errorf("too many indices: %d for %dD tensor", len(idx), len(shape))
	}
	r := &region{
		start:   make([]int, len(shape)),
		step:    make([]int, len(shape)),
		count:   make([]int, len(shape)),
		dropped: make([]bool, len(shape)),
	}
	for axis, n := range shape {
		item := ops.All()
		if axis < len(idx) {
			item = idx[axis]
		}
		start, stop, step, err := item.Resolve(n)
		if err != nil {
			return nil, fmt.Errorf("axis %d: %w", axis, err)
		}
		r.start[axis], r.step[axis] = start, step
		r.count[axis] = (stop - start + step - 1) / step
		if r.count[axis] <= 0 {
			return nil, fmt.Errorf("%w: axis %d selects no elements", tensor.ErrShapeMismatch, axis)
		}
		r.dropped[axis] = item.IsSingle()
	}
	return r, nil
}

// shape returns the shape of the selected sub-tensor (dropped axes removed).
func (r *region) shape() tensor.Shape {
	out := tensor.Shape{}
	for axis, c := range r.count {
		if !r.dropped[axis] {
			out = append(out, c)
		}
	}
	return out
}

// sourceIndices lists the flat source index of every selected element in row-major order.
func (r *region) sourceIndices(srcShape tensor.Shape) []int {
	counts := tensor.Shape(r.count)
	n := counts.NumElements()
	out := make([]int, n)
	strides := srcShape.ComputeStrides()
	coord := make([]int, len(counts))
	for i := 0; i < n; i++ {
		flat := 0
		for axis := range coord {
			flat += (r.start[axis] + coord[axis]*r.step[axis]) * strides[axis]
		}
		out[i] = flat
		for axis := len(coord) - 1; axis >= 0; axis-- {
			coord[axis]++
			if coord[axis] < counts[axis] {
				break
			}
			coord[axis] = 0
		}
	}
	return out
}

// GetItem returns a copy of the region of x addressed by idx.
func (cpu *CPUBackend) GetItem(x *tensor.RawTensor, idx ops.Index) (*tensor.RawTensor, error) {
	r, err := resolveIndex(x.Shape(), idx)
	if err != nil {
		return nil, fmt.Errorf("getitem%s: %w", idx, err)
	}
	result, err := tensor.NewTyped(r.shape(), x.Type(), cpu.device)
	if err != nil {
		return nil, err
	}
	gatherBytes(result.Data(), x.Data(), r.sourceIndices(x.Shape()), x.DType().Size())
	return result, nil
}

// SetItem returns a copy of x with the addressed region replaced by value.
// value is converted to x's type and broadcast to the region's shape.
func (cpu *CPUBackend) SetItem(x *tensor.RawTensor, idx ops.Index, value *tensor.RawTensor) (*tensor.RawTensor, error) {
	r, err := resolveIndex(x.Shape(), idx)
	if err != nil {
		return nil, fmt.Errorf("setitem%s: %w", idx, err)
	}
	converted, err := cpu.typeCvt(value, x.Type())
	if err != nil {
		return nil, fmt.Errorf("setitem%s: %w", idx, err)
	}
	expanded, err := cpu.expand(converted, r.shape())
	if err != nil {
		return nil, fmt.Errorf("setitem%s: %w", idx, err)
	}

	result, err := tensor.NewTyped(x.Shape(), x.Type(), cpu.device)
	if err != nil {
		return nil, err
	}
	dst := result.Data()
	copy(dst, x.Data())
	elem := x.DType().Size()
	src := expanded.Data()
	for i, d := range r.sourceIndices(x.Shape()) {
		copy(dst[d*elem:(d+1)*elem], src[i*elem:(i+1)*elem])
	}
	return result, nil
}
