package cpu

import (
	"fmt"

	"github.com/born-ml/tensorcore/internal/tensor"
)

// getVarShape returns the shape of x as a rank-1 Int32 tensor.
func (cpu *CPUBackend) getVarShape(x *tensor.RawTensor) (*tensor.RawTensor, error) {
	if len(x.Shape()) == 0 {
		return nil, fmt.Errorf("%w: shape of a scalar is empty", tensor.ErrShapeMismatch)
	}
	return tensor.Int32Vector(x.Shape(), cpu.device), nil
}

// shapeVector reads a rank-1 integer tensor back as a Shape.
func shapeVector(v *tensor.RawTensor) (tensor.Shape, error) {
	if len(v.Shape()) != 1 || !v.DType().IsInteger() {
		return nil, fmt.Errorf("%w: shape operand must be a 1D integer tensor, got %s", tensor.ErrShapeMismatch, v)
	}
	vals := v.Int64s()
	shape := make(tensor.Shape, len(vals))
	for i, d := range vals {
		shape[i] = int(d)
	}
	return shape, nil
}

// subtensor slices a rank-1 tensor at a scalar index: x[:idx] or x[idx:].
func (cpu *CPUBackend) subtensor(x, index *tensor.RawTensor, head bool) (*tensor.RawTensor, error) {
	if len(x.Shape()) != 1 {
		return nil, fmt.Errorf("subtensor: operand must be 1D, got %v", x.Shape())
	}
	if index.NumElements() != 1 {
		return nil, fmt.Errorf("subtensor: index must hold one element, got %v", index.Shape())
	}
	n := x.Shape()[0]
	idx := int(index.Int64s()[0])
	if idx < 0 {
		idx += n
	}
	idx = max(0, min(idx, n))

	start, stop := idx, n
	if head {
		start, stop = 0, idx
	}
	if stop <= start {
		return nil, fmt.Errorf("%w: empty slice of %v at %d", tensor.ErrShapeMismatch, x.Shape(), idx)
	}

	result, err := tensor.NewTyped(tensor.Shape{stop - start}, x.Type(), cpu.device)
	if err != nil {
		return nil, err
	}
	elem := x.DType().Size()
	copy(result.Data(), x.Data()[start*elem:stop*elem])
	return result, nil
}

// concat joins tensors along axis. All operands must share kind, rank and
// every dimension except axis.
func (cpu *CPUBackend) concat(in []*tensor.RawTensor, axis int) (*tensor.RawTensor, error) {
	first := in[0]
	ndim := len(first.Shape())
	if ndim == 0 {
		return nil, fmt.Errorf("concat: scalars cannot be concatenated")
	}
	dim, err := tensor.NormalizeAxis(ndim, axis)
	if err != nil {
		return nil, err
	}

	outShape := first.Shape().Clone()
	outShape[dim] = 0
	for _, t := range in {
		if t.DType() != first.DType() {
			return nil, fmt.Errorf("%w: concat of %s and %s", tensor.ErrUnsupportedDType, first.DType(), t.DType())
		}
		if len(t.Shape()) != ndim {
			return nil, fmt.Errorf("%w: concat of %v and %v", tensor.ErrShapeMismatch, first.Shape(), t.Shape())
		}
		for i, d := range t.Shape() {
			if i != dim && d != first.Shape()[i] {
				return nil, fmt.Errorf("%w: concat of %v and %v on axis %d", tensor.ErrShapeMismatch, first.Shape(), t.Shape(), dim)
			}
		}
		outShape[dim] += t.Shape()[dim]
	}

	result, err := tensor.NewTyped(outShape, first.Type(), cpu.device)
	if err != nil {
		return nil, err
	}

	elem := first.DType().Size()
	outer := tensor.Shape(outShape[:dim]).NumElements()
	inner := tensor.Shape(outShape[dim+1:]).NumElements() * elem
	dst := result.Data()
	rowBytes := outShape[dim] * inner
	offset := 0
	for _, t := range in {
		chunk := t.Shape()[dim] * inner
		src := t.Data()
		for o := 0; o < outer; o++ {
			copy(dst[o*rowBytes+offset:o*rowBytes+offset+chunk], src[o*chunk:(o+1)*chunk])
		}
		offset += chunk
	}
	return result, nil
}

// reshape views x under the shape held by the shape operand. One entry may be -1.
func (cpu *CPUBackend) reshape(x, shapeOperand *tensor.RawTensor) (*tensor.RawTensor, error) {
	shape, err := shapeVector(shapeOperand)
	if err != nil {
		return nil, err
	}
	shape, err = inferDim(shape, x.NumElements())
	if err != nil {
		return nil, err
	}
	return x.View(shape)
}

// inferDim fills in a single -1 dimension from the element count.
func inferDim(shape tensor.Shape, total int) (tensor.Shape, error) {
	unknown := -1
	known := 1
	for i, d := range shape {
		switch {
		case d == -1 && unknown == -1:
			unknown = i
		case d == -1:
			return nil, fmt.Errorf("%w: more than one -1 in %v", tensor.ErrShapeMismatch, shape)
		default:
			known *= d
		}
	}
	if unknown == -1 {
		return shape, nil
	}
	if known <= 0 || total%known != 0 {
		return nil, fmt.Errorf("%w: cannot infer -1 in %v for %d elements", tensor.ErrShapeMismatch, shape, total)
	}
	out := shape.Clone()
	out[unknown] = total / known
	return out, nil
}

// broadcast expands x to the shape held by the shape operand.
func (cpu *CPUBackend) broadcast(x, shapeOperand *tensor.RawTensor) (*tensor.RawTensor, error) {
	target, err := shapeVector(shapeOperand)
	if err != nil {
		return nil, err
	}
	return cpu.expand(x, target)
}

func (cpu *CPUBackend) expand(x *tensor.RawTensor, target tensor.Shape) (*tensor.RawTensor, error) {
	xShape := x.Shape()
	if len(target) < len(xShape) {
		return nil, fmt.Errorf("%w: cannot broadcast %v to fewer dimensions %v", tensor.ErrShapeMismatch, xShape, target)
	}
	offset := len(target) - len(xShape)
	for i, d := range xShape {
		if d != 1 && d != target[offset+i] {
			return nil, fmt.Errorf("%w: cannot broadcast %v to %v", tensor.ErrShapeMismatch, xShape, target)
		}
	}

	result, err := tensor.NewTyped(target, x.Type(), cpu.device)
	if err != nil {
		return nil, err
	}
	gatherBytes(result.Data(), x.Data(), broadcastIndexMap(xShape, target), x.DType().Size())
	return result, nil
}

// addAxis inserts a unit axis; axis may equal the current rank.
func (cpu *CPUBackend) addAxis(x *tensor.RawTensor, axis int) (*tensor.RawTensor, error) {
	shape := x.Shape()
	dim, err := tensor.NormalizeAxis(len(shape)+1, axis)
	if err != nil {
		return nil, err
	}
	out := make(tensor.Shape, 0, len(shape)+1)
	out = append(out, shape[:dim]...)
	out = append(out, 1)
	out = append(out, shape[dim:]...)
	return x.View(out)
}

// removeAxis drops a unit axis.
func (cpu *CPUBackend) removeAxis(x *tensor.RawTensor, axis int) (*tensor.RawTensor, error) {
	shape := x.Shape()
	dim, err := tensor.NormalizeAxis(len(shape), axis)
	if err != nil {
		return nil, err
	}
	if shape[dim] != 1 {
		return nil, fmt.Errorf("%w: cannot remove axis %d of size %d", tensor.ErrShapeMismatch, dim, shape[dim])
	}
	return x.View(append(shape[:dim].Clone(), shape[dim+1:]...))
}

// transpose permutes the axes of x; a nil perm reverses them.
func (cpu *CPUBackend) transpose(x *tensor.RawTensor, perm []int) (*tensor.RawTensor, error) {
	shape := x.Shape()
	ndim := len(shape)
	if perm == nil {
		perm = make([]int, ndim)
		for i := range perm {
			perm[i] = ndim - 1 - i
		}
	}
	if len(perm) != ndim {
		return nil, fmt.Errorf("transpose: axes length %d != ndim %d", len(perm), ndim)
	}
	seen := make([]bool, ndim)
	for _, ax := range perm {
		if ax < 0 || ax >= ndim || seen[ax] {
			return nil, fmt.Errorf("transpose: invalid permutation %v for %dD tensor", perm, ndim)
		}
		seen[ax] = true
	}

	outShape := make(tensor.Shape, ndim)
	for i, ax := range perm {
		outShape[i] = shape[ax]
	}
	result, err := tensor.NewTyped(outShape, x.Type(), cpu.device)
	if err != nil {
		return nil, err
	}
	if ndim == 0 {
		copy(result.Data(), x.Data())
		return result, nil
	}

	inStrides := shape.ComputeStrides()
	permStrides := make([]int, ndim)
	for i, ax := range perm {
		permStrides[i] = inStrides[ax]
	}
	srcIdx := make([]int, outShape.NumElements())
	outStrides := outShape.ComputeStrides()
	for i := range srcIdx {
		srcIdx[i] = computeFlatIndex(i, outStrides, permStrides)
	}
	gatherBytes(result.Data(), x.Data(), srcIdx, x.DType().Size())
	return result, nil
}
