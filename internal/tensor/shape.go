package tensor

import (
	"fmt"
	"slices"
)

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy of the shape. The copy of an empty shape is a
// non-nil empty shape.
func (s Shape) Clone() Shape {
	return append(Shape{}, s...)
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// BroadcastShapes aligns a and b from the right; paired dimensions must be
// equal or 1, and missing leading dimensions count as 1. The flag reports
// whether either side had to be expanded.
//
//	(3, 1) + (3, 5) -> (3, 5), true
//	(3, 5) + (3, 5) -> (3, 5), false
//	(3, 4) + (3, 5) -> error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)
	needsBroadcast := false

	for i := 0; i < maxLen; i++ {
		aIdx := len(a) - 1 - i
		bIdx := len(b) - 1 - i

		aDim := 1
		if aIdx >= 0 {
			aDim = a[aIdx]
		}

		bDim := 1
		if bIdx >= 0 {
			bDim = b[bIdx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[maxLen-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}

// NormalizeAxis maps a possibly negative axis onto [0, ndim).
func NormalizeAxis(ndim, axis int) (int, error) {
	if axis < 0 {
		axis += ndim
	}
	if axis < 0 || axis >= ndim {
		return 0, fmt.Errorf("%w: axis %d for %dD tensor", ErrAxisOutOfRange, axis, ndim)
	}
	return axis, nil
}

// NormalizeAxes normalizes every axis against ndim and sorts the result.
// With reverse set the axes come back in descending order, which lets callers
// reduce them one at a time without invalidating the axes still to come.
// Duplicate axes are rejected.
func NormalizeAxes(ndim int, axes []int, reverse bool) ([]int, error) {
	out := make([]int, 0, len(axes))
	seen := make(map[int]bool, len(axes))
	for _, a := range axes {
		n, err := NormalizeAxis(ndim, a)
		if err != nil {
			return nil, err
		}
		if seen[n] {
			return nil, fmt.Errorf("%w: duplicate axis %d", ErrAxisOutOfRange, a)
		}
		seen[n] = true
		out = append(out, n)
	}
	slices.Sort(out)
	if reverse {
		slices.Reverse(out)
	}
	return out, nil
}
