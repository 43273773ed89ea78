package cpu

import (
	"github.com/born-ml/tensorcore/internal/tensor"
)

// computeBroadcastStridesForShape computes strides for broadcasting a shape to outShape.
// Returns strides where dimensions of size 1 have stride 0 (for broadcasting).
func computeBroadcastStridesForShape(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	inDim := len(inShape)
	offset := outDim - inDim
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0 || inIdx >= inDim:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}

	return strides
}

// computeFlatIndex computes the flat index in the source array for a given output index.
// outStrides: strides of the output shape.
// inStrides: broadcast-adjusted strides of the input shape.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i := range outStrides {
		coord := outIdx / outStrides[i]
		outIdx %= outStrides[i]
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}

// broadcastIndexMap returns, for every output element, the flat source index of x.
func broadcastIndexMap(inShape, outShape tensor.Shape) []int {
	n := outShape.NumElements()
	idx := make([]int, n)
	if len(outShape) == 0 {
		return idx
	}
	outStrides := outShape.ComputeStrides()
	inStrides := computeBroadcastStridesForShape(inShape, outShape)
	for i := range idx {
		idx[i] = computeFlatIndex(i, outStrides, inStrides)
	}
	return idx
}

// gatherBytes copies elements of src selected by srcIdx into dst, element size elem.
func gatherBytes(dst, src []byte, srcIdx []int, elem int) {
	for i, s := range srcIdx {
		copy(dst[i*elem:(i+1)*elem], src[s*elem:(s+1)*elem])
	}
}
