package cpu

import (
	"fmt"

	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/parallel"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// batchedMatmul performs batched matrix multiplication on rank-3 operands:
// [B, M, K] @ [B, K, N] -> [B, M, N]. Transpose flags apply to the trailing
// two dimensions. Batches run through the parallel worker pool.
func (cpu *CPUBackend) batchedMatmul(a, b *tensor.RawTensor, p ops.MatMulParam) (*tensor.RawTensor, error) {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 3 || len(bShape) != 3 {
		return nil, fmt.Errorf("batched matmul: inputs must be 3D, got %dD and %dD", len(aShape), len(bShape))
	}
	if aShape[0] != bShape[0] {
		return nil, fmt.Errorf("%w: batch dimension %d vs %d", tensor.ErrShapeMismatch, aShape[0], bShape[0])
	}

	batch := aShape[0]
	aMat, bMat := aShape[1:], bShape[1:]
	m, k, n, err := gemmDims(aMat, bMat, p)
	if err != nil {
		return nil, err
	}
	kind := matmulResultKind(a.DType(), b.DType(), p.ComputeMode)
	result, err := tensor.NewRaw(tensor.Shape{batch, m, n}, kind, cpu.device)
	if err != nil {
		return nil, err
	}

	aStep, bStep, cStep := aMat.NumElements(), bMat.NumElements(), m*n
	if kind.IsFloat() {
		aData, bData := a.Float64s(), b.Float64s()
		c := make([]float64, batch*cStep)
		err = parallel.For(batch, func(i int) error {
			gemmFloat64(c[i*cStep:(i+1)*cStep], aData[i*aStep:(i+1)*aStep], bData[i*bStep:(i+1)*bStep],
				aMat, bMat, m, n, p)
			return nil
		}, cpu.parallel)
		if err != nil {
			return nil, err
		}
		result.SetFloat64s(c)
		return result, nil
	}

	aData, bData := a.Int64s(), b.Int64s()
	c := make([]int64, batch*cStep)
	err = parallel.For(batch, func(i int) error {
		gemmInt64(c[i*cStep:(i+1)*cStep], aData[i*aStep:(i+1)*aStep], bData[i*bStep:(i+1)*bStep], m, k, n, p)
		return nil
	}, cpu.parallel)
	if err != nil {
		return nil, err
	}
	result.SetInt64s(c)
	return result, nil
}
