package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// gemmDims resolves (M, K, N) of op(a) @ op(b) for stored 2-D shapes.
func gemmDims(aShape, bShape tensor.Shape, p ops.MatMulParam) (m, k, n int, err error) {
	m, k = aShape[0], aShape[1]
	if p.TransposeA {
		m, k = k, m
	}
	kAlt, n := bShape[0], bShape[1]
	if p.TransposeB {
		kAlt, n = n, kAlt
	}
	if k != kAlt {
		return 0, 0, 0, fmt.Errorf("%w: inner dimensions %v @ %v (transposeA=%t, transposeB=%t)",
			tensor.ErrShapeMismatch, aShape, bShape, p.TransposeA, p.TransposeB)
	}
	return m, k, n, nil
}

// matmul multiplies two rank-2 operands: (M, K) @ (K, N) -> (M, N).
func (cpu *CPUBackend) matmul(a, b *tensor.RawTensor, p ops.MatMulParam) (*tensor.RawTensor, error) {
	if len(a.Shape()) != 2 || len(b.Shape()) != 2 {
		return nil, fmt.Errorf("matmul: only 2D tensors supported, got %dD and %dD", len(a.Shape()), len(b.Shape()))
	}
	m, k, n, err := gemmDims(a.Shape(), b.Shape(), p)
	if err != nil {
		return nil, err
	}
	kind := matmulResultKind(a.DType(), b.DType(), p.ComputeMode)
	result, err := tensor.NewRaw(tensor.Shape{m, n}, kind, cpu.device)
	if err != nil {
		return nil, err
	}

	if kind.IsFloat() {
		c := make([]float64, m*n)
		gemmFloat64(c, a.Float64s(), b.Float64s(), a.Shape(), b.Shape(), m, n, p)
		result.SetFloat64s(c)
		return result, nil
	}
	c := make([]int64, m*n)
	gemmInt64(c, a.Int64s(), b.Int64s(), m, k, n, p)
	result.SetInt64s(c)
	return result, nil
}

// dot computes the inner product of two rank-1 operands as a rank-0 tensor.
func (cpu *CPUBackend) dot(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	if len(a.Shape()) != 1 || len(b.Shape()) != 1 {
		return nil, fmt.Errorf("dot: only 1D tensors supported, got %dD and %dD", len(a.Shape()), len(b.Shape()))
	}
	if a.Shape()[0] != b.Shape()[0] {
		return nil, fmt.Errorf("%w: dot of %v and %v", tensor.ErrShapeMismatch, a.Shape(), b.Shape())
	}
	kind := matmulResultKind(a.DType(), b.DType(), ops.ComputeDefault)
	result, err := tensor.NewRaw(tensor.Shape{}, kind, cpu.device)
	if err != nil {
		return nil, err
	}

	if kind.IsFloat() {
		x := blas64.Vector{N: a.Shape()[0], Inc: 1, Data: a.Float64s()}
		y := blas64.Vector{N: b.Shape()[0], Inc: 1, Data: b.Float64s()}
		result.SetFloat64s([]float64{blas64.Dot(x, y)})
		return result, nil
	}
	x, y := a.Int64s(), b.Int64s()
	var sum int64
	for i := range x {
		sum += x[i] * y[i]
	}
	result.SetInt64s([]int64{sum})
	return result, nil
}

func matmulResultKind(a, b tensor.DataType, mode ops.ComputeMode) tensor.DataType {
	if a == tensor.Bool {
		a = tensor.Int32
	}
	if b == tensor.Bool {
		b = tensor.Int32
	}
	kind := promote(a, b)
	if mode == ops.ComputeFloat32 && (kind == tensor.Float16 || kind == tensor.BFloat16) {
		return tensor.Float32
	}
	return kind
}

// gemmFloat64 computes c = op(a) @ op(b) through BLAS dgemm.
func gemmFloat64(c, a, b []float64, aShape, bShape tensor.Shape, m, n int, p ops.MatMulParam) {
	ta, tb := blas.NoTrans, blas.NoTrans
	if p.TransposeA {
		ta = blas.Trans
	}
	if p.TransposeB {
		tb = blas.Trans
	}
	blas64.Gemm(ta, tb, 1,
		blas64.General{Rows: aShape[0], Cols: aShape[1], Stride: aShape[1], Data: a},
		blas64.General{Rows: bShape[0], Cols: bShape[1], Stride: bShape[1], Data: b},
		0,
		blas64.General{Rows: m, Cols: n, Stride: n, Data: c})
}

// gemmInt64 is the exact integer kernel: C[i,j] = sum_k A[i,k] * B[k,j].
func gemmInt64(c, a, b []int64, m, k, n int, p ops.MatMulParam) {
	at := func(i, kk int) int64 {
		if p.TransposeA {
			return a[kk*m+i]
		}
		return a[i*k+kk]
	}
	bt := func(kk, j int) int64 {
		if p.TransposeB {
			return b[j*k+kk]
		}
		return b[kk*n+j]
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum int64
			for kk := 0; kk < k; kk++ {
				sum += at(i, kk) * bt(kk, j)
			}
			c[i*n+j] = sum
		}
	}
}
