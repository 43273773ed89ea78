package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/parallel"
	"github.com/born-ml/tensorcore/internal/tensor"
)

func newBackend() *CPUBackend {
	return New(WithParallel(parallel.Sequential()))
}

func raw[T tensor.DType](t *testing.T, vals []T, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromSlice(vals, tensor.Shape(shape), tensor.CPU)
	require.NoError(t, err)
	return r
}

func apply(t *testing.T, b *CPUBackend, op ops.Op, inputs ...*tensor.RawTensor) *tensor.RawTensor {
	t.Helper()
	out, err := ops.Apply1(b, op, inputs...)
	require.NoError(t, err)
	return out
}

type unknownOp struct{}

func (unknownOp) Name() string   { return "Unknown" }
func (unknownOp) String() string { return "Unknown" }
