package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/tensor"
)

func TestElemwiseBroadcast(t *testing.T) {
	b := newBackend()
	x := raw(t, []float32{1, 2}, 2, 1)
	y := raw(t, []float32{10, 20, 30}, 3)

	out := apply(t, b, ops.Elemwise{Mode: ops.Add}, x, y)
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, []float32{11, 21, 31, 12, 22, 32}, out.AsFloat32())

	_, err := b.Apply(ops.Elemwise{Mode: ops.Add}, raw(t, []float32{1, 2}, 2), y)
	assert.True(t, errors.Is(err, tensor.ErrShapeMismatch))
}

func TestElemwiseIntegerDivision(t *testing.T) {
	b := newBackend()
	x := raw(t, []int32{7, -7}, 2)
	two := raw(t, []int32{2}, 1)

	assert.Equal(t, []int32{3, -4}, apply(t, b, ops.Elemwise{Mode: ops.FloorDiv}, x, two).AsInt32())
	assert.Equal(t, []int32{1, 1}, apply(t, b, ops.Elemwise{Mode: ops.Mod}, x, two).AsInt32())

	half := apply(t, b, ops.Elemwise{Mode: ops.TrueDiv}, x, two)
	assert.Equal(t, tensor.Float32, half.DType())
	assert.Equal(t, []float32{3.5, -3.5}, half.AsFloat32())

	_, err := b.Apply(ops.Elemwise{Mode: ops.FloorDiv}, x, raw(t, []int32{0}, 1))
	assert.True(t, errors.Is(err, errDivisionByZero))
}

func TestElemwiseFloatMod(t *testing.T) {
	b := newBackend()
	out := apply(t, b, ops.Elemwise{Mode: ops.Mod}, raw(t, []float64{7, -7}, 2), raw(t, []float64{-2}, 1))
	assert.Equal(t, []float64{-1, -1}, out.AsFloat64())
}

func TestElemwisePowAndShift(t *testing.T) {
	b := newBackend()
	base := raw(t, []int64{2, 2}, 2)

	assert.Equal(t, []int64{1024, 0}, apply(t, b, ops.Elemwise{Mode: ops.Pow}, base, raw(t, []int64{10, -1}, 2)).AsInt64())
	assert.Equal(t, []int64{16, 16}, apply(t, b, ops.Elemwise{Mode: ops.Shl}, base, raw(t, []int64{3}, 1)).AsInt64())
	assert.Equal(t, []int64{1, 1}, apply(t, b, ops.Elemwise{Mode: ops.Shr}, base, raw(t, []int64{1}, 1)).AsInt64())

	_, err := b.Apply(ops.Elemwise{Mode: ops.Shl}, base, raw(t, []int64{-1}, 1))
	assert.ErrorContains(t, err, "negative shift count")

	_, err = b.Apply(ops.Elemwise{Mode: ops.Shl}, raw(t, []float32{1}, 1), raw(t, []float32{1}, 1))
	assert.True(t, errors.Is(err, tensor.ErrUnsupportedDType))
}

func TestElemwisePromotion(t *testing.T) {
	tests := []struct {
		a, b, want tensor.DataType
	}{
		{tensor.Int8, tensor.Int32, tensor.Int32},
		{tensor.Uint8, tensor.Int8, tensor.Int16},
		{tensor.Float16, tensor.BFloat16, tensor.Float32},
		{tensor.Int64, tensor.Float16, tensor.Float16},
		{tensor.Float32, tensor.Float64, tensor.Float64},
	}
	for _, tt := range tests {
		got, err := binaryResultKind(ops.Add, tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s + %s", tt.a, tt.b)
	}
}

func TestElemwiseUnary(t *testing.T) {
	b := newBackend()
	x := raw(t, []float64{-2.5, 2.5, 0.4}, 3)

	assert.Equal(t, []float64{-3, 3, 0}, apply(t, b, ops.Elemwise{Mode: ops.Round}, x).AsFloat64())
	assert.Equal(t, []float64{-3, 2, 0}, apply(t, b, ops.Elemwise{Mode: ops.Floor}, x).AsFloat64())
	assert.Equal(t, []float64{-2, 3, 1}, apply(t, b, ops.Elemwise{Mode: ops.Ceil}, x).AsFloat64())
	assert.Equal(t, []float64{2.5, 2.5, 0.4}, apply(t, b, ops.Elemwise{Mode: ops.Abs}, x).AsFloat64())
	assert.Equal(t, []int32{3, -4}, apply(t, b, ops.Elemwise{Mode: ops.Negate}, raw(t, []int32{-3, 4}, 2)).AsInt32())

	_, err := b.Apply(ops.Elemwise{Mode: ops.Not}, x)
	assert.True(t, errors.Is(err, tensor.ErrUnsupportedDType))
	_, err = b.Apply(ops.Elemwise{Mode: ops.Negate}, raw(t, []bool{true}, 1))
	assert.True(t, errors.Is(err, tensor.ErrUnsupportedDType))
	_, err = b.Apply(ops.Elemwise{Mode: ops.Negate}, x, x)
	assert.ErrorContains(t, err, "expected 1 operands, got 2")
}

func TestElemwiseCompareAndLogic(t *testing.T) {
	b := newBackend()
	ints := raw(t, []int32{1, 2, 3}, 3)
	floats := raw(t, []float32{2.5}, 1)

	lt := apply(t, b, ops.Elemwise{Mode: ops.LT}, ints, floats)
	assert.Equal(t, tensor.Bool, lt.DType())
	assert.Equal(t, []bool{true, true, false}, lt.AsBool())
	assert.Equal(t, []bool{false, true, false}, apply(t, b, ops.Elemwise{Mode: ops.EQ}, ints, raw(t, []int64{2}, 1)).AsBool())

	p := raw(t, []bool{true, true, false, false}, 4)
	q := raw(t, []bool{true, false, true, false}, 4)
	assert.Equal(t, []bool{true, false, false, false}, apply(t, b, ops.Elemwise{Mode: ops.And}, p, q).AsBool())
	assert.Equal(t, []bool{true, true, true, false}, apply(t, b, ops.Elemwise{Mode: ops.Or}, p, q).AsBool())
	assert.Equal(t, []bool{false, true, true, false}, apply(t, b, ops.Elemwise{Mode: ops.Xor}, p, q).AsBool())
	assert.Equal(t, []bool{false, false, true, true}, apply(t, b, ops.Elemwise{Mode: ops.Not}, p).AsBool())

	_, err := b.Apply(ops.Elemwise{Mode: ops.And}, p, raw(t, []int32{1, 0, 1, 0}, 4))
	assert.True(t, errors.Is(err, tensor.ErrUnsupportedDType))
}

func TestTypeCvt(t *testing.T) {
	b := newBackend()
	x := raw(t, []float32{1.9, -1.9, 0}, 3)

	assert.Equal(t, []int32{1, -1, 0}, apply(t, b, ops.TypeCvt{To: tensor.Plain(tensor.Int32)}, x).AsInt32())
	assert.Equal(t, []bool{true, true, false}, apply(t, b, ops.TypeCvt{To: tensor.Plain(tensor.Bool)}, x).AsBool())

	half := apply(t, b, ops.TypeCvt{To: tensor.Plain(tensor.Float16)}, raw(t, []float32{0.5, 2}, 2))
	assert.Equal(t, []float64{0.5, 2}, half.Float64s())

	same := apply(t, b, ops.TypeCvt{To: tensor.Plain(tensor.Float32)}, x)
	assert.Equal(t, x.AsFloat32(), same.AsFloat32())
	assert.False(t, x.IsUnique())

	zp := 0
	qt := tensor.Type{Kind: tensor.Uint8, Quant: &tensor.QuantParams{Name: "Quantized8Asymm", Scale: 1, ZeroPoint: &zp}}
	retagged := apply(t, b, ops.TypeCvt{To: qt}, raw(t, []uint8{1, 2}, 2))
	assert.True(t, retagged.Type().Equal(qt))
	assert.Equal(t, []uint8{1, 2}, retagged.AsUint8())
}

func TestUnsupportedPrimitive(t *testing.T) {
	_, err := newBackend().Apply(unknownOp{})
	assert.ErrorContains(t, err, "unsupported primitive Unknown")
}
