package tensor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	raw, err := FromSlice([]int16{1, -2, 3, -4}, Shape{2, 2}, CPU)
	require.NoError(t, err)
	assert.Equal(t, Int16, raw.DType())
	assert.Equal(t, []int16{1, -2, 3, -4}, raw.AsInt16())
	assert.Equal(t, 8, raw.ByteSize())

	_, err = FromSlice([]float32{1, 2, 3}, Shape{2, 2}, CPU)
	assert.Error(t, err)
}

func TestScalar(t *testing.T) {
	s, err := Scalar(3, Float32, CPU)
	require.NoError(t, err)
	assert.Empty(t, s.Shape())
	assert.Equal(t, []float32{3}, s.AsFloat32())

	b, err := Scalar(2.5, Bool, CPU)
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, b.AsBool())

	_, err = Scalar("x", Float32, CPU)
	assert.True(t, errors.Is(err, ErrUnsupportedDType))

	kind, ok := ScalarKind(int32(1))
	assert.True(t, ok)
	assert.Equal(t, Int32, kind)
	kind, _ = ScalarKind(1)
	assert.Equal(t, Int64, kind)
	_, ok = ScalarKind([]int{1})
	assert.False(t, ok)
}

func TestHalfPrecisionStorage(t *testing.T) {
	for _, dt := range []DataType{Float16, BFloat16} {
		raw, err := FromFloat64s([]float64{1.5, -2, 0.25, 1024}, Shape{4}, dt, CPU)
		require.NoError(t, err)
		assert.Equal(t, 8, raw.ByteSize(), dt.String())
		assert.Equal(t, []float64{1.5, -2, 0.25, 1024}, raw.Float64s(), dt.String())
	}

	raw, err := FromFloat64s([]float64{0.1}, Shape{1}, BFloat16, CPU)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, raw.Float64s()[0], 1e-3)
}

func TestConversions(t *testing.T) {
	raw, err := FromSlice([]float32{1.7, -1.7, 0}, Shape{3}, CPU)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, -1, 0}, raw.Int64s())
	assert.Equal(t, []bool{true, true, false}, raw.Bools())

	low, err := NewRaw(Shape{3}, IntB4, CPU)
	require.NoError(t, err)
	low.SetInt64s([]int64{-8, 7, 3})
	assert.Equal(t, []int8{-8, 7, 3}, low.AsInt8())
	assert.Equal(t, []float64{-8, 7, 3}, low.Float64s())

	bools, err := NewRaw(Shape{2}, Uint8, CPU)
	require.NoError(t, err)
	bools.SetBools([]bool{true, false})
	assert.Equal(t, []uint8{1, 0}, bools.AsUint8())

	assert.Panics(t, func() { raw.SetFloat64s([]float64{1}) })
	assert.Panics(t, func() { raw.AsInt32() })
}

func TestInt32Vector(t *testing.T) {
	v := Int32Vector([]int{2, 3}, CPU)
	assert.Equal(t, Shape{2}, v.Shape())
	assert.Equal(t, []int32{2, 3}, v.AsInt32())
	assert.Panics(t, func() { Int32Vector(nil, CPU) })
}

func TestViewAndRetag(t *testing.T) {
	raw, err := FromSlice([]uint8{1, 2, 3, 4, 5, 6}, Shape{2, 3}, CPU)
	require.NoError(t, err)

	v, err := raw.View(Shape{3, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, v.Strides())
	assert.False(t, raw.IsUnique())
	assert.Equal(t, raw.AsUint8(), v.AsUint8())

	_, err = raw.View(Shape{4})
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	zp := 0
	typ := Type{Kind: Uint8, Quant: &QuantParams{Name: "Quantized8Asymm", Scale: 1, ZeroPoint: &zp}}
	q, err := raw.WithType(typ)
	require.NoError(t, err)
	assert.True(t, q.Type().Equal(typ))
	assert.False(t, raw.Type().IsQuantized())

	_, err = raw.WithType(Plain(Int8))
	assert.True(t, errors.Is(err, ErrUnsupportedDType))
}

func TestRelease(t *testing.T) {
	raw, err := NewRaw(Shape{4}, Float64, CPU)
	require.NoError(t, err)
	clone := raw.Clone()
	assert.False(t, raw.IsUnique())

	clone.Release()
	assert.True(t, raw.IsUnique())
	assert.Len(t, raw.Data(), 32)
}
