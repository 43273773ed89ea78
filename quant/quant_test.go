// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package quant_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorcore/backend/cpu"
	"github.com/born-ml/tensorcore/quant"
	"github.com/born-ml/tensorcore/tensor"
)

func TestQuantizeTensor(t *testing.T) {
	env := tensor.NewEnv(cpu.New(), tensor.WithFlags(tensor.Flags{}))
	x, err := tensor.FromSlice([]float32{-1, 0, 0.5, 2}, tensor.Shape{2, 2}, env)
	require.NoError(t, err)

	typ, err := quant.QInt8(0.5)
	require.NoError(t, err)

	q, err := quant.Quantize(x, typ, quant.QInt8Desc)
	require.NoError(t, err)
	assert.True(t, quant.IsQuantized(q.DType()))
	assert.Equal(t, []int8{-2, 0, 1, 4}, q.Value().AsInt8())

	back, err := quant.Dequantize(q, quant.QInt8Desc)
	require.NoError(t, err)
	assert.Equal(t, []float32{-1, 0, 0.5, 2}, back.Value().AsFloat32())
	assert.Same(t, env, back.Env())
}

func TestLookup(t *testing.T) {
	d, ok := quant.Lookup("quint4")
	require.True(t, ok)
	assert.Equal(t, "Quantized4Asymm", d.ExternalName)

	_, ok = quant.Lookup("qint16")
	assert.False(t, ok)
}

func TestZeroPointErrors(t *testing.T) {
	_, err := quant.QUint8(0.1, 300)
	var rangeErr *quant.RangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, 300, rangeErr.ZeroPoint)

	zp := 1
	_, err = quant.CreateQuantizedDtype(quant.QInt8Desc, 0.1, &zp)
	assert.True(t, errors.Is(err, quant.ErrUnexpectedZeroPoint))

	_, err = quant.CreateQuantizedDtype(quant.QUint2Desc, 0.1, &zp)
	assert.True(t, errors.Is(err, quant.ErrNoExternalName))
}
