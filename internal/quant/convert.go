package quant

import (
	"math"

	"github.com/born-ml/tensorcore/internal/tensor"
)

// ConvertTo quantizes a float (or integer) tensor into target, which must be
// a type stamped from d.
func ConvertTo(arr *tensor.RawTensor, target tensor.Type, d Descriptor) (*tensor.RawTensor, error) {
	if arr == nil || arr.DType() == tensor.Bool || arr.Type().IsQuantized() {
		return nil, ErrNotNumeric
	}
	if !matches(target, d) {
		return nil, &MismatchError{Expected: d, Got: target}
	}

	scale := target.Quant.Scale
	var zp float64
	if d.Unsigned {
		if target.Quant.ZeroPoint == nil {
			return nil, &MismatchError{Expected: d, Got: target}
		}
		zp = float64(*target.Quant.ZeroPoint)
	}
	lo, hi := float64(d.QMin), float64(d.QMax)

	vals := arr.Float64s()
	q := make([]int64, len(vals))
	for i, v := range vals {
		x := math.RoundToEven(v/scale) + zp
		if math.IsNaN(x) {
			x = zp
		}
		q[i] = int64(min(max(x, lo), hi))
	}

	result, err := tensor.NewTyped(arr.Shape(), target, arr.Device())
	if err != nil {
		return nil, err
	}
	result.SetInt64s(q)
	return result, nil
}

// ConvertFrom dequantizes a tensor of a type stamped from d into Float32.
func ConvertFrom(arr *tensor.RawTensor, d Descriptor) (*tensor.RawTensor, error) {
	if arr == nil {
		return nil, ErrNotNumeric
	}
	t := arr.Type()
	if !matches(t, d) {
		return nil, &MismatchError{Expected: d, Got: t}
	}

	scale := t.Quant.Scale
	var zp float64
	if d.Unsigned {
		if t.Quant.ZeroPoint == nil {
			return nil, &MismatchError{Expected: d, Got: t}
		}
		zp = float64(*t.Quant.ZeroPoint)
	}

	vals := arr.Float64s()
	for i, v := range vals {
		vals[i] = (v - zp) * scale
	}
	return tensor.FromFloat64s(vals, arr.Shape(), tensor.Float32, arr.Device())
}

// ConvertToQUint8 quantizes arr into a quint8 type.
func ConvertToQUint8(arr *tensor.RawTensor, q tensor.Type) (*tensor.RawTensor, error) {
	return ConvertTo(arr, q, QUint8Desc)
}

// ConvertFromQUint8 dequantizes a quint8 tensor.
func ConvertFromQUint8(arr *tensor.RawTensor) (*tensor.RawTensor, error) {
	return ConvertFrom(arr, QUint8Desc)
}

// ConvertToQInt8 quantizes arr into a qint8 type.
func ConvertToQInt8(arr *tensor.RawTensor, q tensor.Type) (*tensor.RawTensor, error) {
	return ConvertTo(arr, q, QInt8Desc)
}

// ConvertFromQInt8 dequantizes a qint8 tensor.
func ConvertFromQInt8(arr *tensor.RawTensor) (*tensor.RawTensor, error) {
	return ConvertFrom(arr, QInt8Desc)
}

// ConvertToQInt32 quantizes arr into a qint32 type.
func ConvertToQInt32(arr *tensor.RawTensor, q tensor.Type) (*tensor.RawTensor, error) {
	return ConvertTo(arr, q, QInt32Desc)
}

// ConvertFromQInt32 dequantizes a qint32 tensor.
func ConvertFromQInt32(arr *tensor.RawTensor) (*tensor.RawTensor, error) {
	return ConvertFrom(arr, QInt32Desc)
}

// ConvertToQUint4 quantizes arr into a quint4 type.
func ConvertToQUint4(arr *tensor.RawTensor, q tensor.Type) (*tensor.RawTensor, error) {
	return ConvertTo(arr, q, QUint4Desc)
}

// ConvertFromQUint4 dequantizes a quint4 tensor.
func ConvertFromQUint4(arr *tensor.RawTensor) (*tensor.RawTensor, error) {
	return ConvertFrom(arr, QUint4Desc)
}

// ConvertToQInt4 quantizes arr into a qint4 type.
func ConvertToQInt4(arr *tensor.RawTensor, q tensor.Type) (*tensor.RawTensor, error) {
	return ConvertTo(arr, q, QInt4Desc)
}

// ConvertFromQInt4 dequantizes a qint4 tensor.
func ConvertFromQInt4(arr *tensor.RawTensor) (*tensor.RawTensor, error) {
	return ConvertFrom(arr, QInt4Desc)
}

// ConvertToQInt1 quantizes arr into a qint1 type.
func ConvertToQInt1(arr *tensor.RawTensor, q tensor.Type) (*tensor.RawTensor, error) {
	return ConvertTo(arr, q, QInt1Desc)
}

// ConvertFromQInt1 dequantizes a qint1 tensor.
func ConvertFromQInt1(arr *tensor.RawTensor) (*tensor.RawTensor, error) {
	return ConvertFrom(arr, QInt1Desc)
}
