package quant

import (
	"fmt"

	"github.com/born-ml/tensorcore/internal/tensor"
)

// CreateQuantizedDtype stamps scale and zero-point metadata from d onto its
// storage kind.
//
// Unsigned descriptors require a zero point within [QMin, QMax]. Signed
// descriptors take none; their metadata never carries a zero point.
func CreateQuantizedDtype(d Descriptor, scale float64, zeroPoint *int) (tensor.Type, error) {
	if d.ExternalName == "" {
		return tensor.Type{}, fmt.Errorf("%s: %w", d.Name, ErrNoExternalName)
	}
	params := &tensor.QuantParams{Name: d.ExternalName, Scale: scale}
	if d.Unsigned {
		if zeroPoint == nil {
			return tensor.Type{}, fmt.Errorf("%s: %w", d.Name, ErrZeroPointRequired)
		}
		zp := *zeroPoint
		if int64(zp) < d.QMin || int64(zp) > d.QMax {
			return tensor.Type{}, &RangeError{Name: d.Name, ZeroPoint: zp, QMin: d.QMin, QMax: d.QMax}
		}
		params.ZeroPoint = &zp
	} else if zeroPoint != nil {
		return tensor.Type{}, fmt.Errorf("%s: %w", d.Name, ErrUnexpectedZeroPoint)
	}
	return tensor.Type{Kind: d.Storage, Quant: params}, nil
}

// QUint8 returns an asymmetric 8-bit type: real = scale * (q - zeroPoint).
func QUint8(scale float64, zeroPoint int) (tensor.Type, error) {
	return CreateQuantizedDtype(QUint8Desc, scale, &zeroPoint)
}

// QInt8 returns a symmetric 8-bit type: real = scale * q.
func QInt8(scale float64) (tensor.Type, error) {
	return CreateQuantizedDtype(QInt8Desc, scale, nil)
}

// QInt32 returns a symmetric 32-bit type.
func QInt32(scale float64) (tensor.Type, error) {
	return CreateQuantizedDtype(QInt32Desc, scale, nil)
}

// QUint4 returns an asymmetric 4-bit type stored in uint8.
func QUint4(scale float64, zeroPoint int) (tensor.Type, error) {
	return CreateQuantizedDtype(QUint4Desc, scale, &zeroPoint)
}

// QInt4 returns a symmetric 4-bit type stored in int8.
func QInt4(scale float64) (tensor.Type, error) {
	return CreateQuantizedDtype(QInt4Desc, scale, nil)
}

// QInt1 returns a 1-bit type stored in int8.
func QInt1(scale float64) (tensor.Type, error) {
	return CreateQuantizedDtype(QInt1Desc, scale, nil)
}

// IsQuantized reports whether t carries quantization metadata.
func IsQuantized(t tensor.Type) bool {
	return t.IsQuantized()
}

// Scale returns the scale of a quantized type.
func Scale(t tensor.Type) (float64, bool) {
	if t.Quant == nil {
		return 0, false
	}
	return t.Quant.Scale, true
}

// ZeroPoint returns the zero point of a quantized type. ok is false for
// unquantized and signed types.
func ZeroPoint(t tensor.Type) (zp int, ok bool) {
	if t.Quant == nil || t.Quant.ZeroPoint == nil {
		return 0, false
	}
	return *t.Quant.ZeroPoint, true
}

func matches(t tensor.Type, d Descriptor) bool {
	return t.Quant != nil && t.Quant.Name == d.ExternalName
}
