// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package quant provides quantized element types and conversions.
//
// A Descriptor names a quantization scheme: its storage kind and the
// integer range it may use. A quantized tensor.Type is a storage kind
// stamped with a scale and, for unsigned schemes, a zero point.
//
// Example:
//
//	typ, _ := quant.QUint8(0.1, 128)
//	q, _ := quant.Quantize(x, typ, quant.QUint8Desc)
//	back, _ := quant.Dequantize(q, quant.QUint8Desc)
package quant

import (
	"github.com/born-ml/tensorcore/internal/quant"
	"github.com/born-ml/tensorcore/tensor"
)

// Descriptor is a named quantization scheme.
type Descriptor = quant.Descriptor

// RangeError reports a zero point outside a descriptor's range.
type RangeError = quant.RangeError

// MismatchError reports a type that does not belong to the expected descriptor.
type MismatchError = quant.MismatchError

// Errors.
var (
	ErrNoExternalName      = quant.ErrNoExternalName
	ErrZeroPointRequired   = quant.ErrZeroPointRequired
	ErrUnexpectedZeroPoint = quant.ErrUnexpectedZeroPoint
	ErrInvalidRange        = quant.ErrInvalidRange
	ErrNotNumeric          = quant.ErrNotNumeric
)

// Built-in descriptors.
var (
	QUint8Desc      = quant.QUint8Desc
	QInt8Desc       = quant.QInt8Desc
	QInt8NarrowDesc = quant.QInt8NarrowDesc
	QUint4Desc      = quant.QUint4Desc
	QInt4Desc       = quant.QInt4Desc
	QInt1Desc       = quant.QInt1Desc
	QInt32Desc      = quant.QInt32Desc
	QUint2Desc      = quant.QUint2Desc
	QInt2Desc       = quant.QInt2Desc
)

// NewDescriptor defines a custom scheme.
func NewDescriptor(name, externalName string, storage tensor.DataType, qmin, qmax int64) (Descriptor, error) {
	return quant.NewDescriptor(name, externalName, storage, qmin, qmax)
}

// Builtin lists the built-in descriptors in catalog order.
func Builtin() []Descriptor { return quant.Builtin() }

// Lookup finds a built-in descriptor by short name.
func Lookup(name string) (Descriptor, bool) { return quant.Lookup(name) }

// CreateQuantizedDtype stamps scale and zero point onto d's storage kind.
// Unsigned schemes require a zero point; signed schemes reject one.
func CreateQuantizedDtype(d Descriptor, scale float64, zeroPoint *int) (tensor.Type, error) {
	return quant.CreateQuantizedDtype(d, scale, zeroPoint)
}

// QUint8 returns an 8-bit asymmetric type.
func QUint8(scale float64, zeroPoint int) (tensor.Type, error) { return quant.QUint8(scale, zeroPoint) }

// QInt8 returns an 8-bit symmetric type.
func QInt8(scale float64) (tensor.Type, error) { return quant.QInt8(scale) }

// QInt32 returns a 32-bit symmetric type.
func QInt32(scale float64) (tensor.Type, error) { return quant.QInt32(scale) }

// QUint4 returns a 4-bit asymmetric type.
func QUint4(scale float64, zeroPoint int) (tensor.Type, error) { return quant.QUint4(scale, zeroPoint) }

// QInt4 returns a 4-bit symmetric type.
func QInt4(scale float64) (tensor.Type, error) { return quant.QInt4(scale) }

// QInt1 returns a 1-bit type.
func QInt1(scale float64) (tensor.Type, error) { return quant.QInt1(scale) }

// IsQuantized reports whether t carries quantization metadata.
func IsQuantized(t tensor.Type) bool { return quant.IsQuantized(t) }

// Scale returns the scale of a quantized type.
func Scale(t tensor.Type) (float64, bool) { return quant.Scale(t) }

// ZeroPoint returns the zero point of an unsigned quantized type.
func ZeroPoint(t tensor.Type) (int, bool) { return quant.ZeroPoint(t) }

// Quantize converts a numeric tensor to target, which must be a type
// created from d.
func Quantize(x *tensor.Tensor, target tensor.Type, d Descriptor) (*tensor.Tensor, error) {
	raw, err := quant.ConvertTo(x.Value(), target, d)
	if err != nil {
		return nil, err
	}
	return tensor.New(raw, x.Env()), nil
}

// Dequantize converts a quantized tensor of scheme d back to float32.
func Dequantize(x *tensor.Tensor, d Descriptor) (*tensor.Tensor, error) {
	raw, err := quant.ConvertFrom(x.Value(), d)
	if err != nil {
		return nil, err
	}
	return tensor.New(raw, x.Env()), nil
}
