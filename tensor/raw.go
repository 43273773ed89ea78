// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/tensorcore/internal/tensor"

// RawTensor is the low-level storage behind a Tensor.
//
// It holds the byte buffer, shape, element Type and device. Most users
// never touch it directly; Tensor.Value returns it when needed.
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-filled raw tensor with an unquantized element type.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// NewTypedRaw creates a zero-filled raw tensor with the given element type,
// which may carry quantization metadata.
func NewTypedRaw(shape Shape, typ Type, device Device) (*RawTensor, error) {
	return tensor.NewTyped(shape, typ, device)
}
