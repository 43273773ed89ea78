// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tensorcore/internal/config"
	"github.com/born-ml/tensorcore/internal/dispatch"
	"github.com/born-ml/tensorcore/internal/matmul"
	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// DType is a constraint for Go element types accepted by FromSlice.
type DType = tensor.DType

// DataType is the storage kind of tensor elements.
type DataType = tensor.DataType

// Storage kinds.
const (
	Float32  = tensor.Float32
	Float64  = tensor.Float64
	Float16  = tensor.Float16
	BFloat16 = tensor.BFloat16
	Int8     = tensor.Int8
	Int16    = tensor.Int16
	Int32    = tensor.Int32
	Int64    = tensor.Int64
	Uint8    = tensor.Uint8
	Bool     = tensor.Bool
	IntB1    = tensor.IntB1
	IntB2    = tensor.IntB2
	IntB4    = tensor.IntB4
)

// Type is a storage kind plus optional quantization metadata.
type Type = tensor.Type

// QuantParams is the quantization metadata carried by a quantized Type.
type QuantParams = tensor.QuantParams

// Plain returns the unquantized Type for a storage kind.
func Plain(kind DataType) Type {
	return tensor.Plain(kind)
}

// Device represents a compute device.
type Device = tensor.Device

// Devices.
const (
	CPU    = tensor.CPU
	CUDA   = tensor.CUDA
	Vulkan = tensor.Vulkan
	Metal  = tensor.Metal
	WebGPU = tensor.WebGPU
)

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// Tensor is a tensor value with the full operator set.
//
// Binary operators accept another *Tensor, a *RawTensor, or a Go scalar.
// Scalars take the receiver's storage kind. In-place operators always
// return an error wrapping ErrNotImplemented so that callers fall back to
// the out-of-place form.
type Tensor = dispatch.Tensor

// Env bundles the backend and matmul normalizer a Tensor dispatches to.
type Env = dispatch.Env

// Backend is what an Env needs from a compute backend: primitive
// execution and index-based access.
type Backend = dispatch.Backend

// ReduceOptions selects the axes of a reduction.
type ReduceOptions = dispatch.ReduceOptions

// MatMulOptions carries the transpose flags, compute mode and format of a
// matrix product.
type MatMulOptions = matmul.Options

// ComputeMode selects the accumulation precision of matrix products.
type ComputeMode = ops.ComputeMode

// Compute modes.
const (
	ComputeDefault = ops.ComputeDefault
	ComputeFloat32 = ops.ComputeFloat32
)

// Format selects the operand memory layout of matrix products.
type Format = ops.Format

// Operand formats.
const (
	FormatDefault = ops.FormatDefault
	FormatMK4     = ops.FormatMK4
	FormatMK8     = ops.FormatMK8
)

// EnvOption configures the matmul normalizer of an Env.
type EnvOption = matmul.Option

// MatMulCache stores compiled matmul subgraphs. One cache may be shared
// between several Envs.
type MatMulCache = matmul.Cache

// NewMatMulCache creates an empty subgraph cache.
func NewMatMulCache() *MatMulCache {
	return matmul.NewCache()
}

// WithMatMulCache makes an Env use c instead of a private cache.
func WithMatMulCache(c *MatMulCache) EnvOption {
	return matmul.WithCache(c)
}

// Flags are the kernel-selection switches read from the environment
// (BORN_BENCHMARK_KERNEL, BORN_DETERMINISTIC_KERNEL, BORN_COMPUTE_MODE).
type Flags = config.Flags

// FlagsFromEnv reads Flags from the process environment.
func FlagsFromEnv() Flags {
	return config.FromEnv()
}

// WithFlags overrides the Flags an Env reads at construction.
func WithFlags(f Flags) EnvOption {
	return matmul.WithFlags(f)
}

// Index is a sequence of index items used by GetItem and SetItem.
type Index = ops.Index

// IndexItem is one entry of an Index.
type IndexItem = ops.IndexItem

// Ellipsis is the index that selects the whole tensor.
var Ellipsis = ops.Ellipsis

// At selects a single position along an axis.
func At(i int) IndexItem { return ops.At(i) }

// Range selects [start, stop) along an axis.
func Range(start, stop int) IndexItem { return ops.Range(start, stop) }

// Stride selects [start, stop) with the given step along an axis.
func Stride(start, stop, step int) IndexItem { return ops.Stride(start, stop, step) }

// All selects a whole axis.
func All() IndexItem { return ops.All() }

// Errors reported by tensor operators.
var (
	ErrNotImplemented   = dispatch.ErrNotImplemented
	ErrUnknownShape     = dispatch.ErrUnknownShape
	ErrShapeMismatch    = tensor.ErrShapeMismatch
	ErrAxisOutOfRange   = tensor.ErrAxisOutOfRange
	ErrUnsupportedDType = tensor.ErrUnsupportedDType
)

// TypeError reports an operand of the wrong element type or rank.
type TypeError = dispatch.TypeError

// UsageError reports an operator called with invalid arguments.
type UsageError = dispatch.UsageError

// NewEnv creates an Env over a backend.
//
// Example:
//
//	env := tensor.NewEnv(cpu.New())
func NewEnv(backend Backend, opts ...EnvOption) *Env {
	return dispatch.NewEnv(backend, opts...)
}

// New wraps a raw tensor.
func New(raw *RawTensor, env *Env) *Tensor {
	return dispatch.New(raw, env)
}

// FromSlice creates a tensor on the Env's device from a Go slice.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, env)
func FromSlice[T DType](data []T, shape Shape, env *Env) (*Tensor, error) {
	raw, err := tensor.FromSlice(data, shape, env.Device())
	if err != nil {
		return nil, err
	}
	return dispatch.New(raw, env), nil
}

// Scalar creates a rank-0 tensor holding v converted to dtype.
func Scalar(v any, dtype DataType, env *Env) (*Tensor, error) {
	raw, err := tensor.Scalar(v, dtype, env.Device())
	if err != nil {
		return nil, err
	}
	return dispatch.New(raw, env), nil
}
