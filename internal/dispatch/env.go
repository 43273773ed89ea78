package dispatch

import (
	"github.com/born-ml/tensorcore/internal/matmul"
	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// Env holds the collaborators operators dispatch to.
type Env struct {
	exec    ops.Executor
	indexer ops.Indexer
	matmul  *matmul.Normalizer
	device  tensor.Device
}

// Backend is an executor that also implements indexing.
type Backend interface {
	ops.Executor
	ops.Indexer
}

// NewEnv builds an Env running primitives and indexing on backend.
func NewEnv(backend Backend, opts ...matmul.Option) *Env {
	env := &Env{
		exec:    backend,
		indexer: backend,
		matmul:  matmul.New(backend, opts...),
		device:  tensor.CPU,
	}
	if d, ok := backend.(interface{ Device() tensor.Device }); ok {
		env.device = d.Device()
	}
	return env
}

// Device returns the device new tensors are created on.
func (e *Env) Device() tensor.Device {
	return e.device
}

// Executor returns the primitive executor.
func (e *Env) Executor() ops.Executor {
	return e.exec
}

// Normalizer returns the matmul rank-normalizer.
func (e *Env) Normalizer() *matmul.Normalizer {
	return e.matmul
}

// ShapeValue is a shape known either statically or only as a rank-1 integer
// tensor. The zero value is an unknown shape.
type ShapeValue struct {
	static  tensor.Shape
	dynamic *tensor.RawTensor
}

// StaticShape wraps a known shape.
func StaticShape(s tensor.Shape) ShapeValue {
	if s == nil {
		s = tensor.Shape{}
	}
	return ShapeValue{static: s}
}

// DynamicShape wraps a shape held in a rank-1 integer tensor.
func DynamicShape(t *tensor.RawTensor) ShapeValue {
	return ShapeValue{dynamic: t}
}

// Static returns the shape if it is known statically.
func (s ShapeValue) Static() (tensor.Shape, bool) {
	return s.static, s.static != nil
}

// Tensor returns the shape tensor of a dynamic shape.
func (s ShapeValue) Tensor() *tensor.RawTensor {
	return s.dynamic
}

// Host is anything the operator set can act on: a handle to a current value
// that can be rebound in place.
type Host interface {
	// Value returns the current value.
	Value() *tensor.RawTensor
	// Reset rebinds the handle to v.
	Reset(v *tensor.RawTensor)
	// Shape returns the shape, which may only be known as a tensor.
	Shape() ShapeValue
}
