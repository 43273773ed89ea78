package dispatch

import (
	"sync/atomic"

	"github.com/born-ml/tensorcore/internal/tensor"
)

// Tensor is the concrete host: a rebindable handle to a RawTensor with the
// full operator set.
type Tensor struct {
	Methods
	raw atomic.Pointer[tensor.RawTensor]
}

// Verify that Tensor implements Host.
var _ Host = (*Tensor)(nil)

// New wraps raw. Operators run through env.
func New(raw *tensor.RawTensor, env *Env) *Tensor {
	t := &Tensor{}
	t.raw.Store(raw)
	t.Methods = NewMethods(t, env)
	return t
}

// Value returns the current value.
func (t *Tensor) Value() *tensor.RawTensor {
	return t.raw.Load()
}

// Reset rebinds t to v. Concurrent readers see either the old or the new value.
func (t *Tensor) Reset(v *tensor.RawTensor) {
	t.raw.Store(v)
}

// Shape returns the static shape of the current value.
func (t *Tensor) Shape() ShapeValue {
	return StaticShape(t.Value().Shape())
}

func (t *Tensor) String() string {
	return t.Value().String()
}
