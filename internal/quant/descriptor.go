// Package quant is the registry of quantized numeric types.
//
// A Descriptor names a quantization scheme (storage kind and integer value
// range). CreateQuantizedDtype stamps scale and zero-point metadata from a
// descriptor onto a tensor.Type; the ConvertTo and ConvertFrom families map
// float tensors to and from that encoding.
//
// Quantization computes round(v/scale) in float64, rounding half to even,
// adds the zero point for unsigned schemes and clips to [QMin, QMax].
package quant

import (
	"fmt"
	"math"

	"github.com/born-ml/tensorcore/internal/tensor"
)

// Descriptor describes a quantized dtype. Descriptors are plain values and
// never change after construction.
//
// Name is the unique short name ("quint8"). ExternalName is the name stamped
// into type metadata ("Quantized8Asymm"); it is empty when the scheme cannot
// be exported.
type Descriptor struct {
	Name         string
	ExternalName string
	Storage      tensor.DataType
	QMin         int64
	QMax         int64
	Unsigned     bool
}

// NewDescriptor validates and builds a descriptor. Unsigned is derived from
// the storage kind; use WithUnsigned to override it.
func NewDescriptor(name, externalName string, storage tensor.DataType, qmin, qmax int64) (Descriptor, error) {
	if qmin > qmax {
		return Descriptor{}, fmt.Errorf("%s: %w: [%d, %d]", name, ErrInvalidRange, qmin, qmax)
	}
	return Descriptor{
		Name:         name,
		ExternalName: externalName,
		Storage:      storage,
		QMin:         qmin,
		QMax:         qmax,
		Unsigned:     storage.IsUnsigned(),
	}, nil
}

// WithUnsigned returns a copy of d with the signedness overridden.
func (d Descriptor) WithUnsigned(unsigned bool) Descriptor {
	d.Unsigned = unsigned
	return d
}

func (d Descriptor) String() string {
	ext := d.ExternalName
	if ext == "" {
		ext = "-"
	}
	return fmt.Sprintf("%s(%s, %s, [%d, %d])", d.Name, ext, d.Storage, d.QMin, d.QMax)
}

func mustDescriptor(name, externalName string, storage tensor.DataType, qmin, qmax int64) Descriptor {
	d, err := NewDescriptor(name, externalName, storage, qmin, qmax)
	if err != nil {
		panic(err)
	}
	return d
}

// Built-in descriptors.
var (
	QUint8Desc      = mustDescriptor("quint8", "Quantized8Asymm", tensor.Uint8, 0, 255)
	QInt8Desc       = mustDescriptor("qint8", "QuantizedS8", tensor.Int8, -128, 127)
	QInt8NarrowDesc = mustDescriptor("qint8_narrow", "QuantizedS8", tensor.Int8, -127, 127)
	QUint4Desc      = mustDescriptor("quint4", "Quantized4Asymm", tensor.Uint8, 0, 15)
	QInt4Desc       = mustDescriptor("qint4", "QuantizedS4", tensor.Int8, -8, 7)
	QInt1Desc       = mustDescriptor("qint1", "QuantizedS1", tensor.Int8, 0, 1)
	QInt32Desc      = mustDescriptor("qint32", "QuantizedS32", tensor.Int32, math.MinInt32, math.MaxInt32)

	// 2-bit schemes have no external name and cannot be stamped onto a type yet.
	QUint2Desc = mustDescriptor("quint2", "", tensor.Uint8, 0, 3)
	QInt2Desc  = mustDescriptor("qint2", "", tensor.Int8, -2, 1)
)

var builtin = []Descriptor{
	QUint8Desc, QInt8Desc, QInt8NarrowDesc, QUint4Desc, QInt4Desc,
	QInt1Desc, QInt32Desc, QUint2Desc, QInt2Desc,
}

// Builtin lists the built-in descriptors in catalog order.
func Builtin() []Descriptor {
	return append([]Descriptor(nil), builtin...)
}

// Lookup finds a built-in descriptor by short name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range builtin {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
