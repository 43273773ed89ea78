package tensor

import "fmt"

// QuantParams is the quantization metadata stamped onto a storage kind.
//
// Name is the external format name of the quantized descriptor
// (for example "Quantized8Asymm"). ZeroPoint is nil for signed
// quantized types; it is never stored as an implicit zero.
type QuantParams struct {
	Name      string
	Scale     float64
	ZeroPoint *int
}

// Equal compares two metadata records structurally.
func (q *QuantParams) Equal(other *QuantParams) bool {
	if q == nil || other == nil {
		return q == other
	}
	if q.Name != other.Name || q.Scale != other.Scale {
		return false
	}
	if q.ZeroPoint == nil || other.ZeroPoint == nil {
		return q.ZeroPoint == other.ZeroPoint
	}
	return *q.ZeroPoint == *other.ZeroPoint
}

// Type is a concrete numeric type: a storage kind plus optional
// quantization metadata.
type Type struct {
	Kind  DataType
	Quant *QuantParams
}

// Plain returns the unquantized Type for a storage kind.
func Plain(kind DataType) Type {
	return Type{Kind: kind}
}

// IsQuantized reports whether the type carries quantization metadata.
func (t Type) IsQuantized() bool {
	return t.Quant != nil
}

// Equal compares kind and metadata.
func (t Type) Equal(other Type) bool {
	return t.Kind == other.Kind && t.Quant.Equal(other.Quant)
}

// String returns the storage kind, annotated with quantization metadata if any.
func (t Type) String() string {
	if t.Quant == nil {
		return t.Kind.String()
	}
	if t.Quant.ZeroPoint == nil {
		return fmt.Sprintf("%s(%s, scale=%g)", t.Kind, t.Quant.Name, t.Quant.Scale)
	}
	return fmt.Sprintf("%s(%s, scale=%g, zero_point=%d)", t.Kind, t.Quant.Name, t.Quant.Scale, *t.Quant.ZeroPoint)
}
