// Package tensor provides the core tensor types and shape algebra for the tensorcore framework.
package tensor

import (
	"regexp"
	"strconv"
)

// DType is a constraint for Go element types that map onto a storage DataType.
type DType interface {
	~float32 | ~float64 | ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~bool
}

// DataType is the storage kind of tensor elements.
type DataType int

// Supported storage kinds.
const (
	Float32 DataType = iota
	Float64
	Float16
	BFloat16
	Int8
	Int16
	Int32
	Int64
	Uint8
	Bool
	IntB1 // 1-bit, stored unpacked one element per byte
	IntB2 // 2-bit, stored unpacked one element per byte
	IntB4 // 4-bit, stored unpacked one element per byte
)

// Size returns the byte size of one stored element.
func (dt DataType) Size() int {
	switch dt {
	case Float64, Int64:
		return 8
	case Float32, Int32:
		return 4
	case Float16, BFloat16, Int16:
		return 2
	case Int8, Uint8, Bool, IntB1, IntB2, IntB4:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	case IntB1:
		return "intb1"
	case IntB2:
		return "intb2"
	case IntB4:
		return "intb4"
	default:
		return "unknown"
	}
}

var digits = regexp.MustCompile(`\d+`)

// Bits returns the logical bit width of the data type, derived from its name.
// Bool counts as a single bit.
func (dt DataType) Bits() int {
	if dt == Bool {
		return 1
	}
	n, err := strconv.Atoi(digits.FindString(dt.String()))
	if err != nil {
		return 0
	}
	return n
}

// IsFloat reports whether the kind is a floating-point kind.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64 || dt == Float16 || dt == BFloat16
}

// IsInteger reports whether the kind is a (possibly low-bit) integer kind.
func (dt DataType) IsInteger() bool {
	switch dt {
	case Int8, Int16, Int32, Int64, Uint8, IntB1, IntB2, IntB4:
		return true
	}
	return false
}

// IsUnsigned reports whether the kind stores unsigned integers.
func (dt DataType) IsUnsigned() bool {
	return dt == Uint8
}

// IsLowBit reports whether the kind is one of the sub-byte integer kinds.
func (dt DataType) IsLowBit() bool {
	return dt == IntB1 || dt == IntB2 || dt == IntB4
}

// IsBFloat16 reports whether the kind is bfloat16.
func (dt DataType) IsBFloat16() bool {
	return dt == BFloat16
}

// IsDifferentiable reports whether gradients can flow through tensors of this kind.
func (dt DataType) IsDifferentiable() bool {
	return dt == Float32 || dt == Float16 || dt == BFloat16
}

// inferDataType infers DataType from a generic type T.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	default:
		panic("unsupported type")
	}
}
