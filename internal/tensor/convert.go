package tensor

import (
	"fmt"

	bfloat16 "github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// Float64s copies the elements into a new []float64, converting from any storage kind.
func (r *RawTensor) Float64s() []float64 {
	n := r.NumElements()
	out := make([]float64, n)
	switch r.dtype {
	case Float32:
		for i, v := range r.AsFloat32() {
			out[i] = float64(v)
		}
	case Float64:
		copy(out, r.AsFloat64())
	case Float16:
		for i, bits := range r.asUint16() {
			out[i] = float64(float16.Frombits(bits).Float32())
		}
	case BFloat16:
		for i, v := range bfloat16.DecodeFloat32(r.buffer.data[:n*2]) {
			out[i] = float64(v)
		}
	case Int8, IntB1, IntB2, IntB4:
		for i, v := range r.AsInt8() {
			out[i] = float64(v)
		}
	case Int16:
		for i, v := range r.AsInt16() {
			out[i] = float64(v)
		}
	case Int32:
		for i, v := range r.AsInt32() {
			out[i] = float64(v)
		}
	case Int64:
		for i, v := range r.AsInt64() {
			out[i] = float64(v)
		}
	case Uint8:
		for i, v := range r.AsUint8() {
			out[i] = float64(v)
		}
	case Bool:
		for i, v := range r.AsBool() {
			if v {
				out[i] = 1
			}
		}
	default:
		panic(fmt.Sprintf("float64s: unsupported dtype %s", r.dtype))
	}
	return out
}

// Int64s copies the elements into a new []int64. Floating-point values are truncated.
func (r *RawTensor) Int64s() []int64 {
	switch r.dtype {
	case Int64:
		return append([]int64(nil), r.AsInt64()...)
	case Int32:
		out := make([]int64, r.NumElements())
		for i, v := range r.AsInt32() {
			out[i] = int64(v)
		}
		return out
	}
	f := r.Float64s()
	out := make([]int64, len(f))
	for i, v := range f {
		out[i] = int64(v)
	}
	return out
}

// Bools copies the elements into a new []bool; non-zero values are true.
func (r *RawTensor) Bools() []bool {
	if r.dtype == Bool {
		return append([]bool(nil), r.AsBool()...)
	}
	f := r.Float64s()
	out := make([]bool, len(f))
	for i, v := range f {
		out[i] = v != 0
	}
	return out
}

// SetFloat64s stores vals into the tensor, converting to its storage kind.
// Integer kinds receive Go's truncating conversion; callers round first when needed.
func (r *RawTensor) SetFloat64s(vals []float64) {
	if len(vals) != r.NumElements() {
		panic(fmt.Sprintf("set: %d values for %d elements", len(vals), r.NumElements()))
	}
	switch r.dtype {
	case Float32:
		dst := r.AsFloat32()
		for i, v := range vals {
			dst[i] = float32(v)
		}
	case Float64:
		copy(r.AsFloat64(), vals)
	case Float16:
		dst := r.asUint16()
		for i, v := range vals {
			dst[i] = float16.Fromfloat32(float32(v)).Bits()
		}
	case BFloat16:
		f32s := make([]float32, len(vals))
		for i, v := range vals {
			f32s[i] = float32(v)
		}
		copy(r.buffer.data, bfloat16.EncodeFloat32(f32s))
	case Int8, IntB1, IntB2, IntB4:
		dst := r.AsInt8()
		for i, v := range vals {
			dst[i] = int8(v)
		}
	case Int16:
		dst := r.AsInt16()
		for i, v := range vals {
			dst[i] = int16(v)
		}
	case Int32:
		dst := r.AsInt32()
		for i, v := range vals {
			dst[i] = int32(v)
		}
	case Int64:
		dst := r.AsInt64()
		for i, v := range vals {
			dst[i] = int64(v)
		}
	case Uint8:
		dst := r.AsUint8()
		for i, v := range vals {
			dst[i] = uint8(v)
		}
	case Bool:
		dst := r.AsBool()
		for i, v := range vals {
			dst[i] = v != 0
		}
	default:
		panic(fmt.Sprintf("set: unsupported dtype %s", r.dtype))
	}
}

// SetInt64s stores vals into the tensor. Integer kinds wrap like Go integer
// conversions; float kinds convert exactly where representable.
func (r *RawTensor) SetInt64s(vals []int64) {
	if len(vals) != r.NumElements() {
		panic(fmt.Sprintf("set: %d values for %d elements", len(vals), r.NumElements()))
	}
	switch r.dtype {
	case Int64:
		copy(r.AsInt64(), vals)
	case Int32:
		dst := r.AsInt32()
		for i, v := range vals {
			dst[i] = int32(v)
		}
	case Int16:
		dst := r.AsInt16()
		for i, v := range vals {
			dst[i] = int16(v)
		}
	case Int8, IntB1, IntB2, IntB4:
		dst := r.AsInt8()
		for i, v := range vals {
			dst[i] = int8(v)
		}
	case Uint8:
		dst := r.AsUint8()
		for i, v := range vals {
			dst[i] = uint8(v)
		}
	default:
		f := make([]float64, len(vals))
		for i, v := range vals {
			f[i] = float64(v)
		}
		r.SetFloat64s(f)
	}
}

// SetBools stores vals into the tensor as 0/1 for non-bool kinds.
func (r *RawTensor) SetBools(vals []bool) {
	if r.dtype == Bool {
		if len(vals) != r.NumElements() {
			panic(fmt.Sprintf("set: %d values for %d elements", len(vals), r.NumElements()))
		}
		copy(r.AsBool(), vals)
		return
	}
	f := make([]float64, len(vals))
	for i, v := range vals {
		if v {
			f[i] = 1
		}
	}
	r.SetFloat64s(f)
}
