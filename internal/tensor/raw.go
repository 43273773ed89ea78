package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Device represents the compute device a tensor lives on.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	CUDA
	Vulkan
	Metal
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case CUDA:
		return "CUDA"
	case Vulkan:
		return "Vulkan"
	case Metal:
		return "Metal"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// tensorBuffer is a reference-counted buffer shared between views of the same data.
type tensorBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex
}

func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) == 0 {
		tb.mu.Lock()
		defer tb.mu.Unlock()
		tb.data = nil
	}
}

// RawTensor is the untyped tensor handle passed between the dispatch layer
// and executors. Executors never mutate the data of their inputs; every
// primitive produces fresh handles.
type RawTensor struct {
	buffer *tensorBuffer
	shape  Shape
	stride []int
	dtype  DataType
	quant  *QuantParams
	device Device
}

// NewRaw creates a zero-filled RawTensor with the given shape and storage kind.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return NewTyped(shape, Plain(dtype), device)
}

// NewTyped creates a zero-filled RawTensor of the given (possibly quantized) type.
func NewTyped(shape Shape, typ Type, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		buffer: newTensorBuffer(shape.NumElements() * typ.Kind.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  typ.Kind,
		quant:  typ.Quant,
		device: device,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's row-major strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the storage kind.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Type returns the storage kind together with any quantization metadata.
func (r *RawTensor) Type() Type {
	return Type{Kind: r.dtype, Quant: r.quant}
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.buffer.data
}

// String returns a short description of the handle.
func (r *RawTensor) String() string {
	return fmt.Sprintf("RawTensor[%s]%v on %s", r.Type(), r.shape, r.device)
}

func (r *RawTensor) checkKind(want DataType) {
	if r.dtype != want {
		panic(fmt.Sprintf("tensor dtype is %s, not %s", r.dtype, want))
	}
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	r.checkKind(Float32)
	//nolint:gosec // unsafe.Slice for zero-copy access, length bounded by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	r.checkKind(Float64)
	//nolint:gosec // unsafe.Slice for zero-copy access, length bounded by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// AsInt8 interprets the data as []int8. Low-bit kinds share this layout.
func (r *RawTensor) AsInt8() []int8 {
	if r.dtype != Int8 && !r.dtype.IsLowBit() {
		panic(fmt.Sprintf("tensor dtype is %s, not int8", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, length bounded by NumElements()
	return unsafe.Slice((*int8)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// AsInt16 interprets the data as []int16.
func (r *RawTensor) AsInt16() []int16 {
	r.checkKind(Int16)
	//nolint:gosec // unsafe.Slice for zero-copy access, length bounded by NumElements()
	return unsafe.Slice((*int16)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// AsInt32 interprets the data as []int32.
// Panics if the tensor's dtype is not Int32.
func (r *RawTensor) AsInt32() []int32 {
	r.checkKind(Int32)
	//nolint:gosec // unsafe.Slice for zero-copy access, length bounded by NumElements()
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// AsInt64 interprets the data as []int64.
// Panics if the tensor's dtype is not Int64.
func (r *RawTensor) AsInt64() []int64 {
	r.checkKind(Int64)
	//nolint:gosec // unsafe.Slice for zero-copy access, length bounded by NumElements()
	return unsafe.Slice((*int64)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// AsUint8 interprets the data as []uint8.
// Panics if the tensor's dtype is not Uint8.
func (r *RawTensor) AsUint8() []uint8 {
	r.checkKind(Uint8)
	return r.buffer.data[:r.NumElements()]
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (r *RawTensor) AsBool() []bool {
	r.checkKind(Bool)
	//nolint:gosec // unsafe.Slice for zero-copy access, length bounded by NumElements()
	return unsafe.Slice((*bool)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// asUint16 exposes half-precision storage as raw bit patterns.
func (r *RawTensor) asUint16() []uint16 {
	if r.dtype != Float16 && r.dtype != BFloat16 {
		panic(fmt.Sprintf("tensor dtype is %s, not a 16-bit float", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, length bounded by NumElements()
	return unsafe.Slice((*uint16)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// Clone creates a shallow copy sharing the same buffer.
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		quant:  r.quant,
		device: r.device,
	}
}

// View returns a handle sharing the buffer under a new shape with the same element count.
func (r *RawTensor) View(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("%w: cannot view %v as %v", ErrShapeMismatch, r.shape, shape)
	}
	v := r.Clone()
	v.shape = shape.Clone()
	v.stride = shape.ComputeStrides()
	return v, nil
}

// WithType returns a handle sharing the buffer, retagged with typ.
// The storage kind must be unchanged; only metadata can differ.
func (r *RawTensor) WithType(typ Type) (*RawTensor, error) {
	if typ.Kind != r.dtype {
		return nil, fmt.Errorf("%w: cannot retag %s storage as %s", ErrUnsupportedDType, r.dtype, typ.Kind)
	}
	v := r.Clone()
	v.quant = typ.Quant
	return v, nil
}

// Release decrements the reference count and frees the buffer when it reaches 0.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique returns true if this handle is the only reference to the buffer.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.refCount.Load() == 1
}
