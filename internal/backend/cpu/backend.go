// Package cpu implements the reference executor: every primitive descriptor
// from package ops evaluated on host memory.
package cpu

import (
	"fmt"

	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/parallel"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// Verify that CPUBackend implements the collaborator interfaces.
var (
	_ ops.Executor = (*CPUBackend)(nil)
	_ ops.Indexer  = (*CPUBackend)(nil)
)

// CPUBackend executes primitives on the CPU. It holds no mutable state and is
// safe for concurrent use.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// Option configures a CPUBackend.
type Option func(*CPUBackend)

// WithParallel sets the worker configuration used by batched kernels.
func WithParallel(cfg parallel.Config) Option {
	return func(cpu *CPUBackend) {
		cpu.parallel = cfg
	}
}

// New creates a new CPU backend.
func New(opts ...Option) *CPUBackend {
	cpu := &CPUBackend{
		device:   tensor.CPU,
		parallel: parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(cpu)
	}
	return cpu
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Apply executes one primitive descriptor.
func (cpu *CPUBackend) Apply(op ops.Op, inputs ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	result, err := cpu.apply(op, inputs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return []*tensor.RawTensor{result}, nil
}

func (cpu *CPUBackend) apply(op ops.Op, in []*tensor.RawTensor) (*tensor.RawTensor, error) {
	switch o := op.(type) {
	case ops.Elemwise:
		if err := arity(in, o.Mode.Arity()); err != nil {
			return nil, err
		}
		return cpu.elemwise(o.Mode, in)
	case ops.TypeCvt:
		if err := arity(in, 1); err != nil {
			return nil, err
		}
		return cpu.typeCvt(in[0], o.To)
	case ops.Reduce:
		if err := arity(in, 1); err != nil {
			return nil, err
		}
		return cpu.reduce(in[0], o)
	case ops.Dot:
		if err := arity(in, 2); err != nil {
			return nil, err
		}
		return cpu.dot(in[0], in[1])
	case ops.MatrixMul:
		if err := arity(in, 2); err != nil {
			return nil, err
		}
		return cpu.matmul(in[0], in[1], o.MatMulParam)
	case ops.BatchedMatrixMul:
		if err := arity(in, 2); err != nil {
			return nil, err
		}
		return cpu.batchedMatmul(in[0], in[1], o.MatMulParam)
	case ops.GetVarShape:
		if err := arity(in, 1); err != nil {
			return nil, err
		}
		return cpu.getVarShape(in[0])
	case ops.Subtensor:
		if err := arity(in, 2); err != nil {
			return nil, err
		}
		return cpu.subtensor(in[0], in[1], o.Head)
	case ops.Concat:
		if len(in) == 0 {
			return nil, fmt.Errorf("concat: no operands")
		}
		return cpu.concat(in, o.Axis)
	case ops.Reshape:
		if err := arity(in, 2); err != nil {
			return nil, err
		}
		return cpu.reshape(in[0], in[1])
	case ops.Broadcast:
		if err := arity(in, 2); err != nil {
			return nil, err
		}
		return cpu.broadcast(in[0], in[1])
	case ops.AddAxis:
		if err := arity(in, 1); err != nil {
			return nil, err
		}
		return cpu.addAxis(in[0], o.Axis)
	case ops.RemoveAxis:
		if err := arity(in, 1); err != nil {
			return nil, err
		}
		return cpu.removeAxis(in[0], o.Axis)
	case ops.Transpose:
		if err := arity(in, 1); err != nil {
			return nil, err
		}
		return cpu.transpose(in[0], o.Perm)
	default:
		return nil, fmt.Errorf("unsupported primitive %s", op.Name())
	}
}

func arity(in []*tensor.RawTensor, n int) error {
	if len(in) != n {
		return fmt.Errorf("expected %d operands, got %d", n, len(in))
	}
	return nil
}
