package matmul

import (
	"fmt"

	"github.com/born-ml/tensorcore/internal/config"
	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/subgraph"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// Operand is either a concrete tensor or a symbolic placeholder inside a
// program being built.
type Operand struct {
	raw    *tensor.RawTensor
	sym    subgraph.Var
	rank   int
	typ    tensor.Type
	device tensor.Device
}

// Concrete wraps a tensor.
func Concrete(raw *tensor.RawTensor) Operand {
	return Operand{raw: raw, rank: len(raw.Shape()), typ: raw.Type(), device: raw.Device()}
}

// Symbolic wraps a builder placeholder whose rank and type are known
// statically.
func Symbolic(v subgraph.Var, rank int, typ tensor.Type, device tensor.Device) Operand {
	return Operand{sym: v, rank: rank, typ: typ, device: device}
}

// IsSymbolic reports whether o is a placeholder.
func (o Operand) IsSymbolic() bool {
	return o.raw == nil
}

// Tensor returns the concrete tensor, or nil for a symbolic operand.
func (o Operand) Tensor() *tensor.RawTensor {
	return o.raw
}

// Var returns the placeholder of a symbolic operand.
func (o Operand) Var() subgraph.Var {
	return o.sym
}

// Rank returns the operand rank.
func (o Operand) Rank() int {
	return o.rank
}

// Type returns the operand element type.
func (o Operand) Type() tensor.Type {
	return o.typ
}

// Options are the per-call multiplication parameters.
type Options struct {
	TransposeA  bool
	TransposeB  bool
	ComputeMode ops.ComputeMode
	Format      ops.Format
}

// Normalizer lowers multiplications of any rank onto fixed-rank primitives.
type Normalizer struct {
	exec  ops.Executor
	cache *Cache
	flags config.Flags
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithCache shares a program cache between normalizers.
func WithCache(c *Cache) Option {
	return func(n *Normalizer) {
		n.cache = c
	}
}

// WithFlags overrides the kernel selection flags read from the environment.
func WithFlags(f config.Flags) Option {
	return func(n *Normalizer) {
		n.flags = f
	}
}

// New creates a normalizer that runs concrete operands on exec.
func New(exec ops.Executor, opts ...Option) *Normalizer {
	n := &Normalizer{exec: exec, flags: config.FromEnv()}
	for _, opt := range opts {
		opt(n)
	}
	if n.cache == nil {
		n.cache = NewCache()
	}
	return n
}

// Cache returns the program cache.
func (n *Normalizer) Cache() *Cache {
	return n.cache
}

// Flags returns the kernel selection flags in effect.
func (n *Normalizer) Flags() config.Flags {
	return n.flags
}

// Plan returns the cache key for multiplying a rank-d1 operand of type typ
// by a rank-d2 operand.
func (n *Normalizer) Plan(d1, d2 int, typ tensor.Type, device tensor.Device, opts Options) Key {
	return Key{
		Device:      device,
		DType:       typ.String(),
		D1:          d1,
		D2:          d2,
		TransposeA:  opts.TransposeA,
		TransposeB:  opts.TransposeB,
		ComputeMode: n.flags.ResolveComputeMode(opts.ComputeMode),
		Format:      opts.Format,
		Strategy:    n.flags.Strategy(),
		Path:        SelectPath(d1, d2, opts.TransposeA),
	}
}

// MatMul multiplies a by b. Both operands must be concrete, or both symbolic
// placeholders of the same builder; the result has the same form.
func (n *Normalizer) MatMul(a, b Operand, opts Options) (Operand, error) {
	if a.rank == 0 || b.rank == 0 {
		return Operand{}, fmt.Errorf("%w: ranks %d and %d", ErrScalarOperand, a.rank, b.rank)
	}
	if a.IsSymbolic() != b.IsSymbolic() {
		return Operand{}, ErrMixedOperands
	}

	key := n.Plan(a.rank, b.rank, a.typ, a.device, opts)
	if a.IsSymbolic() {
		return n.trace(key, a, b)
	}

	var (
		raw *tensor.RawTensor
		err error
	)
	switch {
	case key.Path == PathDot:
		raw, err = ops.Apply1(n.exec, ops.Dot{}, a.raw, b.raw)
	case isDirect(key, a, b):
		raw, err = ops.Apply1(n.exec, directOp(key), a.raw, b.raw)
	default:
		var prog *subgraph.Program
		if prog, err = n.cache.Get(key); err != nil {
			return Operand{}, err
		}
		var results []*tensor.RawTensor
		if results, err = prog.Run(n.exec, a.raw, b.raw); err == nil {
			raw = results[0]
		}
	}
	if err != nil {
		return Operand{}, err
	}
	return Concrete(raw), nil
}

func (n *Normalizer) trace(key Key, a, b Operand) (Operand, error) {
	builder := a.sym.Builder()
	if b.sym.Builder() != builder {
		return Operand{}, ErrBuilderMismatch
	}

	var out subgraph.Var
	switch key.Path {
	case PathDot:
		out = builder.Apply(ops.Dot{}, a.sym, b.sym)
	default:
		if key.D1 == 2 && key.D2 == 2 {
			out = builder.Apply(directOp(key), a.sym, b.sym)
			break
		}
		prog, err := n.cache.Get(key)
		if err != nil {
			return Operand{}, err
		}
		outs, err := prog.Inline(builder, a.sym, b.sym)
		if err != nil {
			return Operand{}, err
		}
		out = outs[0]
	}
	if err := builder.Err(); err != nil {
		return Operand{}, err
	}
	return Symbolic(out, ResultRank(key.D1, key.D2), a.typ, a.device), nil
}

// isDirect reports whether the operands already have the primitive's rank,
// so no shape rewriting is needed.
func isDirect(key Key, a, b Operand) bool {
	switch {
	case key.D1 == 2 && key.D2 == 2:
		return true
	case key.Path == PathBatched && key.D1 == 3 && key.D2 == 3:
		return a.raw.Shape()[0] == b.raw.Shape()[0]
	}
	return false
}

func directOp(key Key) ops.Op {
	if key.Path == PathBatched {
		return ops.BatchedMatrixMul{MatMulParam: key.param()}
	}
	return ops.MatrixMul{MatMulParam: key.param()}
}
