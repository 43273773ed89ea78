package subgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorcore/internal/backend/cpu"
	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// flatten reshapes its input to a vector of its element count.
func flatten(b *Builder, in []Var) []Var {
	shape := b.Apply(ops.GetVarShape{}, in[0])
	n := b.Apply(ops.ReduceAxis(ops.Product, 0, true), shape)
	return []Var{b.Apply(ops.Reshape{}, in[0], n)}
}

func TestCompileAndRun(t *testing.T) {
	p, err := Compile("flatten", tensor.CPU, 1, flatten)
	require.NoError(t, err)
	assert.Equal(t, "flatten", p.Name())
	assert.Equal(t, 1, p.NumInputs())

	x, err := tensor.FromSlice([]int32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPU)
	require.NoError(t, err)

	out, err := p.Run(cpu.New(), x)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, tensor.Shape{6}, out[0].Shape())
	assert.Equal(t, []int32{1, 2, 3, 4, 5, 6}, out[0].AsInt32())
}

func TestConstants(t *testing.T) {
	p, err := Compile("head", tensor.CPU, 1, func(b *Builder, in []Var) []Var {
		return []Var{b.Apply(ops.Subtensor{Head: true}, in[0], b.Const(-1))}
	})
	require.NoError(t, err)

	out, err := p.Run(cpu.New(), tensor.Int32Vector([]int{7, 8, 9}, tensor.CPU))
	require.NoError(t, err)
	assert.Equal(t, []int32{7, 8}, out[0].AsInt32())

	p, err = Compile("const", tensor.CPU, 0, func(b *Builder, _ []Var) []Var {
		return []Var{b.Const(4, 5)}
	})
	require.NoError(t, err)
	out, err = p.Run(cpu.New())
	require.NoError(t, err)
	assert.Equal(t, []int32{4, 5}, out[0].AsInt32())
}

func TestDeadNodesPruned(t *testing.T) {
	p, err := Compile("prune", tensor.CPU, 2, func(b *Builder, in []Var) []Var {
		b.Apply(ops.GetVarShape{}, in[1])
		return []Var{b.Apply(ops.Elemwise{Mode: ops.Negate}, in[0])}
	})
	require.NoError(t, err)
	assert.Equal(t, []ops.Op{ops.Elemwise{Mode: ops.Negate}}, p.Ops())
}

func TestInline(t *testing.T) {
	inner, err := Compile("flatten", tensor.CPU, 1, flatten)
	require.NoError(t, err)

	b := NewBuilder("outer", tensor.CPU)
	x := b.Input()
	flat, err := inner.Inline(b, x)
	require.NoError(t, err)
	neg := b.Apply(ops.Elemwise{Mode: ops.Negate}, flat[0])
	outer, err := b.Build(neg)
	require.NoError(t, err)

	in, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.CPU)
	require.NoError(t, err)
	out, err := outer.Run(cpu.New(), in)
	require.NoError(t, err)
	assert.Equal(t, []float32{-1, -2, -3, -4}, out[0].AsFloat32())
	assert.Len(t, outer.Ops(), 4)
}

func TestErrors(t *testing.T) {
	_, err := Compile("empty", tensor.CPU, 1, func(*Builder, []Var) []Var { return nil })
	assert.ErrorIs(t, err, ErrEmptyProgram)

	other := NewBuilder("other", tensor.CPU)
	foreign := other.Input()
	_, err = Compile("foreign", tensor.CPU, 1, func(b *Builder, in []Var) []Var {
		return []Var{b.Apply(ops.Elemwise{Mode: ops.Add}, in[0], foreign)}
	})
	assert.ErrorIs(t, err, ErrForeignVar)

	_, err = Compile("foreign-output", tensor.CPU, 0, func(*Builder, []Var) []Var {
		return []Var{foreign}
	})
	assert.ErrorIs(t, err, ErrForeignVar)

	p, err := Compile("flatten", tensor.CPU, 1, flatten)
	require.NoError(t, err)
	_, err = p.Run(cpu.New())
	assert.ErrorIs(t, err, ErrInputCount)
	_, err = p.Inline(NewBuilder("b", tensor.CPU))
	assert.ErrorIs(t, err, ErrInputCount)

	s, err := tensor.Scalar(1.0, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	_, err = p.Run(cpu.New(), s)
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestVar(t *testing.T) {
	var zero Var
	assert.False(t, zero.Valid())

	b := NewBuilder("b", tensor.Metal)
	v := b.Input()
	assert.True(t, v.Valid())
	assert.Same(t, b, v.Builder())
	assert.Equal(t, tensor.Metal, b.Device())
	assert.Equal(t, "b", b.Name())
	assert.NoError(t, b.Err())
}
