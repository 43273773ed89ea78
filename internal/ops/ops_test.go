package ops

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorcore/internal/tensor"
)

func TestElemwiseModes(t *testing.T) {
	var unary, binary, cmps, logical []string
	for m := Negate; m <= EQ; m++ {
		if m.Arity() == 1 {
			unary = append(unary, m.String())
		} else {
			binary = append(binary, m.String())
		}
		if m.IsComparison() {
			cmps = append(cmps, m.String())
		}
		if m.IsLogical() {
			logical = append(logical, m.String())
		}
	}

	want := map[string][]string{
		"unary":   {"NEGATE", "ABS", "ROUND", "FLOOR", "CEIL", "NOT"},
		"binary":  {"ADD", "SUB", "MUL", "TRUE_DIV", "FLOOR_DIV", "MOD", "POW", "SHL", "SHR", "AND", "OR", "XOR", "LT", "LEQ", "EQ"},
		"compare": {"LT", "LEQ", "EQ"},
		"logical": {"NOT", "AND", "OR", "XOR"},
	}
	got := map[string][]string{"unary": unary, "binary": binary, "compare": cmps, "logical": logical}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mode classes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "ElemwiseMode(99)", ElemwiseMode(99).String())
}

func TestIndexResolve(t *testing.T) {
	type bounds struct{ Start, Stop, Step int }
	tests := []struct {
		name string
		item IndexItem
		n    int
		want bounds
	}{
		{"at", At(2), 5, bounds{2, 3, 1}},
		{"at negative", At(-1), 5, bounds{4, 5, 1}},
		{"range", Range(1, 3), 5, bounds{1, 3, 1}},
		{"range clamped", Range(-2, 10), 5, bounds{3, 5, 1}},
		{"range empty", Range(4, 2), 5, bounds{4, 4, 1}},
		{"stride", Stride(0, 5, 2), 5, bounds{0, 5, 2}},
		{"all", All(), 7, bounds{0, 7, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, stop, step, err := tt.item.Resolve(tt.n)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, bounds{start, stop, step}); diff != "" {
				t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, _, _, err := At(5).Resolve(5)
	assert.Error(t, err)
	_, _, _, err = Stride(0, 5, 0).Resolve(5)
	assert.Error(t, err)
	_, _, _, err = Ellipsis[0].Resolve(5)
	assert.Error(t, err)
}

func TestIndexString(t *testing.T) {
	idx := Index{At(1), Range(0, 2), Stride(1, 9, 3), All()}
	assert.Equal(t, "[1, 0:2, 1:9:3, :]", idx.String())
	assert.True(t, Ellipsis.IsEllipsis())
	assert.False(t, idx.IsEllipsis())
	assert.True(t, At(0).IsSingle())
	assert.False(t, All().IsSingle())
}

func TestComputeMode(t *testing.T) {
	for in, want := range map[string]ComputeMode{"": ComputeDefault, "default": ComputeDefault, " Float32 ": ComputeFloat32} {
		got, err := ParseComputeMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "%q", in)
	}
	_, err := ParseComputeMode("fp16")
	assert.Error(t, err)
}

func TestStrategy(t *testing.T) {
	s := Heuristic | Reproducible
	assert.True(t, s.Has(Heuristic))
	assert.False(t, s.Has(Profile))
	assert.False(t, s.Has(Heuristic|Profile))
	assert.Equal(t, "HEURISTIC|REPRODUCIBLE", s.String())
	assert.Equal(t, "none", Strategy(0).String())
}

func TestDescriptorStrings(t *testing.T) {
	got := []string{
		Elemwise{Mode: Add}.String(),
		TypeCvt{To: tensor.Plain(tensor.Bool)}.String(),
		ReduceAll(Sum).String(),
		MatrixMul{MatMulParam{TransposeA: true, Format: FormatMK4, Strategy: Profile}}.String(),
		AddAxis{Axis: 1}.String(),
		Transpose{}.String(),
		Subtensor{Head: true}.String(),
	}
	want := []string{
		"Elemwise(ADD)",
		"TypeCvt(bool)",
		"Reduce(sum)",
		"MatrixMul(transposeA=true, transposeB=false, compute_mode=default, format=MK4, strategy=PROFILE)",
		"AddAxis(1)",
		"Transpose(reverse)",
		"Subtensor([:idx])",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("descriptor strings mismatch (-want +got):\n%s", diff)
	}
}

type fakeExecutor struct {
	results []*tensor.RawTensor
	err     error
	seen    []Op
}

func (f *fakeExecutor) Apply(op Op, _ ...*tensor.RawTensor) ([]*tensor.RawTensor, error) {
	f.seen = append(f.seen, op)
	return f.results, f.err
}

func TestApply1(t *testing.T) {
	one := tensor.Int32Vector([]int{1}, tensor.CPU)

	exec := &fakeExecutor{results: []*tensor.RawTensor{one}}
	got, err := Apply1(exec, Dot{})
	require.NoError(t, err)
	assert.Same(t, one, got)
	assert.Equal(t, []Op{Dot{}}, exec.seen)

	exec = &fakeExecutor{results: []*tensor.RawTensor{one, one}}
	_, err = Apply1(exec, Dot{})
	assert.ErrorContains(t, err, "expected 1 result, got 2")

	boom := errors.New("boom")
	_, err = Apply1(&fakeExecutor{err: boom}, Dot{})
	assert.Same(t, boom, err)
}
