package matmul

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/tensorcore/internal/backend/cpu"
	"github.com/born-ml/tensorcore/internal/config"
	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/subgraph"
	"github.com/born-ml/tensorcore/internal/tensor"
)

const (
	rows  = 2
	inner = 3
	cols  = 4
)

// batchDims are shared right-aligned by every operand so any two ranks are
// broadcast-compatible.
var batchDims = tensor.Shape{2, 3, 5}

func newNormalizer(opts ...Option) *Normalizer {
	opts = append([]Option{WithFlags(config.Flags{})}, opts...)
	return New(cpu.New(), opts...)
}

func operandShape(rank int, last tensor.Shape) tensor.Shape {
	if rank == 1 {
		return tensor.Shape{inner}
	}
	batch := batchDims[len(batchDims)-(rank-2):]
	return append(batch.Clone(), last...)
}

func filled(shape tensor.Shape, f func(i int) float64) []float64 {
	vals := make([]float64, shape.NumElements())
	for i := range vals {
		vals[i] = f(i)
	}
	return vals
}

func mustTensor(t *testing.T, vals []float64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(vals, shape, tensor.CPU)
	require.NoError(t, err)
	return raw
}

// reference computes the product with explicit loops. Batch shapes must be
// suffixes of one another.
func reference(a []float64, as tensor.Shape, b []float64, bs tensor.Shape) ([]float64, tensor.Shape) {
	removeRow, removeCol := len(as) == 1, len(bs) == 1
	if removeRow {
		as = tensor.Shape{1, as[0]}
	}
	if removeCol {
		bs = tensor.Shape{bs[0], 1}
	}
	batchA, batchB := as[:len(as)-2], bs[:len(bs)-2]
	batch := batchA
	if len(batchB) > len(batchA) {
		batch = batchB
	}
	m, k, n := as[len(as)-2], as[len(as)-1], bs[len(bs)-1]

	nBatch := batch.NumElements()
	out := make([]float64, nBatch*m*n)
	for bi := 0; bi < nBatch; bi++ {
		aOff := (bi % batchA.NumElements()) * m * k
		bOff := (bi % batchB.NumElements()) * k * n
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				var sum float64
				for kk := 0; kk < k; kk++ {
					sum += a[aOff+i*k+kk] * b[bOff+kk*n+j]
				}
				out[bi*m*n+i*n+j] = sum
			}
		}
	}

	shape := batch.Clone()
	if !removeRow {
		shape = append(shape, m)
	}
	if !removeCol {
		shape = append(shape, n)
	}
	return out, shape
}

func TestSelectPath(t *testing.T) {
	tests := []struct {
		d1, d2     int
		transposeA bool
		want       Path
	}{
		{1, 1, false, PathDot},
		{1, 1, true, PathDot},
		{2, 1, false, PathPlain},
		{1, 2, false, PathPlain},
		{2, 2, false, PathPlain},
		{2, 2, true, PathPlain},
		{3, 1, false, PathPlain},
		{4, 2, false, PathPlain},
		{3, 1, true, PathBatched},
		{3, 2, true, PathBatched},
		{3, 3, false, PathBatched},
		{1, 3, false, PathBatched},
		{2, 4, false, PathBatched},
		{5, 5, true, PathBatched},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dx%d/tA=%t", tt.d1, tt.d2, tt.transposeA), func(t *testing.T) {
			assert.Equal(t, tt.want, SelectPath(tt.d1, tt.d2, tt.transposeA))
		})
	}
}

func TestResultRank(t *testing.T) {
	assert.Equal(t, 0, ResultRank(1, 1))
	assert.Equal(t, 1, ResultRank(2, 1))
	assert.Equal(t, 1, ResultRank(1, 2))
	assert.Equal(t, 2, ResultRank(2, 2))
	assert.Equal(t, 2, ResultRank(1, 3))
	assert.Equal(t, 4, ResultRank(4, 3))
}

func TestMatMulRanks(t *testing.T) {
	n := newNormalizer()
	for d1 := 1; d1 <= 5; d1++ {
		for d2 := 1; d2 <= 5; d2++ {
			t.Run(fmt.Sprintf("%dx%d", d1, d2), func(t *testing.T) {
				as := operandShape(d1, tensor.Shape{rows, inner})
				bs := operandShape(d2, tensor.Shape{inner, cols})
				a := filled(as, func(i int) float64 { return float64(i%7 - 3) })
				b := filled(bs, func(i int) float64 { return float64(i%5 - 2) })

				got, err := n.MatMul(Concrete(mustTensor(t, a, as)), Concrete(mustTensor(t, b, bs)), Options{})
				require.NoError(t, err)

				want, wantShape := reference(a, as, b, bs)
				assert.Equal(t, wantShape, got.Tensor().Shape())
				assert.Equal(t, want, got.Tensor().AsFloat64())
				assert.Equal(t, ResultRank(d1, d2), got.Rank())
			})
		}
	}
}

func TestMatMul2x2(t *testing.T) {
	n := newNormalizer()
	a := mustTensor(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	b := mustTensor(t, []float64{5, 6, 7, 8}, tensor.Shape{2, 2})

	got, err := n.MatMul(Concrete(a), Concrete(b), Options{})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, got.Tensor().Shape())
	assert.Equal(t, []float64{19, 22, 43, 50}, got.Tensor().AsFloat64())
	assert.Zero(t, n.Cache().Builds(), "rank-2 operands need no program")
}

func TestMatMulVectors(t *testing.T) {
	n := newNormalizer()
	v := mustTensor(t, []float64{1, 2, 3}, tensor.Shape{3})
	w := mustTensor(t, []float64{4, 5, 6}, tensor.Shape{3})

	got, err := n.MatMul(Concrete(v), Concrete(w), Options{})
	require.NoError(t, err)
	assert.Empty(t, got.Tensor().Shape())
	assert.Equal(t, []float64{32}, got.Tensor().AsFloat64())

	m := mustTensor(t, []float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	ones := mustTensor(t, []float64{1, 1}, tensor.Shape{2})

	mv, err := n.MatMul(Concrete(m), Concrete(ones), Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 7}, mv.Tensor().AsFloat64())

	vm, err := n.MatMul(Concrete(ones), Concrete(m), Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6}, vm.Tensor().AsFloat64())
}

func TestMatMulTransposeA(t *testing.T) {
	n := newNormalizer()
	exec := cpu.New()
	as := tensor.Shape{5, inner, rows}
	a := mustTensor(t, filled(as, func(i int) float64 { return float64(i) }), as)
	b := mustTensor(t, filled(tensor.Shape{inner, cols}, func(i int) float64 { return float64(i % 3) }), tensor.Shape{inner, cols})

	got, err := n.MatMul(Concrete(a), Concrete(b), Options{TransposeA: true})
	require.NoError(t, err)

	at, err := ops.Apply1(exec, ops.Transpose{Perm: []int{0, 2, 1}}, a)
	require.NoError(t, err)
	want, err := n.MatMul(Concrete(at), Concrete(b), Options{})
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{5, rows, cols}, got.Tensor().Shape())
	assert.Equal(t, want.Tensor().AsFloat64(), got.Tensor().AsFloat64())
}

func TestMatMulErrors(t *testing.T) {
	n := newNormalizer()
	scalar, err := tensor.Scalar(1.0, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	vec := mustTensor(t, []float64{1, 2}, tensor.Shape{2})

	_, err = n.MatMul(Concrete(scalar), Concrete(vec), Options{})
	assert.ErrorIs(t, err, ErrScalarOperand)

	b := subgraph.NewBuilder("mixed", tensor.CPU)
	sym := Symbolic(b.Input(), 1, tensor.Plain(tensor.Float64), tensor.CPU)
	_, err = n.MatMul(Concrete(vec), sym, Options{})
	assert.ErrorIs(t, err, ErrMixedOperands)

	other := subgraph.NewBuilder("other", tensor.CPU)
	foreign := Symbolic(other.Input(), 2, tensor.Plain(tensor.Float64), tensor.CPU)
	_, err = n.MatMul(sym, foreign, Options{})
	assert.ErrorIs(t, err, ErrBuilderMismatch)

	bad := mustTensor(t, []float64{1, 2, 3}, tensor.Shape{3})
	_, err = n.MatMul(Concrete(vec), Concrete(bad), Options{})
	assert.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestCacheReuse(t *testing.T) {
	n := newNormalizer()
	a := mustTensor(t, filled(tensor.Shape{3, 2, 2}, func(i int) float64 { return float64(i) }), tensor.Shape{3, 2, 2})
	b := mustTensor(t, []float64{1, 0, 0, 1}, tensor.Shape{2, 2})
	a32, err := ops.Apply1(cpu.New(), ops.TypeCvt{To: tensor.Plain(tensor.Float32)}, a)
	require.NoError(t, err)

	run := func(x *tensor.RawTensor, opts Options) {
		t.Helper()
		_, err := n.MatMul(Concrete(x), Concrete(b), opts)
		require.NoError(t, err)
	}

	run(a, Options{})
	run(a, Options{})
	assert.EqualValues(t, 1, n.Cache().Builds(), "same key reuses the program")

	run(a, Options{TransposeB: true})
	assert.EqualValues(t, 2, n.Cache().Builds(), "transposeB is part of the key")

	run(a32, Options{})
	assert.EqualValues(t, 3, n.Cache().Builds(), "dtype is part of the key")

	run(a, Options{ComputeMode: ops.ComputeFloat32})
	assert.EqualValues(t, 4, n.Cache().Builds(), "compute mode is part of the key")

	run(a, Options{Format: ops.FormatMK4})
	assert.EqualValues(t, 5, n.Cache().Builds(), "format is part of the key")

	profiling := New(cpu.New(), WithCache(n.Cache()), WithFlags(config.Flags{Benchmark: true}))
	_, err = profiling.MatMul(Concrete(a), Concrete(b), Options{})
	require.NoError(t, err)
	assert.EqualValues(t, 6, n.Cache().Builds(), "strategy is part of the key")

	_, err = profiling.MatMul(Concrete(a), Concrete(b), Options{})
	require.NoError(t, err)
	assert.EqualValues(t, 6, n.Cache().Builds())
}

func TestCacheConcurrentBuild(t *testing.T) {
	c := NewCache()
	key := newNormalizer().Plan(4, 2, tensor.Plain(tensor.Float32), tensor.CPU, Options{})

	var wg sync.WaitGroup
	progs := make([]*subgraph.Program, 16)
	for i := range progs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := c.Get(key)
			assert.NoError(t, err)
			progs[i] = p
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, c.Builds())
	for _, p := range progs {
		assert.Same(t, progs[0], p)
	}
}

// recordingStore counts lookups on top of the default store.
type recordingStore struct {
	MapStore
	mu     sync.Mutex
	stored []Key
}

func (s *recordingStore) LoadOrStore(key Key, p *subgraph.Program) (*subgraph.Program, bool) {
	s.mu.Lock()
	s.stored = append(s.stored, key)
	s.mu.Unlock()
	return s.MapStore.LoadOrStore(key, p)
}

func TestCacheCustomStore(t *testing.T) {
	store := &recordingStore{}
	n := newNormalizer(WithCache(NewCache(WithStore(store))))
	a := mustTensor(t, filled(tensor.Shape{2, 2, 3}, func(i int) float64 { return 1 }), tensor.Shape{2, 2, 3})
	v := mustTensor(t, []float64{1, 2, 3}, tensor.Shape{3})

	got, err := n.MatMul(Concrete(a), Concrete(v), Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 6, 6, 6}, got.Tensor().AsFloat64())

	require.Len(t, store.stored, 1)
	assert.Equal(t, PathPlain, store.stored[0].Path)
	assert.Equal(t, 3, store.stored[0].D1)
	assert.Equal(t, 1, store.stored[0].D2)
}

func TestCompileOps(t *testing.T) {
	key := Key{Path: PathPlain, D1: 1, D2: 2, DType: "float32"}
	p, err := Compile(key)
	require.NoError(t, err)
	assert.Equal(t, PlainProgram, p.Name())

	var names []string
	for _, op := range p.Ops() {
		names = append(names, op.Name())
	}
	// shape vectors are never read on this path and are pruned
	assert.Equal(t, []string{"AddAxis", "MatrixMul", "RemoveAxis"}, names)

	_, err = Compile(Key{Path: PathDot})
	assert.Error(t, err)
}

func TestDirectBatched(t *testing.T) {
	n := newNormalizer()
	shape := tensor.Shape{2, 2, 2}
	a := mustTensor(t, []float64{1, 0, 0, 1, 2, 0, 0, 2}, shape)
	b := mustTensor(t, []float64{1, 2, 3, 4, 1, 2, 3, 4}, shape)

	got, err := n.MatMul(Concrete(a), Concrete(b), Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 2, 4, 6, 8}, got.Tensor().AsFloat64())
	assert.Zero(t, n.Cache().Builds())
}

func TestSymbolic(t *testing.T) {
	n := newNormalizer()
	b := subgraph.NewBuilder("caller", tensor.CPU)
	typ := tensor.Plain(tensor.Float64)
	x := Symbolic(b.Input(), 3, typ, tensor.CPU)
	y := Symbolic(b.Input(), 1, typ, tensor.CPU)

	out, err := n.MatMul(x, y, Options{})
	require.NoError(t, err)
	require.True(t, out.IsSymbolic())
	assert.Equal(t, 2, out.Rank())

	prog, err := b.Build(out.Var())
	require.NoError(t, err)

	as := tensor.Shape{5, rows, inner}
	av := filled(as, func(i int) float64 { return float64(i) })
	vv := []float64{1, -1, 2}
	results, err := prog.Run(cpu.New(), mustTensor(t, av, as), mustTensor(t, vv, tensor.Shape{inner}))
	require.NoError(t, err)

	want, wantShape := reference(av, as, vv, tensor.Shape{inner})
	assert.Equal(t, wantShape, results[0].Shape())
	assert.Equal(t, want, results[0].AsFloat64())
}

func TestSymbolicDot(t *testing.T) {
	n := newNormalizer()
	b := subgraph.NewBuilder("caller", tensor.CPU)
	typ := tensor.Plain(tensor.Float64)
	out, err := n.MatMul(Symbolic(b.Input(), 1, typ, tensor.CPU), Symbolic(b.Input(), 1, typ, tensor.CPU), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Rank())

	prog, err := b.Build(out.Var())
	require.NoError(t, err)
	assert.Equal(t, []ops.Op{ops.Dot{}}, prog.Ops())
}
