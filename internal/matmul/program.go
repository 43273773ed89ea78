package matmul

import (
	"fmt"

	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/subgraph"
)

// Program names.
const (
	PlainProgram   = "MatrixMulND"
	BatchedProgram = "BatchedMatrixMulND"
)

// Compile builds the shape-rewrite program for key. The program takes the
// two operands and returns their product.
func Compile(key Key) (*subgraph.Program, error) {
	switch key.Path {
	case PathPlain:
		return subgraph.Compile(PlainProgram, key.Device, 2, plainBody(key))
	case PathBatched:
		return subgraph.Compile(BatchedProgram, key.Device, 2, batchedBody(key))
	default:
		return nil, fmt.Errorf("no program for path %s", key.Path)
	}
}

// shapes wraps the primitives used to do arithmetic on shape vectors.
type shapes struct {
	b *subgraph.Builder
}

func (s shapes) of(x subgraph.Var) subgraph.Var {
	return s.b.Apply(ops.GetVarShape{}, x)
}

// head returns shape[:idx].
func (s shapes) head(shape subgraph.Var, idx int) subgraph.Var {
	return s.b.Apply(ops.Subtensor{Head: true}, shape, s.b.Const(idx))
}

// tail returns shape[idx:].
func (s shapes) tail(shape subgraph.Var, idx int) subgraph.Var {
	return s.b.Apply(ops.Subtensor{}, shape, s.b.Const(idx))
}

func (s shapes) concat(parts ...subgraph.Var) subgraph.Var {
	return s.b.Apply(ops.Concat{Axis: 0}, parts...)
}

// prod returns the product of a shape vector as a length-1 vector.
func (s shapes) prod(shape subgraph.Var) subgraph.Var {
	return s.b.Apply(ops.ReduceAxis(ops.Product, 0, true), shape)
}

func (s shapes) reshape(x, shape subgraph.Var) subgraph.Var {
	return s.b.Apply(ops.Reshape{}, x, shape)
}

// promotion records which operands were lifted from rank 1 to rank 2.
type promotion struct {
	d1, d2    int
	removeRow bool
	removeCol bool
}

func promote(s shapes, key Key, x, y subgraph.Var) (promotion, subgraph.Var, subgraph.Var) {
	p := promotion{d1: key.D1, d2: key.D2}
	if p.d1 == 1 {
		p.d1, p.removeRow = 2, true
		x = s.b.Apply(ops.AddAxis{Axis: 0}, x)
	}
	if p.d2 == 1 {
		p.d2, p.removeCol = 2, true
		y = s.b.Apply(ops.AddAxis{Axis: 1}, y)
	}
	return p, x, y
}

func (p promotion) undo(s shapes, result subgraph.Var) subgraph.Var {
	maxdim := max(p.d1, p.d2)
	if p.removeRow {
		result = s.b.Apply(ops.RemoveAxis{Axis: maxdim - 2}, result)
	}
	if p.removeCol {
		result = s.b.Apply(ops.RemoveAxis{Axis: maxdim - 1}, result)
	}
	return result
}

// plainBody lowers to one MatrixMul: leading dimensions of an operand with
// rank > 2 are folded into its rows and unfolded afterwards.
func plainBody(key Key) subgraph.Body {
	return func(b *subgraph.Builder, inputs []subgraph.Var) []subgraph.Var {
		s := shapes{b: b}
		p, x, y := promote(s, key, inputs[0], inputs[1])

		shape1, shape2 := s.of(x), s.of(y)
		if p.d1 > 2 {
			x = s.reshape(x, s.concat(s.prod(s.head(shape1, -1)), s.tail(shape1, -1)))
		}
		if p.d2 > 2 {
			y = s.reshape(y, s.concat(s.prod(s.head(shape2, -1)), s.tail(shape2, -1)))
		}

		result := b.Apply(ops.MatrixMul{MatMulParam: key.param()}, x, y)
		resultShape := s.of(result)
		if p.d1 > 2 {
			result = s.reshape(result, s.concat(s.head(shape1, -1), s.tail(resultShape, -1)))
		}
		if p.d2 > 2 {
			result = s.reshape(result, s.concat(s.head(shape2, -1), s.tail(resultShape, -1)))
		}
		return []subgraph.Var{p.undo(s, result)}
	}
}

// batchedBody lowers to one BatchedMatrixMul: the shorter operand is
// broadcast to the longer one's batch shape and batch dimensions beyond one
// are collapsed and restored around the multiply.
func batchedBody(key Key) subgraph.Body {
	return func(b *subgraph.Builder, inputs []subgraph.Var) []subgraph.Var {
		s := shapes{b: b}
		p, x, y := promote(s, key, inputs[0], inputs[1])

		shape1, shape2 := s.of(x), s.of(y)
		maxdim := max(p.d1, p.d2)
		var batch subgraph.Var
		switch {
		case p.d1 > p.d2:
			shape2 = s.concat(s.head(shape1, -p.d2), shape2)
			y = b.Apply(ops.Broadcast{}, y, shape2)
			batch = s.head(shape1, -2)
		case p.d2 > p.d1:
			shape1 = s.concat(s.head(shape2, -p.d1), shape1)
			x = b.Apply(ops.Broadcast{}, x, shape1)
			batch = s.head(shape2, -2)
		default:
			batch = s.head(shape1, -2)
		}

		if maxdim > 3 {
			x = s.reshape(x, s.concat(s.prod(batch), s.tail(shape1, -2)))
			y = s.reshape(y, s.concat(s.prod(batch), s.tail(shape2, -2)))
		}
		result := b.Apply(ops.BatchedMatrixMul{MatMulParam: key.param()}, x, y)
		if maxdim > 3 {
			result = s.reshape(result, s.concat(batch, s.tail(s.of(result), -2)))
		}
		return []subgraph.Var{p.undo(s, result)}
	}
}
