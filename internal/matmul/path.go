// Package matmul maps matrix multiplication of operands of any rank onto the
// three fixed-rank primitives: Dot (1x1), MatrixMul (2x2) and
// BatchedMatrixMul (3x3).
//
// Rank promotion, broadcasting and batch collapsing are expressed as small
// shape-rewrite programs (see package subgraph). Programs are built once per
// Key and cached; concrete operands run them on an executor, symbolic
// operands inline them into the caller's builder.
package matmul

import "fmt"

// Path is the primitive a multiplication is lowered to.
type Path int

// Lowering paths.
const (
	PathDot Path = iota
	PathPlain
	PathBatched
)

func (p Path) String() string {
	switch p {
	case PathDot:
		return "dot"
	case PathPlain:
		return "matrix_mul"
	case PathBatched:
		return "batched_matrix_mul"
	default:
		return fmt.Sprintf("Path(%d)", int(p))
	}
}

// SelectPath picks the lowering for operand ranks d1 and d2. Both ranks must
// be positive.
//
//	1 x 1                       -> dot
//	2x1, 1x2, 2x2               -> matrix_mul
//	n x {1,2}, n>=3, !transposeA -> matrix_mul (leading dims collapsed into rows)
//	everything else             -> batched_matrix_mul
func SelectPath(d1, d2 int, transposeA bool) Path {
	switch {
	case d1 == 1 && d2 == 1:
		return PathDot
	case max(d1, d2) <= 2 || (d2 <= 2 && !transposeA):
		return PathPlain
	default:
		return PathBatched
	}
}

// ResultRank returns the rank of the product of rank-d1 and rank-d2 operands.
func ResultRank(d1, d2 int) int {
	if d1 == 1 && d2 == 1 {
		return 0
	}
	rank := max(d1, d2, 2)
	if d1 == 1 {
		rank--
	}
	if d2 == 1 {
		rank--
	}
	return rank
}
