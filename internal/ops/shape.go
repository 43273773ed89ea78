package ops

import "fmt"

// Shape primitives. Shapes travel between them as rank-1 Int32 tensors so the
// same program works whether a shape is known up front or only at run time.

// GetVarShape returns the operand's shape as a rank-1 Int32 tensor.
type GetVarShape struct{}

// Name returns the primitive name.
func (GetVarShape) Name() string { return "GetVarShape" }

func (GetVarShape) String() string { return "GetVarShape" }

// Subtensor slices a rank-1 operand at a scalar Int32 index operand:
// x[:idx] when Head is set, x[idx:] otherwise. Negative indices count from the end.
type Subtensor struct {
	Head bool
}

// Name returns the primitive name.
func (Subtensor) Name() string { return "Subtensor" }

func (s Subtensor) String() string {
	if s.Head {
		return "Subtensor([:idx])"
	}
	return "Subtensor([idx:])"
}

// Concat joins its operands along Axis.
type Concat struct {
	Axis int
}

// Name returns the primitive name.
func (Concat) Name() string { return "Concat" }

func (c Concat) String() string { return fmt.Sprintf("Concat(axis=%d)", c.Axis) }

// Reshape takes (x, shape) and returns x viewed with the shape vector's contents.
type Reshape struct{}

// Name returns the primitive name.
func (Reshape) Name() string { return "Reshape" }

func (Reshape) String() string { return "Reshape" }

// Broadcast takes (x, shape) and expands x to the target shape.
type Broadcast struct{}

// Name returns the primitive name.
func (Broadcast) Name() string { return "Broadcast" }

func (Broadcast) String() string { return "Broadcast" }

// AddAxis inserts a unit axis at Axis.
type AddAxis struct {
	Axis int
}

// Name returns the primitive name.
func (AddAxis) Name() string { return "AddAxis" }

func (a AddAxis) String() string { return fmt.Sprintf("AddAxis(%d)", a.Axis) }

// RemoveAxis drops the unit axis at Axis.
type RemoveAxis struct {
	Axis int
}

// Name returns the primitive name.
func (RemoveAxis) Name() string { return "RemoveAxis" }

func (r RemoveAxis) String() string { return fmt.Sprintf("RemoveAxis(%d)", r.Axis) }

// Transpose permutes axes. A nil Perm reverses them.
type Transpose struct {
	Perm []int
}

// Name returns the primitive name.
func (Transpose) Name() string { return "Transpose" }

func (t Transpose) String() string {
	if t.Perm == nil {
		return "Transpose(reverse)"
	}
	return fmt.Sprintf("Transpose(%v)", t.Perm)
}
