// Package dispatch maps tensor operators onto primitive operations.
//
// Every operator produces exactly one primitive invocation, or a fixed small
// composition of them, through the Env's executor. Methods implements the
// operator set over any Host; Tensor is the concrete host over a RawTensor.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/born-ml/tensorcore/internal/matmul"
	"github.com/born-ml/tensorcore/internal/ops"
	"github.com/born-ml/tensorcore/internal/tensor"
)

// Methods is the operator set bound to one host.
type Methods struct {
	self Host
	env  *Env
}

// NewMethods binds the operator set to self.
func NewMethods(self Host, env *Env) Methods {
	return Methods{self: self, env: env}
}

// Env returns the collaborators the operators dispatch to.
func (m Methods) Env() *Env {
	return m.env
}

// DType returns the element type of the current value.
func (m Methods) DType() tensor.Type {
	return m.self.Value().Type()
}

func (m Methods) wrap(raw *tensor.RawTensor) *Tensor {
	return New(raw, m.env)
}

func (m Methods) apply(op ops.Op, inputs ...*tensor.RawTensor) (*tensor.RawTensor, error) {
	return ops.Apply1(m.env.exec, op, inputs...)
}

// operand converts the other side of a binary operator. Go scalars take the
// receiver's storage kind.
func (m Methods) operand(v any) (*tensor.RawTensor, error) {
	switch x := v.(type) {
	case Host:
		return x.Value(), nil
	case *tensor.RawTensor:
		return x, nil
	}
	if _, ok := tensor.ScalarKind(v); ok {
		self := m.self.Value()
		return tensor.Scalar(v, self.DType(), self.Device())
	}
	return nil, fmt.Errorf("%w: operand of type %T", ErrNotImplemented, v)
}

func (m Methods) elemwise(mode ops.ElemwiseMode, inputs ...*tensor.RawTensor) (*Tensor, error) {
	raw, err := m.apply(ops.Elemwise{Mode: mode}, inputs...)
	if err != nil {
		return nil, err
	}
	return m.wrap(raw), nil
}

// Comparisons.

func (m Methods) compare(sym Symbol, other any) (*Tensor, error) {
	c := comparisons[sym]
	y, err := m.operand(other)
	if err != nil {
		return nil, err
	}
	x := m.self.Value()
	if c.swap {
		x, y = y, x
	}
	raw, err := m.apply(ops.Elemwise{Mode: c.mode}, x, y)
	if err != nil {
		return nil, err
	}
	if raw, err = m.apply(ops.TypeCvt{To: tensor.Plain(tensor.Bool)}, raw); err != nil {
		return nil, err
	}
	if c.negate {
		if raw, err = m.apply(ops.Elemwise{Mode: ops.Not}, raw); err != nil {
			return nil, err
		}
	}
	return m.wrap(raw), nil
}

// Lt returns self < other elementwise.
func (m Methods) Lt(other any) (*Tensor, error) { return m.compare(SymLt, other) }

// Le returns self <= other elementwise.
func (m Methods) Le(other any) (*Tensor, error) { return m.compare(SymLe, other) }

// Gt returns self > other, computed as other < self.
func (m Methods) Gt(other any) (*Tensor, error) { return m.compare(SymGt, other) }

// Ge returns self >= other, computed as other <= self.
func (m Methods) Ge(other any) (*Tensor, error) { return m.compare(SymGe, other) }

// Eq returns self == other elementwise.
func (m Methods) Eq(other any) (*Tensor, error) { return m.compare(SymEq, other) }

// Ne returns NOT(self == other).
func (m Methods) Ne(other any) (*Tensor, error) { return m.compare(SymNe, other) }

// Unary operators.

func (m Methods) unary(sym Symbol) (*Tensor, error) {
	mode := unaryModes[sym]
	x := m.self.Value()
	if mode.IsLogical() && x.DType() != tensor.Bool {
		return nil, &TypeError{Op: string(sym), Msg: fmt.Sprintf("%s requires a bool tensor", mode)}
	}
	return m.elemwise(mode, x)
}

// Neg returns -self.
func (m Methods) Neg() (*Tensor, error) { return m.unary(SymNeg) }

// Abs returns |self|.
func (m Methods) Abs() (*Tensor, error) { return m.unary(SymAbs) }

// Round rounds half away from zero.
func (m Methods) Round() (*Tensor, error) { return m.unary(SymRound) }

// Floor rounds toward negative infinity.
func (m Methods) Floor() (*Tensor, error) { return m.unary(SymFloor) }

// Ceil rounds toward positive infinity.
func (m Methods) Ceil() (*Tensor, error) { return m.unary(SymCeil) }

// Invert is logical NOT of a bool tensor.
func (m Methods) Invert() (*Tensor, error) { return m.unary(SymInvert) }

// Pos returns a handle to the current value without running a primitive.
func (m Methods) Pos() *Tensor {
	return m.wrap(m.self.Value())
}

// Trunc has no primitive.
func (m Methods) Trunc() (*Tensor, error) {
	return nil, fmt.Errorf("trunc: %w", ErrNotImplemented)
}

// Binary operators.

func (m Methods) binary(sym Symbol, other any, reflected bool) (*Tensor, error) {
	mode := binaryModes[sym]
	y, err := m.operand(other)
	if err != nil {
		return nil, err
	}
	x := m.self.Value()
	if mode.IsLogical() && (x.DType() != tensor.Bool || y.DType() != tensor.Bool) {
		return nil, &TypeError{Op: string(sym), Msg: fmt.Sprintf("%s requires 2 bool tensors", mode)}
	}
	if reflected {
		x, y = y, x
	}
	return m.elemwise(mode, x, y)
}

// Add returns self + other.
func (m Methods) Add(other any) (*Tensor, error) { return m.binary(SymAdd, other, false) }

// Sub returns self - other.
func (m Methods) Sub(other any) (*Tensor, error) { return m.binary(SymSub, other, false) }

// Mul returns self * other.
func (m Methods) Mul(other any) (*Tensor, error) { return m.binary(SymMul, other, false) }

// TrueDiv returns self / other as floating point.
func (m Methods) TrueDiv(other any) (*Tensor, error) { return m.binary(SymTrueDiv, other, false) }

// FloorDiv returns floor(self / other).
func (m Methods) FloorDiv(other any) (*Tensor, error) { return m.binary(SymFloorDiv, other, false) }

// Mod returns self mod other with the sign of other.
func (m Methods) Mod(other any) (*Tensor, error) { return m.binary(SymMod, other, false) }

// Pow returns self ** other.
func (m Methods) Pow(other any) (*Tensor, error) { return m.binary(SymPow, other, false) }

// Shl returns self << other.
func (m Methods) Shl(other any) (*Tensor, error) { return m.binary(SymShl, other, false) }

// Shr returns self >> other.
func (m Methods) Shr(other any) (*Tensor, error) { return m.binary(SymShr, other, false) }

// And is logical AND of two bool tensors.
func (m Methods) And(other any) (*Tensor, error) { return m.binary(SymAnd, other, false) }

// Or is logical OR of two bool tensors.
func (m Methods) Or(other any) (*Tensor, error) { return m.binary(SymOr, other, false) }

// Xor is logical XOR of two bool tensors.
func (m Methods) Xor(other any) (*Tensor, error) { return m.binary(SymXor, other, false) }

// RAdd returns other + self.
func (m Methods) RAdd(other any) (*Tensor, error) { return m.binary(SymAdd, other, true) }

// RSub returns other - self.
func (m Methods) RSub(other any) (*Tensor, error) { return m.binary(SymSub, other, true) }

// RMul returns other * self.
func (m Methods) RMul(other any) (*Tensor, error) { return m.binary(SymMul, other, true) }

// RTrueDiv returns other / self.
func (m Methods) RTrueDiv(other any) (*Tensor, error) { return m.binary(SymTrueDiv, other, true) }

// RFloorDiv returns floor(other / self).
func (m Methods) RFloorDiv(other any) (*Tensor, error) { return m.binary(SymFloorDiv, other, true) }

// RMod returns other mod self.
func (m Methods) RMod(other any) (*Tensor, error) { return m.binary(SymMod, other, true) }

// RPow returns other ** self.
func (m Methods) RPow(other any) (*Tensor, error) { return m.binary(SymPow, other, true) }

// RShl returns other << self.
func (m Methods) RShl(other any) (*Tensor, error) { return m.binary(SymShl, other, true) }

// RShr returns other >> self.
func (m Methods) RShr(other any) (*Tensor, error) { return m.binary(SymShr, other, true) }

// RAnd returns other AND self.
func (m Methods) RAnd(other any) (*Tensor, error) { return m.binary(SymAnd, other, true) }

// ROr returns other OR self.
func (m Methods) ROr(other any) (*Tensor, error) { return m.binary(SymOr, other, true) }

// RXor returns other XOR self.
func (m Methods) RXor(other any) (*Tensor, error) { return m.binary(SymXor, other, true) }

// Matrix multiplication.

// MatMul returns self @ other.
func (m Methods) MatMul(other any) (*Tensor, error) {
	return m.MatMulWith(other, matmul.Options{})
}

// RMatMul returns other @ self.
func (m Methods) RMatMul(other any) (*Tensor, error) {
	y, err := m.operand(other)
	if err != nil {
		return nil, err
	}
	return m.matmul(y, m.self.Value(), matmul.Options{})
}

// MatMulWith returns self @ other with explicit transposes, compute mode and format.
func (m Methods) MatMulWith(other any, opts matmul.Options) (*Tensor, error) {
	y, err := m.operand(other)
	if err != nil {
		return nil, err
	}
	return m.matmul(m.self.Value(), y, opts)
}

func (m Methods) matmul(x, y *tensor.RawTensor, opts matmul.Options) (*Tensor, error) {
	out, err := m.env.matmul.MatMul(matmul.Concrete(x), matmul.Concrete(y), opts)
	if err != nil {
		return nil, err
	}
	return m.wrap(out.Tensor()), nil
}

// In-place operators rebind the host to the out-of-place result.

func (m Methods) inplace(f func(any) (*Tensor, error), other any) error {
	result, err := f(other)
	if errors.Is(err, ErrNotImplemented) {
		return ErrNotImplemented
	}
	if err != nil {
		return err
	}
	m.self.Reset(result.Value())
	return nil
}

// IAdd rebinds self to self + other.
func (m Methods) IAdd(other any) error { return m.inplace(m.Add, other) }

// ISub rebinds self to self - other.
func (m Methods) ISub(other any) error { return m.inplace(m.Sub, other) }

// IMul rebinds self to self * other.
func (m Methods) IMul(other any) error { return m.inplace(m.Mul, other) }

// IMatMul rebinds self to self @ other.
func (m Methods) IMatMul(other any) error { return m.inplace(m.MatMul, other) }

// ITrueDiv rebinds self to self / other.
func (m Methods) ITrueDiv(other any) error { return m.inplace(m.TrueDiv, other) }

// IFloorDiv rebinds self to self // other.
func (m Methods) IFloorDiv(other any) error { return m.inplace(m.FloorDiv, other) }

// IMod rebinds self to self mod other.
func (m Methods) IMod(other any) error { return m.inplace(m.Mod, other) }

// IPow rebinds self to self ** other.
func (m Methods) IPow(other any) error { return m.inplace(m.Pow, other) }

// IShl rebinds self to self << other.
func (m Methods) IShl(other any) error { return m.inplace(m.Shl, other) }

// IShr rebinds self to self >> other.
func (m Methods) IShr(other any) error { return m.inplace(m.Shr, other) }

// IAnd rebinds self to self AND other.
func (m Methods) IAnd(other any) error { return m.inplace(m.And, other) }

// IOr rebinds self to self OR other.
func (m Methods) IOr(other any) error { return m.inplace(m.Or, other) }

// IXor rebinds self to self XOR other.
func (m Methods) IXor(other any) error { return m.inplace(m.Xor, other) }

// Apply runs the operator named by sym. Unary operators ignore other.
func (m Methods) Apply(sym Symbol, other any) (*Tensor, error) {
	if _, ok := comparisons[sym]; ok {
		return m.compare(sym, other)
	}
	if _, ok := unaryModes[sym]; ok {
		return m.unary(sym)
	}
	if _, ok := binaryModes[sym]; ok {
		return m.binary(sym, other, false)
	}
	return nil, fmt.Errorf("%w: operator %q", ErrNotImplemented, sym)
}
