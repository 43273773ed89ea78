package ops

import (
	"fmt"
	"strings"
)

// ComputeMode selects the accumulation precision of matrix multiplies.
type ComputeMode int

// Compute modes.
const (
	ComputeDefault ComputeMode = iota
	ComputeFloat32
)

func (m ComputeMode) String() string {
	if m == ComputeFloat32 {
		return "float32"
	}
	return "default"
}

// ParseComputeMode parses "default" or "float32".
func ParseComputeMode(s string) (ComputeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return ComputeDefault, nil
	case "float32":
		return ComputeFloat32, nil
	}
	return ComputeDefault, fmt.Errorf("unknown compute mode %q", s)
}

// Format selects the operand memory layout.
type Format int

// Operand formats.
const (
	FormatDefault Format = iota
	FormatMK4
	FormatMK8
)

func (f Format) String() string {
	switch f {
	case FormatMK4:
		return "MK4"
	case FormatMK8:
		return "MK8"
	default:
		return "default"
	}
}

// Strategy is a bit set steering kernel selection.
type Strategy uint8

// Strategy flags.
const (
	Heuristic Strategy = 1 << iota
	Profile
	Reproducible
	Optimized
)

// Has reports whether every flag in f is set.
func (s Strategy) Has(f Strategy) bool {
	return s&f == f
}

func (s Strategy) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for _, f := range []struct {
		flag Strategy
		name string
	}{{Heuristic, "HEURISTIC"}, {Profile, "PROFILE"}, {Reproducible, "REPRODUCIBLE"}, {Optimized, "OPTIMIZED"}} {
		if s.Has(f.flag) {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}

// MatMulParam are the parameters shared by both matrix multiply primitives.
type MatMulParam struct {
	TransposeA  bool
	TransposeB  bool
	ComputeMode ComputeMode
	Format      Format
	Strategy    Strategy
}

func (p MatMulParam) String() string {
	return fmt.Sprintf("transposeA=%t, transposeB=%t, compute_mode=%s, format=%s, strategy=%s",
		p.TransposeA, p.TransposeB, p.ComputeMode, p.Format, p.Strategy)
}

// Dot is the inner product of two rank-1 operands. The result has rank 0.
type Dot struct{}

// Name returns the primitive name.
func (Dot) Name() string { return "Dot" }

func (Dot) String() string { return "Dot" }

// MatrixMul multiplies two rank-2 operands.
type MatrixMul struct {
	MatMulParam
}

// Name returns the primitive name.
func (MatrixMul) Name() string { return "MatrixMul" }

func (m MatrixMul) String() string { return fmt.Sprintf("MatrixMul(%s)", m.MatMulParam) }

// BatchedMatrixMul multiplies two rank-3 operands with equal leading (batch) dimension.
type BatchedMatrixMul struct {
	MatMulParam
}

// Name returns the primitive name.
func (BatchedMatrixMul) Name() string { return "BatchedMatrixMul" }

func (m BatchedMatrixMul) String() string {
	return fmt.Sprintf("BatchedMatrixMul(%s)", m.MatMulParam)
}
