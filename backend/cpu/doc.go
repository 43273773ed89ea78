// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// The backend executes the primitive operation set:
//   - Element-wise arithmetic, comparison and logic with NumPy broadcasting
//   - Type conversion, including float16, bfloat16 and sub-byte kinds
//   - Reductions along one axis or over the whole tensor
//   - Dot, MatrixMul and BatchedMatrixMul (gonum BLAS for float kinds)
//   - Shape primitives used by compiled matmul subgraphs
//   - Subtensor indexing and index assignment
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/tensorcore/backend/cpu"
//	    "github.com/born-ml/tensorcore/tensor"
//	)
//
//	func main() {
//	    env := tensor.NewEnv(cpu.New(cpu.WithWorkers(4)))
//	    a, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, env)
//	    b, _ := a.MatMul(a)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Kernels never mutate their
// inputs and share no state between calls.
package cpu
