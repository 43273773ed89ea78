// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public tensor surface of tensorcore.
//
// A Tensor wraps a RawTensor and an Env. Every operator on it dispatches
// to exactly one primitive operation on the Env's backend, or to a small
// fixed composition of them. Matrix products of any rank go through the
// matmul normalizer, which compiles and caches one subgraph per shape
// signature.
//
// Example:
//
//	import (
//	    "github.com/born-ml/tensorcore/backend/cpu"
//	    "github.com/born-ml/tensorcore/tensor"
//	)
//
//	env := tensor.NewEnv(cpu.New())
//	a, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, env)
//	b, _ := a.MatMul(a)
//	fmt.Println(b.Numpy())
//
// Quantized element types are created with the quant package and attached
// to values through Type.
package tensor
