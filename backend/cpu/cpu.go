// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/tensorcore/internal/backend/cpu"
	"github.com/born-ml/tensorcore/internal/parallel"
	"github.com/born-ml/tensorcore/tensor"
)

// Backend represents the CPU backend implementation.
//
// It executes every primitive operation in pure Go. Matrix kernels use
// gonum BLAS for float32 and float64 operands.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option = internalcpu.Option

// WithWorkers bounds the goroutines a kernel may fan out to.
// Values below 2 make every kernel run sequentially.
func WithWorkers(n int) Option {
	cfg := parallel.DefaultConfig()
	cfg.NumWorkers = n
	cfg.Enabled = n > 1
	return internalcpu.WithParallel(cfg)
}

// Sequential disables parallel kernels.
func Sequential() Option {
	return internalcpu.WithParallel(parallel.Sequential())
}

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/born-ml/tensorcore/backend/cpu"
//	    "github.com/born-ml/tensorcore/tensor"
//	)
//
//	func main() {
//	    env := tensor.NewEnv(cpu.New())
//	    x, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, env)
//	}
func New(opts ...Option) *Backend {
	return internalcpu.New(opts...)
}
