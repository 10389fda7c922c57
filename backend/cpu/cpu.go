// Copyright 2025 The Strided Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"context"

	internalcpu "github.com/strided-ml/strided/internal/backend/cpu"
	"github.com/strided-ml/strided/internal/parallel"
	"github.com/strided-ml/strided/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// ParallelConfig controls how batched kernels are split across goroutines.
type ParallelConfig = parallel.Config

// New creates a CPU backend that runs on the calling goroutine.
//
// Example:
//
//	import (
//	    "github.com/strided-ml/strided/backend/cpu"
//	    "github.com/strided-ml/strided/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    a, _ := tensor.Zeros[float32](4, 2, 3)
//	    b, _ := tensor.Zeros[float32](3, 5)
//	    out, _ := tensor.Zeros[float32](4, 2, 5)
//	    _ = cpu.MatMulContext(context.Background(), backend, a, b, out)
//	}
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend that splits the outermost batch axis
// of MatMul across cfg.NumWorkers goroutines.
func NewWithConfig(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithConfig(cfg)
}

// DefaultParallelConfig returns a config using one worker per CPU.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// WithWorkers returns a config using n workers; n <= 1 runs sequentially.
func WithWorkers(n int) ParallelConfig {
	return parallel.WithWorkers(n)
}

// MatMul computes out = x1 @ x2 with batch broadcasting over leading axes.
//
// Rank-1 operands are promoted to matrices: a left vector is a row,
// a right vector is a column. The lower-rank operand is reused for every
// leading batch index of the higher-rank one.
//
// Example:
//
//	// [2, 2] @ [3, 2, 2] -> [3, 2, 2]
//	err := cpu.MatMul(weights, batch, out)
func MatMul[T tensor.Number](x1, x2, out *tensor.Tensor[T]) error {
	return internalcpu.MatMul(x1, x2, out)
}

// MatMulContext is MatMul on an explicit backend. Cancelling ctx stops
// batch items that have not started yet.
func MatMulContext[T tensor.Number](ctx context.Context, b *Backend, x1, x2, out *tensor.Tensor[T]) error {
	return internalcpu.MatMulContext(ctx, b, x1, x2, out)
}
