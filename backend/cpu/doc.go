// Copyright 2025 The Strided Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go matrix-multiplication engine for strided tensors.
//
// # Overview
//
// This package implements:
//   - Naive triple-loop products over arbitrary strides (transposed views work without copying)
//   - Rank-1 promotion of vector operands
//   - Batch broadcasting by recursion over leading axes
//   - Optional fan-out of the outermost batch axis across goroutines
//
// # Basic Usage
//
//	import (
//	    "github.com/strided-ml/strided/backend/cpu"
//	    "github.com/strided-ml/strided/tensor"
//	)
//
//	func main() {
//	    a, _ := tensor.FromSlice([]float64{4, 1, -6, 8}, 2, 2)
//	    b, _ := tensor.FromSlice([]float64{4, -18, 2, -3}, 2, 2)
//	    out, _ := tensor.Zeros[float64](2, 2)
//
//	    if err := cpu.MatMul(a, b, out); err != nil {
//	        log.Fatal(err)
//	    }
//	    // out = [[18 -75] [-8 84]]
//	}
//
// # Shapes
//
// The last two axes of each operand form the matrix; leading axes are batch
// axes. When ranks differ, the lower-rank operand's batch axes are paired with
// the trailing batch axes of the higher-rank one. Paired extents must match
// exactly; extent-1 batch axes are not stretched. The output must already
// have the broadcast shape. Every shape is checked before the output is
// written, so a failed call leaves it untouched.
package cpu
