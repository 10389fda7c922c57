// Copyright 2025 The Strided Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides fixed-rank strided tensor views for the Strided engine.
//
// # Overview
//
// A Tensor is a lightweight view (shape, strides, offset) over a shared,
// reference-counted Storage buffer. This package provides:
//   - Generic tensors over integer and floating-point element types
//   - Zero-copy slicing, axis swapping and axis insertion
//   - In-place addition and subtraction with leading-axis broadcasting
//   - Multi-index iteration with the first axis varying fastest
//
// # Basic Usage
//
//	import "github.com/strided-ml/strided/tensor"
//
//	func main() {
//	    x, _ := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
//	    defer x.Release()
//
//	    row, _ := x.Slice(1)     // [4 5 6], shares x's storage
//	    xt, _ := x.SwapAxes(0, 1) // [3, 2] transposed view
//	    _ = row.Set(0, 0)        // visible through x and xt
//	}
//
// # Views and Storage
//
// Slice, SwapAxes and Expand never copy: they return a new descriptor over
// the same Storage and retain it. Clone is the only operation that copies.
// Every view must be released exactly once; the buffer is dropped when the
// last view releases it.
//
// # Supported Data Types
//
// Any type satisfying Number: signed and unsigned integers of every width,
// float32 and float64. Arithmetic stays in the element type, so integer
// overflow wraps as in Go.
//
// # Broadcasting
//
// AddInPlace and SubInPlace accept an operand whose shape is a suffix of the
// receiver's shape. The operand is applied once per index of the receiver's
// extra leading axes. Extent-1 axes are not stretched.
package tensor
