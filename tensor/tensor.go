// Copyright 2025 The Strided Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/strided-ml/strided/internal/tensor"
)

// Type aliases for public API

// Number is the constraint for tensor element types.
type Number = tensor.Number

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int8    DataType = tensor.Int8
	Int16   DataType = tensor.Int16
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Int     DataType = tensor.Int
	Uint8   DataType = tensor.Uint8
	Uint16  DataType = tensor.Uint16
	Uint32  DataType = tensor.Uint32
	Uint64  DataType = tensor.Uint64
	Uint    DataType = tensor.Uint
	Uintptr DataType = tensor.Uintptr
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Storage is a contiguous element buffer shared by every view derived from it.
// Its reference count is kept on the buffer itself.
type Storage[T Number] = tensor.Storage[T]

// Tensor is a strided view over shared Storage.
//
// The rank is fixed when the view is created. Indexing maps a multi-index
// to offset + Σ index[i]·strides[i] in the underlying buffer.
//
// Example:
//
//	x, _ := tensor.Arange[int32](6)
//	m, _ := tensor.FromSlice([]int32{1, 2, 3, 4, 5, 6}, 2, 3)
//	v, _ := m.At(1, 2) // 6
type Tensor[T Number] = tensor.Tensor[T]

// Iterator walks every multi-index of a tensor with axis 0 varying fastest.
//
// Example:
//
//	for it := x.Begin(); !it.AtEnd(); _ = it.Next() {
//	    v, _ := it.Value()
//	    fmt.Println(it.Indices(), v)
//	}
type Iterator[T Number] = tensor.Iterator[T]

// Errors returned by tensor operations. Use errors.Is to match them.
var (
	ErrIndexOutOfRange = tensor.ErrIndexOutOfRange
	ErrInvalidArgument = tensor.ErrInvalidArgument
	ErrInvalidRank     = tensor.ErrInvalidRank
	ErrReleased        = tensor.ErrReleased
)

// Creation functions

// New creates a zero-initialized tensor with fresh storage and row-major strides.
//
// Example:
//
//	x, err := tensor.New[float32](2, 3, 4)
func New[T Number](dims ...int) (*Tensor[T], error) {
	return tensor.New[T](dims...)
}

// Zeros creates a tensor filled with zeros.
func Zeros[T Number](dims ...int) (*Tensor[T], error) {
	return tensor.Zeros[T](dims...)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	x, err := tensor.Full[float32](3.14, 2, 3)
func Full[T Number](value T, dims ...int) (*Tensor[T], error) {
	return tensor.Full(value, dims...)
}

// FromSlice creates a tensor from a Go slice laid out in row-major order.
// The slice is copied.
//
// Example:
//
//	data := []float32{1, 2, 3, 4, 5, 6}
//	x, err := tensor.FromSlice(data, 2, 3)
func FromSlice[T Number](data []T, dims ...int) (*Tensor[T], error) {
	return tensor.FromSlice(data, dims...)
}

// Arange creates a rank-1 tensor holding 0, 1, ..., n-1.
func Arange[T Number](n int) (*Tensor[T], error) {
	return tensor.Arange[T](n)
}

// NewStorage allocates a zeroed buffer of n elements with a reference count of 1.
func NewStorage[T Number](n int) (*Storage[T], error) {
	return tensor.NewStorage[T](n)
}

// Iteration

// NewIterator creates an iterator positioned at indices.
// indices must be in bounds, or equal to the one-past-the-end position
// returned by Tensor.End.
func NewIterator[T Number](t *Tensor[T], indices []int) (*Iterator[T], error) {
	return tensor.NewIterator(t, indices)
}

// Foreach applies fn to aligned elements of same-shaped tensors, visiting
// every multi-index once with axis 0 varying fastest.
//
// Example:
//
//	// out = a + b
//	err := tensor.Foreach([]*tensor.Tensor[float32]{out, a, b}, func(v []*float32) {
//	    *v[0] = *v[1] + *v[2]
//	})
func Foreach[T Number](tensors []*Tensor[T], fn func(vals []*T)) error {
	return tensor.Foreach(tensors, fn)
}
