package tensor

import (
	"fmt"
	"math"
)

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that the shape has at least one axis, no negative extents,
// and an element count that fits in an int. Zero extents are allowed and
// describe an empty tensor.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("shape: rank-0 tensors are not supported: %w", ErrInvalidRank)
	}
	n := 1
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("shape: invalid dimension at index %d: %d (must be >= 0): %w", i, dim, ErrInvalidArgument)
		}
		// Zero extents are skipped so the row-major strides of an empty
		// tensor cannot overflow either.
		if dim == 0 {
			continue
		}
		if n > math.MaxInt/dim {
			return fmt.Errorf("shape: %v has too many elements: %w", s, ErrInvalidArgument)
		}
		n *= dim
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// HasSuffix reports whether the trailing axes of s equal tail exactly.
// Leading-axis broadcasting accepts an operand only when this holds.
func (s Shape) HasSuffix(tail Shape) bool {
	if len(tail) > len(s) {
		return false
	}
	return s[len(s)-len(tail):].Equal(tail)
}
