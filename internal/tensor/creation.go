package tensor

import "fmt"

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t, _ := tensor.Zeros[float32](3, 4)
func Zeros[T Number](dims ...int) (*Tensor[T], error) {
	return New[T](dims...)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t, _ := tensor.Full[float32](3.14, 3, 3)
func Full[T Number](value T, dims ...int) (*Tensor[T], error) {
	t, err := New[T](dims...)
	if err != nil {
		return nil, err
	}
	for i := range t.storage.data {
		t.storage.data[i] = value
	}
	return t, nil
}

// FromSlice creates a tensor from row-major data (last axis fastest).
// The slice is copied into the tensor's storage.
//
// Example:
//
//	t, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, 2, 2) // [[1 2] [3 4]]
func FromSlice[T Number](data []T, dims ...int) (*Tensor[T], error) {
	shape := Shape(dims)
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("from slice: shape %v requires %d elements, but got %d: %w", shape, shape.NumElements(), len(data), ErrInvalidArgument)
	}

	t, err := New[T](dims...)
	if err != nil {
		return nil, err
	}
	copy(t.storage.data, data)
	return t, nil
}

// Arange creates a rank-1 tensor holding 0, 1, …, n-1.
func Arange[T Number](n int) (*Tensor[T], error) {
	t, err := New[T](n)
	if err != nil {
		return nil, err
	}
	for i := range t.storage.data {
		t.storage.data[i] = T(i)
	}
	return t, nil
}
