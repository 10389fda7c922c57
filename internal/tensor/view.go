package tensor

import "fmt"

// Slice fixes axis 0 to pos and returns the rank R-1 view of what remains.
// It is shorthand for SliceAxis(pos, 0).
func (t *Tensor[T]) Slice(pos int) (*Tensor[T], error) {
	return t.SliceAxis(pos, 0)
}

// SliceAxis fixes axis to pos, removing that axis from the result.
// The remaining axes keep their extents and strides in their original order.
// The result shares storage with t.
//
// Slicing a rank-1 tensor is rejected with ErrInvalidRank.
//
// Example:
//
//	t, _ := tensor.New[int32](2, 3, 2)
//	s, _ := t.SliceAxis(1, 2) // Shape: [2, 3], t[i, j, 1]
func (t *Tensor[T]) SliceAxis(pos, axis int) (*Tensor[T], error) {
	if err := t.alive(); err != nil {
		return nil, fmt.Errorf("slice: %w", err)
	}
	rank := t.Rank()
	if rank == 1 {
		return nil, fmt.Errorf("slice: cannot slice a rank-1 tensor: %w", ErrInvalidRank)
	}
	if axis < 0 || axis >= rank {
		return nil, fmt.Errorf("slice: axis %d out of range for rank %d: %w", axis, rank, ErrIndexOutOfRange)
	}
	if pos < 0 || pos >= t.shape[axis] {
		return nil, fmt.Errorf("slice: position %d out of range for axis %d (size %d): %w", pos, axis, t.shape[axis], ErrIndexOutOfRange)
	}

	shape := make(Shape, 0, rank-1)
	strides := make([]int, 0, rank-1)
	for i := 0; i < rank; i++ {
		if i == axis {
			continue
		}
		shape = append(shape, t.shape[i])
		strides = append(strides, t.strides[i])
	}

	return t.view(shape, strides, t.offset+t.strides[axis]*pos), nil
}

// SwapAxes returns a view with axes dim1 and dim2 exchanged.
// No data moves; only extents and strides are swapped.
func (t *Tensor[T]) SwapAxes(dim1, dim2 int) (*Tensor[T], error) {
	if err := t.alive(); err != nil {
		return nil, fmt.Errorf("swapaxes: %w", err)
	}
	rank := t.Rank()
	if dim1 < 0 || dim1 >= rank {
		return nil, fmt.Errorf("swapaxes: dim1 %d out of range for rank %d: %w", dim1, rank, ErrIndexOutOfRange)
	}
	if dim2 < 0 || dim2 >= rank {
		return nil, fmt.Errorf("swapaxes: dim2 %d out of range for rank %d: %w", dim2, rank, ErrIndexOutOfRange)
	}

	shape := t.shape.Clone()
	strides := append([]int(nil), t.strides...)
	shape[dim1], shape[dim2] = shape[dim2], shape[dim1]
	strides[dim1], strides[dim2] = strides[dim2], strides[dim1]

	return t.view(shape, strides, t.offset), nil
}

// Expand inserts an axis of extent 1 at position axis (0 ≤ axis ≤ R).
//
// The new axis gets stride 1; every other axis keeps its original stride.
// Since the new axis only ever takes index 0 it never contributes to addressing.
//
// Example:
//
//	v, _ := tensor.New[float32](3)
//	row, _ := v.Expand(0) // Shape: [1, 3]
//	col, _ := v.Expand(1) // Shape: [3, 1]
func (t *Tensor[T]) Expand(axis int) (*Tensor[T], error) {
	if err := t.alive(); err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}
	rank := t.Rank()
	if axis < 0 || axis > rank {
		return nil, fmt.Errorf("expand: axis %d out of range for rank %d: %w", axis, rank, ErrIndexOutOfRange)
	}

	shape := make(Shape, 0, rank+1)
	strides := make([]int, 0, rank+1)
	shape = append(shape, t.shape[:axis]...)
	strides = append(strides, t.strides[:axis]...)
	shape = append(shape, 1)
	strides = append(strides, 1)
	shape = append(shape, t.shape[axis:]...)
	strides = append(strides, t.strides[axis:]...)

	return t.view(shape, strides, t.offset), nil
}

// Clone copies the view's elements into a new, independent, row-major storage.
// Elements are visited in iterator order, so Clone preserves every index's value.
func (t *Tensor[T]) Clone() (*Tensor[T], error) {
	if err := t.alive(); err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	out, err := New[T](t.shape...)
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}

	err = Foreach([]*Tensor[T]{out, t}, func(vals []*T) {
		*vals[0] = *vals[1]
	})
	if err != nil {
		out.Release()
		return nil, fmt.Errorf("clone: %w", err)
	}
	return out, nil
}
