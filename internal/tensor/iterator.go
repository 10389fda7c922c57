package tensor

import "fmt"

// Iterator is a multi-index cursor over a tensor view.
//
// Axis 0 varies fastest. For extents (d0, …, dR-1) the cursor visits
// Π di positions from Begin to End, each exactly once. End is the unique
// one-past-the-end position: every index 0 except the last, which equals dR-1.
//
// Example:
//
//	for it := t.Begin(); !it.AtEnd(); _ = it.Next() {
//	    v, _ := it.Value()
//	    fmt.Println(it.Indices(), v)
//	}
type Iterator[T Number] struct {
	parent *Tensor[T]
	idx    []int
}

// Begin returns a cursor at index (0, …, 0), or End for an empty tensor.
func (t *Tensor[T]) Begin() *Iterator[T] {
	if t.NumElements() == 0 {
		return t.End()
	}
	return &Iterator[T]{parent: t, idx: make([]int, t.Rank())}
}

// End returns the one-past-the-end cursor.
func (t *Tensor[T]) End() *Iterator[T] {
	idx := make([]int, t.Rank())
	idx[len(idx)-1] = t.shape[len(idx)-1]
	return &Iterator[T]{parent: t, idx: idx}
}

// NewIterator creates a cursor at the given indices.
// The indices must either match the End pattern exactly or lie within every axis.
func NewIterator[T Number](t *Tensor[T], indices []int) (*Iterator[T], error) {
	rank := t.Rank()
	if len(indices) != rank {
		return nil, fmt.Errorf("iterator: expected %d indices, got %d: %w", rank, len(indices), ErrInvalidRank)
	}

	it := &Iterator[T]{parent: t, idx: append([]int(nil), indices...)}
	if it.AtEnd() {
		return it, nil
	}
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			return nil, fmt.Errorf("iterator: starting index %d out of range for axis %d (size %d): %w", idx, i, t.shape[i], ErrIndexOutOfRange)
		}
	}
	return it, nil
}

// Parent returns the view the cursor walks.
func (it *Iterator[T]) Parent() *Tensor[T] {
	return it.parent
}

// Indices returns a copy of the current per-axis indices.
func (it *Iterator[T]) Indices() []int {
	return append([]int(nil), it.idx...)
}

// Clone returns an independent cursor at the same position.
func (it *Iterator[T]) Clone() *Iterator[T] {
	return &Iterator[T]{parent: it.parent, idx: append([]int(nil), it.idx...)}
}

// AtEnd reports whether the cursor is at the End position.
func (it *Iterator[T]) AtEnd() bool {
	last := len(it.idx) - 1
	if it.idx[last] != it.parent.shape[last] {
		return false
	}
	for _, idx := range it.idx[:last] {
		if idx != 0 {
			return false
		}
	}
	return true
}

// Ptr returns a pointer to the element under the cursor.
func (it *Iterator[T]) Ptr() (*T, error) {
	if it.AtEnd() {
		return nil, fmt.Errorf("iterator: dereference at end: %w", ErrIndexOutOfRange)
	}
	p, err := it.parent.Ptr(it.idx...)
	if err != nil {
		return nil, fmt.Errorf("iterator: %w", err)
	}
	return p, nil
}

// Value returns the element under the cursor.
func (it *Iterator[T]) Value() (T, error) {
	p, err := it.Ptr()
	if err != nil {
		var zero T
		return zero, err
	}
	return *p, nil
}

// Set writes the element under the cursor.
func (it *Iterator[T]) Set(value T) error {
	p, err := it.Ptr()
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// Next advances the cursor by one position, carrying from axis 0 upward.
// Advancing past End fails and leaves the cursor unchanged.
func (it *Iterator[T]) Next() error {
	if it.AtEnd() {
		return fmt.Errorf("iterator: increment past end: %w", ErrIndexOutOfRange)
	}

	dims := it.parent.shape
	last := len(it.idx) - 1
	it.idx[0]++
	for i := 0; i < last; i++ {
		if it.idx[i] < dims[i] {
			break
		}
		it.idx[i] = 0
		it.idx[i+1]++
	}

	if it.idx[last] >= dims[last] && !it.AtEnd() {
		return fmt.Errorf("iterator: cursor overran end at %v: %w", it.idx, ErrIndexOutOfRange)
	}
	return nil
}

// Prev moves the cursor back by one position.
// Moving before Begin fails and leaves the cursor unchanged.
func (it *Iterator[T]) Prev() error {
	if it.parent.NumElements() == 0 {
		return fmt.Errorf("iterator: decrement on empty tensor: %w", ErrIndexOutOfRange)
	}

	axis := -1
	for i, idx := range it.idx {
		if idx != 0 {
			axis = i
			break
		}
	}
	if axis < 0 {
		return fmt.Errorf("iterator: decrement before begin: %w", ErrIndexOutOfRange)
	}

	it.idx[axis]--
	for i := 0; i < axis; i++ {
		it.idx[i] = it.parent.shape[i] - 1
	}
	return nil
}

// Equal reports whether both cursors walk the same view layout at the same position:
// same storage, offset, extents, strides and indices.
func (it *Iterator[T]) Equal(other *Iterator[T]) bool {
	a, b := it.parent, other.parent
	if a.storage != b.storage || a.offset != b.offset {
		return false
	}
	if !a.shape.Equal(b.shape) || len(a.strides) != len(b.strides) {
		return false
	}
	for i := range a.strides {
		if a.strides[i] != b.strides[i] || it.idx[i] != other.idx[i] {
			return false
		}
	}
	return true
}
