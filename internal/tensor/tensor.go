package tensor

import (
	"fmt"
	"strings"
)

// Tensor is a fixed-rank strided view over a shared Storage.
//
// The rank is fixed when the view is created. Indexing, slicing, axis swaps and
// axis insertion only rewrite the (shape, strides, offset) descriptor; Clone is the
// only operation that copies element values.
//
// Every view holds one reference on its storage. Call Release when a view is no
// longer needed; the buffer is freed when the last view releases it.
//
// Example:
//
//	t, _ := tensor.New[float32](3, 4)
//	_ = t.Set(1.5, 1, 2)
//	row, _ := t.Slice(1) // shares storage with t
//	defer row.Release()
type Tensor[T Number] struct {
	storage *Storage[T]
	shape   Shape
	strides []int
	offset  int
}

// New creates a zeroed tensor with the given dimensions and row-major strides.
// A rank-0 tensor is rejected with ErrInvalidRank.
func New[T Number](dims ...int) (*Tensor[T], error) {
	shape := Shape(dims)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	storage, err := NewStorage[T](shape.NumElements())
	if err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &Tensor[T]{
		storage: storage,
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		offset:  0,
	}, nil
}

// view creates a new view over t's storage and retains it.
func (t *Tensor[T]) view(shape Shape, strides []int, offset int) *Tensor[T] {
	t.storage.Retain()
	return &Tensor[T]{
		storage: t.storage,
		shape:   shape,
		strides: strides,
		offset:  offset,
	}
}

// alive returns ErrReleased if the view was released or its buffer freed.
func (t *Tensor[T]) alive() error {
	if t == nil || t.storage == nil || t.storage.Freed() {
		return ErrReleased
	}
	return nil
}

// Shape returns the tensor's extents.
func (t *Tensor[T]) Shape() Shape {
	return t.shape
}

// Strides returns the tensor's per-axis element strides.
func (t *Tensor[T]) Strides() []int {
	return t.strides
}

// Offset returns the element offset of index (0, …, 0) into the storage.
func (t *Tensor[T]) Offset() int {
	return t.offset
}

// Rank returns the number of axes.
func (t *Tensor[T]) Rank() int {
	return len(t.shape)
}

// NumElements returns the total number of elements.
func (t *Tensor[T]) NumElements() int {
	return t.shape.NumElements()
}

// DType returns the runtime data type of the elements.
func (t *Tensor[T]) DType() DataType {
	return inferDataType[T]()
}

// Storage returns the shared storage backing the view, nil after Release.
func (t *Tensor[T]) Storage() *Storage[T] {
	return t.storage
}

// SharesStorage reports whether t and other address the same buffer.
func (t *Tensor[T]) SharesStorage(other *Tensor[T]) bool {
	return t.storage != nil && t.storage == other.storage
}

// Share returns a new view with the same descriptor and storage.
func (t *Tensor[T]) Share() (*Tensor[T], error) {
	if err := t.alive(); err != nil {
		return nil, fmt.Errorf("share: %w", err)
	}
	return t.view(t.shape.Clone(), append([]int(nil), t.strides...), t.offset), nil
}

// Assign makes t a view identical to src, releasing t's previous storage.
// Both views must have the same rank.
func (t *Tensor[T]) Assign(src *Tensor[T]) error {
	if err := src.alive(); err != nil {
		return fmt.Errorf("assign: %w", err)
	}
	if t.Rank() != src.Rank() {
		return fmt.Errorf("assign: rank %d into rank %d: %w", src.Rank(), t.Rank(), ErrInvalidRank)
	}

	// Retain first so self-assignment never drops the count to zero.
	src.storage.Retain()
	if t.storage != nil {
		t.storage.Release()
	}
	t.storage = src.storage
	t.shape = src.shape.Clone()
	t.strides = append([]int(nil), src.strides...)
	t.offset = src.offset
	return nil
}

// Release drops this view's reference on its storage.
// It is safe to call more than once; later calls are no-ops.
func (t *Tensor[T]) Release() {
	if t == nil || t.storage == nil {
		return
	}
	t.storage.Release()
	t.storage = nil
}

// linearIndex computes offset + Σ idx[i]·strides[i], checking each axis left to right.
func (t *Tensor[T]) linearIndex(indices []int) (int, error) {
	if len(indices) != len(t.shape) {
		return 0, fmt.Errorf("expected %d indices, got %d: %w", len(t.shape), len(indices), ErrInvalidRank)
	}

	offset := t.offset
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			return 0, fmt.Errorf("index %d out of range for axis %d (size %d): %w", idx, i, t.shape[i], ErrIndexOutOfRange)
		}
		offset += idx * t.strides[i]
	}
	return offset, nil
}

// Ptr returns a pointer to the element at the given indices.
func (t *Tensor[T]) Ptr(indices ...int) (*T, error) {
	if err := t.alive(); err != nil {
		return nil, err
	}
	offset, err := t.linearIndex(indices)
	if err != nil {
		return nil, err
	}
	return t.storage.At(offset)
}

// At returns the element at the given indices.
//
// Example:
//
//	t, _ := tensor.New[float32](3, 4)
//	value, err := t.At(1, 2) // Row 1, column 2
func (t *Tensor[T]) At(indices ...int) (T, error) {
	p, err := t.Ptr(indices...)
	if err != nil {
		var zero T
		return zero, err
	}
	return *p, nil
}

// Set sets the element at the given indices.
func (t *Tensor[T]) Set(value T, indices ...int) error {
	p, err := t.Ptr(indices...)
	if err != nil {
		return err
	}
	*p = value
	return nil
}

// Fill sets every element of the view to value.
func (t *Tensor[T]) Fill(value T) error {
	return Foreach([]*Tensor[T]{t}, func(vals []*T) {
		*vals[0] = value
	})
}

// ToSlice returns the view's values in row-major order (last axis fastest).
func (t *Tensor[T]) ToSlice() ([]T, error) {
	if err := t.alive(); err != nil {
		return nil, err
	}

	out := make([]T, 0, t.NumElements())
	if t.NumElements() == 0 {
		return out, nil
	}

	idx := make([]int, t.Rank())
	for {
		v, err := t.At(idx...)
		if err != nil {
			return nil, err
		}
		out = append(out, v)

		axis := len(idx) - 1
		for axis >= 0 {
			idx[axis]++
			if idx[axis] < t.shape[axis] {
				break
			}
			idx[axis] = 0
			axis--
		}
		if axis < 0 {
			return out, nil
		}
	}
}

// Equal reports whether t and other have the same shape and element values.
// Storage identity and strides are not compared.
func (t *Tensor[T]) Equal(other *Tensor[T]) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	a, err := t.ToSlice()
	if err != nil {
		return false
	}
	b, err := other.ToSlice()
	if err != nil {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// String returns a human-readable representation of the tensor.
func (t *Tensor[T]) String() string {
	if t.alive() != nil {
		return fmt.Sprintf("Tensor[%s]%v <released>", t.DType(), t.shape)
	}
	values, err := t.ToSlice()
	if err != nil {
		return fmt.Sprintf("Tensor[%s]%v <%v>", t.DType(), t.shape, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Tensor[%s]%v ", t.DType(), t.shape)
	formatNested(&sb, t.shape, values)
	return sb.String()
}

// formatNested writes row-major values as nested brackets, e.g. [[1 2] [3 4]].
func formatNested[T Number](sb *strings.Builder, shape Shape, values []T) {
	if len(shape) == 1 {
		sb.WriteByte('[')
		for i, v := range values {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprint(sb, v)
		}
		sb.WriteByte(']')
		return
	}

	inner := shape[1:].NumElements()
	sb.WriteByte('[')
	for i := 0; i < shape[0]; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		formatNested(sb, shape[1:], values[i*inner:(i+1)*inner])
	}
	sb.WriteByte(']')
}
