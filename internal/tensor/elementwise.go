package tensor

import "fmt"

// Foreach walks every tensor in lockstep and calls fn with a pointer to the
// current element of each one, in iterator order (axis 0 fastest).
//
// All tensors must have identical shapes.
//
// Example:
//
//	// a += b, elementwise
//	err := tensor.Foreach([]*tensor.Tensor[int32]{a, b}, func(v []*int32) {
//	    *v[0] += *v[1]
//	})
func Foreach[T Number](tensors []*Tensor[T], fn func(vals []*T)) error {
	if len(tensors) == 0 {
		return fmt.Errorf("foreach: at least one tensor required: %w", ErrInvalidArgument)
	}
	for i, t := range tensors {
		if err := t.alive(); err != nil {
			return fmt.Errorf("foreach: tensor %d: %w", i, err)
		}
		if !t.shape.Equal(tensors[0].shape) {
			return fmt.Errorf("foreach: tensor %d shape %v does not match %v: %w", i, t.shape, tensors[0].shape, ErrInvalidArgument)
		}
	}

	its := make([]*Iterator[T], len(tensors))
	for i, t := range tensors {
		its[i] = t.Begin()
	}
	vals := make([]*T, len(tensors))
	for !its[0].AtEnd() {
		for i, it := range its {
			p, err := it.Ptr()
			if err != nil {
				return fmt.Errorf("foreach: %w", err)
			}
			vals[i] = p
		}
		fn(vals)
		for _, it := range its {
			if err := it.Next(); err != nil {
				return fmt.Errorf("foreach: %w", err)
			}
		}
	}
	return nil
}

// AddInPlace adds other into t elementwise and returns t.
//
// If other has the same rank, the shapes must match exactly. If other has a
// lower rank it is broadcast across t's leading axes; t's trailing axes must
// equal other's shape exactly. Shapes are validated before any element is written.
//
// Example:
//
//	a, _ := tensor.FromSlice([]int32{1, 2, 3, 4}, 2, 2)
//	b, _ := tensor.FromSlice([]int32{5, 6}, 2)
//	_, err := a.AddInPlace(b) // a = [[6 8] [8 10]]
func (t *Tensor[T]) AddInPlace(other *Tensor[T]) (*Tensor[T], error) {
	if err := t.combineInPlace(other, func(dst *T, src T) { *dst += src }); err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}
	return t, nil
}

// SubInPlace subtracts other from t elementwise and returns t.
// Broadcasting follows the same rules as AddInPlace.
func (t *Tensor[T]) SubInPlace(other *Tensor[T]) (*Tensor[T], error) {
	if err := t.combineInPlace(other, func(dst *T, src T) { *dst -= src }); err != nil {
		return nil, fmt.Errorf("sub: %w", err)
	}
	return t, nil
}

func (t *Tensor[T]) combineInPlace(other *Tensor[T], op func(dst *T, src T)) error {
	if err := t.alive(); err != nil {
		return err
	}
	if err := other.alive(); err != nil {
		return err
	}
	if other.Rank() > t.Rank() {
		return fmt.Errorf("cannot broadcast rank %d operand into rank %d tensor: %w", other.Rank(), t.Rank(), ErrInvalidArgument)
	}
	if !t.shape.HasSuffix(other.shape) {
		return fmt.Errorf("shape %v does not match trailing axes of %v: %w", other.shape, t.shape, ErrInvalidArgument)
	}
	return combineValidated(t, other, op)
}

// combineValidated recurses over t's leading axes until the ranks match.
// Shapes must already have been checked.
func combineValidated[T Number](t, other *Tensor[T], op func(dst *T, src T)) error {
	if t.Rank() == other.Rank() {
		return Foreach([]*Tensor[T]{t, other}, func(vals []*T) {
			op(vals[0], *vals[1])
		})
	}

	for i := 0; i < t.shape[0]; i++ {
		s, err := t.Slice(i)
		if err != nil {
			return err
		}
		err = combineValidated(s, other, op)
		s.Release()
		if err != nil {
			return err
		}
	}
	return nil
}
