package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Storage is a reference-counted element buffer shared by tensor views.
// The count lives next to the buffer, so there is no process-wide bookkeeping.
type Storage[T Number] struct {
	data     []T
	size     int
	refCount atomic.Int64
	mu       sync.Mutex // For safe deallocation
}

// NewStorage allocates a zeroed buffer of n elements with refCount = 1.
func NewStorage[T Number](n int) (*Storage[T], error) {
	if n < 0 {
		return nil, fmt.Errorf("storage: negative size %d: %w", n, ErrInvalidArgument)
	}
	s := &Storage[T]{
		data: make([]T, n),
		size: n,
	}
	s.refCount.Store(1)
	return s, nil
}

// Retain increments the reference count.
// Retaining a storage whose buffer was already freed is a programming error and panics.
// The count of a freed buffer is left untouched.
func (s *Storage[T]) Retain() {
	for {
		n := s.refCount.Load()
		if n <= 0 {
			panic("storage: retain on released buffer")
		}
		if s.refCount.CompareAndSwap(n, n+1) {
			return
		}
	}
}

// Release decrements the reference count and frees the buffer when it reaches 0.
// It reports whether this call freed the buffer.
func (s *Storage[T]) Release() bool {
	n := s.refCount.Add(-1)
	switch {
	case n == 0:
		s.mu.Lock()
		defer s.mu.Unlock()
		s.data = nil
		return true
	case n < 0:
		panic("storage: release on released buffer")
	}
	return false
}

// Refs returns the current reference count.
func (s *Storage[T]) Refs() int {
	return int(s.refCount.Load())
}

// IsUnique returns true if exactly one view references the buffer.
func (s *Storage[T]) IsUnique() bool {
	return s.refCount.Load() == 1
}

// Freed reports whether the buffer has been released.
func (s *Storage[T]) Freed() bool {
	return s.refCount.Load() <= 0
}

// Len returns the number of elements the buffer was allocated with.
func (s *Storage[T]) Len() int {
	return s.size
}

// Data returns the raw element buffer, nil once freed.
// WARNING: Direct access to underlying memory. Use with caution.
func (s *Storage[T]) Data() []T {
	if s.Freed() {
		return nil
	}
	return s.data
}

// At returns a pointer to the element at linear position i.
func (s *Storage[T]) At(i int) (*T, error) {
	if s.Freed() {
		return nil, ErrReleased
	}
	if i < 0 || i >= s.size {
		return nil, fmt.Errorf("storage: linear index %d out of range [0, %d): %w", i, s.size, ErrIndexOutOfRange)
	}
	return &s.data[i], nil
}
