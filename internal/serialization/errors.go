package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch  = errors.New("checksum mismatch: file may be corrupted")
	ErrDTypeMismatch     = errors.New("tensor dtype does not match requested element type")
	ErrUnsupportedDType  = errors.New("unsupported dtype")
	ErrHeaderTooLarge    = errors.New("header exceeds maximum size")
	ErrInvalidTensorName = errors.New("invalid tensor name")
	ErrInvalidHeader     = errors.New("invalid header")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // Type of error (e.g., "offset_overlap", "out_of_bounds")
	Tensor  string // Primary tensor name involved
	Tensor2 string // Secondary tensor name (for overlap errors)
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor2 != "" {
		return fmt.Sprintf("%s: tensors %q and %q: %s", e.Type, e.Tensor, e.Tensor2, e.Details)
	}
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %s", e.Type, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}
