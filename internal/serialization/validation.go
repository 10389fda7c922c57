package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize    = 100 * 1024 * 1024 // 100MB - maximum header size
	MaxTensorCount   = 100_000           // Maximum number of tensors in a file
	MaxTensorNameLen = 4096              // Maximum tensor name length
)

// ValidateTensorOffsets checks for overlapping tensor offsets and out-of-bounds access.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return &ValidationError{
			Type:    "too_many_tensors",
			Details: fmt.Sprintf("got %d, max %d", len(tensors), MaxTensorCount),
		}
	}

	// Sort tensors by offset for efficient overlap detection.
	sorted := make([]TensorMeta, len(tensors))
	copy(sorted, tensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", t.Offset, t.Size),
			}
		}

		if t.Offset+t.Size > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Type:    "offset_overlap",
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// ValidateTensorName rejects names that are empty, too long, reserved,
// or that contain path separators or null bytes.
func ValidateTensorName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidTensorName)
	case name == metadataKey:
		return fmt.Errorf("%w: %q is reserved", ErrInvalidTensorName, name)
	case len(name) > MaxTensorNameLen:
		return fmt.Errorf("%w: length %d > max %d", ErrInvalidTensorName, len(name), MaxTensorNameLen)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q contains '..'", ErrInvalidTensorName, name)
	case strings.ContainsAny(name, "/\\"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidTensorName, name)
	case strings.Contains(name, "\x00"):
		return fmt.Errorf("%w: %q contains a null byte", ErrInvalidTensorName, name)
	}
	return nil
}
