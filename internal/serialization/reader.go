package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/strided-ml/strided/internal/tensor"
)

// ReadFile loads every tensor from the SafeTensors file at path.
func ReadFile[T tensor.Number](path string) (map[string]*tensor.Tensor[T], map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for loading
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close() // Read-only, close error carries no information
	}()

	return Decode[T](file)
}

// Decode reads a SafeTensors stream into freshly allocated tensors.
//
// Every tensor in the stream must have the dtype matching T. Offsets are
// validated before any tensor is allocated, and the data checksum is
// verified when the metadata carries one.
func Decode[T tensor.Number](r io.Reader) (map[string]*tensor.Tensor[T], map[string]string, error) {
	dt := tensor.DTypeOf[T]()
	want, ok := dtypeToSafeTensors(dt)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedDType, dt)
	}

	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerSize)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerBytes, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	var metadata map[string]string
	if m, ok := raw[metadataKey]; ok {
		if err := json.Unmarshal(m, &metadata); err != nil {
			return nil, nil, fmt.Errorf("%w: metadata: %w", ErrInvalidHeader, err)
		}
		delete(raw, metadataKey)
	}

	entries := make(map[string]SafeTensorHeader, len(raw))
	metas := make([]TensorMeta, 0, len(raw))
	for name, msg := range raw {
		if err := ValidateTensorName(name); err != nil {
			return nil, nil, err
		}

		var h SafeTensorHeader
		if err := json.Unmarshal(msg, &h); err != nil {
			return nil, nil, fmt.Errorf("%w: tensor %s: %w", ErrInvalidHeader, name, err)
		}
		if err := checkEntry(name, h, want); err != nil {
			return nil, nil, err
		}

		entries[name] = h
		metas = append(metas, TensorMeta{
			Name:   name,
			Offset: h.DataOffsets[0],
			Size:   h.DataOffsets[1] - h.DataOffsets[0],
		})
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := ValidateTensorOffsets(metas, int64(len(data))); err != nil {
		return nil, nil, err
	}
	if sum, ok := metadata[ChecksumKey]; ok {
		if err := ValidateChecksum(data, sum); err != nil {
			return nil, nil, err
		}
	}

	width := elementSize(want)
	out := make(map[string]*tensor.Tensor[T], len(entries))
	for name, h := range entries {
		region := data[h.DataOffsets[0]:h.DataOffsets[1]]
		values := make([]T, len(region)/width)
		for i := range values {
			values[i] = decodeElement[T](region[i*width:(i+1)*width], want)
		}

		dims := make([]int, len(h.Shape))
		for i, d := range h.Shape {
			dims[i] = int(d)
		}
		t, err := tensor.FromSlice(values, dims...)
		if err != nil {
			for _, done := range out {
				done.Release()
			}
			return nil, nil, fmt.Errorf("tensor %s: %w", name, err)
		}
		out[name] = t
	}

	return out, metadata, nil
}

// checkEntry validates one header entry against the requested dtype.
func checkEntry(name string, h SafeTensorHeader, want string) error {
	if elementSize(h.DType) == 0 {
		return fmt.Errorf("%w: tensor %s has dtype %q", ErrUnsupportedDType, name, h.DType)
	}
	if h.DType != want {
		return fmt.Errorf("%w: tensor %s is %s, want %s", ErrDTypeMismatch, name, h.DType, want)
	}

	// The element count must fit in an int and its byte size in an int64,
	// otherwise a wrapped product could match a short data region.
	width := int64(elementSize(h.DType))
	limit := min(int64(math.MaxInt), math.MaxInt64/width)
	n, empty := int64(1), false
	for _, d := range h.Shape {
		if d < 0 {
			return fmt.Errorf("%w: tensor %s has negative extent in %v", ErrInvalidHeader, name, h.Shape)
		}
		if d > limit {
			return fmt.Errorf("%w: tensor %s has oversized extent in %v", ErrInvalidHeader, name, h.Shape)
		}
		if d == 0 {
			empty = true
			continue
		}
		if n > limit/d {
			return fmt.Errorf("%w: tensor %s shape %v has too many elements", ErrInvalidHeader, name, h.Shape)
		}
		n *= d
	}
	if empty {
		n = 0
	}

	size := h.DataOffsets[1] - h.DataOffsets[0]
	if size != n*width {
		return fmt.Errorf("%w: tensor %s spans %d bytes, shape %v needs %d",
			ErrInvalidHeader, name, size, h.Shape, n*width)
	}
	return nil
}
