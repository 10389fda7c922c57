package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/strided-ml/strided/internal/tensor"
)

// WriteFile writes tensors to a SafeTensors file at path.
func WriteFile[T tensor.Number](path string, tensors map[string]*tensor.Tensor[T], metadata map[string]string) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Encode(file, tensors, metadata); err != nil {
		_ = file.Close() // Best effort close on error
		return err
	}
	return file.Close()
}

// Encode writes tensors to w in SafeTensors format.
//
// Tensors are written in alphabetical order by name, each in row-major order.
// The SHA-256 of the data section is stored under ChecksumKey in the metadata.
func Encode[T tensor.Number](w io.Writer, tensors map[string]*tensor.Tensor[T], metadata map[string]string) error {
	dt := tensor.DTypeOf[T]()
	dtype, ok := dtypeToSafeTensors(dt)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedDType, dt)
	}

	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	var data []byte
	for _, name := range names {
		t := tensors[name]
		values, err := t.ToSlice()
		if err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}

		start := int64(len(data))
		for _, v := range values {
			data = appendElement(data, dtype, v)
		}

		shape := make([]int64, t.Rank())
		for i, dim := range t.Shape() {
			shape[i] = int64(dim)
		}
		header[name] = SafeTensorHeader{
			DType:       dtype,
			Shape:       shape,
			DataOffsets: [2]int64{start, int64(len(data))},
		}
	}

	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[ChecksumKey] = ComputeChecksum(data)
	header[metadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if pad := (headerAlignment - len(headerJSON)%headerAlignment) % headerAlignment; pad > 0 {
		headerJSON = append(headerJSON, bytes.Repeat([]byte{' '}, pad)...)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}
	return nil
}
