package serialization

import (
	"encoding/binary"
	"math"

	"github.com/strided-ml/strided/internal/tensor"
)

// Format constants.
const (
	metadataKey     = "__metadata__"
	headerAlignment = 8 // Header is space padded so tensor data starts 8-byte aligned.
)

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// TensorMeta locates a tensor inside the data section.
type TensorMeta struct {
	Name   string
	Offset int64 // Bytes from the start of the data section.
	Size   int64 // Size in bytes.
}

// dtypeToSafeTensors converts tensor.DataType to SafeTensors dtype string.
// Platform-sized integers are stored at 64 bits.
func dtypeToSafeTensors(dt tensor.DataType) (string, bool) {
	switch dt {
	case tensor.Float32:
		return "F32", true
	case tensor.Float64:
		return "F64", true
	case tensor.Int8:
		return "I8", true
	case tensor.Int16:
		return "I16", true
	case tensor.Int32:
		return "I32", true
	case tensor.Int64, tensor.Int:
		return "I64", true
	case tensor.Uint8:
		return "U8", true
	case tensor.Uint16:
		return "U16", true
	case tensor.Uint32:
		return "U32", true
	case tensor.Uint64, tensor.Uint, tensor.Uintptr:
		return "U64", true
	default:
		return "", false
	}
}

// elementSize returns the stored byte width of a SafeTensors dtype, or 0 if unknown.
func elementSize(dtype string) int {
	switch dtype {
	case "I8", "U8":
		return 1
	case "I16", "U16":
		return 2
	case "F32", "I32", "U32":
		return 4
	case "F64", "I64", "U64":
		return 8
	default:
		return 0
	}
}

// appendElement encodes v little-endian using the width of dtype.
func appendElement[T tensor.Number](buf []byte, dtype string, v T) []byte {
	switch dtype {
	case "F32":
		return binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(v)))
	case "F64":
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(float64(v)))
	case "I8", "U8":
		return append(buf, byte(v))
	case "I16", "U16":
		return binary.LittleEndian.AppendUint16(buf, uint16(v))
	case "I32", "U32":
		return binary.LittleEndian.AppendUint32(buf, uint32(v))
	default:
		return binary.LittleEndian.AppendUint64(buf, uint64(v))
	}
}

// decodeElement is the inverse of appendElement. len(b) must be elementSize(dtype).
func decodeElement[T tensor.Number](b []byte, dtype string) T {
	switch dtype {
	case "F32":
		return T(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case "F64":
		return T(math.Float64frombits(binary.LittleEndian.Uint64(b)))
	case "I8":
		return T(int8(b[0]))
	case "U8":
		return T(b[0])
	case "I16":
		return T(int16(binary.LittleEndian.Uint16(b)))
	case "U16":
		return T(binary.LittleEndian.Uint16(b))
	case "I32":
		return T(int32(binary.LittleEndian.Uint32(b)))
	case "U32":
		return T(binary.LittleEndian.Uint32(b))
	case "I64":
		return T(int64(binary.LittleEndian.Uint64(b)))
	default:
		return T(binary.LittleEndian.Uint64(b))
	}
}
