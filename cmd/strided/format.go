package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/strided-ml/strided/internal/tensor"
)

// maxInputRank bounds the rank accepted from the command line.
const maxInputRank = 4

// parseTensor decodes a nested JSON number array into a float64 tensor.
// The array must be rectangular with rank 1..4.
func parseTensor(s string) (*tensor.Tensor[float64], error) {
	var raw any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("parse tensor: %w", err)
	}

	shape, err := shapeOf(raw)
	if err != nil {
		return nil, fmt.Errorf("parse tensor: %w", err)
	}
	if len(shape) == 0 || len(shape) > maxInputRank {
		return nil, fmt.Errorf("parse tensor: rank %d outside 1..%d", len(shape), maxInputRank)
	}

	data := make([]float64, 0, tensor.Shape(shape).NumElements())
	data = flatten(raw, data)
	return tensor.FromSlice(data, shape...)
}

// shapeOf returns the extents of a nested array, checking that it is rectangular.
func shapeOf(v any) ([]int, error) {
	switch x := v.(type) {
	case float64:
		return nil, nil
	case []any:
		if len(x) == 0 {
			return nil, fmt.Errorf("empty array")
		}
		inner, err := shapeOf(x[0])
		if err != nil {
			return nil, err
		}
		for i := 1; i < len(x); i++ {
			s, err := shapeOf(x[i])
			if err != nil {
				return nil, err
			}
			if !tensor.Shape(s).Equal(inner) {
				return nil, fmt.Errorf("ragged array: element %d has shape %v, want %v", i, s, inner)
			}
		}
		return append([]int{len(x)}, inner...), nil
	default:
		return nil, fmt.Errorf("unexpected JSON value %T", v)
	}
}

func flatten(v any, dst []float64) []float64 {
	switch x := v.(type) {
	case float64:
		return append(dst, x)
	case []any:
		for _, e := range x {
			dst = flatten(e, dst)
		}
	}
	return dst
}

// formatTensor renders t as a nested JSON array.
// precision < 0 prints the shortest representation that round-trips.
func formatTensor[T tensor.Number](t *tensor.Tensor[T], precision int) (string, error) {
	values, err := t.ToSlice()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	writeNested(&sb, t.Shape(), values, precision)
	return sb.String(), nil
}

func writeNested[T tensor.Number](sb *strings.Builder, shape tensor.Shape, values []T, precision int) {
	if len(shape) == 0 {
		sb.WriteString(formatNumber(float64(values[0]), precision))
		return
	}

	sb.WriteByte('[')
	step := shape[1:].NumElements()
	for i := 0; i < shape[0]; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeNested(sb, shape[1:], values[i*step:(i+1)*step], precision)
	}
	sb.WriteByte(']')
}

func formatNumber(v float64, precision int) string {
	if precision < 0 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// productShape returns the output shape MatMul expects for operands of shapes s1 and s2.
// Vector operands are promoted the same way MatMul promotes them; a rank-2 result
// from a vector operand is reported as rank 1.
func productShape(s1, s2 tensor.Shape) tensor.Shape {
	a, b := s1, s2
	if len(s1) == 1 {
		a = tensor.Shape{1, s1[0]}
	}
	if len(s2) == 1 {
		b = tensor.Shape{s2[0], 1}
	}

	batch := a[:len(a)-2]
	if len(b) > len(a) {
		batch = b[:len(b)-2]
	}

	out := append(batch.Clone(), a[len(a)-2], b[len(b)-1])
	if len(out) == 2 {
		switch {
		case len(s2) == 1:
			out = out[:1]
		case len(s1) == 1:
			out = out[1:]
		}
	}
	return out
}
