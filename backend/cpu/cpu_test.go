// Copyright 2025 The Strided Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu_test

import (
	"context"
	"errors"
	"testing"

	"github.com/strided-ml/strided/backend/cpu"
	"github.com/strided-ml/strided/tensor"
)

func TestMatMulPublic(t *testing.T) {
	a, _ := tensor.FromSlice([]float64{4, 1, -6, 8}, 2, 2)
	b, _ := tensor.FromSlice([]float64{4, -18, 2, -3, 9, -1, -92, 3}, 2, 2, 2)
	out, _ := tensor.Zeros[float64](2, 2, 2)

	if err := cpu.MatMul(a, b, out); err != nil {
		t.Fatalf("MatMul failed: %v", err)
	}

	got, _ := out.ToSlice()
	want := []float64{18, -75, -8, 84, -56, -1, -790, 30}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMatMulContextParallel(t *testing.T) {
	backend := cpu.NewWithConfig(cpu.WithWorkers(2))
	if backend.Name() != "CPU" {
		t.Errorf("Name() = %q, want CPU", backend.Name())
	}

	a, _ := tensor.Full[int32](1, 4, 2, 3)
	b, _ := tensor.Full[int32](2, 3, 2)
	out, _ := tensor.Zeros[int32](4, 2, 2)

	if err := cpu.MatMulContext(context.Background(), backend, a, b, out); err != nil {
		t.Fatalf("MatMulContext failed: %v", err)
	}
	got, _ := out.ToSlice()
	for i, v := range got {
		if v != 6 {
			t.Errorf("out[%d] = %d, want 6", i, v)
		}
	}
}

func TestMatMulContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, _ := tensor.Zeros[float32](3, 2, 2)
	b, _ := tensor.Zeros[float32](2, 2)
	out, _ := tensor.Zeros[float32](3, 2, 2)

	err := cpu.MatMulContext(ctx, cpu.New(), a, b, out)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("MatMulContext error = %v, want context.Canceled", err)
	}
}

func TestMatMulPublicShapeError(t *testing.T) {
	a, _ := tensor.Zeros[float32](2, 3)
	b, _ := tensor.Zeros[float32](2, 3)
	out, _ := tensor.Zeros[float32](2, 3)

	if err := cpu.MatMul(a, b, out); !errors.Is(err, tensor.ErrInvalidArgument) {
		t.Errorf("MatMul error = %v, want ErrInvalidArgument", err)
	}
}
