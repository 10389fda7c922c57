package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/strided-ml/strided/internal/backend/cpu"
	"github.com/strided-ml/strided/internal/tensor"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the worked tensor examples and print their results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			d := &demo{
				ctx:     cmd.Context(),
				w:       cmd.OutOrStdout(),
				backend: newBackend(cfg),
			}
			return d.run()
		},
	}
}

type demo struct {
	ctx     context.Context
	w       io.Writer
	backend *cpu.CPUBackend
}

func (d *demo) run() error {
	steps := []struct {
		name string
		fn   func() (string, error)
	}{
		{"matmul", d.matmul2D},
		{"broadcast matmul", d.broadcastMatmul},
		{"in-place add", d.inPlaceAdd},
		{"broadcast add", d.broadcastAdd},
		{"iteration order", d.iterationOrder},
		{"slice and clone", d.sliceClone},
	}

	for i, s := range steps {
		slog.Debug("demo step", "n", i+1, "name", s.name)
		out, err := s.fn()
		if err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		if _, err := fmt.Fprintf(d.w, "%d. %s: %s\n", i+1, s.name, out); err != nil {
			return err
		}
	}
	return nil
}

func (d *demo) matmul2D() (string, error) {
	x1, _ := tensor.FromSlice([]int32{4, 1, -6, 8}, 2, 2)
	x2, _ := tensor.FromSlice([]int32{4, -18, 2, -3}, 2, 2)
	out, _ := tensor.Zeros[int32](2, 2)
	defer release(x1, x2, out)

	if err := cpu.MatMulContext(d.ctx, d.backend, x1, x2, out); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (d *demo) broadcastMatmul() (string, error) {
	x1, _ := tensor.FromSlice([]int32{4, 1, -6, 8}, 2, 2)
	x2, _ := tensor.FromSlice([]int32{4, -18, 2, -3, 9, -1, -92, 3}, 2, 2, 2)
	out, _ := tensor.Zeros[int32](2, 2, 2)
	defer release(x1, x2, out)

	if err := cpu.MatMulContext(d.ctx, d.backend, x1, x2, out); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (d *demo) inPlaceAdd() (string, error) {
	arr, _ := tensor.FromSlice([]int32{1, 2, 3, 4}, 2, 2)
	arr2, _ := tensor.FromSlice([]int32{5, 6, 7, 8}, 2, 2)
	defer release(arr, arr2)

	if _, err := arr.AddInPlace(arr2); err != nil {
		return "", err
	}
	first := arr.String()
	if _, err := arr.AddInPlace(arr); err != nil {
		return "", err
	}
	return first + " then " + arr.String(), nil
}

func (d *demo) broadcastAdd() (string, error) {
	arr, _ := tensor.FromSlice([]int32{1, 2, 3, 4}, 2, 2)
	row, _ := tensor.FromSlice([]int32{5, 6}, 2)
	defer release(arr, row)

	if _, err := arr.AddInPlace(row); err != nil {
		return "", err
	}
	return arr.String(), nil
}

// fill232 builds the (2, 3, 2) tensor with arr[i, i2, i3] = i3*6 + i2*2 + i.
func fill232() (*tensor.Tensor[int32], error) {
	arr, err := tensor.New[int32](2, 3, 2)
	if err != nil {
		return nil, err
	}
	for i := 0; i < 2; i++ {
		for i2 := 0; i2 < 3; i2++ {
			for i3 := 0; i3 < 2; i3++ {
				if err := arr.Set(int32(i3*6+i2*2+i), i, i2, i3); err != nil {
					return nil, err
				}
			}
		}
	}
	return arr, nil
}

func (d *demo) iterationOrder() (string, error) {
	arr, err := fill232()
	if err != nil {
		return "", err
	}
	defer arr.Release()
	return visit(arr)
}

func (d *demo) sliceClone() (string, error) {
	arr, err := fill232()
	if err != nil {
		return "", err
	}
	defer arr.Release()

	view, err := arr.SliceAxis(1, 2)
	if err != nil {
		return "", err
	}
	defer view.Release()

	c, err := view.Clone()
	if err != nil {
		return "", err
	}
	defer c.Release()
	return visit(c)
}

// visit lists the elements of t in iterator order.
func visit(t *tensor.Tensor[int32]) (string, error) {
	var parts []string
	for it := t.Begin(); !it.AtEnd(); {
		v, err := it.Value()
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprint(v))
		if err := it.Next(); err != nil {
			return "", err
		}
	}
	return strings.Join(parts, " "), nil
}

func release(ts ...*tensor.Tensor[int32]) {
	for _, t := range ts {
		t.Release()
	}
}
