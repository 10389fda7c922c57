package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/strided-ml/strided/internal/backend/cpu"
	"github.com/strided-ml/strided/internal/serialization"
	"github.com/strided-ml/strided/internal/tensor"
)

func newMatmulCmd() *cobra.Command {
	var aJSON, bJSON, savePath string

	cmd := &cobra.Command{
		Use:   "matmul",
		Short: "Multiply two tensors given as nested JSON arrays",
		Example: `  strided matmul --a '[[4,1],[-6,8]]' --b '[[4,-18],[2,-3]]'
  strided matmul --a '[1,2,3]' --b '[[[1,0],[0,1],[1,1]],[[2,0],[0,2],[2,2]]]'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			a, err := parseTensor(aJSON)
			if err != nil {
				return fmt.Errorf("--a: %w", err)
			}
			defer a.Release()

			b, err := parseTensor(bJSON)
			if err != nil {
				return fmt.Errorf("--b: %w", err)
			}
			defer b.Release()

			outShape := productShape(a.Shape(), b.Shape())
			slog.Debug("matmul", "a", a.Shape(), "b", b.Shape(), "out", outShape, "workers", cfg.Runtime.Workers)

			out, err := tensor.New[float64](outShape...)
			if err != nil {
				return err
			}
			defer out.Release()

			if err := cpu.MatMulContext(cmd.Context(), newBackend(cfg), a, b, out); err != nil {
				return err
			}

			if savePath != "" {
				err := serialization.WriteFile(savePath, map[string]*tensor.Tensor[float64]{
					"a": a, "b": b, "out": out,
				}, map[string]string{"op": "matmul"})
				if err != nil {
					return fmt.Errorf("save: %w", err)
				}
				slog.Debug("saved tensors", "path", savePath)
			}

			s, err := formatTensor(out, cfg.Output.Precision)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}

	cmd.Flags().StringVar(&aJSON, "a", "", "Left operand as a nested JSON array (rank 1..4)")
	cmd.Flags().StringVar(&bJSON, "b", "", "Right operand as a nested JSON array (rank 1..4)")
	cmd.Flags().StringVar(&savePath, "save", "", "Also write a, b and out to this SafeTensors file")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")

	return cmd
}
