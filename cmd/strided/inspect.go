package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/strided-ml/strided/internal/serialization"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the float64 tensors stored in a SafeTensors file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tensors, meta, err := serialization.ReadFile[float64](args[0])
			if err != nil {
				return err
			}

			names := make([]string, 0, len(tensors))
			for name := range tensors {
				names = append(names, name)
			}
			sort.Strings(names)

			w := cmd.OutOrStdout()
			if op, ok := meta["op"]; ok {
				if _, err := fmt.Fprintf(w, "op: %s\n", op); err != nil {
					return err
				}
			}
			defer func() {
				for _, t := range tensors {
					t.Release()
				}
			}()
			for _, name := range names {
				t := tensors[name]
				s, err := formatTensor(t, cfg.Output.Precision)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(w, "%s %v %s\n", name, t.Shape(), s); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
