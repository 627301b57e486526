package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/notargets/ShenKernel/banded"
	"github.com/notargets/ShenKernel/runner"
	"github.com/notargets/ShenKernel/utils"
	"github.com/spf13/cobra"
)

func newBenchCmd(opts *rootOptions) *cobra.Command {
	var (
		batch      int
		iterations int
	)
	cmd := &cobra.Command{
		Use:   "bench [operator...]",
		Short: "Time the apply strategies on a batched field",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if len(args) > 0 {
				cfg.Operators = args
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if batch < 1 || iterations < 1 {
				return fmt.Errorf("batch %d and iterations %d must be positive: %w",
					batch, iterations, banded.ErrShapeMismatch)
			}
			kr := runner.NewRunner(cfg, opts.logger)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "OPERATOR\tSTRATEGY\tN=%d\tPARTITIONS=%d\n", cfg.Modes, kr.NumPartitions)
			for _, name := range kr.Names() {
				op, err := kr.Operator(name)
				if err != nil {
					return err
				}
				rows, cols := op.Shape()
				in := utils.RandomField(cols, batch, 1)
				out := utils.NewField(rows, batch)
				for _, s := range []banded.Strategy{banded.Reference, banded.Generic, banded.Specialized} {
					view := op.WithStrategy(s)
					start := time.Now()
					for i := 0; i < iterations; i++ {
						if err := kr.Run(ctx, view, in, out, batch); err != nil {
							return err
						}
					}
					per := time.Since(start) / time.Duration(iterations)
					fmt.Fprintf(w, "%s\t%s\t%v\t\n", name, s, per)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 64, "pencils per apply")
	cmd.Flags().IntVar(&iterations, "iterations", 100, "applies per measurement")
	return cmd
}
