// Package runner applies operators across the pencils of a batched field in
// parallel. The batch axis is split into contiguous column blocks; each
// worker owns one block of the output panel, so no synchronization is needed
// beyond waiting for the group.
package runner

import (
	"context"
	"fmt"

	"github.com/notargets/ShenKernel/banded"
	"github.com/notargets/ShenKernel/builder"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/blas/blas64"
)

// Runner orchestrates partitioned applies of the builder's operators
type Runner struct {
	*builder.Builder
	logger *zap.Logger
}

// NewRunner builds the operator set for cfg. It panics on an invalid
// configuration, like builder.NewBuilder.
func NewRunner(cfg builder.Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Builder: builder.NewBuilder(cfg, logger),
		logger:  logger,
	}
}

// RunPanel computes out = a*in over every partition of the panels' columns.
// interleave is 1 for real panels and 2 for interleaved complex panels. The
// panels are validated as a whole before any worker starts, so on a shape
// error out is untouched.
func (kr *Runner) RunPanel(ctx context.Context, a banded.Applier, in, out blas64.General, interleave int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, cols := a.Shape()
	if err := banded.CheckPanels(in, out, rows, cols); err != nil {
		return err
	}
	if interleave < 1 {
		interleave = 1
	}
	layout, err := kr.PencilLayout(in.Cols, interleave == 2)
	if err != nil {
		return fmt.Errorf("partition %d columns: %w", in.Cols, err)
	}
	kr.logger.Debug("partitioned apply",
		zap.Int("columns", in.Cols),
		zap.Int("partitions", layout.NumPartitions),
		zap.Int("kpartMax", layout.KpartMax))

	if layout.NumPartitions == 1 {
		return a.ApplyPanel(in, out, banded.Span{Interleave: interleave})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, part := range layout.Partitions {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			span := banded.Span{First: part.First, Interleave: interleave}
			if err := a.ApplyPanel(layout.SubPanel(in, part.ID), layout.SubPanel(out, part.ID), span); err != nil {
				return fmt.Errorf("partition %d: %w", part.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Run applies a to a row-major batched real field
func (kr *Runner) Run(ctx context.Context, a banded.Applier, in, out []float64, batch int) error {
	pin, err := banded.BatchPanel(in, batch)
	if err != nil {
		return err
	}
	pout, err := banded.BatchPanel(out, batch)
	if err != nil {
		return err
	}
	return kr.RunPanel(ctx, a, pin, pout, 1)
}

// RunComplex applies a to the real and imaginary parts of a complex field
func (kr *Runner) RunComplex(ctx context.Context, a banded.Applier, in, out []complex128, batch int) error {
	pin, err := banded.ComplexPanel(in, batch)
	if err != nil {
		return err
	}
	pout, err := banded.ComplexPanel(out, batch)
	if err != nil {
		return err
	}
	return kr.RunPanel(ctx, a, pin, pout, 2)
}

// RunOperator applies a named operator from the builder's set
func (kr *Runner) RunOperator(ctx context.Context, name string, in, out []float64, batch int) error {
	op, err := kr.Operator(name)
	if err != nil {
		return err
	}
	return kr.Run(ctx, op, in, out, batch)
}

// RunField applies a to the allocated field named src, writing field dst.
// Both fields must have the same kind and batch.
func (kr *Runner) RunField(ctx context.Context, a banded.Applier, src, dst string) error {
	in, ok := kr.Field(src)
	if !ok {
		return fmt.Errorf("field %q not allocated: %w", src, banded.ErrShapeMismatch)
	}
	out, ok := kr.Field(dst)
	if !ok {
		return fmt.Errorf("field %q not allocated: %w", dst, banded.ErrShapeMismatch)
	}
	if in.Spec.Complex != out.Spec.Complex {
		return fmt.Errorf("fields %q and %q mix real and complex: %w", src, dst, banded.ErrShapeMismatch)
	}
	interleave := 1
	if in.Spec.Complex {
		interleave = 2
	}
	return kr.RunPanel(ctx, a, in.Panel, out.Panel, interleave)
}
