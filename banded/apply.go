package banded

import (
	"fmt"

	"github.com/notargets/ShenKernel/utils"
	"gonum.org/v1/gonum/blas/blas64"
)

// Span places a panel inside a larger batched field: column c of the panel
// belongs to pencil (First+c)/Interleave. Interleave is 2 for complex data
// viewed as real and imaginary columns.
type Span struct {
	First      int
	Interleave int
}

// Pencil returns the pencil index of panel column c
func (s Span) Pencil(c int) int {
	il := max(s.Interleave, 1)
	return (s.First + c) / il
}

// Applier maps a panel of trial coefficients to test coefficients
type Applier interface {
	Shape() (rows, cols int)
	ApplyPanel(in, out blas64.General, span Span) error
}

var _ Applier = (*Matrix)(nil)

// Row returns the Cols active entries of row i of a panel
func Row(p blas64.General, i int) []float64 {
	return p.Data[i*p.Stride : i*p.Stride+p.Cols]
}

// VectorPanel wraps a 1-D coefficient vector
func VectorPanel(v []float64) blas64.General {
	return blas64.General{Rows: len(v), Cols: 1, Stride: 1, Data: v}
}

// BatchPanel wraps a row-major field of batch pencils: element (i, b) at
// v[i*batch+b].
func BatchPanel(v []float64, batch int) (blas64.General, error) {
	if batch < 1 || len(v)%batch != 0 {
		return blas64.General{}, fmt.Errorf("length %d with batch %d: %w", len(v), batch, ErrShapeMismatch)
	}
	return blas64.General{Rows: len(v) / batch, Cols: batch, Stride: batch, Data: v}, nil
}

// ComplexPanel views a complex field as a real panel with the real and
// imaginary parts of each pencil in adjacent columns. No data is copied.
func ComplexPanel(v []complex128, batch int) (blas64.General, error) {
	return BatchPanel(utils.RealView(v), 2*batch)
}

// CheckPanels validates operand shapes against a rows x cols operator.
// Inputs may carry more rows than the trial size (padded spectral buffers).
// Applies are out of place, so in and out must not share memory.
func CheckPanels(in, out blas64.General, rows, cols int) error {
	switch {
	case in.Cols < 1 || in.Cols != out.Cols:
		return fmt.Errorf("input has %d pencils, output %d: %w", in.Cols, out.Cols, ErrShapeMismatch)
	case in.Rows < cols:
		return fmt.Errorf("input has %d modes, trial size is %d: %w", in.Rows, cols, ErrShapeMismatch)
	case out.Rows < rows:
		return fmt.Errorf("output has %d modes, test size is %d: %w", out.Rows, rows, ErrShapeMismatch)
	case in.Stride < in.Cols || out.Stride < out.Cols:
		return fmt.Errorf("stride smaller than pencil count: %w", ErrShapeMismatch)
	case len(in.Data) < (in.Rows-1)*in.Stride+in.Cols:
		return fmt.Errorf("input buffer too short: %w", ErrShapeMismatch)
	case len(out.Data) < (out.Rows-1)*out.Stride+out.Cols:
		return fmt.Errorf("output buffer too short: %w", ErrShapeMismatch)
	case utils.Overlaps(in.Data[:(in.Rows-1)*in.Stride+in.Cols], out.Data[:(out.Rows-1)*out.Stride+out.Cols]):
		return fmt.Errorf("input and output panels overlap: %w", ErrShapeMismatch)
	}
	return nil
}

// ZeroPanel clears every active entry of p
func ZeroPanel(p blas64.General) {
	for i := 0; i < p.Rows; i++ {
		clear(Row(p, i))
	}
}

// Apply computes out = m*in for a single pencil
func (m *Matrix) Apply(in, out []float64) error {
	return m.ApplyPanel(VectorPanel(in), VectorPanel(out), Span{})
}

// ApplyBatched computes out = m*in for batch pencils stored row-major
func (m *Matrix) ApplyBatched(in, out []float64, batch int) error {
	pin, err := BatchPanel(in, batch)
	if err != nil {
		return err
	}
	pout, err := BatchPanel(out, batch)
	if err != nil {
		return err
	}
	return m.ApplyPanel(pin, pout, Span{Interleave: 1})
}

// ApplyComplex applies the real operator to the real and imaginary parts of
// a complex field in a single pass.
func (m *Matrix) ApplyComplex(in, out []complex128, batch int) error {
	pin, err := ComplexPanel(in, batch)
	if err != nil {
		return err
	}
	pout, err := ComplexPanel(out, batch)
	if err != nil {
		return err
	}
	return m.ApplyPanel(pin, pout, Span{Interleave: 2})
}

// ApplyPanel is the common entry point: validate, zero, evaluate with the
// resolved kernel, then project out the null mode when required. Nothing is
// written when validation fails.
func (m *Matrix) ApplyPanel(in, out blas64.General, _ Span) error {
	if err := CheckPanels(in, out, m.rows, m.cols); err != nil {
		return err
	}
	ZeroPanel(out)
	m.exec(m, in, out)
	if m.zeroNullMode {
		clear(Row(out, 0))
	}
	return nil
}
