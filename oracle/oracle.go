// Package oracle derives banded Galerkin matrices numerically by projecting
// basis functions on the quadrature nodes. It is the reference every closed
// form is checked against and the fallback when none is known.
package oracle

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/ShenKernel/banded"
	"github.com/notargets/ShenKernel/basis"
	"gonum.org/v1/gonum/mat"
)

// Tolerance separates structural zeros from stored diagonals and bounds the
// closed-form/oracle disagreement.
const Tolerance = 1e-8

var ErrOracleMismatch = errors.New("oracle: closed form disagrees with projection")

// MismatchError locates the first disagreeing entry
type MismatchError struct {
	Name     string
	Offset   int
	Index    int
	Got      float64
	Want     float64
	Relative float64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("oracle: %s offset %d index %d: got %.17g, want %.17g (tolerance %.3g)",
		e.Name, e.Offset, e.Index, e.Got, e.Want, e.Relative)
}

func (e *MismatchError) Unwrap() error { return ErrOracleMismatch }

// Project forms test^T W trial^(d) on the trial quadrature, truncated to the
// (test size, trial size) shape.
func Project(p basis.InnerProduct) (*mat.Dense, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	x, w := basis.PointsAndWeights(p.N, p.Trial.Quad)
	test := p.Test.Evaluate(x, p.N, 0)
	trial := p.Trial.Evaluate(x, p.N, p.Derivative)
	for j, wj := range w {
		row := trial.RawRowView(j)
		for k := range row {
			row[k] *= wj
		}
	}
	var D mat.Dense
	D.Mul(test.T(), trial)
	return &D, nil
}

// Extract keeps the diagonals of D whose largest magnitude exceeds tol
func Extract(D mat.Matrix, tol float64) *banded.Matrix {
	rows, cols := D.Dims()
	m := banded.NewMatrix(rows, cols)
	for k := -(rows - 1); k < cols; k++ {
		L := banded.BandLength(rows, cols, k)
		vals := make([]float64, L)
		var mx float64
		for i := range vals {
			r, c := i, i+k
			if k < 0 {
				r, c = i-k, i
			}
			vals[i] = D.At(r, c)
			mx = math.Max(mx, math.Abs(vals[i]))
		}
		if mx > tol {
			// L > 0 for every k in range
			_ = m.Set(k, vals)
		}
	}
	return m
}

// Derive returns the oracle matrix for p, scaled when Scale differs from one.
// A Neumann test space gets its null-mode projection.
func Derive(p basis.InnerProduct) (*banded.Matrix, error) {
	D, err := Project(p)
	if err != nil {
		return nil, err
	}
	m := Extract(D, Tolerance)
	if math.Abs(p.Scale-1) > Tolerance {
		m.ScaleInPlace(p.Scale)
	}
	m.SetZeroNullMode(p.Test.Family == basis.Neumann)
	return m, nil
}

// Verify compares every band of m with the oracle. Entries must agree within
// Tolerance relative to max(1, max|entry|); high derivative orders grow the
// entries like N^(2d) so an absolute bound is meaningless there. Bands
// missing on either side compare against zeros.
func Verify(m *banded.Matrix, p basis.InnerProduct) error {
	ref, err := Derive(p)
	if err != nil {
		return err
	}
	rows, cols := m.Shape()
	rr, rc := ref.Shape()
	if rows != rr || cols != rc {
		return fmt.Errorf("%s: shape (%d,%d), oracle (%d,%d): %w",
			p.Name(), rows, cols, rr, rc, banded.ErrShapeMismatch)
	}
	tol := Tolerance * math.Max(1, ref.MaxAbs())
	seen := make(map[int]bool)
	offsets := append(m.Offsets(), ref.Offsets()...)
	for _, k := range offsets {
		if seen[k] {
			continue
		}
		seen[k] = true
		got, want := m.Band(k), ref.Band(k)
		for i := 0; i < banded.BandLength(rows, cols, k); i++ {
			var g, w float64
			if i < got.Len {
				g = got.At(i)
			}
			if i < want.Len {
				w = want.At(i)
			}
			if math.Abs(g-w) > tol {
				return &MismatchError{Name: p.Name(), Offset: k, Index: i, Got: g, Want: w, Relative: tol}
			}
		}
	}
	return nil
}
