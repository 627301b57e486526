// Package operators builds the banded Galerkin operators of the Shen
// spectral method from closed-form diagonals, attaches the kernel that
// exploits each operator's structure, and fuses the Helmholtz and
// biharmonic combinations used by the time integrators.
package operators

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/notargets/ShenKernel/banded"
	"github.com/notargets/ShenKernel/basis"
	"github.com/notargets/ShenKernel/oracle"
)

var (
	ErrUnknownOperator = errors.New("operators: unknown operator")
	ErrTooFewModes     = errors.New("operators: too few modes")
)

// Operator is a banded matrix together with the inner product it represents
type Operator struct {
	*banded.Matrix
	Name string
	Form basis.InnerProduct
}

// closedForm describes one registered operator. bands writes the unscaled
// inner-product values; the canonical scale is applied afterwards.
type closedForm struct {
	trial  basis.Family
	deriv  int
	test   basis.Family
	scale  float64
	bands  func(w *bandWriter, N int, ck []float64)
	kernel banded.KernelFunc
}

var registry = map[string]closedForm{
	"BDD": {basis.Dirichlet, 0, basis.Dirichlet, 1, bddBands, tridiagonalKernel},
	"BND": {basis.Dirichlet, 0, basis.Neumann, 1, bndBands, tridiagonalKernel},
	"BDN": {basis.Neumann, 0, basis.Dirichlet, 1, bdnBands, tridiagonalKernel},
	"BTT": {basis.Chebyshev, 0, basis.Chebyshev, 1, bttBands, diagonalKernel},
	"BNN": {basis.Neumann, 0, basis.Neumann, 1, bnnBands, tridiagonalKernel},
	"BDT": {basis.Chebyshev, 0, basis.Dirichlet, 1, bdtBands, rowBandKernel},
	"BTD": {basis.Dirichlet, 0, basis.Chebyshev, 1, btdBands, rowBandKernel},
	"BTN": {basis.Neumann, 0, basis.Chebyshev, 1, btnBands, rowBandKernel},
	"BBB": {basis.Biharmonic, 0, basis.Biharmonic, 1, bbbBands, pentadiagonalKernel},
	"BBD": {basis.Dirichlet, 0, basis.Biharmonic, 1, bbdBands, rowBandKernel},
	"CDN": {basis.Neumann, 1, basis.Dirichlet, 1, cdnBands, rowBandKernel},
	"CDD": {basis.Dirichlet, 1, basis.Dirichlet, 1, cddBands, rowBandKernel},
	"CND": {basis.Dirichlet, 1, basis.Neumann, 1, cndBands, oddSeriesKernel},
	"CTD": {basis.Dirichlet, 1, basis.Chebyshev, 1, ctdBands, chebyshevDerivativeKernel},
	"CDT": {basis.Chebyshev, 1, basis.Dirichlet, 1, cdtBands, rowBandKernel},
	"CBD": {basis.Dirichlet, 1, basis.Biharmonic, 1, cbdBands, rowBandKernel},
	"CDB": {basis.Biharmonic, 1, basis.Dirichlet, 1, cdbBands, rowBandKernel},
	"ABB": {basis.Biharmonic, 2, basis.Biharmonic, 1, abbBands, tridiagonalKernel},
	"ADD": {basis.Dirichlet, 2, basis.Dirichlet, -1, addBands, dirichletStiffnessKernel},
	"ANN": {basis.Neumann, 2, basis.Neumann, -1, annBands, neumannStiffnessKernel},
	"ATT": {basis.Chebyshev, 2, basis.Chebyshev, -1, attBands, chebyshevStiffnessKernel},
	"SBB": {basis.Biharmonic, 4, basis.Biharmonic, 1, sbbBands, biharmonicKernel},
}

// Names lists the registered operators in alphabetical order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a registered operator on N Chebyshev modes
func New(name string, N int, quad basis.Quadrature) (*Operator, error) {
	p, err := Form(name, N, quad)
	if err != nil {
		return nil, err
	}
	return registry[name].build(name, p)
}

// Form returns the inner product a registered operator represents at N modes,
// with its canonical scale. It fails the same way New would, without building.
func Form(name string, N int, quad basis.Quadrature) (basis.InnerProduct, error) {
	cf, ok := registry[name]
	if !ok {
		return basis.InnerProduct{}, fmt.Errorf("%q: %w", name, ErrUnknownOperator)
	}
	p := basis.InnerProduct{
		Trial:      basis.Basis{Family: cf.trial, Quad: quad},
		Derivative: cf.deriv,
		Test:       basis.Basis{Family: cf.test, Quad: quad},
		N:          N,
		Scale:      cf.scale,
	}
	return p, checkModes(p)
}

// Generate returns the operator for an arbitrary inner product: the closed
// form when one is registered for the (trial, derivative, test) triple,
// otherwise the bands derived numerically by the oracle. The closed forms
// carry their canonical sign; p.Scale is applied to the raw inner product.
func Generate(p basis.InnerProduct) (*Operator, error) {
	for _, name := range Names() {
		cf := registry[name]
		if cf.trial == p.Trial.Family && cf.test == p.Test.Family && cf.deriv == p.Derivative {
			return cf.build(name, p)
		}
	}
	if err := checkModes(p); err != nil {
		return nil, err
	}
	m, err := oracle.Derive(p)
	if err != nil {
		return nil, err
	}
	return &Operator{Matrix: m, Name: p.Name(), Form: p}, nil
}

func checkModes(p basis.InnerProduct) error {
	rows, cols := p.Shape()
	if rows < 2 || cols < 2 {
		return fmt.Errorf("%s with N=%d has shape (%d,%d): %w", p.Name(), p.N, rows, cols, ErrTooFewModes)
	}
	return nil
}

func (cf closedForm) build(name string, p basis.InnerProduct) (*Operator, error) {
	if err := checkModes(p); err != nil {
		return nil, err
	}
	rows, cols := p.Shape()
	w := &bandWriter{m: banded.NewMatrix(rows, cols)}
	cf.bands(w, p.N, basis.Ck(p.N, p.Trial.Quad))
	if w.err != nil {
		return nil, fmt.Errorf("%s N=%d: %w", name, p.N, w.err)
	}
	m := w.m
	if math.Abs(p.Scale-1) > oracle.Tolerance {
		m.ScaleInPlace(p.Scale)
	}
	m.SetZeroNullMode(cf.test == basis.Neumann)
	m.SetKernel(cf.kernel)
	return &Operator{Matrix: m.WithStrategy(banded.Specialized), Name: name, Form: p}, nil
}

// N is the number of Chebyshev modes the operator was built for
func (op *Operator) N() int { return op.Form.N }

// Scale returns alpha*op; the structure kernel stays attached
func (op *Operator) Scale(alpha float64) *Operator {
	f := op.Form
	f.Scale *= alpha
	return &Operator{Matrix: op.Matrix.Scale(alpha), Name: op.Name, Form: f}
}

func (op *Operator) Divide(alpha float64) *Operator {
	f := op.Form
	f.Scale /= alpha
	return &Operator{Matrix: op.Matrix.Divide(alpha), Name: op.Name, Form: f}
}

func (op *Operator) WithStrategy(s banded.Strategy) *Operator {
	return &Operator{Matrix: op.Matrix.WithStrategy(s), Name: op.Name, Form: op.Form}
}

func (op *Operator) WithGenericLayout(l banded.Layout) (*Operator, error) {
	m, err := op.Matrix.WithGenericLayout(l)
	if err != nil {
		return nil, err
	}
	return &Operator{Matrix: m, Name: op.Name, Form: op.Form}, nil
}

// Verify checks the bands against the numerical projection
func (op *Operator) Verify() error {
	return oracle.Verify(op.Matrix, op.Form)
}

func (op *Operator) String() string {
	rows, cols := op.Shape()
	return fmt.Sprintf("%s(N=%d, %s, %dx%d, %d bands)", op.Name, op.Form.N, op.Form.Trial.Quad, rows, cols, op.NumBands())
}

// bandWriter fills a matrix from per-element formulas, skipping bands that
// are empty for the current N.
type bandWriter struct {
	m   *banded.Matrix
	err error
}

func (w *bandWriter) length(k int) int {
	rows, cols := w.m.Shape()
	return banded.BandLength(rows, cols, k)
}

func (w *bandWriter) values(k int, f func(e int) float64) {
	L := w.length(k)
	if L == 0 || w.err != nil {
		return
	}
	v := make([]float64, L)
	for e := range v {
		v[e] = f(e)
	}
	w.err = w.m.Set(k, v)
}

func (w *bandWriter) constant(k int, c float64) {
	if w.length(k) == 0 || w.err != nil {
		return
	}
	w.err = w.m.SetConst(k, c)
}

func (w *bandWriter) symmetric(k int, f func(e int) float64) {
	L := w.length(k)
	if L == 0 || w.err != nil {
		return
	}
	v := make([]float64, L)
	for e := range v {
		v[e] = f(e)
	}
	w.err = w.m.SetSymmetric(k, v)
}
