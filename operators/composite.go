package operators

import (
	"errors"
	"fmt"

	"github.com/notargets/ShenKernel/banded"
	"github.com/notargets/ShenKernel/basis"
	"gonum.org/v1/gonum/blas/blas64"
)

var ErrIncompatibleOperators = errors.New("operators: incompatible composite operands")

var (
	_ banded.Applier = (*Helmholtz)(nil)
	_ banded.Applier = (*Biharmonic)(nil)
)

// composite holds the apply surface shared by Helmholtz and Biharmonic
type composite struct {
	rows, cols int
	kernel     func(in, out blas64.General, span banded.Span)
	coeffs     func() []Coefficient
	operands   []*Operator
}

func (c composite) Shape() (rows, cols int) { return c.rows, c.cols }

func (c composite) ApplyPanel(in, out blas64.General, span banded.Span) error {
	if err := banded.CheckPanels(in, out, c.rows, c.cols); err != nil {
		return err
	}
	if err := checkCoefficients(span, in.Cols, c.coeffs()...); err != nil {
		return err
	}
	for _, op := range c.operands {
		if !op.HasKernel() {
			return fmt.Errorf("%s band structure changed after fusing: %w", op.Name, ErrIncompatibleOperators)
		}
	}
	banded.ZeroPanel(out)
	c.kernel(in, out, span)
	return nil
}

func (c composite) Apply(in, out []float64) error {
	return c.ApplyPanel(banded.VectorPanel(in), banded.VectorPanel(out), banded.Span{Interleave: 1})
}

func (c composite) ApplyBatched(in, out []float64, batch int) error {
	pin, err := banded.BatchPanel(in, batch)
	if err != nil {
		return err
	}
	pout, err := banded.BatchPanel(out, batch)
	if err != nil {
		return err
	}
	return c.ApplyPanel(pin, pout, banded.Span{Interleave: 1})
}

func (c composite) ApplyComplex(in, out []complex128, batch int) error {
	pin, err := banded.ComplexPanel(in, batch)
	if err != nil {
		return err
	}
	pout, err := banded.ComplexPanel(out, batch)
	if err != nil {
		return err
	}
	return c.ApplyPanel(pin, pout, banded.Span{Interleave: 2})
}

func requireOperator(op *Operator, name string, N int) error {
	if op == nil || op.Name != name {
		return fmt.Errorf("expected %s: %w", name, ErrIncompatibleOperators)
	}
	if op.N() != N {
		return fmt.Errorf("%s built for N=%d, expected N=%d: %w", name, op.N(), N, ErrIncompatibleOperators)
	}
	// the fused kernels assume the closed-form band pattern, which only an
	// operator that still carries its kernel is known to have
	if !op.HasKernel() {
		return fmt.Errorf("%s band structure was modified: %w", name, ErrIncompatibleOperators)
	}
	return nil
}

// Helmholtz is alpha*ADD + beta*BDD applied in one pass
type Helmholtz struct {
	composite
	A, B        *Operator
	Alpha, Beta Coefficient
}

// NewHelmholtz fuses the Dirichlet stiffness A (ADD) and mass B (BDD)
func NewHelmholtz(A, B *Operator, alpha, beta Coefficient) (*Helmholtz, error) {
	if A == nil {
		return nil, fmt.Errorf("nil stiffness: %w", ErrIncompatibleOperators)
	}
	if err := requireOperator(A, "ADD", A.N()); err != nil {
		return nil, err
	}
	if err := requireOperator(B, "BDD", A.N()); err != nil {
		return nil, err
	}
	h := &Helmholtz{A: A, B: B, Alpha: alpha, Beta: beta}
	h.bind()
	return h, nil
}

// NewHelmholtzN builds both operands; the mass matrix uses quad
func NewHelmholtzN(N int, quad basis.Quadrature, alpha, beta Coefficient) (*Helmholtz, error) {
	A, err := New("ADD", N, quad)
	if err != nil {
		return nil, err
	}
	B, err := New("BDD", N, quad)
	if err != nil {
		return nil, err
	}
	return NewHelmholtz(A, B, alpha, beta)
}

func (h *Helmholtz) bind() {
	rows, cols := h.A.Shape()
	h.composite = composite{
		rows:     rows,
		cols:     cols,
		kernel:   h.fused,
		coeffs:   func() []Coefficient { return []Coefficient{h.Alpha, h.Beta} },
		operands: []*Operator{h.A, h.B},
	}
}

// WithCoefficients returns a copy sharing the operators, for the next stage
// of a time step.
func (h *Helmholtz) WithCoefficients(alpha, beta Coefficient) *Helmholtz {
	c := &Helmholtz{A: h.A, B: h.B, Alpha: alpha, Beta: beta}
	c.bind()
	return c
}

func (h *Helmholtz) fused(in, out blas64.General, span banded.Span) {
	A0, A2 := h.A.Band(0), h.A.Band(2)
	Bm, B0, Bp := h.B.Band(-2), h.B.Band(0), h.B.Band(2)
	rows, cols := h.rows, h.cols
	if in.Cols == 1 {
		alpha, beta := h.Alpha.At(span.Pencil(0)), h.Beta.At(span.Pencil(0))
		var acc [2]float64
		for i := rows - 1; i >= 0; i-- {
			if c := i + 2; c < cols {
				acc[c&1] += in.Data[c*in.Stride]
			}
			v0 := vec(in, i, cols)
			a := series(at(A0, i), v0, at(A2, i), acc[i&1])
			b := tri(at(Bm, i-2), vec(in, i-2, cols), at(B0, i), v0, at(Bp, i), vec(in, i+2, cols))
			out.Data[i*out.Stride] = float64(alpha*a) + float64(beta*b)
		}
		return
	}
	alpha, beta := h.Alpha.expand(span, in.Cols), h.Beta.expand(span, in.Cols)
	s := newSuffix(in.Cols, 1)
	zero := make([]float64, in.Cols)
	for i := rows - 1; i >= 0; i-- {
		if c := i + 2; c < cols {
			addRow(s.sum(0, c&1), banded.Row(in, c), 1)
		}
		acc := s.sum(0, i&1)
		a0, a2 := at(A0, i), at(A2, i)
		bm, b0, bp := at(Bm, i-2), at(B0, i), at(Bp, i)
		xm, x0, xp := row(in, i-2, cols, zero), row(in, i, cols, zero), row(in, i+2, cols, zero)
		o := banded.Row(out, i)
		for b := range o {
			a := series(a0, x0[b], a2, acc[b])
			m := tri(bm, xm[b], b0, x0[b], bp, xp[b])
			o[b] = float64(alpha[b]*a) + float64(beta[b]*m)
		}
	}
}

// Biharmonic is a0*SBB + alpha*ABB + beta*BBB applied in one pass
type Biharmonic struct {
	composite
	S, A, B         *Operator
	A0, Alpha, Beta Coefficient
}

func NewBiharmonic(S, A, B *Operator, a0, alpha, beta Coefficient) (*Biharmonic, error) {
	if S == nil {
		return nil, fmt.Errorf("nil SBB: %w", ErrIncompatibleOperators)
	}
	N := S.N()
	for name, op := range map[string]*Operator{"SBB": S, "ABB": A, "BBB": B} {
		if err := requireOperator(op, name, N); err != nil {
			return nil, err
		}
	}
	bh := &Biharmonic{S: S, A: A, B: B, A0: a0, Alpha: alpha, Beta: beta}
	bh.bind()
	return bh, nil
}

// NewBiharmonicN builds all three operands; the mass matrix uses quad
func NewBiharmonicN(N int, quad basis.Quadrature, a0, alpha, beta Coefficient) (*Biharmonic, error) {
	ops := make(map[string]*Operator, 3)
	for _, name := range []string{"SBB", "ABB", "BBB"} {
		op, err := New(name, N, quad)
		if err != nil {
			return nil, err
		}
		ops[name] = op
	}
	return NewBiharmonic(ops["SBB"], ops["ABB"], ops["BBB"], a0, alpha, beta)
}

func (bh *Biharmonic) bind() {
	rows, cols := bh.S.Shape()
	bh.composite = composite{
		rows:     rows,
		cols:     cols,
		kernel:   bh.fused,
		coeffs:   func() []Coefficient { return []Coefficient{bh.A0, bh.Alpha, bh.Beta} },
		operands: []*Operator{bh.S, bh.A, bh.B},
	}
}

func (bh *Biharmonic) WithCoefficients(a0, alpha, beta Coefficient) *Biharmonic {
	c := &Biharmonic{S: bh.S, A: bh.A, B: bh.B, A0: a0, Alpha: alpha, Beta: beta}
	c.bind()
	return c
}

func (bh *Biharmonic) fused(in, out blas64.General, span banded.Span) {
	S0, S2 := bh.S.Band(0), bh.S.Band(2)
	Am, A0, Ap := bh.A.Band(-2), bh.A.Band(0), bh.A.Band(2)
	Bm4, Bm2, B0, Bp2, Bp4 := bh.B.Band(-4), bh.B.Band(-2), bh.B.Band(0), bh.B.Band(2), bh.B.Band(4)
	rows, cols := bh.rows, bh.cols
	if in.Cols == 1 {
		p := span.Pencil(0)
		a0, alpha, beta := bh.A0.At(p), bh.Alpha.At(p), bh.Beta.At(p)
		var sa, sb [2]float64
		for i := rows - 1; i >= 0; i-- {
			if c := i + 2; c < cols {
				cf := float64(c)
				v := in.Data[c*in.Stride] / (cf + 3)
				sa[c&1] += v
				sb[c&1] += (cf + 2) * (cf + 2) * v
			}
			vm4, vm2, v0 := vec(in, i-4, cols), vec(in, i-2, cols), vec(in, i, cols)
			vp2, vp4 := vec(in, i+2, cols), vec(in, i+4, cols)
			s := biharmonicRow(at(S0, i), v0, sbbRowFactor(S2, i), float64(i), sa[i&1], sb[i&1])
			a := tri(at(Am, i-2), vm2, at(A0, i), v0, at(Ap, i), vp2)
			b := penta(at(Bm4, i-4), vm4, at(Bm2, i-2), vm2, at(B0, i), v0, at(Bp2, i), vp2, at(Bp4, i), vp4)
			out.Data[i*out.Stride] = float64(a0*s) + float64(alpha*a) + float64(beta*b)
		}
		return
	}
	a0s := bh.A0.expand(span, in.Cols)
	alphas, betas := bh.Alpha.expand(span, in.Cols), bh.Beta.expand(span, in.Cols)
	acc := newSuffix(in.Cols, 2)
	zero := make([]float64, in.Cols)
	for i := rows - 1; i >= 0; i-- {
		if c := i + 2; c < cols {
			accumulateBiharmonic(acc, banded.Row(in, c), c)
		}
		sa, sb := acc.sum(0, i&1), acc.sum(1, i&1)
		s0, p, r := at(S0, i), sbbRowFactor(S2, i), float64(i)
		am, a0, ap := at(Am, i-2), at(A0, i), at(Ap, i)
		bm4, bm2, b0, bp2, bp4 := at(Bm4, i-4), at(Bm2, i-2), at(B0, i), at(Bp2, i), at(Bp4, i)
		xm4, xm2, x0 := row(in, i-4, cols, zero), row(in, i-2, cols, zero), row(in, i, cols, zero)
		xp2, xp4 := row(in, i+2, cols, zero), row(in, i+4, cols, zero)
		o := banded.Row(out, i)
		for b := range o {
			s := biharmonicRow(s0, x0[b], p, r, sa[b], sb[b])
			a := tri(am, xm2[b], a0, x0[b], ap, xp2[b])
			m := penta(bm4, xm4[b], bm2, xm2[b], b0, x0[b], bp2, xp2[b], bp4, xp4[b])
			o[b] = float64(a0s[b]*s) + float64(alphas[b]*a) + float64(betas[b]*m)
		}
	}
}
