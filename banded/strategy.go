package banded

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Strategy selects how a matrix-vector product is evaluated. It is resolved
// to a kernel once, when the matrix is built or re-derived, never per call.
type Strategy uint8

const (
	Reference   Strategy = iota // per-offset multiply-accumulate over the stored bands
	Generic                     // materialized sparse layout
	Specialized                 // operator-specific kernel, Reference when none is attached
)

func (s Strategy) String() string {
	switch s {
	case Reference:
		return "reference"
	case Generic:
		return "generic"
	case Specialized:
		return "specialized"
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reference", "ref":
		return Reference, nil
	case "generic":
		return Generic, nil
	case "specialized", "fast", "":
		return Specialized, nil
	}
	return 0, fmt.Errorf("banded: unknown strategy %q", s)
}

func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// KernelFunc computes out = m*in on validated panels. out has already been
// zeroed; kernels must read their coefficients from m's bands.
type KernelFunc func(m *Matrix, in, out blas64.General)

// SetKernel attaches an operator-specific kernel and resolves the strategy
// again so Specialized picks it up.
func (m *Matrix) SetKernel(k KernelFunc) {
	m.fast = k
	m.resolve(m.strategy)
}

func (m *Matrix) HasKernel() bool { return m.fast != nil }

func (m *Matrix) Strategy() Strategy { return m.strategy }

// WithStrategy returns a copy of m evaluated with s. The copy owns its bands,
// so later mutations of either matrix leave the other untouched.
func (m *Matrix) WithStrategy(s Strategy) *Matrix {
	c := m.clone(identity)
	c.resolve(s)
	return c
}

// WithGenericLayout returns a Generic copy of m multiplying through layout l
func (m *Matrix) WithGenericLayout(l Layout) (*Matrix, error) {
	if !l.valid() {
		return nil, fmt.Errorf("layout %v: %w", l, ErrUnsupportedFormat)
	}
	c := m.clone(identity)
	c.layout = l
	c.resolve(Generic)
	return c, nil
}

func (m *Matrix) resolve(s Strategy) {
	m.strategy = s
	m.generic = nil
	switch s {
	case Generic:
		g, err := m.build(m.layout)
		if err != nil {
			m.exec = applyReference
			return
		}
		m.generic = g
		m.exec = applyGeneric
	case Specialized:
		if m.fast != nil {
			m.exec = m.fast
		} else {
			m.exec = applyReference
		}
	default:
		m.exec = applyReference
	}
}

// invalidate drops materialized layouts after an in-place mutation
func (m *Matrix) invalidate() {
	m.cache = nil
	if m.strategy == Generic {
		m.resolve(Generic)
	}
}

func applyReference(m *Matrix, in, out blas64.General) {
	if in.Cols == 1 {
		for _, k := range m.offsets {
			d := m.diags[k]
			for i := 0; i < d.length; i++ {
				r, c := position(k, i)
				out.Data[r*out.Stride] += d.at(i) * in.Data[c*in.Stride]
			}
		}
		return
	}
	for _, k := range m.offsets {
		d := m.diags[k]
		for i := 0; i < d.length; i++ {
			r, c := position(k, i)
			v := d.at(i)
			o := Row(out, r)
			x := Row(in, c)
			for b := range o {
				o[b] += v * x[b]
			}
		}
	}
}

func applyGeneric(m *Matrix, in, out blas64.General) {
	if bd, ok := m.generic.(*mat.BandDense); ok {
		// Dgbmv per pencil, striding down the panel column
		a := bd.RawBand()
		for b := 0; b < in.Cols; b++ {
			x := blas64.Vector{N: m.cols, Inc: in.Stride, Data: in.Data[b:]}
			y := blas64.Vector{N: m.rows, Inc: out.Stride, Data: out.Data[b:]}
			blas64.Gbmv(blas.NoTrans, 1, a, x, 0, y)
		}
		return
	}
	nz, ok := m.generic.(mat.NonZeroDoer)
	if !ok {
		applyReference(m, in, out)
		return
	}
	nz.DoNonZero(func(i, j int, v float64) {
		o := Row(out, i)
		x := Row(in, j)
		for b := range o {
			o[b] += v * x[b]
		}
	})
}
