package banded

import (
	"fmt"
	"strings"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// Layout is a materialized sparse storage format
type Layout uint8

const (
	RowCompressed    Layout = iota // CSR
	ColumnCompressed               // CSC
	Diagonal                       // LAPACK band storage
)

func (l Layout) valid() bool { return l <= Diagonal }

func (l Layout) String() string {
	switch l {
	case RowCompressed:
		return "csr"
	case ColumnCompressed:
		return "csc"
	case Diagonal:
		return "dia"
	}
	return fmt.Sprintf("Layout(%d)", uint8(l))
}

func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csr", "":
		return RowCompressed, nil
	case "csc":
		return ColumnCompressed, nil
	case "dia", "band":
		return Diagonal, nil
	}
	return 0, fmt.Errorf("layout %q: %w", s, ErrUnsupportedFormat)
}

func (l Layout) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Layout) UnmarshalText(text []byte) error {
	v, err := ParseLayout(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Materialize returns m in layout l. The result is cached until the layout
// changes or m is mutated in place. It is not safe to call concurrently.
func (m *Matrix) Materialize(l Layout) (mat.Matrix, error) {
	if m.cache != nil && m.cacheLayout == l {
		return m.cache, nil
	}
	A, err := m.build(l)
	if err != nil {
		return nil, err
	}
	m.cache, m.cacheLayout = A, l
	return A, nil
}

func (m *Matrix) build(l Layout) (mat.Matrix, error) {
	switch l {
	case RowCompressed, ColumnCompressed:
		var (
			ri, ci []int
			data   []float64
		)
		for _, k := range m.offsets {
			d := m.diags[k]
			for i := 0; i < d.length; i++ {
				v := d.at(i)
				if v == 0 {
					continue
				}
				r, c := position(k, i)
				ri = append(ri, r)
				ci = append(ci, c)
				data = append(data, v)
			}
		}
		coo := sparse.NewCOO(m.rows, m.cols, ri, ci, data)
		if l == RowCompressed {
			return coo.ToCSR(), nil
		}
		return coo.ToCSC(), nil
	case Diagonal:
		var kl, ku int
		if n := len(m.offsets); n > 0 {
			kl = max(0, -m.offsets[0])
			ku = max(0, m.offsets[n-1])
		}
		bd := mat.NewBandDense(m.rows, m.cols, kl, ku, nil)
		for _, k := range m.offsets {
			d := m.diags[k]
			for i := 0; i < d.length; i++ {
				r, c := position(k, i)
				bd.SetBand(r, c, d.at(i))
			}
		}
		return bd, nil
	}
	return nil, fmt.Errorf("layout %v: %w", l, ErrUnsupportedFormat)
}
