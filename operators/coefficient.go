package operators

import (
	"fmt"

	"github.com/notargets/ShenKernel/banded"
)

// Coefficient is a composite weight: one scalar, or one value per pencil
// (typically per Fourier wavenumber).
type Coefficient struct {
	value  float64
	values []float64
}

func Scalar(v float64) Coefficient { return Coefficient{value: v} }

// PerPencil uses v[p] for pencil p. The slice is not copied.
func PerPencil(v []float64) Coefficient { return Coefficient{values: v} }

func (c Coefficient) IsScalar() bool { return c.values == nil }

func (c Coefficient) At(p int) float64 {
	if c.values == nil {
		return c.value
	}
	return c.values[p]
}

func (c Coefficient) check(span banded.Span, cols int) error {
	if c.values == nil {
		return nil
	}
	if last := span.Pencil(cols - 1); last >= len(c.values) {
		return fmt.Errorf("coefficient has %d pencils, panel reaches pencil %d: %w",
			len(c.values), last, banded.ErrShapeMismatch)
	}
	return nil
}

// expand returns the weight of every panel column
func (c Coefficient) expand(span banded.Span, cols int) []float64 {
	w := make([]float64, cols)
	for b := range w {
		w[b] = c.At(span.Pencil(b))
	}
	return w
}

func checkCoefficients(span banded.Span, cols int, cs ...Coefficient) error {
	for _, c := range cs {
		if err := c.check(span, cols); err != nil {
			return err
		}
	}
	return nil
}
