package utils

import (
	"math"
	"math/rand/v2"
)

// NewField allocates a zeroed row-major field of rows modes by batch pencils
func NewField(rows, batch int) []float64 {
	return make([]float64, rows*batch)
}

// RandomField fills a field with reproducible values in [-1, 1)
func RandomField(rows, batch int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	f := NewField(rows, batch)
	for i := range f {
		f[i] = 2*rng.Float64() - 1
	}
	return f
}

// RandomComplexField is RandomField for complex pencils
func RandomComplexField(rows, batch int, seed uint64) []complex128 {
	return ComplexView(RandomField(rows, 2*batch, seed))
}

// Pencil gathers pencil b of a row-major field
func Pencil(f []float64, batch, b int) []float64 {
	p := make([]float64, len(f)/batch)
	for i := range p {
		p[i] = f[i*batch+b]
	}
	return p
}

// SetPencil scatters p into pencil b of a row-major field
func SetPencil(f []float64, batch, b int, p []float64) {
	for i, v := range p {
		f[i*batch+b] = v
	}
}

// MaxRelDiff returns max|a-b| / max(1, max|b|)
func MaxRelDiff(a, b []float64) float64 {
	var d, s float64
	for i := range b {
		d = math.Max(d, math.Abs(a[i]-b[i]))
		s = math.Max(s, math.Abs(b[i]))
	}
	return d / math.Max(1, s)
}
