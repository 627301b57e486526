package basis

import (
	"fmt"
	"math"
	"strings"
)

// Quadrature selects the Chebyshev node family used for projections
type Quadrature uint8

const (
	GaussChebyshev Quadrature = iota // GC, interior roots of T_N
	GaussLobatto                     // GL, extrema of T_{N-1} including +-1
)

func (q Quadrature) String() string {
	switch q {
	case GaussChebyshev:
		return "GC"
	case GaussLobatto:
		return "GL"
	}
	return fmt.Sprintf("Quadrature(%d)", uint8(q))
}

func ParseQuadrature(s string) (Quadrature, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GC", "GAUSSCHEBYSHEV", "GAUSS-CHEBYSHEV":
		return GaussChebyshev, nil
	case "GL", "GAUSSLOBATTO", "GAUSS-LOBATTO":
		return GaussLobatto, nil
	}
	return 0, fmt.Errorf("basis: unknown quadrature %q", s)
}

func (q Quadrature) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

func (q *Quadrature) UnmarshalText(text []byte) error {
	v, err := ParseQuadrature(string(text))
	if err != nil {
		return err
	}
	*q = v
	return nil
}

// PointsAndWeights returns the N quadrature nodes (descending, as cosines of
// increasing angles) and the Chebyshev-weighted quadrature weights.
func PointsAndWeights(N int, q Quadrature) (x, w []float64) {
	x = make([]float64, N)
	w = make([]float64, N)
	switch q {
	case GaussLobatto:
		if N == 1 {
			x[0], w[0] = 1, math.Pi
			return
		}
		h := math.Pi / float64(N-1)
		for j := 0; j < N; j++ {
			x[j] = math.Cos(float64(j) * h)
			w[j] = h
		}
		w[0] *= 0.5
		w[N-1] *= 0.5
	default:
		h := math.Pi / float64(N)
		for j := 0; j < N; j++ {
			x[j] = math.Cos(float64(2*j+1) * h / 2)
			w[j] = h
		}
	}
	return
}

// Ck returns the normalization factors of the discrete Chebyshev inner
// product: (T_k, T_k)_N = ck[k] pi/2. The last mode doubles under
// Gauss-Lobatto because the rule is only exact to degree 2N-3.
func Ck(N int, q Quadrature) []float64 {
	ck := make([]float64, N)
	for i := range ck {
		ck[i] = 1
	}
	if N > 0 {
		ck[0] = 2
	}
	if q == GaussLobatto && N > 1 {
		ck[N-1] = 2
	}
	return ck
}

// Wavenumbers returns 0..N-1 as floats
func Wavenumbers(N int) []float64 {
	k := make([]float64, N)
	for i := range k {
		k[i] = float64(i)
	}
	return k
}
