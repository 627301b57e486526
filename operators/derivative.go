package operators

import "math"

// First-derivative operators (u', v)_w

// Neumann trial, Dirichlet test
func cdnBands(w *bandWriter, N int, ck []float64) {
	w.values(-1, func(e int) float64 {
		k := float64(e)
		return -neumannRatio(k) * (k + 2) * math.Pi
	})
	w.values(1, func(e int) float64 { return float64(e+1) * math.Pi })
}

func cddBands(w *bandWriter, N int, ck []float64) {
	w.values(-1, func(e int) float64 { return -float64(e+2) * math.Pi })
	w.values(1, func(e int) float64 { return float64(e+1) * math.Pi })
}

// Dirichlet trial, Neumann test. Every odd band above the first carries the
// same row factor.
func cndBands(w *bandWriter, N int, ck []float64) {
	w.values(-1, func(e int) float64 { return -float64(e+2) * math.Pi })
	w.values(1, func(e int) float64 {
		k := float64(e)
		return -(2 - neumannRatio(k)*(k+3)) * math.Pi
	})
	for j := 3; w.length(j) > 0; j += 2 {
		w.values(j, func(e int) float64 { return -(1 - neumannRatio(float64(e))) * 2 * math.Pi })
	}
}

// Dirichlet trial, Chebyshev test: N x (N-2) with constant odd bands
func ctdBands(w *bandWriter, N int, ck []float64) {
	w.values(-1, func(e int) float64 { return -float64(e+2) * math.Pi })
	for j := 1; w.length(j) > 0; j += 2 {
		w.constant(j, -2*math.Pi)
	}
}

// Chebyshev trial, Dirichlet test: (N-2) x N
func cdtBands(w *bandWriter, N int, ck []float64) {
	w.values(1, func(e int) float64 { return float64(e+1) * math.Pi })
}

// Dirichlet trial, biharmonic test: (N-4) x (N-2)
func cbdBands(w *bandWriter, N int, ck []float64) {
	w.values(-1, func(e int) float64 { return -float64(e+2) * math.Pi })
	w.values(1, func(e int) float64 { return 2 * float64(e+1) * math.Pi })
	w.values(3, func(e int) float64 { return -float64(e+1) * math.Pi })
}

// Biharmonic trial, Dirichlet test: (N-2) x (N-4)
func cdbBands(w *bandWriter, N int, ck []float64) {
	w.values(-3, func(e int) float64 {
		k := float64(e + 3)
		return (k - 2) * (k + 1) / k * math.Pi
	})
	w.values(-1, func(e int) float64 {
		k := float64(e + 2)
		return -2 * k * k / (k + 1) * math.Pi
	})
	w.values(1, func(e int) float64 { return float64(e+1) * math.Pi })
}
