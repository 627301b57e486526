package operators

import "math"

const halfPi = math.Pi / 2

// neumannRatio returns (k/(k+2))^2, the Neumann boundary coefficient of mode k
func neumannRatio(k float64) float64 {
	r := k / (k + 2)
	return r * r
}

// (phi_j, phi_k) for the Dirichlet basis
func bddBands(w *bandWriter, N int, ck []float64) {
	w.constant(-2, -halfPi)
	w.values(0, func(e int) float64 { return halfPi * (ck[e] + ck[e+2]) })
	w.constant(2, -halfPi)
}

// (phi_j, psi_k): Dirichlet trial, Neumann test
func bndBands(w *bandWriter, N int, ck []float64) {
	w.constant(-2, -halfPi)
	w.values(0, func(e int) float64 {
		return halfPi * (ck[e] + ck[e+2]*neumannRatio(float64(e)))
	})
	w.values(2, func(e int) float64 { return -halfPi * neumannRatio(float64(e)) })
}

// (psi_j, phi_k): Neumann trial, Dirichlet test
func bdnBands(w *bandWriter, N int, ck []float64) {
	w.values(-2, func(e int) float64 { return -halfPi * neumannRatio(float64(e)) })
	w.values(0, func(e int) float64 {
		return halfPi * (ck[e] + ck[e+2]*neumannRatio(float64(e)))
	})
	w.constant(2, -halfPi)
}

func bttBands(w *bandWriter, N int, ck []float64) {
	w.values(0, func(e int) float64 { return halfPi * ck[e] })
}

func bnnBands(w *bandWriter, N int, ck []float64) {
	w.values(0, func(e int) float64 {
		r := neumannRatio(float64(e))
		return halfPi * (ck[e] + ck[e+2]*r*r)
	})
	w.symmetric(2, func(e int) float64 { return -halfPi * neumannRatio(float64(e)) })
}

// Chebyshev trial, Dirichlet test: (N-2) x N
func bdtBands(w *bandWriter, N int, ck []float64) {
	w.values(0, func(e int) float64 { return halfPi * ck[e] })
	w.values(2, func(e int) float64 { return -halfPi * ck[e+2] })
}

// Dirichlet trial, Chebyshev test: N x (N-2)
func btdBands(w *bandWriter, N int, ck []float64) {
	w.values(-2, func(e int) float64 { return -halfPi * ck[e+2] })
	w.values(0, func(e int) float64 { return halfPi * ck[e] })
}

// Neumann trial, Chebyshev test: N x (N-2)
func btnBands(w *bandWriter, N int, ck []float64) {
	w.values(-2, func(e int) float64 { return -halfPi * ck[e+2] * neumannRatio(float64(e)) })
	w.values(0, func(e int) float64 { return halfPi * ck[e] })
}

// Biharmonic mass matrix, symmetric pentadiagonal with shared +-2, +-4 bands
func bbbBands(w *bandWriter, N int, ck []float64) {
	w.values(0, func(e int) float64 {
		k := float64(e)
		a := (k + 2) / (k + 3)
		b := (k + 1) / (k + 3)
		return (ck[e] + 4*a*a + ck[e+4]*b*b) * halfPi
	})
	w.symmetric(2, func(e int) float64 {
		k := float64(e)
		return -((k+2)/(k+3) + (k+4)*(k+1)/((k+5)*(k+3))) * math.Pi
	})
	w.symmetric(4, func(e int) float64 {
		k := float64(e)
		return (k + 1) / (k + 3) * halfPi
	})
}

// Dirichlet trial, biharmonic test: (N-4) x (N-2)
func bbdBands(w *bandWriter, N int, ck []float64) {
	a := func(k float64) float64 { return 2 * (k + 2) / (k + 3) }
	b := func(k float64) float64 { return (k + 1) / (k + 3) }
	w.constant(-2, -halfPi)
	w.values(0, func(e int) float64 { return (ck[e] + a(float64(e))) * halfPi })
	w.values(2, func(e int) float64 {
		k := float64(e)
		return -(a(k) + b(k)*ck[e+4]) * halfPi
	})
	w.values(4, func(e int) float64 { return b(float64(e)) * halfPi })
}
