package basis

import (
	"gonum.org/v1/gonum/mat"
)

// ChebyshevT evaluates T_0..T_{N-1} at x with the three-term recurrence
// T_{n+1} = 2x T_n - T_{n-1}.
func ChebyshevT(x float64, N int, dst []float64) []float64 {
	if len(dst) < N {
		dst = make([]float64, N)
	}
	dst = dst[:N]
	if N > 0 {
		dst[0] = 1
	}
	if N > 1 {
		dst[1] = x
	}
	for n := 1; n < N-1; n++ {
		dst[n+1] = 2*x*dst[n] - dst[n-1]
	}
	return dst
}

// Vandermonde builds V(j,m) = T_m(x_j)
func Vandermonde(x []float64, N int) (V *mat.Dense) {
	V = mat.NewDense(len(x), N, nil)
	for j, xj := range x {
		ChebyshevT(xj, N, V.RawRowView(j))
	}
	return
}

// Derivative returns the d-th derivative of every column of a Chebyshev
// coefficient matrix. The row count is kept so the result lines up with the
// same Vandermonde matrix.
func Derivative(C *mat.Dense, d int) *mat.Dense {
	nr, nc := C.Dims()
	R := mat.DenseCopyOf(C)
	if d == 0 {
		return R
	}
	a := make([]float64, nr)
	b := make([]float64, nr)
	for j := 0; j < nc; j++ {
		mat.Col(a, j, R)
		for k := 0; k < d; k++ {
			chebDer(a, b)
			a, b = b, a
		}
		R.SetCol(j, a)
	}
	return R
}

// chebDer writes the coefficients of the derivative of the series a into b:
// b_k = b_{k+2} + 2(k+1) a_{k+1}, with b_0 halved.
func chebDer(a, b []float64) {
	n := len(a)
	for i := range b {
		b[i] = 0
	}
	for k := n - 2; k >= 0; k-- {
		var b2 float64
		if k+2 < n {
			b2 = b[k+2]
		}
		b[k] = b2 + 2*float64(k+1)*a[k+1]
	}
	if n > 0 {
		b[0] *= 0.5
	}
}

// Coefficients returns the N x size matrix whose column k holds the Chebyshev
// coefficients of basis function k.
func (b Basis) Coefficients(N int) *mat.Dense {
	return b.Family.Coefficients(N)
}

func (f Family) Coefficients(N int) (C *mat.Dense) {
	M := f.EffectiveSize(N)
	C = mat.NewDense(N, M, nil)
	for k := 0; k < M; k++ {
		kf := float64(k)
		C.Set(k, k, 1)
		switch f {
		case Dirichlet:
			C.Set(k+2, k, -1)
		case Neumann:
			r := kf / (kf + 2)
			C.Set(k+2, k, -r*r)
		case Biharmonic:
			C.Set(k+2, k, -2*(kf+2)/(kf+3))
			C.Set(k+4, k, (kf+1)/(kf+3))
		}
	}
	return
}

// Evaluate returns the values of the d-th derivative of every basis function
// at the nodes x: E(j,k) = phi_k^(d)(x_j).
func (b Basis) Evaluate(x []float64, N, d int) *mat.Dense {
	V := Vandermonde(x, N)
	C := Derivative(b.Coefficients(N), d)
	var E mat.Dense
	E.Mul(V, C)
	return &E
}
