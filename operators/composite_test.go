package operators

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/ShenKernel/banded"
	"github.com/notargets/ShenKernel/basis"
	"github.com/notargets/ShenKernel/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ulp(x float64) float64 {
	x = math.Abs(x)
	return math.Nextafter(x, math.Inf(1)) - x
}

// assertWithinULP checks got against the manual weighted sum of the terms,
// allowing one unit in the last place of the summed magnitudes.
func assertWithinULP(t *testing.T, got []float64, terms ...[]float64) {
	t.Helper()
	for i := range got {
		var want, mag float64
		for _, term := range terms {
			want += term[i]
			mag += math.Abs(term[i])
		}
		require.LessOrEqualf(t, math.Abs(got[i]-want), ulp(mag), "row %d: got %v want %v", i, got[i], want)
	}
}

func weighted(w float64, v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(w * x)
	}
	return out
}

func applyOp(t *testing.T, op *Operator, in []float64) []float64 {
	t.Helper()
	rows, _ := op.Shape()
	out := make([]float64, rows)
	require.NoError(t, op.Apply(in, out))
	return out
}

func TestHelmholtzMatchesWeightedSum(t *testing.T) {
	for _, N := range []int{8, 16, 33, 64} {
		alpha, beta := 1.3, -0.75
		h, err := NewHelmholtzN(N, basis.GaussLobatto, Scalar(alpha), Scalar(beta))
		require.NoError(t, err)
		rows, cols := h.Shape()
		assert.Equal(t, [2]int{N - 2, N - 2}, [2]int{rows, cols})
		x := utils.RandomField(cols, 1, uint64(N))
		got := make([]float64, rows)
		require.NoError(t, h.Apply(x, got))
		assertWithinULP(t, got,
			weighted(alpha, applyOp(t, h.A, x)),
			weighted(beta, applyOp(t, h.B, x)))
	}
}

func TestBiharmonicMatchesWeightedSum(t *testing.T) {
	for _, N := range []int{8, 16, 33, 64} {
		a0, alpha, beta := 0.01, -2.0, 3.5
		bh, err := NewBiharmonicN(N, basis.GaussLobatto, Scalar(a0), Scalar(alpha), Scalar(beta))
		require.NoError(t, err)
		rows, cols := bh.Shape()
		assert.Equal(t, N-4, rows)
		x := utils.RandomField(cols, 1, uint64(N)+1)
		got := make([]float64, rows)
		require.NoError(t, bh.Apply(x, got))
		assertWithinULP(t, got,
			weighted(a0, applyOp(t, bh.S, x)),
			weighted(alpha, applyOp(t, bh.A, x)),
			weighted(beta, applyOp(t, bh.B, x)))
	}
}

// Per-wavenumber coefficients: pencil b uses alpha[b], beta[b].
func TestHelmholtzPerPencil(t *testing.T) {
	N, batch := 24, 4
	alpha := []float64{1, 2, 3, 4}
	beta := []float64{-1, 0.5, 0, 10}
	h, err := NewHelmholtzN(N, basis.GaussLobatto, PerPencil(alpha), PerPencil(beta))
	require.NoError(t, err)
	rows, cols := h.Shape()
	in := utils.RandomField(cols, batch, 3)
	out := utils.NewField(rows, batch)
	require.NoError(t, h.ApplyBatched(in, out, batch))
	for b := 0; b < batch; b++ {
		x := utils.Pencil(in, batch, b)
		assertWithinULP(t, utils.Pencil(out, batch, b),
			weighted(alpha[b], applyOp(t, h.A, x)),
			weighted(beta[b], applyOp(t, h.B, x)))
	}

	short := h.WithCoefficients(PerPencil(alpha[:2]), Scalar(1))
	err = short.ApplyBatched(in, out, batch)
	assert.True(t, errors.Is(err, banded.ErrShapeMismatch))
}

func TestBiharmonicBatchedAndComplex(t *testing.T) {
	N, batch := 20, 3
	a0 := []float64{1, 0.5, 0.25}
	bh, err := NewBiharmonicN(N, basis.GaussChebyshev, PerPencil(a0), Scalar(-1), Scalar(2))
	require.NoError(t, err)
	rows, cols := bh.Shape()

	in := utils.RandomComplexField(cols, batch, 9)
	out := make([]complex128, rows*batch)
	require.NoError(t, bh.ApplyComplex(in, out, batch))
	for b := 0; b < batch; b++ {
		re := make([]float64, cols)
		im := make([]float64, cols)
		for i := 0; i < cols; i++ {
			re[i], im[i] = real(in[i*batch+b]), imag(in[i*batch+b])
		}
		single := bh.WithCoefficients(Scalar(a0[b]), Scalar(-1), Scalar(2))
		wr, wi := make([]float64, rows), make([]float64, rows)
		require.NoError(t, single.Apply(re, wr))
		require.NoError(t, single.Apply(im, wi))
		for i := 0; i < rows; i++ {
			assert.InDelta(t, wr[i], real(out[i*batch+b]), 1e-9*math.Max(1, math.Abs(wr[i])))
			assert.InDelta(t, wi[i], imag(out[i*batch+b]), 1e-9*math.Max(1, math.Abs(wi[i])))
		}
	}
}

func TestCompositeOperandChecks(t *testing.T) {
	A, err := NewADD(16, basis.GaussChebyshev)
	require.NoError(t, err)
	B, err := NewBDD(16, basis.GaussLobatto)
	require.NoError(t, err)
	B18, err := NewBDD(18, basis.GaussLobatto)
	require.NoError(t, err)

	_, err = NewHelmholtz(A, B, Scalar(1), Scalar(1))
	assert.NoError(t, err)
	_, err = NewHelmholtz(B, A, Scalar(1), Scalar(1))
	assert.True(t, errors.Is(err, ErrIncompatibleOperators))
	_, err = NewHelmholtz(A, B18, Scalar(1), Scalar(1))
	assert.True(t, errors.Is(err, ErrIncompatibleOperators))
	_, err = NewHelmholtz(nil, B, Scalar(1), Scalar(1))
	assert.True(t, errors.Is(err, ErrIncompatibleOperators))

	S, err := NewSBB(16, basis.GaussChebyshev)
	require.NoError(t, err)
	_, err = NewBiharmonic(S, S, S, Scalar(1), Scalar(1), Scalar(1))
	assert.True(t, errors.Is(err, ErrIncompatibleOperators))
}

// Fused kernels read the closed-form band pattern, so operands whose bands
// were rewritten are refused both when fusing and when applying.
func TestCompositeRejectsModifiedOperands(t *testing.T) {
	x := make([]float64, 14)
	for i := range x {
		x[i] = 1 / float64(i+1)
	}

	t.Run("AtConstruction", func(t *testing.T) {
		A, err := NewADD(16, basis.GaussChebyshev)
		require.NoError(t, err)
		B, err := NewBDD(16, basis.GaussChebyshev)
		require.NoError(t, err)
		require.NoError(t, B.SetConst(4, 1))
		assert.False(t, B.HasKernel())
		_, err = NewHelmholtz(A, B, Scalar(1), Scalar(1))
		assert.True(t, errors.Is(err, ErrIncompatibleOperators))

		S, err := NewSBB(16, basis.GaussChebyshev)
		require.NoError(t, err)
		Ab, err := NewABB(16, basis.GaussChebyshev)
		require.NoError(t, err)
		Bb, err := NewBBB(16, basis.GaussChebyshev)
		require.NoError(t, err)
		require.NoError(t, S.AddInPlace(S.Matrix.Copy()))
		_, err = NewBiharmonic(S, Ab, Bb, Scalar(1), Scalar(1), Scalar(1))
		assert.True(t, errors.Is(err, ErrIncompatibleOperators))
	})

	t.Run("AfterConstruction", func(t *testing.T) {
		h, err := NewHelmholtzN(16, basis.GaussChebyshev, Scalar(1), Scalar(1))
		require.NoError(t, err)
		require.NoError(t, h.A.AddInPlace(h.B.Matrix))
		out := append([]float64(nil), x...)
		err = h.Apply(x, out)
		assert.True(t, errors.Is(err, ErrIncompatibleOperators))
		assert.Equal(t, x, out, "no partial output")
	})

	t.Run("ScaledOperand", func(t *testing.T) {
		h, err := NewHelmholtzN(16, basis.GaussChebyshev, Scalar(1), Scalar(1))
		require.NoError(t, err)
		h.A.ScaleInPlace(2)
		got := make([]float64, 14)
		require.NoError(t, h.Apply(x, got))
		assertWithinULP(t, got, applyOp(t, h.A, x), applyOp(t, h.B, x))
	})
}

// A Helmholtz operator with only the mass term is the mass matrix.
func TestHelmholtzReducesToMass(t *testing.T) {
	h, err := NewHelmholtzN(16, basis.GaussChebyshev, Scalar(0), Scalar(1))
	require.NoError(t, err)
	x := make([]float64, 14)
	x[0] = 1
	y := make([]float64, 14)
	require.NoError(t, h.Apply(x, y))
	assert.InDelta(t, 3*math.Pi/2, y[0], 1e-15)
	assert.InDelta(t, -math.Pi/2, y[2], 1e-15)
}
