package oracle

import (
	"errors"
	"math"
	"testing"

	"github.com/notargets/ShenKernel/banded"
	"github.com/notargets/ShenKernel/basis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func product(trial basis.Family, d int, test basis.Family, N int, q basis.Quadrature) basis.InnerProduct {
	return basis.InnerProduct{
		Trial:      basis.Basis{Family: trial, Quad: q},
		Derivative: d,
		Test:       basis.Basis{Family: test, Quad: q},
		N:          N,
		Scale:      1,
	}
}

func TestExtract(t *testing.T) {
	D := mat.NewDense(3, 4, []float64{
		1, 0, 2, 1e-12,
		0, 3, 0, 4,
		5, 0, 6, 0,
	})
	m := Extract(D, Tolerance)
	assert.Equal(t, []int{-2, 0, 2}, m.Offsets())
	assert.True(t, mat.Equal(D.Slice(0, 3, 0, 3), m.Dense().Slice(0, 3, 0, 3)))
	assert.Zero(t, m.At(0, 3), "1e-12 is below tolerance")
}

func TestProjectChebyshevMass(t *testing.T) {
	for _, q := range []basis.Quadrature{basis.GaussChebyshev, basis.GaussLobatto} {
		N := 10
		D, err := Project(product(basis.Chebyshev, 0, basis.Chebyshev, N, q))
		require.NoError(t, err)
		ck := basis.Ck(N, q)
		for i := 0; i < N; i++ {
			for j := 0; j < N; j++ {
				want := 0.
				if i == j {
					want = ck[i] * math.Pi / 2
				}
				assert.InDeltaf(t, want, D.At(i, j), 1e-12, "%s (%d,%d)", q, i, j)
			}
		}
		m, err := Derive(product(basis.Chebyshev, 0, basis.Chebyshev, N, q))
		require.NoError(t, err)
		assert.Equal(t, []int{0}, m.Offsets())
	}
}

func dirichletMass(N int, q basis.Quadrature) *banded.Matrix {
	ck := basis.Ck(N, q)
	m := banded.NewMatrix(N-2, N-2)
	d0 := make([]float64, N-2)
	for i := range d0 {
		d0[i] = math.Pi / 2 * (ck[i] + ck[i+2])
	}
	_ = m.Set(0, d0)
	_ = m.SetConst(2, -math.Pi/2)
	_ = m.SetConst(-2, -math.Pi/2)
	return m
}

func TestVerify(t *testing.T) {
	for _, q := range []basis.Quadrature{basis.GaussChebyshev, basis.GaussLobatto} {
		p := product(basis.Dirichlet, 0, basis.Dirichlet, 16, q)
		assert.NoError(t, Verify(dirichletMass(16, q), p))
	}

	t.Run("Mismatch", func(t *testing.T) {
		p := product(basis.Dirichlet, 0, basis.Dirichlet, 16, basis.GaussChebyshev)
		m := dirichletMass(16, basis.GaussLobatto) // wrong ck at the last mode
		err := Verify(m, p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOracleMismatch))
		var me *MismatchError
		require.True(t, errors.As(err, &me))
		assert.Equal(t, 0, me.Offset)
		assert.Equal(t, 13, me.Index)
	})

	t.Run("MissingBand", func(t *testing.T) {
		p := product(basis.Dirichlet, 0, basis.Dirichlet, 16, basis.GaussChebyshev)
		m := dirichletMass(16, basis.GaussChebyshev)
		_ = m.SetConst(4, 0.1)
		assert.True(t, errors.Is(Verify(m, p), ErrOracleMismatch))
	})

	t.Run("Shape", func(t *testing.T) {
		p := product(basis.Dirichlet, 0, basis.Dirichlet, 16, basis.GaussChebyshev)
		err := Verify(dirichletMass(18, basis.GaussChebyshev), p)
		assert.True(t, errors.Is(err, banded.ErrShapeMismatch))
	})
}

func TestDeriveScale(t *testing.T) {
	p := product(basis.Dirichlet, 2, basis.Dirichlet, 12, basis.GaussChebyshev)
	raw, err := Derive(p)
	require.NoError(t, err)
	p.Scale = -1
	neg, err := Derive(p)
	require.NoError(t, err)
	assert.InDelta(t, -raw.At(0, 0), neg.At(0, 0), 1e-12)
	assert.Greater(t, neg.At(0, 0), 0.)
	// -(phi_k'', phi_k) = 2 pi (k+1)(k+2)
	assert.InDelta(t, 4*math.Pi, neg.At(0, 0), 1e-10)
	assert.Equal(t, []int{0, 2, 4, 6, 8}, neg.Offsets(), "upper triangular, even offsets")
}

func TestDeriveNeumannNullMode(t *testing.T) {
	m, err := Derive(product(basis.Dirichlet, 0, basis.Neumann, 12, basis.GaussChebyshev))
	require.NoError(t, err)
	assert.True(t, m.ZeroNullMode())
	out := make([]float64, 10)
	x := make([]float64, 10)
	x[0] = 1
	require.NoError(t, m.Apply(x, out))
	assert.Zero(t, out[0])
}
