package banded

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMaterialize(t *testing.T) {
	m := rectMatrix(t)
	for _, l := range []Layout{RowCompressed, ColumnCompressed, Diagonal} {
		t.Run(l.String(), func(t *testing.T) {
			A, err := m.Materialize(l)
			require.NoError(t, err)
			assert.True(t, mat.Equal(A, m.Dense()))
			B, err := m.Materialize(l)
			require.NoError(t, err)
			assert.Same(t, A, B, "cached")
		})
	}
	_, isBand := mustMaterialize(t, m, Diagonal).(*mat.BandDense)
	assert.True(t, isBand)
}

func mustMaterialize(t *testing.T, m *Matrix, l Layout) mat.Matrix {
	t.Helper()
	A, err := m.Materialize(l)
	require.NoError(t, err)
	return A
}

func TestMaterializeRebuildsAfterMutation(t *testing.T) {
	m := rectMatrix(t)
	A := mustMaterialize(t, m, RowCompressed)
	m.ScaleInPlace(2)
	B := mustMaterialize(t, m, RowCompressed)
	assert.NotSame(t, A, B)
	assert.Equal(t, 2*A.At(0, 0), B.At(0, 0))
}

func TestUnsupportedFormat(t *testing.T) {
	m := rectMatrix(t)
	_, err := m.Materialize(Layout(42))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	_, err = m.WithGenericLayout(Layout(42))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	_, err = ParseLayout("coo")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	var l Layout
	require.NoError(t, l.UnmarshalText([]byte("DIA")))
	assert.Equal(t, Diagonal, l)
}

// Strategy and layout copies own their bands: mutating the source and then
// the copy keeps each consistent with its own dense expansion.
func TestStrategyCopiesAreIndependent(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7}
	assertApplyMatchesDense := func(t *testing.T, m *Matrix) {
		t.Helper()
		y := make([]float64, 5)
		require.NoError(t, m.Apply(x, y))
		assert.InDeltaSlice(t, denseApply(m, x), y, 1e-13)
	}

	m := rectMatrix(t)
	gen, err := m.WithGenericLayout(ColumnCompressed)
	require.NoError(t, err)
	m.ScaleInPlace(3)
	assert.Equal(t, 3.0, m.At(0, 0))
	assert.Equal(t, 1.0, gen.At(0, 0))
	assertApplyMatchesDense(t, m)
	assertApplyMatchesDense(t, gen)

	offsets := m.Offsets()
	ref := m.WithStrategy(Reference)
	o := NewMatrix(5, 7)
	require.NoError(t, o.SetConst(1, 5))
	require.NoError(t, ref.AddInPlace(o))
	assert.Equal(t, 5.0, ref.At(0, 1))
	assert.Equal(t, 0.0, m.At(0, 1))
	assert.Equal(t, offsets, m.Offsets())
	assert.Contains(t, ref.Offsets(), 1)
	assertApplyMatchesDense(t, m)
	assertApplyMatchesDense(t, ref)

	gen.ScaleInPlace(-1)
	assert.Equal(t, 3.0, m.At(0, 0))
	assertApplyMatchesDense(t, gen)
}
