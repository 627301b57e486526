package builder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/notargets/ShenKernel/banded"
	"github.com/notargets/ShenKernel/basis"
	"github.com/notargets/ShenKernel/operators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParseConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := ParseConfig(nil)
		require.NoError(t, err)
		if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		cfg, err := ParseConfig([]byte(`
modes: 64
quadrature: GC
strategy: generic
layout: dia
operators: [ADD, BDD]
partitions: 4
log_level: debug
`))
		require.NoError(t, err)
		want := Config{
			Modes:      64,
			Quadrature: basis.GaussChebyshev,
			Strategy:   banded.Generic,
			Layout:     banded.Diagonal,
			Operators:  []string{"ADD", "BDD"},
			Partitions: 4,
			LogLevel:   "debug",
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Operators = []string{"SBB", "ABB", "BBB"}
		cfg.K = []int{3, 5}
		data, err := cfg.Marshal()
		require.NoError(t, err)
		back, err := ParseConfig(data)
		require.NoError(t, err)
		if diff := cmp.Diff(cfg, back); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s\n%s", diff, data)
		}
	})

	bad := map[string]string{
		"unknown key":      "mode: 8\n",
		"unknown operator": "operators: [XYZ]\n",
		"duplicate":        "operators: [ADD, ADD]\n",
		"too few modes":    "modes: 5\n",
		"bad quadrature":   "quadrature: GX\n",
		"bad layout":       "layout: ell\n",
		"bad level":        "log_level: chatty\n",
		"negative":         "partitions: -1\n",
		"empty k":          "k: [2, 0]\n",
	}
	for name, doc := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.Error(t, err)
		})
	}

	t.Run("sentinels", func(t *testing.T) {
		_, err := ParseConfig([]byte("modes: 5\n"))
		assert.True(t, errors.Is(err, ErrInvalidConfig))
		assert.True(t, errors.Is(err, operators.ErrTooFewModes))
		_, err = ParseConfig([]byte("operators: [XYZ]\n"))
		assert.True(t, errors.Is(err, operators.ErrUnknownOperator))
	})

	// Dirichlet-only sets are valid below the biharmonic minimum
	_, err := ParseConfig([]byte("modes: 4\noperators: [BDD, ADD]\n"))
	assert.NoError(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("modes: 16\n"), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Modes)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewBuilder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Modes = 16
	kb := NewBuilder(cfg, zaptest.NewLogger(t))
	assert.Equal(t, operators.Names(), kb.Names())

	for _, name := range kb.Names() {
		op, err := kb.Operator(name)
		require.NoError(t, err)
		assert.Equal(t, banded.Specialized, op.Strategy())
		assert.Equal(t, 16, op.N())
		assert.NoError(t, op.Verify(), name)
	}

	t.Run("generic layout", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Modes = 12
		cfg.Strategy = banded.Generic
		cfg.Layout = banded.ColumnCompressed
		cfg.Operators = []string{"BDD"}
		kb := NewBuilder(cfg, nil)
		op, err := kb.Operator("BDD")
		require.NoError(t, err)
		assert.Equal(t, banded.Generic, op.Strategy())
		_, err = kb.Operator("ADD")
		assert.True(t, errors.Is(err, operators.ErrUnknownOperator))
		_, err = kb.Helmholtz(operators.Scalar(1), operators.Scalar(1))
		assert.True(t, errors.Is(err, operators.ErrUnknownOperator))
	})

	t.Run("invalid config panics", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Modes = 3
		assert.Panics(t, func() { NewBuilder(cfg, nil) })
	})
}

func TestBuilderComposites(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Modes = 20
	kb := NewBuilder(cfg, nil)

	h, err := kb.Helmholtz(operators.Scalar(-1), operators.Scalar(2))
	require.NoError(t, err)
	rows, cols := h.Shape()
	assert.Equal(t, [2]int{18, 18}, [2]int{rows, cols})

	bh, err := kb.Biharmonic(operators.Scalar(1), operators.Scalar(1), operators.Scalar(1))
	require.NoError(t, err)
	rows, cols = bh.Shape()
	assert.Equal(t, [2]int{16, 16}, [2]int{rows, cols})
}

func TestPencilLayout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Modes = 8
	cfg.Operators = []string{"BDD"}
	cfg.Partitions = 3

	kb := NewBuilder(cfg, nil)
	layout, err := kb.PencilLayout(7, false)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 2}, layout.Counts())

	layout, err = kb.PencilLayout(14, true)
	require.NoError(t, err)
	assert.Equal(t, []int{6, 4, 4}, layout.Counts())

	cfg.K = []int{1, 3}
	kb = NewBuilder(cfg, nil)
	assert.Equal(t, 2, kb.NumPartitions)
	assert.Equal(t, 3, kb.KpartMax)
	layout, err = kb.PencilLayout(8, true)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 6}, layout.Counts())
	_, err = kb.PencilLayout(5, false)
	assert.Error(t, err)
}

func TestAllocateFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Modes = 8
	cfg.Operators = []string{"BDD"}
	kb := NewBuilder(cfg, nil)

	require.NoError(t, kb.AllocateFields([]FieldSpec{
		{Name: "u", Rows: 8, Batch: 5},
		{Name: "uhat", Rows: 8, Batch: 5, Complex: true, Alignment: CacheLineAlign},
	}))
	assert.Equal(t, []string{"u", "uhat"}, kb.FieldNames())

	u, ok := kb.Field("u")
	require.True(t, ok)
	assert.Equal(t, 5, u.Panel.Stride)
	assert.Nil(t, u.Complex128())

	uhat, ok := kb.Field("uhat")
	require.True(t, ok)
	assert.Equal(t, 10, uhat.Panel.Cols)
	assert.Equal(t, 16, uhat.Panel.Stride)
	assert.Len(t, uhat.Complex128(), 8*8)

	err := kb.AllocateFields([]FieldSpec{{Name: "u", Rows: 8, Batch: 1}})
	assert.Error(t, err)
	err = kb.AllocateFields([]FieldSpec{{Name: "v", Rows: 0, Batch: 1}})
	assert.True(t, errors.Is(err, banded.ErrShapeMismatch))
}

// Aligned fields start on the boundary and every row stays on it.
func TestAllocateFieldsAlignment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Modes = 8
	cfg.Operators = []string{"BDD"}
	kb := NewBuilder(cfg, nil)

	for _, a := range []AlignmentType{CacheLineAlign, PageAlign} {
		name := fmt.Sprintf("f%d", a)
		require.NoError(t, kb.AllocateFields([]FieldSpec{{Name: name, Rows: 6, Batch: 3, Alignment: a}}))
		f, ok := kb.Field(name)
		require.True(t, ok)
		assert.Len(t, f.Panel.Data, 6*f.Panel.Stride)
		for i := 0; i < f.Panel.Rows; i++ {
			addr := uintptr(unsafe.Pointer(&f.Panel.Data[i*f.Panel.Stride]))
			assert.Zerof(t, addr%uintptr(a), "row %d of %s", i, name)
		}
	}
}
