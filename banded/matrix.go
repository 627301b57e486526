package banded

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// diagonal is one stored band. A band is either a constant (scalar) band or
// an owned value buffer; shared marks a buffer aliased with the band at the
// mirrored offset so the pair is mutated once.
type diagonal struct {
	values   []float64
	constant float64
	isConst  bool
	length   int
	shared   bool
}

func (d *diagonal) at(i int) float64 {
	if d.isConst {
		return d.constant
	}
	return d.values[i]
}

// Band is a read-only view of one diagonal. Values is nil for a constant
// band. A missing band has Len 0.
type Band struct {
	Values []float64
	Const  float64
	Len    int
}

func (b Band) At(i int) float64 {
	if b.Values == nil {
		return b.Const
	}
	return b.Values[i]
}

// Matrix is a sparse banded matrix stored by diagonals. Element i of the band
// at offset k sits at (i, i+k) for k >= 0 and at (i-k, i) for k < 0.
type Matrix struct {
	rows, cols int
	diags      map[int]*diagonal
	offsets    []int

	// ZeroNullMode clears output row 0 after every apply; used when the test
	// space carries the Neumann constant mode.
	zeroNullMode bool

	fast     KernelFunc
	strategy Strategy
	exec     KernelFunc

	layout      Layout // used by the Generic strategy
	generic     mat.Matrix
	cache       mat.Matrix
	cacheLayout Layout
}

// NewMatrix returns an empty rows x cols banded matrix using the reference
// kernel.
func NewMatrix(rows, cols int) *Matrix {
	if rows < 1 || cols < 1 {
		panic(fmt.Sprintf("banded: invalid shape (%d,%d)", rows, cols))
	}
	m := &Matrix{
		rows:  rows,
		cols:  cols,
		diags: make(map[int]*diagonal),
	}
	m.resolve(Reference)
	return m
}

// BandLength is the number of elements of the band at offset k in a
// rows x cols matrix, zero when the band falls outside it.
func BandLength(rows, cols, k int) int {
	var n int
	if k >= 0 {
		n = min(rows, cols-k)
	} else {
		n = min(rows+k, cols)
	}
	return max(n, 0)
}

func (m *Matrix) Shape() (rows, cols int) { return m.rows, m.cols }

// Dims satisfies mat.Matrix
func (m *Matrix) Dims() (r, c int) { return m.rows, m.cols }

// T satisfies mat.Matrix
func (m *Matrix) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// At returns element (i, j), zero outside the stored bands
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	d, ok := m.diags[j-i]
	if !ok {
		return 0
	}
	return d.at(min(i, j))
}

// Offsets returns the stored offsets in ascending order
func (m *Matrix) Offsets() []int {
	return append([]int(nil), m.offsets...)
}

func (m *Matrix) NumBands() int { return len(m.offsets) }

func (m *Matrix) Band(k int) Band {
	d, ok := m.diags[k]
	if !ok {
		return Band{}
	}
	if d.isConst {
		return Band{Const: d.constant, Len: d.length}
	}
	return Band{Values: d.values, Len: d.length}
}

// IsShared reports whether the band at k aliases the band at -k
func (m *Matrix) IsShared(k int) bool {
	d, ok := m.diags[k]
	return ok && d.shared
}

func (m *Matrix) ZeroNullMode() bool { return m.zeroNullMode }

// SetZeroNullMode toggles the Neumann null-mode projection of the output
func (m *Matrix) SetZeroNullMode(on bool) { m.zeroNullMode = on }

func (m *Matrix) checkBand(k, n int) (int, error) {
	L := BandLength(m.rows, m.cols, k)
	if L == 0 {
		return 0, fmt.Errorf("offset %d in (%d,%d): %w", k, m.rows, m.cols, ErrEmptyBand)
	}
	if n >= 0 && n != L {
		return 0, fmt.Errorf("offset %d expects %d values, got %d: %w", k, L, n, ErrEmptyBand)
	}
	return L, nil
}

func (m *Matrix) put(k int, d *diagonal) {
	if _, ok := m.diags[k]; !ok {
		m.offsets = append(m.offsets, k)
		sort.Ints(m.offsets)
	}
	m.diags[k] = d
	m.dropKernel()
}

// dropKernel detaches the operator kernel after the band structure changed.
// Kernels hard-code their band pattern, so Specialized falls back to the
// reference kernel.
func (m *Matrix) dropKernel() {
	m.fast = nil
	m.cache = nil
	if m.strategy == Specialized {
		m.resolve(Reference)
	} else {
		m.resolve(m.strategy)
	}
}

// Set stores an owned copy of values as the band at offset k. Any kernel
// attached with SetKernel is dropped.
func (m *Matrix) Set(k int, values []float64) error {
	L, err := m.checkBand(k, len(values))
	if err != nil {
		return err
	}
	m.unshare(k)
	m.put(k, &diagonal{values: append([]float64(nil), values...), length: L})
	return nil
}

// SetConst stores a scalar band at offset k
func (m *Matrix) SetConst(k int, v float64) error {
	L, err := m.checkBand(k, -1)
	if err != nil {
		return err
	}
	m.unshare(k)
	m.put(k, &diagonal{constant: v, isConst: true, length: L})
	return nil
}

// SetSymmetric stores values at +k and -k sharing one buffer. Both bands
// must have the same length, which holds for square matrices.
func (m *Matrix) SetSymmetric(k int, values []float64) error {
	if k == 0 {
		return m.Set(0, values)
	}
	L, err := m.checkBand(k, len(values))
	if err != nil {
		return err
	}
	if _, err = m.checkBand(-k, L); err != nil {
		return err
	}
	m.unshare(k)
	m.unshare(-k)
	buf := append([]float64(nil), values...)
	m.put(k, &diagonal{values: buf, length: L, shared: true})
	m.put(-k, &diagonal{values: buf, length: L, shared: true})
	return nil
}

// unshare gives the bands at k and -k their own buffers
func (m *Matrix) unshare(k int) {
	d, ok := m.diags[k]
	if !ok || !d.shared {
		return
	}
	d.shared = false
	if mirror, ok := m.diags[-k]; ok && mirror.shared {
		mirror.shared = false
		mirror.values = append([]float64(nil), mirror.values...)
	}
}

// Copy returns a deep copy keeping the kernel, strategy and aliasing
func (m *Matrix) Copy() *Matrix {
	return m.mapValues(identity)
}

func identity(v float64) float64 { return v }

// mapValues copies the matrix applying f to every stored value once; shared
// pairs stay shared in the copy.
func (m *Matrix) mapValues(f func(float64) float64) *Matrix {
	c := m.clone(f)
	c.resolve(m.strategy)
	return c
}

// clone is mapValues without resolving a strategy
func (m *Matrix) clone(f func(float64) float64) *Matrix {
	c := &Matrix{
		rows:         m.rows,
		cols:         m.cols,
		diags:        make(map[int]*diagonal, len(m.diags)),
		offsets:      append([]int(nil), m.offsets...),
		zeroNullMode: m.zeroNullMode,
		fast:         m.fast,
		layout:       m.layout,
	}
	for _, k := range m.offsets {
		d := m.diags[k]
		if d.shared && k < 0 {
			continue
		}
		nd := &diagonal{length: d.length, isConst: d.isConst, shared: d.shared}
		if d.isConst {
			nd.constant = f(d.constant)
		} else {
			nd.values = make([]float64, len(d.values))
			for i, v := range d.values {
				nd.values[i] = f(v)
			}
		}
		c.diags[k] = nd
	}
	for _, k := range m.offsets {
		d := m.diags[k]
		if d.shared && k < 0 {
			mirror := c.diags[-k]
			c.diags[k] = &diagonal{values: mirror.values, length: d.length, shared: true}
		}
	}
	return c
}

// Scale returns alpha*m. The kernel is kept: every kernel reads its
// coefficients from the bands, so it stays valid for the scaled copy.
func (m *Matrix) Scale(alpha float64) *Matrix {
	return m.mapValues(func(v float64) float64 { return v * alpha })
}

// Divide returns m/alpha
func (m *Matrix) Divide(alpha float64) *Matrix {
	return m.mapValues(func(v float64) float64 { return v / alpha })
}

// ScaleInPlace multiplies every band by alpha, touching shared buffers once
func (m *Matrix) ScaleInPlace(alpha float64) {
	for _, k := range m.offsets {
		d := m.diags[k]
		if d.shared && k < 0 {
			continue
		}
		if d.isConst {
			d.constant *= alpha
			continue
		}
		for i := range d.values {
			d.values[i] *= alpha
		}
	}
	m.invalidate()
}

// Add returns m + other as a plain matrix using the reference kernel.
func (m *Matrix) Add(other *Matrix) (*Matrix, error) {
	c := m.Copy()
	if err := c.AddInPlace(other); err != nil {
		return nil, err
	}
	return c, nil
}

// AddInPlace accumulates other into m. Shared buffers are split first so the
// mirrored band is not changed twice. Any fast kernel is dropped.
func (m *Matrix) AddInPlace(other *Matrix) error {
	if m.rows != other.rows || m.cols != other.cols {
		return fmt.Errorf("add (%d,%d) + (%d,%d): %w",
			m.rows, m.cols, other.rows, other.cols, ErrShapeMismatch)
	}
	for _, k := range other.offsets {
		od := other.diags[k]
		d, ok := m.diags[k]
		if !ok {
			nd := &diagonal{length: od.length, isConst: od.isConst, constant: od.constant}
			if !od.isConst {
				nd.values = append([]float64(nil), od.values...)
			}
			m.put(k, nd)
			continue
		}
		m.unshare(k)
		switch {
		case d.isConst && od.isConst:
			d.constant += od.constant
		case d.isConst:
			d.values = make([]float64, d.length)
			for i := range d.values {
				d.values[i] = d.constant + od.values[i]
			}
			d.isConst, d.constant = false, 0
		default:
			for i := range d.values {
				d.values[i] += od.at(i)
			}
		}
	}
	m.zeroNullMode = m.zeroNullMode || other.zeroNullMode
	m.dropKernel()
	return nil
}

// Dense expands the matrix into a gonum dense matrix
func (m *Matrix) Dense() *mat.Dense {
	D := mat.NewDense(m.rows, m.cols, nil)
	for _, k := range m.offsets {
		d := m.diags[k]
		for i := 0; i < d.length; i++ {
			r, c := position(k, i)
			D.Set(r, c, d.at(i))
		}
	}
	return D
}

// MaxAbs is the largest stored magnitude
func (m *Matrix) MaxAbs() (mx float64) {
	for _, d := range m.diags {
		if d.isConst {
			mx = math.Max(mx, math.Abs(d.constant))
			continue
		}
		for _, v := range d.values {
			mx = math.Max(mx, math.Abs(v))
		}
	}
	return
}

// position maps element i of band k to its (row, col)
func position(k, i int) (r, c int) {
	if k >= 0 {
		return i, i + k
	}
	return i - k, i
}
