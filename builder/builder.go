// Package builder constructs the operator set shared by a solver at one
// resolution: every configured operator is built once, resolved to the
// configured strategy, and handed out read-only along with the pencil
// decomposition and the aligned field buffers the runner applies into.
package builder

import (
	"fmt"
	"sort"

	"github.com/notargets/ShenKernel/banded"
	"github.com/notargets/ShenKernel/operators"
	"github.com/notargets/ShenKernel/partitions"
	"github.com/notargets/ShenKernel/utils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/blas/blas64"
)

// AlignmentType specifies the byte alignment of every field row
type AlignmentType int

const (
	NoAlignment    AlignmentType = 1
	CacheLineAlign AlignmentType = 64
	PageAlign      AlignmentType = 4096
)

// FieldSpec describes a batched spectral field to allocate
type FieldSpec struct {
	Name      string
	Rows      int // spectral modes held per pencil, usually Config.Modes
	Batch     int // pencils
	Complex   bool
	Alignment AlignmentType
}

// Field is an allocated field. Panel.Data starts on the requested alignment
// and Panel.Stride is padded so every following row does too.
type Field struct {
	Spec  FieldSpec
	Panel blas64.General
}

// Complex128 returns the field as interleaved complex values. The length
// covers the padded stride; pencil b of row i is at i*Stride/2+b.
func (f *Field) Complex128() []complex128 {
	if !f.Spec.Complex {
		return nil
	}
	return utils.ComplexView(f.Panel.Data)
}

// Builder owns the operators built for one (N, quadrature)
type Builder struct {
	Config

	// Partition configuration
	NumPartitions int
	K             []int // real columns per partition for a batch of KTotal pencils
	KpartMax      int

	operators map[string]*operators.Operator
	fields    map[string]*Field
	names     []string // field allocation order
	logger    *zap.Logger
}

// NewBuilder creates a Builder and eagerly builds every configured operator.
// It panics on an invalid configuration; use Config.Validate or ParseConfig
// to report errors instead.
func NewBuilder(cfg Config, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	// Set defaults
	if cfg.Partitions == 0 {
		cfg.Partitions = 1
	}
	if len(cfg.Operators) == 0 {
		cfg.Operators = operators.Names()
	}
	if err := cfg.Validate(); err != nil {
		panic(err.Error())
	}

	kb := &Builder{
		Config:        cfg,
		NumPartitions: cfg.Partitions,
		operators:     make(map[string]*operators.Operator, len(cfg.Operators)),
		fields:        make(map[string]*Field),
		logger:        logger,
	}
	if len(cfg.K) > 0 {
		kb.NumPartitions = len(cfg.K)
		kb.K = append([]int(nil), cfg.K...)
		for _, k := range kb.K {
			kb.KpartMax = max(kb.KpartMax, k)
		}
	}

	for _, name := range cfg.Operators {
		op, err := kb.build(name)
		if err != nil {
			panic(fmt.Sprintf("building %s: %v", name, err))
		}
		kb.operators[name] = op
		rows, cols := op.Shape()
		logger.Debug("operator built",
			zap.String("name", name),
			zap.Int("N", cfg.Modes),
			zap.Stringer("quadrature", cfg.Quadrature),
			zap.Stringer("strategy", op.Strategy()),
			zap.Int("rows", rows),
			zap.Int("cols", cols),
			zap.Ints("offsets", op.Offsets()),
			zap.Bool("kernel", op.HasKernel()))
	}
	return kb
}

func (kb *Builder) build(name string) (*operators.Operator, error) {
	op, err := operators.New(name, kb.Modes, kb.Quadrature)
	if err != nil {
		return nil, err
	}
	if kb.Strategy == banded.Generic {
		return op.WithGenericLayout(kb.Layout)
	}
	return op.WithStrategy(kb.Strategy), nil
}

// Operator returns a built operator. Operators are shared and must not be
// mutated in place; use Scale or Divide for derived copies.
func (kb *Builder) Operator(name string) (*operators.Operator, error) {
	op, ok := kb.operators[name]
	if !ok {
		return nil, fmt.Errorf("%q not in the builder's operator set: %w", name, operators.ErrUnknownOperator)
	}
	return op, nil
}

// Names lists the built operators in alphabetical order
func (kb *Builder) Names() []string {
	names := make([]string, 0, len(kb.operators))
	for name := range kb.operators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Helmholtz fuses the builder's ADD and BDD
func (kb *Builder) Helmholtz(alpha, beta operators.Coefficient) (*operators.Helmholtz, error) {
	A, err := kb.Operator("ADD")
	if err != nil {
		return nil, err
	}
	B, err := kb.Operator("BDD")
	if err != nil {
		return nil, err
	}
	return operators.NewHelmholtz(A, B, alpha, beta)
}

// Biharmonic fuses the builder's SBB, ABB and BBB
func (kb *Builder) Biharmonic(a0, alpha, beta operators.Coefficient) (*operators.Biharmonic, error) {
	S, err := kb.Operator("SBB")
	if err != nil {
		return nil, err
	}
	A, err := kb.Operator("ABB")
	if err != nil {
		return nil, err
	}
	B, err := kb.Operator("BBB")
	if err != nil {
		return nil, err
	}
	return operators.NewBiharmonic(S, A, B, a0, alpha, beta)
}

// PencilLayout splits a panel of the given column count into the configured
// partitions. Complex panels use alignment 2 so no pencil is split between
// its real and imaginary columns.
func (kb *Builder) PencilLayout(columns int, complexPanel bool) (*partitions.PencilLayout, error) {
	align := 1
	if complexPanel {
		align = 2
	}
	if len(kb.K) > 0 {
		K := kb.K
		if complexPanel {
			K = make([]int, len(kb.K))
			for i, k := range kb.K {
				K[i] = 2 * k
			}
		}
		layout, err := partitions.LayoutFromCounts(K, align)
		if err != nil {
			return nil, err
		}
		if layout.TotalColumns != columns {
			return nil, fmt.Errorf("k covers %d columns, panel has %d: %w",
				layout.TotalColumns, columns, partitions.ErrInvalidLayout)
		}
		return layout, nil
	}
	pb := partitions.PartitionBuilder{
		Columns:       columns,
		NumPartitions: kb.NumPartitions,
		Alignment:     align,
	}
	return pb.BuildPartitions()
}

// AllocateFields allocates zeroed field storage with aligned rows
func (kb *Builder) AllocateFields(specs []FieldSpec) error {
	for _, spec := range specs {
		if err := kb.allocateSingleField(spec); err != nil {
			return fmt.Errorf("failed to allocate %s: %w", spec.Name, err)
		}
	}
	return nil
}

func (kb *Builder) allocateSingleField(spec FieldSpec) error {
	if _, exists := kb.fields[spec.Name]; exists {
		return fmt.Errorf("field already allocated: %w", banded.ErrShapeMismatch)
	}
	if spec.Rows < 1 || spec.Batch < 1 {
		return fmt.Errorf("rows %d batch %d: %w", spec.Rows, spec.Batch, banded.ErrShapeMismatch)
	}
	if spec.Alignment == 0 {
		spec.Alignment = NoAlignment
	}
	cols := spec.Batch
	if spec.Complex {
		cols *= 2
	}
	stride := alignedStride(cols, spec.Alignment)
	kb.fields[spec.Name] = &Field{
		Spec: spec,
		Panel: blas64.General{
			Rows:   spec.Rows,
			Cols:   cols,
			Stride: stride,
			Data:   utils.AlignedFloat64s(spec.Rows*stride, int(spec.Alignment)),
		},
	}
	kb.names = append(kb.names, spec.Name)
	kb.logger.Debug("field allocated",
		zap.String("name", spec.Name),
		zap.Int("rows", spec.Rows),
		zap.Int("cols", cols),
		zap.Int("stride", stride))
	return nil
}

// alignedStride rounds cols float64 values up to a whole number of
// alignment units. Sub-word alignments leave the stride unpadded.
func alignedStride(cols int, alignment AlignmentType) int {
	const valueSize = 8
	a := int(alignment)
	if a <= valueSize {
		return cols
	}
	bytes := cols * valueSize
	bytes = ((bytes + a - 1) / a) * a
	return bytes / valueSize
}

// Field returns an allocated field by name
func (kb *Builder) Field(name string) (*Field, bool) {
	f, ok := kb.fields[name]
	return f, ok
}

// FieldNames lists fields in allocation order
func (kb *Builder) FieldNames() []string { return append([]string(nil), kb.names...) }

func (kb *Builder) Logger() *zap.Logger { return kb.logger }
