package partitions

import (
	"fmt"
)

// PartitionStrategy defines how columns are grouped
type PartitionStrategy int

const (
	BalancedPartition PartitionStrategy = iota // sizes differ by at most one alignment unit
	BlockPartition                             // ceil-sized blocks, the last one takes the remainder
)

func (s PartitionStrategy) String() string {
	switch s {
	case BalancedPartition:
		return "balanced"
	case BlockPartition:
		return "block"
	}
	return fmt.Sprintf("PartitionStrategy(%d)", int(s))
}

// PartitionBuilder splits the column axis of a batched panel
type PartitionBuilder struct {
	Columns       int // total panel columns (batch, or 2*batch for complex)
	NumPartitions int // requested partitions; capped so none is empty
	Alignment     int // 2 keeps real/imaginary pairs together
	Strategy      PartitionStrategy
}

// BuildPartitions creates the column layout
func (pb *PartitionBuilder) BuildPartitions() (*PencilLayout, error) {
	align := pb.Alignment
	if align < 1 {
		align = 1
	}
	if pb.Columns < 1 || pb.Columns%align != 0 {
		return nil, fmt.Errorf("%d columns with alignment %d: %w", pb.Columns, align, ErrInvalidLayout)
	}

	units := pb.Columns / align
	numPartitions := min(max(pb.NumPartitions, 1), units)

	var counts []int
	switch pb.Strategy {
	case BlockPartition:
		counts = blockCounts(units, numPartitions)
	default:
		counts = balancedCounts(units, numPartitions)
	}
	for i := range counts {
		counts[i] *= align
	}
	return newLayout(counts, align)
}

// LayoutFromCounts builds a layout with the given partition sizes, the way a
// caller that already knows its decomposition would.
func LayoutFromCounts(K []int, alignment int) (*PencilLayout, error) {
	if len(K) == 0 {
		return nil, fmt.Errorf("empty partition counts: %w", ErrInvalidLayout)
	}
	return newLayout(K, max(alignment, 1))
}

func newLayout(K []int, align int) (*PencilLayout, error) {
	layout := &PencilLayout{
		Partitions:    make([]Partition, len(K)),
		NumPartitions: len(K),
		Alignment:     align,
	}
	first := 0
	for i, k := range K {
		layout.Partitions[i] = Partition{ID: i, First: first, Count: k}
		first += k
		layout.KpartMax = max(layout.KpartMax, k)
	}
	layout.TotalColumns = first

	if err := layout.ValidateLayout(); err != nil {
		return nil, fmt.Errorf("invalid partition layout: %w", err)
	}
	return layout, nil
}

func balancedCounts(units, n int) []int {
	counts := make([]int, n)
	base, extra := units/n, units%n
	for i := range counts {
		counts[i] = base
		if i < extra {
			counts[i]++
		}
	}
	return counts
}

func blockCounts(units, n int) []int {
	per := (units + n - 1) / n
	var counts []int
	for left := units; left > 0; left -= per {
		counts = append(counts, min(per, left))
	}
	return counts
}
