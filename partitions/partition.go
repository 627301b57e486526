package partitions

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/blas/blas64"
)

// ErrInvalidLayout is returned when a partition layout does not tile the
// pencil axis.
var ErrInvalidLayout = errors.New("partitions: invalid layout")

// Partition is a contiguous block of panel columns (pencils, or interleaved
// real/imaginary columns of complex pencils) applied by one worker.
type Partition struct {
	ID    int
	First int // first panel column owned by this partition
	Count int // number of columns
}

// PencilLayout manages the decomposition of a batched panel's column axis
type PencilLayout struct {
	Partitions []Partition

	// Global sizing information
	KpartMax      int // max(Count) across all partitions
	TotalColumns  int // sum of Count
	NumPartitions int
	Alignment     int // every partition boundary is a multiple of Alignment
}

// GetPartition returns the partition owning column c, or -1
func (pl *PencilLayout) GetPartition(c int) int {
	if c < 0 || c >= pl.TotalColumns {
		return -1
	}
	for _, p := range pl.Partitions {
		if c < p.First+p.Count {
			return p.ID
		}
	}
	return -1
}

// ValidateLayout checks that partitions tile [0, TotalColumns) in order with
// aligned boundaries.
func (pl *PencilLayout) ValidateLayout() error {
	if pl.NumPartitions != len(pl.Partitions) {
		return fmt.Errorf("NumPartitions %d != %d partitions: %w",
			pl.NumPartitions, len(pl.Partitions), ErrInvalidLayout)
	}
	align := pl.Alignment
	if align < 1 {
		align = 1
	}
	next, actualMax := 0, 0
	for i, p := range pl.Partitions {
		if p.ID != i {
			return fmt.Errorf("partition at %d has ID %d: %w", i, p.ID, ErrInvalidLayout)
		}
		if p.First != next {
			return fmt.Errorf("partition %d starts at %d, expected %d: %w", p.ID, p.First, next, ErrInvalidLayout)
		}
		if p.Count < 1 || p.First%align != 0 {
			return fmt.Errorf("partition %d: first %d count %d alignment %d: %w",
				p.ID, p.First, p.Count, align, ErrInvalidLayout)
		}
		next += p.Count
		actualMax = max(actualMax, p.Count)
	}
	if next != pl.TotalColumns || next%align != 0 {
		return fmt.Errorf("partitions cover %d of %d columns: %w", next, pl.TotalColumns, ErrInvalidLayout)
	}
	if actualMax != pl.KpartMax {
		return fmt.Errorf("computed KpartMax %d != stored KpartMax %d: %w", actualMax, pl.KpartMax, ErrInvalidLayout)
	}
	return nil
}

// SubPanel returns the columns of p owned by partition id. The result shares
// p's storage; its Stride stays the full batch width.
func (pl *PencilLayout) SubPanel(p blas64.General, id int) blas64.General {
	part := pl.Partitions[id]
	return blas64.General{
		Rows:   p.Rows,
		Cols:   part.Count,
		Stride: p.Stride,
		Data:   p.Data[part.First:],
	}
}

// Counts returns the column count of every partition
func (pl *PencilLayout) Counts() []int {
	k := make([]int, len(pl.Partitions))
	for i, p := range pl.Partitions {
		k[i] = p.Count
	}
	return k
}

type PartitionStats struct {
	NumPartitions int
	MinColumns    int
	MaxColumns    int
	AvgColumns    float64
	Imbalance     float64 // MaxColumns / AvgColumns
}

// PartitionStatistics computes load balance metrics
func (pl *PencilLayout) PartitionStatistics() PartitionStats {
	stats := PartitionStats{NumPartitions: pl.NumPartitions}
	if pl.NumPartitions == 0 {
		return stats
	}
	stats.MinColumns = pl.TotalColumns
	stats.AvgColumns = float64(pl.TotalColumns) / float64(pl.NumPartitions)
	for _, p := range pl.Partitions {
		stats.MinColumns = min(stats.MinColumns, p.Count)
		stats.MaxColumns = max(stats.MaxColumns, p.Count)
	}
	stats.Imbalance = float64(stats.MaxColumns) / stats.AvgColumns
	return stats
}
