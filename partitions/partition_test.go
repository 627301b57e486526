package partitions

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/blas/blas64"
)

func TestBuildPartitions(t *testing.T) {
	tests := []struct {
		name string
		pb   PartitionBuilder
		want []Partition
	}{
		{
			name: "balanced",
			pb:   PartitionBuilder{Columns: 10, NumPartitions: 3},
			want: []Partition{{0, 0, 4}, {1, 4, 3}, {2, 7, 3}},
		},
		{
			name: "balanced complex pairs",
			pb:   PartitionBuilder{Columns: 10, NumPartitions: 3, Alignment: 2},
			want: []Partition{{0, 0, 4}, {1, 4, 4}, {2, 8, 2}},
		},
		{
			name: "block",
			pb:   PartitionBuilder{Columns: 10, NumPartitions: 3, Strategy: BlockPartition},
			want: []Partition{{0, 0, 4}, {1, 4, 4}, {2, 8, 2}},
		},
		{
			name: "more partitions than columns",
			pb:   PartitionBuilder{Columns: 3, NumPartitions: 8},
			want: []Partition{{0, 0, 1}, {1, 1, 1}, {2, 2, 1}},
		},
		{
			name: "single",
			pb:   PartitionBuilder{Columns: 5},
			want: []Partition{{0, 0, 5}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := tt.pb.BuildPartitions()
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, layout.Partitions); diff != "" {
				t.Errorf("partitions mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.pb.Columns, layout.TotalColumns)
			assert.NoError(t, layout.ValidateLayout())
		})
	}
}

func TestBuildPartitionsErrors(t *testing.T) {
	_, err := (&PartitionBuilder{Columns: 0}).BuildPartitions()
	assert.True(t, errors.Is(err, ErrInvalidLayout))
	_, err = (&PartitionBuilder{Columns: 5, Alignment: 2}).BuildPartitions()
	assert.True(t, errors.Is(err, ErrInvalidLayout))
	_, err = LayoutFromCounts([]int{2, 3}, 2)
	assert.True(t, errors.Is(err, ErrInvalidLayout))
	_, err = LayoutFromCounts([]int{2, 0}, 1)
	assert.True(t, errors.Is(err, ErrInvalidLayout))
	_, err = LayoutFromCounts(nil, 1)
	assert.True(t, errors.Is(err, ErrInvalidLayout))
}

func TestLayoutLookups(t *testing.T) {
	layout, err := LayoutFromCounts([]int{3, 1, 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, layout.KpartMax)
	assert.Equal(t, []int{3, 1, 2}, layout.Counts())

	owners := make([]int, 7)
	for c := range owners {
		owners[c] = layout.GetPartition(c - 1)
	}
	assert.Equal(t, []int{-1, 0, 0, 0, 1, 2, 2}, owners)
	assert.Equal(t, -1, layout.GetPartition(6))

	stats := layout.PartitionStatistics()
	assert.Equal(t, 1, stats.MinColumns)
	assert.Equal(t, 3, stats.MaxColumns)
	assert.InDelta(t, 1.5, stats.Imbalance, 1e-15)
}

func TestSubPanelSharesStorage(t *testing.T) {
	layout, err := LayoutFromCounts([]int{2, 2}, 1)
	require.NoError(t, err)
	data := []float64{
		0, 1, 2, 3,
		4, 5, 6, 7,
	}
	p := blas64.General{Rows: 2, Cols: 4, Stride: 4, Data: data}
	sub := layout.SubPanel(p, 1)
	assert.Equal(t, 2, sub.Cols)
	assert.Equal(t, 4, sub.Stride)
	assert.Equal(t, 2.0, sub.Data[0])
	assert.Equal(t, 7.0, sub.Data[1*sub.Stride+1])
	sub.Data[0] = -1
	assert.Equal(t, -1.0, data[2])
}
