package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatIndex_Search(t *testing.T) {
	idx, err := NewFlatIndex([][]float32{
		{1, 0},
		{0, 1},
		{0.6, 0.8},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 2, idx.Dimension())

	hits, err := idx.Search([]float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 3, "k is clamped to the index size")

	assert.Equal(t, 0, hits[0].ID)
	assert.InDelta(t, 0, hits[0].Distance, 1e-6)
	assert.Equal(t, 2, hits[1].ID)
	assert.InDelta(t, 0.8, hits[1].Distance, 1e-6, "distance is squared L2")
	assert.Equal(t, 1, hits[2].ID)
	assert.InDelta(t, 2.0, hits[2].Distance, 1e-6)
}

func TestFlatIndex_TiesKeepInsertionOrder(t *testing.T) {
	idx, err := NewFlatIndex([][]float32{{0, 1}, {1, 0}, {0, 1}})
	require.NoError(t, err)

	hits, err := idx.Search([]float32{0, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, []int{hits[0].ID, hits[1].ID})
}

func TestFlatIndex_Empty(t *testing.T) {
	idx, err := NewFlatIndex(nil)
	require.NoError(t, err)

	hits, err := idx.Search([]float32{1, 2, 3}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFlatIndex_DimensionMismatch(t *testing.T) {
	_, err := NewFlatIndex([][]float32{{1, 0}, {1}})
	require.ErrorIs(t, err, ErrVectorDimensionMismatch)

	idx, err := NewFlatIndex([][]float32{{1, 0}})
	require.NoError(t, err)
	_, err = idx.Search([]float32{1, 0, 0}, 1)
	require.ErrorIs(t, err, ErrVectorDimensionMismatch)
}
