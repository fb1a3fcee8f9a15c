package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warehouse-rag/internal/domain"
)

func TestMemoryStore_UpsertAndSearch(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Init(2))

	chunks := []domain.Chunk{
		{ProductID: 1, Index: 0, Text: "a"},
		{ProductID: 2, Index: 0, Text: "b"},
	}
	vectors := [][]float64{{1, 0}, {0, 1}}
	require.NoError(t, s.Upsert(chunks, vectors))

	results, err := s.Search([]float64{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Chunk.ProductID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestMemoryStore_UpsertReplacesProductVectors(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Init(2))

	require.NoError(t, s.Upsert(
		[]domain.Chunk{{ProductID: 1, Index: 0, Text: "old"}},
		[][]float64{{1, 0}},
	))
	require.NoError(t, s.Upsert(
		[]domain.Chunk{{ProductID: 1, Index: 0, Text: "new"}},
		[][]float64{{0, 1}},
	))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// The superseded version must be unreachable even by its own vector.
	results, err := s.Search([]float64{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Chunk.Text)
}

func TestMemoryStore_Remove(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(
		[]domain.Chunk{
			{ProductID: 1, Index: 0, Text: "a"},
			{ProductID: 1, Index: 1, Text: "b"},
			{ProductID: 2, Index: 0, Text: "c"},
		},
		[][]float64{{1, 0}, {0, 1}, {1, 0}},
	))

	require.NoError(t, s.Remove(1))
	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	results, err := s.Search([]float64{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Chunk.ProductID)
}

func TestMemoryStore_TieBreakByInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(
		[]domain.Chunk{
			{ProductID: 1, Index: 0, Text: "first"},
			{ProductID: 2, Index: 0, Text: "second"},
			{ProductID: 3, Index: 0, Text: "third"},
		},
		[][]float64{{1, 0}, {1, 0}, {1, 0}},
	))

	results, err := s.Search([]float64{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Chunk.Text)
	assert.Equal(t, "second", results[1].Chunk.Text)
	assert.Equal(t, "third", results[2].Chunk.Text)
}

func TestMemoryStore_DimensionMismatch(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Init(3))
	err := s.Upsert(
		[]domain.Chunk{{ProductID: 1, Index: 0, Text: "a"}},
		[][]float64{{1, 0}},
	)
	assert.Error(t, err)
}

func TestMemoryStore_SearchCapsAtStoredCount(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(
		[]domain.Chunk{{ProductID: 1, Index: 0, Text: "a"}},
		[][]float64{{1, 0}},
	))
	results, err := s.Search([]float64{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestMemoryStore_Clear(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Init(2))
	require.NoError(t, s.Upsert(
		[]domain.Chunk{{ProductID: 1, Index: 0, Text: "a"}},
		[][]float64{{1, 0}},
	))
	require.NoError(t, s.Clear())
	n, err := s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}
