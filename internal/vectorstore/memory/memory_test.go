package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stemtutor/internal/domain"
)

func seed(t *testing.T) *Storage {
	t.Helper()
	s := NewStorage()
	require.NoError(t, s.Init(context.Background(), 2))
	chunks := []domain.Chunk{
		{VectorID: "doc_0", DocumentID: "doc", Source: "Algebra", Text: "first", Concepts: []string{"Linear"}},
		{VectorID: "doc_1", DocumentID: "doc", Source: "Physics", Text: "second", Concepts: []string{"Momentum"}},
	}
	vectors := [][]float64{{1, 0}, {0, 1}}
	require.NoError(t, s.Upsert(context.Background(), chunks, vectors))
	return s
}

func TestInitRejectsInvalidDimension(t *testing.T) {
	s := NewStorage()
	assert.Error(t, s.Init(context.Background(), 0))
}

func TestUpsertDimensionMismatch(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(context.Background(), 2))
	err := s.Upsert(context.Background(), []domain.Chunk{{VectorID: "x"}}, [][]float64{{1, 2, 3}})
	assert.Error(t, err)
}

func TestQueryOrdersByScore(t *testing.T) {
	s := seed(t)
	res, err := s.Query(context.Background(), []float64{1, 0.1}, nil, 5)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "doc_0", res[0].ID)
	assert.Greater(t, res[0].Score, res[1].Score)
}

func TestQueryTopK(t *testing.T) {
	s := seed(t)
	res, err := s.Query(context.Background(), []float64{1, 0}, nil, 1)
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestQueryConceptFilter(t *testing.T) {
	s := seed(t)
	res, err := s.Query(context.Background(), []float64{1, 0}, &domain.ConceptFilter{Concepts: []string{"Momentum"}}, 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "doc_1", res[0].ID)
}

func TestQueryFilterNoMatches(t *testing.T) {
	s := seed(t)
	res, err := s.Query(context.Background(), []float64{1, 0}, &domain.ConceptFilter{Concepts: []string{"Entropy"}}, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestUpsertOverwritesSameVectorID(t *testing.T) {
	s := seed(t)
	updated := []domain.Chunk{{VectorID: "doc_0", DocumentID: "doc", Source: "Algebra", Text: "replaced"}}
	require.NoError(t, s.Upsert(context.Background(), updated, [][]float64{{0.5, 0.5}}))

	res, err := s.Query(context.Background(), []float64{1, 1}, nil, 5)
	require.NoError(t, err)
	require.Len(t, res, 2) // still two points, no duplicate
	for _, m := range res {
		if m.ID == "doc_0" {
			assert.Equal(t, "replaced", m.Chunk.Text)
		}
	}
}

func TestClear(t *testing.T) {
	s := seed(t)
	require.NoError(t, s.Clear(context.Background()))
	res, err := s.Query(context.Background(), []float64{1, 0}, nil, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}
