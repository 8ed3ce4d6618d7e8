package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stemtutor/internal/domain"
)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "vectors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Init(context.Background(), 2))
	return s
}

func TestUpsertAndQuery(t *testing.T) {
	s := openTest(t)
	chunks := []domain.Chunk{
		{VectorID: "doc_0", DocumentID: "doc", Source: "Algebra", Text: "first", Subject: domain.SubjectMath, Concepts: []string{"Linear"}},
		{VectorID: "doc_1", DocumentID: "doc", Source: "Physics", Text: "second", Subject: domain.SubjectPhysics, Concepts: []string{"Momentum"}},
	}
	require.NoError(t, s.Upsert(context.Background(), chunks, [][]float64{{1, 0}, {0, 1}}))

	res, err := s.Query(context.Background(), []float64{1, 0.1}, nil, 5)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "doc_0", res[0].ID)
	assert.Equal(t, domain.SubjectMath, res[0].Chunk.Subject)
	assert.Equal(t, []string{"Linear"}, res[0].Chunk.Concepts)
}

func TestQueryConceptFilter(t *testing.T) {
	s := openTest(t)
	chunks := []domain.Chunk{
		{VectorID: "doc_0", DocumentID: "doc", Source: "Algebra", Text: "first", Subject: domain.SubjectMath, Concepts: []string{"Linear"}},
		{VectorID: "doc_1", DocumentID: "doc", Source: "Physics", Text: "second", Subject: domain.SubjectPhysics, Concepts: []string{"Momentum"}},
	}
	require.NoError(t, s.Upsert(context.Background(), chunks, [][]float64{{1, 0}, {0, 1}}))

	res, err := s.Query(context.Background(), []float64{1, 0}, &domain.ConceptFilter{Concepts: []string{"Momentum"}}, 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "doc_1", res[0].ID)
}

func TestUpsertOverwrites(t *testing.T) {
	s := openTest(t)
	chunk := domain.Chunk{VectorID: "doc_0", DocumentID: "doc", Source: "Algebra", Text: "original", Subject: domain.SubjectMath}
	require.NoError(t, s.Upsert(context.Background(), []domain.Chunk{chunk}, [][]float64{{1, 0}}))

	chunk.Text = "replaced"
	require.NoError(t, s.Upsert(context.Background(), []domain.Chunk{chunk}, [][]float64{{0, 1}}))

	res, err := s.Query(context.Background(), []float64{0, 1}, nil, 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "replaced", res[0].Chunk.Text)
}

func TestClear(t *testing.T) {
	s := openTest(t)
	chunk := domain.Chunk{VectorID: "doc_0", DocumentID: "doc", Source: "Algebra", Text: "x", Subject: domain.SubjectMath}
	require.NoError(t, s.Upsert(context.Background(), []domain.Chunk{chunk}, [][]float64{{1, 0}}))
	require.NoError(t, s.Clear(context.Background()))

	res, err := s.Query(context.Background(), []float64{1, 0}, nil, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background(), 2))
	chunk := domain.Chunk{VectorID: "doc_0", DocumentID: "doc", Source: "Algebra", Text: "kept", Subject: domain.SubjectMath}
	require.NoError(t, s.Upsert(context.Background(), []domain.Chunk{chunk}, [][]float64{{1, 0}}))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	require.NoError(t, s2.Init(context.Background(), 2))
	res, err := s2.Query(context.Background(), []float64{1, 0}, nil, 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "kept", res[0].Chunk.Text)
}
