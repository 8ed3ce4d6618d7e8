package vectorstore

import (
	"context"

	"stemtutor/internal/domain"
)

// Storage persists chunk vectors and supports filtered similarity search.
type Storage interface {
	Init(ctx context.Context, dimension int) error
	// Upsert stores chunks with their vectors, overwriting entries that
	// share a VectorID.
	Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error
	// Query returns up to topK matches ordered by decreasing similarity.
	// A nil filter searches the whole collection.
	Query(ctx context.Context, vector []float64, filter *domain.ConceptFilter, topK int) ([]domain.Match, error)
	Clear(ctx context.Context) error
}

// FilterMatches reports whether a chunk passes the disjunctive concept
// filter. Matching is substring containment over the comma-joined concepts
// field, so a filter concept matches both exact entries and larger phrases
// containing it. A nil or empty filter matches everything.
func FilterMatches(filter *domain.ConceptFilter, chunk domain.Chunk) bool {
	if filter == nil || len(filter.Concepts) == 0 {
		return true
	}
	joined := JoinConcepts(chunk.Concepts)
	for _, concept := range filter.Concepts {
		if concept == "" {
			continue
		}
		if containsFold(joined, concept) {
			return true
		}
	}
	return false
}
