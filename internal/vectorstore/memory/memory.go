// Package memory provides an in-memory vector store using brute-force
// cosine similarity.
package memory

import (
	"context"
	"errors"
	"math"
	"sync"

	"stemtutor/internal/domain"
	"stemtutor/internal/vectorstore"
)

// Storage keeps all points in memory. Upsert replaces points sharing a
// VectorID instead of appending duplicates.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	byID      map[string]int
	vectors   [][]float64
	chunks    []domain.Chunk
}

func NewStorage() *Storage {
	return &Storage{byID: make(map[string]int)}
}

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		s.byID = make(map[string]int)
		s.vectors = nil
		s.chunks = nil
	}
	s.dimension = dimension
	return nil
}

func (s *Storage) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for i := range chunks {
		if j, ok := s.byID[chunks[i].VectorID]; ok {
			s.chunks[j] = chunks[i]
			s.vectors[j] = vectors[i]
			continue
		}
		s.byID[chunks[i].VectorID] = len(s.chunks)
		s.chunks = append(s.chunks, chunks[i])
		s.vectors = append(s.vectors, vectors[i])
	}
	return nil
}

func (s *Storage) Query(_ context.Context, vector []float64, filter *domain.ConceptFilter, topK int) ([]domain.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	var candidates []int
	for i := range s.chunks {
		if vectorstore.FilterMatches(filter, s.chunks[i]) {
			candidates = append(candidates, i)
		}
	}
	scores := make([]float64, len(candidates))
	for i, j := range candidates {
		scores[i] = cosine(s.vectors[j], vector)
	}
	idxs := argsortDesc(scores)
	if topK > len(idxs) {
		topK = len(idxs)
	}
	results := make([]domain.Match, 0, topK)
	for i := 0; i < topK; i++ {
		j := candidates[idxs[i]]
		results = append(results, domain.Match{
			ID:    s.chunks[j].VectorID,
			Score: scores[idxs[i]],
			Chunk: s.chunks[j],
		})
	}
	return results, nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]int)
	s.vectors = nil
	s.chunks = nil
	return nil
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	dot, na, nb := 0.0, 0.0, 0.0
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	// Stable sort not required
	quicksort(idxs, vals, 0, len(idxs)-1)
	return idxs
}

func quicksort(idxs []int, vals []float64, lo, hi int) {
	if lo >= hi {
		return
	}
	i, j := lo, hi
	pivot := vals[idxs[(lo+hi)/2]]
	for i <= j {
		for vals[idxs[i]] > pivot { // desc order
			i++
		}
		for vals[idxs[j]] < pivot {
			j--
		}
		if i <= j {
			idxs[i], idxs[j] = idxs[j], idxs[i]
			i++
			j--
		}
	}
	if lo < j {
		quicksort(idxs, vals, lo, j)
	}
	if i < hi {
		quicksort(idxs, vals, i, hi)
	}
}
