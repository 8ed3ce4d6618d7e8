// Package qdrant provides a minimal REST client to a Qdrant collection.
// It assumes cosine distance and creates the collection if missing.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stemtutor/internal/domain"
	"stemtutor/internal/vectorstore"
)

const defaultCollection = "stem-tutor-index"

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

type Storage struct {
	cfg    Config
	client *http.Client
}

func NewStorage(cfg Config) *Storage {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Collection == "" {
		cfg.Collection = defaultCollection
	}
	return &Storage{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// Init ensures the collection exists with the given vector size. Qdrant
// answers 200 when the collection is already there with the same schema.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	body := map[string]any{
		"vectors": map[string]any{"size": dimension, "distance": "Cosine"},
	}
	return s.send(ctx, http.MethodPut, s.collectionURL(""), body, nil)
}

func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	points := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		points[i] = map[string]any{
			"id":     c.VectorID,
			"vector": vectors[i],
			"payload": map[string]any{
				"document_id": c.DocumentID,
				"source":      c.Source,
				"index":       c.Index,
				"text":        c.Text,
				"subject":     string(c.Subject),
				"concepts":    vectorstore.JoinConcepts(c.Concepts),
			},
		}
	}
	return s.send(ctx, http.MethodPut, s.collectionURL("/points?wait=true"),
		map[string]any{"points": points}, nil)
}

func (s *Storage) Query(ctx context.Context, vector []float64, filter *domain.ConceptFilter, topK int) ([]domain.Match, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if filter != nil && len(filter.Concepts) > 0 {
		// Disjunctive concept filter: match any of the user's concepts
		// against the full-text indexed concepts payload field.
		should := make([]map[string]any, 0, len(filter.Concepts))
		for _, concept := range filter.Concepts {
			should = append(should, map[string]any{
				"key":   "concepts",
				"match": map[string]any{"text": concept},
			})
		}
		req["filter"] = map[string]any{"should": should}
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.send(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}

	matches := make([]domain.Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunk := payloadChunk(r.Payload)
		matches = append(matches, domain.Match{ID: chunk.VectorID, Score: r.Score, Chunk: chunk})
	}
	return matches, nil
}

// Clear drops the collection. Best effort; a later Init recreates it.
func (s *Storage) Clear(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.collectionURL(""), nil)
	if err != nil {
		return err
	}
	s.auth(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func payloadChunk(payload map[string]any) domain.Chunk {
	chunk := domain.Chunk{Subject: domain.SubjectGeneral}
	if v, ok := payload["document_id"].(string); ok {
		chunk.DocumentID = v
	}
	if v, ok := payload["source"].(string); ok {
		chunk.Source = v
	}
	if v, ok := payload["index"].(float64); ok {
		chunk.Index = int(v)
	}
	if v, ok := payload["text"].(string); ok {
		chunk.Text = v
	}
	if v, ok := payload["subject"].(string); ok && v != "" {
		chunk.Subject = domain.Subject(v)
	}
	if v, ok := payload["concepts"].(string); ok {
		chunk.Concepts = vectorstore.SplitConcepts(v)
	}
	chunk.VectorID = domain.VectorID(chunk.DocumentID, chunk.Index)
	return chunk
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.cfg.URL, s.cfg.Collection, suffix)
}

func (s *Storage) auth(req *http.Request) {
	if s.cfg.APIKey != "" {
		req.Header.Set("api-key", s.cfg.APIKey)
	}
}

// send issues a JSON request and decodes the response into out when non-nil.
func (s *Storage) send(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	s.auth(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
