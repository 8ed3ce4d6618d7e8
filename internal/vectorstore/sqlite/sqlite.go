// Package sqlite provides a persistent local vector store backed by SQLite.
// Vectors are stored as JSON arrays and searched with a brute-force cosine
// scan, which is adequate for corpus sizes this tool targets.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	_ "modernc.org/sqlite"

	"stemtutor/internal/domain"
	"stemtutor/internal/vectorstore"
)

// Storage wraps a SQLite database holding chunk vectors.
type Storage struct {
	db        *sql.DB
	dimension int
}

// Open opens or creates a SQLite vector store at the given path.
func Open(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS chunks (
			vector_id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			source TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			subject TEXT NOT NULL,
			concepts TEXT NOT NULL,
			vector_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
	`
	_, err := db.Exec(schema)
	return err
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	return ctx.Err()
}

// Upsert inserts chunks with their vectors, replacing rows sharing a
// vector_id.
func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (vector_id, document_id, source, chunk_index, text, subject, concepts, vector_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(vector_id) DO UPDATE SET
			document_id = excluded.document_id,
			source = excluded.source,
			chunk_index = excluded.chunk_index,
			text = excluded.text,
			subject = excluded.subject,
			concepts = excluded.concepts,
			vector_json = excluded.vector_json
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		vecJSON, err := json.Marshal(vectors[i])
		if err != nil {
			return fmt.Errorf("encoding vector: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			chunks[i].VectorID,
			chunks[i].DocumentID,
			chunks[i].Source,
			chunks[i].Index,
			chunks[i].Text,
			string(chunks[i].Subject),
			vectorstore.JoinConcepts(chunks[i].Concepts),
			string(vecJSON),
		)
		if err != nil {
			return fmt.Errorf("upserting chunk %s: %w", chunks[i].VectorID, err)
		}
	}
	return tx.Commit()
}

// Query scans all rows, applies the concept filter in process, and ranks by
// cosine similarity.
func (s *Storage) Query(ctx context.Context, vector []float64, filter *domain.ConceptFilter, topK int) ([]domain.Match, error) {
	if topK <= 0 {
		topK = 5
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT vector_id, document_id, source, chunk_index, text, subject, concepts, vector_json
		FROM chunks
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		var chunk domain.Chunk
		var subject, concepts, vecJSON string
		if err := rows.Scan(&chunk.VectorID, &chunk.DocumentID, &chunk.Source,
			&chunk.Index, &chunk.Text, &subject, &concepts, &vecJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Subject = domain.Subject(subject)
		chunk.Concepts = vectorstore.SplitConcepts(concepts)
		if !vectorstore.FilterMatches(filter, chunk) {
			continue
		}
		var vec []float64
		if err := json.Unmarshal([]byte(vecJSON), &vec); err != nil {
			return nil, fmt.Errorf("decoding vector for %s: %w", chunk.VectorID, err)
		}
		matches = append(matches, domain.Match{
			ID:    chunk.VectorID,
			Score: cosine(vec, vector),
			Chunk: chunk,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *Storage) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM chunks")
	return err
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
