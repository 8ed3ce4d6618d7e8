package domain

import (
	"strconv"
	"time"
)

// Document is a raw text source provided to ingestion. Immutable input.
type Document struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Text   string `json:"text"`
}

// Subject classifies a chunk into one of the supported STEM areas.
type Subject string

const (
	SubjectMath      Subject = "math"
	SubjectPhysics   Subject = "physics"
	SubjectChemistry Subject = "chemistry"
	SubjectBiology   Subject = "biology"
	SubjectGeneral   Subject = "general"
)

// Chunk is a bounded segment of a document carrying subject/concept metadata.
// Chunks are never mutated after creation; re-ingesting a document replaces
// them via upsert on VectorID.
type Chunk struct {
	VectorID   string
	DocumentID string
	Source     string
	Text       string
	Index      int
	Subject    Subject
	Concepts   []string
}

// VectorID derives the stable vector-store id for a chunk of a document.
// Re-ingesting a document reproduces the ids, so upserts overwrite.
func VectorID(documentID string, index int) string {
	return documentID + "_" + strconv.Itoa(index)
}

// Match is a single retrieval result. Score is a similarity in [-1, 1]
// (stores backed by a distance metric report 1 - distance).
type Match struct {
	ID    string
	Score float64
	Chunk Chunk
}

// ConceptFilter restricts retrieval to chunks whose concepts field contains
// any of the listed concepts. A nil *ConceptFilter means unfiltered search.
type ConceptFilter struct {
	Concepts []string
}

// Response is the result of one tutoring query. Ephemeral, never persisted.
type Response struct {
	Answer         string
	Context        string
	Concepts       []string
	RelevanceScore float64
	Sources        []string
	Latency        time.Duration
	UserID         string
}
