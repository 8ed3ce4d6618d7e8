// Package tutor orchestrates the tutoring session: document ingestion,
// retrieval with concept filtering and fallback, extractive answering, and
// review-schedule updates. HandleQuery is the sole per-query entry point and
// never fails; every failure mode maps to a fixed degraded response.
package tutor

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"stemtutor/internal/domain"
	"stemtutor/internal/embedding"
	"stemtutor/internal/qa"
	"stemtutor/internal/scheduler"
	"stemtutor/internal/segmenter"
	"stemtutor/internal/vectorstore"
)

// Degraded response answers, one per failure mode.
const (
	msgInvalidQuestion = "Please provide a valid question"
	msgEmbedFailed     = "I couldn't process your question"
	msgNoResults       = "I couldn't find relevant information to answer your question"
	msgAnswerFailed    = "I couldn't generate an answer for that question. Please try again."
	msgInternalError   = "I encountered an error processing your request"
)

// Defaults for the tutoring parameters.
const (
	DefaultChunkWords   = 768
	DefaultOverlapWords = 100
	DefaultTopK         = 5
	// maxProgressUpdates caps how many prioritized concepts a single query
	// may reinforce in the scheduler.
	maxProgressUpdates = 2
)

// Config wires the tutoring service's collaborators and parameters.
type Config struct {
	Embedder     embedding.Embedder
	Store        vectorstore.Storage
	Answerer     qa.Answerer
	Scheduler    *scheduler.Scheduler
	ChunkWords   int
	OverlapWords int
	TopK         int
	Logger       *slog.Logger
}

// Service is the tutoring orchestrator.
type Service struct {
	embedder     embedding.Embedder
	store        vectorstore.Storage
	answerer     qa.Answerer
	scheduler    *scheduler.Scheduler
	chunkWords   int
	overlapWords int
	topK         int
	logger       *slog.Logger
	now          func() time.Time
}

func New(cfg Config) *Service {
	if cfg.ChunkWords <= 0 {
		cfg.ChunkWords = DefaultChunkWords
	}
	if cfg.OverlapWords < 0 || cfg.OverlapWords >= cfg.ChunkWords {
		cfg.OverlapWords = DefaultOverlapWords
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		embedder:     cfg.Embedder,
		store:        cfg.Store,
		answerer:     cfg.Answerer,
		scheduler:    cfg.Scheduler,
		chunkWords:   cfg.ChunkWords,
		overlapWords: cfg.OverlapWords,
		topK:         cfg.TopK,
		logger:       cfg.Logger,
		now:          time.Now,
	}
}

// Ingest chunks, embeds, and upserts the documents into the vector store.
// Failures are isolated per document: a document with invalid text or a
// failed embedding batch is skipped and the rest continue. All surviving
// vectors go to the store in a single Upsert call; if none survive, no
// Upsert is made. Returns the number of vectors upserted.
func (s *Service) Ingest(ctx context.Context, documents []domain.Document) (int, error) {
	type pending struct {
		doc    domain.Document
		chunks []string
	}
	var work []pending
	var corpus []string
	for _, doc := range documents {
		if strings.TrimSpace(doc.Text) == "" {
			s.logger.Warn("skipping document with invalid text", "doc_id", doc.ID)
			continue
		}
		chunks := segmenter.ChunkText(doc.Text, s.chunkWords, s.overlapWords)
		valid := chunks[:0]
		for _, c := range chunks {
			if strings.TrimSpace(c) != "" {
				valid = append(valid, c)
			}
		}
		if len(valid) == 0 {
			s.logger.Warn("no valid chunks found for document", "doc_id", doc.ID)
			continue
		}
		work = append(work, pending{doc: doc, chunks: valid})
		corpus = append(corpus, valid...)
	}
	if len(work) == 0 {
		s.logger.Warn("no vectors to ingest")
		return 0, nil
	}

	// Corpus-prepared embedders (TF-IDF) need the full chunk set up front;
	// remote embedders treat this as a no-op.
	if err := s.embedder.Prepare(corpus); err != nil {
		return 0, err
	}

	var allChunks []domain.Chunk
	var allVectors [][]float64
	for _, p := range work {
		vectors, err := s.embedder.Encode(ctx, p.chunks)
		if err != nil || len(vectors) != len(p.chunks) {
			s.logger.Error("embedding failed", "doc_id", p.doc.ID, "error", err)
			continue
		}
		for idx, text := range p.chunks {
			meta := segmenter.ExtractMetadata(text)
			allChunks = append(allChunks, domain.Chunk{
				VectorID:   domain.VectorID(p.doc.ID, idx),
				DocumentID: p.doc.ID,
				Source:     p.doc.Source,
				Text:       text,
				Index:      idx,
				Subject:    meta.Subject,
				Concepts:   meta.Concepts,
			})
			allVectors = append(allVectors, vectors[idx])
		}
	}
	if len(allChunks) == 0 {
		s.logger.Warn("no vectors to ingest")
		return 0, nil
	}

	if err := s.store.Init(ctx, len(allVectors[0])); err != nil {
		return 0, err
	}
	if err := s.store.Upsert(ctx, allChunks, allVectors); err != nil {
		return 0, err
	}
	s.logger.Info("ingested vectors",
		"vectors", len(allChunks), "documents", len(documents))
	return len(allChunks), nil
}

// HandleQuery answers one question for the user. It never panics or returns
// an error: unexpected failures produce a generic degraded response. Latency
// and UserID are always set.
func (s *Service) HandleQuery(ctx context.Context, userID, query string) (resp domain.Response) {
	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("query handling panicked", "user", userID, "panic", r)
			resp = degraded(msgInternalError)
		}
		resp.Latency = s.now().Sub(start)
		resp.UserID = userID
	}()
	resp = s.generateResponse(ctx, userID, query)
	return resp
}

// generateResponse runs the retrieval state machine, short-circuiting with a
// degraded response at each stage on invalid input or collaborator failure.
func (s *Service) generateResponse(ctx context.Context, userID, query string) domain.Response {
	if strings.TrimSpace(query) == "" {
		return degraded(msgInvalidQuestion)
	}

	queryVectors, err := s.embedder.Encode(ctx, []string{query})
	if err != nil || len(queryVectors) == 0 {
		s.logger.Error("query embedding failed", "error", err)
		return degraded(msgEmbedFailed)
	}
	queryVec := queryVectors[0]

	var filter *domain.ConceptFilter
	if known := s.scheduler.KnownConcepts(userID); len(known) > 0 {
		filter = &domain.ConceptFilter{Concepts: known}
	}

	matches, err := s.store.Query(ctx, queryVec, filter, s.topK)
	if err != nil {
		s.logger.Error("vector query failed", "error", err)
		matches = nil
	}
	if len(matches) == 0 && filter != nil {
		// A narrow concept profile should not hide the general corpus.
		s.logger.Debug("no results with concept filter, trying unfiltered search", "user", userID)
		matches, err = s.store.Query(ctx, queryVec, nil, s.topK)
		if err != nil {
			s.logger.Error("unfiltered vector query failed", "error", err)
			matches = nil
		}
	}
	if len(matches) == 0 {
		return degraded(msgNoResults)
	}

	candidates := unionConcepts(matches)
	prioritized := s.scheduler.LearningContext(userID, candidates)

	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Chunk.Text
	}
	contextText := strings.Join(texts, "\n")

	answer, err := s.answerer.Answer(ctx, query, contextText)
	if err != nil {
		s.logger.Error("answer generation failed", "error", err)
		answer = msgAnswerFailed
	}

	for i, concept := range prioritized {
		if i == maxProgressUpdates {
			break
		}
		s.scheduler.UpdateProgress(userID, concept)
	}

	relevance := 0.0
	if answerVectors, err := s.embedder.Encode(ctx, []string{answer}); err == nil && len(answerVectors) > 0 {
		relevance = cosine(queryVec, answerVectors[0])
	} else {
		s.logger.Error("relevance score calculation failed", "error", err)
	}

	return domain.Response{
		Answer:         answer,
		Context:        contextText,
		Concepts:       prioritized,
		RelevanceScore: relevance,
		Sources:        uniqueSources(matches),
	}
}

func degraded(answer string) domain.Response {
	return domain.Response{Answer: answer}
}

// unionConcepts collects concepts across matches in first-occurrence order.
func unionConcepts(matches []domain.Match) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range matches {
		for _, c := range m.Chunk.Concepts {
			if c == "" {
				continue
			}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func uniqueSources(matches []domain.Match) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range matches {
		src := m.Chunk.Source
		if src == "" {
			continue
		}
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return out
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
