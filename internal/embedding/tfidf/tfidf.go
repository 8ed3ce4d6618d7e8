// Package tfidf provides a local TF-IDF embedder requiring no external
// services. Vectors are L2-normalized so dot products are cosine values.
package tfidf

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

var wordPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// Embedder vectorizes text against a vocabulary learned from the corpus.
// Prepare must run before Encode.
type Embedder struct {
	termIndex map[string]int
	weights   []float64 // smoothed IDF per vocabulary term
	stop      map[string]struct{}
}

// New creates an unprepared TF-IDF embedder.
func New() *Embedder {
	return &Embedder{stop: defaultStopwords()}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare learns the vocabulary and IDF weights from the corpus. Terms are
// indexed in sorted order so repeated runs over the same corpus produce the
// same vector layout.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	docFreq := make(map[string]int)
	for _, text := range corpus {
		for _, term := range e.uniqueTerms(text) {
			docFreq[term]++
		}
	}
	if len(docFreq) == 0 {
		return errors.New("no usable tokens in corpus")
	}

	vocab := make([]string, 0, len(docFreq))
	for term := range docFreq {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	e.termIndex = make(map[string]int, len(vocab))
	e.weights = make([]float64, len(vocab))
	docs := float64(len(corpus))
	for i, term := range vocab {
		e.termIndex[term] = i
		e.weights[i] = math.Log((1+docs)/(1+float64(docFreq[term]))) + 1
	}
	return nil
}

// Dimension returns the dimensionality of the produced vectors.
func (e *Embedder) Dimension() int { return len(e.weights) }

// Encode vectorizes each text against the prepared vocabulary. Texts with no
// vocabulary overlap produce the zero vector.
func (e *Embedder) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if e.termIndex == nil {
		return nil, errors.New("tfidf embedder not prepared")
	}
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.vectorize(text)
	}
	return vectors, nil
}

func (e *Embedder) vectorize(text string) []float64 {
	vec := make([]float64, len(e.weights))
	counts := make(map[int]float64)
	total := 0.0
	for _, term := range e.terms(text) {
		if idx, known := e.termIndex[term]; known {
			counts[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	sumSq := 0.0
	for idx, n := range counts {
		v := (n / total) * e.weights[idx]
		vec[idx] = v
		sumSq += v * v
	}
	if norm := math.Sqrt(sumSq); norm > 0 {
		for idx := range counts {
			vec[idx] /= norm
		}
	}
	return vec
}

// terms lowercases, tokenizes, and drops stopwords.
func (e *Embedder) terms(text string) []string {
	raw := wordPattern.FindAllString(strings.ToLower(text), -1)
	kept := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stop[t]; !isStop {
			kept = append(kept, t)
		}
	}
	return kept
}

func (e *Embedder) uniqueTerms(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range e.terms(text) {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
