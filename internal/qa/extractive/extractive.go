// Package extractive provides a local extractive answerer requiring no
// external services. It selects the context sentences most relevant to the
// question by token frequency and overlap.
package extractive

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Answerer ranks context sentences against the question (stopwords filtered).
type Answerer struct {
	maxSentences int
	tokenPattern *regexp.Regexp
	sentPattern  *regexp.Regexp
	stopwords    map[string]struct{}
}

// New creates an extractive answerer returning at most maxSentences
// sentences per answer.
func New(maxSentences int) *Answerer {
	if maxSentences <= 0 {
		maxSentences = 2
	}
	return &Answerer{
		maxSentences: maxSentences,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentPattern:  regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this answerer implementation.
func (a *Answerer) Name() string { return "extractive" }

// Answer returns the context sentences scoring highest against the question.
// Sentences are scored by question-token overlap weighted with corpus token
// frequency, normalized by sentence length; selected sentences keep their
// original order.
func (a *Answerer) Answer(ctx context.Context, question, contextText string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(contextText) == "" {
		return "", errors.New("empty context")
	}
	sentences := a.sentPattern.FindAllString(contextText, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(contextText), nil
	}

	qset := make(map[string]struct{})
	for _, tok := range a.tokens(question) {
		qset[tok] = struct{}{}
	}
	if len(qset) == 0 {
		return "", errors.New("no usable tokens in question")
	}

	// Token frequencies across the whole context, normalized to [0, 1].
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range a.tokens(sent) {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		toks := a.tokens(sent)
		sscore := 0.0
		for _, tok := range toks {
			if _, asked := qset[tok]; asked {
				sscore += 1 + freq[tok]
			}
		}
		// Normalize by sentence length to avoid bias toward long sentences
		if l := float64(len(toks)); l > 0 {
			sscore /= math.Sqrt(l)
		}
		scores[i] = pair{i, sscore}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	n := a.maxSentences
	if n > len(scores) {
		n = len(scores)
	}
	selected := scores[:n]
	// Keep original order among selected sentences
	sort.Slice(selected, func(i, j int) bool { return selected[i].idx < selected[j].idx })

	parts := make([]string, 0, len(selected))
	for _, p := range selected {
		if p.score <= 0 {
			continue
		}
		parts = append(parts, strings.TrimSpace(sentences[p.idx]))
	}
	if len(parts) == 0 {
		// No overlap with the question: fall back to the top-scored sentence.
		parts = append(parts, strings.TrimSpace(sentences[scores[0].idx]))
	}
	return strings.Join(parts, " "), nil
}

func (a *Answerer) tokens(text string) []string {
	raw := a.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := a.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now", "what", "which", "who", "whom", "how", "when", "where", "why", "does", "do", "did",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
