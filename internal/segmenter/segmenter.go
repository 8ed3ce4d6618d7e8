// Package segmenter splits raw document text into overlapping, size-bounded
// chunks and extracts lightweight subject/concept metadata from them.
package segmenter

import (
	"strings"
	"unicode"
)

// ChunkText splits text into chunks of roughly maxWords words each, carrying
// overlapWords words of overlap from the end of one chunk into the next.
// Empty or whitespace-only input yields nil.
//
// Units are sentence-like: the text is split on ./?/! followed by whitespace
// (guarding dotted abbreviations and initials) and on blank-line paragraph
// breaks. A chunk is closed when the next unit would push it past maxWords;
// the overlap is rebuilt from the closed chunk's leading units until the
// overlap word budget is met. A single unit longer than maxWords is kept
// whole, so one oversized sentence can exceed the target.
func ChunkText(text string, maxWords, overlapWords int) []string {
	units := splitUnits(text)
	if len(units) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, unit := range units {
		unitLen := len(strings.Fields(unit))
		if currentLen+unitLen <= maxWords || len(current) == 0 {
			current = append(current, unit)
			currentLen += unitLen
			continue
		}
		chunks = append(chunks, strings.Join(current, " "))

		var overlap []string
		overlapLen := 0
		for len(current) > 0 && overlapLen < overlapWords {
			head := current[0]
			current = current[1:]
			overlap = append(overlap, head)
			overlapLen += len(strings.Fields(head))
		}
		current = append(overlap, unit)
		currentLen = overlapLen + unitLen
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// splitUnits breaks text into trimmed sentence-like units. Paragraph breaks
// (blank lines) always split; sentence punctuation splits only when followed
// by whitespace and not part of a dotted abbreviation or initial.
func splitUnits(text string) []string {
	var units []string
	for _, para := range splitParagraphs(text) {
		units = append(units, splitSentences(para)...)
	}
	return units
}

func splitParagraphs(text string) []string {
	var paras []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			paras = append(paras, block)
		}
	}
	return paras
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '?' && r != '!' {
			continue
		}
		if i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if r == '.' && abbreviationBefore(runes, i) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// abbreviationBefore reports whether the period at runes[i] terminates a
// dotted abbreviation ("e.g.", "U.S.") or a short title/initial ("A.", "Dr.").
func abbreviationBefore(runes []rune, i int) bool {
	// Dotted form: a period two runes back, as in "e.g." or "i.e.".
	if i >= 2 && unicode.IsLetter(runes[i-1]) && runes[i-2] == '.' {
		return true
	}
	// Word immediately before the period.
	end := i
	start := end
	for start > 0 && unicode.IsLetter(runes[start-1]) {
		start--
	}
	word := runes[start:end]
	switch len(word) {
	case 1:
		return unicode.IsUpper(word[0])
	case 2:
		return unicode.IsUpper(word[0]) && unicode.IsLower(word[1])
	}
	return false
}
