package segmenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextEmpty(t *testing.T) {
	assert.Nil(t, ChunkText("", 100, 10))
	assert.Nil(t, ChunkText("   \n\t  ", 100, 10))
}

func TestChunkTextSingleSentence(t *testing.T) {
	chunks := ChunkText("Energy is conserved in an isolated system.", 50, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Energy is conserved in an isolated system.", chunks[0])
}

func TestChunkTextWordBudget(t *testing.T) {
	// Five sentences of five words each; budget of ten with no overlap
	// packs two sentences per chunk.
	text := "One two three four five. Six seven eight nine ten. " +
		"Alpha beta gamma delta one. Two three four five six. Seven eight nine ten end."
	chunks := ChunkText(text, 10, 0)
	require.Len(t, chunks, 3)
	for _, c := range chunks[:2] {
		assert.LessOrEqual(t, len(strings.Fields(c)), 10)
	}
}

func TestChunkTextOverlapCarriesLeadingUnits(t *testing.T) {
	text := "One two three four five. Six seven eight nine ten. " +
		"Alpha beta gamma delta one. Two three four five six."
	chunks := ChunkText(text, 10, 5)
	require.GreaterOrEqual(t, len(chunks), 2)
	// The overlap window is rebuilt from the closed chunk's leading units.
	assert.True(t, strings.HasPrefix(chunks[1], "One two three four five."))
}

func TestChunkTextOversizedSentenceKeptWhole(t *testing.T) {
	long := strings.Repeat("word ", 30)
	chunks := ChunkText(strings.TrimSpace(long)+".", 5, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, 30, len(strings.Fields(chunks[0])))
}

func TestChunkTextReconstructsSentenceOrder(t *testing.T) {
	text := "First fact here. Second fact here. Third fact here."
	chunks := ChunkText(text, 100, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitUnitsAbbreviationGuard(t *testing.T) {
	units := splitUnits("Dr. Smith proved it. We use tools, e.g. hammers. Done.")
	require.Len(t, units, 3)
	assert.Equal(t, "Dr. Smith proved it.", units[0])
	assert.Equal(t, "We use tools, e.g. hammers.", units[1])
	assert.Equal(t, "Done.", units[2])
}

func TestSplitUnitsInitialGuard(t *testing.T) {
	units := splitUnits("A. Einstein published in 1905. It changed physics.")
	require.Len(t, units, 2)
	assert.Equal(t, "A. Einstein published in 1905.", units[0])
}

func TestSplitUnitsParagraphBreak(t *testing.T) {
	units := splitUnits("First paragraph without punctuation\n\nSecond paragraph")
	require.Len(t, units, 2)
	assert.Equal(t, "First paragraph without punctuation", units[0])
	assert.Equal(t, "Second paragraph", units[1])
}

func TestChunkTextQuestionsAndExclamations(t *testing.T) {
	units := splitUnits("What is energy? It moves things! Simple.")
	require.Len(t, units, 3)
}
