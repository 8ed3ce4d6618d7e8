package segmenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stemtutor/internal/domain"
)

func TestExtractMetadataSubjects(t *testing.T) {
	tests := []struct {
		text string
		want domain.Subject
	}{
		{"Solve the equation for x.", domain.SubjectMath},
		{"The net force accelerates the mass.", domain.SubjectPhysics},
		{"The molecule forms an ionic bond.", domain.SubjectChemistry},
		{"DNA encodes the genome.", domain.SubjectBiology},
		{"An unrelated statement about history.", domain.SubjectGeneral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractMetadata(tt.text).Subject, tt.text)
	}
}

func TestExtractMetadataFirstSubjectWins(t *testing.T) {
	// "equation" (math) and "force" (physics) both occur; math is scanned
	// first and wins the tie.
	meta := ExtractMetadata("The force equation governs motion.")
	assert.Equal(t, domain.SubjectMath, meta.Subject)
}

func TestExtractMetadataConcepts(t *testing.T) {
	meta := ExtractMetadata("Linear equations follow y = mx plus intercept. The Pythagorean Theorem relates side lengths.")
	require.NotEmpty(t, meta.Concepts)
	assert.Contains(t, meta.Concepts, "y = mx")
	assert.Contains(t, meta.Concepts, "Pythagorean Theorem")
}

func TestExtractMetadataConceptOrderDeterministic(t *testing.T) {
	text := "Ohm's Law states V = IR for simple circuits."
	first := ExtractMetadata(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first.Concepts, ExtractMetadata(text).Concepts)
	}
	// Operator expressions rank before named laws.
	require.NotEmpty(t, first.Concepts)
	assert.Equal(t, "V = IR", first.Concepts[0])
}

func TestExtractMetadataConceptCap(t *testing.T) {
	meta := ExtractMetadata("Alpha Beta. Gamma Delta. Epsilon Zeta. Eta Theta. Iota Kappa. Lambda Mu. Nu Xi.")
	assert.Len(t, meta.Concepts, 5)
}

func TestExtractMetadataPunctuationOnly(t *testing.T) {
	meta := ExtractMetadata("... !!! ???")
	assert.Equal(t, domain.SubjectGeneral, meta.Subject)
	assert.Empty(t, meta.Concepts)
}

func TestExtractMetadataEmpty(t *testing.T) {
	meta := ExtractMetadata("")
	assert.Equal(t, domain.SubjectGeneral, meta.Subject)
	assert.Empty(t, meta.Concepts)
}
