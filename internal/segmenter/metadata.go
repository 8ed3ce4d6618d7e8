package segmenter

import (
	"regexp"
	"strings"

	"stemtutor/internal/domain"
)

// Metadata is the lightweight classification attached to a chunk.
type Metadata struct {
	Subject  domain.Subject
	Concepts []string
}

// maxConcepts caps how many concepts a single chunk may carry.
const maxConcepts = 5

// subjectKeywords is scanned in order; the first subject with a keyword hit
// wins, so earlier subjects win ties.
var subjectKeywords = []struct {
	subject  domain.Subject
	keywords []string
}{
	{domain.SubjectMath, []string{"equation", "theorem", "calculate", "solve", "derivative", "integral"}},
	{domain.SubjectPhysics, []string{"force", "energy", "velocity", "quantum", "electron"}},
	{domain.SubjectChemistry, []string{"atom", "molecule", "reaction", "bond", "ph"}},
	{domain.SubjectBiology, []string{"cell", "dna", "protein", "photosynthesis", "gene"}},
}

var (
	// token op token, e.g. "F=ma" or "y = mx".
	exprPattern = regexp.MustCompile(`[a-zA-Z0-9_]+\s*[=+\-*/^]\s*[a-zA-Z0-9_]+`)
	// Capitalized phrases of one or two words ending in Theorem/Law/Identity.
	namedPattern = regexp.MustCompile(`(?:[A-Z][a-z]+(?:'s)?\s+){1,2}(?:Theorem|Law|Identity)`)
	// Runs of consecutive capitalized words.
	termPattern = regexp.MustCompile(`\b[A-Z][a-z]+\b(?:\s+[A-Z][a-z]+)*`)
)

// ExtractMetadata classifies chunk text into a subject and up to five
// concepts. It never panics; on any failure it degrades to subject "general"
// with no concepts.
//
// Concept ordering is deterministic: binary-operator expressions first, then
// named theorems/laws/identities, then capitalized terms, each in order of
// first occurrence.
func ExtractMetadata(text string) (meta Metadata) {
	meta = Metadata{Subject: domain.SubjectGeneral}
	defer func() {
		if recover() != nil {
			meta.Concepts = nil
		}
	}()

	lower := strings.ToLower(text)
	for _, entry := range subjectKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				meta.Subject = entry.subject
				break
			}
		}
		if meta.Subject != domain.SubjectGeneral {
			break
		}
	}

	seen := make(map[string]struct{})
	var concepts []string
	for _, pattern := range []*regexp.Regexp{exprPattern, namedPattern, termPattern} {
		for _, m := range pattern.FindAllString(text, -1) {
			m = strings.TrimSpace(m)
			if m == "" {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			concepts = append(concepts, m)
			if len(concepts) == maxConcepts {
				meta.Concepts = concepts
				return meta
			}
		}
	}
	meta.Concepts = concepts
	return meta
}
