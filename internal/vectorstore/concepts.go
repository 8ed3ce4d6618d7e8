package vectorstore

import "strings"

// conceptSeparator joins and splits the concepts metadata field. The wire
// format is a comma-space-separated list.
const conceptSeparator = ", "

// JoinConcepts renders a concept list into the stored metadata form.
func JoinConcepts(concepts []string) string {
	return strings.Join(concepts, conceptSeparator)
}

// SplitConcepts parses the stored metadata form back into a concept list.
func SplitConcepts(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, conceptSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
