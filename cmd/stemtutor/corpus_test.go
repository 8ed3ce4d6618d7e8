package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDocumentsTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mechanics.txt")
	require.NoError(t, os.WriteFile(path, []byte("Force equals mass times acceleration."), 0o644))

	docs, err := loadDocuments([]string{path})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "mechanics.txt", docs[0].Source)
	assert.NotEmpty(t, docs[0].ID)
	assert.Contains(t, docs[0].Text, "Force equals")
}

func TestLoadDocumentsJSONCorpus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.json")
	data := `[
  {"id": "mech-1", "source": "Mechanics", "text": "Force equals mass times acceleration."},
  {"source": "Algebra", "text": "Linear equations describe lines."}
]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	docs, err := loadDocuments([]string{path})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "mech-1", docs[0].ID)
	// Documents without an ID get a stable derived one.
	assert.NotEmpty(t, docs[1].ID)
	assert.Equal(t, "Algebra", docs[1].Source)
}

func TestLoadDocumentsGlob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("Cells divide."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("DNA encodes genes."), 0o644))

	docs, err := loadDocuments([]string{filepath.Join(dir, "*.md")})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestLoadDocumentsUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b"), 0o644))

	_, err := loadDocuments([]string{path})
	assert.Error(t, err)
}

func TestLoadDocumentsEmpty(t *testing.T) {
	_, err := loadDocuments(nil)
	assert.Error(t, err)
}
