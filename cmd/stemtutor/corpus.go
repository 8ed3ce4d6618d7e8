package main

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stemtutor/internal/domain"
)

// loadDocuments reads corpus documents from the given paths or globs.
// A .json file holds an array of documents ({id, source, text}); .txt and
// .md files become one document each, with the file name as the source.
func loadDocuments(paths []string) ([]domain.Document, error) {
	var documents []domain.Document
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			switch strings.ToLower(filepath.Ext(m)) {
			case ".json":
				docs, err := loadJSONCorpus(m)
				if err != nil {
					return nil, err
				}
				documents = append(documents, docs...)
			case ".txt", ".md":
				data, err := os.ReadFile(m)
				if err != nil {
					return nil, err
				}
				documents = append(documents, domain.Document{
					ID:     hashString(m),
					Source: filepath.Base(m),
					Text:   string(data),
				})
			default:
				return nil, fmt.Errorf("unsupported corpus file %s (want .txt, .md, or .json)", m)
			}
		}
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("no corpus documents found")
	}
	return documents, nil
}

func loadJSONCorpus(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []domain.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing corpus %s: %w", path, err)
	}
	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = hashString(path + "#" + docs[i].Source)
		}
	}
	return docs, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
