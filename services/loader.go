package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/docubot/rag/models"
)

// LoadDocuments scans a directory (non-recursively) for supported files and
// extracts their text. TXT files produce one Document each; PDF files produce
// one Document per page. A file that fails to parse is logged and skipped so
// one corrupt file never blocks ingestion of the rest.
//
// If the directory does not exist it is created empty and an empty slice is
// returned, so a fresh deployment can start without any documents.
func LoadDocuments(dir string) ([]models.Document, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create document directory %s: %w", dir, err)
		}
		log.Printf("LOADER: Created document directory at: %s", dir)
		return []models.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat document directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("document path %s is not a directory", dir)
	}

	// os.ReadDir returns entries sorted by name, so ingest order is
	// deterministic.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read document directory %s: %w", dir, err)
	}

	var documents []models.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)

		switch strings.ToLower(filepath.Ext(name)) {
		case ".txt":
			content, err := os.ReadFile(path)
			if err != nil {
				log.Printf("LOADER: Error loading %s: %v", name, err)
				continue
			}
			documents = append(documents, models.Document{
				Text:     string(content),
				Metadata: models.DocMetadata{Source: name, Type: "txt"},
			})
			log.Printf("LOADER: Loaded TXT file: %s", name)

		case ".pdf":
			pages, err := extractTextFromPDF(path)
			if err != nil {
				log.Printf("LOADER: Error loading %s: %v", name, err)
				continue
			}
			for i, text := range pages {
				page := i + 1
				documents = append(documents, models.Document{
					Text:     text,
					Metadata: models.DocMetadata{Source: name, Type: "pdf", Page: &page},
				})
			}
			log.Printf("LOADER: Loaded PDF file: %s (%d pages)", name, len(pages))
		}
	}

	if len(documents) == 0 {
		log.Printf("LOADER: No documents found in %s", dir)
	} else {
		log.Printf("LOADER: Successfully loaded %d document(s)/page(s)", len(documents))
	}
	return documents, nil
}
