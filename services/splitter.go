package services

import (
	"fmt"
	"log"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/docubot/rag/models"
)

// SplitDocuments splits documents into overlapping chunks for retrieval.
// The recursive character splitter prefers paragraph, then sentence, then
// word boundaries before falling back to a hard cut, so chunks stay
// semantically coherent. Splitting is deterministic for identical input.
//
// Every chunk inherits the metadata of its parent document.
func SplitDocuments(documents []models.Document, chunkSize, chunkOverlap int) ([]models.Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap (%d) must be non-negative and strictly less than chunk size (%d)", chunkOverlap, chunkSize)
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	var chunks []models.Chunk
	for _, doc := range documents {
		parts, err := splitter.SplitText(doc.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to split document %s: %w", doc.Metadata.Source, err)
		}
		for _, part := range parts {
			chunks = append(chunks, models.Chunk{Text: part, Metadata: doc.Metadata})
		}
	}

	log.Printf("SPLITTER: Split %d document(s) into %d chunks.", len(documents), len(chunks))
	return chunks, nil
}
