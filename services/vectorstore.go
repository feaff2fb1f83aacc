package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/docubot/rag/models"
)

// Entry is one persisted vector index record: a chunk plus its embedding.
type Entry struct {
	ID        string       `json:"id"`
	Embedding []float32    `json:"embedding"`
	Chunk     models.Chunk `json:"chunk"`
}

// VectorStore persists index entries and answers nearest-neighbor queries.
// Implementations: LocalStore (JSON file on disk) and ChromaStore (ChromaDB).
type VectorStore interface {
	// Exists reports whether a persisted index with at least one entry is
	// available.
	Exists(ctx context.Context) (bool, error)
	// Count returns the number of persisted entries.
	Count(ctx context.Context) (int, error)
	// Add persists entries in bulk. Entries are never individually mutated.
	Add(ctx context.Context, entries []Entry) error
	// Search returns up to k chunks ordered by non-increasing similarity to
	// the query vector.
	Search(ctx context.Context, vector []float32, k int) ([]models.Chunk, error)
	// Drop removes the persisted index as a whole.
	Drop(ctx context.Context) error
}

// Retriever is the capability the chat engine needs from the index.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.Chunk, error)
}

// VectorIndex ties a VectorStore to an Embedder and manages the index
// lifecycle: create from scratch, load from persistent storage, or force
// rebuild.
type VectorIndex struct {
	store    VectorStore
	embedder Embedder
}

// NewVectorIndex creates an index over the given store and embedder.
func NewVectorIndex(store VectorStore, embedder Embedder) *VectorIndex {
	return &VectorIndex{store: store, embedder: embedder}
}

// Open returns a ready-to-query index.
//
// If forceRecreate is set any persisted index is dropped first. Otherwise an
// existing persisted index is loaded as-is and the provided chunks are
// ignored (existing data is never merged with new chunks). With no persisted
// index and no chunks, Open returns (nil, nil): ingest-with-no-documents is
// not an error, but an index cannot be built from nothing.
func (v *VectorIndex) Open(ctx context.Context, chunks []models.Chunk, forceRecreate bool) (*VectorIndex, error) {
	if forceRecreate {
		log.Println("INDEX: Force recreate requested, dropping existing vector store.")
		if err := v.store.Drop(ctx); err != nil {
			return nil, fmt.Errorf("failed to drop existing vector store: %w", err)
		}
	}

	exists, err := v.store.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check for persisted vector store: %w", err)
	}
	if exists {
		count, err := v.store.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted vector store: %w", err)
		}
		log.Printf("INDEX: Loaded existing vector store with %d entries.", count)
		return v, nil
	}

	if len(chunks) == 0 {
		log.Println("INDEX: No chunks to index and no persisted store. Nothing to open.")
		return nil, nil
	}

	if err := v.build(ctx, chunks); err != nil {
		return nil, err
	}
	return v, nil
}

// build embeds every chunk and persists the entries in bulk.
func (v *VectorIndex) build(ctx context.Context, chunks []models.Chunk) error {
	log.Printf("INDEX: Building new vector store from %d chunks...", len(chunks))

	entries := make([]Entry, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := v.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return fmt.Errorf("could not embed chunk %d (%s): %w", i, chunk.Metadata.Source, err)
		}
		entries = append(entries, Entry{
			ID:        uuid.New().String(),
			Embedding: embedding,
			Chunk:     chunk,
		})
	}

	if err := v.store.Add(ctx, entries); err != nil {
		return fmt.Errorf("failed to persist vector index entries: %w", err)
	}
	log.Printf("INDEX: Vector store created with %d entries.", len(entries))
	return nil
}

// Retrieve implements Retriever: it embeds the query and returns the k
// nearest chunks, highest similarity first.
func (v *VectorIndex) Retrieve(ctx context.Context, query string, k int) ([]models.Chunk, error) {
	embedding, err := v.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	chunks, err := v.store.Search(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}
	return chunks, nil
}
