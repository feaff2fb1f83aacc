package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/docubot/rag/models"
)

// ChromaStore is a vector store backed by a ChromaDB collection via the
// chroma-go v2 API. The collection name plays the role of the persisted
// index: dropping it removes the index as a whole.
type ChromaStore struct {
	client chromago.Client
	name   string

	mu         sync.Mutex
	collection chromago.Collection
}

// NewChromaStore creates a store over the named ChromaDB collection.
func NewChromaStore(client chromago.Client, name string) *ChromaStore {
	return &ChromaStore{client: client, name: name}
}

// ensure gets or creates the backing collection on first use.
func (s *ChromaStore) ensure(ctx context.Context) (chromago.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collection != nil {
		return s.collection, nil
	}

	collection, err := s.client.GetOrCreateCollection(
		ctx,
		s.name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "document chat vector index"),
				chromago.NewStringAttribute("created_by", "rag_service"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %s: %w", s.name, err)
	}
	s.collection = collection
	return collection, nil
}

// Exists implements VectorStore. An empty collection counts as absent so a
// fresh deployment builds instead of loading nothing.
func (s *ChromaStore) Exists(ctx context.Context) (bool, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count implements VectorStore.
func (s *ChromaStore) Count(ctx context.Context) (int, error) {
	collection, err := s.ensure(ctx)
	if err != nil {
		return 0, err
	}
	count, err := collection.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items in collection: %w", err)
	}
	return int(count), nil
}

// Add implements VectorStore.
func (s *ChromaStore) Add(ctx context.Context, entries []Entry) error {
	collection, err := s.ensure(ctx)
	if err != nil {
		return err
	}
	for i, entry := range entries {
		err := collection.Add(ctx,
			chromago.WithIDs(chromago.DocumentID(entry.ID)),
			chromago.WithTexts(entry.Chunk.Text),
			chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(entry.Embedding)),
			chromago.WithMetadatas(metadataToChroma(entry.Chunk.Metadata)),
		)
		if err != nil {
			return fmt.Errorf("failed to add entry %d to chromadb: %w", i, err)
		}
	}
	return nil
}

// Search implements VectorStore. ChromaDB returns results ordered by
// similarity already; we only translate them back into chunks.
func (s *ChromaStore) Search(ctx context.Context, vector []float32, k int) ([]models.Chunk, error) {
	collection, err := s.ensure(ctx)
	if err != nil {
		return nil, err
	}
	results, err := collection.Query(
		ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(k),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	var chunks []models.Chunk
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	if len(documentGroups) == 0 {
		return chunks, nil
	}

	for i, doc := range documentGroups[0] {
		if doc.ContentString() == "" {
			continue
		}
		chunk := models.Chunk{Text: doc.ContentString()}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			chunk.Metadata = metadataFromChroma(metadataGroups[0][i])
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// Drop implements VectorStore: the whole collection is deleted.
func (s *ChromaStore) Drop(ctx context.Context) error {
	s.mu.Lock()
	s.collection = nil
	s.mu.Unlock()
	if err := s.client.DeleteCollection(ctx, s.name); err != nil {
		// A missing collection is fine; there is simply nothing to drop.
		log.Printf("STORE: Delete of collection %s reported: %v", s.name, err)
	}
	return nil
}

// metadataToChroma maps chunk metadata onto chroma document attributes.
func metadataToChroma(meta models.DocMetadata) chromago.DocumentMetadata {
	if meta.Page != nil {
		return chromago.NewDocumentMetadata(
			chromago.NewStringAttribute("source", meta.Source),
			chromago.NewStringAttribute("type", meta.Type),
			chromago.NewIntAttribute("page", int64(*meta.Page)),
		)
	}
	return chromago.NewDocumentMetadata(
		chromago.NewStringAttribute("source", meta.Source),
		chromago.NewStringAttribute("type", meta.Type),
	)
}

// metadataFromChroma converts chroma document metadata back into our model.
// DocumentMetadata has no public accessor for its values, so it is
// round-tripped through JSON into a plain map.
func metadataFromChroma(meta chromago.DocumentMetadata) models.DocMetadata {
	out := models.DocMetadata{}
	if meta == nil {
		return out
	}
	jsonBytes, err := json.Marshal(meta)
	if err != nil {
		log.Printf("WARN: could not marshal chroma metadata: %v", err)
		return out
	}
	var metaMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metaMap); err != nil {
		log.Printf("WARN: could not unmarshal chroma metadata: %v", err)
		return out
	}
	if source, ok := metaMap["source"].(string); ok {
		out.Source = source
	}
	if docType, ok := metaMap["type"].(string); ok {
		out.Type = docType
	}
	if page, ok := metaMap["page"].(float64); ok {
		p := int(page)
		out.Page = &p
	}
	return out
}
