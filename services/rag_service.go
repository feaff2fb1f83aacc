package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/docubot/rag/config"
	"github.com/docubot/rag/models"
)

// RAGService interface defines the operations exposed by the application core.
type RAGService interface {
	// Initialize loads documents, chunks them and opens the vector index
	// (building it if needed, rebuilding it when force is set), then starts
	// a fresh conversation session.
	Initialize(ctx context.Context, force bool) error
	// Chat answers one question, optionally with caller-supplied history.
	Chat(ctx context.Context, question string, history []models.ChatTurn) (*models.ChatResponse, error)
	// Initialized reports whether a successful Initialize has completed.
	Initialized() bool
	// Stale reports whether the document directory changed since the last
	// Initialize.
	Stale() bool
	// MarkStale flags the index as out of date with the document directory.
	MarkStale()
}

// ragServiceImpl holds the dependencies the service needs to do its job.
type ragServiceImpl struct {
	cfg   *config.Config
	store VectorStore
	emb   Embedder
	llm   ChatModel

	mu          sync.Mutex
	index       *VectorIndex
	engine      *ChatEngine
	initialized bool
	stale       bool
}

// NewRAGService creates the application service. Nothing is loaded until
// Initialize is called.
func NewRAGService(cfg *config.Config, store VectorStore, embedder Embedder, llm ChatModel) RAGService {
	return &ragServiceImpl{
		cfg:   cfg,
		store: store,
		emb:   embedder,
		llm:   llm,
	}
}

// Initialize implements RAGService. The mutex guarantees at most one build is
// in flight; concurrent Initialize calls queue up behind it.
func (r *ragServiceImpl) Initialize(ctx context.Context, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.Printf("SERVICE: Initializing RAG system (force_recreate=%v)...", force)

	documents, err := LoadDocuments(r.cfg.DocumentDir)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}

	// Refuse a forced rebuild with nothing to rebuild from before any
	// existing index gets dropped.
	if force && len(documents) == 0 {
		return ErrNoDocuments
	}

	var chunks []models.Chunk
	if len(documents) > 0 {
		chunks, err = SplitDocuments(documents, r.cfg.ChunkSize, r.cfg.ChunkOverlap)
		if err != nil {
			return fmt.Errorf("failed to split documents: %w", err)
		}
	}

	index, err := NewVectorIndex(r.store, r.emb).Open(ctx, chunks, force)
	if err != nil {
		return fmt.Errorf("failed to open vector index: %w", err)
	}
	if index == nil {
		return ErrNoDocuments
	}

	r.index = index
	r.engine = NewChatEngine(index, r.llm, r.cfg.RetrieverK)
	r.initialized = true
	r.stale = false
	log.Println("SERVICE: RAG system initialized successfully.")
	return nil
}

// Chat implements RAGService. Requests before a successful Initialize fail
// with ErrNotInitialized and make no network calls.
func (r *ragServiceImpl) Chat(ctx context.Context, question string, history []models.ChatTurn) (*models.ChatResponse, error) {
	r.mu.Lock()
	engine := r.engine
	initialized := r.initialized
	r.mu.Unlock()

	if !initialized || engine == nil {
		return nil, ErrNotInitialized
	}

	log.Printf("SERVICE: Answering question: %q", question)
	return engine.Answer(ctx, question, history)
}

// Initialized implements RAGService.
func (r *ragServiceImpl) Initialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized
}

// Stale implements RAGService.
func (r *ragServiceImpl) Stale() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stale
}

// MarkStale implements RAGService.
func (r *ragServiceImpl) MarkStale() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stale = true
}
