package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/docubot/rag/models"
)

// ChatEngine answers questions grounded in retrieved document chunks while
// keeping a running conversation history.
//
// One engine holds one conversation session. The history is shared by all
// callers of Answer; a mutex serializes access, so concurrent requests simply
// interleave into the same conversation.
type ChatEngine struct {
	retriever Retriever
	llm       ChatModel
	k         int

	mu      sync.Mutex
	history []models.ChatTurn
}

// NewChatEngine creates an engine retrieving topK chunks per question.
func NewChatEngine(retriever Retriever, llm ChatModel, topK int) *ChatEngine {
	if topK <= 0 {
		topK = 3
	}
	return &ChatEngine{
		retriever: retriever,
		llm:       llm,
		k:         topK,
	}
}

// Answer runs one retrieval-augmented turn: retrieve top-k chunks for the
// raw question, assemble the grounded prompt with the conversation history,
// call the language model, and return the answer plus cited sources.
//
// If history is non-nil it replaces the engine's own memory for this call
// (the caller is supplying the conversation context). The engine's memory is
// appended to only on success; a failed call leaves it untouched.
func (e *ChatEngine) Answer(ctx context.Context, question string, history []models.ChatTurn) (*models.ChatResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Only the raw question drives retrieval; history is not folded into
	// the retrieval query.
	chunks, err := e.retriever.Retrieve(ctx, question, e.k)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve context for question: %w", err)
	}
	log.Printf("ENGINE: Retrieved %d chunk(s) for question.", len(chunks))

	promptHistory := history
	if promptHistory == nil {
		promptHistory = e.history
	}
	prompt := buildPrompt(chunks, promptHistory, question)

	reply, err := e.llm.Generate(ctx, []Message{{Role: models.RoleUser, Content: prompt}}, nil)
	if err != nil {
		return nil, fmt.Errorf("could not generate response: %w", err)
	}

	e.history = append(e.history,
		models.ChatTurn{Role: models.RoleUser, Content: question},
		models.ChatTurn{Role: models.RoleAssistant, Content: reply.Content},
	)

	sources := make([]models.SourceDocument, 0, len(chunks))
	for _, chunk := range chunks {
		docType := chunk.Metadata.Type
		if docType == "" {
			docType = "unknown"
		}
		source := chunk.Metadata.Source
		if source == "" {
			source = "Unknown"
		}
		sources = append(sources, models.SourceDocument{
			Source:      source,
			PageContent: chunk.Text,
			Page:        chunk.Metadata.Page,
			Type:        docType,
		})
	}

	return &models.ChatResponse{Answer: reply.Content, Sources: sources}, nil
}

// History returns a copy of the conversation so far.
func (e *ChatEngine) History() []models.ChatTurn {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.ChatTurn, len(e.history))
	copy(out, e.history)
	return out
}
