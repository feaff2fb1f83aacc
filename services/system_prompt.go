package services

import (
	"fmt"
	"strings"

	"github.com/docubot/rag/models"
)

// promptTemplate is the fixed instruction wrapper for every grounded answer.
// It tells the model to answer from the retrieved context, admit when the
// context is insufficient, and cite document names where possible.
const promptTemplate = `You are a helpful AI assistant that answers questions based on the provided context from documents.

Context from documents:
%s

Chat history:
%s

User question: %s

Please provide a helpful and accurate answer based on the context. If the answer is not in the context, say so politely and use your general knowledge if appropriate. Always cite which document(s) you're referencing when possible.

Answer:`

// buildPrompt assembles the retrieved chunks, the prior history and the
// question into a single grounded prompt. Chunk order is retrieval order.
func buildPrompt(chunks []models.Chunk, history []models.ChatTurn, question string) string {
	contextParts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		contextParts = append(contextParts, chunk.Text)
	}

	historyParts := make([]string, 0, len(history))
	for _, turn := range history {
		label := "Human"
		if models.NormalizeRole(turn.Role) == models.RoleAssistant {
			label = "Assistant"
		}
		historyParts = append(historyParts, fmt.Sprintf("%s: %s", label, turn.Content))
	}

	return fmt.Sprintf(promptTemplate,
		strings.Join(contextParts, "\n\n"),
		strings.Join(historyParts, "\n"),
		question,
	)
}
