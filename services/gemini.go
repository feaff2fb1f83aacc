package services

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/docubot/rag/models"
)

// GeminiChatModel implements ChatModel on top of the Google Gemini API.
// System messages become the system instruction; assistant messages map to
// the "model" role; anything unrecognized is coerced to "user".
type GeminiChatModel struct {
	client      *genai.Client
	model       string
	temperature float64
}

// NewGeminiChatModel creates a chat model over an existing Gemini client.
func NewGeminiChatModel(client *genai.Client, model string, temperature float64) *GeminiChatModel {
	return &GeminiChatModel{client: client, model: model, temperature: temperature}
}

// Generate implements ChatModel.
func (m *GeminiChatModel) Generate(ctx context.Context, messages []Message, stop []string) (Message, error) {
	var contents []*genai.Content
	var systemParts []string

	for _, msg := range messages {
		role := models.NormalizeRole(msg.Role)
		if role == models.RoleSystem {
			systemParts = append(systemParts, msg.Content)
			continue
		}
		geminiRole := "user"
		if role == models.RoleAssistant {
			geminiRole = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	temperature := float32(m.temperature)
	config := &genai.GenerateContentConfig{
		Temperature:   &temperature,
		StopSequences: stop,
	}
	if len(systemParts) > 0 {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: strings.Join(systemParts, "\n")}},
		}
	}

	result, err := m.client.Models.GenerateContent(ctx, m.model, contents, config)
	if err != nil {
		return Message{}, fmt.Errorf("gemini api call failed: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return Message{}, fmt.Errorf("gemini returned no candidates")
	}

	var responseText strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			responseText.WriteString(p.Text)
		}
	}
	return Message{Role: models.RoleAssistant, Content: responseText.String()}, nil
}
