package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docubot/rag/models"
)

// Message is one role-tagged message in the chat-completion protocol.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatModel is the contract between the retrieval engine and a language
// model provider: send role-tagged messages, get back one assistant reply.
type ChatModel interface {
	Generate(ctx context.Context, messages []Message, stop []string) (Message, error)
}

// GroqChatModel talks to an OpenAI-compatible chat-completions endpoint.
// The default configuration targets the Groq API but any provider with the
// same wire format works.
type GroqChatModel struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stop        []string  `json:"stop,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewGroqChatModel creates a chat model client with a 60 second timeout.
func NewGroqChatModel(baseURL, apiKey, model string, temperature float64) *GroqChatModel {
	return &GroqChatModel{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
	}
}

// Generate implements ChatModel. A non-success HTTP status is a hard failure
// carrying the status code and response body verbatim; it is never retried.
// Unknown message roles are coerced to "user" rather than rejected.
func (m *GroqChatModel) Generate(ctx context.Context, messages []Message, stop []string) (Message, error) {
	formatted := make([]Message, 0, len(messages))
	for _, msg := range messages {
		formatted = append(formatted, Message{
			Role:    models.NormalizeRole(msg.Role),
			Content: msg.Content,
		})
	}

	reqBody, err := json.Marshal(chatCompletionRequest{
		Model:       m.model,
		Messages:    formatted,
		Temperature: m.temperature,
		Stop:        stop,
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal chat completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return Message{}, fmt.Errorf("failed to create chat completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return Message{}, fmt.Errorf("chat completion api call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return Message{}, fmt.Errorf("chat completion api error: %d - %s", resp.StatusCode, string(bodyBytes))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return Message{}, fmt.Errorf("failed to decode chat completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Message{}, fmt.Errorf("chat completion response contained no choices")
	}

	return Message{
		Role:    models.RoleAssistant,
		Content: completion.Choices[0].Message.Content,
	}, nil
}
