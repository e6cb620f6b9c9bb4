// Package llm defines the chat-completion client interface used by the
// feedback translator.
package llm

import (
	"context"
	"fmt"
)

// Message roles understood by chat-completion providers.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is one chat-completion call.
type ChatRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Usage reports token counts when the provider returns them.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse carries the generated choices. Choices may be empty.
type ChatResponse struct {
	Choices []string
	Usage   Usage
}

// FirstContent returns the content of the first choice, or "" if there is none.
func (r *ChatResponse) FirstContent() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0]
}

// Client is a minimal interface for making chat-completion calls.
// Implementations provide the actual HTTP transport to a specific provider.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// StatusError is returned when the provider answers with a non-2xx status.
// Body holds the raw response body, unmodified.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream error (%d): %s", e.StatusCode, e.Body)
}
