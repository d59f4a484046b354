// Package ai generates in-character persona replies. The engine never
// depends on this package; it consumes engine snapshots read-only.
package ai

import "context"

// Message is a single chat message in provider-neutral form.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// CompletionRequest is a provider-neutral completion request.
type CompletionRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// CompletionResponse carries the provider's reply.
type CompletionResponse struct {
	Content      string
	TokensUsed   int
	FinishReason string
}

// LLMProvider abstracts the chat completion backend.
type LLMProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Name() string
}
