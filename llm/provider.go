// Package llm provides LLM provider abstractions.
//
// Each provider hides client setup, authentication and the conversion
// between ChatMessage/ToolDefinition and the vendor's wire types. Routing
// and answer synthesis only ever see the Provider interface, so tests swap
// in a stub.

package llm

import (
	"context"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider name (for logging).
	Name() string

	// Model returns the model being used.
	Model() string

	// Chat sends a chat completion request.
	Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error)

	// ChatWithFormat sends a chat completion request with a response format.
	// Providers without native JSON mode ignore the format.
	ChatWithFormat(ctx context.Context, messages []ChatMessage, format *ResponseFormat) (LLMResponse, error)

	// ChatWithTools sends a completion request offering the given tools.
	// The selected tools come back in LLMResponse.ToolCalls.
	ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (LLMResponse, error)
}
