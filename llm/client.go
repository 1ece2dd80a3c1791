// LLMClient - wrapper around providers that bounds every call.

package llm

import (
	"context"
	"time"
)

// Client wraps a Provider and applies a per-call timeout.
type Client struct {
	provider Provider
	timeout  time.Duration
}

// NewClient creates a new LLM client from a provider. A zero timeout
// leaves the caller's deadline in charge.
func NewClient(provider Provider, timeout time.Duration) *Client {
	return &Client{provider: provider, timeout: timeout}
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Chat sends a chat completion request and returns just the content.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	response, err := c.provider.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// ChatWithFormat sends a chat completion request with response format
// and returns just the content.
func (c *Client) ChatWithFormat(ctx context.Context, messages []ChatMessage, format *ResponseFormat) (string, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	response, err := c.provider.ChatWithFormat(ctx, messages, format)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// ChatWithTools sends a completion request offering tools and returns the
// full response so callers can inspect tool calls.
func (c *Client) ChatWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition) (LLMResponse, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	return c.provider.ChatWithTools(ctx, messages, tools)
}
