package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

type slowProvider struct {
	delay time.Duration
}

func (p *slowProvider) Name() string  { return "slow" }
func (p *slowProvider) Model() string { return "slow-1" }

func (p *slowProvider) wait(ctx context.Context) (LLMResponse, error) {
	select {
	case <-time.After(p.delay):
		return LLMResponse{Content: "done"}, nil
	case <-ctx.Done():
		return LLMResponse{}, ctx.Err()
	}
}

func (p *slowProvider) Chat(ctx context.Context, _ []ChatMessage) (LLMResponse, error) {
	return p.wait(ctx)
}

func (p *slowProvider) ChatWithFormat(ctx context.Context, _ []ChatMessage, _ *ResponseFormat) (LLMResponse, error) {
	return p.wait(ctx)
}

func (p *slowProvider) ChatWithTools(ctx context.Context, _ []ChatMessage, _ []ToolDefinition) (LLMResponse, error) {
	return p.wait(ctx)
}

func TestClientAppliesTimeout(t *testing.T) {
	client := NewClient(&slowProvider{delay: time.Second}, 10*time.Millisecond)

	_, err := client.Chat(context.Background(), []ChatMessage{UserMessage("hi")})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestClientWithoutTimeout(t *testing.T) {
	client := NewClient(&slowProvider{delay: time.Millisecond}, 0)

	content, err := client.ChatWithFormat(context.Background(), []ChatMessage{UserMessage("hi")}, NewJSONObjectFormat())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "done" {
		t.Errorf("expected 'done', got %q", content)
	}
}
