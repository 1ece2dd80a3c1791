package tools

import (
	"context"
	"errors"
	"time"

	"github.com/richinex/healthrouter/llm"
	"github.com/richinex/healthrouter/model"
)

// stubProvider returns a fixed reply and records the prompts it saw.
type stubProvider struct {
	reply string
	err   error
	calls int
	seen  [][]llm.ChatMessage
}

func (p *stubProvider) Name() string  { return "stub" }
func (p *stubProvider) Model() string { return "stub-1" }

func (p *stubProvider) Chat(ctx context.Context, messages []llm.ChatMessage) (llm.LLMResponse, error) {
	return p.ChatWithFormat(ctx, messages, nil)
}

func (p *stubProvider) ChatWithFormat(_ context.Context, messages []llm.ChatMessage, _ *llm.ResponseFormat) (llm.LLMResponse, error) {
	p.calls++
	p.seen = append(p.seen, messages)
	if p.err != nil {
		return llm.LLMResponse{}, p.err
	}
	return llm.LLMResponse{Content: p.reply}, nil
}

func (p *stubProvider) ChatWithTools(ctx context.Context, messages []llm.ChatMessage, _ []llm.ToolDefinition) (llm.LLMResponse, error) {
	return p.ChatWithFormat(ctx, messages, nil)
}

type stubEmbedder struct {
	err error
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 1}, nil
}

// stubIndex returns its passages unsorted and ignores k.
type stubIndex struct {
	passages []model.Passage
	err      error
	gotK     int
}

func (i *stubIndex) Name() string { return "stub" }

func (i *stubIndex) Search(_ context.Context, _ []float32, k int) ([]model.Passage, error) {
	i.gotK = k
	if i.err != nil {
		return nil, i.err
	}
	out := make([]model.Passage, len(i.passages))
	copy(out, i.passages)
	return out, nil
}

// blockingTool waits for its context.
type blockingTool struct{}

func (blockingTool) Metadata() ToolMetadata { return ToolMetadata{Name: "blocking"} }
func (blockingTool) Kind() model.ToolKind   { return model.ToolDocument }

func (blockingTool) Run(ctx context.Context, _ string) (model.ToolResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		return nil, errors.New("not cancelled")
	}
}
