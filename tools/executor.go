// Tool Executor with timeout.
//
// Tools run exactly once; a failed attempt is reported, never retried.

package tools

import (
	"context"
	"strings"

	"github.com/richinex/healthrouter/model"
)

// Executor runs tools under a per-call timeout.
type Executor struct {
	config ToolConfig
}

// NewExecutor creates a new tool executor with the given configuration.
func NewExecutor(config ToolConfig) *Executor {
	return &Executor{config: config}
}

// NewDefaultExecutor creates an executor with default configuration.
func NewDefaultExecutor() *Executor {
	return &Executor{config: DefaultToolConfig()}
}

// Execute runs the tool once with the configured timeout.
func (e *Executor) Execute(ctx context.Context, tool Tool, question string) (model.ToolResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, model.ErrEmptyQuestion
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout())
	defer cancel()

	return tool.Run(ctx, question)
}
