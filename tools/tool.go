// Package tools provides the two answering backends the router chooses
// between.
//
// Information Hiding:
// - Query generation and guarding hidden inside the SQL tool
// - Embedding and index access hidden inside the document tool
// - Both expose the same Tool interface to the registry and executor
package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/richinex/healthrouter/llm"
	"github.com/richinex/healthrouter/model"
)

// ToolParameter defines a parameter schema for a tool.
type ToolParameter struct {
	Name        string `json:"name"`
	ParamType   string `json:"param_type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ToolMetadata describes what a tool does and how to use it.
type ToolMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

// String returns a string representation of the tool metadata.
func (m ToolMetadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// Definition converts the metadata into an LLM tool definition with a JSON
// schema for its parameters.
func (m ToolMetadata) Definition() llm.ToolDefinition {
	properties := make(map[string]interface{}, len(m.Parameters))
	required := []string{}
	for _, p := range m.Parameters {
		properties[p.Name] = map[string]interface{}{
			"type":        p.ParamType,
			"description": p.Description,
		}
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return llm.ToolDefinition{
		Name:        m.Name,
		Description: m.Description,
		Parameters: map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

// questionParameter is the single input both tools take.
var questionParameter = ToolParameter{
	Name:        "question",
	ParamType:   "string",
	Description: "The user's original natural-language question, unchanged.",
	Required:    true,
}

// Tool is the interface both answering backends implement.
type Tool interface {
	// Metadata returns tool metadata (name, description, parameters).
	Metadata() ToolMetadata

	// Kind identifies the backend family.
	Kind() model.ToolKind

	// Run answers the question from the backend's data. The result is
	// *model.SQLResult or *model.DocumentResult.
	Run(ctx context.Context, question string) (model.ToolResult, error)
}

// ToolConfig holds tool execution configuration.
// The zero value is safe: timeout defaults to 30s.
type ToolConfig struct {
	TimeoutSecs uint64
}

// Timeout returns the configured timeout, defaulting to 30 seconds if zero.
func (c *ToolConfig) Timeout() time.Duration {
	if c == nil || c.TimeoutSecs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSecs) * time.Second
}

// DefaultToolConfig returns the default tool configuration.
func DefaultToolConfig() ToolConfig {
	return ToolConfig{TimeoutSecs: 30}
}
