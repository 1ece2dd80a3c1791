// Package tools provides tool management and registration.
//
// Information Hiding:
// - Tool storage and lookup implementation hidden
// - Registration order is the routing priority order

package tools

import (
	"fmt"
	"strings"
	"sync"

	"github.com/richinex/healthrouter/llm"
	"github.com/richinex/healthrouter/model"
)

// Registry holds the available tools in registration order.
type Registry struct {
	mu    sync.RWMutex
	order []Tool
	tools map[string]Tool
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a new tool to the registry.
// Returns error if a tool with the same name or kind already exists.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Metadata().Name
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool '%s' already registered", name)
	}
	for _, t := range r.order {
		if t.Kind() == tool.Kind() {
			return fmt.Errorf("a %s tool is already registered", tool.Kind())
		}
	}
	r.tools[name] = tool
	r.order = append(r.order, tool)
	return nil
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// ForKind returns the tool serving the given kind.
func (r *Registry) ForKind(kind model.ToolKind) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.order {
		if t.Kind() == kind {
			return t, true
		}
	}
	return nil, false
}

// Has checks if a tool exists in the registry.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.tools[name]
	return exists
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, t := range r.order {
		names = append(names, t.Metadata().Name)
	}
	return names
}

// List returns metadata for all registered tools.
func (r *Registry) List() []ToolMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metadata := make([]ToolMetadata, 0, len(r.order))
	for _, tool := range r.order {
		metadata = append(metadata, tool.Metadata())
	}
	return metadata
}

// Definitions returns the tools as LLM tool definitions.
func (r *Registry) Definitions() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, tool := range r.order {
		defs = append(defs, tool.Metadata().Definition())
	}
	return defs
}

// Description returns a formatted description of all tools for LLM prompts.
func (r *Registry) Description() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptions := make([]string, 0, len(r.order))
	for _, tool := range r.order {
		descriptions = append(descriptions, "- "+tool.Metadata().String())
	}
	return strings.Join(descriptions, "\n")
}
