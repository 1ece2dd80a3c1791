// Package routing selects the single tool that answers a question.
//
// Information Hiding:
// - The classification prompt and tool-call parsing are hidden
// - The tie-break is the pure function Decide, testable without a model
package routing

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	jsonutil "github.com/richinex/healthrouter/internal/json"
	"github.com/richinex/healthrouter/internal/logging"
	"github.com/richinex/healthrouter/llm"
	"github.com/richinex/healthrouter/model"
	"github.com/richinex/healthrouter/tools"
)

// Router classifies questions with one LLM call.
type Router struct {
	client   *llm.Client
	registry *tools.Registry
	vocab    []string
	logger   *logrus.Logger
}

// NewRouter creates a router. A nil client yields a router that is not
// ready; an empty vocab uses DefaultVocabulary.
func NewRouter(client *llm.Client, registry *tools.Registry, vocab []string, logger *logrus.Logger) *Router {
	if len(vocab) == 0 {
		vocab = DefaultVocabulary()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Router{client: client, registry: registry, vocab: vocab, logger: logger}
}

// Ready reports whether a classification backend is configured.
func (r *Router) Ready() bool {
	return r.client != nil
}

// Route selects exactly one tool for question. It never guesses when the
// model could not be consulted.
func (r *Router) Route(ctx context.Context, question string) (model.RoutingDecision, error) {
	if r.client == nil {
		return model.RoutingDecision{}, model.ErrNotReady
	}

	messages := []llm.ChatMessage{
		llm.SystemMessage(fmt.Sprintf(systemPrompt, r.registry.Description())),
		llm.UserMessage(question),
	}
	response, err := r.client.ChatWithTools(ctx, messages, r.registry.Definitions())
	if err != nil {
		return model.RoutingDecision{}, &model.SynthesisError{Stage: "routing", Err: err}
	}

	candidates := Candidates(response)
	decision := Decide(candidates, question, r.vocab)

	r.logger.WithFields(logrus.Fields{
		"candidates": candidates,
		"tool":       decision.Tool.String(),
		"tie_broken": decision.TieBroken,
	}).Debug("routed question")
	return decision, nil
}

type toolChoice struct {
	Tool string `json:"tool"`
}

// Candidates extracts the tool names the model chose. Tool calls take
// precedence; a text reply may carry {"tool": "..."} or name a tool.
func Candidates(response llm.LLMResponse) []string {
	if len(response.ToolCalls) > 0 {
		names := make([]string, 0, len(response.ToolCalls))
		for _, call := range response.ToolCalls {
			names = append(names, call.Name)
		}
		return names
	}

	content := strings.TrimSpace(response.Content)
	if content == "" {
		return nil
	}
	if choice, err := jsonutil.ExtractJSONFromResponse[toolChoice](content); err == nil && choice.Tool != "" {
		return []string{choice.Tool}
	}

	var names []string
	lower := strings.ToLower(content)
	for _, name := range []string{model.SQLToolName, model.DocumentToolName} {
		if strings.Contains(lower, strings.ToLower(name)) {
			names = append(names, name)
		}
	}
	return names
}
