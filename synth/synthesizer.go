// Package synth turns tool output into a grounded natural-language answer.
package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/prompts"

	jsonutil "github.com/richinex/healthrouter/internal/json"
	"github.com/richinex/healthrouter/internal/logging"
	"github.com/richinex/healthrouter/llm"
	"github.com/richinex/healthrouter/model"
)

// NoDataAnswer is returned for zero rows or zero passages.
const NoDataAnswer = "No matching data found for this question."

const stage = "synthesis"

// Synthesizer produces answers with one LLM completion per question.
type Synthesizer struct {
	client  *llm.Client
	sqlTmpl prompts.PromptTemplate
	docTmpl prompts.PromptTemplate
	logger  *logrus.Logger
}

// New creates a synthesizer. A nil client can still answer empty results.
func New(client *llm.Client, logger *logrus.Logger) *Synthesizer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Synthesizer{
		client:  client,
		sqlTmpl: prompts.NewPromptTemplate(sqlTemplate, []string{"question", "query", "columns", "row_count", "truncated", "rows"}),
		docTmpl: prompts.NewPromptTemplate(documentTemplate, []string{"question", "passages"}),
		logger:  logger,
	}
}

// Synthesize answers question from result. Failures of the completion call
// are reported as *model.SynthesisError.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, result model.ToolResult) (model.Answer, error) {
	if result == nil {
		return model.Answer{}, &model.SynthesisError{Stage: stage, Err: errors.New("no tool result")}
	}
	if result.Empty() {
		return model.Answer{Text: NoDataAnswer}, nil
	}
	if s.client == nil {
		return model.Answer{}, model.ErrNotReady
	}

	switch r := result.(type) {
	case *model.SQLResult:
		return s.fromRows(ctx, question, r)
	case *model.DocumentResult:
		return s.fromPassages(ctx, question, r)
	default:
		return model.Answer{}, &model.SynthesisError{Stage: stage, Err: fmt.Errorf("unsupported result %T", result)}
	}
}

func (s *Synthesizer) fromRows(ctx context.Context, question string, result *model.SQLResult) (model.Answer, error) {
	rows, err := json.Marshal(result.Rows)
	if err != nil {
		return model.Answer{}, &model.SynthesisError{Stage: stage, Err: fmt.Errorf("encode rows: %w", err)}
	}
	truncated := ""
	if result.Truncated {
		truncated = ", truncated"
	}

	prompt, err := s.sqlTmpl.Format(map[string]any{
		"question":  question,
		"query":     result.Query,
		"columns":   strings.Join(result.Columns, ", "),
		"row_count": len(result.Rows),
		"truncated": truncated,
		"rows":      string(rows),
	})
	if err != nil {
		return model.Answer{}, &model.SynthesisError{Stage: stage, Err: fmt.Errorf("render prompt: %w", err)}
	}

	text, err := s.complete(ctx, prompt, nil)
	if err != nil {
		return model.Answer{}, err
	}
	return model.Answer{Text: text}, nil
}

type documentReply struct {
	Answer string `json:"answer"`
	Cited  []int  `json:"cited"`
}

func (s *Synthesizer) fromPassages(ctx context.Context, question string, result *model.DocumentResult) (model.Answer, error) {
	prompt, err := s.docTmpl.Format(map[string]any{
		"question": question,
		"passages": numberPassages(result.Passages),
	})
	if err != nil {
		return model.Answer{}, &model.SynthesisError{Stage: stage, Err: fmt.Errorf("render prompt: %w", err)}
	}

	text, err := s.complete(ctx, prompt, llm.NewJSONObjectFormat())
	if err != nil {
		return model.Answer{}, err
	}

	reply, err := jsonutil.ExtractJSONFromResponse[documentReply](text)
	if err != nil || strings.TrimSpace(reply.Answer) == "" {
		s.logger.WithField("reply_len", len(text)).Debug("document answer was not JSON, citing all passages")
		return model.Answer{Text: text, Cited: allIndexes(len(result.Passages))}, nil
	}
	return model.Answer{
		Text:  strings.TrimSpace(reply.Answer),
		Cited: validCitations(reply.Cited, len(result.Passages)),
	}, nil
}

func (s *Synthesizer) complete(ctx context.Context, prompt string, format *llm.ResponseFormat) (string, error) {
	messages := []llm.ChatMessage{llm.UserMessage(prompt)}

	var text string
	var err error
	if format != nil {
		text, err = s.client.ChatWithFormat(ctx, messages, format)
	} else {
		text, err = s.client.Chat(ctx, messages)
	}
	if err != nil {
		return "", &model.SynthesisError{Stage: stage, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &model.SynthesisError{Stage: stage, Err: errors.New("empty completion")}
	}
	return text, nil
}

// numberPassages renders passages as "[n] file (p.N)" blocks, 1-based.
func numberPassages(passages []model.Passage) string {
	var b strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, model.PassageLocation(p), strings.TrimSpace(p.Text))
	}
	return strings.TrimRight(b.String(), "\n")
}

// validCitations maps 1-based citations to zero-based indexes, dropping
// out-of-range and repeated entries.
func validCitations(cited []int, n int) []int {
	seen := make(map[int]bool, len(cited))
	out := make([]int, 0, len(cited))
	for _, c := range cited {
		idx := c - 1
		if idx < 0 || idx >= n || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out
}

func allIndexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
