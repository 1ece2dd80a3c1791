package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	jsonutil "github.com/richinex/healthrouter/internal/json"
	"github.com/richinex/healthrouter/internal/logging"
	"github.com/richinex/healthrouter/llm"
	"github.com/richinex/healthrouter/model"
	"github.com/richinex/healthrouter/storage"
)

// DefaultMaxRows caps the rows handed to the synthesizer.
const DefaultMaxRows = 200

// sqlPrefixes mark a question that is already SQL text.
var sqlPrefixes = []string{"select", "with", "pragma", "explain", "insert", "update", "delete"}

// Querier executes read queries. Implemented by *storage.HealthcareStore.
type Querier interface {
	Query(ctx context.Context, query string, maxRows int) (storage.Rows, error)
}

// SQLTool answers questions from the healthcare database.
type SQLTool struct {
	store   Querier
	client  *llm.Client
	schema  storage.Schema
	maxRows int
	logger  *logrus.Logger
}

// SQLToolOption configures an SQLTool.
type SQLToolOption func(*SQLTool)

// WithSchema sets the schema shown to the query-generation model.
func WithSchema(schema storage.Schema) SQLToolOption {
	return func(t *SQLTool) { t.schema = schema }
}

// WithMaxRows sets the row cap.
func WithMaxRows(n int) SQLToolOption {
	return func(t *SQLTool) {
		if n > 0 {
			t.maxRows = n
		}
	}
}

// WithSQLLogger sets the logger.
func WithSQLLogger(logger *logrus.Logger) SQLToolOption {
	return func(t *SQLTool) { t.logger = logger }
}

// NewSQLTool creates the SQL tool. client generates queries from natural
// language; it may be nil, in which case only SQL questions are answered.
func NewSQLTool(store Querier, client *llm.Client, opts ...SQLToolOption) *SQLTool {
	t := &SQLTool{
		store:   store,
		client:  client,
		schema:  storage.DefaultSchema(),
		maxRows: DefaultMaxRows,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Metadata returns the tool metadata.
func (t *SQLTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        model.SQLToolName,
		Description: sqlToolDescription,
		Parameters:  []ToolParameter{questionParameter},
	}
}

// Kind returns model.ToolSQL.
func (t *SQLTool) Kind() model.ToolKind {
	return model.ToolSQL
}

// Run implements Tool.
func (t *SQLTool) Run(ctx context.Context, question string) (model.ToolResult, error) {
	result, err := t.Query(ctx, question)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Query derives a read-only query for question, executes it and returns the
// rows together with the query text as generated or given.
func (t *SQLTool) Query(ctx context.Context, question string) (*model.SQLResult, error) {
	q := strings.TrimSpace(question)

	var candidate string
	direct := looksLikeSQL(q)
	if direct {
		candidate = q
	} else {
		generated, err := t.generate(ctx, q)
		if err != nil {
			return nil, err
		}
		candidate = generated
	}

	query, err := CheckReadOnly(candidate)
	if err != nil {
		t.logger.WithFields(logrus.Fields{"query": candidate, "direct": direct}).Warn("rejected non read-only query")
		return nil, err
	}

	// Callers see the query as written; the store runs the cleaned form.
	written := strings.TrimSpace(candidate)

	rows, err := t.store.Query(ctx, query, t.maxRows)
	if err != nil {
		return nil, &model.ExecutionError{Query: written, Err: err}
	}

	t.logger.WithFields(logrus.Fields{
		"query":     query,
		"rows":      len(rows.Records),
		"truncated": rows.Truncated,
		"direct":    direct,
	}).Debug("sql tool executed query")

	return &model.SQLResult{
		Columns:   rows.Columns,
		Rows:      rows.Records,
		Query:     written,
		Truncated: rows.Truncated,
	}, nil
}

type generatedSQL struct {
	SQL string `json:"sql"`
}

// generate asks the model for a query. Replies that are a bare statement,
// optionally fenced, are accepted too.
func (t *SQLTool) generate(ctx context.Context, question string) (string, error) {
	if t.client == nil {
		return "", &model.QueryGenerationError{Err: model.ErrNotReady}
	}

	messages := []llm.ChatMessage{
		llm.SystemMessage(fmt.Sprintf(sqlGenerationPrompt, t.schema.Describe())),
		llm.UserMessage(question),
	}
	content, err := t.client.ChatWithFormat(ctx, messages, llm.NewJSONObjectFormat())
	if err != nil {
		return "", &model.QueryGenerationError{Err: err}
	}

	return parseGeneratedSQL(content)
}

func parseGeneratedSQL(content string) (string, error) {
	if reply, err := jsonutil.ExtractJSONFromResponse[generatedSQL](content); err == nil {
		if sql := strings.TrimSpace(reply.SQL); sql != "" {
			return sql, nil
		}
		return "", &model.QueryGenerationError{Err: errors.New("model returned an empty query")}
	}

	bare := strings.TrimSpace(jsonutil.StripCodeFence(content))
	if looksLikeSQL(bare) {
		return bare, nil
	}
	return "", &model.QueryGenerationError{Err: errors.New("model reply contained no SQL")}
}

func looksLikeSQL(q string) bool {
	lower := strings.ToLower(q)
	for _, prefix := range sqlPrefixes {
		if strings.HasPrefix(lower, prefix) {
			rest := lower[len(prefix):]
			if rest == "" || !isWordByte(rest[0]) {
				return true
			}
		}
	}
	return false
}

var _ Tool = (*SQLTool)(nil)
