package tools

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/richinex/healthrouter/internal/logging"
	"github.com/richinex/healthrouter/model"
	"github.com/richinex/healthrouter/storage"
)

// DefaultTopK is the number of passages retrieved per question.
const DefaultTopK = 5

// DocumentTool answers questions from the document index.
type DocumentTool struct {
	embedder storage.Embedder
	index    storage.Index
	k        int
	logger   *logrus.Logger
}

// NewDocumentTool creates the document tool. A k of zero or less uses
// DefaultTopK.
func NewDocumentTool(embedder storage.Embedder, index storage.Index, k int, logger *logrus.Logger) *DocumentTool {
	if k <= 0 {
		k = DefaultTopK
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &DocumentTool{embedder: embedder, index: index, k: k, logger: logger}
}

// Metadata returns the tool metadata.
func (t *DocumentTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        model.DocumentToolName,
		Description: documentToolDescription,
		Parameters:  []ToolParameter{questionParameter},
	}
}

// Kind returns model.ToolDocument.
func (t *DocumentTool) Kind() model.ToolKind {
	return model.ToolDocument
}

// Run implements Tool with the configured k.
func (t *DocumentTool) Run(ctx context.Context, question string) (model.ToolResult, error) {
	result, err := t.Search(ctx, question, t.k)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Search returns at most k passages in non-increasing score order. Embedder
// and index failures are reported as *model.IndexUnavailableError.
func (t *DocumentTool) Search(ctx context.Context, question string, k int) (*model.DocumentResult, error) {
	if k <= 0 {
		k = t.k
	}

	vector, err := t.embedder.Embed(ctx, question)
	if err != nil {
		return nil, &model.IndexUnavailableError{Err: err}
	}

	passages, err := t.index.Search(ctx, vector, k)
	if err != nil {
		return nil, &model.IndexUnavailableError{Err: err}
	}

	// Ordering and k hold whatever the backend returned.
	storage.SortPassages(passages)
	if len(passages) > k {
		passages = passages[:k]
	}
	if passages == nil {
		passages = []model.Passage{}
	}

	t.logger.WithFields(logrus.Fields{
		"index":    t.index.Name(),
		"passages": len(passages),
		"k":        k,
	}).Debug("document tool retrieved passages")

	return &model.DocumentResult{Passages: passages}, nil
}

var _ Tool = (*DocumentTool)(nil)
