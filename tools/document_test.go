package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/richinex/healthrouter/model"
	"github.com/richinex/healthrouter/storage"
)

func TestDocumentToolOrdersAndTruncates(t *testing.T) {
	index := &stubIndex{passages: []model.Passage{
		{Text: "a", Score: 0.2},
		{Text: "b", Score: 0.9},
		{Text: "c", Score: 0.5},
		{Text: "d", Score: 0.5},
	}}
	tool := NewDocumentTool(&stubEmbedder{}, index, 3, nil)

	result, err := tool.Search(context.Background(), "What is the privacy policy?", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if index.gotK != 3 {
		t.Errorf("expected k=3 passed to index, got %d", index.gotK)
	}
	if len(result.Passages) != 3 {
		t.Fatalf("expected 3 passages, got %d", len(result.Passages))
	}
	want := []string{"b", "c", "d"}
	for i, p := range result.Passages {
		if p.Text != want[i] {
			t.Errorf("passage %d: expected %s, got %s", i, want[i], p.Text)
		}
		if i > 0 && p.Score > result.Passages[i-1].Score {
			t.Errorf("scores increase at %d", i)
		}
	}
}

func TestDocumentToolDefaultK(t *testing.T) {
	index := &stubIndex{}
	tool := NewDocumentTool(&stubEmbedder{}, index, 0, nil)

	result, err := tool.Run(context.Background(), "coverage?")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if index.gotK != DefaultTopK {
		t.Errorf("expected k=%d, got %d", DefaultTopK, index.gotK)
	}
	if !result.Empty() {
		t.Error("expected empty result")
	}
}

func TestDocumentToolIndexUnavailable(t *testing.T) {
	tool := NewDocumentTool(&stubEmbedder{}, &stubIndex{err: errors.New("connection refused")}, 5, nil)

	_, err := tool.Search(context.Background(), "rights?", 5)
	var idxErr *model.IndexUnavailableError
	if !errors.As(err, &idxErr) {
		t.Fatalf("expected IndexUnavailableError, got %v", err)
	}
}

func TestDocumentToolEmbedderFailure(t *testing.T) {
	tool := NewDocumentTool(&stubEmbedder{err: errors.New("ollama down")}, &stubIndex{}, 5, nil)

	_, err := tool.Search(context.Background(), "rights?", 5)
	var idxErr *model.IndexUnavailableError
	if !errors.As(err, &idxErr) {
		t.Fatalf("expected IndexUnavailableError, got %v", err)
	}
}

func TestDocumentToolDimensionMismatch(t *testing.T) {
	index, err := storage.NewMemoryIndexFromPassages(
		[]model.Passage{{Text: "Patients may request records.", SourceFile: "rights.pdf", Page: 3}},
		[][]float32{{0.1, 0.2, 0.3}},
	)
	if err != nil {
		t.Fatalf("Failed to build index: %v", err)
	}
	// stubEmbedder yields two dimensions.
	tool := NewDocumentTool(&stubEmbedder{}, index, 5, nil)

	result, err := tool.Search(context.Background(), "What are my rights?", 5)
	var idxErr *model.IndexUnavailableError
	if !errors.As(err, &idxErr) {
		t.Fatalf("expected IndexUnavailableError, got result=%+v err=%v", result, err)
	}
}
