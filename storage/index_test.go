package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/richinex/healthrouter/model"
)

func TestCosine(t *testing.T) {
	if got := cosine([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("expected ~1 for identical vectors, got %v", got)
	}
	if got := cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("expected 0 for orthogonal vectors, got %v", got)
	}
	if got := cosine([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("expected 0 for mismatched lengths, got %v", got)
	}
}

func TestSortPassagesStable(t *testing.T) {
	passages := []model.Passage{
		{Text: "a", Score: 0.5},
		{Text: "b", Score: 0.9},
		{Text: "c", Score: 0.5},
	}
	SortPassages(passages)

	if passages[0].Text != "b" || passages[1].Text != "a" || passages[2].Text != "c" {
		t.Errorf("unexpected order: %s %s %s", passages[0].Text, passages[1].Text, passages[2].Text)
	}
}

func TestMemoryIndexSearch(t *testing.T) {
	idx, err := NewMemoryIndexFromPassages(
		[]model.Passage{
			{Text: "privacy", SourceFile: "privacy.pdf", Page: 2},
			{Text: "coverage", SourceFile: "coverage.pdf", Page: -1},
			{Text: "rights", SourceFile: "rights.pdf", Page: 1},
		},
		[][]float32{{1, 0}, {0, 1}, {0.7, 0.7}},
	)
	if err != nil {
		t.Fatalf("Failed to build index: %v", err)
	}

	got, err := idx.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(got))
	}
	if got[0].Text != "privacy" || got[1].Text != "rights" {
		t.Errorf("unexpected order: %s, %s", got[0].Text, got[1].Text)
	}
	if got[0].Score < got[1].Score {
		t.Errorf("scores not descending: %v < %v", got[0].Score, got[1].Score)
	}
}

func TestMemoryIndexLoadsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	snapshot := `{"passages": [
		{"text": "Patients may request records.", "source_file": "rights.pdf", "page": 3, "embedding": [0, 1]},
		{"text": "No page here.", "source_file": "guide.pdf", "embedding": [1, 0]}
	]}`
	if err := os.WriteFile(path, []byte(snapshot), 0644); err != nil {
		t.Fatalf("Failed to write snapshot: %v", err)
	}

	idx := NewMemoryIndex(path)
	got, err := idx.Search(context.Background(), []float32{0, 1}, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(got))
	}
	if got[0].Page != 3 {
		t.Errorf("expected page 3, got %d", got[0].Page)
	}
	if got[1].Page != -1 {
		t.Errorf("expected unknown page -1, got %d", got[1].Page)
	}
}

func TestMemoryIndexMissingSnapshot(t *testing.T) {
	idx := NewMemoryIndex(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := idx.Search(context.Background(), []float32{1}, 5); err == nil {
		t.Error("expected error for missing snapshot")
	}
}

func TestMemoryIndexDimensionMismatch(t *testing.T) {
	idx, err := NewMemoryIndexFromPassages(
		[]model.Passage{
			{Text: "a", SourceFile: "x.pdf", Page: 1},
			{Text: "b", SourceFile: "y.pdf", Page: 2},
		},
		[][]float32{{1, 0, 0}, {0, 1, 0}},
	)
	if err != nil {
		t.Fatalf("Failed to build index: %v", err)
	}

	got, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	if err == nil {
		t.Fatalf("expected dimension mismatch error, got passages %+v", got)
	}
	if got != nil {
		t.Errorf("expected no passages on error, got %d", len(got))
	}
}

func TestPassageFromMetadata(t *testing.T) {
	p := passageFromMetadata("text", map[string]interface{}{"source": "policy.pdf", "page": float64(4)}, 0.25)

	if p.SourceFile != "policy.pdf" {
		t.Errorf("expected policy.pdf, got %q", p.SourceFile)
	}
	if p.Page != 4 {
		t.Errorf("expected page 4, got %d", p.Page)
	}
	if p.Score != 0.75 {
		t.Errorf("expected score 0.75, got %v", p.Score)
	}

	bare := passageFromMetadata("text", nil, 0)
	if bare.Page != -1 || bare.SourceFile != "" {
		t.Errorf("expected unknown page and file, got %+v", bare)
	}
}
