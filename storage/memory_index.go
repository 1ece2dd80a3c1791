package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/richinex/healthrouter/model"
)

// snapshotRecord is one passage of a JSON index snapshot.
type snapshotRecord struct {
	Text       string    `json:"text"`
	SourceFile string    `json:"source_file"`
	Page       *int      `json:"page,omitempty"`
	Embedding  []float32 `json:"embedding"`
}

type snapshot struct {
	Passages []snapshotRecord `json:"passages"`
}

// MemoryIndex serves a JSON snapshot of pre-embedded passages from memory.
// The file is read on first search; a failed read is retried on the next.
type MemoryIndex struct {
	path string

	mu      sync.Mutex
	records []snapshotRecord
	loaded  bool
}

// NewMemoryIndex creates an index backed by the snapshot file at path.
func NewMemoryIndex(path string) *MemoryIndex {
	return &MemoryIndex{path: path}
}

// NewMemoryIndexFromPassages builds an already-loaded index. Used by tests
// and the sample tooling.
func NewMemoryIndexFromPassages(passages []model.Passage, embeddings [][]float32) (*MemoryIndex, error) {
	if len(passages) != len(embeddings) {
		return nil, fmt.Errorf("got %d passages but %d embeddings", len(passages), len(embeddings))
	}
	idx := &MemoryIndex{loaded: true}
	for i, p := range passages {
		rec := snapshotRecord{Text: p.Text, SourceFile: p.SourceFile, Embedding: embeddings[i]}
		if p.Page >= 0 {
			page := p.Page
			rec.Page = &page
		}
		idx.records = append(idx.records, rec)
	}
	return idx, nil
}

// Name returns the backend name.
func (m *MemoryIndex) Name() string {
	return "file"
}

func (m *MemoryIndex) load() ([]snapshotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return m.records, nil
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("read index snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode index snapshot %s: %w", m.path, err)
	}

	m.records = snap.Passages
	m.loaded = true
	return m.records, nil
}

// Search scores every passage against vector and returns the best k. A
// query whose dimension differs from any stored embedding is an error.
func (m *MemoryIndex) Search(ctx context.Context, vector []float32, k int) ([]model.Passage, error) {
	records, err := m.load()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	passages := make([]model.Passage, 0, len(records))
	for i, rec := range records {
		if len(rec.Embedding) != len(vector) {
			return nil, fmt.Errorf("query vector has %d dimensions but passage %d has %d", len(vector), i, len(rec.Embedding))
		}
		page := -1
		if rec.Page != nil {
			page = *rec.Page
		}
		passages = append(passages, model.Passage{
			Text:       rec.Text,
			SourceFile: rec.SourceFile,
			Page:       page,
			Score:      cosine(vector, rec.Embedding),
		})
	}

	SortPassages(passages)
	if k > 0 && len(passages) > k {
		passages = passages[:k]
	}
	return passages, nil
}

var _ Index = (*MemoryIndex)(nil)
