package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/sirupsen/logrus"

	"github.com/richinex/healthrouter/model"
)

// ChromaIndex searches a Chroma collection holding pre-embedded passages.
// The collection is resolved on first search.
type ChromaIndex struct {
	baseURL    string
	collection string
	logger     *logrus.Logger

	mu     sync.Mutex
	client chromago.Client
	coll   chromago.Collection
}

// NewChromaIndex creates an index for the named collection on the Chroma
// server at baseURL.
func NewChromaIndex(baseURL, collection string, logger *logrus.Logger) *ChromaIndex {
	return &ChromaIndex{baseURL: baseURL, collection: collection, logger: logger}
}

// Name returns the backend name.
func (c *ChromaIndex) Name() string {
	return "chroma"
}

func (c *ChromaIndex) open(ctx context.Context) (chromago.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.coll != nil {
		return c.coll, nil
	}

	if c.client == nil {
		client, err := chromago.NewHTTPClient(chromago.WithBaseURL(c.baseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to create chroma client: %w", err)
		}
		c.client = client
	}

	coll, err := c.client.GetCollection(ctx, c.collection)
	if err != nil {
		return nil, fmt.Errorf("failed to get chroma collection %q: %w", c.collection, err)
	}
	c.coll = coll
	return coll, nil
}

// Search queries the collection with vector and maps the first result group
// to passages.
func (c *ChromaIndex) Search(ctx context.Context, vector []float32, k int) ([]model.Passage, error) {
	coll, err := c.open(ctx)
	if err != nil {
		return nil, err
	}

	results, err := coll.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(k),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chromadb: %w", err)
	}

	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	distanceGroups := results.GetDistancesGroups()
	if len(documentGroups) == 0 {
		return []model.Passage{}, nil
	}

	passages := make([]model.Passage, 0, len(documentGroups[0]))
	for i, doc := range documentGroups[0] {
		text := doc.ContentString()
		if text == "" {
			continue
		}

		var metadata map[string]interface{}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) && metadataGroups[0][i] != nil {
			// DocumentMetadata has no map accessor; round-trip through JSON.
			jsonBytes, err := json.Marshal(metadataGroups[0][i])
			if err == nil {
				err = json.Unmarshal(jsonBytes, &metadata)
			}
			if err != nil && c.logger != nil {
				c.logger.WithError(err).Warn("could not decode chroma metadata")
			}
		}

		distance := 0.0
		if len(distanceGroups) > 0 && i < len(distanceGroups[0]) {
			distance = float64(distanceGroups[0][i])
		}

		passages = append(passages, passageFromMetadata(text, metadata, distance))
	}

	SortPassages(passages)
	return passages, nil
}

// Close releases the chroma client.
func (c *ChromaIndex) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client, c.coll = nil, nil
	return err
}

// passageFromMetadata builds a passage from a chroma document. Cosine
// distance is converted to a similarity score.
func passageFromMetadata(text string, metadata map[string]interface{}, distance float64) model.Passage {
	p := model.Passage{Text: text, Page: -1, Score: 1 - distance}

	for _, key := range []string{"source_file", "source"} {
		if v, ok := metadata[key].(string); ok && v != "" {
			p.SourceFile = v
			break
		}
	}

	switch v := metadata["page"].(type) {
	case float64:
		p.Page = int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			p.Page = n
		}
	}
	return p
}

var _ Index = (*ChromaIndex)(nil)
