package storage

import (
	"context"
	"math"
	"sort"

	"github.com/richinex/healthrouter/model"
)

// Index answers top-k similarity queries over pre-embedded passages.
//
// Implementations may connect lazily; connection failures surface from
// Search.
type Index interface {
	// Name identifies the backend for logs and health output.
	Name() string
	Search(ctx context.Context, vector []float32, k int) ([]model.Passage, error)
}

// cosine returns the cosine similarity of a and b, or 0 when the lengths
// differ or either vector is zero.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// SortPassages orders passages by descending score. Equal scores keep their
// input order.
func SortPassages(passages []model.Passage) {
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})
}
