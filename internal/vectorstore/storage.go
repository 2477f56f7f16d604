package vectorstore

import (
	"context"
	"math"
	"sort"

	"pricecompare/internal/domain"
)

// Hit is one nearest-neighbour result. Distance is the cosine distance,
// so 0 means identical direction.
type Hit struct {
	Document domain.IndexedDocument
	Distance float64
}

// Storage persists embedded documents and supports similarity search.
type Storage interface {
	Add(ctx context.Context, docs []domain.IndexedDocument) error
	// Query returns at most k hits ordered by ascending distance.
	Query(ctx context.Context, embedding []float64, k int) ([]Hit, error)
	Count(ctx context.Context) (int, error)
	// DeleteCollection removes every stored document.
	DeleteCollection(ctx context.Context) error
}

// CosineDistance returns 1 - cos(a, b). Zero vectors are at distance 1 from everything.
func CosineDistance(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		na += v * v
	}
	for _, v := range b {
		nb += v * v
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// Nearest ranks docs by distance to embedding and keeps the k closest.
// Ties keep insertion order.
func Nearest(docs []domain.IndexedDocument, embedding []float64, k int) []Hit {
	hits := make([]Hit, len(docs))
	for i, d := range docs {
		hits[i] = Hit{Document: d, Distance: CosineDistance(d.Embedding, embedding)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k >= 0 && k < len(hits) {
		hits = hits[:k]
	}
	return hits
}
