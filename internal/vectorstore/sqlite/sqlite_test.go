package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"pricecompare/internal/domain"
)

func openTemp(t *testing.T, collection string) *Storage {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "vectors.db"), collection)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddQueryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, "products")
	err := s.Add(ctx, []domain.IndexedDocument{
		{ID: "a", Text: "Product: phone", Embedding: []float64{1, 0}, Metadata: map[string]any{"seller": "Amazon", "price": 49000.0}},
		{ID: "b", Text: "Product: vacuum", Embedding: []float64{0, 1}, Metadata: map[string]any{"seller": "Flipkart"}},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	hits, err := s.Query(ctx, []float64{0.9, 0.1}, 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 1 || hits[0].Document.ID != "a" {
		t.Fatalf("unexpected hits %+v", hits)
	}
	if hits[0].Document.Metadata["seller"] != "Amazon" || hits[0].Document.Metadata["price"] != 49000.0 {
		t.Fatalf("metadata not restored: %+v", hits[0].Document.Metadata)
	}
}

func TestCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shared.db")
	a, err := Open(path, "a")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := Open(path, "b")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	_ = a.Add(ctx, []domain.IndexedDocument{{ID: "1", Embedding: []float64{1}}})
	if n, _ := b.Count(ctx); n != 0 {
		t.Fatalf("collection b sees %d docs", n)
	}
	if err := b.DeleteCollection(ctx); err != nil {
		t.Fatal(err)
	}
	if n, _ := a.Count(ctx); n != 1 {
		t.Fatalf("collection a lost docs: %d", n)
	}
}

func TestAddUpsertsByID(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t, "products")
	_ = s.Add(ctx, []domain.IndexedDocument{{ID: "a", Text: "old", Embedding: []float64{1}}})
	_ = s.Add(ctx, []domain.IndexedDocument{{ID: "a", Text: "new", Embedding: []float64{1}}})
	if n, _ := s.Count(ctx); n != 1 {
		t.Fatalf("got %d docs, want 1", n)
	}
	hits, _ := s.Query(ctx, []float64{1}, 5)
	if hits[0].Document.Text != "new" {
		t.Fatalf("got %q", hits[0].Document.Text)
	}
}
