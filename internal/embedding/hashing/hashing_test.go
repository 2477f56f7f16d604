package hashing

import (
	"context"
	"math"
	"testing"
)

func cosine(a, b []float64) float64 {
	dot := 0.0
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

func TestEmbedNormalizedAndDeterministic(t *testing.T) {
	e := NewEmbedder(64)
	vecs, err := e.Embed(context.Background(), []string{"Apple iPhone 15 128GB Blue", "Apple iPhone 15 128GB Blue"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 2 || len(vecs[0]) != 64 {
		t.Fatalf("unexpected shape: %d x %d", len(vecs), len(vecs[0]))
	}
	norm := math.Sqrt(cosine(vecs[0], vecs[0]))
	if math.Abs(norm-1) > 1e-9 {
		t.Fatalf("got norm %f, want 1", norm)
	}
	if sim := cosine(vecs[0], vecs[1]); math.Abs(sim-1) > 1e-9 {
		t.Fatalf("identical texts have similarity %f", sim)
	}
}

func TestEmbedSimilarTextsCloser(t *testing.T) {
	e := NewEmbedder(256)
	vecs, _ := e.Embed(context.Background(), []string{
		"Apple iPhone 15 128GB",
		"iPhone 15 128GB from Amazon",
		"Dyson cordless vacuum cleaner",
	})
	near := cosine(vecs[0], vecs[1])
	far := cosine(vecs[0], vecs[2])
	if near <= far {
		t.Fatalf("expected related texts closer: near=%f far=%f", near, far)
	}
}

func TestEmbedOnlyStopwordsIsZero(t *testing.T) {
	e := NewEmbedder(32)
	vecs, _ := e.Embed(context.Background(), []string{"the and of"})
	for _, v := range vecs[0] {
		if v != 0 {
			t.Fatalf("expected zero vector, got %v", vecs[0])
		}
	}
}
