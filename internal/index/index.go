// Package index embeds offers into a vector store and answers similarity
// queries over everything indexed so far.
package index

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pricecompare/internal/domain"
	"pricecompare/internal/vectorstore"
)

// Index is append-only: every call to Index adds new documents with fresh
// ids, so re-indexing an offer creates a duplicate.
type Index struct {
	embedder domain.Embedder
	store    vectorstore.Storage
	log      zerolog.Logger

	mu sync.Mutex
}

func New(embedder domain.Embedder, store vectorstore.Storage, log zerolog.Logger) *Index {
	return &Index{
		embedder: embedder,
		store:    store,
		log:      log.With().Str("stage", "index").Logger(),
	}
}

// Index embeds offers and adds them to the store. A failure can leave the
// batch partially written.
func (ix *Index) Index(ctx context.Context, offers []domain.Offer) error {
	if len(offers) == 0 {
		return nil
	}
	texts := make([]string, len(offers))
	for i, o := range offers {
		texts[i] = DocumentText(o)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed offers: %w", err)
	}
	if len(vectors) != len(offers) {
		return fmt.Errorf("embedder returned %d vectors for %d offers", len(vectors), len(offers))
	}
	docs := make([]domain.IndexedDocument, len(offers))
	for i, o := range offers {
		docs[i] = domain.IndexedDocument{
			ID:        uuid.NewString(),
			Text:      texts[i],
			Embedding: vectors[i],
			Metadata:  metadata(o),
		}
	}
	if err := ix.store.Add(ctx, docs); err != nil {
		return fmt.Errorf("store offers: %w", err)
	}
	ix.log.Debug().Int("documents", len(docs)).Str("embedder", ix.embedder.Name()).Msg("indexed offers")
	return nil
}

// QuerySimilar returns up to k indexed offers closest to text, most similar first.
func (ix *Index) QuerySimilar(ctx context.Context, text string, k int) ([]domain.SimilarOffer, error) {
	if k <= 0 {
		return nil, errors.New("k must be positive")
	}
	vectors, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, errors.New("embedder returned no query vector")
	}
	hits, err := ix.store.Query(ctx, vectors[0], k)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}
	out := make([]domain.SimilarOffer, len(hits))
	for i, h := range hits {
		out[i] = domain.SimilarOffer{
			ID:         h.Document.ID,
			Document:   h.Document.Text,
			Metadata:   h.Document.Metadata,
			Similarity: 1 - h.Distance,
		}
	}
	return out, nil
}

// Clear drops every indexed document. Previously returned ids become invalid.
func (ix *Index) Clear(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.store.DeleteCollection(ctx); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	return nil
}

// Count reports how many documents the store holds.
func (ix *Index) Count(ctx context.Context) (int, error) {
	return ix.store.Count(ctx)
}

// DocumentText renders the searchable text for an offer.
func DocumentText(o domain.Offer) string {
	rating := "N/A"
	if o.Rating != nil {
		rating = strconv.FormatFloat(*o.Rating, 'f', -1, 64)
	}
	parts := []string{
		"Product: " + o.Title,
		"Seller: " + o.Seller,
		"Price: " + o.PriceString,
		"Rating: " + rating,
	}
	if o.Delivery != nil && *o.Delivery != "" {
		parts = append(parts, "Delivery: "+*o.Delivery)
	}
	return strings.Join(parts, " | ")
}

func metadata(o domain.Offer) map[string]any {
	m := map[string]any{
		"title":        truncate(o.Title, 500),
		"price_string": o.PriceString,
		"seller":       truncate(o.Seller, 100),
		"url":          truncate(o.URL, 500),
		"source":       o.Source,
	}
	if o.Price != nil {
		m["price"] = *o.Price
	}
	if o.Rating != nil {
		m["rating"] = *o.Rating
	}
	return m
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
