package domain

import "context"

// Completer is a single-shot text completion service.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder converts texts into numeric vectors, one per input, in order.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Locale carries the region-derived parameters passed to offer sources.
type Locale struct {
	Location string
	Country  string
	Language string
	Currency string
}

// Source returns raw listings for a query. An empty slice means no results.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, locale Locale) ([]RawListing, error)
}

// ProgressFunc receives pipeline checkpoints with non-decreasing percentages.
type ProgressFunc func(step string, percent int)

// Pipeline defines the operations exposed by the application core.
type Pipeline interface {
	Run(ctx context.Context, raw string, onProgress ProgressFunc) (StructuredRequest, Recommendation, []Offer)
}
