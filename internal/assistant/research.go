package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"pricecompare/internal/domain"
)

const (
	researchApology   = "I apologize, but I encountered an error during research. Please try again."
	similarK          = 3
	vectorUnavailable = "Vector search unavailable."
	noSimilarProducts = "No similar products found in database."
)

var retrievalKeywords = []string{"similar", "like", "alternative", "comparable", "other options", "different", "related"}

// SimilarSearcher is the part of the semantic index the research assistant uses.
type SimilarSearcher interface {
	QuerySimilar(ctx context.Context, text string, k int) ([]domain.SimilarOffer, error)
}

// Research answers comparison questions, pulling similar offers from the
// semantic index when the message asks for alternatives.
type Research struct {
	completer domain.Completer
	index     SimilarSearcher
	history   history
	log       zerolog.Logger
}

func NewResearch(completer domain.Completer, index SimilarSearcher, log zerolog.Logger) *Research {
	return &Research{completer: completer, index: index, log: log.With().Str("assistant", "research").Logger()}
}

func (r *Research) Chat(ctx context.Context, message string) string {
	var extra string
	if NeedsRetrieval(message) {
		extra = "\n\nSimilar Products:\n" + r.similar(ctx, message)
	}
	prompt := fmt.Sprintf(`You are an advanced research assistant specializing in product analysis and comparison.

Conversation History:
%s

Additional Context (from tools):
%s

User: %s

Provide a comprehensive, well-researched response. Use the context from tools when available. Be analytical and objective.
`, r.history.format(), extra, message)

	reply, err := r.completer.Complete(ctx, prompt)
	if err != nil {
		r.log.Error().Err(err).Msg("chat completion failed")
		return researchApology
	}
	r.history.add(message, reply)
	return reply
}

// NeedsRetrieval reports whether message asks for alternatives to the results.
func NeedsRetrieval(message string) bool {
	lower := strings.ToLower(message)
	for _, k := range retrievalKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (r *Research) similar(ctx context.Context, query string) string {
	if r.index == nil {
		return vectorUnavailable
	}
	results, err := r.index.QuerySimilar(ctx, query, similarK)
	if err != nil {
		r.log.Warn().Err(err).Msg("vector search failed")
		return vectorUnavailable
	}
	if len(results) == 0 {
		return noSimilarProducts
	}
	lines := make([]string, len(results))
	for i, res := range results {
		price := res.Metadata["price_string"]
		if price == nil {
			price = res.Metadata["price"]
		}
		lines[i] = fmt.Sprintf("- %v (Price: %v, Rating: %v, Similarity: %.2f)",
			res.Metadata["title"], orNA(price), orNA(res.Metadata["rating"]), res.Similarity)
	}
	return strings.Join(lines, "\n")
}

func orNA(v any) any {
	if v == nil {
		return "N/A"
	}
	return v
}
