package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"pricecompare/internal/domain"
)

const shoppingApology = "I apologize, but I encountered an error. Please try again."

// Shopping answers questions about the most recent search result.
type Shopping struct {
	completer domain.Completer
	req       domain.StructuredRequest
	rec       domain.Recommendation
	history   history
	log       zerolog.Logger
}

func NewShopping(completer domain.Completer, req domain.StructuredRequest, rec domain.Recommendation, log zerolog.Logger) *Shopping {
	return &Shopping{
		completer: completer,
		req:       req,
		rec:       rec,
		log:       log.With().Str("assistant", "shopping").Logger(),
	}
}

// Chat answers message. Completion failures produce a fixed apology and are
// not recorded in the history.
func (s *Shopping) Chat(ctx context.Context, message string) string {
	prompt := fmt.Sprintf(`You are a helpful shopping assistant. You have access to the following context about the user's product search:

%s

Conversation History:
%s

User: %s

Provide a helpful, concise response based on the context. If the user asks about specific products in the results, reference them. Be friendly and informative.
`, s.context(), s.history.format(), message)

	reply, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		s.log.Error().Err(err).Msg("chat completion failed")
		return shoppingApology
	}
	s.history.add(message, reply)
	return reply
}

func (s *Shopping) context() string {
	parts := []string{"Searching for: " + s.req.SearchQuery}
	if s.rec.Status == domain.StatusSuccess {
		parts = append(parts, "\nTop Recommendation: "+s.rec.Analysis)
		if len(s.rec.Products) > 0 {
			parts = append(parts, "\nTop Products:")
			for i, p := range s.rec.Products[:min(3, len(s.rec.Products))] {
				parts = append(parts, fmt.Sprintf("%d. %s - %s from %s", i+1, p.Title, p.PriceString, p.Seller))
			}
		}
	}
	return strings.Join(parts, "\n")
}
