// Package recommend asks a language model to explain the top-ranked offers
// and falls back to a fixed price/rating pick when it cannot.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"pricecompare/internal/domain"
	"pricecompare/internal/jsonx"
)

const (
	noResultsAnalysis = "No products found."
	fallbackReason    = "Best combination of price and rating"
)

var fallbackConsiderations = []string{"Price", "Seller rating", "Availability"}

type Synthesizer struct {
	completer domain.Completer
	log       zerolog.Logger
}

func New(completer domain.Completer, log zerolog.Logger) *Synthesizer {
	return &Synthesizer{completer: completer, log: log.With().Str("stage", "recommend").Logger()}
}

// NoResults is the recommendation for an empty offer set.
func NoResults() domain.Recommendation {
	return domain.Recommendation{
		Status:   domain.StatusNoResults,
		Analysis: noResultsAnalysis,
		Products: []domain.Offer{},
	}
}

// Synthesize explains the first topN ranked offers. The completer is not
// called when ranked is empty.
func (s *Synthesizer) Synthesize(ctx context.Context, req domain.StructuredRequest, ranked []domain.Offer, topN int) domain.Recommendation {
	if len(ranked) == 0 {
		return NoResults()
	}
	candidates := ranked
	if topN > 0 && len(candidates) > topN {
		candidates = candidates[:topN]
	}
	rec, err := s.attempt(ctx, req, candidates)
	if err != nil {
		s.log.Warn().Err(err).Int("candidates", len(candidates)).Msg("using deterministic recommendation")
		return Fallback(candidates)
	}
	return rec
}

type wirePick struct {
	Index  any    `json:"index"`
	Reason string `json:"reason"`
}

type wireRecommendation struct {
	BestOverall     *wirePick `json:"best_overall"`
	BestValue       *wirePick `json:"best_value"`
	FastestDelivery *wirePick `json:"fastest_delivery"`
	Analysis        string    `json:"analysis"`
	Considerations  []string  `json:"considerations"`
	Alternatives    string    `json:"alternatives"`
}

func (s *Synthesizer) attempt(ctx context.Context, req domain.StructuredRequest, candidates []domain.Offer) (domain.Recommendation, error) {
	out, err := s.completer.Complete(ctx, prompt(req, candidates))
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("completion: %w", err)
	}
	var w wireRecommendation
	if err := jsonx.Decode(out, &w); err != nil {
		return domain.Recommendation{}, fmt.Errorf("decode: %w", err)
	}
	if w.BestOverall == nil && w.BestValue == nil && w.FastestDelivery == nil && strings.TrimSpace(w.Analysis) == "" {
		return domain.Recommendation{}, errors.New("recommendation has no picks and no analysis")
	}
	products := make([]domain.Offer, len(candidates))
	copy(products, candidates)
	return domain.Recommendation{
		Status:          domain.StatusSuccess,
		Analysis:        strings.TrimSpace(w.Analysis),
		Products:        products,
		BestOverall:     w.BestOverall.pick(len(candidates)),
		BestValue:       w.BestValue.pick(len(candidates)),
		FastestDelivery: w.FastestDelivery.pick(len(candidates)),
		Considerations:  w.Considerations,
		Alternatives:    strings.TrimSpace(w.Alternatives),
	}, nil
}

// pick validates the model's index. Indices outside the candidate slice are dropped.
func (p *wirePick) pick(n int) *domain.Pick {
	if p == nil {
		return nil
	}
	var idx int
	switch v := p.Index.(type) {
	case float64:
		if v != math.Trunc(v) {
			return nil
		}
		idx = int(v)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		idx = i
	default:
		return nil
	}
	if idx < 0 || idx >= n {
		return nil
	}
	return &domain.Pick{Index: idx, Reason: strings.TrimSpace(p.Reason)}
}

// Fallback orders candidates by rating descending then price ascending and
// recommends the first. Missing ratings count as 0, missing prices as +Inf.
func Fallback(candidates []domain.Offer) domain.Recommendation {
	if len(candidates) == 0 {
		return domain.Recommendation{
			Status:   domain.StatusError,
			Analysis: "Unable to generate recommendations",
			Products: []domain.Offer{},
		}
	}
	sorted := make([]domain.Offer, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := ratingOf(sorted[i]), ratingOf(sorted[j])
		if ri != rj {
			return ri > rj
		}
		return priceOf(sorted[i]) < priceOf(sorted[j])
	})
	return domain.Recommendation{
		Status:         domain.StatusSuccess,
		Analysis:       fmt.Sprintf("Found %d options. Top recommendation based on price and ratings.", len(candidates)),
		Products:       sorted,
		BestOverall:    &domain.Pick{Index: 0, Reason: fallbackReason},
		Considerations: append([]string(nil), fallbackConsiderations...),
	}
}

func ratingOf(o domain.Offer) float64 {
	if o.Rating == nil {
		return 0
	}
	return *o.Rating
}

func priceOf(o domain.Offer) float64 {
	if o.Price == nil {
		return math.Inf(1)
	}
	return *o.Price
}
