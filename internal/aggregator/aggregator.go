// Package aggregator queries every configured offer source and normalizes
// their raw listings into domain.Offer values.
package aggregator

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"pricecompare/internal/domain"
)

type Aggregator struct {
	sources  []domain.Source
	defaults domain.Defaults
	log      zerolog.Logger
}

func New(sources []domain.Source, defaults domain.Defaults, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		sources:  sources,
		defaults: defaults,
		log:      log.With().Str("stage", "aggregate").Logger(),
	}
}

// Aggregate returns offers from all sources, concatenated in source order and
// capped at the configured maximum. Failing sources contribute nothing; an
// empty result means "no results", never an error.
func (a *Aggregator) Aggregate(ctx context.Context, req domain.StructuredRequest) []domain.Offer {
	query := req.SearchQuery
	if strings.TrimSpace(query) == "" {
		query = req.Product
	}
	region := req.Region
	if strings.TrimSpace(region) == "" {
		region = a.defaults.Region
	}
	locale := LocaleFor(region, a.defaults)

	slots := make([][]domain.Offer, len(a.sources))
	var g errgroup.Group
	for i, src := range a.sources {
		g.Go(func() error {
			slots[i] = a.fetch(ctx, src, query, locale)
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.Offer
	for _, s := range slots {
		out = append(out, s...)
	}
	if limit := a.defaults.MaxResults; limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (a *Aggregator) fetch(ctx context.Context, src domain.Source, query string, locale domain.Locale) []domain.Offer {
	log := a.log.With().Str("source", src.Name()).Logger()
	raws, err := src.Search(ctx, query, locale)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("source search failed")
		return nil
	}
	offers := make([]domain.Offer, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		o, ok := Normalize(raw, src.Name())
		if !ok {
			dropped++
			continue
		}
		offers = append(offers, o)
	}
	log.Debug().Int("listings", len(raws)).Int("dropped", dropped).Msg("source done")
	return offers
}

var locales = map[string]domain.Locale{
	"india":          {Location: "India", Country: "in", Language: "en", Currency: "INR"},
	"usa":            {Location: "United States", Country: "us", Language: "en", Currency: "USD"},
	"united states":  {Location: "United States", Country: "us", Language: "en", Currency: "USD"},
	"uk":             {Location: "United Kingdom", Country: "uk", Language: "en", Currency: "GBP"},
	"united kingdom": {Location: "United Kingdom", Country: "uk", Language: "en", Currency: "GBP"},
}

// LocaleFor maps a region name to source locale parameters. Unknown regions
// pass through as the location with the default currency.
func LocaleFor(region string, d domain.Defaults) domain.Locale {
	if l, ok := locales[strings.ToLower(strings.TrimSpace(region))]; ok {
		return l
	}
	return domain.Locale{Location: strings.TrimSpace(region), Currency: d.Currency}
}
