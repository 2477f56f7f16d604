// Package ranking orders offers by user preferences. Everything here is pure.
package ranking

import (
	"fmt"
	"sort"
	"strings"

	"pricecompare/internal/domain"
)

// Policy selects the ordering applied by Rank.
type Policy string

const (
	// Weighted sorts by Score descending. It is the default policy.
	Weighted Policy = "weighted"
	// PriceAsc sorts by price ascending with unpriced offers last.
	PriceAsc Policy = "price_asc"
)

// ParsePolicy validates a policy name. An empty name selects Weighted.
func ParsePolicy(name string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return Weighted, nil
	case Weighted, PriceAsc:
		return p, nil
	default:
		return "", fmt.Errorf("unknown ranking policy %q", name)
	}
}

// Score is the weighted-policy score of one offer.
func Score(o domain.Offer, prefs domain.Preferences) float64 {
	score := 0.0
	if prefs.PricePriority == domain.PriceLowest && o.Price != nil && *o.Price > 0 {
		score += 10000 / (*o.Price + 1)
	}
	if o.Rating != nil {
		score += *o.Rating * 10
	}
	if prefs.DeliveryPriority && o.Delivery != nil {
		d := strings.ToLower(*o.Delivery)
		if strings.Contains(d, "free") {
			score += 50
		}
		if strings.Contains(d, "fast") || strings.Contains(d, "express") {
			score += 30
		}
	}
	return score
}

// Rank returns a reordered copy of offers. Ties keep their input order.
func Rank(offers []domain.Offer, prefs domain.Preferences, policy Policy) []domain.Offer {
	out := make([]domain.Offer, len(offers))
	copy(out, offers)
	switch policy {
	case PriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			pi, pj := out[i].Price, out[j].Price
			if pi == nil || pj == nil {
				return pi != nil && pj == nil
			}
			return *pi < *pj
		})
	default:
		scores := make([]float64, len(out))
		idx := make([]int, len(out))
		for i := range out {
			idx[i] = i
			scores[i] = Score(out[i], prefs)
		}
		sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
		ranked := make([]domain.Offer, len(out))
		for i, j := range idx {
			ranked[i] = out[j]
		}
		out = ranked
	}
	return out
}
