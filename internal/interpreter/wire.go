package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"pricecompare/internal/domain"
)

// wireRequest is the lenient shape decoded from model output. Models put
// numbers in quotes, nest objects in specifications and use mixed case for
// enum values; toDomain smooths those over.
type wireRequest struct {
	Product        string         `json:"product"`
	Brand          *string        `json:"brand"`
	Model          *string        `json:"model"`
	Specifications map[string]any `json:"specifications"`
	Budget         struct {
		Min      any    `json:"min"`
		Max      any    `json:"max"`
		Currency string `json:"currency"`
	} `json:"budget"`
	Region      string `json:"region"`
	Preferences struct {
		PricePriority    string `json:"price_priority"`
		DeliveryPriority any    `json:"delivery_priority"`
		SellerTrust      string `json:"seller_trust"`
		Condition        string `json:"condition"`
	} `json:"preferences"`
}

func (w wireRequest) toDomain() domain.StructuredRequest {
	req := domain.StructuredRequest{
		Product:        strings.TrimSpace(w.Product),
		Brand:          nonBlank(w.Brand),
		Model:          nonBlank(w.Model),
		Specifications: map[string]string{},
		Budget: domain.Budget{
			Min:      number(w.Budget.Min),
			Max:      number(w.Budget.Max),
			Currency: strings.ToUpper(strings.TrimSpace(w.Budget.Currency)),
		},
		Region: strings.TrimSpace(w.Region),
		Preferences: domain.Preferences{
			PricePriority:    domain.PricePriority(enum(w.Preferences.PricePriority)),
			DeliveryPriority: boolean(w.Preferences.DeliveryPriority),
			SellerTrust:      domain.SellerTrust(enum(w.Preferences.SellerTrust)),
			Condition:        domain.Condition(enum(w.Preferences.Condition)),
		},
	}
	for k, v := range w.Specifications {
		if v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s == "" || strings.EqualFold(s, "null") {
			continue
		}
		req.Specifications[strings.ToLower(k)] = s
	}
	return req
}

func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" || strings.EqualFold(t, "null") {
		return nil
	}
	return &t
}

func enum(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

func number(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		clean := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' {
				return r
			}
			return -1
		}, n)
		f, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

func boolean(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		ok, _ := strconv.ParseBool(strings.TrimSpace(b))
		return ok
	}
	return false
}
