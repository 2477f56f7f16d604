// Package interpreter turns free-text shopping requests into a
// domain.StructuredRequest using a language completion service.
package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/rs/zerolog"

	"pricecompare/internal/domain"
	"pricecompare/internal/jsonx"
)

// Interpreter extracts structured requests. It never fails: when the
// completer errors or returns unusable output a minimal request built from
// the raw text is returned instead.
type Interpreter struct {
	completer domain.Completer
	defaults  domain.Defaults
	log       zerolog.Logger
	schema    string
}

func New(completer domain.Completer, defaults domain.Defaults, log zerolog.Logger) *Interpreter {
	return &Interpreter{
		completer: completer,
		defaults:  defaults,
		log:       log.With().Str("stage", "interpret").Logger(),
		schema:    requestSchema(),
	}
}

// Interpret returns the structured form of raw. SearchQuery is always non-empty
// for non-blank input.
func (in *Interpreter) Interpret(ctx context.Context, raw string) domain.StructuredRequest {
	req, err := in.attempt(ctx, raw)
	if err != nil {
		in.log.Warn().Err(err).Str("query", raw).Msg("falling back to raw query")
		return Fallback(raw, in.defaults)
	}
	return req
}

func (in *Interpreter) attempt(ctx context.Context, raw string) (domain.StructuredRequest, error) {
	out, err := in.completer.Complete(ctx, in.prompt(raw))
	if err != nil {
		return domain.StructuredRequest{}, fmt.Errorf("completion: %w", err)
	}
	var w wireRequest
	if err := jsonx.Decode(out, &w); err != nil {
		return domain.StructuredRequest{}, fmt.Errorf("decode: %w", err)
	}
	req := w.toDomain()
	if strings.TrimSpace(req.Product) == "" && raw != "" {
		return domain.StructuredRequest{}, errors.New("model returned no product")
	}
	normalize(&req, in.defaults)
	req.SearchQuery = SearchQuery(req, raw)
	return req, nil
}

func (in *Interpreter) prompt(raw string) string {
	var b strings.Builder
	b.WriteString("You are a product information extraction expert. Extract structured information from the user's product query.\n\n")
	fmt.Fprintf(&b, "User Query: %q\n\n", raw)
	b.WriteString("Return ONLY a valid JSON object (no markdown, no additional text) matching this JSON Schema:\n")
	b.WriteString(in.schema)
	b.WriteString("\n\nRules:\n")
	b.WriteString("1. Use null for missing information\n")
	fmt.Fprintf(&b, "2. Infer reasonable defaults (e.g., region: %q, currency: %q)\n", in.defaults.Region, in.defaults.Currency)
	b.WriteString("3. Return ONLY the JSON object, nothing else\n")
	return b.String()
}

// Fallback is the minimal request used when extraction fails.
func Fallback(raw string, d domain.Defaults) domain.StructuredRequest {
	return domain.StructuredRequest{
		Product:        raw,
		Specifications: map[string]string{},
		Budget:         domain.Budget{Currency: d.Currency},
		Region:         d.Region,
		Preferences: domain.Preferences{
			PricePriority:    domain.PriceLowest,
			DeliveryPriority: true,
			SellerTrust:      domain.TrustAny,
			Condition:        domain.ConditionNew,
		},
		SearchQuery: raw,
	}
}

// SearchQuery joins brand, product, model, storage and color. It falls back
// to the product name and then to raw.
func SearchQuery(req domain.StructuredRequest, raw string) string {
	var parts []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if req.Brand != nil {
		add(*req.Brand)
	}
	add(req.Product)
	if req.Model != nil {
		add(*req.Model)
	}
	add(req.Specifications["storage"])
	add(req.Specifications["color"])
	if q := strings.Join(parts, " "); q != "" {
		return q
	}
	if p := strings.TrimSpace(req.Product); p != "" {
		return p
	}
	return raw
}

func normalize(req *domain.StructuredRequest, d domain.Defaults) {
	if strings.TrimSpace(req.Region) == "" {
		req.Region = d.Region
	}
	if strings.TrimSpace(req.Budget.Currency) == "" {
		req.Budget.Currency = d.Currency
	}
	switch req.Preferences.PricePriority {
	case domain.PriceLowest, domain.PriceBestValue, domain.PricePremium:
	default:
		req.Preferences.PricePriority = domain.PriceLowest
	}
	switch req.Preferences.SellerTrust {
	case domain.TrustAny, domain.TrustHigh, domain.TrustVerified:
	default:
		req.Preferences.SellerTrust = domain.TrustAny
	}
	switch req.Preferences.Condition {
	case domain.ConditionNew, domain.ConditionRefurbished, domain.ConditionAny:
	default:
		req.Preferences.Condition = domain.ConditionNew
	}
	if req.Specifications == nil {
		req.Specifications = map[string]string{}
	}
}

func requestSchema() string {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	data, err := json.MarshalIndent(r.Reflect(&domain.StructuredRequest{}), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
