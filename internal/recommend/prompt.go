package recommend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"pricecompare/internal/domain"
)

func prompt(req domain.StructuredRequest, candidates []domain.Offer) string {
	var b strings.Builder
	b.WriteString("You are an expert shopping advisor. Analyze these product options and provide a recommendation.\n\n")
	b.WriteString("USER REQUEST:\n")
	b.WriteString(userIntent(req))
	b.WriteString("\n\nAVAILABLE OPTIONS:\n")
	b.WriteString(optionsSummary(candidates))
	fmt.Fprintf(&b, `

Provide a recommendation as JSON. Indices are 0-based positions in the options list (0 to %d):

{
  "best_overall": {"index": 0, "reason": "Why this is the best choice"},
  "best_value": {"index": 1, "reason": "Best price-to-quality ratio"},
  "fastest_delivery": {"index": 2, "reason": "Quickest availability"},
  "analysis": "2-3 sentence overall analysis of the options",
  "considerations": ["Important factor 1", "Important factor 2"],
  "alternatives": "Brief mention of alternative options if any"
}

Return ONLY the JSON, no markdown or additional text.
`, len(candidates)-1)
	return b.String()
}

func userIntent(req domain.StructuredRequest) string {
	product := req.Product
	if product == "" {
		product = "Product"
	}
	parts := []string{"Looking for: " + product}
	if req.Brand != nil {
		parts = append(parts, "Brand: "+*req.Brand)
	}
	if len(req.Specifications) > 0 {
		keys := make([]string, 0, len(req.Specifications))
		for k := range req.Specifications {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var specs []string
		for _, k := range keys {
			if v := req.Specifications[k]; v != "" {
				specs = append(specs, k+": "+v)
			}
		}
		if len(specs) > 0 {
			parts = append(parts, "Specifications: "+strings.Join(specs, ", "))
		}
	}
	if req.Budget.Max != nil {
		parts = append(parts, fmt.Sprintf("Budget: Up to %s %s", strconv.FormatFloat(*req.Budget.Max, 'f', -1, 64), req.Budget.Currency))
	}
	if req.Preferences.PricePriority != "" {
		parts = append(parts, fmt.Sprintf("Priority: %s price", req.Preferences.PricePriority))
	}
	if req.Preferences.DeliveryPriority {
		parts = append(parts, "Fast delivery preferred")
	}
	return strings.Join(parts, " | ")
}

func optionsSummary(candidates []domain.Offer) string {
	blocks := make([]string, len(candidates))
	for i, o := range candidates {
		rating, reviews, delivery := "N/A", "N/A", "N/A"
		if o.Rating != nil {
			rating = strconv.FormatFloat(*o.Rating, 'f', -1, 64)
		}
		if o.Reviews != nil {
			reviews = strconv.Itoa(*o.Reviews)
		}
		if o.Delivery != nil {
			delivery = *o.Delivery
		}
		blocks[i] = fmt.Sprintf("Option %d:\n- Product: %s\n- Price: %s\n- Seller: %s\n- Rating: %s (%s reviews)\n- Delivery: %s\n- In Stock: %t",
			i, o.Title, o.PriceString, o.Seller, rating, reviews, delivery, o.InStock)
	}
	return strings.Join(blocks, "\n\n")
}
