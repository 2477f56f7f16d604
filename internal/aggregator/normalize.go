package aggregator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"pricecompare/internal/domain"
)

var numberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// Normalize converts one raw listing into an Offer. It reports false for
// listings that are not JSON objects or have no title.
func Normalize(raw domain.RawListing, source string) (domain.Offer, bool) {
	if !gjson.ValidBytes(raw) {
		return domain.Offer{}, false
	}
	item := gjson.ParseBytes(raw)
	if !item.IsObject() {
		return domain.Offer{}, false
	}
	title := strings.TrimSpace(item.Get("title").String())
	if title == "" {
		return domain.Offer{}, false
	}

	o := domain.Offer{
		Title:       title,
		PriceString: strings.TrimSpace(item.Get("price").String()),
		Seller:      strings.TrimSpace(item.Get("source").String()),
		URL:         firstString(item, "link", "product_link"),
		Source:      source,
		InStock:     true,
	}
	if p := item.Get("extracted_price"); p.Type == gjson.Number {
		v := p.Float()
		o.Price = &v
	} else {
		o.Price = parseNumber(o.PriceString)
	}
	if o.PriceString == "" {
		o.PriceString = "N/A"
	}
	if o.Seller == "" {
		o.Seller = "Unknown"
	}
	if s := firstString(item, "thumbnail"); s != "" {
		o.Thumbnail = &s
	}
	if s := firstString(item, "delivery"); s != "" {
		o.Delivery = &s
	}
	if r := item.Get("rating"); r.Exists() {
		o.Rating = numeric(r)
	}
	if r := item.Get("reviews"); r.Exists() {
		if f := numeric(r); f != nil {
			n := int(*f)
			o.Reviews = &n
		}
	}
	return o, true
}

func firstString(item gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := item.Get(p); v.Type == gjson.String {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

func numeric(r gjson.Result) *float64 {
	switch r.Type {
	case gjson.Number:
		v := r.Float()
		return &v
	case gjson.String:
		return parseNumber(r.String())
	}
	return nil
}

// parseNumber reads the first number in s, e.g. "₹60,000.00" or "Rs. 45,999".
func parseNumber(s string) *float64 {
	m := numberPattern.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &v
}
