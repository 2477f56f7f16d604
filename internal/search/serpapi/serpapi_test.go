package serpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pricecompare/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Setenv("TEST_SERPAPI_KEY", "serp-key")
	c, err := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "TEST_SERPAPI_KEY", MaxResults: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestSearchSendsParamsAndSplitsResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		want := map[string]string{
			"engine": "google_shopping", "q": "Apple iPhone 15", "api_key": "serp-key",
			"num": "7", "location": "India", "gl": "in", "hl": "en",
		}
		for k, v := range want {
			if q.Get(k) != v {
				t.Errorf("param %s: got %q, want %q", k, q.Get(k), v)
			}
		}
		_, _ = io.WriteString(w, `{"search_metadata":{"status":"Success"},"shopping_results":[
			{"title":"iPhone 15","extracted_price":49000,"source":"Amazon"},
			{"title":"iPhone 15 128GB","price":"₹60,000","source":"Flipkart"},
			"garbage"]}`)
	})
	got, err := c.Search(context.Background(), "Apple iPhone 15", domain.Locale{Location: "India", Country: "in", Language: "en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d listings, want 3", len(got))
	}
	if !strings.Contains(string(got[0]), `"Amazon"`) {
		t.Fatalf("unexpected first listing %s", got[0])
	}
}

func TestSearchNoResultsIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":"Google hasn't returned any results for this query."}`)
	})
	got, err := c.Search(context.Background(), "zzzz", domain.Locale{})
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v; want empty, nil", got, err)
	}
}

func TestSearchHTTPErrorCarriesMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"Invalid API key."}`)
	})
	_, err := c.Search(context.Background(), "x", domain.Locale{})
	if err == nil || !strings.Contains(err.Error(), "Invalid API key") {
		t.Fatalf("expected API error, got %v", err)
	}
}
