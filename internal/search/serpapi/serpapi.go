// Package serpapi fetches Google Shopping listings through SerpAPI.
package serpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"pricecompare/internal/domain"
)

// SourceName is the label attached to every offer from this source.
const SourceName = "Google Shopping"

// Config configures the SerpAPI client.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Timeout    time.Duration
	MaxResults int
}

// Client queries the google_shopping engine.
type Client struct {
	baseURL    string
	apiKey     string
	maxResults int
	httpClient *http.Client
}

// NewClient creates a new SerpAPI client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://serpapi.com/search.json"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		maxResults: cfg.MaxResults,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *Client) Name() string { return SourceName }

// Search returns the raw shopping_results entries. A response without that
// array is an empty result, not an error.
func (c *Client) Search(ctx context.Context, query string, locale domain.Locale) ([]domain.RawListing, error) {
	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("num", strconv.Itoa(c.maxResults))
	if locale.Location != "" {
		params.Set("location", locale.Location)
	}
	if locale.Country != "" {
		params.Set("gl", locale.Country)
	}
	if locale.Language != "" {
		params.Set("hl", locale.Language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("serpapi read: %w", err)
	}
	if resp.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("serpapi: %s", msg)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("serpapi: invalid JSON response")
	}
	if msg := gjson.GetBytes(body, "error"); msg.Exists() && !gjson.GetBytes(body, "shopping_results").Exists() {
		// SerpAPI reports "no results" as an error string with status 200
		return nil, nil
	}

	var out []domain.RawListing
	gjson.GetBytes(body, "shopping_results").ForEach(func(_, item gjson.Result) bool {
		out = append(out, domain.RawListing(item.Raw))
		return true
	})
	return out, nil
}
