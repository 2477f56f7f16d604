package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"pricecompare/internal/domain"
)

type recordingCompleter struct {
	replies []string
	err     error
	prompts []string
}

func (r *recordingCompleter) Complete(_ context.Context, prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if r.err != nil {
		return "", r.err
	}
	reply := "ok"
	if len(r.replies) > 0 {
		reply, r.replies = r.replies[0], r.replies[1:]
	}
	return reply, nil
}

func f(v float64) *float64 { return &v }

func TestShoppingContextListsTopThree(t *testing.T) {
	rec := domain.Recommendation{
		Status:   domain.StatusSuccess,
		Analysis: "Amazon is cheapest.",
		Products: []domain.Offer{
			{Title: "P1", PriceString: "₹1", Seller: "A"},
			{Title: "P2", PriceString: "₹2", Seller: "B"},
			{Title: "P3", PriceString: "₹3", Seller: "C"},
			{Title: "P4", PriceString: "₹4", Seller: "D"},
		},
	}
	c := &recordingCompleter{}
	s := NewShopping(c, domain.StructuredRequest{SearchQuery: "Apple iPhone 15"}, rec, zerolog.Nop())
	s.Chat(context.Background(), "which is cheapest?")
	p := c.prompts[0]
	for _, want := range []string{"Searching for: Apple iPhone 15", "Top Recommendation: Amazon is cheapest.", "3. P3 - ₹3 from C", "No previous conversation."} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, "P4") {
		t.Fatalf("prompt should list only three products:\n%s", p)
	}
}

func TestShoppingHistoryWindowAndTruncation(t *testing.T) {
	long := strings.Repeat("x", 300)
	c := &recordingCompleter{replies: []string{long, "second", "third"}}
	s := NewShopping(c, domain.StructuredRequest{SearchQuery: "q"}, domain.Recommendation{}, zerolog.Nop())
	ctx := context.Background()
	s.Chat(ctx, "first question")
	s.Chat(ctx, "second question")
	if !strings.Contains(c.prompts[1], "Assistant: "+strings.Repeat("x", 200)+"\n") {
		t.Fatalf("long reply not truncated to 200 runes:\n%s", c.prompts[1])
	}
	s.Chat(ctx, "third question")
	s.Chat(ctx, "fourth question")
	if strings.Contains(c.prompts[3], "first question") {
		t.Fatalf("history window should hold only the last 4 turns:\n%s", c.prompts[3])
	}
	if !strings.Contains(c.prompts[3], "User: second question") || !strings.Contains(c.prompts[3], "Assistant: third") {
		t.Fatalf("recent turns missing:\n%s", c.prompts[3])
	}
}

func TestShoppingApologizesOnError(t *testing.T) {
	s := NewShopping(&recordingCompleter{err: errors.New("down")}, domain.StructuredRequest{}, domain.Recommendation{}, zerolog.Nop())
	if got := s.Chat(context.Background(), "hi"); got != shoppingApology {
		t.Fatalf("got %q", got)
	}
	if s.history.len() != 0 {
		t.Fatal("failed turn should not be recorded")
	}
}

type stubIndex struct {
	results []domain.SimilarOffer
	err     error
	calls   int
	k       int
}

func (s *stubIndex) QuerySimilar(_ context.Context, _ string, k int) ([]domain.SimilarOffer, error) {
	s.calls++
	s.k = k
	return s.results, s.err
}

func TestResearchRetrievesOnKeywords(t *testing.T) {
	idx := &stubIndex{results: []domain.SimilarOffer{{
		Metadata:   map[string]any{"title": "Galaxy S23", "price_string": "₹74,999", "rating": 4.6},
		Similarity: 0.8123,
	}}}
	c := &recordingCompleter{}
	r := NewResearch(c, idx, zerolog.Nop())

	r.Chat(context.Background(), "Show me something SIMILAR but cheaper")
	if idx.calls != 1 || idx.k != 3 {
		t.Fatalf("expected one query with k=3, got calls=%d k=%d", idx.calls, idx.k)
	}
	if !strings.Contains(c.prompts[0], "- Galaxy S23 (Price: ₹74,999, Rating: 4.6, Similarity: 0.81)") {
		t.Fatalf("similar products not in prompt:\n%s", c.prompts[0])
	}

	r.Chat(context.Background(), "what is the warranty?")
	if idx.calls != 1 {
		t.Fatal("index queried without a retrieval keyword")
	}
}

func TestResearchDegradesWhenIndexFails(t *testing.T) {
	c := &recordingCompleter{}
	r := NewResearch(c, &stubIndex{err: errors.New("store down")}, zerolog.Nop())
	r.Chat(context.Background(), "any alternative?")
	if !strings.Contains(c.prompts[0], vectorUnavailable) {
		t.Fatalf("expected degraded context:\n%s", c.prompts[0])
	}
}

func TestNeedsRetrieval(t *testing.T) {
	tests := map[string]bool{
		"other options please": true,
		"anything comparable?": true,
		"how much is shipping": false,
	}
	for msg, want := range tests {
		if got := NeedsRetrieval(msg); got != want {
			t.Errorf("NeedsRetrieval(%q) = %v, want %v", msg, got, want)
		}
	}
}
