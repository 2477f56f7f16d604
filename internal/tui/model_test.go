package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pricecompare/internal/domain"
	"pricecompare/internal/service"
)

type fakeSession struct {
	queries  []string
	messages []string
}

func (f *fakeSession) Search(_ context.Context, raw string, onProgress domain.ProgressFunc) service.Result {
	f.queries = append(f.queries, raw)
	onProgress("Parsing your request...", 10)
	price := 45000.0
	return service.Result{
		Request: domain.StructuredRequest{SearchQuery: raw},
		Recommendation: domain.Recommendation{
			Status:      domain.StatusSuccess,
			Analysis:    "One good option.",
			Products:    []domain.Offer{{Title: "Phone A", PriceString: "₹45,000", Seller: "Amazon", Price: &price}},
			BestOverall: &domain.Pick{Index: 0, Reason: "cheapest"},
		},
		Offers: []domain.Offer{{Title: "Phone A", PriceString: "₹45,000", Seller: "Amazon", Price: &price}},
	}
}

func (f *fakeSession) ChatShopping(_ context.Context, message string) string {
	f.messages = append(f.messages, message)
	return "Buy it from Amazon."
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func typeText(m Model, s string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func TestSearchFlowRendersRecommendation(t *testing.T) {
	fake := &fakeSession{}
	m := sized(New(context.Background(), fake))
	m = typeText(m, "cheap phone")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if !m.busy || cmd == nil {
		t.Fatal("enter should start a search")
	}
	done := m.runSearch("cheap phone", make(chan progressMsg, 8))()
	next, _ = m.Update(done)
	m = next.(Model)

	if m.busy || m.result == nil {
		t.Fatal("search result not applied")
	}
	view := m.viewport.View()
	if !strings.Contains(view, "One good option.") || !strings.Contains(view, "₹45,000") {
		t.Fatalf("unexpected results view:\n%s", view)
	}
	if len(fake.queries) != 1 || fake.queries[0] != "cheap phone" {
		t.Fatalf("unexpected queries %v", fake.queries)
	}
}

func TestProgressUpdatesStatus(t *testing.T) {
	m := sized(New(context.Background(), &fakeSession{}))
	next, _ := m.Update(progressMsg{step: "Ranking results...", percent: 50})
	m = next.(Model)
	if m.status != "Ranking results..." || m.percent != 0.5 {
		t.Fatalf("got status %q percent %f", m.status, m.percent)
	}
}

func TestTabTogglesChat(t *testing.T) {
	fake := &fakeSession{}
	m := sized(New(context.Background(), fake))
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.mode != modeChat {
		t.Fatal("tab should switch to chat mode")
	}
	m = typeText(m, "which seller?")
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	next, _ = m.Update(m.runChat("which seller?")())
	m = next.(Model)
	if len(m.chat) != 2 || m.chat[1].text != "Buy it from Amazon." {
		t.Fatalf("unexpected chat log %+v", m.chat)
	}
}

func TestHighlightTermsKeepsText(t *testing.T) {
	out := highlightTerms("Apple iPhone 15", "iphone")
	if !strings.Contains(out, "Apple") || !strings.Contains(out, "15") || !strings.Contains(out, "iPhone") {
		t.Fatalf("text lost: %q", out)
	}
}
