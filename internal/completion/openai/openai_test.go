package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompleteSendsPromptAndReturnsFirstChoice(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  {\"ok\":true}  "}}]}`)
	}))
	defer srv.Close()

	t.Setenv("TEST_COMPLETION_KEY", "test-key")
	c, err := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "TEST_COMPLETION_KEY", Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := c.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"ok":true}` {
		t.Fatalf("got %q", out)
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %v", gotBody["messages"])
	}
	if gotBody["model"] != "m" {
		t.Fatalf("unexpected model %v", gotBody["model"])
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	}))
	defer srv.Close()

	t.Setenv("TEST_COMPLETION_KEY", "k")
	c, _ := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "TEST_COMPLETION_KEY"})
	if _, err := c.Complete(context.Background(), "x"); err != ErrEmptyCompletion {
		t.Fatalf("got %v, want ErrEmptyCompletion", err)
	}
}

func TestNewClientMissingKey(t *testing.T) {
	t.Setenv("TEST_COMPLETION_KEY", "")
	if _, err := NewClient(Config{APIKeyEnv: "TEST_COMPLETION_KEY"}); err == nil {
		t.Fatal("expected error for missing key")
	}
}
