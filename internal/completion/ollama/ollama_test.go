package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompleteAgainstStubServer(t *testing.T) {
	var gotFormat any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		gotFormat = body["format"]
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"model":"llama3.1","created_at":"2024-01-01T00:00:00Z",
			"message":{"role":"assistant","content":" {\"product\":\"iphone\"} "},
			"response":" {\"product\":\"iphone\"} ","done":true}`)
	}))
	defer srv.Close()

	c, err := NewClient(Config{ServerURL: srv.URL, Model: "llama3.1", JSONMode: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := c.Complete(context.Background(), "parse this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"product":"iphone"}` {
		t.Fatalf("got %q", out)
	}
	if gotFormat != "json" {
		t.Fatalf("expected json format in request, got %v", gotFormat)
	}
}
