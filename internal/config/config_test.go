package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Defaults.Region != "India" || cfg.Defaults.Currency != "INR" || cfg.Defaults.MaxResults != 10 {
		t.Fatalf("unexpected defaults: %+v", cfg.Defaults)
	}
	if cfg.Ranking.Policy != "weighted" {
		t.Fatalf("got policy %q, want weighted", cfg.Ranking.Policy)
	}
	if cfg.Embedder.Type != "hashing" || cfg.Embedder.Hashing.Dimension != 512 {
		t.Fatalf("unexpected embedder: %+v", cfg.Embedder)
	}
	if cfg.Search.SerpAPI.APIKeyEnv != "SERPAPI_KEY" {
		t.Fatalf("unexpected serpapi env: %q", cfg.Search.SerpAPI.APIKeyEnv)
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
completion:
  type: ollama
vector_store:
  type: sqlite
defaults:
  region: USA
  currency: USD
ranking:
  policy: price_asc
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Completion.Ollama == nil || cfg.Completion.Ollama.ServerURL != "http://localhost:11434" {
		t.Fatalf("ollama defaults not applied: %+v", cfg.Completion.Ollama)
	}
	if cfg.VectorStore.SQLite == nil || cfg.VectorStore.SQLite.Path != "pricecompare.db" {
		t.Fatalf("sqlite defaults not applied: %+v", cfg.VectorStore.SQLite)
	}
	if cfg.VectorStore.Collection != "products" {
		t.Fatalf("got collection %q", cfg.VectorStore.Collection)
	}
	if cfg.Defaults.Region != "USA" || cfg.Defaults.Currency != "USD" {
		t.Fatalf("file values overwritten: %+v", cfg.Defaults)
	}
	if cfg.Ranking.Policy != "price_asc" {
		t.Fatalf("got policy %q", cfg.Ranking.Policy)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Recommend.TopN = 7
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Recommend.TopN != 7 {
		t.Fatalf("got top_n %d, want 7", loaded.Recommend.TopN)
	}
}

func TestValidate(t *testing.T) {
	t.Run("missing keys", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("SERPAPI_KEY", "")
		cfg := defaultConfig()
		err := cfg.Validate()
		if !errors.Is(err, ErrMissingCredential) {
			t.Fatalf("got %v, want ErrMissingCredential", err)
		}
	})

	t.Run("keys present", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("SERPAPI_KEY", "serp-test")
		cfg := defaultConfig()
		if err := cfg.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("ollama needs no key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("SERPAPI_KEY", "serp-test")
		cfg := defaultConfig()
		cfg.Completion.Type = "ollama"
		applyConfigDefaults(cfg)
		if err := cfg.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("SERPAPI_KEY", "serp-test")
		cfg := defaultConfig()
		cfg.VectorStore.Type = "chroma"
		if err := cfg.Validate(); err == nil {
			t.Fatal("expected error for unknown store")
		}
	})
}
