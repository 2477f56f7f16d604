package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is returned by Validate when a selected remote
// provider has no API key in its environment variable.
var ErrMissingCredential = errors.New("missing required credential")

// OpenAIConfig holds configuration for an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OllamaConfig holds configuration for a local Ollama server.
type OllamaConfig struct {
	ServerURL string `yaml:"server_url"`
	Model     string `yaml:"model"`
}

// CompletionConfig selects and configures the language completion service.
type CompletionConfig struct {
	Type   string        `yaml:"type"`
	OpenAI *OpenAIConfig `yaml:"openai,omitempty"`
	Ollama *OllamaConfig `yaml:"ollama,omitempty"`
}

// HashingConfig configures the local feature-hashing embedder.
type HashingConfig struct {
	Dimension int `yaml:"dimension"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type    string         `yaml:"type"`
	OpenAI  *OpenAIConfig  `yaml:"openai,omitempty"`
	Hashing *HashingConfig `yaml:"hashing,omitempty"`
}

// SQLiteConfig points at the on-disk vector store file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type       string        `yaml:"type"`
	Collection string        `yaml:"collection"`
	SQLite     *SQLiteConfig `yaml:"sqlite,omitempty"`
	Qdrant     *QdrantConfig `yaml:"qdrant,omitempty"`
}

// SerpAPIConfig configures the SerpAPI shopping source.
type SerpAPIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SearchConfig selects the offer sources.
type SearchConfig struct {
	Sources []string       `yaml:"sources"`
	SerpAPI *SerpAPIConfig `yaml:"serpapi,omitempty"`
}

// DefaultsConfig holds process-wide request defaults.
type DefaultsConfig struct {
	Region     string `yaml:"region"`
	Currency   string `yaml:"currency"`
	MaxResults int    `yaml:"max_results"`
}

// RankingConfig selects the ranking policy.
type RankingConfig struct {
	Policy string `yaml:"policy"`
}

// RecommendConfig configures the synthesizer.
type RecommendConfig struct {
	TopN int `yaml:"top_n"`
}

// LogConfig configures the zerolog output.
type LogConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Completion  CompletionConfig  `yaml:"completion"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Search      SearchConfig      `yaml:"search"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
	Ranking     RankingConfig     `yaml:"ranking"`
	Recommend   RecommendConfig   `yaml:"recommend"`
	Log         LogConfig         `yaml:"log"`
	Server      ServerConfig      `yaml:"server"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/pricecompare/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks that every selected remote provider can find its API key.
// It is meant to run once at startup; a failure is fatal for the process.
func (c *AppConfig) Validate() error {
	var missing []string
	need := func(env string) {
		if env != "" && os.Getenv(env) == "" {
			missing = append(missing, env)
		}
	}
	switch c.Completion.Type {
	case "openai":
		need(c.Completion.OpenAI.APIKeyEnv)
	case "ollama":
	default:
		return fmt.Errorf("unknown completion type: %s", c.Completion.Type)
	}
	switch c.Embedder.Type {
	case "openai":
		need(c.Embedder.OpenAI.APIKeyEnv)
	case "hashing":
	default:
		return fmt.Errorf("unknown embedder: %s", c.Embedder.Type)
	}
	switch c.VectorStore.Type {
	case "memory", "sqlite":
	case "qdrant":
		if c.VectorStore.Qdrant.URL == "" {
			return errors.New("qdrant url missing")
		}
	default:
		return fmt.Errorf("unknown vector store: %s", c.VectorStore.Type)
	}
	for _, src := range c.Search.Sources {
		switch src {
		case "serpapi":
			need(c.Search.SerpAPI.APIKeyEnv)
		default:
			return fmt.Errorf("unknown search source: %s", src)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingCredential, missing)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pricecompare", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Completion:  CompletionConfig{Type: "openai"},
		Embedder:    EmbedderConfig{Type: "hashing"},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Search:      SearchConfig{Sources: []string{"serpapi"}},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Completion.Type == "" {
		cfg.Completion.Type = "openai"
	}
	switch cfg.Completion.Type {
	case "openai":
		if cfg.Completion.OpenAI == nil {
			cfg.Completion.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Completion.OpenAI, "gpt-4o-mini")
	case "ollama":
		if cfg.Completion.Ollama == nil {
			cfg.Completion.Ollama = &OllamaConfig{}
		}
		if cfg.Completion.Ollama.ServerURL == "" {
			cfg.Completion.Ollama.ServerURL = "http://localhost:11434"
		}
		if cfg.Completion.Ollama.Model == "" {
			cfg.Completion.Ollama.Model = "llama3.1"
		}
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashing"
	}
	switch cfg.Embedder.Type {
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIConfig{}
		}
		applyOpenAIDefaults(cfg.Embedder.OpenAI, "text-embedding-3-small")
	case "hashing":
		if cfg.Embedder.Hashing == nil {
			cfg.Embedder.Hashing = &HashingConfig{}
		}
		if cfg.Embedder.Hashing.Dimension == 0 {
			cfg.Embedder.Hashing.Dimension = 512
		}
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "products"
	}
	switch cfg.VectorStore.Type {
	case "sqlite":
		if cfg.VectorStore.SQLite == nil {
			cfg.VectorStore.SQLite = &SQLiteConfig{}
		}
		if cfg.VectorStore.SQLite.Path == "" {
			cfg.VectorStore.SQLite.Path = "pricecompare.db"
		}
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}

	if len(cfg.Search.Sources) == 0 {
		cfg.Search.Sources = []string{"serpapi"}
	}
	if cfg.Search.SerpAPI == nil {
		cfg.Search.SerpAPI = &SerpAPIConfig{}
	}
	if cfg.Search.SerpAPI.BaseURL == "" {
		cfg.Search.SerpAPI.BaseURL = "https://serpapi.com/search.json"
	}
	if cfg.Search.SerpAPI.APIKeyEnv == "" {
		cfg.Search.SerpAPI.APIKeyEnv = "SERPAPI_KEY"
	}
	if cfg.Search.SerpAPI.TimeoutSecs == 0 {
		cfg.Search.SerpAPI.TimeoutSecs = 30
	}

	if cfg.Defaults.Region == "" {
		cfg.Defaults.Region = "India"
	}
	if cfg.Defaults.Currency == "" {
		cfg.Defaults.Currency = "INR"
	}
	if cfg.Defaults.MaxResults <= 0 {
		cfg.Defaults.MaxResults = 10
	}
	if cfg.Ranking.Policy == "" {
		cfg.Ranking.Policy = "weighted"
	}
	if cfg.Recommend.TopN <= 0 {
		cfg.Recommend.TopN = 5
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}

func applyOpenAIDefaults(c *OpenAIConfig, model string) {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.TimeoutSecs == 0 {
		c.TimeoutSecs = 60
	}
}
