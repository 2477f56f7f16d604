// Package ollama implements domain.Completer against a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// Client wraps a langchaingo Ollama model.
type Client struct {
	llm      *ollama.LLM
	jsonMode bool
}

// Config configures the Ollama client. JSONMode asks the server to constrain
// output to a JSON value.
type Config struct {
	ServerURL string
	Model     string
	JSONMode  bool
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = "llama3.1"
	}
	opts := []ollama.Option{ollama.WithModel(cfg.Model)}
	if cfg.ServerURL != "" {
		opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
	}
	l, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to init ollama: %w", err)
	}
	return &Client{llm: l, jsonMode: cfg.JSONMode}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var opts []llms.CallOption
	if c.jsonMode {
		opts = append(opts, llms.WithJSONMode())
	}
	res, err := c.llm.Call(ctx, prompt, opts...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res), nil
}
