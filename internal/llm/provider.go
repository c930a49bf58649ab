// Package llm generates optional narrative briefs over computed risk
// scores. Brief generation never affects classification, corroboration or
// scoring: it runs strictly after the fact over already-derived data.
package llm

import (
	"context"
	"fmt"

	"github.com/rvachev/tierwatch/internal/model"
)

// Provider is a minimal completion interface.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete returns the model's response to the prompt
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds provider configuration.
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	Timeout   int // seconds
	MaxTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Timeout:   30,
		MaxTokens: 800,
	}
}

// ConfigFromModel builds a provider config from the engine configuration.
func ConfigFromModel(cfg model.LLMConfig) Config {
	c := DefaultConfig()
	if cfg.Provider != "" {
		c.Provider = cfg.Provider
	}
	if cfg.Model != "" {
		c.Model = cfg.Model
	}
	c.APIKey = cfg.APIKey
	c.BaseURL = cfg.BaseURL
	return c
}

// NewProvider creates the configured provider.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
