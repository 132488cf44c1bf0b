package summarizer

import (
	"fmt"
	"time"
)

// Config holds the provider-independent summarizer settings.
type Config struct {
	// Model is the provider model identifier. Empty selects the
	// provider's default.
	Model string

	// MaxTokens bounds the API response length. Default: 2048.
	MaxTokens int

	// Timeout is the per-call deadline. Default: 60s.
	Timeout time.Duration

	// SummaryBudgetChars is the article-text truncation budget for the
	// summarization prompt. Default: 4000.
	SummaryBudgetChars int

	// RequestsPerMinute is the client-side rate limit toward the
	// provider. Default: 60.
	RequestsPerMinute int
}

// DefaultConfig returns the summarizer defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:          2048,
		Timeout:            60 * time.Second,
		SummaryBudgetChars: DefaultSummaryBudgetChars,
		RequestsPerMinute:  60,
	}
}

// withDefaults fills zero-value fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxTokens <= 0 {
		c.MaxTokens = def.MaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.SummaryBudgetChars <= 0 {
		c.SummaryBudgetChars = def.SummaryBudgetChars
	}
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = def.RequestsPerMinute
	}
	return c
}

// Validate rejects configurations no adapter could run with.
func (c *Config) Validate() error {
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.SummaryBudgetChars < 100 {
		return fmt.Errorf("summary budget must be at least 100 chars, got %d", c.SummaryBudgetChars)
	}
	if c.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests per minute must be positive, got %d", c.RequestsPerMinute)
	}
	return nil
}
