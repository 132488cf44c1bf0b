package fetcher

import (
	"fmt"
	"time"

	"blogpulse/internal/resilience/retry"
)

// Config controls the HTTP content fetcher.
type Config struct {
	// Timeout is the maximum duration for a single HTTP request.
	// Default: 10s.
	Timeout time.Duration

	// MaxBodySize is the maximum response body size in bytes. Responses
	// exceeding it are rejected while reading, not by Content-Length.
	// Default: 10MB.
	MaxBodySize int64

	// MaxRedirects bounds the redirect chain. Each redirect target goes
	// through the same URL validation as the original. Default: 5.
	MaxRedirects int

	// DenyPrivateIPs rejects URLs that resolve to loopback, private, or
	// link-local addresses. Should stay true outside of tests.
	DenyPrivateIPs bool

	// UserAgent identifies the fetcher to origin servers.
	UserAgent string

	// Retry overrides the built-in retry policy when MaxAttempts is set.
	// Zero-value fields within it keep their preset values.
	Retry retry.Config
}

// DefaultConfig returns production-ready fetcher defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "BlogPulseBot/1.0",
	}
}

// Validate checks the configuration for values that would make the fetcher
// unsafe or useless.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	minBody := int64(1024)
	maxBody := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBody || c.MaxBodySize > maxBody {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d",
			minBody, maxBody, c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}
