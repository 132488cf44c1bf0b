package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"blogpulse/internal/resilience/circuitbreaker"
	"blogpulse/internal/resilience/retry"
)

// Client fetches raw article HTML over HTTP. It wraps every request in
// retry with backoff and a circuit breaker, so a flapping origin degrades
// to fast failures instead of piling up timeouts.
//
// Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
	cfg        Config
}

// NewClient creates a fetcher with the given configuration. Zero-value
// fields fall back to defaults.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = def.MaxBodySize
	}
	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = def.MaxRedirects
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}

	retryCfg := retry.FeedFetchConfig()
	if cfg.Retry.MaxAttempts > 0 {
		retryCfg.MaxAttempts = cfg.Retry.MaxAttempts
		if cfg.Retry.BaseDelay > 0 {
			retryCfg.BaseDelay = cfg.Retry.BaseDelay
		}
		if cfg.Retry.MaxDelay > 0 {
			retryCfg.MaxDelay = cfg.Retry.MaxDelay
		}
		if cfg.Retry.JitterFraction > 0 {
			retryCfg.JitterFraction = cfg.Retry.JitterFraction
		}
	}

	c := &Client{
		breaker:  circuitbreaker.New(circuitbreaker.ContentFetchConfig()),
		retryCfg: retryCfg,
		cfg:      cfg,
	}

	c.httpClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= c.cfg.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			// Redirect targets get the same SSRF validation.
			return validateURL(req.URL.String(), c.cfg.DenyPrivateIPs)
		},
	}

	return c
}

// Fetch retrieves the body of one URL as text. Non-2xx responses, network
// errors, and timeouts all surface as errors; transient ones are retried
// before giving up.
func (c *Client) Fetch(ctx context.Context, urlStr string) (string, error) {
	if err := validateURL(urlStr, c.cfg.DenyPrivateIPs); err != nil {
		return "", err
	}

	var body string
	retryErr := retry.WithBackoff(ctx, c.retryCfg, func() error {
		result, err := c.breaker.Execute(func() (interface{}, error) {
			return c.doFetch(ctx, urlStr)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("content fetch circuit breaker open, request rejected",
					slog.String("url", urlStr),
					slog.String("state", c.breaker.State().String()))
			}
			return err
		}
		body = result.(string)
		return nil
	})
	if retryErr != nil {
		return "", retryErr
	}
	return body, nil
}

// timeoutError reports a request that outlived the per-request timeout.
// It satisfies net.Error so the retry classifier treats it as transient.
type timeoutError struct {
	url   string
	limit time.Duration
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("request to %s exceeded %v", e.url, e.limit)
}

func (e *timeoutError) Timeout() bool   { return true }
func (e *timeoutError) Temporary() bool { return true }

// doFetch performs one HTTP request without retry or circuit breaking.
func (c *Client) doFetch(ctx context.Context, urlStr string) (interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A per-request timeout is an origin failure, not a caller
		// cancellation; keep the two distinguishable upstream.
		if reqCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return "", &timeoutError{url: urlStr, limit: c.cfg.Timeout}
		}
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("GET %s: %s", urlStr, resp.Status),
		}
	}

	limited := io.LimitReader(resp.Body, c.cfg.MaxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > c.cfg.MaxBodySize {
		return "", fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, c.cfg.MaxBodySize)
	}

	return string(body), nil
}
