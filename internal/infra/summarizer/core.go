package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"blogpulse/internal/resilience/circuitbreaker"
	"blogpulse/internal/resilience/retry"
)

// core carries the reliability machinery shared by both provider adapters:
// client-side rate limiting, circuit breaking, and retry with backoff.
type core struct {
	name     string
	breaker  *circuitbreaker.CircuitBreaker
	retryCfg retry.Config
	limiter  *rate.Limiter
	cfg      Config
}

func newCore(name string, cfg Config) core {
	cfg = cfg.withDefaults()
	return core{
		name:     name,
		breaker:  circuitbreaker.New(circuitbreaker.LLMConfig()),
		retryCfg: retry.LLMConfig(),
		limiter:  rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1),
		cfg:      cfg,
	}
}

// generate runs one prompt through the provider call with the full
// reliability stack. The rate limiter gates each attempt so retries do not
// burst past the provider quota.
func (c *core) generate(ctx context.Context, call func(ctx context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var result string
	retryErr := retry.WithBackoff(ctx, c.retryCfg, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		cbResult, err := c.breaker.Execute(func() (interface{}, error) {
			return call(ctx)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("llm circuit breaker open, request rejected",
					slog.String("service", c.name),
					slog.String("state", c.breaker.State().String()))
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("%s request failed after retries: %w", c.name, retryErr)
	}
	return result, nil
}
