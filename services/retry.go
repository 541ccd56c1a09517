package services

import (
	"context"
	"fmt"
	"time"

	"fintech-analyst/observability"
)

// RetryConfig bounds a retried operation. Backoff doubles per attempt up
// to MaxBackoff.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries:     3,
	InitialBackoff: 100 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
}

// WithRetry runs op up to 1+MaxRetries times with exponential backoff.
// Provider resolution never goes through here: a failed provider falls
// through to the next tier instead of being retried. This helper is for
// side work like history writes.
func WithRetry(ctx context.Context, config RetryConfig, op func() error) error {
	var lastErr error

	for attempt := 0; ; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= config.MaxRetries {
			return fmt.Errorf("failed after %d retries: %w", config.MaxRetries, lastErr)
		}

		observability.Warn("retry attempt failed",
			"attempt", attempt+1,
			"max_retries", config.MaxRetries,
			"error", lastErr)

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(backoffFor(config, attempt)):
		}
	}
}

func backoffFor(config RetryConfig, attempt int) time.Duration {
	backoff := config.InitialBackoff << attempt
	if backoff > config.MaxBackoff || backoff <= 0 {
		return config.MaxBackoff
	}
	return backoff
}
