package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/edigest/internal/pathstore"
)

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *pathstore.RetryableError
	return errors.As(err, &retryErr)
}

// backoffBase is the delay before the first retry.
var backoffBase = time.Second

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := backoffBase * time.Duration(1<<uint(attempt))
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base)/2 + 1))
	return base + jitter
}

const MaxRetries = 3

// withRetry runs fn until it succeeds, fails permanently, or MaxRetries
// attempts have been made.
func withRetry(ctx context.Context, log *slog.Logger, what string, fn func() error) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable store error", "what", what, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
