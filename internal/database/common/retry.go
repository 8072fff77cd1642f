package common

import (
	"context"
	"fmt"
	"time"
)

// Retry runs op up to attempts times, sleeping between failures with
// exponential backoff: the wait after failure k is baseDelay * 2^k, with no
// jitter and no cap. The first success wins; exhaustion returns the last
// error wrapped with the attempt count. Waits honor ctx cancellation.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	retryDelay := baseDelay
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
			retryDelay *= 2 // exponential backoff
		}

		if lastErr = op(); lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
