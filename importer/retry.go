package importer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/recall/storage"
)

// RetryWithBackoff retries a storage operation with exponential backoff.
// Only storage.ErrConflict is retried; any other error is returned at once.
// maxAttempts: maximum number of attempts (must be > 0)
// baseDelay: delay before the second attempt (doubles on each retry)
// Returns the error from the last attempt if all attempts fail.
func RetryWithBackoff(ctx context.Context, logger *slog.Logger, maxAttempts int, baseDelay time.Duration, operation func() error) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if !errors.Is(lastErr, storage.ErrConflict) || attempt == maxAttempts {
			break
		}

		logger.Debug("transaction conflict, will retry", "attempt", attempt, "maxAttempts", maxAttempts, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return lastErr
}
