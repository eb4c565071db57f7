package httputil

import (
	"context"
	"errors"
	"time"
)

// Defaults used by [RetryWithBackoff].
const (
	defaultAttempts  = 3
	defaultBaseDelay = time.Second
)

// RetryableError marks a failure as transient. Only errors wrapped in this
// type trigger another attempt; everything else is surfaced immediately so
// that fatal classifications (bad credentials, rejected queries) are never
// blindly re-sent.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn up to attempts times, doubling the delay between attempts.
// It returns nil on the first success, the error itself when it is not a
// [RetryableError], the last error when every attempt failed, or ctx.Err()
// when the context is cancelled while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.As(err, new(*RetryableError)) {
			return err
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return lastErr
}

// RetryWithBackoff is [Retry] with the package defaults: 3 attempts
// starting at a 1 second delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, defaultAttempts, defaultBaseDelay, fn)
}
