// Package httputil provides retry infrastructure for outbound calls.
//
// # Retry
//
// [Retry] wraps an operation with bounded retry for transient failures.
// Only errors wrapped in [RetryableError] are retried; everything else is
// returned immediately. The sourcing pipeline deliberately does NOT use this
// for marketplace queries (a failed query is terminal for the request, and
// session expiry has its own single pipeline-level retry); it is used where
// blind re-attempts are safe, such as the AI match collaborator.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    reply, err := completer.Complete(ctx, prompt)
//	    ...
//	})
//
// # Configuration
//
// Defaults: 3 attempts, 1 second base delay, doubling each retry.
package httputil
